package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/orgball2608/insta-compliance-bot/internal/domain"
)

// fingerprint is the canonical form hashed into a cache key. Field order is fixed by
// the struct so the JSON encoding is deterministic.
type fingerprint struct {
	Caption      string   `json:"caption"`
	Transcript   string   `json:"transcript"`
	MediaType    string   `json:"mediaType"`
	Hashtags     []string `json:"hashtags"`
	AltText      string   `json:"altText"`
	Requirements []string `json:"requirements"`
}

// GenerateKey returns a hex SHA-256 of the post content and requirements. Hashtag and
// requirement order do not affect the key.
func GenerateKey(post *domain.Post, requirements []string) string {
	fp := fingerprint{
		Caption:      post.Caption,
		Transcript:   post.Transcript,
		MediaType:    string(post.MediaType),
		Hashtags:     sortedCopy(post.Hashtags),
		AltText:      post.AltText,
		Requirements: sortedCopy(requirements),
	}

	raw, err := json.Marshal(fp)
	if err != nil {
		// strings and string slices always encode
		panic(err)
	}

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
