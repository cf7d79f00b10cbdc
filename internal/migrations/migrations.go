package migrations

import "embed"

// FS holds the migration sources so goose can match registered Go migrations by
// file name.
//
//go:embed *.go
var FS embed.FS

// Dir is the migrations root inside FS.
const Dir = "."
