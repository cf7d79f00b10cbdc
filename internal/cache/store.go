package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/insta-compliance-bot/pkg/logger"
)

const (
	DefaultMaxSize       = 100
	DefaultTTL           = 60 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

type entry[T any] struct {
	data         T
	createdAt    time.Time
	lastAccessed time.Time
	expiresAt    time.Time
}

type Stats struct {
	TotalEntries   int   `json:"totalEntries"`
	ActiveEntries  int   `json:"activeEntries"`
	ExpiredEntries int   `json:"expiredEntries"`
	MaxSize        int   `json:"maxSize"`
	TTLMs          int64 `json:"ttlMs"`
}

// Store is a size-bounded, TTL-expiring LRU map. Expired entries are dropped lazily on
// read and periodically by the sweeper.
type Store[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]

	maxSize       int
	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time
	clone         func(T) T
	logger        logger.Logger

	scheduler gocron.Scheduler
}

type Option[T any] func(*Store[T])

// WithClock replaces time.Now.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(s *Store[T]) { s.now = now }
}

// WithCloner copies values on the way in and out so callers never share cached data.
func WithCloner[T any](clone func(T) T) Option[T] {
	return func(s *Store[T]) { s.clone = clone }
}

func WithLogger[T any](log logger.Logger) Option[T] {
	return func(s *Store[T]) { s.logger = log }
}

func WithSweepInterval[T any](d time.Duration) Option[T] {
	return func(s *Store[T]) { s.sweepInterval = d }
}

func NewStore[T any](maxSize int, ttl time.Duration, opts ...Option[T]) *Store[T] {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &Store[T]{
		entries:       make(map[string]*entry[T]),
		maxSize:       maxSize,
		ttl:           ttl,
		sweepInterval: DefaultSweepInterval,
		now:           time.Now,
		clone:         func(v T) T { return v },
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the live value for key and bumps its access time.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}

	now := s.now()
	if now.After(e.expiresAt) {
		delete(s.entries, key)
		return zero, false
	}

	e.lastAccessed = now
	return s.clone(e.data), true
}

// Set stores value under key, evicting the least recently accessed entry when full.
func (s *Store[T]) Set(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxSize {
		s.evictLRU()
	}

	now := s.now()
	s.entries[key] = &entry[T]{
		data:         s.clone(value),
		createdAt:    now,
		lastAccessed: now,
		expiresAt:    now.Add(s.ttl),
	}
}

func (s *Store[T]) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*entry[T])
}

// Sweep removes every expired entry and returns how many were dropped.
func (s *Store[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *Store[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expired := 0
	for _, e := range s.entries {
		if now.After(e.expiresAt) {
			expired++
		}
	}

	return Stats{
		TotalEntries:   len(s.entries),
		ActiveEntries:  len(s.entries) - expired,
		ExpiredEntries: expired,
		MaxSize:        s.maxSize,
		TTLMs:          s.ttl.Milliseconds(),
	}
}

// evictLRU must be called with mu held.
func (s *Store[T]) evictLRU() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for key, e := range s.entries {
		if !found || e.lastAccessed.Before(oldest) {
			oldestKey, oldest, found = key, e.lastAccessed, true
		}
	}
	if found {
		delete(s.entries, oldestKey)
	}
}

// StartSweeper schedules Sweep every sweep interval until Stop is called.
func (s *Store[T]) StartSweeper() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		return nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create cache sweep scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.sweepInterval),
		gocron.NewTask(func() {
			if removed := s.Sweep(); removed > 0 {
				s.logger.Debug("Swept expired cache entries", "removed", removed)
			}
		}),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule cache sweep: %w", err)
	}

	scheduler.Start()
	s.scheduler = scheduler
	return nil
}

// Stop shuts the sweeper down. It is safe to call when the sweeper never started.
func (s *Store[T]) Stop() error {
	s.mu.Lock()
	scheduler := s.scheduler
	s.scheduler = nil
	s.mu.Unlock()

	if scheduler == nil {
		return nil
	}
	if err := scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop cache sweep scheduler: %w", err)
	}
	return nil
}
