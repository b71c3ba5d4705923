// Package dedupe tracks (name, date) identities so that each attendee is
// counted at most once per day.
package dedupe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/okian/rollcall/internal/domain/model"
)

// Policy selects which record survives when several rows share a key.
type Policy string

const (
	// KeepFirst keeps the first-encountered row of each duplicate group.
	KeepFirst Policy = "first"
	// KeepLast keeps the last-encountered row of each duplicate group.
	KeepLast Policy = "last"
)

// ErrUnknownPolicy is returned by ParsePolicy for unsupported values.
var ErrUnknownPolicy = errors.New("unknown dedupe policy")

// ParsePolicy accepts "first" or "last" (case-insensitive); empty means KeepFirst.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(KeepFirst):
		return KeepFirst, nil
	case string(KeepLast):
		return KeepLast, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Key identifies one attendee on one day.
type Key struct {
	Name string
	Date model.Date
}

// KeyOf returns the identity of a record.
func KeyOf(r model.Record) Key { return Key{Name: r.Name, Date: r.Date} }

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key Key) bool

	// Size returns the number of distinct keys recorded.
	Size() int64

	// Reset forgets every recorded key.
	Reset()
}

// inMemoryDeduper implements Deduper with a map. It never evicts: dropping a
// key would let a second row for the same (name, date) through.
type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[Key]struct{}
	sizeHint int
	size     atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[Key]struct{}, d.sizeHint)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key Key) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}
	d.seen[key] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

func (d *inMemoryDeduper) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = make(map[Key]struct{}, d.sizeHint)
	d.size.Store(0)
}

// Apply collapses records sharing a key to one survivor chosen by policy.
// The survivors keep their relative input order.
func Apply(ctx context.Context, d Deduper, policy Policy, records []model.Record) (kept []model.Record, dropped int) {
	n := len(records)
	keep := make([]bool, n)
	visit := func(i int) {
		if d.SeenAndRecord(ctx, KeyOf(records[i])) {
			dropped++
			return
		}
		keep[i] = true
	}
	if policy == KeepLast {
		for i := n - 1; i >= 0; i-- {
			visit(i)
		}
	} else {
		for i := 0; i < n; i++ {
			visit(i)
		}
	}

	kept = make([]model.Record, 0, n-dropped)
	for i, r := range records {
		if keep[i] {
			kept = append(kept, r)
		}
	}
	return kept, dropped
}
