package gate

import (
	"context"
	"fmt"
	"time"
)

// datePrefixLayout formats the YYYYMMDD part of an entry identifier.
const datePrefixLayout = "20060102"

// Allocator mints entry identifiers of the form YYYYMMDDNNNN: the
// checkpoint-local creation date followed by a 4-digit, 1-based sequence
// that resets each day.
//
// The sequence comes from the store's atomic per-day counter rather than
// from counting existing rows, so concurrent creations within a day can
// never observe the same value and mint duplicates. Skipped numbers are
// possible when a creation fails after its increment; uniqueness and
// monotonicity are what matter, not density.
type Allocator struct {
	store EntryStore
	loc   *time.Location
}

// NewAllocator returns an Allocator minting identifiers in the given
// checkpoint time zone.
func NewAllocator(store EntryStore, loc *time.Location) *Allocator {
	return &Allocator{store: store, loc: loc}
}

// AllocateID returns the next identifier for the calendar day of now.
// It fails with ErrStorageUnavailable when the counter cannot be
// reached; no partial state is left behind.
func (a *Allocator) AllocateID(ctx context.Context, now time.Time) (string, error) {
	prefix := now.In(a.loc).Format(datePrefixLayout)
	seq, err := a.store.NextDailySequence(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("allocate id for %s: %w", prefix, err)
	}
	// %04d widens past 4 digits rather than wrapping on an unusually
	// busy day; IDs stay unique either way.
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}
