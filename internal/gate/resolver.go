package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// maxResolveAttempts bounds the compare-and-set retry loop when the
// store reports a racing mutation.
const maxResolveAttempts = 3

// Selector identifies the entry an exit request should close. Exactly
// one field must be set: the entry identifier, the vehicle plate or the
// phone number.
type Selector struct {
	EntryID   string `json:"entry_id"`
	VehicleNo string `json:"vehicle_no"`
	ContactNo string `json:"contact_no"`
}

// field maps the selector onto a store column, rejecting empty and
// ambiguous selectors.
func (s Selector) field() (SelectorField, string, error) {
	var (
		f   SelectorField
		v   string
		set int
	)
	if t := strings.TrimSpace(s.EntryID); t != "" {
		f, v, set = SelectByEntryID, t, set+1
	}
	if t := strings.TrimSpace(s.VehicleNo); t != "" {
		f, v, set = SelectByVehicle, t, set+1
	}
	if t := strings.TrimSpace(s.ContactNo); t != "" {
		f, v, set = SelectByContact, t, set+1
	}
	switch set {
	case 0:
		return "", "", fmt.Errorf("%w: provide entry_id, vehicle_no or contact_no", ErrValidation)
	case 1:
		return f, v, nil
	default:
		return "", "", fmt.Errorf("%w: provide exactly one of entry_id, vehicle_no or contact_no", ErrValidation)
	}
}

// Resolver matches a guard-supplied exit signal back to the single open
// entry it should close.
//
// Matching by entry_id is exact and unambiguous. Matching by vehicle or
// contact can hit several open entries (repeat visitors sharing a plate
// or phone); the recency policy picks the one with the latest in_time,
// modelling "the last person who hasn't checked out with this phone or
// plate is the one checking out now". Selection and close happen as one
// atomic store operation so two concurrent exits never both succeed on
// the same entry.
type Resolver struct {
	store EntryStore
	now   func() time.Time
}

// NewResolver returns a Resolver over the given store.
func NewResolver(store EntryStore) *Resolver {
	return &Resolver{store: store, now: time.Now}
}

// ResolveExit closes the entry the selector points at, stamping the
// given out_time (zero means "now"). It reports false, with no error,
// when no open entry matches: a routine mismatch, not a system failure.
// When the store keeps reporting ErrConflict the bounded retry gives up
// with ErrStorageUnavailable.
func (r *Resolver) ResolveExit(ctx context.Context, sel Selector, outTime time.Time) (bool, error) {
	field, value, err := sel.field()
	if err != nil {
		return false, err
	}
	if outTime.IsZero() {
		outTime = r.now()
	}

	var lastErr error
	for attempt := 0; attempt < maxResolveAttempts; attempt++ {
		var (
			closed bool
			err    error
		)
		if field == SelectByEntryID {
			closed, err = r.store.CloseByID(ctx, value, outTime)
		} else {
			closed, err = r.store.CloseLatestOpenBy(ctx, field, value, outTime)
		}
		if err == nil {
			return closed, nil
		}
		if !errors.Is(err, ErrConflict) {
			return false, err
		}
		lastErr = err
	}
	return false, fmt.Errorf("resolve exit by %s: retries exhausted: %w (%v)", field, ErrStorageUnavailable, lastErr)
}
