package gate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shivenk/gatepass/internal/model"
)

// EntryInput carries the guard-supplied fields for a new entry. Vehicle
// fields and remarks are optional; head-counts default to zero.
type EntryInput struct {
	Name        string  `json:"name"`
	ContactNo   string  `json:"contact_no"`
	Destination string  `json:"destination"`
	Reason      string  `json:"reason"`
	VehicleType string  `json:"vehicle_type"`
	VehicleNo   *string `json:"vehicle_no"`
	NoDriver    int     `json:"no_driver"`
	NoStudent   int     `json:"no_student"`
	NoVisitor   int     `json:"no_visitor"`
	Remarks     *string `json:"remarks"`
}

// Lifecycle creates entries and transitions them from open to closed.
// It owns the derived no_person invariant and the idempotent close
// guard; it allocates identifiers through the Allocator and holds no
// state of its own between calls.
type Lifecycle struct {
	store EntryStore
	alloc *Allocator
	loc   *time.Location
	now   func() time.Time
}

// NewLifecycle returns a Lifecycle stamping in_time values in the given
// checkpoint time zone.
func NewLifecycle(store EntryStore, alloc *Allocator, loc *time.Location) *Lifecycle {
	return &Lifecycle{store: store, alloc: alloc, loc: loc, now: time.Now}
}

// CreateEntry validates the input, allocates an identifier, stamps
// in_time and persists the new open entry, returning the full record.
// Destination and reason must be non-empty and head-counts non-negative
// (ErrValidation otherwise). On a persistence failure nothing is
// created and ErrStorageUnavailable is surfaced.
func (l *Lifecycle) CreateEntry(ctx context.Context, in EntryInput) (*model.Entry, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.ContactNo = strings.TrimSpace(in.ContactNo)
	in.Destination = strings.TrimSpace(in.Destination)
	in.Reason = strings.TrimSpace(in.Reason)

	if in.Destination == "" {
		return nil, fmt.Errorf("%w: destination is required", ErrValidation)
	}
	if in.Reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrValidation)
	}
	if in.NoDriver < 0 || in.NoStudent < 0 || in.NoVisitor < 0 {
		return nil, fmt.Errorf("%w: head-counts must be non-negative", ErrValidation)
	}
	if in.VehicleType == "" {
		in.VehicleType = "none"
	}

	now := l.now().In(l.loc)
	id, err := l.alloc.AllocateID(ctx, now)
	if err != nil {
		return nil, err
	}

	e := &model.Entry{
		EntryID:     id,
		Name:        in.Name,
		ContactNo:   in.ContactNo,
		Destination: in.Destination,
		Reason:      in.Reason,
		VehicleType: in.VehicleType,
		VehicleNo:   in.VehicleNo,
		InTime:      now,
		NoDriver:    in.NoDriver,
		NoStudent:   in.NoStudent,
		NoVisitor:   in.NoVisitor,
		// no_person is derived here and nowhere else; it is never
		// independently settable.
		NoPerson: in.NoDriver + in.NoStudent + in.NoVisitor,
		Remarks:  in.Remarks,
	}
	if err := l.store.Insert(ctx, e); err != nil {
		return nil, fmt.Errorf("create entry %s: %w", id, err)
	}
	return e, nil
}

// CloseEntry sets out_time on the named entry only if it is still open.
// It reports false, with no error, when the entry does not exist or was
// already closed: closing twice is a no-op, never a double transition.
// A zero outTime means "now".
func (l *Lifecycle) CloseEntry(ctx context.Context, entryID string, outTime time.Time) (bool, error) {
	if strings.TrimSpace(entryID) == "" {
		return false, fmt.Errorf("%w: entry_id is required", ErrValidation)
	}
	if outTime.IsZero() {
		outTime = l.now()
	}
	return l.store.CloseByID(ctx, entryID, outTime.In(l.loc))
}

// Annotate appends a token to the entry's remarks, space separated,
// leaving every other field untouched. It is how a guard flags a
// user-correctable mistake (e.g. WRONG_ENTRY) without deleting the
// audit record. Reports false when no entry with that id exists.
func (l *Lifecycle) Annotate(ctx context.Context, entryID, token string) (bool, error) {
	if strings.TrimSpace(entryID) == "" {
		return false, fmt.Errorf("%w: entry_id is required", ErrValidation)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return false, fmt.Errorf("%w: remark text is required", ErrValidation)
	}
	return l.store.AppendRemark(ctx, entryID, token)
}
