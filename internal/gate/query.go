package gate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shivenk/gatepass/internal/model"
)

// searchDateLayout is the guard-facing date format for date searches.
const searchDateLayout = "02/01/2006"

// entryDateLayout formats the derived entry_date on recent visits.
const entryDateLayout = "02-01-2006"

// defaultRecentLimit caps RecentForContact when no limit is given.
const defaultRecentLimit = 3

// Query serves read-only views over the entry log: full paginated
// listings, the "currently inside" population and field-filtered
// searches. It never mutates entries. Both the paginated and the
// inside-only paths share one Filter built by buildFilter, so field
// semantics cannot drift between them.
type Query struct {
	store EntryStore
	loc   *time.Location
}

// NewQuery returns a Query interpreting date searches in the given
// checkpoint time zone.
func NewQuery(store EntryStore, loc *time.Location) *Query {
	return &Query{store: store, loc: loc}
}

// ListAll returns one page of entries ordered by in_time descending,
// plus the unfiltered total for pagination UI. Pages are 1-based; a
// page beyond the last yields an empty slice and the correct total.
func (q *Query) ListAll(ctx context.Context, page, pageSize int) ([]model.Entry, int, error) {
	p, err := makePage(page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return q.store.List(ctx, Filter{}, p)
}

// ListOpen returns every entry whose visitor is still inside,
// most-recent-first.
func (q *Query) ListOpen(ctx context.Context) ([]model.Entry, error) {
	return q.store.ListOpen(ctx, Filter{})
}

// Search returns one page of entries matching a case-insensitive
// substring of the given field (or, for the date field, falling on the
// given DD/MM/YYYY local day), with the same ordering and pagination
// contract as ListAll. A malformed date fails with ErrValidation; no
// matches is an empty result, not an error.
func (q *Query) Search(ctx context.Context, field Field, pattern string, page, pageSize int) ([]model.Entry, int, error) {
	p, err := makePage(page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	f, err := q.buildFilter(field, pattern)
	if err != nil {
		return nil, 0, err
	}
	return q.store.List(ctx, f, p)
}

// SearchOpen is Search restricted to open entries, unpaginated: the
// currently-inside population is small by nature.
func (q *Query) SearchOpen(ctx context.Context, field Field, pattern string) ([]model.Entry, error) {
	f, err := q.buildFilter(field, pattern)
	if err != nil {
		return nil, err
	}
	return q.store.ListOpen(ctx, f)
}

// RecentForContact returns the most recent visits for a phone number,
// newest first, each annotated with a formatted entry_date. It backs
// the prefill of a returning visitor's destination and reason.
func (q *Query) RecentForContact(ctx context.Context, contactNo string, limit int) ([]model.RecentVisit, error) {
	contactNo = strings.TrimSpace(contactNo)
	if contactNo == "" {
		return nil, fmt.Errorf("%w: contact_no is required", ErrValidation)
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	entries, err := q.store.RecentByContact(ctx, contactNo, limit)
	if err != nil {
		return nil, err
	}
	visits := make([]model.RecentVisit, 0, len(entries))
	for _, e := range entries {
		visits = append(visits, model.RecentVisit{
			EntryID:     e.EntryID,
			Destination: e.Destination,
			Reason:      e.Reason,
			VehicleType: e.VehicleType,
			VehicleNo:   e.VehicleNo,
			EntryDate:   e.InTime.In(q.loc).Format(entryDateLayout),
		})
	}
	return visits, nil
}

// LatestEntryForContact returns the most recent entry for a phone
// number, or nil when the number has never been through the gate. It
// backs the visitor-details prefill of name and vehicle.
func (q *Query) LatestEntryForContact(ctx context.Context, contactNo string) (*model.Entry, error) {
	contactNo = strings.TrimSpace(contactNo)
	if contactNo == "" {
		return nil, fmt.Errorf("%w: contact_no is required", ErrValidation)
	}
	entries, err := q.store.RecentByContact(ctx, contactNo, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// ParseField maps a request parameter onto a search Field.
func ParseField(s string) (Field, error) {
	switch Field(strings.ToLower(strings.TrimSpace(s))) {
	case FieldID:
		return FieldID, nil
	case FieldName:
		return FieldName, nil
	case FieldContact:
		return FieldContact, nil
	case FieldDate:
		return FieldDate, nil
	default:
		return FieldNone, fmt.Errorf("%w: unknown search field %q", ErrValidation, s)
	}
}

// buildFilter turns a field/pattern pair into the store filter. Date
// patterns are parsed as DD/MM/YYYY and widened to the half-open local
// day window so every time-of-day on that date matches and nothing from
// adjacent days does.
func (q *Query) buildFilter(field Field, pattern string) (Filter, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return Filter{}, fmt.Errorf("%w: search pattern is required", ErrValidation)
	}
	switch field {
	case FieldID, FieldName, FieldContact:
		return Filter{Field: field, Pattern: strings.ToLower(pattern)}, nil
	case FieldDate:
		day, err := time.ParseInLocation(searchDateLayout, pattern, q.loc)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: date must be DD/MM/YYYY: %q", ErrValidation, pattern)
		}
		return Filter{Field: FieldDate, DayStart: day, DayEnd: day.AddDate(0, 0, 1)}, nil
	default:
		return Filter{}, fmt.Errorf("%w: unknown search field %q", ErrValidation, string(field))
	}
}

// makePage validates 1-based pagination input and converts it to an
// offset/limit window.
func makePage(page, pageSize int) (Page, error) {
	if page < 1 {
		return Page{}, fmt.Errorf("%w: page must be >= 1", ErrValidation)
	}
	if pageSize < 1 {
		return Page{}, fmt.Errorf("%w: page_size must be >= 1", ErrValidation)
	}
	return Page{Offset: (page - 1) * pageSize, Limit: pageSize}, nil
}
