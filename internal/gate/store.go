package gate

import (
	"context"
	"time"

	"github.com/shivenk/gatepass/internal/model"
)

// Field names an entry column that search patterns apply to.
type Field string

const (
	// FieldNone means no filter: list everything.
	FieldNone Field = ""
	// FieldID matches a substring of entry_id.
	FieldID Field = "id"
	// FieldName matches a substring of the visitor name.
	FieldName Field = "name"
	// FieldContact matches a substring of the phone number.
	FieldContact Field = "contact_no"
	// FieldDate matches entries whose in_time falls on a given
	// checkpoint-local calendar day.
	FieldDate Field = "date"
)

// SelectorField names the column an exit request selects its entry by.
type SelectorField string

const (
	SelectByEntryID SelectorField = "entry_id"
	SelectByVehicle SelectorField = "vehicle_no"
	SelectByContact SelectorField = "contact_no"
)

// Filter is the single predicate abstraction shared by the paginated and
// the inside-only search paths. For FieldID/FieldName/FieldContact the
// Pattern is matched case-insensitively as a substring. For FieldDate the
// half-open [DayStart, DayEnd) window selects one local calendar day and
// Pattern is ignored. A zero Filter matches every entry.
type Filter struct {
	Field    Field
	Pattern  string
	DayStart time.Time
	DayEnd   time.Time
}

// Page describes an offset/limit window into a descending-by-in_time
// listing. Offset and Limit are expressed in rows, not pages.
type Page struct {
	Offset int
	Limit  int
}

// EntryStore is the persistence contract the core requires. Implementations
// must provide atomic single-row conditional updates: CloseByID,
// CloseLatestOpenBy and AppendRemark either fully apply or report false,
// and two concurrent calls never both transition the same row. All
// listing methods order by in_time descending. Infrastructure failures
// are reported as (or wrapped around) ErrStorageUnavailable; a store that
// cannot make a conditional update atomic reports ErrConflict instead so
// the caller can retry.
type EntryStore interface {
	// Insert persists a fully-populated entry. The write is atomic:
	// on error no partial record exists.
	Insert(ctx context.Context, e *model.Entry) error

	// GetByID returns the entry with the given identifier, or nil when
	// no such entry exists.
	GetByID(ctx context.Context, entryID string) (*model.Entry, error)

	// NextDailySequence atomically increments and returns the 1-based
	// sequence counter for the given YYYYMMDD date key.
	NextDailySequence(ctx context.Context, dateKey string) (int, error)

	// CloseByID sets out_time on the named entry only if it is still
	// open, reporting whether a row actually transitioned.
	CloseByID(ctx context.Context, entryID string, outTime time.Time) (bool, error)

	// CloseLatestOpenBy closes the open entry with the most recent
	// in_time among those matching field=value, as one atomic
	// select-and-update. It reports whether a row transitioned.
	CloseLatestOpenBy(ctx context.Context, field SelectorField, value string, outTime time.Time) (bool, error)

	// AppendRemark appends a space-separated token to the entry's
	// remarks without touching any other field.
	AppendRemark(ctx context.Context, entryID, token string) (bool, error)

	// List returns one page of entries matching the filter plus the
	// total match count for pagination.
	List(ctx context.Context, f Filter, p Page) ([]model.Entry, int, error)

	// ListOpen returns all open entries matching the filter,
	// most-recent-first. The open population is inherently small, so
	// no pagination is applied.
	ListOpen(ctx context.Context, f Filter) ([]model.Entry, error)

	// RecentByContact returns up to limit most recent entries for a
	// phone number.
	RecentByContact(ctx context.Context, contactNo string, limit int) ([]model.Entry, error)
}
