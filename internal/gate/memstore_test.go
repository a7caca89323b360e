package gate

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shivenk/gatepass/internal/model"
)

// memStore is an in-memory EntryStore used by the core tests. It keeps
// the same atomicity guarantees as the MySQL repository (one mutex
// around every mutation) so lifecycle semantics can be exercised
// without a database.
type memStore struct {
	mu      sync.Mutex
	entries []model.Entry
	seqs    map[string]int

	// failWith, when set, makes every call fail with that error.
	failWith error
	// conflictsLeft makes conditional closes fail with ErrConflict
	// until it reaches zero.
	conflictsLeft int
}

func newMemStore() *memStore {
	return &memStore{seqs: make(map[string]int)}
}

func (s *memStore) Insert(_ context.Context, e *model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.entries = append(s.entries, *e)
	return nil
}

func (s *memStore) GetByID(_ context.Context, entryID string) (*model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	for i := range s.entries {
		if s.entries[i].EntryID == entryID {
			e := s.entries[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (s *memStore) NextDailySequence(_ context.Context, dateKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	s.seqs[dateKey]++
	return s.seqs[dateKey], nil
}

func (s *memStore) CloseByID(_ context.Context, entryID string, outTime time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	if s.conflictsLeft > 0 {
		s.conflictsLeft--
		return false, ErrConflict
	}
	for i := range s.entries {
		if s.entries[i].EntryID == entryID && s.entries[i].OutTime == nil {
			t := outTime
			s.entries[i].OutTime = &t
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CloseLatestOpenBy(_ context.Context, field SelectorField, value string, outTime time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	if s.conflictsLeft > 0 {
		s.conflictsLeft--
		return false, ErrConflict
	}
	best := -1
	for i := range s.entries {
		e := &s.entries[i]
		if e.OutTime != nil {
			continue
		}
		var match bool
		switch field {
		case SelectByVehicle:
			match = e.VehicleNo != nil && *e.VehicleNo == value
		case SelectByContact:
			match = e.ContactNo == value
		case SelectByEntryID:
			match = e.EntryID == value
		}
		if !match {
			continue
		}
		if best == -1 || e.InTime.After(s.entries[best].InTime) {
			best = i
		}
	}
	if best == -1 {
		return false, nil
	}
	t := outTime
	s.entries[best].OutTime = &t
	return true, nil
}

func (s *memStore) AppendRemark(_ context.Context, entryID, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	for i := range s.entries {
		if s.entries[i].EntryID == entryID {
			joined := token
			if s.entries[i].Remarks != nil {
				joined = strings.TrimSpace(*s.entries[i].Remarks + " " + token)
			}
			s.entries[i].Remarks = &joined
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) List(_ context.Context, f Filter, p Page) ([]model.Entry, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, 0, s.failWith
	}
	matched := s.filtered(f, false)
	total := len(matched)
	if p.Offset >= total {
		return []model.Entry{}, total, nil
	}
	end := p.Offset + p.Limit
	if end > total {
		end = total
	}
	return matched[p.Offset:end], total, nil
}

func (s *memStore) ListOpen(_ context.Context, f Filter) ([]model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.filtered(f, true), nil
}

func (s *memStore) RecentByContact(_ context.Context, contactNo string, limit int) ([]model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := make([]model.Entry, 0)
	for _, e := range s.entries {
		if e.ContactNo == contactNo {
			out = append(out, e)
		}
	}
	sortByInTimeDesc(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// filtered returns matching entries sorted newest first. Callers hold
// the mutex.
func (s *memStore) filtered(f Filter, openOnly bool) []model.Entry {
	out := make([]model.Entry, 0)
	for _, e := range s.entries {
		if openOnly && e.OutTime != nil {
			continue
		}
		if matchFilter(f, e) {
			out = append(out, e)
		}
	}
	sortByInTimeDesc(out)
	return out
}

func matchFilter(f Filter, e model.Entry) bool {
	switch f.Field {
	case FieldID:
		return strings.Contains(strings.ToLower(e.EntryID), f.Pattern)
	case FieldName:
		return strings.Contains(strings.ToLower(e.Name), f.Pattern)
	case FieldContact:
		return strings.Contains(strings.ToLower(e.ContactNo), f.Pattern)
	case FieldDate:
		return !e.InTime.Before(f.DayStart) && e.InTime.Before(f.DayEnd)
	default:
		return true
	}
}

func sortByInTimeDesc(entries []model.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].InTime.After(entries[j].InTime)
	})
}
