package gate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLifecycle wires a lifecycle over a fresh memStore with a
// controllable clock starting at base.
func newTestLifecycle(base time.Time) (*Lifecycle, *memStore, *time.Time) {
	store := newMemStore()
	alloc := NewAllocator(store, testZone)
	l := NewLifecycle(store, alloc, testZone)
	clock := base
	l.now = func() time.Time { return clock }
	return l, store, &clock
}

func validInput() EntryInput {
	return EntryInput{
		Name:        "J",
		ContactNo:   "555",
		Destination: "Lib",
		Reason:      "R",
		NoStudent:   2,
		NoVisitor:   1,
	}
}

func TestCreateEntryComputesNoPerson(t *testing.T) {
	l, _, _ := newTestLifecycle(time.Date(2023, 11, 9, 10, 0, 0, 0, testZone))

	e, err := l.CreateEntry(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, 3, e.NoPerson)
	assert.Equal(t, e.NoDriver+e.NoStudent+e.NoVisitor, e.NoPerson)
	assert.Nil(t, e.OutTime, "new entries start open")
	assert.Equal(t, "none", e.VehicleType, "vehicle type defaults for walk-ins")
}

func TestCreateEntryValidation(t *testing.T) {
	l, _, _ := newTestLifecycle(time.Now())

	cases := []struct {
		name string
		mut  func(*EntryInput)
	}{
		{"missing destination", func(in *EntryInput) { in.Destination = "  " }},
		{"missing reason", func(in *EntryInput) { in.Reason = "" }},
		{"negative driver count", func(in *EntryInput) { in.NoDriver = -1 }},
		{"negative student count", func(in *EntryInput) { in.NoStudent = -2 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mut(&in)
			_, err := l.CreateEntry(context.Background(), in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateEntryNothingPersistedOnFailure(t *testing.T) {
	l, store, _ := newTestLifecycle(time.Now())
	store.failWith = ErrStorageUnavailable

	_, err := l.CreateEntry(context.Background(), validInput())
	require.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Empty(t, store.entries)
}

func TestCreateEntryIDsUniqueAndIncreasing(t *testing.T) {
	base := time.Date(2023, 11, 9, 8, 0, 0, 0, testZone)
	l, _, clock := newTestLifecycle(base)

	seen := make(map[string]bool)
	var prev string
	for i := 0; i < 50; i++ {
		*clock = base.Add(time.Duration(i) * time.Minute)
		e, err := l.CreateEntry(context.Background(), validInput())
		require.NoError(t, err)
		assert.False(t, seen[e.EntryID], "duplicate id %s", e.EntryID)
		seen[e.EntryID] = true
		assert.Greater(t, e.EntryID, prev, "ids grow in creation order")
		prev = e.EntryID
	}
}

func TestCloseEntryIdempotent(t *testing.T) {
	l, store, _ := newTestLifecycle(time.Date(2023, 11, 9, 10, 0, 0, 0, testZone))

	e, err := l.CreateEntry(context.Background(), validInput())
	require.NoError(t, err)

	out := time.Date(2023, 11, 9, 12, 0, 0, 0, testZone)
	closed, err := l.CloseEntry(context.Background(), e.EntryID, out)
	require.NoError(t, err)
	assert.True(t, closed)

	// Second close is a no-op, not an error, and out_time is untouched.
	closed, err = l.CloseEntry(context.Background(), e.EntryID, out.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, closed)

	got, err := store.GetByID(context.Background(), e.EntryID)
	require.NoError(t, err)
	require.NotNil(t, got.OutTime)
	assert.True(t, got.OutTime.Equal(out))
}

func TestCloseEntryUnknownID(t *testing.T) {
	l, _, _ := newTestLifecycle(time.Now())

	closed, err := l.CloseEntry(context.Background(), "209901010001", time.Now())
	require.NoError(t, err)
	assert.False(t, closed)
}

func TestAnnotateAppends(t *testing.T) {
	l, store, _ := newTestLifecycle(time.Date(2023, 11, 9, 10, 0, 0, 0, testZone))

	e, err := l.CreateEntry(context.Background(), validInput())
	require.NoError(t, err)

	ok, err := l.Annotate(context.Background(), e.EntryID, "WRONG_ENTRY")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Annotate(context.Background(), e.EntryID, "verified")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.GetByID(context.Background(), e.EntryID)
	require.NoError(t, err)
	require.NotNil(t, got.Remarks)
	assert.Equal(t, "WRONG_ENTRY verified", *got.Remarks)
	assert.Nil(t, got.OutTime, "annotation leaves lifecycle state alone")
}

func TestAnnotateUnknownEntry(t *testing.T) {
	l, _, _ := newTestLifecycle(time.Now())

	ok, err := l.Annotate(context.Background(), "209901010001", "WRONG_ENTRY")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAnnotateValidation(t *testing.T) {
	l, _, _ := newTestLifecycle(time.Now())

	_, err := l.Annotate(context.Background(), "", "x")
	require.ErrorIs(t, err, ErrValidation)

	_, err = l.Annotate(context.Background(), "202311090001", "   ")
	require.ErrorIs(t, err, ErrValidation)
}
