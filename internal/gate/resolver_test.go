package gate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExitSelectorValidation(t *testing.T) {
	r := NewResolver(newMemStore())

	_, err := r.ResolveExit(context.Background(), Selector{}, time.Now())
	require.ErrorIs(t, err, ErrValidation)

	_, err = r.ResolveExit(context.Background(), Selector{EntryID: "x", ContactNo: "555"}, time.Now())
	require.ErrorIs(t, err, ErrValidation)
}

func TestResolveExitByEntryID(t *testing.T) {
	base := time.Date(2023, 11, 9, 10, 0, 0, 0, testZone)
	l, store, _ := newTestLifecycle(base)
	r := NewResolver(store)

	e, err := l.CreateEntry(context.Background(), validInput())
	require.NoError(t, err)

	out := base.Add(2 * time.Hour)
	closed, err := r.ResolveExit(context.Background(), Selector{EntryID: e.EntryID}, out)
	require.NoError(t, err)
	assert.True(t, closed)

	// Already closed: a routine no-op, not an error.
	closed, err = r.ResolveExit(context.Background(), Selector{EntryID: e.EntryID}, out)
	require.NoError(t, err)
	assert.False(t, closed)
}

func TestResolveExitRecencyTieBreak(t *testing.T) {
	base := time.Date(2023, 11, 9, 10, 0, 0, 0, testZone)
	l, store, clock := newTestLifecycle(base)
	r := NewResolver(store)

	plate := "MH12AB1234"
	inA := validInput()
	inA.VehicleNo = &plate
	a, err := l.CreateEntry(context.Background(), inA)
	require.NoError(t, err)

	*clock = base.Add(time.Hour) // B arrives at 11:00
	inB := validInput()
	inB.VehicleNo = &plate
	b, err := l.CreateEntry(context.Background(), inB)
	require.NoError(t, err)

	closed, err := r.ResolveExit(context.Background(), Selector{VehicleNo: plate}, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, closed)

	gotA, err := store.GetByID(context.Background(), a.EntryID)
	require.NoError(t, err)
	gotB, err := store.GetByID(context.Background(), b.EntryID)
	require.NoError(t, err)
	assert.Nil(t, gotA.OutTime, "earlier entry stays open")
	assert.NotNil(t, gotB.OutTime, "most recent entry closes first")
}

func TestResolveExitByContactEndToEnd(t *testing.T) {
	base := time.Date(2023, 11, 9, 10, 0, 0, 0, testZone)
	l, store, _ := newTestLifecycle(base)
	r := NewResolver(store)

	e, err := l.CreateEntry(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, 3, e.NoPerson)

	out := base.Add(90 * time.Minute)
	closed, err := r.ResolveExit(context.Background(), Selector{ContactNo: "555"}, out)
	require.NoError(t, err)
	assert.True(t, closed)

	got, err := store.GetByID(context.Background(), e.EntryID)
	require.NoError(t, err)
	require.NotNil(t, got.OutTime)
	assert.True(t, got.OutTime.Equal(out))

	// The same contact has nothing left to close.
	closed, err = r.ResolveExit(context.Background(), Selector{ContactNo: "555"}, out)
	require.NoError(t, err)
	assert.False(t, closed)
}

func TestResolveExitNoMatch(t *testing.T) {
	r := NewResolver(newMemStore())

	closed, err := r.ResolveExit(context.Background(), Selector{VehicleNo: "DL01XX0000"}, time.Now())
	require.NoError(t, err)
	assert.False(t, closed)
}

func TestResolveExitRetriesConflicts(t *testing.T) {
	base := time.Date(2023, 11, 9, 10, 0, 0, 0, testZone)
	l, store, _ := newTestLifecycle(base)
	r := NewResolver(store)

	_, err := l.CreateEntry(context.Background(), validInput())
	require.NoError(t, err)

	store.conflictsLeft = 2 // succeeds on the final attempt
	closed, err := r.ResolveExit(context.Background(), Selector{ContactNo: "555"}, base.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, closed)
}

func TestResolveExitGivesUpAfterRepeatedConflicts(t *testing.T) {
	base := time.Date(2023, 11, 9, 10, 0, 0, 0, testZone)
	l, store, _ := newTestLifecycle(base)
	r := NewResolver(store)

	_, err := l.CreateEntry(context.Background(), validInput())
	require.NoError(t, err)

	store.conflictsLeft = maxResolveAttempts
	_, err = r.ResolveExit(context.Background(), Selector{ContactNo: "555"}, base.Add(time.Hour))
	require.ErrorIs(t, err, ErrStorageUnavailable)
}
