package gate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkpoint zone used across the core tests; a fixed offset keeps the
// tests independent of the host's tzdata.
var testZone = time.FixedZone("IST", 5*3600+1800)

func TestAllocateIDFormat(t *testing.T) {
	store := newMemStore()
	alloc := NewAllocator(store, testZone)

	now := time.Date(2023, 11, 9, 14, 30, 0, 0, testZone)

	id, err := alloc.AllocateID(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "202311090001", id)

	id, err = alloc.AllocateID(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "202311090002", id)
}

func TestAllocateIDUsesCheckpointDate(t *testing.T) {
	store := newMemStore()
	alloc := NewAllocator(store, testZone)

	// 20:00 UTC on Nov 9 is already Nov 10 at the checkpoint.
	now := time.Date(2023, 11, 9, 20, 0, 0, 0, time.UTC)

	id, err := alloc.AllocateID(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "202311100001", id)
}

func TestAllocateIDResetsDaily(t *testing.T) {
	store := newMemStore()
	alloc := NewAllocator(store, testZone)

	day1 := time.Date(2023, 11, 9, 10, 0, 0, 0, testZone)
	day2 := day1.AddDate(0, 0, 1)

	for i := 0; i < 3; i++ {
		_, err := alloc.AllocateID(context.Background(), day1)
		require.NoError(t, err)
	}
	id, err := alloc.AllocateID(context.Background(), day2)
	require.NoError(t, err)
	assert.Equal(t, "202311100001", id, "sequence restarts at 1 on a new day")
}

func TestAllocateIDStoreFailure(t *testing.T) {
	store := newMemStore()
	store.failWith = ErrStorageUnavailable
	alloc := NewAllocator(store, testZone)

	_, err := alloc.AllocateID(context.Background(), time.Now())
	require.ErrorIs(t, err, ErrStorageUnavailable)
}
