package grid

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weektally/weektally/internal/utils"
	"github.com/weektally/weektally/pkg/timesheet"
	"github.com/weektally/weektally/pkg/week"
)

// setupController starts a controller over an in-memory cache and remote
// stub, pinned to the week of Wednesday 2024-02-07 (Monday 2024-02-05).
func setupController(t *testing.T, remote *remoteStub, threshold float64) *Controller {
	t.Helper()
	clock := &utils.MockClock{FixedNow: time.Date(2024, 2, 7, 10, 0, 0, 0, time.UTC)}
	store := NewStore(NewMemoryCache(), remote, time.Hour)
	controller := NewController(store, clock, threshold)
	controller.Start(context.Background())
	require.Equal(t, StateReady, controller.State())
	return controller
}

func mustWeek(t *testing.T, s string) week.Key {
	t.Helper()
	key, err := week.ParseKey(s)
	require.NoError(t, err)
	return key
}

func TestController_Start(t *testing.T) {
	t.Run("starts on the clock's week with a seeded blank row", func(t *testing.T) {
		controller := setupController(t, newRemoteStub(), 0)

		assert.Equal(t, mustWeek(t, "2024-02-05"), controller.Week())
		rows := controller.Rows()
		require.Len(t, rows, 1)
		assert.Equal(t, timesheet.BlankRow(), rows[0])
		assert.Equal(t, Totals{}, controller.Totals())
	})

	t.Run("loads the remote document for the current week", func(t *testing.T) {
		remote := newRemoteStub()
		remote.docs[mustWeek(t, "2024-02-05")] = sampleDocument()
		controller := setupController(t, remote, 0)

		rows := controller.Rows()
		require.Len(t, rows, 1)
		assert.Equal(t, "Platform", rows[0].ProjectName)
		assert.Equal(t, 12.0, controller.Totals().Overall)
	})
}

func TestController_Rows(t *testing.T) {
	t.Run("adding rows grows the grid", func(t *testing.T) {
		controller := setupController(t, newRemoteStub(), 0)

		controller.AddRow()
		controller.AddRow()

		assert.Len(t, controller.Rows(), 3)
	})

	t.Run("row 0 cannot be removed", func(t *testing.T) {
		controller := setupController(t, newRemoteStub(), 0)
		controller.AddRow()

		controller.RemoveRow(0)

		assert.Len(t, controller.Rows(), 2)
	})

	t.Run("removing a row updates totals", func(t *testing.T) {
		controller := setupController(t, newRemoteStub(), 0)
		controller.AddRow()
		require.NoError(t, controller.EditCell(0, "hours.mon", 3.0))
		require.NoError(t, controller.EditCell(1, "hours.mon", 4.0))
		require.Equal(t, 7.0, controller.Totals().Mon)

		controller.RemoveRow(1)

		assert.Len(t, controller.Rows(), 1)
		assert.Equal(t, 3.0, controller.Totals().Mon)
	})

	t.Run("out-of-range removal is a no-op", func(t *testing.T) {
		controller := setupController(t, newRemoteStub(), 0)

		controller.RemoveRow(5)
		controller.RemoveRow(-1)

		assert.Len(t, controller.Rows(), 1)
	})
}

func TestController_EditCell(t *testing.T) {
	t.Run("an hour edit recomputes row and grid totals", func(t *testing.T) {
		controller := setupController(t, newRemoteStub(), 0)
		controller.AddRow()

		require.NoError(t, controller.EditCell(1, "hours.tue", 5.0))

		rows := controller.Rows()
		assert.Equal(t, 5.0, rows[1].Hours.Tue)
		assert.Equal(t, 5.0, rows[1].Total)
		assert.Equal(t, 5.0, controller.Totals().Tue)
		assert.Equal(t, 5.0, controller.Totals().Overall)
	})

	t.Run("negative hours clamp to zero", func(t *testing.T) {
		controller := setupController(t, newRemoteStub(), 0)
		require.NoError(t, controller.EditCell(0, "hours.mon", 6.0))

		require.NoError(t, controller.EditCell(0, "hours.mon", -2.0))

		assert.Equal(t, 0.0, controller.Rows()[0].Hours.Mon)
		assert.Equal(t, 0.0, controller.Totals().Overall)
	})

	t.Run("integer hour values are accepted", func(t *testing.T) {
		controller := setupController(t, newRemoteStub(), 0)

		require.NoError(t, controller.EditCell(0, "hours.fri", 3))

		assert.Equal(t, 3.0, controller.Rows()[0].Hours.Fri)
	})

	t.Run("text fields update in place", func(t *testing.T) {
		controller := setupController(t, newRemoteStub(), 0)

		require.NoError(t, controller.EditCell(0, "projectName", "Platform"))
		require.NoError(t, controller.EditCell(0, "task", "Build & Run"))

		rows := controller.Rows()
		assert.Equal(t, "Platform", rows[0].ProjectName)
		assert.Equal(t, "Build & Run", rows[0].Task)
	})

	t.Run("a blank text edit is rejected and the prior value stays", func(t *testing.T) {
		controller := setupController(t, newRemoteStub(), 0)
		require.NoError(t, controller.EditCell(0, "comment", "keep me"))

		err := controller.EditCell(0, "comment", "   ")

		require.ErrorIs(t, err, ErrEmptyValue)
		assert.Equal(t, "keep me", controller.Rows()[0].Comment)
	})

	t.Run("rejects an unknown row index", func(t *testing.T) {
		controller := setupController(t, newRemoteStub(), 0)

		err := controller.EditCell(7, "comment", "nope")

		require.ErrorIs(t, err, ErrNoSuchRow)
	})

	t.Run("rejects a non-numeric hour value", func(t *testing.T) {
		controller := setupController(t, newRemoteStub(), 0)

		err := controller.EditCell(0, "hours.mon", "eight")

		require.Error(t, err)
		assert.Equal(t, 0.0, controller.Rows()[0].Hours.Mon)
	})

	t.Run("rejects an unknown field", func(t *testing.T) {
		controller := setupController(t, newRemoteStub(), 0)

		require.Error(t, controller.EditCell(0, "hours.weekend", 1.0))
		require.Error(t, controller.EditCell(0, "color", "red"))
	})
}

func TestController_Overloaded(t *testing.T) {
	t.Run("flags a row once a day reaches the threshold", func(t *testing.T) {
		controller := setupController(t, newRemoteStub(), 0)

		require.NoError(t, controller.EditCell(0, "hours.wed", 7.5))
		assert.False(t, controller.Overloaded(0))

		require.NoError(t, controller.EditCell(0, "hours.wed", 8.0))
		assert.True(t, controller.Overloaded(0))
	})

	t.Run("uses the configured threshold", func(t *testing.T) {
		controller := setupController(t, newRemoteStub(), 5)

		require.NoError(t, controller.EditCell(0, "hours.mon", 5.0))

		assert.True(t, controller.Overloaded(0))
	})

	t.Run("unknown index is never flagged", func(t *testing.T) {
		controller := setupController(t, newRemoteStub(), 0)

		assert.False(t, controller.Overloaded(3))
	})
}

func TestController_OnChange(t *testing.T) {
	remote := newRemoteStub()
	clock := &utils.MockClock{FixedNow: time.Date(2024, 2, 7, 10, 0, 0, 0, time.UTC)}
	store := NewStore(NewMemoryCache(), remote, time.Hour)
	controller := NewController(store, clock, 0)

	var changes atomic.Int64
	controller.OnChange(func() { changes.Add(1) })

	controller.Start(context.Background())
	require.NoError(t, controller.EditCell(0, "hours.mon", 2.0))
	controller.AddRow()
	controller.RemoveRow(1)

	assert.Equal(t, int64(4), changes.Load())
}

func TestController_NavigateWeek(t *testing.T) {
	t.Run("moves to the adjacent week and loads it", func(t *testing.T) {
		remote := newRemoteStub()
		next := sampleDocument()
		next[0].ProjectName = "Next Week"
		remote.docs[mustWeek(t, "2024-02-12")] = next
		controller := setupController(t, remote, 0)

		controller.NavigateWeek(context.Background(), 1)

		assert.Equal(t, mustWeek(t, "2024-02-12"), controller.Week())
		require.Eventually(t, func() bool {
			return controller.State() == StateReady
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, "Next Week", controller.Rows()[0].ProjectName)
	})

	t.Run("a stale load never overwrites a later navigation", func(t *testing.T) {
		remote := newRemoteStub()
		remote.delay = 30 * time.Millisecond
		remote.docs[mustWeek(t, "2024-02-12")] = timesheet.Document{{ProjectName: "W1"}}
		remote.docs[mustWeek(t, "2024-02-19")] = timesheet.Document{{ProjectName: "W2"}}
		controller := setupController(t, remote, 0)

		controller.NavigateWeek(context.Background(), 1)
		controller.NavigateWeek(context.Background(), 1)

		assert.Equal(t, mustWeek(t, "2024-02-19"), controller.Week())
		require.Eventually(t, func() bool {
			return controller.State() == StateReady
		}, time.Second, 5*time.Millisecond)

		// Give the slower first load time to resolve and be discarded.
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, "W2", controller.Rows()[0].ProjectName)
		assert.Equal(t, mustWeek(t, "2024-02-19"), controller.Week())
	})

	t.Run("mutations during a week load are rejected", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: time.Date(2024, 2, 7, 10, 0, 0, 0, time.UTC)}
		remote := newRemoteStub()
		store := NewStore(NewMemoryCache(), remote, time.Millisecond)
		controller := NewController(store, clock, 0)
		controller.Start(context.Background())
		require.NoError(t, controller.EditCell(0, "projectName", "Alpha"))

		remote.delay = 60 * time.Millisecond
		controller.NavigateWeek(context.Background(), 1)
		require.Equal(t, StateLoading, controller.State())

		err := controller.EditCell(0, "comment", "stray edit")
		require.ErrorIs(t, err, ErrNotReady)
		controller.AddRow()
		require.ErrorIs(t, controller.Commit(context.Background()), ErrNotReady)
		assert.Equal(t, StateLoading, controller.State())

		require.Eventually(t, func() bool {
			return controller.State() == StateReady
		}, time.Second, 5*time.Millisecond)

		// The new week arrives untouched: the rejected AddRow did not grow
		// it and the outgoing week's rows did not leak in.
		rows := controller.Rows()
		require.Len(t, rows, 1)
		assert.Equal(t, "", rows[0].ProjectName)
	})

	t.Run("a failed load never stores the outgoing week's rows under the new key", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: time.Date(2024, 2, 7, 10, 0, 0, 0, time.UTC)}
		cache := NewMemoryCache()
		remote := newRemoteStub()
		store := NewStore(cache, remote, time.Millisecond)
		controller := NewController(store, clock, 0)
		controller.Start(context.Background())
		require.NoError(t, controller.EditCell(0, "projectName", "Alpha"))

		remote.delay = 40 * time.Millisecond
		remote.fetchErr = errors.New("service unavailable")
		controller.NavigateWeek(context.Background(), 1)
		require.ErrorIs(t, controller.EditCell(0, "comment", "stray edit"), ErrNotReady)

		require.Eventually(t, func() bool {
			return controller.State() == StateReady
		}, time.Second, 5*time.Millisecond)

		_, found, err := cache.Get(mustWeek(t, "2024-02-12"))
		require.NoError(t, err)
		assert.False(t, found)

		docA, foundA, err := cache.Get(mustWeek(t, "2024-02-05"))
		require.NoError(t, err)
		require.True(t, foundA)
		assert.Equal(t, "Alpha", docA[0].ProjectName)
	})

	t.Run("navigating back returns to the original week", func(t *testing.T) {
		controller := setupController(t, newRemoteStub(), 0)

		controller.NavigateWeek(context.Background(), 1)
		require.Eventually(t, func() bool {
			return controller.State() == StateReady
		}, time.Second, 5*time.Millisecond)
		controller.NavigateWeek(context.Background(), -1)
		require.Eventually(t, func() bool {
			return controller.State() == StateReady
		}, time.Second, 5*time.Millisecond)

		assert.Equal(t, mustWeek(t, "2024-02-05"), controller.Week())
	})
}

func TestController_Commit(t *testing.T) {
	t.Run("pushes the current rows to the remote service", func(t *testing.T) {
		remote := newRemoteStub()
		controller := setupController(t, remote, 0)
		require.NoError(t, controller.EditCell(0, "projectName", "Platform"))
		require.NoError(t, controller.EditCell(0, "hours.mon", 8.0))

		require.NoError(t, controller.Commit(context.Background()))

		assert.Equal(t, 1, remote.upsertCount())
		stored := remote.docs[mustWeek(t, "2024-02-05")]
		require.Len(t, stored, 1)
		assert.Equal(t, "Platform", stored[0].ProjectName)
		assert.Equal(t, 8.0, stored[0].Hours.Mon)
	})
}
