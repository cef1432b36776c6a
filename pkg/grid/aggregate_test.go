package grid

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weektally/weektally/pkg/timesheet"
)

func TestRecompute(t *testing.T) {
	t.Run("sums each day column across rows", func(t *testing.T) {
		totals := Recompute(timesheet.Document{
			{Hours: timesheet.Hours{Mon: 2, Wed: 1}},
			{Hours: timesheet.Hours{Mon: 3, Fri: 4.5}},
		})

		assert.Equal(t, 5.0, totals.Mon)
		assert.Equal(t, 1.0, totals.Wed)
		assert.Equal(t, 4.5, totals.Fri)
		assert.Equal(t, 0.0, totals.Sun)
	})

	t.Run("overall equals the sum of the day totals", func(t *testing.T) {
		rows := timesheet.Document{
			{Hours: timesheet.Hours{Mon: 1.5, Tue: 2, Sun: 0.25}},
			{Hours: timesheet.Hours{Thu: 7, Sat: 3}},
			{Hours: timesheet.Hours{Mon: 0.5}},
		}

		totals := Recompute(rows)

		var sum float64
		for _, day := range timesheet.Days {
			sum += totals.Day(day)
		}
		assert.Equal(t, sum, totals.Overall)
	})

	t.Run("does not depend on row order", func(t *testing.T) {
		rows := timesheet.Document{
			{Hours: timesheet.Hours{Mon: 1, Tue: 2}},
			{Hours: timesheet.Hours{Wed: 3}},
			{Hours: timesheet.Hours{Mon: 4, Sun: 5}},
			{Hours: timesheet.Hours{Fri: 6}},
		}
		expected := Recompute(rows)

		shuffled := append(timesheet.Document(nil), rows...)
		r := rand.New(rand.NewSource(1))
		for i := 0; i < 10; i++ {
			r.Shuffle(len(shuffled), func(a, b int) {
				shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
			})
			assert.Equal(t, expected, Recompute(shuffled))
		}
	})

	t.Run("counts non-finite entries as zero", func(t *testing.T) {
		totals := Recompute(timesheet.Document{
			{Hours: timesheet.Hours{Mon: math.NaN(), Tue: math.Inf(1), Wed: 2}},
		})

		assert.Equal(t, 0.0, totals.Mon)
		assert.Equal(t, 0.0, totals.Tue)
		assert.Equal(t, 2.0, totals.Wed)
		assert.Equal(t, 2.0, totals.Overall)
	})

	t.Run("empty row set yields zero totals", func(t *testing.T) {
		assert.Equal(t, Totals{}, Recompute(nil))
	})
}

func TestOverloaded(t *testing.T) {
	t.Run("flags a row with a day at the threshold", func(t *testing.T) {
		row := timesheet.Row{Hours: timesheet.Hours{Tue: 8}}

		assert.True(t, Overloaded(row, 8))
	})

	t.Run("flags a row with a day above the threshold", func(t *testing.T) {
		row := timesheet.Row{Hours: timesheet.Hours{Sun: 12}}

		assert.True(t, Overloaded(row, 8))
	})

	t.Run("does not flag a row with all days below the threshold", func(t *testing.T) {
		row := timesheet.Row{Hours: timesheet.Hours{Mon: 7.5, Tue: 7.5, Wed: 7.5}}

		assert.False(t, Overloaded(row, 8))
	})

	t.Run("a high weekly total alone does not flag the row", func(t *testing.T) {
		row := timesheet.Row{
			Hours: timesheet.Hours{Mon: 6, Tue: 6, Wed: 6, Thu: 6, Fri: 6, Sat: 6, Sun: 6},
			Total: 42,
		}

		assert.False(t, Overloaded(row, 8))
	})

	t.Run("respects a custom threshold", func(t *testing.T) {
		row := timesheet.Row{Hours: timesheet.Hours{Mon: 5}}

		assert.True(t, Overloaded(row, 5))
		assert.False(t, Overloaded(row, 6))
	})
}
