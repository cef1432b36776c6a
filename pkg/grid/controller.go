package grid

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/weektally/weektally/internal/utils"
	"github.com/weektally/weektally/pkg/timesheet"
	"github.com/weektally/weektally/pkg/week"
)

// State is the grid's editing lifecycle state.
type State int

const (
	StateLoading State = iota
	StateReady
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateEditing:
		return "editing"
	}
	return "unknown"
}

var (
	ErrEmptyValue = errors.New("text field value must not be blank")
	ErrNoSuchRow  = errors.New("no such row")
	ErrNotReady   = errors.New("grid is not ready for edits")
)

// Controller mediates user edits on a single week's grid: cell edits, row
// add/remove, week navigation, commit, and CSV export. Every mutation
// triggers a full re-aggregation of totals and a debounced save through the
// store.
type Controller struct {
	store     *Store
	clock     utils.Clock
	threshold float64
	onChange  func()

	mu         sync.Mutex
	state      State
	key        week.Key
	rows       timesheet.Document
	totals     Totals
	generation uint64 // latest requested week token; stale loads are discarded
}

func NewController(store *Store, clock utils.Clock, threshold float64) *Controller {
	if threshold <= 0 {
		threshold = DefaultOverloadThreshold
	}
	return &Controller{
		store:     store,
		clock:     clock,
		threshold: threshold,
		state:     StateLoading,
		key:       week.KeyOf(clock.Now()),
	}
}

// OnChange registers a callback invoked after every applied state change,
// for the rendering layer to re-draw. Must be set before Start.
func (c *Controller) OnChange(fn func()) {
	c.onChange = fn
}

// Start loads the current week synchronously and enters Ready.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	key := c.key
	c.mu.Unlock()

	doc := c.store.Load(ctx, key)

	c.mu.Lock()
	c.rows = doc
	c.totals = Recompute(c.rows)
	c.state = StateReady
	c.mu.Unlock()
	c.notify()
}

// EditCell applies a single cell edit. Text fields (projectType,
// projectName, task, comment) take a string and reject blank values, leaving
// the prior value in place. Hour fields (hours.mon .. hours.sun) take a
// number, clamped to >= 0, and recompute the row's total. Every accepted
// edit re-aggregates totals and schedules a debounced save. While a week
// load is in flight the grid has no settled row set, so edits are rejected
// with ErrNotReady.
func (c *Controller) EditCell(rowIndex int, field string, value any) error {
	c.mu.Lock()
	err := c.editCellLocked(rowIndex, field, value)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.notify()
	return nil
}

func (c *Controller) editCellLocked(rowIndex int, field string, value any) error {
	if c.state != StateReady {
		return fmt.Errorf("%w: state is %s", ErrNotReady, c.state)
	}
	if rowIndex < 0 || rowIndex >= len(c.rows) {
		return fmt.Errorf("%w: %d", ErrNoSuchRow, rowIndex)
	}

	c.state = StateEditing
	defer func() { c.state = StateReady }()

	if day, ok := strings.CutPrefix(field, "hours."); ok {
		hours, err := numericValue(value)
		if err != nil {
			return err
		}
		if hours < 0 {
			hours = 0
		}
		if !c.rows[rowIndex].Hours.Set(day, hours) {
			return fmt.Errorf("unknown field %q", field)
		}
		c.rows[rowIndex].RecalcTotal()
	} else {
		text, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %q requires a string value, got %T", field, value)
		}
		if strings.TrimSpace(text) == "" {
			// Blank edits are rejected at the boundary; the prior value stays.
			return ErrEmptyValue
		}
		switch field {
		case "projectType":
			c.rows[rowIndex].ProjectType = text
		case "projectName":
			c.rows[rowIndex].ProjectName = text
		case "task":
			c.rows[rowIndex].Task = text
		case "comment":
			c.rows[rowIndex].Comment = text
		default:
			return fmt.Errorf("unknown field %q", field)
		}
	}

	c.applyLocked()
	return nil
}

// AddRow appends a blank row to the grid. A no-op while a week load is in
// flight.
func (c *Controller) AddRow() {
	c.mu.Lock()
	if c.state != StateReady {
		c.mu.Unlock()
		return
	}
	c.rows = append(c.rows, timesheet.BlankRow())
	c.applyLocked()
	c.mu.Unlock()
	c.notify()
}

// RemoveRow removes the row at the given index. Row 0 is permanently
// protected: removing it is a no-op, as is an out-of-range index or a
// removal while a week load is in flight.
func (c *Controller) RemoveRow(index int) {
	c.mu.Lock()
	if c.state != StateReady || index <= 0 || index >= len(c.rows) {
		c.mu.Unlock()
		return
	}
	c.rows = append(c.rows[:index], c.rows[index+1:]...)
	c.applyLocked()
	c.mu.Unlock()
	c.notify()
}

// applyLocked re-aggregates totals and schedules the debounced save. Caller
// holds c.mu.
func (c *Controller) applyLocked() {
	c.totals = Recompute(c.rows)
	c.store.Save(c.key, c.rows)
}

// NavigateWeek shifts the active week by delta weeks and loads it. The load
// runs asynchronously; the grid stays in Loading until it resolves, and
// mutations issued in that window are rejected so the outgoing week's rows
// can never be written under the new key. A load that resolves after a
// further navigation is stale and its result is discarded, so a slow fetch
// can never overwrite a later week's rows.
func (c *Controller) NavigateWeek(ctx context.Context, delta int) {
	c.mu.Lock()
	c.key = c.key.AddWeeks(delta)
	c.generation++
	generation := c.generation
	key := c.key
	c.state = StateLoading
	c.mu.Unlock()
	c.notify()

	go func() {
		doc := c.store.Load(ctx, key)

		c.mu.Lock()
		if c.generation != generation {
			c.mu.Unlock()
			log.Debugf("discarding stale load for week %s", key)
			return
		}
		c.rows = doc
		c.totals = Recompute(c.rows)
		c.state = StateReady
		c.mu.Unlock()
		c.notify()
	}()
}

// Commit flushes the current row set to the local cache and the remote
// service. The returned error reports a remote failure; local edits are
// never rolled back. Rejected with ErrNotReady while a week load is in
// flight, since the rows still belong to the outgoing week.
func (c *Controller) Commit(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateReady {
		c.mu.Unlock()
		return fmt.Errorf("%w: state is %s", ErrNotReady, c.state)
	}
	key := c.key
	rows := append(timesheet.Document(nil), c.rows...)
	c.mu.Unlock()
	return c.store.Commit(ctx, key, rows)
}

// ExportCSV writes the current grid as CSV: a pure read of the row set with
// no state mutation.
func (c *Controller) ExportCSV(w io.Writer) error {
	c.mu.Lock()
	key := c.key
	rows := append(timesheet.Document(nil), c.rows...)
	c.mu.Unlock()
	return ExportCSV(w, key, rows)
}

// Week returns the active week key.
func (c *Controller) Week() week.Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Rows returns a copy of the current row set.
func (c *Controller) Rows() timesheet.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(timesheet.Document(nil), c.rows...)
}

// Totals returns the current derived totals.
func (c *Controller) Totals() Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals
}

// Overloaded reports whether the row at the given index is flagged against
// the controller's daily-hours threshold. The flag is presentation state and
// never touches persisted fields.
func (c *Controller) Overloaded(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.rows) {
		return false
	}
	return Overloaded(c.rows[index], c.threshold)
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}

func numericValue(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	}
	return 0, fmt.Errorf("hour fields require a numeric value, got %T", value)
}
