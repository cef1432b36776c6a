package grid

import (
	"time"

	"github.com/weektally/weektally/internal/config"
	"github.com/weektally/weektally/internal/utils"
)

// NewClient builds the full grid client from configuration: a file-backed
// local cache playing the browser-storage role, an HTTP remote against the
// timesheet service, the store binding the two, and the controller on top.
// The clock pins the week the grid opens on.
func NewClient(cfg config.Client, clock utils.Clock) (*Controller, error) {
	cache, err := NewFileCache(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	remote := NewHTTPRemote(cfg.RemoteURL, time.Duration(cfg.TimeoutSec)*time.Second)
	store := NewStore(cache, remote, time.Duration(cfg.DebounceMs)*time.Millisecond)
	return NewController(store, clock, cfg.OverloadThreshold), nil
}
