package grid

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/weektally/weektally/pkg/timesheet"
	"github.com/weektally/weektally/pkg/week"
)

// DefaultDebounce is the idle window that coalesces rapid edits into one
// local cache write.
const DefaultDebounce = 1 * time.Second

// Store keeps the editable row set of each week consistent with a durable
// local cache and the remote timesheet service. Reads are local-first with
// remote fallback and never fail: a week the store cannot load from anywhere
// comes back as a seeded blank document. Writes go to the local cache on a
// debounced timer; the remote service is only written on an explicit Commit.
type Store struct {
	cache    Cache
	remote   Remote
	debounce time.Duration

	mu       sync.Mutex
	inflight map[week.Key]*fetch
	pending  map[week.Key]*pendingWrite
}

// fetch tracks one in-flight remote load so concurrent Loads for the same
// week coalesce onto a single request instead of racing two cache writes.
type fetch struct {
	done chan struct{}
	doc  timesheet.Document
}

type pendingWrite struct {
	doc   timesheet.Document
	timer *time.Timer
}

func NewStore(cache Cache, remote Remote, debounce time.Duration) *Store {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Store{
		cache:    cache,
		remote:   remote,
		debounce: debounce,
		inflight: make(map[week.Key]*fetch),
		pending:  make(map[week.Key]*pendingWrite),
	}
}

// Load returns the week's document: from the local cache when present, from
// the remote service on a cache miss, and as a seeded blank document when
// both fail. It never returns an error to the caller.
func (s *Store) Load(ctx context.Context, key week.Key) timesheet.Document {
	doc, found, err := s.cache.Get(key)
	if err != nil {
		// A malformed entry counts as a miss; the remote copy is authoritative.
		log.Warnf("local cache unreadable for week %s: %v", key, err)
	} else if found {
		log.Debugf("loaded week %s from local cache", key)
		return timesheet.Normalize(doc)
	}
	return s.fetchRemote(ctx, key)
}

// fetchRemote loads the week from the remote service, coalescing concurrent
// calls for the same key onto one request.
func (s *Store) fetchRemote(ctx context.Context, key week.Key) timesheet.Document {
	s.mu.Lock()
	if f, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		<-f.done
		return f.doc
	}
	f := &fetch{done: make(chan struct{})}
	s.inflight[key] = f
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
		close(f.done)
	}()

	doc, err := s.remote.Fetch(ctx, key)
	if err != nil {
		// Degrade to an editable blank week; the condition is logged, never
		// surfaced to the rendering layer.
		log.Errorf("failed to fetch timesheet for week %s: %v", key, err)
		f.doc = timesheet.DefaultDocument()
		return f.doc
	}

	f.doc = timesheet.Normalize(doc)
	if err := s.cache.Put(key, f.doc); err != nil {
		log.Errorf("failed to cache timesheet for week %s: %v", key, err)
	}
	return f.doc
}

// Save schedules a debounced local cache write for the week. Each call
// resets the week's idle timer, so a burst of edits results in a single
// write once the user pauses.
func (s *Store) Save(key week.Key, doc timesheet.Document) {
	snapshot := append(timesheet.Document(nil), doc...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[key]; ok {
		p.doc = snapshot
		p.timer.Reset(s.debounce)
		return
	}
	p := &pendingWrite{doc: snapshot}
	p.timer = time.AfterFunc(s.debounce, func() {
		s.flushKey(key)
	})
	s.pending[key] = p
}

// Flush writes every pending debounced save immediately.
func (s *Store) Flush() {
	s.mu.Lock()
	keys := make([]week.Key, 0, len(s.pending))
	for key, p := range s.pending {
		p.timer.Stop()
		keys = append(keys, key)
	}
	s.mu.Unlock()

	for _, key := range keys {
		s.flushKey(key)
	}
}

func (s *Store) flushKey(key week.Key) {
	s.mu.Lock()
	p, ok := s.pending[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	doc := p.doc
	s.mu.Unlock()

	if err := s.cache.Put(key, doc); err != nil {
		log.Errorf("failed to write local cache for week %s: %v", key, err)
		return
	}
	log.Debugf("saved week %s to local cache", key)
}

// Commit writes the document to the local cache immediately and upserts it
// to the remote service. A remote failure is returned for reporting but the
// local write stands; the cache remains the client's source of truth between
// commits.
func (s *Store) Commit(ctx context.Context, key week.Key, doc timesheet.Document) error {
	snapshot := append(timesheet.Document(nil), doc...)

	// The commit supersedes any pending debounced write for this week.
	s.mu.Lock()
	if p, ok := s.pending[key]; ok {
		p.timer.Stop()
		delete(s.pending, key)
	}
	s.mu.Unlock()

	if err := s.cache.Put(key, snapshot); err != nil {
		log.Errorf("failed to write local cache for week %s: %v", key, err)
	}

	if _, err := s.remote.Upsert(ctx, key, snapshot); err != nil {
		log.Errorf("failed to save timesheet for week %s remotely: %v", key, err)
		return err
	}
	log.Infof("committed week %s to the timesheet service", key)
	return nil
}
