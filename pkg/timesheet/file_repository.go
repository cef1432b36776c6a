package timesheet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/weektally/weektally/pkg/week"
)

// fileRepository stores one JSON file per week under a data directory. It is
// the fallback storage engine for deployments without a database.
type fileRepository struct {
	dir string
	mu  sync.RWMutex
}

func NewFileRepository(dir string) (Repository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create data directory %s: %w", dir, err)
	}
	return &fileRepository{dir: dir}, nil
}

func (r *fileRepository) path(key week.Key) string {
	return filepath.Join(r.dir, key.String()+".json")
}

func (r *fileRepository) GetAll(ctx context.Context) (map[week.Key]Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("could not list data directory: %w", err)
	}

	documents := make(map[week.Key]Document)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		key, err := week.ParseKey(strings.TrimSuffix(name, ".json"))
		if err != nil {
			log.Warnf("skipping unrecognized data file %s: %v", name, err)
			continue
		}
		doc, err := r.read(key)
		if err != nil {
			return nil, err
		}
		documents[key] = doc
	}
	return documents, nil
}

func (r *fileRepository) Get(ctx context.Context, key week.Key) (Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.read(key)
}

func (r *fileRepository) read(key week.Key) (Document, error) {
	data, err := os.ReadFile(r.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrTimesheetNotFound
		}
		return nil, fmt.Errorf("could not read timesheet %s: %w", key, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not decode timesheet %s: %w", key, err)
	}
	return doc, nil
}

func (r *fileRepository) Upsert(ctx context.Context, key week.Key, doc Document) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("could not encode timesheet: %w", err)
	}

	// Write to a temp file and rename, so a crash never leaves a truncated
	// document behind.
	tmp, err := os.CreateTemp(r.dir, key.String()+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("could not create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("could not write timesheet %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("could not write timesheet %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), r.path(key)); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("could not store timesheet %s: %w", key, err)
	}
	return doc, nil
}

func (r *fileRepository) Delete(ctx context.Context, key week.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrTimesheetNotFound
		}
		return fmt.Errorf("could not delete timesheet %s: %w", key, err)
	}
	return nil
}
