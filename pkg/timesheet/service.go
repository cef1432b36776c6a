package timesheet

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/weektally/weektally/pkg/week"
)

type Service interface {
	// GetAll returns every stored timesheet, keyed by week.
	GetAll(ctx context.Context) (map[week.Key]Document, error)
	// GetForWeek returns the document for the given week. A week that has
	// never been accessed is seeded with a single blank row, persisted, and
	// returned; a repeated call returns the identical document.
	GetForWeek(ctx context.Context, key week.Key) (Document, error)
	// Store normalizes and upserts the document for the given week and
	// returns what was stored.
	Store(ctx context.Context, key week.Key, doc Document) (Document, error)
	// Delete removes the week's document. Returns ErrTimesheetNotFound when
	// no document exists for the week.
	Delete(ctx context.Context, key week.Key) error
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) GetAll(ctx context.Context) (map[week.Key]Document, error) {
	log.Debug("Loading all timesheets")
	documents, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load timesheets: %w", err)
	}
	return documents, nil
}

func (s *ServiceImpl) GetForWeek(ctx context.Context, key week.Key) (Document, error) {
	doc, err := s.repo.Get(ctx, key)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, ErrTimesheetNotFound) {
		return nil, fmt.Errorf("failed to load timesheet for week %s: %w", key, err)
	}

	// First access to this week: seed it with a blank document so the next
	// read returns the same thing.
	log.Infof("No timesheet for week starting %s, seeding a blank one", key)
	seeded, err := s.repo.Upsert(ctx, key, DefaultDocument())
	if err != nil {
		return nil, fmt.Errorf("failed to seed timesheet for week %s: %w", key, err)
	}
	return seeded, nil
}

func (s *ServiceImpl) Store(ctx context.Context, key week.Key, doc Document) (Document, error) {
	log.Debugf("Storing timesheet for week starting %s", key)
	stored, err := s.repo.Upsert(ctx, key, Normalize(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to store timesheet for week %s: %w", key, err)
	}
	return stored, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, key week.Key) error {
	err := s.repo.Delete(ctx, key)
	if err != nil {
		if errors.Is(err, ErrTimesheetNotFound) {
			return ErrTimesheetNotFound
		}
		return fmt.Errorf("failed to delete timesheet for week %s: %w", key, err)
	}
	log.Infof("Deleted timesheet for week starting %s", key)
	return nil
}
