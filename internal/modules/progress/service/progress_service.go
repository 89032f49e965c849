package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"huixue/internal/modules/progress/domain"
	progressout "huixue/internal/modules/progress/port/out"
	"huixue/internal/platform/clock"
	apperrors "huixue/internal/platform/errors"
	"huixue/internal/platform/logging"
)

// ProgressService serialises every read-modify-write on the store, so a
// background purge and a session save never interleave on one key.
type ProgressService struct {
	mu     sync.Mutex
	clock  clock.Clock
	store  progressout.KVStore
	logger hclog.Logger
}

func NewProgressService(clk clock.Clock, store progressout.KVStore, logger hclog.Logger) *ProgressService {
	return &ProgressService{clock: clk, store: store, logger: logging.OrNull(logger).Named("progress")}
}

// Load returns the stored record for courseID. Mismatched, expired or
// undecodable records are removed and reported as absent.
func (s *ProgressService) Load(ctx context.Context, courseID string) (domain.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.Key(courseID)
	record, err := s.read(ctx, key)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		s.logger.Debug("no progress stored", "course", courseID)
		return domain.Record{}, false
	case err != nil:
		s.logger.Warn("discarding unreadable progress", "course", courseID, "error", err)
		s.remove(ctx, key)
		return domain.Record{}, false
	}

	if record.CourseID == "" || record.CourseID != courseID {
		s.logger.Warn("course id mismatch, discarding progress", "course", courseID, "stored", record.CourseID)
		s.remove(ctx, key)
		return domain.Record{}, false
	}
	now := s.clock.Now()
	if record.Expired(now) {
		s.logger.Info("progress expired", "course", courseID, "age_days", int(record.Age(now).Hours()/24))
		s.remove(ctx, key)
		return domain.Record{}, false
	}
	s.logger.Debug("progress loaded", "course", courseID,
		"markers", len(record.CompletedMarkers),
		"cards", len(record.KnowledgePoints),
		"quiz_results", len(record.QuizResults))
	return record, true
}

// Save merges patch into the stored record. A corrupt stored record is
// ignored rather than blocking the write.
func (s *ProgressService) Save(ctx context.Context, courseID string, patch domain.Patch) {
	if courseID == "" {
		s.logger.Warn("save without course id ignored")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.Key(courseID)
	var stored *domain.Record
	if existing, err := s.read(ctx, key); err == nil {
		stored = &existing
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Debug("ignoring unreadable stored progress on save", "course", courseID, "error", err)
	}

	merged := domain.Merge(courseID, stored, patch, s.clock.Now())
	payload, err := json.Marshal(merged)
	if err != nil {
		s.logger.Error("encode progress", "course", courseID, "error", err)
		return
	}
	if err := s.store.Put(ctx, key, payload); err != nil {
		s.logger.Error("write progress", "course", courseID, "error", err)
		return
	}
	s.logger.Debug("progress saved", "course", courseID,
		"markers", len(merged.CompletedMarkers),
		"cards", len(merged.KnowledgePoints),
		"quiz_completed", merged.QuizCompleted)
}

func (s *ProgressService) Reset(ctx context.Context, courseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(ctx, domain.Key(courseID))
	s.logger.Info("progress reset", "course", courseID)
}

// HasValid reports whether a usable record exists without touching storage.
func (s *ProgressService) HasValid(ctx context.Context, courseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.read(ctx, domain.Key(courseID))
	if err != nil {
		return false
	}
	return record.CourseID == courseID && !record.Expired(s.clock.Now())
}

// RemainingValidityDays is 0 for anything Load would report as absent.
func (s *ProgressService) RemainingValidityDays(ctx context.Context, courseID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.read(ctx, domain.Key(courseID))
	if err != nil || record.CourseID != courseID {
		return 0
	}
	return record.RemainingDays(s.clock.Now())
}

// PurgeExpired sweeps the namespace and removes every record Load would
// discard. It returns the removed course ids.
func (s *ProgressService) PurgeExpired(ctx context.Context) (int, []string, error) {
	keys, err := s.store.Keys(ctx, domain.KeyPrefix)
	if err != nil {
		return 0, nil, fmt.Errorf("list progress keys: %w", err)
	}
	now := s.clock.Now()
	var removed []string
	for _, key := range keys {
		courseID, ok := domain.CourseIDFromKey(key)
		if !ok {
			continue
		}
		gone, err := s.purgeKey(ctx, key, courseID, now)
		if err != nil {
			return len(keys), removed, err
		}
		if gone {
			removed = append(removed, courseID)
		}
	}
	if len(removed) > 0 {
		s.logger.Info("purged progress", "removed", len(removed), "scanned", len(keys))
	}
	return len(keys), removed, nil
}

func (s *ProgressService) read(ctx context.Context, key string) (domain.Record, error) {
	payload, err := s.store.Get(ctx, key)
	if err != nil {
		return domain.Record{}, err
	}
	record := domain.Record{}
	if err := json.Unmarshal(payload, &record); err != nil {
		return domain.Record{}, fmt.Errorf("decode progress: %w", err)
	}
	return record, nil
}

func (s *ProgressService) remove(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Error("remove progress", "key", key, "error", err)
	}
}

// purgeKey rereads and deletes one key under the lock, so a save that
// landed after the key listing is seen before anything is removed.
func (s *ProgressService) purgeKey(ctx context.Context, key, courseID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.read(ctx, key)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err == nil && record.CourseID == courseID && !record.Expired(now) {
		return false, nil
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return false, fmt.Errorf("delete %s: %w", key, err)
	}
	return true, nil
}
