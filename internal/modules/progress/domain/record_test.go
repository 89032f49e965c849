package domain_test

import (
	"reflect"
	"testing"
	"time"

	"huixue/internal/modules/progress/domain"
)

func TestMergeFirstSaveFillsDefaults(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	view := domain.ViewArticle
	got := domain.Merge("c1", nil, domain.Patch{ActiveView: &view}, now)

	if got.CourseID != "c1" || got.ActiveView != domain.ViewArticle {
		t.Fatalf("unexpected merged record: %+v", got)
	}
	if got.CompletedMarkers == nil || got.KnowledgePoints == nil || got.QuizResults == nil {
		t.Fatalf("collections must default to empty, got %+v", got)
	}
	if got.QuizCompleted || got.LastQuizResult != nil {
		t.Fatalf("quiz fields must default to zero values")
	}
	if got.LastAccessTime != now.UnixMilli() {
		t.Fatalf("access time must be stamped, got %d", got.LastAccessTime)
	}
}

func TestMergeKeepsFieldsAbsentFromPatch(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	stored := domain.Record{
		CourseID:         "c1",
		CompletedMarkers: []string{"m1"},
		KnowledgePoints:  []domain.KnowledgePoint{{ID: "m1", Content: "物质"}},
		ActiveView:       domain.ViewQuestion,
		QuizCompleted:    true,
		LastQuizResult:   &domain.QuizResult{Score: 80},
	}
	markers := []string{"m1", "m2", "m1"}
	got := domain.Merge("c1", &stored, domain.Patch{CompletedMarkers: &markers}, now)

	if !reflect.DeepEqual(got.CompletedMarkers, []string{"m1", "m2"}) {
		t.Fatalf("markers must be overlaid and de-duplicated, got %v", got.CompletedMarkers)
	}
	if len(got.KnowledgePoints) != 1 || got.ActiveView != domain.ViewQuestion || !got.QuizCompleted {
		t.Fatalf("absent fields must keep stored values, got %+v", got)
	}
	if got.LastQuizResult == nil || got.LastQuizResult.Score != 80 {
		t.Fatalf("last quiz result must survive a patch that omits it")
	}

	cleared := domain.Merge("c1", &stored, domain.Patch{SetLastQuizResult: true}, now)
	if cleared.LastQuizResult != nil {
		t.Fatalf("explicit nil must clear the last quiz result")
	}
}

func TestMergeDeduplicatesKnowledgePointsFirstWins(t *testing.T) {
	t.Parallel()
	points := []domain.KnowledgePoint{{ID: "a", Content: "first"}, {ID: "b"}, {ID: "a", Content: "second"}}
	got := domain.Merge("c1", nil, domain.Patch{KnowledgePoints: &points}, time.Now())
	if len(got.KnowledgePoints) != 2 || got.KnowledgePoints[0].Content != "first" {
		t.Fatalf("expected first occurrence to win, got %+v", got.KnowledgePoints)
	}
}

func TestExpiryAndRemainingDays(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		age     time.Duration
		expired bool
		days    int
	}{
		{"fresh", 0, false, 30},
		{"half a day", 12 * time.Hour, false, 30},
		{"29 days", 29 * 24 * time.Hour, false, 1},
		{"exactly 30 days", 30 * 24 * time.Hour, false, 0},
		{"31 days", 31 * 24 * time.Hour, true, 0},
	}
	for _, tt := range tests {
		r := domain.Record{LastAccessTime: now.Add(-tt.age).UnixMilli()}
		if r.Expired(now) != tt.expired {
			t.Fatalf("%s: expired = %v, want %v", tt.name, r.Expired(now), tt.expired)
		}
		if got := r.RemainingDays(now); got != tt.days {
			t.Fatalf("%s: remaining days = %d, want %d", tt.name, got, tt.days)
		}
	}
}

func TestKeyNamespace(t *testing.T) {
	t.Parallel()
	key := domain.Key("marxism-101")
	id, ok := domain.CourseIDFromKey(key)
	if !ok || id != "marxism-101" {
		t.Fatalf("expected key round trip, got %q %v", id, ok)
	}
	if _, ok := domain.CourseIDFromKey("other_key"); ok {
		t.Fatalf("foreign keys must be rejected")
	}
}
