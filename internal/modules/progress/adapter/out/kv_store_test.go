package out_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	progressadapter "huixue/internal/modules/progress/adapter/out"
	"huixue/internal/modules/progress/domain"
	progressout "huixue/internal/modules/progress/port/out"
	apperrors "huixue/internal/platform/errors"
)

func TestKVStoresShareContract(t *testing.T) {
	t.Parallel()
	stores := map[string]func(t *testing.T) progressout.KVStore{
		"file": func(t *testing.T) progressout.KVStore {
			return progressadapter.NewFileKVStore(t.TempDir())
		},
		"sqlite": func(t *testing.T) progressout.KVStore {
			s, err := progressadapter.NewSQLiteKVStore(filepath.Join(t.TempDir(), "kv.db"))
			if err != nil {
				t.Fatalf("open sqlite store: %v", err)
			}
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
	for name, open := range stores {
		open := open
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			store := open(t)

			if _, err := store.Get(ctx, "huixue_progress_c1"); !errors.Is(err, apperrors.ErrNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
			if err := store.Put(ctx, "huixue_progress_c1", []byte(`{"v":1}`)); err != nil {
				t.Fatalf("put: %v", err)
			}
			if err := store.Put(ctx, "huixue_progress_c1", []byte(`{"v":2}`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			if err := store.Put(ctx, "huixue_progress_c/2", []byte(`{}`)); err != nil {
				t.Fatalf("put key with slash: %v", err)
			}
			if err := store.Put(ctx, "unrelated", []byte(`{}`)); err != nil {
				t.Fatalf("put unrelated: %v", err)
			}
			got, err := store.Get(ctx, "huixue_progress_c1")
			if err != nil || string(got) != `{"v":2}` {
				t.Fatalf("expected latest value, got %s (%v)", got, err)
			}
			keys, err := store.Keys(ctx, domain.KeyPrefix)
			if err != nil {
				t.Fatalf("keys: %v", err)
			}
			if want := []string{"huixue_progress_c/2", "huixue_progress_c1"}; !reflect.DeepEqual(keys, want) {
				t.Fatalf("expected %v, got %v", want, keys)
			}
			if err := store.Delete(ctx, "huixue_progress_c1"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := store.Delete(ctx, "huixue_progress_c1"); err != nil {
				t.Fatalf("delete must be idempotent: %v", err)
			}
			if _, err := store.Get(ctx, "huixue_progress_c1"); !errors.Is(err, apperrors.ErrNotFound) {
				t.Fatalf("expected not found after delete, got %v", err)
			}
		})
	}
}

func TestVaultCardWriterRefreshesBlockAndKeepsNotes(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writer := progressadapter.NewVaultCardWriter(dir)
	score := 90
	deck := domain.CardDeck{
		CourseID:   "c1",
		Title:      "物质与意识",
		Points:     []domain.KnowledgePoint{{ID: "m1", Type: "important", Content: "物质决定意识", Translation: "唯物论的基石"}},
		Completed:  []string{"m1"},
		QuizScore:  &score,
		ExportedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	path, err := writer.Write(context.Background(), deck)
	if err != nil {
		t.Fatalf("write cards: %v", err)
	}
	if filepath.Base(path) != "物质与意识-cards.md" {
		t.Fatalf("unexpected note name %s", path)
	}

	b, _ := os.ReadFile(path)
	withNotes := strings.Replace(string(b), "# 物质与意识\n", "# 物质与意识\n\nmy own summary\n", 1)
	if err := os.WriteFile(path, []byte(withNotes), 0o644); err != nil {
		t.Fatalf("edit note: %v", err)
	}

	deck.Points = append(deck.Points, domain.KnowledgePoint{ID: "m2", Type: "grammar", Content: "量变质变"})
	if _, err := writer.Write(context.Background(), deck); err != nil {
		t.Fatalf("rewrite cards: %v", err)
	}
	b, _ = os.ReadFile(path)
	note := string(b)
	for _, want := range []string{"my own summary", "## 量变质变", "quiz_score: 90", "cards: 2", "course_id: c1"} {
		if !strings.Contains(note, want) {
			t.Fatalf("note missing %q:\n%s", want, note)
		}
	}
	if strings.Count(note, "huixue:cards:start") != 1 {
		t.Fatalf("managed block must not be duplicated:\n%s", note)
	}
}
