package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownID = errors.New("lesson: id is not part of this view")

// Mark is the result of one completion.
type Mark struct {
	Added    bool
	Progress float64
	// Complete is true once every id of the view is done; JustCompleted only
	// on the mark that got there.
	Complete      bool
	JustCompleted bool
}

type completionSet struct {
	known map[string]struct{}
	done  []string
	seen  map[string]struct{}
}

func newCompletionSet(ids []string) *completionSet {
	s := &completionSet{known: make(map[string]struct{}, len(ids)), seen: map[string]struct{}{}}
	for _, id := range ids {
		s.known[id] = struct{}{}
	}
	return s
}

// total counts distinct ids, so a repeated id cannot make a view
// uncompletable.
func (s *completionSet) total() int { return len(s.known) }

func (s *completionSet) progress() float64 {
	if s.total() == 0 {
		return 0
	}
	return 100 * float64(len(s.done)) / float64(s.total())
}

func (s *completionSet) complete() bool {
	return s.total() > 0 && len(s.done) == s.total()
}

// Tracker keeps one completion set per view: video markers, article anchors
// and question anchors.
type Tracker struct {
	sets map[Stage]*completionSet
	ids  map[Stage][]string
}

func NewTracker(markers, articleAnchors, questionAnchors []string) *Tracker {
	t := &Tracker{ids: map[Stage][]string{
		StageVideo:    markers,
		StageArticle:  articleAnchors,
		StageQuestion: questionAnchors,
	}}
	t.Reset()
	return t
}

func (t *Tracker) Reset() {
	t.sets = make(map[Stage]*completionSet, len(Views))
	for _, v := range Views {
		t.sets[v] = newCompletionSet(t.ids[v])
	}
}

// MarkComplete is idempotent: re-marking reports Added=false with the
// current progress.
func (t *Tracker) MarkComplete(view Stage, id string) (Mark, error) {
	s, ok := t.sets[view]
	if !ok {
		return Mark{}, fmt.Errorf("%w: %v", ErrInvalidStage, view)
	}
	if _, ok := s.known[id]; !ok {
		return Mark{}, fmt.Errorf("%w: %s %q", ErrUnknownID, view, id)
	}
	if _, ok := s.seen[id]; ok {
		return Mark{Progress: s.progress(), Complete: s.complete()}, nil
	}
	s.seen[id] = struct{}{}
	s.done = append(s.done, id)
	complete := s.complete()
	return Mark{Added: true, Progress: s.progress(), Complete: complete, JustCompleted: complete}, nil
}

// Restore marks previously saved ids, skipping any the view no longer has.
func (t *Tracker) Restore(view Stage, ids []string) {
	for _, id := range ids {
		_, _ = t.MarkComplete(view, id)
	}
}

func (t *Tracker) IsComplete(view Stage, id string) bool {
	s, ok := t.sets[view]
	if !ok {
		return false
	}
	_, done := s.seen[id]
	return done
}

func (t *Tracker) Completed(view Stage) []string {
	s, ok := t.sets[view]
	if !ok {
		return nil
	}
	out := make([]string, len(s.done))
	copy(out, s.done)
	return out
}

func (t *Tracker) Total(view Stage) int {
	if s, ok := t.sets[view]; ok {
		return s.total()
	}
	return 0
}

func (t *Tracker) Progress(view Stage) float64 {
	if s, ok := t.sets[view]; ok {
		return s.progress()
	}
	return 0
}

// AllComplete is false for a view with nothing to complete.
func (t *Tracker) AllComplete(view Stage) bool {
	if s, ok := t.sets[view]; ok {
		return s.complete()
	}
	return false
}
