package in

import (
	"context"
	"time"

	lessondto "huixue/internal/modules/lesson/dto"
	tutordto "huixue/internal/modules/tutor/dto"
)

type Usecase interface {
	// Open prepares a session for a course; call Start on it to resume
	// saved progress.
	Open(ctx context.Context, courseID string) (Session, error)
}

// TurnFunc runs the tutor request of one answer. It may run on another
// goroutine; it touches no session state.
type TurnFunc func(ctx context.Context) (tutordto.Reply, error)

// Session is one learner working through one course. Apart from a TurnFunc,
// it must be used from a single goroutine.
type Session interface {
	Start(ctx context.Context)
	Reset(ctx context.Context)
	Snapshot() lessondto.Snapshot

	Play()
	Pause()
	// AdvanceVideo moves simulated playback forward and handles the first
	// marker reached.
	AdvanceVideo(dt time.Duration)
	MarkerReached(id string) bool
	SkipMarker() error

	// Answer runs a full tutor turn synchronously.
	Answer(ctx context.Context, text string) error
	// BeginAnswer records the learner's message and returns the request to
	// run; apperrors.ErrTurnInFlight while another turn is loading.
	BeginAnswer(text string) (TurnFunc, error)
	FinishAnswer(reply tutordto.Reply, err error)

	ClickAnchor(id string) error
	ChangeView(view string) error
	ConfirmTransition(skip bool) error

	StartQuiz() error
	SubmitQuiz(selected map[string]int) (lessondto.QuizResult, error)
	CloseQuiz()
	ReviewFromQuiz(markerID string) error
	ReviewCard(id string) error

	// Tick runs delayed effects that are due.
	Tick() int
}
