package usecase

import (
	"context"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	coursein "huixue/internal/modules/course/port/in"
	lessonin "huixue/internal/modules/lesson/port/in"
	lessonout "huixue/internal/modules/lesson/port/out"
	"huixue/internal/modules/lesson/service"
	progressin "huixue/internal/modules/progress/port/in"
	tutorin "huixue/internal/modules/tutor/port/in"
	"huixue/internal/platform/clock"
	"huixue/internal/platform/id"
)

type Interactor struct {
	courses  coursein.Usecase
	progress progressin.Usecase
	tutor    tutorin.Usecase
	players  lessonout.PlayerFactory
	clock    clock.Clock
	ids      id.Generator
	logger   hclog.Logger
}

func NewInteractor(
	courses coursein.Usecase,
	progress progressin.Usecase,
	tutor tutorin.Usecase,
	players lessonout.PlayerFactory,
	clk clock.Clock,
	ids id.Generator,
	logger hclog.Logger,
) lessonin.Usecase {
	return &Interactor{
		courses:  courses,
		progress: progress,
		tutor:    tutor,
		players:  players,
		clock:    clk,
		ids:      ids,
		logger:   logger,
	}
}

func (i *Interactor) Open(ctx context.Context, courseID string) (lessonin.Session, error) {
	course, err := i.courses.Get(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("open lesson: %w", err)
	}
	cues := make([]lessonout.Cue, 0, len(course.Markers))
	for _, m := range course.Markers {
		cues = append(cues, lessonout.Cue{ID: m.ID, Time: m.Time})
	}
	return service.NewSession(course, service.Deps{
		Progress: i.progress,
		Tutor:    i.tutor.NewConversation(),
		Player:   i.players.NewPlayer(ctx, course.VideoURL, course.Duration, cues),
		Clock:    i.clock,
		IDs:      i.ids,
		Logger:   i.logger,
	}), nil
}
