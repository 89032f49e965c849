package service

import (
	"context"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	"huixue/internal/modules/tutor/domain"
	tutorout "huixue/internal/modules/tutor/port/out"
	apperrors "huixue/internal/platform/errors"
	"huixue/internal/platform/logging"
)

// Apology is shown in place of a tutor reply when the tutor cannot be reached.
const Apology = "抱歉，老师暂时走神了，请再试一次吧~ 🙏"

type Reply struct {
	domain.Result
	Topic domain.Topic
}

type TutorService struct {
	completer tutorout.Completer
	logger    hclog.Logger
}

func NewTutorService(completer tutorout.Completer, logger hclog.Logger) *TutorService {
	return &TutorService{completer: completer, logger: logging.OrNull(logger).Named("tutor")}
}

func (s *TutorService) Evaluate(raw string) domain.Result {
	return domain.Evaluate(raw)
}

// Send runs one conversational turn. A failed request leaves the history as
// it was before the call, and so does a reply that arrives after the
// conversation moved to another context.
func (s *TutorService) Send(ctx context.Context, conv *domain.Conversation, text string) (Reply, error) {
	topic := domain.DetectTopic(text)
	x := conv.Begin(text, topic)

	raw, err := s.completer.Complete(ctx, tutorout.Request{
		System:   x.System,
		Messages: x.Messages,
	})
	if err != nil {
		s.logger.Warn("tutor request failed", "error", err)
		return Reply{
			Result: domain.Result{
				Message:   Apology,
				Verdict:   domain.Verdict{Kind: domain.Unjudged},
				FollowUps: []string{},
			},
			Topic: topic,
		}, fmt.Errorf("%w: %v", apperrors.ErrTutorUnavailable, err)
	}

	res := domain.Evaluate(raw)
	s.logger.Debug("tutor replied",
		"verdict", res.Verdict.Kind,
		"correct", res.Verdict.Evaluation.IsCorrect,
		"confidence", res.Verdict.Evaluation.Confidence,
		"topic", topic,
	)
	if !conv.Commit(x, res.Message) {
		s.logger.Debug("reply arrived after a context change; history left as is")
	}
	if len(res.FollowUps) == 0 {
		if canned := topic.FollowUps(); canned != nil {
			res.FollowUps = canned
		}
	}
	return Reply{Result: res, Topic: topic}, nil
}
