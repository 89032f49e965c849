package usecase

import (
	"context"

	"huixue/internal/modules/tutor/domain"
	"huixue/internal/modules/tutor/dto"
	tutorin "huixue/internal/modules/tutor/port/in"
	"huixue/internal/modules/tutor/service"
)

type Interactor struct {
	svc     *service.TutorService
	offline bool
}

func NewInteractor(svc *service.TutorService, offline bool) tutorin.Usecase {
	return &Interactor{svc: svc, offline: offline}
}

func (i *Interactor) Evaluate(raw string) dto.Reply {
	return toReply(service.Reply{Result: i.svc.Evaluate(raw)})
}

func (i *Interactor) NewConversation() tutorin.Conversation {
	return &conversation{svc: i.svc, conv: domain.NewConversation()}
}

func (i *Interactor) Offline() bool { return i.offline }

type conversation struct {
	svc  *service.TutorService
	conv *domain.Conversation
}

func (c *conversation) SetContext(k dto.KnowledgeContext) {
	c.conv.SetContext(domain.KnowledgeContext{
		Title:           k.Title,
		Description:     k.Description,
		TeachingMessage: k.TeachingMessage,
		ExpectedAnswer:  k.ExpectedAnswer,
	})
}

func (c *conversation) Send(ctx context.Context, text string) (dto.Reply, error) {
	reply, err := c.svc.Send(ctx, c.conv, text)
	return toReply(reply), err
}

func (c *conversation) Reset() { c.conv.Reset() }

func (c *conversation) History() []dto.Turn {
	turns := c.conv.History()
	out := make([]dto.Turn, 0, len(turns))
	for _, t := range turns {
		out = append(out, dto.Turn{Role: string(t.Role), Content: t.Content})
	}
	return out
}

func toReply(r service.Reply) dto.Reply {
	ev := r.Verdict.Evaluation
	return dto.Reply{
		Message:   r.Message,
		Topic:     string(r.Topic),
		FollowUps: r.FollowUps,
		Verdict: dto.Verdict{
			Kind: r.Verdict.Kind.String(),
			Evaluation: dto.Evaluation{
				IsCorrect:  ev.IsCorrect,
				Confidence: ev.Confidence,
				Feedback:   string(ev.Feedback),
			},
		},
	}
}
