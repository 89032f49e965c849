package service_test

import (
	"context"
	"errors"
	"testing"

	"huixue/internal/modules/tutor/domain"
	tutorout "huixue/internal/modules/tutor/port/out"
	"huixue/internal/modules/tutor/service"
	apperrors "huixue/internal/platform/errors"
)

type fakeCompleter struct {
	replies []string
	err     error
	seen    []tutorout.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req tutorout.Request) (string, error) {
	f.seen = append(f.seen, req)
	if f.err != nil {
		return "", f.err
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

func TestSendRecordsTurnsAndEvaluates(t *testing.T) {
	t.Parallel()
	fc := &fakeCompleter{replies: []string{
		`{"evaluation":{"isCorrect":true,"confidence":0.8,"feedbackType":"praise"},"message":"好","followUpQuestions":[]}`,
		"不对哦",
	}}
	svc := service.NewTutorService(fc, nil)
	conv := domain.NewConversation()
	conv.SetContext(domain.KnowledgeContext{Title: "剩余价值"})

	reply, err := svc.Send(context.Background(), conv, "剩余价值率是 m/v")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !reply.Verdict.Correct() || reply.Message != "好" || reply.Topic != domain.TopicCapital {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if len(reply.FollowUps) == 0 {
		t.Fatalf("capital topic must supply canned follow ups")
	}

	reply, err = svc.Send(context.Background(), conv, "是 c/v")
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	if reply.Verdict.Kind != domain.Fallback || reply.Verdict.Correct() {
		t.Fatalf("expected incorrect fallback verdict, got %+v", reply.Verdict)
	}
	hist := conv.History()
	if len(hist) != 4 || hist[1].Content != "好" || hist[3].Role != domain.RoleAssistant {
		t.Fatalf("unexpected history %+v", hist)
	}
	if len(fc.seen[1].Messages) != 3 {
		t.Fatalf("second request must carry the earlier turns, got %d", len(fc.seen[1].Messages))
	}
}

func TestSendFailureIsUnjudged(t *testing.T) {
	t.Parallel()
	svc := service.NewTutorService(&fakeCompleter{err: errors.New("dial tcp: refused")}, nil)
	conv := domain.NewConversation()

	reply, err := svc.Send(context.Background(), conv, "物质决定意识")
	if !errors.Is(err, apperrors.ErrTutorUnavailable) {
		t.Fatalf("expected tutor unavailable, got %v", err)
	}
	if reply.Message != service.Apology || reply.Verdict.Judged() {
		t.Fatalf("failure must yield an unjudged apology, got %+v", reply)
	}
	if len(conv.History()) != 0 {
		t.Fatalf("failed turn must not stay in history")
	}
}

type gatedCompleter struct {
	started chan struct{}
	release chan struct{}
	reply   string
}

func (g *gatedCompleter) Complete(ctx context.Context, _ tutorout.Request) (string, error) {
	close(g.started)
	select {
	case <-g.release:
		return g.reply, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestSendAfterContextChangeLeavesNewHistoryClean(t *testing.T) {
	t.Parallel()
	gc := &gatedCompleter{
		started: make(chan struct{}),
		release: make(chan struct{}),
		reply:   `{"evaluation":{"isCorrect":true,"confidence":0.9},"message":"对","followUpQuestions":[]}`,
	}
	svc := service.NewTutorService(gc, nil)
	conv := domain.NewConversation()
	conv.SetContext(domain.KnowledgeContext{Title: "物质"})

	type result struct {
		reply service.Reply
		err   error
	}
	done := make(chan result, 1)
	go func() {
		reply, err := svc.Send(context.Background(), conv, "物质是客观实在")
		done <- result{reply, err}
	}()

	<-gc.started
	conv.SetContext(domain.KnowledgeContext{Title: "意识"})
	close(gc.release)
	got := <-done

	if got.err != nil {
		t.Fatalf("send: %v", got.err)
	}
	if !got.reply.Verdict.Correct() {
		t.Fatalf("late reply must still be judged, got %+v", got.reply.Verdict)
	}
	if hist := conv.History(); len(hist) != 0 {
		t.Fatalf("late reply must not land in the new context's history, got %+v", hist)
	}
	if k, _ := conv.Context(); k.Title != "意识" {
		t.Fatalf("context = %q, want 意识", k.Title)
	}
}
