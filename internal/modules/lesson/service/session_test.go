package service_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	coursedto "huixue/internal/modules/course/dto"
	lessonadapter "huixue/internal/modules/lesson/adapter/out"
	lessonout "huixue/internal/modules/lesson/port/out"
	"huixue/internal/modules/lesson/service"
	progressadapter "huixue/internal/modules/progress/adapter/out"
	progressdto "huixue/internal/modules/progress/dto"
	progressin "huixue/internal/modules/progress/port/in"
	progressservice "huixue/internal/modules/progress/service"
	progressusecase "huixue/internal/modules/progress/usecase"
	tutordto "huixue/internal/modules/tutor/dto"
	"huixue/internal/platform/clock"
	apperrors "huixue/internal/platform/errors"
)

var start = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeConversation struct {
	replies  []tutordto.Reply
	errs     []error
	contexts []tutordto.KnowledgeContext
	sent     []string
	resets   int
}

func (c *fakeConversation) SetContext(k tutordto.KnowledgeContext) { c.contexts = append(c.contexts, k) }

func (c *fakeConversation) Send(_ context.Context, text string) (tutordto.Reply, error) {
	c.sent = append(c.sent, text)
	if len(c.replies) == 0 {
		return tutordto.Reply{Message: "嗯", Verdict: tutordto.Verdict{Kind: tutordto.VerdictUnjudged}}, nil
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	var err error
	if len(c.errs) > 0 {
		err, c.errs = c.errs[0], c.errs[1:]
	}
	return r, err
}

func (c *fakeConversation) Reset() { c.resets++ }

func (c *fakeConversation) History() []tutordto.Turn { return nil }

func (c *fakeConversation) queue(replies ...tutordto.Reply) { c.replies = append(c.replies, replies...) }

func correct() tutordto.Reply {
	return tutordto.Reply{
		Message: "回答正确！物质的唯一特性是客观实在性。",
		Verdict: tutordto.Verdict{Kind: tutordto.VerdictStructured, Evaluation: tutordto.Evaluation{IsCorrect: true, Confidence: 0.9}},
	}
}

func wrong() tutordto.Reply {
	return tutordto.Reply{
		Message: "再想想。",
		Verdict: tutordto.Verdict{Kind: tutordto.VerdictStructured, Evaluation: tutordto.Evaluation{IsCorrect: false, Confidence: 0.8}},
	}
}

type countingProgress struct {
	progressin.Usecase
	saves int
}

func (p *countingProgress) Save(ctx context.Context, in progressdto.SaveInput) {
	p.saves++
	p.Usecase.Save(ctx, in)
}

type fixture struct {
	session  *service.Session
	conv     *fakeConversation
	clock    *clock.Manual
	progress *countingProgress
	player   lessonout.VideoPlayer
	course   coursedto.Course
	data     string
}

func testCourse() coursedto.Course {
	return coursedto.Course{
		ID:       "marxism-matter",
		Title:    "物质与意识",
		Duration: 60,
		Markers: []coursedto.Marker{
			{ID: "m1", Time: 10, Title: "物质的定义", Type: "important", Description: "客观实在", TeachingMessage: "什么是物质？", ExpectedAnswer: "客观实在"},
			{ID: "m2", Time: 20, Title: "意识的本质", Type: "important", Description: "人脑的机能", TeachingMessage: "意识是什么？"},
			{ID: "m3", Time: 30, Title: "能动作用", Type: "error_prone", Description: "意识反作用于物质", TeachingMessage: "举个例子？"},
		},
		Article: &coursedto.Article{
			ID:      "a",
			Title:   "物质与意识",
			Content: "物质是不依赖于人的意识的客观实在。",
			Anchors: []coursedto.Anchor{{ID: "a1", Start: 0, End: 2, Content: "物质", Type: "error_prone", Description: "客观实在", TeachingPrompt: "物质的唯一特性是？"}},
		},
		Questions: []coursedto.Question{{
			ID:              "q1",
			Stem:            "下列属于物质的是？",
			ReferenceAnswer: "客观存在的事物",
			Anchors:         []coursedto.Anchor{{ID: "qa1", Content: "物质", Type: "important", Description: "判断标准", TeachingPrompt: "判断标准是什么？"}},
		}},
		Quiz: &coursedto.Quiz{TimeLimitMinutes: 5, Questions: []coursedto.QuizQuestion{
			{ID: "z1", Question: "物质的唯一特性", Options: []string{"运动", "客观实在"}, CorrectIndex: 1, RelatedKnowledgePoint: "m1"},
			{ID: "z2", Question: "意识是", Options: []string{"人脑的机能", "物质"}, CorrectIndex: 0, RelatedKnowledgePoint: "m2"},
		}},
	}
}

func newFixture(t *testing.T, edits ...func(*coursedto.Course)) *fixture {
	t.Helper()
	data := t.TempDir()
	course := testCourse()
	for _, edit := range edits {
		edit(&course)
	}
	f := &fixture{data: data, conv: &fakeConversation{}, clock: clock.NewManual(start), course: course}
	f.progress = &countingProgress{Usecase: newProgress(data, f.clock)}
	f.reopen()
	return f
}

func newProgress(data string, clk clock.Clock) progressin.Usecase {
	store := progressadapter.NewFileKVStore(data)
	svc := progressservice.NewProgressService(clk, store, nil)
	return progressusecase.NewInteractor(svc, progressadapter.NewVaultCardWriter(data), clk)
}

// reopen builds a fresh session over the same store, as a restart would.
func (f *fixture) reopen() {
	cues := make([]lessonout.Cue, 0, len(f.course.Markers))
	for _, m := range f.course.Markers {
		cues = append(cues, lessonout.Cue{ID: m.ID, Time: m.Time})
	}
	f.player = lessonadapter.NewSimulatedPlayer(context.Background(), "", f.course.Duration, cues, nil, nil)
	f.session = service.NewSession(f.course, service.Deps{
		Progress: f.progress,
		Tutor:    f.conv,
		Player:   f.player,
		Clock:    f.clock,
	})
}

func (f *fixture) wait(d time.Duration) {
	f.clock.Advance(d)
	f.session.Tick()
}

func (f *fixture) lastMessage() string {
	msgs := f.session.Snapshot().Messages
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Content
}

// answerMarker reaches a marker, lets its message arrive and answers it
// correctly, then drains the follow-up effects.
func (f *fixture) answerMarker(t *testing.T, id string) {
	t.Helper()
	if !f.session.MarkerReached(id) {
		t.Fatalf("marker %s must be reachable", id)
	}
	f.wait(service.MarkerMessageDelay)
	f.conv.queue(correct())
	if err := f.session.Answer(context.Background(), "客观实在"); err != nil {
		t.Fatalf("answer %s: %v", id, err)
	}
	f.wait(service.ContinueDelay)
	f.wait(service.VideoAdvanceDelay)
}

func TestFreshStartGreets(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.session.Start(context.Background())

	snap := f.session.Snapshot()
	if len(snap.Messages) != 1 || !strings.Contains(snap.Messages[0].Content, "3 个重点知识点") {
		t.Fatalf("unexpected greeting %+v", snap.Messages)
	}
	if snap.ActiveView != "video" || snap.CurrentStage != "video" || snap.MarkerTotal != 3 {
		t.Fatalf("unexpected initial state %+v", snap)
	}
	if f.progress.saves != 0 {
		t.Fatalf("starting must not save, got %d saves", f.progress.saves)
	}
}

func TestMarkerTeachingFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.session.Start(ctx)

	f.session.Play()
	f.session.AdvanceVideo(12 * time.Second)
	snap := f.session.Snapshot()
	if snap.Playing || snap.CurrentMarker != "m1" {
		t.Fatalf("reaching m1 must pause on it, got playing=%v marker=%q", snap.Playing, snap.CurrentMarker)
	}
	if len(snap.Cards) != 1 || snap.Cards[0].Content != "物质的定义" {
		t.Fatalf("marker card must be collected, got %+v", snap.Cards)
	}
	if f.conv.contexts[0].ExpectedAnswer != "客观实在" {
		t.Fatalf("tutor must receive the marker context, got %+v", f.conv.contexts)
	}
	if len(snap.Messages) != 1 {
		t.Fatalf("teaching message must be delayed")
	}
	f.wait(service.MarkerMessageDelay)
	if !strings.Contains(f.lastMessage(), "什么是物质？") {
		t.Fatalf("expected teaching message, got %q", f.lastMessage())
	}

	f.conv.queue(wrong())
	if err := f.session.Answer(ctx, "运动"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got := f.session.Snapshot(); len(got.CompletedMarkers) != 0 || got.CelebrationSeq != 0 {
		t.Fatalf("a wrong answer must not complete the marker")
	}

	f.conv.queue(correct())
	if err := f.session.Answer(ctx, "客观实在"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	snap = f.session.Snapshot()
	if !reflect.DeepEqual(snap.CompletedMarkers, []string{"m1"}) || snap.Celebration != "light" || snap.CelebrationSeq != 1 {
		t.Fatalf("correct answer must complete m1, got %+v", snap)
	}
	if snap.StageProgress.Video < 33 || snap.StageProgress.Video > 34 {
		t.Fatalf("unexpected video progress %v", snap.StageProgress.Video)
	}
	f.wait(service.ContinueDelay)
	if !strings.Contains(f.lastMessage(), "继续") {
		t.Fatalf("expected continue message, got %q", f.lastMessage())
	}
	f.wait(service.ResumeDelay)
	if !f.session.Snapshot().Playing {
		t.Fatalf("video must resume after the continue message")
	}

	rec, ok := f.progress.Load(ctx, f.course.ID)
	if !ok || !reflect.DeepEqual(rec.CompletedMarkers, []string{"m1"}) || len(rec.KnowledgePoints) != 1 {
		t.Fatalf("progress must be saved, got %+v", rec)
	}
	if f.session.MarkerReached("m1") {
		t.Fatalf("a completed marker must not pause the video again")
	}
}

func TestCompletingAllViewsWalksThePath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.session.Start(ctx)

	for _, id := range []string{"m1", "m2", "m3"} {
		f.answerMarker(t, id)
	}
	snap := f.session.Snapshot()
	if !snap.AllMarkersCompleted || snap.PendingTransition == nil || snap.PendingTransition.Next != "article" {
		t.Fatalf("finishing the video must prompt for the article, got %+v", snap.PendingTransition)
	}
	if !reflect.DeepEqual(snap.CompletedStages, []string{"video"}) {
		t.Fatalf("unexpected completed stages %v", snap.CompletedStages)
	}

	if err := f.session.ConfirmTransition(false); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !strings.Contains(f.lastMessage(), "文章精读模式") {
		t.Fatalf("expected guidance, got %q", f.lastMessage())
	}
	if err := f.session.ConfirmTransition(false); !errors.Is(err, apperrors.ErrNoPendingDecision) {
		t.Fatalf("expected no pending decision, got %v", err)
	}
	f.wait(service.ArticleIntroDelay)
	snap = f.session.Snapshot()
	if snap.ActiveView != "article" || snap.CurrentAnchor != "a1" {
		t.Fatalf("article intro must focus the first anchor, got %+v", snap)
	}

	f.conv.queue(correct())
	if err := f.session.Answer(ctx, "客观实在性"); err != nil {
		t.Fatalf("answer anchor: %v", err)
	}
	snap = f.session.Snapshot()
	if !reflect.DeepEqual(snap.ArticleAnchorsDone, []string{"a1"}) || len(snap.Cards) != 4 {
		t.Fatalf("anchor must complete and collect a card, got %+v", snap)
	}
	if last := snap.Cards[3]; last.Type != "grammar" || last.ExampleInText != correct().Message {
		t.Fatalf("unexpected anchor card %+v", last)
	}
	f.wait(service.ClearAnchorDelay)
	if f.session.Snapshot().CurrentAnchor != "" {
		t.Fatalf("anchor focus must clear")
	}
	f.wait(service.AnchorAdvanceDelay)
	snap = f.session.Snapshot()
	if snap.PendingTransition == nil || snap.PendingTransition.Next != "question" {
		t.Fatalf("finishing the article must prompt for questions, got %+v", snap.PendingTransition)
	}

	if err := f.session.ConfirmTransition(true); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := f.session.ClickAnchor("qa1"); err != nil {
		t.Fatalf("click: %v", err)
	}
	if ctxs := f.conv.contexts; !strings.Contains(ctxs[len(ctxs)-1].Description, "下列属于物质的是？") {
		t.Fatalf("question anchors must carry the stem, got %+v", ctxs[len(ctxs)-1])
	}
	f.conv.queue(correct())
	if err := f.session.Answer(ctx, "客观存在"); err != nil {
		t.Fatalf("answer question: %v", err)
	}
	f.wait(service.AnchorAdvanceDelay)
	snap = f.session.Snapshot()
	if snap.CurrentStage != "completed" || snap.OverallPercent != 100 || snap.PendingTransition != nil {
		t.Fatalf("expected a completed path, got %+v", snap)
	}
	if !strings.Contains(f.lastMessage(), "完成所有学习阶段") {
		t.Fatalf("expected completion message, got %q", f.lastMessage())
	}

	rec, _ := f.progress.Load(ctx, f.course.ID)
	if rec.ActiveView != "question" || len(rec.KnowledgePoints) != 5 {
		t.Fatalf("unexpected saved record %+v", rec)
	}
}

func TestResumeRestoresSavedProgress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.session.Start(ctx)
	for _, id := range []string{"m1", "m2", "m3"} {
		f.answerMarker(t, id)
	}
	if err := f.session.ConfirmTransition(true); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	f.reopen()
	before := f.progress.saves
	f.session.Start(ctx)
	if f.progress.saves != before {
		t.Fatalf("resuming must not write while loading")
	}
	snap := f.session.Snapshot()
	if !strings.Contains(snap.Messages[0].Content, "欢迎回来") {
		t.Fatalf("expected welcome back, got %q", snap.Messages[0].Content)
	}
	if snap.ActiveView != "article" || !reflect.DeepEqual(snap.CompletedStages, []string{"video"}) || len(snap.Cards) != 3 {
		t.Fatalf("unexpected restored state %+v", snap)
	}
	if !snap.QuizAvailable {
		t.Fatalf("quiz must be available once every marker is done")
	}
}

func TestUnjudgedAndFailedRepliesChangeNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.session.Start(ctx)
	f.session.MarkerReached("m1")

	if err := f.session.Answer(ctx, "不知道"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	f.conv.queue(tutordto.Reply{Message: "抱歉", Verdict: tutordto.Verdict{Kind: tutordto.VerdictUnjudged, Evaluation: tutordto.Evaluation{IsCorrect: true}}})
	f.conv.errs = []error{apperrors.ErrTutorUnavailable}
	if err := f.session.Answer(ctx, "客观实在"); !errors.Is(err, apperrors.ErrTutorUnavailable) {
		t.Fatalf("expected tutor unavailable, got %v", err)
	}
	snap := f.session.Snapshot()
	if len(snap.CompletedMarkers) != 0 || snap.Loading || snap.CelebrationSeq != 0 {
		t.Fatalf("unjudged replies must not complete anything, got %+v", snap)
	}
	if f.lastMessage() != "抱歉" {
		t.Fatalf("the apology must be shown, got %q", f.lastMessage())
	}
}

func TestBeginAnswerRejectsOverlappingTurns(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.session.Start(context.Background())

	run, err := f.session.BeginAnswer("第一")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if !f.session.Snapshot().Loading {
		t.Fatalf("session must be loading during a turn")
	}
	if _, err := f.session.BeginAnswer("第二"); !errors.Is(err, apperrors.ErrTurnInFlight) {
		t.Fatalf("expected turn in flight, got %v", err)
	}
	if _, err := f.session.BeginAnswer(""); !errors.Is(err, apperrors.ErrTurnInFlight) {
		t.Fatalf("expected turn in flight, got %v", err)
	}
	f.session.FinishAnswer(run(context.Background()))
	if _, err := f.session.BeginAnswer(""); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func withSecondArticleAnchor(c *coursedto.Course) {
	c.Article.Anchors = append(c.Article.Anchors, coursedto.Anchor{
		ID: "a2", Content: "意识", Type: "important", Description: "人脑的机能", TeachingPrompt: "意识从哪里来？",
	})
}

func TestReplyCreditsTheAnchorThatWasAnswered(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, withSecondArticleAnchor)
	f.session.Start(ctx)
	if err := f.session.ChangeView("article"); err != nil {
		t.Fatalf("change view: %v", err)
	}
	f.wait(service.ArticleIntroDelay)
	if got := f.session.Snapshot().CurrentAnchor; got != "a1" {
		t.Fatalf("intro must focus a1, got %q", got)
	}

	run, err := f.session.BeginAnswer("客观实在性")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := f.session.ClickAnchor("a2"); err != nil {
		t.Fatalf("click: %v", err)
	}
	f.conv.queue(correct())
	f.session.FinishAnswer(run(ctx))

	snap := f.session.Snapshot()
	if !reflect.DeepEqual(snap.ArticleAnchorsDone, []string{"a1"}) {
		t.Fatalf("the answered anchor must complete, got %v", snap.ArticleAnchorsDone)
	}
	if n := len(snap.Cards); n != 1 || snap.Cards[0].Content != "物质" {
		t.Fatalf("the answered anchor's card must be collected, got %+v", snap.Cards)
	}
	f.wait(service.ClearAnchorDelay)
	if got := f.session.Snapshot().CurrentAnchor; got != "a2" {
		t.Fatalf("focus on the newly clicked anchor must stay, got %q", got)
	}
}

func TestReplyCreditsTheMarkerThatWasAnswered(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.session.Start(ctx)
	f.session.MarkerReached("m1")

	run, err := f.session.BeginAnswer("客观实在")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	f.session.MarkerReached("m2")
	f.conv.queue(correct())
	f.session.FinishAnswer(run(ctx))

	if got := f.session.Snapshot().CompletedMarkers; !reflect.DeepEqual(got, []string{"m1"}) {
		t.Fatalf("the answered marker must complete, got %v", got)
	}
}

func TestVideoCompletesWhenViewChangesBeforeAdvance(t *testing.T) {
	t.Parallel()
	for _, view := range []string{"article", "question"} {
		view := view
		t.Run(view, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			f := newFixture(t)
			f.session.Start(ctx)
			f.answerMarker(t, "m1")
			f.answerMarker(t, "m2")

			f.session.MarkerReached("m3")
			f.wait(service.MarkerMessageDelay)
			f.conv.queue(correct())
			if err := f.session.Answer(ctx, "主观能动性"); err != nil {
				t.Fatalf("answer: %v", err)
			}
			f.wait(service.ContinueDelay)
			if err := f.session.ChangeView(view); err != nil {
				t.Fatalf("change view: %v", err)
			}
			f.wait(service.VideoAdvanceDelay)

			snap := f.session.Snapshot()
			if !reflect.DeepEqual(snap.CompletedStages, []string{"video"}) || snap.StageProgress.Video != 100 {
				t.Fatalf("video must complete once, got stages=%v progress=%v", snap.CompletedStages, snap.StageProgress.Video)
			}
			if snap.PendingTransition == nil || snap.PendingTransition.Next != "article" {
				t.Fatalf("expected the article prompt, got %+v", snap.PendingTransition)
			}
			if snap.ActiveView != view || snap.CurrentStage != view {
				t.Fatalf("the learner's view must be kept, got view=%s stage=%s", snap.ActiveView, snap.CurrentStage)
			}

			if err := f.session.ChangeView("video"); err != nil {
				t.Fatalf("change view: %v", err)
			}
			f.wait(time.Minute)
			if got := f.session.Snapshot().CompletedStages; !reflect.DeepEqual(got, []string{"video"}) {
				t.Fatalf("video must not complete twice, got %v", got)
			}
		})
	}
}

func TestResetDuringTurnDropsTheLateReply(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.session.Start(ctx)
	f.session.MarkerReached("m1")
	f.wait(service.MarkerMessageDelay)

	run, err := f.session.BeginAnswer("客观实在")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	f.session.Reset(ctx)
	if _, err := f.session.BeginAnswer("再来"); !errors.Is(err, apperrors.ErrTurnInFlight) {
		t.Fatalf("the old turn still owns the tutor, got %v", err)
	}
	f.conv.queue(correct())
	f.session.FinishAnswer(run(ctx))

	snap := f.session.Snapshot()
	if len(snap.CompletedMarkers) != 0 || snap.CelebrationSeq != 0 || snap.Loading {
		t.Fatalf("a reply from before the reset must change nothing, got %+v", snap)
	}
	if len(snap.Messages) != 1 || !strings.Contains(snap.Messages[0].Content, "重置") {
		t.Fatalf("only the reset message must remain, got %+v", snap.Messages)
	}
	if _, ok := f.progress.Load(ctx, f.course.ID); ok {
		t.Fatalf("the late reply must not write progress")
	}
}

func TestSkipMarker(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.session.Start(context.Background())

	if err := f.session.SkipMarker(); !errors.Is(err, service.ErrNoActiveMarker) {
		t.Fatalf("expected no active marker, got %v", err)
	}
	f.session.MarkerReached("m1")
	if err := f.session.SkipMarker(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if !strings.Contains(f.lastMessage(), "物质的定义") {
		t.Fatalf("expected skip message, got %q", f.lastMessage())
	}
	if err := f.session.SkipMarker(); !errors.Is(err, service.ErrNoActiveMarker) {
		t.Fatalf("a skipped marker cannot be skipped twice, got %v", err)
	}
	f.wait(service.SkipResumeDelay)
	snap := f.session.Snapshot()
	if !snap.Playing || !reflect.DeepEqual(snap.CompletedMarkers, []string{"m1"}) || snap.CelebrationSeq != 0 {
		t.Fatalf("skip must complete quietly and resume, got %+v", snap)
	}
}

func TestResetCancelsPendingEffects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.session.Start(ctx)
	f.answerMarker(t, "m1")
	f.session.MarkerReached("m2")

	f.session.Reset(ctx)
	snap := f.session.Snapshot()
	if len(snap.PendingEffects) != 0 || len(snap.Messages) != 1 || len(snap.Cards) != 0 || len(snap.CompletedMarkers) != 0 {
		t.Fatalf("reset must clear the session, got %+v", snap)
	}
	if snap.Position != 0 || snap.Playing || f.conv.resets != 1 {
		t.Fatalf("reset must rewind and clear the tutor")
	}
	f.wait(time.Minute)
	if len(f.session.Snapshot().Messages) != 1 {
		t.Fatalf("cancelled effects must not run")
	}
	if _, ok := f.progress.Load(ctx, f.course.ID); ok {
		t.Fatalf("stored progress must be removed")
	}
}

func TestChangeViewCancelsArticleIntro(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.session.Start(context.Background())

	if err := f.session.ChangeView("article"); err != nil {
		t.Fatalf("change view: %v", err)
	}
	if err := f.session.ChangeView("video"); err != nil {
		t.Fatalf("change view: %v", err)
	}
	f.wait(time.Second)
	if snap := f.session.Snapshot(); snap.CurrentAnchor != "" || len(snap.Messages) != 1 {
		t.Fatalf("leaving the article must cancel its intro, got %+v", snap)
	}
	if err := f.session.ChangeView("completed"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if err := f.session.ClickAnchor("a1"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("article anchors are not clickable from the video, got %v", err)
	}
}

func TestQuiz(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.session.Start(ctx)

	if err := f.session.StartQuiz(); !errors.Is(err, apperrors.ErrQuizUnavailable) {
		t.Fatalf("quiz must wait for the video, got %v", err)
	}
	for _, id := range []string{"m1", "m2", "m3"} {
		f.session.MarkerReached(id)
		if err := f.session.SkipMarker(); err != nil {
			t.Fatalf("skip %s: %v", id, err)
		}
	}
	if err := f.session.StartQuiz(); err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if d := f.session.Snapshot().QuizDeadline; !d.Equal(start.Add(5 * time.Minute)) {
		t.Fatalf("unexpected deadline %v", d)
	}
	f.clock.Advance(90 * time.Second)
	res, err := f.session.SubmitQuiz(map[string]int{"z1": 1, "z2": 0})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 100 || res.TimeTaken != 90 {
		t.Fatalf("unexpected result %+v", res)
	}
	snap := f.session.Snapshot()
	if snap.Celebration != "full" || snap.QuizAvailable || !snap.QuizCompleted || len(snap.QuizHistory) != 1 {
		t.Fatalf("unexpected quiz state %+v", snap)
	}
	if _, err := f.session.SubmitQuiz(nil); !errors.Is(err, apperrors.ErrQuizUnavailable) {
		t.Fatalf("a quiz is submitted once, got %v", err)
	}
	rec, _ := f.progress.Load(ctx, f.course.ID)
	if !rec.QuizCompleted || rec.LastQuizResult == nil || rec.LastQuizResult.Score != 100 {
		t.Fatalf("quiz result must be saved, got %+v", rec)
	}

	if err := f.session.ReviewFromQuiz("m2"); err != nil {
		t.Fatalf("review: %v", err)
	}
	f.wait(service.ReviewSeekDelay)
	snap = f.session.Snapshot()
	if snap.QuizOpen || snap.ActiveView != "video" || snap.Position != 19.5 || !snap.Playing {
		t.Fatalf("review must replay just before the marker, got %+v", snap)
	}
}

func TestReviewCard(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.session.Start(context.Background())
	f.session.MarkerReached("m2")

	if err := f.session.ReviewCard("zz"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := f.session.ReviewCard("m2"); err != nil {
		t.Fatalf("review card: %v", err)
	}
	if !strings.Contains(f.lastMessage(), "意识的本质") {
		t.Fatalf("expected review message, got %q", f.lastMessage())
	}
}
