package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	coursedto "huixue/internal/modules/course/dto"
	"huixue/internal/modules/lesson/domain"
	lessondto "huixue/internal/modules/lesson/dto"
	lessonin "huixue/internal/modules/lesson/port/in"
	lessonout "huixue/internal/modules/lesson/port/out"
	progressdto "huixue/internal/modules/progress/dto"
	progressin "huixue/internal/modules/progress/port/in"
	tutordto "huixue/internal/modules/tutor/dto"
	tutorin "huixue/internal/modules/tutor/port/in"
	"huixue/internal/platform/clock"
	"huixue/internal/platform/effects"
	apperrors "huixue/internal/platform/errors"
	"huixue/internal/platform/id"
	"huixue/internal/platform/logging"
)

// Pacing of delayed effects.
const (
	MarkerMessageDelay = 500 * time.Millisecond
	ContinueDelay      = 1000 * time.Millisecond
	ResumeDelay        = 1500 * time.Millisecond
	VideoAdvanceDelay  = 2000 * time.Millisecond
	AnchorAdvanceDelay = 1500 * time.Millisecond
	ClearAnchorDelay   = 500 * time.Millisecond
	ArticleIntroDelay  = 300 * time.Millisecond
	SkipResumeDelay    = 1000 * time.Millisecond
	ReviewSeekDelay    = 300 * time.Millisecond
)

var ErrNoActiveMarker = errors.New("no active video marker")

var _ lessonin.Session = (*Session)(nil)

type Deps struct {
	Progress progressin.Usecase
	Tutor    tutorin.Conversation
	Player   lessonout.VideoPlayer
	Clock    clock.Clock
	IDs      id.Generator
	Logger   hclog.Logger
}

// turn is the tutor exchange in flight and what it answers: the view,
// marker and anchor in focus when the learner sent it.
type turn struct {
	view    domain.Stage
	marker  string
	anchor  *anchorRef
	discard bool
}

type anchorRef struct {
	view        domain.Stage
	id          string
	typ         string
	content     string
	description string
}

// Session owns all in-memory lesson state for one course and is the only
// writer of its progress record.
type Session struct {
	course   coursedto.Course
	progress progressin.Usecase
	tutor    tutorin.Conversation
	player   lessonout.VideoPlayer
	clock    clock.Clock
	ids      id.Generator
	logger   hclog.Logger
	effects  *effects.Queue

	path     *domain.LearningPath
	tracker  *domain.Tracker
	deck     *domain.Deck
	messages []domain.ChatMessage

	activeView    domain.Stage
	currentMarker string
	currentAnchor *anchorRef
	pending       *domain.Transition
	introToken    effects.Token
	clearToken    effects.Token

	turn       *turn
	loadWindow bool

	quizOpen      bool
	quizStarted   time.Time
	quizCompleted bool
	lastQuiz      *domain.QuizResult
	quizHistory   []domain.QuizResult

	celebration    domain.Celebration
	celebrationSeq int
}

func NewSession(course coursedto.Course, deps Deps) *Session {
	clk := deps.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	ids := deps.IDs
	if ids == nil {
		ids = id.Short{}
	}
	s := &Session{
		course:   course,
		progress: deps.Progress,
		tutor:    deps.Tutor,
		player:   deps.Player,
		clock:    clk,
		ids:      ids,
		logger:   logging.OrNull(deps.Logger).Named("session").With("course", course.ID),
		effects:  effects.New(clk),
	}
	s.resetState()
	return s
}

func (s *Session) resetState() {
	markerIDs := make([]string, 0, len(s.course.Markers))
	for _, m := range s.course.Markers {
		markerIDs = append(markerIDs, m.ID)
	}
	var articleIDs []string
	if s.course.Article != nil {
		for _, a := range s.course.Article.Anchors {
			articleIDs = append(articleIDs, a.ID)
		}
	}
	var questionIDs []string
	for _, q := range s.course.Questions {
		for _, a := range q.Anchors {
			questionIDs = append(questionIDs, a.ID)
		}
	}
	s.path = domain.NewLearningPath()
	s.tracker = domain.NewTracker(markerIDs, articleIDs, questionIDs)
	s.deck = domain.NewDeck()
	s.messages = nil
	s.activeView = domain.StageVideo
	s.currentMarker = ""
	s.currentAnchor = nil
	s.pending = nil
	s.quizOpen = false
	s.quizCompleted = false
	s.lastQuiz = nil
	s.quizHistory = nil
	s.celebration = domain.CelebrationNone
}

// Start resumes saved progress or greets a new learner. Nothing is saved
// while the stored record is being read back.
func (s *Session) Start(ctx context.Context) {
	s.loadWindow = true
	defer func() { s.loadWindow = false }()

	rec, ok := s.progress.Load(ctx, s.course.ID)
	total := len(s.course.Markers)
	if !ok {
		s.say(domain.WelcomeText(s.course.Title, total))
		return
	}

	s.tracker.Restore(domain.StageVideo, rec.CompletedMarkers)
	for _, kp := range rec.KnowledgePoints {
		s.deck.Add(cardFromDTO(kp))
	}
	s.quizCompleted = rec.QuizCompleted
	if rec.LastQuizResult != nil {
		r := quizFromDTO(*rec.LastQuizResult)
		s.lastQuiz = &r
	}
	for _, r := range rec.QuizResults {
		s.quizHistory = append(s.quizHistory, quizFromDTO(r))
	}

	_ = s.path.UpdateProgress(domain.StageVideo, s.tracker.Progress(domain.StageVideo))
	if s.tracker.AllComplete(domain.StageVideo) {
		if _, err := s.path.Advance(domain.StageVideo); err != nil {
			s.logger.Debug("resume advance skipped", "error", err)
		}
	}
	if view, err := domain.ParseStage(rec.ActiveView); err == nil && view.IsView() {
		s.activeView = view
		_ = s.path.SwitchView(view)
	}

	done := len(s.tracker.Completed(domain.StageVideo))
	pct := 0
	if total > 0 {
		pct = int(math.Round(100 * float64(done) / float64(total)))
	}
	s.logger.Info("progress restored", "markers", done, "cards", s.deck.Len(), "remaining_days", rec.RemainingDays)
	if pct > 0 {
		s.say(domain.WelcomeBackText(s.course.Title, pct, done, total))
	} else {
		s.say(domain.WelcomeText(s.course.Title, total))
	}
	if s.activeView == domain.StageArticle {
		s.scheduleArticleIntro()
	}
}

// Reset forgets all progress, stored and in memory, and cancels every
// pending effect. A tutor turn still in flight is discarded when it lands.
func (s *Session) Reset(ctx context.Context) {
	s.progress.Reset(ctx, s.course.ID)
	dropped := s.effects.CancelAll()
	s.tutor.Reset()
	s.player.Pause()
	s.player.SeekTo(0)
	s.resetState()
	if s.turn != nil {
		s.turn.discard = true
	}
	s.logger.Info("progress reset", "cancelled_effects", dropped)
	s.say(domain.ResetText(s.course.Title, len(s.course.Markers)))
}

func (s *Session) Tick() int { return s.effects.RunDue() }

func (s *Session) Play()  { s.player.Play() }
func (s *Session) Pause() { s.player.Pause() }

func (s *Session) AdvanceVideo(dt time.Duration) {
	if !s.player.Playing() {
		return
	}
	for _, mid := range s.player.Advance(dt) {
		if s.MarkerReached(mid) {
			return
		}
	}
}

// MarkerReached pauses at a marker and starts teaching it. It reports false
// for unknown or already completed markers.
func (s *Session) MarkerReached(markerID string) bool {
	m, ok := s.marker(markerID)
	if !ok || s.tracker.IsComplete(domain.StageVideo, markerID) {
		return false
	}
	s.player.Pause()
	s.currentMarker = m.ID
	if s.deck.Add(domain.CardFromMarker(m.ID, m.Type, m.Title, m.Description)) {
		s.saveCards()
	}
	s.tutor.SetContext(tutordto.KnowledgeContext{
		Title:           m.Title,
		Description:     m.Description,
		TeachingMessage: m.TeachingMessage,
		ExpectedAnswer:  m.ExpectedAnswer,
	})
	text := domain.MarkerText(m.Title, m.Description, m.TeachingMessage)
	s.effects.Schedule(MarkerMessageDelay, "marker-message:"+m.ID, func() { s.say(text) })
	return true
}

func (s *Session) SkipMarker() error {
	m, ok := s.marker(s.currentMarker)
	if !ok || s.tracker.IsComplete(domain.StageVideo, m.ID) {
		return ErrNoActiveMarker
	}
	mark := s.completeMarker(m.ID)
	s.say(domain.SkipText(m.Title))
	if mark.JustCompleted {
		s.effects.Schedule(VideoAdvanceDelay, "advance:video", func() { s.advance(domain.StageVideo) })
		return nil
	}
	s.effects.Schedule(SkipResumeDelay, "resume-play", s.player.Play)
	return nil
}

func (s *Session) Answer(ctx context.Context, text string) error {
	run, err := s.BeginAnswer(text)
	if err != nil {
		return err
	}
	reply, err := run(ctx)
	s.FinishAnswer(reply, err)
	return err
}

func (s *Session) BeginAnswer(text string) (lessonin.TurnFunc, error) {
	if s.turn != nil {
		return nil, apperrors.ErrTurnInFlight
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty answer", apperrors.ErrInvalidInput)
	}
	s.turn = &turn{view: s.activeView, marker: s.currentMarker}
	if s.currentAnchor != nil {
		a := *s.currentAnchor
		s.turn.anchor = &a
	}
	s.appendMessage(domain.ChatMessage{Role: domain.SpeakerUser, Content: text})
	conv := s.tutor
	return func(ctx context.Context) (tutordto.Reply, error) {
		return conv.Send(ctx, text)
	}, nil
}

// FinishAnswer applies a tutor reply to the marker or anchor the learner
// answered, whatever is in focus now. Only a judged, correct reply counts:
// it collects the anchor's card, completes the marker or anchor, and
// celebrates.
func (s *Session) FinishAnswer(reply tutordto.Reply, err error) {
	t := s.turn
	s.turn = nil
	if t == nil || t.discard {
		s.logger.Debug("tutor reply dropped", "reset_during_turn", t != nil)
		return
	}
	s.appendMessage(domain.ChatMessage{
		Role:      domain.SpeakerAI,
		Content:   reply.Message,
		Topic:     reply.Topic,
		FollowUps: reply.FollowUps,
	})
	if err != nil {
		s.logger.Warn("tutor turn failed", "error", err)
		return
	}
	if !reply.Verdict.Correct() {
		return
	}
	if !reply.Verdict.Confident() {
		s.logger.Debug("accepting keyword judgment", "confidence", reply.Verdict.Evaluation.Confidence)
	}

	switch t.view {
	case domain.StageArticle, domain.StageQuestion:
		a := t.anchor
		if a == nil || a.view != t.view {
			return
		}
		if s.deck.Add(domain.CardFromAnchor(a.id, a.typ, a.content, a.description, reply.Message)) {
			s.saveCards()
		}
		s.celebrate(domain.CelebrationLight)
		if s.currentAnchor != nil && s.currentAnchor.id == a.id {
			s.effects.Cancel(s.clearToken)
			s.clearToken = s.effects.Schedule(ClearAnchorDelay, "clear-anchor", func() { s.currentAnchor = nil })
		}
		s.completeAnchor(a.view, a.id)
	case domain.StageVideo:
		if t.marker == "" || s.tracker.IsComplete(domain.StageVideo, t.marker) {
			return
		}
		s.celebrate(domain.CelebrationLight)
		mark := s.completeMarker(t.marker)
		last := mark.JustCompleted
		s.effects.Schedule(ContinueDelay, "continue-message", func() {
			s.say(domain.ContinueText(last))
			if last {
				s.effects.Schedule(VideoAdvanceDelay, "advance:video", func() { s.advance(domain.StageVideo) })
				return
			}
			s.effects.Schedule(ResumeDelay, "resume-play", s.player.Play)
		})
	}
}

func (s *Session) completeMarker(markerID string) domain.Mark {
	mark, err := s.tracker.MarkComplete(domain.StageVideo, markerID)
	if err != nil {
		s.logger.Warn("marker completion rejected", "marker", markerID, "error", err)
		return mark
	}
	if mark.Added {
		_ = s.path.UpdateProgress(domain.StageVideo, mark.Progress)
		completed := s.tracker.Completed(domain.StageVideo)
		s.save(progressdto.SaveInput{CompletedMarkers: &completed})
	}
	return mark
}

func (s *Session) completeAnchor(view domain.Stage, anchorID string) {
	mark, err := s.tracker.MarkComplete(view, anchorID)
	if err != nil {
		s.logger.Warn("anchor completion rejected", "anchor", anchorID, "error", err)
		return
	}
	if !mark.Added {
		return
	}
	_ = s.path.UpdateProgress(view, mark.Progress)
	if mark.JustCompleted {
		s.effects.Schedule(AnchorAdvanceDelay, "advance:"+view.String(), func() { s.advance(view) })
	}
}

// advance completes a stage whose markers or anchors are all done. The
// learner may have moved to another view while the advance was pending; the
// stage completes anyway and the path stays on the view in use.
func (s *Session) advance(stage domain.Stage) {
	if s.path.IsCompleted(stage) {
		return
	}
	elsewhere := s.path.Current() != stage
	if elsewhere {
		if !s.tracker.AllComplete(stage) {
			return
		}
		_ = s.path.SwitchView(stage)
	}
	out, err := s.path.Advance(stage)
	if err != nil {
		s.logger.Warn("advance failed", "stage", stage, "error", err)
		return
	}
	s.logger.Info("stage completed", "stage", stage, "next", s.path.Current())
	if out.Prompt == nil {
		s.say(out.Completion)
		return
	}
	s.pending = out.Prompt
	if elsewhere && s.activeView.IsView() {
		_ = s.path.SwitchView(s.activeView)
	}
}

func (s *Session) ClickAnchor(anchorID string) error {
	switch s.activeView {
	case domain.StageArticle:
		if s.course.Article != nil {
			for _, a := range s.course.Article.Anchors {
				if a.ID == anchorID {
					s.focusAnchor(domain.StageArticle, a, a.Description)
					s.say(domain.AnchorPromptText(a.Content, a.TeachingPrompt))
					return nil
				}
			}
		}
	case domain.StageQuestion:
		for _, q := range s.course.Questions {
			for _, a := range q.Anchors {
				if a.ID == anchorID {
					reference := q.ReferenceAnswer
					if reference == "" {
						reference = q.Analysis
					}
					s.focusAnchor(domain.StageQuestion, a, domain.QuestionContext(q.Stem, reference, a.Description))
					s.say(domain.AnchorPromptText(a.Content, a.TeachingPrompt))
					return nil
				}
			}
		}
	}
	return fmt.Errorf("%w: anchor %q in %s view", apperrors.ErrNotFound, anchorID, s.activeView)
}

func (s *Session) focusAnchor(view domain.Stage, a coursedto.Anchor, description string) {
	s.effects.Cancel(s.clearToken)
	s.currentAnchor = &anchorRef{view: view, id: a.ID, typ: a.Type, content: a.Content, description: a.Description}
	s.tutor.SetContext(tutordto.KnowledgeContext{
		Title:           a.Content,
		Description:     description,
		TeachingMessage: a.TeachingPrompt,
	})
}

func (s *Session) ChangeView(name string) error {
	view, err := domain.ParseStage(name)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return s.changeView(view)
}

func (s *Session) changeView(view domain.Stage) error {
	if err := s.path.SwitchView(view); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	s.effects.Cancel(s.introToken)
	if s.activeView != view {
		s.activeView = view
		v := view.String()
		s.save(progressdto.SaveInput{ActiveView: &v})
	}
	if view == domain.StageArticle {
		s.scheduleArticleIntro()
	}
	return nil
}

func (s *Session) scheduleArticleIntro() {
	if s.course.Article == nil || len(s.course.Article.Anchors) == 0 {
		return
	}
	first := s.course.Article.Anchors[0]
	s.introToken = s.effects.Schedule(ArticleIntroDelay, "article-intro", func() {
		if s.activeView != domain.StageArticle {
			return
		}
		s.focusAnchor(domain.StageArticle, first, first.Description)
		s.say(domain.ArticleIntroText(first.Content, first.TeachingPrompt))
	})
}

func (s *Session) ConfirmTransition(skip bool) error {
	if s.pending == nil {
		return apperrors.ErrNoPendingDecision
	}
	next := s.pending.Next
	s.pending = nil
	guidance, view, activate := domain.ConfirmTransition(next, skip)
	if guidance != "" {
		s.say(guidance)
	}
	if !activate {
		return nil
	}
	return s.changeView(view)
}

func (s *Session) quizAvailable() bool {
	return s.course.Quiz != nil && len(s.course.Quiz.Questions) > 0 &&
		s.tracker.AllComplete(domain.StageVideo) && !s.quizCompleted
}

func (s *Session) StartQuiz() error {
	if !s.quizAvailable() {
		return apperrors.ErrQuizUnavailable
	}
	s.quizOpen = true
	s.quizStarted = s.clock.Now()
	s.player.Pause()
	return nil
}

func (s *Session) SubmitQuiz(selected map[string]int) (lessondto.QuizResult, error) {
	if !s.quizOpen || s.quizCompleted {
		return lessondto.QuizResult{}, apperrors.ErrQuizUnavailable
	}
	items := make([]domain.QuizItem, 0, len(s.course.Quiz.Questions))
	for _, q := range s.course.Quiz.Questions {
		items = append(items, domain.QuizItem{ID: q.ID, CorrectIndex: q.CorrectIndex, RelatedKnowledgePoint: q.RelatedKnowledgePoint})
	}
	res := domain.ScoreQuiz(items, selected, s.clock.Now().Sub(s.quizStarted))
	s.lastQuiz = &res
	s.quizCompleted = true
	s.quizHistory = append(s.quizHistory, res)
	if c := res.Celebration(); c != domain.CelebrationNone {
		s.celebrate(c)
	}
	s.logger.Info("quiz submitted", "score", res.Score, "correct", res.CorrectCount, "total", res.Total)

	done := true
	last := quizToDTO(res)
	history := make([]progressdto.QuizResult, 0, len(s.quizHistory))
	for _, r := range s.quizHistory {
		history = append(history, quizToDTO(r))
	}
	s.save(progressdto.SaveInput{
		QuizCompleted:     &done,
		LastQuizResult:    &last,
		SetLastQuizResult: true,
		QuizResults:       &history,
	})
	return quizResultDTO(res), nil
}

func (s *Session) CloseQuiz() { s.quizOpen = false }

// ReviewFromQuiz leaves the quiz and replays the video at a marker.
func (s *Session) ReviewFromQuiz(markerID string) error {
	if _, ok := s.marker(markerID); !ok {
		return fmt.Errorf("%w: marker %q", apperrors.ErrNotFound, markerID)
	}
	s.quizOpen = false
	if err := s.changeView(domain.StageVideo); err != nil {
		return err
	}
	s.effects.Schedule(ReviewSeekDelay, "seek:"+markerID, func() { s.player.SkipToMarker(markerID) })
	return nil
}

func (s *Session) ReviewCard(cardID string) error {
	c, ok := s.deck.Find(cardID)
	if !ok {
		return fmt.Errorf("%w: card %q", apperrors.ErrNotFound, cardID)
	}
	s.tutor.SetContext(tutordto.KnowledgeContext{Title: c.Content, Description: c.Translation})
	s.say(domain.ReviewText(c.Content, c.Translation))
	return nil
}

func (s *Session) celebrate(c domain.Celebration) {
	s.celebration = c
	s.celebrationSeq++
}

func (s *Session) say(text string) {
	s.appendMessage(domain.ChatMessage{Role: domain.SpeakerAI, Content: text})
}

func (s *Session) appendMessage(m domain.ChatMessage) {
	m.ID = s.ids.New()
	m.Timestamp = s.clock.Now()
	s.messages = append(s.messages, m)
}

func (s *Session) saveCards() {
	cards := s.deck.Cards()
	points := make([]progressdto.KnowledgePoint, 0, len(cards))
	for _, c := range cards {
		points = append(points, cardToDTO(c))
	}
	s.save(progressdto.SaveInput{KnowledgePoints: &points})
}

// save writes a partial record, except while Start is reading one back.
func (s *Session) save(in progressdto.SaveInput) {
	if s.loadWindow {
		return
	}
	in.CourseID = s.course.ID
	s.progress.Save(context.Background(), in)
}

func (s *Session) marker(markerID string) (coursedto.Marker, bool) {
	for _, m := range s.course.Markers {
		if m.ID == markerID {
			return m, true
		}
	}
	return coursedto.Marker{}, false
}
