package service

import (
	"time"

	"huixue/internal/modules/lesson/domain"
	lessondto "huixue/internal/modules/lesson/dto"
	progressdto "huixue/internal/modules/progress/dto"
)

func (s *Session) Snapshot() lessondto.Snapshot {
	completed := s.path.Completed()
	stages := make([]string, 0, len(completed))
	for _, c := range completed {
		stages = append(stages, c.String())
	}

	snap := lessondto.Snapshot{
		CourseID:        s.course.ID,
		CourseTitle:     s.course.Title,
		ActiveView:      s.activeView.String(),
		CurrentStage:    s.path.Current().String(),
		CompletedStages: stages,
		StageProgress: lessondto.StageProgress{
			Video:    s.path.Progress(domain.StageVideo),
			Article:  s.path.Progress(domain.StageArticle),
			Question: s.path.Progress(domain.StageQuestion),
		},
		OverallPercent: s.path.Percent(),

		Messages: make([]lessondto.Message, 0, len(s.messages)),
		Loading:  s.turn != nil,
		Cards:    make([]lessondto.Card, 0, s.deck.Len()),

		CompletedMarkers:    s.tracker.Completed(domain.StageVideo),
		MarkerTotal:         s.tracker.Total(domain.StageVideo),
		AllMarkersCompleted: s.tracker.AllComplete(domain.StageVideo),
		CurrentMarker:       s.currentMarker,
		ArticleAnchorsDone:  s.tracker.Completed(domain.StageArticle),
		QuestionAnchorsDone: s.tracker.Completed(domain.StageQuestion),

		QuizAvailable: s.quizAvailable(),
		QuizOpen:      s.quizOpen,
		QuizCompleted: s.quizCompleted,

		Celebration:    s.celebration.String(),
		CelebrationSeq: s.celebrationSeq,

		Playing:        s.player.Playing(),
		Position:       s.player.Position(),
		PendingEffects: s.effects.Labels(),
	}
	for _, m := range s.messages {
		snap.Messages = append(snap.Messages, lessondto.Message{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
			Topic:     m.Topic,
			FollowUps: m.FollowUps,
		})
	}
	for _, c := range s.deck.Cards() {
		snap.Cards = append(snap.Cards, lessondto.Card(c))
	}
	if s.currentAnchor != nil {
		snap.CurrentAnchor = s.currentAnchor.id
	}
	if p := s.pending; p != nil {
		snap.PendingTransition = &lessondto.Transition{
			Title:    p.Title,
			Message:  p.Message,
			Next:     p.Next.String(),
			NextName: p.NextName,
			ShowSkip: p.ShowSkip,
		}
	}
	if s.quizOpen && s.course.Quiz != nil && s.course.Quiz.TimeLimitMinutes > 0 {
		snap.QuizDeadline = s.quizStarted.Add(time.Duration(s.course.Quiz.TimeLimitMinutes) * time.Minute)
	}
	if s.lastQuiz != nil {
		r := quizResultDTO(*s.lastQuiz)
		snap.LastQuiz = &r
	}
	for _, r := range s.quizHistory {
		snap.QuizHistory = append(snap.QuizHistory, quizResultDTO(r))
	}
	return snap
}

func quizResultDTO(r domain.QuizResult) lessondto.QuizResult {
	out := lessondto.QuizResult{
		Score:        r.Score,
		Total:        r.Total,
		CorrectCount: r.CorrectCount,
		TimeTaken:    r.TimeTaken,
		WeakPoints:   r.WeakPoints,
		Answers:      make([]lessondto.QuizAnswer, 0, len(r.Answers)),
	}
	for _, a := range r.Answers {
		out.Answers = append(out.Answers, lessondto.QuizAnswer(a))
	}
	return out
}

func cardToDTO(c domain.Card) progressdto.KnowledgePoint {
	return progressdto.KnowledgePoint{
		ID:            c.ID,
		Type:          c.Type,
		Content:       c.Content,
		Phonetic:      c.Phonetic,
		Translation:   c.Translation,
		ExampleInText: c.ExampleInText,
		ExampleOther:  c.ExampleOther,
	}
}

func cardFromDTO(k progressdto.KnowledgePoint) domain.Card {
	return domain.Card{
		ID:            k.ID,
		Type:          k.Type,
		Content:       k.Content,
		Phonetic:      k.Phonetic,
		Translation:   k.Translation,
		ExampleInText: k.ExampleInText,
		ExampleOther:  k.ExampleOther,
	}
}

func quizToDTO(r domain.QuizResult) progressdto.QuizResult {
	out := progressdto.QuizResult{
		Score:        r.Score,
		Total:        r.Total,
		CorrectCount: r.CorrectCount,
		TimeTaken:    r.TimeTaken,
		WeakPoints:   r.WeakPoints,
	}
	for _, a := range r.Answers {
		out.Answers = append(out.Answers, progressdto.QuizAnswer(a))
	}
	return out
}

func quizFromDTO(r progressdto.QuizResult) domain.QuizResult {
	out := domain.QuizResult{
		Score:        r.Score,
		Total:        r.Total,
		CorrectCount: r.CorrectCount,
		TimeTaken:    r.TimeTaken,
		WeakPoints:   r.WeakPoints,
	}
	for _, a := range r.Answers {
		out.Answers = append(out.Answers, domain.QuizAnswer(a))
	}
	return out
}
