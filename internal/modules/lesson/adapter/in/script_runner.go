package in

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	lessondto "huixue/internal/modules/lesson/dto"
	lessonin "huixue/internal/modules/lesson/port/in"
)

// Stepper moves the clock the session's effects are scheduled on.
type Stepper interface {
	Advance(d time.Duration)
}

// watchStep is the playback granularity of the watch verb.
const watchStep = 250 * time.Millisecond

// ScriptRunner replays a lesson from a line-oriented script against a manual
// clock and prints every new chat message.
//
//	play | pause
//	watch <seconds>        advance playback, stopping at a marker
//	reach <marker>
//	answer <text...>
//	skip
//	view video|article|question
//	anchor <id>
//	confirm [skip]
//	wait <ms>
//	quiz start | quiz submit <question>=<index>...
//	review <marker>
//	card <id>
//	reset
type ScriptRunner struct {
	usecase lessonin.Usecase
	clock   Stepper
	out     io.Writer
}

func NewScriptRunner(usecase lessonin.Usecase, clock Stepper, out io.Writer) ScriptRunner {
	return ScriptRunner{usecase: usecase, clock: clock, out: out}
}

func (r ScriptRunner) Run(ctx context.Context, courseID string, script io.Reader) (lessondto.Snapshot, error) {
	session, err := r.usecase.Open(ctx, courseID)
	if err != nil {
		return lessondto.Snapshot{}, err
	}
	printed := 0
	flush := func() {
		msgs := session.Snapshot().Messages
		if len(msgs) < printed {
			printed = 0
		}
		for _, m := range msgs[printed:] {
			fmt.Fprintf(r.out, "[%s] %s\n", m.Role, m.Content)
		}
		printed = len(msgs)
	}

	session.Start(ctx)
	flush()

	scanner := bufio.NewScanner(script)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := r.step(ctx, session, text); err != nil {
			return session.Snapshot(), fmt.Errorf("line %d %q: %w", line, text, err)
		}
		flush()
	}
	if err := scanner.Err(); err != nil {
		return session.Snapshot(), fmt.Errorf("read script: %w", err)
	}
	return session.Snapshot(), nil
}

func (r ScriptRunner) step(ctx context.Context, s lessonin.Session, text string) error {
	verb, rest, _ := strings.Cut(text, " ")
	rest = strings.TrimSpace(rest)
	switch verb {
	case "play":
		s.Play()
	case "pause":
		s.Pause()
	case "watch":
		secs, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		r.watch(s, time.Duration(secs*float64(time.Second)))
	case "reach":
		if !s.MarkerReached(rest) {
			return fmt.Errorf("marker %q is unknown or already done", rest)
		}
	case "answer":
		return s.Answer(ctx, rest)
	case "skip":
		return s.SkipMarker()
	case "view":
		return s.ChangeView(rest)
	case "anchor":
		return s.ClickAnchor(rest)
	case "confirm":
		return s.ConfirmTransition(rest == "skip")
	case "wait":
		ms, err := strconv.Atoi(rest)
		if err != nil || ms < 0 {
			return fmt.Errorf("wait: invalid milliseconds %q", rest)
		}
		r.clock.Advance(time.Duration(ms) * time.Millisecond)
		s.Tick()
	case "quiz":
		return r.quiz(s, rest)
	case "review":
		return s.ReviewFromQuiz(rest)
	case "card":
		return s.ReviewCard(rest)
	case "reset":
		s.Reset(ctx)
	default:
		return fmt.Errorf("unknown command %q", verb)
	}
	return nil
}

// watch advances playback in small steps so effects and markers interleave
// as they would in real time.
func (r ScriptRunner) watch(s lessonin.Session, d time.Duration) {
	for d > 0 {
		dt := watchStep
		if d < dt {
			dt = d
		}
		d -= dt
		r.clock.Advance(dt)
		s.Tick()
		s.AdvanceVideo(dt)
		if !s.Snapshot().Playing {
			return
		}
	}
}

func (r ScriptRunner) quiz(s lessonin.Session, args string) error {
	sub, rest, _ := strings.Cut(args, " ")
	switch sub {
	case "start":
		return s.StartQuiz()
	case "submit":
		selected := map[string]int{}
		for _, pair := range strings.Fields(rest) {
			id, idx, ok := strings.Cut(pair, "=")
			n, err := strconv.Atoi(idx)
			if !ok || err != nil {
				return fmt.Errorf("quiz submit: bad selection %q", pair)
			}
			selected[id] = n
		}
		res, err := s.SubmitQuiz(selected)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "[quiz] %d/%d correct, score %d, %ds\n", res.CorrectCount, res.Total, res.Score, res.TimeTaken)
		return nil
	case "close":
		s.CloseQuiz()
		return nil
	default:
		return fmt.Errorf("unknown quiz command %q", sub)
	}
}
