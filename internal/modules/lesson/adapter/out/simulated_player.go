package out

import (
	"context"
	"sort"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	lessonout "huixue/internal/modules/lesson/port/out"
	"huixue/internal/platform/logging"
)

// SkipLead is how far before a marker SkipToMarker lands, so the marker is
// crossed again once playback resumes.
const SkipLead = 0.5

// SimulatedPlayer keeps a playback position that moves only when Advance is
// called. The terminal has no video surface; the real video, if any, is
// handed to a Launcher the first time playback starts.
type SimulatedPlayer struct {
	ctx      context.Context
	url      string
	duration float64
	cues     []lessonout.Cue
	launcher lessonout.Launcher
	logger   hclog.Logger

	playing  bool
	position float64
	launched bool
}

func NewSimulatedPlayer(ctx context.Context, videoURL string, duration float64, cues []lessonout.Cue, launcher lessonout.Launcher, logger hclog.Logger) *SimulatedPlayer {
	sorted := append([]lessonout.Cue(nil), cues...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return &SimulatedPlayer{
		ctx:      ctx,
		url:      videoURL,
		duration: duration,
		cues:     sorted,
		launcher: launcher,
		logger:   logging.OrNull(logger).Named("player"),
	}
}

func (p *SimulatedPlayer) Play() {
	if p.duration > 0 && p.position >= p.duration {
		return
	}
	p.playing = true
	if p.launched || p.launcher == nil || p.url == "" {
		return
	}
	p.launched = true
	if err := p.launcher.Open(p.ctx, p.url); err != nil {
		p.logger.Warn("could not open video", "url", p.url, "error", err)
	}
}

func (p *SimulatedPlayer) Pause() { p.playing = false }

func (p *SimulatedPlayer) SeekTo(seconds float64) {
	p.position = p.clamp(seconds)
}

func (p *SimulatedPlayer) SkipToMarker(id string) bool {
	for _, c := range p.cues {
		if c.ID == id {
			p.SeekTo(c.Time - SkipLead)
			p.Play()
			return true
		}
	}
	return false
}

// Advance moves the position by dt while playing and returns the markers
// crossed in (old, new], in time order.
func (p *SimulatedPlayer) Advance(dt time.Duration) []string {
	if !p.playing || dt <= 0 {
		return nil
	}
	prev := p.position
	p.position = p.clamp(prev + dt.Seconds())
	if p.duration > 0 && p.position >= p.duration {
		p.playing = false
	}
	var crossed []string
	for _, c := range p.cues {
		if c.Time > prev && c.Time <= p.position {
			crossed = append(crossed, c.ID)
		}
	}
	return crossed
}

func (p *SimulatedPlayer) Playing() bool { return p.playing }

func (p *SimulatedPlayer) Position() float64 { return p.position }

func (p *SimulatedPlayer) clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if p.duration > 0 && v > p.duration {
		return p.duration
	}
	return v
}

// SimulatedPlayers builds one SimulatedPlayer per lesson.
type SimulatedPlayers struct {
	Launcher lessonout.Launcher
	Logger   hclog.Logger
}

func (f SimulatedPlayers) NewPlayer(ctx context.Context, videoURL string, duration float64, cues []lessonout.Cue) lessonout.VideoPlayer {
	return NewSimulatedPlayer(ctx, videoURL, duration, cues, f.Launcher, f.Logger)
}
