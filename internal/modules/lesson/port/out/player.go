package out

import (
	"context"
	"time"
)

// VideoPlayer is the video control surface the session drives.
type VideoPlayer interface {
	Play()
	Pause()
	SeekTo(seconds float64)
	// SkipToMarker seeks just before a marker so it is reached again; false
	// for an unknown marker.
	SkipToMarker(id string) bool
	// Advance moves playback forward by dt when playing and returns the
	// markers crossed, in time order.
	Advance(dt time.Duration) []string
	Playing() bool
	Position() float64
}

type Cue struct {
	ID   string
	Time float64
}

type PlayerFactory interface {
	NewPlayer(ctx context.Context, videoURL string, duration float64, cues []Cue) VideoPlayer
}

// Launcher opens a URL in the operating system's default handler.
type Launcher interface {
	Open(ctx context.Context, target string) error
}
