package out_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	lessonadapter "huixue/internal/modules/lesson/adapter/out"
	lessonout "huixue/internal/modules/lesson/port/out"
)

type fakeLauncher struct {
	opened []string
	err    error
}

func (l *fakeLauncher) Open(_ context.Context, target string) error {
	l.opened = append(l.opened, target)
	return l.err
}

var cues = []lessonout.Cue{{ID: "m2", Time: 20}, {ID: "m1", Time: 10}, {ID: "m3", Time: 30}}

func TestAdvanceReportsCrossedMarkersInOrder(t *testing.T) {
	t.Parallel()
	p := lessonadapter.NewSimulatedPlayer(context.Background(), "", 40, cues, nil, nil)

	if got := p.Advance(15 * time.Second); got != nil {
		t.Fatalf("paused player must not move, got %v", got)
	}
	p.Play()
	if got := p.Advance(10 * time.Second); !reflect.DeepEqual(got, []string{"m1"}) {
		t.Fatalf("expected m1, got %v", got)
	}
	if got := p.Advance(20 * time.Second); !reflect.DeepEqual(got, []string{"m2", "m3"}) {
		t.Fatalf("expected m2 m3, got %v", got)
	}
	p.Advance(time.Minute)
	if p.Playing() || p.Position() != 40 {
		t.Fatalf("player must stop at the end, playing=%v pos=%v", p.Playing(), p.Position())
	}
}

func TestSkipToMarkerLandsBeforeTheMarker(t *testing.T) {
	t.Parallel()
	p := lessonadapter.NewSimulatedPlayer(context.Background(), "", 40, cues, nil, nil)
	if p.SkipToMarker("zz") {
		t.Fatalf("unknown marker must not seek")
	}
	if !p.SkipToMarker("m2") {
		t.Fatalf("expected seek to m2")
	}
	if p.Position() != 19.5 || !p.Playing() {
		t.Fatalf("unexpected state pos=%v playing=%v", p.Position(), p.Playing())
	}
	if got := p.Advance(time.Second); !reflect.DeepEqual(got, []string{"m2"}) {
		t.Fatalf("resuming must cross m2 again, got %v", got)
	}
}

func TestPlayOpensVideoOnce(t *testing.T) {
	t.Parallel()
	l := &fakeLauncher{err: errors.New("no display")}
	f := lessonadapter.SimulatedPlayers{Launcher: l}
	p := f.NewPlayer(context.Background(), "https://example.com/v.mp4", 40, cues)
	p.Play()
	p.Pause()
	p.Play()
	if len(l.opened) != 1 {
		t.Fatalf("expected one launch, got %v", l.opened)
	}
	if !p.Playing() {
		t.Fatalf("launch failure must not stop simulated playback")
	}
}
