package out

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	lessonout "huixue/internal/modules/lesson/port/out"
)

// OSLauncher hands the lesson video to the desktop's default player.
type OSLauncher struct{}

func NewOSLauncher() lessonout.Launcher {
	return &OSLauncher{}
}

func (l *OSLauncher) Open(_ context.Context, target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "linux":
		cmd = exec.Command("xdg-open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return fmt.Errorf("opening videos is not supported on %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open video: %w", err)
	}
	return nil
}
