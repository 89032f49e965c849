package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	courseinadapter "huixue/internal/modules/course/adapter/in"
	courseoutadapter "huixue/internal/modules/course/adapter/out"
	courseout "huixue/internal/modules/course/port/out"
	courseservice "huixue/internal/modules/course/service"
	courseusecase "huixue/internal/modules/course/usecase"
	lessoninadapter "huixue/internal/modules/lesson/adapter/in"
	lessonoutadapter "huixue/internal/modules/lesson/adapter/out"
	lessonusecase "huixue/internal/modules/lesson/usecase"
	progressinadapter "huixue/internal/modules/progress/adapter/in"
	progressoutadapter "huixue/internal/modules/progress/adapter/out"
	progressin "huixue/internal/modules/progress/port/in"
	progressout "huixue/internal/modules/progress/port/out"
	progressservice "huixue/internal/modules/progress/service"
	progressusecase "huixue/internal/modules/progress/usecase"
	tutorinadapter "huixue/internal/modules/tutor/adapter/in"
	tutoroutadapter "huixue/internal/modules/tutor/adapter/out"
	tutorout "huixue/internal/modules/tutor/port/out"
	tutorservice "huixue/internal/modules/tutor/service"
	tutorusecase "huixue/internal/modules/tutor/usecase"
	"huixue/internal/platform/clock"
	"huixue/internal/platform/config"
	"huixue/internal/platform/id"
	"huixue/internal/platform/logging"
	uiapp "huixue/internal/ui/app"
)

const tutorTimeout = 60 * time.Second

type App struct {
	CourseCLI   courseinadapter.CLIHandler
	ProgressCLI progressinadapter.CLIHandler
	TutorCLI    tutorinadapter.CLIHandler
	LessonTUI   lessoninadapter.TUIHandler
	LessonRun   lessoninadapter.ScriptRunner

	Logger hclog.Logger

	progress progressin.Usecase
	closers  []io.Closer
}

// Options adjust wiring per command.
type Options struct {
	// LogToFile sends logs to the data directory instead of stderr, for
	// full-screen use.
	LogToFile bool
	// Manual replaces the system clock; scripted replays step it.
	Manual *clock.Manual
	// Out receives script replay transcripts.
	Out io.Writer
}

func New(cfg config.Config, opts Options) (*App, error) {
	app := &App{}
	logger, err := app.newLogger(cfg, opts)
	if err != nil {
		return nil, err
	}
	app.Logger = logger

	var clk clock.Clock = clock.SystemClock{}
	if opts.Manual != nil {
		clk = opts.Manual
	}
	ids := id.Short{}

	store, err := app.newProgressStore(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	progressUC := progressusecase.NewInteractor(
		progressservice.NewProgressService(clk, store, logger),
		progressoutadapter.NewVaultCardWriter(filepath.Join(cfg.DataPath, "cards")),
		clk,
	)
	app.progress = progressUC

	dirCourses := courseoutadapter.NewDirCourseStore(cfg.ContentPath)
	markdown := courseoutadapter.NewMarkdownArticleReader()
	courseUC := courseusecase.NewInteractor(courseservice.NewCourseService(
		courseoutadapter.NewChainCourseStore(dirCourses, courseoutadapter.NewEmbeddedCourseStore()),
		dirCourses,
		courseoutadapter.NewXLSXMarkerSheet(),
		map[string]courseout.ArticleReader{
			".md":       markdown,
			".markdown": markdown,
			".pdf":      courseoutadapter.NewPDFArticleReader(),
		},
		logger,
	))

	tutorUC := tutorusecase.NewInteractor(
		tutorservice.NewTutorService(newCompleter(cfg, logger), logger),
		cfg.OfflineTutor(),
	)

	players := lessonoutadapter.SimulatedPlayers{Logger: logger}
	if cfg.ExternalVideo {
		players.Launcher = lessonoutadapter.NewOSLauncher()
	}
	lessonUC := lessonusecase.NewInteractor(courseUC, progressUC, tutorUC, players, clk, ids, logger)

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	app.CourseCLI = courseinadapter.NewCLIHandler(courseUC)
	app.ProgressCLI = progressinadapter.NewCLIHandler(progressUC)
	app.TutorCLI = tutorinadapter.NewCLIHandler(tutorUC)
	app.LessonTUI = lessoninadapter.NewTUIHandler(lessonUC)
	if opts.Manual != nil {
		app.LessonRun = lessoninadapter.NewScriptRunner(lessonUC, opts.Manual, out)
	}
	return app, nil
}

func (a *App) newLogger(cfg config.Config, opts Options) (hclog.Logger, error) {
	if !opts.LogToFile {
		return logging.New("huixue", cfg.LogLevel, os.Stderr), nil
	}
	logger, closer, err := logging.NewFile("huixue", cfg.LogLevel, cfg.LogPath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closer)
	return logger, nil
}

func (a *App) newProgressStore(cfg config.Config) (progressout.KVStore, error) {
	if cfg.Store == config.StoreFile {
		return progressoutadapter.NewFileKVStore(filepath.Join(cfg.DataPath, "progress")), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	store, err := progressoutadapter.NewSQLiteKVStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open progress store: %w", err)
	}
	a.closers = append(a.closers, store)
	return store, nil
}

func newCompleter(cfg config.Config, logger hclog.Logger) tutorout.Completer {
	if cfg.OfflineTutor() {
		logger.Info("no tutor API key; using the offline tutor")
		return tutoroutadapter.NewScriptedCompleter()
	}
	return tutoroutadapter.NewAnthropicCompleter(
		cfg.TutorAPIKey,
		cfg.TutorBaseURL,
		cfg.TutorModel,
		&http.Client{Timeout: tutorTimeout},
	)
}

// Close releases the log file and the progress database.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
	a.closers = nil
}

// RunTUI resumes a course and runs the full-screen lesson until the learner
// quits. Expired progress is purged hourly meanwhile.
func RunTUI(ctx context.Context, app *App, courseID string) error {
	course, err := app.CourseCLI.Show(ctx, courseID)
	if err != nil {
		return err
	}
	session, err := app.LessonTUI.Resume(ctx, courseID)
	if err != nil {
		return err
	}

	purge := progressinadapter.NewPurgeScheduler(app.progress, time.Hour, app.Logger)
	if err := purge.Start(); err != nil {
		return err
	}
	defer purge.Stop()

	model := uiapp.NewModel(course, session, app.ProgressCLI)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}
