package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"huixue/internal/bootstrap"
	"huixue/internal/platform/clock"
	"huixue/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	config.Flags
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "huixue",
		Short:         "慧学: terminal tutoring for video courses",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.DataPath, "data", ".huixue", "data directory (progress, logs, exported cards)")
	root.PersistentFlags().StringVar(&flags.ContentPath, "content", "", "course directory (default <data>/courses)")
	root.PersistentFlags().StringVar(&flags.Store, "store", "", "progress store: sqlite|file")
	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "log level: trace|debug|info|warn|error")

	root.AddCommand(newTUICmd(&flags))
	root.AddCommand(newCourseCmd(&flags))
	root.AddCommand(newProgressCmd(&flags))
	root.AddCommand(newCardsCmd(&flags))
	root.AddCommand(newTutorCmd(&flags))
	root.AddCommand(newLessonCmd(&flags))
	return root
}

func loadApp(flags *rootFlags, opts bootstrap.Options) (*bootstrap.App, error) {
	cfg, err := config.New(flags.Flags)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, opts)
}

func requireCourse(courseID string) error {
	if strings.TrimSpace(courseID) == "" {
		return fmt.Errorf("--course is required")
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func newTUICmd(flags *rootFlags) *cobra.Command {
	var courseID string
	cmd := &cobra.Command{
		Use:   "tui --course <id>",
		Short: "Study a course in the terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireCourse(courseID); err != nil {
				return err
			}
			app, err := loadApp(flags, bootstrap.Options{LogToFile: true})
			if err != nil {
				return err
			}
			defer app.Close()
			return bootstrap.RunTUI(cmd.Context(), app, courseID)
		},
	}
	cmd.Flags().StringVar(&courseID, "course", "marxism-matter", "course id")
	cmd.Flags().BoolVar(&flags.ExternalVideo, "open-video", false, "open the course video in the desktop player")
	return cmd
}

func newCourseCmd(flags *rootFlags) *cobra.Command {
	course := &cobra.Command{Use: "course", Short: "Course content commands"}

	course.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available courses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			courses, err := app.CourseCLI.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(courses) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no courses")
				return nil
			}
			for _, c := range courses {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d markers\t%d questions\tquiz=%t\n", c.ID, c.Title, c.Markers, c.Questions, c.HasQuiz)
			}
			return nil
		},
	})

	course.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a validated course as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			c, err := app.CourseCLI.Show(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c)
		},
	})

	var courseID, sheet string
	importCmd := &cobra.Command{
		Use:   "import-xlsx <file> --course <id>",
		Short: "Replace a course's video markers with spreadsheet rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCourse(courseID); err != nil {
				return err
			}
			app, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.CourseCLI.ImportXLSX(cmd.Context(), courseID, args[0], sheet)
			for _, re := range out.RowErrors {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", re)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d markers into %s\n", out.Imported, out.Path)
			return nil
		},
	}
	importCmd.Flags().StringVar(&courseID, "course", "", "course id")
	importCmd.Flags().StringVar(&sheet, "sheet", "", "sheet name (default: first sheet)")
	course.AddCommand(importCmd)
	return course
}

func newProgressCmd(flags *rootFlags) *cobra.Command {
	progress := &cobra.Command{Use: "progress", Short: "Saved learning progress"}
	var courseID string
	progress.PersistentFlags().StringVar(&courseID, "course", "", "course id")

	progress.AddCommand(&cobra.Command{
		Use:   "show --course <id>",
		Short: "Print the saved progress record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireCourse(courseID); err != nil {
				return err
			}
			app, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			rec, ok := app.ProgressCLI.Show(cmd.Context(), courseID)
			if !ok {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no progress")
				return nil
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	})

	progress.AddCommand(&cobra.Command{
		Use:   "reset --course <id>",
		Short: "Forget saved progress for a course",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireCourse(courseID); err != nil {
				return err
			}
			app, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			app.ProgressCLI.Reset(cmd.Context(), courseID)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "progress reset: %s\n", courseID)
			return nil
		},
	})

	progress.AddCommand(&cobra.Command{
		Use:   "days --course <id>",
		Short: "Days left before saved progress expires",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireCourse(courseID); err != nil {
				return err
			}
			app, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\n", app.ProgressCLI.RemainingDays(cmd.Context(), courseID))
			return nil
		},
	})

	progress.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Remove expired progress records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.ProgressCLI.Prune(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "scanned %d, removed %d\n", out.Scanned, len(out.Removed))
			for _, key := range out.Removed {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", key)
			}
			return nil
		},
	})
	return progress
}

func newCardsCmd(flags *rootFlags) *cobra.Command {
	cards := &cobra.Command{Use: "cards", Short: "Knowledge cards"}
	var courseID string
	export := &cobra.Command{
		Use:   "export --course <id>",
		Short: "Write collected cards to a markdown note under <data>/cards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireCourse(courseID); err != nil {
				return err
			}
			app, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			title := courseID
			if c, err := app.CourseCLI.Show(cmd.Context(), courseID); err == nil {
				title = c.Title
			}
			out, err := app.ProgressCLI.ExportCards(cmd.Context(), courseID, title)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d cards to %s\n", out.Count, out.Path)
			return nil
		},
	}
	export.Flags().StringVar(&courseID, "course", "", "course id")
	cards.AddCommand(export)
	return cards
}

func newTutorCmd(flags *rootFlags) *cobra.Command {
	tutor := &cobra.Command{Use: "tutor", Short: "Tutor replies and evaluation"}

	tutor.AddCommand(&cobra.Command{
		Use:   "eval <raw reply>",
		Short: "Judge a raw tutor reply and print the verdict",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			return printJSON(cmd.OutOrStdout(), app.TutorCLI.Eval(strings.Join(args, " ")))
		},
	})

	var title string
	ask := &cobra.Command{
		Use:   "ask <question>",
		Short: "Send one question to the tutor",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			if app.TutorCLI.Offline() {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "HUIXUE_API_KEY is not set; answering offline")
			}
			reply, err := app.TutorCLI.Ask(cmd.Context(), title, strings.Join(args, " "))
			if perr := printJSON(cmd.OutOrStdout(), reply); perr != nil {
				return perr
			}
			return err
		},
	}
	ask.Flags().StringVar(&title, "topic", "", "knowledge point the question is about")
	tutor.AddCommand(ask)
	return tutor
}

func newLessonCmd(flags *rootFlags) *cobra.Command {
	lesson := &cobra.Command{Use: "lesson", Short: "Lesson replay"}

	var courseID, script string
	var asJSON bool
	run := &cobra.Command{
		Use:   "run --course <id> --script <file>",
		Short: "Replay a scripted lesson and print the conversation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireCourse(courseID); err != nil {
				return err
			}
			var in io.Reader = cmd.InOrStdin()
			if script != "" && script != "-" {
				f, err := os.Open(script)
				if err != nil {
					return fmt.Errorf("open script: %w", err)
				}
				defer f.Close()
				in = f
			}
			app, err := loadApp(flags, bootstrap.Options{
				Manual: clock.NewManual(time.Now().UTC()),
				Out:    cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			defer app.Close()
			snap, err := app.LessonRun.Run(cmd.Context(), courseID, in)
			if asJSON {
				if perr := printJSON(cmd.OutOrStdout(), snap); perr != nil {
					return perr
				}
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nmarkers %d/%d  stage %s  overall %d%%  cards %d\n",
					len(snap.CompletedMarkers), snap.MarkerTotal, snap.CurrentStage, snap.OverallPercent, len(snap.Cards))
			}
			return err
		},
	}
	run.Flags().StringVar(&courseID, "course", "", "course id")
	run.Flags().StringVar(&script, "script", "-", "script file, - for stdin")
	run.Flags().BoolVar(&asJSON, "json", false, "print the final session snapshot as JSON")
	lesson.AddCommand(run)
	return lesson
}
