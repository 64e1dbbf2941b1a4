package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"dbf2sql/internal/config"
	"dbf2sql/internal/driver"
	"dbf2sql/internal/exitcodes"
	"dbf2sql/internal/history"
	"dbf2sql/internal/logging"
	"dbf2sql/internal/progress"
	"dbf2sql/internal/runner"
	"dbf2sql/internal/settings"
	"dbf2sql/internal/tui"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "dbf2sql",
		Usage:   "Load DBF files into SQL Server",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "job",
				Aliases: []string{"j"},
				Usage:   "Run a scripted job from a YAML file instead of the interactive UI",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Directory for settings and run history (default: ~/.dbf2sql)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: "text",
				Usage: "Log format: text or json",
			},
			&cli.StringFlag{
				Name:  "verbosity",
				Value: "info",
				Usage: "Log verbosity level (debug, info, warn, error)",
			},
		},
		Before: func(c *cli.Context) error {
			level, err := logging.ParseLevel(c.String("verbosity"))
			if err != nil {
				return err
			}
			logging.SetLevel(level)
			if c.String("log-format") == "json" {
				logging.SetFormat("json")
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			dataDir, err := resolveDataDir(c)
			if err != nil {
				return exitcodes.NewExitError(err, exitcodes.EnvironmentError)
			}

			hist, err := history.Open(dataDir)
			if err != nil {
				logging.Warn("Run history unavailable: %v", err)
				hist = nil
			} else {
				defer hist.Close()
			}

			if jobFile := c.String("job"); jobFile != "" {
				return runJob(jobFile, hist)
			}
			return tui.Start(dataDir, hist)
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitcodes.FromError(err))
	}
}

func resolveDataDir(c *cli.Context) (string, error) {
	if dir := c.String("data-dir"); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return "", fmt.Errorf("creating data dir: %w", err)
		}
		return dir, nil
	}
	return settings.DefaultDataDir()
}

// runJob performs one headless conversion described by a job file.
func runJob(path string, hist *history.Store) error {
	job, err := config.Load(path)
	if err != nil {
		return exitcodes.NewExitError(err, exitcodes.ConfigError)
	}

	spec, err := job.ConnSpec()
	if err != nil {
		return exitcodes.NewExitError(err, exitcodes.ConfigError)
	}

	if spec.Mode == driver.AuthSQLPassword && spec.Password == "" {
		pw, err := promptPassword(spec.User)
		if err != nil {
			return exitcodes.NewExitError(err, exitcodes.ConfigError)
		}
		spec.Password = pw
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nInterrupted. Stopping after the current batch...")
		cancel()
	}()

	var tracker *progress.Tracker
	params := runner.Params{
		Spec:      spec,
		File:      job.Source.File,
		Encoding:  job.Source.Encoding,
		Schema:    job.Load.Schema,
		Table:     job.TableName(),
		BatchSize: job.Load.BatchSize,
		History:   hist,
	}
	params.OnOpen = func(total int64) {
		tracker = progress.NewTracker(params.Table, total)
	}
	params.Progress = func(inserted, read int64) {
		if tracker != nil {
			tracker.Set(inserted)
		}
	}

	out, err := runner.Run(ctx, params)
	if tracker != nil {
		tracker.Finish()
		fmt.Println()
	}
	if err != nil {
		return exitcodes.NewExitError(err, exitcodes.FromError(err))
	}

	logging.Info("Run %s finished: %d rows inserted, %d deleted records skipped",
		out.RunID, out.Result.RowsInserted, out.Result.RowsSkipped)
	return nil
}

func promptPassword(user string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("password for %s not set and stdin is not a terminal", user)
	}
	fmt.Fprintf(os.Stderr, "Password for %s: ", user)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}
