// Command counterd serves the visitor counter over plain HTTP for local
// development and end to end tests.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nesq/resumecount/cmd/counterd/run"
	"github.com/nesq/resumecount/services/alarm"
	"github.com/nesq/resumecount/services/awsclient"
	"github.com/nesq/resumecount/services/counter"
	"github.com/nesq/resumecount/services/diagnostic"
	"github.com/nesq/resumecount/services/logging"
	"github.com/nesq/resumecount/services/parameters"
	"github.com/nesq/resumecount/services/slack"
	"github.com/nesq/resumecount/services/storage"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// These variables are populated via the Go linker.
var (
	version string
	commit  string
	branch  string
)

func init() {
	// If commit or branch are not set, make that clear.
	if commit == "" {
		commit = "unknown"
	}
	if branch == "" {
		branch = "unknown"
	}
}

func main() {
	_ = godotenv.Load()

	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newConfigFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "config",
		Usage: "path to the configuration file",
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "counterd",
		Usage:     "local visitor counter daemon",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			newRunCmd(),
			newConfigCmd(),
			newVersionCmd(),
			newResetCmd(),
			newNotifyTestCmd(),
		},
	}
}

func newRunCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "start the HTTP server",
		Flags: []cli.Flag{
			newConfigFlag(),
			&cli.StringFlag{Name: "log-file", Usage: "write logs to a file"},
			&cli.StringFlag{Name: "log-level", Usage: "one of debug,info,warn,error"},
		},
		Action: func(ctx *cli.Context) error {
			cmd := run.NewCommand()
			cmd.Version = version
			cmd.Commit = commit
			cmd.Branch = branch
			cmd.Stdout = ctx.App.Writer
			cmd.Stderr = ctx.App.ErrWriter

			err := cmd.Run(run.Options{
				ConfigPath: run.FindConfigPath(ctx.String("config")),
				LogFile:    ctx.String("log-file"),
				LogLevel:   ctx.String("log-level"),
			})
			if err != nil {
				if cmd.Diag != nil {
					cmd.Diag.Error("encountered error", err)
				}
				return errors.Wrap(err, "run")
			}

			signalCh := make(chan os.Signal, 1)
			signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
			cmd.Diag.Info("listening for signals")

			<-signalCh
			cmd.Diag.Info("signal received, initializing clean shutdown...")
			go cmd.Close()

			// Block again until another signal is received, a shutdown timeout elapses,
			// or the Command is gracefully closed
			cmd.Diag.Info("waiting for clean shutdown...")
			select {
			case <-signalCh:
				cmd.Diag.Info("second signal received, initializing hard shutdown")
			case <-time.After(time.Second * 30):
				cmd.Diag.Info("time limit reached, initializing hard shutdown")
			case <-cmd.Closed:
				cmd.Diag.Info("server shutdown completed")
			}
			return nil
		},
	}
}

func newConfigCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "display the effective configuration",
		Flags: []cli.Flag{newConfigFlag()},
		Action: func(ctx *cli.Context) error {
			return run.PrintConfig(ctx.App.Writer, run.FindConfigPath(ctx.String("config")))
		},
	}
}

func newVersionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print the version and build details",
		Action: func(ctx *cli.Context) error {
			v := version
			if v == "" {
				v = "unknown"
			}
			fmt.Fprintf(ctx.App.Writer, "counterd %s (git: %s %s)\n", v, branch, commit)
			return nil
		},
	}
}

func newResetCmd() *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "overwrite the stored visitor count",
		Flags: []cli.Flag{
			newConfigFlag(),
			&cli.Int64Flag{Name: "count", Usage: "new value of the counter"},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.Int64("count") < 0 {
				return errors.New("count must not be negative")
			}
			c, err := run.LoadConfig(run.FindConfigPath(ctx.String("config")))
			if err != nil {
				return err
			}
			diag, closeLog, err := openDiagnostic(c.Logging, ctx)
			if err != nil {
				return err
			}
			defer closeLog()

			s := storage.NewService(c.Storage, awsclient.New(c.AWS), diag.NewStorageHandler())
			if err := s.Open(); err != nil {
				return err
			}
			defer s.Close()

			r := &storage.Record{ID: counter.RecordID, Count: ctx.Int64("count")}
			if err := s.Put(ctx.Context, r); err != nil {
				return errors.Wrap(err, "reset counter")
			}
			fmt.Fprintf(ctx.App.Writer, "%s = %d\n", r.ID, r.Count)
			return nil
		},
	}
}

func newNotifyTestCmd() *cli.Command {
	return &cli.Command{
		Name:  "notify-test",
		Usage: "post a synthetic alarm to a Slack webhook",
		Flags: []cli.Flag{
			newConfigFlag(),
			&cli.StringFlag{Name: "url", Usage: "webhook URL", Required: true},
			&cli.StringFlag{Name: "alarm-name", Usage: "name of the synthetic alarm"},
			&cli.StringFlag{Name: "state", Usage: "state of the synthetic alarm"},
			&cli.StringFlag{Name: "reason", Usage: "state change reason"},
		},
		Action: func(ctx *cli.Context) error {
			c, err := run.LoadConfig(run.FindConfigPath(ctx.String("config")))
			if err != nil {
				return err
			}
			diag, closeLog, err := openDiagnostic(c.Logging, ctx)
			if err != nil {
				return err
			}
			defer closeLog()

			poster := slack.NewService(c.Slack, diag.NewSlackHandler())
			svc := alarm.NewService(c.Alarm, parameters.Static{}, poster, diag.NewAlarmHandler())

			// Only the flags that were given override the default options.
			set := make(map[string]string)
			for _, name := range []string{"url", "alarm-name", "state", "reason"} {
				if ctx.IsSet(name) {
					set[name] = ctx.String(name)
				}
			}
			raw, err := json.Marshal(set)
			if err != nil {
				return err
			}
			options := svc.TestOptions()
			if err := json.Unmarshal(raw, options); err != nil {
				return err
			}
			if err := svc.Test(options); err != nil {
				return errors.Wrap(err, "notify-test")
			}
			fmt.Fprintln(ctx.App.Writer, "notification sent")
			return nil
		},
	}
}

func openDiagnostic(c logging.Config, ctx *cli.Context) (*diagnostic.Service, func(), error) {
	l := logging.NewService(c, ctx.App.Writer, ctx.App.ErrWriter)
	if err := l.Open(); err != nil {
		return nil, nil, errors.Wrap(err, "init logging")
	}
	return diagnostic.NewService(l.Root()), func() { l.Close() }, nil
}
