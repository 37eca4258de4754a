package run

import (
	"io"
	"os"
	"runtime"

	"github.com/nesq/resumecount/services/diagnostic"
	"github.com/nesq/resumecount/services/logging"
	"github.com/pkg/errors"
)

type Diagnostic interface {
	Error(msg string, err error)
	Info(msg string)
	StartingCounterd(version, commit, branch string)
}

// Options represents the command line options that can be parsed.
type Options struct {
	ConfigPath string
	LogFile    string
	LogLevel   string
}

// Command represents the command executed by "counterd run".
type Command struct {
	Version string
	Branch  string
	Commit  string

	closing chan struct{}
	Closed  chan struct{}

	Stdout io.Writer
	Stderr io.Writer

	Server     *Server
	Diag       Diagnostic
	logService *logging.Service
}

// NewCommand return a new instance of Command.
func NewCommand() *Command {
	return &Command{
		closing: make(chan struct{}),
		Closed:  make(chan struct{}),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Run loads the config and starts the server. It returns once the server
// is listening.
func (cmd *Command) Run(options Options) error {
	config, err := ParseConfig(options.ConfigPath)
	if err != nil {
		return errors.Wrap(err, "parse config")
	}

	if err := config.ApplyEnvOverrides(); err != nil {
		return errors.Wrap(err, "apply env config")
	}

	if options.LogFile != "" {
		config.Logging.File = options.LogFile
	}
	if options.LogLevel != "" {
		config.Logging.Level = options.LogLevel
	}

	if err := config.Validate(); err != nil {
		return err
	}

	cmd.logService = logging.NewService(config.Logging, cmd.Stdout, cmd.Stderr)
	if err := cmd.logService.Open(); err != nil {
		return errors.Wrap(err, "init logging")
	}
	diag := diagnostic.NewService(cmd.logService.Root()).NewCmdHandler()
	cmd.Diag = diag

	diag.StartingCounterd(cmd.Version, cmd.Commit, cmd.Branch)
	diag.GoVersion(runtime.Version(), runtime.GOMAXPROCS(0))

	buildInfo := &BuildInfo{Version: cmd.Version, Commit: cmd.Commit, Branch: cmd.Branch}
	s, err := NewServer(config, buildInfo, cmd.logService)
	if err != nil {
		return errors.Wrap(err, "create server")
	}
	if err := s.Open(); err != nil {
		return errors.Wrap(err, "open server")
	}
	cmd.Server = s

	go cmd.monitorServerErrors()

	return nil
}

// Close shuts down the server.
func (cmd *Command) Close() error {
	defer close(cmd.Closed)
	close(cmd.closing)
	var err error
	if cmd.Server != nil {
		err = cmd.Server.Close()
	}
	if cmd.logService != nil {
		if lerr := cmd.logService.Close(); err == nil {
			err = lerr
		}
	}
	return err
}

func (cmd *Command) monitorServerErrors() {
	for {
		select {
		case err := <-cmd.Server.Err():
			if err != nil {
				cmd.Diag.Error("server failed", err)
			}
		case <-cmd.closing:
			return
		}
	}
}
