package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/crimson-sun/logsieve/internal/config"
	"github.com/crimson-sun/logsieve/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app is the state shared by all subcommands.
type app struct {
	envFile  string
	logLevel string
	cfg      config.Config
	logger   zerolog.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{stdin: in, stdout: out, stderr: errOut, logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:           "logsieve",
		Short:         "Reduce large log captures to the few windows that answer a question",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file read before the environment (ignored when missing)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	cmd.AddCommand(
		newFilterCmd(a),
		newServeCmd(a),
		newVersionCmd(a),
	)
	return cmd
}

// init loads configuration and sets up logging.
func (a *app) init() error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.logger = logging.New(a.stderr, logging.ParseLevel(cfg.Log.Level), cfg.Log.Format == "json")
	return nil
}
