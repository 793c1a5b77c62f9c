package main

import (
	"errors"
	"io"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ironsheep/minmap-viewer/internal/server"
	"github.com/ironsheep/minmap-viewer/internal/viewer"
)

// errHelp reports that --help was handled and the command should stop.
var errHelp = errors.New("help requested")

func (f *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.configPath, "config", "c", "", "config file (default ./minmap.yaml or the user config dir)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFile, "log-file", "", "also write JSON logs to this rotating file")
}

// parseFlags parses args into fs, mapping --help to errHelp.
func parseFlags(fs *pflag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if errors.Is(err, pflag.ErrHelp) {
		return errHelp
	}
	return err
}

func runServe(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return errors.New("serve takes no arguments")
	}

	cfg, log, err := common.setup(stderr)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
		zap.String("palette", cfg.Palette.Kind),
	)

	session := viewer.New(sessionOptions(cfg, log))
	srv := server.New(session, log, Version)
	if err := srv.Serve(stdin, stdout); err != nil {
		log.Error("server stopped", zap.Error(err))
		return err
	}
	log.Info("input closed, shutting down")
	return nil
}
