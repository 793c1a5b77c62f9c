package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ironsheep/minmap-viewer/internal/config"
	"github.com/ironsheep/minmap-viewer/internal/logger"
	"github.com/ironsheep/minmap-viewer/internal/viewer"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches to a subcommand and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "version":
		printVersion(stdout)
		return 0
	case "help":
		printUsage(stdout)
		return 0
	case "serve":
		err = runServe(args, stdin, stdout, stderr)
	case "render":
		err = runRender(args, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "minmap: unknown command %q\n\n", cmd)
		printUsage(stderr)
		return 2
	}

	if err != nil {
		if errors.Is(err, errHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "minmap %s: %v\n", cmd, err)
		return 1
	}
	return 0
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "minmap %s\n", Version)
	fmt.Fprintf(w, "  Build time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "minmap - mineral map viewer")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  minmap [serve] [options]          Serve map tools over JSON-RPC on stdin/stdout")
	fmt.Fprintln(w, "  minmap render [options] FILE...   Convert map files to images")
	fmt.Fprintln(w, "  minmap version                    Print version information")
	fmt.Fprintln(w, "  minmap help                       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'minmap <command> --help' for the options of a command.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %s=debug    Set the log level\n", config.EnvLogLevel)
}

// commonFlags are shared by serve and render.
type commonFlags struct {
	configPath string
	logLevel   string
	logFile    string
}

// setup loads the configuration, applies flag overrides and builds the
// logger. Flags win over the environment and the file.
func (f *commonFlags) setup(stderr io.Writer) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, nil, err
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.logFile != "" {
		cfg.Logging.File = f.logFile
	}

	opts := logger.Options{Level: cfg.Logging.Level, Console: stderr}
	if cfg.Logging.File != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.File)
	}
	log, err := logger.New(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

// sessionOptions builds viewer options from cfg.
func sessionOptions(cfg *config.Config, log *zap.Logger) viewer.Options {
	return viewer.Options{
		Ruler:        cfg.Ruler,
		Export:       cfg.Export.ExportOptions,
		NewGenerator: cfg.Palette.Generator,
		Logger:       log,
	}
}
