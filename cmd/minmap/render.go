package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/minmap-viewer/internal/colormap"
	"github.com/ironsheep/minmap-viewer/internal/imaging"
	"github.com/ironsheep/minmap-viewer/internal/viewer"
)

// colorOverride is one --color NAME=#hex flag.
type colorOverride struct {
	Name  string
	Color colormap.RGB
}

func parseColorOverride(s string) (colorOverride, error) {
	name, hex, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return colorOverride{}, fmt.Errorf("invalid --color %q, want NAME=#rrggbb", s)
	}
	c, err := colormap.ParseHex(strings.TrimSpace(hex))
	if err != nil {
		return colorOverride{}, fmt.Errorf("invalid --color %q: %w", s, err)
	}
	return colorOverride{Name: name, Color: c}, nil
}

// renderJob converts one map file to one image file.
type renderJob struct {
	Input        string
	Output       string
	IncludeScale bool
	Colors       []colorOverride
	Options      viewer.Options
}

func (j *renderJob) Run(ctx context.Context) (*imaging.ExportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := j.Options.Logger.With(zap.String("input", j.Input))
	opts := j.Options
	opts.Logger = log
	session := viewer.New(opts)

	if _, err := session.Load(j.Input); err != nil {
		return nil, fmt.Errorf("load %q: %w", j.Input, err)
	}
	for _, o := range j.Colors {
		if _, err := session.RecolorByName(o.Name, o.Color); err != nil {
			if errors.Is(err, colormap.ErrUnknownMineral) {
				log.Warn("color override names no mineral in this map", zap.String("mineral", o.Name))
				continue
			}
			return nil, fmt.Errorf("recolor %q in %q: %w", o.Name, j.Input, err)
		}
	}

	result, err := session.Export(j.Output, j.IncludeScale)
	if err != nil {
		return nil, fmt.Errorf("export %q: %w", j.Output, err)
	}
	return result, nil
}

// outputPath places input's base name with the format extension in dir.
// An empty dir keeps the input's directory.
func outputPath(input, dir, format string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base+"."+format)
}

// planOutputs maps every input to its output path and fails when two inputs
// would write the same file.
func planOutputs(inputs []string, dir, format string) ([]string, error) {
	outputs := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, input := range inputs {
		out := filepath.Clean(outputPath(input, dir, format))
		if prev, ok := seen[out]; ok {
			return nil, fmt.Errorf("%q and %q both render to %q", prev, input, out)
		}
		seen[out] = input
		outputs[i] = out
	}
	return outputs, nil
}

func runRender(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("render", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: minmap render [options] FILE...")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	var common commonFlags
	common.register(fs)
	outDir := fs.StringP("out-dir", "o", "", "output directory (default: next to each input)")
	format := fs.StringP("format", "f", "", "output format: png, jpg, bmp, gif, tif, webp (default from config)")
	includeScale := fs.BoolP("scale", "s", false, "append a scale bar below each image")
	seed := fs.Uint64("seed", 0, "seed for reproducible initial colors")
	palette := fs.String("palette", "", "initial color palette: random or vivid")
	colors := fs.StringArray("color", nil, "mineral color override NAME=#rrggbb (repeatable)")
	jobs := fs.IntP("jobs", "j", runtime.NumCPU(), "files rendered in parallel")

	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no map files given")
	}
	if *jobs < 1 {
		return fmt.Errorf("--jobs must be at least 1, got %d", *jobs)
	}

	overrides := make([]colorOverride, 0, len(*colors))
	for _, c := range *colors {
		o, err := parseColorOverride(c)
		if err != nil {
			return err
		}
		overrides = append(overrides, o)
	}

	cfg, log, err := common.setup(stderr)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if *palette != "" {
		cfg.Palette.Kind = *palette
	}
	if fs.Changed("seed") {
		cfg.Palette.Seed = *seed
	}
	if *format != "" {
		cfg.Export.DefaultFormat = strings.TrimPrefix(*format, ".")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	outputs, err := planOutputs(fs.Args(), *outDir, cfg.Export.DefaultFormat)
	if err != nil {
		return err
	}

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	opts := sessionOptions(cfg, log)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(context.Background())
	g.SetLimit(*jobs)
	for i, input := range fs.Args() {
		job := &renderJob{
			Input:        input,
			Output:       outputs[i],
			IncludeScale: *includeScale,
			Colors:       overrides,
			Options:      opts,
		}
		g.Go(func() error {
			result, err := job.Run(gctx)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(stdout, "%s -> %s (%dx%d, %d bytes)\n",
				job.Input, result.Path, result.Width, result.Height, result.FileSizeBytes)
			return nil
		})
	}
	return g.Wait()
}
