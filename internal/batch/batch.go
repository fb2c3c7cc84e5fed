package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/text/encoding"

	"github.com/cam-per/smbxsheet/internal/compose"
	"github.com/cam-per/smbxsheet/internal/config"
	"github.com/cam-per/smbxsheet/internal/imageio"
	"github.com/cam-per/smbxsheet/sheet/layout"
	"github.com/cam-per/smbxsheet/sheet/pal"
	"github.com/cam-per/smbxsheet/utils"
)

var (
	ErrNoImages       = errors.New("no image found in any directory")
	ErrNoneRemaining  = errors.New("no image remaining")
	ErrSameMultiInput = errors.New("saving to the same directory isn't supported with multiple input directories, please specify an output directory")
)

type Report struct {
	Action  config.Action
	Written []string
	Skipped int
}

type Runner struct {
	cfg    config.Config
	logger *zap.Logger
	layout layout.Mode
	interp draw.Interpolator
	bg     color.NRGBA
	enc    encoding.Encoding
}

// New validates cfg. Directory and name defaults must already be applied.
func New(cfg config.Config, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	runner := &Runner{cfg: cfg, logger: logger}

	var err error
	if runner.layout, err = layout.ParseMode(cfg.Layout); err != nil {
		return nil, err
	}
	if runner.interp, err = compose.ParseFilter(cfg.Filter); err != nil {
		return nil, err
	}
	if runner.bg, err = cfg.BackgroundColor(); err != nil {
		return nil, err
	}
	if runner.enc, err = utils.LookupEncoding(cfg.ManifestEncoding); err != nil {
		return nil, err
	}
	logger.Debug("settings",
		zap.Stringer("layout", runner.layout),
		zap.Int("resize", cfg.Resize),
		zap.String("background", utils.HexColor(runner.bg)),
		zap.String("cfg_encoding", utils.EncodingName(runner.enc)))
	return runner, nil
}

func (runner *Runner) Run(ctx context.Context, action config.Action) (*Report, error) {
	switch action {
	case config.ActionJoin:
		return runner.Join(ctx)
	case config.ActionSeparate:
		return runner.Separate(ctx)
	case config.ActionResize:
		return runner.Resize(ctx)
	case config.ActionPalette:
		return runner.Palette(ctx)
	case config.ActionRecolor:
		return runner.Recolor(ctx)
	}
	return nil, fmt.Errorf("unknown action %q", action)
}

func (runner *Runner) find(requireManifest bool) ([]string, error) {
	dirs, err := imageio.CheckDirs(runner.cfg.InputDirs, runner.cfg.OutputDir, runner.logger)
	if err != nil {
		return nil, err
	}
	paths, err := imageio.Find(dirs, imageio.FindOptions{
		GIFs:            runner.cfg.ConvertGIFs,
		Recursive:       runner.cfg.IncludeSubdirs,
		Match:           runner.cfg.InputName,
		RequireManifest: requireManifest,
	}, runner.logger)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrNoImages
	}
	return paths, nil
}

// load decodes and resizes the input images. Images that cannot be resized
// are skipped.
func (runner *Runner) load(ctx context.Context, report *Report) ([]*imageio.File, error) {
	paths, err := runner.find(false)
	if err != nil {
		return nil, err
	}
	files, err := imageio.Load(ctx, paths, runner.cfg.Workers, runner.logger)
	if err != nil {
		return nil, err
	}
	report.Skipped += len(paths) - len(files)

	if runner.cfg.Resize != 100 {
		runner.logger.Info("the images will be resized", zap.Int("percent", runner.cfg.Resize))
	}
	out := files[:0]
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f.Path), ".gif") {
			runner.logger.Debug("gif included as is, masks are not applied", zap.String("file", f.Name()))
		}
		img, err := compose.Scale(f.Image, runner.cfg.Resize, runner.interp)
		if err != nil {
			runner.logger.Warn("skipping image", zap.String("file", f.Name()), zap.Error(err))
			report.Skipped++
			continue
		}
		out = append(out, &imageio.File{Path: f.Path, Image: img})
	}
	if len(out) == 0 {
		return nil, ErrNoneRemaining
	}
	return out, nil
}

func (runner *Runner) palettes(images []image.Image) *pal.Set {
	set := pal.NewSet()
	for _, img := range images {
		set.Add(pal.Extract(img))
	}
	if runner.cfg.CollapsePalettes {
		set.Collapse()
	}
	set.Sort()
	runner.logger.Debug("palettes collected", zap.Int("rows", set.Len()), zap.Int("width", set.Width()))
	return set
}

// savePalette writes the palette strip and, if asked for, the color table.
func (runner *Runner) savePalette(set *pal.Set, dir string, report *Report) error {
	if set.Len() == 0 {
		runner.logger.Warn("no visible colors, palette not saved")
		return nil
	}
	name := runner.cfg.OutputName + "Palette"
	runner.logger.Info("saving palette image", zap.String("dir", dir))
	if err := runner.save(set.Image(), dir, name+".png", report); err != nil {
		return err
	}
	if runner.cfg.PaletteFormat != "act" {
		return nil
	}

	path := filepath.Join(dir, name+".act")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pal.EncodeACT(f, set.Union()); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	report.Written = append(report.Written, path)
	return nil
}

func (runner *Runner) save(img image.Image, dir, name string, report *Report) error {
	path, n, err := imageio.Save(img, dir, name)
	if err != nil {
		return err
	}
	bounds := img.Bounds()
	runner.logger.Info("saved image",
		zap.String("file", path),
		zap.String("size", humanize.Bytes(uint64(n))),
		zap.String("pixels", humanize.Comma(int64(bounds.Dx()*bounds.Dy()))))
	report.Written = append(report.Written, path)
	return nil
}
