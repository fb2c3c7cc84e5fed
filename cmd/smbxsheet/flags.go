package main

import (
	"context"
	"io"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/cam-per/smbxsheet/internal/batch"
	"github.com/cam-per/smbxsheet/internal/config"
	"github.com/cam-per/smbxsheet/internal/logging"
)

const (
	actionJoin     = config.ActionJoin
	actionSeparate = config.ActionSeparate
	actionResize   = config.ActionResize
	actionPalette  = config.ActionPalette
	actionRecolor  = config.ActionRecolor
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "input-dir", Aliases: []string{"idir"}, Usage: "input directories"},
		&cli.StringFlag{Name: "output-dir", Aliases: []string{"odir"}, Usage: `output directory, "same" to save next to the input`},
		&cli.StringFlag{Name: "input-name", Aliases: []string{"in"}, Usage: "only use files whose name matches this regular expression"},
		&cli.StringFlag{Name: "output-name", Aliases: []string{"on"}, Usage: "name of the output images"},
		&cli.IntFlag{Name: "resize", Aliases: []string{"res", "r"}, Usage: "resize percent: 200 doubles, 50 halves"},
		&cli.StringFlag{Name: "filter", Usage: "resize filter: nearest, approx-bilinear, bilinear or catmull-rom"},
		&cli.BoolFlag{Name: "convert-gifs", Usage: "include gif images"},
		&cli.BoolFlag{Name: "include-subdirs", Usage: "search subdirectories too"},
		&cli.IntFlag{Name: "workers", Usage: "images decoded in parallel (default: number of CPUs)"},
	}
}

func layoutFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "layout", Usage: "images or spritesheet"},
		&cli.IntFlag{Name: "spritesheet-width", Aliases: []string{"spw"}, Usage: "columns of the spritesheet"},
		&cli.IntFlag{Name: "spritesheet-height", Aliases: []string{"sph"}, Usage: "rows of the spritesheet, 0 to fit every image"},
		&cli.IntFlag{Name: "image-width", Aliases: []string{"imw"}, Usage: "width of a spritesheet cell"},
		&cli.IntFlag{Name: "image-height", Aliases: []string{"imh"}, Usage: "height of a spritesheet cell"},
		&cli.IntFlag{Name: "space", Aliases: []string{"sp"}, Usage: "space between the images"},
		&cli.StringFlag{Name: "cfg-encoding", Usage: "text encoding of the .cfg file, e.g. utf-8 or windows-1252"},
	}
}

func paletteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "collapse-palettes", Usage: "drop palettes contained in another palette"},
		&cli.StringFlag{Name: "palette-format", Usage: "png, or act to also write an Adobe color table"},
	}
}

func joinFlags() []cli.Flag {
	return append(append(layoutFlags(), paletteFlags()...),
		&cli.BoolFlag{Name: "separe-palette", Aliases: []string{"separate-palette"}, Usage: "save the palette as a separate image"},
		&cli.StringFlag{Name: "background", Usage: "fill color around the images, #rrggbb[aa]"},
	)
}

func recolorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "replace", Usage: "color pair #from=#to, applied in the order given"},
	}
}

func separateFlags() []cli.Flag {
	return layoutFlags()
}

func action(logOut io.Writer, act config.Action) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := config.Load(cmd.String("config"))
		if err != nil {
			return err
		}
		applyFlags(cmd, &cfg)
		cfg.ApplyActionDefaults(act)

		logger, err := logging.New(logOut, cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return err
		}
		defer logger.Sync()

		runner, err := batch.New(cfg, logger)
		if err != nil {
			return err
		}
		report, err := runner.Run(ctx, act)
		if err != nil {
			return err
		}
		logger.Info("done",
			zap.String("action", string(report.Action)),
			zap.Int("written", len(report.Written)),
			zap.Int("skipped", report.Skipped))
		return nil
	}
}

// applyFlags copies the flags given on the command line over cfg.
func applyFlags(cmd *cli.Command, cfg *config.Config) {
	strs := map[string]*string{
		"output-dir":     &cfg.OutputDir,
		"input-name":     &cfg.InputName,
		"output-name":    &cfg.OutputName,
		"filter":         &cfg.Filter,
		"layout":         &cfg.Layout,
		"cfg-encoding":   &cfg.ManifestEncoding,
		"palette-format": &cfg.PaletteFormat,
		"background":     &cfg.Background,
		"log-level":      &cfg.Logging.Level,
		"log-format":     &cfg.Logging.Format,
	}
	for name, dst := range strs {
		if cmd.IsSet(name) {
			*dst = cmd.String(name)
		}
	}

	ints := map[string]*int{
		"resize":             &cfg.Resize,
		"workers":            &cfg.Workers,
		"spritesheet-width":  &cfg.Columns,
		"spritesheet-height": &cfg.Rows,
		"image-width":        &cfg.ImageWidth,
		"image-height":       &cfg.ImageHeight,
		"space":              &cfg.Space,
	}
	for name, dst := range ints {
		if cmd.IsSet(name) {
			*dst = int(cmd.Int(name))
		}
	}

	bools := map[string]*bool{
		"convert-gifs":      &cfg.ConvertGIFs,
		"include-subdirs":   &cfg.IncludeSubdirs,
		"separe-palette":    &cfg.SeparatePalette,
		"collapse-palettes": &cfg.CollapsePalettes,
	}
	for name, dst := range bools {
		if cmd.IsSet(name) {
			*dst = cmd.Bool(name)
		}
	}

	if cmd.IsSet("input-dir") {
		cfg.InputDirs = cmd.StringSlice("input-dir")
	}
	if cmd.IsSet("replace") {
		cfg.Replace = cmd.StringSlice("replace")
	}
}
