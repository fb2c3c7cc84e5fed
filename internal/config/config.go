package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cam-per/smbxsheet/utils"
)

// DefaultFile is read from the working directory when no file is given.
const DefaultFile = "smbxsheet.yaml"

type Action string

const (
	ActionJoin     Action = "join"
	ActionSeparate Action = "separate"
	ActionResize   Action = "resize"
	ActionPalette  Action = "palette"
	ActionRecolor  Action = "recolor"
)

type Config struct {
	InputDirs  []string `yaml:"input_dirs"`
	OutputDir  string   `yaml:"output_dir"`
	InputName  string   `yaml:"input_name"`
	OutputName string   `yaml:"output_name"`

	Layout      string `yaml:"layout"` // images, spritesheet
	Columns     int    `yaml:"spritesheet_width"`
	Rows        int    `yaml:"spritesheet_height"`
	ImageWidth  int    `yaml:"image_width"`
	ImageHeight int    `yaml:"image_height"`
	Space       int    `yaml:"space"`

	Resize     int    `yaml:"resize"` // percent
	Filter     string `yaml:"filter"`
	Background string `yaml:"background"`

	SeparatePalette  bool   `yaml:"separate_palette"`
	CollapsePalettes bool   `yaml:"collapse_palettes"`
	PaletteFormat    string `yaml:"palette_format"` // png, act
	ConvertGIFs      bool   `yaml:"convert_gifs"`
	IncludeSubdirs   bool   `yaml:"include_subdirs"`

	// Replace holds "#from=#to" color pairs for recolor.
	Replace []string `yaml:"replace"`

	ManifestEncoding string `yaml:"cfg_encoding"`
	Workers          int    `yaml:"workers"`

	Logging Logging `yaml:"logging"`
}

type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

func Default() Config {
	return Config{
		Layout:           "images",
		Resize:           100,
		Filter:           "nearest",
		Background:       "#ff78ffff",
		PaletteFormat:    "png",
		ManifestEncoding: "utf-8",
		Logging:          Logging{Level: "info", Format: "console"},
	}
}

// Load reads path over the defaults. A missing DefaultFile is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyActionDefaults fills directories and names left empty with the
// defaults of the action.
func (cfg *Config) ApplyActionDefaults(action Action) {
	if len(cfg.InputDirs) == 0 {
		switch action {
		case ActionSeparate:
			cfg.InputDirs = []string{"."}
		default:
			cfg.InputDirs = []string{"./edit"}
		}
	}
	if cfg.OutputDir == "" {
		switch action {
		case ActionJoin:
			cfg.OutputDir = "."
		default:
			cfg.OutputDir = "./output"
		}
	}
	if cfg.OutputName == "" {
		switch action {
		case ActionJoin:
			cfg.OutputName = "joinedImages"
		case ActionSeparate:
			cfg.OutputName = "image"
		default:
			cfg.OutputName = "noname"
		}
	}
}

func (cfg *Config) BackgroundColor() (color.NRGBA, error) {
	return utils.ParseHexColor(cfg.Background)
}

// Replacement swaps one color for another.
type Replacement struct {
	From, To color.NRGBA
}

// Replacements parses Replace in order.
func (cfg *Config) Replacements() ([]Replacement, error) {
	out := make([]Replacement, 0, len(cfg.Replace))
	for _, pair := range cfg.Replace {
		from, to, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("bad argument given to --replace: %q, want #from=#to", pair)
		}
		var (
			r   Replacement
			err error
		)
		if r.From, err = utils.ParseHexColor(from); err != nil {
			return nil, fmt.Errorf("bad argument given to --replace: %w", err)
		}
		if r.To, err = utils.ParseHexColor(to); err != nil {
			return nil, fmt.Errorf("bad argument given to --replace: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (cfg *Config) Validate() error {
	if cfg.Space < 0 {
		return fmt.Errorf("bad argument given to --space: %d", cfg.Space)
	}
	if cfg.Resize <= 0 {
		return fmt.Errorf("bad argument given to --resize: %d", cfg.Resize)
	}
	switch cfg.PaletteFormat {
	case "png", "act":
	default:
		return fmt.Errorf("bad argument given to --palette-format: %q", cfg.PaletteFormat)
	}
	if _, err := cfg.BackgroundColor(); err != nil {
		return fmt.Errorf("bad argument given to --background: %w", err)
	}
	if _, err := cfg.Replacements(); err != nil {
		return err
	}
	return nil
}

// CheckGrid validates the spritesheet arguments of a join. Rows may be 0 to
// grow the sheet as needed.
func (cfg *Config) CheckGrid() error {
	switch {
	case cfg.Columns <= 0:
		return errors.New("bad argument given to --spritesheet-width")
	case cfg.Rows < 0:
		return errors.New("bad argument given to --spritesheet-height")
	case cfg.ImageWidth <= 0:
		return errors.New("bad argument given to --image-width")
	case cfg.ImageHeight <= 0:
		return errors.New("bad argument given to --image-height")
	}
	return nil
}
