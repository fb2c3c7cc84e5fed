package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := run(context.Background(), os.Stdout, os.Stderr, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	cmd := newCommand(stderr)
	cmd.Writer = stdout
	cmd.ErrWriter = stderr
	return cmd.Run(ctx, args)
}

func newCommand(logOut io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "smbxsheet",
		Usage:   "join sprites for easy recoloring, separate them again, resize them",
		Version: "1.4.0",
		Description: "Joins the images of a directory into one image with their palette appended, " +
			"writing a .cfg file that records where every image went so the joined image can be " +
			"separated again after editing.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML file with default settings (default: ./smbxsheet.yaml if present)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "console or json"},
		},
		Commands: []*cli.Command{
			{
				Name:    "join",
				Aliases: []string{"j"},
				Usage:   "join the input images into one image, or into a spritesheet",
				Flags:   append(commonFlags(), joinFlags()...),
				Action:  action(logOut, actionJoin),
			},
			{
				Name:    "separate",
				Aliases: []string{"s", "separe"},
				Usage:   "separate joined images using their .cfg file, or slice a spritesheet",
				Flags:   append(commonFlags(), separateFlags()...),
				Action:  action(logOut, actionSeparate),
			},
			{
				Name:    "resize",
				Aliases: []string{"skip", "resize-only"},
				Usage:   "only resize the input images and save them to the output directory",
				Flags:   commonFlags(),
				Action:  action(logOut, actionResize),
			},
			{
				Name:    "palette",
				Aliases: []string{"extract-palette-only"},
				Usage:   "only extract the palette of the input images",
				Flags:   append(commonFlags(), paletteFlags()...),
				Action:  action(logOut, actionPalette),
			},
			{
				Name:   "recolor",
				Usage:  "replace colors in the input images, keeping joined images separable",
				Flags:  append(commonFlags(), recolorFlags()...),
				Action: action(logOut, actionRecolor),
			},
		},
	}
}
