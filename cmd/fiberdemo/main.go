package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/pkg/memdom"
	"github.com/delaneyj/fiberparty/pkg/termview"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

const (
	logLevelKey = "log-level"
	sceneKey    = "scene"
	formatKey   = "format"
	widthKey    = "width"
	ticksKey    = "ticks"
	intervalKey = "interval"
)

func main() {
	cmd := &cli.Command{
		Name:  "fiberdemo",
		Usage: "Drive the fiber reconciler against an in-memory DOM",
		Commands: []*cli.Command{
			{
				Name:  "render",
				Usage: "Render a YAML scene once and print it",
				Flags: append(commonFlags(),
					sceneFlag(),
					&cli.StringFlag{
						Name:  formatKey,
						Usage: "Output format: html or term",
						Value: "term",
					},
				),
				Action: renderScene,
			},
			{
				Name:   "watch",
				Usage:  "Re-render a YAML scene every time the file changes",
				Flags:  append(commonFlags(), sceneFlag()),
				Action: watchScene,
			},
			{
				Name:  "clock",
				Usage: "Mount a ticking component and print each commit",
				Flags: append(commonFlags(),
					&cli.UintFlag{
						Name:  ticksKey,
						Usage: "Number of ticks before unmounting",
						Value: 5,
					},
					&cli.DurationFlag{
						Name:  intervalKey,
						Usage: "Time between ticks",
						Value: 250 * time.Millisecond,
					},
				),
				Action: runClock,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  logLevelKey,
			Usage: "zerolog level (trace, debug, info, warn, error)",
			Value: "warn",
		},
		&cli.UintFlag{
			Name:  widthKey,
			Usage: "Terminal width used to truncate text, 0 for none",
			Value: 80,
		},
	}
}

func sceneFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     sceneKey,
		Usage:    "Path to the YAML scene",
		Required: true,
	}
}

func newLogger(cmd *cli.Command) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cmd.String(logLevelKey))
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().
		Logger(), nil
}

func newView(cmd *cli.Command) *termview.View {
	return termview.New(termview.WithWidth(int(cmd.Uint(widthKey))))
}

// printOnCommit redraws the container after every commit.
func printOnCommit(view *termview.View, container *memdom.Node) fiber.Option {
	return fiber.WithOnCommit(func(*fiber.Root) {
		fmt.Print("\x1b[H\x1b[2J")
		fmt.Println(view.Render(container))
	})
}
