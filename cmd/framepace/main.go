// Command framepace draws a triangle in a window, redrawing at a capped
// rate and reporting the measured frame rate in the title bar.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli"
)

func init() {
	// GLFW calls must come from the main thread.
	runtime.LockOSThread()
}

func main() {
	app := cli.NewApp()
	app.Name = "framepace"
	app.Usage = "rate-capped presentation loop on a GPU surface"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "YAML configuration file",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "open a window and run the presentation loop",
			Description: `
Open a window, select a GPU adapter and draw a single triangle over a
cleared background. Redraws are capped at the configured rate and the
window title shows the frame rate measured over the last second.

Press Escape or close the window to exit.`,
			Flags:  append(commonFlags(), windowFlags()...),
			Action: Run,
		},
		{
			Name:  "headless",
			Usage: "run the presentation loop on offscreen targets",
			Description: `
Run the same loop without a window. Redraws are produced by a synthetic
event source and presented to a ring of offscreen textures. The run ends
after the configured number of frames or duration.`,
			Flags:  append(commonFlags(), headlessFlags()...),
			Action: Headless,
		},
		{
			Name:   "list-adapters",
			Usage:  "list available GPU adapters",
			Flags:  []cli.Flag{backendFlag()},
			Action: ListAdapters,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "framepace: %v\n", err)
		os.Exit(1)
	}
}

func backendFlag() cli.Flag {
	return cli.StringFlag{
		Name:  "backend",
		Usage: "GPU backend (vulkan, noop)",
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		backendFlag(),
		cli.Float64Flag{
			Name:  "rate",
			Usage: "target redraws per second",
		},
		cli.StringFlag{
			Name:  "present-mode",
			Usage: "present mode (fifo, fifo-relaxed, mailbox, immediate)",
		},
		cli.StringFlag{
			Name:  "format",
			Usage: "preferred surface format (bgra8unorm, rgba8unorm)",
		},
		cli.IntFlag{
			Name:  "adapter",
			Value: -1,
			Usage: "adapter index from list-adapters, -1 selects automatically",
		},
	}
}

func windowFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Usage: "initial window width",
		},
		cli.IntFlag{
			Name:  "height",
			Usage: "initial window height",
		},
		cli.StringFlag{
			Name:  "title",
			Usage: "window title prefix shown before the first stats commit",
		},
	}
}

func headlessFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Usage: "offscreen target width",
		},
		cli.IntFlag{
			Name:  "height",
			Usage: "offscreen target height",
		},
		cli.Uint64Flag{
			Name:  "frames",
			Usage: "stop after this many rendered frames, 0 for no limit",
		},
		cli.DurationFlag{
			Name:  "duration",
			Usage: "stop after this long, 0 for no limit",
		},
		cli.IntFlag{
			Name:  "buffers",
			Usage: "offscreen ring size",
		},
	}
}
