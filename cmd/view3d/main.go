// Command view3d opens a minimal 3D scene viewer or renders a scene
// straight to an image file.
//
// With no arguments it opens an empty window with a drop zone hint; OBJ
// file arguments are merged into one scene. --output renders offscreen
// and writes a PNG or BMP instead of opening a window, and --bounds
// prints the scene content without rendering at all.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/gogpu/view3d"
	"github.com/gogpu/view3d/config"
	"github.com/gogpu/view3d/internal/theme"
	"github.com/gogpu/view3d/scene"
	"github.com/gogpu/view3d/surface"
	_ "github.com/gogpu/view3d/surface/gpusurface" // register the GPU surface
)

func main() {
	// The default version flag claims -v, which belongs to --verbose here.
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "view3d"
	app.Usage = "fast and minimalist 3D viewer"
	app.Version = view3d.Version
	app.ArgsUsage = "[file.obj ...]"
	app.Flags = config.Flags()
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "view3d:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("verbose") {
		view3d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	opts := view3d.NewOptions()
	configPath := c.String("config")
	if configPath != "" {
		f, err := config.LoadFile(configPath)
		if err != nil {
			// A broken configuration file must not stop the viewer.
			fmt.Fprintln(os.Stderr, "view3d:", err)
		} else {
			f.Apply(opts)
		}
	}
	if err := config.ApplyFlags(c, opts); err != nil {
		return err
	}

	scn, title, err := loadScene(c.Args())
	if err != nil {
		return err
	}
	if c.Bool("bounds") {
		return printBounds(opts, scn)
	}

	var wopts []view3d.WindowOption
	if s := c.String("backend"); s != "" {
		t, err := surface.ParseType(s)
		if err != nil {
			return err
		}
		wopts = append(wopts, view3d.WithType(t))
	}
	if s := c.String("resolution"); s != "" {
		w, h, err := config.ParseResolution(s)
		if err != nil {
			return err
		}
		wopts = append(wopts, view3d.WithSize(w, h))
	}
	output := c.String("output")
	if output != "" {
		wopts = append(wopts, view3d.WithOffscreen(true))
	}

	if len(scn.Meshes) == 0 {
		opts.UI.DropZone = true
		opts.UI.DropZoneInfo = "Drop a file to open it"
	}
	opts.UI.FilenameInfo = title

	win, err := view3d.New(opts, wopts...)
	if err != nil {
		return err
	}
	defer win.Close() //nolint:errcheck

	win.SetScene(scn)
	win.ResetCamera()
	if title != "" {
		win.SetTitle(title + " - view3d")
	}

	if output != "" {
		return export(win, output, c.Bool("no-background"))
	}
	return view(win, configPath, opts)
}

// loadScene merges the positional files into one scene and derives the
// title shown in the window frame and the filename overlay.
func loadScene(paths []string) (*scene.Scene, string, error) {
	scn := scene.New()
	for _, path := range paths {
		s, err := scene.LoadFile(path)
		if err != nil {
			return nil, "", err
		}
		scn.Meshes = append(scn.Meshes, s.Meshes...)
		scn.Animations = append(scn.Animations, s.Animations...)
		for k, v := range s.Metadata {
			scn.Metadata[k] = v
		}
		if scn.FileName == "" {
			scn.FileName = path
		}
	}

	switch len(paths) {
	case 0:
		return scn, "", nil
	case 1:
		return scn, filepath.Base(paths[0]), nil
	default:
		return scn, fmt.Sprintf("%s (+%d)", filepath.Base(paths[0]), len(paths)-1), nil
	}
}

// printBounds loads the scene into a render-less window so option and
// actor bookkeeping still runs, then prints the scene summary.
func printBounds(opts *view3d.Options, scn *scene.Scene) error {
	win, err := view3d.New(opts, view3d.WithType(surface.None), view3d.WithOffscreen(true))
	if err != nil {
		return err
	}
	defer win.Close() //nolint:errcheck

	win.SetScene(scn)
	win.Render()
	fmt.Print(scn.Description())
	return nil
}

// export renders one frame offscreen and writes it to path.
func export(win *view3d.Window, path string, noBackground bool) error {
	img, err := win.RenderToImage(noBackground)
	if err != nil {
		return err
	}
	if err := img.Save(path); err != nil {
		return err
	}
	view3d.Logger().Info("image written",
		"path", path, "width", img.Width, "height", img.Height)
	return nil
}

// view runs the interactive loop until interrupted. The system theme and
// the configuration file are watched on side goroutines; their results
// are applied from interactor timers so all surface and renderer access
// stays on the loop goroutine.
func view(win *view3d.Window, configPath string, opts *view3d.Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	it := view3d.NewInteractor(win)

	var themeDirty atomic.Bool
	go func() {
		if err := theme.Monitor(ctx, func(dark bool) {
			view3d.Logger().Debug("system theme changed", "dark", dark)
			themeDirty.Store(true)
		}); err != nil {
			view3d.Logger().Debug("theme monitor unavailable", "error", err)
		}
	}()
	it.CreateTimerCallback(time.Second, func() {
		if themeDirty.Swap(false) {
			win.UpdateTheme()
		}
	})

	if configPath != "" {
		var pending atomic.Pointer[config.File]
		go func() {
			if err := config.Watch(ctx, configPath, func(f *config.File) {
				pending.Store(f)
			}); err != nil {
				view3d.Logger().Warn("config watch unavailable", "error", err)
			}
		}()
		it.CreateTimerCallback(time.Second, func() {
			if f := pending.Swap(nil); f != nil {
				f.Apply(opts)
				win.Render()
			}
		})
	}

	win.Render()
	if err := it.Start(ctx); err != nil {
		// A signal is a normal way to leave the viewer.
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
