package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"glessons/assets"
	"glessons/internal/config"
	"glessons/internal/game"
	"glessons/internal/graphics"
	"glessons/internal/graphics/glapi/glcore"
	"glessons/internal/graphics/renderer"
	"glessons/internal/imageio"
	"glessons/internal/input"
	"glessons/internal/lesson"
	"glessons/internal/platform"
	"glessons/internal/platform/glfwwin"

	"github.com/xlab/closer"
)

func init() {
	// GLFW and GL calls must stay on the main thread
	runtime.LockOSThread()
}

var (
	configPath = flag.String("config", "", "path to a .toml or .yaml config file")
	lessonName = flag.String("lesson", "", "lesson to run, overrides the config")
	verbose    = flag.Bool("v", false, "enable debug logging")
	list       = flag.Bool("list", false, "list lessons and exit")
	dumpConfig = flag.String("dump-config", "", "print the effective config as toml or yaml and exit")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	graphics.SetLogger(logger)
	game.SetLogger(logger)

	if *list {
		for _, name := range lesson.Names() {
			l, _ := lesson.Lookup(name)
			fmt.Printf("%-16s %s\n", name, l.Title)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// A signal only asks the loop to stop; teardown stays on this thread.
	closer.Bind(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			logger.Warn("frame loop did not stop in time")
		}
	})

	closer.Checked(func() error {
		defer close(done)
		return run(ctx, logger)
	}, true)
	closer.Close()
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return config.Config{}, err
		}
	}
	if *lessonName != "" {
		cfg.Lesson = *lessonName
	}
	return cfg, nil
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if *dumpConfig != "" {
		return config.Write(os.Stdout, cfg, *dumpConfig)
	}

	l, err := lesson.Lookup(cfg.Lesson)
	if err != nil {
		return err
	}
	sceneOpts, err := sceneOptions(cfg)
	if err != nil {
		return err
	}

	win, err := glfwwin.Open(glfwwin.Options{
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Title:     cfg.Window.Title + " - " + l.Title,
		VSync:     cfg.Window.VSync,
		Resizable: cfg.Window.Resizable,
	})
	if err != nil {
		return err
	}

	dev, err := glcore.Init()
	if err != nil {
		win.Destroy()
		return &platform.ContextInitError{Stage: "gl function loading", Err: err}
	}
	logger.Info("context ready", "gl", dev.Version(), "lesson", l.Name)

	scene := lesson.NewScene(dev, l, sceneOpts)
	r, err := renderer.NewRenderer(dev, cfg.ClearColor(l.ClearColor), scene)
	if err != nil {
		win.Destroy()
		return err
	}

	wireframe := l.Wireframe
	if cfg.Render.Wireframe != nil {
		wireframe = *cfg.Render.Wireframe
	}
	r.SetWireframe(wireframe)

	loop := game.NewFrameLoop(win, input.NewInputManager(), r, game.Options{
		FPSLimit:  cfg.Window.FPSLimit,
		SlowFrame: time.Duration(cfg.Render.SlowFrameMs * float64(time.Millisecond)),
		Transform: graphics.NewTransformState(cfg.Transform.StepX, cfg.Transform.StepY),
	})
	return loop.Run(ctx)
}

func sceneOptions(cfg config.Config) (lesson.SceneOptions, error) {
	wrap, err := config.ParseWrap(cfg.Texture.Wrap)
	if err != nil {
		return lesson.SceneOptions{}, err
	}
	minFilter, err := config.ParseFilter(cfg.Texture.MinFilter, true)
	if err != nil {
		return lesson.SceneOptions{}, err
	}
	magFilter, err := config.ParseFilter(cfg.Texture.MagFilter, false)
	if err != nil {
		return lesson.SceneOptions{}, err
	}

	opts := lesson.SceneOptions{
		Images:         imageio.Decoder{FlipVertically: cfg.Texture.FlipVertically, FS: assets.Textures},
		TextureOptions: &graphics.TextureOptions{Wrap: wrap, MinFilter: minFilter, MagFilter: magFilter},
		TexturePaths:   cfg.Texture.Paths,
	}

	if cfg.Shaders.Vertex != "" {
		vs, err := os.ReadFile(cfg.Shaders.Vertex)
		if err != nil {
			return lesson.SceneOptions{}, fmt.Errorf("could not read vertex shader file: %w", err)
		}
		fs, err := os.ReadFile(cfg.Shaders.Fragment)
		if err != nil {
			return lesson.SceneOptions{}, fmt.Errorf("could not read fragment shader file: %w", err)
		}
		opts.VertexSource, opts.FragmentSource = string(vs), string(fs)
	}
	return opts, nil
}
