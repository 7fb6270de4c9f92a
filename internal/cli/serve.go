package cli

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/brickyard/internal/server"
	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/config"
	"github.com/matzehuels/brickyard/pkg/controller"
	pkgerrors "github.com/matzehuels/brickyard/pkg/errors"
	pkgio "github.com/matzehuels/brickyard/pkg/io"
	"github.com/matzehuels/brickyard/pkg/library"
	"github.com/matzehuels/brickyard/pkg/observability"
	"github.com/matzehuels/brickyard/pkg/raycast"
	"github.com/matzehuels/brickyard/pkg/session"
)

type serveOptions struct {
	addr   string
	aspect float64
	file   string
	load   string
}

// serveCommand runs one building session behind the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a building session over HTTP and WebSocket",
		Long: `Serve runs a single building session and exposes it over HTTP.
Clients post pointer samples in normalised device coordinates and click gestures in pixels; every change is streamed as a frame on /ws.
Pointer samples are cast through the perspective camera from the [camera] config section.`,
		Example: `  brickyard serve
  brickyard serve --addr :9000 --build castle.json
  brickyard serve --load castle`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.addr != "" {
				cfg.Server.Addr = opts.addr
			}
			return c.runServe(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().Float64Var(&opts.aspect, "aspect", 16.0/9.0, "viewport aspect ratio of the client")
	cmd.Flags().StringVar(&opts.file, "build", "", "start from a build file")
	cmd.Flags().StringVar(&opts.load, "load", "", "start from a saved build")
	cmd.MarkFlagsMutuallyExclusive("build", "load")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, opts serveOptions) error {
	logger := loggerFromContext(ctx)

	var gatherer prometheus.Gatherer
	if cfg.Server.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom := observability.NewPrometheus(reg)
		observability.SetEngineHooks(prom)
		observability.SetStoreHooks(prom)
		observability.SetHTTPHooks(prom)
		defer observability.Reset()
		gatherer = reg
	}

	store, err := c.openLibrary(ctx, cfg)
	if err != nil {
		logger.Warn("build library unavailable", "backend", cfg.Store.Backend, "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	pieces, err := initialBuild(ctx, store, opts)
	if err != nil {
		return err
	}

	ctrl := newController(cfg, pieces, controller.Options{})
	caster := &raycast.Perspective{
		Eye:    mgl64.Vec3(cfg.Camera.Eye),
		Target: mgl64.Vec3(cfg.Camera.Target),
		Up:     mgl64.Vec3{0, 1, 0},
		FovY:   cfg.Camera.FovY,
		Aspect: opts.aspect,
	}
	loop := session.New(ctrl, caster, session.Options{
		FrameRate: cfg.Builder.FrameRate,
		Logger:    logger,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(ctx) }()

	srv := server.New(loop, server.Options{
		Logger:   logger,
		Library:  store,
		Gatherer: gatherer,
	})
	err = srv.ListenAndServe(ctx, cfg.Server.Addr, func(addr net.Addr) {
		printSuccess("Serving on %s", StyleHighlight.Render("http://"+addr.String()))
		printKeyValue("pieces", fmt.Sprint(len(pieces)))
		printKeyValue("frame rate", fmt.Sprintf("%d Hz", cfg.Builder.FrameRate))
		if store != nil {
			printKeyValue("library", cfg.Store.Backend)
		}
		if gatherer != nil {
			printKeyValue("metrics", "/metrics")
		}
	})
	cancel()
	if lerr := <-loopErr; err == nil && !errors.Is(lerr, context.Canceled) {
		err = lerr
	}
	return err
}

// initialBuild returns the pieces a session starts with.
func initialBuild(ctx context.Context, store library.Store, opts serveOptions) (build.Pieces, error) {
	switch {
	case opts.file != "":
		return pkgio.ImportJSON(opts.file)
	case opts.load != "":
		if store == nil {
			return nil, pkgerrors.New(pkgerrors.ErrCodeUnsupported, "cannot load %q: no build library", opts.load)
		}
		entry, err := store.Get(ctx, opts.load)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, pkgerrors.New(pkgerrors.ErrCodeBuildNotFound, "build %q not found", opts.load)
		}
		return entry.Pieces, nil
	}
	return build.Pieces{}, nil
}
