package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jobtier-engine/internal/config"
	"jobtier-engine/internal/events"
	"jobtier-engine/internal/httpapi"
	"jobtier-engine/internal/metrics"
	"jobtier-engine/internal/poll"
	"jobtier-engine/internal/scheduler"
	"jobtier-engine/internal/scrape"
)

type serveFlags struct {
	noSchedule bool
	noWatch    bool
	seedDir    string
}

func newServeCmd(rf *rootFlags) *cobra.Command {
	var sf serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled scrape loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(rf)
			if err != nil {
				return err
			}
			defer a.close()
			return serve(cmd.Context(), a, sf)
		},
	}
	cmd.Flags().BoolVar(&sf.noSchedule, "no-schedule", false, "do not run scheduled scrapes")
	cmd.Flags().BoolVar(&sf.noWatch, "no-watch", false, "do not reload the config file on change")
	cmd.Flags().StringVar(&sf.seedDir, "seed-dir", "data", "default directory for POST /data/seed")
	return cmd
}

func serve(ctx context.Context, a *app, sf serveFlags) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	gw, err := a.openGateway(ctx)
	if err != nil {
		return err
	}
	defer gw.Close()

	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(a.cfg)
	current := func() config.Config { return cfgVal.Load().(config.Config) }

	hub := events.NewHub()
	m := metrics.New()
	lim := scrape.NewLimiter(a.cfg)
	runner := &poll.Runner{
		Gateway:  gw,
		Registry: scrape.NewRegistry(a.cfg, lim),
		Config:   current,
		Hub:      hub,
		Metrics:  m,
		Log:      a.log.Named("scrape"),
	}

	mux := httpapi.NewMux(httpapi.Deps{
		Gateway:     gw,
		Runner:      runner,
		Hub:         hub,
		Metrics:     m,
		Log:         a.log,
		CfgVal:      &cfgVal,
		UserCfgPath: a.userCfgPath,
		LoadCfg:     func() (config.Config, error) { return loadConfig(a.userCfgPath) },
		SeedDir:     sf.seedDir,
		Version:     version,
		BaseCtx:     ctx,
	})

	token, err := randomToken(16)
	if err != nil {
		return err
	}
	mux.HandleFunc("/shutdown", shutdownHandler(token, stop))

	// register the schedule before anything starts so a bad spec leaves
	// nothing running
	var sched *scheduler.Scheduler
	if !sf.noSchedule && a.cfg.Scrape.Schedule != "" {
		sched = scheduler.New(a.log.Named("scheduler"))
		err := sched.Add(ctx, a.cfg.Scrape.Schedule, "scrape", func(ctx context.Context) error {
			_, err := runner.RunOnce(ctx, "scheduled")
			if errors.Is(err, poll.ErrAlreadyRunning) {
				return nil
			}
			return err
		})
		if err != nil {
			return err
		}
	}

	addr := net.JoinHostPort(a.cfg.App.Host, strconv.Itoa(a.cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           httpapi.Handler(mux, a.log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.log.Info("engine listening",
		zap.String("addr", "http://"+addr),
		zap.String("backend", gw.Backend().Name()),
		zap.String("config", a.userCfgPath),
	)
	// the desktop shell reads this line to learn the shutdown token
	fmt.Printf("SHUTDOWN_TOKEN=%s\n", token)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		stop()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if sched != nil {
		g.Go(func() error {
			sched.Run(gctx)
			return nil
		})
		a.log.Info("scrape scheduled", zap.String("spec", a.cfg.Scrape.Schedule))
	}

	if !sf.noWatch {
		g.Go(func() error {
			// a missing watcher only disables hot reload
			if err := config.Watch(gctx, a.userCfgPath, &cfgVal, loadConfig, a.log.Named("config")); err != nil {
				a.log.Warn("config watch disabled", zap.Error(err))
			}
			return nil
		})
	}

	err = g.Wait()
	a.log.Info("engine stopped")
	return err
}
