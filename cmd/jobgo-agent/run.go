package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"jobgo-agent/internal/api"
	"jobgo-agent/internal/badge"
	"jobgo-agent/internal/config"
	"jobgo-agent/internal/coordinator"
	"jobgo-agent/internal/detect"
	"jobgo-agent/internal/events"
	"jobgo-agent/internal/httpapi"
	"jobgo-agent/internal/instance"
	"jobgo-agent/internal/nativemsg"
	"jobgo-agent/internal/notify"
	"jobgo-agent/internal/poll"
	"jobgo-agent/internal/router"
	"jobgo-agent/internal/scheduler"
	"jobgo-agent/internal/secrets"
	"jobgo-agent/internal/store"
)

func runCmd(a *app) *cobra.Command {
	var stdio bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the agent: poll alarm, badge, local HTTP surface",
		Long: "Run the agent. With --stdio the process also serves the browser's native\n" +
			"messaging channel on stdin/stdout; if an agent is already running it relays\n" +
			"to that one instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			lock, err := instance.Acquire(a.dataDir)
			if errors.Is(err, instance.ErrAlreadyRunning) && stdio {
				a.log.Info("agent already running, relaying native messages", "addr", a.cfg.App.ListenAddr)
				return relayStdio(ctx, a)
			}
			if err != nil {
				return err
			}
			defer lock.Release()

			return runAgent(ctx, stop, a, lock.Token(), stdio)
		},
	}
	cmd.Flags().BoolVar(&stdio, "stdio", false, "serve native messaging on stdin/stdout")
	return cmd
}

// agent is the fully wired background coordinator.
type agent struct {
	db     *store.DB
	live   *config.Live
	hub    *events.Hub
	client *api.Client
	badge  *badge.Badge
	poll   *poll.Reconciler
	router *router.Router
}

// newAgent wires the coordinator. daemon selects the full notification
// fan-out; one-shot CLI commands only log.
func newAgent(ctx context.Context, a *app, hub *events.Hub, daemon bool) (*agent, error) {
	db, err := store.Open(a.dbPath())
	if err != nil {
		return nil, err
	}
	settings, err := db.LoadSettings(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	live := config.NewLive(settings.Runtime())
	client := api.New(live,
		api.WithHTTPClient(&http.Client{Timeout: time.Duration(a.cfg.Backend.TimeoutSeconds) * time.Second}),
		api.WithLimiter(api.NewHostLimiter(a.cfg.Backend.RatePerSec, a.cfg.Backend.Burst)),
		api.WithLogger(a.log),
	)

	sinks := notify.Multi{notify.Log{Logger: a.log}}
	if daemon {
		sinks = notifiers(a, hub, db)
	}

	b := badge.New(hub)
	rec := poll.NewReconciler(client, b, sinks, a.cfg.Badge.Color, a.log)
	rt := router.New(router.Deps{
		Scanner:   rec,
		Badge:     rec,
		Companies: coordinator.New(client, a.log),
		Hub:       hub,
		Log:       a.log,
	})

	return &agent{db: db, live: live, hub: hub, client: client, badge: b, poll: rec, router: rt}, nil
}

func (ag *agent) Close() error { return ag.db.Close() }

func notifiers(a *app, hub *events.Hub, db *store.DB) notify.Multi {
	sinks := notify.Multi{notify.Log{Logger: a.log}, notify.Events{Hub: hub}, notify.Recorder{Store: db}}
	if a.cfg.Notify.Desktop {
		sinks = append(sinks, notify.NewDesktop(a.cfg.Notify.IconPath))
	}
	if a.cfg.Notify.Webhook {
		sinks = append(sinks, notify.NewWebhook(secrets.GetWebhookURL))
	}
	return sinks
}

func runAgent(ctx context.Context, stop context.CancelFunc, a *app, token string, stdio bool) error {
	hub := events.NewHub()

	ag, err := newAgent(ctx, a, hub, true)
	if err != nil {
		return err
	}
	defer ag.Close()

	pageClient := &http.Client{Timeout: 10 * time.Second}
	handler := httpapi.Handler(httpapi.Deps{
		Hub:           hub,
		Router:        ag.router,
		Badge:         ag.badge.State,
		Poll:          ag.poll,
		Settings:      ag.db,
		Live:          ag.live,
		Notifications: ag.db,
		Config:        a.cfg,
		ConfigPath:    a.cfgPath,
		FetchMeta: func(ctx context.Context, url string) (detect.PageMeta, error) {
			return detect.FetchPageMeta(ctx, pageClient, url)
		},
		SetWebhookURL:    secrets.SetWebhookURL,
		DeleteWebhookURL: secrets.DeleteWebhookURL,
		ShutdownToken:    token,
		Shutdown:         stop,
		Log:              a.log,
	})

	ln, err := net.Listen("tcp", a.cfg.App.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.App.ListenAddr, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("agent listening", "addr", "http://"+ln.Addr().String(), "db", a.dbPath(), "backend", ag.live.Runtime().BaseURL)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	if stdio {
		g.Go(func() error {
			// the browser closing the port ends the agent
			defer stop()
			return nativemsg.NewHost(ag.router, a.log).Serve(gctx, os.Stdin, os.Stdout)
		})
	}

	sched := scheduler.New(ag.db, ag.poll, a.log)
	period := time.Duration(a.cfg.Polling.IntervalMinutes) * time.Minute
	if _, err := sched.Start(gctx, poll.AlarmName, period); err != nil {
		stop()
		_ = g.Wait()
		return err
	}
	defer sched.Stop()

	err = g.Wait()
	a.log.Info("agent stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
