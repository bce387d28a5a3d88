package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/tabdeck/internal/config"
	"github.com/vango-dev/tabdeck/internal/errors"
	"github.com/vango-dev/tabdeck/internal/host"
	"github.com/vango-dev/tabdeck/internal/server"
	"github.com/vango-dev/tabdeck/internal/session"
	"github.com/vango-dev/tabdeck/internal/telemetry"
	"github.com/vango-dev/tabdeck/pkg/app"
	"github.com/vango-dev/tabdeck/pkg/reactive"
)

func serveCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [path]...",
		Short: "Start the workbench server",
		Long: `Start the workbench server.

The previous session is restored unless session.restore is false.
Paths given on the command line are opened after the restore.
The session and the config file are saved on shutdown.

Examples:
  tabdeck serve
  tabdeck serve --addr=0.0.0.0:8080
  tabdeck serve notes.txt logo.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd.OutOrStdout(), *configPath, addr, args)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from tabdeck.yaml)")

	return cmd
}

func runServe(ctx context.Context, out io.Writer, configPath, addr string, paths []string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Address = addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cfg.Logger(os.Stderr)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(
		telemetry.WithRegistry(reg),
		telemetry.WithNamespace(cfg.Metrics.Namespace),
	)

	opener, err := newOpener(ctx, cfg)
	if err != nil {
		return err
	}

	rt := reactive.NewRuntime(reactive.WithLogger(logger), reactive.WithObserver(metrics))
	st := app.New(rt,
		app.WithOpener(opener),
		app.WithLogger(logger),
		app.WithShowHome(cfg.ShowHomeOnStartup),
	)
	defer st.Dispose()

	store, err := session.Open(cfg.SessionPath())
	if err != nil {
		warn(out, "%s", errors.New("E302").Wrap(err).FormatCompact())
	} else {
		defer store.Close()
	}

	h := host.New(st,
		host.WithLogger(logger),
		host.WithMetrics(metrics),
		host.WithWatch(cfg.Watch.Enabled),
	)
	hostCtx, stopHost := context.WithCancel(context.Background())
	hostDone := make(chan error, 1)
	go func() { hostDone <- h.Run(hostCtx) }()
	defer func() {
		stopHost()
		<-hostDone
	}()

	if store != nil && cfg.Session.Restore {
		restoreSession(ctx, out, logger, h, store)
	}
	for _, p := range paths {
		err := h.Do(ctx, "open", func(ctx context.Context, st *app.State) error {
			_, err := st.OpenDocument(ctx, p)
			return err
		})
		if err != nil {
			errorMsg(out, "%s", errors.Classify(err, "E203").FormatCompact())
		}
	}

	srv := server.New(h, server.Config{Address: cfg.Server.Address},
		server.WithLogger(logger),
		server.WithMetrics(metrics, reg),
	)

	printBanner(out)
	success(out, "Serving on http://%s", cfg.Server.Address)
	info(out, "Press Ctrl+C to stop")

	serveErr := srv.ListenAndServe(ctx)
	if serveErr != nil {
		serveErr = errors.New("E301").Wrap(serveErr)
	}

	if store != nil {
		saveSession(logger, h, store)
	}
	if err := cfg.Save(); err != nil {
		logger.Warn("config not saved", "path", cfg.Path(), "error", err)
	}
	return serveErr
}

func restoreSession(ctx context.Context, out io.Writer, logger *slog.Logger, h *host.Host, store *session.Store) {
	rec, ok, err := store.Load(ctx, session.DefaultName)
	if err != nil {
		logger.Warn("session not restored", "error", err)
		return
	}
	if !ok {
		return
	}
	err = h.Do(ctx, "restore", func(ctx context.Context, st *app.State) error {
		return session.Restore(ctx, st, rec)
	})
	if err != nil {
		warn(out, "Some documents could not be restored: %v", err)
	}
	info(out, "Restored %d documents", len(rec.Paths))
}

func saveSession(logger *slog.Logger, h *host.Host, store *session.Store) {
	ctx := context.Background()
	var rec session.Record
	err := h.Do(ctx, "capture", func(_ context.Context, st *app.State) error {
		rec = session.Capture(st)
		return nil
	})
	if err == nil {
		err = store.Save(ctx, session.DefaultName, rec)
	}
	if err != nil {
		logger.Warn("session not saved", "error", err)
		return
	}
	logger.Info("session saved", "documents", len(rec.Paths))
}
