package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/placefinder/internal/config"
	"github.com/sells-group/placefinder/internal/httpapi"
	"github.com/sells-group/placefinder/internal/typeahead"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		classifier, err := initClassifier(cfg.Location)
		if err != nil {
			return err
		}
		src, err := initCatalog(ctx, cfg.Catalog)
		if err != nil {
			return err
		}
		if src != nil {
			defer src.Close() //nolint:errcheck
		}

		gc, closeGeocoder, err := initGeocoder(ctx, cfg.Geocode)
		if err != nil {
			return err
		}
		defer closeGeocoder()

		sessions := newSessions(gc, cfg.Typeahead)
		defer sessions.CloseAll()
		go sessions.RunJanitor(ctx, cfg.Typeahead.SessionTTL())

		opts := []httpapi.ServerOption{
			httpapi.WithClassifier(classifier),
			httpapi.WithCORSOrigins(cfg.Server.CORSOrigins...),
		}
		if src != nil {
			opts = append(opts, httpapi.WithCatalog(src))
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           httpapi.NewServer(gc, sessions, opts...).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return runServer(ctx, srv)
	},
}

// newSessions builds the typeahead session registry from config.
func newSessions(p typeahead.Provider, c config.TypeaheadConfig) *httpapi.Sessions {
	return httpapi.NewSessions(p, c.MaxSessions,
		typeahead.WithDelay(c.Delay()),
		typeahead.WithMinLength(c.MinLength),
		typeahead.WithTimeout(time.Duration(c.TimeoutSecs)*time.Second),
	)
}

// runServer serves until ctx is cancelled, then drains connections.
func runServer(ctx context.Context, srv *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zap.L().Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "server shutdown")
		}
		return nil
	})

	return g.Wait()
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
