package main

import (
	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/iota-uz/hrsync/modules/hris/presentation/controllers"
	"github.com/iota-uz/hrsync/pkg/configuration"
	"github.com/iota-uz/hrsync/pkg/metrics"
	"github.com/iota-uz/hrsync/pkg/middleware"
	"github.com/iota-uz/hrsync/pkg/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the SSE sync endpoint, health and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := root.load()
			if err != nil {
				return err
			}
			defer conf.Unload()

			a, err := newApp(cmd.Context(), conf)
			if err != nil {
				return err
			}
			srv, err := newHTTPServer(a, conf)
			if err != nil {
				return withCode(exitConfig, err)
			}
			a.log.WithField("address", conf.SocketAddress).Info("listening")
			if err := srv.Serve(cmd.Context(), conf.SocketAddress); err != nil {
				return withCode(exitFailure, err)
			}
			a.log.Info("server stopped")
			return nil
		},
	}
}

func newHTTPServer(a *app, conf *configuration.Configuration) (*server.HTTPServer, error) {
	var limit mux.MiddlewareFunc
	if conf.RateLimit.Enabled {
		mw, err := middleware.RateLimit(middleware.RateLimitConfig{Rate: conf.RateLimit.SyncRate})
		if err != nil {
			return nil, err
		}
		limit = mw
	}

	ctrls := []server.Controller{
		controllers.NewSyncController(controllers.SyncControllerOptions{
			Runner:    a.pipeline,
			Location:  conf.Export.Location(),
			RateLimit: limit,
			Logger:    a.log,
		}),
		controllers.NewHealthController(a.dispatcher.Names()),
	}
	if conf.Prometheus.Enabled {
		ctrls = append(ctrls, metrics.NewPrometheusController(conf.Prometheus.Path))
	}
	return server.NewHTTPServer(
		ctrls,
		[]mux.MiddlewareFunc{middleware.WithLogger(a.log, conf.RequestIDHeader)},
		nil, nil,
	), nil
}
