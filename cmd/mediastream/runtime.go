package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/libav"
	"github.com/xaionaro-go/observability"
)

func initRuntime(
	ctx context.Context,
	cfg Config,
) (context.Context, context.CancelFunc) {
	var closeFuncs []func()

	l := logger.FromCtx(ctx)
	libav.SetLogger(l)

	if cfg.ListenMetrics != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{
			Addr:    cfg.ListenMetrics,
			Handler: mux,
		}
		observability.Go(ctx, func(ctx context.Context) {
			l.Infof("starting to listen for metrics requests at '%s'", cfg.ListenMetrics)
			err := srv.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				l.Error(err)
			}
		})
		closeFuncs = append(closeFuncs, func() {
			if err := srv.Close(); err != nil {
				l.Errorf("unable to close the metrics server: %v", err)
			}
		})
	}

	ctx, cancelFn := context.WithCancel(ctx)
	return ctx, func() {
		defer belt.Flush(ctx)
		cancelFn()
		for i := len(closeFuncs) - 1; i >= 0; i-- {
			closeFuncs[i]()
		}
	}
}
