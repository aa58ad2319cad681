package main

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/facebookincubator/go-belt"
	xruntime "github.com/facebookincubator/go-belt/pkg/runtime"
	"github.com/facebookincubator/go-belt/tool/experimental/metrics"
	prometheusadapter "github.com/facebookincubator/go-belt/tool/experimental/metrics/implementation/prometheus"
	"github.com/facebookincubator/go-belt/tool/logger"
	xlogrus "github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/sirupsen/logrus"
)

var originalPCFilter xruntime.PCFilter

func init() {
	originalPCFilter = xruntime.DefaultCallerPCFilter
}

// setDefaultCallerPCFilter makes log entries point to the actual caller
// rather than to the locking and log-forwarding helpers.
func setDefaultCallerPCFilter() {
	xruntime.DefaultCallerPCFilter = func(pc uintptr) bool {
		if !originalPCFilter(pc) {
			return false
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			return true
		}
		if strings.Contains(fn.Name(), "xaionaro-go/xsync") {
			return false
		}
		file, _ := fn.FileLine(pc)
		switch {
		case strings.HasSuffix(file, "/locked_stream.go"):
			return false
		case strings.HasSuffix(file, "/libav/logger.go"):
			return false
		}
		return true
	}
}

func getContext(
	flags Flags,
) context.Context {
	ctx := context.Background()
	setDefaultCallerPCFilter()

	ctx = metrics.CtxWithMetrics(ctx, prometheusadapter.Default())

	ll := xlogrus.DefaultLogrusLogger()
	ll.SetOutput(os.Stderr)
	l := xlogrus.New(ll).WithLevel(flags.LoggerLevel)
	logrus.SetLevel(xlogrus.LevelToLogrus(l.Level()))

	ctx = logger.CtxWithLogger(ctx, l)
	ctx = belt.WithField(ctx, "program", appName)
	ctx = belt.WithField(ctx, "pid", os.Getpid())

	l = logger.FromCtx(ctx)
	logger.Default = func() logger.Logger {
		return l
	}
	return ctx
}
