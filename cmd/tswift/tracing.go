package main

import (
	"io"

	"github.com/opentracing/opentracing-go"
	jaeger "github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// tracerCloser is non-nil only when -tracing started a real Jaeger
// tracer; the global tracer otherwise stays opentracing's no-op default.
var tracerCloser io.Closer

func initTracing(enabled bool) error {
	if !enabled {
		return nil
	}
	cfg := jaegercfg.Configuration{
		ServiceName: "tswift",
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans: false,
		},
	}
	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		return err
	}
	opentracing.SetGlobalTracer(tracer)
	tracerCloser = closer
	return nil
}

func stopTracing() error {
	if tracerCloser == nil {
		return nil
	}
	err := tracerCloser.Close()
	tracerCloser = nil
	return err
}

// traced runs fn inside a span named op, finishing the span with fn's
// error if any (§6 operations are the natural span boundary: each one is
// a single manager call a caller waits on).
func traced(op string, fn func() error) error {
	span := opentracing.StartSpan(op)
	defer span.Finish()
	err := fn()
	if err != nil {
		span.SetTag("error", true)
		span.LogKV("event", "error", "message", err.Error())
	}
	return err
}
