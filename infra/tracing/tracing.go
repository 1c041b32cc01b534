package tracing

import (
	"io"
	"snagline/common"

	"github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// InitTracer installs a jaeger tracer as the opentracing global, configured
// from the JAEGER_* environment. Tracing is best-effort: a failed init only
// logs and the no-op global stays in place.
func InitTracer() io.Closer {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		common.Log.Warnf("tracing disabled, bad jaeger config: %v", err)
		return nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = common.GetServiceName()
	}
	cfg.Sampler = &jaegercfg.SamplerConfig{Type: jaeger.SamplerTypeConst, Param: 1}

	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		common.Log.Warnf("tracing disabled, tracer init failed: %v", err)
		return nil
	}
	opentracing.SetGlobalTracer(tracer)
	return closer
}
