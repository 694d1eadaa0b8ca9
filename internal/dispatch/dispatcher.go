package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/astrelay/astrelay/internal/alice"
	"github.com/astrelay/astrelay/internal/dialog"
	"github.com/astrelay/astrelay/internal/formatter"
	"github.com/astrelay/astrelay/internal/observability"
	"github.com/astrelay/astrelay/internal/universal"
)

// ApologyText is the uniform degraded-service reply. The session stays open
// so the user can retry.
const ApologyText = "Sorry, the stars are quiet right now. Please try again in a moment."

// Dispatcher routes canonical requests to the shared dialog engine and shapes
// the reply for the originating platform. It holds no per-request state and
// is safe for concurrent use.
type Dispatcher struct {
	engine          dialog.Engine
	metrics         *observability.Metrics
	defaultLocale   string
	defaultTimezone string
}

func New(engine dialog.Engine, metrics *observability.Metrics, defaultLocale, defaultTimezone string) *Dispatcher {
	if defaultLocale == "" {
		defaultLocale = "ru-RU"
	}
	if defaultTimezone == "" {
		defaultTimezone = "UTC"
	}
	return &Dispatcher{
		engine:          engine,
		metrics:         metrics,
		defaultLocale:   defaultLocale,
		defaultTimezone: defaultTimezone,
	}
}

// Handle produces a response for every request; it never returns an error or
// panics to its caller. Failures inside the per-platform handling degrade to
// the apology reply so a broken shim cannot crash the shared webhook. There
// is no internal timeout: the transport's request context bounds the call.
func (d *Dispatcher) Handle(ctx context.Context, req *universal.Request) *universal.Response {
	start := time.Now()

	resp, err := d.dispatch(ctx, req)
	if err != nil {
		log.Printf("dispatch %s failed: %v", req.Platform, err)
		d.metrics.DispatchRequests.WithLabelValues(string(req.Platform), "fallback").Inc()
		resp = &universal.Response{
			Text:       ApologyText,
			EndSession: false,
			Routing:    req.Context,
		}
	} else {
		d.metrics.DispatchRequests.WithLabelValues(string(req.Platform), "ok").Inc()
	}

	d.metrics.DispatchLatency.Observe(float64(time.Since(start).Milliseconds()))
	return formatter.Optimize(resp, req.Platform)
}

func (d *Dispatcher) dispatch(ctx context.Context, req *universal.Request) (resp *universal.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("panic in %s handling: %v", req.Platform, r)
		}
	}()

	var native *alice.Request
	switch req.Platform {
	case universal.PlatformAlice:
		// The native format is the engine's expected schema: reconstruct it
		// verbatim instead of re-deriving fields.
		native, err = reconstructNative(req)
		if err != nil {
			return nil, err
		}
	case universal.PlatformTelegram, universal.PlatformAssistant:
		native = d.shimRequest(req)
	default:
		return nil, fmt.Errorf("unsupported platform %q", req.Platform)
	}

	reply, err := d.engine.Handle(ctx, native)
	if err != nil {
		return nil, fmt.Errorf("dialog engine: %w", err)
	}

	return d.toUniversal(reply, req), nil
}

func (d *Dispatcher) toUniversal(reply *dialog.Reply, req *universal.Request) *universal.Response {
	resp := &universal.Response{
		Text:         reply.Text,
		TTS:          reply.TTS,
		EndSession:   reply.EndSession,
		ShouldListen: !reply.EndSession,
		Routing:      req.Context,
	}
	for _, b := range reply.Buttons {
		resp.Buttons = append(resp.Buttons, universal.Button{
			Title:   b.Title,
			Payload: b.Payload,
			URL:     b.URL,
		})
	}
	return resp
}

func reconstructNative(req *universal.Request) (*alice.Request, error) {
	var native alice.Request
	if err := json.Unmarshal(req.Original, &native); err != nil {
		return nil, fmt.Errorf("reconstruct native request: %w", err)
	}
	return &native, nil
}
