package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/astrelay/astrelay/internal/alice"
	"github.com/astrelay/astrelay/internal/dialog"
	"github.com/astrelay/astrelay/internal/observability"
	"github.com/astrelay/astrelay/internal/universal"
)

var metricsSeq atomic.Int64

// testMetrics returns metrics under a unique namespace so promauto's default
// registry does not reject repeated registration across tests.
func testMetrics() *observability.Metrics {
	return observability.NewMetrics(fmt.Sprintf("test_dispatch_%d", metricsSeq.Add(1)))
}

func aliceOriginal(t *testing.T) ([]byte, *alice.Request) {
	t.Helper()
	native := &alice.Request{
		Version: "1.0",
		Meta:    alice.Meta{Locale: "ru-RU", Timezone: "Europe/Moscow"},
		Session: alice.Session{
			New:       false,
			MessageID: 7,
			SessionID: "sess-1",
			User:      &alice.User{UserID: "user-1"},
		},
		Request: alice.Utterance{
			Command:           "гороскоп для льва",
			OriginalUtterance: "Гороскоп для Льва",
			Type:              alice.TypeSimpleUtterance,
		},
	}
	raw, err := json.Marshal(native)
	if err != nil {
		t.Fatalf("marshal native: %v", err)
	}
	return raw, native
}

func TestHandleAlicePassesNativeRequestVerbatim(t *testing.T) {
	engine := dialog.NewMockEngine()
	d := New(engine, testMetrics(), "", "")

	raw, native := aliceOriginal(t)
	req := &universal.Request{
		Platform:  universal.PlatformAlice,
		UserID:    "user-1",
		SessionID: "sess-1",
		Text:      "Гороскоп для Льва",
		Context:   universal.AliceContext{Version: "1.0", Locale: "ru-RU", Timezone: "Europe/Moscow"},
		Original:  raw,
	}

	resp := d.Handle(context.Background(), req)
	if resp.Text == "" {
		t.Fatalf("empty response text")
	}

	got := engine.LastRequest()
	if got == nil {
		t.Fatalf("engine never called")
	}
	if got.Meta.Timezone != native.Meta.Timezone || got.Meta.Locale != native.Meta.Locale {
		t.Fatalf("meta not reconstructed: %+v", got.Meta)
	}
	if got.Session.MessageID != native.Session.MessageID || got.Session.SessionID != native.Session.SessionID {
		t.Fatalf("session not reconstructed: %+v", got.Session)
	}
	if got.Session.User == nil || got.Session.User.UserID != "user-1" {
		t.Fatalf("user not reconstructed: %+v", got.Session.User)
	}
	if got.Request.Command != native.Request.Command || got.Request.OriginalUtterance != native.Request.OriginalUtterance {
		t.Fatalf("utterance not reconstructed: %+v", got.Request)
	}
}

func TestHandleTelegramSynthesizesShim(t *testing.T) {
	engine := dialog.NewMockEngine()
	d := New(engine, testMetrics(), "", "")

	req := &universal.Request{
		Platform:     universal.PlatformTelegram,
		UserID:       "42",
		SessionID:    "4242",
		Text:         "leo",
		IsNewSession: true,
		Context:      universal.TelegramContext{ChatID: 4242},
	}

	d.Handle(context.Background(), req)

	shim := engine.LastRequest()
	if shim == nil {
		t.Fatalf("engine never called")
	}
	if shim.Version != "1.0" {
		t.Fatalf("Version = %q", shim.Version)
	}
	if shim.Meta.Locale != "ru-RU" || shim.Meta.Timezone != "UTC" {
		t.Fatalf("shim meta = %+v, want built-in defaults", shim.Meta)
	}
	if !shim.Session.New || shim.Session.SessionID != "4242" {
		t.Fatalf("shim session = %+v", shim.Session)
	}
	if shim.Request.Command != "leo" || shim.Request.OriginalUtterance != "leo" {
		t.Fatalf("shim utterance = %+v", shim.Request)
	}
	if shim.Request.Type != alice.TypeSimpleUtterance {
		t.Fatalf("shim type = %q", shim.Request.Type)
	}
}

func TestHandleUsesConfiguredShimDefaults(t *testing.T) {
	engine := dialog.NewMockEngine()
	d := New(engine, testMetrics(), "en-US", "Europe/Berlin")

	d.Handle(context.Background(), &universal.Request{
		Platform:  universal.PlatformAssistant,
		SessionID: "conv-1",
		Text:      "leo",
		Context:   universal.AssistantContext{Mode: universal.AssistantModeSDK, ConversationID: "conv-1"},
	})

	shim := engine.LastRequest()
	if shim.Meta.Locale != "en-US" || shim.Meta.Timezone != "Europe/Berlin" {
		t.Fatalf("shim meta = %+v", shim.Meta)
	}
}

func TestHandleMapsReplyFields(t *testing.T) {
	engine := dialog.NewMockEngine()
	engine.Reply = &dialog.Reply{
		Text:       "Leo, today is calm.",
		TTS:        "custom tts",
		EndSession: false,
		Buttons: []dialog.ReplyButton{
			{Title: "Another sign", Payload: "help"},
			{Title: "Site", URL: "https://example.com"},
		},
	}
	d := New(engine, testMetrics(), "", "")

	raw, _ := aliceOriginal(t)
	ctx := universal.AliceContext{Version: "1.0", Locale: "ru-RU", Timezone: "Europe/Moscow"}
	resp := d.Handle(context.Background(), &universal.Request{
		Platform:  universal.PlatformAlice,
		SessionID: "sess-1",
		Text:      "leo",
		Context:   ctx,
		Original:  raw,
	})

	if resp.Text != "Leo, today is calm." {
		t.Fatalf("Text = %q", resp.Text)
	}
	if resp.TTS != "custom tts" {
		t.Fatalf("TTS = %q, want engine value preserved", resp.TTS)
	}
	if resp.EndSession || !resp.ShouldListen {
		t.Fatalf("session flags = end=%v listen=%v", resp.EndSession, resp.ShouldListen)
	}
	if len(resp.Buttons) != 2 || resp.Buttons[0].Payload != "help" || resp.Buttons[1].URL != "https://example.com" {
		t.Fatalf("buttons = %+v", resp.Buttons)
	}
	if resp.Routing != universal.Context(ctx) {
		t.Fatalf("Routing = %+v, want inbound context", resp.Routing)
	}
}

func TestHandleEngineErrorFallsBackToApology(t *testing.T) {
	engine := dialog.NewMockEngine()
	engine.Err = errors.New("store unreachable")
	d := New(engine, testMetrics(), "", "")

	ctx := universal.TelegramContext{ChatID: 4242, CallbackQueryID: "cb-1"}
	resp := d.Handle(context.Background(), &universal.Request{
		Platform:  universal.PlatformTelegram,
		SessionID: "4242",
		Text:      "leo",
		Context:   ctx,
	})

	if resp.Text != ApologyText {
		t.Fatalf("Text = %q, want apology", resp.Text)
	}
	if resp.EndSession {
		t.Fatalf("EndSession = true, the session must stay open for a retry")
	}
	if resp.Routing != universal.Context(ctx) {
		t.Fatalf("Routing = %+v, want inbound context preserved", resp.Routing)
	}
}

type panicEngine struct{}

func (panicEngine) Handle(context.Context, *alice.Request) (*dialog.Reply, error) {
	panic("boom")
}

func TestHandleRecoversEnginePanic(t *testing.T) {
	d := New(panicEngine{}, testMetrics(), "", "")

	resp := d.Handle(context.Background(), &universal.Request{
		Platform:  universal.PlatformTelegram,
		SessionID: "4242",
		Text:      "leo",
		Context:   universal.TelegramContext{ChatID: 4242},
	})

	if resp.Text != ApologyText {
		t.Fatalf("Text = %q, want apology after panic", resp.Text)
	}
}

func TestHandleUnsupportedPlatformFallsBack(t *testing.T) {
	d := New(dialog.NewMockEngine(), testMetrics(), "", "")

	resp := d.Handle(context.Background(), &universal.Request{
		Platform: universal.Platform("fax"),
		Text:     "leo",
	})

	if resp.Text != ApologyText {
		t.Fatalf("Text = %q, want apology for unknown platform", resp.Text)
	}
}
