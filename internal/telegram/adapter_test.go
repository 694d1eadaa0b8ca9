package telegram

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/astrelay/astrelay/internal/universal"
)

func messageUpdate(t *testing.T, text string) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"update_id": 1001,
		"message": map[string]any{
			"message_id": 77,
			"from":       map[string]any{"id": 42, "language_code": "en"},
			"chat":       map[string]any{"id": 4242, "type": "private"},
			"text":       text,
		},
	})
	if err != nil {
		t.Fatalf("marshal update: %v", err)
	}
	return raw
}

func callbackUpdate(t *testing.T) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"update_id": 1002,
		"callback_query": map[string]any{
			"id":   "cb-9",
			"from": map[string]any{"id": 42, "language_code": "en"},
			"message": map[string]any{
				"message_id": 77,
				"chat":       map[string]any{"id": 4242, "type": "private"},
			},
			"data": "sign:leo",
		},
	})
	if err != nil {
		t.Fatalf("marshal update: %v", err)
	}
	return raw
}

func TestValidate(t *testing.T) {
	adapter := NewAdapter()

	cases := []struct {
		name string
		raw  []byte
		want bool
	}{
		{name: "message update", raw: messageUpdate(t, "hello"), want: true},
		{name: "callback update", raw: callbackUpdate(t), want: true},
		{name: "missing update id", raw: []byte(`{"message":{"text":"hi"}}`), want: false},
		{name: "no variant", raw: []byte(`{"update_id":5}`), want: false},
		{name: "malformed json", raw: []byte("nope"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := adapter.Validate(tc.raw); got != tc.want {
				t.Fatalf("Validate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestToUniversalPlainMessageStartsNewSession(t *testing.T) {
	adapter := NewAdapter()

	req, err := adapter.ToUniversal(messageUpdate(t, "leo"))
	if err != nil {
		t.Fatalf("ToUniversal() error = %v", err)
	}

	if !req.IsNewSession {
		t.Fatalf("IsNewSession = false, want true for plain messages")
	}
	if req.UserID != "42" || req.SessionID != "4242" {
		t.Fatalf("identity = (%q, %q)", req.UserID, req.SessionID)
	}
	if req.Text != "leo" {
		t.Fatalf("Text = %q", req.Text)
	}

	ctx, ok := req.Context.(universal.TelegramContext)
	if !ok {
		t.Fatalf("Context type = %T", req.Context)
	}
	if ctx.ChatID != 4242 {
		t.Fatalf("ChatID = %d", ctx.ChatID)
	}
	if ctx.CallbackQueryID != "" {
		t.Fatalf("CallbackQueryID = %q, want empty for plain message", ctx.CallbackQueryID)
	}
}

func TestToUniversalCallbackContinuesSession(t *testing.T) {
	adapter := NewAdapter()

	req, err := adapter.ToUniversal(callbackUpdate(t))
	if err != nil {
		t.Fatalf("ToUniversal() error = %v", err)
	}

	if req.IsNewSession {
		t.Fatalf("IsNewSession = true, want false for callback interactions")
	}
	if req.Text != "sign:leo" {
		t.Fatalf("Text = %q, want callback token", req.Text)
	}

	ctx := req.Context.(universal.TelegramContext)
	if ctx.CallbackQueryID != "cb-9" {
		t.Fatalf("CallbackQueryID = %q", ctx.CallbackQueryID)
	}
	if ctx.ChatID != 4242 {
		t.Fatalf("ChatID = %d", ctx.ChatID)
	}
}

func TestToUniversalCallbackWithoutChatFails(t *testing.T) {
	adapter := NewAdapter()

	raw, _ := json.Marshal(map[string]any{
		"update_id": 1003,
		"callback_query": map[string]any{
			"id":   "cb-10",
			"from": map[string]any{"id": 42},
			"data": "sign:leo",
		},
	})

	_, err := adapter.ToUniversal(raw)
	var convErr *universal.ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("ToUniversal() error = %v, want ConversionError", err)
	}
}

func TestToUniversalEmptyTextMessageFails(t *testing.T) {
	adapter := NewAdapter()

	_, err := adapter.ToUniversal(messageUpdate(t, ""))
	var convErr *universal.ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("ToUniversal() error = %v, want ConversionError", err)
	}
}

func TestToUniversalPhotoMessage(t *testing.T) {
	adapter := NewAdapter()

	raw, _ := json.Marshal(map[string]any{
		"update_id": 1004,
		"message": map[string]any{
			"message_id": 78,
			"from":       map[string]any{"id": 42},
			"chat":       map[string]any{"id": 4242},
			"caption":    "my chart",
			"photo":      []map[string]any{{"file_id": "f1", "width": 90, "height": 90}},
		},
	})

	req, err := adapter.ToUniversal(raw)
	if err != nil {
		t.Fatalf("ToUniversal() error = %v", err)
	}
	if req.MessageType != universal.MessageImage {
		t.Fatalf("MessageType = %q, want image", req.MessageType)
	}
	if req.Text != "my chart" {
		t.Fatalf("Text = %q, want caption", req.Text)
	}
}

func TestFromUniversalMessageWithButtons(t *testing.T) {
	adapter := NewAdapter()

	out, err := adapter.FromUniversal(&universal.Response{
		Text: "Pick a sign",
		Buttons: []universal.Button{
			{Title: "Leo", Payload: "sign:leo"},
			{Title: "Site", URL: "https://example.com"},
		},
		Routing: universal.TelegramContext{ChatID: 4242},
	})
	if err != nil {
		t.Fatalf("FromUniversal() error = %v", err)
	}

	native := out.(*Outgoing)
	if native.Message == nil {
		t.Fatalf("Message = nil")
	}
	if native.Photo != nil {
		t.Fatalf("Photo should be nil without image content")
	}
	if native.Message.ChatID != 4242 {
		t.Fatalf("ChatID = %d", native.Message.ChatID)
	}
	if native.Message.ParseMode != "Markdown" {
		t.Fatalf("ParseMode = %q", native.Message.ParseMode)
	}

	rows := native.Message.ReplyMarkup.InlineKeyboard
	if len(rows) != 2 {
		t.Fatalf("keyboard rows = %d, want 2", len(rows))
	}
	if rows[0][0].CallbackData != "sign:leo" || rows[0][0].URL != "" {
		t.Fatalf("reply button = %+v", rows[0][0])
	}
	if rows[1][0].URL != "https://example.com" || rows[1][0].CallbackData != "" {
		t.Fatalf("link button = %+v", rows[1][0])
	}
}

func TestFromUniversalPhotoWhenImagePresent(t *testing.T) {
	adapter := NewAdapter()

	out, err := adapter.FromUniversal(&universal.Response{
		Text:         "Your chart",
		ImageURL:     "https://example.com/chart.png",
		ImageCaption: "Star chart",
		Routing:      universal.TelegramContext{ChatID: 4242},
	})
	if err != nil {
		t.Fatalf("FromUniversal() error = %v", err)
	}

	native := out.(*Outgoing)
	if native.Photo == nil || native.Message != nil {
		t.Fatalf("expected photo payload, got %+v", native)
	}
	if native.Photo.Photo != "https://example.com/chart.png" || native.Photo.Caption != "Star chart" {
		t.Fatalf("photo payload = %+v", native.Photo)
	}
}

func TestFromUniversalEmitsCallbackAck(t *testing.T) {
	adapter := NewAdapter()

	out, err := adapter.FromUniversal(&universal.Response{
		Text:    "Leo, today is calm.",
		Routing: universal.TelegramContext{ChatID: 4242, CallbackQueryID: "cb-9"},
	})
	if err != nil {
		t.Fatalf("FromUniversal() error = %v", err)
	}

	native := out.(*Outgoing)
	if native.CallbackAck == nil {
		t.Fatalf("CallbackAck = nil, want acknowledgement for callback interactions")
	}
	if native.CallbackAck.CallbackQueryID != "cb-9" {
		t.Fatalf("CallbackQueryID = %q", native.CallbackAck.CallbackQueryID)
	}
}

func TestFromUniversalRequiresChatID(t *testing.T) {
	adapter := NewAdapter()

	cases := []struct {
		name    string
		routing universal.Context
	}{
		{name: "no routing", routing: nil},
		{name: "zero chat id", routing: universal.TelegramContext{}},
		{name: "foreign routing", routing: universal.AliceContext{Version: "1.0"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := adapter.FromUniversal(&universal.Response{Text: "hi", Routing: tc.routing})
			var convErr *universal.ConversionError
			if !errors.As(err, &convErr) {
				t.Fatalf("FromUniversal() error = %v, want ConversionError", err)
			}
		})
	}
}
