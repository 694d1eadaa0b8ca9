package alice

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/astrelay/astrelay/internal/universal"
)

// Adapter translates between the Alice skill webhook schema and the canonical
// representation. It is stateless and safe for concurrent use.
type Adapter struct{}

func NewAdapter() *Adapter { return &Adapter{} }

func (a *Adapter) Platform() universal.Platform { return universal.PlatformAlice }

// Validate checks for the minimal envelope shape: a session and a request
// object must both be present. Nested content is checked during conversion.
func (a *Adapter) Validate(raw []byte) bool {
	var probe struct {
		Session *json.RawMessage `json:"session"`
		Request *json.RawMessage `json:"request"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return probe.Session != nil && probe.Request != nil
}

func (a *Adapter) ToUniversal(raw []byte) (*universal.Request, error) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, &universal.ConversionError{Platform: a.Platform(), Reason: err.Error()}
	}

	userID := userIdentity(req.Session)
	if userID == "" {
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "session.user_id", Reason: "no user or application identity"}
	}
	if req.Session.SessionID == "" {
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "session.session_id", Reason: "missing"}
	}

	text := req.Request.OriginalUtterance
	if text == "" {
		text = req.Request.Command
	}
	if req.Request.Type == TypeButtonPressed {
		// Button presses carry a machine token in the payload instead of
		// natural text. That is a valid empty-utterance case.
		if token := payloadToken(req.Request.Payload); token != "" {
			text = token
		}
	}
	if strings.TrimSpace(text) == "" && !req.Session.New && req.Request.Type != TypeButtonPressed {
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "request.command", Reason: "empty utterance outside session start"}
	}

	return &universal.Request{
		Platform:     a.Platform(),
		UserID:       userID,
		SessionID:    req.Session.SessionID,
		MessageID:    strconv.Itoa(req.Session.MessageID),
		Text:         text,
		MessageType:  universal.MessageText,
		IsNewSession: req.Session.New,
		Context: universal.AliceContext{
			Version:  req.Version,
			Locale:   req.Meta.Locale,
			Timezone: req.Meta.Timezone,
		},
		Original: json.RawMessage(raw),
	}, nil
}

func (a *Adapter) FromUniversal(resp *universal.Response) (any, error) {
	ctx, ok := resp.Routing.(universal.AliceContext)
	if !ok {
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "routing", Reason: "missing alice routing context"}
	}

	version := ctx.Version
	if version == "" {
		version = "1.0"
	}

	out := &Response{
		Version: version,
		Response: ResponsePayload{
			Text:       resp.Text,
			TTS:        resp.TTS,
			EndSession: resp.EndSession,
		},
	}
	for _, b := range resp.Buttons {
		out.Response.Buttons = append(out.Response.Buttons, Button{
			Title:   b.Title,
			Payload: b.Payload,
			URL:     b.URL,
			// Suggestion buttons disappear after the tap; link buttons stay
			// pinned to the reply.
			Hide: !b.IsLink(),
		})
	}
	return out, nil
}

func userIdentity(s Session) string {
	if s.User != nil && s.User.UserID != "" {
		return s.User.UserID
	}
	if s.Application != nil && s.Application.ApplicationID != "" {
		return s.Application.ApplicationID
	}
	return s.UserID
}

// payloadToken flattens a button payload into a short machine token. String
// payloads pass through as-is; structured payloads keep their compact JSON.
func payloadToken(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
