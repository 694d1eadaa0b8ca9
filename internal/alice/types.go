package alice

import "encoding/json"

// Request type constants sent by the platform.
const (
	TypeSimpleUtterance = "SimpleUtterance"
	TypeButtonPressed   = "ButtonPressed"
)

// Meta describes the client device and locale.
type Meta struct {
	Locale   string `json:"locale"`
	Timezone string `json:"timezone"`
	ClientID string `json:"client_id"`
}

// Utterance is the user command carried in a request.
type Utterance struct {
	Command           string          `json:"command"`
	OriginalUtterance string          `json:"original_utterance"`
	Type              string          `json:"type"`
	Payload           json.RawMessage `json:"payload,omitempty"`
}

// User identifies an authorized account holder.
type User struct {
	UserID string `json:"user_id"`
}

// Application identifies the device/application instance.
type Application struct {
	ApplicationID string `json:"application_id"`
}

// Session describes the conversational session of a request.
type Session struct {
	New         bool         `json:"new"`
	MessageID   int          `json:"message_id"`
	SessionID   string       `json:"session_id"`
	SkillID     string       `json:"skill_id"`
	UserID      string       `json:"user_id,omitempty"`
	User        *User        `json:"user,omitempty"`
	Application *Application `json:"application,omitempty"`
}

// Request is the skill webhook request envelope.
type Request struct {
	Meta    Meta      `json:"meta"`
	Request Utterance `json:"request"`
	Session Session   `json:"session"`
	Version string    `json:"version"`
}

// NewSession reports whether the platform marked this request as the start of
// a fresh conversational context.
func (r *Request) NewSession() bool { return r.Session.New }

// Button is a suggestion or link shown under the reply.
type Button struct {
	Title   string `json:"title"`
	Payload string `json:"payload,omitempty"`
	URL     string `json:"url,omitempty"`
	Hide    bool   `json:"hide"`
}

// ResponsePayload is the spoken/displayed part of a reply.
type ResponsePayload struct {
	Text       string   `json:"text"`
	TTS        string   `json:"tts,omitempty"`
	Buttons    []Button `json:"buttons,omitempty"`
	EndSession bool     `json:"end_session"`
}

// Response is the skill webhook response envelope.
type Response struct {
	Response ResponsePayload `json:"response"`
	Version  string          `json:"version"`
}
