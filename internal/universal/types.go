package universal

import "encoding/json"

// Platform identifies one of the supported conversational platforms.
type Platform string

const (
	PlatformAlice     Platform = "alice"
	PlatformTelegram  Platform = "telegram"
	PlatformAssistant Platform = "assistant"
)

// MessageType classifies the inbound content kind.
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageAudio    MessageType = "audio"
	MessageImage    MessageType = "image"
	MessageDocument MessageType = "document"
	MessageLocation MessageType = "location"
)

// Context carries the platform-specific routing data an adapter needs to
// serialize a native reply. Each platform has its own variant; the dispatcher
// threads the request's context into the response unchanged.
type Context interface {
	Platform() Platform
}

// AliceContext is the routing data for the Alice skill protocol.
type AliceContext struct {
	Version  string
	Locale   string
	Timezone string
}

func (AliceContext) Platform() Platform { return PlatformAlice }

// TelegramContext is the routing data for Telegram replies. ChatID is the
// delivery channel; CallbackQueryID is set only for callback interactions and
// triggers an additional acknowledgement payload on the return leg.
type TelegramContext struct {
	ChatID          int64
	CallbackQueryID string
	LanguageCode    string
}

func (TelegramContext) Platform() Platform { return PlatformTelegram }

// AssistantMode selects which of the two assistant sub-protocols a request
// arrived on. The outbound schema must match the inbound one.
type AssistantMode string

const (
	AssistantModeSDK        AssistantMode = "sdk"
	AssistantModeDialogflow AssistantMode = "dialogflow"
)

// AssistantContext is the routing data for the assistant platform.
type AssistantContext struct {
	Mode           AssistantMode
	ConversationID string
	Session        string
	Locale         string
}

func (AssistantContext) Platform() Platform { return PlatformAssistant }

// Request is the canonical representation of an inbound message. It is
// constructed once by an adapter and not mutated afterwards.
type Request struct {
	Platform     Platform
	UserID       string
	SessionID    string
	MessageID    string
	Text         string
	MessageType  MessageType
	IsNewSession bool
	Context      Context
	// Original keeps the raw inbound payload so a handler can reconstruct a
	// native request without re-deriving every field.
	Original json.RawMessage
}

// Button is a single call-to-action attached to a response. Order within
// Response.Buttons is priority order; formatters drop from the tail.
type Button struct {
	Title   string
	Payload string
	URL     string
}

// IsLink reports whether the button opens a URL rather than sending a reply.
// Some platforms exclude link buttons from speech-style suggestion lists.
func (b Button) IsLink() bool { return b.URL != "" }

// Response is the canonical reply produced by the dispatcher. The formatter
// is the only component allowed to mutate it in place.
type Response struct {
	Text         string
	TTS          string
	Buttons      []Button
	ImageURL     string
	ImageCaption string
	EndSession   bool
	ShouldListen bool
	// Routing is the context threaded through from the originating request.
	// Serialization fails with a ConversionError when it is missing or of
	// the wrong platform variant.
	Routing Context
}

// Adapter translates between one platform's native wire schema and the
// canonical representation.
type Adapter interface {
	Platform() Platform

	// Validate reports whether raw is structurally sufficient to attempt a
	// conversion. It never panics and checks shape only; semantic problems
	// surface later as conversion errors.
	Validate(raw []byte) bool

	// ToUniversal converts a raw inbound payload. It fails with a
	// ConversionError when a required identity or text field is missing.
	ToUniversal(raw []byte) (*Request, error)

	// FromUniversal converts a canonical response into the platform's native
	// reply object. Missing routing data is a contract violation by the
	// caller and fails with a ConversionError.
	FromUniversal(resp *Response) (any, error)
}
