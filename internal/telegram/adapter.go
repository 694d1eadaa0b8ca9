package telegram

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/astrelay/astrelay/internal/universal"
)

// Adapter translates between Telegram Bot API updates and the canonical
// representation. It is stateless and safe for concurrent use.
type Adapter struct{}

func NewAdapter() *Adapter { return &Adapter{} }

func (a *Adapter) Platform() universal.Platform { return universal.PlatformTelegram }

// Validate checks for an update identifier plus either a message or a
// callback interaction.
func (a *Adapter) Validate(raw []byte) bool {
	var probe struct {
		UpdateID      *int64           `json:"update_id"`
		Message       *json.RawMessage `json:"message"`
		CallbackQuery *json.RawMessage `json:"callback_query"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return probe.UpdateID != nil && (probe.Message != nil || probe.CallbackQuery != nil)
}

func (a *Adapter) ToUniversal(raw []byte) (*universal.Request, error) {
	var upd Update
	if err := json.Unmarshal(raw, &upd); err != nil {
		return nil, &universal.ConversionError{Platform: a.Platform(), Reason: err.Error()}
	}

	switch {
	case upd.CallbackQuery != nil:
		return a.fromCallback(raw, &upd)
	case upd.Message != nil:
		return a.fromMessage(raw, &upd)
	default:
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "update", Reason: "neither message nor callback_query"}
	}
}

// fromMessage converts a plain message. Continuity across plain messages is
// the business logic's concern, so every one starts a new session here.
func (a *Adapter) fromMessage(raw []byte, upd *Update) (*universal.Request, error) {
	msg := upd.Message
	if msg.From == nil || msg.From.ID == 0 {
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "message.from", Reason: "missing sender"}
	}
	if msg.Chat == nil || msg.Chat.ID == 0 {
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "message.chat", Reason: "missing chat"}
	}

	msgType := messageContentType(msg)
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if strings.TrimSpace(text) == "" && msgType == universal.MessageText {
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "message.text", Reason: "empty text message"}
	}

	return &universal.Request{
		Platform:     a.Platform(),
		UserID:       strconv.FormatInt(msg.From.ID, 10),
		SessionID:    strconv.FormatInt(msg.Chat.ID, 10),
		MessageID:    strconv.FormatInt(upd.UpdateID, 10),
		Text:         text,
		MessageType:  msgType,
		IsNewSession: true,
		Context: universal.TelegramContext{
			ChatID:       msg.Chat.ID,
			LanguageCode: msg.From.LanguageCode,
		},
		Original: json.RawMessage(raw),
	}, nil
}

// fromCallback converts a button interaction. The callback id must be
// threaded out so the return leg can acknowledge the tap.
func (a *Adapter) fromCallback(raw []byte, upd *Update) (*universal.Request, error) {
	cb := upd.CallbackQuery
	if cb.ID == "" {
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "callback_query.id", Reason: "missing"}
	}
	if cb.From == nil || cb.From.ID == 0 {
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "callback_query.from", Reason: "missing sender"}
	}
	if cb.Message == nil || cb.Message.Chat == nil || cb.Message.Chat.ID == 0 {
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "callback_query.message.chat", Reason: "no chat to reply into"}
	}
	if cb.Data == "" {
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "callback_query.data", Reason: "missing"}
	}

	return &universal.Request{
		Platform:  a.Platform(),
		UserID:    strconv.FormatInt(cb.From.ID, 10),
		SessionID: strconv.FormatInt(cb.Message.Chat.ID, 10),
		MessageID: cb.ID,
		// The callback token stands in for the utterance.
		Text:         cb.Data,
		MessageType:  universal.MessageText,
		IsNewSession: false,
		Context: universal.TelegramContext{
			ChatID:          cb.Message.Chat.ID,
			CallbackQueryID: cb.ID,
			LanguageCode:    cb.From.LanguageCode,
		},
		Original: json.RawMessage(raw),
	}, nil
}

func (a *Adapter) FromUniversal(resp *universal.Response) (any, error) {
	ctx, ok := resp.Routing.(universal.TelegramContext)
	if !ok {
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "routing", Reason: "missing telegram routing context"}
	}
	if ctx.ChatID == 0 {
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "routing.chat_id", Reason: "missing delivery chat id"}
	}

	markup := inlineKeyboard(resp.Buttons)
	out := &Outgoing{}

	if resp.ImageURL != "" {
		caption := resp.ImageCaption
		if caption == "" {
			caption = resp.Text
		}
		out.Photo = &SendPhoto{
			ChatID:      ctx.ChatID,
			Photo:       resp.ImageURL,
			Caption:     caption,
			ParseMode:   "Markdown",
			ReplyMarkup: markup,
		}
	} else {
		out.Message = &SendMessage{
			ChatID:      ctx.ChatID,
			Text:        resp.Text,
			ParseMode:   "Markdown",
			ReplyMarkup: markup,
		}
	}

	if ctx.CallbackQueryID != "" {
		out.CallbackAck = &AnswerCallbackQuery{CallbackQueryID: ctx.CallbackQueryID}
	}
	return out, nil
}

func messageContentType(msg *Message) universal.MessageType {
	switch {
	case len(msg.Photo) > 0:
		return universal.MessageImage
	case msg.Voice != nil:
		return universal.MessageAudio
	case msg.Document != nil:
		return universal.MessageDocument
	case msg.Location != nil:
		return universal.MessageLocation
	default:
		return universal.MessageText
	}
}

func inlineKeyboard(buttons []universal.Button) *InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	rows := make([][]InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		btn := InlineKeyboardButton{Text: b.Title}
		if b.IsLink() {
			btn.URL = b.URL
		} else {
			btn.CallbackData = b.Payload
			if btn.CallbackData == "" {
				btn.CallbackData = b.Title
			}
		}
		rows = append(rows, []InlineKeyboardButton{btn})
	}
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}
