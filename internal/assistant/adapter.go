package assistant

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/astrelay/astrelay/internal/universal"
)

// Adapter translates between the assistant platform's two sub-protocols and
// the canonical representation. A payload carrying the Dialogflow
// queryResult key is parsed as Dialogflow exclusively, even when it also
// happens to satisfy parts of the SDK envelope shape; the selected
// sub-protocol is recorded in the routing context so the outbound leg
// serializes with the matching schema.
type Adapter struct{}

func NewAdapter() *Adapter { return &Adapter{} }

func (a *Adapter) Platform() universal.Platform { return universal.PlatformAssistant }

func (a *Adapter) Validate(raw []byte) bool {
	var probe struct {
		QueryResult  *json.RawMessage `json:"queryResult"`
		Inputs       *json.RawMessage `json:"inputs"`
		Conversation *json.RawMessage `json:"conversation"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	if probe.QueryResult != nil {
		return true
	}
	return probe.Inputs != nil && probe.Conversation != nil
}

func (a *Adapter) ToUniversal(raw []byte) (*universal.Request, error) {
	if isDialogflow(raw) {
		return a.fromDialogflow(raw)
	}
	return a.fromSDK(raw)
}

// isDialogflow applies the discrimination rule: presence of the top-level
// queryResult key wins, with no fallback to the SDK parse.
func isDialogflow(raw []byte) bool {
	var probe struct {
		QueryResult *json.RawMessage `json:"queryResult"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return probe.QueryResult != nil
}

func (a *Adapter) fromDialogflow(raw []byte) (*universal.Request, error) {
	var req WebhookRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, &universal.ConversionError{Platform: a.Platform(), Reason: err.Error()}
	}
	if req.Session == "" {
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "session", Reason: "missing"}
	}

	messageID := req.ResponseID
	if messageID == "" {
		messageID = uuid.NewString()
	}

	return &universal.Request{
		Platform:    a.Platform(),
		UserID:      req.Session,
		SessionID:   req.Session,
		MessageID:   messageID,
		Text:        req.QueryResult.QueryText,
		MessageType: universal.MessageText,
		// Exact match only: a renamed or namespaced welcome intent is not a
		// session start.
		IsNewSession: req.QueryResult.Intent.DisplayName == WelcomeIntentDialogflow,
		Context: universal.AssistantContext{
			Mode:    universal.AssistantModeDialogflow,
			Session: req.Session,
			Locale:  req.QueryResult.LanguageCode,
		},
		Original: json.RawMessage(raw),
	}, nil
}

func (a *Adapter) fromSDK(raw []byte) (*universal.Request, error) {
	var req AppRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, &universal.ConversionError{Platform: a.Platform(), Reason: err.Error()}
	}
	if req.Conversation.ConversationID == "" {
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "conversation.conversationId", Reason: "missing"}
	}

	userID := req.User.UserID
	if userID == "" {
		userID = req.Conversation.ConversationID
	}

	text, intent := extractUtterance(req.Inputs)
	if strings.TrimSpace(text) == "" && intent != WelcomeIntentSDK {
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "inputs.rawInputs.query", Reason: "no utterance found"}
	}

	return &universal.Request{
		Platform:     a.Platform(),
		UserID:       userID,
		SessionID:    req.Conversation.ConversationID,
		MessageID:    uuid.NewString(),
		Text:         text,
		MessageType:  universal.MessageText,
		IsNewSession: intent == WelcomeIntentSDK,
		Context: universal.AssistantContext{
			Mode:           universal.AssistantModeSDK,
			ConversationID: req.Conversation.ConversationID,
			Locale:         req.User.Locale,
		},
		Original: json.RawMessage(raw),
	}, nil
}

// extractUtterance scans inputs for the first non-empty raw query and returns
// it with the accompanying intent. First match wins; later inputs are never
// merged in. When no input carries text the first input's intent is still
// reported so welcome invocations can be recognized.
func extractUtterance(inputs []AppInput) (text, intent string) {
	for _, in := range inputs {
		for _, ri := range in.RawInputs {
			if strings.TrimSpace(ri.Query) != "" {
				return ri.Query, in.Intent
			}
		}
	}
	if len(inputs) > 0 {
		return "", inputs[0].Intent
	}
	return "", ""
}

func (a *Adapter) FromUniversal(resp *universal.Response) (any, error) {
	ctx, ok := resp.Routing.(universal.AssistantContext)
	if !ok {
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "routing", Reason: "missing assistant routing context"}
	}

	switch ctx.Mode {
	case universal.AssistantModeDialogflow:
		return &WebhookResponse{FulfillmentText: resp.Text}, nil
	case universal.AssistantModeSDK:
		return a.toAppResponse(resp), nil
	default:
		return nil, &universal.ConversionError{Platform: a.Platform(), Field: "routing.mode", Reason: "unknown sub-protocol selector"}
	}
}

func (a *Adapter) toAppResponse(resp *universal.Response) *AppResponse {
	rich := RichResponse{}

	speech := resp.TTS
	if speech == "" {
		speech = resp.Text
	}
	rich.Items = append(rich.Items, RichItem{
		SimpleResponse: &SimpleResponse{
			TextToSpeech: speech,
			DisplayText:  resp.Text,
		},
	})

	if resp.ImageURL != "" {
		rich.Items = append(rich.Items, RichItem{
			BasicCard: &BasicCard{
				Title: resp.ImageCaption,
				Image: &CardImage{
					URL:               resp.ImageURL,
					AccessibilityText: resp.ImageCaption,
				},
			},
		})
	}

	// Link buttons do not belong in the spoken suggestion chips; the first
	// one becomes the link-out slot and the rest are dropped.
	for _, b := range resp.Buttons {
		if b.IsLink() {
			if rich.LinkOutSuggestion == nil {
				rich.LinkOutSuggestion = &LinkOutSuggestion{DestinationName: b.Title, URL: b.URL}
			}
			continue
		}
		rich.Suggestions = append(rich.Suggestions, Suggestion{Title: b.Title})
	}

	if resp.EndSession {
		return &AppResponse{
			ExpectUserResponse: false,
			FinalResponse:      &FinalResponse{RichResponse: rich},
		}
	}
	return &AppResponse{
		ExpectUserResponse: true,
		ExpectedInputs: []ExpectedInput{{
			InputPrompt:     InputPrompt{RichInitialPrompt: rich},
			PossibleIntents: []ExpectedIntent{{Intent: "actions.intent.TEXT"}},
		}},
	}
}
