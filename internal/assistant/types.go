package assistant

import "encoding/json"

// Sentinel intents that mark the start of a conversation on each sub-protocol.
// Newness inference is an exact match against these, never a prefix match.
const (
	WelcomeIntentSDK        = "actions.intent.MAIN"
	WelcomeIntentDialogflow = "Default Welcome Intent"
)

// AppRequest is the structured assistant envelope (SDK sub-protocol).
type AppRequest struct {
	User         AppUser         `json:"user"`
	Conversation AppConversation `json:"conversation"`
	Inputs       []AppInput      `json:"inputs"`
	Surface      *AppSurface     `json:"surface,omitempty"`
	IsInSandbox  bool            `json:"isInSandbox,omitempty"`
}

type AppUser struct {
	UserID string `json:"userId,omitempty"`
	Locale string `json:"locale,omitempty"`
}

type AppConversation struct {
	ConversationID    string `json:"conversationId"`
	Type              string `json:"type,omitempty"`
	ConversationToken string `json:"conversationToken,omitempty"`
}

type AppInput struct {
	Intent    string        `json:"intent"`
	RawInputs []AppRawInput `json:"rawInputs,omitempty"`
}

type AppRawInput struct {
	InputType string `json:"inputType,omitempty"`
	Query     string `json:"query,omitempty"`
}

type AppSurface struct {
	Capabilities []AppCapability `json:"capabilities,omitempty"`
}

type AppCapability struct {
	Name string `json:"name"`
}

// WebhookRequest is the dialog-management query-result envelope (Dialogflow
// sub-protocol). Its top-level queryResult key is the discriminator.
type WebhookRequest struct {
	ResponseID  string      `json:"responseId,omitempty"`
	Session     string      `json:"session"`
	QueryResult QueryResult `json:"queryResult"`
}

type QueryResult struct {
	QueryText    string          `json:"queryText"`
	Parameters   json.RawMessage `json:"parameters,omitempty"`
	Intent       Intent          `json:"intent"`
	LanguageCode string          `json:"languageCode,omitempty"`
}

type Intent struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName"`
}

// WebhookResponse is the flat fulfillment reply for the Dialogflow
// sub-protocol.
type WebhookResponse struct {
	FulfillmentText string `json:"fulfillmentText"`
}

// AppResponse is the rich-response reply for the SDK sub-protocol.
type AppResponse struct {
	ConversationToken  string          `json:"conversationToken,omitempty"`
	ExpectUserResponse bool            `json:"expectUserResponse"`
	ExpectedInputs     []ExpectedInput `json:"expectedInputs,omitempty"`
	FinalResponse      *FinalResponse  `json:"finalResponse,omitempty"`
}

type ExpectedInput struct {
	InputPrompt     InputPrompt      `json:"inputPrompt"`
	PossibleIntents []ExpectedIntent `json:"possibleIntents"`
}

type ExpectedIntent struct {
	Intent string `json:"intent"`
}

type InputPrompt struct {
	RichInitialPrompt RichResponse `json:"richInitialPrompt"`
}

type FinalResponse struct {
	RichResponse RichResponse `json:"richResponse"`
}

type RichResponse struct {
	Items             []RichItem         `json:"items"`
	Suggestions       []Suggestion       `json:"suggestions,omitempty"`
	LinkOutSuggestion *LinkOutSuggestion `json:"linkOutSuggestion,omitempty"`
}

// RichItem holds exactly one of its members.
type RichItem struct {
	SimpleResponse *SimpleResponse `json:"simpleResponse,omitempty"`
	BasicCard      *BasicCard      `json:"basicCard,omitempty"`
}

type SimpleResponse struct {
	TextToSpeech string `json:"textToSpeech,omitempty"`
	SSML         string `json:"ssml,omitempty"`
	DisplayText  string `json:"displayText,omitempty"`
}

type BasicCard struct {
	Title string     `json:"title,omitempty"`
	Image *CardImage `json:"image,omitempty"`
}

type CardImage struct {
	URL               string `json:"url"`
	AccessibilityText string `json:"accessibilityText,omitempty"`
}

type Suggestion struct {
	Title string `json:"title"`
}

type LinkOutSuggestion struct {
	DestinationName string `json:"destinationName"`
	URL             string `json:"url"`
}
