package dialog

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"strings"
	"time"

	"github.com/astrelay/astrelay/internal/alice"
)

// HoroscopeEngine is the shared dialog business logic: a daily-horoscope
// skill with sign recognition, remembered preferences and deterministic
// per-day readings.
type HoroscopeEngine struct {
	store Store
	cache *Cache
	now   func() time.Time
}

func NewHoroscopeEngine(store Store, cache *Cache) *HoroscopeEngine {
	return &HoroscopeEngine{
		store: store,
		cache: cache,
		now:   time.Now,
	}
}

const (
	greetingText = "Hi! I read the stars every day. Tell me your zodiac sign and I'll share today's horoscope."
	helpText     = "Say your zodiac sign, for example \"Leo\", and I'll tell you the horoscope for today. I remember your sign, so next time just ask for your horoscope."
	farewellText = "Come back tomorrow, the stars will have news for you."
	unknownText  = "I didn't catch a zodiac sign. Which one should I read for?"
)

func (e *HoroscopeEngine) Handle(ctx context.Context, req *alice.Request) (*Reply, error) {
	utterance := req.Request.OriginalUtterance
	if utterance == "" {
		utterance = req.Request.Command
	}
	norm := strings.ToLower(strings.TrimSpace(utterance))
	userID := identity(req)

	switch {
	case req.Session.New && norm == "":
		return &Reply{Text: greetingText, Buttons: SignButtons()}, nil
	case isHelpRequest(norm):
		return &Reply{Text: helpText, Buttons: SignButtons()}, nil
	case isFarewell(norm):
		return &Reply{Text: farewellText, EndSession: true}, nil
	}

	if sign, ok := ParseSign(norm); ok {
		// Remembering the sign is best effort; a preference-store hiccup
		// must not cost the user their reading.
		if err := e.store.SaveSign(ctx, userID, sign); err != nil {
			log.Printf("save sign for %s failed: %v", userID, err)
		}
		return e.reading(ctx, sign)
	}

	if asksForHoroscope(norm) {
		stored, err := e.store.Sign(ctx, userID)
		if err != nil {
			log.Printf("load sign for %s failed: %v", userID, err)
		}
		if stored != "" {
			return e.reading(ctx, stored)
		}
	}

	return &Reply{Text: unknownText, Buttons: SignButtons()}, nil
}

func (e *HoroscopeEngine) reading(ctx context.Context, sign string) (*Reply, error) {
	date := e.now().UTC().Format("2006-01-02")

	text, ok := e.cache.Reading(ctx, sign, date)
	if !ok {
		text = generateReading(sign, date)
		e.cache.StoreReading(ctx, sign, date, text)
	}

	return &Reply{
		Text: text,
		Buttons: []ReplyButton{
			{Title: "Another sign", Payload: "help"},
		},
	}, nil
}

var (
	readingMoods = []string{
		"a bright and energetic",
		"a calm and steady",
		"an unpredictable but promising",
		"a thoughtful, slow-burning",
		"a surprisingly social",
		"a focused and productive",
	}
	readingFocuses = []string{
		"conversations you have been putting off",
		"small financial decisions",
		"an old friendship that deserves attention",
		"your own pace: do not let others rush you",
		"details others overlook",
		"plans for the near future",
	}
	readingAdvice = []string{
		"Trust your first instinct.",
		"Leave room in the evening for rest.",
		"An unexpected message may change your plans, and that is fine.",
		"Say yes to one thing you would normally decline.",
		"Double-check anything you sign today.",
		"Share a good idea instead of keeping it to yourself.",
	}
)

// generateReading produces the daily text for a sign. It is deterministic for
// a given (sign, date) pair so every platform sees the same reading all day.
func generateReading(sign, date string) string {
	h := fnv.New32a()
	h.Write([]byte(sign))
	h.Write([]byte(date))
	seed := h.Sum32()

	mood := readingMoods[seed%uint32(len(readingMoods))]
	focus := readingFocuses[(seed/7)%uint32(len(readingFocuses))]
	advice := readingAdvice[(seed/131)%uint32(len(readingAdvice))]

	return fmt.Sprintf("%s, today is %s day. The stars point at %s. %s",
		SignTitle(sign), mood, focus, advice)
}

// identity picks the most stable id available. Shim requests from foreign
// platforms carry no user identity, so the session id stands in.
func identity(req *alice.Request) string {
	if req.Session.User != nil && req.Session.User.UserID != "" {
		return req.Session.User.UserID
	}
	if req.Session.Application != nil && req.Session.Application.ApplicationID != "" {
		return req.Session.Application.ApplicationID
	}
	if req.Session.UserID != "" {
		return req.Session.UserID
	}
	return req.Session.SessionID
}

func isHelpRequest(norm string) bool {
	switch norm {
	case "help", "what can you do", "помощь", "что ты умеешь":
		return true
	default:
		return false
	}
}

func isFarewell(norm string) bool {
	switch norm {
	case "stop", "bye", "goodbye", "exit", "стоп", "пока", "хватит":
		return true
	default:
		return false
	}
}

func asksForHoroscope(norm string) bool {
	return strings.Contains(norm, "horoscope") || strings.Contains(norm, "гороскоп")
}
