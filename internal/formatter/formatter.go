package formatter

import (
	"strings"

	"github.com/astrelay/astrelay/internal/universal"
)

// TruncationMarker is appended when text is cut at a platform limit.
const TruncationMarker = "..."

// Capabilities is one row of the platform presentation table. Adding a
// platform means adding a row, not new control flow.
type Capabilities struct {
	MaxButtons     int
	MaxTextLength  int
	SupportsSpeech bool
	SupportsImage  bool
	SupportsMarkup bool
}

var capabilities = map[universal.Platform]Capabilities{
	universal.PlatformAlice: {
		MaxButtons:     8,
		MaxTextLength:  1024,
		SupportsSpeech: true,
		// Alice cards need pre-uploaded image resources, not URLs.
		SupportsImage:  false,
		SupportsMarkup: false,
	},
	universal.PlatformTelegram: {
		MaxButtons:     10,
		MaxTextLength:  4090,
		SupportsSpeech: false,
		SupportsImage:  true,
		SupportsMarkup: true,
	},
	universal.PlatformAssistant: {
		MaxButtons:     13,
		MaxTextLength:  640,
		SupportsSpeech: true,
		SupportsImage:  true,
		SupportsMarkup: false,
	},
}

// CapabilitiesFor returns the presentation limits for a platform.
func CapabilitiesFor(p universal.Platform) (Capabilities, bool) {
	caps, ok := capabilities[p]
	return caps, ok
}

// Optimize applies a platform's presentation limits and text transforms to a
// response, in place. It is idempotent: applying it twice with the same
// platform yields the same result as applying it once.
func Optimize(resp *universal.Response, p universal.Platform) *universal.Response {
	caps, ok := capabilities[p]
	if !ok {
		return resp
	}

	resp.Text = truncate(resp.Text, caps.MaxTextLength)

	if caps.MaxButtons >= 0 && len(resp.Buttons) > caps.MaxButtons {
		resp.Buttons = resp.Buttons[:caps.MaxButtons]
	}

	if caps.SupportsMarkup {
		resp.Text = normalizeMarkup(resp.Text)
	} else if caps.SupportsSpeech {
		resp.Text = speechSafeText(resp.Text)
	}

	if caps.SupportsSpeech {
		// Fallback only: an upstream-provided TTS is never overwritten.
		if resp.TTS == "" {
			resp.TTS = withSentencePauses(speechSafeText(resp.Text))
		}
	} else {
		// Platform incapability wins over any upstream-set value.
		resp.TTS = ""
	}

	if !caps.SupportsImage {
		resp.ImageURL = ""
		resp.ImageCaption = ""
	}

	return resp
}

// truncate cuts text to max runes, reserving room for the truncation marker.
func truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	cut := max - len(TruncationMarker)
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + TruncationMarker
}

// normalizeMarkup collapses runs of bold/italic markers to the single-char
// form Telegram's legacy Markdown mode understands. The output never carries
// a doubled marker, so a second pass is a no-op. Emoji pass through.
func normalizeMarkup(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		c := text[i]
		if c != '*' && c != '_' {
			b.WriteByte(c)
			i++
			continue
		}
		b.WriteByte(c)
		for i < len(text) && text[i] == c {
			i++
		}
	}
	return b.String()
}
