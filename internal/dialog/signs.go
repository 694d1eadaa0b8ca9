package dialog

import "strings"

type zodiacSign struct {
	Code    string
	Title   string
	Aliases []string
}

// Aliases cover both locales the bot serves plus common inflected forms.
var zodiacSigns = []zodiacSign{
	{Code: "aries", Title: "Aries", Aliases: []string{"aries", "овен", "овна", "овну"}},
	{Code: "taurus", Title: "Taurus", Aliases: []string{"taurus", "телец", "тельца", "тельцу"}},
	{Code: "gemini", Title: "Gemini", Aliases: []string{"gemini", "близнецы", "близнецов", "близнецам"}},
	{Code: "cancer", Title: "Cancer", Aliases: []string{"cancer", "рак", "рака", "раку"}},
	{Code: "leo", Title: "Leo", Aliases: []string{"leo", "лев", "льва", "льву"}},
	{Code: "virgo", Title: "Virgo", Aliases: []string{"virgo", "дева", "девы", "деве"}},
	{Code: "libra", Title: "Libra", Aliases: []string{"libra", "весы", "весов", "весам"}},
	{Code: "scorpio", Title: "Scorpio", Aliases: []string{"scorpio", "скорпион", "скорпиона", "скорпиону"}},
	{Code: "sagittarius", Title: "Sagittarius", Aliases: []string{"sagittarius", "стрелец", "стрельца", "стрельцу"}},
	{Code: "capricorn", Title: "Capricorn", Aliases: []string{"capricorn", "козерог", "козерога", "козерогу"}},
	{Code: "aquarius", Title: "Aquarius", Aliases: []string{"aquarius", "водолей", "водолея", "водолею"}},
	{Code: "pisces", Title: "Pisces", Aliases: []string{"pisces", "рыбы", "рыб", "рыбам"}},
}

// signPayloadPrefix marks machine tokens produced by sign suggestion buttons.
const signPayloadPrefix = "sign:"

// ParseSign recognizes a zodiac sign in a normalized utterance or button
// token. It returns the sign code and whether one was found.
func ParseSign(utterance string) (string, bool) {
	norm := strings.ToLower(strings.TrimSpace(utterance))
	if norm == "" {
		return "", false
	}
	if token, ok := strings.CutPrefix(norm, signPayloadPrefix); ok {
		for _, s := range zodiacSigns {
			if s.Code == token {
				return s.Code, true
			}
		}
		return "", false
	}
	for _, s := range zodiacSigns {
		for _, alias := range s.Aliases {
			if containsWord(norm, alias) {
				return s.Code, true
			}
		}
	}
	return "", false
}

// SignTitle returns the display name for a sign code, or the code itself when
// unknown.
func SignTitle(code string) string {
	for _, s := range zodiacSigns {
		if s.Code == code {
			return s.Title
		}
	}
	return code
}

// SignButtons lists one suggestion button per sign, in zodiac order. Callers
// rely on the formatter to trim the list to platform limits.
func SignButtons() []ReplyButton {
	out := make([]ReplyButton, 0, len(zodiacSigns))
	for _, s := range zodiacSigns {
		out = append(out, ReplyButton{
			Title:   s.Title,
			Payload: signPayloadPrefix + s.Code,
		})
	}
	return out
}

// containsWord reports whether text contains needle as a whole word, not as a
// substring of a longer word.
func containsWord(text, needle string) bool {
	idx := strings.Index(text, needle)
	for idx >= 0 {
		beforeOK := idx == 0 || !isWordRune(rune(text[idx-1]))
		after := idx + len(needle)
		afterOK := after >= len(text) || !isWordRune(rune(text[after]))
		if beforeOK && afterOK {
			return true
		}
		next := strings.Index(text[idx+1:], needle)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isWordRune(r rune) bool {
	if r >= 'a' && r <= 'z' {
		return true
	}
	if r >= '0' && r <= '9' {
		return true
	}
	// Multibyte (cyrillic) continuation bytes also count as word content.
	return r >= 0x80
}
