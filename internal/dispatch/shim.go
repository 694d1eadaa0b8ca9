package dispatch

import (
	"github.com/astrelay/astrelay/internal/alice"
	"github.com/astrelay/astrelay/internal/universal"
)

// shimRequest synthesizes a minimal engine-native request for platforms whose
// wire schema differs from the engine's. This narrowing is deliberate: the
// engine is text-driven, so only the utterance, the session id and session
// newness survive, with fixed locale/timezone defaults. Schema changes in the
// engine's input should touch only this function.
func (d *Dispatcher) shimRequest(req *universal.Request) *alice.Request {
	return &alice.Request{
		Version: "1.0",
		Meta: alice.Meta{
			Locale:   d.defaultLocale,
			Timezone: d.defaultTimezone,
		},
		Session: alice.Session{
			New:       req.IsNewSession,
			SessionID: req.SessionID,
		},
		Request: alice.Utterance{
			Command:           req.Text,
			OriginalUtterance: req.Text,
			Type:              alice.TypeSimpleUtterance,
		},
	}
}
