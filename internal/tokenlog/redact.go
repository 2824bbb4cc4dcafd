package tokenlog

import (
	"strings"

	"github.com/avidcoder/cutthroat/internal/engine"
	"github.com/avidcoder/cutthroat/pkg/card"
)

// Redact re-walks log against a fresh engine and re-encodes it with every
// Draw whose seat isn't viewer blanked to UNKNOWN, per §4.2.5. viewer nil
// means a pure spectator: every draw is blanked. The result is for client
// consumption only — Parse rejects any log containing UNKNOWN.
func Redact(log string, viewer *card.Seat) (string, error) {
	parsed, err := Parse(log)
	if err != nil {
		return "", err
	}

	st, err := engine.NewWithDeck(parsed.Dealer, parsed.Deck)
	if err != nil {
		return "", invalidFormatf("cannot deal from header: %v", err)
	}

	lines := make([]string, 0, 1+len(parsed.Actions))
	lines = append(lines, strings.Join(encodeHeader(parsed.Dealer, parsed.Deck), " "))

	for _, sa := range parsed.Actions {
		line, err := EncodeAction(st, sa.Seat, sa.Action)
		if err != nil {
			return "", err
		}
		if sa.Action.Kind == engine.ActionDraw && (viewer == nil || *viewer != sa.Seat) {
			line = blankDrawLine(line)
		}
		lines = append(lines, line)

		if err := st.Apply(sa.Seat, sa.Action); err != nil {
			return "", replayRejected(err)
		}
	}

	return strings.Join(lines, "\n"), nil
}

// blankDrawLine replaces the drawn-card atom of a "<seat> draw <card>" line
// with UNKNOWN. Draw never triggers a glasses snapshot, so the line always
// has exactly this shape.
func blankDrawLine(line string) string {
	parts := strings.Fields(line)
	if len(parts) >= 3 {
		parts[2] = card.AtomUnknown
	}
	return strings.Join(parts, " ")
}
