package card

import "fmt"

// Seat is one of the three player positions.
type Seat int8

const (
	Seat0 Seat = iota
	Seat1
	Seat2
)

// Next returns the seat clockwise from s.
func (s Seat) Next() Seat {
	return Seat((int(s) + 1) % 3)
}

// Valid reports whether s is in [0,3).
func (s Seat) Valid() bool {
	return s >= Seat0 && s <= Seat2
}

func (s Seat) String() string {
	if !s.Valid() {
		return "?"
	}
	return fmt.Sprintf("P%d", s)
}

// Verb is one of the closed set of action-line verbs used in the token log.
type Verb string

const (
	VerbDraw      Verb = "draw"
	VerbPass      Verb = "pass"
	VerbPoints    Verb = "points"
	VerbScuttle   Verb = "scuttle"
	VerbPlayRoyal Verb = "playRoyal"
	VerbOneOff    Verb = "oneOff"
	VerbCounter   Verb = "counter"
	VerbResolve   Verb = "resolve"
	VerbDiscard   Verb = "discard"
)

// Header atoms.
const (
	AtomV1           = "V1"
	AtomGameName     = "CUTTHROAT3P"
	AtomDealer       = "DEALER"
	AtomDeck         = "DECK"
	AtomEndDeck      = "ENDDECK"
	AtomUnknown      = "UNKNOWN"
)

// rankLetters/suitLetters give the single-letter spellings used on the wire;
// they match pkg/card's String() exactly, kept separate so the wire format
// doesn't silently change if String() is ever made more display-friendly.
var rankLetters = [...]string{"2", "3", "4", "5", "6", "7", "8", "9", "T", "J", "Q", "K", "A"}
var suitLetters = [...]string{"C", "D", "H", "S"}

// CardAtom renders a card as its unique token-log spelling, e.g. "AC", "TD", "J0".
func CardAtom(c Card) string {
	if c.Joker {
		return fmt.Sprintf("J%d", c.Index)
	}
	return rankLetters[c.Rank] + suitLetters[c.Suit]
}

// ParseCardAtom parses a card atom back to a Card. Total and strict: any
// spelling outside the closed set is rejected.
func ParseCardAtom(atom string) (Card, bool) {
	if len(atom) == 2 && atom[0] == 'J' && (atom[1] == '0' || atom[1] == '1') {
		return NewJoker(atom[1] - '0'), true
	}
	if len(atom) != 2 {
		return Card{}, false
	}
	rank, ok := parseRankLetter(atom[0])
	if !ok {
		return Card{}, false
	}
	suit, ok := parseSuitLetter(atom[1])
	if !ok {
		return Card{}, false
	}
	return NewCard(rank, suit), true
}

func parseRankLetter(b byte) (Rank, bool) {
	for i, l := range rankLetters {
		if l[0] == b {
			return Rank(i), true
		}
	}
	return 0, false
}

func parseSuitLetter(b byte) (Suit, bool) {
	for i, l := range suitLetters {
		if l[0] == b {
			return Suit(i), true
		}
	}
	return 0, false
}

// SeatAtom renders a seat as its token-log spelling, e.g. "P0".
func SeatAtom(s Seat) string {
	return s.String()
}

// ParseSeatAtom parses a seat atom back to a Seat.
func ParseSeatAtom(atom string) (Seat, bool) {
	switch atom {
	case "P0":
		return Seat0, true
	case "P1":
		return Seat1, true
	case "P2":
		return Seat2, true
	default:
		return 0, false
	}
}
