package matchstate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrDecode is returned for messages that do not follow the match-state grammar.
var ErrDecode = errors.New("protocol decode error")

// Decode parses TAG:position:hand_id:rounds:cards[:...]. Fields after cards
// are ignored. Malformed input is rejected, never repaired.
func Decode(message string) (*Snapshot, error) {
	parts := strings.Split(strings.TrimRight(message, "\r\n"), ":")
	if len(parts) < 5 {
		return nil, fmt.Errorf("%w: want at least 5 fields, got %d", ErrDecode, len(parts))
	}
	position, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: position %q: %v", ErrDecode, parts[1], err)
	}
	if position != 0 && position != 1 {
		return nil, fmt.Errorf("%w: position %d out of range", ErrDecode, position)
	}
	handID, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: hand id %q: %v", ErrDecode, parts[2], err)
	}

	s := &Snapshot{
		Position: position,
		HandID:   handID,
		Rounds:   strings.Split(parts[3], "/"),
	}

	cards := strings.Split(parts[4], "/")
	hole := strings.Split(cards[0], "|")
	if len(hole) != 2 {
		return nil, fmt.Errorf("%w: hole cards %q need exactly one '|'", ErrDecode, cards[0])
	}
	s.HoleCards = [2]string{hole[0], hole[1]}
	if len(cards) > 1 {
		s.BoardCards = append([]string(nil), cards[1:len(cards)-1]...)
		s.Trailing = cards[len(cards)-1]
	}
	return s, nil
}

// Encode renders s back into a match-state message. A trailing cards chunk
// is always written when board groups are present so that Decode consumes
// every group.
func Encode(s Snapshot) string {
	rounds := s.Rounds
	if len(rounds) == 0 {
		rounds = []string{""}
	}
	var cards strings.Builder
	cards.WriteString(s.HoleCards[0])
	cards.WriteByte('|')
	cards.WriteString(s.HoleCards[1])
	if len(s.BoardCards) > 0 || s.Trailing != "" {
		for _, group := range s.BoardCards {
			cards.WriteByte('/')
			cards.WriteString(group)
		}
		cards.WriteByte('/')
		cards.WriteString(s.Trailing)
	}
	return fmt.Sprintf("%s:%d:%d:%s:%s", Tag, s.Position, s.HandID, strings.Join(rounds, "/"), cards.String())
}
