package action

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates follow-up queries embedded in buttons.
type Kind string

const (
	KindRoute    Kind = "r"
	KindNavigate Kind = "n"
)

const sep = "|"

// Action is the decoded form of a button payload.
// RouteID is set for both kinds; From and To only for KindNavigate.
type Action struct {
	Kind    Kind
	RouteID string
	From    int
	To      int
}

func Route(routeID string) Action {
	return Action{Kind: KindRoute, RouteID: routeID}
}

func Navigate(routeID string, from, to int) Action {
	return Action{Kind: KindNavigate, RouteID: routeID, From: from, To: to}
}

// Encode renders the action as an opaque string, e.g. "r|31" or "n|31|0|1".
// Telegram limits callback data to 64 bytes, which route ids fit comfortably.
func (a Action) Encode() string {
	switch a.Kind {
	case KindNavigate:
		return strings.Join([]string{string(a.Kind), a.RouteID, strconv.Itoa(a.From), strconv.Itoa(a.To)}, sep)
	default:
		return string(a.Kind) + sep + a.RouteID
	}
}

// Decode parses a payload produced by Encode.
func Decode(s string) (Action, error) {
	parts := strings.Split(s, sep)
	if len(parts) < 2 || parts[1] == "" {
		return Action{}, fmt.Errorf("decode action %q: malformed", s)
	}

	switch Kind(parts[0]) {
	case KindRoute:
		if len(parts) != 2 {
			return Action{}, fmt.Errorf("decode action %q: route takes 1 field", s)
		}
		return Route(parts[1]), nil

	case KindNavigate:
		if len(parts) != 4 {
			return Action{}, fmt.Errorf("decode action %q: navigate takes 3 fields", s)
		}
		from, err := strconv.Atoi(parts[2])
		if err != nil {
			return Action{}, fmt.Errorf("decode action %q: from index: %w", s, err)
		}
		to, err := strconv.Atoi(parts[3])
		if err != nil {
			return Action{}, fmt.Errorf("decode action %q: to index: %w", s, err)
		}
		return Navigate(parts[1], from, to), nil

	default:
		return Action{}, fmt.Errorf("decode action %q: unknown kind %q", s, parts[0])
	}
}
