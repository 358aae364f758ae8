package agent

import (
	"errors"
	"fmt"
)

type Action int

const (
	Fold  Action = 0
	Call  Action = 1
	Raise Action = 2
)

var (
	ErrIllegalAction = errors.New("illegal action")
	ErrUnknownAction = errors.New("unknown action code")
)

// Code is the wire token for a, as written into the rounds field.
func (a Action) Code() byte {
	switch a {
	case Fold:
		return 'f'
	case Raise:
		return 'r'
	default:
		return 'c'
	}
}

func (a Action) String() string {
	switch a {
	case Fold:
		return "fold"
	case Call:
		return "call"
	case Raise:
		return "raise"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

func ParseAction(code byte) (Action, error) {
	switch code {
	case 'f':
		return Fold, nil
	case 'c':
		return Call, nil
	case 'r':
		return Raise, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownAction, code)
}

// ParseActions converts a run of wire codes such as "rcf" into actions.
func ParseActions(codes string) ([]Action, error) {
	out := make([]Action, 0, len(codes))
	for i := 0; i < len(codes); i++ {
		a, err := ParseAction(codes[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func Contains(valid []Action, a Action) bool {
	for _, v := range valid {
		if v == a {
			return true
		}
	}
	return false
}

// CheckLegal fails with ErrIllegalAction when a is not in valid.
func CheckLegal(valid []Action, a Action) error {
	if !Contains(valid, a) {
		return fmt.Errorf("%w %v (legal: %v)", ErrIllegalAction, a, valid)
	}
	return nil
}

func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText accepts either the name ("raise") or the wire code ("r").
func (a *Action) UnmarshalText(text []byte) error {
	s := string(text)
	for _, v := range []Action{Fold, Call, Raise} {
		if s == v.String() || (len(s) == 1 && s[0] == v.Code()) {
			*a = v
			return nil
		}
	}
	return fmt.Errorf("%w %q", ErrUnknownAction, s)
}
