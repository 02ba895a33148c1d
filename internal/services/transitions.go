package services

import (
	"strings"
	"time"

	"github.com/developmentHC/conectaBemBack/internal/apperrors"
)

// Action names a lifecycle transition on the wire.
type Action string

const (
	ActionConfirm    Action = "confirm"
	ActionCancel     Action = "cancel"
	ActionReschedule Action = "reschedule"
	ActionComplete   Action = "complete"
)

// Transition is one of Confirm, Cancel, Reschedule or Complete. Each variant
// carries only the payload its action needs.
type Transition interface {
	Action() Action
	isTransition()
}

type Confirm struct{}

type Cancel struct {
	Reason string
}

type Reschedule struct {
	DateTime time.Time
}

type Complete struct{}

func (Confirm) Action() Action    { return ActionConfirm }
func (Cancel) Action() Action     { return ActionCancel }
func (Reschedule) Action() Action { return ActionReschedule }
func (Complete) Action() Action   { return ActionComplete }

func (Confirm) isTransition()    {}
func (Cancel) isTransition()     {}
func (Reschedule) isTransition() {}
func (Complete) isTransition()   {}

// ActionPayload is the optional body that accompanies an action.
type ActionPayload struct {
	Reason   string `json:"reason"`
	DateTime string `json:"dateTime"`
}

// ParseTransition turns a wire action and its payload into a Transition.
func ParseTransition(action string, payload ActionPayload) (Transition, error) {
	switch Action(strings.TrimSpace(action)) {
	case "":
		return nil, apperrors.NewValidationError(`Campo "action" é obrigatório.`)
	case ActionConfirm:
		return Confirm{}, nil
	case ActionCancel:
		return Cancel{Reason: strings.TrimSpace(payload.Reason)}, nil
	case ActionReschedule:
		if strings.TrimSpace(payload.DateTime) == "" {
			return nil, apperrors.NewValidationError(`Campo "payload.dateTime" é obrigatório para remarcar.`)
		}
		at, err := ParseDateTime(payload.DateTime)
		if err != nil {
			return nil, apperrors.NewValidationError("dateTime inválido. Use ISO 8601.")
		}
		return Reschedule{DateTime: at}, nil
	case ActionComplete:
		return Complete{}, nil
	default:
		return nil, apperrors.NewUnknownActionError("Ação desconhecida: " + action + ".")
	}
}

// ParseDateTime accepts RFC 3339 timestamps with or without fractional
// seconds and returns the instant in UTC, truncated to milliseconds.
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeTime(t), nil
}

// NormalizeTime brings an instant to the stored precision.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
