package signrequests

import "time"

// action is an operation that moves a request between stored states.
type action string

const (
	actionSign   action = "sign"
	actionCancel action = "cancel"
)

// transitions is the guard table over stored states. A missing entry is an
// idempotent no-op; expiry is checked separately because it is derived.
var transitions = map[Status]map[action]Status{
	StatusPending: {
		actionSign:   StatusSigned,
		actionCancel: StatusCancelled,
	},
	StatusSigned: {},
	StatusCancelled: {
		actionCancel: StatusCancelled,
	},
}

// next returns the state after applying a to current, or the error that
// explains why a is not allowed.
func next(current Status, a action) (Status, error) {
	if to, ok := transitions[current][a]; ok {
		return to, nil
	}
	return "", statusError(current)
}

// statusError maps a non-pending state to the error callers report.
func statusError(s Status) error {
	switch s {
	case StatusSigned:
		return ErrAlreadySigned
	case StatusCancelled:
		return ErrCancelled
	case StatusExpired:
		return ErrExpired
	default:
		return nil
	}
}

// checkSignable reports why r cannot be signed at now. Cancelled and signed
// take precedence over expired.
func checkSignable(r Request, now time.Time) error {
	if _, err := next(r.Status, actionSign); err != nil {
		return err
	}
	if r.EffectiveStatus(now) == StatusExpired {
		return ErrExpired
	}
	return nil
}
