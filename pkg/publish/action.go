package publish

import (
	"fmt"
	"time"
)

// Action is a bulk admin operation on the publish state of a record.
type Action string

const (
	ActionSetToDefault        Action = "set_to_default"
	ActionPermanentlyOnline   Action = "permanently_online"
	ActionTakeOnlineNow       Action = "take_online_now"
	ActionConditionallyOnline Action = "conditionally_online"
	ActionTakeOffline         Action = "take_offline"
)

// Actions lists every action in admin menu order.
func Actions() []Action {
	return []Action{
		ActionSetToDefault,
		ActionPermanentlyOnline,
		ActionTakeOnlineNow,
		ActionConditionallyOnline,
		ActionTakeOffline,
	}
}

// ParseAction returns the Action named s.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions() {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("publish: unknown action %q", s)
}

// Apply returns f after the action. f itself is not modified.
func (a Action) Apply(f Fields, now time.Time) (Fields, error) {
	switch a {
	case ActionSetToDefault:
		return Draft(), nil
	case ActionPermanentlyOnline:
		f.Status = Available
	case ActionTakeOnlineNow:
		t := now
		f.Status = AvailableAfter
		f.LiveAsOf = &t
	case ActionConditionallyOnline:
		f.Status = AvailableAfter
	case ActionTakeOffline:
		f.Status = NeverAvailable
	default:
		return f, fmt.Errorf("publish: unknown action %q", string(a))
	}
	return f, nil
}
