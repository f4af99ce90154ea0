package publish

import "time"

// SummaryTimeLayout is the timestamp layout used by Describe.
const SummaryTimeLayout = "2006-01-02 15:04 MST"

// Describe returns the admin listing text for a publish state. It does not
// look at the clock.
func Describe(status Status, liveAsOf *time.Time) string {
	switch status {
	case NeverAvailable:
		return "Never Available"
	case Available:
		return "Always Available"
	case AvailableAfter:
		if liveAsOf == nil {
			return "Available After: not set"
		}
		return "Available After: " + liveAsOf.UTC().Format(SummaryTimeLayout)
	default:
		return "Unknown"
	}
}

// Summary is Describe applied to f.
func (f Fields) Summary() string {
	return Describe(f.Status, f.LiveAsOf)
}
