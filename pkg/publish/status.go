// Package publish decides whether a record is visible to the public.
//
// A record carries a Status and an optional LiveAsOf timestamp (see Fields).
// IsVisible is the single predicate; FilterVisible, ResolveOrNotFound and
// VisibleCondition apply it to listings, detail lookups and SQL queries.
package publish

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the publish mode of a record. Values match the stored integers.
type Status int

const (
	// NeverAvailable hides the record from the public regardless of time.
	NeverAvailable Status = -1
	// AvailableAfter shows the record once LiveAsOf has passed. It is the zero value.
	AvailableAfter Status = 0
	// Available shows the record regardless of time.
	Available Status = 1
)

var statusNames = map[Status]string{
	NeverAvailable: "never_available",
	AvailableAfter: "available_after",
	Available:      "available",
}

var statusLabels = map[Status]string{
	NeverAvailable: "Never Available",
	AvailableAfter: `Available after "Publish Date"`,
	Available:      "Available Now",
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Label returns the admin form label for s.
func (s Status) Label() string {
	return statusLabels[s]
}

// ParseStatus accepts the snake_case name or the stored integer.
func ParseStatus(s string) (Status, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for st, name := range statusNames {
		if v == name {
			return st, nil
		}
	}
	switch v {
	case "-1":
		return NeverAvailable, nil
	case "0":
		return AvailableAfter, nil
	case "1":
		return Available, nil
	}
	return 0, fmt.Errorf("publish: unknown status %q", s)
}

func (s Status) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("publish: cannot marshal invalid status %d", int(s))
	}
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		var n int
		if err2 := json.Unmarshal(data, &n); err2 != nil {
			return fmt.Errorf("publish: status must be a string or integer: %w", err)
		}
		name = fmt.Sprint(n)
	}
	st, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Choice is a (value, label) pair for admin select inputs.
type Choice struct {
	Value Status `json:"value"`
	Label string `json:"label"`
}

// Choices returns the statuses in admin display order.
func Choices() []Choice {
	return []Choice{
		{Value: NeverAvailable, Label: NeverAvailable.Label()},
		{Value: Available, Label: Available.Label()},
		{Value: AvailableAfter, Label: AvailableAfter.Label()},
	}
}
