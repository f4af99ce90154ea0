package publish

import (
	"errors"
	"reflect"
	"time"
)

// ErrNotFound is returned by ResolveOrNotFound for both absent and hidden records.
var ErrNotFound = errors.New("not found")

// Fields holds the publish state of a record. Embed it in a model to make the
// model Publishable. The zero value is AvailableAfter with no LiveAsOf, which
// keeps new records hidden until someone schedules them.
type Fields struct {
	Status   Status     `json:"publish_status"`
	LiveAsOf *time.Time `json:"live_as_of,omitempty"`
}

// Publishable is implemented by any record that embeds Fields.
type Publishable interface {
	PublishFields() Fields
}

// Draft returns the default publish state for a new record.
func Draft() Fields {
	return Fields{Status: AvailableAfter}
}

// PublishFields implements Publishable.
func (f Fields) PublishFields() Fields {
	return f
}

// AvailableToPublic reports whether an anonymous viewer can see the record at now.
// Use it for display decisions after a gate has already run.
func (f Fields) AvailableToPublic(now time.Time) bool {
	return visible(f, now, false)
}

// IsVisible reports whether record is visible at now. Privileged viewers see
// every record. A nil record is never visible.
func IsVisible(record Publishable, now time.Time, privileged bool) bool {
	if isNil(record) {
		return false
	}
	return visible(record.PublishFields(), now, privileged)
}

// isNil reports whether record is a nil interface or a typed nil pointer,
// on which the promoted PublishFields method would panic.
func isNil(record Publishable) bool {
	if record == nil {
		return true
	}
	v := reflect.ValueOf(record)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func visible(f Fields, now time.Time, privileged bool) bool {
	if privileged {
		return true
	}
	switch f.Status {
	case Available:
		return true
	case AvailableAfter:
		return f.LiveAsOf != nil && !now.Before(*f.LiveAsOf)
	default:
		return false
	}
}

// FilterVisible returns the records visible at now, in input order. Nil
// elements are dropped. The input slice is not modified.
func FilterVisible[T Publishable](records []T, now time.Time, privileged bool) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if IsVisible(r, now, privileged) {
			out = append(out, r)
		}
	}
	return out
}

// ResolveOrNotFound returns record when it exists and is visible at now.
// Pass found=false when the lookup found nothing; the result is ErrNotFound
// in that case, when the record is hidden, and when record is nil.
func ResolveOrNotFound[T Publishable](record T, found bool, now time.Time, privileged bool) (T, error) {
	var zero T
	if !found || !IsVisible(record, now, privileged) {
		return zero, ErrNotFound
	}
	return record, nil
}
