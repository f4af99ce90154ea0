package publish

import (
	"fmt"
	"regexp"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// VisibleCondition renders a SQL boolean expression equivalent to IsVisible
// for an unprivileged viewer. nowArg is the 1-based placeholder index that the
// caller binds to the current time. Column names may be table-qualified.
//
//	(s = 1 OR (s = 0 AND l IS NOT NULL AND l <= $N))
//
// It panics on an invalid identifier or placeholder index.
func VisibleCondition(statusCol, liveAsOfCol string, nowArg int) string {
	if !identRe.MatchString(statusCol) || !identRe.MatchString(liveAsOfCol) {
		panic(fmt.Sprintf("publish: invalid column name %q / %q", statusCol, liveAsOfCol))
	}
	if nowArg < 1 {
		panic(fmt.Sprintf("publish: invalid placeholder index %d", nowArg))
	}
	return fmt.Sprintf("(%[1]s = %[3]d OR (%[1]s = %[4]d AND %[2]s IS NOT NULL AND %[2]s <= $%[5]d))",
		statusCol, liveAsOfCol, int(Available), int(AvailableAfter), nowArg)
}
