package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/rhuss/gatehouse/pkg/api"
)

// startedLayout renders the start time like "Mon, Jan 2, 2006 3:04 PM".
const startedLayout = "Mon, Jan 2, 2006 3:04 PM"

func statusAt(started, now time.Time) api.Status {
	return api.Status{
		Uptime:  formatUptime(now.Sub(started)),
		Started: started.Format(startedLayout),
	}
}

// formatUptime renders d as "w weeks d days, h hrs, m min, s sec". Leading
// zero units are dropped; seconds are always shown.
func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)

	units := []struct {
		value int64
		label string
		sep   string
	}{
		{total / (7 * 86400), "weeks", " "},
		{total % (7 * 86400) / 86400, "days", ", "},
		{total % 86400 / 3600, "hrs", ", "},
		{total % 3600 / 60, "min", ", "},
		{total % 60, "sec", ""},
	}

	first := len(units) - 1
	for i, u := range units[:len(units)-1] {
		if u.value != 0 {
			first = i
			break
		}
	}

	var b strings.Builder
	for _, u := range units[first:] {
		fmt.Fprintf(&b, "%d %s%s", u.value, u.label, u.sep)
	}
	return b.String()
}
