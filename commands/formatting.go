package commands

import (
	"strconv"
	"time"

	"github.com/netmon-dev/netmon/util"
)

// helper functions for formatting integers and timestamps
func i(i int64) string {
	return strconv.FormatInt(i, 10)
}

func f(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}

func ts(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(util.TimeFormat)
}
