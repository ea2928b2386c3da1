package timer

import (
	"sync/atomic"
	"time"
)

// Time contains the unix-time in milliseconds updated every [Resolution] milliseconds
var Time = new(atomic.Int64)

// date holds the IMF-fixdate representation of the current second.
var date atomic.Pointer[string]

// Resolution is the frequency at which time is updated. Default 500ms are
// precise enough for setting I/O deadlines and for the Date header
const Resolution = 500 * time.Millisecond

// IMFFixdate is the only date format allowed in the Date header (RFC 9110, 5.6.7).
const IMFFixdate = "Mon, 02 Jan 2006 15:04:05 GMT"

func Now() time.Time {
	millis := Time.Load()
	return time.Unix(millis/1000, (millis%1000)*1e6)
}

// Date returns the current time formatted as an IMF-fixdate.
func Date() string {
	return *date.Load()
}

func tick() {
	now := time.Now()
	Time.Store(now.UnixMilli())
	formatted := now.UTC().Format(IMFFixdate)
	date.Store(&formatted)
}

func init() {
	// the first tick happens synchronously, otherwise rapid usage right after the start
	// would observe the zero-time
	tick()

	go func() {
		for {
			time.Sleep(Resolution)
			tick()
		}
	}()
}
