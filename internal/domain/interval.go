package domain

import (
	"fmt"
	"strconv"
)

// Interval is the wait between playback attempts, in seconds.
type Interval int

// Intervals lists the selectable wait durations.
var Intervals = []Interval{15, 300, 600, 900, 1200, 1500, 1800, 2700, 3600}

const DefaultInterval Interval = 900

func (i Interval) Seconds() int { return int(i) }

func (i Interval) Supported() bool {
	for _, v := range Intervals {
		if v == i {
			return true
		}
	}
	return false
}

// ParseInterval parses a seconds value and checks it against Intervals.
func ParseInterval(s string) (Interval, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parsing interval %q: %w", s, err)
	}
	i := Interval(n)
	if !i.Supported() {
		return 0, fmt.Errorf("interval %d not in %v", n, Intervals)
	}
	return i, nil
}
