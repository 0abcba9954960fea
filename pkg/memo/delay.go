package memo

import (
	"fmt"
	"strconv"
	"strings"
)

// NoDelay is the delay field value meaning "capture straight to hot".
const NoDelay = "00:00"

// ParseDelay parses an HH:MM delay field into minutes. The second return is
// false when the field is empty, malformed, out of range (hours must be
// below 24, minutes below 60), or zero, all of which mean no delay.
func ParseDelay(input string) (int, bool) {
	hoursPart, minutesPart, found := strings.Cut(strings.TrimSpace(input), ":")
	if !found {
		return 0, false
	}

	hours, err := strconv.Atoi(hoursPart)
	if err != nil || hours < 0 || hours >= 24 {
		return 0, false
	}
	minutes, err := strconv.Atoi(minutesPart)
	if err != nil || minutes < 0 || minutes >= 60 {
		return 0, false
	}

	total := hours*60 + minutes
	if total == 0 {
		return 0, false
	}
	return total, true
}

// FormatDelay renders minutes back into the HH:MM field format.
func FormatDelay(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AdjustDelay shifts an HH:MM delay field by delta minutes, clamping at
// zero. An empty or malformed field adjusts from zero.
func AdjustDelay(input string, delta int) string {
	minutes, _ := ParseDelay(input)
	minutes += delta
	if minutes < 0 {
		minutes = 0
	}
	return FormatDelay(minutes)
}
