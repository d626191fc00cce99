package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// formatOptional formats an optional value with the given precision, "-" when nil
func formatOptional(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v, prec)
}

// formatNonZero formats v, or "-" when it is zero
func formatNonZero(v float64, prec int) string {
	if v == 0 {
		return "-"
	}
	return formatFloat(v, prec)
}

// formatHours formats seconds as "1h 05m" or "45m"
func formatHours(seconds float64) string {
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func truncateName(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// divider renders a section title followed by a rule to the given width
func divider(title string, width int) string {
	prefix := "── " + title + " "
	n := width - len([]rune(prefix))
	if n < 3 {
		n = 3
	}
	return sectionStyle.Render(prefix + strings.Repeat("─", n))
}

// trimTrailingZeros drops zero entries from the end of a chart series
func trimTrailingZeros(data []float64) []float64 {
	end := len(data)
	for end > 0 && data[end-1] == 0 {
		end--
	}
	return data[:end]
}

// fillGaps replaces zero entries with the previous non-zero value so charts
// do not dive to zero at pauses
func fillGaps(data []float64) []float64 {
	out := make([]float64, len(data))
	last := 0.0
	for i, v := range data {
		if v > 0 {
			last = v
		}
		out[i] = last
	}
	return out
}
