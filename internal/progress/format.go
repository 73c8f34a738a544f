package progress

import (
	"fmt"
	"math"
	"time"
)

const (
	kib = 1024
	mib = kib * 1024
	gib = mib * 1024
	tib = gib * 1024
)

// FormatRate formats a transfer rate in bytes per second, scaled to the
// largest 1024-based unit below the value and rounded to one decimal.
func FormatRate(bytesPerSecond float64) string {
	switch {
	case bytesPerSecond < kib:
		return fmt.Sprintf("%.1f B/s", bytesPerSecond)
	case bytesPerSecond < mib:
		return fmt.Sprintf("%.1f KB/s", bytesPerSecond/kib)
	case bytesPerSecond < gib:
		return fmt.Sprintf("%.1f MB/s", bytesPerSecond/mib)
	default:
		return fmt.Sprintf("%.1f GB/s", bytesPerSecond/gib)
	}
}

// Percent computes done/total as a percentage rounded to one decimal.
// Returns 0 when total is not positive.
func Percent(done, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(done)/float64(total)*1000) / 10
}

// FormatBytes formats a byte count as a human-readable string.
func FormatBytes(b int64) string {
	switch {
	case b >= tib:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(tib))
	case b >= gib:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(gib))
	case b >= mib:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(mib))
	case b >= kib:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(kib))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// ParseBytes parses a human-readable byte string (e.g. "16KB", "4MB").
func ParseBytes(s string) (int64, error) {
	var multiplier int64 = 1
	s = trimSuffix(s, " ")

	switch {
	case hasSuffix(s, "TB"):
		multiplier = tib
		s = s[:len(s)-2]
	case hasSuffix(s, "GB"):
		multiplier = gib
		s = s[:len(s)-2]
	case hasSuffix(s, "MB"):
		multiplier = mib
		s = s[:len(s)-2]
	case hasSuffix(s, "KB"):
		multiplier = kib
		s = s[:len(s)-2]
	case hasSuffix(s, "B"):
		s = s[:len(s)-1]
	}

	var value float64
	_, err := fmt.Sscanf(s, "%f", &value)
	if err != nil {
		return 0, fmt.Errorf("invalid byte string: %s", s)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatDuration formats a duration as a human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

func trimSuffix(s, suffix string) string {
	for hasSuffix(s, suffix) {
		s = s[:len(s)-len(suffix)]
	}
	return s
}
