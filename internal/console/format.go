package console

import (
	"time"

	"github.com/dustin/go-humanize"
)

// FormatBytes renders n with SI units, e.g. "1.5 kB".
func FormatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.Bytes(uint64(-n))
	}
	return humanize.Bytes(uint64(n))
}

// FormatSeconds renders d as whole or fractional seconds.
func FormatSeconds(d time.Duration) string {
	return humanize.FtoaWithDigits(d.Seconds(), 2)
}
