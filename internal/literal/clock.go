package literal

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeTimeHHMMSS turns a loosely written GTFS clock time into
// zero-padded "HH:MM:SS". Hours past 24 are kept as written, since GTFS
// service days run past midnight.
//
// "H:M:S" and "H:M" are split on colons. Anything else is reduced to its
// digits and read right to left: SS, MM, then the remaining hours. Fewer
// than two digits, or unparsable parts, report false.
func NormalizeTimeHHMMSS(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	var hh, mm, ss string
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 3:
		hh, mm, ss = parts[0], parts[1], parts[2]
	case 2:
		hh, mm, ss = parts[0], parts[1], "00"
	default:
		var b strings.Builder
		for _, r := range s {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		d := b.String()
		switch {
		case len(d) >= 4:
			hh, mm, ss = d[:len(d)-4], d[len(d)-4:len(d)-2], d[len(d)-2:]
		case len(d) >= 2:
			hh, mm, ss = d[:len(d)-2], d[len(d)-2:], "00"
		default:
			return "", false
		}
		if hh == "" {
			hh = "0"
		}
	}

	h, err := strconv.Atoi(strings.TrimSpace(hh))
	if err != nil || h < 0 {
		return "", false
	}
	m, err := strconv.Atoi(strings.TrimSpace(mm))
	if err != nil || m < 0 {
		return "", false
	}
	sec, err := strconv.Atoi(strings.TrimSpace(ss))
	if err != nil || sec < 0 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec), true
}
