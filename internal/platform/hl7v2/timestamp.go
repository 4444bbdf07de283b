package hl7v2

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotAvailable is returned for the NaN sentinel and for empty input.
	ErrNotAvailable = errors.New("hl7v2: timestamp not available")

	// ErrInvalidTimestamp is returned when the encoding cannot be sliced.
	ErrInvalidTimestamp = errors.New("hl7v2: invalid timestamp")
)

// FormatTimestamp converts an HL7v2 timestamp (YYYYMMDDHH[MM[SS...]]) into
// "YYYY-MM-DDTHH:MM:00". The minute defaults to "00" when only the hour is
// present. Seconds are always zeroed and no offset is emitted since the
// encoding carries none.
func FormatTimestamp(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == NotAvailable {
		return "", ErrNotAvailable
	}
	if len(s) < 10 || len(s) == 11 {
		return "", fmt.Errorf("%w: %q has unexpected length %d", ErrInvalidTimestamp, raw, len(s))
	}

	minute := "00"
	if len(s) >= 12 {
		minute = s[10:12]
	}
	year, month, day, hour := s[0:4], s[4:6], s[6:8], s[8:10]

	for _, part := range []string{year, month, day, hour, minute} {
		if !isDigits(part) {
			return "", fmt.Errorf("%w: %q is not numeric", ErrInvalidTimestamp, raw)
		}
	}

	return fmt.Sprintf("%s-%s-%sT%s:%s:00", year, month, day, hour, minute), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
