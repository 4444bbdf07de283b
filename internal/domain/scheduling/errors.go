package scheduling

import (
	"errors"
	"fmt"

	"github.com/ehr/gateway/internal/platform/hl7v2"
)

var (
	// ErrMalformedSegment marks a segment that was skipped. It never aborts a
	// transformation.
	ErrMalformedSegment = errors.New("malformed segment")
	// ErrInvalidTimestamp marks a timestamp that degraded to null.
	ErrInvalidTimestamp = hl7v2.ErrInvalidTimestamp
	// ErrMissingRequiredField aborts a transformation with no output.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrUnsupportedDirection is returned for any format pair other than
	// HL7 to FHIR.
	ErrUnsupportedDirection = errors.New("unsupported transformation direction")
	// ErrUnsupportedFormat is returned by the validator for unknown formats.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// SegmentError describes why one segment was rejected.
type SegmentError struct {
	Kind   string
	Index  int
	Reason string
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("%s segment at line %d: %s", e.Kind, e.Index+1, e.Reason)
}

func (e *SegmentError) Unwrap() error { return ErrMalformedSegment }

func malformed(seg hl7v2.Segment, reason string) *SegmentError {
	return &SegmentError{Kind: seg.Kind, Index: -1, Reason: reason}
}

// IsFatal reports whether err aborts a transformation.
func IsFatal(err error) bool {
	return errors.Is(err, ErrMissingRequiredField) ||
		errors.Is(err, ErrUnsupportedDirection) ||
		errors.Is(err, ErrUnsupportedFormat)
}
