package scheduling

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ehr/gateway/internal/platform/hl7v2"
)

// aggregate folds tokenized segments into a ParsedMessage. The first segment
// must be an MSH carrying MSH-10. Malformed segments are logged and skipped;
// for repeated kinds the last parsable segment wins.
func aggregate(segments []hl7v2.Segment, log zerolog.Logger) (*ParsedMessage, error) {
	if len(segments) == 0 || segments[0].Kind != KindHeader {
		return nil, fmt.Errorf("%w: message must start with an MSH segment", ErrMissingRequiredField)
	}
	hdr := parseHeader(segments[0])
	if hdr.ControlID == "" {
		return nil, fmt.Errorf("%w: MSH-10 message control id", ErrMissingRequiredField)
	}

	msg := &ParsedMessage{
		MessageType: hdr.Type,
		MessageID:   hdr.ControlID,
		Timestamp:   hdr.Timestamp,
		Segments:    []string{KindHeader},
	}
	seen := map[string]bool{KindHeader: true}

	for i := 1; i < len(segments); i++ {
		seg := segments[i]
		if !isRecognized(seg.Kind) {
			continue
		}

		if err := applySegment(msg, seg); err != nil {
			var se *SegmentError
			if errors.As(err, &se) {
				se.Index = i
			}
			log.Warn().
				Err(err).
				Str("segment", seg.Kind).
				Int("line", i+1).
				Msg("skipping malformed segment")
			continue
		}

		// Only kinds that produced a record are reported.
		if !seen[seg.Kind] {
			seen[seg.Kind] = true
			msg.Segments = append(msg.Segments, seg.Kind)
		}
	}

	log.Debug().
		Int("segments", len(segments)).
		Strs("recognized", msg.Segments).
		Str("message_id", msg.MessageID).
		Msg("message aggregated")

	return msg, nil
}

func isRecognized(kind string) bool {
	switch kind {
	case KindHeader, KindPatient, KindSchedule, KindResource, KindLocation:
		return true
	}
	return false
}

// applySegment parses seg and stores the record on msg. A panic inside a
// parser is reported as a malformed segment.
func applySegment(msg *ParsedMessage, seg hl7v2.Segment) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = malformed(seg, fmt.Sprintf("parser panic: %v", r))
		}
	}()

	switch seg.Kind {
	case KindPatient:
		p, err := parsePatient(seg)
		if err != nil {
			return err
		}
		msg.Patient = p
	case KindSchedule:
		s, err := parseScheduling(seg)
		if err != nil {
			return err
		}
		msg.Scheduling = s
	case KindResource:
		a, err := parseResource(seg)
		if err != nil {
			return err
		}
		msg.Agenda = a
	case KindLocation:
		l, err := parseLocation(seg)
		if err != nil {
			return err
		}
		msg.Location = l
	}
	// Repeated MSH lines are ignored; only the first line is the header.
	return nil
}

// normalizeTimestamp returns the ISO form of raw, or nil when raw is the NaN
// sentinel, empty, or cannot be sliced.
func normalizeTimestamp(log zerolog.Logger, raw string) *string {
	ts, err := hl7v2.FormatTimestamp(raw)
	if err != nil {
		if !errors.Is(err, hl7v2.ErrNotAvailable) {
			log.Warn().Err(err).Str("raw", raw).Msg("timestamp degraded to null")
		}
		return nil
	}
	return &ts
}
