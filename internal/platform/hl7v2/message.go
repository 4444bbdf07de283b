package hl7v2

import (
	"strings"
)

const (
	// FieldSeparator separates fields within a segment.
	FieldSeparator = "|"

	// ComponentSeparator separates components within a field.
	ComponentSeparator = "^"

	// NotAvailable is the placeholder some senders put in fields they cannot fill.
	NotAvailable = "NaN"
)

// Segment is one line of an HL7v2 message split into raw fields.
//
// Fields holds the plain "|" split of the line, so Fields[0] is the segment
// kind tag. For MSH that makes Fields[n-1] equal to MSH-n for n >= 2, because
// MSH-1 is the field separator itself.
type Segment struct {
	Kind   string
	Fields []string
}

// Tokenize splits raw HL7v2 text into segments. It supports \r, \n, and \r\n
// line endings. Lines are trimmed and blank lines dropped; the original order
// is preserved. No segment is rejected for having too few fields.
func Tokenize(raw string) []Segment {
	// Normalize line endings: replace \r\n with \r, then replace \n with \r
	text := strings.ReplaceAll(raw, "\r\n", "\r")
	text = strings.ReplaceAll(text, "\n", "\r")

	var segments []Segment
	for _, line := range strings.Split(text, "\r") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, FieldSeparator)
		segments = append(segments, Segment{
			Kind:   strings.TrimSpace(fields[0]),
			Fields: fields,
		})
	}
	return segments
}

// Len returns the number of raw fields, tag included.
func (s Segment) Len() int {
	return len(s.Fields)
}

// Field returns the raw field at index i of Fields. Out-of-range access
// reports ok=false instead of panicking.
func (s Segment) Field(i int) (value string, ok bool) {
	if i < 0 || i >= len(s.Fields) {
		return "", false
	}
	return s.Fields[i], true
}

// Components splits the field at index i on the component separator.
// It returns nil when the field is absent or empty.
func (s Segment) Components(i int) []string {
	v, ok := s.Field(i)
	if !ok || v == "" {
		return nil
	}
	return strings.Split(v, ComponentSeparator)
}

// Component returns component j (0-based) of field i.
func (s Segment) Component(i, j int) (value string, ok bool) {
	comps := s.Components(i)
	if j < 0 || j >= len(comps) {
		return "", false
	}
	return comps[j], true
}

// FromEnd converts an offset counted from the end of the segment into a
// Fields index. FromEnd(1) is the last field.
func (s Segment) FromEnd(offset int) int {
	return len(s.Fields) - offset
}

// Header holds the commonly used MSH fields.
type Header struct {
	SendingApp   string // MSH-3
	SendingFac   string // MSH-4
	ReceivingApp string // MSH-5
	ReceivingFac string // MSH-6
	Timestamp    string // MSH-7, raw encoding
	Type         string // MSH-9 (e.g. "SIU^S12")
	ControlID    string // MSH-10
	Version      string // MSH-12
}

// ReadHeader extracts the MSH fields from seg. Missing fields are left empty.
func ReadHeader(seg Segment) Header {
	// MSH field indexing into Fields:
	// Fields[2] = MSH-3 (sending app)
	// Fields[3] = MSH-4 (sending fac)
	// Fields[4] = MSH-5 (receiving app)
	// Fields[5] = MSH-6 (receiving fac)
	// Fields[6] = MSH-7 (timestamp)
	// Fields[8] = MSH-9 (message type)
	// Fields[9] = MSH-10 (control ID)
	// Fields[11] = MSH-12 (version)
	return Header{
		SendingApp:   mshField(seg, 2),
		SendingFac:   mshField(seg, 3),
		ReceivingApp: mshField(seg, 4),
		ReceivingFac: mshField(seg, 5),
		Timestamp:    mshField(seg, 6),
		Type:         mshField(seg, 8),
		ControlID:    mshField(seg, 9),
		Version:      mshField(seg, 11),
	}
}

func mshField(seg Segment, index int) string {
	v, _ := seg.Field(index)
	return strings.TrimSpace(v)
}
