package hl7v2

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Acknowledgment codes for MSA-1.
const (
	AckAccept = "AA"
	AckError  = "AE"
	AckReject = "AR"
)

const encodingCharacters = `^~\&`

// GenerateACK builds the raw bytes of an HL7v2 ACK for the incoming header.
// The ACK swaps the sending and receiving application/facility, references
// the original control ID in MSA-2, and carries text (if any) in MSA-3.
func GenerateACK(incoming Header, ackCode, text string) []byte {
	return buildACK(incoming, ackCode, text, time.Now().UTC(), newControlID())
}

func buildACK(incoming Header, ackCode, text string, now time.Time, controlID string) []byte {
	// incoming.Type is something like "SIU^S12"; the ACK keeps the trigger.
	trigger := ""
	if parts := strings.SplitN(incoming.Type, ComponentSeparator, 3); len(parts) >= 2 {
		trigger = parts[1]
	}

	version := incoming.Version
	if version == "" {
		version = "2.5"
	}

	msh := []string{
		"MSH",
		encodingCharacters,
		incoming.ReceivingApp, // MSH-3
		incoming.ReceivingFac, // MSH-4
		incoming.SendingApp,   // MSH-5
		incoming.SendingFac,   // MSH-6
		now.Format("20060102150405"),
		"",
		"ACK^" + trigger,
		controlID,
		"P",
		version,
	}

	msa := []string{"MSA", ackCode, incoming.ControlID}
	if text != "" {
		msa = append(msa, escapeText(text))
	}

	return []byte(strings.Join(msh, FieldSeparator) + "\r" + strings.Join(msa, FieldSeparator))
}

// newControlID returns a 20 character MSH-10 value.
func newControlID() string {
	return "ACK" + strings.ReplaceAll(uuid.NewString(), "-", "")[:17]
}

// escapeText replaces delimiters so free text cannot split the MSA segment.
func escapeText(s string) string {
	r := strings.NewReplacer(
		`\`, `\E\`,
		"|", `\F\`,
		"^", `\S\`,
		"&", `\T\`,
		"~", `\R\`,
		"\r", " ",
		"\n", " ",
	)
	return r.Replace(s)
}
