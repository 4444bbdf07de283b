package scheduling

import (
	"fmt"
)

// Formats understood by the gateway.
const (
	FormatHL7  = "HL7"
	FormatFHIR = "FHIR"
)

// Validator checks inbound messages before transformation. It never looks at
// the Bundle produced by the builder.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the top-level fields of message for the given format. An
// HL7 message must be a *ParsedMessage with a message type and a patient. A
// FHIR message must be a decoded JSON object carrying resourceType.
func (v *Validator) Validate(message interface{}, format string) error {
	switch format {
	case FormatHL7:
		msg, ok := message.(*ParsedMessage)
		if !ok || msg == nil {
			return fmt.Errorf("%w: HL7 validation expects a parsed message, got %T", ErrUnsupportedFormat, message)
		}
		if msg.MessageType == "" {
			return fmt.Errorf("%w: MSH-9 message type", ErrMissingRequiredField)
		}
		if msg.Patient == nil {
			return fmt.Errorf("%w: PID segment", ErrMissingRequiredField)
		}
		return nil
	case FormatFHIR:
		res, ok := message.(map[string]interface{})
		if !ok {
			return fmt.Errorf("%w: FHIR validation expects a JSON object, got %T", ErrUnsupportedFormat, message)
		}
		if rt, ok := res["resourceType"].(string); !ok || rt == "" {
			return fmt.Errorf("%w: resourceType", ErrMissingRequiredField)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
