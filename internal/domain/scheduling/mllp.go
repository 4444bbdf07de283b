package scheduling

import (
	"github.com/rs/zerolog"

	"github.com/ehr/gateway/internal/platform/hl7v2"
)

// MLLPHandler runs each inbound MLLP payload through the engine and answers
// with an HL7 ACK: AA on success, AE carrying the error text otherwise.
// Payloads that do not start with MSH get no reply since there is nothing to
// address an ACK to.
func MLLPHandler(engine *Engine, logger zerolog.Logger) hl7v2.MessageHandler {
	log := logger.With().Str("component", "mllp-transform").Logger()

	return func(raw []byte) []byte {
		text := string(raw)
		segs := hl7v2.Tokenize(text)
		if len(segs) == 0 || segs[0].Kind != KindHeader {
			log.Warn().Int("bytes", len(raw)).Msg("dropping MLLP payload without MSH")
			return nil
		}
		hdr := hl7v2.ReadHeader(segs[0])

		res, err := engine.Transform(text, FormatHL7, FormatFHIR)
		if err != nil {
			evt := log.Error()
			if IsFatal(err) {
				evt = log.Warn()
			}
			evt.Err(err).
				Str("control_id", hdr.ControlID).
				Str("message_type", hdr.Type).
				Msg("MLLP message rejected")
			return hl7v2.GenerateACK(hdr, hl7v2.AckError, err.Error())
		}

		appointmentID := ""
		if appts := res.Bundle.Appointments(); len(appts) > 0 {
			appointmentID = appts[0].ID
		}
		log.Info().
			Str("control_id", hdr.ControlID).
			Str("message_type", hdr.Type).
			Str("appointment_id", appointmentID).
			Strs("segments", res.Metadata.ParsedSegments).
			Msg("MLLP message transformed")
		return hl7v2.GenerateACK(hdr, hl7v2.AckAccept, "")
	}
}
