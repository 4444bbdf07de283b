package scheduling

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ehr/gateway/internal/platform/fhir"
	"github.com/ehr/gateway/internal/platform/hl7v2"
)

// Settings configures an Engine.
type Settings struct {
	Version string
	// SupportedFormats maps each format name to its version, e.g. HL7 to 2.5.
	SupportedFormats map[string]string
	// StrictValidation runs the HL7 validator on every message before building.
	StrictValidation bool
}

// Direction is a source and target format pair.
type Direction struct {
	Source string `json:"source_format"`
	Target string `json:"target_format"`
}

// Only HL7 to FHIR has a mapping. The reverse stays unsupported until it is
// designed separately.
var directions = []Direction{{Source: FormatHL7, Target: FormatFHIR}}

// Engine runs the HL7 to FHIR translation. It keeps no per-call state and is
// safe for concurrent use.
type Engine struct {
	settings  Settings
	log       zerolog.Logger
	builder   *Builder
	validator *Validator
}

func NewEngine(settings Settings, logger zerolog.Logger) *Engine {
	log := logger.With().Str("component", "engine").Logger()
	return &Engine{
		settings:  settings,
		log:       log,
		builder:   NewBuilder(log),
		validator: NewValidator(),
	}
}

// Result is the output of a successful transformation.
type Result struct {
	Bundle   *fhir.Bundle
	Metadata Metadata
}

type Metadata struct {
	SourceFormat   string   `json:"source_format"`
	TargetFormat   string   `json:"target_format"`
	Version        string   `json:"version"`
	ParsedSegments []string `json:"parsed_segments"`
}

// Transform translates raw from source to target format. Any pair other than
// HL7 to FHIR fails with ErrUnsupportedDirection before parsing starts.
func (e *Engine) Transform(raw, source, target string) (*Result, error) {
	if !e.supports(source, target) {
		return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedDirection, source, target)
	}

	msg, err := e.Parse(raw)
	if err != nil {
		return nil, err
	}
	if e.settings.StrictValidation {
		if err := e.validator.Validate(msg, FormatHL7); err != nil {
			return nil, err
		}
	}

	bundle, err := e.builder.Build(msg)
	if err != nil {
		return nil, err
	}

	e.log.Debug().
		Str("message_id", msg.MessageID).
		Str("message_type", msg.MessageType).
		Int("participants", len(bundle.Appointments()[0].Participant)).
		Msg("message transformed")

	return &Result{
		Bundle: bundle,
		Metadata: Metadata{
			SourceFormat:   source,
			TargetFormat:   target,
			Version:        e.settings.Version,
			ParsedSegments: msg.Segments,
		},
	}, nil
}

// Parse tokenizes and aggregates raw HL7 without building a bundle.
func (e *Engine) Parse(raw string) (*ParsedMessage, error) {
	return aggregate(hl7v2.Tokenize(raw), e.log)
}

// Validate runs the boundary validator for format.
func (e *Engine) Validate(message interface{}, format string) error {
	return e.validator.Validate(message, format)
}

// SupportedDirections reports the format pairs Transform accepts.
func (e *Engine) SupportedDirections() []Direction {
	out := make([]Direction, len(directions))
	copy(out, directions)
	return out
}

// SupportedFormats returns a copy of the configured format table.
func (e *Engine) SupportedFormats() map[string]string {
	out := make(map[string]string, len(e.settings.SupportedFormats))
	for k, v := range e.settings.SupportedFormats {
		out[k] = v
	}
	return out
}

func (e *Engine) Version() string {
	return e.settings.Version
}

func (e *Engine) supports(source, target string) bool {
	for _, d := range directions {
		if d.Source == source && d.Target == target {
			return true
		}
	}
	return false
}
