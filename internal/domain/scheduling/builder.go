package scheduling

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ehr/gateway/internal/platform/fhir"
)

const (
	IdentifierSystem        = "Doctolib"
	AgendaExtensionURL      = "http://doctolib.com/fhir/StructureDefinition/agenda"
	ParticipationTypeSystem = "http://terminology.hl7.org/CodeSystem/v3-ParticipationType"
	participantAccepted     = "accepted"
)

// Participant role codes from v3-ParticipationType.
const (
	RoleAttender         = "ATND"
	RolePrimaryPerformer = "PPRF"
	RoleReferrer         = "REF"
	RoleLocation         = "LOC"
)

// Builder turns a ParsedMessage into a FHIR collection Bundle.
type Builder struct {
	log zerolog.Logger
}

func NewBuilder(logger zerolog.Logger) *Builder {
	return &Builder{log: logger}
}

// Build returns a Bundle holding one Appointment. It fails with
// ErrMissingRequiredField when the message has no SCH appointment id, and
// never returns a partial bundle.
func (b *Builder) Build(msg *ParsedMessage) (*fhir.Bundle, error) {
	if msg == nil || msg.Scheduling == nil {
		return nil, fmt.Errorf("%w: SCH segment", ErrMissingRequiredField)
	}
	sch := msg.Scheduling
	if sch.AppointmentID == "" {
		return nil, fmt.Errorf("%w: SCH-2 appointment id", ErrMissingRequiredField)
	}

	minutes, err := strconv.Atoi(sch.Duration)
	if err != nil {
		return nil, fmt.Errorf("%w: SCH-11 duration %q is not an integer", ErrMalformedSegment, sch.Duration)
	}

	agendaName := ""
	if msg.Agenda != nil {
		agendaName = msg.Agenda.Name
	}
	created := normalizeTimestamp(b.log, msg.Timestamp)

	appt := &fhir.Appointment{
		ResourceType: "Appointment",
		ID:           sch.AppointmentID,
		Identifier: []fhir.Identifier{{
			System: IdentifierSystem,
			Value:  sch.AppointmentID,
		}},
		Status: statusBooked,
		ServiceType: []fhir.ServiceType{{
			Coding: []fhir.ServiceCoding{{Code: sch.Service.Code, Display: sch.Service.Name}},
			Text:   agendaName,
		}},
		Start:           normalizeTimestamp(b.log, sch.StartDateTime),
		MinutesDuration: minutes,
		Participant:     participants(msg),
		Created:         created,
		Extension: []fhir.Extension{{
			URL:         AgendaExtensionURL,
			ValueString: agendaName,
		}},
	}

	return fhir.NewCollectionBundle(msg.MessageID, copyPtr(created), appt), nil
}

// participants lists actors in a fixed order: patient, agenda, creator,
// location. Absent actors are left out.
func participants(msg *ParsedMessage) []fhir.AppointmentParticipant {
	out := []fhir.AppointmentParticipant{}
	if p := msg.Patient; p != nil {
		out = append(out, participant("Patient", p.ID, p.Name.Display(), RoleAttender))
	}
	if a := msg.Agenda; a != nil && a.Name != "" {
		out = append(out, participant("Organization", a.ID, a.Name, RolePrimaryPerformer))
	}
	if c := msg.Scheduling.Creator; c.ID != "" {
		out = append(out, participant("User", c.ID, c.Name, RoleReferrer))
	}
	if l := msg.Location; l != nil {
		out = append(out, participant("Location", l.ID, l.Display, RoleLocation))
	}
	return out
}

func participant(resourceType, id, display, role string) fhir.AppointmentParticipant {
	return fhir.AppointmentParticipant{
		Actor: fhir.Reference{
			Reference: fhir.FormatReference(resourceType, id),
			Display:   display,
		},
		Status: participantAccepted,
		Type: []fhir.CodeableConcept{{
			Coding: []fhir.Coding{{System: ParticipationTypeSystem, Code: role}},
		}},
	}
}

func copyPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
