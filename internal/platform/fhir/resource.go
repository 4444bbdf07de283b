package fhir

type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code"`
	Display string `json:"display,omitempty"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

type Reference struct {
	Reference string `json:"reference,omitempty"`
	Type      string `json:"type,omitempty"`
	Display   string `json:"display,omitempty"`
}

type Identifier struct {
	Use    string `json:"use,omitempty"`
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Extension carries a single string value; the gateway emits no other kind.
type Extension struct {
	URL         string `json:"url"`
	ValueString string `json:"valueString"`
}

// Appointment is the subset of the FHIR R4 Appointment resource produced by
// the gateway. Start and Created are null when the source timestamp could not
// be normalized.
type Appointment struct {
	ResourceType    string                   `json:"resourceType"`
	ID              string                   `json:"id"`
	Identifier      []Identifier             `json:"identifier"`
	Status          string                   `json:"status"`
	ServiceType     []ServiceType            `json:"serviceType"`
	Start           *string                  `json:"start"`
	MinutesDuration int                      `json:"minutesDuration"`
	Participant     []AppointmentParticipant `json:"participant"`
	Created         *string                  `json:"created"`
	Extension       []Extension              `json:"extension"`
}

// ServiceType is the Appointment.serviceType concept. Unlike CodeableConcept
// its text and coding display are always written, empty or not.
type ServiceType struct {
	Coding []ServiceCoding `json:"coding"`
	Text   string          `json:"text"`
}

type ServiceCoding struct {
	Code    string `json:"code"`
	Display string `json:"display"`
}

// AppointmentParticipant links an Appointment to one actor.
type AppointmentParticipant struct {
	Actor  Reference         `json:"actor"`
	Status string            `json:"status"`
	Type   []CodeableConcept `json:"type"`
}

// FormatReference builds a relative reference such as "Patient/123".
func FormatReference(resourceType, id string) string {
	return resourceType + "/" + id
}
