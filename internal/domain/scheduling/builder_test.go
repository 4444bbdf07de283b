package scheduling

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehr/gateway/internal/platform/codec"
	"github.com/ehr/gateway/internal/platform/fhir"
)

func fullMessage() *ParsedMessage {
	return &ParsedMessage{
		MessageType: "SIU^S12",
		MessageID:   "123456",
		Timestamp:   "20240319103025",
		Patient: &Patient{
			ID:   "12345",
			Name: PersonName{Family: "DOE", Given: strPtr("JOHN")},
		},
		Scheduling: &Scheduling{
			AppointmentID: "789",
			Service:       Service{Code: "CBC", Name: "HEMOGRAMME"},
			Duration:      "45",
			StartDateTime: "202403191400",
			Creator:       Creator{ID: "DR42", Name: "Dr House"},
			Status:        statusBooked,
		},
		Agenda:   &Agenda{ID: "CARDIO", Name: "CARDIO"},
		Location: &Location{ID: "B12", Display: "Room B12"},
	}
}

func build(t *testing.T, msg *ParsedMessage) *fhir.Appointment {
	t.Helper()
	bundle, err := NewBuilder(zerolog.Nop()).Build(msg)
	require.NoError(t, err)
	appts := bundle.Appointments()
	require.Len(t, appts, 1)
	return appts[0]
}

func roles(appt *fhir.Appointment) []string {
	var out []string
	for _, p := range appt.Participant {
		out = append(out, p.Type[0].Coding[0].Code)
	}
	return out
}

func TestBuild_MissingAppointment(t *testing.T) {
	tests := map[string]*ParsedMessage{
		"nil message":   nil,
		"no scheduling": {MessageID: "1", Patient: &Patient{ID: "p"}},
		"empty id":      {MessageID: "1", Scheduling: &Scheduling{Duration: "30"}},
	}

	for name, msg := range tests {
		t.Run(name, func(t *testing.T) {
			bundle, err := NewBuilder(zerolog.Nop()).Build(msg)
			assert.Nil(t, bundle)
			assert.ErrorIs(t, err, ErrMissingRequiredField)
		})
	}
}

func TestBuild_Bundle(t *testing.T) {
	bundle, err := NewBuilder(zerolog.Nop()).Build(fullMessage())
	require.NoError(t, err)

	assert.Equal(t, "Bundle", bundle.ResourceType)
	assert.Equal(t, fhir.BundleTypeCollection, bundle.Type)
	assert.Equal(t, "123456", bundle.ID)
	require.NotNil(t, bundle.Timestamp)
	assert.Equal(t, "2024-03-19T10:30:00", *bundle.Timestamp)
	assert.Len(t, bundle.Entry, 1)
}

func TestBuild_Appointment(t *testing.T) {
	appt := build(t, fullMessage())

	assert.Equal(t, "Appointment", appt.ResourceType)
	assert.Equal(t, "789", appt.ID)
	assert.Equal(t, []fhir.Identifier{{System: "Doctolib", Value: "789"}}, appt.Identifier)
	assert.Equal(t, "booked", appt.Status)
	assert.Equal(t, []fhir.ServiceType{{
		Coding: []fhir.ServiceCoding{{Code: "CBC", Display: "HEMOGRAMME"}},
		Text:   "CARDIO",
	}}, appt.ServiceType)
	require.NotNil(t, appt.Start)
	assert.Equal(t, "2024-03-19T14:00:00", *appt.Start)
	assert.Equal(t, 45, appt.MinutesDuration)
	require.NotNil(t, appt.Created)
	assert.Equal(t, "2024-03-19T10:30:00", *appt.Created)
	assert.Equal(t, []fhir.Extension{{URL: AgendaExtensionURL, ValueString: "CARDIO"}}, appt.Extension)
}

func TestBuild_ParticipantOrder(t *testing.T) {
	appt := build(t, fullMessage())

	require.Len(t, appt.Participant, 4)
	assert.Equal(t, []string{"ATND", "PPRF", "REF", "LOC"}, roles(appt))

	want := []fhir.Reference{
		{Reference: "Patient/12345", Display: "DOE, JOHN"},
		{Reference: "Organization/CARDIO", Display: "CARDIO"},
		{Reference: "User/DR42", Display: "Dr House"},
		{Reference: "Location/B12", Display: "Room B12"},
	}
	for i, p := range appt.Participant {
		assert.Equal(t, want[i], p.Actor)
		assert.Equal(t, "accepted", p.Status)
		assert.Equal(t, ParticipationTypeSystem, p.Type[0].Coding[0].System)
	}
}

func TestBuild_OptionalParticipants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *ParsedMessage)
		want   []string
	}{
		{"no patient", func(m *ParsedMessage) { m.Patient = nil }, []string{"PPRF", "REF", "LOC"}},
		{"no agenda", func(m *ParsedMessage) { m.Agenda = nil }, []string{"ATND", "REF", "LOC"}},
		{"unnamed agenda", func(m *ParsedMessage) { m.Agenda = &Agenda{ID: "X"} }, []string{"ATND", "REF", "LOC"}},
		{"no creator", func(m *ParsedMessage) { m.Scheduling.Creator = Creator{} }, []string{"ATND", "PPRF", "LOC"}},
		{"no location", func(m *ParsedMessage) { m.Location = nil }, []string{"ATND", "PPRF", "REF"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := fullMessage()
			tt.mutate(msg)
			assert.Equal(t, tt.want, roles(build(t, msg)))
		})
	}
}

func TestBuild_NoParticipants(t *testing.T) {
	msg := &ParsedMessage{
		MessageID:  "1",
		Scheduling: &Scheduling{AppointmentID: "789", Duration: "30"},
	}
	appt := build(t, msg)

	assert.NotNil(t, appt.Participant)
	assert.Empty(t, appt.Participant)
	assert.Equal(t, "", appt.ServiceType[0].Text)
	assert.Equal(t, "", appt.Extension[0].ValueString)
}

func TestBuild_EmptyServiceLabelsAreWritten(t *testing.T) {
	msg := fullMessage()
	msg.Agenda = nil
	msg.Scheduling.Service = Service{Code: "CBC"}
	appt := build(t, msg)

	data, err := codec.Marshal(appt.ServiceType)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"coding":[{"code":"CBC","display":""}],"text":""}]`, string(data))
}

func TestBuild_PatientWithoutGivenName(t *testing.T) {
	msg := fullMessage()
	msg.Patient.Name.Given = nil
	appt := build(t, msg)

	assert.Equal(t, "DOE", appt.Participant[0].Actor.Display)
}

func TestBuild_SentinelTimestamps(t *testing.T) {
	msg := fullMessage()
	msg.Timestamp = "NaN"
	msg.Scheduling.StartDateTime = "NaN"

	bundle, err := NewBuilder(zerolog.Nop()).Build(msg)
	require.NoError(t, err)
	appt := bundle.Appointments()[0]

	assert.Nil(t, bundle.Timestamp)
	assert.Nil(t, appt.Start)
	assert.Nil(t, appt.Created)

	data, err := codec.Marshal(bundle)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timestamp":null`)
	assert.Contains(t, string(data), `"start":null`)
	assert.Contains(t, string(data), `"created":null`)
}

func TestBuild_InvalidStartDegradesToNull(t *testing.T) {
	msg := fullMessage()
	msg.Scheduling.StartDateTime = "2024031"
	appt := build(t, msg)

	assert.Nil(t, appt.Start)
}

func TestBuild_UnparsableDuration(t *testing.T) {
	msg := fullMessage()
	msg.Scheduling.Duration = "soon"

	bundle, err := NewBuilder(zerolog.Nop()).Build(msg)
	assert.Nil(t, bundle)
	assert.ErrorIs(t, err, ErrMalformedSegment)
	assert.False(t, IsFatal(err))
}

func TestBuild_BundleAndCreatedAreIndependent(t *testing.T) {
	bundle, err := NewBuilder(zerolog.Nop()).Build(fullMessage())
	require.NoError(t, err)

	appt := bundle.Appointments()[0]
	assert.NotSame(t, bundle.Timestamp, appt.Created)
}
