package scheduling

import (
	"strconv"
	"strings"

	"github.com/ehr/gateway/internal/platform/hl7v2"
)

// Segment kinds read by the gateway.
const (
	KindHeader   = "MSH"
	KindPatient  = "PID"
	KindSchedule = "SCH"
	KindResource = "AIG"
	KindLocation = "AIL"
)

// Field positions as indexes into hl7v2.Segment.Fields.
const (
	pidIdentifier = 3
	pidName       = 5
	pidBirthDate  = 7
	pidGender     = 8

	schPlacerID = 2
	schService  = 6
	schTiming   = 11

	// Components of the SCH timing block.
	timingDuration = 2
	timingStart    = 3

	aigResource = 3
	ailLocation = 2
)

// The creator is carried in the second-to-last SCH field rather than at a
// fixed position. Senders that append or drop trailing fields shift it, so the
// lookup only applies to segments that are long enough to carry it.
const (
	creatorOffsetFromEnd = 2
	creatorMinFields     = 27
)

const (
	defaultDurationMinutes = "30"
	statusBooked           = "booked"
	locationDisplayPrefix  = "Room "
)

// header is the typed view of MSH used by the aggregator.
type header struct {
	Type      string
	ControlID string
	Timestamp string
}

func parseHeader(seg hl7v2.Segment) header {
	h := hl7v2.ReadHeader(seg)
	return header{
		Type:      h.Type,
		ControlID: h.ControlID,
		Timestamp: h.Timestamp,
	}
}

func parsePatient(seg hl7v2.Segment) (*Patient, error) {
	if seg.Len() <= pidName {
		return nil, malformed(seg, "PID-3 and PID-5 are required")
	}

	p := &Patient{
		ID: component(seg, pidIdentifier, 0),
		Name: PersonName{
			Family: component(seg, pidName, 0),
		},
	}
	if given, ok := seg.Component(pidName, 1); ok {
		p.Name.Given = strPtr(strings.TrimSpace(given))
	}
	if v, ok := seg.Field(pidBirthDate); ok {
		p.BirthDate = strPtr(strings.TrimSpace(v))
	}
	if v, ok := seg.Field(pidGender); ok {
		p.Gender = strPtr(strings.TrimSpace(v))
	}
	return p, nil
}

func parseScheduling(seg hl7v2.Segment) (*Scheduling, error) {
	s := &Scheduling{
		AppointmentID: component(seg, schPlacerID, 0),
		Service: Service{
			Code: component(seg, schService, 0),
			Name: component(seg, schService, 1),
		},
		StartDateTime: component(seg, schTiming, timingStart),
		Status:        statusBooked,
	}

	duration := component(seg, schTiming, timingDuration)
	switch {
	case duration == "" || duration == hl7v2.NotAvailable:
		duration = defaultDurationMinutes
	default:
		if _, err := strconv.Atoi(duration); err != nil {
			return nil, malformed(seg, "duration "+strconv.Quote(duration)+" is not an integer")
		}
	}
	s.Duration = duration

	if seg.Len() >= creatorMinFields {
		at := seg.FromEnd(creatorOffsetFromEnd)
		s.Creator = Creator{
			ID:   component(seg, at, 0),
			Name: component(seg, at, 1),
		}
	}
	return s, nil
}

func parseResource(seg hl7v2.Segment) (*Agenda, error) {
	if seg.Len() <= aigResource {
		return nil, malformed(seg, "AIG-3 is required")
	}
	name := value(seg, aigResource)
	return &Agenda{ID: name, Name: name}, nil
}

func parseLocation(seg hl7v2.Segment) (*Location, error) {
	if seg.Len() <= ailLocation {
		return nil, malformed(seg, "AIL-2 is required")
	}
	id := value(seg, ailLocation)
	return &Location{ID: id, Display: locationDisplayPrefix + id}, nil
}

func value(seg hl7v2.Segment, i int) string {
	v, _ := seg.Field(i)
	return strings.TrimSpace(v)
}

func component(seg hl7v2.Segment, i, j int) string {
	v, _ := seg.Component(i, j)
	return strings.TrimSpace(v)
}
