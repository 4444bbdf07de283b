package scheduling

// ParsedMessage holds the records extracted from one HL7 scheduling message.
// A nil pointer means the segment was absent or could not be parsed.
type ParsedMessage struct {
	MessageType string
	MessageID   string
	Timestamp   string
	Patient     *Patient
	Scheduling  *Scheduling
	Agenda      *Agenda
	Location    *Location
	// Segments lists the segment kinds that produced a record, in order of first
	// appearance.
	Segments []string
}

// Patient is read from PID.
type Patient struct {
	ID        string
	Name      PersonName
	BirthDate *string
	Gender    *string
}

type PersonName struct {
	Family string
	Given  *string
}

// Display renders the name as "family, given", or just the family name when
// no given name was sent.
func (n PersonName) Display() string {
	if n.Given == nil || *n.Given == "" {
		return n.Family
	}
	return n.Family + ", " + *n.Given
}

// Scheduling is read from SCH.
type Scheduling struct {
	AppointmentID string
	Service       Service
	// Duration is the minutes count as an integer string.
	Duration      string
	StartDateTime string
	Creator       Creator
	Status        string
}

type Service struct {
	Code string
	Name string
}

type Creator struct {
	ID   string
	Name string
}

// Agenda is the scheduled resource read from AIG.
type Agenda struct {
	ID   string
	Name string
}

// Location is read from AIL.
type Location struct {
	ID      string
	Display string
}

func strPtr(s string) *string { return &s }
