package fhir

// Bundle types used by the gateway.
const (
	BundleTypeCollection = "collection"
)

// Bundle represents a FHIR Bundle resource. Timestamp is null when the
// message timestamp could not be normalized.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	Type         string        `json:"type"`
	ID           string        `json:"id,omitempty"`
	Timestamp    *string       `json:"timestamp"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

type BundleEntry struct {
	FullURL  string      `json:"fullUrl,omitempty"`
	Resource interface{} `json:"resource,omitempty"`
}

// NewCollectionBundle creates a collection Bundle wrapping resources in order.
func NewCollectionBundle(id string, timestamp *string, resources ...interface{}) *Bundle {
	entries := make([]BundleEntry, len(resources))
	for i, r := range resources {
		entries[i] = BundleEntry{Resource: r}
	}
	return &Bundle{
		ResourceType: "Bundle",
		Type:         BundleTypeCollection,
		ID:           id,
		Timestamp:    timestamp,
		Entry:        entries,
	}
}

// Appointments returns the Appointment resources held by the bundle.
func (b *Bundle) Appointments() []*Appointment {
	var out []*Appointment
	for _, e := range b.Entry {
		if a, ok := e.Resource.(*Appointment); ok {
			out = append(out, a)
		}
	}
	return out
}
