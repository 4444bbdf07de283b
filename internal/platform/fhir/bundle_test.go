package fhir

import (
	"encoding/json"
	"testing"
)

func TestNewCollectionBundle(t *testing.T) {
	ts := "2024-03-19T10:30:00"
	appt := &Appointment{ResourceType: "Appointment", ID: "789"}

	b := NewCollectionBundle("123456", &ts, appt)

	if b.ResourceType != "Bundle" {
		t.Errorf("expected resourceType Bundle, got %s", b.ResourceType)
	}
	if b.Type != BundleTypeCollection {
		t.Errorf("expected type collection, got %s", b.Type)
	}
	if b.ID != "123456" {
		t.Errorf("expected id 123456, got %s", b.ID)
	}
	if b.Timestamp == nil || *b.Timestamp != ts {
		t.Errorf("expected timestamp %s, got %v", ts, b.Timestamp)
	}
	if len(b.Entry) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(b.Entry))
	}

	appts := b.Appointments()
	if len(appts) != 1 || appts[0] != appt {
		t.Errorf("expected Appointments() to return the wrapped appointment")
	}
}

func TestBundle_JSONKeyOrder(t *testing.T) {
	b := NewCollectionBundle("1", nil)
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	want := `{"resourceType":"Bundle","type":"collection","id":"1","timestamp":null}`
	if string(data) != want {
		t.Errorf("unexpected JSON:\n%s\nwant\n%s", data, want)
	}
}
