package fhir

import (
	"encoding/json"
	"testing"
)

func TestNewOperationOutcome(t *testing.T) {
	oo := NewOperationOutcome("error", "processing", "something went wrong")

	if oo.ResourceType != "OperationOutcome" {
		t.Errorf("expected resourceType OperationOutcome, got %s", oo.ResourceType)
	}
	if len(oo.Issue) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(oo.Issue))
	}
	if oo.Issue[0].Severity != "error" {
		t.Errorf("expected severity error, got %s", oo.Issue[0].Severity)
	}
	if oo.Issue[0].Code != "processing" {
		t.Errorf("expected code processing, got %s", oo.Issue[0].Code)
	}
	if oo.Issue[0].Diagnostics != "something went wrong" {
		t.Errorf("expected diagnostics 'something went wrong', got %s", oo.Issue[0].Diagnostics)
	}
}

func TestOutcomeHelpers(t *testing.T) {
	tests := []struct {
		name     string
		outcome  *OperationOutcome
		severity string
		code     string
	}{
		{"required", RequiredFieldOutcome("SCH-2 missing"), IssueSeverityError, IssueTypeRequired},
		{"invalid", InvalidOutcome("bad body"), IssueSeverityError, IssueTypeInvalid},
		{"not supported", NotSupportedOutcome("FHIR to HL7"), IssueSeverityError, IssueTypeNotSupported},
		{"internal", InternalErrorOutcome("boom"), IssueSeverityFatal, IssueTypeException},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.outcome.Issue[0].Severity != tt.severity {
				t.Errorf("expected severity %s, got %s", tt.severity, tt.outcome.Issue[0].Severity)
			}
			if tt.outcome.Issue[0].Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.outcome.Issue[0].Code)
			}
			if !tt.outcome.HasErrors() {
				t.Error("expected HasErrors() to be true")
			}
		})
	}
}

func TestHasErrors_Information(t *testing.T) {
	oo := NewOperationOutcome(IssueSeverityInformation, IssueTypeProcessing, "ok")
	if oo.HasErrors() {
		t.Error("expected HasErrors() to be false for information")
	}
}

func TestOperationOutcome_JSON(t *testing.T) {
	data, err := json.Marshal(RequiredFieldOutcome("missing"))
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	want := `{"resourceType":"OperationOutcome","issue":[{"severity":"error","code":"required","diagnostics":"missing"}]}`
	if string(data) != want {
		t.Errorf("unexpected JSON:\n%s\nwant\n%s", data, want)
	}
}
