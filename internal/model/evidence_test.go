package model

import (
	"errors"
	"reflect"
	"testing"
)

func testItems() []EvidenceItem {
	return []EvidenceItem{
		{ID: "E1", URL: "https://a.example/1"},
		{ID: "E2", URL: "https://b.example/2"},
		{ID: "E10", URL: "https://c.example/10"},
	}
}

func TestSortEvidenceIDs(t *testing.T) {
	got := SortEvidenceIDs([]string{"E10", "E2", "E1", "E2"})
	want := []string{"E1", "E2", "E10"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNewFinding_UnknownEvidence(t *testing.T) {
	_, err := NewFinding("claim", VerdictSupported, []string{"E1", "E7"}, testItems())
	if !errors.Is(err, ErrUnknownEvidence) {
		t.Fatalf("expected ErrUnknownEvidence, got %v", err)
	}
}

func TestNewFinding_SortsIDs(t *testing.T) {
	f, err := NewFinding("claim", VerdictContested, []string{"E10", "E1"}, testItems())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(f.EvidenceIDs, []string{"E1", "E10"}) {
		t.Errorf("unexpected ids: %v", f.EvidenceIDs)
	}
}

func TestNewEvidenceBundle(t *testing.T) {
	items := testItems()

	if _, err := NewEvidenceBundle(append(items, EvidenceItem{ID: "E1"}), nil, VerdictInsufficient); err == nil {
		t.Error("expected error for duplicate ids")
	}

	bad := []Finding{{Claim: "c", Verdict: VerdictSupported, EvidenceIDs: []string{"E3"}}}
	if _, err := NewEvidenceBundle(items, bad, VerdictSupported); !errors.Is(err, ErrUnknownEvidence) {
		t.Errorf("expected ErrUnknownEvidence, got %v", err)
	}

	good := []Finding{{Claim: "c", Verdict: VerdictContested, EvidenceIDs: []string{"E2"}}}
	b, err := NewEvidenceBundle(items, good, VerdictContested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.HasContested() {
		t.Error("expected contested bundle")
	}
	if it, ok := b.Item("E10"); !ok || it.URL != "https://c.example/10" {
		t.Errorf("lookup failed: %+v %v", it, ok)
	}
	if _, ok := b.Item("E4"); ok {
		t.Error("expected missing item")
	}
}

func TestEmptyBundle(t *testing.T) {
	b := EmptyBundle()
	if !b.IsEmpty() || b.OverallVerdict != VerdictInsufficient {
		t.Errorf("unexpected empty bundle: %+v", b)
	}
	var nilBundle *EvidenceBundle
	if !nilBundle.IsEmpty() {
		t.Error("nil bundle should be empty")
	}
}

func TestFallbackAnswer(t *testing.T) {
	tests := []struct {
		reason FallbackReason
		text   string
	}{
		{FallbackNoEvidence, NoEvidenceMessage},
		{FallbackGeneratorUnavailable, GeneratorUnavailableMessage},
		{FallbackInvalidCitations, InvalidCitationsMessage},
	}
	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			a := FallbackAnswer(tt.reason)
			if a.Text != tt.text {
				t.Errorf("unexpected text %q", a.Text)
			}
			if a.Confidence != 0 || a.Valid || len(a.Citations) != 0 {
				t.Errorf("fallback must have zero confidence and no citations: %+v", a)
			}
		})
	}
}
