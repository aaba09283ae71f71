package db

import "testing"

func TestParseSeed(t *testing.T) {
	raw := []byte(`
criteria:
  - name: EXCLUDE_SELF
    default: true
  - name: " MATCH_WINGS "
    displayName: Match wings
    default: false
`)
	file, err := ParseSeed(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(file.Criteria) != 2 {
		t.Fatalf("expected 2 criteria, got %d", len(file.Criteria))
	}
	if file.Criteria[0].DisplayName != "EXCLUDE_SELF" {
		t.Fatalf("expected display name fallback, got %q", file.Criteria[0].DisplayName)
	}
	if file.Criteria[1].Name != "MATCH_WINGS" || file.Criteria[1].Default {
		t.Fatalf("unexpected second criterion: %+v", file.Criteria[1])
	}
}

func TestParseSeedRejectsDuplicates(t *testing.T) {
	raw := []byte(`
criteria:
  - name: EXCLUDE_SELF
  - name: EXCLUDE_SELF
`)
	if _, err := ParseSeed(raw); err == nil {
		t.Fatal("expected duplicate error")
	}
}

func TestParseSeedRejectsMissingName(t *testing.T) {
	if _, err := ParseSeed([]byte("criteria:\n  - default: true\n")); err == nil {
		t.Fatal("expected missing name error")
	}
}
