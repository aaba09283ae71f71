package audit

import (
	"strings"
	"testing"
)

func TestBuildBaseQueryNumbersPlaceholders(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", Filter{Action: ActionAttemptRecord, ActorID: 9})
	if !strings.Contains(query, "action = $1") || !strings.Contains(query, "actor_user_id = $2") {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 2 || args[0] != ActionAttemptRecord || args[1] != int64(9) {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildBaseQueryWithoutFilter(t *testing.T) {
	query, args := buildBaseQuery("SELECT id", Filter{})
	if strings.Contains(query, "$") || len(args) != 0 {
		t.Fatalf("expected no placeholders, got %s %v", query, args)
	}
}

func TestMarshalOptional(t *testing.T) {
	raw, err := marshalOptional(nil)
	if err != nil || raw != nil {
		t.Fatalf("expected nil payload, got %s %v", raw, err)
	}
	raw, err = marshalOptional(map[string]int{"attemptNo": 2})
	if err != nil || string(raw) != `{"attemptNo":2}` {
		t.Fatalf("unexpected payload %s %v", raw, err)
	}
}
