package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"jwtToken", "abc", "userId", 7, "JWT_SECRET", "s3cr3t"})
	if len(out) != 6 {
		t.Fatalf("expected 6 entries, got %d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("expected token redacted, got %v", out[1])
	}
	if out[3] != 7 {
		t.Fatalf("expected userId untouched, got %v", out[3])
	}
	if out[5] != "[REDACTED]" {
		t.Fatalf("expected secret redacted, got %v", out[5])
	}
}

func TestSanitizeKVsKeepsDanglingKey(t *testing.T) {
	out := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestOrNopNeverNil(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("expected a logger")
	}
}
