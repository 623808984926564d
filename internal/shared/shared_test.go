package shared

import (
	"bytes"
	"strings"
	"testing"
)

func TestShared(t *testing.T) {
	t.Run("NewLogger Writes To Provided Writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain 'hello', got %s", buf.String())
		}
	})

	t.Run("GenerateID Produces Unique IDs", func(t *testing.T) {
		a := GenerateID()
		b := GenerateID()

		if a == "" || b == "" {
			t.Error("expected non-empty IDs")
		}
		if a == b {
			t.Errorf("expected unique IDs, got %s twice", a)
		}
	})

	t.Run("MarshalJSON Pretty", func(t *testing.T) {
		data, err := MarshalJSON(map[string]int{"n": 1}, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(data), "\n") {
			t.Error("expected indented output")
		}
	})
}
