package shared

import (
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tc := []struct {
		name  string
		input string
	}{
		{name: "calendar date", input: "2024-01-01"},
		{name: "padded", input: "  2024-01-01 "},
		{name: "RFC3339", input: "2024-01-01T13:45:00Z"},
		{name: "milliseconds", input: "2024-01-01T13:45:00.000Z"},
		{name: "datetime", input: "2024-01-01 08:00:00"},
		{name: "slashes", input: "2024/01/01"},
		{name: "US", input: "01/01/2024"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if err != nil {
				t.Fatalf("ParseDate(%q) returned error: %v", tt.input, err)
			}
			if !got.Equal(want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, want)
			}
		})
	}

	t.Run("malformed", func(t *testing.T) {
		for _, input := range []string{"", "yesterday", "2024-13-45"} {
			if _, err := ParseDate(input); !errors.Is(err, ErrMalformedDate) {
				t.Errorf("ParseDate(%q) error = %v, want ErrMalformedDate", input, err)
			}
		}
	})
}

func TestSameDate(t *testing.T) {
	a := time.Date(2024, 2, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if !SameDate(a, b) {
		t.Error("expected same calendar date")
	}
	if SameDate(a, b.AddDate(0, 0, 1)) {
		t.Error("expected different calendar dates")
	}
	if FormatDate(a) != "2024-02-01" {
		t.Errorf("FormatDate() = %s", FormatDate(a))
	}
	if FormatDate(time.Time{}) != "" {
		t.Error("zero time should format empty")
	}
}

func TestParseLogLevel(t *testing.T) {
	tc := map[string]log.Level{
		"debug":   log.DebugLevel,
		"WARN":    log.WarnLevel,
		" error ": log.ErrorLevel,
		"":        log.InfoLevel,
		"chatty":  log.InfoLevel,
	}
	for input, want := range tc {
		if got := ParseLogLevel(input); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
