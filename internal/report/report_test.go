package report

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestParseColorMode(t *testing.T) {
	cases := map[string]ColorMode{"": ColorAuto, "auto": ColorAuto, "always": ColorAlways, "never": ColorNever}
	for in, want := range cases {
		got, err := ParseColorMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseColorMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseColorMode("bogus"); err == nil {
		t.Fatal("expected an error for an unknown color mode")
	}
}

func TestLineWritesTimestampedMessage(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, ^uintptr(0), ColorNever)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	l.Line(now, "hello %s", "world")
	if !strings.Contains(buf.String(), "hello world") {
		t.Fatalf("expected message in output, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "2026-01-02") {
		t.Fatalf("expected a formatted timestamp, got %q", buf.String())
	}
}

func TestErrorColorizesOnlyWhenColored(t *testing.T) {
	var plain, colored bytes.Buffer
	now := time.Now()

	NewLogger(&plain, ^uintptr(0), ColorNever).Error(now, "boom")
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatal("expected no ANSI escape with ColorNever")
	}

	NewLogger(&colored, ^uintptr(0), ColorAlways).Error(now, "boom")
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatal("expected an ANSI escape with ColorAlways")
	}
}

func TestSummaryHumanizesStepCount(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, ^uintptr(0), ColorNever)
	l.Summary(time.Now(), 12345, time.Now().Add(-2*time.Second))
	if !strings.Contains(buf.String(), "12,345") {
		t.Fatalf("expected a humanized step count, got %q", buf.String())
	}
}
