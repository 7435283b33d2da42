package expr

import (
	"strings"
	"testing"
)

func TestSanitize_SizeLimit(t *testing.T) {
	limit := DefaultMaxExpressionSize

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Sanitize(strings.Repeat("x", tt.inputSize), 0)
			if tt.wantErr && err == nil {
				t.Errorf("Sanitize() expected error for size %d, got nil", tt.inputSize)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Sanitize() unexpected error: %v", err)
			}
		})
	}
}

func TestSanitize_ControlChars(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Plain", "x**2 + 1", false},
		{"Safe Controls", "x\n+\t1\r", false},
		{"ANSI Escape", "\x1b[31mx", true},
		{"Null Byte", "x\x00", true},
		{"Bell", "x\x07", true},
		{"Invalid UTF-8", "x\xff", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Sanitize(tt.input, 0)
			if (err != nil) != tt.wantErr {
				t.Errorf("Sanitize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSanitize_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxExpressionSize, "10")

	if err := Sanitize("12345678901", 0); err == nil {
		t.Error("Expected error for input > 10 when env var is set")
	}
	if err := Sanitize("12345", 0); err != nil {
		t.Errorf("Unexpected error for valid input: %v", err)
	}
	// An explicit limit wins over the environment.
	if err := Sanitize("12345678901", 20); err != nil {
		t.Errorf("Unexpected error with explicit limit: %v", err)
	}
}

func TestSanitize_ReportsPosition(t *testing.T) {
	err := Sanitize("x+\x01", 0)
	inv, ok := err.(*invalidf)
	if !ok {
		t.Fatalf("expected *invalidf, got %T", err)
	}
	if inv.pos != 2 {
		t.Errorf("expected position 2, got %d", inv.pos)
	}
}
