package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"widealign/pkg/errors"
)

func runGap(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	cmd := c.gapCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGapCommand(t *testing.T) {
	out, err := runGap(t, "--line", "400", "--view", "1000", "300", "700", "1400")
	if err != nil {
		t.Fatalf("gap command error = %v", err)
	}

	// One row per width, with the piecewise results: 0, 150, clamped 300.
	tests := []struct {
		width string
		gap   string
	}{
		{width: "300", gap: "0"},
		{width: "700", gap: "150"},
		{width: "1400", gap: "300"},
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(tests)+1 {
		t.Fatalf("output lines = %d, want %d:\n%s", len(lines), len(tests)+1, out)
	}
	for i, tt := range tests {
		row := lines[i+1]
		if !strings.Contains(row, tt.width) || !strings.Contains(row, tt.gap) {
			t.Errorf("row %d = %q, want width %s and gap %s", i, row, tt.width, tt.gap)
		}
	}
}

func TestGapCommandFractionalResult(t *testing.T) {
	out, err := runGap(t, "--line", "400", "--view", "1000", "701")
	if err != nil {
		t.Fatalf("gap command error = %v", err)
	}
	if !strings.Contains(out, "150.5") {
		t.Errorf("output missing fractional gap 150.5:\n%s", out)
	}
}

func TestGapCommandInvalidWidth(t *testing.T) {
	_, err := runGap(t, "--line", "400", "--view", "1000", "wide")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("gap command error = %v, want INVALID_INPUT", err)
	}
}

func TestGapCommandNegativeWidth(t *testing.T) {
	_, err := runGap(t, "--line", "400", "--view", "1000", "--", "-5")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("gap command error = %v, want INVALID_INPUT", err)
	}
}
