package main

import (
	"encoding/json"
	"testing"

	"subforge/internal/services"
)

func TestPlanCommandTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "plan", "-d", "10:00", "-s", "5m")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "Mode: pattern, 2 segments over 00:10:00,000")
	requireContains(t, out, "chunk-0001_000000_000500")
	requireContains(t, out, "chunk-0002_000500_001000")
}

func TestPlanCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "plan", "-d", "600000", "--ms", "-c", "1:00,3:00", "--format", "json")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	var view planView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode plan json: %v\n%s", err, out)
	}
	if view.Mode != "checkpoints" || len(view.Segments) != 3 {
		t.Fatalf("unexpected plan: %+v", view)
	}
	if view.Segments[1].Start != 60000 || view.Segments[1].End != 180000 {
		t.Fatalf("unexpected middle segment: %+v", view.Segments[1])
	}
	if len(view.Boundaries) != 2 {
		t.Fatalf("expected interior boundaries, got %v", view.Boundaries)
	}
}

func TestPlanCommandYAMLWarnings(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "plan", "-d", "60", "-s", "0-40,30-50", "--format", "yaml")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "mode: ranges")
	requireContains(t, out, "kind: range_overlap")
}

func TestPlanCommandProbesInput(t *testing.T) {
	env := setupCLITestEnv(t)
	input := writeInput(t, env)

	out, _, err := runCLI(t, env, "plan", "-i", input)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "Mode: whole, 1 segments over 00:10:00,000")
}

func TestPlanCommandErrors(t *testing.T) {
	env := setupCLITestEnv(t)

	tests := map[string][]string{
		"no duration":       {"plan", "-s", "5m"},
		"bad format":        {"plan", "-d", "10", "--format", "xml"},
		"bad milliseconds":  {"plan", "-d", "1:00", "--ms"},
		"checkpoint beyond": {"plan", "-d", "10", "-c", "20"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := runCLI(t, env, args...)
			requireExitCode(t, err, services.ExitInvalidInput)
		})
	}
}
