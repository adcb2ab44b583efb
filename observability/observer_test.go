package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/tailored-agentic-units/agentbook/observability"
)

func TestEventType_Subsystem(t *testing.T) {
	tests := []struct {
		name      string
		eventType observability.EventType
		want      string
	}{
		{name: "two segments", eventType: "cycle.start", want: "cycle"},
		{name: "three segments", eventType: "kernel.tool.call", want: "kernel"},
		{name: "runtime persist", eventType: "runtime.persist.error", want: "runtime"},
		{name: "no dot", eventType: "startup", want: "startup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eventType.Subsystem(); got != tt.want {
				t.Errorf("EventType(%q).Subsystem() = %q, want %q", tt.eventType, got, tt.want)
			}
		})
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  slog.Level
	}{
		{name: "verbose maps to Debug", level: observability.LevelVerbose, want: slog.LevelDebug},
		{name: "info maps to Info", level: observability.LevelInfo, want: slog.LevelInfo},
		{name: "warning maps to Warn", level: observability.LevelWarning, want: slog.LevelWarn},
		{name: "error maps to Error", level: observability.LevelError, want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.SlogLevel(); got != tt.want {
				t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestSlogObserver_EmitsSubsystemAndData(t *testing.T) {
	var buf bytes.Buffer
	obs := observability.NewSlogObserver(slog.New(slog.NewJSONHandler(&buf, nil)))

	obs.OnEvent(context.Background(), observability.NewEvent(
		"cycle.complete", observability.LevelInfo, "cycle.Run",
		map[string]any{"cycle": 3},
	))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Unmarshal() error = %v (output %q)", err, buf.String())
	}
	if record["msg"] != "cycle.complete" {
		t.Errorf("msg = %v, want cycle.complete", record["msg"])
	}
	if record["subsystem"] != "cycle" {
		t.Errorf("subsystem = %v, want cycle", record["subsystem"])
	}
	if record["source"] != "cycle.Run" {
		t.Errorf("source = %v, want cycle.Run", record["source"])
	}
	if record["cycle"] != float64(3) {
		t.Errorf("cycle = %v, want 3", record["cycle"])
	}
}

type captureObserver struct {
	events *[]observability.Event
}

func (c *captureObserver) OnEvent(_ context.Context, event observability.Event) {
	*c.events = append(*c.events, event)
}

func TestMultiObserver_FanOutAndNilFiltering(t *testing.T) {
	var events1, events2 []observability.Event
	multi := observability.NewMultiObserver(
		nil,
		&captureObserver{events: &events1},
		nil,
		&captureObserver{events: &events2},
	)

	multi.OnEvent(context.Background(), observability.Event{
		Type:      "kernel.run.start",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "kernel.Run",
	})

	if len(events1) != 1 || len(events2) != 1 {
		t.Fatalf("fan-out delivered %d/%d events, want 1/1", len(events1), len(events2))
	}
	if events1[0].Type != "kernel.run.start" {
		t.Errorf("event type = %q, want kernel.run.start", events1[0].Type)
	}
}
