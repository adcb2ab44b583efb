package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/tailored-agentic-units/agentbook/core/protocol"
	"github.com/tailored-agentic-units/agentbook/tools"
)

func echoHandler(_ context.Context, args json.RawMessage) (tools.Result, error) {
	return tools.Result{Content: string(args)}, nil
}

func TestRegistry_Register_EmptyName(t *testing.T) {
	reg := tools.NewRegistry()
	err := reg.Register(protocol.Tool{}, echoHandler)
	if !errors.Is(err, tools.ErrEmptyName) {
		t.Errorf("Register() error = %v, want ErrEmptyName", err)
	}
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	reg := tools.NewRegistry()
	tool := protocol.Tool{Name: "vote"}

	if err := reg.Register(tool, echoHandler); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register(tool, echoHandler); !errors.Is(err, tools.ErrAlreadyExists) {
		t.Errorf("second Register() error = %v, want ErrAlreadyExists", err)
	}
}

func TestRegistry_Replace(t *testing.T) {
	reg := tools.NewRegistry()
	tool := protocol.Tool{Name: "vote"}

	if err := reg.Replace(tool, echoHandler); !errors.Is(err, tools.ErrNotFound) {
		t.Errorf("Replace() before Register error = %v, want ErrNotFound", err)
	}

	if err := reg.Register(tool, echoHandler); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	replaced := func(context.Context, json.RawMessage) (tools.Result, error) {
		return tools.Result{Content: "replaced"}, nil
	}
	if err := reg.Replace(tool, replaced); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	result, err := reg.Execute(context.Background(), "vote", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Content != "replaced" {
		t.Errorf("Content = %q, want replaced", result.Content)
	}
}

func TestRegistry_Execute_UnknownToolIsResult(t *testing.T) {
	reg := tools.NewRegistry()

	result, err := reg.Execute(context.Background(), "missing", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil (unknown tools feed back)", err)
	}
	if !result.IsError {
		t.Error("IsError = false for unknown tool")
	}
	if result.Content != "Unknown tool: missing" {
		t.Errorf("Content = %q", result.Content)
	}
}

func TestRegistry_Execute_HandlerError(t *testing.T) {
	reg := tools.NewRegistry()
	boom := errors.New("boom")
	if err := reg.Register(protocol.Tool{Name: "bad"}, func(context.Context, json.RawMessage) (tools.Result, error) {
		return tools.Result{}, boom
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := reg.Execute(context.Background(), "bad", nil)
	if !errors.Is(err, boom) {
		t.Errorf("Execute() error = %v, want wrapped boom", err)
	}
}

func TestRegistry_List(t *testing.T) {
	reg := tools.NewRegistry()
	for _, name := range []string{"a", "b", "c"} {
		if err := reg.Register(protocol.Tool{Name: name}, echoHandler); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}

	if got := len(reg.List()); got != 3 {
		t.Errorf("List() = %d tools, want 3", got)
	}
}

func TestErrorf(t *testing.T) {
	r := tools.Errorf("bad value: %d", 7)
	if !r.IsError {
		t.Error("IsError = false")
	}
	if r.Content != "bad value: 7" {
		t.Errorf("Content = %q", r.Content)
	}
}
