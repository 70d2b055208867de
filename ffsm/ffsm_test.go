package ffsm

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

func TestMachine_Dispatch(t *testing.T) {
	stack := make(Stack)
	var log []string
	stack.Add(
		State("draft"),
		State("wait"),
		func(ctx context.Context, payload Payload) (context.Context, error) {
			log = append(log, "draft>wait:"+payload.(string))
			return ctx, nil
		},
		"draft>wait",
	)
	stack.Add(
		State("wait"),
		State("failed"),
		func(ctx context.Context, payload Payload) (context.Context, error) {
			return ctx, errors.New("boom")
		},
		"wait>failed",
	)

	st := State("draft")
	fsm := MachineFrom(stack, &st)

	if err := fsm.Dispatch(context.Background(), State("wait"), "p1"); err != nil {
		t.Fatal(err)
	}
	if st != State("wait") {
		t.Errorf("state = %q, want wait", st)
	}
	if len(log) != 1 || log[0] != "draft>wait:p1" {
		t.Errorf("unexpected callback log: %v", log)
	}

	// callback error keeps the current state
	if err := fsm.Dispatch(context.Background(), State("failed"), nil); err == nil {
		t.Fatal("expected callback error")
	}
	if st != State("wait") {
		t.Errorf("state = %q, want wait after failed callback", st)
	}

	// unknown edge
	err := fsm.Dispatch(context.Background(), State("draft"), nil)
	if errors.Cause(err) != ErrNotRegistredTransition {
		t.Errorf("err = %v, want ErrNotRegistredTransition", err)
	}
}

func TestStack_AddDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate transition")
		}
	}()
	stack := make(Stack)
	cb := func(ctx context.Context, payload Payload) (context.Context, error) { return ctx, nil }
	stack.Add(State("a"), State("b"), cb, "a>b")
	stack.Add(State("a"), State("b"), cb, "a>b")
}
