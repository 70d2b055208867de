package ffsm

import (
	"context"

	"github.com/pkg/errors"
)

var ErrNotRegistredTransition = errors.New("not registred transition")

type State string

func (s State) String() string { return string(s) }

func (s State) Match(in State) bool { return s == in }

type Payload interface{}

// CallbackFunc executed on transition into the destination state.
// An error keeps the machine in the source state.
type CallbackFunc func(ctx context.Context, payload Payload) (context.Context, error)

type stackKey struct {
	src State
	dst State
}

type transition struct {
	cb   CallbackFunc
	name string
}

type Stack map[stackKey]transition

func (s Stack) Add(src, dst State, cb CallbackFunc, name string) Stack {
	key := stackKey{src: src, dst: dst}
	if _, ok := s[key]; ok {
		panic("transition is registered: " + name)
	}
	s[key] = transition{cb: cb, name: name}
	return s
}

func MachineFrom(s Stack, state *State) *Machine {
	return &Machine{s: s, state: state}
}

type Machine struct {
	s     Stack
	state *State
}

func (m *Machine) State() State { return *m.state }

// Dispatch transitions the machine from the current state to dst.
// The current state advances only if the transition callback succeeds.
func (m *Machine) Dispatch(ctx context.Context, dst State, payload Payload) error {
	tr, ok := m.s[stackKey{src: *m.state, dst: dst}]
	if !ok {
		return errors.Wrapf(ErrNotRegistredTransition, "%s>%s", *m.state, dst)
	}
	if _, err := tr.cb(ctx, payload); err != nil {
		return err
	}
	*m.state = dst
	return nil
}
