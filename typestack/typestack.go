package typestack

import (
	"github.com/wasabi-go/wasabi/errors"
	"github.com/wasabi-go/wasabi/wasm"
)

// frame records a block's entry depth and its declared block type, so
// EndBlock can trim back to that depth regardless of what the block body
// pushed.
type frame struct {
	floor     int
	blockType int32
}

// Stack is the abstract operand-type stack for a single function body.
type Stack struct {
	values []wasm.ValType
	frames []frame
}

// New returns an empty type stack.
func New() *Stack {
	return &Stack{}
}

// Push pushes a value type.
func (s *Stack) Push(t wasm.ValType) {
	s.values = append(s.values, t)
}

// Pop removes and returns the top value type.
func (s *Stack) Pop() (wasm.ValType, error) {
	if len(s.values) == 0 || len(s.values) <= s.floor() {
		return 0, errors.OutOfBounds(errors.PhaseTypeStack, nil, len(s.values), s.floor())
	}
	t := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]
	return t, nil
}

// Peek returns the top value type without removing it.
func (s *Stack) Peek() (wasm.ValType, error) {
	if len(s.values) == 0 || len(s.values) <= s.floor() {
		return 0, errors.OutOfBounds(errors.PhaseTypeStack, nil, len(s.values), s.floor())
	}
	return s.values[len(s.values)-1], nil
}

// PeekN returns the top n value types, in program (bottom-to-top) order,
// without removing them.
func (s *Stack) PeekN(n int) ([]wasm.ValType, error) {
	if len(s.values) < n || len(s.values)-n < s.floor() {
		return nil, errors.OutOfBounds(errors.PhaseTypeStack, nil, len(s.values), n)
	}
	out := make([]wasm.ValType, n)
	copy(out, s.values[len(s.values)-n:])
	return out, nil
}

// Op pops ins (asserting they match, topmost last) and pushes outs. ins and
// outs are given in program order: ins[0] was pushed first (deepest).
func (s *Stack) Op(ins, outs []wasm.ValType) error {
	for i := len(ins) - 1; i >= 0; i-- {
		got, err := s.Pop()
		if err != nil {
			return err
		}
		if got != ins[i] {
			return errors.TypeMismatch(errors.PhaseTypeStack, nil,
				"expected "+ins[i].String()+" on operand stack, found "+got.String())
		}
	}
	for _, o := range outs {
		s.Push(o)
	}
	return nil
}

// BeginBlock opens a new block scope with the given declared block type
// (interpreted the same way as wasm.BlockImm.Type).
func (s *Stack) BeginBlock(blockType int32) {
	s.frames = append(s.frames, frame{floor: len(s.values), blockType: blockType})
}

// EndBlock closes the innermost block scope, discarding any values pushed
// inside it above its floor, and returns its declared block type.
func (s *Stack) EndBlock() (int32, error) {
	if len(s.frames) == 0 {
		return 0, errors.OutOfBounds(errors.PhaseTypeStack, nil, 0, 0)
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	if len(s.values) > f.floor {
		s.values = s.values[:f.floor]
	}
	return f.blockType, nil
}

// Depth returns the number of values above the current block's floor.
func (s *Stack) Depth() int {
	return len(s.values) - s.floor()
}

func (s *Stack) floor() int {
	if len(s.frames) == 0 {
		return 0
	}
	return s.frames[len(s.frames)-1].floor
}
