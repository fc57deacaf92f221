package blockstack

import "github.com/wasabi-go/wasabi/errors"

// Kind identifies the construct that opened a frame.
type Kind int

const (
	KindFunction Kind = iota
	KindBlock
	KindLoop
	KindIf
	KindElse
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindBlock:
		return "block"
	case KindLoop:
		return "loop"
	case KindIf:
		return "if"
	case KindElse:
		return "else"
	default:
		return "?"
	}
}

// Frame is one entry of the block stack: the construct kind and the index,
// within the function body, of the instruction that opened it.
type Frame struct {
	Kind     Kind
	BeginIdx int
}

// Stack is the block-stack for a single function body being instrumented.
// It always starts with a Function frame for instruction index 0.
type Stack struct {
	frames []Frame
}

// New returns a block stack primed with the function's own Function frame.
func New() *Stack {
	return &Stack{frames: []Frame{{Kind: KindFunction, BeginIdx: 0}}}
}

// PushBlock opens a Block frame at instrIdx.
func (s *Stack) PushBlock(instrIdx int) {
	s.frames = append(s.frames, Frame{Kind: KindBlock, BeginIdx: instrIdx})
}

// PushLoop opens a Loop frame at instrIdx.
func (s *Stack) PushLoop(instrIdx int) {
	s.frames = append(s.frames, Frame{Kind: KindLoop, BeginIdx: instrIdx})
}

// PushIf opens an If frame at instrIdx.
func (s *Stack) PushIf(instrIdx int) {
	s.frames = append(s.frames, Frame{Kind: KindIf, BeginIdx: instrIdx})
}

// Else pops the matching If frame and pushes an Else frame at instrIdx. It
// returns the popped If frame, whose BeginIdx is the const argument the
// if->else transition's end_else_hook call carries. It is fatal to
// encounter an else outside of an if.
func (s *Stack) Else(instrIdx int) (Frame, error) {
	if len(s.frames) == 0 || s.frames[len(s.frames)-1].Kind != KindIf {
		return Frame{}, errors.New(errors.PhaseBlockStack, errors.KindInvalidData).
			Detail("else instruction outside of an if frame").Build()
	}
	ifFrame := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	s.frames = append(s.frames, Frame{Kind: KindElse, BeginIdx: instrIdx})
	return ifFrame, nil
}

// End pops and returns the innermost frame, for emitting its paired end_*
// hook. The begin index on the returned Frame is the index to pass to that
// hook.
func (s *Stack) End() (Frame, error) {
	if len(s.frames) == 0 {
		return Frame{}, errors.OutOfBounds(errors.PhaseBlockStack, nil, 0, 0)
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f, nil
}

// Depth returns the number of open frames, including the Function frame.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// LabelToInstrIdx resolves a branch label (depth from the innermost open
// frame) to the instruction index branching to that label should jump to.
// Function yields 0 (function entry); Loop yields its own begin index
// (backward branch to the loop header); Block/If/Else yield their own begin
// index too - callers must treat that as the begin of the target block, not
// its end, and derive any end-relative location themselves.
func (s *Stack) LabelToInstrIdx(label uint32) (int, error) {
	idx := len(s.frames) - 1 - int(label)
	if idx < 0 || idx >= len(s.frames) {
		return 0, errors.OutOfBounds(errors.PhaseBlockStack, nil, int(label), len(s.frames))
	}
	f := s.frames[idx]
	if f.Kind == KindFunction {
		return 0, nil
	}
	return f.BeginIdx, nil
}
