package blockstack

import "testing"

func TestStack_SimpleBlock(t *testing.T) {
	s := New()
	s.PushBlock(3)

	if s.Depth() != 2 {
		t.Fatalf("Depth = %d, want 2", s.Depth())
	}

	f, err := s.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if f.Kind != KindBlock || f.BeginIdx != 3 {
		t.Errorf("End = %+v, want {Block 3}", f)
	}

	f, err = s.End()
	if err != nil {
		t.Fatalf("End (function): %v", err)
	}
	if f.Kind != KindFunction || f.BeginIdx != 0 {
		t.Errorf("final End = %+v, want {Function 0}", f)
	}
}

func TestStack_IfElse(t *testing.T) {
	s := New()
	s.PushIf(5)

	ifFrame, err := s.Else(9)
	if err != nil {
		t.Fatalf("Else: %v", err)
	}
	if ifFrame.Kind != KindIf || ifFrame.BeginIdx != 5 {
		t.Errorf("Else returned %+v, want {If 5}", ifFrame)
	}

	f, err := s.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if f.Kind != KindElse || f.BeginIdx != 9 {
		t.Errorf("End after else = %+v, want {Else 9}", f)
	}
}

func TestStack_ElseWithoutIf(t *testing.T) {
	s := New()
	s.PushBlock(1)
	if _, err := s.Else(2); err == nil {
		t.Error("expected error for else outside an if frame")
	}
}

func TestStack_EndUnderflow(t *testing.T) {
	s := New()
	if _, err := s.End(); err != nil {
		t.Fatalf("End (function frame): %v", err)
	}
	if _, err := s.End(); err == nil {
		t.Error("expected error ending an empty block stack")
	}
}

func TestStack_LabelToInstrIdx(t *testing.T) {
	s := New()       // depth 1: [Function@0]
	s.PushLoop(2)     // depth 2: [Function@0, Loop@2]
	s.PushBlock(7)    // depth 3: [Function@0, Loop@2, Block@7]

	idx, err := s.LabelToInstrIdx(0) // innermost: Block@7
	if err != nil || idx != 7 {
		t.Errorf("label 0 = %d (err=%v), want 7", idx, err)
	}
	idx, err = s.LabelToInstrIdx(1) // Loop@2 - backward branch to header
	if err != nil || idx != 2 {
		t.Errorf("label 1 = %d (err=%v), want 2", idx, err)
	}
	idx, err = s.LabelToInstrIdx(2) // Function - branches to entry
	if err != nil || idx != 0 {
		t.Errorf("label 2 = %d (err=%v), want 0", idx, err)
	}
	if _, err := s.LabelToInstrIdx(3); err == nil {
		t.Error("expected error for out-of-range label")
	}
}
