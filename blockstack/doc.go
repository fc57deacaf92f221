// Package blockstack tracks the structured-control-flow nesting of a
// function body being instrumented: a stack of begin frames (Function,
// Block, Loop, If, Else), each remembering which instruction opened it, so
// that branch labels and end instructions can be resolved back to their
// begin-instruction index without reconstructing a tree from the flat
// instruction sequence.
package blockstack
