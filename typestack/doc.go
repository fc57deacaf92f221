// Package typestack implements the abstract operand-stack interpreter used
// to resolve the concrete type of polymorphic instructions (drop, select)
// at each program point.
//
// It tracks only types, not values: each block introduces a floor marker so
// that end_block can report the block's result types without inspecting
// values below the block's entry. Unreachable-code stack polymorphism is
// not modeled - the stack is trusted to be well-typed on the reachable path,
// per the instrumented module being a valid input.
package typestack
