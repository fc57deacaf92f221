// Package errors provides the structured fatal-error type used by the
// instrumentation pipeline.
//
// Errors are categorized by Phase (which stage of the pipeline raised them)
// and Kind (the category of failure). The pipeline treats every condition
// representable here as a programmer error, not a user error: the input
// module is trusted, so these are all internal-consistency failures (stack
// underflow, missing hook, unknown instruction group) rather than validation
// diagnostics.
//
// Use the Builder for structured construction:
//
//	err := errors.New(errors.PhaseInstrument, errors.KindNotFound).
//		Path("func", "3", "instr", "12").
//		Detail("no hook registered for opcode 0x%02x", op).
//		Build()
//
// Or use a convenience constructor:
//
//	err := errors.OutOfBounds(errors.PhaseBlockStack, path, depth, len(stack))
package errors
