// Package instrument rewrites a module's function bodies so that every
// original instruction is surrounded by calls into imported hook functions,
// and renumbers every function reference to account for the hooks appended
// to the import section.
//
// Hook registration and body rewriting run in two passes over every
// function. The first pass walks each body purely to discover which hook
// names are needed (so the hook import count is known and can be folded
// into every function's final index) and discards its output; the second
// pass reuses the now-stable hook registry to emit the real instrumented
// body, with every function-index constant resolved to its post-hook value.
package instrument
