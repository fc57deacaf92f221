// Package wlog provides the package-level logger shared by every stage of
// the instrumentation pipeline.
//
// It is silent by default (a no-op zap logger) so importing this module
// never produces console noise; callers that want diagnostics call
// SetLogger once at startup, typically from a CLI main.
package wlog
