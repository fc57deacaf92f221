// Package moduleinfo collects the static metadata the JavaScript shim needs
// about the module being instrumented: every function's parameter/result
// signature, every global's type and mutability, and one br_table target
// set per br_table instruction encountered during instrumentation (each
// remembered under the index the instrumentation pass recorded it at;
// identical target sets are not merged).
//
// Info is built to marshal directly to the JSON embedded in the shim as
// Wasabi.module.info.
package moduleinfo
