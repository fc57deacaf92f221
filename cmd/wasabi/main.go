// Command wasabi instruments a WebAssembly MVP binary module and writes the
// instrumented module plus its companion JavaScript shim alongside it.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wasabi-go/wasabi/instrument"
	"github.com/wasabi-go/wasabi/jsshim"
	"github.com/wasabi-go/wasabi/wasm"
	"github.com/wasabi-go/wasabi/wlog"
	"go.uber.org/zap"
)

func main() {
	var (
		in          = flag.String("in", "", "Path to the input .wasm file")
		outWasm     = flag.String("out-wasm", "", "Path to write the instrumented .wasm file (default: -in path with its extension replaced by .instrumented.wasm)")
		outJS       = flag.String("out-js", "", "Path to write the JavaScript shim (default: -in path with its extension replaced by .js)")
		hooksModule = flag.String("hooks-module", "hooks", "Import module name the generated hook imports are declared under")
		verbose     = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	if *verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			wlog.SetLogger(l)
		}
	}

	if *in == "" {
		fmt.Fprintln(os.Stderr, "Usage: wasabi -in <file.wasm> [-out-wasm path] [-out-js path] [-hooks-module name]")
		os.Exit(1)
	}

	if err := run(*in, *outWasm, *outJS, *hooksModule); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(in, outWasm, outJS, hooksModule string) error {
	if outWasm == "" {
		outWasm = defaultOutPath(in, ".instrumented.wasm")
	}
	if outJS == "" {
		outJS = defaultOutPath(in, ".js")
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	m, err := wasm.ParseModule(data)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	info, reg, err := instrument.Instrument(m, instrument.Options{HooksModule: hooksModule})
	if err != nil {
		return fmt.Errorf("instrument: %w", err)
	}

	js, err := jsshim.Generate(info, reg)
	if err != nil {
		return fmt.Errorf("generate js shim: %w", err)
	}

	out := m.Encode()
	if err := os.WriteFile(outWasm, out, 0o644); err != nil {
		return fmt.Errorf("write wasm: %w", err)
	}
	if err := os.WriteFile(outJS, []byte(js), 0o644); err != nil {
		return fmt.Errorf("write js: %w", err)
	}

	fmt.Printf("Instrumented %s (%d bytes) -> %s (%d bytes)\n", in, len(data), outWasm, len(out))
	fmt.Printf("Registered %d hooks, wrote shim to %s\n", reg.Count(), outJS)
	return nil
}

func defaultOutPath(in, suffix string) string {
	ext := filepath.Ext(in)
	base := strings.TrimSuffix(in, ext)
	return base + suffix
}
