// Command shaderinfo reflects a combined shader file and prints what the engine derives
// from it: the packed vertex layout and the flattened uniform slots.
//
// Usage:
//
//	shaderinfo [options] <shader.glsl>
//
// Examples:
//
//	shaderinfo assets/shaders/lit.glsl
//	shaderinfo -inactive a_uv assets/shaders/lit.glsl   # simulate an optimised out input
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/headless"
	"github.com/spaghettifunk/lumen/engine/renderer/shader"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("shaderinfo", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inactive := flags.String("inactive", "", "comma separated inputs or uniforms to treat as optimised out")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: shaderinfo [options] <shader.glsl>\n\nOptions:\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: exactly one shader file is required")
		flags.Usage()
		return 2
	}

	path := flags.Arg(0)
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading file: %v\n", err)
		return 1
	}

	gpu := headless.New()
	for _, name := range strings.Split(*inactive, ",") {
		if name = strings.TrimSpace(name); name != "" {
			gpu.MarkInactive(name)
		}
	}

	program, err := shader.Build(gpu, core.NewIDSequence(16), filepath.Base(path), string(source))
	if err != nil {
		var reflectErr *core.ReflectionError
		if errors.As(err, &reflectErr) {
			fmt.Fprintf(stderr, "Reflection error: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "Build error: %v\n", err)
		}
		return 1
	}
	defer program.Destroy()

	printProgram(stdout, program)
	return 0
}

func printProgram(w io.Writer, p *shader.Program) {
	layout := p.Layout()
	fmt.Fprintf(w, "program %s\n\n", p.Name())
	fmt.Fprintf(w, "vertex layout (stride %d bytes)\n", layout.Stride)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tLOCATION\tTYPE\tOFFSET")
	for _, e := range layout.Elements {
		location := fmt.Sprint(e.Location)
		if e.Location < 0 {
			location = "inactive"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s x%d\t%d\n", e.Name, location, e.Kind, e.Components, e.Offset)
	}
	tw.Flush()

	block := p.Uniforms()
	fmt.Fprintf(w, "\nuniforms (%d)\n", block.Len())
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tTYPE\tLOCATION")
	for _, name := range block.Names() {
		slot, _ := block.Slot(name)
		fmt.Fprintf(tw, "  %s\t%s\t%d\n", name, slot.Type(), slot.Location())
	}
	tw.Flush()
}
