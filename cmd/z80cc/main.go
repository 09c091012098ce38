// Command z80cc drives the Z80-family code generator over a
// line-oriented intermediate-representation description supplied by an
// external front end (see ir.Node and DecodeFunctions in decode.go), writing
// Z80 assembly text to standard output. Mirrors KTStephano-GVM/main.go's
// flag-based CLI shape: a handful of global flags plus positional input
// files.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"z80cc/codegen"
	"z80cc/frame"
	"z80cc/ir"
	"z80cc/target"
)

var (
	optLevel = flag.Int("O", 1, "optimisation level (0-3)")
	optSize  = flag.Bool("Os", false, "optimise for code size over speed")
	variant  = flag.String("target", "z80", "target variant: z80, z80n, ez80, rabbit, z280")
	banked   = flag.Bool("banked", false, "emit banked-mode call sequences")
	output   = flag.String("o", "", "output file (default: stdout)")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "z80cc:", err)
		os.Exit(1)
	}
}

func resolveFeatures(name string) (target.Features, error) {
	switch name {
	case "z80":
		return target.Z80, nil
	case "z80n":
		return target.Z80N, nil
	case "ez80":
		return target.EZ80, nil
	case "rabbit":
		return target.Rabbit, nil
	case "z280":
		return target.Z280, nil
	default:
		return target.Features{}, fmt.Errorf("unknown target variant %q", name)
	}
}

func run() error {
	feat, err := resolveFeatures(*variant)
	if err != nil {
		return err
	}
	if *banked {
		feat = feat.WithBanked()
	}

	var in *os.File
	args := flag.Args()
	switch len(args) {
	case 0:
		in = os.Stdin
	case 1:
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "opening input")
		}
		defer f.Close()
		in = f
	default:
		return fmt.Errorf("expected at most one input file, got %d", len(args))
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return errors.Wrap(err, "creating output")
		}
		defer f.Close()
		out = f
	}

	funcs, err := DecodeFunctions(in)
	if err != nil {
		return errors.Wrap(err, "decoding input")
	}

	w := bufio.NewWriter(out)
	defer w.Flush()

	resolver := newSymbolTable()
	st := frame.New(w, feat, *optLevel, *optSize)
	compiler := codegen.New(feat, resolver, st)

	for _, fn := range funcs {
		if err := compiler.CompileFunction(fn.Name, fn.Body, fn.FrameSize, fn.Saves, fn.IYFree, fn.Void); err != nil {
			return errors.Wrapf(err, "function %s", fn.Name)
		}
	}
	return nil
}

// symbolTable is the minimal SymbolResolver this driver needs: the
// line-oriented input carries no symbol names and nothing fills the
// maps, so symbols are emitted as sym<N> and labels as L<N>.
type symbolTable struct {
	names  map[int32]string
	labels map[int32]string
}

func newSymbolTable() *symbolTable {
	return &symbolTable{names: map[int32]string{}, labels: map[int32]string{}}
}

func (t *symbolTable) Name(snum int32) string {
	if n, ok := t.names[snum]; ok {
		return n
	}
	return fmt.Sprintf("sym%d", snum)
}

func (t *symbolTable) Label(n int32) string {
	if l, ok := t.labels[n]; ok {
		return l
	}
	return fmt.Sprintf("L%d", n)
}

// Function is one decoded translation-unit entry.
type Function struct {
	Name      string
	Body      *ir.Node
	FrameSize int
	Saves     frame.RegSave
	IYFree    bool
	Void      bool
}
