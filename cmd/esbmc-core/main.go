// Command esbmc-core drives the symbolic-execution/SMT-conversion core
// end to end: it loads a TOML config, applies pflag
// overrides, builds one demonstration SSA equation in-process (no C
// frontend is part of this module), converts it through smtconv, and
// prints the dec_solve verdict plus, on sat, a CBOR counterexample.
//
// Grounded on raymyers-ralph-cc-go/cmd/ralph-cc/main.go's cobra root
// command shape: flag variables declared at package scope, a
// newRootCmd(out, errOut) constructor for testability, and a
// run()-returns-exit-code split from main() so tests can drive
// Execute() without os.Exit.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fbrausse/esbmc/internal/bigbv"
	"github.com/fbrausse/esbmc/internal/config"
	"github.com/fbrausse/esbmc/internal/irep"
	"github.com/fbrausse/esbmc/internal/smt"
	"github.com/fbrausse/esbmc/internal/smtconv"
	"github.com/fbrausse/esbmc/internal/ssa"
	"github.com/fbrausse/esbmc/internal/trace"
)

var version = "0.1.0"

var (
	cfgPath        string
	solverName     string
	intEncoding    bool
	floatEncoding  string
	tupleFlattener string
	arrayFlattener string
	endianBig      bool
	wordWidth      uint
	smtFormulaOnly bool
	smtFormulaToo  bool
	overflowCheck  bool
	pointerCheck   bool
	nanCheck       bool
	divByZeroCheck bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "esbmc-core",
		Short:         "esbmc-core converts one SSA equation to SMT and solves it",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyOverrides(cmd, &cfg)
			return runDemo(cfg, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	def := config.Default()
	rootCmd.Flags().StringVar(&cfgPath, "config", "", "path to a TOML config file (esbmc.toml)")
	rootCmd.Flags().StringVar(&solverName, "solver", def.Solver, "solver backend: z3|smtlib|boolector|mathsat|cvc|yices|bitwuzla")
	rootCmd.Flags().BoolVar(&intEncoding, "int-encoding", def.IntEncoding, "use QF_AUFLIRA integer encoding instead of bitvectors")
	rootCmd.Flags().StringVar(&floatEncoding, "float-encoding", def.FloatEncoding, "floating-point encoding")
	rootCmd.Flags().StringVar(&tupleFlattener, "tuple-flattener", def.TupleFlattener, "tuple flattening strategy")
	rootCmd.Flags().StringVar(&arrayFlattener, "array-flattener", def.ArrayFlattener, "array flattening strategy")
	rootCmd.Flags().BoolVar(&endianBig, "endian-big", def.BigEndian, "treat the target as big-endian")
	rootCmd.Flags().UintVar(&wordWidth, "word-width", def.WordWidth, "machine word width in bits")
	rootCmd.Flags().BoolVar(&smtFormulaOnly, "smt-formula-only", def.SmtFormulaOnly, "print the SMT formula and exit without solving")
	rootCmd.Flags().BoolVar(&smtFormulaToo, "smt-formula-too", def.SmtFormulaToo, "print the SMT formula in addition to solving")
	rootCmd.Flags().BoolVar(&overflowCheck, "overflow-check", def.OverflowCheck, "instrument arithmetic overflow checks")
	rootCmd.Flags().BoolVar(&pointerCheck, "pointer-check", def.PointerCheck, "instrument pointer safety checks")
	rootCmd.Flags().BoolVar(&nanCheck, "nan-check", def.NanCheck, "instrument NaN checks")
	rootCmd.Flags().BoolVar(&divByZeroCheck, "div-by-zero-check", def.DivByZeroCheck, "instrument division-by-zero checks")

	return rootCmd
}

func loadConfig() (config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	return config.Load(cfgPath)
}

// applyOverrides lets any pflag the user actually passed win over the
// TOML file; flags the invocation did not pass are not reported as
// "changed" by pflag and so never clobber the loaded value.
func applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("solver") {
		cfg.Solver = solverName
	}
	if flags.Changed("int-encoding") {
		cfg.IntEncoding = intEncoding
	}
	if flags.Changed("float-encoding") {
		cfg.FloatEncoding = floatEncoding
	}
	if flags.Changed("tuple-flattener") {
		cfg.TupleFlattener = tupleFlattener
	}
	if flags.Changed("array-flattener") {
		cfg.ArrayFlattener = arrayFlattener
	}
	if flags.Changed("endian-big") {
		cfg.BigEndian = endianBig
	}
	if flags.Changed("word-width") {
		cfg.WordWidth = wordWidth
	}
	if flags.Changed("smt-formula-only") {
		cfg.SmtFormulaOnly = smtFormulaOnly
	}
	if flags.Changed("smt-formula-too") {
		cfg.SmtFormulaToo = smtFormulaToo
	}
	if flags.Changed("overflow-check") {
		cfg.OverflowCheck = overflowCheck
	}
	if flags.Changed("pointer-check") {
		cfg.PointerCheck = pointerCheck
	}
	if flags.Changed("nan-check") {
		cfg.NanCheck = nanCheck
	}
	if flags.Changed("div-by-zero-check") {
		cfg.DivByZeroCheck = divByZeroCheck
	}
}

// runDemo builds one SSA equation representing `uint8 c = a + b;
// assert(!overflow(a + b));` with a=200, b=100 (a and b already
// concrete, as symbolic execution of an actual frontend is out of
// scope for this module) and runs it through the converter: a + b
// overflows an unsigned 8-bit range, so the assertion is expected to
// be refutable.
func runDemo(cfg config.Config, out, errOut io.Writer) error {
	pool := irep.NewPool()
	backend, err := smt.NewBackend(cfg.Solver, smt.Config{
		MachineWordWidth: cfg.WordWidth,
		BigEndian:        cfg.BigEndian,
	})
	if err != nil {
		return fmt.Errorf("esbmc-core: %w", err)
	}

	conv := smtconv.New(pool, backend, smtconv.Config{
		EnableCache:                 true,
		IntEncoding:                 cfg.IntEncoding,
		CanInitializeInfiniteArrays: true,
		MachineWordWidth:            cfg.WordWidth,
		BigEndian:                   cfg.BigEndian,
	})

	u8 := pool.UnsignedBV(8)
	a := pool.ConstantInt(bigbv.FromInt64(200, 8), u8)
	b := pool.ConstantInt(bigbv.FromInt64(100, 8), u8)
	sum, err := pool.Add(a, b)
	if err != nil {
		return fmt.Errorf("esbmc-core: %w", err)
	}

	eq := ssa.New()
	c := pool.SymbolLevel2("c", 0, 1, 0, 0, false, u8)
	eq.Append(ssa.Step{
		Kind:   ssa.KindAssignment,
		LHS:    c,
		RHS:    sum,
		Source: ssa.Location{File: "<demo>", Line: 1, Function: "main"},
	})

	if cfg.OverflowCheck {
		overflow := pool.Overflow(sum)
		notOverflow, err := pool.Not(overflow)
		if err != nil {
			return fmt.Errorf("esbmc-core: %w", err)
		}
		eq.Append(ssa.Step{
			Kind:   ssa.KindAssert,
			Cond:   notOverflow,
			Source: ssa.Location{File: "<demo>", Line: 1, Function: "main"},
		})
	}

	var asts []smt.Ast
	for _, step := range eq.Steps() {
		switch step.Kind {
		case ssa.KindAssignment:
			lhsAst, err := conv.ConvertAST(step.LHS)
			if err != nil {
				return fmt.Errorf("esbmc-core: convert lhs: %w", err)
			}
			rhsAst, err := conv.ConvertAST(step.RHS)
			if err != nil {
				return fmt.Errorf("esbmc-core: convert rhs: %w", err)
			}
			eqAst, err := conv.Backend().MkFuncApp(smt.BoolSort(), smt.EQ, lhsAst, rhsAst)
			if err != nil {
				return fmt.Errorf("esbmc-core: build assignment equality: %w", err)
			}
			asts = append(asts, eqAst)
		case ssa.KindAssert:
			ast, err := conv.ConvertAST(step.Cond)
			if err != nil {
				return fmt.Errorf("esbmc-core: convert assertion: %w", err)
			}
			asts = append(asts, ast)
		}
	}

	conjunct, err := conv.MakeConjunct(asts)
	if err != nil {
		return fmt.Errorf("esbmc-core: %w", err)
	}

	if err := conv.AssertAst(conjunct); err != nil {
		return fmt.Errorf("esbmc-core: %w", err)
	}

	if cfg.SmtFormulaOnly || cfg.SmtFormulaToo {
		fmt.Fprintln(out, conv.Backend().SolverText())
		if cfg.SmtFormulaOnly {
			return nil
		}
	}

	result, err := conv.DecSolve()
	if err != nil {
		return fmt.Errorf("esbmc-core: %w", err)
	}
	fmt.Fprintf(out, "esbmc-core: %s\n", result)

	if result == smt.ResultSat {
		ce := trace.BuildCounterexample(eq)
		data, err := trace.Marshal(ce)
		if err != nil {
			return fmt.Errorf("esbmc-core: %w", err)
		}
		fmt.Fprintf(errOut, "esbmc-core: counterexample (%d bytes CBOR)\n", len(data))
		return fmt.Errorf("esbmc-core: assertion violated (%s)", result)
	}
	return nil
}
