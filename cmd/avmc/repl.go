package main

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/value"
)

// binaryOps maps the REPL's surface operator spelling to ast.BinaryOp,
// the same table codegen.go's mnemonic maps are keyed by (spec.md §4.4).
var binaryOps = map[string]ast.BinaryOp{
	"+": ast.BinAdd, "-": ast.BinSub, "*": ast.BinMul, "/": ast.BinDiv, "%": ast.BinRem,
	"**": ast.BinPow, "&": ast.BinBitAnd, "|": ast.BinBitOr, "^": ast.BinBitXor,
	"&&": ast.BinAnd, "||": ast.BinOr, "==": ast.BinEq, "!=": ast.BinNeq,
	"<": ast.BinLt, "<=": ast.BinLe, ">": ast.BinGt, ">=": ast.BinGe,
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive constant-expression evaluator (C5)",
		RunE: func(cmd *cobra.Command, args []string) error {
			runRepl()
			return nil
		},
	}
}

// runRepl is a minimal constant-folding calculator over C5's Value
// evaluator, mirroring the teacher's own liner-backed REPL loop
// (internal/repl/repl.go's Start method) without reimplementing an
// expression grammar: a line is `<literal> <op> <literal>` or a bare
// literal, tokenized by whitespace rather than a new participle
// grammar — this REPL evaluates constants against C5, it does not
// parse Leo source, so a hand-tokenized calculator line is the right
// scale of tool, not a gap the rest of the corpus fills with a library.
func runRepl() {
	fmt.Printf("%s — constant-expression calculator\n", bold("avmc repl"))
	fmt.Println("Type a literal or `<literal> <op> <literal>`, :quit to exit.")

	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(false)

	for {
		input, err := line.Prompt("avmc> ")
		if err == io.EOF {
			fmt.Println("\nGoodbye!")
			return
		}
		if err != nil {
			fmt.Printf("%s: %v\n", red("error"), err)
			continue
		}
		line.AppendHistory(input)
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == ":quit" || input == ":q" {
			return
		}

		result, err := evalLine(input)
		if err != nil {
			fmt.Printf("%s: %v\n", red("error"), err)
			continue
		}
		fmt.Printf("%s %s\n", cyan("="), green(result.String()))
	}
}

func evalLine(input string) (value.Value, error) {
	fields := strings.Fields(input)
	switch len(fields) {
	case 1:
		lit, err := parseLiteralToken(fields[0])
		if err != nil {
			return nil, err
		}
		return value.LiteralToValue(lit)
	case 3:
		left, err := parseLiteralToken(fields[0])
		if err != nil {
			return nil, err
		}
		op, ok := binaryOps[fields[1]]
		if !ok {
			return nil, fmt.Errorf("unknown operator %q", fields[1])
		}
		right, err := parseLiteralToken(fields[2])
		if err != nil {
			return nil, err
		}
		lv, err := value.LiteralToValue(left)
		if err != nil {
			return nil, err
		}
		rv, err := value.LiteralToValue(right)
		if err != nil {
			return nil, err
		}
		return value.Binary(op, lv, rv)
	default:
		return nil, fmt.Errorf("expected `<literal>` or `<literal> <op> <literal>`, got %d tokens", len(fields))
	}
}

var intSuffixes = []ast.IntType{ast.I8, ast.I16, ast.I32, ast.I64, ast.I128, ast.U8, ast.U16, ast.U32, ast.U64, ast.U128}

// parseLiteralToken sniffs tok's suffix the same way
// internal/value.LiteralToValue's callers must already have (that
// function trusts lit.Kind/lit.IntType rather than inferring them),
// producing the ast.Literal the REPL hands it.
func parseLiteralToken(tok string) (*ast.Literal, error) {
	switch tok {
	case "true", "false":
		return &ast.Literal{Kind: ast.LitBool, Text: tok}, nil
	}
	if strings.HasSuffix(tok, "field") {
		return &ast.Literal{Kind: ast.LitField, Text: tok}, nil
	}
	if strings.HasSuffix(tok, "scalar") {
		return &ast.Literal{Kind: ast.LitScalar, Text: tok}, nil
	}
	if strings.HasSuffix(tok, "group") {
		return &ast.Literal{Kind: ast.LitGroup, Text: tok}, nil
	}
	for _, it := range intSuffixes {
		if strings.HasSuffix(tok, it.String()) {
			return &ast.Literal{Kind: ast.LitInteger, IntType: it, Text: tok}, nil
		}
	}
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		return &ast.Literal{Kind: ast.LitString, Text: tok}, nil
	}
	if _, ok := new(big.Int).SetString(tok, 10); ok {
		return &ast.Literal{Kind: ast.LitUnsuffixed, Text: tok}, nil
	}
	return &ast.Literal{Kind: ast.LitAddress, Text: tok}, nil
}
