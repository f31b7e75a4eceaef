package value

import (
	"math/big"
	"testing"

	"github.com/leo-lang/avmc/internal/ast"
)

func TestLiteralRoundTrip(t *testing.T) {
	cases := []*ast.Literal{
		{Kind: ast.LitBool, Text: "true"},
		{Kind: ast.LitInteger, Text: "42u32", IntType: ast.U32},
		{Kind: ast.LitField, Text: "7field"},
		{Kind: ast.LitScalar, Text: "3scalar"},
		{Kind: ast.LitAddress, Text: "aleo1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq"},
		{Kind: ast.LitString, Text: `"hello"`},
	}
	for _, lit := range cases {
		v, err := LiteralToValue(lit)
		if err != nil {
			t.Fatalf("LiteralToValue(%q) error: %v", lit.Text, err)
		}
		back := ValueToLiteral(v, ast.Span{})
		if back.Kind != lit.Kind {
			t.Errorf("round trip kind mismatch: got %v want %v", back.Kind, lit.Kind)
		}
		v2, err := LiteralToValue(back)
		if err != nil {
			t.Fatalf("LiteralToValue(round-tripped %q) error: %v", back.Text, err)
		}
		if !Equal(v, v2) {
			t.Errorf("LiteralToValue(ValueToLiteral(v)) != v for %q: %v vs %v", lit.Text, v, v2)
		}
	}
}

func TestValueToLiteralPanicsOnAggregate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected ValueToLiteral to panic on an Array value")
		}
	}()
	ValueToLiteral(Array{Elements: []Value{Bool{V: true}}}, ast.Span{})
}

func TestLiteralToValueRejectsOutOfRange(t *testing.T) {
	_, err := LiteralToValue(&ast.Literal{Kind: ast.LitInteger, Text: "256u8", IntType: ast.U8})
	if err == nil {
		t.Fatal("expected an error for 256u8, which overflows u8")
	}
	ve, ok := err.(*Error)
	if !ok || ve.Kind != ErrCastOutOfRange {
		t.Errorf("err = %v, want ErrCastOutOfRange", err)
	}
}

func TestBinaryAddOverflowsNonWrapping(t *testing.T) {
	l := Int{Type: ast.U8, Mag: big.NewInt(255)}
	r := Int{Type: ast.U8, Mag: big.NewInt(1)}
	_, err := Binary(ast.BinAdd, l, r)
	if err == nil {
		t.Fatal("expected ErrOverflow for 255u8 + 1u8")
	}
	if ve, ok := err.(*Error); !ok || ve.Kind != ErrOverflow {
		t.Errorf("err = %v, want ErrOverflow", err)
	}
}

func TestBinaryAddWrappedWraps(t *testing.T) {
	l := Int{Type: ast.U8, Mag: big.NewInt(255)}
	r := Int{Type: ast.U8, Mag: big.NewInt(1)}
	v, err := Binary(ast.BinAddWrapped, l, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i, ok := v.(Int)
	if !ok || i.Mag.Cmp(big.NewInt(0)) != 0 {
		t.Errorf("255u8 +w 1u8 = %v, want 0u8", v)
	}
}

func TestBinaryDivideByZero(t *testing.T) {
	l := Int{Type: ast.U32, Mag: big.NewInt(10)}
	r := Int{Type: ast.U32, Mag: big.NewInt(0)}
	_, err := Binary(ast.BinDiv, l, r)
	if ve, ok := err.(*Error); !ok || ve.Kind != ErrDivideByZero {
		t.Errorf("err = %v, want ErrDivideByZero", err)
	}
}

func TestEqualDistinguishesIntWidths(t *testing.T) {
	a := Int{Type: ast.U8, Mag: big.NewInt(1)}
	b := Int{Type: ast.U16, Mag: big.NewInt(1)}
	if Equal(a, b) {
		t.Error("values of different int widths should not be Equal")
	}
}
