package types

import (
	"testing"

	"github.com/google/mangle/ast"
)

func TestIsValidMangleNameConstant(t *testing.T) {
	if !isValidMangleNameConstant("/valid") {
		t.Fatalf("expected /valid to be a valid name constant")
	}
	if isValidMangleNameConstant("valid") {
		t.Fatalf("expected valid without leading slash to be invalid")
	}
	if isValidMangleNameConstant("/") {
		t.Fatalf("expected / to be invalid")
	}
	if isValidMangleNameConstant("/bad//name") {
		t.Fatalf("expected /bad//name to be invalid")
	}
	if isValidMangleNameConstant("/usr/lib/python/os.py") {
		t.Fatalf("expected a source path to be a string")
	}
}

func TestFactString(t *testing.T) {
	fact := Fact{
		Predicate: "test",
		Args: []interface{}{
			MangleAtom("/function"),
			"/class",
			"/bad//name",
			"builtins.str.replace",
			1,
			int64(2),
			true,
			false,
		},
	}

	got := fact.String()
	want := `test(/function, /class, "/bad//name", "builtins.str.replace", 1, 2, /true, /false).`
	if got != want {
		t.Fatalf("unexpected fact string:\nwant: %s\ngot:  %s", want, got)
	}
}

func TestFactToAtomConversion(t *testing.T) {
	fact := Fact{
		Predicate: "test",
		Args: []interface{}{
			MangleAtom("/name"),
			MangleAtom("not-atom"),
			"/valid",
			"plain",
			int(3),
			int64(4),
			true,
		},
	}

	atom, err := fact.ToAtom()
	if err != nil {
		t.Fatalf("unexpected ToAtom error: %v", err)
	}
	if atom.Predicate.Symbol != "test" {
		t.Fatalf("unexpected predicate symbol: %s", atom.Predicate.Symbol)
	}
	if len(atom.Args) != len(fact.Args) {
		t.Fatalf("unexpected arg count: %d", len(atom.Args))
	}

	assertConstant(t, atom.Args[0], ast.NameType, "/name")
	assertConstant(t, atom.Args[1], ast.StringType, "not-atom")
	assertConstant(t, atom.Args[2], ast.NameType, "/valid")
	assertConstant(t, atom.Args[3], ast.StringType, "plain")
	assertNumber(t, atom.Args[4], 3)
	assertNumber(t, atom.Args[5], 4)
	assertConstant(t, atom.Args[6], ast.NameType, "/true")
}

func TestFactToAtomInvalidMangleAtom(t *testing.T) {
	fact := Fact{Predicate: "test", Args: []interface{}{MangleAtom("/bad//name")}}
	if _, err := fact.ToAtom(); err == nil {
		t.Fatalf("expected error for invalid mangle atom")
	}
}

func TestFromAtomRoundTrip(t *testing.T) {
	fact := Fact{
		Predicate: "mro_entry",
		Args:      []interface{}{"builtins.bool", int64(1), "builtins.int"},
	}
	atom, err := fact.ToAtom()
	if err != nil {
		t.Fatalf("unexpected ToAtom error: %v", err)
	}
	back := FromAtom(atom)
	if back.String() != fact.String() {
		t.Fatalf("round trip mismatch:\nwant: %s\ngot:  %s", fact, back)
	}

	kind := Fact{Predicate: "api_kind", Args: []interface{}{"builtins", MangleAtom("/module")}}
	atom, _ = kind.ToAtom()
	if got := FromAtom(atom).Args[1]; got != MangleAtom("/module") {
		t.Fatalf("expected name constant to come back as MangleAtom, got %#v", got)
	}
}

func assertConstant(t *testing.T, term ast.BaseTerm, typ ast.ConstantType, want string) {
	t.Helper()
	c, ok := term.(ast.Constant)
	if !ok {
		t.Fatalf("expected constant term")
	}
	if c.Type != typ {
		t.Fatalf("expected type %v, got %v", typ, c.Type)
	}
	if c.Symbol != want {
		t.Fatalf("expected symbol %q, got %q", want, c.Symbol)
	}
}

func assertNumber(t *testing.T, term ast.BaseTerm, want int64) {
	t.Helper()
	c, ok := term.(ast.Constant)
	if !ok {
		t.Fatalf("expected constant term")
	}
	if c.Type != ast.NumberType {
		t.Fatalf("expected NumberType, got %v", c.Type)
	}
	if c.NumValue != want {
		t.Fatalf("expected number %d, got %d", want, c.NumValue)
	}
}
