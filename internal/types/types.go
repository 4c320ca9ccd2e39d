// Package types holds the Datalog fact representation objscope exports.
// It has no dependencies on the inspection packages so any consumer can
// read exported facts without pulling in the host runtime.
package types

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/mangle/ast"
)

// MangleAtom represents a Mangle name constant (starting with /).
// This explicit type avoids ambiguity between strings and atoms.
type MangleAtom string

// Fact is a single ground atom describing one aspect of an inspected value.
type Fact struct {
	Predicate string
	Args      []interface{}
}

// isValidMangleNameConstant reports whether v parses as a short name constant.
// Qualified Go import paths such as "/encoding/json" are not names.
func isValidMangleNameConstant(v string) bool {
	if !strings.HasPrefix(v, "/") {
		return false
	}
	if strings.ContainsAny(v, " \t\n\r") {
		return false
	}
	// Source paths are strings, not names.
	if strings.Count(v, "/") > 2 || hasFileExtension(v) {
		return false
	}
	_, err := ast.Name(v)
	return err == nil
}

var sourceExts = []string{".go", ".py", ".pyi", ".so", ".pyd", ".dll", ".mg", ".txt"}

func hasFileExtension(v string) bool {
	lower := strings.ToLower(v)
	for _, ext := range sourceExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// String returns the Datalog source form of the fact.
func (f Fact) String() string {
	args := make([]string, 0, len(f.Args))
	for _, arg := range f.Args {
		switch v := arg.(type) {
		case MangleAtom:
			args = append(args, string(v))
		case string:
			if isValidMangleNameConstant(v) {
				args = append(args, v)
			} else {
				args = append(args, fmt.Sprintf("%q", v))
			}
		case int:
			args = append(args, fmt.Sprintf("%d", v))
		case int64:
			args = append(args, fmt.Sprintf("%d", v))
		case float64:
			args = append(args, fmt.Sprintf("%f", v))
		case bool:
			if v {
				args = append(args, "/true")
			} else {
				args = append(args, "/false")
			}
		default:
			args = append(args, fmt.Sprintf("%q", fmt.Sprintf("%v", v)))
		}
	}
	return fmt.Sprintf("%s(%s).", f.Predicate, strings.Join(args, ", "))
}

// ToAtom converts a Fact to a Mangle AST Atom for direct store insertion.
func (f Fact) ToAtom() (ast.Atom, error) {
	terms := make([]ast.BaseTerm, 0, len(f.Args))
	for _, arg := range f.Args {
		switch v := arg.(type) {
		case MangleAtom:
			s := string(v)
			if !strings.HasPrefix(s, "/") {
				terms = append(terms, ast.String(s))
				continue
			}
			c, err := ast.Name(s)
			if err != nil {
				return ast.Atom{}, fmt.Errorf("fact %s: %w", f.Predicate, err)
			}
			terms = append(terms, c)
		case string:
			if isValidMangleNameConstant(v) {
				c, _ := ast.Name(v)
				terms = append(terms, c)
			} else {
				terms = append(terms, ast.String(v))
			}
		case int:
			terms = append(terms, ast.Number(int64(v)))
		case int64:
			terms = append(terms, ast.Number(v))
		case bool:
			if v {
				terms = append(terms, ast.TrueConstant)
			} else {
				terms = append(terms, ast.FalseConstant)
			}
		default:
			terms = append(terms, ast.String(fmt.Sprintf("%v", v)))
		}
	}
	return ast.NewAtom(f.Predicate, terms...), nil
}

// FromAtom converts a stored atom back into a Fact. Name constants come
// back as MangleAtom so String round-trips.
func FromAtom(atom ast.Atom) Fact {
	args := make([]interface{}, len(atom.Args))
	for i, term := range atom.Args {
		c, ok := term.(ast.Constant)
		if !ok {
			args[i] = fmt.Sprintf("%v", term)
			continue
		}
		switch c.Type {
		case ast.NameType:
			args[i] = MangleAtom(c.Symbol)
		case ast.StringType:
			args[i] = c.Symbol
		case ast.NumberType:
			args[i] = c.NumValue
		case ast.Float64Type:
			args[i] = math.Float64frombits(uint64(c.NumValue))
		default:
			args[i] = c.String()
		}
	}
	return Fact{Predicate: atom.Predicate.Symbol, Args: args}
}
