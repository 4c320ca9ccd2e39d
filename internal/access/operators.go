package access

import (
	"fmt"

	"objscope/internal/object"
)

// Operator is a binary operator token in source syntax.
type Operator string

const (
	OpEq    Operator = "=="
	OpNe    Operator = "!="
	OpIs    Operator = "is"
	OpIsNot Operator = "is not"
	OpLt    Operator = "<"
	OpLe    Operator = "<="
	OpGt    Operator = ">"
	OpGe    Operator = ">="
	OpAdd   Operator = "+"
	OpSub   Operator = "-"
)

var operators = map[Operator]object.BinaryOp{
	OpEq:    object.Eq,
	OpNe:    object.Ne,
	OpIs:    object.Is,
	OpIsNot: object.IsNot,
	OpLt:    object.Lt,
	OpLe:    object.Le,
	OpGt:    object.Gt,
	OpGe:    object.Ge,
	OpAdd:   object.Add,
	OpSub:   object.Sub,
}

// Operate applies op to the value and other with the host's native operator
// semantics and wraps the result. An unknown token panics.
func (a *Access) Operate(other *Access, op Operator) (*Access, error) {
	fn, ok := operators[op]
	if !ok {
		panic(fmt.Sprintf("access: unknown operator %q", string(op)))
	}
	res, err := fn(a.s.rt, a.obj, other.obj)
	if err != nil {
		return nil, err
	}
	return a.s.Access(res), nil
}

// Negate applies unary minus.
func (a *Access) Negate() (*Access, error) {
	res, err := object.Neg(a.s.rt, a.obj)
	if err != nil {
		return nil, err
	}
	return a.s.Access(res), nil
}
