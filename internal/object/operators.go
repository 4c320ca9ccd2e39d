package object

import (
	"strings"
)

// BinaryOp is the shape shared by every native binary operator.
type BinaryOp func(rt *Runtime, a, b Object) (Object, error)

// numeric unpacks Int, Bool and Float operands.
func numeric(o Object) (i int64, f float64, isFloat, ok bool) {
	switch v := o.(type) {
	case Int:
		return int64(v), float64(v), false, true
	case Bool:
		if v {
			return 1, 1, false, true
		}
		return 0, 0, false, true
	case Float:
		return 0, float64(v), true, true
	}
	return 0, 0, false, false
}

// dispatch tries a script dunder on a, then the reflected one on b.
func dispatch(rt *Runtime, a, b Object, name, reflected string) (Object, bool, error) {
	if m, ok := userMethod(a, name); ok {
		res, err := callUnbound(rt, m, a, b)
		return res, true, err
	}
	if reflected == "" {
		return nil, false, nil
	}
	if m, ok := userMethod(b, reflected); ok {
		res, err := callUnbound(rt, m, b, a)
		return res, true, err
	}
	return nil, false, nil
}

func unsupported(op string, a, b Object) error {
	return raise(ErrType, "unsupported operand type(s) for %s: '%s' and '%s'", op, TypeName(a), TypeName(b))
}

// equal is Eq reduced to a Go bool.
func equal(rt *Runtime, a, b Object) (bool, error) {
	res, err := Eq(rt, a, b)
	if err != nil {
		return false, err
	}
	return Truth(rt, res)
}

func nativeEqual(rt *Runtime, a, b Object) (bool, error) {
	if ai, af, aFloat, ok := numeric(a); ok {
		bi, bf, bFloat, ok := numeric(b)
		if !ok {
			return false, nil
		}
		if aFloat || bFloat {
			return af == bf, nil
		}
		return ai == bi, nil
	}
	switch x := a.(type) {
	case Str:
		y, ok := b.(Str)
		return ok && x == y, nil
	case Bytes:
		y, ok := b.(Bytes)
		return ok && x == y, nil
	case *List:
		y, ok := b.(*List)
		if !ok {
			return false, nil
		}
		return seqEqual(rt, x.Items, y.Items)
	case *Tuple:
		y, ok := b.(*Tuple)
		if !ok {
			return false, nil
		}
		return seqEqual(rt, x.Items, y.Items)
	case *Dict:
		y, ok := b.(*Dict)
		if !ok || x.Len() != y.Len() {
			return false, nil
		}
		for i, k := range x.keys {
			v, found, err := y.Get(k)
			if err != nil || !found {
				return false, err
			}
			eq, err := equal(rt, x.vals[i], v)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	}
	return Same(a, b), nil
}

func seqEqual(rt *Runtime, a, b []Object) (bool, error) {
	if len(a) != len(b) {
		return false, nil
	}
	for i := range a {
		eq, err := equal(rt, a[i], b[i])
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

// Eq implements ==.
func Eq(rt *Runtime, a, b Object) (Object, error) {
	if res, ok, err := dispatch(rt, a, b, "__eq__", "__eq__"); ok {
		return res, err
	}
	eq, err := nativeEqual(rt, a, b)
	return Bool(eq), err
}

// Ne implements !=.
func Ne(rt *Runtime, a, b Object) (Object, error) {
	if res, ok, err := dispatch(rt, a, b, "__ne__", "__ne__"); ok {
		return res, err
	}
	eq, err := equal(rt, a, b)
	return Bool(!eq), err
}

// Is implements the identity operator.
func Is(rt *Runtime, a, b Object) (Object, error) { return Bool(Same(a, b)), nil }

// IsNot implements the negated identity operator.
func IsNot(rt *Runtime, a, b Object) (Object, error) { return Bool(!Same(a, b)), nil }

// compare returns -1, 0 or 1 for natively ordered operands.
func compare(rt *Runtime, op string, a, b Object) (int, error) {
	if ai, af, aFloat, ok := numeric(a); ok {
		if bi, bf, bFloat, ok := numeric(b); ok {
			if aFloat || bFloat {
				switch {
				case af < bf:
					return -1, nil
				case af > bf:
					return 1, nil
				}
				return 0, nil
			}
			switch {
			case ai < bi:
				return -1, nil
			case ai > bi:
				return 1, nil
			}
			return 0, nil
		}
	}
	switch x := a.(type) {
	case Str:
		if y, ok := b.(Str); ok {
			return strings.Compare(string(x), string(y)), nil
		}
	case Bytes:
		if y, ok := b.(Bytes); ok {
			return strings.Compare(string(x), string(y)), nil
		}
	case *List:
		if y, ok := b.(*List); ok {
			return seqCompare(rt, op, x.Items, y.Items)
		}
	case *Tuple:
		if y, ok := b.(*Tuple); ok {
			return seqCompare(rt, op, x.Items, y.Items)
		}
	}
	return 0, raise(ErrType, "'%s' not supported between instances of '%s' and '%s'", op, TypeName(a), TypeName(b))
}

func seqCompare(rt *Runtime, op string, a, b []Object) (int, error) {
	for i := 0; i < len(a) && i < len(b); i++ {
		eq, err := equal(rt, a[i], b[i])
		if err != nil {
			return 0, err
		}
		if !eq {
			return compare(rt, op, a[i], b[i])
		}
	}
	switch {
	case len(a) < len(b):
		return -1, nil
	case len(a) > len(b):
		return 1, nil
	}
	return 0, nil
}

func ordering(op, name, reflected string, accept func(int) bool) BinaryOp {
	return func(rt *Runtime, a, b Object) (Object, error) {
		if res, ok, err := dispatch(rt, a, b, name, reflected); ok {
			return res, err
		}
		c, err := compare(rt, op, a, b)
		if err != nil {
			return nil, err
		}
		return Bool(accept(c)), nil
	}
}

var (
	// Lt implements <.
	Lt = ordering("<", "__lt__", "__gt__", func(c int) bool { return c < 0 })
	// Le implements <=.
	Le = ordering("<=", "__le__", "__ge__", func(c int) bool { return c <= 0 })
	// Gt implements >.
	Gt = ordering(">", "__gt__", "__lt__", func(c int) bool { return c > 0 })
	// Ge implements >=.
	Ge = ordering(">=", "__ge__", "__le__", func(c int) bool { return c >= 0 })
)

// Add implements +.
func Add(rt *Runtime, a, b Object) (Object, error) {
	if res, ok, err := dispatch(rt, a, b, "__add__", "__radd__"); ok {
		return res, err
	}
	if ai, af, aFloat, ok := numeric(a); ok {
		if bi, bf, bFloat, ok := numeric(b); ok {
			if aFloat || bFloat {
				return Float(af + bf), nil
			}
			return Int(ai + bi), nil
		}
	}
	switch x := a.(type) {
	case Str:
		if y, ok := b.(Str); ok {
			return x + y, nil
		}
	case Bytes:
		if y, ok := b.(Bytes); ok {
			return x + y, nil
		}
	case *List:
		if y, ok := b.(*List); ok {
			items := append(append([]Object(nil), x.Items...), y.Items...)
			return NewList(items...), nil
		}
	case *Tuple:
		if y, ok := b.(*Tuple); ok {
			items := append(append([]Object(nil), x.Items...), y.Items...)
			return NewTuple(items...), nil
		}
	}
	return nil, unsupported("+", a, b)
}

// Sub implements -.
func Sub(rt *Runtime, a, b Object) (Object, error) {
	if res, ok, err := dispatch(rt, a, b, "__sub__", "__rsub__"); ok {
		return res, err
	}
	if ai, af, aFloat, ok := numeric(a); ok {
		if bi, bf, bFloat, ok := numeric(b); ok {
			if aFloat || bFloat {
				return Float(af - bf), nil
			}
			return Int(ai - bi), nil
		}
	}
	return nil, unsupported("-", a, b)
}

// Neg implements unary -.
func Neg(rt *Runtime, a Object) (Object, error) {
	if m, ok := userMethod(a, "__neg__"); ok {
		return callUnbound(rt, m, a)
	}
	if i, f, isFloat, ok := numeric(a); ok {
		if isFloat {
			return Float(-f), nil
		}
		return Int(-i), nil
	}
	return nil, raise(ErrType, "bad operand type for unary -: '%s'", TypeName(a))
}
