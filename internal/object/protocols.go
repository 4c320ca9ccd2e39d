package object

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// =============================================================================
// IDENTITY AND CLASSIFICATION
// =============================================================================

// TypeName returns the class name of o, or its Go type when o has no class.
func TypeName(o Object) string {
	if o == nil {
		return "NULL"
	}
	if c := o.Class(); c != nil {
		return c.Name
	}
	return fmt.Sprintf("%T", o)
}

// ClassOf returns the class of o. It fails for foreign values whose Go type
// was never registered.
func ClassOf(o Object) (*Class, error) {
	c := o.Class()
	if c == nil {
		return nil, raise(ErrAttribute, "'%T' object has no attribute '__class__'", o)
	}
	return c, nil
}

// Same is the runtime's identity comparison.
func Same(a, b Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	if fa, ok := a.(Float); ok {
		fb, ok := b.(Float)
		return ok && math.Float64bits(float64(fa)) == math.Float64bits(float64(fb))
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func identityString(v interface{}) string {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice, reflect.UnsafePointer:
		return fmt.Sprintf("%T@0x%x", v, rv.Pointer())
	}
	return fmt.Sprintf("%T:%v", v, v)
}

func addr(o Object) string {
	rv := reflect.ValueOf(o)
	if rv.Kind() == reflect.Ptr {
		return fmt.Sprintf("0x%x", rv.Pointer())
	}
	return "0x0"
}

// NameOf returns the declared __name__ of o without running script code.
func NameOf(o Object) (string, bool) {
	switch v := o.(type) {
	case *Class:
		return v.Name, true
	case *Module:
		return v.Name, true
	case *Function:
		return v.Name, true
	case *Builtin:
		return v.Name, true
	case *MethodDescriptor:
		return v.Name, true
	case *ClassMethodDescriptor:
		return v.Name, true
	case *GetSetDescriptor:
		return v.Name, true
	case *MemberDescriptor:
		return v.Name, true
	case *BoundMethod:
		return NameOf(v.Func)
	case *ClassMethod:
		return NameOf(v.Func)
	case *StaticMethod:
		return NameOf(v.Func)
	}
	return "", false
}

// ModuleNameOf returns the declared __module__ of o. An empty name with ok
// set stands for a module attribute holding None.
func ModuleNameOf(o Object) (string, bool) {
	switch v := o.(type) {
	case *Class:
		return v.Module, true
	case *Function:
		return v.Module, true
	case *Builtin:
		return v.Module, true
	case *BoundMethod:
		return ModuleNameOf(v.Func)
	case *Instance:
		return v.class.Module, true
	case *Foreign:
		if v.Type != nil {
			return v.Type.Module, true
		}
	}
	return "", false
}

// OwnerOf returns the class that declares a native descriptor.
func OwnerOf(o Object) (*Class, bool) {
	switch v := o.(type) {
	case *MethodDescriptor:
		return v.Owner, v.Owner != nil
	case *ClassMethodDescriptor:
		return v.Owner, v.Owner != nil
	case *GetSetDescriptor:
		return v.Owner, v.Owner != nil
	case *MemberDescriptor:
		return v.Owner, v.Owner != nil
	}
	return nil, false
}

// DocOf returns the cleaned documentation of o, inheriting class docs the
// way the runtime's help does.
func DocOf(o Object) string {
	var doc string
	switch v := o.(type) {
	case *Class:
		for _, k := range v.mro {
			if k != ObjectClass && k.Doc != "" {
				doc = k.Doc
				break
			}
		}
	case *Module:
		doc = v.Doc
	case *Function:
		doc = v.Doc
	case *Builtin:
		doc = v.Doc
	case *MethodDescriptor:
		doc = v.Doc
	case *ClassMethodDescriptor:
		doc = v.Doc
	case *GetSetDescriptor:
		doc = v.Doc
	case *MemberDescriptor:
		doc = v.Doc
	case *Property:
		doc = v.Doc
		if doc == "" && v.Get != nil {
			doc = DocOf(v.Get)
		}
	case *BoundMethod:
		doc = DocOf(v.Func)
	case *ClassMethod:
		doc = DocOf(v.Func)
	case *StaticMethod:
		doc = DocOf(v.Func)
	default:
		if c := o.Class(); c != nil {
			doc = DocOf(c)
		}
	}
	return cleanDoc(doc)
}

// cleanDoc removes the indentation shared by all lines after the first and
// trims blank leading and trailing lines.
func cleanDoc(doc string) string {
	if doc == "" {
		return ""
	}
	lines := strings.Split(strings.ReplaceAll(doc, "\t", "        "), "\n")
	margin := -1
	for _, l := range lines[1:] {
		trimmed := strings.TrimLeft(l, " ")
		if trimmed == "" {
			continue
		}
		if n := len(l) - len(trimmed); margin < 0 || n < margin {
			margin = n
		}
	}
	lines[0] = strings.TrimLeft(lines[0], " ")
	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= margin {
				lines[i] = lines[i][margin:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " ")
			}
		}
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// IsMethodDescriptor reports get-only descriptors that are neither classes
// nor plain functions: unbound native methods, slot wrappers and the
// classmethod/staticmethod wrappers.
func IsMethodDescriptor(o Object) bool {
	switch v := o.(type) {
	case *MethodDescriptor, *ClassMethodDescriptor, *ClassMethod, *StaticMethod:
		return true
	case *Instance:
		return isGetDescriptor(v) && !isDataDescriptor(v)
	}
	return false
}

// IsSubclass implements issubclass(sub, sup). sup may be a tuple of
// classes. A script __subclasscheck__ on sup's metaclass is honored.
func IsSubclass(rt *Runtime, sub, sup Object) (bool, error) {
	if t, ok := sup.(*Tuple); ok {
		for _, item := range t.Items {
			res, err := IsSubclass(rt, sub, item)
			if err != nil || res {
				return res, err
			}
		}
		return false, nil
	}
	supClass, ok := sup.(*Class)
	if !ok {
		return false, raise(ErrType, "issubclass() arg 2 must be a class or tuple of classes")
	}
	if hook, ok := supClass.Class().Lookup("__subclasscheck__"); ok && !isNative(hook) {
		res, err := callUnbound(rt, hook, supClass, sub)
		if err != nil {
			return false, err
		}
		return Truth(rt, res)
	}
	subClass, ok := sub.(*Class)
	if !ok {
		return false, raise(ErrType, "issubclass() arg 1 must be a class")
	}
	return subClass.IsSubclass(supClass), nil
}

// IsInstance implements isinstance(obj, cls).
func IsInstance(rt *Runtime, obj, cls Object) (bool, error) {
	c, err := ClassOf(obj)
	if err != nil {
		return false, err
	}
	return IsSubclass(rt, c, cls)
}

// userMethod returns a script-level dunder defined on the class of an
// instance. Native slots are never returned; they are handled inline.
func userMethod(o Object, name string) (Object, bool) {
	inst, ok := o.(*Instance)
	if !ok {
		return nil, false
	}
	m, ok := inst.class.Lookup(name)
	if !ok || isNative(m) {
		return nil, false
	}
	return m, true
}

// =============================================================================
// CALLING
// =============================================================================

// Call invokes a callable value.
func Call(rt *Runtime, fn Object, args ...Object) (Object, error) {
	switch f := fn.(type) {
	case *Function:
		bound, err := bindArgs(f, args)
		if err != nil {
			return nil, err
		}
		if f.Body == nil {
			return None, nil
		}
		return f.Body(rt, bound)
	case *Builtin:
		if f.Self != nil {
			args = append([]Object{f.Self}, args...)
		}
		return f.Fn(rt, args)
	case *MethodDescriptor:
		return f.Fn(rt, args)
	case *ClassMethodDescriptor:
		return f.Fn(rt, args)
	case *BoundMethod:
		return callUnbound(rt, f.Func, f.Self, args...)
	case *StaticMethod:
		return Call(rt, f.Func, args...)
	case *Class:
		return construct(rt, f, args)
	case *Instance:
		if m, ok := userMethod(f, "__call__"); ok {
			return callUnbound(rt, m, f, args...)
		}
	}
	return nil, raise(ErrType, "'%s' object is not callable", TypeName(fn))
}

func callUnbound(rt *Runtime, fn, self Object, args ...Object) (Object, error) {
	return Call(rt, fn, append([]Object{self}, args...)...)
}

// bindArgs fills positional parameters from args and declared defaults.
func bindArgs(f *Function, args []Object) ([]Object, error) {
	var out []Object
	i := 0
	for _, p := range f.Params {
		switch p.Kind {
		case VarPositional:
			out = append(out, NewTuple(args[i:]...))
			i = len(args)
		case VarKeyword:
			out = append(out, NewDict())
		default:
			switch {
			case i < len(args):
				out = append(out, args[i])
				i++
			case p.Default != nil:
				out = append(out, p.Default)
			default:
				return nil, raise(ErrType, "%s() missing required argument: '%s'", f.Name, p.Name)
			}
		}
	}
	if i < len(args) {
		return nil, raise(ErrType, "%s() takes %d positional arguments but %d were given", f.Name, i, len(args))
	}
	return out, nil
}

func construct(rt *Runtime, c *Class, args []Object) (Object, error) {
	if call, ok := c.Class().Lookup("__call__"); ok && !isNative(call) {
		return callUnbound(rt, call, c, args...)
	}
	if c.Native {
		if c.New == nil {
			return nil, raise(ErrType, "cannot create '%s' instances", c.Name)
		}
		return c.New(rt, args)
	}
	var inst Object = NewInstance(c)
	if newFn, ok := c.Lookup("__new__"); ok && !isNative(newFn) {
		res, err := Call(rt, unwrapStatic(newFn), append([]Object{c}, args...)...)
		if err != nil {
			return nil, err
		}
		inst = res
	}
	if init, ok := c.Lookup("__init__"); ok && !isNative(init) {
		if _, err := callUnbound(rt, init, inst, args...); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

func unwrapStatic(o Object) Object {
	if s, ok := o.(*StaticMethod); ok {
		return s.Func
	}
	return o
}

// =============================================================================
// TRUTH, LENGTH, ITERATION, SUBSCRIPT
// =============================================================================

// Truth is the runtime's truth conversion. Script __bool__ and __len__
// hooks run.
func Truth(rt *Runtime, o Object) (bool, error) {
	switch v := o.(type) {
	case NoneType:
		return false, nil
	case Bool:
		return bool(v), nil
	case Int:
		return v != 0, nil
	case Float:
		return v != 0, nil
	case Str:
		return v != "", nil
	case Bytes:
		return v != "", nil
	case *ByteArray:
		return len(v.Data) > 0, nil
	case *List:
		return len(v.Items) > 0, nil
	case *Tuple:
		return len(v.Items) > 0, nil
	case *Dict:
		return v.Len() > 0, nil
	case *Range:
		return v.Unbounded || v.count() != 0, nil
	case *Instance:
		if m, ok := userMethod(v, "__bool__"); ok {
			res, err := callUnbound(rt, m, v)
			if err != nil {
				return false, err
			}
			b, ok := res.(Bool)
			if !ok {
				return false, raise(ErrType, "__bool__ should return bool, returned %s", TypeName(res))
			}
			return bool(b), nil
		}
		if _, ok := userMethod(v, "__len__"); ok {
			n, err := Len(rt, v)
			return n != 0, err
		}
	}
	return true, nil
}

// Len implements len().
func Len(rt *Runtime, o Object) (int, error) {
	switch v := o.(type) {
	case Str:
		return utf8.RuneCountInString(string(v)), nil
	case Bytes:
		return len(v), nil
	case *ByteArray:
		return len(v.Data), nil
	case *List:
		return len(v.Items), nil
	case *Tuple:
		return len(v.Items), nil
	case *Dict:
		return v.Len(), nil
	case *Range:
		if v.Unbounded {
			return 0, raise(ErrValue, "range has no finite length")
		}
		n := v.count()
		if n > math.MaxInt {
			return 0, raise(ErrValue, "range length %d does not fit in an int", n)
		}
		return int(n), nil
	case *Instance:
		if m, ok := userMethod(v, "__len__"); ok {
			res, err := callUnbound(rt, m, v)
			if err != nil {
				return 0, err
			}
			n, ok := res.(Int)
			if !ok {
				return 0, raise(ErrType, "'%s' object cannot be interpreted as an integer", TypeName(res))
			}
			if n < 0 {
				return 0, raise(ErrValue, "__len__() should return >= 0")
			}
			return int(n), nil
		}
	}
	return 0, raise(ErrType, "object of type '%s' has no len()", TypeName(o))
}

func sliceIter(n func() int, at func(int) Object) *Iterator {
	i := 0
	return NewIterator(func() (Object, bool, error) {
		if i >= n() {
			return nil, false, nil
		}
		v := at(i)
		i++
		return v, true, nil
	})
}

// Iter implements iter(). Script __iter__, __next__ and __getitem__ hooks
// run; native containers iterate in Go.
func Iter(rt *Runtime, o Object) (*Iterator, error) {
	switch v := o.(type) {
	case *Iterator:
		return v, nil
	case Str:
		runes := []rune(string(v))
		return sliceIter(func() int { return len(runes) }, func(i int) Object { return Str(runes[i]) }), nil
	case Bytes:
		return sliceIter(func() int { return len(v) }, func(i int) Object { return Int(v[i]) }), nil
	case *ByteArray:
		return sliceIter(func() int { return len(v.Data) }, func(i int) Object { return Int(v.Data[i]) }), nil
	case *List:
		return sliceIter(func() int { return len(v.Items) }, func(i int) Object { return v.Items[i] }), nil
	case *Tuple:
		return sliceIter(func() int { return len(v.Items) }, func(i int) Object { return v.Items[i] }), nil
	case *Dict:
		keys := v.Keys()
		return sliceIter(func() int { return len(keys) }, func(i int) Object { return keys[i] }), nil
	case *Range:
		var i uint64
		n := v.count()
		return NewIterator(func() (Object, bool, error) {
			if !v.Unbounded && i >= n {
				return nil, false, nil
			}
			out := v.at(i)
			i++
			return out, true, nil
		}), nil
	case *Instance:
		if m, ok := userMethod(v, "__iter__"); ok {
			res, err := callUnbound(rt, m, v)
			if err != nil {
				return nil, err
			}
			if it, ok := res.(*Iterator); ok {
				return it, nil
			}
			next, ok := userMethod(res, "__next__")
			if !ok {
				return nil, raise(ErrType, "iter() returned non-iterator of type '%s'", TypeName(res))
			}
			return NewIterator(func() (Object, bool, error) {
				item, err := callUnbound(rt, next, res)
				if errors.Is(err, ErrStopIteration) {
					return nil, false, nil
				}
				if err != nil {
					return nil, false, err
				}
				return item, true, nil
			}), nil
		}
		if _, ok := userMethod(v, "__getitem__"); ok {
			i := 0
			return NewIterator(func() (Object, bool, error) {
				item, err := GetItem(rt, v, Int(i))
				if errors.Is(err, ErrIndex) || errors.Is(err, ErrStopIteration) {
					return nil, false, nil
				}
				if err != nil {
					return nil, false, err
				}
				i++
				return item, true, nil
			}), nil
		}
	}
	return nil, raise(ErrType, "'%s' object is not iterable", TypeName(o))
}

// CanIter reports whether Iter would accept o, judged from declarations
// alone: the native containers Iter walks in Go, and instances whose class
// defines a script __iter__ or __getitem__. No script code runs and
// iterators are not advanced.
func CanIter(o Object) bool {
	switch v := o.(type) {
	case *Iterator, Str, Bytes, *ByteArray, *List, *Tuple, *Dict, *Range:
		return true
	case *Instance:
		if _, ok := userMethod(v, "__iter__"); ok {
			return true
		}
		_, ok := userMethod(v, "__getitem__")
		return ok
	}
	return false
}

// sliceIndices resolves s against a sequence of length n.
func sliceIndices(s *Slice, n int) (start, stop, step int, err error) {
	bound := func(o Object, def int) (int, error) {
		if o == nil || o == Object(None) {
			return def, nil
		}
		i, ok := o.(Int)
		if !ok {
			return 0, raise(ErrType, "slice indices must be integers or None")
		}
		return int(i), nil
	}
	if step, err = bound(s.Step, 1); err != nil {
		return
	}
	if step == 0 {
		return 0, 0, 0, raise(ErrValue, "slice step cannot be zero")
	}
	lower, upper := 0, n
	if step < 0 {
		lower, upper = -1, n-1
	}
	clamp := func(i int) int {
		if i < 0 {
			i += n
			if i < lower {
				i = lower
			}
		} else if i > upper {
			i = upper
		}
		return i
	}
	defStart, defStop := lower, upper
	if step < 0 {
		defStart, defStop = upper, lower
	}
	if start, err = bound(s.Start, defStart); err != nil {
		return
	}
	if s.Start != nil && s.Start != Object(None) {
		start = clamp(start)
	}
	if stop, err = bound(s.Stop, defStop); err != nil {
		return
	}
	if s.Stop != nil && s.Stop != Object(None) {
		stop = clamp(stop)
	}
	return start, stop, step, nil
}

func sliceIndexList(s *Slice, n int) ([]int, error) {
	start, stop, step, err := sliceIndices(s, n)
	if err != nil {
		return nil, err
	}
	var out []int
	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		out = append(out, i)
	}
	return out, nil
}

func seqIndex(idx Object, n int, kind string) (int, error) {
	var i int64
	switch v := idx.(type) {
	case Int:
		i = int64(v)
	case Bool:
		if v {
			i = 1
		}
	default:
		return 0, raise(ErrType, "%s indices must be integers or slices, not %s", kind, TypeName(idx))
	}
	if i < 0 {
		i += int64(n)
	}
	if i < 0 || i >= int64(n) {
		return 0, raise(ErrIndex, "%s index out of range", kind)
	}
	return int(i), nil
}

// GetItem implements o[idx]. Script __getitem__ hooks run.
func GetItem(rt *Runtime, o, idx Object) (Object, error) {
	switch v := o.(type) {
	case Str:
		runes := []rune(string(v))
		if s, ok := idx.(*Slice); ok {
			ix, err := sliceIndexList(s, len(runes))
			if err != nil {
				return nil, err
			}
			var b strings.Builder
			for _, i := range ix {
				b.WriteRune(runes[i])
			}
			return Str(b.String()), nil
		}
		i, err := seqIndex(idx, len(runes), "string")
		if err != nil {
			return nil, err
		}
		return Str(runes[i]), nil
	case Bytes:
		out, err := byteItem([]byte(v), idx, "bytes")
		if b, ok := out.(*ByteArray); ok {
			return Bytes(b.Data), err
		}
		return out, err
	case *ByteArray:
		return byteItem(v.Data, idx, "bytearray")
	case *List:
		if s, ok := idx.(*Slice); ok {
			items, err := sliceItems(v.Items, s)
			return NewList(items...), err
		}
		return seqItem(v.Items, idx, "list")
	case *Tuple:
		if s, ok := idx.(*Slice); ok {
			items, err := sliceItems(v.Items, s)
			return NewTuple(items...), err
		}
		return seqItem(v.Items, idx, "tuple")
	case *Dict:
		val, ok, err := v.Get(idx)
		if err != nil {
			return nil, err
		}
		if !ok {
			r, _ := Repr(rt, idx)
			return nil, raise(ErrKey, "%s", r)
		}
		return val, nil
	case *Range:
		return rangeItem(v, idx)
	case *Instance:
		if m, ok := userMethod(v, "__getitem__"); ok {
			return callUnbound(rt, m, v, idx)
		}
	}
	return nil, raise(ErrType, "'%s' object is not subscriptable", TypeName(o))
}

func sliceItems(items []Object, s *Slice) ([]Object, error) {
	ix, err := sliceIndexList(s, len(items))
	if err != nil {
		return nil, err
	}
	out := make([]Object, len(ix))
	for n, i := range ix {
		out[n] = items[i]
	}
	return out, nil
}

func seqItem(items []Object, idx Object, kind string) (Object, error) {
	i, err := seqIndex(idx, len(items), kind)
	if err != nil {
		return nil, err
	}
	return items[i], nil
}

func byteItem(data []byte, idx Object, kind string) (Object, error) {
	if s, ok := idx.(*Slice); ok {
		ix, err := sliceIndexList(s, len(data))
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(ix))
		for n, i := range ix {
			out[n] = data[i]
		}
		return &ByteArray{Data: out}, nil
	}
	i, err := seqIndex(idx, len(data), kind)
	if err != nil {
		return nil, err
	}
	return Int(data[i]), nil
}

// checkedMulAdd returns base + i*step, or false on int64 overflow.
func checkedMulAdd(base, i, step int64) (int64, bool) {
	if i == 0 || step == 0 {
		return base, true
	}
	p := i * step
	if p/i != step || (i == -1 && step == math.MinInt64) {
		return 0, false
	}
	sum := base + p
	if (p > 0 && sum < base) || (p < 0 && sum > base) {
		return 0, false
	}
	return sum, true
}

func rangeItem(r *Range, idx Object) (Object, error) {
	if s, ok := idx.(*Slice); ok {
		return rangeSlice(r, s)
	}
	i, ok := idx.(Int)
	if !ok {
		if b, isBool := idx.(Bool); isBool {
			i, ok = Int(0), true
			if b {
				i = 1
			}
		}
	}
	if !ok {
		return nil, raise(ErrType, "range indices must be integers or slices, not %s", TypeName(idx))
	}
	if r.Unbounded {
		if i < 0 {
			return nil, raise(ErrIndex, "negative index into an unbounded range")
		}
		return r.at(uint64(i)), nil
	}
	n := r.count()
	pos := uint64(i)
	if i < 0 {
		back := uint64(-(i + 1)) + 1
		if back > n {
			return nil, raise(ErrIndex, "range object index out of range")
		}
		pos = n - back
	}
	if pos >= n {
		return nil, raise(ErrIndex, "range object index out of range")
	}
	return r.at(pos), nil
}

func rangeSlice(r *Range, s *Slice) (Object, error) {
	if r.Unbounded {
		return nil, raise(ErrValue, "cannot slice an unbounded range")
	}
	n := r.count()
	if n > math.MaxInt {
		return nil, raise(ErrValue, "range length %d does not fit in an int", n)
	}
	start, stop, step, err := sliceIndices(s, int(n))
	if err != nil {
		return nil, err
	}
	newStep, ok := checkedMulAdd(0, r.Step, int64(step))
	if !ok {
		return nil, raise(ErrValue, "range step overflows")
	}

	var k int
	switch {
	case step > 0 && start < stop:
		k = (stop-start-1)/step + 1
	case step < 0 && start > stop:
		k = (start-stop-1)/-step + 1
	}
	if k == 0 {
		return &Range{Start: r.Start, Stop: r.Start, Step: newStep}, nil
	}

	first := r.at(uint64(start))
	if bound, ok := checkedMulAdd(r.Start, int64(stop), r.Step); ok {
		return &Range{Start: int64(first), Stop: bound, Step: newStep}, nil
	}
	// The natural bound lies outside int64; stop one past the last item.
	last := int64(r.at(uint64(start) + uint64(k-1)*uint64(step)))
	bound, ok := checkedMulAdd(last, 1, stepSign(newStep))
	if !ok {
		return nil, raise(ErrValue, "range slice bound overflows")
	}
	return &Range{Start: int64(first), Stop: bound, Step: newStep}, nil
}

func stepSign(v int64) int64 {
	if v < 0 {
		return -1
	}
	return 1
}

// =============================================================================
// REPR
// =============================================================================

func (i Int) repr() string { return strconv.FormatInt(int64(i), 10) }

func (f Float) repr() string {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

func quoteStr(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == rune(q) || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

func quoteBytes(data []byte) string {
	var b strings.Builder
	b.WriteString("b'")
	for _, c := range data {
		switch {
		case c == '\'' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, `\x%02x`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// Repr implements repr(). Script __repr__ hooks run; self-referencing
// containers print as [...].
func Repr(rt *Runtime, o Object) (string, error) {
	return reprGuarded(rt, o, make(map[Object]bool))
}

func reprGuarded(rt *Runtime, o Object, active map[Object]bool) (string, error) {
	join := func(items []Object, sep string) (string, error) {
		parts := make([]string, len(items))
		for i, item := range items {
			s, err := reprGuarded(rt, item, active)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, sep), nil
	}
	switch o.(type) {
	case *List, *Dict, *Tuple:
		if active[o] {
			if _, ok := o.(*Dict); ok {
				return "{...}", nil
			}
			return "[...]", nil
		}
		active[o] = true
		defer delete(active, o)
	}

	switch v := o.(type) {
	case nil:
		return "<NULL>", nil
	case NoneType:
		return "None", nil
	case EllipsisType:
		return "Ellipsis", nil
	case Bool:
		if v {
			return "True", nil
		}
		return "False", nil
	case Int:
		return v.repr(), nil
	case Float:
		return v.repr(), nil
	case Str:
		return quoteStr(string(v)), nil
	case Bytes:
		return quoteBytes([]byte(v)), nil
	case *ByteArray:
		return "bytearray(" + quoteBytes(v.Data) + ")", nil
	case *List:
		s, err := join(v.Items, ", ")
		return "[" + s + "]", err
	case *Tuple:
		s, err := join(v.Items, ", ")
		if len(v.Items) == 1 {
			s += ","
		}
		return "(" + s + ")", err
	case *Dict:
		parts := make([]string, v.Len())
		for i := range v.keys {
			k, err := reprGuarded(rt, v.keys[i], active)
			if err != nil {
				return "", err
			}
			val, err := reprGuarded(rt, v.vals[i], active)
			if err != nil {
				return "", err
			}
			parts[i] = k + ": " + val
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	case *Slice:
		bound := func(b Object) Object {
			if b == nil {
				return None
			}
			return b
		}
		s, err := join([]Object{bound(v.Start), bound(v.Stop), bound(v.Step)}, ", ")
		return "slice(" + s + ")", err
	case *Range:
		stop := strconv.FormatInt(v.Stop, 10)
		if v.Unbounded {
			stop = "inf"
		}
		if v.Step == 1 {
			return fmt.Sprintf("range(%d, %s)", v.Start, stop), nil
		}
		return fmt.Sprintf("range(%d, %s, %d)", v.Start, stop, v.Step), nil
	case *Class:
		if v.Module == "" || v.Module == "builtins" {
			return fmt.Sprintf("<class '%s'>", v.Name), nil
		}
		return fmt.Sprintf("<class '%s.%s'>", v.Module, v.Name), nil
	case *Module:
		if v.File == "" {
			return fmt.Sprintf("<module '%s' (built-in)>", v.Name), nil
		}
		return fmt.Sprintf("<module '%s' from '%s'>", v.Name, v.File), nil
	case *Function:
		name := v.Qualname
		if name == "" {
			name = v.Name
		}
		return fmt.Sprintf("<function %s at %s>", name, addr(v)), nil
	case *Builtin:
		if v.Self == nil {
			return fmt.Sprintf("<built-in function %s>", v.Name), nil
		}
		if c, ok := v.Self.(*Class); ok {
			return fmt.Sprintf("<built-in method %s of type object at %s>", v.Name, addr(c)), nil
		}
		return fmt.Sprintf("<built-in method %s of %s object at %s>", v.Name, TypeName(v.Self), addr(v.Self)), nil
	case *MethodDescriptor:
		kind := "method"
		if v.Slot {
			kind = "slot wrapper"
		}
		return fmt.Sprintf("<%s '%s' of '%s' objects>", kind, v.Name, ownerName(v.Owner)), nil
	case *ClassMethodDescriptor:
		return fmt.Sprintf("<method '%s' of '%s' objects>", v.Name, ownerName(v.Owner)), nil
	case *GetSetDescriptor:
		return fmt.Sprintf("<attribute '%s' of '%s' objects>", v.Name, ownerName(v.Owner)), nil
	case *MemberDescriptor:
		return fmt.Sprintf("<member '%s' of '%s' objects>", v.Name, ownerName(v.Owner)), nil
	case *BoundMethod:
		name, _ := NameOf(v.Func)
		self, err := reprGuarded(rt, v.Self, active)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("<bound method %s of %s>", name, self), nil
	case *Foreign:
		return fmt.Sprintf("<%s object at %s>", TypeName(v), addr(v)), nil
	case *Instance:
		if m, ok := userMethod(v, "__repr__"); ok {
			res, err := callUnbound(rt, m, v)
			if err != nil {
				return "", err
			}
			s, ok := res.(Str)
			if !ok {
				return "", raise(ErrType, "__repr__ returned non-string (type %s)", TypeName(res))
			}
			return string(s), nil
		}
		return fmt.Sprintf("<%s.%s object at %s>", v.class.Module, v.class.Name, addr(v)), nil
	}
	return fmt.Sprintf("<%s object at %s>", TypeName(o), addr(o)), nil
}

func ownerName(c *Class) string {
	if c == nil {
		return "?"
	}
	return c.Name
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toInt(o Object) (Object, error) {
	switch v := o.(type) {
	case Int:
		return v, nil
	case Bool:
		if v {
			return Int(1), nil
		}
		return Int(0), nil
	case Float:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, raise(ErrValue, "cannot convert float %s to integer", v.repr())
		}
		return Int(int64(v)), nil
	case Str:
		n, err := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
		if err != nil {
			return nil, raise(ErrValue, "invalid literal for int() with base 10: %s", quoteStr(string(v)))
		}
		return Int(n), nil
	}
	return nil, raise(ErrType, "int() argument must be a string or a number, not '%s'", TypeName(o))
}

func toFloat(o Object) (Object, error) {
	switch v := o.(type) {
	case Float:
		return v, nil
	case Int:
		return Float(v), nil
	case Bool:
		if v {
			return Float(1), nil
		}
		return Float(0), nil
	case Str:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err != nil {
			return nil, raise(ErrValue, "could not convert string to float: %s", quoteStr(string(v)))
		}
		return Float(f), nil
	}
	return nil, raise(ErrType, "float() argument must be a string or a number, not '%s'", TypeName(o))
}
