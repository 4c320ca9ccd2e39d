package object

import (
	"strings"
)

// Native classes. Their dictionaries are filled in init; nothing else may
// mutate them.
var (
	ObjectClass = newNativeClass("object")
	TypeClass   = newNativeClass("type", ObjectClass)

	IntClass       = newNativeClass("int", ObjectClass)
	BoolClass      = newNativeClass("bool", IntClass)
	FloatClass     = newNativeClass("float", ObjectClass)
	StrClass       = newNativeClass("str", ObjectClass)
	BytesClass     = newNativeClass("bytes", ObjectClass)
	ByteArrayClass = newNativeClass("bytearray", ObjectClass)
	ListClass      = newNativeClass("list", ObjectClass)
	TupleClass     = newNativeClass("tuple", ObjectClass)
	DictClass      = newNativeClass("dict", ObjectClass)
	SliceClass     = newNativeClass("slice", ObjectClass)
	RangeClass     = newNativeClass("range", ObjectClass)
	NoneTypeClass  = newNativeClass("NoneType", ObjectClass)
	EllipsisClass  = newNativeClass("ellipsis", ObjectClass)
	IteratorClass  = newNativeClass("iterator", ObjectClass)

	ModuleClass                = newNativeClass("module", ObjectClass)
	FunctionClass              = newNativeClass("function", ObjectClass)
	BuiltinFunctionClass       = newNativeClass("builtin_function_or_method", ObjectClass)
	MethodClass                = newNativeClass("method", ObjectClass)
	MethodDescriptorClass      = newNativeClass("method_descriptor", ObjectClass)
	WrapperDescriptorClass     = newNativeClass("wrapper_descriptor", ObjectClass)
	ClassMethodDescriptorClass = newNativeClass("classmethod_descriptor", ObjectClass)
	GetSetDescriptorClass      = newNativeClass("getset_descriptor", ObjectClass)
	MemberDescriptorClass      = newNativeClass("member_descriptor", ObjectClass)
	PropertyClass              = newNativeClass("property", ObjectClass)
	ClassMethodClass           = newNativeClass("classmethod", ObjectClass)
	StaticMethodClass          = newNativeClass("staticmethod", ObjectClass)
)

// builtinClasses are exported by the builtins module under their own names.
func builtinClasses() []*Class {
	return []*Class{
		ObjectClass, TypeClass, IntClass, BoolClass, FloatClass, StrClass,
		BytesClass, ByteArrayClass, ListClass, TupleClass, DictClass,
		SliceClass, RangeClass, PropertyClass, ClassMethodClass, StaticMethodClass,
	}
}

func newNativeClass(name string, bases ...*Class) *Class {
	c := &Class{Name: name, Module: "builtins", Bases: bases, Dict: NewNamespace(), Native: true}
	mro, err := linearize(c)
	if err != nil {
		panic(err)
	}
	c.mro = mro
	return c
}

// =============================================================================
// DICTIONARY HELPERS
// =============================================================================

func params(names ...string) []Param {
	out := make([]Param, 0, len(names))
	for _, n := range names {
		switch {
		case strings.HasPrefix(n, "**"):
			out = append(out, Param{Name: n[2:], Kind: VarKeyword})
		case strings.HasPrefix(n, "*"):
			out = append(out, Param{Name: n[1:], Kind: VarPositional})
		default:
			out = append(out, Param{Name: n})
		}
	}
	return out
}

func withDefault(ps []Param, name string, def Object) []Param {
	return append(ps, Param{Name: name, Default: def})
}

func defMethod(owner *Class, name, doc string, sig []Param, fn NativeFunc) {
	owner.Dict.Set(name, &MethodDescriptor{Name: name, Doc: doc, Owner: owner, Sig: sig, Fn: fn})
}

func defSlot(owner *Class, name string, fn NativeFunc) {
	owner.Dict.Set(name, &MethodDescriptor{Name: name, Owner: owner, Slot: true, Fn: fn,
		Doc: "Slot wrapper for " + name + "."})
}

func defClassMethod(owner *Class, name, doc string, sig []Param, fn NativeFunc) {
	owner.Dict.Set(name, &ClassMethodDescriptor{Name: name, Doc: doc, Owner: owner, Sig: sig, Fn: fn})
}

func defGetSet(owner *Class, name, doc string, get func(Object) (Object, error)) {
	owner.Dict.Set(name, &GetSetDescriptor{Name: name, Doc: doc, Owner: owner, Get: get})
}

func defMember(owner *Class, name, doc string) {
	owner.Dict.Set(name, &MemberDescriptor{Name: name, Doc: doc, Owner: owner})
}

func getName(o Object) (Object, error) {
	if n, ok := NameOf(o); ok {
		return Str(n), nil
	}
	return nil, raise(ErrAttribute, "'%s' object has no attribute '__name__'", TypeName(o))
}

func getDoc(o Object) (Object, error) { return Str(DocOf(o)), nil }

func getOwner(o Object) (Object, error) {
	if c, ok := OwnerOf(o); ok {
		return c, nil
	}
	return nil, raise(ErrAttribute, "'%s' object has no attribute '__objclass__'", TypeName(o))
}

func getModule(o Object) (Object, error) {
	name, ok := ModuleNameOf(o)
	if !ok {
		return nil, raise(ErrAttribute, "'%s' object has no attribute '__module__'", TypeName(o))
	}
	if name == "" {
		return None, nil
	}
	return Str(name), nil
}

func defNamed(owner *Class) {
	defGetSet(owner, "__name__", "The name of the object.", getName)
	defGetSet(owner, "__doc__", "The documentation string.", getDoc)
}

// =============================================================================
// ARGUMENT HELPERS
// =============================================================================

func arity(fn string, args []Object, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		return raise(ErrType, "%s() takes %d to %d arguments (%d given)", fn, min, max, len(args))
	}
	return nil
}

func argStr(fn string, args []Object, i int) (string, error) {
	if s, ok := args[i].(Str); ok {
		return string(s), nil
	}
	return "", raise(ErrType, "%s() argument %d must be str, not %s", fn, i, TypeName(args[i]))
}

func argInt(fn string, args []Object, i int) (int64, error) {
	switch v := args[i].(type) {
	case Int:
		return int64(v), nil
	case Bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	return 0, raise(ErrType, "%s() argument %d must be int, not %s", fn, i, TypeName(args[i]))
}

func collect(rt *Runtime, o Object) ([]Object, error) {
	it, err := Iter(rt, o)
	if err != nil {
		return nil, err
	}
	var out []Object
	for {
		v, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

// =============================================================================
// SLOT IMPLEMENTATIONS
// =============================================================================

func slotLen(rt *Runtime, args []Object) (Object, error) {
	if err := arity("__len__", args, 1, 1); err != nil {
		return nil, err
	}
	n, err := Len(rt, args[0])
	return Int(n), err
}

func slotIter(rt *Runtime, args []Object) (Object, error) {
	if err := arity("__iter__", args, 1, 1); err != nil {
		return nil, err
	}
	return Iter(rt, args[0])
}

func slotGetItem(rt *Runtime, args []Object) (Object, error) {
	if err := arity("__getitem__", args, 2, 2); err != nil {
		return nil, err
	}
	return GetItem(rt, args[0], args[1])
}

func slotRepr(rt *Runtime, args []Object) (Object, error) {
	if err := arity("__repr__", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := Repr(rt, args[0])
	return Str(s), err
}

func slotInit(rt *Runtime, args []Object) (Object, error) { return None, nil }

func slotNew(rt *Runtime, args []Object) (Object, error) {
	if len(args) == 0 {
		return nil, raise(ErrType, "__new__(): not enough arguments")
	}
	c, ok := args[0].(*Class)
	if !ok {
		return nil, raise(ErrType, "__new__(X): X is not a type object (%s)", TypeName(args[0]))
	}
	return Call(rt, c, args[1:]...)
}

func defContainerSlots(c *Class) {
	defSlot(c, "__len__", slotLen)
	defSlot(c, "__iter__", slotIter)
	defSlot(c, "__getitem__", slotGetItem)
}

func init() {
	initObjectAndType()
	initNumbers()
	initStrings()
	initContainers()
	initCallables()
}

func initObjectAndType() {
	ObjectClass.Doc = "The base class of the class hierarchy."
	ObjectClass.TextSignature = []Param{}
	defSlot(ObjectClass, "__init__", slotInit)
	defSlot(ObjectClass, "__new__", slotNew)
	defSlot(ObjectClass, "__repr__", slotRepr)
	defGetSet(ObjectClass, "__class__", "The class of the object.", func(o Object) (Object, error) {
		return ClassOf(o)
	})
	defGetSet(ObjectClass, "__doc__", "The documentation string.", getDoc)
	defClassMethod(ObjectClass, "__subclasshook__", "Abstract classes can override this to customize issubclass().",
		params("cls", "subclass"), func(rt *Runtime, args []Object) (Object, error) { return None, nil })
	ObjectClass.New = func(rt *Runtime, args []Object) (Object, error) {
		return NewInstance(ObjectClass), nil
	}

	TypeClass.Doc = "type(object) -> the object's type"
	defSlot(TypeClass, "__init__", slotInit)
	defNamed(TypeClass)
	defGetSet(TypeClass, "__module__", "The declaring module.", getModule)
	defGetSet(TypeClass, "__mro__", "The method resolution order.", func(o Object) (Object, error) {
		c, ok := o.(*Class)
		if !ok {
			return nil, raise(ErrAttribute, "'%s' object has no attribute '__mro__'", TypeName(o))
		}
		items := make([]Object, 0, len(c.mro))
		for _, k := range c.mro {
			items = append(items, k)
		}
		return NewTuple(items...), nil
	})
	defGetSet(TypeClass, "__bases__", "The direct base classes.", func(o Object) (Object, error) {
		c, ok := o.(*Class)
		if !ok {
			return nil, raise(ErrAttribute, "'%s' object has no attribute '__bases__'", TypeName(o))
		}
		items := make([]Object, 0, len(c.Bases))
		for _, k := range c.Bases {
			items = append(items, k)
		}
		return NewTuple(items...), nil
	})
	TypeClass.New = func(rt *Runtime, args []Object) (Object, error) {
		if len(args) != 1 {
			return nil, raise(ErrType, "type() takes 1 argument")
		}
		return ClassOf(args[0])
	}
}

func initNumbers() {
	IntClass.Doc = "int(x=0) -> integer"
	defSlot(IntClass, "__new__", slotNew)
	defMethod(IntClass, "bit_length", "Number of bits necessary to represent self in binary.",
		params("self"), func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("bit_length", args, 1, 1); err != nil {
				return nil, err
			}
			n, err := argInt("bit_length", args, 0)
			if err != nil {
				return nil, err
			}
			if n < 0 {
				n = -n
			}
			bits := 0
			for ; n > 0; n >>= 1 {
				bits++
			}
			return Int(bits), nil
		})
	defGetSet(IntClass, "real", "the real part of a complex number", func(o Object) (Object, error) {
		return o, nil
	})
	IntClass.New = func(rt *Runtime, args []Object) (Object, error) {
		if err := arity("int", args, 0, 1); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return Int(0), nil
		}
		return toInt(args[0])
	}

	BoolClass.Doc = "bool(x) -> bool"
	defSlot(BoolClass, "__new__", slotNew)
	BoolClass.New = func(rt *Runtime, args []Object) (Object, error) {
		if err := arity("bool", args, 0, 1); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return Bool(false), nil
		}
		t, err := Truth(rt, args[0])
		return Bool(t), err
	}

	FloatClass.Doc = "Convert a string or number to a floating point number, if possible."
	defSlot(FloatClass, "__new__", slotNew)
	defMethod(FloatClass, "is_integer", "Return True if the float is an integer.",
		params("self"), func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("is_integer", args, 1, 1); err != nil {
				return nil, err
			}
			f, ok := args[0].(Float)
			if !ok {
				return nil, raise(ErrType, "descriptor 'is_integer' requires a 'float' object")
			}
			return Bool(float64(f) == float64(int64(f))), nil
		})
	FloatClass.New = func(rt *Runtime, args []Object) (Object, error) {
		if err := arity("float", args, 0, 1); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return Float(0), nil
		}
		return toFloat(args[0])
	}

	SliceClass.Doc = "slice(stop)\nslice(start, stop[, step])"
	defMember(SliceClass, "start", "")
	defMember(SliceClass, "stop", "")
	defMember(SliceClass, "step", "")
	RangeClass.Doc = "range(stop) -> range object\nrange(start, stop[, step]) -> range object"
	defMember(RangeClass, "start", "")
	defMember(RangeClass, "stop", "")
	defMember(RangeClass, "step", "")
	defContainerSlots(RangeClass)
}

func initStrings() {
	StrClass.Doc = "str(object='') -> str\n\nCreate a new string object from the given object."
	defSlot(StrClass, "__new__", slotNew)
	defContainerSlots(StrClass)
	defMethod(StrClass, "replace",
		"Return a copy with all occurrences of substring old replaced by new.\n\n"+
			"  count\n    Maximum number of occurrences to replace.\n    -1 (the default value) means replace all occurrences.",
		withDefault(params("self", "old", "new"), "count", Int(-1)),
		func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("replace", args, 3, 4); err != nil {
				return nil, err
			}
			var parts [3]string
			for i := range parts {
				s, err := argStr("replace", args, i)
				if err != nil {
					return nil, err
				}
				parts[i] = s
			}
			n := int64(-1)
			if len(args) == 4 {
				v, err := argInt("replace", args, 3)
				if err != nil {
					return nil, err
				}
				n = v
			}
			return Str(strings.Replace(parts[0], parts[1], parts[2], int(n))), nil
		})
	defMethod(StrClass, "upper", "Return a copy of the string converted to uppercase.", params("self"),
		strUnary("upper", strings.ToUpper))
	defMethod(StrClass, "lower", "Return a copy of the string converted to lowercase.", params("self"),
		strUnary("lower", strings.ToLower))
	defMethod(StrClass, "strip", "Return a copy of the string with leading and trailing whitespace removed.",
		params("self"), strUnary("strip", strings.TrimSpace))
	defMethod(StrClass, "startswith", "Return True if S starts with the specified prefix, False otherwise.",
		params("self", "prefix"), func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("startswith", args, 2, 2); err != nil {
				return nil, err
			}
			s, err := argStr("startswith", args, 0)
			if err != nil {
				return nil, err
			}
			p, err := argStr("startswith", args, 1)
			if err != nil {
				return nil, err
			}
			return Bool(strings.HasPrefix(s, p)), nil
		})
	defMethod(StrClass, "split", "Return a list of the substrings in the string, using sep as the separator string.",
		withDefault(params("self"), "sep", None), func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("split", args, 1, 2); err != nil {
				return nil, err
			}
			s, err := argStr("split", args, 0)
			if err != nil {
				return nil, err
			}
			var fields []string
			if len(args) == 1 || args[1] == Object(None) {
				fields = strings.Fields(s)
			} else {
				sep, err := argStr("split", args, 1)
				if err != nil {
					return nil, err
				}
				fields = strings.Split(s, sep)
			}
			out := make([]Object, len(fields))
			for i, f := range fields {
				out[i] = Str(f)
			}
			return NewList(out...), nil
		})
	defMethod(StrClass, "join", "Concatenate any number of strings.",
		params("self", "iterable"), func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("join", args, 2, 2); err != nil {
				return nil, err
			}
			sep, err := argStr("join", args, 0)
			if err != nil {
				return nil, err
			}
			items, err := collect(rt, args[1])
			if err != nil {
				return nil, err
			}
			parts := make([]string, len(items))
			for i, item := range items {
				s, ok := item.(Str)
				if !ok {
					return nil, raise(ErrType, "sequence item %d: expected str instance, %s found", i, TypeName(item))
				}
				parts[i] = string(s)
			}
			return Str(strings.Join(parts, sep)), nil
		})
	StrClass.New = func(rt *Runtime, args []Object) (Object, error) {
		if err := arity("str", args, 0, 1); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return Str(""), nil
		}
		if s, ok := args[0].(Str); ok {
			return s, nil
		}
		s, err := Repr(rt, args[0])
		return Str(s), err
	}

	BytesClass.Doc = "bytes(iterable_of_ints) -> bytes"
	defSlot(BytesClass, "__new__", slotNew)
	defContainerSlots(BytesClass)
	defMethod(BytesClass, "decode", "Decode the bytes using the codec registered for encoding.",
		withDefault(params("self"), "encoding", Str("utf-8")), func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("decode", args, 1, 2); err != nil {
				return nil, err
			}
			b, ok := args[0].(Bytes)
			if !ok {
				return nil, raise(ErrType, "descriptor 'decode' requires a 'bytes' object")
			}
			return Str(b), nil
		})
	BytesClass.New = func(rt *Runtime, args []Object) (Object, error) {
		if err := arity("bytes", args, 0, 1); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return Bytes(""), nil
		}
		data, err := byteValues(rt, args[0])
		return Bytes(data), err
	}

	ByteArrayClass.Doc = "bytearray(iterable_of_ints) -> bytearray"
	defSlot(ByteArrayClass, "__init__", slotInit)
	defContainerSlots(ByteArrayClass)
	ByteArrayClass.New = func(rt *Runtime, args []Object) (Object, error) {
		if err := arity("bytearray", args, 0, 1); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return &ByteArray{}, nil
		}
		data, err := byteValues(rt, args[0])
		return &ByteArray{Data: data}, err
	}
}

func strUnary(name string, fn func(string) string) NativeFunc {
	return func(rt *Runtime, args []Object) (Object, error) {
		if err := arity(name, args, 1, 1); err != nil {
			return nil, err
		}
		s, err := argStr(name, args, 0)
		if err != nil {
			return nil, err
		}
		return Str(fn(s)), nil
	}
}

func byteValues(rt *Runtime, o Object) ([]byte, error) {
	switch v := o.(type) {
	case Bytes:
		return []byte(v), nil
	case *ByteArray:
		return append([]byte(nil), v.Data...), nil
	}
	items, err := collect(rt, o)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(items))
	for i, item := range items {
		n, ok := item.(Int)
		if !ok || n < 0 || n > 255 {
			return nil, raise(ErrValue, "bytes must be in range(0, 256)")
		}
		out[i] = byte(n)
	}
	return out, nil
}

func initContainers() {
	ListClass.Doc = "Built-in mutable sequence."
	defSlot(ListClass, "__init__", slotInit)
	defContainerSlots(ListClass)
	defMethod(ListClass, "append", "Append object to the end of the list.",
		params("self", "object"), func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("append", args, 2, 2); err != nil {
				return nil, err
			}
			l, ok := args[0].(*List)
			if !ok {
				return nil, raise(ErrType, "descriptor 'append' requires a 'list' object")
			}
			l.Items = append(l.Items, args[1])
			return None, nil
		})
	defMethod(ListClass, "copy", "Return a shallow copy of the list.",
		params("self"), func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("copy", args, 1, 1); err != nil {
				return nil, err
			}
			l, ok := args[0].(*List)
			if !ok {
				return nil, raise(ErrType, "descriptor 'copy' requires a 'list' object")
			}
			return NewList(append([]Object(nil), l.Items...)...), nil
		})
	ListClass.New = func(rt *Runtime, args []Object) (Object, error) {
		if err := arity("list", args, 0, 1); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return NewList(), nil
		}
		items, err := collect(rt, args[0])
		return NewList(items...), err
	}

	TupleClass.Doc = "Built-in immutable sequence."
	defSlot(TupleClass, "__new__", slotNew)
	defContainerSlots(TupleClass)
	defMethod(TupleClass, "count", "Return number of occurrences of value.",
		params("self", "value"), func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("count", args, 2, 2); err != nil {
				return nil, err
			}
			t, ok := args[0].(*Tuple)
			if !ok {
				return nil, raise(ErrType, "descriptor 'count' requires a 'tuple' object")
			}
			n := 0
			for _, item := range t.Items {
				eq, err := equal(rt, item, args[1])
				if err != nil {
					return nil, err
				}
				if eq {
					n++
				}
			}
			return Int(n), nil
		})
	TupleClass.New = func(rt *Runtime, args []Object) (Object, error) {
		if err := arity("tuple", args, 0, 1); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return NewTuple(), nil
		}
		items, err := collect(rt, args[0])
		return NewTuple(items...), err
	}

	DictClass.Doc = "dict() -> new empty dictionary"
	defSlot(DictClass, "__init__", slotInit)
	defContainerSlots(DictClass)
	dictMethod := func(name, doc string, fn func(d *Dict) Object) {
		defMethod(DictClass, name, doc, params("self"), func(rt *Runtime, args []Object) (Object, error) {
			if err := arity(name, args, 1, 1); err != nil {
				return nil, err
			}
			d, ok := args[0].(*Dict)
			if !ok {
				return nil, raise(ErrType, "descriptor '%s' requires a 'dict' object", name)
			}
			return fn(d), nil
		})
	}
	dictMethod("keys", "D.keys() -> a set-like object providing a view on D's keys", func(d *Dict) Object {
		return NewList(d.Keys()...)
	})
	dictMethod("values", "D.values() -> an object providing a view on D's values", func(d *Dict) Object {
		return NewList(d.Values()...)
	})
	dictMethod("items", "D.items() -> a set-like object providing a view on D's items", func(d *Dict) Object {
		items := make([]Object, d.Len())
		for i := range d.keys {
			items[i] = NewTuple(d.keys[i], d.vals[i])
		}
		return NewList(items...)
	})
	defMethod(DictClass, "get", "Return the value for key if key is in the dictionary, else default.",
		withDefault(params("self", "key"), "default", None), func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("get", args, 2, 3); err != nil {
				return nil, err
			}
			d, ok := args[0].(*Dict)
			if !ok {
				return nil, raise(ErrType, "descriptor 'get' requires a 'dict' object")
			}
			v, found, err := d.Get(args[1])
			if err != nil {
				return nil, err
			}
			if found {
				return v, nil
			}
			if len(args) == 3 {
				return args[2], nil
			}
			return None, nil
		})
	defClassMethod(DictClass, "fromkeys", "Create a new dictionary with keys from iterable and values set to value.",
		withDefault(params("iterable"), "value", None), func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("fromkeys", args, 2, 3); err != nil {
				return nil, err
			}
			keys, err := collect(rt, args[1])
			if err != nil {
				return nil, err
			}
			var val Object = None
			if len(args) == 3 {
				val = args[2]
			}
			d := NewDict()
			for _, k := range keys {
				if err := d.Set(k, val); err != nil {
					return nil, err
				}
			}
			return d, nil
		})
	DictClass.New = func(rt *Runtime, args []Object) (Object, error) {
		if err := arity("dict", args, 0, 0); err != nil {
			return nil, err
		}
		return NewDict(), nil
	}

	IteratorClass.Doc = "Native iterator."
	defSlot(IteratorClass, "__iter__", func(rt *Runtime, args []Object) (Object, error) {
		if err := arity("__iter__", args, 1, 1); err != nil {
			return nil, err
		}
		return args[0], nil
	})
	defSlot(IteratorClass, "__next__", func(rt *Runtime, args []Object) (Object, error) {
		if err := arity("__next__", args, 1, 1); err != nil {
			return nil, err
		}
		it, ok := args[0].(*Iterator)
		if !ok {
			return nil, raise(ErrType, "descriptor '__next__' requires an 'iterator' object")
		}
		v, more, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !more {
			return nil, raise(ErrStopIteration, "iterator exhausted")
		}
		return v, nil
	})

	NoneTypeClass.Doc = ""
	EllipsisClass.Doc = ""
}

func initCallables() {
	ModuleClass.Doc = "Create a module object."
	defSlot(ModuleClass, "__init__", slotInit)

	FunctionClass.Doc = "Create a function object."
	defNamed(FunctionClass)
	defGetSet(FunctionClass, "__module__", "The declaring module.", getModule)
	defGetSet(FunctionClass, "__qualname__", "The qualified name.", func(o Object) (Object, error) {
		f, ok := o.(*Function)
		if !ok {
			return nil, raise(ErrAttribute, "'%s' object has no attribute '__qualname__'", TypeName(o))
		}
		if f.Qualname != "" {
			return Str(f.Qualname), nil
		}
		return Str(f.Name), nil
	})

	BuiltinFunctionClass.Doc = ""
	defNamed(BuiltinFunctionClass)
	defGetSet(BuiltinFunctionClass, "__module__", "The declaring module.", getModule)
	defGetSet(BuiltinFunctionClass, "__self__", "The bound receiver.", func(o Object) (Object, error) {
		if b, ok := o.(*Builtin); ok && b.Self != nil {
			return b.Self, nil
		}
		return None, nil
	})

	MethodClass.Doc = "Create a bound instance method object."
	defGetSet(MethodClass, "__func__", "The underlying function.", func(o Object) (Object, error) {
		m, ok := o.(*BoundMethod)
		if !ok {
			return nil, raise(ErrAttribute, "'%s' object has no attribute '__func__'", TypeName(o))
		}
		return m.Func, nil
	})
	defGetSet(MethodClass, "__self__", "The bound receiver.", func(o Object) (Object, error) {
		m, ok := o.(*BoundMethod)
		if !ok {
			return nil, raise(ErrAttribute, "'%s' object has no attribute '__self__'", TypeName(o))
		}
		return m.Self, nil
	})
	defNamed(MethodClass)

	for _, c := range []*Class{
		MethodDescriptorClass, WrapperDescriptorClass, ClassMethodDescriptorClass,
		GetSetDescriptorClass, MemberDescriptorClass,
	} {
		defNamed(c)
		defGetSet(c, "__objclass__", "The owning class.", getOwner)
	}

	PropertyClass.Doc = "Property attribute."
	PropertyClass.TextSignature = []Param{
		{Name: "fget", Default: None}, {Name: "fset", Default: None},
		{Name: "fdel", Default: None}, {Name: "doc", Default: None},
	}
	defGetSet(PropertyClass, "fget", "The getter.", func(o Object) (Object, error) {
		if p, ok := o.(*Property); ok && p.Get != nil {
			return p.Get, nil
		}
		return None, nil
	})
	defGetSet(PropertyClass, "__doc__", "The documentation string.", getDoc)
	PropertyClass.New = func(rt *Runtime, args []Object) (Object, error) {
		if err := arity("property", args, 0, 2); err != nil {
			return nil, err
		}
		p := &Property{}
		if len(args) > 0 {
			p.Get = args[0]
		}
		if len(args) > 1 {
			p.Set = args[1]
		}
		return p, nil
	}

	funcGetter := func(o Object) (Object, error) {
		switch v := o.(type) {
		case *ClassMethod:
			return v.Func, nil
		case *StaticMethod:
			return v.Func, nil
		}
		return nil, raise(ErrAttribute, "'%s' object has no attribute '__func__'", TypeName(o))
	}
	ClassMethodClass.Doc = "classmethod(function) -> method"
	ClassMethodClass.TextSignature = params("function")
	defGetSet(ClassMethodClass, "__func__", "The wrapped function.", funcGetter)
	ClassMethodClass.New = func(rt *Runtime, args []Object) (Object, error) {
		if err := arity("classmethod", args, 1, 1); err != nil {
			return nil, err
		}
		return &ClassMethod{Func: args[0]}, nil
	}
	StaticMethodClass.Doc = "staticmethod(function) -> method"
	StaticMethodClass.TextSignature = params("function")
	defGetSet(StaticMethodClass, "__func__", "The wrapped function.", funcGetter)
	StaticMethodClass.New = func(rt *Runtime, args []Object) (Object, error) {
		if err := arity("staticmethod", args, 1, 1); err != nil {
			return nil, err
		}
		return &StaticMethod{Func: args[0]}, nil
	}
}
