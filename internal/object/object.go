// Package object implements the value model of the embedded script runtime.
//
// The runtime is dynamically typed: every value carries a class, classes are
// linearized with C3, and attribute reads go through descriptors that may run
// script code. Analysis code must not touch these values directly; it goes
// through internal/access, which only performs reads that are known to be
// side-effect free.
package object

import (
	"errors"
	"fmt"
)

// Host faults. Every error raised by the runtime wraps exactly one of these.
var (
	ErrAttribute     = errors.New("AttributeError")
	ErrType          = errors.New("TypeError")
	ErrValue         = errors.New("ValueError")
	ErrIndex         = errors.New("IndexError")
	ErrKey           = errors.New("KeyError")
	ErrImport        = errors.New("ImportError")
	ErrStopIteration = errors.New("StopIteration")
)

func raise(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Object is any runtime value.
type Object interface {
	// Class returns the runtime class of the value. Only *Foreign values
	// may return nil, when the Go type behind them was never registered.
	Class() *Class
}

// NativeFunc implements a callable in Go. Bound receivers arrive as args[0].
type NativeFunc func(rt *Runtime, args []Object) (Object, error)

// =============================================================================
// NAMESPACES
// =============================================================================

// Namespace is an insertion-ordered attribute dictionary.
type Namespace struct {
	keys []string
	vals map[string]Object
}

// NewNamespace returns an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{vals: make(map[string]Object)}
}

// Get returns the value bound to name. It is safe on a nil namespace.
func (n *Namespace) Get(name string) (Object, bool) {
	if n == nil {
		return nil, false
	}
	v, ok := n.vals[name]
	return v, ok
}

// Set binds name, keeping the original position when rebinding.
func (n *Namespace) Set(name string, v Object) {
	if _, ok := n.vals[name]; !ok {
		n.keys = append(n.keys, name)
	}
	n.vals[name] = v
}

// Keys returns the bound names in insertion order.
func (n *Namespace) Keys() []string {
	if n == nil {
		return nil
	}
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Len returns the number of bindings.
func (n *Namespace) Len() int {
	if n == nil {
		return 0
	}
	return len(n.keys)
}

// =============================================================================
// CLASSES, INSTANCES, MODULES
// =============================================================================

// Class is a runtime type. Classes are themselves values whose class is
// their metaclass.
type Class struct {
	Name   string
	Module string
	Doc    string
	Bases  []*Class
	Dict   *Namespace
	Meta   *Class

	// Native classes are implemented by the runtime.
	Native bool
	// TextSignature is the declared constructor signature of a native class.
	TextSignature []Param
	// New constructs instances of a native class.
	New NativeFunc

	mro []*Class
}

// Class returns the metaclass.
func (c *Class) Class() *Class {
	if c.Meta != nil {
		return c.Meta
	}
	return TypeClass
}

// MRO returns the method resolution order, starting with c itself.
func (c *Class) MRO() []*Class {
	out := make([]*Class, len(c.mro))
	copy(out, c.mro)
	return out
}

// Lookup finds name in the dictionaries along the MRO without invoking
// any descriptor.
func (c *Class) Lookup(name string) (Object, bool) {
	for _, k := range c.mro {
		if v, ok := k.Dict.Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

// IsSubclass reports whether other appears in c's MRO.
func (c *Class) IsSubclass(other *Class) bool {
	for _, k := range c.mro {
		if k == other {
			return true
		}
	}
	return false
}

// NewClass creates a script class. A nil bases slice derives from object.
func NewClass(name, module string, bases []*Class, dict *Namespace) (*Class, error) {
	if len(bases) == 0 {
		bases = []*Class{ObjectClass}
	}
	if dict == nil {
		dict = NewNamespace()
	}
	c := &Class{Name: name, Module: module, Bases: bases, Dict: dict}
	for _, b := range bases {
		if b.Meta != nil && (c.Meta == nil || b.Meta.IsSubclass(c.Meta)) {
			c.Meta = b.Meta
		}
	}
	mro, err := linearize(c)
	if err != nil {
		return nil, err
	}
	c.mro = mro
	return c, nil
}

// MustClass is NewClass for statically known hierarchies.
func MustClass(name, module string, bases []*Class, dict *Namespace) *Class {
	c, err := NewClass(name, module, bases, dict)
	if err != nil {
		panic(err)
	}
	return c
}

// linearize computes the C3 linearization of c.
func linearize(c *Class) ([]*Class, error) {
	var seqs [][]*Class
	for _, b := range c.Bases {
		seqs = append(seqs, b.MRO())
	}
	seqs = append(seqs, append([]*Class(nil), c.Bases...))

	out := []*Class{c}
	for {
		var pending [][]*Class
		for _, s := range seqs {
			if len(s) > 0 {
				pending = append(pending, s)
			}
		}
		if len(pending) == 0 {
			return out, nil
		}

		var head *Class
		for _, s := range pending {
			if !inTail(s[0], pending) {
				head = s[0]
				break
			}
		}
		if head == nil {
			return nil, raise(ErrType, "cannot create a consistent method resolution order for %s", c.Name)
		}
		out = append(out, head)
		for i, s := range pending {
			if s[0] == head {
				pending[i] = s[1:]
			}
		}
		seqs = pending
	}
}

func inTail(c *Class, seqs [][]*Class) bool {
	for _, s := range seqs {
		for _, k := range s[1:] {
			if k == c {
				return true
			}
		}
	}
	return false
}

// Instance is an instance of a script class.
type Instance struct {
	class *Class
	Dict  *Namespace
}

// NewInstance allocates an instance without running any initializer.
func NewInstance(c *Class) *Instance {
	return &Instance{class: c, Dict: NewNamespace()}
}

func (i *Instance) Class() *Class { return i.class }

// Module is an importable namespace.
type Module struct {
	Name string
	File string
	Doc  string
	Dict *Namespace
}

// NewModule creates a module and seeds its dunder entries.
func NewModule(name, file, doc string) *Module {
	m := &Module{Name: name, File: file, Doc: doc, Dict: NewNamespace()}
	m.Dict.Set("__name__", Str(name))
	m.Dict.Set("__doc__", Str(doc))
	if file != "" {
		m.Dict.Set("__file__", Str(file))
	}
	return m
}

func (m *Module) Class() *Class { return ModuleClass }

// Define binds a module member.
func (m *Module) Define(name string, v Object) { m.Dict.Set(name, v) }

// =============================================================================
// CALLABLES
// =============================================================================

// ParamKind classifies how an argument binds to a parameter.
type ParamKind int

const (
	PositionalOrKeyword ParamKind = iota
	VarPositional
	KeywordOnly
	VarKeyword
)

func (k ParamKind) String() string {
	switch k {
	case VarPositional:
		return "var_positional"
	case KeywordOnly:
		return "keyword_only"
	case VarKeyword:
		return "var_keyword"
	default:
		return "positional_or_keyword"
	}
}

// Param is one declared parameter. Nil Default and Annotation mean none.
type Param struct {
	Name       string
	Kind       ParamKind
	Default    Object
	Annotation Object
}

// Function is a function defined in script source.
type Function struct {
	Name     string
	Qualname string
	Module   string
	Doc      string
	Params   []Param
	Body     NativeFunc
}

func (f *Function) Class() *Class { return FunctionClass }

// Builtin is a native function, or a native method bound to Self.
type Builtin struct {
	Name   string
	Module string
	Doc    string
	Self   Object
	// Sig is the declared text signature, without the receiver. Nil when
	// the native code declares none.
	Sig []Param
	Fn  NativeFunc
}

func (b *Builtin) Class() *Class { return BuiltinFunctionClass }

// MethodDescriptor is an unbound native method owned by a class, such as
// str.replace. Slot marks the wrappers the runtime installs for dunder slots.
type MethodDescriptor struct {
	Name  string
	Doc   string
	Owner *Class
	// Sig includes the receiver as its first parameter.
	Sig  []Param
	Slot bool
	Fn   NativeFunc
}

func (d *MethodDescriptor) Class() *Class {
	if d.Slot {
		return WrapperDescriptorClass
	}
	return MethodDescriptorClass
}

func (d *MethodDescriptor) bind(self Object) *Builtin {
	var sig []Param
	if len(d.Sig) > 0 {
		sig = d.Sig[1:]
	}
	return &Builtin{Name: d.Name, Doc: d.Doc, Self: self, Sig: sig, Fn: d.Fn}
}

// ClassMethodDescriptor is a native method bound to the class on access.
type ClassMethodDescriptor struct {
	Name  string
	Doc   string
	Owner *Class
	Sig   []Param
	Fn    NativeFunc
}

func (d *ClassMethodDescriptor) Class() *Class { return ClassMethodDescriptorClass }

// BoundMethod binds a script callable to a receiver.
type BoundMethod struct {
	Func Object
	Self Object
}

func (m *BoundMethod) Class() *Class { return MethodClass }

// Property runs script getters on access.
type Property struct {
	Get Object
	Set Object
	Doc string
}

func (p *Property) Class() *Class { return PropertyClass }

// GetSetDescriptor is a native computed attribute.
type GetSetDescriptor struct {
	Name  string
	Doc   string
	Owner *Class
	Get   func(obj Object) (Object, error)
}

func (d *GetSetDescriptor) Class() *Class { return GetSetDescriptorClass }

// MemberDescriptor reads a fixed instance slot.
type MemberDescriptor struct {
	Name  string
	Doc   string
	Owner *Class
}

func (d *MemberDescriptor) Class() *Class { return MemberDescriptorClass }

// ClassMethod wraps a script callable so it binds to the class.
type ClassMethod struct{ Func Object }

func (m *ClassMethod) Class() *Class { return ClassMethodClass }

// StaticMethod wraps a script callable so it never binds.
type StaticMethod struct{ Func Object }

func (m *StaticMethod) Class() *Class { return StaticMethodClass }

// =============================================================================
// LITERALS AND CONTAINERS
// =============================================================================

type (
	Int          int64
	Float        float64
	Bool         bool
	Str          string
	Bytes        string
	NoneType     struct{}
	EllipsisType struct{}
)

var (
	None     = NoneType{}
	Ellipsis = EllipsisType{}
)

func (Int) Class() *Class          { return IntClass }
func (Float) Class() *Class        { return FloatClass }
func (Bool) Class() *Class         { return BoolClass }
func (Str) Class() *Class          { return StrClass }
func (Bytes) Class() *Class        { return BytesClass }
func (NoneType) Class() *Class     { return NoneTypeClass }
func (EllipsisType) Class() *Class { return EllipsisClass }

// ByteArray is a mutable byte buffer.
type ByteArray struct{ Data []byte }

func (*ByteArray) Class() *Class { return ByteArrayClass }

// Slice is a slice literal; nil bounds mean None.
type Slice struct{ Start, Stop, Step Object }

func (*Slice) Class() *Class { return SliceClass }

// List is a mutable sequence.
type List struct{ Items []Object }

func NewList(items ...Object) *List { return &List{Items: items} }

func (*List) Class() *Class { return ListClass }

// Tuple is an immutable sequence.
type Tuple struct{ Items []Object }

func NewTuple(items ...Object) *Tuple { return &Tuple{Items: items} }

func (*Tuple) Class() *Class { return TupleClass }

// Range is a native arithmetic progression. Unbounded ranges never stop.
type Range struct {
	Start, Stop, Step int64
	Unbounded         bool
}

func (*Range) Class() *Class { return RangeClass }

// count returns the number of items of a bounded range. It is computed in
// uint64 so ranges spanning the whole int64 domain do not overflow.
func (r *Range) count() uint64 {
	switch {
	case r.Unbounded:
		return 0
	case r.Step > 0 && r.Start < r.Stop:
		span := uint64(r.Stop) - uint64(r.Start)
		return (span-1)/uint64(r.Step) + 1
	case r.Step < 0 && r.Start > r.Stop:
		span := uint64(r.Start) - uint64(r.Stop)
		step := uint64(-(r.Step + 1)) + 1
		return (span-1)/step + 1
	default:
		return 0
	}
}

// at returns the item at offset i, which must be below count for bounded
// ranges. The arithmetic wraps in uint64; the true result always fits.
func (r *Range) at(i uint64) Int {
	return Int(int64(uint64(r.Start) + i*uint64(r.Step)))
}

// Iterator is a one-shot native iterator.
type Iterator struct {
	next func() (Object, bool, error)
}

// NewIterator wraps a Go generator function.
func NewIterator(next func() (Object, bool, error)) *Iterator {
	return &Iterator{next: next}
}

func (*Iterator) Class() *Class { return IteratorClass }

// Next advances the iterator. ok is false once it is exhausted.
func (it *Iterator) Next() (Object, bool, error) { return it.next() }

// Foreign is an opaque Go value surfaced by the native bridge.
type Foreign struct {
	Value interface{}
	Type  *Class
}

func (f *Foreign) Class() *Class { return f.Type }
