package access

import (
	"errors"
	"fmt"

	"objscope/internal/logging"
	"objscope/internal/object"
)

// PreviewLimit caps IterPreview.
const PreviewLimit = 21

// APIKind classifies a value for completion display.
type APIKind string

const (
	KindClass    APIKind = "class"
	KindModule   APIKind = "module"
	KindFunction APIKind = "function"
	KindInstance APIKind = "instance"
)

// Access is the guarded view of one host value. It never mutates the value.
type Access struct {
	s   *Session
	obj object.Object
}

func (a *Access) String() string {
	return fmt.Sprintf("Access(%s)", object.TypeName(a.obj))
}

// Object returns the wrapped value.
func (a *Access) Object() object.Object { return a.obj }

// Session returns the session the wrapper belongs to.
func (a *Access) Session() *Session { return a.s }

// Truth converts the value to a truth value. Host faults propagate.
func (a *Access) Truth() (bool, error) {
	return object.Truth(a.s.rt, a.obj)
}

// SourceFile returns the value's __file__ when it is stored plainly.
func (a *Access) SourceFile() (string, bool) {
	attr, isGetDescriptor, err := object.LookupStatic(a.obj, "__file__")
	if err != nil || isGetDescriptor {
		return "", false
	}
	s, ok := attr.(object.Str)
	if !ok || s == "" {
		return "", false
	}
	return string(s), true
}

// Doc returns the cleaned documentation, or "". With includeSignature the
// call signature is prepended when one can be extracted.
func (a *Access) Doc(includeSignature bool) string {
	doc := object.DocOf(a.obj)
	if !includeSignature {
		return doc
	}
	name, ok := object.NameOf(a.obj)
	if !ok {
		return doc
	}
	ps, err := a.SignatureParams()
	if err != nil {
		return doc
	}
	sig := name + formatSignature(a.s.rt, ps)
	if doc == "" {
		return sig
	}
	return sig + "\n\n" + doc
}

// notClassTypes are classes whose instances are reported by their own name
// even though they are not classes.
var notClassTypes = []*object.Class{
	object.BuiltinFunctionClass,
	object.FunctionClass,
	object.MethodClass,
	object.MethodDescriptorClass,
	object.GetSetDescriptorClass,
	object.MemberDescriptorClass,
	object.ModuleClass,
	object.IteratorClass,
}

// isClassInstance reports an ordinary instance: something whose class is
// neither a metaclass nor one of the function-like kinds.
func isClassInstance(o object.Object) bool {
	cls, err := object.ClassOf(o)
	if err != nil {
		return false
	}
	if cls.IsSubclass(object.TypeClass) {
		return false
	}
	for _, c := range notClassTypes {
		if cls.IsSubclass(c) {
			return false
		}
	}
	return true
}

// Name returns the value's own name for classes, functions, modules and
// descriptors, and its class name for ordinary instances.
func (a *Access) Name() (string, bool) {
	target := a.obj
	if isClassInstance(a.obj) && !object.IsMethodDescriptor(a.obj) {
		cls, err := object.ClassOf(a.obj)
		if err != nil {
			return "", false
		}
		target = cls
	}
	return object.NameOf(target)
}

// MRO returns the ancestors of a class, excluding the class itself. Other
// values have none.
func (a *Access) MRO() ([]*Access, error) {
	c, ok := a.obj.(*object.Class)
	if !ok {
		return nil, nil
	}
	mro := c.MRO()
	out := make([]*Access, 0, len(mro))
	for _, base := range mro[1:] {
		out = append(out, a.s.Access(base))
	}
	return out, nil
}

// whitelisted reports the exact native container kinds whose subscript and
// iteration are implemented by the runtime. Script subclasses are *Instance
// values and never match.
func whitelisted(o object.Object) bool {
	switch o.(type) {
	case object.Str, object.Bytes, *object.ByteArray, *object.List,
		*object.Tuple, *object.Dict, *object.Range:
		return true
	}
	return false
}

// Index reads value[idx] for whitelisted containers. Other values report
// false without any read.
func (a *Access) Index(idx object.Object) (*Access, bool, error) {
	if !whitelisted(a.obj) {
		a.s.metrics.ReadRefused("index")
		logging.AccessDebug("index refused on %s", object.TypeName(a.obj))
		return nil, false, nil
	}
	v, err := object.GetItem(a.s.rt, a.obj, idx)
	if err != nil {
		return nil, false, err
	}
	return a.s.Access(v), true, nil
}

// IterPreview returns at most PreviewLimit leading items of a whitelisted
// container. Other values yield nothing.
func (a *Access) IterPreview() ([]*Access, error) {
	if !whitelisted(a.obj) {
		a.s.metrics.ReadRefused("iter")
		logging.AccessDebug("iteration refused on %s", object.TypeName(a.obj))
		return nil, nil
	}
	it, err := object.Iter(a.s.rt, a.obj)
	if err != nil {
		return nil, err
	}
	var out []*Access
	for len(out) < PreviewLimit {
		v, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, a.s.Access(v))
	}
	a.s.metrics.PreviewReturned(len(out))
	return out, nil
}

// Class wraps the value's class.
func (a *Access) Class() (*Access, error) {
	c, err := object.ClassOf(a.obj)
	if err != nil {
		return nil, err
	}
	return a.s.Access(c), nil
}

// Repr returns the host representation.
func (a *Access) Repr() (string, error) {
	return object.Repr(a.s.rt, a.obj)
}

// IsClass reports whether the value is a class.
func (a *Access) IsClass() bool {
	_, ok := a.obj.(*object.Class)
	return ok
}

// IsInstance reports whether the value is an ordinary instance.
func (a *Access) IsInstance() bool { return isClassInstance(a.obj) }

// IsMethodDescriptor reports unbound native methods, slot wrappers and the
// classmethod/staticmethod wrappers.
func (a *Access) IsMethodDescriptor() bool { return object.IsMethodDescriptor(a.obj) }

// HasIter reports whether iterating the value would succeed: a native
// iterable, or an instance whose class defines __iter__ or __getitem__ in
// script code. Nothing is called and one-shot iterators are never advanced.
func (a *Access) HasIter() bool { return object.CanIter(a.obj) }

// Dir lists attribute names. Script __dir__ hooks are not run.
func (a *Access) Dir() []string { return object.Dir(a.obj) }

// APIKind classifies the value. The checks run in order: class, module,
// function, instance.
func (a *Access) APIKind() APIKind {
	switch {
	case a.IsClass():
		return KindClass
	case isModule(a.obj):
		return KindModule
	case isFunctionLike(a.obj):
		return KindFunction
	}
	return KindInstance
}

func isModule(o object.Object) bool {
	_, ok := o.(*object.Module)
	return ok
}

func isFunctionLike(o object.Object) bool {
	switch o.(type) {
	case *object.Builtin, *object.BoundMethod, *object.Function:
		return true
	}
	return object.IsMethodDescriptor(o)
}

// SafeValue returns the value itself for immutable literal kinds: int,
// float, str, bytes, slice and Ellipsis. Anything else, bool and None
// included, fails with ErrNotALiteral.
func (a *Access) SafeValue() (object.Object, error) {
	switch a.obj.(type) {
	case object.Int, object.Float, object.Str, object.Bytes, *object.Slice, object.EllipsisType:
		return a.obj, nil
	}
	a.s.metrics.ReadRefused("literal")
	return nil, fmt.Errorf("%w: %s", ErrNotALiteral, object.TypeName(a.obj))
}

// SafeValueOr is SafeValue returning def instead of failing.
func (a *Access) SafeValueOr(def object.Object) object.Object {
	v, err := a.SafeValue()
	if err != nil {
		return def
	}
	return v
}

// MappingValues wraps the values of a native dict.
func (a *Access) MappingValues() ([]*Access, error) {
	d, ok := a.obj.(*object.Dict)
	if !ok {
		return nil, fmt.Errorf("%w: '%s' object has no values()", object.ErrType, object.TypeName(a.obj))
	}
	vals := d.Values()
	out := make([]*Access, len(vals))
	for i, v := range vals {
		out[i] = a.s.Access(v)
	}
	return out, nil
}

// IsSupertypeOf reports issubclass(other, value).
func (a *Access) IsSupertypeOf(other *Access) (bool, error) {
	return object.IsSubclass(a.s.rt, other.obj, a.obj)
}

// NeedsTypeCompletions reports a class other than type itself, whose own
// members are offered alongside instance members.
func (a *Access) NeedsTypeCompletions() bool {
	c, ok := a.obj.(*object.Class)
	return ok && c != object.TypeClass
}

// IsNoSuchAttribute reports whether err means the attribute is missing.
func IsNoSuchAttribute(err error) bool { return errors.Is(err, ErrNoSuchAttribute) }
