package object

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Version identifies a host runtime release. Introspection behavior differs
// across releases, so the runtime carries the version it emulates.
type Version struct {
	Major int
	Minor int
}

// ParseVersion parses "major.minor".
func ParseVersion(s string) (Version, error) {
	major, minor, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return Version{}, fmt.Errorf("invalid version %q: want major.minor", s)
	}
	ma, err := strconv.Atoi(major)
	if err != nil {
		return Version{}, fmt.Errorf("invalid major version in %q: %w", s, err)
	}
	mi, err := strconv.Atoi(minor)
	if err != nil {
		return Version{}, fmt.Errorf("invalid minor version in %q: %w", s, err)
	}
	if ma < 0 || mi < 0 {
		return Version{}, fmt.Errorf("invalid version %q: negative component", s)
	}
	return Version{Major: ma, Minor: mi}, nil
}

// Less reports whether v is older than other.
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	return v.Minor < other.Minor
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// DefaultVersion is the release emulated when none is configured.
var DefaultVersion = Version{Major: 1, Minor: 6}

// Runtime owns the module registry of one interpreter. It is not safe for
// concurrent use.
type Runtime struct {
	Version  Version
	Builtins *Module

	modules   map[string]*Module
	goAllowed map[string]bool
	goTypes   map[reflect.Type]*Class
}

// New creates a runtime with the builtins module registered.
func New(v Version) *Runtime {
	rt := &Runtime{
		Version:   v,
		modules:   make(map[string]*Module),
		goAllowed: make(map[string]bool),
		goTypes:   make(map[reflect.Type]*Class),
	}
	rt.Builtins = newBuiltins()
	rt.Register(rt.Builtins)
	return rt
}

// Register makes m importable under its name.
func (rt *Runtime) Register(m *Module) {
	rt.modules[m.Name] = m
}

// AllowGo permits Import to build modules for the given Go packages.
func (rt *Runtime) AllowGo(paths ...string) {
	for _, p := range paths {
		rt.goAllowed[p] = true
	}
}

// Import returns a registered module, building allowed Go packages through
// the native bridge on first use.
func (rt *Runtime) Import(name string) (*Module, error) {
	if m, ok := rt.modules[name]; ok {
		return m, nil
	}
	if rt.goAllowed[name] {
		return rt.ImportGo(name)
	}
	return nil, raise(ErrImport, "No module named '%s'", name)
}

// Modules lists every importable name, registered or allowed, sorted.
func (rt *Runtime) Modules() []string {
	seen := make(map[string]struct{}, len(rt.modules)+len(rt.goAllowed))
	for name := range rt.modules {
		seen[name] = struct{}{}
	}
	for name := range rt.goAllowed {
		seen[name] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func newBuiltins() *Module {
	m := NewModule("builtins", "", "Built-in functions, exceptions, and other objects.")
	for _, c := range builtinClasses() {
		m.Define(c.Name, c)
	}
	m.Define("None", None)
	m.Define("Ellipsis", Ellipsis)
	m.Define("True", Bool(true))
	m.Define("False", Bool(false))

	fn := func(name, doc string, sig []Param, f NativeFunc) {
		m.Define(name, &Builtin{Name: name, Module: "builtins", Doc: doc, Sig: sig, Fn: f})
	}
	fn("len", "Return the number of items in a container.", params("obj"),
		func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("len", args, 1, 1); err != nil {
				return nil, err
			}
			n, err := Len(rt, args[0])
			return Int(n), err
		})
	fn("repr", "Return the canonical string representation of the object.", params("obj"),
		func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("repr", args, 1, 1); err != nil {
				return nil, err
			}
			s, err := Repr(rt, args[0])
			return Str(s), err
		})
	fn("isinstance", "Return whether an object is an instance of a class or of a subclass thereof.",
		params("obj", "class_or_tuple"), func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("isinstance", args, 2, 2); err != nil {
				return nil, err
			}
			ok, err := IsInstance(rt, args[0], args[1])
			return Bool(ok), err
		})
	fn("issubclass", "Return whether 'cls' is a derived from another class or is the same class.",
		params("cls", "class_or_tuple"), func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("issubclass", args, 2, 2); err != nil {
				return nil, err
			}
			ok, err := IsSubclass(rt, args[0], args[1])
			return Bool(ok), err
		})
	fn("iter", "Get an iterator from an object.", params("iterable"),
		func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("iter", args, 1, 1); err != nil {
				return nil, err
			}
			return Iter(rt, args[0])
		})
	fn("callable", "Return whether the object is callable.", params("obj"),
		func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("callable", args, 1, 1); err != nil {
				return nil, err
			}
			return Bool(Callable(args[0])), nil
		})
	// No text signature, like most native functions of the host.
	fn("getattr", "getattr(object, name[, default]) -> value", nil,
		func(rt *Runtime, args []Object) (Object, error) {
			if err := arity("getattr", args, 2, 3); err != nil {
				return nil, err
			}
			name, err := argStr("getattr", args, 1)
			if err != nil {
				return nil, err
			}
			v, err := GetAttr(rt, args[0], name)
			if err != nil && len(args) == 3 && errors.Is(err, ErrAttribute) {
				return args[2], nil
			}
			return v, err
		})
	return m
}

// Callable reports whether Call accepts o, without running script code.
func Callable(o Object) bool {
	switch v := o.(type) {
	case *Function, *Builtin, *MethodDescriptor, *ClassMethodDescriptor, *BoundMethod, *StaticMethod, *Class:
		return true
	case *Instance:
		_, ok := userMethod(v, "__call__")
		return ok
	}
	return false
}
