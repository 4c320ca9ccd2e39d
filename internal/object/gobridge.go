package object

import (
	"fmt"
	"go/constant"
	"path"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/stdlib"
)

// =============================================================================
// NATIVE GO BRIDGE
// =============================================================================
// Go standard library packages are exposed as host modules using the symbol
// tables yaegi exports for its interpreter. Functions become native builtins
// with a signature derived from reflection, named types become native classes,
// constants become literals and variables are snapshotted.

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// symbolKey returns the yaegi export key for an import path, which is the
// path followed by the package name.
func symbolKey(importPath string) string {
	name := path.Base(importPath)
	if len(name) > 1 && name[0] == 'v' && strings.Trim(name[1:], "0123456789") == "" {
		name = path.Base(path.Dir(importPath))
	}
	return importPath + "/" + name
}

// GoPackages lists the Go packages the bridge knows about.
func GoPackages() []string {
	out := make([]string, 0, len(stdlib.Symbols))
	for key := range stdlib.Symbols {
		out = append(out, path.Dir(key))
	}
	sort.Strings(out)
	return out
}

// ImportGo builds (or returns the already built) host module for a Go
// package. Symbols whose names start with an underscore are interpreter
// wrappers and are skipped.
func (rt *Runtime) ImportGo(importPath string) (*Module, error) {
	if m, ok := rt.modules[importPath]; ok {
		return m, nil
	}
	symbols, ok := stdlib.Symbols[symbolKey(importPath)]
	if !ok {
		return nil, raise(ErrImport, "No Go package named '%s'", importPath)
	}

	m := NewModule(importPath, "", "Go package "+importPath+".")
	rt.Register(m)

	names := make([]string, 0, len(symbols))
	for name := range symbols {
		if !strings.HasPrefix(name, "_") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if v, ok := rt.goSymbol(importPath, name, symbols[name]); ok {
			m.Define(name, v)
		}
	}
	return m, nil
}

func (rt *Runtime) goSymbol(pkg, name string, rv reflect.Value) (Object, bool) {
	switch {
	case rv.Kind() == reflect.Ptr && rv.IsNil():
		return rt.goClass(rv.Type().Elem()), true
	case rv.Kind() == reflect.Func:
		return rt.goFunc(pkg, name, rv), true
	case rv.CanAddr():
		return rt.fromGo(rv), true
	}
	if c, ok := rv.Interface().(constant.Value); ok {
		return fromConstant(c)
	}
	return rt.fromGo(rv), true
}

func fromConstant(c constant.Value) (Object, bool) {
	switch c.Kind() {
	case constant.Bool:
		return Bool(constant.BoolVal(c)), true
	case constant.String:
		return Str(constant.StringVal(c)), true
	case constant.Int:
		if i, exact := constant.Int64Val(c); exact {
			return Int(i), true
		}
		f, _ := constant.Float64Val(c)
		return Float(f), true
	case constant.Float:
		f, _ := constant.Float64Val(c)
		return Float(f), true
	}
	return nil, false
}

// goParams derives declared parameters from a function type, skipping the
// first skip inputs.
func goParams(ft reflect.Type, skip int) []Param {
	ps := []Param{}
	for i := skip; i < ft.NumIn(); i++ {
		t := ft.In(i)
		p := Param{Name: fmt.Sprintf("a%d", i-skip), Annotation: Str(t.String())}
		if ft.IsVariadic() && i == ft.NumIn()-1 {
			p = Param{Name: "args", Kind: VarPositional, Annotation: Str("..." + t.Elem().String())}
		}
		ps = append(ps, p)
	}
	return ps
}

func (rt *Runtime) goFunc(pkg, name string, fn reflect.Value) *Builtin {
	ft := fn.Type()
	return &Builtin{
		Name:   name,
		Module: pkg,
		Doc:    "func " + name + strings.TrimPrefix(ft.String(), "func"),
		Sig:    goParams(ft, 0),
		Fn: func(rt *Runtime, args []Object) (Object, error) {
			return rt.callGo(fn, args)
		},
	}
}

// goClass returns the host class for a Go type, building it on first use.
func (rt *Runtime) goClass(t reflect.Type) *Class {
	if c, ok := rt.goTypes[t]; ok {
		return c
	}
	c := &Class{
		Name:          t.Name(),
		Module:        t.PkgPath(),
		Doc:           "Go type " + t.String() + ".",
		Bases:         []*Class{ObjectClass},
		Dict:          NewNamespace(),
		Native:        true,
		TextSignature: []Param{},
	}
	c.mro = []*Class{c, ObjectClass}
	rt.goTypes[t] = c

	if t.Kind() != reflect.Interface {
		c.New = func(rt *Runtime, args []Object) (Object, error) {
			if len(args) != 0 {
				return nil, raise(ErrType, "%s() takes no arguments", t.Name())
			}
			return &Foreign{Value: reflect.New(t).Interface(), Type: c}, nil
		}
	}

	mt, skip := reflect.PointerTo(t), 1
	if t.Kind() == reflect.Interface {
		mt, skip = t, 0
	}
	for i := 0; i < mt.NumMethod(); i++ {
		m := mt.Method(i)
		name := m.Name
		c.Dict.Set(name, &MethodDescriptor{
			Name:  name,
			Doc:   "func (" + t.Name() + ") " + name + strings.TrimPrefix(m.Type.String(), "func"),
			Owner: c,
			Sig:   append([]Param{{Name: "self"}}, goParams(m.Type, skip)...),
			Fn: func(rt *Runtime, args []Object) (Object, error) {
				if len(args) == 0 {
					return nil, raise(ErrType, "descriptor '%s' needs an argument", name)
				}
				recv, ok := args[0].(*Foreign)
				if !ok {
					return nil, raise(ErrType, "descriptor '%s' requires a '%s' object", name, t.Name())
				}
				bound := reflect.ValueOf(recv.Value).MethodByName(name)
				if !bound.IsValid() {
					return nil, raise(ErrAttribute, "'%s' object has no method '%s'", TypeName(recv), name)
				}
				return rt.callGo(bound, args[1:])
			},
		})
	}

	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			index := f.Index
			c.Dict.Set(f.Name, &GetSetDescriptor{
				Name:  f.Name,
				Doc:   "field " + f.Name + " " + f.Type.String(),
				Owner: c,
				Get: func(obj Object) (Object, error) {
					fo, ok := obj.(*Foreign)
					if !ok {
						return nil, raise(ErrType, "descriptor '%s' requires a '%s' object", f.Name, t.Name())
					}
					v := reflect.ValueOf(fo.Value)
					for v.Kind() == reflect.Ptr {
						if v.IsNil() {
							return None, nil
						}
						v = v.Elem()
					}
					return rt.fromGo(v.FieldByIndex(index)), nil
				},
			})
		}
	}
	return c
}

// callGo calls a Go function. Panics and non-nil trailing errors surface as
// ValueError.
func (rt *Runtime) callGo(fn reflect.Value, args []Object) (res Object, err error) {
	ft := fn.Type()
	n := ft.NumIn()
	if ft.IsVariadic() {
		if len(args) < n-1 {
			return nil, raise(ErrType, "expected at least %d arguments, got %d", n-1, len(args))
		}
	} else if len(args) != n {
		return nil, raise(ErrType, "expected %d arguments, got %d", n, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var t reflect.Type
		if ft.IsVariadic() && i >= n-1 {
			t = ft.In(n - 1).Elem()
		} else {
			t = ft.In(i)
		}
		v, err := toGo(a, t)
		if err != nil {
			return nil, err
		}
		in[i] = v
	}

	defer func() {
		if r := recover(); r != nil {
			res, err = nil, raise(ErrValue, "go panic: %v", r)
		}
	}()
	out := fn.Call(in)

	if k := len(out); k > 0 && ft.Out(k-1) == errorType {
		if e, _ := out[k-1].Interface().(error); e != nil {
			return nil, raise(ErrValue, "%s", e.Error())
		}
		out = out[:k-1]
	}
	switch len(out) {
	case 0:
		return None, nil
	case 1:
		return rt.fromGo(out[0]), nil
	}
	items := make([]Object, len(out))
	for i, v := range out {
		items[i] = rt.fromGo(v)
	}
	return NewTuple(items...), nil
}

// fromGo converts a Go value to a host value. Named types stay foreign so
// their methods remain reachable.
func (rt *Runtime) fromGo(v reflect.Value) Object {
	if !v.IsValid() {
		return None
	}
	t := v.Type()
	switch t.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return None
		}
		return rt.fromGo(v.Elem())
	case reflect.Ptr:
		if v.IsNil() {
			return None
		}
		if t.Elem().Name() != "" {
			return &Foreign{Value: v.Interface(), Type: rt.goClass(t.Elem())}
		}
		return &Foreign{Value: v.Interface()}
	case reflect.Func:
		if v.IsNil() {
			return None
		}
		return rt.goFunc(t.PkgPath(), "func", v)
	}

	if t.Name() != "" && t.PkgPath() != "" {
		p := reflect.New(t)
		p.Elem().Set(v)
		return &Foreign{Value: p.Interface(), Type: rt.goClass(t)}
	}

	switch t.Kind() {
	case reflect.Bool:
		return Bool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Int(int64(v.Uint()))
	case reflect.Float32, reflect.Float64:
		return Float(v.Float())
	case reflect.String:
		return Str(v.String())
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 && t.Kind() == reflect.Slice {
			return Bytes(v.Bytes())
		}
		items := make([]Object, v.Len())
		for i := range items {
			items[i] = rt.fromGo(v.Index(i))
		}
		return NewList(items...)
	case reflect.Map:
		d := NewDict()
		iter := v.MapRange()
		for iter.Next() {
			if err := d.Set(rt.fromGo(iter.Key()), rt.fromGo(iter.Value())); err != nil {
				return &Foreign{Value: v.Interface()}
			}
		}
		return d
	}
	return &Foreign{Value: v.Interface()}
}

// toGo converts a host value to a Go value of type t.
func toGo(o Object, t reflect.Type) (reflect.Value, error) {
	fail := func() (reflect.Value, error) {
		return reflect.Value{}, raise(ErrType, "cannot use %s as Go %s", TypeName(o), t)
	}
	if f, ok := o.(*Foreign); ok {
		v := reflect.ValueOf(f.Value)
		switch {
		case v.Type().AssignableTo(t):
			return v, nil
		case v.Kind() == reflect.Ptr && v.Type().Elem().AssignableTo(t):
			return v.Elem(), nil
		}
		return fail()
	}
	if o == Object(None) {
		switch t.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return fail()
	}

	var natural interface{}
	switch v := o.(type) {
	case Bool:
		natural = bool(v)
	case Int:
		natural = int64(v)
	case Float:
		natural = float64(v)
	case Str:
		natural = string(v)
	case Bytes:
		natural = []byte(v)
	case *ByteArray:
		natural = append([]byte(nil), v.Data...)
	}
	if seq, ok := sequenceItems(o); ok && t.Kind() == reflect.Slice {
		out := reflect.MakeSlice(t, len(seq), len(seq))
		for i, item := range seq {
			ev, err := toGo(item, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	}
	if natural == nil {
		return fail()
	}
	nv := reflect.ValueOf(natural)
	switch {
	case nv.Type().AssignableTo(t):
		return nv, nil
	case nv.Kind() == reflect.String && t.Kind() == reflect.String,
		nv.Kind() == reflect.Bool && t.Kind() == reflect.Bool,
		nv.Kind() == reflect.Slice && t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8,
		nv.Kind() == reflect.Slice && t.Kind() == reflect.String:
		return nv.Convert(t), nil
	case nv.Kind() == reflect.Int64 || nv.Kind() == reflect.Float64:
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
			reflect.Float32, reflect.Float64:
			if nv.Kind() == reflect.Float64 && t.Kind() != reflect.Float32 && t.Kind() != reflect.Float64 {
				return fail()
			}
			return nv.Convert(t), nil
		}
	}
	return fail()
}

func sequenceItems(o Object) ([]Object, bool) {
	switch v := o.(type) {
	case *List:
		return v.Items, true
	case *Tuple:
		return v.Items, true
	}
	return nil, false
}
