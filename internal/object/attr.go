package object

import (
	"sort"
)

// instanceDict returns the per-value attribute namespace, if the value has one.
func instanceDict(o Object) *Namespace {
	switch v := o.(type) {
	case *Instance:
		return v.Dict
	case *Module:
		return v.Dict
	}
	return nil
}

// isGetDescriptor reports whether reading o from a class dictionary runs a
// get handler instead of returning o itself.
func isGetDescriptor(o Object) bool {
	switch v := o.(type) {
	case *Function, *MethodDescriptor, *ClassMethodDescriptor, *Property,
		*GetSetDescriptor, *MemberDescriptor, *ClassMethod, *StaticMethod:
		return true
	case *Instance:
		_, ok := v.class.Lookup("__get__")
		return ok
	}
	return false
}

// isDataDescriptor reports whether o defines a set or delete handler.
func isDataDescriptor(o Object) bool {
	switch v := o.(type) {
	case *Property, *GetSetDescriptor, *MemberDescriptor:
		return true
	case *Instance:
		if _, ok := v.class.Lookup("__set__"); ok {
			return true
		}
		_, ok := v.class.Lookup("__delete__")
		return ok
	}
	return false
}

// overridesInstance reports whether o takes precedence over instance
// storage: a data descriptor that also defines a get handler. A set-only
// descriptor is shadowed by a stored value.
func overridesInstance(o Object) bool {
	return isDataDescriptor(o) && isGetDescriptor(o)
}

// descGet runs the get handler of attr. A nil obj means the attribute was
// read from the owner class itself.
func descGet(rt *Runtime, attr, obj Object, owner *Class) (Object, error) {
	switch d := attr.(type) {
	case *Function:
		if obj == nil {
			return d, nil
		}
		return &BoundMethod{Func: d, Self: obj}, nil
	case *MethodDescriptor:
		if obj == nil {
			return d, nil
		}
		return d.bind(obj), nil
	case *ClassMethodDescriptor:
		return &Builtin{Name: d.Name, Doc: d.Doc, Self: owner, Sig: d.Sig, Fn: d.Fn}, nil
	case *Property:
		if obj == nil {
			return d, nil
		}
		if d.Get == nil {
			return nil, raise(ErrAttribute, "unreadable attribute")
		}
		return Call(rt, d.Get, obj)
	case *GetSetDescriptor:
		if obj == nil {
			return d, nil
		}
		return d.Get(obj)
	case *MemberDescriptor:
		if obj == nil {
			return d, nil
		}
		return memberOf(obj, d.Name)
	case *ClassMethod:
		return &BoundMethod{Func: d.Func, Self: owner}, nil
	case *StaticMethod:
		return d.Func, nil
	case *Instance:
		get, ok := d.class.Lookup("__get__")
		if !ok {
			return d, nil
		}
		var inst Object = None
		if obj != nil {
			inst = obj
		}
		return callUnbound(rt, get, d, inst, owner)
	}
	return attr, nil
}

// memberOf reads a fixed slot.
func memberOf(obj Object, name string) (Object, error) {
	switch v := obj.(type) {
	case *Slice:
		var f Object
		switch name {
		case "start":
			f = v.Start
		case "stop":
			f = v.Stop
		case "step":
			f = v.Step
		}
		if f == nil {
			return None, nil
		}
		return f, nil
	case *Range:
		switch name {
		case "start":
			return Int(v.Start), nil
		case "stop":
			if v.Unbounded {
				return None, nil
			}
			return Int(v.Stop), nil
		case "step":
			return Int(v.Step), nil
		}
	case *Instance:
		if val, ok := v.Dict.Get(name); ok {
			return val, nil
		}
	}
	return nil, raise(ErrAttribute, "'%s' object has no attribute '%s'", TypeName(obj), name)
}

// GetAttr performs a full attribute read. Descriptors run, properties call
// their getters, and a script __getattr__ hook is consulted last.
func GetAttr(rt *Runtime, obj Object, name string) (Object, error) {
	if c, ok := obj.(*Class); ok {
		return classGetAttr(rt, c, name)
	}
	cls := obj.Class()
	if cls == nil {
		return nil, raise(ErrAttribute, "'%s' object has no attribute '%s'", TypeName(obj), name)
	}
	attr, found := cls.Lookup(name)
	if found && overridesInstance(attr) {
		return descGet(rt, attr, obj, cls)
	}
	if d := instanceDict(obj); d != nil {
		if v, ok := d.Get(name); ok {
			return v, nil
		}
	}
	if found {
		return descGet(rt, attr, obj, cls)
	}
	if hook, ok := cls.Lookup("__getattr__"); ok && !isNative(hook) {
		return callUnbound(rt, hook, obj, Str(name))
	}
	return nil, raise(ErrAttribute, "'%s' object has no attribute '%s'", TypeName(obj), name)
}

func classGetAttr(rt *Runtime, c *Class, name string) (Object, error) {
	meta := c.Class()
	mattr, mfound := meta.Lookup(name)
	if mfound && overridesInstance(mattr) {
		return descGet(rt, mattr, c, meta)
	}
	if v, ok := c.Lookup(name); ok {
		return descGet(rt, v, nil, c)
	}
	if mfound {
		return descGet(rt, mattr, c, meta)
	}
	if hook, ok := meta.Lookup("__getattr__"); ok && !isNative(hook) {
		return callUnbound(rt, hook, c, Str(name))
	}
	return nil, raise(ErrAttribute, "type object '%s' has no attribute '%s'", c.Name, name)
}

// LookupStatic locates the declaration serving name without running any
// handler. getDescriptor reports whether a live read would run the returned
// object's get handler. Dynamic __getattr__ hooks are not consulted.
func LookupStatic(obj Object, name string) (attr Object, getDescriptor bool, err error) {
	klass, isType := obj.(*Class)
	if isType {
		meta := klass.Class()
		if v, ok := meta.Lookup(name); ok && overridesInstance(v) {
			return v, true, nil
		}
		if v, ok := klass.Lookup(name); ok {
			return v, isGetDescriptor(v), nil
		}
		if v, ok := meta.Lookup(name); ok {
			return v, isGetDescriptor(v), nil
		}
		return nil, false, raise(ErrAttribute, "type object '%s' has no attribute '%s'", klass.Name, name)
	}

	klass = obj.Class()
	if klass == nil {
		return nil, false, raise(ErrAttribute, "'%s' object has no attribute '%s'", TypeName(obj), name)
	}
	classAttr, inClass := klass.Lookup(name)
	if inClass && overridesInstance(classAttr) {
		return classAttr, true, nil
	}
	if d := instanceDict(obj); d != nil {
		if v, ok := d.Get(name); ok {
			return v, false, nil
		}
	}
	if inClass {
		return classAttr, isGetDescriptor(classAttr), nil
	}
	return nil, false, raise(ErrAttribute, "'%s' object has no attribute '%s'", TypeName(obj), name)
}

// Dir lists attribute names the default way: the value's own namespace plus
// every class dictionary along the MRO. Script __dir__ hooks are ignored.
func Dir(obj Object) []string {
	seen := make(map[string]struct{})
	add := func(ns *Namespace) {
		for _, k := range ns.Keys() {
			seen[k] = struct{}{}
		}
	}
	switch v := obj.(type) {
	case *Module:
		add(v.Dict)
	case *Class:
		for _, k := range v.mro {
			add(k.Dict)
		}
	default:
		add(instanceDict(obj))
		if cls := obj.Class(); cls != nil {
			for _, k := range cls.mro {
				add(k.Dict)
			}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// isNative reports whether o is implemented by the runtime rather than by
// script code.
func isNative(o Object) bool {
	switch o.(type) {
	case *MethodDescriptor, *ClassMethodDescriptor, *GetSetDescriptor, *MemberDescriptor, *Builtin:
		return true
	}
	return false
}
