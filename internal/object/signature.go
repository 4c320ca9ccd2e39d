package object

// Host version gates for signature introspection.
var (
	// SignatureSince is the first version that can report signatures at all.
	SignatureSince = Version{Major: 1, Minor: 3}
	// exactNativeSignatures is the first version that refuses to report the
	// inherited object signature for native classes without their own.
	exactNativeSignatures = Version{Major: 1, Minor: 5}
)

func noSignature(format string, args ...interface{}) error {
	return raise(ErrValue, format, args...)
}

func dropFirst(ps []Param) []Param {
	if len(ps) == 0 || ps[0].Kind == VarPositional {
		return ps
	}
	return ps[1:]
}

// Signature reports the declared parameters of a callable. Only declared
// metadata is read; no script code runs. It fails with ErrValue when the
// callable has no introspectable signature and ErrType when obj is not
// callable.
func Signature(rt *Runtime, obj Object) ([]Param, error) {
	if rt.Version.Less(SignatureSince) {
		return nil, noSignature("signature introspection is not available in %s", rt.Version)
	}
	return signatureOf(rt, obj)
}

func signatureOf(rt *Runtime, obj Object) ([]Param, error) {
	switch v := obj.(type) {
	case *Function:
		return v.Params, nil
	case *Builtin:
		if v.Sig == nil {
			return nil, noSignature("no signature found for builtin %s", v.Name)
		}
		return v.Sig, nil
	case *MethodDescriptor:
		if v.Sig == nil {
			return nil, noSignature("no signature found for builtin %s", v.Name)
		}
		return v.Sig, nil
	case *ClassMethodDescriptor:
		if v.Sig == nil {
			return nil, noSignature("no signature found for builtin %s", v.Name)
		}
		return append([]Param{{Name: "type"}}, v.Sig...), nil
	case *BoundMethod:
		ps, err := signatureOf(rt, v.Func)
		if err != nil {
			return nil, err
		}
		return dropFirst(ps), nil
	case *StaticMethod:
		return signatureOf(rt, v.Func)
	case *Class:
		return classSignature(rt, v)
	case *Instance:
		if m, ok := userMethod(v, "__call__"); ok {
			ps, err := signatureOf(rt, m)
			if err != nil {
				return nil, err
			}
			return dropFirst(ps), nil
		}
	}
	return nil, raise(ErrType, "%s is not a callable object", TypeName(obj))
}

// userDefined finds a script-level attribute along the MRO of c.
func userDefined(c *Class, name string) (Object, bool) {
	v, ok := c.Lookup(name)
	if !ok || isNative(v) {
		return nil, false
	}
	return unwrapStatic(v), true
}

func classSignature(rt *Runtime, c *Class) ([]Param, error) {
	if call, ok := userDefined(c.Class(), "__call__"); ok {
		ps, err := signatureOf(rt, call)
		if err != nil {
			return nil, err
		}
		return dropFirst(ps), nil
	}
	if newFn, ok := userDefined(c, "__new__"); ok {
		ps, err := signatureOf(rt, newFn)
		if err != nil {
			return nil, err
		}
		return dropFirst(ps), nil
	}
	if init, ok := userDefined(c, "__init__"); ok {
		ps, err := signatureOf(rt, init)
		if err != nil {
			return nil, err
		}
		return dropFirst(ps), nil
	}

	for _, base := range c.mro {
		if base == ObjectClass {
			break
		}
		if base.TextSignature != nil {
			return base.TextSignature, nil
		}
	}
	if c.IsSubclass(TypeClass) {
		return nil, noSignature("no signature found for metaclass %s", c.Name)
	}
	objInit, _ := ObjectClass.Dict.Get("__init__")
	objNew, _ := ObjectClass.Dict.Get("__new__")
	init, _ := c.Lookup("__init__")
	newFn, _ := c.Lookup("__new__")
	if Same(init, objInit) && Same(newFn, objNew) {
		return ObjectClass.TextSignature, nil
	}
	if rt.Version.Less(exactNativeSignatures) {
		// Older hosts fall back to the generic object signature here.
		return ObjectClass.TextSignature, nil
	}
	return nil, noSignature("no signature found for builtin type %s", c.Name)
}
