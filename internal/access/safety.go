package access

import (
	"errors"
	"fmt"

	"objscope/internal/logging"
	"objscope/internal/object"
)

// safeDescriptorKind reports whether a get handler of this kind is fixed
// runtime behavior. The set tracks the host's own descriptor types: script
// functions bind, native descriptors read slots, and the classmethod and
// staticmethod wrappers only rebind. Properties and instances of classes
// defining __get__ run arbitrary code and are absent.
func safeDescriptorKind(attr object.Object) bool {
	switch attr.(type) {
	case *object.Function,
		*object.GetSetDescriptor,
		*object.MemberDescriptor,
		*object.MethodDescriptor, // includes slot wrappers
		*object.ClassMethodDescriptor,
		*object.StaticMethod,
		*object.ClassMethod:
		return true
	}
	return false
}

func noSuchAttribute(err error) error {
	return fmt.Errorf("%w: %w", ErrNoSuchAttribute, err)
}

// IsAllowedGetattr reports whether reading name from the value cannot run
// unreviewed code. The attribute is located statically; nothing is invoked.
// An attribute that only a __getattr__ hook could produce is reported as
// missing.
func (a *Access) IsAllowedGetattr(name string) (bool, error) {
	attr, isGetDescriptor, err := object.LookupStatic(a.obj, name)
	if err != nil {
		if errors.Is(err, object.ErrAttribute) {
			a.s.metrics.AttributeChecked("missing")
			return false, noSuchAttribute(err)
		}
		return false, err
	}
	if isGetDescriptor && !safeDescriptorKind(attr) {
		a.s.metrics.AttributeChecked("unsafe")
		logging.AccessDebug("refusing %s.%s: %s handler", object.TypeName(a.obj), name, object.TypeName(attr))
		return false, nil
	}
	a.s.metrics.AttributeChecked("safe")
	return true, nil
}

// Getattr performs the live read of name and wraps the result. Callers
// clear the read with IsAllowedGetattr first; it is not re-checked here.
func (a *Access) Getattr(name string) (*Access, error) {
	v, err := object.GetAttr(a.s.rt, a.obj, name)
	if err != nil {
		if errors.Is(err, object.ErrAttribute) {
			return nil, noSuchAttribute(err)
		}
		return nil, err
	}
	return a.s.Access(v), nil
}

// GetattrOr is Getattr returning def when the attribute is missing. Other
// host faults still propagate.
func (a *Access) GetattrOr(name string, def *Access) (*Access, error) {
	v, err := a.Getattr(name)
	if errors.Is(err, ErrNoSuchAttribute) {
		return def, nil
	}
	return v, err
}
