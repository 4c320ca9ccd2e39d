package access

import (
	"fmt"

	"objscope/internal/object"
)

// Hosts before 1.5 answer a signature request for a native class without a
// declared initializer with the generic object signature. That answer is
// wrong for classes whose construction slots differ from object's, so those
// versions are screened here instead of trusting the host.
var inheritedSignatureVersions = map[object.Version]bool{
	{Major: 1, Minor: 3}: true,
	{Major: 1, Minor: 4}: true,
}

func checkSignatureQuirks(rt *object.Runtime, obj object.Object) error {
	if rt.Version.Less(object.SignatureSince) {
		return fmt.Errorf("%w: host %s predates signature introspection", ErrSignatureUnsupported, rt.Version)
	}
	if !inheritedSignatureVersions[rt.Version] {
		return nil
	}
	c, ok := obj.(*object.Class)
	if !ok || !c.Native || declaresConstructor(c.Class()) || declaresTextSignature(c) {
		return nil
	}
	if sameSlot(c, "__init__") && sameSlot(c, "__new__") {
		return nil
	}
	return fmt.Errorf("%w: host %s reports an inherited signature for %s", ErrSignatureUnsupported, rt.Version, c.Name)
}

// declaresConstructor reports a script __init__ or __new__ on c.
func declaresConstructor(c *object.Class) bool {
	for _, name := range []string{"__init__", "__new__"} {
		if v, ok := c.Lookup(name); ok {
			if _, script := v.(*object.Function); script {
				return true
			}
			if sm, wrapped := v.(*object.StaticMethod); wrapped {
				if _, script := sm.Func.(*object.Function); script {
					return true
				}
			}
		}
	}
	return false
}

func declaresTextSignature(c *object.Class) bool {
	for _, base := range c.MRO() {
		if base == object.ObjectClass {
			return false
		}
		if base.TextSignature != nil {
			return true
		}
	}
	return false
}

// sameSlot reports whether c inherits name unchanged from object.
func sameSlot(c *object.Class, name string) bool {
	own, _ := c.Lookup(name)
	base, _ := object.ObjectClass.Dict.Get(name)
	return object.Same(own, base)
}
