package main

import (
	"fmt"
	"strings"

	"objscope/internal/access"
)

// resolve walks a module:attr.path target. Every step is classified before
// it is read, so resolution never runs code the target defines.
func resolve(s *access.Session, target string) (*access.Access, error) {
	modName, attrPath, _ := strings.Cut(target, ":")
	if modName == "" {
		return nil, fmt.Errorf("target %q: missing module", target)
	}
	mod, err := s.Runtime().Import(modName)
	if err != nil {
		return nil, fmt.Errorf("target %q: %w", target, err)
	}
	cur := s.Access(mod)
	if attrPath == "" {
		return cur, nil
	}
	for _, name := range strings.Split(attrPath, ".") {
		ok, err := cur.IsAllowedGetattr(name)
		if access.IsNoSuchAttribute(err) {
			owner, _ := cur.QualifiedName()
			return nil, fmt.Errorf("target %q: %s has no attribute %q: %w", target, owner, name, err)
		}
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", target, err)
		}
		if !ok {
			return nil, fmt.Errorf("target %q: reading %q from %s would run code", target, name, cur)
		}
		if cur, err = cur.Getattr(name); err != nil {
			return nil, fmt.Errorf("target %q: %w", target, err)
		}
	}
	return cur, nil
}
