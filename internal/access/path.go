package access

import (
	"strings"

	"objscope/internal/logging"
	"objscope/internal/object"
)

// PathEntry is one step of an access path.
type PathEntry struct {
	Name  string
	Value *Access
}

// AccessPath returns the chain from the owning module down to the value,
// root first: module, then the declaring class for native descriptors, then
// the value. A missing or empty module name, or a module that fails to
// import, roots the path at builtins. The result is empty when any element
// has no name.
func (a *Access) AccessPath() []PathEntry {
	chain := a.objectPath()
	out := make([]PathEntry, 0, len(chain))
	for _, o := range chain {
		name, ok := object.NameOf(o)
		if !ok {
			return nil
		}
		out = append(out, PathEntry{Name: name, Value: a.s.Access(o)})
	}
	return out
}

// objectPath collects value, owner and module, then reverses them.
func (a *Access) objectPath() []object.Object {
	rt := a.s.rt
	cur := a.obj
	chain := []object.Object{cur}
	if owner, ok := object.OwnerOf(cur); ok {
		cur = owner
		chain = append(chain, cur)
	}

	modName, declared := object.ModuleNameOf(cur)
	switch {
	case !declared:
		if _, isModule := cur.(*object.Module); !isModule {
			chain = append(chain, rt.Builtins)
		}
	case modName == "":
		chain = append(chain, rt.Builtins)
	default:
		m, err := rt.Import(modName)
		if err != nil {
			logging.AccessDebug("module %q of %s not importable: %v", modName, object.TypeName(a.obj), err)
			chain = append(chain, rt.Builtins)
		} else {
			chain = append(chain, m)
		}
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// QualifiedName joins the access path with dots, e.g. "builtins.str.replace".
func (a *Access) QualifiedName() (string, bool) {
	path := a.AccessPath()
	if len(path) == 0 {
		return "", false
	}
	names := make([]string, len(path))
	for i, e := range path {
		names[i] = e.Name
	}
	return strings.Join(names, "."), true
}
