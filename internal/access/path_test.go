package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objscope/internal/object"
)

func pathNames(p []PathEntry) []string {
	out := make([]string, len(p))
	for i, e := range p {
		out[i] = e.Name
	}
	return out
}

func TestAccessPathRootModule(t *testing.T) {
	s := newTestSession(t)
	builtins := s.Runtime().Builtins

	path := s.Access(builtins).AccessPath()
	require.Len(t, path, 1)
	assert.Equal(t, "builtins", path[0].Name)
	assert.Same(t, s.Access(builtins), path[0].Value)

	m := object.NewModule("pkg", "", "")
	s.Runtime().Register(m)
	assert.Equal(t, []string{"pkg"}, pathNames(s.Access(m).AccessPath()))
}

func TestAccessPathThroughOwnerClass(t *testing.T) {
	s := newTestSession(t)
	replace := s.Access(classAttr(t, object.StrClass, "replace"))

	path := replace.AccessPath()
	assert.Equal(t, []string{"builtins", "str", "replace"}, pathNames(path))
	assert.Same(t, s.Access(object.StrClass), path[1].Value)
	assert.Same(t, replace, path[2].Value)

	name, ok := replace.QualifiedName()
	require.True(t, ok)
	assert.Equal(t, "builtins.str.replace", name)
}

func TestAccessPathRegisteredModule(t *testing.T) {
	s := newTestSession(t)
	m := object.NewModule("geometry", "/src/geometry.py", "")
	c := scriptClass(t, "Point", nil, nil)
	c.Module = "geometry"
	m.Define("Point", c)
	s.Runtime().Register(m)

	assert.Equal(t, []string{"geometry", "Point"}, pathNames(s.Access(c).AccessPath()))

	f := &object.Function{Name: "area", Module: "geometry"}
	name, ok := s.Access(f).QualifiedName()
	require.True(t, ok)
	assert.Equal(t, "geometry.area", name)
}

func TestAccessPathFallsBackToBuiltins(t *testing.T) {
	s := newTestSession(t)

	// Declared module that cannot be imported.
	ghost := scriptClass(t, "Ghost", nil, nil)
	ghost.Module = "no.such.module"
	assert.Equal(t, []string{"builtins", "Ghost"}, pathNames(s.Access(ghost).AccessPath()))

	// Declared module name that is empty.
	anon := &object.Function{Name: "anon"}
	assert.Equal(t, []string{"builtins", "anon"}, pathNames(s.Access(anon).AccessPath()))

	// No module declared at all.
	loose := &object.GetSetDescriptor{Name: "loose"}
	assert.Equal(t, []string{"builtins", "loose"}, pathNames(s.Access(loose).AccessPath()))

	// Owned descriptors resolve through their class.
	getter := classAttr(t, object.ObjectClass, "__class__")
	assert.Equal(t, []string{"builtins", "object", "__class__"}, pathNames(s.Access(getter).AccessPath()))
}

func TestAccessPathEmptyWhenUnnamed(t *testing.T) {
	s := newTestSession(t)
	inst := object.NewInstance(scriptClass(t, "Thing", nil, nil))

	assert.Empty(t, s.Access(inst).AccessPath())
	assert.Empty(t, s.Access(object.Int(3)).AccessPath())
	_, ok := s.Access(inst).QualifiedName()
	assert.False(t, ok)
}

func TestAccessPathGoBridge(t *testing.T) {
	s := newTestSession(t)
	s.Runtime().AllowGo("strings")
	m, err := s.Runtime().Import("strings")
	require.NoError(t, err)

	fields, ok := m.Dict.Get("Fields")
	require.True(t, ok)
	name, ok := s.Access(fields).QualifiedName()
	require.True(t, ok)
	assert.Equal(t, "strings.Fields", name)

	builder, ok := m.Dict.Get("Builder")
	require.True(t, ok)
	cls, ok := builder.(*object.Class)
	require.True(t, ok)
	grow, ok := cls.Dict.Get("Grow")
	require.True(t, ok)
	assert.Equal(t, []string{"strings", "Builder", "Grow"}, pathNames(s.Access(grow).AccessPath()))
}
