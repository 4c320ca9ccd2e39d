package access

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objscope/internal/object"
)

func objects(as []*Access) []object.Object {
	out := make([]object.Object, len(as))
	for i, a := range as {
		out[i] = a.Object()
	}
	return out
}

// trapClass is a script container whose protocol hooks count their calls.
func trapClass(t *testing.T, calls *int, bases ...*object.Class) *object.Class {
	t.Helper()
	return scriptClass(t, "Trap", bases, map[string]object.Object{
		"__getitem__": fn("__getitem__", calls, object.Int(1), self(), object.Param{Name: "key"}),
		"__iter__":    fn("__iter__", calls, object.NewIterator(func() (object.Object, bool, error) { return nil, false, nil }), self()),
		"__len__":     fn("__len__", calls, object.Int(1), self()),
	})
}

func TestIterPreviewStopsInfiniteIterables(t *testing.T) {
	s := newTestSession(t)
	forever := &object.Range{Start: 0, Step: 1, Unbounded: true}

	items, err := s.Access(forever).IterPreview()
	require.NoError(t, err)
	require.Len(t, items, PreviewLimit)
	assert.Equal(t, object.Int(0), items[0].Object())
	assert.Equal(t, object.Int(20), items[20].Object())
}

func TestIterPreviewWhitelistedContainers(t *testing.T) {
	s := newTestSession(t)
	d := object.NewDict()
	require.NoError(t, d.Set(object.Str("a"), object.Int(1)))
	require.NoError(t, d.Set(object.Str("b"), object.Int(2)))

	cases := []struct {
		name  string
		value object.Object
		want  []object.Object
	}{
		{"list", object.NewList(object.Int(1), object.Str("x")), []object.Object{object.Int(1), object.Str("x")}},
		{"tuple", object.NewTuple(object.None), []object.Object{object.None}},
		{"str", object.Str("hé"), []object.Object{object.Str("h"), object.Str("é")}},
		{"bytes", object.Bytes("AB"), []object.Object{object.Int(65), object.Int(66)}},
		{"bytearray", &object.ByteArray{Data: []byte{7}}, []object.Object{object.Int(7)}},
		{"dict keys", d, []object.Object{object.Str("a"), object.Str("b")}},
		{"range", &object.Range{Start: 0, Stop: 6, Step: 2}, []object.Object{object.Int(0), object.Int(2), object.Int(4)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := s.Access(tc.value).IterPreview()
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, objects(items)); diff != "" {
				t.Errorf("preview mismatch (-want +got):\n%s", diff)
			}
		})
	}

	big := make([]object.Object, 100)
	for i := range big {
		big[i] = object.Int(i)
	}
	items, err := s.Access(object.NewList(big...)).IterPreview()
	require.NoError(t, err)
	assert.Len(t, items, PreviewLimit)
}

func TestGuardedReadsSkipCustomContainers(t *testing.T) {
	s := newTestSession(t)
	calls := 0
	plain := object.NewInstance(trapClass(t, &calls))
	listSub := object.NewInstance(trapClass(t, &calls, object.ListClass))

	for _, v := range []object.Object{plain, listSub} {
		a := s.Access(v)
		got, ok, err := a.Index(object.Int(0))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)

		items, err := a.IterPreview()
		require.NoError(t, err)
		assert.Empty(t, items)
	}
	assert.Zero(t, calls, "custom protocol hooks must never run")
}

func TestIndexWhitelistedContainers(t *testing.T) {
	s := newTestSession(t)
	d := object.NewDict()
	require.NoError(t, d.Set(object.Str("k"), object.Int(9)))

	got, ok, err := s.Access(object.NewList(object.Int(1), object.Int(2))).Index(object.Int(-1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, object.Int(2), got.Object())

	got, ok, err = s.Access(d).Index(object.Str("k"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, object.Int(9), got.Object())

	got, ok, err = s.Access(object.Str("abc")).Index(&object.Slice{Start: object.Int(1)})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, object.Str("bc"), got.Object())

	// Faults of whitelisted reads surface unchanged.
	_, _, err = s.Access(d).Index(object.Str("missing"))
	assert.ErrorIs(t, err, object.ErrKey)
	_, _, err = s.Access(object.NewTuple()).Index(object.Int(0))
	assert.ErrorIs(t, err, object.ErrIndex)
}

func TestSafeValue(t *testing.T) {
	s := newTestSession(t)
	slice := &object.Slice{Start: object.Int(1), Stop: object.Int(5)}

	for _, v := range []object.Object{object.Int(3), object.Str("s"), slice, object.Float(1.5), object.Bytes("b"), object.Ellipsis} {
		got, err := s.Access(v).SafeValue()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	got, _ := s.Access(slice).SafeValue()
	assert.Same(t, slice, got)

	inst := object.NewInstance(scriptClass(t, "Thing", nil, nil))
	for _, v := range []object.Object{inst, object.Bool(true), object.None, object.NewList()} {
		_, err := s.Access(v).SafeValue()
		assert.ErrorIs(t, err, ErrNotALiteral)
		assert.Equal(t, object.Str("fallback"), s.Access(v).SafeValueOr(object.Str("fallback")))
	}
	assert.Equal(t, object.Int(3), s.Access(object.Int(3)).SafeValueOr(object.None))
}

func TestMethodDescriptorScenario(t *testing.T) {
	s := newTestSession(t)
	replace := s.Access(classAttr(t, object.StrClass, "replace"))

	assert.True(t, replace.IsMethodDescriptor())
	assert.Equal(t, KindFunction, replace.APIKind())
	assert.False(t, replace.IsClass())
	assert.False(t, replace.IsInstance())
	name, ok := replace.Name()
	require.True(t, ok)
	assert.Equal(t, "replace", name)
}

func TestModuleScenario(t *testing.T) {
	s := newTestSession(t)
	m := object.NewModule("pkg", "/src/pkg/__init__.py", "Package docs.")
	m.Define("answer", object.Int(42))
	a := s.Access(m)

	assert.Equal(t, KindModule, a.APIKind())
	mro, err := a.MRO()
	require.NoError(t, err)
	assert.Empty(t, mro)

	file, ok := a.SourceFile()
	assert.True(t, ok)
	assert.Equal(t, "/src/pkg/__init__.py", file)
	assert.Equal(t, "Package docs.", a.Doc(false))
	assert.Contains(t, a.Dir(), "answer")

	_, ok = s.Access(s.Runtime().Builtins).SourceFile()
	assert.False(t, ok)
}

func TestAPIKindOrder(t *testing.T) {
	s := newTestSession(t)
	callCount := 0
	meta := scriptClass(t, "Meta", []*object.Class{object.TypeClass}, map[string]object.Object{
		"__call__": fn("__call__", &callCount, object.None, self()),
	})
	withMeta := scriptClass(t, "WithMeta", nil, nil)
	withMeta.Meta = meta
	method := fn("method", nil, object.None, self())
	c := scriptClass(t, "Thing", nil, map[string]object.Object{"method": method})
	inst := object.NewInstance(c)
	bound, err := s.Access(inst).Getattr("method")
	require.NoError(t, err)

	cases := []struct {
		name  string
		value object.Object
		want  APIKind
	}{
		{"class", object.StrClass, KindClass},
		{"callable metaclass instance", withMeta, KindClass},
		{"module", s.Runtime().Builtins, KindModule},
		{"native function", builtin(t, s, "len"), KindFunction},
		{"script function", method, KindFunction},
		{"bound method", bound.Object(), KindFunction},
		{"classmethod wrapper", &object.ClassMethod{Func: method}, KindFunction},
		{"wrapper descriptor", classAttr(t, object.ObjectClass, "__init__"), KindFunction},
		{"getset descriptor", classAttr(t, object.ObjectClass, "__class__"), KindInstance},
		{"property", &object.Property{}, KindInstance},
		{"instance", inst, KindInstance},
		{"literal", object.Int(1), KindInstance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, s.Access(tc.value).APIKind())
		})
	}
	assert.Zero(t, callCount)
}

func TestName(t *testing.T) {
	s := newTestSession(t)
	c := scriptClass(t, "Widget", nil, nil)

	cases := []struct {
		value object.Object
		want  string
	}{
		{object.NewInstance(c), "Widget"},
		{c, "Widget"},
		{object.Int(3), "int"},
		{object.StrClass, "str"},
		{builtin(t, s, "len"), "len"},
		{s.Runtime().Builtins, "builtins"},
		{classAttr(t, object.DictClass, "fromkeys"), "fromkeys"},
		{&object.Property{}, "property"},
	}
	for _, tc := range cases {
		got, ok := s.Access(tc.value).Name()
		require.True(t, ok, "%T", tc.value)
		assert.Equal(t, tc.want, got)
	}

	// A foreign value of an unregistered Go type has no class to name.
	_, ok := s.Access(&object.Foreign{Value: struct{}{}}).Name()
	assert.False(t, ok)
}

func TestMRO(t *testing.T) {
	s := newTestSession(t)
	mro, err := s.Access(object.BoolClass).MRO()
	require.NoError(t, err)
	assert.Equal(t, []object.Object{object.IntClass, object.ObjectClass}, objects(mro))

	base := scriptClass(t, "Base", nil, nil)
	left := scriptClass(t, "Left", []*object.Class{base}, nil)
	right := scriptClass(t, "Right", []*object.Class{base}, nil)
	diamond := scriptClass(t, "Diamond", []*object.Class{left, right}, nil)
	mro, err = s.Access(diamond).MRO()
	require.NoError(t, err)
	assert.Equal(t, []object.Object{left, right, base, object.ObjectClass}, objects(mro))

	mro, err = s.Access(object.Int(1)).MRO()
	require.NoError(t, err)
	assert.Empty(t, mro)
}

func TestClassAndSubtypes(t *testing.T) {
	s := newTestSession(t)
	cls, err := s.Access(object.Int(1)).Class()
	require.NoError(t, err)
	assert.Same(t, s.Access(object.IntClass), cls)

	_, err = s.Access(&object.Foreign{Value: 1}).Class()
	assert.ErrorIs(t, err, object.ErrAttribute)

	ok, err := s.Access(object.IntClass).IsSupertypeOf(s.Access(object.BoolClass))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Access(object.BoolClass).IsSupertypeOf(s.Access(object.IntClass))
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, s.Access(object.StrClass).NeedsTypeCompletions())
	assert.False(t, s.Access(object.TypeClass).NeedsTypeCompletions())
	assert.False(t, s.Access(object.Str("x")).NeedsTypeCompletions())
	assert.True(t, s.Access(object.Str("x")).IsInstance())
}

func TestHasIterIsStatic(t *testing.T) {
	s := newTestSession(t)
	calls, advanced := 0, 0
	it := object.NewIterator(func() (object.Object, bool, error) {
		advanced++
		return object.Int(1), true, nil
	})

	assert.True(t, s.Access(object.NewList()).HasIter())
	assert.True(t, s.Access(object.NewInstance(trapClass(t, &calls))).HasIter())
	assert.True(t, s.Access(it).HasIter())
	assert.False(t, s.Access(object.Int(1)).HasIter())
	assert.False(t, s.Access(object.NewInstance(scriptClass(t, "Plain", nil, nil))).HasIter())
	assert.False(t, s.Access(object.NewInstance(scriptClass(t, "MyList", []*object.Class{object.ListClass}, nil))).HasIter(),
		"a list subclass instance holds no native items")
	assert.Zero(t, calls)
	assert.Zero(t, advanced)
}

func TestTruthReprAndMapping(t *testing.T) {
	s := newTestSession(t)
	ok, err := s.Access(object.NewList()).Truth()
	require.NoError(t, err)
	assert.False(t, ok)

	failing := scriptClass(t, "Failing", nil, map[string]object.Object{
		"__bool__": &object.Function{Name: "__bool__", Params: []object.Param{self()},
			Body: func(rt *object.Runtime, args []object.Object) (object.Object, error) {
				return nil, object.ErrValue
			}},
	})
	_, err = s.Access(object.NewInstance(failing)).Truth()
	assert.ErrorIs(t, err, object.ErrValue)

	r, err := s.Access(object.NewList(object.Int(1), object.Str("a"))).Repr()
	require.NoError(t, err)
	assert.Equal(t, "[1, 'a']", r)

	d := object.NewDict()
	require.NoError(t, d.Set(object.Str("a"), object.Int(1)))
	require.NoError(t, d.Set(object.Str("b"), object.Str("two")))
	vals, err := s.Access(d).MappingValues()
	require.NoError(t, err)
	assert.Equal(t, []object.Object{object.Int(1), object.Str("two")}, objects(vals))

	_, err = s.Access(object.NewList()).MappingValues()
	assert.ErrorIs(t, err, object.ErrType)
}

func TestDocIncludesSignature(t *testing.T) {
	s := newTestSession(t)
	replace := s.Access(classAttr(t, object.StrClass, "replace"))

	plain := replace.Doc(false)
	assert.Contains(t, plain, "Return a copy with all occurrences")

	withSig := replace.Doc(true)
	assert.Equal(t, "replace(self, old, new, count=-1)\n\n"+plain, withSig)

	f := &object.Function{Name: "f", Params: []object.Param{
		{Name: "a", Annotation: object.IntClass},
		{Name: "rest", Kind: object.VarPositional},
		{Name: "flag", Kind: object.KeywordOnly, Default: object.Bool(false)},
		{Name: "kw", Kind: object.VarKeyword},
	}}
	assert.Equal(t, "f(a: int, *rest, flag=False, **kw)", s.Access(f).Doc(true))

	g := &object.Function{Name: "g", Params: []object.Param{{Name: "only", Kind: object.KeywordOnly}}}
	assert.Equal(t, "g(*, only)", s.Access(g).Doc(true))

	// No signature, no prefix.
	assert.Equal(t, s.Access(builtin(t, s, "getattr")).Doc(false), s.Access(builtin(t, s, "getattr")).Doc(true))
}

func TestDirDoesNotRunHooks(t *testing.T) {
	s := newTestSession(t)
	calls := 0
	c := scriptClass(t, "Listed", nil, map[string]object.Object{
		"__dir__": fn("__dir__", &calls, object.NewList(), self()),
		"method":  fn("method", nil, object.None, self()),
	})
	inst := object.NewInstance(c)
	inst.Dict.Set("own", object.Int(1))

	names := s.Access(inst).Dir()
	assert.Contains(t, names, "own")
	assert.Contains(t, names, "method")
	assert.Contains(t, names, "__class__")
	assert.Zero(t, calls)
}
