package access

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objscope/internal/object"
	"objscope/internal/types"
)

func factStrings(facts []types.Fact) []string {
	out := make([]string, len(facts))
	for i, f := range facts {
		out[i] = f.String()
	}
	return out
}

func TestFactsForMethodDescriptor(t *testing.T) {
	s := newTestSession(t)
	facts := factStrings(Facts(s.Access(classAttr(t, object.StrClass, "replace"))))

	assert.Contains(t, facts, `api_kind("builtins.str.replace", /function).`)
	assert.Contains(t, facts, `display_name("builtins.str.replace", "replace").`)
	assert.Contains(t, facts, `signature_param("builtins.str.replace", 0, "self", /false).`)
	assert.Contains(t, facts, `signature_param("builtins.str.replace", 3, "count", /true).`)
	assert.Contains(t, facts, `attribute("builtins.str.replace", "__class__", /safe).`)
}

func TestFactsForClassAndInstance(t *testing.T) {
	s := newTestSession(t)
	calls := 0
	c := scriptClass(t, "Account", nil, map[string]object.Object{
		"balance": &object.Property{Get: fn("balance", &calls, object.Int(0), self())},
		"deposit": fn("deposit", nil, object.None, self(), object.Param{Name: "amount"}),
		"__repr__": fn("__repr__", &calls, object.Str("Account()"), self()),
	})

	facts := factStrings(Facts(s.Access(object.BoolClass)))
	assert.Contains(t, facts, `api_kind("builtins.bool", /class).`)
	assert.Contains(t, facts, `mro_entry("builtins.bool", 0, "builtins.int").`)
	assert.Contains(t, facts, `mro_entry("builtins.bool", 1, "builtins.object").`)

	obj := object.NewInstance(c)
	facts = factStrings(Facts(s.Access(obj)))
	key := fmt.Sprintf("<Account object at %p>", obj)
	assert.Contains(t, facts, types.Fact{Predicate: "api_kind", Args: []interface{}{key, types.MangleAtom("/instance")}}.String())
	assert.Contains(t, facts, types.Fact{Predicate: "attribute", Args: []interface{}{key, "balance", types.MangleAtom("/unsafe")}}.String())
	assert.Contains(t, facts, types.Fact{Predicate: "attribute", Args: []interface{}{key, "deposit", types.MangleAtom("/safe")}}.String())
	assert.Zero(t, calls, "neither the property nor __repr__ runs")

	facts = factStrings(Facts(s.Access(object.Int(7))))
	assert.Contains(t, facts, `api_kind("7", /instance).`)
}

func TestFactsForModule(t *testing.T) {
	s := newTestSession(t)
	m := object.NewModule("pkg", "/src/pkg/__init__.py", "")
	facts := factStrings(Facts(s.Access(m)))
	assert.Contains(t, facts, `api_kind("pkg", /module).`)
	assert.Contains(t, facts, `source_file("pkg", "/src/pkg/__init__.py").`)
}

func TestFactStore(t *testing.T) {
	s := newTestSession(t)
	fs := NewFactStore()

	facts := Facts(s.Access(object.BoolClass))
	added, err := fs.Add(facts...)
	require.NoError(t, err)
	assert.Equal(t, len(facts), added)
	assert.Equal(t, len(facts), fs.Count())

	// Re-adding is a no-op.
	added, err = fs.Add(facts...)
	require.NoError(t, err)
	assert.Zero(t, added)

	mro, err := fs.Query("mro_entry", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`mro_entry("builtins.bool", 0, "builtins.int").`,
		`mro_entry("builtins.bool", 1, "builtins.object").`,
	}, factStrings(mro))

	all, err := fs.All()
	require.NoError(t, err)
	assert.Len(t, all, len(facts))
	assert.Equal(t, "api_kind", all[0].Predicate)
}
