package access

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/google/mangle/ast"
	"github.com/google/mangle/factstore"

	"objscope/internal/logging"
	"objscope/internal/object"
	"objscope/internal/types"
)

// Facts describes the value's shape as Datalog facts keyed by its qualified
// name. Values without a path are keyed by their repr when they are plain
// values, or by type name and address otherwise. Only static reads are
// used: no script hook runs and attributes are classified, never read.
func Facts(a *Access) []types.Fact {
	key, ok := a.QualifiedName()
	if !ok {
		var err error
		if key, err = factKey(a); err != nil {
			return nil
		}
	}

	facts := []types.Fact{
		{Predicate: "api_kind", Args: []interface{}{key, types.MangleAtom("/" + string(a.APIKind()))}},
	}
	if name, ok := a.Name(); ok {
		facts = append(facts, types.Fact{Predicate: "display_name", Args: []interface{}{key, name}})
	}
	if file, ok := a.SourceFile(); ok {
		facts = append(facts, types.Fact{Predicate: "source_file", Args: []interface{}{key, file}})
	}

	if mro, err := a.MRO(); err == nil {
		for i, base := range mro {
			baseName, ok := base.QualifiedName()
			if !ok {
				continue
			}
			facts = append(facts, types.Fact{Predicate: "mro_entry", Args: []interface{}{key, i, baseName}})
		}
	}

	for _, name := range a.Dir() {
		safe, err := a.IsAllowedGetattr(name)
		if err != nil {
			continue
		}
		verdict := types.MangleAtom("/unsafe")
		if safe {
			verdict = "/safe"
		}
		facts = append(facts, types.Fact{Predicate: "attribute", Args: []interface{}{key, name, verdict}})
	}

	if ps, err := a.SignatureParams(); err == nil {
		for i, p := range ps {
			facts = append(facts, types.Fact{Predicate: "signature_param", Args: []interface{}{key, i, p.Name, p.HasDefault()}})
		}
	}

	logging.FactsDebug("%d facts for %s", len(facts), key)
	return facts
}

// FactStore collects exported facts in a mangle in-memory store.
type FactStore struct {
	store factstore.FactStore
}

// NewFactStore creates an empty store.
func NewFactStore() *FactStore {
	return &FactStore{store: factstore.NewSimpleInMemoryStore()}
}

// Add inserts facts, skipping duplicates. It returns the number added.
func (fs *FactStore) Add(facts ...types.Fact) (int, error) {
	added := 0
	for _, f := range facts {
		atom, err := f.ToAtom()
		if err != nil {
			return added, err
		}
		if fs.store.Add(atom) {
			added++
		}
	}
	return added, nil
}

// Query returns every stored fact of predicate/arity in string order.
func (fs *FactStore) Query(predicate string, arity int) ([]types.Fact, error) {
	var out []types.Fact
	err := fs.store.GetFacts(ast.NewQuery(ast.PredicateSym{Symbol: predicate, Arity: arity}), func(atom ast.Atom) error {
		out = append(out, types.FromAtom(atom))
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, err
}

// All returns every stored fact grouped by predicate name.
func (fs *FactStore) All() ([]types.Fact, error) {
	preds := fs.store.ListPredicates()
	sort.Slice(preds, func(i, j int) bool { return preds[i].Symbol < preds[j].Symbol })
	var out []types.Fact
	for _, p := range preds {
		facts, err := fs.Query(p.Symbol, p.Arity)
		if err != nil {
			return nil, err
		}
		out = append(out, facts...)
	}
	return out, nil
}

// Count returns the number of stored facts.
func (fs *FactStore) Count() int { return fs.store.EstimateFactCount() }

// factKey names a value without a path. Only heap values can carry repr
// hooks, so those get an identity key instead.
func factKey(a *Access) (string, error) {
	rv := reflect.ValueOf(a.obj)
	if rv.Kind() == reflect.Ptr {
		return fmt.Sprintf("<%s object at 0x%x>", object.TypeName(a.obj), rv.Pointer()), nil
	}
	return a.Repr()
}
