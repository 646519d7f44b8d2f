package search

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/touchstone-catalog/pkg/catalog"
	"github.com/hazyhaar/touchstone-catalog/pkg/synonym"
)

func bundledTable(t *testing.T) *synonym.Table {
	t.Helper()
	tbl, err := synonym.Default()
	require.NoError(t, err)
	return tbl
}

func emptyTable(t *testing.T) *synonym.Table {
	t.Helper()
	tbl, err := synonym.Build(nil)
	require.NoError(t, err)
	return tbl
}

func newEngine(t *testing.T, entries []catalog.Entry, tbl *synonym.Table) *Engine {
	t.Helper()
	e, err := New(entries, tbl)
	require.NoError(t, err)
	return e
}

func fruit(id, name string) catalog.Entry {
	return catalog.Entry{ID: id, Name: name, Category: "fruits"}
}

func TestSearchExactShortCircuits(t *testing.T) {
	e := newEngine(t, []catalog.Entry{fruit("apple_002", "Apple"), fruit("pineapple_025", "Pineapple")}, bundledTable(t))

	got := e.Search("apple", Options{})
	require.Len(t, got, 1)
	assert.Equal(t, "apple_002", got[0].Entry.ID)
	assert.Equal(t, 1.0, got[0].Score)
	assert.Equal(t, Exact, got[0].Kind)
	assert.Equal(t, "apple", got[0].Query)
}

func TestSearchEveryNameFindsItself(t *testing.T) {
	entries := catalog.Sample()
	e := newEngine(t, entries, bundledTable(t))

	for _, entry := range entries {
		got := e.Search(entry.Name, Options{})
		require.Len(t, got, 1, entry.Name)
		assert.Equal(t, entry.ID, got[0].Entry.ID)
		assert.Equal(t, 1.0, got[0].Score)
	}
}

func TestSearchRegionalSynonym(t *testing.T) {
	e := newEngine(t, []catalog.Entry{fruit("avocado_001", "Avocado")}, bundledTable(t))

	got := e.Search("palta", Options{})
	require.Len(t, got, 1)
	r := got[0]
	assert.Equal(t, "avocado_001", r.Entry.ID)
	assert.Equal(t, Synonym, r.Kind)
	assert.InDelta(t, 0.882, r.Score, 1e-9)
	assert.Contains(t, r.Fragments, "palta → avocado")
}

func TestSearchRegionalSynonymFullCatalog(t *testing.T) {
	e := newEngine(t, catalog.Sample(), bundledTable(t))

	got := e.Search("Palta", Options{})
	require.NotEmpty(t, got)
	assert.Equal(t, "avocado_001", got[0].Entry.ID)
	assert.Equal(t, Synonym, got[0].Kind)
	assert.Contains(t, got[0].Fragments, "Palta → avocado")
}

func TestSearchFuzzyTransposition(t *testing.T) {
	entries := []catalog.Entry{fruit("apple_002", "Apple"), fruit("pineapple_025", "Pineapple"), fruit("banana_010", "Banana")}
	e := newEngine(t, entries, bundledTable(t))

	got := e.Search("aplpe", Options{})
	require.Len(t, got, 1)
	assert.Equal(t, "apple_002", got[0].Entry.ID)
	assert.Equal(t, Fuzzy, got[0].Kind)
	assert.Greater(t, got[0].Score, 0.3)
	assert.Less(t, got[0].Score, 0.7)
	// One transposition over five runes.
	assert.InDelta(t, (1-math.Pow(0.2, 0.8/1.1))*0.7, got[0].Score, 1e-9)
}

func TestSearchPrefix(t *testing.T) {
	e := newEngine(t, catalog.Sample(), bundledTable(t))

	got := e.Search("avo", Options{})
	require.Len(t, got, 1)
	assert.Equal(t, Prefix, got[0].Kind)
	assert.InDelta(t, 0.85+0.1*3.0/7.0, got[0].Score, 1e-9)
}

func TestSearchSubstring(t *testing.T) {
	e := newEngine(t, []catalog.Entry{fruit("pineapple_025", "Pineapple"), fruit("banana_010", "Banana")}, emptyTable(t))

	got := e.Search("apple", Options{})
	require.Len(t, got, 1)
	assert.Equal(t, Substring, got[0].Kind)
	assert.InDelta(t, (0.6+0.2*5.0/9.0)*(1-0.3*4.0/9.0), got[0].Score, 1e-9)
}

func TestSearchKeepsBestResultPerEntry(t *testing.T) {
	// "apple" reaches Pineapple both as a canonical synonym and as a
	// substring; only the synonym score survives.
	e := newEngine(t, []catalog.Entry{fruit("pineapple_025", "Pineapple"), fruit("banana_010", "Banana")}, bundledTable(t))

	got := e.Search("apple", Options{})
	require.Len(t, got, 1)
	assert.Equal(t, Synonym, got[0].Kind)
	assert.InDelta(t, (0.7+0.15*5.0/9.0)*(1-0.3*4.0/9.0), got[0].Score, 1e-9)
}

func TestSearchBlankQuery(t *testing.T) {
	e := newEngine(t, catalog.Sample(), bundledTable(t))

	for _, q := range []string{"", "   ", "!!!"} {
		got := e.Search(q, Options{})
		assert.NotNil(t, got, "%q", q)
		assert.Empty(t, got, "%q", q)
	}
}

func TestSearchDeterministic(t *testing.T) {
	e := newEngine(t, catalog.Sample(), bundledTable(t))

	for _, q := range []string{"palta", "chips", "banan", "fruits", "ban"} {
		first := e.Search(q, Options{})
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, e.Search(q, Options{}), q)
		}
	}
}

func TestSearchOptions(t *testing.T) {
	e := newEngine(t, catalog.Sample(), bundledTable(t))

	all := e.Search("fruits", Options{})
	require.Greater(t, len(all), 1)

	limited := e.Search("fruits", Options{MaxResults: 1})
	require.Len(t, limited, 1)
	assert.Equal(t, all[0], limited[0])

	strict := e.Search("fruits", Options{MinScore: 0.99})
	assert.Empty(t, strict)
}

func TestUpdateCatalogRebuildsFuzzyIndex(t *testing.T) {
	e := newEngine(t, []catalog.Entry{fruit("apple_002", "Apple")}, emptyTable(t))
	assert.Empty(t, e.Search("mnago", Options{}))

	require.NoError(t, e.UpdateCatalog([]catalog.Entry{fruit("apple_002", "Apple"), fruit("mango_019", "Mango")}))
	assert.Equal(t, 2, e.Len())

	got := e.Search("mnago", Options{})
	require.Len(t, got, 1)
	assert.Equal(t, "mango_019", got[0].Entry.ID)
	assert.Equal(t, Fuzzy, got[0].Kind)
}

func TestUpdateCatalogRejectsInvalid(t *testing.T) {
	e := newEngine(t, []catalog.Entry{fruit("apple_002", "Apple")}, emptyTable(t))

	err := e.UpdateCatalog([]catalog.Entry{fruit("a", "A"), fruit("a", "B")})
	assert.ErrorIs(t, err, catalog.ErrDuplicateID)
	assert.Equal(t, 1, e.Len(), "previous catalog stays")
}

func TestNewRequiresSynonyms(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrNoSynonyms)
}

func TestZeroEnginePanics(t *testing.T) {
	var e Engine
	assert.Panics(t, func() { e.Search("apple", Options{}) })
}

func TestStrategiesOrder(t *testing.T) {
	e := newEngine(t, nil, emptyTable(t))

	got := e.Strategies()
	require.Len(t, got, 5)
	want := []Kind{Exact, Prefix, Synonym, Fuzzy, Substring}
	for i, info := range got {
		assert.Equal(t, want[i], info.Kind)
		assert.Equal(t, want[i].Priority(), info.Priority)
	}
}

func TestConcurrentSearchAndUpdate(t *testing.T) {
	e := newEngine(t, catalog.Sample(), bundledTable(t))
	sample := catalog.Sample()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if i == 0 {
					_ = e.UpdateCatalog(sample[:len(sample)-j%3])
					continue
				}
				_ = e.Search("mango", Options{})
			}
		}(i)
	}
	wg.Wait()
	assert.NotZero(t, e.Len())
}
