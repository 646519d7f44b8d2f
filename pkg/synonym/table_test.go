package synonym

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bundled(t *testing.T) *Table {
	t.Helper()
	tbl, err := Default()
	require.NoError(t, err)
	return tbl
}

func TestResolveRegionalSynonym(t *testing.T) {
	tbl := bundled(t)

	entries := tbl.Resolve("palta")
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "avocado", e.CanonicalTerm)
	assert.Equal(t, "avocado_001", e.TargetID)
	assert.Equal(t, SynonymConfidence, e.Confidence)
	require.NotNil(t, e.Region)
	assert.Equal(t, "AR", e.Region.Code)
	assert.Equal(t, "Argentina", e.Region.Country)
	assert.Equal(t, "es", e.Region.Language)
}

func TestResolveCanonical(t *testing.T) {
	tbl := bundled(t)

	entries := tbl.Resolve("  AVOCADO ")
	require.Len(t, entries, 1)
	assert.Equal(t, CanonicalConfidence, entries[0].Confidence)
	assert.Nil(t, entries[0].Region)
}

func TestResolveIgnoresAccentsAndCase(t *testing.T) {
	tbl := bundled(t)

	for _, term := range []string{"brócoli", "Brocoli", "BRÓCOLI"} {
		entries := tbl.Resolve(term)
		require.Len(t, entries, 1, term)
		assert.Equal(t, "broccoli_001", entries[0].TargetID, term)
	}
}

func TestResolveUnknown(t *testing.T) {
	tbl := bundled(t)

	assert.Nil(t, tbl.Resolve("dragonfruit"))
	assert.Nil(t, tbl.Resolve(""))
	assert.Nil(t, tbl.Resolve("  !! "))
	assert.False(t, tbl.HasSynonyms("dragonfruit"))
}

func TestCanonicalTermAndRegionInfo(t *testing.T) {
	tbl := bundled(t)

	got, ok := tbl.CanonicalTerm("aguacate")
	require.True(t, ok)
	assert.Equal(t, "avocado", got)

	region, ok := tbl.RegionInfo("espinafre")
	require.True(t, ok)
	assert.Equal(t, "Brazil", region.Country)
	assert.Equal(t, "pt", region.Language)

	_, ok = tbl.RegionInfo("avocado")
	assert.False(t, ok, "canonical terms carry no region")
}

func TestVariations(t *testing.T) {
	tbl := bundled(t)

	vars := tbl.Variations("avocado")
	var terms []string
	for _, v := range vars {
		terms = append(terms, v.Term)
		assert.Equal(t, "avocado_001", v.TargetID)
	}
	assert.Equal(t, []string{"aguacate", "palta"}, terms)
	assert.Empty(t, tbl.Variations("dragonfruit"))
}

func TestStats(t *testing.T) {
	tbl := bundled(t)

	s := tbl.Stats()
	assert.Greater(t, s.TotalTerms, 29)
	assert.Greater(t, s.WithRegionInfo, 0)
	assert.Less(t, s.WithRegionInfo, s.TotalTerms)
	assert.Zero(t, s.Collisions, "bundled synonyms normalize to distinct keys")
}

func TestBuildCollisions(t *testing.T) {
	groups := []Group{
		{Canonical: "pear", TargetID: "pear_1", Synonyms: []Term{
			{Term: "pera", Regions: []string{"MX"}},
			{Term: "pêra", Regions: []string{"BR"}},
		}},
		{Canonical: "banana", TargetID: "banana_1", Synonyms: []Term{
			{Term: "Pear", Regions: []string{"US"}},
		}},
	}
	tbl, err := Build(groups)
	require.NoError(t, err)

	e := tbl.Resolve("pêra")
	require.Len(t, e, 1)
	assert.Equal(t, "MX", e[0].Region.Code, "first declared synonym wins")

	e = tbl.Resolve("pear")
	require.Len(t, e, 1)
	assert.Equal(t, "pear_1", e[0].TargetID, "canonical key always wins")
	assert.Equal(t, CanonicalConfidence, e[0].Confidence)
	assert.Equal(t, 2, tbl.Stats().Collisions)
}

func TestBuildRejectsBadGroups(t *testing.T) {
	_, err := Build([]Group{{Canonical: " ", TargetID: "x"}})
	assert.ErrorIs(t, err, ErrEmptyCanonical)

	_, err = Build([]Group{{Canonical: "kale"}})
	assert.ErrorIs(t, err, ErrEmptyTarget)

	_, err = Build([]Group{
		{Canonical: "Kale", TargetID: "a"},
		{Canonical: "kale", TargetID: "b"},
	})
	assert.Error(t, err)
}

func TestUnknownRegionCode(t *testing.T) {
	tbl, err := Build([]Group{{Canonical: "kale", TargetID: "k", Synonyms: []Term{
		{Term: "grünkohl", Regions: []string{"DE"}},
	}}})
	require.NoError(t, err)

	region, ok := tbl.RegionInfo("grunkohl")
	require.True(t, ok)
	assert.Equal(t, "DE", region.Country)
	assert.Equal(t, "es", region.Language)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synonyms.yaml")
	err := os.WriteFile(path, []byte(`- canonical: cassava
  target_id: cassava_1
  synonyms:
    - {term: yuca, regions: [CO, VE]}
`), 0o644)
	require.NoError(t, err)

	tbl, err := LoadFile(path)
	require.NoError(t, err)
	canonical, ok := tbl.CanonicalTerm("Yuca")
	require.True(t, ok)
	assert.Equal(t, "cassava", canonical)

	g, ok := tbl.Group("cassava_1")
	require.True(t, ok)
	assert.Len(t, g.Synonyms, 1)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("- canonical: kale\n  target: k\n"))
	assert.Error(t, err)
}

func TestOpenEmptyPathUsesBundled(t *testing.T) {
	tbl, err := Open("")
	require.NoError(t, err)
	assert.Same(t, bundled(t), tbl)
}
