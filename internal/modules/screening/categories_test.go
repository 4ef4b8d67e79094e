package screening

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("health care", "healthcare"))
	assert.Equal(t, 0.5, Similarity("tech", "technology"))
	assert.Equal(t, 0.0, Similarity("a", "technology"))
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
	assert.InDelta(t, 0.667, Similarity("financials", "finance"), 0.001)
}

func TestResolve(t *testing.T) {
	cats := Categories{
		"technology":             {"software", "semiconductor"},
		"healthcare":             {"pharmaceutical"},
		"real estate":            {"reit"},
		"communication services": {"telecom"},
	}

	tests := []struct {
		name     string
		industry string
		want     []string
	}{
		{"empty", "", nil},
		{"exact", "technology", []string{"software", "semiconductor"}},
		{"exact case-insensitive", "  TECHNOLOGY ", []string{"software", "semiconductor"}},
		{"closest by similarity", "tech", []string{"software", "semiconductor"}},
		{"closest ignores spaces", "health care", []string{"pharmaceutical"}},
		{"closest partial word", "estate", []string{"reit"}},
		{"containment", "com", []string{"telecom"}},
		{"raw fallback", "Airlines", []string{"airlines"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cats.Resolve(tt.industry))
		})
	}
}

func TestResolve_ShortInputSkipsContainment(t *testing.T) {
	cats := DefaultCategories()

	assert.Equal(t, []string{"it"}, cats.Resolve("it"))
	assert.Equal(t, []string{"it"}, cats.Resolve("IT"))
	assert.Equal(t, cats["communication"], cats.Resolve("comm"))
}

func TestLoadCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
Clean Energy:
  - Solar
  - " Renewable  Electricity "
tech:
  - software
`), 0644))

	cats, err := LoadCategories(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"solar", "renewable electricity"}, cats["clean energy"])
	assert.Equal(t, []string{"software"}, cats["tech"])
}

func TestLoadCategories_Errors(t *testing.T) {
	_, err := LoadCategories(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte(""), 0644))
	_, err = LoadCategories(empty)
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("tech: [unclosed"), 0644))
	_, err = LoadCategories(bad)
	assert.Error(t, err)
}

func TestDefaultCategoriesCoverCommonInputs(t *testing.T) {
	cats := DefaultCategories()
	for _, input := range []string{"tech", "Healthcare", "financials", "energy", "utilities", "real estate"} {
		assert.NotEqual(t, []string{input}, cats.Resolve(input), input)
	}
}
