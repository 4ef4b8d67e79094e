package screening

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aristath/stockscout/internal/utils"
	"gopkg.in/yaml.v3"
)

// similarityThreshold is the minimum Dice coefficient for a closest-category match
const similarityThreshold = 0.4

// minContainmentLen is the shortest input matched by containment against category names
const minContainmentLen = 3

// Categories maps a user-facing category name to industry keywords.
type Categories map[string][]string

// DefaultCategories returns the built-in category map.
// Keywords are matched against GICS sector and sub-industry names.
func DefaultCategories() Categories {
	return Categories{
		"technology": {"technology", "tech", "software", "semiconductor", "hardware", "it services",
			"internet", "electronic", "communications equipment", "data processing"},
		"healthcare": {"health", "pharmaceutical", "biotechnology", "medical", "life sciences", "drug"},
		"finance": {"financial", "bank", "insurance", "capital markets", "asset management",
			"investment banking", "payment", "consumer finance", "holdings"},
		"energy": {"energy", "oil", "gas", "coal", "fuel", "drilling", "pipeline"},
		"consumer": {"consumer", "retail", "restaurant", "apparel", "beverage", "food",
			"household", "personal care", "tobacco", "automobile", "leisure"},
		"industrials": {"industrial", "aerospace", "defense", "machinery", "construction",
			"logistics", "freight", "airline", "railroad", "conglomerate"},
		"utilities":     {"utilities", "utility", "electric", "water", "renewable", "power"},
		"real estate":   {"real estate", "reit"},
		"materials":     {"materials", "chemical", "metal", "mining", "gold", "steel", "paper", "gases"},
		"communication": {"communication", "telecom", "media", "entertainment", "broadcasting", "publishing"},
	}
}

// LoadCategories reads a YAML category map (category: [keywords...]).
// Category names and keywords are normalized on load.
func LoadCategories(path string) (Categories, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read category map: %w", err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse category map: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("category map %s is empty", path)
	}

	cats := make(Categories, len(raw))
	for name, keywords := range raw {
		key := utils.NormalizeText(name)
		if key == "" {
			continue
		}
		for _, kw := range keywords {
			if kw = utils.NormalizeText(kw); kw != "" {
				cats[key] = append(cats[key], kw)
			}
		}
	}
	return cats, nil
}

// Resolve returns the keywords for a preference industry.
// Resolution order: exact category, closest category by similarity,
// containment with a category name at a word start in either direction (inputs of
// at least three characters), then the raw input.
func (c Categories) Resolve(industry string) []string {
	want := utils.NormalizeText(industry)
	if want == "" {
		return nil
	}

	if kws, ok := c[want]; ok {
		return kws
	}

	names := c.names()

	best, bestScore := "", 0.0
	for _, name := range names {
		if score := Similarity(want, name); score > bestScore {
			best, bestScore = name, score
		}
	}
	if bestScore >= similarityThreshold {
		return c[best]
	}

	// Short inputs like "it" would match inside unrelated names
	if len(want) >= minContainmentLen {
		for _, name := range names {
			if utils.ContainsWordStart(name, want) || utils.ContainsWordStart(want, name) {
				return c[name]
			}
		}
	}

	return []string{want}
}

// names returns category names sorted so resolution is deterministic
func (c Categories) names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Similarity is the Sørensen-Dice coefficient over character bigrams, ignoring whitespace.
func Similarity(a, b string) float64 {
	a = strings.Join(strings.Fields(a), "")
	b = strings.Join(strings.Fields(b), "")
	if a == b {
		return 1
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}

	bigrams := make(map[string]int, len(a)-1)
	for i := 0; i < len(a)-1; i++ {
		bigrams[a[i:i+2]]++
	}

	intersection := 0
	for i := 0; i < len(b)-1; i++ {
		bg := b[i : i+2]
		if bigrams[bg] > 0 {
			bigrams[bg]--
			intersection++
		}
	}

	return 2 * float64(intersection) / float64(len(a)+len(b)-2)
}
