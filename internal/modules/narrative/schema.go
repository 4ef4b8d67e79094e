package narrative

// Section is one recognized heading in a model reply.
type Section struct {
	Key         string // Field name in the response
	Heading     string // Heading text the model is asked to emit
	Placeholder string // Shown when the section could not be produced
}

// Schema lists the sections a prompt asks for.
// Fallback receives the whole reply when no heading is found.
type Schema struct {
	Sections []Section
	Fallback string
}

func (s Schema) has(key string) bool {
	for _, sec := range s.Sections {
		if sec.Key == key {
			return true
		}
	}
	return false
}

// Placeholders returns every field set to its placeholder.
func (s Schema) Placeholders() map[string]string {
	out := make(map[string]string, len(s.Sections))
	for _, sec := range s.Sections {
		out[sec.Key] = sec.Placeholder
	}
	return out
}

// PortfolioSchema is used for the recommendations narrative.
var PortfolioSchema = Schema{
	Sections: []Section{
		{Key: "analysis", Heading: "Analysis", Placeholder: "Unable to generate analysis at this time."},
		{Key: "thesis", Heading: "Investment Thesis", Placeholder: "Unable to generate thesis at this time."},
	},
	Fallback: "analysis",
}

// StockSchema is used for the single-stock deep analysis.
var StockSchema = Schema{
	Sections: []Section{
		{Key: "analysis", Heading: "Analysis", Placeholder: "AI analysis unavailable at this time."},
	},
	Fallback: "analysis",
}
