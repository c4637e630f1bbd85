package recommend

import "strings"

// normalizeToken lower-cases an ingredient name and collapses its internal
// whitespace to underscores, so multi-word names stay single tokens and are
// not split apart by the vectorizer ("olive oil" -> "olive_oil").
func normalizeToken(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, "_")
}

// NormalizeIngredients joins ingredient names into the space-separated
// token text used for both training documents and query vectors.
func NormalizeIngredients(items []string) string {
	tokens := make([]string, 0, len(items))
	for _, item := range items {
		if tok := normalizeToken(item); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return strings.Join(tokens, " ")
}

// splitIngredientsField parses a corpus "ingredients" cell, which may be a
// comma- or semicolon-delimited string or a bracketed list literal.
func splitIngredientsField(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	raw = strings.ReplaceAll(raw, ";", ",")

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `'"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// extractTerms produces the unigram and bigram features of a normalized
// token text. Bigram features join adjacent tokens with a single space.
func extractTerms(normalized string) []string {
	tokens := strings.Fields(normalized)
	terms := make([]string, 0, len(tokens)*2)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}
