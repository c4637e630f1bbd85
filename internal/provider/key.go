package provider

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// normalizeDiet maps a user-facing diet name onto the provider's vocabulary.
// Returns "" when no filter should be applied.
func normalizeDiet(diet string) string {
	d := strings.ToLower(strings.TrimSpace(diet))
	switch d {
	case "", "none":
		return ""
	case "keto":
		return "ketogenic"
	case "gluten-free":
		return "gluten free"
	case "paleo":
		return "paleolithic"
	default:
		return d
	}
}

// fingerprint builds the deterministic, order-independent identity of a
// list query: sorted, lower-cased, deduplicated ingredient names joined by
// commas, then the diet token (or "none") and the result count. Two calls
// for the same logical query always produce the same fingerprint regardless
// of input ordering or casing.
func fingerprint(ingredients []string, diet string, number int) string {
	seen := make(map[string]struct{}, len(ingredients))
	norm := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		ing = strings.ToLower(strings.TrimSpace(ing))
		if ing == "" {
			continue
		}
		if _, dup := seen[ing]; dup {
			continue
		}
		seen[ing] = struct{}{}
		norm = append(norm, ing)
	}
	sort.Strings(norm)

	d := strings.ToLower(strings.TrimSpace(diet))
	if d == "" {
		d = "none"
	}
	if number <= 0 {
		number = 10
	}

	return fmt.Sprintf("%s|%s|%d", strings.Join(norm, ","), d, number)
}

// listKey converts a query fingerprint into the cache key for list results.
// The fingerprint is hashed so keys stay short and safe for any backend.
func listKey(ingredients []string, diet string, number int) string {
	sum := sha256.Sum256([]byte(fingerprint(ingredients, diet, number)))
	return "list:" + hex.EncodeToString(sum[:])
}

// detailKey is the cache key for one recipe's detail record.
func detailKey(id int64) string {
	return fmt.Sprintf("detail:%d", id)
}
