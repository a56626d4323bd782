package match

import (
	"github.com/ledgerlab/reconcile/internal/canonical"
)

// AliasCatalog is an injected configuration table for vendor-name matching:
// known alternate spellings that map to one canonical name, and explicit
// pairs that must never be treated as the same vendor no matter how similar
// their names look. The matching logic stays pure; the catalog's contents
// are the caller's to maintain.
type AliasCatalog struct {
	canonicalByAlias map[string]string
	neverMerge       map[[2]string]struct{}
}

// NewAliasCatalog builds a catalog from canonical-name -> aliases and an
// explicit never-merge pair list. All names are normalized on entry so
// lookups match the scorer's normalized descriptions.
func NewAliasCatalog(aliases map[string][]string, neverMerge [][2]string) *AliasCatalog {
	c := &AliasCatalog{
		canonicalByAlias: make(map[string]string),
		neverMerge:       make(map[[2]string]struct{}),
	}

	for name, list := range aliases {
		canon := canonical.Normalize(name)
		c.canonicalByAlias[canon] = canon
		for _, alias := range list {
			c.canonicalByAlias[canonical.Normalize(alias)] = canon
		}
	}

	for _, pair := range neverMerge {
		c.neverMerge[orderedPair(canonical.Normalize(pair[0]), canonical.Normalize(pair[1]))] = struct{}{}
	}

	return c
}

// Canonical resolves a normalized name to its canonical form, reporting
// whether the name is known to the catalog.
func (c *AliasCatalog) Canonical(normalized string) (string, bool) {
	if c == nil {
		return "", false
	}
	canon, ok := c.canonicalByAlias[normalized]
	return canon, ok
}

// NeverMerge reports whether two normalized names are an explicitly disjoint
// pair.
func (c *AliasCatalog) NeverMerge(a, b string) bool {
	if c == nil {
		return false
	}
	_, ok := c.neverMerge[orderedPair(a, b)]
	return ok
}

func orderedPair(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// DefaultAliases returns the stock vendor alias table observed across
// statement descriptions. Callers typically extend it from their own
// configuration.
func DefaultAliases() *AliasCatalog {
	return NewAliasCatalog(map[string][]string{
		"amazon":    {"amzn", "amz", "amazon.com", "amazon marketplace", "amazon prime"},
		"starbucks": {"starbucks coffee", "sbux"},
		"uber":      {"uber technologies", "uber trip", "uber eats"},
		"mcdonalds": {"mcdonald's", "mcd", "mcds"},
		"7-eleven":  {"7-11", "7 eleven", "seven eleven"},
		"grab":      {"grab*", "grabpay", "grabfood"},
		"line":      {"line pay", "linepay", "line man"},
		"lazada":    {"lazada.co.th", "lazada thailand"},
		"shopee":    {"shopee.co.th", "shopeepay"},
		"foodpanda": {"food panda", "pandamart"},
		"netflix":   {"netflix.com"},
	}, nil)
}
