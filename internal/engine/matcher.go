package engine

// MatchRule finds the first rule in priority order that applies to the
// product. Rules are evaluated top to bottom and the first match wins; later
// rules are never consulted, which makes list order a user-controlled
// priority list. A nil result means no delivery messaging for this product,
// not an error.
func MatchRule(product Product, rules []Rule) *Rule {
	for i := range rules {
		if ruleMatches(product, rules[i].Match) {
			return &rules[i]
		}
	}
	return nil
}

// ruleMatches applies the match conditions. A fallback rule matches
// unconditionally. Otherwise the product must match by handle or tag, and
// additionally satisfy the stock-status condition when one is set.
func ruleMatches(product Product, m Match) bool {
	if m.IsFallback {
		return true
	}
	if !matchesHandleOrTag(product, m) {
		return false
	}
	if m.StockStatus == "" || m.StockStatus == StockAny {
		return true
	}
	return product.StockStatus == m.StockStatus
}

func matchesHandleOrTag(product Product, m Match) bool {
	for _, h := range m.ProductHandles {
		if h == product.Handle && h != "" {
			return true
		}
	}
	for _, t := range m.Tags {
		if t == "" {
			continue
		}
		for _, pt := range product.Tags {
			if t == pt {
				return true
			}
		}
	}
	return false
}
