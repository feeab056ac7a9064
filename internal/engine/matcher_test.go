package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func handleRule(id, handle string) Rule {
	return Rule{ID: id, Match: Match{ProductHandles: []string{handle}}}
}

func tagRule(id, tag string) Rule {
	return Rule{ID: id, Match: Match{Tags: []string{tag}}}
}

func fallbackRule(id string) Rule {
	return Rule{ID: id, Match: Match{IsFallback: true}}
}

func TestMatchRuleByHandle(t *testing.T) {
	rules := []Rule{handleRule("a", "blue-mug"), handleRule("b", "red-mug")}

	got := MatchRule(Product{Handle: "red-mug"}, rules)
	assert.NotNil(t, got)
	assert.Equal(t, "b", got.ID)
}

func TestMatchRuleByTag(t *testing.T) {
	rules := []Rule{tagRule("a", "fragile"), tagRule("b", "oversized")}

	got := MatchRule(Product{Handle: "vase", Tags: []string{"ceramic", "oversized"}}, rules)
	assert.NotNil(t, got)
	assert.Equal(t, "b", got.ID)
}

func TestMatchRuleFirstMatchWins(t *testing.T) {
	rules := []Rule{tagRule("first", "sale"), tagRule("second", "sale")}
	product := Product{Handle: "x", Tags: []string{"sale"}}

	got := MatchRule(product, rules)
	assert.Equal(t, "first", got.ID)

	// Reversing the list reverses the winner: order is priority
	got = MatchRule(product, []Rule{rules[1], rules[0]})
	assert.Equal(t, "second", got.ID)
}

func TestMatchRuleFallbackCatchesEverything(t *testing.T) {
	rules := []Rule{handleRule("a", "blue-mug"), fallbackRule("fb")}

	got := MatchRule(Product{Handle: "unrelated"}, rules)
	assert.NotNil(t, got)
	assert.Equal(t, "fb", got.ID)
}

func TestMatchRuleFallbackFirstShadowsLaterRules(t *testing.T) {
	rules := []Rule{fallbackRule("fb"), handleRule("a", "blue-mug")}

	got := MatchRule(Product{Handle: "blue-mug"}, rules)
	assert.Equal(t, "fb", got.ID)
}

func TestMatchRuleNoMatchReturnsNil(t *testing.T) {
	rules := []Rule{handleRule("a", "blue-mug")}
	assert.Nil(t, MatchRule(Product{Handle: "other"}, rules))
	assert.Nil(t, MatchRule(Product{Handle: "other"}, nil))
}

func TestMatchRuleStockStatusLayersOnMatch(t *testing.T) {
	rule := Rule{ID: "a", Match: Match{
		Tags:        []string{"sale"},
		StockStatus: StockPreOrder,
	}}
	inStock := Product{Handle: "x", Tags: []string{"sale"}, StockStatus: StockInStock}
	preOrder := Product{Handle: "x", Tags: []string{"sale"}, StockStatus: StockPreOrder}

	assert.Nil(t, MatchRule(inStock, []Rule{rule}))
	assert.NotNil(t, MatchRule(preOrder, []Rule{rule}))
}

func TestMatchRuleStockStatusAloneDoesNotMatch(t *testing.T) {
	// A stock-status condition never matches on its own; the product must
	// first match by handle or tag.
	rule := Rule{ID: "a", Match: Match{StockStatus: StockInStock}}
	assert.Nil(t, MatchRule(Product{Handle: "x", StockStatus: StockInStock}, []Rule{rule}))
}

func TestMatchRuleAnyStockStatus(t *testing.T) {
	rule := Rule{ID: "a", Match: Match{Tags: []string{"sale"}, StockStatus: StockAny}}
	product := Product{Handle: "x", Tags: []string{"sale"}, StockStatus: StockOutOfStock}
	assert.NotNil(t, MatchRule(product, []Rule{rule}))
}

func TestMatchRuleMixedStockRequiresExactStatus(t *testing.T) {
	rule := Rule{ID: "a", Match: Match{Tags: []string{"bundle"}, StockStatus: StockMixed}}

	mixed := Product{Handle: "x", Tags: []string{"bundle"}, StockStatus: StockMixed}
	inStock := Product{Handle: "x", Tags: []string{"bundle"}, StockStatus: StockInStock}

	assert.NotNil(t, MatchRule(mixed, []Rule{rule}))
	assert.Nil(t, MatchRule(inStock, []Rule{rule}))
}

func TestMatchRuleEmptyHandleNeverMatches(t *testing.T) {
	rule := Rule{ID: "a", Match: Match{ProductHandles: []string{""}}}
	assert.Nil(t, MatchRule(Product{Handle: ""}, []Rule{rule}))
}

func TestMatchRuleEmptyTagSkipped(t *testing.T) {
	rule := Rule{ID: "a", Match: Match{Tags: []string{""}}}
	assert.Nil(t, MatchRule(Product{Handle: "x", Tags: []string{""}}, []Rule{rule}))
}
