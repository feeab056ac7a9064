package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitutePlaceholders(t *testing.T) {
	ctx := TemplateContext{
		Countdown: "3h 30m",
		Arrival:   "Jan 2-6",
		Express:   "Jan 2",
		Threshold: "$50",
	}

	got := SubstitutePlaceholders("Order within {countdown} for delivery {arrival}", ctx)
	assert.Equal(t, "Order within 3h 30m for delivery Jan 2-6", got)

	got = SubstitutePlaceholders("Express by {express}, free over {threshold}", ctx)
	assert.Equal(t, "Express by Jan 2, free over $50", got)
}

func TestSubstitutePlaceholdersReplacesEveryOccurrence(t *testing.T) {
	got := SubstitutePlaceholders("{arrival} or {arrival}", TemplateContext{Arrival: "Jan 2"})
	assert.Equal(t, "Jan 2 or Jan 2", got)
}

func TestSubstitutePlaceholdersLeavesLineBreakMarker(t *testing.T) {
	got := SubstitutePlaceholders("line one{lb}line two", TemplateContext{})
	assert.Equal(t, "line one{lb}line two", got)
}

func TestSubstitutePlaceholdersUnknownPassThrough(t *testing.T) {
	got := SubstitutePlaceholders("hello {unknown}", TemplateContext{})
	assert.Equal(t, "hello {unknown}", got)
}

func TestRenderMarkdownBold(t *testing.T) {
	assert.Equal(t, "ships <strong>today</strong>", RenderMarkdown("ships **today**"))
	assert.Equal(t,
		"<strong>a</strong> and <strong>b</strong>",
		RenderMarkdown("**a** and **b**"))
}

func TestRenderMarkdownLinks(t *testing.T) {
	assert.Equal(t,
		`see <a href="https://example.com/faq">our FAQ</a>`,
		RenderMarkdown("see [our FAQ](https://example.com/faq)"))

	assert.Equal(t,
		`<a href="http://example.com">x</a>`,
		RenderMarkdown("[x](http://example.com)"))

	assert.Equal(t,
		`<a href="/pages/shipping">shipping</a>`,
		RenderMarkdown("[shipping](/pages/shipping)"))
}

func TestRenderMarkdownBareDomainGetsScheme(t *testing.T) {
	assert.Equal(t,
		`<a href="https://example.com/faq">faq</a>`,
		RenderMarkdown("[faq](example.com/faq)"))
}

func TestRenderMarkdownRejectedURLStaysLiteral(t *testing.T) {
	assert.Equal(t, "[click](javascript:alert(1)", RenderMarkdown("[click](javascript:alert(1)"))
	assert.Equal(t, "[x](not a url)", RenderMarkdown("[x](not a url)"))
}

func TestRenderMarkdownBoldInsideLinkText(t *testing.T) {
	got := RenderMarkdown("[**bold link**](/faq)")
	assert.Equal(t, `<a href="/faq"><strong>bold link</strong></a>`, got)
}

func TestRenderMarkdownPlainTextUnchanged(t *testing.T) {
	assert.Equal(t, "no formatting here", RenderMarkdown("no formatting here"))
}
