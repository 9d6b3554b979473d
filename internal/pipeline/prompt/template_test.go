package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/schema"
	"golang-deal-scout/pkg/utils"
)

func TestTemplate_Render(t *testing.T) {
	tpl := Template{Name: "t", Text: "Thesis: {{thesis}}\nAvoid: {{ exclusions }}\nAgain: {{thesis}}"}

	out, err := tpl.Render(map[string]string{"thesis": "B2B SaaS", "exclusions": "- Acme"})
	require.NoError(t, err)
	assert.Equal(t, "Thesis: B2B SaaS\nAvoid: - Acme\nAgain: B2B SaaS", out)
}

func TestTemplate_RenderDoesNotExpandValues(t *testing.T) {
	tpl := Template{Name: "t", Text: "{{a}} {{b}}"}

	out, err := tpl.Render(map[string]string{"a": "{{b}}", "b": "x"})
	require.NoError(t, err)
	assert.Equal(t, "{{b}} x", out)
}

func TestTemplate_RenderErrors(t *testing.T) {
	tpl := Template{Name: "t", Text: "{{a}} {{b}}"}

	_, err := tpl.Render(map[string]string{"a": "1"})
	assert.ErrorIs(t, err, ErrUnresolvedPlaceholder)
	assert.Contains(t, err.Error(), "b")

	_, err = tpl.Render(map[string]string{"a": "1", "b": "2", "c": "3"})
	assert.ErrorIs(t, err, ErrUnusedValue)

	assert.Panics(t, func() { tpl.MustRender(nil) })
}

func TestFixedTemplates_RenderCompletely(t *testing.T) {
	c := &entity.Company{Name: "Acme Inc", Revenue2024USDMn: utils.ToPointer(100.0)}

	prompts := map[string]string{
		"screening":  ScreeningPrompt(c, "Revenue above $50M", []string{"Acme wins contract"}),
		"enrichment": EnrichmentPrompt(c, schema.EnrichableFields()[:2], ""),
		"discovery":  DiscoveryPrompt("Vertical SaaS in DACH", 10, []string{"Acme Inc", "Beta Corp"}),
		"chat":       ChatSystemPrompt(c),
	}
	for name, p := range prompts {
		assert.NotContains(t, p, "{{", name)
	}

	assert.Contains(t, prompts["screening"], "Revenue above $50M")
	assert.Contains(t, prompts["screening"], "- Acme wins contract")
	assert.Contains(t, prompts["enrichment"], "Website excerpt:\n"+NotAvailable)
	assert.Contains(t, prompts["enrichment"], "- segment (text): industry segment")
	assert.Contains(t, prompts["discovery"], "Find up to 10 companies")
	assert.Contains(t, prompts["discovery"], "- Acme Inc\n- Beta Corp")
	assert.True(t, strings.HasPrefix(prompts["chat"], "You are an M&A analyst assistant"))
}

func TestDiscoveryPrompt_EmptyExclusions(t *testing.T) {
	p := DiscoveryPrompt("thesis", 5, nil)
	assert.Contains(t, p, "already known:\nNone.")
}
