package schema

import (
	"sort"
	"strings"
	"testing"

	"golang-deal-scout/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorMatchesCompanyColumns(t *testing.T) {
	values := (&entity.Company{}).FieldValues()
	require.Len(t, values, len(Companies))
	for _, f := range Companies {
		_, ok := values[f.Name]
		assert.True(t, ok, "company has no column %s", f.Name)
	}
}

func TestEnrichableExcludesName(t *testing.T) {
	for _, f := range EnrichableFields() {
		assert.NotEqual(t, "name", f.Name)
	}
	assert.False(t, Writable("pipeline_stage"))
	assert.False(t, Writable("id"))
	assert.True(t, Writable("revenue_2024_usd_mn"))
}

func TestFieldList(t *testing.T) {
	list := FieldList(Companies[:2])
	assert.Equal(t, "- name (text): legal or trading name of the company\n- segment (text): industry segment", list)
	assert.Equal(t, len(Companies), strings.Count(FieldList(Companies), "\n")+1)
}

func TestSanitize(t *testing.T) {
	clean, dropped := Sanitize(map[string]any{
		"revenue_2024_usd_mn": "120.5",
		"segment":             "  Industrial software ",
		"ceo_name":            "Jane",
		"ebitda_2024_usd_mn":  "n/a",
		"geography":           nil,
		"website":             "",
	})

	assert.Equal(t, map[string]any{
		"revenue_2024_usd_mn": 120.5,
		"segment":             "Industrial software",
	}, clean)

	sort.Strings(dropped)
	assert.Equal(t, []string{"ceo_name", "ebitda_2024_usd_mn", "website"}, dropped)
}
