package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/repository"
	"golang-deal-scout/internal/pipeline/testutil"
	"golang-deal-scout/pkg/utils"
)

func identity(s string) string { return s }

func TestFilterNew_DropsExistingNames(t *testing.T) {
	kept, skipped := FilterNew([]string{"acme inc", "Gamma LLC"}, identity, []string{"Acme Inc", "Beta Corp"})
	assert.Equal(t, []string{"Gamma LLC"}, kept)
	assert.Equal(t, []string{"acme inc"}, skipped)
}

func TestFilterNew_ContainmentBothWays(t *testing.T) {
	existing := []string{"Acme"}
	kept, _ := FilterNew([]string{"Acme Holdings GmbH", "ACM", "Zeta"}, identity, existing)
	// "Acme Holdings GmbH" contains "acme"; "acm" is contained in "acme".
	assert.Equal(t, []string{"Zeta"}, kept)
}

func TestFilterNew_DedupesWithinBatchAndSkipsBlank(t *testing.T) {
	kept, skipped := FilterNew([]string{"Gamma", "  ", "gamma llc", "Delta"}, identity, nil)
	assert.Equal(t, []string{"Gamma", "Delta"}, kept)
	assert.Equal(t, []string{"  ", "gamma llc"}, skipped)
}

func TestFilterNew_IgnoresBlankExistingNames(t *testing.T) {
	kept, _ := FilterNew([]string{"Gamma"}, identity, []string{"", " "})
	assert.Equal(t, []string{"Gamma"}, kept)
}

func TestPlanEnrichment_NeverOverwritesPresentValue(t *testing.T) {
	c := &entity.Company{Name: "Acme", Revenue2024USDMn: utils.ToPointer(100.0)}
	plan := PlanEnrichment(c.FieldValues(), map[string]any{"revenue_2024_usd_mn": 120.0})

	assert.Empty(t, plan.Updates)
	assert.Empty(t, plan.FieldsUpdated)
}

func TestPlanEnrichment_FillsMissingValue(t *testing.T) {
	c := &entity.Company{Name: "Acme"}
	plan := PlanEnrichment(c.FieldValues(), map[string]any{"revenue_2024_usd_mn": 120.0})

	assert.Equal(t, map[string]any{"revenue_2024_usd_mn": 120.0}, plan.Updates)
	assert.Equal(t, []string{"revenue_2024_usd_mn"}, plan.FieldsUpdated)
}

func TestPlanEnrichment_Policy(t *testing.T) {
	c := &entity.Company{
		Name:    "Acme",
		Segment: utils.ToPointer("Software"),
		Website: utils.ToPointer(" "),
	}
	plan := PlanEnrichment(c.FieldValues(), map[string]any{
		"name":                "Acme Renamed",
		"pipeline_stage":      "L5",
		"segment":             "Hardware",
		"website":             "https://acme.example",
		"geography":           nil,
		"ebitda_2023_usd_mn":  "12.5",
		"ebitda_2024_usd_mn":  "n/a",
		"revenue_2021_usd_mn": 40,
	})

	assert.Equal(t, map[string]any{
		"website":             "https://acme.example",
		"ebitda_2023_usd_mn":  12.5,
		"revenue_2021_usd_mn": 40.0,
	}, plan.Updates)
	assert.Equal(t, []string{"ebitda_2023_usd_mn", "revenue_2021_usd_mn", "website"}, plan.FieldsUpdated)
	assert.Equal(t, []string{"ebitda_2024_usd_mn", "name", "pipeline_stage"}, plan.Rejected)
}

func TestInsertCandidates_IsolatesFailures(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewDiscoveryRepository(testutil.NewDB(t))

	first := &entity.DiscoveryResult{CompanyName: "One"}
	require.NoError(t, repo.Create(ctx, first))

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	records := []*entity.DiscoveryResult{
		{CompanyName: "Two"},
		// Reuses an existing primary key, so the insert violates a constraint.
		{ID: first.ID, CompanyName: "Clash"},
		{CompanyName: "Three", IsAddedToPipeline: true, AddedCompanyID: utils.ToPointer(uuid.New())},
	}

	inserted, failures := InsertCandidates(ctx, repo, records, now)
	assert.Equal(t, []string{"Two", "Three"}, inserted)
	require.Len(t, failures, 1)
	assert.Equal(t, 1, failures[0].Index)
	assert.Equal(t, "Clash", failures[0].Name)

	got, err := repo.FindByID(ctx, records[2].ID)
	require.NoError(t, err)
	assert.False(t, got.IsAddedToPipeline)
	assert.Nil(t, got.AddedCompanyID)
	assert.True(t, now.Equal(got.DiscoveredAt))
}
