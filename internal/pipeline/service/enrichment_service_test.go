package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/config"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/repository"
	"golang-deal-scout/internal/pipeline/testutil"
	"golang-deal-scout/pkg/logger"
	"golang-deal-scout/pkg/utils"
)

type fakeWebsite struct {
	excerpt string
	err     error
	urls    []string
}

func (f *fakeWebsite) FetchExcerpt(_ context.Context, website string) (string, error) {
	f.urls = append(f.urls, website)
	return f.excerpt, f.err
}

type enrichmentFixture struct {
	svc       EnrichmentService
	agent     *fakeAgent
	website   *fakeWebsite
	companies repository.CompanyRepository
	audits    repository.AuditRepository
}

func newEnrichmentFixture(t *testing.T) *enrichmentFixture {
	db := testutil.NewDB(t)
	f := &enrichmentFixture{
		agent:     &fakeAgent{},
		website:   &fakeWebsite{},
		companies: repository.NewCompanyRepository(db),
		audits:    repository.NewAuditRepository(db),
	}
	cfg := &config.Config{Enrichment: config.Enrichment{FetchWebsite: true}}
	f.svc = NewEnrichmentService(cfg, f.agent, f.website, f.companies, f.audits, logger.NewNop())
	return f
}

func TestEnrich_FillsOnlyMissingFields(t *testing.T) {
	f := newEnrichmentFixture(t)
	ctx := context.Background()
	c := &entity.Company{Name: "Acme Inc", Revenue2024USDMn: utils.ToPointer(100.0), Website: utils.ToPointer("acme.com")}
	require.NoError(t, f.companies.Create(ctx, c))

	f.website.excerpt = "Acme makes scheduling software."
	f.agent.responses = []string{"```json\n" + `{"fields":{"revenue_2024_usd_mn":120,"revenue_2023_usd_mn":95.5,"segment":"Industrial software","pipeline_stage":"L5"}}` + "\n```"}

	result, err := f.svc.Enrich(ctx, c.ID, "analyst")
	require.NoError(t, err)
	assert.Equal(t, dto.EnrichmentUpdated, result.Status)
	assert.Equal(t, []string{"revenue_2023_usd_mn", "segment"}, result.FieldsUpdated)

	stored, err := f.companies.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, *stored.Revenue2024USDMn)
	assert.Equal(t, 95.5, *stored.Revenue2023USDMn)
	assert.Equal(t, "Industrial software", *stored.Segment)
	assert.Nil(t, stored.PipelineStage)

	prompt := f.agent.lastPrompt()
	assert.Contains(t, prompt, "Acme makes scheduling software.")
	assert.Contains(t, prompt, "- revenue_2023_usd_mn")
	assert.NotContains(t, prompt, "- revenue_2024_usd_mn\n")
	assert.Equal(t, []string{"acme.com"}, f.website.urls)

	audits, err := f.audits.ListByCompany(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, entity.AuditEnriched, audits[0].Action)
	assert.JSONEq(t, `{"fields_updated":["revenue_2023_usd_mn","segment"]}`, string(audits[0].Details))
}

func TestEnrich_KeepsValueWrittenDuringAgentCall(t *testing.T) {
	f := newEnrichmentFixture(t)
	ctx := context.Background()
	c := &entity.Company{Name: "Acme Inc"}
	require.NoError(t, f.companies.Create(ctx, c))

	f.agent.during = func() {
		require.NoError(t, f.companies.UpdateFields(ctx, c.ID, map[string]any{"revenue_2024_usd_mn": 100.0}))
	}
	f.agent.responses = []string{`{"fields":{"revenue_2024_usd_mn":120,"segment":"Industrial software"}}`}

	result, err := f.svc.Enrich(ctx, c.ID, "analyst")
	require.NoError(t, err)
	assert.Equal(t, dto.EnrichmentUpdated, result.Status)
	assert.Equal(t, []string{"segment"}, result.FieldsUpdated)

	stored, err := f.companies.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, *stored.Revenue2024USDMn)
	assert.Equal(t, "Industrial software", *stored.Segment)

	audits, err := f.audits.ListByCompany(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.JSONEq(t, `{"fields_updated":["segment"]}`, string(audits[0].Details))

	// Nothing left to write once every planned field was taken.
	f.agent.during = func() {
		require.NoError(t, f.companies.UpdateFields(ctx, c.ID, map[string]any{"revenue_2023_usd_mn": 80.0}))
	}
	f.agent.responses = []string{`{"fields":{"revenue_2023_usd_mn":95}}`}
	result, err = f.svc.Enrich(ctx, c.ID, "analyst")
	require.NoError(t, err)
	assert.Equal(t, dto.EnrichmentUnchanged, result.Status)
	assert.Empty(t, result.FieldsUpdated)
}

func TestEnrich_AcceptsTopLevelFields(t *testing.T) {
	f := newEnrichmentFixture(t)
	ctx := context.Background()
	c := &entity.Company{Name: "Acme Inc"}
	require.NoError(t, f.companies.Create(ctx, c))
	f.agent.responses = []string{`{"revenue_2024_usd_mn": 120}`}

	result, err := f.svc.Enrich(ctx, c.ID, "analyst")
	require.NoError(t, err)
	assert.Equal(t, []string{"revenue_2024_usd_mn"}, result.FieldsUpdated)
}

func TestEnrich_AgentProblemsBecomeErrorResults(t *testing.T) {
	f := newEnrichmentFixture(t)
	ctx := context.Background()
	c := &entity.Company{Name: "Acme Inc"}
	require.NoError(t, f.companies.Create(ctx, c))

	f.agent.responses = []string{"Sorry, I have no data on this company."}
	result, err := f.svc.Enrich(ctx, c.ID, "analyst")
	require.NoError(t, err)
	assert.Equal(t, dto.EnrichmentError, result.Status)
	assert.NotEmpty(t, result.Error)

	f.agent.err = errors.New("upstream timeout")
	result, err = f.svc.Enrich(ctx, c.ID, "analyst")
	require.NoError(t, err)
	assert.Equal(t, dto.EnrichmentError, result.Status)
	assert.Contains(t, result.Error, "upstream timeout")

	f.agent.err = dto.ErrAgentNotConfigured
	_, err = f.svc.Enrich(ctx, c.ID, "analyst")
	assert.ErrorIs(t, err, dto.ErrAgentNotConfigured)
}

func TestEnrich_CompleteCompanySkipsAgent(t *testing.T) {
	f := newEnrichmentFixture(t)
	ctx := context.Background()
	v := utils.ToPointer(1.0)
	s := utils.ToPointer("x")
	c := &entity.Company{
		Name: "Full", Segment: s, SegmentRelatedOfferings: s, CompanyFocus: s, Website: s, Ownership: s, Geography: s, Description: s,
		Revenue2021USDMn: v, Revenue2022USDMn: v, Revenue2023USDMn: v, Revenue2024USDMn: v,
		EBITDA2021USDMn: v, EBITDA2022USDMn: v, EBITDA2023USDMn: v, EBITDA2024USDMn: v, EV2024USDMn: v,
	}
	require.NoError(t, f.companies.Create(ctx, c))

	result, err := f.svc.Enrich(ctx, c.ID, "analyst")
	require.NoError(t, err)
	assert.Equal(t, dto.EnrichmentUnchanged, result.Status)
	assert.Equal(t, 0, f.agent.callCount())
}

func TestEnrichBatch_IsolatesFailuresInOrder(t *testing.T) {
	f := newEnrichmentFixture(t)
	ctx := context.Background()
	first := &entity.Company{Name: "First"}
	last := &entity.Company{Name: "Last"}
	require.NoError(t, f.companies.Create(ctx, first))
	require.NoError(t, f.companies.Create(ctx, last))

	f.agent.responses = []string{
		`{"fields":{"segment":"Logistics"}}`,
		`{"fields":{"geography":"France"}}`,
	}
	missing := uuid.New()

	resp, err := f.svc.EnrichBatch(ctx, []uuid.UUID{first.ID, missing, last.ID}, "analyst")
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "First", resp.Results[0].Name)
	assert.Equal(t, dto.EnrichmentError, resp.Results[1].Status)
	assert.Equal(t, missing.String(), resp.Results[1].CompanyID)
	assert.Equal(t, "Last", resp.Results[2].Name)
	assert.Equal(t, []string{"geography"}, resp.Results[2].FieldsUpdated)
	assert.Equal(t, 2, resp.Updated)
	assert.Equal(t, 1, resp.Failed)

	f.agent.err = dto.ErrAgentNotConfigured
	_, err = f.svc.EnrichBatch(ctx, []uuid.UUID{first.ID}, "analyst")
	assert.ErrorIs(t, err, dto.ErrAgentNotConfigured)
}
