package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/config"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/repository"
	"golang-deal-scout/internal/pipeline/testutil"
	"golang-deal-scout/pkg/llmjson"
	"golang-deal-scout/pkg/logger"
)

type discoveryFixture struct {
	svc       DiscoveryService
	agent     *fakeAgent
	notifier  *fakeNotifier
	companies repository.CompanyRepository
	results   repository.DiscoveryRepository
	theses    repository.ThesisRepository
	audits    repository.AuditRepository
	runs      repository.ScanRunRepository
}

func newDiscoveryFixture(t *testing.T, wrap func(repository.DiscoveryRepository) repository.DiscoveryRepository) *discoveryFixture {
	db := testutil.NewDB(t)
	f := &discoveryFixture{
		agent:     &fakeAgent{},
		notifier:  &fakeNotifier{},
		companies: repository.NewCompanyRepository(db),
		results:   repository.NewDiscoveryRepository(db),
		theses:    repository.NewThesisRepository(db),
		audits:    repository.NewAuditRepository(db),
		runs:      repository.NewScanRunRepository(db),
	}
	results := f.results
	if wrap != nil {
		results = wrap(results)
	}
	cfg := &config.Config{Scanner: config.Scanner{DefaultCandidates: 10, MaxCandidates: 50, ScanTimeout: time.Minute}}
	f.svc = NewDiscoveryService(cfg, f.agent, f.companies, results, f.theses, f.audits, f.runs, f.notifier, logger.NewNop())
	return f
}

// failingCreates fails the Create calls whose 1-based position is listed.
type failingCreates struct {
	repository.DiscoveryRepository
	failOn map[int]bool
	n      int
}

func (r *failingCreates) Create(ctx context.Context, result *entity.DiscoveryResult) error {
	r.n++
	if r.failOn[r.n] {
		return errors.New("violates check constraint")
	}
	return r.DiscoveryRepository.Create(ctx, result)
}

func TestDiscovery_EndToEnd(t *testing.T) {
	f := newDiscoveryFixture(t, nil)
	f.agent.responses = []string{`{"companies":[{"company_name":"Foo","match_score":85,"match_reason":"fits thesis"}]}`}

	resp, err := f.svc.Run(context.Background(), dto.RunDiscoveryRequest{Thesis: "Vertical SaaS in DACH"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, []string{"Foo"}, resp.Companies)
	assert.Empty(t, resp.Failures)

	rows, err := f.results.List(context.Background(), dto.DiscoveryFilter{Status: "all"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Foo", rows[0].CompanyName)
	assert.False(t, rows[0].IsAddedToPipeline)
	assert.Equal(t, 85.0, *rows[0].MatchScore)
	assert.Equal(t, "fits thesis", *rows[0].MatchReason)
	assert.Equal(t, "Vertical SaaS in DACH", rows[0].ThesisSnapshot)
	assert.False(t, rows[0].DiscoveredAt.IsZero())

	require.Len(t, f.notifier.messages, 1)
	assert.Contains(t, f.agent.lastPrompt(), "Find up to 10 companies")
}

func TestDiscovery_PartialFailure(t *testing.T) {
	f := newDiscoveryFixture(t, func(r repository.DiscoveryRepository) repository.DiscoveryRepository {
		return &failingCreates{DiscoveryRepository: r, failOn: map[int]bool{2: true}}
	})
	f.agent.responses = []string{`Here you go:
{"companies":[
  {"company_name":"Alpha Tools","match_score":70},
  {"company_name":"Bravo Systems","match_score":60},
  {"company_name":"Charlie Labs","match_score":50}
]}`}

	resp, err := f.svc.Run(context.Background(), dto.RunDiscoveryRequest{Thesis: "anything"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, []string{"Alpha Tools", "Charlie Labs"}, resp.Companies)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "Bravo Systems", resp.Failures[0].Name)
}

func TestDiscovery_ExcludesKnownNames(t *testing.T) {
	f := newDiscoveryFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.companies.Create(ctx, &entity.Company{Name: "Acme Inc"}))
	require.NoError(t, f.results.Create(ctx, &entity.DiscoveryResult{CompanyName: "Gamma", DiscoveredAt: time.Now().UTC()}))

	f.agent.responses = []string{`{"companies":[
		{"company_name":"acme inc"},
		{"company_name":"Gamma LLC"},
		{"company_name":"Delta","match_score":140,"website":"WWW.Delta.co.uk/about","estimated_revenue_usd_mn":"25"},
		{"company_name":"delta"}
	]}`}

	resp, err := f.svc.Run(ctx, dto.RunDiscoveryRequest{Thesis: "t", Count: 500})
	require.NoError(t, err)
	assert.Equal(t, []string{"Delta"}, resp.Companies)
	assert.Equal(t, []string{"acme inc", "Gamma LLC", "delta"}, resp.Skipped)

	prompt := f.agent.lastPrompt()
	assert.Contains(t, prompt, "- Acme Inc\n- Gamma")
	assert.Contains(t, prompt, "Find up to 50 companies")

	rows, err := f.results.List(ctx, dto.DiscoveryFilter{Status: "pending"})
	require.NoError(t, err)
	var delta *entity.DiscoveryResult
	for i := range rows {
		if rows[i].CompanyName == "Delta" {
			delta = &rows[i]
		}
	}
	require.NotNil(t, delta)
	assert.Nil(t, delta.MatchScore, "out-of-range score must be rejected, not clamped")
	assert.Equal(t, "https://www.delta.co.uk", *delta.Website)
	assert.Equal(t, 25.0, *delta.EstimatedRevenueUSDMn)
}

func TestDiscovery_AgentFailures(t *testing.T) {
	f := newDiscoveryFixture(t, nil)
	f.agent.err = dto.ErrAgentNotConfigured
	_, err := f.svc.Run(context.Background(), dto.RunDiscoveryRequest{Thesis: "t"})
	assert.ErrorIs(t, err, dto.ErrAgentNotConfigured)

	f.agent.err = errors.New("deadline exceeded")
	_, err = f.svc.Run(context.Background(), dto.RunDiscoveryRequest{Thesis: "t"})
	var agentErr *llmjson.Error
	require.ErrorAs(t, err, &agentErr)
	assert.Equal(t, llmjson.KindUpstreamError, agentErr.Kind)

	f.agent.err = nil
	f.agent.responses = []string{"I could not find any companies."}
	_, err = f.svc.Run(context.Background(), dto.RunDiscoveryRequest{Thesis: "t"})
	require.ErrorAs(t, err, &agentErr)
	assert.Equal(t, llmjson.KindParseError, agentErr.Kind)
	assert.NotEmpty(t, agentErr.Reason)

	_, err = f.svc.Run(context.Background(), dto.RunDiscoveryRequest{Thesis: "   "})
	assert.ErrorIs(t, err, dto.ErrValidation)
}

func TestDiscovery_RunForThesisMarksScan(t *testing.T) {
	f := newDiscoveryFixture(t, nil)
	ctx := context.Background()
	thesis := &entity.InvestmentThesis{Title: "DACH SaaS", Content: "Vertical SaaS", IsActive: true, ScanFrequency: entity.ScanDaily, CandidatesPerScan: 3}
	require.NoError(t, f.theses.Create(ctx, thesis))
	f.agent.responses = []string{`{"companies":[{"company_name":"Foo"}]}`}

	resp, err := f.svc.RunForThesis(ctx, thesis.ID, entity.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, thesis.ID.String(), resp.ThesisID)
	assert.Contains(t, f.agent.lastPrompt(), "Find up to 3 companies")

	stored, err := f.theses.FindByID(ctx, thesis.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastScanAt)
	require.NotNil(t, stored.NextScanAt)
	assert.Equal(t, 24*time.Hour, stored.NextScanAt.Sub(*stored.LastScanAt))

	rows, err := f.results.List(ctx, dto.DiscoveryFilter{ThesisID: thesis.ID.String()})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	runs, err := f.runs.List(ctx, &thesis.ID, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, resp.RunID, runs[0].ID.String())
	assert.Equal(t, entity.TriggerManual, runs[0].Trigger)
	assert.Equal(t, entity.ScanRunCompleted, runs[0].Status)
	assert.Equal(t, 1, runs[0].Inserted)
	assert.NotNil(t, runs[0].CompletedAt)

	// A scanned daily thesis is no longer due.
	n, err := f.svc.ScanDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = f.svc.RunForThesis(ctx, uuid.New(), entity.TriggerManual)
	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func TestDiscovery_AddToPipelineOnce(t *testing.T) {
	f := newDiscoveryFixture(t, nil)
	ctx := context.Background()
	result := &entity.DiscoveryResult{CompanyName: "Foo", DiscoveredAt: time.Now().UTC()}
	require.NoError(t, f.results.Create(ctx, result))

	company, err := f.svc.AddToPipeline(ctx, result.ID, dto.AddToPipelineRequest{}, "analyst@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Foo", company.Name)
	assert.Equal(t, entity.StageL0, *company.PipelineStage)
	assert.Equal(t, entity.SourceDiscovery, company.Source)

	_, err = f.svc.AddToPipeline(ctx, result.ID, dto.AddToPipelineRequest{}, "analyst@example.com")
	assert.ErrorIs(t, err, dto.ErrAlreadyAdded)
	assert.ErrorIs(t, f.svc.Dismiss(ctx, result.ID), dto.ErrAlreadyAdded)

	audits, err := f.audits.ListByCompany(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, entity.AuditDiscoveryAdded, audits[0].Action)
	assert.Equal(t, "analyst@example.com", audits[0].Actor)

	// The added company now excludes re-discovery.
	f.agent.responses = []string{`{"companies":[{"company_name":"FOO"}]}`}
	resp, err := f.svc.Run(ctx, dto.RunDiscoveryRequest{Thesis: "t"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Count)
}

// staleReads reports every result as still pending, as a reader racing another add would.
type staleReads struct {
	repository.DiscoveryRepository
}

func (r *staleReads) FindByID(ctx context.Context, id uuid.UUID) (*entity.DiscoveryResult, error) {
	result, err := r.DiscoveryRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result.IsAddedToPipeline = false
	return result, nil
}

func TestDiscovery_AddToPipelineRaceLeavesOneCompany(t *testing.T) {
	f := newDiscoveryFixture(t, func(r repository.DiscoveryRepository) repository.DiscoveryRepository {
		return &staleReads{DiscoveryRepository: r}
	})
	ctx := context.Background()
	result := &entity.DiscoveryResult{CompanyName: "Foo", DiscoveredAt: time.Now().UTC()}
	require.NoError(t, f.results.Create(ctx, result))

	company, err := f.svc.AddToPipeline(ctx, result.ID, dto.AddToPipelineRequest{}, "a")
	require.NoError(t, err)

	_, err = f.svc.AddToPipeline(ctx, result.ID, dto.AddToPipelineRequest{}, "b")
	assert.ErrorIs(t, err, dto.ErrAlreadyAdded)

	names, err := f.companies.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo"}, names)

	stored, err := f.results.FindByID(ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, company.ID, *stored.AddedCompanyID)
}

func TestDiscovery_Dismiss(t *testing.T) {
	f := newDiscoveryFixture(t, nil)
	ctx := context.Background()
	result := &entity.DiscoveryResult{CompanyName: "Foo", DiscoveredAt: time.Now().UTC()}
	require.NoError(t, f.results.Create(ctx, result))

	require.NoError(t, f.svc.Dismiss(ctx, result.ID))
	assert.ErrorIs(t, f.svc.Dismiss(ctx, result.ID), dto.ErrNotFound)
}

func TestNormalizeWebsite(t *testing.T) {
	got, ok := NormalizeWebsite("Acme.COM/about-us")
	require.True(t, ok)
	assert.Equal(t, "https://acme.com", got)

	for _, bad := range []string{"n/a", "localhost", "ftp://acme.com", "com"} {
		_, ok := NormalizeWebsite(bad)
		assert.False(t, ok, bad)
	}
}
