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
)

type fakeNews struct {
	headlines []string
	err       error
}

func (f *fakeNews) Headlines(context.Context, string) ([]string, error) {
	return f.headlines, f.err
}

func newScreeningFixture(t *testing.T, news repository.NewsRepository) (ScreeningService, *fakeAgent, *entity.Company) {
	db := testutil.NewDB(t)
	companies := repository.NewCompanyRepository(db)
	c := &entity.Company{Name: "Acme Inc"}
	require.NoError(t, companies.Create(context.Background(), c))

	agent := &fakeAgent{}
	cfg := &config.Config{Screening: config.Screening{IncludeNews: true}}
	return NewScreeningService(cfg, agent, news, companies, logger.NewNop()), agent, c
}

func TestScreening_Evaluate(t *testing.T) {
	svc, agent, c := newScreeningFixture(t, &fakeNews{headlines: []string{"Acme raises prices"}})
	agent.responses = []string{`Result: {"result": "PASS", "remarks": " Revenue is above the floor. "}`}

	req := dto.ScreeningRequest{CompanyID: c.ID.String(), CriterionID: "rev-floor", CriterionPrompt: "Revenue above $50M"}
	got, err := svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, &dto.ScreeningResult{Result: dto.ScreeningPass, Remarks: "Revenue is above the floor."}, got)
	assert.Contains(t, agent.lastPrompt(), "- Acme raises prices")

	// The same criterion is served from the cache.
	_, err = svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, agent.callCount())

	// An edited prompt is evaluated again.
	req.CriterionPrompt = "Revenue above $500M"
	_, err = svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, agent.callCount())
}

func TestScreening_ErrorResults(t *testing.T) {
	svc, agent, c := newScreeningFixture(t, &fakeNews{err: errors.New("feed down")})
	req := dto.ScreeningRequest{CompanyID: c.ID.String(), CriterionID: "c1", CriterionPrompt: "p"}

	agent.responses = []string{"no json here"}
	got, err := svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, dto.ScreeningError, got.Result)
	assert.NotEmpty(t, got.Remarks)

	agent.responses = []string{`{"result":"maybe","remarks":"unsure"}`}
	got, err = svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, dto.ScreeningError, got.Result)

	agent.err = errors.New("503 from upstream")
	got, err = svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, dto.ScreeningError, got.Result)
	assert.Contains(t, got.Remarks, "503 from upstream")

	agent.err = dto.ErrAgentNotConfigured
	_, err = svc.Evaluate(context.Background(), req)
	assert.ErrorIs(t, err, dto.ErrAgentNotConfigured)
}

func TestScreening_UnknownCompany(t *testing.T) {
	svc, _, _ := newScreeningFixture(t, nil)

	_, err := svc.Evaluate(context.Background(), dto.ScreeningRequest{CompanyID: uuid.NewString(), CriterionID: "c", CriterionPrompt: "p"})
	assert.ErrorIs(t, err, dto.ErrNotFound)

	_, err = svc.Evaluate(context.Background(), dto.ScreeningRequest{CompanyID: "nope", CriterionID: "c", CriterionPrompt: "p"})
	assert.ErrorIs(t, err, dto.ErrValidation)
}
