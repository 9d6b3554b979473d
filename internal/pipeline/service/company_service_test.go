package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/repository"
	"golang-deal-scout/internal/pipeline/testutil"
	"golang-deal-scout/pkg/logger"
	"golang-deal-scout/pkg/utils"
)

func newCompanyService(t *testing.T) (CompanyService, repository.AuditRepository) {
	db := testutil.NewDB(t)
	audits := repository.NewAuditRepository(db)
	svc := NewCompanyService(repository.NewCompanyRepository(db), repository.NewNoteRepository(db), audits, logger.NewNop())
	return svc, audits
}

func TestCompanyService_CreateAndUpdate(t *testing.T) {
	svc, audits := newCompanyService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, &dto.CreateCompanyRequest{Name: "  Acme Inc ", Segment: utils.ToPointer("Software")}, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", c.Name)
	assert.Equal(t, entity.SourceManual, c.Source)

	updated, err := svc.Update(ctx, c.ID, map[string]any{"segment": nil, "ev_2024_usd_mn": 250, "ownership": "Founder-owned"}, "alice")
	require.NoError(t, err)
	assert.Nil(t, updated.Segment)
	assert.Equal(t, 250.0, *updated.EV2024USDMn)
	assert.Equal(t, "Founder-owned", *updated.Ownership)

	_, err = svc.Update(ctx, c.ID, map[string]any{"pipeline_stage": "L5", "name": nil}, "alice")
	var fieldErr *dto.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Contains(t, fieldErr.Fields, "pipeline_stage")
	assert.Contains(t, fieldErr.Fields, "name")

	_, err = svc.Update(ctx, uuid.New(), map[string]any{"segment": "x"}, "alice")
	assert.ErrorIs(t, err, dto.ErrNotFound)

	history, err := svc.AuditHistory(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	actions := []string{history[0].Action, history[1].Action}
	assert.ElementsMatch(t, []string{entity.AuditCompanyCreated, entity.AuditCompanyUpdated}, actions)

	_, err = audits.ListByCompany(ctx, c.ID)
	require.NoError(t, err)
}

func TestCompanyService_PromoteStageIsMonotonic(t *testing.T) {
	svc, _ := newCompanyService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, &dto.CreateCompanyRequest{Name: "Acme"}, "alice")
	require.NoError(t, err)

	c, err = svc.PromoteStage(ctx, c.ID, entity.StageL0, "alice")
	require.NoError(t, err)
	assert.Equal(t, entity.StageL0, *c.PipelineStage)

	c, err = svc.PromoteStage(ctx, c.ID, entity.StageL3, "bob")
	require.NoError(t, err)
	assert.Equal(t, entity.StageL3, *c.PipelineStage)

	for _, stage := range []entity.PipelineStage{entity.StageL3, entity.StageL1} {
		_, err = svc.PromoteStage(ctx, c.ID, stage, "bob")
		assert.ErrorIs(t, err, dto.ErrStageRegression, stage)
	}
	_, err = svc.PromoteStage(ctx, c.ID, "L9", "bob")
	assert.ErrorIs(t, err, dto.ErrValidation)

	stored, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StageL3, *stored.PipelineStage)

	history, err := svc.AuditHistory(ctx, c.ID)
	require.NoError(t, err)
	var transitions []string
	for _, h := range history {
		if h.Action == entity.AuditStageChanged {
			from := "-"
			if h.FromStage != nil {
				from = string(*h.FromStage)
			}
			transitions = append(transitions, from+">"+string(*h.ToStage))
		}
	}
	assert.ElementsMatch(t, []string{"->L0", "L0>L3"}, transitions)
}

func TestCompanyService_Import(t *testing.T) {
	svc, _ := newCompanyService(t)
	ctx := context.Background()

	summary, err := svc.Import(ctx, &dto.ImportCompaniesRequest{Companies: []map[string]any{
		{"name": "Alpha", "revenue_2023_usd_mn": "12.5", "unknown_column": "x", "pipeline_stage": "L4"},
		{"segment": "no name"},
		{"name": "Gamma", "ebitda_2024_usd_mn": "n/a"},
	}}, "importer")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, []string{"Alpha", "Gamma"}, summary.Names)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, 1, summary.Failures[0].Index)

	companies, err := svc.List(ctx, dto.CompanyFilter{Search: "alpha"})
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, 12.5, *companies[0].Revenue2023USDMn)
	assert.Nil(t, companies[0].PipelineStage)
	assert.Equal(t, entity.SourceImport, companies[0].Source)
}

func TestCompanyService_Notes(t *testing.T) {
	svc, _ := newCompanyService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, &dto.CreateCompanyRequest{Name: "Acme"}, "alice")
	require.NoError(t, err)

	note, err := svc.AddNote(ctx, c.ID, "  Met the founder. ", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Met the founder.", note.Body)

	_, err = svc.AddNote(ctx, c.ID, "   ", "alice")
	assert.ErrorIs(t, err, dto.ErrValidation)
	_, err = svc.AddNote(ctx, uuid.New(), "hello", "alice")
	assert.ErrorIs(t, err, dto.ErrNotFound)

	notes, err := svc.ListNotes(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "alice", notes[0].Author)
}
