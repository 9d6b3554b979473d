package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/testutil"
	"golang-deal-scout/pkg/utils"
)

func TestCompanyRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewCompanyRepository(testutil.NewDB(t))

	c := &entity.Company{Name: "Acme Inc", Revenue2024USDMn: utils.ToPointer(100.0), Source: entity.SourceManual}
	require.NoError(t, repo.Create(ctx, c))
	require.NotEqual(t, uuid.Nil, c.ID)

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", got.Name)
	assert.Equal(t, 100.0, *got.Revenue2024USDMn)
	assert.Nil(t, got.PipelineStage)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func TestCompanyRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewCompanyRepository(testutil.NewDB(t))

	l1 := entity.StageL1
	require.NoError(t, repo.Create(ctx, &entity.Company{Name: "Beta Corp", PipelineStage: &l1}))
	require.NoError(t, repo.Create(ctx, &entity.Company{Name: "Acme Inc"}))
	require.NoError(t, repo.Create(ctx, &entity.Company{Name: "Acme Logistics", PipelineStage: &l1}))

	all, err := repo.List(ctx, dto.CompanyFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Acme Inc", all[0].Name)

	staged, err := repo.List(ctx, dto.CompanyFilter{Stage: "L1", Search: "ACME"})
	require.NoError(t, err)
	require.Len(t, staged, 1)
	assert.Equal(t, "Acme Logistics", staged[0].Name)

	unstaged, err := repo.List(ctx, dto.CompanyFilter{Stage: "none"})
	require.NoError(t, err)
	require.Len(t, unstaged, 1)
	assert.Equal(t, "Acme Inc", unstaged[0].Name)

	names, err := repo.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Inc", "Acme Logistics", "Beta Corp"}, names)
}

func TestCompanyRepository_UpdateFields(t *testing.T) {
	ctx := context.Background()
	repo := NewCompanyRepository(testutil.NewDB(t))

	c := &entity.Company{Name: "Acme Inc"}
	require.NoError(t, repo.Create(ctx, c))

	require.NoError(t, repo.UpdateFields(ctx, c.ID, map[string]any{
		"revenue_2024_usd_mn": 120.0,
		"segment":             "Software",
	}))
	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 120.0, *got.Revenue2024USDMn)
	assert.Equal(t, "Software", *got.Segment)

	assert.ErrorIs(t, repo.UpdateFields(ctx, uuid.New(), map[string]any{"segment": "x"}), dto.ErrNotFound)
}

func TestCompanyRepository_FillMissingKeepsPresentValues(t *testing.T) {
	ctx := context.Background()
	repo := NewCompanyRepository(testutil.NewDB(t))

	c := &entity.Company{Name: "Acme Inc", Revenue2024USDMn: utils.ToPointer(100.0), Segment: utils.ToPointer("  ")}
	require.NoError(t, repo.Create(ctx, c))

	written, err := repo.FillMissing(ctx, c.ID, map[string]any{
		"revenue_2024_usd_mn": 120.0,
		"revenue_2023_usd_mn": 95.5,
		"segment":             "Software",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"revenue_2023_usd_mn", "segment"}, written)

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, *got.Revenue2024USDMn)
	assert.Equal(t, 95.5, *got.Revenue2023USDMn)
	assert.Equal(t, "Software", *got.Segment)

	written, err = repo.FillMissing(ctx, uuid.New(), map[string]any{"segment": "x"})
	require.NoError(t, err)
	assert.Empty(t, written)
}

func TestCompanyRepository_AdvanceStageIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := NewCompanyRepository(testutil.NewDB(t))

	c := &entity.Company{Name: "Acme Inc"}
	require.NoError(t, repo.Create(ctx, c))

	ok, err := repo.AdvanceStage(ctx, c.ID, nil, entity.StageL0)
	require.NoError(t, err)
	assert.True(t, ok)

	// A stale "from" stage does not match any more.
	ok, err = repo.AdvanceStage(ctx, c.ID, nil, entity.StageL2)
	require.NoError(t, err)
	assert.False(t, ok)

	l0 := entity.StageL0
	ok, err = repo.AdvanceStage(ctx, c.ID, &l0, entity.StageL2)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StageL2, *got.PipelineStage)
}
