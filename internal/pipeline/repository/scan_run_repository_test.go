package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/testutil"
)

func TestScanRunRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewScanRunRepository(testutil.NewDB(t))
	thesisID := uuid.New()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	older := &entity.ScanRun{ThesisID: &thesisID, Trigger: entity.TriggerScheduled, Status: entity.ScanRunCompleted, StartedAt: base}
	newer := &entity.ScanRun{ThesisID: &thesisID, Trigger: entity.TriggerManual, Status: entity.ScanRunRunning, StartedAt: base.Add(time.Hour)}
	adhoc := &entity.ScanRun{Trigger: entity.TriggerAdHoc, Status: entity.ScanRunCompleted, StartedAt: base.Add(2 * time.Hour)}
	for _, run := range []*entity.ScanRun{older, newer, adhoc} {
		require.NoError(t, repo.Create(ctx, run))
	}

	runs, err := repo.List(ctx, &thesisID, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, older.ID, runs[1].ID)

	runs, err = repo.List(ctx, nil, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, adhoc.ID, runs[0].ID)

	completed := base.Add(90 * time.Minute)
	newer.Status = entity.ScanRunFailed
	newer.CompletedAt = &completed
	require.NoError(t, repo.Update(ctx, newer))

	stored, err := repo.FindByID(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ScanRunFailed, stored.Status)
	require.NotNil(t, stored.CompletedAt)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, dto.ErrNotFound)
}
