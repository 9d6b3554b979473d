package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/config"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/repository"
	"golang-deal-scout/pkg/logger"
	"golang-deal-scout/pkg/utils"
)

type fakeQueue struct {
	published []dto.ScanRequestMessage
	err       error
}

func (q *fakeQueue) Publish(_ context.Context, msg dto.ScanRequestMessage) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.published = append(q.published, msg)
	return "1700000000000-0", nil
}

func newThesisFixture(t *testing.T) (ThesisService, *discoveryFixture, *fakeQueue) {
	f := newDiscoveryFixture(t, nil)
	queue := &fakeQueue{}
	cfg := &config.Config{Scanner: config.Scanner{DefaultCandidates: 10, MaxCandidates: 50}}
	return NewThesisService(cfg, f.theses, queue, f.svc, logger.NewNop()), f, queue
}

func TestThesisService_CreateDefaults(t *testing.T) {
	svc, _, _ := newThesisFixture(t)

	thesis, err := svc.Create(context.Background(), &dto.CreateThesisRequest{Title: "DACH SaaS", Content: "Vertical SaaS in DACH"}, "alice")
	require.NoError(t, err)
	assert.True(t, thesis.IsActive)
	assert.Equal(t, entity.ScanWeekly, thesis.ScanFrequency)
	assert.Equal(t, 10, thesis.CandidatesPerScan)
	assert.Equal(t, "alice", thesis.CreatedBy)

	_, err = svc.Create(context.Background(), &dto.CreateThesisRequest{Title: "x", Content: "y", CandidatesPerScan: 80}, "alice")
	assert.ErrorIs(t, err, dto.ErrValidation)
}

func TestThesisService_UpdateReschedules(t *testing.T) {
	svc, f, _ := newThesisFixture(t)
	ctx := context.Background()

	thesis, err := svc.Create(ctx, &dto.CreateThesisRequest{Title: "T", Content: "C", IsActive: utils.ToPointer(false)}, "alice")
	require.NoError(t, err)
	assert.False(t, thesis.IsActive)

	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.theses.MarkScanned(ctx, thesis.ID, last, NextScan(last, entity.ScanWeekly)))

	updated, err := svc.Update(ctx, thesis.ID, &dto.UpdateThesisRequest{ScanFrequency: utils.ToPointer("daily"), IsActive: utils.ToPointer(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	require.NotNil(t, updated.NextScanAt)
	assert.True(t, updated.NextScanAt.Equal(last.AddDate(0, 0, 1)))

	_, err = svc.Update(ctx, uuid.New(), &dto.UpdateThesisRequest{})
	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func TestThesisService_ScanNowAndRequestScan(t *testing.T) {
	svc, f, queue := newThesisFixture(t)
	ctx := context.Background()
	f.agent.responses = []string{`{"companies":[{"company_name":"Foo","match_score":70}]}`}

	thesis, err := svc.Create(ctx, &dto.CreateThesisRequest{Title: "T", Content: "Industrial IoT", ScanFrequency: "daily"}, "alice")
	require.NoError(t, err)

	resp, err := svc.ScanNow(ctx, thesis.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo"}, resp.Companies)

	stored, err := svc.Get(ctx, thesis.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastScanAt)
	require.NotNil(t, stored.NextScanAt)
	assert.Equal(t, 24*time.Hour, stored.NextScanAt.Sub(*stored.LastScanAt))

	accepted, err := svc.RequestScan(ctx, thesis.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, thesis.ID.String(), accepted.ThesisID)
	require.Len(t, queue.published, 1)
	assert.Equal(t, "bob", queue.published[0].RequestedBy)

	_, err = svc.RequestScan(ctx, uuid.New(), "bob")
	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func TestThesisService_RequestScanWithoutQueue(t *testing.T) {
	f := newDiscoveryFixture(t, nil)
	cfg := &config.Config{Scanner: config.Scanner{DefaultCandidates: 10, MaxCandidates: 50}}
	svc := NewThesisService(cfg, f.theses, repository.NewScanQueueRepository(nil, 0), f.svc, logger.NewNop())

	thesis, err := svc.Create(context.Background(), &dto.CreateThesisRequest{Title: "T", Content: "C"}, "alice")
	require.NoError(t, err)

	_, err = svc.RequestScan(context.Background(), thesis.ID, "bob")
	assert.ErrorIs(t, err, dto.ErrQueueNotConfigured)
}
