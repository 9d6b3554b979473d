package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/config"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/service"
	"golang-deal-scout/pkg/common"
	"golang-deal-scout/pkg/logger"
)

type fakeStream struct {
	messages []redis.XMessage
	readErr  error
	acked    []string
}

func (f *fakeStream) XReadGroup(_ context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	if f.readErr != nil {
		return redis.NewXStreamSliceCmdResult(nil, f.readErr)
	}
	if len(f.messages) == 0 {
		return redis.NewXStreamSliceCmdResult(nil, redis.Nil)
	}
	msg := f.messages[0]
	f.messages = f.messages[1:]
	return redis.NewXStreamSliceCmdResult([]redis.XStream{{Stream: a.Streams[0], Messages: []redis.XMessage{msg}}}, nil)
}

func (f *fakeStream) XAck(_ context.Context, _, _ string, ids ...string) *redis.IntCmd {
	f.acked = append(f.acked, ids...)
	return redis.NewIntResult(int64(len(ids)), nil)
}

type fakeDiscovery struct {
	service.DiscoveryService
	ran      []uuid.UUID
	triggers []entity.ScanTrigger
	err      error
	// panics makes the first run panic.
	panics bool
}

func (f *fakeDiscovery) RunForThesis(_ context.Context, id uuid.UUID, trigger entity.ScanTrigger) (*dto.DiscoveryRunResponse, error) {
	f.ran = append(f.ran, id)
	f.triggers = append(f.triggers, trigger)
	if f.panics {
		f.panics = false
		panic("scan exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &dto.DiscoveryRunResponse{ThesisID: id.String(), Count: 2}, nil
}

func (f *fakeDiscovery) ScanDue(context.Context) (int, error) {
	return 0, nil
}

func newTestConsumer(stream *fakeStream, discovery *fakeDiscovery) *ScanConsumer {
	return newScanConsumer(config.Scanner{ScanTimeout: time.Minute}, stream, discovery, logger.NewNop())
}

func scanMessage(id string, thesisID uuid.UUID) redis.XMessage {
	return redis.XMessage{ID: id, Values: map[string]interface{}{common.PayloadField: `{"thesis_id":"` + thesisID.String() + `"}`}}
}

func TestProcessRequest_RunsAndAcks(t *testing.T) {
	thesisID := uuid.New()
	stream := &fakeStream{messages: []redis.XMessage{{
		ID:     "1-0",
		Values: map[string]interface{}{common.PayloadField: `{"thesis_id":"` + thesisID.String() + `","requested_by":"alice"}`},
	}}}
	discovery := &fakeDiscovery{}

	newTestConsumer(stream, discovery).ProcessRequest(context.Background())

	assert.Equal(t, []uuid.UUID{thesisID}, discovery.ran)
	assert.Equal(t, []entity.ScanTrigger{entity.TriggerQueued}, discovery.triggers)
	assert.Equal(t, []string{"1-0"}, stream.acked)
}

func TestProcessRequest_AcksFailuresAndMalformed(t *testing.T) {
	stream := &fakeStream{messages: []redis.XMessage{
		{ID: "1-0", Values: map[string]interface{}{common.PayloadField: "not json"}},
		{ID: "2-0", Values: map[string]interface{}{"other": "x"}},
		{ID: "3-0", Values: map[string]interface{}{common.PayloadField: `{"thesis_id":"nope"}`}},
		{ID: "4-0", Values: map[string]interface{}{common.PayloadField: `{"thesis_id":"` + uuid.NewString() + `"}`}},
	}}
	discovery := &fakeDiscovery{err: dto.ErrNotFound}
	c := newTestConsumer(stream, discovery)

	for i := 0; i < 4; i++ {
		c.ProcessRequest(context.Background())
	}

	assert.Equal(t, []string{"1-0", "2-0", "3-0", "4-0"}, stream.acked)
	assert.Len(t, discovery.ran, 1)
}

func TestProcessRequest_SurvivesPanickingScan(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	stream := &fakeStream{messages: []redis.XMessage{
		scanMessage("1-0", first),
		scanMessage("2-0", second),
	}}
	discovery := &fakeDiscovery{panics: true}
	c := newTestConsumer(stream, discovery)

	assert.NotPanics(t, func() { c.ProcessRequest(context.Background()) })
	c.ProcessRequest(context.Background())

	assert.Equal(t, []uuid.UUID{first, second}, discovery.ran)
	assert.Equal(t, []string{"1-0", "2-0"}, stream.acked)
}

func TestProcessRequest_IdleAndErrors(t *testing.T) {
	stream := &fakeStream{}
	discovery := &fakeDiscovery{}
	c := newTestConsumer(stream, discovery)

	c.ProcessRequest(context.Background())
	assert.Empty(t, stream.acked)

	stream.readErr = errors.New("connection refused")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.ProcessRequest(ctx)
	assert.Empty(t, discovery.ran)
}

func TestStartAndStop(t *testing.T) {
	discovery := &fakeDiscovery{}
	c := newScanConsumer(config.Scanner{AutoScan: true, PollSchedule: "@every 1h", ScanTimeout: time.Minute}, &fakeStream{}, discovery, logger.NewNop())

	require.NoError(t, c.Start(context.Background()))
	c.Stop()

	bad := newScanConsumer(config.Scanner{AutoScan: true, PollSchedule: "every tuesday"}, &fakeStream{}, discovery, logger.NewNop())
	assert.Error(t, bad.Start(context.Background()))
}
