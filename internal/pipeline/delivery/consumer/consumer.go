package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/config"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/service"
	"golang-deal-scout/pkg/common"
	"golang-deal-scout/pkg/logger"
	"golang-deal-scout/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

type streamClient interface {
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

// ScanConsumer runs queued thesis scans and, when enabled, the periodic scan of due theses.
type ScanConsumer struct {
	cfg              config.Scanner
	redisClient      streamClient
	discoveryService service.DiscoveryService
	logger           *logger.Logger
	cron             *cron.Cron
	stopChan         chan struct{}
	wg               sync.WaitGroup
}

// NewScanConsumer creates a new ScanConsumer.
func NewScanConsumer(cfg *config.Config, redisClient *redis.Client, discoveryService service.DiscoveryService, log *logger.Logger) *ScanConsumer {
	return newScanConsumer(cfg.Scanner, redisClient, discoveryService, log)
}

func newScanConsumer(cfg config.Scanner, client streamClient, discoveryService service.DiscoveryService, log *logger.Logger) *ScanConsumer {
	return &ScanConsumer{
		cfg:              cfg,
		redisClient:      client,
		discoveryService: discoveryService,
		logger:           log,
		stopChan:         make(chan struct{}),
	}
}

// Start begins consuming scan requests and schedules the due-scan poll.
func (c *ScanConsumer) Start(ctx context.Context) error {
	if c.cfg.AutoScan {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		c.cron = cron.New(cron.WithParser(parser))
		if _, err := c.cron.AddFunc(c.cfg.PollSchedule, func() { c.scanDue(ctx) }); err != nil {
			return err
		}
		c.cron.Start()
		c.logger.Info("Automatic thesis scans enabled", logger.StringField("schedule", c.cfg.PollSchedule))
	}

	c.logger.Info("Scan consumer started", logger.StringField("stream", common.RedisStreamThesisScan))
	c.wg.Add(1)
	utils.GoSafe(c.logger, func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Scan consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Scan consumer stopping")
				return
			default:
				c.ProcessRequest(ctx)
			}
		}
	})
	return nil
}

// ProcessRequest reads and runs at most one queued scan request.
func (c *ScanConsumer) ProcessRequest(ctx context.Context) {
	streams, err := c.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamThesisScan, ">"},
		Count:    1,
		Block:    2 * time.Second,
	}).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, redis.Nil) {
			return
		}
		c.logger.Error("Failed to read from stream", logger.ErrorField(err))
		// Avoid a hot loop while redis is unreachable.
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}
		return
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]
	c.handleRecovered(ctx, message)

	// Scans are not retried: a failed run is logged and the request dropped.
	if err := c.redisClient.XAck(ctx, common.RedisStreamThesisScan, common.RedisStreamGroup, message.ID).Err(); err != nil {
		c.logger.Error("Failed to acknowledge scan request", logger.ErrorField(err), logger.StringField("message_id", message.ID))
	}
}

// handleRecovered keeps a panicking scan from taking the consumer loop down;
// the message is still acknowledged afterwards.
func (c *ScanConsumer) handleRecovered(ctx context.Context, message redis.XMessage) {
	defer utils.RecoverPanic(c.logger.With(logger.StringField("message_id", message.ID)), "scan consumer")
	c.handle(ctx, message)
}

func (c *ScanConsumer) handle(ctx context.Context, message redis.XMessage) {
	log := c.logger.With(logger.StringField("message_id", message.ID))

	payload, ok := message.Values[common.PayloadField].(string)
	if !ok {
		log.Error("field 'payload' not found or not a string in stream message")
		return
	}
	var req dto.ScanRequestMessage
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		log.Error("Failed to unmarshal scan request", logger.ErrorField(err))
		return
	}
	thesisID, err := uuid.Parse(req.ThesisID)
	if err != nil {
		log.Error("Scan request has an invalid thesis id", logger.StringField("thesis_id", req.ThesisID))
		return
	}

	scanCtx, cancel := context.WithTimeout(ctx, c.cfg.ScanTimeout)
	defer cancel()
	resp, err := c.discoveryService.RunForThesis(scanCtx, thesisID, entity.TriggerQueued)
	if err != nil {
		log.Error("Queued scan failed", logger.ErrorField(err), logger.StringField("thesis_id", req.ThesisID))
		return
	}
	log.Info("Queued scan completed",
		logger.StringField("thesis_id", req.ThesisID),
		logger.StringField("requested_by", req.RequestedBy),
		logger.IntField("inserted", resp.Count),
		logger.IntField("skipped", len(resp.Skipped)),
	)
}

func (c *ScanConsumer) scanDue(ctx context.Context) {
	defer utils.RecoverPanic(c.logger, "due thesis scan")
	scanned, err := c.discoveryService.ScanDue(ctx)
	if err != nil {
		c.logger.Error("Due thesis scan failed", logger.ErrorField(err), logger.IntField("scanned", scanned))
		return
	}
	if scanned > 0 {
		c.logger.Info("Due thesis scan completed", logger.IntField("scanned", scanned))
	}
}

// Stop gracefully shuts down the consumer and waits for a running scan.
func (c *ScanConsumer) Stop() {
	if c.cron != nil {
		<-c.cron.Stop().Done()
	}
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Scan consumer stopped")
}
