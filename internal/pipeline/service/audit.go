package service

import (
	"context"
	"encoding/json"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/repository"
	"golang-deal-scout/pkg/logger"

	"gorm.io/datatypes"
)

// appendAudit writes an audit record. The operation it describes has already
// happened, so a failed write is logged and not returned.
func appendAudit(ctx context.Context, repo repository.AuditRepository, log *logger.Logger, record *entity.DealAuditLog, details map[string]any) {
	if len(details) > 0 {
		if raw, err := json.Marshal(details); err == nil {
			record.Details = datatypes.JSON(raw)
		}
	}
	if err := repo.Append(ctx, record); err != nil {
		log.Error("Failed to write audit record",
			logger.ErrorField(err),
			logger.StringField("company_id", record.CompanyID.String()),
			logger.StringField("action", record.Action),
		)
	}
}
