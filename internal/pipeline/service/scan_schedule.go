package service

import (
	"context"
	"time"

	"golang-deal-scout/internal/entity"

	"github.com/google/uuid"
)

// NextScan returns when a thesis scanned at now is due again. Monthly adds one
// calendar month with time.AddDate normalisation (Jan 31 becomes Mar 2 or 3).
// Unknown frequencies fall back to weekly.
func NextScan(now time.Time, frequency entity.ScanFrequency) time.Time {
	switch frequency {
	case entity.ScanDaily:
		return now.AddDate(0, 0, 1)
	case entity.ScanMonthly:
		return now.AddDate(0, 1, 0)
	default:
		return now.AddDate(0, 0, 7)
	}
}

type scanMarker interface {
	MarkScanned(ctx context.Context, id uuid.UUID, lastScanAt, nextScanAt time.Time) error
}

// MarkScanned records a completed scan of thesis at now.
func MarkScanned(ctx context.Context, repo scanMarker, thesis *entity.InvestmentThesis, now time.Time) error {
	next := NextScan(now, thesis.ScanFrequency)
	if err := repo.MarkScanned(ctx, thesis.ID, now, next); err != nil {
		return err
	}
	thesis.LastScanAt = &now
	thesis.NextScanAt = &next
	return nil
}
