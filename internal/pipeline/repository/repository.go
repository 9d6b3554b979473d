package repository

import (
	"errors"

	"golang-deal-scout/internal/pipeline/dto"

	"gorm.io/gorm"
)

// translate maps gorm's not-found error onto dto.ErrNotFound.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ErrNotFound
	}
	return err
}
