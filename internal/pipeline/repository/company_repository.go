package repository

import (
	"context"
	"sort"
	"strings"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/dto"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompanyRepository persists pipeline companies.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error)
	List(ctx context.Context, filter dto.CompanyFilter) ([]entity.Company, error)
	ListNames(ctx context.Context) ([]string, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	// FillMissing writes each field only where the stored column is still NULL
	// (or blank, for text) and returns the columns it wrote, sorted.
	FillMissing(ctx context.Context, id uuid.UUID, fields map[string]any) ([]string, error)
	// AdvanceStage moves the company from `from` to `to` only if its stage is
	// still `from`. It reports whether a row was changed.
	AdvanceStage(ctx context.Context, id uuid.UUID, from *entity.PipelineStage, to entity.PipelineStage) (bool, error)
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new CompanyRepository.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *entity.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *companyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	var company entity.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &company, nil
}

func (r *companyRepository) List(ctx context.Context, filter dto.CompanyFilter) ([]entity.Company, error) {
	query := r.db.WithContext(ctx).Model(&entity.Company{})

	switch filter.Stage {
	case "":
	case "none":
		query = query.Where("pipeline_stage IS NULL")
	default:
		query = query.Where("pipeline_stage = ?", filter.Stage)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var companies []entity.Company
	if err := query.Order("name ASC").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *companyRepository) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&entity.Company{}).Order("name ASC").Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

func (r *companyRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&entity.Company{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return dto.ErrNotFound
	}
	return nil
}

func (r *companyRepository) FillMissing(ctx context.Context, id uuid.UUID, fields map[string]any) ([]string, error) {
	columns := make([]string, 0, len(fields))
	for column := range fields {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	written := []string{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, column := range columns {
			value := fields[column]
			col := clause.Column{Name: column}
			query := tx.Model(&entity.Company{}).Where("id = ?", id)
			if _, ok := value.(string); ok {
				query = query.Where("(? IS NULL OR TRIM(?) = '')", col, col)
			} else {
				query = query.Where("? IS NULL", col)
			}
			result := query.Update(column, value)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 1 {
				written = append(written, column)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return written, nil
}

func (r *companyRepository) AdvanceStage(ctx context.Context, id uuid.UUID, from *entity.PipelineStage, to entity.PipelineStage) (bool, error) {
	query := r.db.WithContext(ctx).Model(&entity.Company{}).Where("id = ?", id)
	if from == nil {
		query = query.Where("pipeline_stage IS NULL")
	} else {
		query = query.Where("pipeline_stage = ?", *from)
	}
	result := query.Update("pipeline_stage", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
