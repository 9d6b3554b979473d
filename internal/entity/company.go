package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PipelineStage is the ordered deal-progress state of a company. A nil stage
// means the company is tracked but not in the pipeline.
type PipelineStage string

const (
	StageL0 PipelineStage = "L0"
	StageL1 PipelineStage = "L1"
	StageL2 PipelineStage = "L2"
	StageL3 PipelineStage = "L3"
	StageL4 PipelineStage = "L4"
	StageL5 PipelineStage = "L5"
)

// PipelineStages lists the stages in pipeline order.
var PipelineStages = []PipelineStage{StageL0, StageL1, StageL2, StageL3, StageL4, StageL5}

// Rank returns the position of the stage in the pipeline, or -1 if unknown.
func (s PipelineStage) Rank() int {
	for i, stage := range PipelineStages {
		if stage == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the known stages.
func (s PipelineStage) Valid() bool { return s.Rank() >= 0 }

// StageRank ranks a possibly absent stage; absent ranks before L0.
func StageRank(s *PipelineStage) int {
	if s == nil {
		return -1
	}
	return s.Rank()
}

// Company source values.
const (
	SourceManual    = "manual"
	SourceImport    = "import"
	SourceDiscovery = "discovery"
)

// Company is an acquisition target tracked by the pipeline.
type Company struct {
	ID                      uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name                    string         `gorm:"not null;index" json:"name"`
	Segment                 *string        `json:"segment"`
	SegmentRelatedOfferings *string        `json:"segment_related_offerings"`
	CompanyFocus            *string        `json:"company_focus"`
	Website                 *string        `json:"website"`
	Ownership               *string        `json:"ownership"`
	Geography               *string        `json:"geography"`
	Description             *string        `gorm:"type:text" json:"description"`
	Revenue2021USDMn        *float64       `gorm:"column:revenue_2021_usd_mn" json:"revenue_2021_usd_mn"`
	Revenue2022USDMn        *float64       `gorm:"column:revenue_2022_usd_mn" json:"revenue_2022_usd_mn"`
	Revenue2023USDMn        *float64       `gorm:"column:revenue_2023_usd_mn" json:"revenue_2023_usd_mn"`
	Revenue2024USDMn        *float64       `gorm:"column:revenue_2024_usd_mn" json:"revenue_2024_usd_mn"`
	EBITDA2021USDMn         *float64       `gorm:"column:ebitda_2021_usd_mn" json:"ebitda_2021_usd_mn"`
	EBITDA2022USDMn         *float64       `gorm:"column:ebitda_2022_usd_mn" json:"ebitda_2022_usd_mn"`
	EBITDA2023USDMn         *float64       `gorm:"column:ebitda_2023_usd_mn" json:"ebitda_2023_usd_mn"`
	EBITDA2024USDMn         *float64       `gorm:"column:ebitda_2024_usd_mn" json:"ebitda_2024_usd_mn"`
	EV2024USDMn             *float64       `gorm:"column:ev_2024_usd_mn" json:"ev_2024_usd_mn"`
	PipelineStage           *PipelineStage `gorm:"column:pipeline_stage;size:2;index" json:"pipeline_stage"`
	Source                  string         `gorm:"not null;default:manual" json:"source"`
	CreatedAt               time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the Company model.
func (Company) TableName() string {
	return "companies"
}

// BeforeCreate assigns a UUID when none was set.
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// FieldValues returns the data columns of the company keyed by column name.
// Absent values are present in the map as nil.
func (c *Company) FieldValues() map[string]any {
	values := map[string]any{
		"name":                      c.Name,
		"segment":                   deref(c.Segment),
		"segment_related_offerings": deref(c.SegmentRelatedOfferings),
		"company_focus":             deref(c.CompanyFocus),
		"website":                   deref(c.Website),
		"ownership":                 deref(c.Ownership),
		"geography":                 deref(c.Geography),
		"description":               deref(c.Description),
		"revenue_2021_usd_mn":       deref(c.Revenue2021USDMn),
		"revenue_2022_usd_mn":       deref(c.Revenue2022USDMn),
		"revenue_2023_usd_mn":       deref(c.Revenue2023USDMn),
		"revenue_2024_usd_mn":       deref(c.Revenue2024USDMn),
		"ebitda_2021_usd_mn":        deref(c.EBITDA2021USDMn),
		"ebitda_2022_usd_mn":        deref(c.EBITDA2022USDMn),
		"ebitda_2023_usd_mn":        deref(c.EBITDA2023USDMn),
		"ebitda_2024_usd_mn":        deref(c.EBITDA2024USDMn),
		"ev_2024_usd_mn":            deref(c.EV2024USDMn),
	}
	if c.Name == "" {
		values["name"] = nil
	}
	return values
}

// SetField assigns a data column by name. value must be nil, a string for
// text columns or a float64 for numeric columns; anything else is an error.
func (c *Company) SetField(name string, value any) error {
	if name == "name" {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("name: expected text, got %T", value)
		}
		c.Name = s
		return nil
	}
	if p, ok := c.textFields()[name]; ok {
		return assign(p, name, value)
	}
	if p, ok := c.numberFields()[name]; ok {
		return assign(p, name, value)
	}
	return fmt.Errorf("%s: unknown company field", name)
}

func (c *Company) textFields() map[string]**string {
	return map[string]**string{
		"segment":                   &c.Segment,
		"segment_related_offerings": &c.SegmentRelatedOfferings,
		"company_focus":             &c.CompanyFocus,
		"website":                   &c.Website,
		"ownership":                 &c.Ownership,
		"geography":                 &c.Geography,
		"description":               &c.Description,
	}
}

func (c *Company) numberFields() map[string]**float64 {
	return map[string]**float64{
		"revenue_2021_usd_mn": &c.Revenue2021USDMn,
		"revenue_2022_usd_mn": &c.Revenue2022USDMn,
		"revenue_2023_usd_mn": &c.Revenue2023USDMn,
		"revenue_2024_usd_mn": &c.Revenue2024USDMn,
		"ebitda_2021_usd_mn":  &c.EBITDA2021USDMn,
		"ebitda_2022_usd_mn":  &c.EBITDA2022USDMn,
		"ebitda_2023_usd_mn":  &c.EBITDA2023USDMn,
		"ebitda_2024_usd_mn":  &c.EBITDA2024USDMn,
		"ev_2024_usd_mn":      &c.EV2024USDMn,
	}
}

func assign[T any](dst **T, name string, value any) error {
	if value == nil {
		*dst = nil
		return nil
	}
	v, ok := value.(T)
	if !ok {
		return fmt.Errorf("%s: unexpected value type %T", name, value)
	}
	*dst = &v
	return nil
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
