package models

import (
	"context"
	"time"

	"github.com/mkbenefits/benefits_backend/repository"
	"github.com/mkbenefits/benefits_backend/utils"
	"github.com/shopspring/decimal"
)

// ProviderService is a billable service a terminal can submit by Code.
type ProviderService struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Code        int             `gorm:"uniqueIndex;not null" json:"code" binding:"required"`
	Name        string          `gorm:"index;size:150;not null" json:"name" binding:"required"`
	Description string          `gorm:"type:text" json:"description"`
	Fee         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"fee"`
	IsActive    *bool           `gorm:"not null;default:true" json:"is_active"`
	LockVersion int             `gorm:"not null;default:0" json:"lock_version"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ProviderService) SortableFields() []repository.SortableField {
	return []repository.SortableField{
		{Name: "name", IsDefault: true},
		{Name: "code"},
		{Name: "fee"},
		{Name: "created_at"},
	}
}

func (ProviderService) SearchableFields() []repository.SearchableField {
	return []repository.SearchableField{
		{Name: "name", Match: repository.MatchSubstring},
		{Name: "description", Match: repository.MatchSubstring},
		{Name: "code", Match: repository.MatchEquals},
	}
}

func (ProviderService) NameColumn() string { return "name" }

func (s *ProviderService) GetID() int           { return s.ID }
func (s *ProviderService) GetLockVersion() int  { return s.LockVersion }
func (s *ProviderService) SetLockVersion(v int) { s.LockVersion = v }

type NewProviderService struct {
	Code        int             `json:"code" binding:"required,min=1,max=999999"`
	Name        string          `json:"name" binding:"required,max=150"`
	Description string          `json:"description"`
	Fee         decimal.Decimal `json:"fee"`
	IsActive    *bool           `json:"is_active"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewProviderService) Validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[ProviderService](ctx, id); err != nil {
			return err
		}
	}
	return utils.ValidateUnique[ProviderService](ctx, "code", input.Code, id)
}

func (input *NewProviderService) Apply(s *ProviderService) {
	s.Code = input.Code
	s.Name = input.Name
	s.Description = input.Description
	s.Fee = input.Fee
	if input.IsActive != nil {
		s.IsActive = input.IsActive
	} else if s.IsActive == nil {
		s.IsActive = utils.NewTrue()
	}
}
