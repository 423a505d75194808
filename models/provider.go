package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mkbenefits/benefits_backend/repository"
	"github.com/mkbenefits/benefits_backend/utils"
)

// Provider is a practitioner or facility that renders billable services.
type Provider struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Number      int       `gorm:"uniqueIndex;not null" json:"number" binding:"required"`
	Name        string    `gorm:"index;size:150;not null" json:"name" binding:"required"`
	Specialty   string    `gorm:"size:100" json:"specialty"`
	Email       string    `gorm:"size:255" json:"email"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	LockVersion int       `gorm:"not null;default:0" json:"lock_version"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Provider) SortableFields() []repository.SortableField {
	return []repository.SortableField{
		{Name: "name", IsDefault: true},
		{Name: "number"},
		{Name: "specialty"},
		{Name: "created_at"},
	}
}

func (Provider) SearchableFields() []repository.SearchableField {
	return []repository.SearchableField{
		{Name: "name", Match: repository.MatchSubstring},
		{Name: "specialty", Match: repository.MatchSubstring},
		{Name: "number", Match: repository.MatchEquals},
	}
}

func (Provider) NameColumn() string { return "name" }

func (p *Provider) GetID() int           { return p.ID }
func (p *Provider) GetLockVersion() int  { return p.LockVersion }
func (p *Provider) SetLockVersion(v int) { p.LockVersion = v }

type NewProvider struct {
	Number    int    `json:"number" binding:"required,min=1,max=999999999"`
	Name      string `json:"name" binding:"required,max=150"`
	Specialty string `json:"specialty" binding:"max=100"`
	Email     string `json:"email"`
	IsActive  *bool  `json:"is_active"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewProvider) Validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Provider](ctx, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[Provider](ctx, "number", input.Number, id); err != nil {
		return err
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return fmt.Errorf("%w: invalid email", utils.ErrorValidation)
	}
	return nil
}

func (input *NewProvider) Apply(p *Provider) {
	p.Number = input.Number
	p.Name = input.Name
	p.Specialty = input.Specialty
	p.Email = input.Email
	if input.IsActive != nil {
		p.IsActive = input.IsActive
	} else if p.IsActive == nil {
		p.IsActive = utils.NewTrue()
	}
}
