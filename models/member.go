package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mkbenefits/benefits_backend/repository"
	"github.com/mkbenefits/benefits_backend/utils"
)

// Member is a covered person enrolled with the organization. Terminals
// reference members by Number (the card number), not by database id.
type Member struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Number      int       `gorm:"uniqueIndex;not null" json:"number" binding:"required"`
	FirstName   string    `gorm:"size:100;not null" json:"first_name" binding:"required"`
	LastName    string    `gorm:"size:100;not null" json:"last_name" binding:"required"`
	Email       string    `gorm:"size:255" json:"email"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	LockVersion int       `gorm:"not null;default:0" json:"lock_version"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Member) SortableFields() []repository.SortableField {
	return []repository.SortableField{
		{Name: "last_name", IsDefault: true},
		{Name: "first_name"},
		{Name: "number"},
		{Name: "created_at"},
	}
}

func (Member) SearchableFields() []repository.SearchableField {
	return []repository.SearchableField{
		{Name: "first_name", Match: repository.MatchSubstring},
		{Name: "last_name", Match: repository.MatchSubstring},
		{Name: "email", Match: repository.MatchSubstring},
		{Name: "number", Match: repository.MatchEquals},
	}
}

func (Member) NameColumn() string { return "last_name" }

func (m *Member) GetID() int           { return m.ID }
func (m *Member) GetLockVersion() int  { return m.LockVersion }
func (m *Member) SetLockVersion(v int) { m.LockVersion = v }

type NewMember struct {
	Number    int    `json:"number" binding:"required,min=1,max=999999999"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email"`
	IsActive  *bool  `json:"is_active"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewMember) Validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Member](ctx, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[Member](ctx, "number", input.Number, id); err != nil {
		return err
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return fmt.Errorf("%w: invalid email", utils.ErrorValidation)
	}
	return nil
}

func (input *NewMember) Apply(m *Member) {
	m.Number = input.Number
	m.FirstName = input.FirstName
	m.LastName = input.LastName
	m.Email = input.Email
	if input.IsActive != nil {
		m.IsActive = input.IsActive
	} else if m.IsActive == nil {
		m.IsActive = utils.NewTrue()
	}
}
