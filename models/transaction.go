package models

import (
	"fmt"
	"time"

	"github.com/mkbenefits/benefits_backend/repository"
	"github.com/mkbenefits/benefits_backend/utils"
)

type TransactionStatus string

const (
	TransactionStatusCommitted TransactionStatus = "Committed"
)

// Transaction is the point-of-service record a terminal submits. It is
// append-only: created by the ingestion workflow once all three referenced
// records resolve, and never mutated afterwards. References are by
// identifier only; the referenced rows live in independent stores.
type Transaction struct {
	ID             int               `gorm:"primary_key" json:"id"`
	ProviderId     int               `gorm:"index;not null" json:"provider_id"`
	MemberId       int               `gorm:"index;not null" json:"member_id"`
	ServiceId      int               `gorm:"index;not null" json:"service_id"`
	ServiceDate    time.Time         `gorm:"index;not null" json:"service_date"`
	ServiceComment string            `gorm:"size:100" json:"service_comment"`
	Status         TransactionStatus `gorm:"size:20;not null;default:'Committed'" json:"status"`
	TerminalId     string            `gorm:"size:64;index" json:"terminal_id"`
	CorrelationId  string            `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (Transaction) SortableFields() []repository.SortableField {
	return []repository.SortableField{
		{Name: "service_date", IsDefault: true},
		{Name: "provider_id"},
		{Name: "member_id"},
		{Name: "created_at"},
	}
}

func (Transaction) SearchableFields() []repository.SearchableField {
	return []repository.SearchableField{
		{Name: "service_comment", Match: repository.MatchSubstring},
		{Name: "status", Match: repository.MatchEquals},
		{Name: "provider_id", Match: repository.MatchEquals},
		{Name: "member_id", Match: repository.MatchEquals},
	}
}

// Transactions have no canonical name; GetAllByName yields nothing.
func (Transaction) NameColumn() string { return "" }

func (t *Transaction) GetID() int { return t.ID }

// Append-only record: there is no version to bump and Update is never
// called on it.
func (t *Transaction) GetLockVersion() int { return 0 }
func (t *Transaction) SetLockVersion(int)  {}

// NewTransaction is the inbound submission from a terminal. The numbers are
// business keys, resolved to row ids by the ingestion workflow.
type NewTransaction struct {
	ProviderNumber int    `json:"provider_number" binding:"required,min=1,max=999999999"`
	MemberNumber   int    `json:"member_number" binding:"required,min=1,max=999999999"`
	ServiceCode    int    `json:"service_code" binding:"required,min=1,max=999999"`
	ServiceDate    string `json:"service_date" binding:"required,datetime=2006-01-02"`
	ServiceComment string `json:"service_comment" binding:"max=100"`
}

// ParsedServiceDate parses the submission date. HTTP binding already
// enforces the format, but the workflow re-checks so callers that skip
// binding cannot commit a zero date.
func (input *NewTransaction) ParsedServiceDate() (time.Time, error) {
	t, err := time.Parse("2006-01-02", input.ServiceDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: service_date must be formatted 2006-01-02", utils.ErrorValidation)
	}
	return t, nil
}
