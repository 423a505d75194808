package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkbenefits/benefits_backend/config"
	"github.com/mkbenefits/benefits_backend/models"
	"github.com/mkbenefits/benefits_backend/repository"
	"github.com/mkbenefits/benefits_backend/workflow"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// newIngestor is swapped by tests to inject a fake workflow.
var newIngestor = func(db *gorm.DB, logger *logrus.Logger) *workflow.Ingestor {
	return workflow.NewIngestor(db, logger)
}

func transactionRepo() *repository.Repository[models.Transaction, *models.Transaction] {
	return repository.New[models.Transaction, *models.Transaction](config.GetDB())
}

// SubmitTransaction is the terminal-facing ingestion endpoint. The commit is
// the source of truth: a failed notification publish still returns 201, just
// flagged degraded.
func SubmitTransaction(c *gin.Context) {
	var input models.NewTransaction
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers", "SubmitTransaction", err)
		return
	}

	ing := newIngestor(config.GetDB(), config.GetLogger())
	result, err := ing.Submit(c.Request.Context(), input)
	if err != nil {
		respondError(c, "handlers", "SubmitTransaction", err)
		return
	}

	if result.State == workflow.StateRejected {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status":               "rejected",
			"unresolved_reference": result.UnresolvedReference,
		})
		return
	}

	resp := gin.H{
		"status":         "accepted",
		"transaction_id": result.Transaction.ID,
	}
	if result.Degraded {
		resp["degraded"] = true
	}
	c.JSON(http.StatusCreated, resp)
}

func ListTransactions(c *gin.Context) {
	paging, sorts, searches, err := parseListOptions(c)
	if err != nil {
		respondError(c, "handlers", "ListTransactions", err)
		return
	}
	it, err := transactionRepo().GetAll(c.Request.Context(), paging, sorts, searches)
	if err != nil {
		respondError(c, "handlers", "ListTransactions", err)
		return
	}
	respondList(c, it, paging, "handlers", "ListTransactions")
}

func GetTransaction(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, "handlers", "GetTransaction", err)
		return
	}
	tx, err := transactionRepo().Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "handlers", "GetTransaction", err)
		return
	}
	c.JSON(http.StatusOK, tx)
}
