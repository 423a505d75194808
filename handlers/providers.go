package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkbenefits/benefits_backend/config"
	"github.com/mkbenefits/benefits_backend/models"
	"github.com/mkbenefits/benefits_backend/repository"
)

func providerRepo() *repository.Repository[models.Provider, *models.Provider] {
	return repository.New[models.Provider, *models.Provider](config.GetDB())
}

func ListProviders(c *gin.Context) {
	paging, sorts, searches, err := parseListOptions(c)
	if err != nil {
		respondError(c, "handlers", "ListProviders", err)
		return
	}

	repo := providerRepo()
	var it *repository.Iterator[models.Provider]
	if name := c.Query("name"); name != "" {
		it, err = repo.GetAllByName(c.Request.Context(), name)
	} else {
		it, err = repo.GetAll(c.Request.Context(), paging, sorts, searches)
	}
	if err != nil {
		respondError(c, "handlers", "ListProviders", err)
		return
	}
	respondList(c, it, paging, "handlers", "ListProviders")
}

func GetProvider(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, "handlers", "GetProvider", err)
		return
	}
	key := entityCacheKey("provider", id)
	var cached models.Provider
	if hit, _ := config.GetRedisObject(key, &cached); hit {
		c.JSON(http.StatusOK, &cached)
		return
	}
	provider, err := providerRepo().Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "handlers", "GetProvider", err)
		return
	}
	_ = config.SetRedisObject(key, provider, entityCacheTTL)
	c.JSON(http.StatusOK, provider)
}

func CreateProvider(c *gin.Context) {
	var input models.NewProvider
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers", "CreateProvider", err)
		return
	}
	if err := input.Validate(c.Request.Context(), 0); err != nil {
		respondError(c, "handlers", "CreateProvider", err)
		return
	}

	var provider models.Provider
	input.Apply(&provider)
	created, err := providerRepo().Add(c.Request.Context(), &provider)
	if err != nil {
		respondError(c, "handlers", "CreateProvider", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func UpdateProvider(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, "handlers", "UpdateProvider", err)
		return
	}
	var input struct {
		models.NewProvider
		LockVersion int `json:"lock_version"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers", "UpdateProvider", err)
		return
	}
	if err := input.Validate(c.Request.Context(), id); err != nil {
		respondError(c, "handlers", "UpdateProvider", err)
		return
	}

	provider := models.Provider{ID: id, LockVersion: input.LockVersion}
	input.Apply(&provider)
	if _, err := providerRepo().Update(c.Request.Context(), &provider); err != nil {
		respondError(c, "handlers", "UpdateProvider", err)
		return
	}
	_ = config.RemoveRedisKey(entityCacheKey("provider", id))
	c.JSON(http.StatusOK, provider)
}

func DeleteProvider(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, "handlers", "DeleteProvider", err)
		return
	}
	prior, err := providerRepo().Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, "handlers", "DeleteProvider", err)
		return
	}
	_ = config.RemoveRedisKey(entityCacheKey("provider", id))
	c.JSON(http.StatusOK, prior)
}
