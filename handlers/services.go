package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkbenefits/benefits_backend/config"
	"github.com/mkbenefits/benefits_backend/models"
	"github.com/mkbenefits/benefits_backend/repository"
)

func serviceRepo() *repository.Repository[models.ProviderService, *models.ProviderService] {
	return repository.New[models.ProviderService, *models.ProviderService](config.GetDB())
}

func ListServices(c *gin.Context) {
	paging, sorts, searches, err := parseListOptions(c)
	if err != nil {
		respondError(c, "handlers", "ListServices", err)
		return
	}

	repo := serviceRepo()
	var it *repository.Iterator[models.ProviderService]
	if name := c.Query("name"); name != "" {
		it, err = repo.GetAllByName(c.Request.Context(), name)
	} else {
		it, err = repo.GetAll(c.Request.Context(), paging, sorts, searches)
	}
	if err != nil {
		respondError(c, "handlers", "ListServices", err)
		return
	}
	respondList(c, it, paging, "handlers", "ListServices")
}

func GetService(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, "handlers", "GetService", err)
		return
	}
	key := entityCacheKey("service", id)
	var cached models.ProviderService
	if hit, _ := config.GetRedisObject(key, &cached); hit {
		c.JSON(http.StatusOK, &cached)
		return
	}
	service, err := serviceRepo().Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "handlers", "GetService", err)
		return
	}
	_ = config.SetRedisObject(key, service, entityCacheTTL)
	c.JSON(http.StatusOK, service)
}

func CreateService(c *gin.Context) {
	var input models.NewProviderService
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers", "CreateService", err)
		return
	}
	if err := input.Validate(c.Request.Context(), 0); err != nil {
		respondError(c, "handlers", "CreateService", err)
		return
	}

	var service models.ProviderService
	input.Apply(&service)
	created, err := serviceRepo().Add(c.Request.Context(), &service)
	if err != nil {
		respondError(c, "handlers", "CreateService", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func UpdateService(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, "handlers", "UpdateService", err)
		return
	}
	var input struct {
		models.NewProviderService
		LockVersion int `json:"lock_version"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers", "UpdateService", err)
		return
	}
	if err := input.Validate(c.Request.Context(), id); err != nil {
		respondError(c, "handlers", "UpdateService", err)
		return
	}

	service := models.ProviderService{ID: id, LockVersion: input.LockVersion}
	input.Apply(&service)
	if _, err := serviceRepo().Update(c.Request.Context(), &service); err != nil {
		respondError(c, "handlers", "UpdateService", err)
		return
	}
	_ = config.RemoveRedisKey(entityCacheKey("service", id))
	c.JSON(http.StatusOK, service)
}

func DeleteService(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, "handlers", "DeleteService", err)
		return
	}
	prior, err := serviceRepo().Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, "handlers", "DeleteService", err)
		return
	}
	_ = config.RemoveRedisKey(entityCacheKey("service", id))
	c.JSON(http.StatusOK, prior)
}
