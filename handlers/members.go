package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkbenefits/benefits_backend/config"
	"github.com/mkbenefits/benefits_backend/models"
	"github.com/mkbenefits/benefits_backend/repository"
)

func memberRepo() *repository.Repository[models.Member, *models.Member] {
	return repository.New[models.Member, *models.Member](config.GetDB())
}

func ListMembers(c *gin.Context) {
	paging, sorts, searches, err := parseListOptions(c)
	if err != nil {
		respondError(c, "handlers", "ListMembers", err)
		return
	}

	repo := memberRepo()
	var it *repository.Iterator[models.Member]
	if name := c.Query("name"); name != "" {
		it, err = repo.GetAllByName(c.Request.Context(), name)
	} else {
		it, err = repo.GetAll(c.Request.Context(), paging, sorts, searches)
	}
	if err != nil {
		respondError(c, "handlers", "ListMembers", err)
		return
	}
	respondList(c, it, paging, "handlers", "ListMembers")
}

func GetMember(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, "handlers", "GetMember", err)
		return
	}
	key := entityCacheKey("member", id)
	var cached models.Member
	if hit, _ := config.GetRedisObject(key, &cached); hit {
		c.JSON(http.StatusOK, &cached)
		return
	}
	member, err := memberRepo().Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "handlers", "GetMember", err)
		return
	}
	_ = config.SetRedisObject(key, member, entityCacheTTL)
	c.JSON(http.StatusOK, member)
}

func CreateMember(c *gin.Context) {
	var input models.NewMember
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers", "CreateMember", err)
		return
	}
	if err := input.Validate(c.Request.Context(), 0); err != nil {
		respondError(c, "handlers", "CreateMember", err)
		return
	}

	var member models.Member
	input.Apply(&member)
	created, err := memberRepo().Add(c.Request.Context(), &member)
	if err != nil {
		respondError(c, "handlers", "CreateMember", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func UpdateMember(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, "handlers", "UpdateMember", err)
		return
	}
	var input struct {
		models.NewMember
		LockVersion int `json:"lock_version"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers", "UpdateMember", err)
		return
	}
	if err := input.Validate(c.Request.Context(), id); err != nil {
		respondError(c, "handlers", "UpdateMember", err)
		return
	}

	member := models.Member{ID: id, LockVersion: input.LockVersion}
	input.Apply(&member)
	if _, err := memberRepo().Update(c.Request.Context(), &member); err != nil {
		respondError(c, "handlers", "UpdateMember", err)
		return
	}
	_ = config.RemoveRedisKey(entityCacheKey("member", id))
	c.JSON(http.StatusOK, member)
}

func DeleteMember(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, "handlers", "DeleteMember", err)
		return
	}
	prior, err := memberRepo().Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, "handlers", "DeleteMember", err)
		return
	}
	_ = config.RemoveRedisKey(entityCacheKey("member", id))
	c.JSON(http.StatusOK, prior)
}
