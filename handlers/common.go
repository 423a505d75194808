package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mkbenefits/benefits_backend/config"
	"github.com/mkbenefits/benefits_backend/repository"
	"github.com/mkbenefits/benefits_backend/utils"
)

// Single-entity GETs are served through a Redis look-aside cache. Writes
// evict; the TTL bounds staleness if an eviction is ever lost.
const entityCacheTTL = 10 * time.Minute

func entityCacheKey(kind string, id int) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

// parseListOptions reads the shared list query parameters:
//
//	offset=20 limit=10 sort=last_name:desc sort=number search=last_name:smith
//
// sort and search repeat; order matters (first sort is the primary key,
// search terms keep their grouping semantics in the composer).
func parseListOptions(c *gin.Context) (repository.PagingOptions, []repository.SortOption, []repository.SearchOption, error) {
	var paging repository.PagingOptions
	if v := strings.TrimSpace(c.Query("offset")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return paging, nil, nil, fmt.Errorf("%w: offset must be an integer", utils.ErrorValidation)
		}
		paging.Offset = n
	}
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return paging, nil, nil, fmt.Errorf("%w: limit must be an integer", utils.ErrorValidation)
		}
		paging.Limit = n
	}

	var sorts []repository.SortOption
	for _, raw := range c.QueryArray("sort") {
		field, dir, _ := strings.Cut(raw, ":")
		if strings.TrimSpace(field) == "" {
			return paging, nil, nil, fmt.Errorf("%w: empty sort field", utils.ErrorValidation)
		}
		sorts = append(sorts, repository.SortOption{
			Field:     strings.TrimSpace(field),
			Direction: repository.SortDirection(strings.TrimSpace(dir)),
		})
	}

	var searches []repository.SearchOption
	for _, raw := range c.QueryArray("search") {
		field, value, ok := strings.Cut(raw, ":")
		if !ok || strings.TrimSpace(field) == "" {
			return paging, nil, nil, fmt.Errorf("%w: search must be field:value", utils.ErrorValidation)
		}
		searches = append(searches, repository.SearchOption{
			Field: strings.TrimSpace(field),
			Value: value,
		})
	}

	return paging, sorts, searches, nil
}

func pathId(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", utils.ErrorValidation)
	}
	return id, nil
}

// respondError maps the error taxonomy onto HTTP statuses. Unexpected
// errors are logged with operation context and surfaced as a generic 500;
// nothing leaks past the contract boundary.
func respondError(c *gin.Context, moduleName, funcName string, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(err)})
		return
	}

	switch {
	case errors.Is(err, utils.ErrorValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.Is(err, utils.ErrorConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "record was modified concurrently; re-read and retry"})
	case errors.Is(err, utils.ErrorStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "record store unavailable; retry later"})
	default:
		config.LogError(config.GetLogger(), moduleName, funcName, c.Request.Method+" "+c.FullPath(), nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func respondList[T any](c *gin.Context, it *repository.Iterator[T], paging repository.PagingOptions, moduleName, funcName string) {
	items, err := it.Collect()
	if err != nil {
		respondError(c, moduleName, funcName, utils.Classify(err))
		return
	}
	if items == nil {
		items = []*T{}
	}
	limit := paging.Limit
	if limit == 0 {
		limit = config.DefaultPageLimit
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   items,
		"offset": paging.Offset,
		"limit":  limit,
	})
}
