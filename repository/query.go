package repository

import (
	"fmt"
	"strings"

	"github.com/mkbenefits/benefits_backend/config"
	"github.com/mkbenefits/benefits_backend/utils"
	"gorm.io/gorm"
)

// MaxPageLimit caps how many rows a single list call may return.
const MaxPageLimit = 100

// Compose turns generic paging/sort/search options into a bounded, ordered
// gorm query against the entity's declared metadata. Field names are
// validated before they reach SQL, so interpolating them below is safe.
//
// Search semantics: predicates on different fields AND together; repeated
// predicates on the same field OR together (alias search). This policy
// determines result-set size and must not change.
func Compose(q *gorm.DB, meta Queryable, paging PagingOptions, sorts []SortOption, searches []SearchOption) (*gorm.DB, error) {
	limit := paging.Limit
	if limit == 0 {
		limit = config.DefaultPageLimit
	}
	if limit < 1 || limit > MaxPageLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", utils.ErrorValidation, MaxPageLimit)
	}
	if paging.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", utils.ErrorValidation)
	}

	searchable := make(map[string]MatchKind, len(meta.SearchableFields()))
	for _, f := range meta.SearchableFields() {
		searchable[f.Name] = f.Match
	}

	// Group search terms per field, keeping first-appearance order.
	var groupOrder []string
	groups := map[string][]string{}
	for _, s := range searches {
		if _, ok := searchable[s.Field]; !ok {
			return nil, fmt.Errorf("%w: field %q is not searchable", utils.ErrorValidation, s.Field)
		}
		if _, seen := groups[s.Field]; !seen {
			groupOrder = append(groupOrder, s.Field)
		}
		groups[s.Field] = append(groups[s.Field], s.Value)
	}
	for _, field := range groupOrder {
		var conds []string
		var args []interface{}
		for _, value := range groups[field] {
			switch searchable[field] {
			case MatchEquals:
				conds = append(conds, fmt.Sprintf("%s = ?", field))
				args = append(args, value)
			default:
				conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE ?", field))
				args = append(args, "%"+strings.ToLower(value)+"%")
			}
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	sortable := make(map[string]bool, len(meta.SortableFields()))
	defaultField := ""
	for _, f := range meta.SortableFields() {
		sortable[f.Name] = true
		if f.IsDefault {
			defaultField = f.Name
		}
	}

	if len(sorts) == 0 {
		if defaultField != "" {
			q = q.Order(defaultField + " ASC")
		}
	} else {
		for _, s := range sorts {
			if !sortable[s.Field] {
				return nil, fmt.Errorf("%w: field %q is not sortable", utils.ErrorValidation, s.Field)
			}
			dir, err := normalizeDirection(s.Direction)
			if err != nil {
				return nil, err
			}
			q = q.Order(s.Field + " " + dir)
		}
	}
	// Final tiebreaker keeps the ordering total, so equal keys come back in
	// storage order and repeated composes return identical sequences.
	q = q.Order("id ASC")

	return q.Offset(paging.Offset).Limit(limit), nil
}

func normalizeDirection(d SortDirection) (string, error) {
	switch SortDirection(strings.ToLower(string(d))) {
	case "", SortAsc:
		return "ASC", nil
	case SortDesc:
		return "DESC", nil
	}
	return "", fmt.Errorf("%w: unknown sort direction %q", utils.ErrorValidation, d)
}
