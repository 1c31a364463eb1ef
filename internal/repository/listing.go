package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

const (
	DefaultLimit = 9
	MaxLimit     = 100

	// RecentWindow is the trailing window behind the "last month" counts.
	RecentWindow = 30 * 24 * time.Hour

	defaultSortField = "created_at"
)

// ListParams selects one page of a listing.
type ListParams struct {
	StartIndex    int
	Limit         int
	SortField     string
	SortDirection SortDirection
}

// Page is one window of a filtered listing plus the counts over the whole filter.
type Page[T any] struct {
	Items     []T
	Total     int64
	LastMonth int64
}

func (p ListParams) normalized() ListParams {
	if p.StartIndex < 0 {
		p.StartIndex = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.SortDirection != SortAsc && p.SortDirection != SortDesc {
		p.SortDirection = SortDesc
	}
	return p
}

type scope func(*gorm.DB) *gorm.DB

func noFilter(db *gorm.DB) *gorm.DB { return db }

// listPage counts and windows the rows of T matching filter. Sort fields outside
// sortable fall back to created_at; ties are broken by id ascending.
func listPage[T any](db *gorm.DB, filter scope, params ListParams, sortable map[string]bool, now time.Time) (Page[T], error) {
	params = params.normalized()

	page := Page[T]{Items: make([]T, 0)}
	var model T

	if err := db.Model(&model).Scopes(filter).Count(&page.Total).Error; err != nil {
		return page, err
	}

	err := db.Model(&model).Scopes(filter).
		Where("created_at >= ?", now.Add(-RecentWindow)).
		Count(&page.LastMonth).Error
	if err != nil {
		return page, err
	}

	if int64(params.StartIndex) >= page.Total {
		return page, nil
	}

	column := params.SortField
	if !sortable[column] {
		column = defaultSortField
	}

	err = db.Model(&model).Scopes(filter).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: params.SortDirection == SortDesc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Offset(params.StartIndex).
		Limit(params.Limit).
		Find(&page.Items).Error

	return page, err
}
