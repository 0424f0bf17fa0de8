package fixture

import (
	"strconv"
	"time"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Filters narrows a fixture listing. Zero values mean "no constraint".
type Filters struct {
	Page        int        `json:"page,omitempty" validate:"omitempty,min=1"`
	Limit       int        `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	SortBy      string     `json:"sortBy,omitempty"`
	SortOrder   string     `json:"sortOrder,omitempty" validate:"omitempty,oneof=asc desc"`
	DateFrom    *time.Time `json:"dateFrom,omitempty"`
	DateTo      *time.Time `json:"dateTo,omitempty"`
	Status      string     `json:"status,omitempty" validate:"omitempty,oneof=scheduled live finished postponed"`
	Competition string     `json:"competition,omitempty"`
	Team        string     `json:"team,omitempty"`
}

// WithDefaults fills page and limit.
func (f Filters) WithDefaults() Filters {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	return f
}

// Merge overlays the non-zero fields of patch onto f.
func (f Filters) Merge(patch Filters) Filters {
	if patch.Page > 0 {
		f.Page = patch.Page
	}
	if patch.Limit > 0 {
		f.Limit = patch.Limit
	}
	if patch.SortBy != "" {
		f.SortBy = patch.SortBy
	}
	if patch.SortOrder != "" {
		f.SortOrder = patch.SortOrder
	}
	if patch.DateFrom != nil {
		f.DateFrom = patch.DateFrom
	}
	if patch.DateTo != nil {
		f.DateTo = patch.DateTo
	}
	if patch.Status != "" {
		f.Status = patch.Status
	}
	if patch.Competition != "" {
		f.Competition = patch.Competition
	}
	if patch.Team != "" {
		f.Team = patch.Team
	}
	return f
}

// Matches applies the status, team, competition and date constraints to fx.
func (f Filters) Matches(fx Fixture) bool {
	if f.Status != "" && fx.Status != f.Status {
		return false
	}
	if f.Team != "" && !fx.Involves(f.Team) {
		return false
	}
	if f.Competition != "" && fx.Competition.ID != f.Competition {
		return false
	}
	if f.DateFrom != nil && fx.DateTime.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && fx.DateTime.After(*f.DateTo) {
		return false
	}
	return true
}

// Params renders the filters as query parameters. Page and limit are always present.
func (f Filters) Params() map[string]string {
	f = f.WithDefaults()
	params := map[string]string{
		"page":  strconv.Itoa(f.Page),
		"limit": strconv.Itoa(f.Limit),
	}
	if f.SortBy != "" {
		params["sortBy"] = f.SortBy
	}
	if f.SortOrder != "" {
		params["sortOrder"] = f.SortOrder
	}
	if f.DateFrom != nil {
		params["dateFrom"] = f.DateFrom.UTC().Format(time.RFC3339)
	}
	if f.DateTo != nil {
		params["dateTo"] = f.DateTo.UTC().Format(time.RFC3339)
	}
	if f.Status != "" {
		params["status"] = f.Status
	}
	if f.Competition != "" {
		params["competition"] = f.Competition
	}
	if f.Team != "" {
		params["team"] = f.Team
	}
	return params
}
