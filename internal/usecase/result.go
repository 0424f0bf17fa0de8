package usecase

import (
	"time"
)

// Result is the envelope every data operation returns.
type Result[T any] struct {
	Data      T         `json:"data"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}

type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

type PaginatedResult[T any] struct {
	Data       []T        `json:"data"`
	Success    bool       `json:"success"`
	Timestamp  time.Time  `json:"timestamp"`
	Pagination Pagination `json:"pagination"`
}

func newPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// pageOf returns the page-th window of items, or an empty slice past the end.
func pageOf[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return append([]T(nil), items[start:end]...)
}
