package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/household-apps/todo-service/internal/constants"
)

// PaginationParams holds a pagination window. Page is zero-based.
type PaginationParams struct {
	Page int
	Size int
}

// Offset returns the row offset of the window.
func (p PaginationParams) Offset() int {
	return p.Page * p.Size
}

// GetPaginationParams extracts pagination parameters from the request query.
// Absent values get defaults; everything else passes through as parsed, since
// range validation belongs to the query layer.
func GetPaginationParams(c *gin.Context) (PaginationParams, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.DefaultPage)))
	if err != nil {
		return PaginationParams{}, err
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(constants.DefaultPageSize)))
	if err != nil {
		return PaginationParams{}, err
	}

	return PaginationParams{Page: page, Size: size}, nil
}

// TotalPages returns how many pages of the given size cover total rows.
func TotalPages(total int64, size int) int64 {
	if size <= 0 {
		return 0
	}
	pages := total / int64(size)
	if total%int64(size) != 0 {
		pages++
	}
	return pages
}
