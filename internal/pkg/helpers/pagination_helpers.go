package helpers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/academia/internal/app/models/dto"
)

// Listing window limits. The default page holds a typical class roster.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageQuery is the ?page=&size= window of a list endpoint. Page is 1-based.
type PageQuery struct {
	Page int `form:"page" binding:"omitempty,min=1"`
	Size int `form:"size" binding:"omitempty,min=1,max=100"`
}

// BindPageQuery reads the window from the query string. Absent values take the
// defaults, out-of-range or non-numeric values are a binding error.
func BindPageQuery(c *gin.Context) (PageQuery, error) {
	var q PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return PageQuery{}, err
	}
	return q.normalized(), nil
}

func (q PageQuery) normalized() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size < 1 || q.Size > MaxPageSize {
		q.Size = DefaultPageSize
	}
	return q
}

// Offset is the number of rows that precede the page.
func (q PageQuery) Offset() uint64 {
	q = q.normalized()
	return uint64(q.Page-1) * uint64(q.Size)
}

// Limit is the page size to request from storage.
func (q PageQuery) Limit() int {
	return q.normalized().Size
}

// Info describes the page against totalItems. An empty listing still has one
// page, and a page past the end reports the last one.
func (q PageQuery) Info(totalItems int64) dto.PaginationInfo {
	q = q.normalized()
	size := int64(q.Size)

	totalPages := int((totalItems + size - 1) / size)
	if totalPages == 0 {
		totalPages = 1
	}

	return dto.PaginationInfo{
		CurrentPage: min(q.Page, totalPages),
		TotalPages:  totalPages,
		PageSize:    q.Size,
		TotalItems:  totalItems,
	}
}
