package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unigate/admissions/internal/app/models/dto"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a 1-based page request
type Page struct {
	Number int
	Size   int
}

// PageFromQuery reads ?page= and ?size=, falling back to defaults for
// missing, non-numeric or out-of-range values
func PageFromQuery(c *gin.Context) Page {
	p := Page{Number: DefaultPage, Size: DefaultPageSize}
	if n, err := strconv.Atoi(c.Query("page")); err == nil && n >= 1 {
		p.Number = n
	}
	if n, err := strconv.Atoi(c.Query("size")); err == nil && n >= 1 && n <= MaxPageSize {
		p.Size = n
	}
	return p
}

func (p Page) normalized() Page {
	if p.Number < 1 {
		p.Number = DefaultPage
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	return p
}

// Info describes p against a result set of total items. An empty result is
// reported as a single empty page, and a page past the end is clamped.
func (p Page) Info(total int64) dto.PaginationInfo {
	p = p.normalized()
	pages := int((total + int64(p.Size) - 1) / int64(p.Size))
	if pages == 0 {
		pages = 1
	}
	current := p.Number
	if current > pages {
		current = pages
	}
	return dto.PaginationInfo{
		CurrentPage: current,
		TotalPages:  pages,
		PageSize:    p.Size,
		TotalItems:  total,
	}
}

// PageOf returns the items that fall on page p
func PageOf[T any](items []T, p Page) []T {
	p = p.normalized()
	start := (p.Number - 1) * p.Size
	if start >= len(items) {
		return items[len(items):]
	}
	end := start + p.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
