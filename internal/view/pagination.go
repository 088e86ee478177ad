package view

import (
	"strconv"

	"github.com/mmeshcher/sales-dashboard/internal/model"
)

const (
	hintTokenPaging = "Using token-based pagination (before/after tokens)"
	hintFirstPage   = "First page - navigate to see more records"
)

// Pagination описывает элементы управления страницами.
type Pagination struct {
	Page      int
	CanPrev   bool
	CanNext   bool
	Hint      string
	Indicator string
	Summary   string
}

// BuildPagination строит элементы управления страницами. Во время загрузки обе кнопки неактивны.
func BuildPagination(d model.Dashboard) Pagination {
	p := Pagination{
		Page:      d.Page,
		CanPrev:   d.CanPrev && !d.Loading,
		CanNext:   d.CanNext && !d.Loading,
		Hint:      hintFirstPage,
		Indicator: Indicator(d.Cursors),
	}
	if d.Cursors.After != "" || d.Cursors.Before != "" {
		p.Hint = hintTokenPaging
	}
	if d.Data != nil {
		p.Summary = Summary(len(d.Data.Results.Sales), d.CanNext, d.CanPrev)
	}
	return p
}

// Indicator возвращает значок курсоров ответа: ↗ при наличии after, ↖ при одном before, • без курсоров.
func Indicator(c model.Cursors) string {
	switch {
	case c.After != "":
		return "↗"
	case c.Before != "":
		return "↖"
	default:
		return "•"
	}
}

// Summary формирует строку вида "Showing 50 sales (Next page available)".
func Summary(count int, canNext, canPrev bool) string {
	s := "Showing " + strconv.Itoa(count) + " sales"
	if canNext {
		s += " (Next page available)"
	}
	if canPrev {
		s += " (Previous page available)"
	}
	return s
}
