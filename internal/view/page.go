package view

import "github.com/mmeshcher/sales-dashboard/internal/model"

// QuickRanges перечисляет окна быстрого выбора дат в днях.
var QuickRanges = []int{7, 30, 90}

// DateRange описывает форму выбора периода.
type DateRange struct {
	Start     string
	End       string
	QuickDays []int
}

// FilterValues описывает текущие значения формы фильтров.
type FilterValues struct {
	PriceMin string
	Email    string
	Phone    string
	Active   bool
}

// Page описывает всю панель продаж.
type Page struct {
	Title      string
	Error      string
	Loading    bool
	HasData    bool
	DateRange  DateRange
	Filters    FilterValues
	Chart      Chart
	Table      Table
	Pagination Pagination
}

// Build строит модель представления панели по снимку состояния.
func Build(d model.Dashboard) Page {
	f := d.Filters
	p := Page{
		Title:   "Sales Dashboard",
		Error:   d.Error,
		Loading: d.Loading,
		HasData: d.Data != nil,
		DateRange: DateRange{
			Start:     f.StartDate,
			End:       f.EndDate,
			QuickDays: QuickRanges,
		},
		Filters: FilterValues{
			PriceMin: f.PriceMin,
			Email:    f.Email,
			Phone:    f.Phone,
			Active:   f.PriceMin != "" || f.Email != "" || f.Phone != "",
		},
		Pagination: BuildPagination(d),
	}

	if d.Data != nil {
		p.Chart = BuildChart(d.Data.Results.TotalSales)
		p.Table = BuildTable(d.Data.Results.Sales, f.SortBy, f.SortOrder)
	} else {
		p.Table = BuildTable(nil, f.SortBy, f.SortOrder)
	}

	return p
}
