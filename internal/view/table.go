package view

import "github.com/mmeshcher/sales-dashboard/internal/model"

// SortHeader описывает заголовок сортируемой колонки.
type SortHeader struct {
	Label  string
	Column model.SortField
	Icon   string
	Active bool
}

// SaleRow описывает строку таблицы продаж.
type SaleRow struct {
	ID       string
	ShortID  string
	DateTime string
	Price    string
	Email    string
	Phone    string
}

// Table описывает таблицу продаж.
type Table struct {
	Headers []SortHeader
	Rows    []SaleRow
}

// SortIcon возвращает значок сортировки колонки: ↕ для неактивной, ↑ или ↓ для активной.
func SortIcon(column, sortBy model.SortField, order model.SortOrder) string {
	if column != sortBy {
		return "↕"
	}
	if order == model.SortAsc {
		return "↑"
	}
	return "↓"
}

// BuildTable строит таблицу продаж с текущей сортировкой.
func BuildTable(sales []model.Sale, sortBy model.SortField, order model.SortOrder) Table {
	headers := []SortHeader{
		{Label: "Date & Time", Column: model.SortByDate},
		{Label: "Price", Column: model.SortByPrice},
	}
	for i := range headers {
		headers[i].Icon = SortIcon(headers[i].Column, sortBy, order)
		headers[i].Active = headers[i].Column == sortBy
	}

	rows := make([]SaleRow, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, SaleRow{
			ID:       s.ID,
			ShortID:  ShortID(s.ID),
			DateTime: FormatSaleTime(s.Date),
			Price:    FormatCurrency(s.Price),
			Email:    s.CustomerEmail,
			Phone:    s.CustomerPhone,
		})
	}

	return Table{Headers: headers, Rows: rows}
}
