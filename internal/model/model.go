// Package model содержит доменные сущности панели продаж.
package model

// SortField описывает колонку, по которой сортируются продажи.
type SortField string

const (
	SortByDate  SortField = "date"
	SortByPrice SortField = "price"
)

// SortOrder описывает направление сортировки.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Filters описывает полный набор параметров запроса продаж.
// After и Before взаимоисключающие.
type Filters struct {
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	PriceMin  string    `json:"priceMin"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	SortBy    SortField `json:"sortBy"`
	SortOrder SortOrder `json:"sortOrder"`
	After     string    `json:"after,omitempty"`
	Before    string    `json:"before,omitempty"`
}

// WithAfter возвращает копию фильтров с курсором after и без курсора before.
func (f Filters) WithAfter(token string) Filters {
	f.After = token
	f.Before = ""
	return f
}

// WithBefore возвращает копию фильтров с курсором before и без курсора after.
func (f Filters) WithBefore(token string) Filters {
	f.Before = token
	f.After = ""
	return f
}

// WithoutCursors возвращает копию фильтров без курсоров пагинации.
func (f Filters) WithoutCursors() Filters {
	f.After = ""
	f.Before = ""
	return f
}

// Sale описывает одну продажу, как её отдаёт API.
type Sale struct {
	ID            string  `json:"_id"`
	Date          string  `json:"date"`
	Price         float64 `json:"price"`
	CustomerEmail string  `json:"customerEmail"`
	CustomerPhone string  `json:"customerPhone"`
	Revision      int     `json:"__v"`
}

// TotalSale содержит сумму продаж за один день.
type TotalSale struct {
	Day       string  `json:"day"`
	TotalSale float64 `json:"totalSale"`
}

// Cursors содержит токены соседних страниц. Пустая строка означает отсутствие токена.
type Cursors struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// SalesResults содержит страницу продаж и дневные итоги.
type SalesResults struct {
	TotalSales []TotalSale `json:"TotalSales"`
	Sales      []Sale      `json:"Sales"`
}

// SalesResponse описывает ответ эндпоинта продаж.
type SalesResponse struct {
	Results    SalesResults `json:"results"`
	Pagination Cursors      `json:"pagination"`
}

// PageState описывает зафиксированное состояние запроса сессии:
// фильтры без курсоров и стек токенов after, использованных для перехода вперёд.
type PageState struct {
	Filters Filters  `json:"filters"`
	Stack   []string `json:"stack"`
}

// Dashboard содержит снимок состояния панели, который отображают представления.
type Dashboard struct {
	Filters  Filters        `json:"filters"`
	Page     int            `json:"page"`
	Loading  bool           `json:"loading"`
	Error    string         `json:"error,omitempty"`
	Data     *SalesResponse `json:"data,omitempty"`
	Cursors  Cursors        `json:"cursors"`
	CanNext  bool           `json:"canNext"`
	CanPrev  bool           `json:"canPrev"`
	Sequence uint64         `json:"sequence"`
}
