// Package query хранит состояние запроса панели продаж и управляет курсорной пагинацией.
package query

import (
	"slices"
	"time"

	"github.com/mmeshcher/sales-dashboard/internal/model"
)

// DateLayout задаёт формат календарных дат в запросах.
const DateLayout = "2006-01-02"

// DefaultWindowDays задаёт ширину окна дат по умолчанию.
const DefaultWindowDays = 30

// State описывает зафиксированное состояние запроса сессии.
// Значения State не изменяются: каждый переход возвращает новое состояние.
type State struct {
	filters model.Filters
	stack   []string
	cursors model.Cursors
}

// FilterSet содержит фильтры формы: минимальную цену, email и телефон.
type FilterSet struct {
	PriceMin string
	Email    string
	Phone    string
}

// Patch описывает частичное обновление фильтров. Nil-поля не меняются.
type Patch struct {
	StartDate *string
	EndDate   *string
	PriceMin  *string
	Email     *string
	Phone     *string
	SortBy    *model.SortField
	SortOrder *model.SortOrder
}

// TrailingRange возвращает окно из days дней, заканчивающееся датой now.
func TrailingRange(now time.Time, days int) (string, string) {
	return now.AddDate(0, 0, -days).Format(DateLayout), now.Format(DateLayout)
}

// Default возвращает состояние первой загрузки: последние 30 дней, сортировка по дате по убыванию.
func Default(now time.Time) State {
	start, end := TrailingRange(now, DefaultWindowDays)
	return State{
		filters: model.Filters{
			StartDate: start,
			EndDate:   end,
			SortBy:    model.SortByDate,
			SortOrder: model.SortDesc,
		},
	}
}

// Restore восстанавливает состояние из сохранённого PageState. Курсоры не восстанавливаются.
func Restore(ps model.PageState) State {
	return State{
		filters: ps.Filters.WithoutCursors(),
		stack:   slices.Clone(ps.Stack),
	}
}

// PageState возвращает сохраняемое представление состояния.
func (s State) PageState() model.PageState {
	return model.PageState{
		Filters: s.filters,
		Stack:   slices.Clone(s.stack),
	}
}

// Filters возвращает фильтры состояния без курсоров.
func (s State) Filters() model.Filters {
	return s.filters
}

// Page возвращает номер текущей страницы, начиная с 1.
func (s State) Page() int {
	return len(s.stack) + 1
}

// Cursors возвращает курсоры последнего зафиксированного ответа.
func (s State) Cursors() model.Cursors {
	return s.cursors
}

// WithCursors возвращает копию состояния с курсорами ответа на её запрос.
func (s State) WithCursors(c model.Cursors) State {
	s.stack = slices.Clone(s.stack)
	s.cursors = c
	return s
}

// Request возвращает запрос, который воспроизводит текущую страницу.
func (s State) Request() model.Filters {
	if len(s.stack) == 0 {
		return s.filters.WithoutCursors()
	}
	return s.filters.WithAfter(s.stack[len(s.stack)-1])
}

// Apply применяет частичное обновление поверх копии фильтров и сбрасывает пагинацию.
func (s State) Apply(p Patch) State {
	f := s.filters.WithoutCursors()
	if p.StartDate != nil {
		f.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		f.EndDate = *p.EndDate
	}
	if p.PriceMin != nil {
		f.PriceMin = *p.PriceMin
	}
	if p.Email != nil {
		f.Email = *p.Email
	}
	if p.Phone != nil {
		f.Phone = *p.Phone
	}
	if p.SortBy != nil {
		f.SortBy = *p.SortBy
	}
	if p.SortOrder != nil {
		f.SortOrder = *p.SortOrder
	}
	return State{filters: f}
}

// ApplyDateRange задаёт диапазон дат и возвращает на первую страницу.
func (s State) ApplyDateRange(start, end string) State {
	return s.Apply(Patch{StartDate: &start, EndDate: &end})
}

// ApplyFilters задаёт фильтры формы целиком и возвращает на первую страницу.
func (s State) ApplyFilters(fs FilterSet) State {
	return s.Apply(Patch{PriceMin: &fs.PriceMin, Email: &fs.Email, Phone: &fs.Phone})
}

// ClearFilters очищает фильтры формы и возвращает на первую страницу.
func (s State) ClearFilters() State {
	return s.ApplyFilters(FilterSet{})
}

// ToggleSort переключает сортировку. Повторный клик по активной колонке меняет направление,
// клик по другой колонке всегда начинает с сортировки по возрастанию.
func (s State) ToggleSort(column model.SortField) State {
	order := model.SortAsc
	if s.filters.SortBy == column && s.filters.SortOrder == model.SortAsc {
		order = model.SortDesc
	}
	return s.Apply(Patch{SortBy: &column, SortOrder: &order})
}

// Refresh возвращает то же состояние без курсоров для повторного запроса текущей страницы.
func (s State) Refresh() State {
	return State{
		filters: s.filters,
		stack:   slices.Clone(s.stack),
	}
}
