// Package validation содержит проверки входных данных форм панели продаж.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ErrInvalidDateRange возвращается, если начало диапазона позже его конца.
var ErrInvalidDateRange = errors.New("start date is after end date")

var (
	once     sync.Once
	validate *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := fld.Tag.Get("form"); name != "" && name != "-" {
				return name
			}
			return fld.Name
		})
		_ = v.RegisterValidation("price", isPrice)
		validate = v
	})
	return validate
}

func isPrice(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return !d.IsNegative()
}

// DateRangeForm описывает форму выбора диапазона дат.
type DateRangeForm struct {
	StartDate string `form:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `form:"endDate" validate:"required,datetime=2006-01-02"`
}

// QuickRangeForm описывает быстрый выбор последних N дней.
type QuickRangeForm struct {
	Days int `form:"days" validate:"oneof=7 30 90"`
}

// FilterForm описывает форму фильтров продаж.
type FilterForm struct {
	PriceMin string `form:"priceMin" validate:"omitempty,price"`
	Email    string `form:"email" validate:"omitempty,max=254"`
	Phone    string `form:"phone" validate:"omitempty,max=32,printascii"`
}

// SortForm описывает выбор колонки сортировки.
type SortForm struct {
	Column string `form:"column" validate:"oneof=date price"`
}

// DateRange проверяет диапазон дат: обе даты заданы, корректны и начало не позже конца.
func DateRange(f DateRangeForm) error {
	f.StartDate = strings.TrimSpace(f.StartDate)
	f.EndDate = strings.TrimSpace(f.EndDate)

	if err := get().Struct(f); err != nil {
		return fmt.Errorf("validate date range: %w", err)
	}

	start, _ := time.Parse(dateLayout, f.StartDate)
	end, _ := time.Parse(dateLayout, f.EndDate)
	if start.After(end) {
		return ErrInvalidDateRange
	}

	return nil
}

// QuickRange проверяет количество дней быстрого выбора.
func QuickRange(f QuickRangeForm) error {
	if err := get().Struct(f); err != nil {
		return fmt.Errorf("validate quick range: %w", err)
	}
	return nil
}

// Filters проверяет фильтры и возвращает их в нормализованном виде:
// без пробелов по краям и с минимальной ценой в каноническом десятичном виде.
func Filters(f FilterForm) (FilterForm, error) {
	f.PriceMin = strings.TrimSpace(f.PriceMin)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)

	if err := get().Struct(f); err != nil {
		return FilterForm{}, fmt.Errorf("validate filters: %w", err)
	}

	if f.PriceMin != "" {
		f.PriceMin = decimal.RequireFromString(f.PriceMin).String()
	}

	return f, nil
}

// Sort проверяет колонку сортировки.
func Sort(f SortForm) error {
	if err := get().Struct(f); err != nil {
		return fmt.Errorf("validate sort: %w", err)
	}
	return nil
}

// FieldErrors возвращает имена полей, не прошедших проверку.
func FieldErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}
