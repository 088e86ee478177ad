// Package view строит модели представления панели продаж и рендерит их в HTML.
package view

import (
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	saleTimeLayout     = "Jan 2, 2006 15:04"
	chartDayLayout     = "Jan 2"
	chartTooltipLayout = "Monday, January 2, 2006"
	shortIDLength      = 8
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency форматирует сумму в целых долларах с разделителями разрядов: $12,345.
func FormatCurrency(amount float64) string {
	v := int64(math.Round(amount))
	if v < 0 {
		return printer.Sprintf("-$%d", -v)
	}
	return printer.Sprintf("$%d", v)
}

// FormatAxisThousands форматирует значение оси в тысячах: $1.5k.
func FormatAxisThousands(value float64) string {
	return "$" + strconv.FormatFloat(value/1000, 'f', -1, 64) + "k"
}

// FormatSaleTime форматирует время продажи. Неразобранное значение возвращается как есть.
func FormatSaleTime(raw string) string {
	t, ok := parseTimestamp(raw)
	if !ok {
		return raw
	}
	return t.Format(saleTimeLayout)
}

// FormatChartDay форматирует день для подписи оси графика.
func FormatChartDay(raw string) string {
	t, ok := parseTimestamp(raw)
	if !ok {
		return raw
	}
	return t.Format(chartDayLayout)
}

// FormatChartTooltip форматирует день для подсказки точки графика.
func FormatChartTooltip(raw string) string {
	t, ok := parseTimestamp(raw)
	if !ok {
		return raw
	}
	return t.Format(chartTooltipLayout)
}

// ShortID сокращает идентификатор продажи до первых восьми символов.
func ShortID(id string) string {
	r := []rune(id)
	if len(r) <= shortIDLength {
		return id
	}
	return string(r[:shortIDLength]) + "..."
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
