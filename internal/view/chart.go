package view

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/sales-dashboard/internal/model"
)

const (
	chartWidth     = 800.0
	chartHeight    = 320.0
	chartPadLeft   = 60.0
	chartPadRight  = 30.0
	chartPadTop    = 10.0
	chartPadBottom = 30.0
	chartYTicks    = 4
	chartMaxLabels = 10
)

// ChartPoint описывает точку графика в координатах SVG.
type ChartPoint struct {
	X       float64
	Y       float64
	Label   string
	Tooltip string
	Value   string
}

// ChartTick описывает деление оси.
type ChartTick struct {
	Pos   float64
	Label string
}

// Chart описывает линейный график дневных итогов.
type Chart struct {
	Width    float64
	Height   float64
	Left     float64
	Right    float64
	Top      float64
	Bottom   float64
	Points   []ChartPoint
	Polyline string
	YTicks   []ChartTick
	XTicks   []ChartTick
	Total    string
	Empty    bool
}

// BuildChart строит график по дневным итогам в порядке их следования.
func BuildChart(points []model.TotalSale) Chart {
	c := Chart{
		Width:  chartWidth,
		Height: chartHeight,
		Left:   chartPadLeft,
		Right:  chartWidth - chartPadRight,
		Top:    chartPadTop,
		Bottom: chartHeight - chartPadBottom,
		Empty:  len(points) == 0,
	}

	total := decimal.Zero
	maxValue := 0.0
	for _, p := range points {
		total = total.Add(decimal.NewFromFloat(p.TotalSale))
		maxValue = math.Max(maxValue, p.TotalSale)
	}
	c.Total = FormatCurrency(total.InexactFloat64())

	step := niceStep(maxValue / chartYTicks)
	top := step * math.Ceil(maxValue/step)
	if top == 0 {
		top = step
	}

	plotW := c.Right - c.Left
	plotH := c.Bottom - c.Top

	for i := 0; float64(i)*step <= top+step/2; i++ {
		v := float64(i) * step
		c.YTicks = append(c.YTicks, ChartTick{
			Pos:   round1(c.Bottom - plotH*v/top),
			Label: FormatAxisThousands(v),
		})
	}

	labelEvery := int(math.Ceil(float64(len(points)) / chartMaxLabels))
	coords := make([]string, 0, len(points))
	for i, p := range points {
		x := c.Left + plotW/2
		if len(points) > 1 {
			x = c.Left + plotW*float64(i)/float64(len(points)-1)
		}
		y := c.Bottom - plotH*math.Max(p.TotalSale, 0)/top

		pt := ChartPoint{
			X:       round1(x),
			Y:       round1(y),
			Label:   FormatChartDay(p.Day),
			Tooltip: FormatChartTooltip(p.Day),
			Value:   FormatCurrency(p.TotalSale),
		}
		c.Points = append(c.Points, pt)
		coords = append(coords, formatCoord(pt.X)+","+formatCoord(pt.Y))

		if i%labelEvery == 0 {
			c.XTicks = append(c.XTicks, ChartTick{Pos: pt.X, Label: pt.Label})
		}
	}
	c.Polyline = strings.Join(coords, " ")

	return c
}

// niceStep округляет шаг оси до 1, 2, 5 или 10, умноженных на степень десяти.
func niceStep(raw float64) float64 {
	if raw <= 0 {
		return 1
	}
	exp := math.Floor(math.Log10(raw))
	frac := raw / math.Pow(10, exp)

	var nice float64
	switch {
	case frac <= 1:
		nice = 1
	case frac <= 2:
		nice = 2
	case frac <= 5:
		nice = 5
	default:
		nice = 10
	}
	return nice * math.Pow(10, exp)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
