package view

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/sales-dashboard/internal/model"
)

func sampleDashboard() model.Dashboard {
	return model.Dashboard{
		Filters: model.Filters{
			StartDate: "2026-09-18",
			EndDate:   "2026-10-18",
			SortBy:    model.SortByPrice,
			SortOrder: model.SortDesc,
			After:     "tok-2",
		},
		Page:    2,
		Cursors: model.Cursors{Before: "b-1", After: "tok-3"},
		CanNext: true,
		CanPrev: true,
		Data: &model.SalesResponse{
			Results: model.SalesResults{
				TotalSales: []model.TotalSale{
					{Day: "2026-10-01", TotalSale: 1000},
					{Day: "2026-10-02", TotalSale: 3000},
				},
				Sales: []model.Sale{
					{ID: "6502a1b2c3d4e5f6a7b8c9d0", Date: "2026-10-01T14:05:00Z", Price: 1250, CustomerEmail: "ann@shop.io", CustomerPhone: "+1 555 0100"},
					{ID: "6502a1b2c3d4e5f6a7b8c9d1", Date: "2026-10-02T09:30:00Z", Price: 300, CustomerEmail: "bob@shop.io", CustomerPhone: "+1 555 0101"},
				},
			},
			Pagination: model.Cursors{Before: "b-1", After: "tok-3"},
		},
	}
}

func TestSortIcon(t *testing.T) {
	assert.Equal(t, "↕", SortIcon(model.SortByDate, model.SortByPrice, model.SortAsc))
	assert.Equal(t, "↑", SortIcon(model.SortByPrice, model.SortByPrice, model.SortAsc))
	assert.Equal(t, "↓", SortIcon(model.SortByPrice, model.SortByPrice, model.SortDesc))
}

func TestBuildTable(t *testing.T) {
	d := sampleDashboard()
	table := BuildTable(d.Data.Results.Sales, model.SortByPrice, model.SortDesc)

	require.Len(t, table.Headers, 2)
	assert.False(t, table.Headers[0].Active)
	assert.Equal(t, "↕", table.Headers[0].Icon)
	assert.True(t, table.Headers[1].Active)
	assert.Equal(t, "↓", table.Headers[1].Icon)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, SaleRow{
		ID:       "6502a1b2c3d4e5f6a7b8c9d0",
		ShortID:  "6502a1b2...",
		DateTime: "Oct 1, 2026 14:05",
		Price:    "$1,250",
		Email:    "ann@shop.io",
		Phone:    "+1 555 0100",
	}, table.Rows[0])
}

func TestBuildChart(t *testing.T) {
	c := BuildChart([]model.TotalSale{
		{Day: "2026-10-01", TotalSale: 1000},
		{Day: "2026-10-02", TotalSale: 3000},
	})

	assert.False(t, c.Empty)
	assert.Equal(t, "$4,000", c.Total)

	require.Len(t, c.YTicks, 4)
	labels := make([]string, 0, len(c.YTicks))
	for _, tick := range c.YTicks {
		labels = append(labels, tick.Label)
	}
	assert.Equal(t, []string{"$0k", "$1k", "$2k", "$3k"}, labels)
	assert.InDelta(t, 290, c.YTicks[0].Pos, 0.01)
	assert.InDelta(t, 10, c.YTicks[3].Pos, 0.01)

	require.Len(t, c.Points, 2)
	assert.InDelta(t, 60, c.Points[0].X, 0.01)
	assert.InDelta(t, 196.7, c.Points[0].Y, 0.01)
	assert.InDelta(t, 770, c.Points[1].X, 0.01)
	assert.InDelta(t, 10, c.Points[1].Y, 0.01)
	assert.Equal(t, "Oct 1", c.Points[0].Label)
	assert.Equal(t, "Friday, October 2, 2026", c.Points[1].Tooltip)
	assert.Equal(t, "$3,000", c.Points[1].Value)
	assert.Equal(t, "60,196.7 770,10", c.Polyline)
	assert.Len(t, c.XTicks, 2)
}

func TestBuildChart_Empty(t *testing.T) {
	c := BuildChart(nil)

	assert.True(t, c.Empty)
	assert.Equal(t, "$0", c.Total)
	assert.Empty(t, c.Points)
	assert.Empty(t, c.Polyline)
}

func TestBuildChart_ThinsXLabels(t *testing.T) {
	points := make([]model.TotalSale, 90)
	for i := range points {
		points[i] = model.TotalSale{Day: "2026-07-20", TotalSale: float64(i)}
	}

	c := BuildChart(points)

	assert.Len(t, c.Points, 90)
	assert.LessOrEqual(t, len(c.XTicks), chartMaxLabels)
}

func TestNiceStep(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{0, 1},
		{0.8, 1},
		{1.5, 2},
		{3, 5},
		{750, 1000},
		{1200, 2000},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, niceStep(tt.raw), 1e-9, "raw %v", tt.raw)
	}
}

func TestBuildPagination(t *testing.T) {
	d := sampleDashboard()
	p := BuildPagination(d)

	assert.Equal(t, 2, p.Page)
	assert.True(t, p.CanNext)
	assert.True(t, p.CanPrev)
	assert.Equal(t, "↗", p.Indicator)
	assert.Equal(t, hintTokenPaging, p.Hint)
	assert.Equal(t, "Showing 2 sales (Next page available) (Previous page available)", p.Summary)

	d.Loading = true
	p = BuildPagination(d)
	assert.False(t, p.CanNext, "next must be disabled while loading")
	assert.False(t, p.CanPrev, "prev must be disabled while loading")
}

func TestBuildPagination_FirstPage(t *testing.T) {
	d := sampleDashboard()
	d.Filters.After = ""
	d.Page = 1
	d.Cursors = model.Cursors{}
	d.CanPrev = false
	d.CanNext = false

	p := BuildPagination(d)

	assert.Equal(t, "•", p.Indicator)
	assert.Equal(t, hintFirstPage, p.Hint)
	assert.Equal(t, "Showing 2 sales", p.Summary)
}

func TestBuildPagination_FirstPageWithNext(t *testing.T) {
	d := sampleDashboard()
	d.Filters.After = ""
	d.Page = 1
	d.Cursors = model.Cursors{After: "t1"}
	d.CanPrev = false

	p := BuildPagination(d)

	assert.Equal(t, "↗", p.Indicator)
	assert.Equal(t, hintTokenPaging, p.Hint)
	assert.True(t, p.CanNext)
	assert.False(t, p.CanPrev)
}

func TestBuildPagination_LastPageOnlyBefore(t *testing.T) {
	d := sampleDashboard()
	d.Cursors = model.Cursors{Before: "b2"}
	d.CanNext = false

	p := BuildPagination(d)

	assert.Equal(t, "↖", p.Indicator)
	assert.Equal(t, hintTokenPaging, p.Hint)
	assert.False(t, p.CanNext)
	assert.True(t, p.CanPrev)
}

func TestIndicator(t *testing.T) {
	assert.Equal(t, "↖", Indicator(model.Cursors{Before: "b"}))
	assert.Equal(t, "↗", Indicator(model.Cursors{After: "a", Before: "b"}))
	assert.Equal(t, "•", Indicator(model.Cursors{}))
}

func TestBuild(t *testing.T) {
	d := sampleDashboard()
	d.Filters.Email = "ann@shop.io"

	p := Build(d)

	assert.True(t, p.HasData)
	assert.Equal(t, "2026-09-18", p.DateRange.Start)
	assert.Equal(t, []int{7, 30, 90}, p.DateRange.QuickDays)
	assert.True(t, p.Filters.Active)
	assert.Equal(t, "ann@shop.io", p.Filters.Email)
	assert.Len(t, p.Table.Rows, 2)
	assert.Equal(t, "$4,000", p.Chart.Total)
}

func TestRenderer(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, Build(sampleDashboard())))
	html := buf.String()

	assert.Contains(t, html, "<title>Sales Dashboard</title>")
	assert.Contains(t, html, `action="/sort/price"`)
	assert.Contains(t, html, "Date &amp; Time")
	assert.Contains(t, html, "$1,250")
	assert.Contains(t, html, "6502a1b2...")
	assert.Contains(t, html, "Last 90 days")
	assert.Contains(t, html, "Showing 2 sales (Next page available) (Previous page available)")
	assert.Contains(t, html, `points="60,196.7 770,10"`)
	assert.NotContains(t, html, "role=\"alert\"")
}

func TestRenderer_ErrorAndLoading(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, Build(model.Dashboard{
		Page:    1,
		Loading: true,
		Error:   "Failed to fetch sales data. Please try again.",
	})))
	html := buf.String()

	assert.Contains(t, html, "Failed to fetch sales data. Please try again.")
	assert.Contains(t, html, "Loading sales data...")
	assert.NotContains(t, html, "<table>")
}
