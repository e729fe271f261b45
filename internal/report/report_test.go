package report

import (
	"testing"
	"time"

	"mystore-pos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clients = []models.Client{
	{ID: 1, TaxID: "C/F", FirstName: "Consumidor", LastName: "Final"},
	{ID: 2, TaxID: "1234567-8", FirstName: "María", LastName: "López"},
}

func sale(id uint, clientID uint, date time.Time, total string) models.Sale {
	return models.Sale{
		ID:       id,
		ClientID: clientID,
		Seller:   "Ana",
		Date:     date,
		Total:    decimal.RequireFromString(total),
	}
}

func TestDateKeyUsesGuatemalaTime(t *testing.T) {
	// 03:00 UTC on the 15th is still the 14th in Guatemala (UTC-6)
	late := time.Date(2025, 10, 15, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-10-14", DateKey(late))
	assert.Equal(t, "14/10/2025 21:00", FormatDate(late))

	// the same instant seen from another zone gives the same key
	tokyo := late.In(time.FixedZone("JST", 9*60*60))
	assert.Equal(t, "2025-10-14", DateKey(tokyo))
}

func TestDateOnlyValuesAreNotShifted(t *testing.T) {
	d := time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-10-14", DateKey(d))
	assert.Equal(t, "14/10/2025", FormatDate(d))
	assert.Equal(t, "", DateKey(time.Time{}))
	assert.Equal(t, "", FormatDate(time.Time{}))
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"": ModeAll, "todas": ModeAll, "HOY": ModeToday, "range": ModeRange, "rango": ModeRange,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMode("semana")
	assert.Error(t, err)
}

func TestApplyToday(t *testing.T) {
	now := time.Date(2025, 10, 14, 20, 0, 0, 0, time.UTC) // 14:00 in Guatemala
	sales := []models.Sale{
		sale(1, 1, time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC), "10"),
		sale(2, 1, time.Date(2025, 10, 15, 5, 0, 0, 0, time.UTC), "20"), // 23:00 on the 14th
		sale(3, 1, time.Date(2025, 10, 13, 12, 0, 0, 0, time.UTC), "30"),
		{ID: 4, ClientID: 1, Total: decimal.NewFromInt(5)}, // no date: counts as now
	}

	got := Apply(sales, clients, Filter{Mode: ModeToday}, now)
	ids := make([]uint, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []uint{1, 2, 4}, ids)
}

func TestApplyRangeIsInclusive(t *testing.T) {
	now := time.Date(2025, 10, 20, 18, 0, 0, 0, time.UTC)
	var sales []models.Sale
	for day := 10; day <= 16; day++ {
		sales = append(sales, sale(uint(day), 1, time.Date(2025, 10, day, 18, 0, 0, 0, time.UTC), "1"))
	}

	got := Apply(sales, clients, Filter{Mode: ModeRange, From: "2025-10-12", To: "2025-10-14"}, now)
	require.Len(t, got, 3)
	assert.Equal(t, uint(12), got[0].ID)
	assert.Equal(t, uint(14), got[2].ID)

	got = Apply(sales, clients, Filter{Mode: ModeRange, From: "2025-10-15"}, now)
	assert.Len(t, got, 2)

	got = Apply(sales, clients, Filter{Mode: ModeRange}, now)
	assert.Len(t, got, len(sales))
}

func TestApplyTextQuery(t *testing.T) {
	now := time.Date(2025, 10, 20, 18, 0, 0, 0, time.UTC)
	sales := []models.Sale{
		sale(1, 2, time.Date(2025, 10, 14, 18, 0, 0, 0, time.UTC), "10.50"),
		sale(2, 1, time.Date(2025, 10, 15, 18, 0, 0, 0, time.UTC), "3"),
	}

	for q, want := range map[string]int{
		"lópez":      1,
		"1234567":    1,
		"CONSUMIDOR": 1,
		"ana":        2,
		"15/10/2025": 1,
		"10.5":       1,
		"nadie":      0,
	} {
		got := Apply(sales, clients, Filter{Mode: ModeAll, Query: q}, now)
		assert.Len(t, got, want, q)
	}
}

func TestProjectAndSummarize(t *testing.T) {
	embedded := sale(7, 99, time.Date(2025, 10, 14, 18, 0, 0, 0, time.UTC), "2.25")
	embedded.Client = &models.Client{FirstName: "Luis", LastName: "Pérez", TaxID: "CF-9"}
	sales := []models.Sale{
		sale(1, 2, time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC), "10.50"),
		embedded,
	}

	rows := Project(sales, clients)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{
		ID: 1, Date: "14/10/2025", Client: "María López", TaxID: "1234567-8",
		Seller: "Ana", Total: decimal.RequireFromString("10.50"),
	}, rows[0])
	assert.Equal(t, "Luis Pérez", rows[1].Client)
	assert.Equal(t, "14/10/2025 12:00", rows[1].Date)

	sum := Summarize(rows)
	assert.Equal(t, 2, sum.Count)
	assert.Equal(t, "12.75", sum.Total.StringFixed(2))
}

func TestDailyBuckets(t *testing.T) {
	now := time.Date(2025, 10, 20, 18, 0, 0, 0, time.UTC)
	sales := []models.Sale{
		sale(3, 1, time.Date(2025, 10, 15, 18, 0, 0, 0, time.UTC), "5"),
		sale(1, 1, time.Date(2025, 10, 14, 18, 0, 0, 0, time.UTC), "10"),
		sale(2, 1, time.Date(2025, 10, 15, 4, 0, 0, 0, time.UTC), "2.5"), // 22:00 on the 14th
	}

	got := Daily(sales, now)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-10-14", got[0].Key)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, "12.50", got[0].Total.StringFixed(2))
	assert.Equal(t, "2025-10-15", got[1].Key)
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 10, 15, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, "reporte_ventas_2025-10-14.pdf", Filename("pdf", now))
	assert.Equal(t, "reporte_ventas_2025-10-14.xlsx", Filename("xlsx", now))
}

func TestFilterValidate(t *testing.T) {
	assert.NoError(t, Filter{Mode: ModeRange, From: "2025-01-01", To: "2025-12-31"}.Validate())
	assert.Error(t, Filter{Mode: ModeRange, From: "01/01/2025"}.Validate())
	assert.Error(t, Filter{Mode: ModeRange, To: "2025-13-01"}.Validate())
}
