package forecast

import (
	"sort"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
)

type periodKey struct {
	SKU   string
	Year  int
	Month time.Month
}

// Aggregate groups sales into monthly per-SKU totals. Each SKU's series is
// sorted chronologically. Returns domain.ErrNoSales for empty input.
func Aggregate(sales []domain.SaleRecord) (map[string][]domain.MonthlyAggregate, error) {
	if len(sales) == 0 {
		return nil, domain.ErrNoSales
	}

	totals := make(map[periodKey]float64)
	for _, s := range sales {
		key := periodKey{
			SKU:   s.ProductSKU,
			Year:  s.Date.Year(),
			Month: s.Date.Month(),
		}
		totals[key] += s.QuantitySold
	}

	series := make(map[string][]domain.MonthlyAggregate)
	for key, qty := range totals {
		season := SeasonFor(key.Month)
		series[key.SKU] = append(series[key.SKU], domain.MonthlyAggregate{
			SKU:        key.SKU,
			Year:       key.Year,
			Month:      key.Month,
			Quantity:   qty,
			Season:     season,
			SeasonCode: SeasonCode(season),
		})
	}

	for sku := range series {
		rows := series[sku]
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Year != rows[j].Year {
				return rows[i].Year < rows[j].Year
			}
			return rows[i].Month < rows[j].Month
		})
	}

	return series, nil
}
