// internal/domain/models.go
package domain

import "time"

// DefaultProductName is used when a product arrives without a display name.
const DefaultProductName = "Unknown"

// Product is a SKU with its current on-hand stock
type Product struct {
	SKU   string `json:"sku"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// SaleRecord is a single sales transaction
type SaleRecord struct {
	ProductSKU   string    `json:"product_sku"`
	Date         time.Time `json:"date"`
	QuantitySold float64   `json:"quantity_sold"`
}

// MonthlyAggregate is the total quantity sold for one SKU in one calendar month
type MonthlyAggregate struct {
	SKU        string
	Year       int
	Month      time.Month
	Quantity   float64
	Season     string
	SeasonCode int
}

// Strategy identifies how a forecast was produced
type Strategy string

const (
	StrategyColdStart Strategy = "cold_start"
	StrategyAverage   Strategy = "average"
	StrategyModel     Strategy = "model"
)

// Forecast is the single-point demand estimate for the next period
type Forecast struct {
	PredictedDemand int
	Confidence      float64
	Strategy        Strategy
	NextSeason      string

	// FallbackReason is set when the model path was attempted but failed
	// and the average estimate was used instead.
	FallbackReason string
}

// Fallback reports whether the model path failed for this forecast.
func (f Forecast) Fallback() bool {
	return f.FallbackReason != ""
}

// RiskAssessment is the restock risk derived from demand and stock
type RiskAssessment struct {
	Status  RiskStatus
	Reasons []string
	Restock int
}

// PredictionRecord is the per-product output of a prediction run
type PredictionRecord struct {
	ProductSKU                string     `json:"product_sku" db:"product_sku"`
	ProductName               string     `json:"product_name" db:"product_name"`
	CurrentStock              int        `json:"current_stock" db:"current_stock"`
	PredictedDemand           int        `json:"predicted_demand" db:"predicted_demand"`
	ConfidenceLevel           float64    `json:"confidence_level" db:"confidence_level"`
	RiskStatus                RiskStatus `json:"risk_status" db:"risk_status"`
	NextRestockRecommendation int        `json:"next_restock_recommendation" db:"next_restock_recommendation"`
	Reason                    string     `json:"reason" db:"reason"`
	PredictionDate            string     `json:"prediction_date" db:"prediction_date"`
}

// PredictionSummary holds the dashboard view of stored predictions
type PredictionSummary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Safe     int `json:"safe"`
}

// PredictionDashboard is the summary plus the riskiest products
type PredictionDashboard struct {
	Summary  PredictionSummary  `json:"summary"`
	TopRisky []PredictionRecord `json:"top_risky"`
}
