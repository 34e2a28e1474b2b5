package risk

import (
	"fmt"
	"math"
	"strings"

	"github.com/andresuchdata/stockcast/internal/domain"
)

const (
	reasonOutOfStock      = "Out of stock"
	reasonCloseToDemand   = "Stock is close to predicted demand"
	reasonSufficientStock = "Sufficient stock"
	reasonSeparator       = "; "
)

// Policy holds the stock-versus-demand thresholds.
type Policy struct {
	CriticalRatio  float64  // stock below CriticalRatio × demand is critical
	WarningRatio   float64  // stock below WarningRatio × demand is a warning
	SafetyBuffer   float64  // extra share of demand added to restock orders
	SeasonalAlerts []string // seasons that add an "Approaching" reason
}

// DefaultPolicy returns the standard risk policy.
func DefaultPolicy() Policy {
	return Policy{
		CriticalRatio:  0.5,
		WarningRatio:   1.2,
		SafetyBuffer:   0.2,
		SeasonalAlerts: []string{"Festival", "Summer"},
	}
}

// Classifier turns a demand forecast and current stock into a risk tier and
// restock recommendation.
type Classifier struct {
	policy Policy
}

// NewClassifier creates a classifier for the given policy.
func NewClassifier(policy Policy) *Classifier {
	return &Classifier{policy: policy}
}

// Classify evaluates the rules in order; the first match sets the tier and
// primary reason, the seasonal reason is appended independently.
func (c *Classifier) Classify(demand, stock int, nextSeason string) domain.RiskAssessment {
	assessment := domain.RiskAssessment{Status: domain.RiskSafe}
	d, s := float64(demand), float64(stock)

	switch {
	case demand > stock:
		if stock == 0 {
			assessment.Status = domain.RiskCritical
			assessment.Reasons = append(assessment.Reasons, reasonOutOfStock)
		} else {
			assessment.Status = domain.RiskWarning
			if s < c.policy.CriticalRatio*d {
				assessment.Status = domain.RiskCritical
			}
			assessment.Reasons = append(assessment.Reasons,
				fmt.Sprintf("Stock (%d) < Predicted Demand (%d)", stock, demand))
		}
		assessment.Restock = demand - stock + int(math.Floor(c.policy.SafetyBuffer*d))

	case s < c.policy.WarningRatio*d:
		assessment.Status = domain.RiskWarning
		assessment.Reasons = append(assessment.Reasons, reasonCloseToDemand)
		assessment.Restock = int(math.Round(c.policy.WarningRatio*d)) - stock
	}

	if assessment.Restock < 0 {
		assessment.Restock = 0
	}

	if c.seasonalAlert(nextSeason) {
		assessment.Reasons = append(assessment.Reasons, fmt.Sprintf("Approaching %s season", nextSeason))
	}

	return assessment
}

// Reason joins the assessment reasons, or reports sufficient stock when there are none.
func Reason(a domain.RiskAssessment) string {
	if len(a.Reasons) == 0 {
		return reasonSufficientStock
	}
	return strings.Join(a.Reasons, reasonSeparator)
}

func (c *Classifier) seasonalAlert(season string) bool {
	for _, s := range c.policy.SeasonalAlerts {
		if strings.EqualFold(s, season) {
			return true
		}
	}
	return false
}
