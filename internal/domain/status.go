package domain

import (
	"sort"
	"strings"
)

// RiskStatus is the restock risk tier of a product
type RiskStatus string

const (
	RiskSafe     RiskStatus = "SAFE"
	RiskWarning  RiskStatus = "WARNING"
	RiskCritical RiskStatus = "CRITICAL"
)

var riskSeverity = map[RiskStatus]int{
	RiskCritical: 0,
	RiskWarning:  1,
	RiskSafe:     2,
}

// Severity returns the sort rank of a status, lowest is most urgent.
func (s RiskStatus) Severity() int {
	if rank, ok := riskSeverity[s]; ok {
		return rank
	}

	return len(riskSeverity)
}

// ParseRiskStatus returns the status for a given label (case-insensitive).
func ParseRiskStatus(label string) (RiskStatus, bool) {
	status := RiskStatus(strings.ToUpper(strings.TrimSpace(label)))
	_, ok := riskSeverity[status]

	return status, ok
}

// SortBySeverity orders records CRITICAL first, then WARNING, then SAFE.
// Records of the same tier keep their relative order.
func SortBySeverity(records []PredictionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RiskStatus.Severity() < records[j].RiskStatus.Severity()
	})
}

// Summarize counts records per tier and picks the top n riskiest.
func Summarize(records []PredictionRecord, n int) PredictionDashboard {
	sorted := append([]PredictionRecord(nil), records...)
	SortBySeverity(sorted)

	n = max(0, min(n, len(sorted)))
	dashboard := PredictionDashboard{
		Summary:  PredictionSummary{Total: len(sorted)},
		TopRisky: make([]PredictionRecord, 0, n),
	}
	for _, r := range sorted {
		switch r.RiskStatus {
		case RiskCritical:
			dashboard.Summary.Critical++
		case RiskWarning:
			dashboard.Summary.Warning++
		case RiskSafe:
			dashboard.Summary.Safe++
		}
	}

	dashboard.TopRisky = append(dashboard.TopRisky, sorted[:n]...)

	return dashboard
}
