package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBatch = `{
	"products": [
		{"sku": "A1", "name": "Widget", "stock": 0},
		{"sku": "B2", "name": "Gadget", "stock": 100}
	],
	"sales": [
		{"product_sku": "B2", "date": "2024-02-10", "quantity_sold": 10},
		{"product_sku": "B2", "date": "2024-03-10", "quantity_sold": 10},
		{"product_sku": "B2", "date": "2024-04-10", "quantity_sold": 10},
		{"product_sku": "B2", "date": "2024-05-10", "quantity_sold": 10}
	]
}`

func testConfig() *config.Config {
	v := viper.New()
	config.SetDefaults(v)
	return config.FromViper(v)
}

func fixedClock() time.Time {
	return time.Date(2024, time.June, 15, 8, 30, 0, 0, time.UTC)
}

func TestRunPredictWritesRecords(t *testing.T) {
	var out bytes.Buffer
	err := runPredict(context.Background(), testConfig(), strings.NewReader(sampleBatch), &out, predictOptions{}, fixedClock)
	require.NoError(t, err)

	var records []domain.PredictionRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &records))
	require.Len(t, records, 2)

	assert.Equal(t, "A1", records[0].ProductSKU)
	assert.Equal(t, domain.RiskCritical, records[0].RiskStatus)
	assert.Equal(t, 5, records[0].PredictedDemand)
	assert.Equal(t, "2024-06-15T08:30:00Z", records[0].PredictionDate)

	assert.Equal(t, "B2", records[1].ProductSKU)
	assert.Equal(t, domain.RiskSafe, records[1].RiskStatus)
	assert.Equal(t, 10, records[1].PredictedDemand)
}

func TestRunPredictIsIdempotent(t *testing.T) {
	var first, second bytes.Buffer
	opts := predictOptions{ReferenceDate: "2024-10-20"}

	require.NoError(t, runPredict(context.Background(), testConfig(), strings.NewReader(sampleBatch), &first, opts, time.Now))
	require.NoError(t, runPredict(context.Background(), testConfig(), strings.NewReader(sampleBatch), &second, opts, time.Now))
	assert.Contains(t, first.String(), "Approaching Festival season")

	var a, b []domain.PredictionRecord
	require.NoError(t, json.Unmarshal(first.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Bytes(), &b))
	require.Len(t, a, 2)
	for i := range a {
		a[i].PredictionDate, b[i].PredictionDate = "", ""
	}
	assert.Equal(t, a, b)
}

func TestRunPredictStampsClockNotReferenceDate(t *testing.T) {
	var out bytes.Buffer
	opts := predictOptions{ReferenceDate: "2024-10-20"}
	require.NoError(t, runPredict(context.Background(), testConfig(), strings.NewReader(sampleBatch), &out, opts, fixedClock))

	var records []domain.PredictionRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &records))
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, "2024-06-15T08:30:00Z", r.PredictionDate)
	}
	assert.Contains(t, records[0].Reason, "Approaching Festival season")
}

func TestRunPredictEmptySales(t *testing.T) {
	var out bytes.Buffer
	err := runPredict(context.Background(), testConfig(), strings.NewReader(`{"products":[{"sku":"A1"}],"sales":[]}`), &out, predictOptions{}, fixedClock)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out.String())
}

func TestRunPredictErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		opts    predictOptions
		wantMsg string
	}{
		{"no input", "", predictOptions{}, "No input data provided"},
		{"malformed", "not json", predictOptions{}, "malformed payload"},
		{"bad reference date", sampleBatch, predictOptions{ReferenceDate: "tomorrow"}, "invalid reference date"},
		{"missing file", "", predictOptions{Input: filepath.Join(t.TempDir(), "missing.json")}, "failed to open input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := runPredict(context.Background(), testConfig(), strings.NewReader(tt.input), &out, tt.opts, fixedClock)
			require.Error(t, err)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
			assert.Contains(t, resp["error"], tt.wantMsg)
		})
	}
}

func TestRunPredictReadsInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleBatch), 0o600))

	var out bytes.Buffer
	err := runPredict(context.Background(), testConfig(), strings.NewReader(""), &out, predictOptions{Input: path}, fixedClock)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"product_sku":"B2"`)
}

func TestAppDefaultActionPredicts(t *testing.T) {
	var out bytes.Buffer
	app := newApp(strings.NewReader(sampleBatch), &out)

	require.NoError(t, app.Run([]string{"stockcast", "--reference-date", "2024-06-15"}))

	var records []domain.PredictionRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &records))
	assert.Len(t, records, 2)
}
