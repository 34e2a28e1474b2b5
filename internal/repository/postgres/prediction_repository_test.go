package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
)

var predictionColumnNames = []string{
	"product_sku", "product_name", "current_stock", "predicted_demand", "confidence_level",
	"risk_status", "next_restock_recommendation", "reason", "prediction_date",
}

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &DB{DB: sqlx.NewDb(conn, "pgx"), sem: semaphore.NewWeighted(1)}, mock
}

func TestConnString(t *testing.T) {
	cfg := &config.DatabaseConfig{Host: "db", Port: "5433", User: "u", Password: "p", DBName: "stockcast", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=stockcast sslmode=disable", ConnString(cfg))

	cfg.URL = "postgres://u:p@db:5433/stockcast"
	assert.Equal(t, "postgres://u:p@db:5433/stockcast", ConnString(cfg))
}

func TestUpsertPredictions(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPredictionRepository(db)

	records := []domain.PredictionRecord{
		{ProductSKU: "A1", ProductName: "Widget", PredictedDemand: 5, ConfidenceLevel: 0.1, RiskStatus: domain.RiskCritical, NextRestockRecommendation: 6, Reason: "Out of stock", PredictionDate: "2024-06-15T00:00:00Z"},
		{ProductSKU: "B2", ProductName: "Gadget", CurrentStock: 100, PredictedDemand: 10, ConfidenceLevel: 0.4, RiskStatus: domain.RiskSafe, Reason: "Sufficient stock", PredictionDate: "2024-06-15T00:00:00Z"},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO predictions")
	prep.ExpectExec().
		WithArgs("A1", "Widget", 0, 5, 0.1, "CRITICAL", 6, "Out of stock", "2024-06-15T00:00:00Z").
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("B2", "Gadget", 100, 10, 0.4, "SAFE", 0, "Sufficient stock", "2024-06-15T00:00:00Z").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpsertPredictions(context.Background(), records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertPredictionsRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPredictionRepository(db)

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO predictions").
		ExpectExec().
		WillReturnError(errors.New("constraint violated"))
	mock.ExpectRollback()

	err := repo.UpsertPredictions(context.Background(), []domain.PredictionRecord{{ProductSKU: "A1"}})
	assert.ErrorContains(t, err, "A1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertNothing(t *testing.T) {
	db, mock := newMockDB(t)
	require.NoError(t, NewPredictionRepository(db).UpsertPredictions(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPredictions(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPredictionRepository(db)

	rows := sqlmock.NewRows(predictionColumnNames).
		AddRow("A1", "Widget", 0, 5, 0.1, "CRITICAL", 6, "Out of stock", "2024-06-15T00:00:00Z").
		AddRow("B2", "Gadget", 100, 10, 0.4, "SAFE", 0, "Sufficient stock", "2024-06-15T00:00:00Z")
	mock.ExpectQuery("SELECT (.+) FROM predictions ORDER BY product_sku").WillReturnRows(rows)

	records, err := repo.ListPredictions(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.RiskCritical, records[0].RiskStatus)
	assert.Equal(t, 100, records[1].CurrentStock)
	assert.Equal(t, 0.4, records[1].ConfidenceLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPredictionsBySKUs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPredictionRepository(db)

	records, err := repo.GetPredictionsBySKUs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, records)

	rows := sqlmock.NewRows(predictionColumnNames).
		AddRow("B2", "Gadget", 100, 10, 0.4, "SAFE", 0, "Sufficient stock", "2024-06-15T00:00:00Z")
	mock.ExpectQuery(`WHERE product_sku = ANY\(\$1::text\[\]\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	records, err = repo.GetPredictionsBySKUs(context.Background(), []string{"B2"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "B2", records[0].ProductSKU)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS predictions").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
