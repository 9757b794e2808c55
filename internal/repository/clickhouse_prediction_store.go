package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"ChurnPull/internal/domain/models"
	domrepo "ChurnPull/internal/domain/repository"
	pkgch "ChurnPull/pkg/clickhouse"
	applogger "ChurnPull/pkg/logger"
)

const predictionColumns = "id, request_id, created_at, model, probability, threshold, churn, label, message, input, features"

// PredictionSchema returns the DDL for the prediction log table.
func PredictionSchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    id          String,
    request_id  String,
    created_at  DateTime64(3, 'UTC'),
    model       LowCardinality(String),
    probability Float64,
    threshold   Float64,
    churn       UInt8,
    label       LowCardinality(String),
    message     String,
    input       String,
    features    Array(Float64)
) ENGINE = MergeTree
PARTITION BY toYYYYMM(created_at)
ORDER BY (created_at, id)`, database, table),
	}
}

// CHPredictionStore appends predictions to a ClickHouse table.
type CHPredictionStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

var _ domrepo.PredictionStore = (*CHPredictionStore)(nil)

func NewCHPredictionStore(ch *pkgch.Client, table string, l *applogger.Logger) *CHPredictionStore {
	if l == nil {
		l = applogger.NewNop()
	}
	return &CHPredictionStore{db: ch.DB(), table: ch.Database() + "." + table, l: l}
}

func (s *CHPredictionStore) Store(ctx context.Context, p *models.Prediction) error {
	args, err := predictionArgs(p)
	if err != nil {
		return err
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table, predictionColumns)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		s.l.Error("clickhouse insert prediction",
			applogger.String("table", s.table),
			applogger.String("id", p.ID),
			applogger.Error(err),
		)
		return fmt.Errorf("store prediction: %w", err)
	}
	return nil
}

// Recent returns the newest predictions first.
func (s *CHPredictionStore) Recent(ctx context.Context, limit int) ([]*models.Prediction, error) {
	start := time.Now()
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC LIMIT ?", predictionColumns, s.table)
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("recent predictions: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Prediction, 0, limit)
	for rows.Next() {
		var (
			p     models.Prediction
			churn uint8
			input string
		)
		if err := rows.Scan(&p.ID, &p.RequestID, &p.CreatedAt, &p.Model, &p.Probability,
			&p.Threshold, &churn, &p.Label, &p.Message, &input, &p.Features); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		p.Churn = churn == 1
		if input != "" {
			var in models.CustomerInput
			if err := json.Unmarshal([]byte(input), &in); err == nil {
				p.Input = &in
			}
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	s.l.Debug("clickhouse recent predictions",
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *CHPredictionStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the pool belongs to pkg/clickhouse.Client.
func (s *CHPredictionStore) Close() error { return nil }

func predictionArgs(p *models.Prediction) ([]interface{}, error) {
	var input string
	if p.Input != nil {
		b, err := json.Marshal(p.Input)
		if err != nil {
			return nil, fmt.Errorf("marshal input: %w", err)
		}
		input = string(b)
	}
	var churn uint8
	if p.Churn {
		churn = 1
	}
	feats := p.Features
	if feats == nil {
		feats = []float64{}
	}
	return []interface{}{
		p.ID,
		p.RequestID,
		p.CreatedAt.UTC(),
		p.Model,
		p.Probability,
		p.Threshold,
		churn,
		p.Label,
		p.Message,
		input,
		feats,
	}, nil
}
