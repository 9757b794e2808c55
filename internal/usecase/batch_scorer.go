package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"ChurnPull/internal/domain/models"
	domrepo "ChurnPull/internal/domain/repository"
	xhttp "ChurnPull/pkg/http"
)

// Input columns read from a batch CSV. Any other column is ignored.
var batchColumns = []string{
	"CreditScore", "Geography", "Gender", "Age", "Tenure", "Balance",
	"NumOfProducts", "HasCrCard", "IsActiveMember", "EstimatedSalary",
}

// ErrTooManyRows is returned when a CSV exceeds the configured row limit.
var ErrTooManyRows = errors.New("batch exceeds row limit")

// BatchScorer scores every row of an uploaded customer CSV.
type BatchScorer struct {
	predictor *ChurnPredictor
	maxRows   int
	metrics   domrepo.Metrics
}

func NewBatchScorer(p *ChurnPredictor, maxRows int, metrics domrepo.Metrics) *BatchScorer {
	if maxRows <= 0 {
		maxRows = 1000
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &BatchScorer{predictor: p, maxRows: maxRows, metrics: metrics}
}

// ScoreCSV reads a header row followed by customer rows. Row errors are
// reported per row and do not stop the batch; a malformed header, a CSV
// syntax error or exceeding the row limit fails the whole call.
func (b *BatchScorer) ScoreCSV(ctx context.Context, r io.Reader) (*models.BatchResult, error) {
	start := time.Now()
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv is empty")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	res := &models.BatchResult{Rows: make([]models.BatchRow, 0, 64)}
	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", row, err)
		}
		if row > b.maxRows {
			return nil, fmt.Errorf("%w of %d", ErrTooManyRows, b.maxRows)
		}

		res.Total++
		out := models.BatchRow{Row: row}
		pred, err := b.scoreRecord(ctx, rec, idx)
		if err != nil {
			res.Failed++
			out.Error = err.Error()
		} else {
			res.Scored++
			if pred.Churn {
				res.Churned++
			}
			out.Prediction = pred
		}
		res.Rows = append(res.Rows, out)
	}

	b.metrics.RecordLatency("batch", time.Since(start).Seconds())
	return res, nil
}

func (b *BatchScorer) scoreRecord(ctx context.Context, rec []string, idx map[string]int) (*models.Prediction, error) {
	in, err := parseRecord(rec, idx)
	if err != nil {
		return nil, err
	}
	if verrs := xhttp.ValidateStruct(ctx, &in); verrs != nil {
		return nil, &InputError{Errors: verrs}
	}
	return b.predictor.Predict(ctx, in)
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(batchColumns))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, c := range batchColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv header is missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRecord(rec []string, idx map[string]int) (models.CustomerInput, error) {
	get := func(col string) string {
		i := idx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var in models.CustomerInput
	var err error
	if in.CreditScore, err = parseInt("CreditScore", get("CreditScore")); err != nil {
		return in, err
	}
	if in.Age, err = parseInt("Age", get("Age")); err != nil {
		return in, err
	}
	if in.Tenure, err = parseInt("Tenure", get("Tenure")); err != nil {
		return in, err
	}
	if in.NumOfProducts, err = parseInt("NumOfProducts", get("NumOfProducts")); err != nil {
		return in, err
	}
	if in.Balance, err = parseFloat("Balance", get("Balance")); err != nil {
		return in, err
	}
	if in.EstimatedSalary, err = parseFloat("EstimatedSalary", get("EstimatedSalary")); err != nil {
		return in, err
	}
	if in.HasCrCard, err = parseYesNo("HasCrCard", get("HasCrCard")); err != nil {
		return in, err
	}
	if in.IsActiveMember, err = parseYesNo("IsActiveMember", get("IsActiveMember")); err != nil {
		return in, err
	}
	in.Geography = get("Geography")
	in.Gender = get("Gender")
	return in, nil
}

// parseInt accepts integral floats such as "650.0" written by pandas.
func parseInt(col, s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%s: value is required", col)
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("%s: %q is not an integer", col, s)
	}
	return int(f), nil
}

func parseFloat(col, s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%s: value is required", col)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", col, s)
	}
	return f, nil
}

func parseYesNo(col, s string) (string, error) {
	switch strings.ToLower(s) {
	case "1", "yes", "true", "1.0":
		return models.Yes, nil
	case "0", "no", "false", "0.0":
		return models.No, nil
	case "":
		return "", fmt.Errorf("%s: value is required", col)
	}
	return "", fmt.Errorf("%s: %q is not a yes/no value", col, s)
}
