// Package chart renders the per-category pie images attached to day listings.
// Rendering is delegated to a QuickChart instance so the bot process stays
// free of image libraries.
package chart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/grafamedia/keuangan-bot/internal/apperrors"
	"github.com/grafamedia/keuangan-bot/internal/domain"
	"github.com/grafamedia/keuangan-bot/internal/ledger"
	"github.com/grafamedia/keuangan-bot/pkg/config"
	"github.com/grafamedia/keuangan-bot/pkg/metrics"
)

// Renderer produces a pie image for a category breakdown. Implementations
// must tolerate being called with at least one nonzero slice.
type Renderer interface {
	Pie(ctx context.Context, title string, totals []ledger.CategoryTotal) (*domain.ImageAttachment, error)
}

var sliceColors = []string{
	"#36A2EB", "#FF6384", "#FFCE56", "#4BC0C0", "#9966FF",
	"#FF9F40", "#8AC926", "#C9CBCF", "#FF5C8A", "#2EC4B6",
}

// QuickChart renders pies through a QuickChart HTTP endpoint. A circuit
// breaker keeps a dead renderer from stalling every day listing.
type QuickChart struct {
	baseURL string
	width   int
	height  int
	client  *http.Client
	breaker *apperrors.CircuitBreaker
	log     *slog.Logger
}

func NewQuickChart(cfg config.ChartConfig, log *slog.Logger) *QuickChart {
	return &QuickChart{
		baseURL: cfg.BaseURL,
		width:   cfg.Width,
		height:  cfg.Height,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: apperrors.NewCircuitBreaker(),
		log:     log,
	}
}

// Pie renders a pie whose slices are labeled with each category's share of
// the total, one decimal place.
func (q *QuickChart) Pie(ctx context.Context, title string, totals []ledger.CategoryTotal) (*domain.ImageAttachment, error) {
	cfgScript, err := pieConfig(title, totals)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]any{
		"chart":           cfgScript,
		"width":           q.width,
		"height":          q.height,
		"format":          "png",
		"backgroundColor": "white",
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling chart request: %w", err)
	}

	var image []byte
	err = q.breaker.Call(func() error {
		return apperrors.WithRetry(ctx, func() error {
			var postErr error
			image, postErr = q.post(ctx, payload)
			return postErr
		})
	})
	if err != nil {
		metrics.RecordChartRequest("error")
		return nil, err
	}

	metrics.RecordChartRequest("success")
	return &domain.ImageAttachment{MIME: "image/png", Data: image}, nil
}

func (q *QuickChart) post(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.baseURL+"/chart", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building chart request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("quickchart", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.NewExternalError("quickchart",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body))
	}

	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewExternalError("quickchart", err)
	}
	return image, nil
}

// pieConfig builds the Chart.js config as a script. The datalabels formatter
// has to be a function, so the config cannot be plain JSON.
func pieConfig(title string, totals []ledger.CategoryTotal) (string, error) {
	labels := make([]string, 0, len(totals))
	values := make([]int64, 0, len(totals))
	colors := make([]string, 0, len(totals))
	for i, t := range totals {
		labels = append(labels, t.Category)
		values = append(values, t.Total)
		colors = append(colors, sliceColors[i%len(sliceColors)])
	}

	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return "", fmt.Errorf("marshaling chart labels: %w", err)
	}
	valuesJSON, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshaling chart values: %w", err)
	}
	colorsJSON, err := json.Marshal(colors)
	if err != nil {
		return "", fmt.Errorf("marshaling chart colors: %w", err)
	}
	titleJSON, err := json.Marshal(title)
	if err != nil {
		return "", fmt.Errorf("marshaling chart title: %w", err)
	}

	return fmt.Sprintf(`{
  type: 'pie',
  data: {
    labels: %s,
    datasets: [{ data: %s, backgroundColor: %s }]
  },
  options: {
    plugins: {
      title: { display: true, text: %s },
      datalabels: {
        color: '#fff',
        font: { weight: 'bold' },
        formatter: (value, ctx) => {
          const total = ctx.chart.data.datasets[0].data.reduce((a, b) => a + b, 0);
          return (value / total * 100).toFixed(1) + '%%';
        }
      }
    }
  }
}`, labelsJSON, valuesJSON, colorsJSON, titleJSON), nil
}
