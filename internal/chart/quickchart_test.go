package chart

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafamedia/keuangan-bot/internal/ledger"
	"github.com/grafamedia/keuangan-bot/pkg/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRenderer(baseURL string) *QuickChart {
	return NewQuickChart(config.ChartConfig{
		Enabled: true,
		BaseURL: baseURL,
		Width:   500,
		Height:  300,
		Timeout: 2 * time.Second,
	}, testLogger())
}

func TestQuickChart_Pie(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}

	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chart", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write(png)
	}))
	defer srv.Close()

	totals := []ledger.CategoryTotal{
		{Category: "Makan", Total: 25000},
		{Category: "Transport", Total: 15000},
	}

	img, err := testRenderer(srv.URL).Pie(context.Background(), "Pengeluaran 15/03/2025", totals)
	require.NoError(t, err)

	assert.Equal(t, "image/png", img.MIME)
	assert.Equal(t, png, img.Data)

	assert.Equal(t, float64(500), captured["width"])
	assert.Equal(t, float64(300), captured["height"])
	assert.Equal(t, "png", captured["format"])

	script, _ := captured["chart"].(string)
	assert.Contains(t, script, `"Makan"`)
	assert.Contains(t, script, `"Transport"`)
	assert.Contains(t, script, "25000")
	assert.Contains(t, script, "Pengeluaran 15/03/2025")
	assert.Contains(t, script, "toFixed(1)")
}

func TestQuickChart_Pie_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testRenderer(srv.URL).Pie(context.Background(), "Pemasukan", []ledger.CategoryTotal{
		{Category: "Gaji", Total: 50000},
	})
	assert.Error(t, err)
}
