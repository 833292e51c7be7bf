// ./internal/datafetcher/Polygon_test.go
package datafetcher

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indigo-labs/indy-rewards/internal/epoch"
)

func candleMillis(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).UnixMilli()
}

func aggsFixture() polygonAggsResponse {
	aggs := polygonAggsResponse{Status: "OK", QueryCount: 2, ResultsCount: 2}
	aggs.Results = []struct {
		T int64   `json:"t"`
		C float64 `json:"c"`
	}{
		{T: candleMillis(2023, 3, 25), C: 27500.5},
		{T: candleMillis(2023, 3, 26), C: 28000},
	}
	return aggs
}

func TestProcessAggsResponse(t *testing.T) {
	prices, err := processAggsResponse(aggsFixture(), "X:BTCUSD")
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, 27500.5, prices[epoch.Date(2023, 3, 25)])
	assert.Equal(t, 28000.0, prices[epoch.Date(2023, 3, 26)])
}

func TestProcessAggsResponseRejectsBadStatus(t *testing.T) {
	aggs := aggsFixture()
	aggs.Status = "DELAYED"
	_, err := processAggsResponse(aggs, "X:BTCUSD")
	assert.ErrorContains(t, err, "DELAYED")
}

func TestProcessAggsResponseRejectsCountMismatch(t *testing.T) {
	aggs := aggsFixture()
	aggs.QueryCount = 3
	_, err := processAggsResponse(aggs, "X:BTCUSD")
	assert.ErrorContains(t, err, "queryCount")
}

func TestProcessAggsResponseRejectsEmpty(t *testing.T) {
	aggs := polygonAggsResponse{Status: "OK"}
	_, err := processAggsResponse(aggs, "X:BTCUSD")
	assert.ErrorContains(t, err, "no prices")
}

func TestProcessAggsResponseRejectsIntradayCandle(t *testing.T) {
	aggs := aggsFixture()
	aggs.Results[0].T += 3600 * 1000
	_, err := processAggsResponse(aggs, "X:BTCUSD")
	assert.ErrorContains(t, err, "candle timestamp")
}

func TestProcessAggsResponseRejectsNonPositiveClose(t *testing.T) {
	aggs := aggsFixture()
	aggs.Results[1].C = 0
	_, err := processAggsResponse(aggs, "X:BTCUSD")
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func newTestPolygonClient(t *testing.T, handler http.HandlerFunc) *PolygonClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &PolygonClient{
		baseURL: srv.URL,
		apiKey:  "test-key",
		client:  srv.Client(),
		now:     func() time.Time { return time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestDailyClosingPrices(t *testing.T) {
	c := newTestPolygonClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v2/aggs/ticker/X:BTCUSD/range/1/day/2023-03-25/2023-03-26")
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		fmt.Fprintf(w, `{"status":"OK","queryCount":2,"resultsCount":2,"results":[`+
			`{"t":%d,"c":27500.5},{"t":%d,"c":28000}]}`,
			candleMillis(2023, 3, 25), candleMillis(2023, 3, 26))
	})

	prices, err := c.DailyClosingPrices("X:BTCUSD", epoch.Date(2023, 3, 25), epoch.Date(2023, 3, 26))
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, 27500.5, prices[epoch.Date(2023, 3, 25)])
}

func TestDailyClosingPricesMissingDayFails(t *testing.T) {
	c := newTestPolygonClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"status":"OK","queryCount":1,"resultsCount":1,"results":[{"t":%d,"c":27500.5}]}`,
			candleMillis(2023, 3, 25))
	})

	_, err := c.DailyClosingPrices("X:BTCUSD", epoch.Date(2023, 3, 25), epoch.Date(2023, 3, 26))
	assert.ErrorIs(t, err, ErrMissingPriceDay)
	assert.ErrorContains(t, err, "2023-03-26")
}

func TestDailyClosingPricesRejectsUnfinishedDay(t *testing.T) {
	c := newTestPolygonClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.DailyClosingPrices("X:BTCUSD", epoch.Date(2023, 3, 30), epoch.Date(2023, 4, 1))
	assert.ErrorIs(t, err, ErrUnfinishedDay)
}

func TestDailyClosingPricesRejectsReversedRange(t *testing.T) {
	c := newTestPolygonClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.DailyClosingPrices("X:BTCUSD", epoch.Date(2023, 3, 26), epoch.Date(2023, 3, 25))
	assert.ErrorContains(t, err, "can't be after")
}

func TestDailyClosingPricesNonOKStatus(t *testing.T) {
	c := newTestPolygonClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.DailyClosingPrices("X:BTCUSD", epoch.Date(2023, 3, 25), epoch.Date(2023, 3, 26))
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}
