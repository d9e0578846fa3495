package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"orderreport/internal/metrics"
	"orderreport/internal/model"
)

var ErrRemoteFetch = errors.New("order source request failed")

// OrderSource fetches the full upstream order list in one request.
type OrderSource struct {
	url    string
	client *http.Client
}

func NewOrderSource(url string, timeout time.Duration) *OrderSource {
	return &OrderSource{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *OrderSource) Fetch(ctx context.Context) ([]model.RawOrder, error) {
	started := time.Now()
	defer func() { metrics.FetchDuration.Observe(time.Since(started).Seconds()) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrRemoteFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: do request: %v", ErrRemoteFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: unexpected status: %d, body: %s", ErrRemoteFetch, resp.StatusCode, string(body))
	}

	var orders []model.RawOrder
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrRemoteFetch, err)
	}
	metrics.OrdersFetched.Add(float64(len(orders)))
	return orders, nil
}
