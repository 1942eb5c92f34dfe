package peer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	domainErrors "github.com/Zaqui712/B-FO/internal/domain/errors"
	"github.com/Zaqui712/B-FO/internal/domain/model"
)

const (
	receivePath    = "/api/receive/"
	defaultTimeout = 5 * time.Second
	maxErrorBody   = 1 << 10
)

// Client pushes status updates to the peer system.
type Client interface {
	SendStatus(ctx context.Context, update model.StatusUpdate) error
}

// HTTPClient implements Client via the peer's HTTP API.
type HTTPClient struct {
	endpoint   *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type envelope struct {
	Encomenda statusPayload `json:"encomenda"`
}

type statusPayload struct {
	RemoteID    any     `json:"encomendaSHID"`
	DeliveredAt *string `json:"dataEntrega"`
	Complete    bool    `json:"encomendaCompleta"`
}

// NewHTTPClient creates a peer client. Every request is bounded by timeout.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse peer url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("peer url must be absolute")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	endpoint := *parsed
	endpoint.Path = path.Join(endpoint.Path, receivePath) + "/"

	return &HTTPClient{
		endpoint: &endpoint,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// SendStatus posts the update. Any transport error or non-2xx answer is
// returned as a RemoteDeliveryError; there is no retry.
func (c *HTTPClient) SendStatus(ctx context.Context, update model.StatusUpdate) error {
	payload := envelope{Encomenda: statusPayload{RemoteID: update.RemoteID, Complete: update.Complete}}
	if update.DeliveredAt != nil {
		date := update.DeliveredAt.Format(model.DateLayout)
		payload.Encomenda.DeliveredAt = &date
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return &domainErrors.RemoteDeliveryError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return &domainErrors.RemoteDeliveryError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domainErrors.RemoteDeliveryError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	c.logger.Warn("peer rejected status update",
		slog.Int("status", resp.StatusCode),
		slog.Any("remote_id", update.RemoteID),
		slog.String("body", string(text)),
	)
	return &domainErrors.RemoteDeliveryError{
		StatusCode: resp.StatusCode,
		Err:        fmt.Errorf("peer responded %s", resp.Status),
	}
}
