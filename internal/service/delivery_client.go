package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vhvplatform/go-webhook-scheduler/internal/domain"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/logger"
)

const maxErrorBodySize = 4096

// DeliveryClient performs single outbound webhook calls. It never retries;
// a failed attempt is terminal for that firing.
type DeliveryClient struct {
	client *http.Client
	log    *logger.Logger
}

// NewDeliveryClient creates a new delivery client with a bounded per-call
// timeout
func NewDeliveryClient(timeout time.Duration, log *logger.Logger) *DeliveryClient {
	return &DeliveryClient{
		client: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Deliver posts the payload to url and classifies the outcome. A timed-out
// call is indistinguishable from any other transport failure: no status
// code, error set to the transport description.
func (c *DeliveryClient) Deliver(ctx context.Context, url string, payload domain.WirePayload) domain.DeliveryResult {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.DeliveryResult{Success: false, Error: fmt.Sprintf("failed to marshal payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.DeliveryResult{Success: false, Error: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Webhook-Scheduler-Service/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("Webhook transport failure", "url", url, "error", err)
		return domain.DeliveryResult{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return domain.DeliveryResult{Success: true, StatusCode: &code}
	}

	return domain.DeliveryResult{
		Success:    false,
		StatusCode: &code,
		Error:      readErrorBody(resp.Body, code),
	}
}

// readErrorBody extracts the message from a Discord-style error response,
// falling back to a generic HTTP error string when the body is not parseable.
func readErrorBody(body io.Reader, code int) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
	if err == nil {
		var apiErr struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return fmt.Sprintf("HTTP %d", code)
}
