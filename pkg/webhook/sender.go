package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
)

const maxBackoff = 30 * time.Second

// StatusError is a non-2xx answer from the receiver.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("receiver answered %d", e.Code)
	}
	return fmt.Sprintf("receiver answered %d: %s", e.Code, e.Body)
}

// permanent reports whether retrying cannot change the answer.
func (e *StatusError) permanent() bool {
	return e.Code >= 400 && e.Code < 500 && e.Code != http.StatusTooManyRequests
}

type Request struct {
	URL         string
	Topic       string
	DeliveryID  string
	Secret      string
	ContentType string
	Body        []byte
}

// Sender POSTs signed payloads, retrying transport errors and 5xx answers
// with exponential backoff.
type Sender struct {
	client     *http.Client
	maxRetries int
	baseDelay  time.Duration
	log        *logger.Logger
}

func NewSender(client *http.Client, maxRetries int, baseDelay time.Duration, log *logger.Logger) *Sender {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Sender{client: client, maxRetries: maxRetries, baseDelay: baseDelay, log: log}
}

// Send returns the status code of the last attempt.
func (s *Sender) Send(ctx context.Context, req Request) (int, error) {
	backoff := s.baseDelay

	var status int
	var lastErr error
	for i := 0; i <= s.maxRetries; i++ {
		if ctx.Err() != nil {
			return status, ctx.Err()
		}

		status, lastErr = s.attempt(ctx, req)
		if lastErr == nil {
			return status, nil
		}
		if se, ok := lastErr.(*StatusError); ok && se.permanent() {
			return status, lastErr
		}
		if i == s.maxRetries {
			break
		}

		s.log.WarnWithContext(ctx, "Webhook attempt failed, retrying").
			String("url", req.URL).
			String("delivery_id", req.DeliveryID).
			Int("attempt", i+1).
			Int("max_retries", s.maxRetries).
			Duration(backoff).
			Err(lastErr).
			Log()

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return status, ctx.Err()
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return status, lastErr
}

func (s *Sender) attempt(ctx context.Context, req Request) (int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Content-Type", req.ContentType)
	httpReq.Header.Set("User-Agent", "inventors-webhooks/1")
	httpReq.Header.Set(constants.HeaderWebhookEvent, req.Topic)
	httpReq.Header.Set(constants.HeaderWebhookDelivery, req.DeliveryID)
	httpReq.Header.Set(constants.HeaderWebhookSignature, Sign(req.Secret, req.Body))

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, nil
	}
	return resp.StatusCode, &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
}
