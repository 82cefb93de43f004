package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	ctxutil "github.com/InventorsDev/inventor-backend-sub000/pkg/context"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/metrics"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/pool"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const redacted = "[REDACTED]"

// Patterns for secrets in bodies that cannot be decoded, such as truncated
// JSON or form posts. A JSON value cut off by truncation matches up to the end.
var (
	sensitiveJSON = regexp.MustCompile(`(?i)("(?:` + sensitiveAlternation() + `)"\s*:\s*)("(?:[^"\\]|\\.)*(?:"|$)|[^,}\]\s]+)`)
	sensitiveForm = regexp.MustCompile(`(?i)((?:^|[&?])(?:` + sensitiveAlternation() + `)=)[^&]*`)
)

func sensitiveAlternation() string {
	quoted := make([]string, 0, len(constants.SensitiveFields))
	for _, f := range constants.SensitiveFields {
		quoted = append(quoted, regexp.QuoteMeta(f))
	}
	return strings.Join(quoted, "|")
}

// scrub replaces sensitive values in text that could not be decoded.
func scrub(body []byte) []byte {
	body = sensitiveJSON.ReplaceAll(body, []byte(`${1}"`+redacted+`"`))
	return sensitiveForm.ReplaceAll(body, []byte("${1}"+redacted))
}

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry *model.DataLog) error
}

// bodyWriter keeps a copy of the first limit bytes of the response.
type bodyWriter struct {
	gin.ResponseWriter
	buf   bytes.Buffer
	limit int
	total int
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	w.capture(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *bodyWriter) capture(b []byte) {
	w.total += len(b)
	if room := w.limit - w.buf.Len(); room > 0 {
		if len(b) > room {
			b = b[:room]
		}
		w.buf.Write(b)
	}
}

// Audit records every request as a data log entry. Entries are written by
// the worker pool after the response is sent; when the pool is saturated
// the entry is dropped and counted.
func Audit(recorder AuditRecorder, workers *pool.Pool, m *metrics.Metrics, log *logger.Logger) gin.HandlerFunc {
	limit := constants.MaxAuditBodyBytes

	return func(c *gin.Context) {
		start := time.Now()

		var reqBody []byte
		if c.Request.Body != nil {
			// read one extra byte to detect truncation
			reqBody, _ = io.ReadAll(io.LimitReader(c.Request.Body, int64(limit)+1))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(reqBody), c.Request.Body))
		}

		w := &bodyWriter{ResponseWriter: c.Writer, limit: limit + 1}
		c.Writer = w

		c.Next()

		ctx := c.Request.Context()
		userID := c.GetString(constants.GinKeyUserID)
		if userID == "" {
			userID = ctxutil.GetUserID(ctx)
		}

		entry := &model.DataLog{
			ID:           uuid.New(),
			RequestID:    ctxutil.GetRequestID(ctx),
			Method:       c.Request.Method,
			Path:         c.Request.URL.Path,
			Query:        queryJSON(c.Request.URL.Query()),
			RequestBody:  bodyJSON(reqBody, limit),
			ResponseBody: bodyJSON(w.buf.Bytes(), limit),
			StatusCode:   w.Status(),
			LatencyMs:    time.Since(start).Milliseconds(),
			ClientIP:     c.ClientIP(),
			UserAgent:    ctxutil.GetUserAgent(ctx),
			UserID:       userID,
			CreatedAt:    start.UTC(),
		}

		err := workers.Submit(ctx, func(ctx context.Context) {
			if err := recorder.Record(ctx, entry); err != nil {
				log.ErrorWithContext(ctx, "Failed to write audit entry").
					String("data_log_id", entry.ID.String()).
					Err(err).
					Log()
			}
		})
		if err != nil {
			if m != nil && errors.Is(err, pool.ErrSaturated) {
				m.AuditDropped()
			}
			log.WarnWithContext(ctx, "Audit entry dropped").
				Path(entry.Path).
				Err(err).
				Log()
		}
	}
}

func queryJSON(q map[string][]string) datatypes.JSON {
	if len(q) == 0 {
		return nil
	}
	out := make(map[string]any, len(q))
	for k, v := range q {
		if isSensitive(k) {
			out[k] = redacted
			continue
		}
		if len(v) == 1 {
			out[k] = v[0]
		} else {
			out[k] = v
		}
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// bodyJSON turns a captured body into storable JSON. JSON bodies are kept
// with secrets redacted; anything else, or anything longer than limit, is
// scrubbed and stored as a string truncated to limit bytes.
func bodyJSON(body []byte, limit int) datatypes.JSON {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}

	if len(body) <= limit {
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			raw, err := json.Marshal(redact(v))
			if err == nil {
				return datatypes.JSON(raw)
			}
		}
	}

	body = scrub(body)
	truncated := len(body) > limit
	if truncated {
		body = body[:limit]
	}
	raw, err := json.Marshal(map[string]any{
		"raw":       strings.ToValidUTF8(string(body), ""),
		"truncated": truncated,
	})
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func redact(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if isSensitive(k) {
				t[k] = redacted
			} else {
				t[k] = redact(val)
			}
		}
		return t
	case []any:
		for i := range t {
			t[i] = redact(t[i])
		}
		return t
	default:
		return v
	}
}

func isSensitive(key string) bool {
	for _, f := range constants.SensitiveFields {
		if strings.EqualFold(key, f) {
			return true
		}
	}
	return false
}
