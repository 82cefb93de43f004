package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"text/template"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/Masterminds/sprig/v3"
)

// Envelope is the default body of a delivery.
type Envelope struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// ValidateTemplate parses tmpl with the sprig function map.
func ValidateTemplate(tmpl string) error {
	if tmpl == "" {
		return nil
	}
	if _, err := parse(tmpl); err != nil {
		return errors.Detail(errors.ErrInvalidTemplate, "%v", err)
	}
	return nil
}

func parse(tmpl string) (*template.Template, error) {
	return template.New("payload").Funcs(sprig.FuncMap()).Option("missingkey=zero").Parse(tmpl)
}

// Render builds the request body and its content type. Without a template
// the envelope is sent as JSON. Templates see the envelope through its JSON
// field names, e.g. {{ .data.title | upper }}.
func Render(tmpl string, env Envelope) ([]byte, string, error) {
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, "", err
	}
	if tmpl == "" {
		return raw, "application/json", nil
	}

	t, err := parse(tmpl)
	if err != nil {
		return nil, "", errors.Detail(errors.ErrInvalidTemplate, "%v", err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, "", errors.Detail(errors.ErrInvalidTemplate, "%v", err)
	}

	body := buf.Bytes()
	if json.Valid(body) {
		return body, "application/json", nil
	}
	return body, "text/plain; charset=utf-8", nil
}

// Sign returns the X-Webhook-Signature value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify is what a receiver does with the signature header.
func Verify(secret string, body []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}
