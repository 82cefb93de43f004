package dto

import (
	"encoding/json"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
)

type DataLogResponse struct {
	ID           string          `json:"id"`
	RequestID    string          `json:"requestId"`
	Method       string          `json:"method"`
	Path         string          `json:"path"`
	Query        json.RawMessage `json:"query,omitempty"`
	RequestBody  json.RawMessage `json:"requestBody,omitempty"`
	ResponseBody json.RawMessage `json:"responseBody,omitempty"`
	StatusCode   int             `json:"statusCode"`
	LatencyMs    int64           `json:"latencyMs"`
	ClientIP     string          `json:"clientIp"`
	UserAgent    string          `json:"userAgent"`
	UserID       string          `json:"userId,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func NewDataLogResponse(d *model.DataLog) DataLogResponse {
	return DataLogResponse{
		ID:           d.ID.String(),
		RequestID:    d.RequestID,
		Method:       d.Method,
		Path:         d.Path,
		Query:        rawJSON(d.Query),
		RequestBody:  rawJSON(d.RequestBody),
		ResponseBody: rawJSON(d.ResponseBody),
		StatusCode:   d.StatusCode,
		LatencyMs:    d.LatencyMs,
		ClientIP:     d.ClientIP,
		UserAgent:    d.UserAgent,
		UserID:       d.UserID,
		CreatedAt:    d.CreatedAt,
	}
}

func rawJSON(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	return json.RawMessage(b)
}

type PurgeDataLogsRequest struct {
	OlderThanDays int `json:"olderThanDays" binding:"required,min=1,max=3650"`
}

type PurgeResponse struct {
	Deleted int64     `json:"deleted"`
	Cutoff  time.Time `json:"cutoff"`
}
