package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Reporter delivers failed-request reports to an external collector.
// Deliveries are fire-and-forget: they run on their own goroutine with their
// own timeout and can never affect the caller's control flow.
type Reporter struct {
	url    string
	http   *http.Client
	logger zerolog.Logger
}

func NewReporter(url string, logger zerolog.Logger) *Reporter {
	return &Reporter{
		url:    url,
		http:   &http.Client{Timeout: 5 * time.Second},
		logger: logger,
	}
}

type errorReport struct {
	ID        string    `json:"id"`
	Endpoint  string    `json:"endpoint"`
	Status    int       `json:"status,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Report posts the failure asynchronously. Errors from the collector itself
// are logged at debug level and dropped.
func (r *Reporter) Report(endpoint string, reqErr *RequestError) {
	report := errorReport{
		ID:        uuid.New().String(),
		Endpoint:  endpoint,
		Status:    reqErr.Status,
		Message:   reqErr.Message,
		Timestamp: reqErr.Timestamp,
	}

	go func() {
		payload, err := json.Marshal(report)
		if err != nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := r.http.Do(req)
		if err != nil {
			r.logger.Debug().Err(err).Msg("error report delivery failed")
			return
		}
		resp.Body.Close()
	}()
}
