package report

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Reporter is the error-tracking sink. Capture is fire-and-forget: it must
// never block the pipeline, whatever the collector is doing.
type Reporter interface {
	Capture(err error, tags map[string]string)
	Close()
}

// event is the JSON body posted to the collector.
type event struct {
	Message   string            `json:"message"`
	Tags      map[string]string `json:"tags,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// HTTPReporter ships error events to a collector endpoint from a single
// background goroutine. The buffer is drop-on-overflow: losing an error
// event is preferable to stalling a worker on the collector.
type HTTPReporter struct {
	url        string
	httpClient *http.Client
	events     chan event
	done       chan struct{}
	logger     *zap.Logger
}

func NewHTTPReporter(url string, timeout time.Duration, logger *zap.Logger) *HTTPReporter {
	r := &HTTPReporter{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		events:     make(chan event, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
	go r.loop()
	return r
}

func (r *HTTPReporter) Capture(err error, tags map[string]string) {
	if err == nil {
		return
	}
	select {
	case r.events <- event{Message: err.Error(), Tags: tags, Timestamp: time.Now().UTC()}:
	default:
		r.logger.Warn("error report dropped: buffer full")
	}
}

// Close stops the background goroutine after draining buffered events.
func (r *HTTPReporter) Close() {
	close(r.events)
	<-r.done
}

func (r *HTTPReporter) loop() {
	defer close(r.done)
	for ev := range r.events {
		r.post(ev)
	}
}

func (r *HTTPReporter) post(ev event) {
	body, err := json.Marshal(ev)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.httpClient.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Warn("error report delivery failed", zap.Error(err))
		return
	}
	resp.Body.Close()
}

// Noop discards every event; used in tests and when no collector is
// configured.
type Noop struct{}

func (Noop) Capture(error, map[string]string) {}
func (Noop) Close()                           {}

var (
	_ Reporter = (*HTTPReporter)(nil)
	_ Reporter = Noop{}
)
