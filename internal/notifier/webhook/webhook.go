package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/shake819/remind-api/pkg/circuitbreaker"
	apperrors "github.com/shake819/remind-api/pkg/errors"
)

type Config struct {
	URL string `mapstructure:"url"`
	// RPS throttles deliveries below the platform's webhook rate limit.
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// Notifier posts messages to a chat-platform webhook. Deliveries are
// throttled with a token bucket and guarded by a circuit breaker so a dead
// endpoint fails fast instead of timing out once per event in the batch.
type Notifier struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	breaker *circuitbreaker.CircuitBreaker
}

func New(cfg Config) *Notifier {
	if cfg.RPS <= 0 {
		cfg.RPS = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	return &Notifier{
		url:     cfg.URL,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "webhook",
			MaxFailures: 3,
			Timeout:     30 * time.Second,
		}),
	}
}

type message struct {
	Content string `json:"content"`
}

func (n *Notifier) Deliver(ctx context.Context, text string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return apperrors.DeliveryFailure(err)
	}

	err := n.breaker.Execute(func() error {
		payload, err := json.Marshal(message{Content: text})
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, body)
		}
		return nil
	})
	if err != nil {
		return apperrors.DeliveryFailure(err)
	}
	return nil
}
