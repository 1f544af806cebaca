package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/jgivc/radarfetch/internal/common"
	"github.com/jgivc/radarfetch/internal/config"
	"github.com/jgivc/radarfetch/internal/entity"
	"github.com/jgivc/radarfetch/internal/util"
	"github.com/sony/gobreaker"
)

const (
	breakerName     = "archive"
	imageMIMEPrefix = "image/"
)

// outcome separates "the archive is unhealthy" from "the archive answered
// but has no image for this hour". Only the former may trip the breaker or
// trigger a retry; a range with many missing hours is normal.
type outcome struct {
	data     []byte
	terminal error
}

type archiveClient struct {
	cfg     *config.ArchiveConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *slog.Logger
}

// NewArchiveClient builds a client for the radar image archive. The remote
// service is slow and occasionally unavailable, so every fetch goes through
// a circuit breaker and an exponential backoff retry policy.
func NewArchiveClient(cfg *config.ArchiveConfig, log *slog.Logger) *archiveClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval.Std(),
		Timeout:     cfg.BreakerTimeout.Std(),
	})

	return &archiveClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout.Std(),
		},
		breaker: cb,
		log:     log.With(slog.String("item", "ArchiveClient")),
	}
}

// FetchImage retrieves the image for one request and returns its bytes. Only
// a 2xx response with a non-empty body that sniffs as an image is accepted;
// the archive answers valid-looking requests for missing hours with an HTML
// page, which must never end up on disk as a .gif.
func (c *archiveClient) FetchImage(ctx context.Context, req entity.Request) ([]byte, error) {
	fetchURL := fmt.Sprintf("%s?%s", c.cfg.BaseURL, req.Query().Encode())
	log := c.log.With(slog.String("request_id", util.ShortID(fetchURL)))

	log.Debug("Fetch image", slog.String("url", fetchURL))

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.RetryInterval.Std()
	bo.MaxInterval = c.cfg.RetryMaxInterval.Std()

	var data []byte
	err := backoff.Retry(func() error {
		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.fetchOnce(ctx, fetchURL)
		})
		if err != nil {
			// An open breaker means the archive is down. Retrying this
			// hour would only keep it open longer.
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(err)
			}

			log.Warn("Fetch attempt failed", slog.Any("error", err))

			return err
		}

		o := result.(*outcome)
		if o.terminal != nil {
			return backoff.Permanent(o.terminal)
		}

		data = o.data

		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.Retries), ctx))
	if err != nil {
		return nil, err
	}

	return data, nil
}

// fetchOnce performs a single HTTP transaction. The returned error covers
// transport failures and 5xx only; anything the archive answered with is an
// outcome, terminal when the payload is unusable.
func (c *archiveClient) fetchOnce(ctx context.Context, fetchURL string) (*outcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return &outcome{terminal: fmt.Errorf("cannot build request: %w", err)}, nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("server error: %d", resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &outcome{terminal: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot read response body: %w", err)
	}

	if len(data) == 0 {
		return &outcome{terminal: common.ErrEmptyBody}, nil
	}

	if !strings.HasPrefix(http.DetectContentType(data), imageMIMEPrefix) {
		return &outcome{terminal: common.ErrNotAnImage}, nil
	}

	return &outcome{data: data}, nil
}
