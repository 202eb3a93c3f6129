package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kestrelmem/semanticmemory/internal/logging"
	"go.uber.org/zap"
)

// Service implements embedding.Service using the OpenAI embeddings API.
type Service struct {
	endpoint   string
	model      string
	apiKeyEnv  string
	client     *http.Client
	dimensions int

	maxRetries  int
	baseBackoff time.Duration
}

// Option customizes a Service beyond its required constructor
// arguments.
type Option func(*Service)

// WithTimeout overrides the http.Client's request timeout. Default 30s.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.client.Timeout = d }
}

// WithRetry overrides the retry budget and base backoff. Default 2
// retries (3 attempts total) with a 100ms base.
func WithRetry(maxRetries int, baseBackoff time.Duration) Option {
	return func(s *Service) {
		s.maxRetries = maxRetries
		s.baseBackoff = baseBackoff
	}
}

// New creates a new OpenAI embedding service.
func New(endpoint string, model string, apiKeyEnvName string, dimensions int, opts ...Option) *Service {
	s := &Service{
		endpoint:    endpoint,
		model:       model,
		apiKeyEnv:   apiKeyEnvName,
		client:      &http.Client{Timeout: 30 * time.Second},
		dimensions:  dimensions,
		maxRetries:  2,
		baseBackoff: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dimensions implements embedding.Service.
func (s *Service) Dimensions() int {
	return s.dimensions
}

// Get implements embedding.Service.
func (s *Service) Get(ctx context.Context, text string) ([]float32, error) {
	return s.getEmbedding(ctx, text)
}

func (s *Service) getEmbedding(ctx context.Context, input string) ([]float32, error) {
	requestBody := EmbeddingRequest{
		Model:          s.model,
		Input:          input,
		EncodingFormat: "float",
		Dimensions:     int32(s.dimensions),
	}
	requestBodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("fail to marshal embedding request body: %w", err)
	}
	apiKey := os.Getenv(s.apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("empty api key from env: %s", s.apiKeyEnv)
	}

	resp, err := s.doWithRetry(ctx, requestBodyBytes, func(ctx context.Context, body []byte) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(body))
		if err != nil {
			return nil, fmt.Errorf("fail to create embedding request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return s.client.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("fail to do embedding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fail to read embedding response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		logging.FromContext(ctx).Warn("embedding request failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("embedding request fail: (%d) %s", resp.StatusCode, body)
	}
	var respBody EmbeddingResponse
	if err := json.Unmarshal(body, &respBody); err != nil {
		return nil, fmt.Errorf("fail to unmarshal embedding response: %w", err)
	}
	if len(respBody.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response data")
	}
	return respBody.Data[0].Embedding, nil
}

// doWithRetry wraps an HTTP call with retry logic: retry only on
// transient network errors, 408, 429, and 5xx, honor Retry-After, and back
// off with full jitter between attempts.
func (s *Service) doWithRetry(
	ctx context.Context,
	body []byte,
	do func(ctx context.Context, body []byte) (*http.Response, error),
) (*http.Response, error) {
	log := logging.FromContext(ctx)
	var lastErr error
	maxAttempts := s.maxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := do(ctx, body)

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			if !isTransientNetError(err) {
				return nil, err
			}
			lastErr = err
		} else if !shouldRetryStatus(resp.StatusCode) {
			return resp, nil
		} else {
			lastErr = fmt.Errorf("embedding upstream status %d", resp.StatusCode)
			retryAfter := parseRetryAfter(resp)
			if resp.Body != nil {
				resp.Body.Close()
			}
			if retryAfter > 0 && attempt < maxAttempts-1 {
				log.Debug("honoring Retry-After header", zap.Duration("wait", retryAfter))
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(retryAfter):
					continue
				}
			}
		}

		if attempt == maxAttempts-1 {
			break
		}

		backoff := computeBackoff(s.baseBackoff, attempt)
		log.Debug("backing off before embedding retry", zap.Int("attempt", attempt+1), zap.Duration("backoff", backoff), zap.Error(lastErr))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	if lastErr == nil {
		lastErr = errors.New("unknown embedding upstream error")
	}
	return nil, fmt.Errorf("max attempts (%d) exceeded: %w", maxAttempts, lastErr)
}

func isTransientNetError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTimeout || dnsErr.IsTemporary
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" || opErr.Op == "read" || opErr.Op == "write" {
			return true
		}
	}
	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{"connection refused", "connection reset", "broken pipe", "no such host"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

func shouldRetryStatus(status int) bool {
	switch {
	case status == http.StatusTooManyRequests, status == http.StatusRequestTimeout:
		return true
	case status >= 500 && status <= 599:
		return true
	default:
		return false
	}
}

func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && seconds > 0 {
		const maxRetryAfter = 5 * 60
		if seconds > maxRetryAfter {
			seconds = maxRetryAfter
		}
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(retryAfter); err == nil {
		if d := time.Until(t); d > 0 {
			const maxRetryAfter = 5 * time.Minute
			if d > maxRetryAfter {
				d = maxRetryAfter
			}
			return d
		}
	}
	return 0
}

// computeBackoff returns a full-jitter exponential backoff duration,
// capped at 5s so an embedding retry never dwarfs the request itself.
func computeBackoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	const maxExponent = 6
	if attempt > maxExponent {
		attempt = maxExponent
	}
	maxBackoff := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	const maxAllowed = 5 * time.Second
	if maxBackoff > maxAllowed {
		maxBackoff = maxAllowed
	}
	return time.Duration(rand.Float64() * float64(maxBackoff))
}
