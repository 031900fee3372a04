package remote

import (
	"context"
	"errors"
	"io"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/app/models"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/exceptions"
	"medbridge-service/internal/pkg/metrics"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Remote bodies larger than this are truncated.
const maxResponseBytes = 16 << 20

type Options struct {
	DefaultTimeout    time.Duration
	RequestsPerSecond float64
	Burst             int
}

type remoteFhirClient struct {
	HTTPClient *http.Client
	Log        *zap.Logger
	Metrics    *metrics.Metrics
	Options    Options

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

var (
	remoteFhirClientInstance contracts.FhirRemoteClient
	onceRemoteFhirClient     sync.Once
)

func NewRemoteFhirClient(logger *zap.Logger, m *metrics.Metrics, options Options) contracts.FhirRemoteClient {
	onceRemoteFhirClient.Do(func() {
		remoteFhirClientInstance = newRemoteFhirClient(&http.Client{}, logger, m, options)
	})
	return remoteFhirClientInstance
}

func newRemoteFhirClient(httpClient *http.Client, logger *zap.Logger, m *metrics.Metrics, options Options) *remoteFhirClient {
	if options.DefaultTimeout <= 0 {
		options.DefaultTimeout = 30 * time.Second
	}
	if options.Burst <= 0 {
		options.Burst = 1
	}
	return &remoteFhirClient{
		HTTPClient: httpClient,
		Log:        logger,
		Metrics:    m,
		Options:    options,
		limiters:   make(map[string]*rate.Limiter),
	}
}

func (c *remoteFhirClient) Fetch(ctx context.Context, target *models.FhirTarget) (*models.FhirResponse, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("remoteFhirClient.Fetch called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingURLKey, target.URL),
	)

	timeout := target.Timeout
	if timeout <= 0 {
		timeout = c.Options.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := strings.ToUpper(target.HTTPMethod)
	if method == "" {
		method = constvars.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target.URL, nil)
	if err != nil {
		c.Log.Error("remoteFhirClient.Fetch error creating HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationFHIRJSON)
	req.Header.Set(constvars.HeaderUserAgent, constvars.OutboundUserAgent)
	req.Header.Set(constvars.HeaderAcceptEncoding, constvars.OutboundAcceptEncoding)
	if target.APIKey != "" {
		req.Header.Set(constvars.HeaderAPIKey, target.APIKey)
	}
	if target.BearerToken != "" {
		req.Header.Set(constvars.HeaderAuthorization, constvars.AuthorizationBearerPrefix+target.BearerToken)
	}

	if limiter := c.limiterFor(req.URL.Host); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			c.Log.Error("remoteFhirClient.Fetch rate limiter wait aborted",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingURLKey, target.URL),
				zap.Error(err),
			)
			return nil, exceptions.ErrSendHTTPRequest(err)
		}
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Metrics.ObserveOutbound(metrics.OperationRemoteFetch, false, time.Since(start))
		c.Log.Error("remoteFhirClient.Fetch error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingURLKey, target.URL),
			zap.Bool("timeout", IsTimeout(err)),
			zap.Error(err),
		)
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	latency := time.Since(start)
	if err != nil {
		c.Metrics.ObserveOutbound(metrics.OperationRemoteFetch, false, latency)
		c.Log.Error("remoteFhirClient.Fetch error reading response body",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingURLKey, target.URL),
			zap.Error(err),
		)
		return nil, exceptions.ErrSendHTTPRequest(err)
	}

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	c.Metrics.ObserveOutbound(metrics.OperationRemoteFetch, success, latency)

	c.Log.Info("remoteFhirClient.Fetch succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingURLKey, target.URL),
		zap.Int(constvars.LoggingStatusCodeKey, resp.StatusCode),
		zap.Int64(constvars.LoggingLatencyMsKey, latency.Milliseconds()),
	)
	return &models.FhirResponse{
		StatusCode: resp.StatusCode,
		Status:     statusText(resp),
		Body:       body,
		Latency:    latency,
	}, nil
}

// readBody reads at most maxResponseBytes of the decoded response body.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get(constvars.HeaderContentEncoding))) {
	case constvars.EncodingBrotli:
		reader = brotli.NewReader(resp.Body)
	case constvars.EncodingGzip:
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}
	return io.ReadAll(io.LimitReader(reader, maxResponseBytes))
}

// limiterFor returns the shared limiter for a remote host, or nil when
// outbound pacing is disabled.
func (c *remoteFhirClient) limiterFor(host string) *rate.Limiter {
	if c.Options.RequestsPerSecond <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	limiter, ok := c.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(c.Options.RequestsPerSecond), c.Options.Burst)
		c.limiters[host] = limiter
	}
	return limiter
}

// statusText is the reason phrase without the numeric prefix.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		return http.StatusText(resp.StatusCode)
	}
	return text
}

// IsTimeout reports whether a Fetch error was caused by the call deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Cause is the innermost error text of a Fetch failure, suitable for
// operators.
func Cause(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
