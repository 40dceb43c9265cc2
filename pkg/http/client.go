package http

import (
	"fmt"
	"net/http"
	"time"

	commonshttp "github.com/flanksource/commons/http"
	"github.com/flanksource/commons/logger"
)

// ClientOption configures the HTTP client
type ClientOption func(*clientConfig)

type clientConfig struct {
	timeout            time.Duration
	headerLevel        logger.LogLevel
	bodyLevel          logger.LogLevel
	enableLogger       bool
	insecureSkipVerify bool
	onRedirect         func(from, to string)
}

// WithTimeout bounds a whole request including reading the body, zero disables it
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithHttpLogging enables HTTP logging with specified levels
func WithHttpLogging(headerLevel, bodyLevel logger.LogLevel) ClientOption {
	return func(c *clientConfig) {
		c.headerLevel = headerLevel
		c.bodyLevel = bodyLevel
		c.enableLogger = true
	}
}

// WithInsecureSkipVerify disables certificate and hostname verification for
// this client only. Other clients and the process defaults are unaffected.
func WithInsecureSkipVerify(insecure bool) ClientOption {
	return func(c *clientConfig) {
		c.insecureSkipVerify = insecure
	}
}

// WithRedirectHook is called for every redirect followed
func WithRedirectHook(fn func(from, to string)) ClientOption {
	return func(c *clientConfig) {
		c.onRedirect = fn
	}
}

// GetHttpClient returns a configured HTTP client suitable for general use.
// It uses flanksource/commons/http for consistent logging and middleware support.
// Header logging is enabled at Trace1 and body logging at Trace2 when tracing is on.
func GetHttpClient(opts ...ClientOption) *http.Client {
	cfg := &clientConfig{
		timeout:      5 * time.Minute,
		headerLevel:  logger.Trace1,
		bodyLevel:    logger.Trace2,
		enableLogger: logger.IsTraceEnabled(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.insecureSkipVerify {
		logger.Warnf("TLS certificate verification is disabled for this download")
	}

	// commons skips verification for https requests when no TLS config is set.
	// Redirects are followed by the outer client so the hook sees every hop.
	client := commonshttp.NewClient().
		Timeout(cfg.timeout).
		InsecureSkipVerify(cfg.insecureSkipVerify).
		RedirectPolicy(0)
	if cfg.enableLogger {
		client = client.WithHttpLogging(cfg.headerLevel, cfg.bodyLevel)
	}

	return &http.Client{
		Transport:     client,
		Timeout:       cfg.timeout,
		CheckRedirect: checkRedirect(cfg.onRedirect),
	}
}

func checkRedirect(hook func(from, to string)) func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return fmt.Errorf("too many redirects (limit: 10)")
		}
		if hook != nil && len(via) > 0 {
			hook(via[len(via)-1].URL.String(), req.URL.String())
		}
		return nil
	}
}
