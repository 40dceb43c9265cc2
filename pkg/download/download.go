package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/flanksource/bunup/pkg/utils"
	"github.com/flanksource/clicky/task"

	bunhttp "github.com/flanksource/bunup/pkg/http"
)

// PageTimeout bounds fetching a release page. Archive downloads are not
// time limited, only cancelled through their context.
const PageTimeout = 2 * time.Minute

// ErrDownload is returned for any failed fetch: transport errors, non-200
// responses and local write failures.
var ErrDownload = errors.New("download failed")

// DownloadOption is a functional option for configuring downloads
type DownloadOption func(*downloadConfig)

type downloadConfig struct {
	insecureSkipVerify bool
	skipProgress       bool
	simpleMode         bool
	client             *http.Client
}

// WithInsecureSkipVerify skips TLS verification for this fetch only
func WithInsecureSkipVerify(insecure bool) DownloadOption {
	return func(c *downloadConfig) {
		c.insecureSkipVerify = insecure
	}
}

// WithoutProgress disables progress tracking even if task is provided
func WithoutProgress() DownloadOption {
	return func(c *downloadConfig) {
		c.skipProgress = true
	}
}

// WithSimpleMode disables task/progress support for simple downloads
func WithSimpleMode() DownloadOption {
	return func(c *downloadConfig) {
		c.simpleMode = true
	}
}

// WithClient overrides the HTTP client, insecure settings are then ignored
func WithClient(client *http.Client) DownloadOption {
	return func(c *downloadConfig) {
		c.client = client
	}
}

func newConfig(opts []DownloadOption) *downloadConfig {
	config := &downloadConfig{}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

func (c *downloadConfig) httpClient(t *task.Task, timeout time.Duration) *http.Client {
	if c.client != nil {
		return c.client
	}
	return bunhttp.GetHttpClient(
		bunhttp.WithTimeout(timeout),
		bunhttp.WithInsecureSkipVerify(c.insecureSkipVerify),
		bunhttp.WithRedirectHook(func(from, to string) {
			if t != nil {
				t.V(4).Infof("Redirect: %s → %s", utils.ShortenURL(from), utils.ShortenURL(to))
			}
		}),
	)
}

// ProgressReader wraps an io.Reader and reports progress
type ProgressReader struct {
	io.Reader
	total      int64
	current    int64
	task       *task.Task
	lastUpdate time.Time
	startTime  time.Time
}

// NewProgressReader reports reads from r against total bytes (<= 0 when unknown) on t
func NewProgressReader(r io.Reader, total int64, t *task.Task) *ProgressReader {
	now := time.Now()
	return &ProgressReader{Reader: r, total: total, task: t, startTime: now, lastUpdate: now}
}

func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.Reader.Read(p)
	pr.current += int64(n)

	// Update progress at most once per 100ms to avoid excessive updates
	now := time.Now()
	if pr.task != nil && now.Sub(pr.lastUpdate) >= 100*time.Millisecond {
		if pr.total > 0 {
			pr.task.SetProgress(int(pr.current), int(pr.total))

			elapsed := now.Sub(pr.startTime).Seconds()
			if elapsed > 0 {
				speed := float64(pr.current) / elapsed
				remaining := pr.total - pr.current
				eta := time.Duration(float64(remaining) / speed * float64(time.Second))

				pr.task.SetDescription(fmt.Sprintf("%s/%s (%.1f MB/s, ETA: %s)",
					utils.FormatBytes(pr.current),
					utils.FormatBytes(pr.total),
					speed/1024/1024,
					formatDuration(eta)))
			}
		} else {
			pr.task.SetDescription(fmt.Sprintf("Downloaded %s", utils.FormatBytes(pr.current)))
		}
		pr.lastUpdate = now
	}

	return n, err
}

// Current returns the number of bytes read so far
func (pr *ProgressReader) Current() int64 {
	return pr.current
}

func downloadError(url, dest string, err error) error {
	return fmt.Errorf("%w: %s -> %s: %w", ErrDownload, url, dest, err)
}

// Download streams url into dest. The parent directories of dest are created,
// the body is written to dest.tmp and renamed over dest once complete, so an
// existing file is replaced only by a full download. A single attempt is made.
func Download(ctx context.Context, url, dest string, t *task.Task, opts ...DownloadOption) error {
	config := newConfig(opts)
	if config.simpleMode {
		t = nil
	}

	destDir := filepath.Dir(dest)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return downloadError(url, dest, fmt.Errorf("failed to create directory %s: %w", destDir, err))
	}

	utils.LogDownloadStart(t, url, dest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return downloadError(url, dest, err)
	}

	resp, err := config.httpClient(t, 0).Do(req)
	if err != nil {
		return downloadError(url, dest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return downloadError(url, dest, fmt.Errorf("HTTP %s", resp.Status))
	}

	if t != nil && resp.ContentLength > 0 {
		t.SetDescription(fmt.Sprintf("Downloading (%s)", utils.FormatBytes(resp.ContentLength)))
	}

	tempFile := dest + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return downloadError(url, dest, fmt.Errorf("failed to create temp file %s: %w", tempFile, err))
	}
	defer func() {
		_ = out.Close()
		// Clean up temp file if it still exists (not renamed)
		if _, err := os.Stat(tempFile); err == nil {
			_ = os.Remove(tempFile)
		}
	}()

	var reader io.Reader = resp.Body
	if t != nil && !config.skipProgress {
		reader = NewProgressReader(resp.Body, resp.ContentLength, t)
	}

	written, err := io.Copy(out, reader)
	if err != nil {
		return downloadError(url, dest, err)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		return downloadError(url, dest, fmt.Errorf("short body: got %d of %d bytes", written, resp.ContentLength))
	}
	if err := out.Close(); err != nil {
		return downloadError(url, dest, err)
	}

	if err := os.Rename(tempFile, dest); err != nil {
		return downloadError(url, dest, fmt.Errorf("failed to move temp file to destination: %w", err))
	}

	if t != nil {
		t.SetDescription(fmt.Sprintf("Downloaded %s (%s)", filepath.Base(dest), utils.FormatBytes(written)))
	}

	return nil
}

// FetchText reads the whole body of url as a string
func FetchText(ctx context.Context, url string, opts ...DownloadOption) (string, error) {
	config := newConfig(opts)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDownload, url, err)
	}

	resp, err := config.httpClient(nil, PageTimeout).Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDownload, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: HTTP %s", ErrDownload, url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read %s: %w", ErrDownload, url, err)
	}
	return string(body), nil
}

// formatDuration formats duration into human-readable format
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
