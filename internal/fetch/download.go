package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/agedcare-docs/internal/logger"
)

const (
	// DownloadTimeout bounds a pricing PDF download.
	DownloadTimeout = 10 * time.Second
	// MaxDownloadSize is the largest file saved (50MB).
	MaxDownloadSize = 50 * 1024 * 1024
)

// Downloader saves remote files into a directory.
type Downloader struct {
	client  *http.Client
	dir     string
	timeout time.Duration
	maxSize int64
}

// NewDownloader creates a Downloader writing into dir. The directory is created on
// first download.
func NewDownloader(dir string, timeout time.Duration) *Downloader {
	if timeout <= 0 {
		timeout = DownloadTimeout
	}
	return &Downloader{
		client:  &http.Client{},
		dir:     dir,
		timeout: timeout,
		maxSize: MaxDownloadSize,
	}
}

// Download fetches fileURL and writes it as filename inside the target directory.
// An empty filename uses the last path segment of the URL. It returns the local path.
func (d *Downloader) Download(ctx context.Context, fileURL, filename string) (string, error) {
	if filename == "" {
		filename = FilenameFromURL(fileURL)
	}
	if filename == "" {
		return "", fmt.Errorf("no filename for %s", fileURL)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	SetBrowserHeaders(req)

	resp, err := d.client.Do(req)
	if err != nil {
		logger.IncrCounter("download.errors")
		return "", fmt.Errorf("downloading file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.IncrCounter("download.errors")
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}

	target := filepath.Join(d.dir, filename)
	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(resp.Body, d.maxSize+1))
	if err == nil && n > d.maxSize {
		err = fmt.Errorf("file exceeds maximum size of %d bytes", d.maxSize)
	}
	if err != nil {
		f.Close()         // nolint:errcheck
		os.Remove(target) // nolint:errcheck
		logger.IncrCounter("download.errors")
		return "", fmt.Errorf("writing file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing file: %w", err)
	}

	logger.IncrCounter("download.files")
	return target, nil
}

// FilenameFromURL returns the unescaped last path segment of rawURL, without the query.
func FilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if name == "/" || name == "." || name == "" {
		return ""
	}
	return strings.NewReplacer("/", "_", `\`, "_").Replace(name)
}
