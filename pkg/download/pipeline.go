// Package download materializes resolved artifacts on disk: a retried
// HTTP fetch streamed to the target file, followed by identity and
// checksum validation, with invalid artifacts deleted rather than kept.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/depo-mc/depo/pkg/errors"
	"github.com/depo-mc/depo/pkg/httputil"
	"github.com/depo-mc/depo/pkg/manifest"
)

const (
	// DefaultAttempts is the bounded retry count for one URL.
	DefaultAttempts = 2

	// retryDelay is the fixed pause between attempts.
	retryDelay = 2 * time.Second

	// progressThreshold is the payload size above which coarse progress
	// lines are emitted.
	progressThreshold = 1 << 20
)

// Pipeline downloads and validates artifacts. The zero value is not
// usable; set at least Client.
type Pipeline struct {
	// Client performs the HTTP fetches.
	Client *http.Client

	// Logger receives warnings and progress lines. Defaults to
	// log.Default when nil.
	Logger *log.Logger

	// BlockInsecure rejects plaintext URLs before any network call.
	BlockInsecure bool

	// Checksums maps dependency names to expected SHA-256 hex digests.
	Checksums map[string]string

	// InstallLog, when set, records every successful download.
	InstallLog *InstallLog

	// RetryDelay overrides the fixed pause between attempts. Zero means
	// the default of 2 seconds.
	RetryDelay time.Duration
}

// Fetch downloads url to dest and validates that the artifact declares
// expectedIdentity. An empty expectedIdentity accepts any readable
// archive that declares a name, which is then used for checksum lookup
// and install logging. The fetch itself is retried up to attempts times
// (DefaultAttempts when attempts <= 0); identity and checksum failures
// delete the file and fail without refetching, since a wrong artifact
// served with a 200 will not improve on retry.
func (p *Pipeline) Fetch(ctx context.Context, url, dest, expectedIdentity string, attempts int) error {
	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	if p.BlockInsecure && strings.HasPrefix(strings.ToLower(url), "http://") {
		logger.Warn("refusing insecure download", "url", url)
		return errors.New(errors.ErrCodePolicyViolation, "insecure url %s blocked by security policy", url)
	}

	delay := p.RetryDelay
	if delay <= 0 {
		delay = retryDelay
	}

	err := httputil.Retry(ctx, attempts, delay, func() error {
		if err := p.fetchOnce(ctx, url, dest, logger); err != nil {
			logger.Warn("download attempt failed", "url", url, "err", err)
			return err
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "downloading %s", url)
	}

	name, err := p.validate(dest, expectedIdentity)
	if err != nil {
		if rmErr := os.Remove(dest); rmErr != nil {
			logger.Warn("could not delete invalid artifact", "file", dest, "err", rmErr)
		}
		return err
	}

	if p.InstallLog != nil {
		if err := p.InstallLog.Append(name, url); err != nil {
			logger.Warn("could not append to install log", "err", err)
		}
	}
	return nil
}

func (p *Pipeline) fetchOnce(ctx context.Context, url, dest string, logger *log.Logger) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return &httputil.RetryableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &httputil.RetryableError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	part := dest + ".part"
	f, err := os.Create(part)
	if err != nil {
		return err
	}

	var w io.Writer = f
	if resp.ContentLength >= progressThreshold {
		w = &progressWriter{w: f, total: resp.ContentLength, file: dest, logger: logger}
	}

	written, err := io.Copy(w, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(part)
		return &httputil.RetryableError{Err: err}
	}
	if written == 0 {
		_ = os.Remove(part)
		return &httputil.RetryableError{Err: fmt.Errorf("empty response body")}
	}
	return os.Rename(part, dest)
}

// validate confirms the downloaded archive declares the expected
// identity and, when a checksum is configured, that the bytes match it.
// It returns the name the artifact is accounted under.
func (p *Pipeline) validate(dest, expectedIdentity string) (string, error) {
	decl, err := manifest.ReadArchive(dest)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIdentityMismatch, err, "downloaded artifact is not a readable archive")
	}
	name := expectedIdentity
	switch {
	case decl == nil:
		return "", errors.New(errors.ErrCodeIdentityMismatch, "downloaded artifact has no manifest")
	case expectedIdentity == "":
		name = decl.Name
	case !decl.ProvidesName(expectedIdentity):
		return "", errors.New(errors.ErrCodeIdentityMismatch,
			"downloaded artifact does not declare %q", expectedIdentity)
	}

	want, ok := checksumFor(p.Checksums, name)
	if !ok {
		return name, nil
	}
	got, err := fileSHA256(dest)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hashing %s", dest)
	}
	if !strings.EqualFold(got, want) {
		return "", errors.New(errors.ErrCodeChecksumMismatch,
			"checksum mismatch for %q: got %s, want %s", name, got, want)
	}
	return name, nil
}

func checksumFor(checksums map[string]string, name string) (string, bool) {
	if sum, ok := checksums[name]; ok {
		return sum, true
	}
	for k, sum := range checksums {
		if strings.EqualFold(k, name) {
			return sum, true
		}
	}
	return "", false
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// progressWriter logs coarse 10%-granularity progress while streaming.
type progressWriter struct {
	w       io.Writer
	total   int64
	written int64
	lastPct int
	file    string
	logger  *log.Logger
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	if pct := int(p.written * 100 / p.total); pct/10 > p.lastPct/10 {
		p.lastPct = pct
		p.logger.Info("downloading", "file", p.file, "progress", fmt.Sprintf("%d%%", pct/10*10))
	}
	return n, err
}
