package fetcher

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wsnlndrv/gofile-dl/internal/api"
	"github.com/wsnlndrv/gofile-dl/internal/progress"
	"github.com/wsnlndrv/gofile-dl/internal/resolver"
)

// PartSuffix marks an in-progress download. The sidecar's size is the
// resume offset for the next attempt.
const PartSuffix = ".part"

// Options configures the download engine.
type Options struct {
	// ChunkSize is the streaming buffer size.
	// Default: 16KB
	ChunkSize int64

	// UserAgent is sent with every payload request.
	// Default: api.DefaultUserAgent
	UserAgent string

	// ConnectTimeout bounds connection establishment.
	// Default: 9s
	ConnectTimeout time.Duration

	// ReadTimeout bounds the wait for response headers and for progress
	// between reads; a stalled peer cannot hang a worker indefinitely.
	// Default: 27s
	ReadTimeout time.Duration

	// Emitter receives per-task progress and message events.
	// Default: progress.Nop
	Emitter progress.Emitter
}

// Status classifies the result of one download attempt.
type Status int

const (
	StatusSkipped Status = iota
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of one download attempt.
type Outcome struct {
	Task   resolver.Task
	Status Status
	Bytes  int64 // bytes fetched this session
	Err    error // reason when Status is StatusFailed
}

// Fetcher performs resumable downloads.
type Fetcher struct {
	hc   *http.Client
	opts Options
}

// New creates a Fetcher with the given options.
func New(opts Options) *Fetcher {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 16 * 1024
	}
	if opts.UserAgent == "" {
		opts.UserAgent = api.DefaultUserAgent
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 9 * time.Second
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 27 * time.Second
	}
	if opts.Emitter == nil {
		opts.Emitter = progress.Nop{}
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: opts.ConnectTimeout,
		}).DialContext,
		ResponseHeaderTimeout: opts.ReadTimeout,
		IdleConnTimeout:       90 * time.Second,
		DisableCompression:    true, // raw bytes, exact lengths
	}

	return &Fetcher{
		hc:   &http.Client{Transport: transport},
		opts: opts,
	}
}

// Download runs the full state machine for one task. It never returns an
// outcome that aborts sibling tasks; every failure is task-local.
func (f *Fetcher) Download(ctx context.Context, task resolver.Task, cred api.Credential) Outcome {
	em := f.opts.Emitter

	// Precheck: a completed file on disk is ground truth.
	if info, err := os.Stat(task.LocalPath); err == nil && info.Size() > 0 {
		em.Message(task.ID, fmt.Sprintf("%s already exists, skipping.", task.Name))
		return Outcome{Task: task, Status: StatusSkipped}
	}

	// Probe: the sidecar's size is the resume offset.
	part := task.LocalPath + PartSuffix
	var resumeOffset int64
	if info, err := os.Stat(part); err == nil {
		resumeOffset = info.Size()
	}

	// The watchdog cancels the request when no read makes progress within
	// ReadTimeout; it is re-armed after every chunk.
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	watchdog := time.AfterFunc(f.opts.ReadTimeout, cancel)
	defer watchdog.Stop()

	resp, err := f.request(reqCtx, task.Link, cred, resumeOffset)
	if err != nil {
		em.Message(task.ID, fmt.Sprintf("Couldn't download the file from %s.\n%v", task.Link, err))
		return Outcome{Task: task, Status: StatusFailed, Err: err}
	}
	defer resp.Body.Close()

	totalSize, err := validate(resp, task.Link, resumeOffset)
	if err != nil {
		em.Message(task.ID, fmt.Sprintf("Couldn't download the file from %s.\nStatus code: %d", task.Link, resp.StatusCode))
		return Outcome{Task: task, Status: StatusFailed, Err: err}
	}

	out, err := os.OpenFile(part, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Outcome{Task: task, Status: StatusFailed, Err: fmt.Errorf("open sidecar: %w", err)}
	}

	// Streaming errors are not handled here; finalize decides from the
	// sidecar size alone whether the transfer completed.
	received, streamErr := f.stream(ctx, resp.Body, out, watchdog, task, resumeOffset, totalSize)
	out.Close()

	done, finErr := finalize(part, task.LocalPath, totalSize)
	if finErr != nil {
		return Outcome{Task: task, Status: StatusFailed, Bytes: received, Err: finErr}
	}
	if !done {
		err := fmt.Errorf("%w: %s has %d of %d bytes", ErrTransferIncomplete, task.Name, resumeOffset+received, totalSize)
		if streamErr != nil {
			err = fmt.Errorf("%w: %s", err, streamErr)
		}
		return Outcome{Task: task, Status: StatusFailed, Bytes: received, Err: err}
	}

	em.Progress(task.ID, task.Name, 100)
	em.Message(task.ID, fmt.Sprintf("\rDownloading %s: Done!\n", task.Name))
	return Outcome{Task: task, Status: StatusCompleted, Bytes: received}
}

// request issues the payload GET with the header set the host's
// anti-abuse layer expects, plus a Range header when resuming.
func (f *Fetcher) request(ctx context.Context, link string, cred api.Credential, resumeOffset int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	referer := link
	if !strings.HasSuffix(referer, "/") {
		referer += "/"
	}

	req.Header.Set("Cookie", "accountToken="+cred.Token)
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Referer", referer)
	req.Header.Set("Origin", link)
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "same-site")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Cache-Control", "no-cache")
	if resumeOffset > 0 {
		req.Header.Set("Range", "bytes="+strconv.FormatInt(resumeOffset, 10)+"-")
	}

	return f.hc.Do(req)
}

// validate rejects denial and mismatched statuses and extracts the total
// size. Without a total, completion can never be detected, so the caller
// must not reach finalize.
func validate(resp *http.Response, link string, resumeOffset int64) (int64, error) {
	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusNotFound, http.StatusMethodNotAllowed:
		return 0, &DeniedError{URL: link, StatusCode: resp.StatusCode}
	}
	if resumeOffset == 0 && resp.StatusCode != http.StatusOK {
		return 0, &StatusError{URL: link, StatusCode: resp.StatusCode, ResumeOffset: resumeOffset}
	}
	if resumeOffset > 0 && resp.StatusCode != http.StatusPartialContent {
		return 0, &StatusError{URL: link, StatusCode: resp.StatusCode, ResumeOffset: resumeOffset}
	}

	if resumeOffset == 0 {
		// ContentLength is -1 when unknown; 0 is a real empty file and
		// flows through to an empty stream and a 0-byte finalize.
		if resp.ContentLength < 0 {
			return 0, ErrMissingSize
		}
		return resp.ContentLength, nil
	}

	_, _, total, err := parseContentRange(resp.Header.Get("Content-Range"))
	if err != nil || total < 0 {
		return 0, ErrMissingSize
	}
	return total, nil
}

// stream appends the body to the sidecar in fixed-size chunks, emitting
// progress after each one. The context is checked between chunks; that is
// the engine's cancellation point.
func (f *Fetcher) stream(ctx context.Context, body io.Reader, out *os.File, watchdog *time.Timer, task resolver.Task, resumeOffset, totalSize int64) (int64, error) {
	em := f.opts.Emitter
	buf := make([]byte, f.opts.ChunkSize)
	var received int64
	start := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return received, err
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			watchdog.Reset(f.opts.ReadTimeout)
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return received, fmt.Errorf("write sidecar: %w", writeErr)
			}
			received += int64(n)

			elapsed := time.Since(start).Seconds()
			if elapsed < 0.1 {
				elapsed = 0.1
			}
			rate := float64(received) / elapsed
			pct := progress.Percent(resumeOffset+received, totalSize)

			em.Progress(task.ID, task.Name, pct)
			em.Message(task.ID, fmt.Sprintf("\rDownloading %s: %.1f%% at %s", task.Name, pct, progress.FormatRate(rate)))
		}

		if readErr == io.EOF {
			return received, nil
		}
		if readErr != nil {
			return received, readErr
		}
	}
}

// finalize promotes the sidecar to the final path when its size matches
// the expected total. A mismatch leaves the sidecar untouched for a
// future resume. Idempotent: a second call after the rename reports false
// without touching anything.
func finalize(part, final string, totalSize int64) (bool, error) {
	info, err := os.Stat(part)
	if err != nil {
		return false, nil
	}
	if info.Size() != totalSize {
		return false, nil
	}
	if err := os.Rename(part, final); err != nil {
		return false, fmt.Errorf("finalize %s: %w", final, err)
	}
	return true, nil
}

// parseContentRange parses a Content-Range header value of the form
// "bytes start-end/total". Total is -1 for "*" (unknown).
func parseContentRange(header string) (start, end, total int64, err error) {
	header = strings.TrimPrefix(header, "bytes ")
	parts := strings.Split(header, "/")
	if len(parts) != 2 {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range format: %s", header)
	}

	rangeParts := strings.Split(parts[0], "-")
	if len(rangeParts) != 2 {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range format: %s", header)
	}

	start, err = strconv.ParseInt(rangeParts[0], 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid start byte: %w", err)
	}

	end, err = strconv.ParseInt(rangeParts[1], 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid end byte: %w", err)
	}

	if parts[1] == "*" {
		total = -1
	} else {
		total, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid total bytes: %w", err)
		}
	}

	return start, end, total, nil
}
