// Package fetcher implements C3: pulling bytes from a remote URL via a
// pluggable site-aware extractor into a staging area. The extractor
// itself shells out to yt-dlp (see DESIGN.md for why
// os/exec is the right call here - no pack dependency offers a
// site-aware media-download client).
package fetcher

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	"ingestpipe/seedwork/apperr"
)

const stageName = "fetch"

// Progress is a single update pushed by the extractor. BytesTotal is 0
// when unknown, matching the "bytes_done when total is unknown"
// contract downstream heartbeat consumers expect.
type Progress struct {
	BytesDone  int64
	BytesTotal int64
}

// Result is what Extractor.Extract returns on success.
type Result struct {
	StagingPath string
	DisplayName string
	DurationS   *float64
	Platform    string
}

// ClassifyPlatform maps a URL's host suffix onto a platform name.
func ClassifyPlatform(rawURL string) (platform string, err error) {
	u, parseErr := url.Parse(rawURL)
	if parseErr != nil || u.Scheme == "" || u.Host == "" {
		return "", apperr.New(apperr.KindInput, stageName, fmt.Errorf("invalid url: %q", rawURL))
	}
	host := strings.ToLower(u.Host)
	switch {
	case strings.HasSuffix(host, "youtube.com"), strings.HasSuffix(host, "youtu.be"):
		return "youtube", nil
	case strings.HasSuffix(host, "soundcloud.com"):
		return "soundcloud", nil
	case strings.HasSuffix(host, "vimeo.com"):
		return "vimeo", nil
	default:
		return "other", nil
	}
}

// Extractor pulls the best audio stream from sourceURL, transcodes it
// to MP3 at >=128kbit/s, writes it to stagingDir, and reports progress
// on progressCh (bounded, drained independently of heartbeats).
type Extractor interface {
	Extract(ctx context.Context, sourceURL, stagingDir string, progressCh chan<- Progress) (Result, error)
}

// YtDlpExtractor shells out to the yt-dlp CLI.
type YtDlpExtractor struct {
	BinaryPath string // defaults to "yt-dlp" on PATH if empty
}

func (e *YtDlpExtractor) binary() string {
	if e.BinaryPath == "" {
		return "yt-dlp"
	}
	return e.BinaryPath
}

// ytDlpProgressLine is yt-dlp's --progress-template JSON shape, emitted
// one line per progress tick when invoked with
// --progress-template "%(progress)j".
type ytDlpProgressLine struct {
	DownloadedBytes int64   `json:"downloaded_bytes"`
	TotalBytes      int64   `json:"total_bytes"`
	TotalBytesEst   int64   `json:"total_bytes_estimate"`
	Filename        string  `json:"filename"`
	Duration        float64 `json:"duration"`
}

func (e *YtDlpExtractor) Extract(ctx context.Context, sourceURL, stagingDir string, progressCh chan<- Progress) (Result, error) {
	outputTemplate := stagingDir + "/%(id)s.%(ext)s"

	cmd := exec.CommandContext(ctx, e.binary(),
		"--no-playlist",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "128K",
		"--progress-template", "%(progress)j",
		"--newline",
		"-o", outputTemplate,
		"--print", "after_move:filepath",
		sourceURL,
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, apperr.New(apperr.KindTransient, stageName, fmt.Errorf("stdout pipe: %w", err))
	}
	if err := cmd.Start(); err != nil {
		return Result{}, apperr.New(apperr.KindTransient, stageName, fmt.Errorf("start yt-dlp: %w", err))
	}

	var finalPath string
	var durationS *float64
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var prog ytDlpProgressLine
		if err := json.Unmarshal([]byte(line), &prog); err == nil && (prog.DownloadedBytes > 0 || prog.TotalBytes > 0) {
			total := prog.TotalBytes
			if total == 0 {
				total = prog.TotalBytesEst
			}
			if prog.Duration > 0 {
				d := prog.Duration
				durationS = &d
			}
			select {
			case progressCh <- Progress{BytesDone: prog.DownloadedBytes, BytesTotal: total}:
			default:
			}
			continue
		}
		// Not a progress JSON line: treat it as the --print filepath.
		finalPath = line
	}

	waitErr := cmd.Wait()
	if waitErr != nil {
		kind := apperr.KindTransient
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			if exitErr.ExitCode() == 2 {
				// yt-dlp's "unsupported URL" / usage error exit code.
				kind = apperr.KindInput
			}
		}
		return Result{}, apperr.New(kind, stageName, fmt.Errorf("yt-dlp failed: %w", waitErr))
	}
	if finalPath == "" {
		return Result{}, apperr.New(apperr.KindTransient, stageName, fmt.Errorf("yt-dlp produced no output file"))
	}

	return Result{
		StagingPath: finalPath,
		DisplayName: lastPathSegment(finalPath),
		DurationS:   durationS,
	}, nil
}

func lastPathSegment(p string) string {
	idx := strings.LastIndexByte(p, '/')
	if idx < 0 {
		return p
	}
	return p[idx+1:]
}
