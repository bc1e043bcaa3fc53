// Package transcriber implements C4: running a speech model over a
// staged media file and producing segment-level text. Audio is decoded
// to 16kHz mono PCM via ffmpeg (the same os/exec shape
// the fetcher uses for yt-dlp) and fed to whisper.cpp's Go bindings.
package transcriber

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os/exec"
	"sync"
	"time"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go"

	"ingestpipe/internal/pacemaker"
	"ingestpipe/seedwork/apperr"
)

const (
	stageName      = "transcribe"
	sampleRateHz   = 16000
	heartbeatEvery = 5 * time.Second
	heartbeatPct   = 5
)

// Segment is one recognized span of speech.
type Segment struct {
	StartS     float64
	EndS       float64
	Text       string
	Confidence float64
}

// Result is C4's output contract.
type Result struct {
	FullText          string
	Segments          []Segment
	Language          string
	ModelName         string
	ModelVersion      string
	AvgConfidence     float64
	ProcessingSeconds float64
}

// modelPool lazily loads one whisper.cpp model per modelPath and
// reuses it for the lifetime of the process - loaded once per process
// and cached, never reloaded per request.
type modelPool struct {
	mu     sync.Mutex
	models map[string]whisper.Model
}

var pool = &modelPool{models: map[string]whisper.Model{}}

func (p *modelPool) get(modelPath string) (whisper.Model, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok := p.models[modelPath]; ok {
		return m, nil
	}
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, apperr.New(apperr.KindTransient, stageName, fmt.Errorf("load model %s: %w", modelPath, err))
	}
	p.models[modelPath] = m
	return m, nil
}

// Transcriber runs C4 against a configured model size.
type Transcriber struct {
	ModelPath  string
	Language   string // "" lets whisper auto-detect
	FFmpegPath string // defaults to "ffmpeg" on PATH if empty
}

func New(modelPath, language string) *Transcriber {
	return &Transcriber{ModelPath: modelPath, Language: language}
}

func (t *Transcriber) ffmpeg() string {
	if t.FFmpegPath == "" {
		return "ffmpeg"
	}
	return t.FFmpegPath
}

// HeartbeatFunc reports integer percent complete, 0..100.
type HeartbeatFunc func(percent int)

// Transcribe decodes storedPath and runs the cached model over it,
// reporting a heartbeat every 5s and also on every 5% of progress
// change, whichever comes first.
func (t *Transcriber) Transcribe(ctx context.Context, storedPath string, heartbeat HeartbeatFunc) (Result, error) {
	start := time.Now()

	model, err := pool.get(t.ModelPath)
	if err != nil {
		return Result{}, err
	}

	samples, err := t.decodeToPCM(ctx, storedPath)
	if err != nil {
		return Result{}, err
	}

	mctx, err := model.NewContext()
	if err != nil {
		return Result{}, apperr.New(apperr.KindTransient, stageName, fmt.Errorf("new whisper context: %w", err))
	}
	if t.Language != "" {
		_ = mctx.SetLanguage(t.Language)
	}

	pm := pacemaker.Start(heartbeatEvery, func(pct int) {
		if heartbeat != nil {
			heartbeat(pct)
		}
	})
	defer pm.Stop()

	totalSamples := len(samples)
	lastEmitted := -heartbeatPct
	progressCb := func(pct int) {
		pm.Report(pct)
		if pct-lastEmitted >= heartbeatPct {
			lastEmitted = pct
			if heartbeat != nil {
				heartbeat(pct)
			}
		}
	}

	if err := mctx.Process(samples, nil, nil, progressCb); err != nil {
		return Result{}, classifyRunFailure(err)
	}

	var (
		fullText  bytes.Buffer
		segments  []Segment
		confSum   float64
		confCount int
	)
	for {
		seg, err := mctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, classifyRunFailure(err)
		}
		text := seg.Text
		fullText.WriteString(text)
		conf := segmentConfidence(seg)
		segments = append(segments, Segment{
			StartS:     seg.Start.Seconds(),
			EndS:       seg.End.Seconds(),
			Text:       text,
			Confidence: conf,
		})
		confSum += conf
		confCount++
	}
	_ = totalSamples

	avgConf := 0.0
	if confCount > 0 {
		avgConf = confSum / float64(confCount)
	}

	return Result{
		FullText:          fullText.String(),
		Segments:          segments,
		Language:          mctx.Language(),
		ModelName:         t.ModelPath,
		AvgConfidence:     avgConf,
		ProcessingSeconds: time.Since(start).Seconds(),
	}, nil
}

// segmentConfidence derives a 0..1 confidence from whisper's per-token
// log-probabilities when available, otherwise a neutral default.
func segmentConfidence(seg whisper.Segment) float64 {
	if len(seg.Tokens) == 0 {
		return 0.8
	}
	var sum float64
	for _, tok := range seg.Tokens {
		sum += float64(tok.P)
	}
	avg := sum / float64(len(seg.Tokens))
	if math.IsNaN(avg) || avg < 0 {
		return 0.8
	}
	if avg > 1 {
		return 1
	}
	return avg
}

// decodeToPCM shells out to ffmpeg to produce mono 16kHz signed
// 16-bit little-endian PCM, then converts it to the []float32 samples
// whisper.cpp expects.
func (t *Transcriber) decodeToPCM(ctx context.Context, path string) ([]float32, error) {
	cmd := exec.CommandContext(ctx, t.ffmpeg(),
		"-i", path,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRateHz),
		"-ac", "1",
		"-loglevel", "error",
		"-",
	)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, apperr.New(apperr.KindCancelled, stageName, ctx.Err())
		}
		return nil, apperr.New(apperr.KindInput, stageName, fmt.Errorf("ffmpeg decode: %w: %s", err, stderr.String()))
	}

	raw := stdout.Bytes()
	samples := make([]float32, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
		samples[i] = float32(v) / 32768.0
	}
	return samples, nil
}

// classifyRunFailure maps a mid-run whisper error onto C4's failure
// classes: everything after a successful model load and
// decode is treated as a retryable (up to 3 attempts) transient error.
func classifyRunFailure(err error) error {
	return apperr.New(apperr.KindTransient, stageName, err)
}
