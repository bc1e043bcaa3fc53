// Package chunker implements C5: splitting a transcript into
// topic-coherent chunks. Three strategies share one output
// contract - llm (backed by seedwork/infrastructure/llmclient),
// sentence (deterministic fallback), single (one chunk). The llm
// strategy is all-or-nothing: any validation failure on its output
// demotes the whole call to the sentence strategy, never a partial
// accept.
package chunker

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"ingestpipe/modules/transcription/domain/entities"
	"ingestpipe/seedwork/apperr"
	"ingestpipe/seedwork/infrastructure/config"
	"ingestpipe/seedwork/infrastructure/llmclient"
)

const stageName = "chunk"

// HeartbeatFunc reports 0..100 percent complete.
type HeartbeatFunc func(percent int)

// Chunker runs C5 against a configured strategy and size window.
type Chunker struct {
	llm *llmclient.Client
	cfg config.ChunkingConfig
}

func New(llm *llmclient.Client, cfg config.ChunkingConfig) *Chunker {
	return &Chunker{llm: llm, cfg: cfg}
}

// Chunk splits transcript into chunks, producing domain entities ready
// for ChunkRepository.ReplaceAll. It never returns zero chunks.
func (c *Chunker) Chunk(ctx context.Context, transcriptionID, transcript string, segments []entities.Segment, heartbeat HeartbeatFunc) ([]*entities.Chunk, error) {
	if heartbeat != nil {
		heartbeat(0)
	}

	strategy := c.cfg.Strategy
	if strategy == "llm" {
		spans, err := c.runLLM(ctx, transcript, heartbeat)
		if err != nil {
			return nil, err
		}
		if spans == nil {
			strategy = "sentence"
		} else {
			if heartbeat != nil {
				heartbeat(100)
			}
			return spansToChunks(transcriptionID, transcript, segments, spans), nil
		}
	}

	switch strategy {
	case "single":
		spans := []span{{Start: 0, End: len(transcript)}}
		if heartbeat != nil {
			heartbeat(100)
		}
		return spansToChunks(transcriptionID, transcript, segments, spans), nil
	default: // "sentence"
		spans := sentenceSpans(transcript, c.cfg.MinTokens, c.cfg.MaxTokens, c.cfg.OverlapTokens)
		if heartbeat != nil {
			heartbeat(100)
		}
		return spansToChunks(transcriptionID, transcript, segments, spans), nil
	}
}

// span is a validated half-open character range with optional LLM
// topic metadata.
type span struct {
	Start, End int
	Topic      string
	Keywords   []string
	Confidence float64
}

// runLLM attempts the llm strategy. A nil, nil return means "demote to
// sentence" - the caller is expected to fall through, never treat nil
// as success.
func (c *Chunker) runLLM(ctx context.Context, transcript string, heartbeat HeartbeatFunc) ([]span, error) {
	if err := c.llm.Liveness(ctx); err != nil {
		return nil, nil
	}

	prompt := buildPrompt(transcript, c.cfg.MinTokens, c.cfg.MaxTokens)

	raw, err := c.llm.Stream(ctx, prompt, func(outputTokens, reasoningTokens int) {
		if heartbeat == nil {
			return
		}
		approx := len(transcript) / 4
		if approx <= 0 {
			approx = 1
		}
		pct := outputTokens * 90 / approx
		if pct > 95 {
			pct = 95
		}
		heartbeat(pct)
	})
	if err != nil {
		if errIsNonRetryable(err) {
			return nil, nil
		}
		return nil, apperr.New(apperr.KindTransient, stageName, err)
	}

	parsed, ok := parseLLMChunks(raw)
	if !ok {
		return nil, nil
	}

	spans, ok := validateSpans(parsed, len(transcript))
	if !ok {
		return nil, nil
	}
	return spans, nil
}

func errIsNonRetryable(err error) bool {
	if se, ok := apperr.Of(err); ok {
		return !se.Retryable()
	}
	return false
}

// buildPrompt renders the llm strategy's chunking instructions verbatim.
func buildPrompt(transcript string, minTokens, maxTokens int) string {
	var b strings.Builder
	b.WriteString("You split a transcript into topic-coherent chunks.\n\n")
	fmt.Fprintf(&b, "Target chunk size: between %d and %d tokens (roughly chars/4).\n", minTokens, maxTokens)
	b.WriteString("Respond with ONLY strict JSON in this exact shape, no commentary, no markdown fences:\n")
	b.WriteString(`{"chunks":[{"start_pos":0,"end_pos":123,"topic":"...","keywords":["..."],"confidence":0.9}]}`)
	b.WriteString("\n\n")
	b.WriteString("Coverage rules: the first chunk's start_pos MUST be 0. The last chunk's end_pos MUST equal the transcript's length in characters. Adjacent chunks MUST share a boundary exactly - chunk[i].end_pos == chunk[i+1].start_pos. No gaps, no overlap.\n\n")
	b.WriteString("Transcript:\n")
	b.WriteString(transcript)
	return b.String()
}

var thinkTagRe = regexp.MustCompile(`(?is)<think>.*?</think>|<thinking>.*?</thinking>|` + "```think.*?```")

// parseLLMChunks strips think-tag fences, regex-extracts the first
// balanced { ... } span, and parses it.
func parseLLMChunks(raw string) ([]llmChunk, bool) {
	cleaned := thinkTagRe.ReplaceAllString(raw, "")
	jsonSpan, ok := extractBalancedObject(cleaned)
	if !ok {
		return nil, false
	}
	var payload struct {
		Chunks []llmChunk `json:"chunks"`
	}
	if err := json.Unmarshal([]byte(jsonSpan), &payload); err != nil {
		return nil, false
	}
	if len(payload.Chunks) == 0 {
		return nil, false
	}
	return payload.Chunks, true
}

type llmChunk struct {
	StartPos   json.Number `json:"start_pos"`
	EndPos     json.Number `json:"end_pos"`
	Topic      string      `json:"topic"`
	Keywords   []string    `json:"keywords"`
	Confidence float64     `json:"confidence"`
}

// extractBalancedObject finds the first top-level balanced {...} span
// in s, honoring string literals so braces inside quoted text don't
// throw off the depth count.
func extractBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// validateSpans checks that every chunk carries integer, in-range
// positions, and that the full set covers [0, textLen) with no gaps
// and no overlap. Any single violation fails the whole batch.
func validateSpans(chunks []llmChunk, textLen int) ([]span, bool) {
	spans := make([]span, 0, len(chunks))
	for _, lc := range chunks {
		start, err := lc.StartPos.Int64()
		if err != nil {
			return nil, false
		}
		end, err := lc.EndPos.Int64()
		if err != nil {
			return nil, false
		}
		if start < 0 || end > int64(textLen) || start >= end {
			return nil, false
		}
		spans = append(spans, span{
			Start:      int(start),
			End:        int(end),
			Topic:      lc.Topic,
			Keywords:   lc.Keywords,
			Confidence: lc.Confidence,
		})
	}
	if len(spans) == 0 {
		return nil, false
	}
	if spans[0].Start != 0 {
		return nil, false
	}
	if spans[len(spans)-1].End != textLen {
		return nil, false
	}
	for i := 1; i < len(spans); i++ {
		if spans[i].Start != spans[i-1].End {
			return nil, false
		}
	}
	return spans, true
}

// sentenceSpans implements the deterministic fallback strategy: split
// on sentence boundaries, greedily accumulate under
// maxTokens*4 chars, carry back an overlapTokens*4-char tail of
// sentences into the next chunk.
func sentenceSpans(transcript string, minTokens, maxTokens, overlapTokens int) []span {
	sentences := splitSentences(transcript)
	if len(sentences) == 0 {
		return []span{{Start: 0, End: len(transcript)}}
	}

	maxChars := maxTokens * 4
	overlapChars := overlapTokens * 4
	if maxChars <= 0 {
		maxChars = 1600
	}

	var spans []span
	cur := 0 // index into sentences where the current chunk starts
	pos := sentences[0].Start
	for cur < len(sentences) {
		chunkStart := pos
		runLen := 0
		i := cur
		for i < len(sentences) {
			sLen := sentences[i].End - sentences[i].Start
			if runLen > 0 && runLen+sLen > maxChars {
				break
			}
			runLen += sLen
			i++
		}
		if i == cur {
			// a single sentence already exceeds maxChars; take it anyway
			i = cur + 1
		}
		chunkEnd := sentences[i-1].End
		spans = append(spans, span{Start: chunkStart, End: chunkEnd})

		if i >= len(sentences) {
			break
		}

		// carry back a tail of sentences for overlap
		tailStart := i
		tailLen := 0
		for tailStart > cur+1 {
			sLen := sentences[tailStart-1].End - sentences[tailStart-1].Start
			if tailLen+sLen > overlapChars {
				break
			}
			tailLen += sLen
			tailStart--
		}
		if tailStart >= i {
			tailStart = i
		}
		cur = tailStart
		pos = sentences[cur].Start
	}

	// stitch spans to guarantee K2 coverage with no gaps/overlap even
	// though carried-back sentences were counted in two chunks' token
	// budgets: each chunk's stored range abuts the next exactly.
	for idx := 0; idx < len(spans)-1; idx++ {
		spans[idx].End = spans[idx+1].Start
	}
	spans[0].Start = 0
	spans[len(spans)-1].End = len(transcript)
	return spans
}

type sentenceRange struct{ Start, End int }

var sentenceBoundaryRe = regexp.MustCompile(`[.!?]\s+|\n+`)

func splitSentences(text string) []sentenceRange {
	if text == "" {
		return nil
	}
	var ranges []sentenceRange
	last := 0
	locs := sentenceBoundaryRe.FindAllStringIndex(text, -1)
	for _, loc := range locs {
		ranges = append(ranges, sentenceRange{Start: last, End: loc[1]})
		last = loc[1]
	}
	if last < len(text) {
		ranges = append(ranges, sentenceRange{Start: last, End: len(text)})
	}
	return ranges
}

// spansToChunks maps character spans onto segment timestamps and
// builds persistable Chunk entities in index order.
func spansToChunks(transcriptionID, transcript string, segments []entities.Segment, spans []span) []*entities.Chunk {
	offsets := segmentCharOffsets(segments, transcript)

	chunks := make([]*entities.Chunk, 0, len(spans))
	for i, s := range spans {
		text := safeSlice(transcript, s.Start, s.End)
		chunk := entities.NewChunk(transcriptionID, i, text, s.Start, s.End)
		if s.Topic != "" {
			chunk = chunk.WithTopic(s.Topic, s.Keywords, s.Confidence)
		}
		startS, endS := mapTimestamps(offsets, segments, s.Start, s.End)
		chunk = chunk.WithTimestamps(startS, endS)
		chunks = append(chunks, chunk)
	}
	return chunks
}

func safeSlice(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start >= end {
		return ""
	}
	return s[start:end]
}

// segmentCharOffsets returns, for each segment, the half-open
// character range it occupies in the concatenated transcript - the
// same accumulation the transcriber used to build FullText.
func segmentCharOffsets(segments []entities.Segment, transcript string) []sentenceRange {
	offsets := make([]sentenceRange, len(segments))
	pos := 0
	for i, seg := range segments {
		offsets[i] = sentenceRange{Start: pos, End: pos + len(seg.Text)}
		pos += len(seg.Text)
	}
	_ = transcript
	return offsets
}

// mapTimestamps finds the segment containing charStart/charEnd and
// returns their start_s/end_s, falling back to the first/last
// segment's times when no containing segment is found.
func mapTimestamps(offsets []sentenceRange, segments []entities.Segment, charStart, charEnd int) (float64, float64) {
	if len(segments) == 0 {
		return 0, 0
	}
	startS := segments[0].StartS
	endS := segments[len(segments)-1].EndS
	for i, off := range offsets {
		if charStart >= off.Start && charStart < off.End {
			startS = segments[i].StartS
			break
		}
	}
	for i := len(offsets) - 1; i >= 0; i-- {
		off := offsets[i]
		if charEnd > off.Start && charEnd <= off.End {
			endS = segments[i].EndS
			break
		}
	}
	return startS, endS
}
