// Package classifier implements C7: assigning zero or more canonical
// topics to a completed transcription from its chunks' topic
// summaries, via the same llmclient C5 uses.
package classifier

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"ingestpipe/modules/topic/domain/entities"
	"ingestpipe/modules/topic/domain/repositories"
	chunkrepos "ingestpipe/modules/transcription/domain/repositories"
	"ingestpipe/seedwork/apperr"
	"ingestpipe/seedwork/infrastructure/llmclient"
)

const stageName = "assign_topics"

type Classifier struct {
	llm    *llmclient.Client
	chunks chunkrepos.ChunkRepository
	topics repositories.TopicRepository
	links  repositories.TranscriptionTopicRepository
}

func New(llm *llmclient.Client, chunks chunkrepos.ChunkRepository, topics repositories.TopicRepository, links repositories.TranscriptionTopicRepository) *Classifier {
	return &Classifier{llm: llm, chunks: chunks, topics: topics, links: links}
}

// Assign runs the eight-step classification pipeline for one
// transcription.
func (c *Classifier) Assign(ctx context.Context, transcriptionID string) error {
	summaries, err := c.chunkSummaries(ctx, transcriptionID)
	if err != nil {
		return apperr.New(apperr.KindTransient, stageName, err)
	}

	unknownID, err := c.topics.EnsureUnknown(ctx)
	if err != nil {
		return apperr.New(apperr.KindTransient, stageName, fmt.Errorf("ensure unknown topic: %w", err))
	}

	if len(summaries) == 0 {
		return c.linkOne(ctx, transcriptionID, unknownID, nil, "no chunk topic summaries available")
	}

	all, err := c.topics.ListAll(ctx)
	if err != nil {
		return apperr.New(apperr.KindTransient, stageName, fmt.Errorf("load taxonomy: %w", err))
	}
	names := make([]string, 0, len(all))
	byNameLower := make(map[string]*entities.Topic, len(all))
	for _, t := range all {
		names = append(names, t.Name)
		byNameLower[strings.ToLower(t.Name)] = t
	}

	prompt := buildPrompt(summaries, names)
	raw, err := c.llm.Generate(ctx, prompt)
	if err != nil {
		return apperr.New(apperr.KindTransient, stageName, fmt.Errorf("classify: %w", err))
	}

	matched := parseSelection(raw, names)

	if len(matched) == 0 {
		return c.linkOne(ctx, transcriptionID, unknownID, nil, "no canonical topic name matched the LLM response")
	}

	conf := 1.0
	seen := make(map[string]bool, len(matched))
	for _, name := range matched {
		t, ok := byNameLower[strings.ToLower(name)]
		topicID := unknownID
		if ok {
			topicID = t.GetID()
		}
		if seen[topicID] {
			continue
		}
		seen[topicID] = true
		if err := c.linkOne(ctx, transcriptionID, topicID, &conf, "assigned by LLM from chunk summaries"); err != nil {
			return err
		}
	}
	return nil
}

func (c *Classifier) linkOne(ctx context.Context, transcriptionID, topicID string, confidence *float64, reasoning string) error {
	link := entities.NewAILink(transcriptionID, topicID, confidence, reasoning)
	if err := c.links.Link(ctx, link); err != nil {
		return apperr.New(apperr.KindTransient, stageName, fmt.Errorf("persist link: %w", err))
	}
	return nil
}

// chunkSummaries implements step 1: non-empty topic_summary values in
// index order.
func (c *Classifier) chunkSummaries(ctx context.Context, transcriptionID string) ([]string, error) {
	chunks, err := c.chunks.FindByTranscriptionID(ctx, transcriptionID)
	if err != nil {
		return nil, err
	}
	summaries := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		if ch.TopicSummary != nil && *ch.TopicSummary != "" {
			summaries = append(summaries, *ch.TopicSummary)
		}
	}
	return summaries, nil
}

func buildPrompt(summaries, canonicalNames []string) string {
	var b strings.Builder
	b.WriteString("A transcript has been split into topic-coherent chunks with these summaries:\n")
	for i, s := range summaries {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	b.WriteString("\nCanonical topic names:\n")
	for _, n := range canonicalNames {
		b.WriteString("- " + n + "\n")
	}
	b.WriteString("\nReturn a comma-separated list of the canonical topic names (copied exactly) that best describe this transcript. Pick only from the list above. If none fit, return Unknown.\n")
	return b.String()
}

// parseSelection implements step 6: first try a case-insensitive
// regex match of each canonical name (optionally quoted) anywhere in
// the response; if that finds nothing, fall back to a naive
// comma-split with quote/whitespace stripping.
func parseSelection(raw string, canonicalNames []string) []string {
	var matched []string
	seen := make(map[string]bool)
	for _, name := range canonicalNames {
		pattern := `['"]?` + regexp.QuoteMeta(name) + `['"]?`
		re := regexp.MustCompile(`(?i)` + pattern)
		if re.MatchString(raw) {
			if !seen[strings.ToLower(name)] {
				seen[strings.ToLower(name)] = true
				matched = append(matched, name)
			}
		}
	}
	if len(matched) > 0 {
		return matched
	}

	canonicalLower := make(map[string]string, len(canonicalNames))
	for _, n := range canonicalNames {
		canonicalLower[strings.ToLower(n)] = n
	}
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.Trim(strings.TrimSpace(tok), `'"`)
		if name, ok := canonicalLower[strings.ToLower(tok)]; ok && !seen[strings.ToLower(name)] {
			seen[strings.ToLower(name)] = true
			matched = append(matched, name)
		}
	}
	return matched
}
