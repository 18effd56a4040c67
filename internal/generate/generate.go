package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gurucool/api/internal/session"
	"gurucool/api/internal/text"
)

// ErrNoItems means a question batch produced zero usable records: every
// generation call either failed or returned output the parser rejected.
var ErrNoItems = errors.New("no items produced")

// Kind selects the question format for a batch.
type Kind string

const (
	KindShort Kind = "short"
	KindLong  Kind = "long"
	KindMCQ   Kind = "mcq"
)

// Question is one generated short- or long-answer item.
type Question struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// MCQ is one generated multiple-choice item. Options keep their full
// "A) ..." line text in presentation order.
type MCQ struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Generator produces one completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service composes chunks and instructions into prompts, invokes the
// generator, and parses its free-text output into typed records.
type Service struct {
	gen       Generator
	chunkSize int
	overlap   int
}

func NewService(gen Generator) *Service {
	return &Service{gen: gen, chunkSize: text.DefaultChunkSize, overlap: text.DefaultOverlap}
}

// Answer generates a response to query conditioned on the retrieved chunks
// and the session's conversation so far. The raw model output is the answer
// verbatim; on success the new turn is appended to history. The returned
// sources are the provenance of the chunks, in retrieval order.
func (s *Service) Answer(ctx context.Context, query string, chunks []text.Chunk, history *session.History) (string, []string, error) {
	prompt := answerPrompt(query, chunks, history.Turns())

	answer, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return "", nil, fmt.Errorf("generate answer: %w", err)
	}
	history.Append(query, answer)

	sources := make([]string, len(chunks))
	for i, c := range chunks {
		sources[i] = c.Source
	}
	return answer, sources, nil
}

// Questions generates up to count short- or long-answer items, one per
// content chunk. The source chunks are re-concatenated and re-chunked with
// the standard window before prompting. Malformed model output is dropped
// silently; failed calls shrink the batch. A batch that ends empty returns
// ErrNoItems.
func (s *Service) Questions(ctx context.Context, chunks []text.Chunk, count int, kind Kind) ([]Question, error) {
	if kind == KindMCQ {
		return nil, fmt.Errorf("kind %q requires MCQs", kind)
	}

	var questions []Question
	for i, chunk := range s.contentChunks(chunks, count) {
		out, err := s.gen.Generate(ctx, questionPrompt(kind, chunk, i+1))
		if err != nil {
			slog.WarnContext(ctx, "question generation failed", "number", i+1, "error", err)
			continue
		}
		questions = append(questions, ParseQuestions(out)...)
	}
	if len(questions) == 0 {
		return nil, ErrNoItems
	}
	return questions, nil
}

// MCQs generates up to count multiple-choice items, one per content chunk,
// with the same best-effort contract as Questions.
func (s *Service) MCQs(ctx context.Context, chunks []text.Chunk, count int) ([]MCQ, error) {
	var mcqs []MCQ
	for i, chunk := range s.contentChunks(chunks, count) {
		out, err := s.gen.Generate(ctx, mcqPrompt(chunk, i+1))
		if err != nil {
			slog.WarnContext(ctx, "mcq generation failed", "number", i+1, "error", err)
			continue
		}
		mcqs = append(mcqs, ParseMCQs(out)...)
	}
	if len(mcqs) == 0 {
		return nil, ErrNoItems
	}
	return mcqs, nil
}

// contentChunks runs the second, independent chunking pass over the combined
// corpus text and caps it at count prompts.
func (s *Service) contentChunks(chunks []text.Chunk, count int) []string {
	combined := text.Recombine(chunks)
	rechunked := text.Split(combined, "", s.chunkSize, s.overlap)

	n := len(rechunked)
	if count < n {
		n = count
	}
	out := make([]string, 0, n)
	for _, c := range rechunked[:n] {
		out = append(out, c.Text)
	}
	return out
}
