package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"gurucool/api/internal/text"
)

// Document is one ingested file (or one page of a paginated file) holding its
// normalized text and the source it came from. Documents exist only during
// ingestion; they are decomposed into chunks and discarded.
type Document struct {
	Content string
	Source  string
}

// Ingestor downloads lecture source files into a destination directory and
// parses them into Documents. Downloads into the same destination are
// serialized with a per-destination lock so concurrent ingestion calls cannot
// race the existence check and duplicate a fetch.
type Ingestor struct {
	client *http.Client

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(client *http.Client) *Ingestor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Ingestor{
		client: client,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Ingest resolves each location to a file under dest, then loads and parses
// everything found there. Individual fetch failures are logged and skipped;
// the batch fails only if the destination cannot be prepared or read.
func (in *Ingestor) Ingest(ctx context.Context, locations []string, dest string) ([]Document, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("create destination: %w", err)
	}

	lock := in.destLock(dest)
	lock.Lock()
	for i, loc := range locations {
		if err := in.download(ctx, loc, dest, i); err != nil {
			slog.WarnContext(ctx, "skipping source", "url", loc, "error", err)
		}
	}
	lock.Unlock()

	return LoadDir(ctx, dest)
}

func (in *Ingestor) destLock(dest string) *sync.Mutex {
	in.mu.Lock()
	defer in.mu.Unlock()
	l, ok := in.locks[dest]
	if !ok {
		l = &sync.Mutex{}
		in.locks[dest] = l
	}
	return l
}

// download fetches one location into dest. An already-present file is
// authoritative and skips the fetch entirely.
func (in *Ingestor) download(ctx context.Context, location, dest string, idx int) error {
	name := FileName(location, idx)
	target := filepath.Join(dest, name)

	if _, err := os.Stat(target); err == nil {
		slog.DebugContext(ctx, "file exists, skipping download", "file", name)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := in.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := os.WriteFile(target, body, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	slog.InfoContext(ctx, "downloaded source", "url", location, "file", name)
	return nil
}

// FileName derives a local file name from the final path segment of a URL.
// Locations with no recoverable name get a synthetic document_<n>.txt.
func FileName(location string, idx int) string {
	fallback := fmt.Sprintf("document_%d.txt", idx)

	u, err := url.Parse(location)
	if err != nil {
		return fallback
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || !strings.Contains(base, ".") {
		return fallback
	}
	return base
}

// Chunks decomposes documents into fixed-size overlapping windows in load
// order. Provenance is carried from each originating document onto its chunks.
func Chunks(docs []Document, chunkSize, overlap int) []text.Chunk {
	var chunks []text.Chunk
	for _, doc := range docs {
		chunks = append(chunks, text.Split(doc.Content, doc.Source, chunkSize, overlap)...)
	}
	return chunks
}
