package ingest

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LoadDir parses every supported file under dir into Documents, in sorted
// file-name order so re-ingestion of identical bytes is deterministic.
// Plain text files load as one Document, PDFs as one Document per page,
// slide decks as one Document per file. Files that fail to parse are logged
// and skipped.
func LoadDir(ctx context.Context, dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var docs []Document
	for _, name := range names {
		full := filepath.Join(dir, name)
		loaded, err := loadFile(full)
		if err != nil {
			slog.WarnContext(ctx, "skipping unparseable file", "file", name, "error", err)
			continue
		}
		docs = append(docs, loaded...)
	}

	slog.InfoContext(ctx, "documents loaded", "dir", dir, "count", len(docs))
	return docs, nil
}

func loadFile(path string) ([]Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return loadText(path)
	case ".pdf":
		return loadPDF(path)
	case ".pptx":
		return loadPPTX(path)
	default:
		// unsupported formats are simply not part of the corpus
		return nil, nil
	}
}

func loadText(path string) ([]Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return []Document{{Content: string(content), Source: path}}, nil
}

// loadPDF extracts one Document per page.
func loadPDF(path string) ([]Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs []Document
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		docs = append(docs, Document{Content: content, Source: path})
	}
	return docs, nil
}

var slideNameRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// loadPPTX opens the deck as a ZIP archive and walks every slide's shape
// tree, concatenating all text runs newline-joined into a single Document.
func loadPPTX(path string) ([]Document, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, file := range reader.File {
		m := slideNameRe.FindStringSubmatch(file.Name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		slides = append(slides, slide{num: n, file: file})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var runs []string
	for _, s := range slides {
		rc, err := s.file.Open()
		if err != nil {
			return nil, err
		}
		slideRuns, err := slideText(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", s.num, err)
		}
		runs = append(runs, slideRuns...)
	}

	return []Document{{Content: strings.Join(runs, "\n"), Source: path}}, nil
}

// slideText collects the character data of every <a:t> text run in one
// slide's XML.
func slideText(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)
	var runs []string
	var inRun bool
	var current strings.Builder

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun = true
				current.Reset()
			}
		case xml.CharData:
			if inRun {
				current.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "t" && inRun {
				runs = append(runs, current.String())
				inRun = false
			}
		}
	}
	return runs, nil
}
