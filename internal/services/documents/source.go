// Package documents loads onboarding documents from a directory tree.
// Markdown, plain text, HTML, PDF and Word (.docx) files are converted to plain text,
// chunked, and returned with their front matter metadata.
package documents

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/interfaces"
	"github.com/ternarybob/onboard/internal/models"
)

// formatsByExtension maps supported file extensions to document formats
var formatsByExtension = map[string]string{
	".md":       models.FormatMarkdown,
	".markdown": models.FormatMarkdown,
	".txt":      models.FormatText,
	".html":     models.FormatHTML,
	".htm":      models.FormatHTML,
	".pdf":      models.FormatPDF,
	".docx":     models.FormatDOCX,
}

// DirectorySource implements interfaces.DocumentSource over a directory tree
type DirectorySource struct {
	dir         string
	extensions  map[string]string
	maxFileSize int64
	chunker     *Chunker
	html        *htmlConverter
	logger      arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.DocumentSource = (*DirectorySource)(nil)

// NewDirectorySource creates a source for cfg.Dir. Configured extensions
// without a parser are ignored with a warning.
func NewDirectorySource(cfg *common.DocumentsConfig, logger arbor.ILogger) *DirectorySource {
	extensions := make(map[string]string)
	for _, ext := range cfg.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		format, ok := formatsByExtension[ext]
		if !ok {
			logger.Warn().Str("extension", ext).Msg("No parser for document extension - ignoring")
			continue
		}
		extensions[ext] = format
	}

	return &DirectorySource{
		dir:         cfg.Dir,
		extensions:  extensions,
		maxFileSize: cfg.MaxFileSize,
		chunker:     NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		html:        &htmlConverter{logger: logger},
		logger:      logger,
	}
}

// Dir returns the source directory
func (s *DirectorySource) Dir() string {
	return s.dir
}

// Describe returns a short description for logs
func (s *DirectorySource) Describe() string {
	return "directory " + s.dir
}

// Load reads every supported file under the directory, in path order.
// Hidden files and directories are skipped, as are oversized and empty
// documents. A file that fails to parse aborts the load.
func (s *DirectorySource) Load(ctx context.Context) ([]models.SourceDocument, error) {
	startTime := time.Now()

	info, err := os.Stat(s.dir)
	if err != nil {
		return nil, fmt.Errorf("document directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("document path is not a directory: %s", s.dir)
	}

	var paths []string
	err = filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != s.dir && isHidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !s.supported(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", s.dir, err)
	}
	sort.Strings(paths)

	docs := make([]models.SourceDocument, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := s.LoadFile(path)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			continue
		}
		docs = append(docs, *doc)
	}

	s.logger.Info().
		Str("dir", s.dir).
		Int("files", len(paths)).
		Int("documents", len(docs)).
		Dur("duration", time.Since(startTime)).
		Msg("Documents loaded")

	return docs, nil
}

// LoadFile parses a single file. It returns nil, without error, for files
// that are skipped (too large, or no text after conversion).
func (s *DirectorySource) LoadFile(path string) (*models.SourceDocument, error) {
	format, ok := s.extensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("unsupported document type: %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		s.logger.Warn().
			Str("path", path).
			Int64("size", info.Size()).
			Int64("max_file_size", s.maxFileSize).
			Msg("Document exceeds maximum file size - skipping")
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := s.parse(path, format, data)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(doc.Text) == "" {
		s.logger.Warn().Str("path", path).Msg("Document has no extractable text - skipping")
		return nil, nil
	}
	doc.Chunks = s.chunker.Split(doc.Text)

	s.logger.Debug().
		Str("path", path).
		Str("format", format).
		Int("characters", len(doc.Text)).
		Int("chunks", len(doc.Chunks)).
		Msg("Document parsed")

	return doc, nil
}

func (s *DirectorySource) parse(path, format string, data []byte) (*models.SourceDocument, error) {
	doc := &models.SourceDocument{
		Name:   filepath.Base(path),
		Path:   path,
		Format: format,
	}

	var title string
	switch format {
	case models.FormatMarkdown:
		meta, body, err := parseFrontMatter(path, data)
		if err != nil {
			return nil, err
		}
		doc.Metadata = meta
		doc.Text, title = markdownToText(body)

	case models.FormatText:
		meta, body, err := parseFrontMatter(path, data)
		if err != nil {
			return nil, err
		}
		doc.Metadata = meta
		doc.Text = tidyText(string(body))

	case models.FormatHTML:
		meta, err := sidecarMetadata(path)
		if err != nil {
			return nil, err
		}
		doc.Metadata = meta
		text, htmlTitle, err := s.html.convert(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		doc.Text, title = text, htmlTitle

	case models.FormatPDF:
		meta, err := sidecarMetadata(path)
		if err != nil {
			return nil, err
		}
		doc.Metadata = meta
		text, pages, err := pdfText(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		doc.Text = text
		doc.Metadata.Pages = pages

	case models.FormatDOCX:
		meta, err := sidecarMetadata(path)
		if err != nil {
			return nil, err
		}
		doc.Metadata = meta
		text, docxTitle, err := docxText(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		doc.Text, title = text, docxTitle
	}

	if doc.Metadata.Title == "" {
		doc.Metadata.Title = title
	}
	return doc, nil
}

func (s *DirectorySource) supported(path string) bool {
	_, ok := s.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// isHidden reports whether a file or directory name is hidden
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
