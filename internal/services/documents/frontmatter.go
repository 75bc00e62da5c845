package documents

import (
	"bytes"
	"errors"
	"os"

	"github.com/ternarybob/onboard/internal/models"
)

var frontMatterFence = []byte("---")

// splitFrontMatter separates a leading YAML block fenced by "---" lines from the body.
// Input without a complete block is returned unchanged as the body.
func splitFrontMatter(data []byte) (meta, body []byte) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	first, rest, ok := cutLine(data)
	if !ok || !bytes.Equal(bytes.TrimRight(first, " \t\r"), frontMatterFence) {
		return nil, data
	}

	offset := 0
	for {
		line, next, more := cutLine(rest[offset:])
		trimmed := bytes.TrimRight(line, " \t\r")
		if bytes.Equal(trimmed, frontMatterFence) || bytes.Equal(trimmed, []byte("...")) {
			return rest[:offset], next
		}
		if !more {
			return nil, data
		}
		offset = len(rest) - len(next)
	}
}

// cutLine returns the first line of data and everything after its newline
func cutLine(data []byte) (line, rest []byte, found bool) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return data[:i], data[i+1:], true
	}
	return data, nil, false
}

// parseFrontMatter decodes the front matter of a text document at path
func parseFrontMatter(path string, data []byte) (models.Metadata, []byte, error) {
	meta, body := splitFrontMatter(data)
	if meta == nil {
		return models.Metadata{}, body, nil
	}

	m, err := models.DecodeMetadata(meta)
	if err != nil {
		return models.Metadata{}, nil, withSource(err, path)
	}
	return m, body, nil
}

// sidecarMetadata reads "<path>.yaml" when present. Formats without front
// matter (PDF, HTML) carry their metadata this way.
func sidecarMetadata(path string) (models.Metadata, error) {
	data, err := os.ReadFile(path + ".yaml")
	if err != nil {
		if os.IsNotExist(err) {
			return models.Metadata{}, nil
		}
		return models.Metadata{}, err
	}

	m, err := models.DecodeMetadata(data)
	if err != nil {
		return models.Metadata{}, withSource(err, path+".yaml")
	}
	return m, nil
}

func withSource(err error, source string) error {
	var metaErr *models.MetadataError
	if errors.As(err, &metaErr) {
		metaErr.Source = source
	}
	return err
}
