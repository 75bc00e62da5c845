package documents

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	docxBody = "word/document.xml"
	docxCore = "docProps/core.xml"
)

// docxText extracts paragraph text and the core-properties title from a
// Word document. Paragraphs inside tables are included in document order.
func docxText(data []byte) (string, string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", "", fmt.Errorf("failed to open DOCX archive: %w", err)
	}

	body, err := readZipEntry(reader, docxBody)
	if err != nil {
		return "", "", err
	}
	if body == nil {
		return "", "", errors.New("DOCX archive has no " + docxBody)
	}

	text, err := parseDocumentXML(body)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse %s: %w", docxBody, err)
	}

	var title string
	if core, err := readZipEntry(reader, docxCore); err == nil && core != nil {
		var props struct {
			Title string `xml:"title"`
		}
		if xml.Unmarshal(core, &props) == nil {
			title = strings.TrimSpace(props.Title)
		}
	}

	return tidyText(text), title, nil
}

// readZipEntry returns the contents of name, or nil when the archive has no such entry
func readZipEntry(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return content, nil
	}
	return nil, nil
}

// parseDocumentXML streams word/document.xml, writing w:t text, turning w:tab
// into a tab and w:br or a closing w:p into a newline.
func parseDocumentXML(content []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var b strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
