package documents

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

var whitespaceRun = regexp.MustCompile(`[ \t]+`)

// htmlConverter turns HTML documents into indexable plain text by way of markdown
type htmlConverter struct {
	logger arbor.ILogger
}

// convert returns the plain text and <title> of an HTML document.
// Script, style and head content never reach the text.
func (c *htmlConverter) convert(source []byte) (plain string, title string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(source))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("head, script, style, noscript, template").Remove()

	markdown, err := c.toMarkdown(doc)
	if err != nil || strings.TrimSpace(markdown) == "" {
		if err != nil {
			c.logger.Warn().Err(err).Msg("HTML to markdown conversion failed, using document text")
		}
		return tidyText(whitespaceRun.ReplaceAllString(doc.Text(), " ")), title, nil
	}

	plain, heading := markdownToText([]byte(markdown))
	if title == "" {
		title = heading
	}
	return plain, title, nil
}

func (c *htmlConverter) toMarkdown(doc *goquery.Document) (string, error) {
	html, err := doc.Html()
	if err != nil {
		return "", err
	}
	converter := md.NewConverter("", true, nil)
	return converter.ConvertString(html)
}
