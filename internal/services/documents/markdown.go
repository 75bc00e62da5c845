package documents

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var (
	markdownParser = goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
	).Parser()

	blankLines = regexp.MustCompile(`\n{3,}`)
)

// markdownToText renders markdown as plain text for indexing: blocks separated
// by blank lines, inline markup dropped. title is the first level-one heading.
func markdownToText(source []byte) (plain string, title string) {
	doc := markdownParser.Parse(text.NewReader(source))

	var b strings.Builder
	var heading strings.Builder
	inTitle := false

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 1 && title == "" {
				inTitle = entering
				if !entering {
					title = strings.TrimSpace(heading.String())
				}
			}
			if !entering {
				b.WriteString("\n\n")
			}
		case *ast.Text:
			if entering {
				value := string(node.Segment.Value(source))
				b.WriteString(value)
				if inTitle {
					heading.WriteString(value)
				}
				if node.SoftLineBreak() || node.HardLineBreak() {
					b.WriteString("\n")
				}
			}
		case *ast.String:
			if entering {
				b.Write(node.Value)
			}
		case *ast.AutoLink:
			if entering {
				b.Write(node.Label(source))
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					line := lines.At(i)
					b.Write(line.Value(source))
				}
				b.WriteString("\n")
				return ast.WalkSkipChildren, nil
			}
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock, *ast.ThematicBreak:
			if !entering {
				b.WriteString("\n\n")
			}
		case *ast.ListItem:
			if !entering {
				b.WriteString("\n")
			}
		case *extast.TableCell:
			if !entering {
				b.WriteString(" ")
			}
		case *extast.TableRow, *extast.TableHeader:
			if !entering {
				b.WriteString("\n")
			}
		}
		return ast.WalkContinue, nil
	})

	return tidyText(b.String()), title
}

// tidyText trims trailing spaces per line and collapses runs of blank lines
func tidyText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(s, "\n\n"))
}
