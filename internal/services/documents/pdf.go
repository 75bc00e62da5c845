package documents

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disablePDFConfigDir sync.Once

// pdfText extracts the text shown on each page of a PDF. Pages are separated
// by blank lines. Text drawn with embedded CID fonts is not decodable this way
// and comes out empty.
func pdfText(data []byte) (string, int, error) {
	disablePDFConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.Cmd = model.EXTRACTCONTENT

	ctx, err := api.ReadAndValidate(bytes.NewReader(data), conf)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read PDF: %w", err)
	}

	pages := make([]string, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil {
			return "", 0, fmt.Errorf("failed to extract page %d: %w", pageNr, err)
		}
		if r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			return "", 0, fmt.Errorf("failed to read page %d: %w", pageNr, err)
		}
		if pageText := contentStreamText(content); pageText != "" {
			pages = append(pages, pageText)
		}
	}

	return strings.Join(pages, "\n\n"), ctx.PageCount, nil
}

// contentStreamText interprets the text-showing operators of a page content
// stream (Tj, TJ, ', ") and the line-moving ones (Td, TD, T*, ET).
func contentStreamText(content []byte) string {
	var out strings.Builder
	var operands []contentToken

	newline := func() {
		s := out.String()
		if s != "" && !strings.HasSuffix(s, "\n") {
			out.WriteByte('\n')
		}
	}

	lex := &contentLexer{data: content}
	for {
		tok, ok := lex.next()
		if !ok {
			break
		}
		if tok.kind != tokenOperator {
			operands = append(operands, tok)
			continue
		}

		switch tok.text {
		case "Tj":
			writeLastString(&out, operands)
		case "'", "\"":
			newline()
			writeLastString(&out, operands)
		case "TJ":
			for _, op := range operands {
				switch op.kind {
				case tokenString:
					out.WriteString(op.text)
				case tokenNumber:
					if n, err := strconv.ParseFloat(op.text, 64); err == nil && n < -200 {
						out.WriteByte(' ')
					}
				}
			}
		case "Td", "TD":
			if len(operands) >= 2 {
				ty, _ := strconv.ParseFloat(operands[len(operands)-1].text, 64)
				tx, _ := strconv.ParseFloat(operands[len(operands)-2].text, 64)
				if ty != 0 {
					newline()
				} else if tx > 0 {
					out.WriteByte(' ')
				}
			}
		case "T*", "ET":
			newline()
		}
		operands = operands[:0]
	}

	lines := strings.Split(out.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func writeLastString(out *strings.Builder, operands []contentToken) {
	for i := len(operands) - 1; i >= 0; i-- {
		if operands[i].kind == tokenString {
			out.WriteString(operands[i].text)
			return
		}
	}
}

type tokenKind int

const (
	tokenOperator tokenKind = iota
	tokenNumber
	tokenString
	tokenOther
)

type contentToken struct {
	kind tokenKind
	text string
}

// contentLexer tokenizes a PDF content stream. Array brackets are dropped so
// TJ operands arrive as a flat list.
type contentLexer struct {
	data []byte
	pos  int
}

func (l *contentLexer) next() (contentToken, bool) {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isPDFSpace(c) || c == '[' || c == ']':
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		case c == '(':
			return contentToken{kind: tokenString, text: decodePDFString(l.literal())}, true
		case c == '<' && l.peek(1) == '<':
			l.pos += 2
			return contentToken{kind: tokenOther, text: "<<"}, true
		case c == '>' && l.peek(1) == '>':
			l.pos += 2
			return contentToken{kind: tokenOther, text: ">>"}, true
		case c == '<':
			return contentToken{kind: tokenString, text: decodePDFString(l.hex())}, true
		case c == '/':
			start := l.pos
			l.pos++
			l.word()
			return contentToken{kind: tokenOther, text: string(l.data[start:l.pos])}, true
		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			start := l.pos
			l.pos++
			l.word()
			return contentToken{kind: tokenNumber, text: string(l.data[start:l.pos])}, true
		default:
			start := l.pos
			l.pos++
			l.word()
			return contentToken{kind: tokenOperator, text: string(l.data[start:l.pos])}, true
		}
	}
	return contentToken{}, false
}

func (l *contentLexer) peek(offset int) byte {
	if l.pos+offset < len(l.data) {
		return l.data[l.pos+offset]
	}
	return 0
}

// word advances over regular characters
func (l *contentLexer) word() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isPDFSpace(c) || strings.IndexByte("()<>[]{}/%", c) >= 0 {
			return
		}
		l.pos++
	}
}

// literal reads a (...) string with nesting and escapes
func (l *contentLexer) literal() []byte {
	l.pos++ // (
	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '\\':
			if l.pos >= len(l.data) {
				return out
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
						v = v*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}

// hex reads a <...> string
func (l *contentLexer) hex() []byte {
	l.pos++ // <
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		if c := l.data[l.pos]; !isPDFSpace(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++ // >
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(v))
	}
	return out
}

// decodePDFString decodes UTF-16BE strings with a byte order mark and treats
// everything else as Latin-1, dropping control characters
func decodePDFString(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		units := make([]uint16, 0, (len(b)-2)/2)
		for i := 2; i+1 < len(b); i += 2 {
			units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(units))
	}

	var sb strings.Builder
	for _, c := range b {
		r := rune(c)
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func isPDFSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}
