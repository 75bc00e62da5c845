package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
)

func TestMarkdownToText(t *testing.T) {
	source := []byte("# Annual Leave\n\nEmployees get **25 days** of [paid leave](https://intranet.example.com/leave).\n\n" +
		"- Submit requests\n- Ask your lead\n\n```\nleave --days 3\n```\n\n<div>raw html</div>\n")

	text, title := markdownToText(source)

	assert.Equal(t, "Annual Leave", title)
	assert.Contains(t, text, "Employees get 25 days of paid leave.")
	assert.Contains(t, text, "Submit requests")
	assert.Contains(t, text, "Ask your lead")
	assert.Contains(t, text, "leave --days 3")
	assert.NotContains(t, text, "**")
	assert.NotContains(t, text, "](")
	assert.NotContains(t, text, "raw html")
	assert.NotContains(t, text, "\n\n\n")
}

func TestMarkdownToText_Simple(t *testing.T) {
	text, title := markdownToText([]byte("Hello *world*"))
	assert.Equal(t, "Hello world", text)
	assert.Empty(t, title)
}

func TestMarkdownToText_FirstLevelOneHeadingOnly(t *testing.T) {
	_, title := markdownToText([]byte("## Overview\n\n# Benefits Guide\n\n# Appendix\n"))
	assert.Equal(t, "Benefits Guide", title)
}

func TestHTMLConverter(t *testing.T) {
	source := []byte(`<html><head><title> IT Security </title><style>p{color:red}</style></head>
<body><h1>VPN</h1><p>Install the <b>VPN</b> client.</p><script>var x = 1;</script></body></html>`)

	c := &htmlConverter{logger: arbor.NewLogger()}
	text, title, err := c.convert(source)

	assert.NoError(t, err)
	assert.Equal(t, "IT Security", title)
	assert.Contains(t, text, "Install the VPN client.")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "color:red")
}

func TestHTMLConverter_TitleFromHeading(t *testing.T) {
	c := &htmlConverter{logger: arbor.NewLogger()}
	_, title, err := c.convert([]byte(`<body><h1>Benefits</h1><p>Dental and vision.</p></body>`))

	assert.NoError(t, err)
	assert.Equal(t, "Benefits", title)
}

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantMeta string
		wantBody string
	}{
		{name: "none", input: "# Title\nbody", wantBody: "# Title\nbody"},
		{name: "block", input: "---\ntitle: X\n---\nbody", wantMeta: "title: X\n", wantBody: "body"},
		{name: "crlf", input: "---\r\ntitle: X\r\n---\r\nbody", wantMeta: "title: X\r\n", wantBody: "body"},
		{name: "dots terminator", input: "---\ntitle: X\n...\nbody", wantMeta: "title: X\n", wantBody: "body"},
		{name: "unterminated", input: "---\ntitle: X\nbody", wantBody: "---\ntitle: X\nbody"},
		{name: "byte order mark", input: "\xef\xbb\xbf---\ntitle: X\n---\nbody", wantMeta: "title: X\n", wantBody: "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body := splitFrontMatter([]byte(tt.input))
			assert.Equal(t, tt.wantMeta, string(meta))
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}
