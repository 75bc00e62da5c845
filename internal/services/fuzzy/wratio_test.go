package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcess(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases and trims", input: "  Hello, World! ", want: "hello  world"},
		{name: "keeps underscore", input: "Company_Policies.pdf", want: "company_policies pdf"},
		{name: "keeps accented letters", input: "Café", want: "café"},
		{name: "keeps cyrillic", input: "Отпуск-2024", want: "отпуск 2024"},
		{name: "punctuation only", input: "?!", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Process(tt.input))
		})
	}
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100, Ratio("benefits", "benefits"))
	assert.Equal(t, 67, Ratio("abc", "abd"))
	assert.Equal(t, 0, Ratio("", "abc"))
	assert.Equal(t, 0, Ratio("abc", ""))
}

func TestPartialRatio(t *testing.T) {
	assert.Equal(t, 100, PartialRatio("benefits", "employee benefits overview"))
	assert.Equal(t, 100, PartialRatio("employee benefits overview", "benefits"))
	assert.Equal(t, 0, PartialRatio("", "benefits"))
	assert.Less(t, PartialRatio("xyz", "employee benefits"), 50)
}

func TestTokenRatios(t *testing.T) {
	assert.Equal(t, 100, TokenSortRatio("new york mets", "mets new york"))
	assert.Equal(t, 100, TokenSetRatio("fuzzy was a bear", "fuzzy fuzzy was a bear"))
	assert.Equal(t, 100, PartialTokenSortRatio("york new", "new york mets"))
	assert.Equal(t, 100, PartialTokenSetRatio("benefits", "benefits employee overview"))
	assert.Equal(t, 0, TokenSetRatio("", "anything"))
}

func TestWRatio(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "identical", a: "benefits", b: "benefits", want: 100},
		{name: "case and punctuation ignored", a: "Benefits!", b: "benefits", want: 100},
		{name: "reordered tokens scaled", a: "policies company", b: "company policies", want: 95},
		{name: "contained in longer identifier", a: "benefits", b: "employee benefits overview", want: 90},
		{name: "empty query", a: "", b: "benefits", want: 0},
		{name: "punctuation only", a: "???", b: "benefits", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WRatio(tt.a, tt.b))
		})
	}
}

func TestWRatio_WideLengthGapIsDampened(t *testing.T) {
	score := WRatio("hr", "human resources handbook for new hires")
	assert.LessOrEqual(t, score, 60)
}

func TestWRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"benefits", "employee benefits overview"},
		{"code of conduct", "conduct code"},
		{"it security", "security awareness training"},
	}
	for _, p := range pairs {
		assert.Equal(t, WRatio(p[0], p[1]), WRatio(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestExtract(t *testing.T) {
	choices := []string{"onboarding checklist", "benefits", "benefits overview"}

	matches := Extract("benefits", choices, 2)
	if assert.Len(t, matches, 2) {
		assert.Equal(t, "benefits", matches[0].Choice)
		assert.Equal(t, 1, matches[0].Index)
		assert.Equal(t, 100, matches[0].Score)
		assert.Equal(t, "benefits overview", matches[1].Choice)
		assert.Equal(t, 90, matches[1].Score)
	}

	all := Extract("benefits", choices, 0)
	assert.Len(t, all, 3)

	assert.Nil(t, Extract("benefits", nil, 5))
}

func TestExtract_TiesKeepInputOrder(t *testing.T) {
	matches := Extract("alpha", []string{"alpha", "beta", "alpha"}, 5)
	if assert.Len(t, matches, 3) {
		assert.Equal(t, 0, matches[0].Index)
		assert.Equal(t, 2, matches[1].Index)
	}
}

func TestScores(t *testing.T) {
	scores := Scores("benefits", []string{"benefits", "onboarding checklist"})
	if assert.Len(t, scores, 2) {
		assert.Equal(t, 100, scores[0])
		assert.Less(t, scores[1], 85)
	}
}
