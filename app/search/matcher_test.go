package search

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Lightning Arrow", "lightning arrow"},
		{"trims whitespace", "  bow build  ", "bow build"},
		{"folds full-width latin", "ＰｏＥ　Ｂｕｉｌｄ", "poe build"},
		{"folds half-width katakana", "ﾐﾆｵﾝ", "ミニオン"},
		{"leaves japanese intact", "投げ武器", "投げ武器"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestBuildMatchQuery(t *testing.T) {
	tests := []struct {
		name       string
		keyword    string
		synonyms   map[string][]string
		expression string
		short      []ShortToken
	}{
		{
			name:       "single token",
			keyword:    "lightning",
			expression: `"lightning"`,
		},
		{
			name:       "tokens are anded",
			keyword:    "fire golem",
			expression: `"fire" AND "golem"`,
		},
		{
			name:       "japanese token",
			keyword:    "投げ武器",
			expression: `"投げ武器"`,
		},
		{
			name:       "embedded quotes are doubled",
			keyword:    `fi"re`,
			expression: `"fi""re"`,
		},
		{
			name:       "synonyms are ored in",
			keyword:    "minion build",
			synonyms:   map[string][]string{"minion": {"ミニオン"}},
			expression: `("minion" OR "ミニオン") AND "build"`,
		},
		{
			name:    "short token drops out",
			keyword: "of",
			short:   []ShortToken{{Token: "of"}},
		},
		{
			name:       "mixed short and long",
			keyword:    "弓 ranger",
			expression: `"ranger"`,
			short:      []ShortToken{{Token: "弓"}},
		},
		{
			name:     "short token keeps its long synonym",
			keyword:  "弓",
			synonyms: map[string][]string{"弓": {"bow"}},
			short:    []ShortToken{{Token: "弓", Match: `"bow"`}},
		},
		{
			name:     "short token with several long synonyms",
			keyword:  "弓",
			synonyms: map[string][]string{"弓": {"bow", "longbow"}},
			short:    []ShortToken{{Token: "弓", Match: `("bow" OR "longbow")`}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := BuildMatchQuery(tt.keyword, tt.synonyms)
			if q.Expression != tt.expression {
				t.Errorf("Expression = %q, expected %q", q.Expression, tt.expression)
			}
			if !reflect.DeepEqual(q.Short, tt.short) {
				t.Errorf("Short = %v, expected %v", q.Short, tt.short)
			}
			if q.Indexable() != (tt.expression != "") {
				t.Errorf("Indexable() = %v with expression %q", q.Indexable(), q.Expression)
			}
		})
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`50%_dis\count`); got != `50\%\_dis\\count` {
		t.Errorf("escapeLike = %q", got)
	}
}
