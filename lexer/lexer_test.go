package lexer

import "testing"

func kinds(t *testing.T, toks []Token) []Kind {
	t.Helper()
	out := make([]Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeBasics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Kind
	}{
		{"identifier path", "Patient.name", []Kind{Ident, Dot, Ident, EOF}},
		{"delimited identifier", "`div`.value", []Kind{DelimitedIdent, Dot, Ident, EOF}},
		{"integer", "42", []Kind{IntegerLit, EOF}},
		{"decimal", "3.14", []Kind{DecimalLit, EOF}},
		{"decimal with exponent", "1.5e10", []Kind{DecimalLit, EOF}},
		{"string literal", "'hello'", []Kind{StringLit, EOF}},
		{"keywords", "a and b or c", []Kind{Ident, KwAnd, Ident, KwOr, Ident, EOF}},
		{"comparison punctuation", "a <= b", []Kind{Ident, Lte, Ident, EOF}},
		{"variable sigils", "$this %a", []Kind{Dollar, Ident, Percent, Ident, EOF}},
		{"date literal", "@2015", []Kind{DateLit, EOF}},
		{"datetime literal", "@2015-01-01T10:00:00Z", []Kind{DateTimeLit, EOF}},
		{"time literal", "@T10:00", []Kind{TimeLit, EOF}},
		{"quantity", "4 'g'", []Kind{IntegerLit, StringLit, EOF}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := Tokenize(tc.src)
			if err != nil {
				t.Fatalf("Tokenize(%q): %v", tc.src, err)
			}
			got := kinds(t, toks)
			if len(got) != len(tc.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tc.src, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("Tokenize(%q)[%d] = %v, want %v", tc.src, i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, err := Tokenize(`'line\nbreak\tA'`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) != 2 || toks[0].Kind != StringLit {
		t.Fatalf("unexpected tokens: %v", toks)
	}
	want := "line\nbreak\tA"
	if toks[0].Text != want {
		t.Fatalf("decoded escape = %q, want %q", toks[0].Text, want)
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []string{
		"'unterminated",
		`'\q'`,
		"@201", // malformed date body (wrong length)
	}
	for _, src := range tests {
		if _, err := Tokenize(src); err == nil {
			t.Errorf("Tokenize(%q): expected error, got none", src)
		}
	}
}

func TestTokenSpans(t *testing.T) {
	toks, err := Tokenize("ab.cd")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if toks[0].Span.Start != 0 || toks[0].Span.End != 2 {
		t.Fatalf("first token span = %+v, want {0 2}", toks[0].Span)
	}
	if toks[2].Span.Start != 3 || toks[2].Span.End != 5 {
		t.Fatalf("third token span = %+v, want {3 5}", toks[2].Span)
	}
}
