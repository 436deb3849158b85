package lexer

import (
	"testing"

	"github.com/MIUTEpxx/sqlengine/token"
)

func TestLexBasicSelect(t *testing.T) {
	toks, err := Lex("SELECT name, age FROM users WHERE age >= 18;")
	if err != nil {
		t.Fatalf("Lex returned error: %v", err)
	}
	want := []token.Type{
		token.SELECT, token.IDENTIFIER, token.COMMA, token.IDENTIFIER,
		token.FROM, token.IDENTIFIER,
		token.WHERE, token.IDENTIFIER, token.GTE, token.NUMBER,
		token.SEMI,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Type, w)
		}
	}
}

func TestLexKeywordCaseInsensitive(t *testing.T) {
	toks, err := Lex("select Foo from Bar;")
	if err != nil {
		t.Fatalf("Lex returned error: %v", err)
	}
	if toks[0].Type != token.SELECT {
		t.Errorf("got %v, want SELECT", toks[0].Type)
	}
	if toks[1].Type != token.IDENTIFIER || toks[1].Text != "Foo" {
		t.Errorf("got %v %q, want IDENTIFIER \"Foo\"", toks[1].Type, toks[1].Text)
	}
}

func TestLexTwoCharOperators(t *testing.T) {
	tests := []struct {
		src  string
		want token.Type
	}{
		{"<>", token.NEQ},
		{"!=", token.NEQ},
		{"<=", token.LTE},
		{">=", token.GTE},
	}
	for _, tt := range tests {
		toks, err := Lex(tt.src)
		if err != nil {
			t.Fatalf("Lex(%q) error: %v", tt.src, err)
		}
		if len(toks) != 1 || toks[0].Type != tt.want {
			t.Errorf("Lex(%q) = %v, want single %v", tt.src, toks, tt.want)
		}
	}
}

func TestLexNumbers(t *testing.T) {
	toks, err := Lex("42 3.14")
	if err != nil {
		t.Fatalf("Lex returned error: %v", err)
	}
	if toks[0].IsFloat || toks[0].Int != 42 {
		t.Errorf("got %+v, want int 42", toks[0])
	}
	if !toks[1].IsFloat || toks[1].Float != 3.14 {
		t.Errorf("got %+v, want float 3.14", toks[1])
	}
}

func TestLexMalformedNumber(t *testing.T) {
	if _, err := Lex("1.2.3"); err == nil {
		t.Fatal("expected an error for a number with two decimal points")
	}
}

func TestLexStringEscapeIsVerbatim(t *testing.T) {
	toks, err := Lex(`'it\'s fine'`)
	if err != nil {
		t.Fatalf("Lex returned error: %v", err)
	}
	if len(toks) != 1 || toks[0].Type != token.STRING {
		t.Fatalf("got %v, want a single STRING token", toks)
	}
	if want := `it\'s fine`; toks[0].Text != want {
		t.Errorf("got %q, want %q", toks[0].Text, want)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	if _, err := Lex("'unterminated"); err == nil {
		t.Fatal("expected an error for an unterminated string literal")
	}
}

func TestLexComments(t *testing.T) {
	toks, err := Lex("SELECT 1 -- trailing comment\n/* block\ncomment */ FROM t;")
	if err != nil {
		t.Fatalf("Lex returned error: %v", err)
	}
	want := []token.Type{token.SELECT, token.NUMBER, token.FROM, token.IDENTIFIER, token.SEMI}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
}

func TestLexUnterminatedBlockComment(t *testing.T) {
	if _, err := Lex("SELECT 1 /* never closed"); err == nil {
		t.Fatal("expected an error for an unterminated block comment")
	}
}

func TestLexUnrecognizedCharacter(t *testing.T) {
	if _, err := Lex("SELECT 1 @ 2"); err == nil {
		t.Fatal("expected an error for an unrecognized character")
	}
}

func TestLexDeterministic(t *testing.T) {
	src := "SELECT id, name FROM users WHERE id = 1;"
	first, err := Lex(src)
	if err != nil {
		t.Fatalf("first Lex failed: %v", err)
	}
	second, err := Lex(src)
	if err != nil {
		t.Fatalf("second Lex failed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("token counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Type != second[i].Type || first[i].Text != second[i].Text {
			t.Errorf("token %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func BenchmarkLex(b *testing.B) {
	src := "SELECT id, name, age FROM users WHERE age >= 18 AND name LIKE 'A%' ORDER BY age DESC LIMIT 10;"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Lex(src); err != nil {
			b.Fatal(err)
		}
	}
}

func FuzzLex(f *testing.F) {
	seeds := []string{
		"SELECT * FROM t;",
		"INSERT INTO t VALUES (1, 'a');",
		"UPDATE t SET x = x + 1 WHERE id = 1;",
		"DELETE FROM t WHERE id = 1;",
		"CREATE TABLE t (id INT PRIMARY KEY, name VARCHAR(10));",
		"SELECT COUNT(*) FROM t GROUP BY x ORDER BY x DESC LIMIT 5;",
		"'unterminated",
		"/* unterminated",
		"1.2.3",
		"@#$%",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, src string) {
		// Lex must never panic, regardless of input; a returned error is a
		// perfectly valid outcome for malformed source.
		_, _ = Lex(src)
	})
}
