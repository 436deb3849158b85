package format

import (
	"testing"

	"github.com/MIUTEpxx/sqlengine/lexer"
	"github.com/MIUTEpxx/sqlengine/parser"
)

func reparse(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("Lex(%q) failed: %v", src, err)
	}
	stmts, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	return Statement(stmts[0])
}

func TestFormatRoundTripsThroughParser(t *testing.T) {
	sources := []string{
		"CREATE TABLE t (id INT PRIMARY KEY, name VARCHAR(32) NOT NULL);",
		"DROP TABLE t;",
		"INSERT INTO t VALUES (1, 'Alice');",
		"UPDATE t SET id = id + 1 WHERE id = 1;",
		"DELETE FROM t WHERE id = 1;",
		"SELECT DISTINCT a.id, COUNT(*) AS cnt FROM t a WHERE a.id = 1 GROUP BY a.id ORDER BY a.id DESC LIMIT 5;",
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			formatted := reparse(t, src)
			// Formatting the re-parsed statement a second time must produce
			// the same text: the renderer is a fixed point, not just a
			// one-way projection.
			again := reparse(t, formatted)
			if formatted != again {
				t.Errorf("format is not idempotent:\n  first:  %s\n  second: %s", formatted, again)
			}
		})
	}
}
