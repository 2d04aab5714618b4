package parser

import (
	"testing"

	"github.com/cwbudde/go-nyx/diag"
	"github.com/cwbudde/go-nyx/ir"
	"github.com/cwbudde/go-nyx/lexer"
	"github.com/gkampitakis/go-snaps/snaps"
)

func parse(t *testing.T, src string) (string, *diag.Collector) {
	t.Helper()
	l := lexer.New("test.nx", src)
	coll := &diag.Collector{}
	p := New(l, "test.nx", src, coll)
	mod := p.ParseProgram()
	return mod.String(), coll
}

func TestRoundTripSnapshots(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"assignment", "a = 40 + 2"},
		{"precedence_mul_add", "a + b * c"},
		{"precedence_pow_right", "a ^ b ^ c"},
		{"precedence_assign_right", "a = b = c"},
		{"function", "fun foo(a, b = 1) { return a + b }"},
		{"named_lambda_expr_body", "fun foo2() = 4"},
		{"anonymous_lambda_expr_body", "f = fun(a, b, a = 4) = 4"},
		{"class", "class M : Base { fun M(a) { this.name = a } fun me() {} }"},
		{"if_else", "if (true) { a = 1 } else { b = 2 }"},
		{"while_loop", "while (a < 10) { a = a + 1 }"},
		{"for_loop", "for (x in xs) { print(x) }"},
		{"import_simple", "import A::B::C as X"},
		{"ternary", "a = cond ? 1 : 2"},
		{"membership", "\"abc\" in \"--abc--\""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, coll := parse(t, c.src)
			if coll.HasErrors() {
				t.Fatalf("unexpected parse errors: %s", coll.Format(false))
			}
			snaps.MatchSnapshot(t, got)
		})
	}
}

func TestPrecedence(t *testing.T) {
	tests := map[string]string{
		"a + b * c": "(BinaryExpr + a (BinaryExpr * b c))",
		"a ^ b ^ c": "(BinaryExpr ^ a (BinaryExpr ^ b c))",
		"a = b = c": "(BinaryExpr = a (BinaryExpr = b c))",
	}
	for src, want := range tests {
		t.Run(src, func(t *testing.T) {
			l := lexer.New("t.nx", src)
			coll := &diag.Collector{}
			p := New(l, "t.nx", src, coll)
			got := p.expression(true).String()
			if got != want {
				t.Errorf("expression(%q) = %q, want %q", src, got, want)
			}
		})
	}
}

func TestRecoveryReportsOneDiagnosticPerError(t *testing.T) {
	src := "a = ; b = ; c = ;"
	_, coll := parse(t, src)
	if len(coll.Diagnostics) != 3 {
		t.Fatalf("got %d diagnostics, want 3: %s", len(coll.Diagnostics), coll.Format(false))
	}
}

func TestIncorrectAccessSyntax(t *testing.T) {
	src := "1 * a.4"
	_, coll := parse(t, src)
	if len(coll.Diagnostics) != 1 || coll.Diagnostics[0].ID != diag.IncorrectAccessSyntax {
		t.Fatalf("expected a single IncorrectAccessSyntax diagnostic, got %v", coll.Diagnostics)
	}
}

func TestNamedLambdaExprBody(t *testing.T) {
	src := "class Point { fun Point() = nil }"
	_, coll := parse(t, src)
	if coll.HasErrors() {
		t.Fatalf("unexpected parse errors: %s", coll.Format(false))
	}
}

func TestAnonymousLambdaExprBody(t *testing.T) {
	l := lexer.New("t.nx", "fun(a, b) = a + b")
	coll := &diag.Collector{}
	p := New(l, "t.nx", "fun(a, b) = a + b", coll)
	got := p.expression(true)
	if coll.HasErrors() {
		t.Fatalf("unexpected parse errors: %s", coll.Format(false))
	}
	if got.Kind != ir.Lambda {
		t.Fatalf("expected a Lambda node, got %s", got.Kind)
	}
	if got.Name != "" {
		t.Fatalf("expected an anonymous lambda, got name %q", got.Name)
	}
	if len(got.Body) != 1 || got.Body[0].Kind != ir.Return {
		t.Fatalf("expected a single synthetic Return statement body, got %v", got.Body)
	}
}

func TestParseLine(t *testing.T) {
	l := lexer.New("repl", "a = 1")
	coll := &diag.Collector{}
	p := New(l, "repl", "a = 1", coll)
	decls := p.ParseLine()
	if len(decls) != 1 {
		t.Fatalf("got %d decls, want 1", len(decls))
	}
}
