package repl

import (
	"bytes"
	"strings"
	"testing"
)

func TestReplEchoesBareExpression(t *testing.T) {
	in := strings.NewReader("1 + 2\nexit\n")
	var out bytes.Buffer

	Start(in, &out)

	if !strings.Contains(out.String(), "3\n") {
		t.Fatalf("expected echoed result 3, got %q", out.String())
	}
}

func TestReplPersistsGlobalsAcrossLines(t *testing.T) {
	in := strings.NewReader("var x = 10;\nx + 5\nexit\n")
	var out bytes.Buffer

	Start(in, &out)

	if !strings.Contains(out.String(), "15\n") {
		t.Fatalf("expected x to persist across lines, got %q", out.String())
	}
}

func TestReplDoesNotEchoLetStatement(t *testing.T) {
	in := strings.NewReader("var y = 42;\nexit\n")
	var out bytes.Buffer

	Start(in, &out)

	if strings.Contains(out.String(), "42\n") {
		t.Fatalf("did not expect a let statement's value to be echoed, got %q", out.String())
	}
}

func TestReplReportsParseErrorsWithoutExiting(t *testing.T) {
	in := strings.NewReader("var = ;\n1 + 1\nexit\n")
	var out bytes.Buffer

	Start(in, &out)

	if !strings.Contains(out.String(), "2\n") {
		t.Fatalf("expected the REPL to keep running after a parse error, got %q", out.String())
	}
}
