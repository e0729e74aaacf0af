package lexer

import "testing"

func kinds(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func assertKinds(t *testing.T, src string, want []TokenType) {
	t.Helper()
	got := kinds(NewScanner(src).ScanTokens())
	if len(got) != len(want) {
		t.Fatalf("ScanTokens(%q) = %v, want %v", src, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ScanTokens(%q)[%d] = %s, want %s", src, i, got[i], want[i])
		}
	}
}

func TestVarAndLetCollapseToSameKind(t *testing.T) {
	assertKinds(t, "var x", []TokenType{TokenVar, TokenIdent, TokenEOF})
	assertKinds(t, "let x", []TokenType{TokenVar, TokenIdent, TokenEOF})
}

func TestFunctionAndFunCollapseToSameKind(t *testing.T) {
	assertKinds(t, "function f", []TokenType{TokenFunction, TokenIdent, TokenEOF})
	assertKinds(t, "fun f", []TokenType{TokenFunction, TokenIdent, TokenEOF})
}

func TestOperatorsDisambiguateLongestMatchFirst(t *testing.T) {
	assertKinds(t, "a === b", []TokenType{TokenIdent, TokenEqualEqualEqual, TokenIdent, TokenEOF})
	assertKinds(t, "a !== b", []TokenType{TokenIdent, TokenBangEqualEqual, TokenIdent, TokenEOF})
	assertKinds(t, "a == b", []TokenType{TokenIdent, TokenEqualEqual, TokenIdent, TokenEOF})
	assertKinds(t, "x += 1", []TokenType{TokenIdent, TokenPlusEqual, TokenNumber, TokenEOF})
	assertKinds(t, "x++", []TokenType{TokenIdent, TokenPlusPlus, TokenEOF})
	assertKinds(t, "() => x", []TokenType{TokenLParen, TokenRParen, TokenArrow, TokenIdent, TokenEOF})
}

func TestStringAcceptsSingleOrDoubleQuotes(t *testing.T) {
	toks := NewScanner(`"a" 'b'`).ScanTokens()
	if toks[0].Kind != TokenString || toks[0].Literal != "a" {
		t.Fatalf("double-quoted string: got %+v", toks[0])
	}
	if toks[1].Kind != TokenString || toks[1].Literal != "b" {
		t.Fatalf("single-quoted string: got %+v", toks[1])
	}
}

func TestUnterminatedBlockCommentIsDiagnosedButScanningContinues(t *testing.T) {
	s := NewScanner("/* never closes\nvar x")
	toks := s.ScanTokens()
	if len(s.Diagnostics()) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(s.Diagnostics()))
	}
	if len(toks) != 1 || toks[0].Kind != TokenEOF {
		t.Fatalf("unterminated block comment should swallow the rest of the file, got %v", toks)
	}
}

func TestUnrecognisedCharacterIsSilentlySkipped(t *testing.T) {
	assertKinds(t, "x @ y", []TokenType{TokenIdent, TokenIdent, TokenEOF})
}

func TestShebangLineIsSkipped(t *testing.T) {
	assertKinds(t, "#!/usr/bin/env nimbus\nvar x", []TokenType{TokenVar, TokenIdent, TokenEOF})
}

func TestNumberLiteralWithFraction(t *testing.T) {
	toks := NewScanner("3.5").ScanTokens()
	if toks[0].Kind != TokenNumber || toks[0].Literal != 3.5 {
		t.Fatalf("got %+v, want 3.5", toks[0])
	}
}

func TestLineCommentDoesNotConsumeNewline(t *testing.T) {
	toks := NewScanner("1 // comment\n2").ScanTokens()
	if toks[0].Line != 1 || toks[1].Line != 2 {
		t.Fatalf("expected lines 1 and 2, got %d and %d", toks[0].Line, toks[1].Line)
	}
}
