package expr

import (
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokString // reserved, not currently producible by the grammar
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

type lexer struct {
	src []rune
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src)}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
func isIdentCont(r rune) bool { return isIdentStart(r) || isDigit(r) }

func (l *lexer) peekRune() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		r := l.src[l.pos]
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			l.pos++
			continue
		}
		break
	}
}

// two-character operators, longest-match first within equal length.
var twoCharOps = []string{"==", "!=", "<=", ">=", "&&", "||"}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: start}, nil
	}
	r := l.src[l.pos]

	if isDigit(r) || (r == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])) {
		return l.lexNumber(start)
	}
	if isIdentStart(r) {
		for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: string(l.src[start:l.pos]), pos: start}, nil
	}

	if l.pos+1 < len(l.src) {
		two := string(l.src[l.pos : l.pos+2])
		for _, op := range twoCharOps {
			if two == op {
				l.pos += 2
				return token{kind: tokPunct, text: two, pos: start}, nil
			}
		}
	}

	switch r {
	case '+', '-', '*', '/', '%', '(', ')', '<', '>', '!', '?', ':', ',', '.':
		l.pos++
		return token{kind: tokPunct, text: string(r), pos: start}, nil
	default:
		return token{}, &CompileError{Position: start, Message: "unexpected character " + strconv.QuoteRune(r)}
	}
}

func (l *lexer) lexNumber(start int) (token, error) {
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		save := l.pos
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		} else {
			l.pos = save
		}
	}
	text := string(l.src[start:l.pos])
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, &CompileError{Position: start, Message: "invalid number literal " + strconv.Quote(text)}
	}
	return token{kind: tokNumber, text: text, num: n, pos: start}, nil
}

// tokenize runs the lexer to completion, used by the parser which wants
// one-token lookahead over a slice rather than re-invoking next().
func tokenize(src string) ([]token, error) {
	l := newLexer(src)
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			break
		}
	}
	return toks, nil
}

func quoteIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "<empty>"
	}
	return s
}
