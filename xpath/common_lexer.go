// Copyright (c) 2019-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Credit for the 'next' function goes to whoever wrote the 'expr'
// YACC example in the Go source code.
//
// This file implements XPath lexing / tokenisation.  Names are
// context-sensitive per the ambiguity rules of the XPath grammar: a
// QName in a position where an operator may appear is reinterpreted as
// the operator of that spelling ('div', 'and', 'to', ...), a name
// followed by '(' is a function or kind test, a name followed by '::'
// is an axis, and 'for'/'let'/'some'/'every' bind only when directly
// followed by '$'.

package xpath

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sdcio/xmlpath/xpath/xutils"
)

// NumTyp discriminates the three numeric literal forms.
type NumTyp int

const (
	NumInteger NumTyp = iota
	NumDecimal
	NumDouble
)

// Token is a single lexed token.  Pos is the 1-based rune offset of
// the token's first rune within the expression.
type Token struct {
	Typ    int
	Pos    int
	Val    float64
	IVal   int64
	NumTyp NumTyp
	Name   string // literal text, local name, axis/node-type name
	Prefix string // QName prefix for NAMETEST / FUNC / VARREF
}

// COMMONLEX
type CommonLex struct {
	line []byte
	err  error

	// Internal use only
	bytePos   int
	runeOff   int // 1-based offset of the last rune handed out
	peek      rune
	errOff    int
	precToken int // Preceding token type, if any (otherwise EOF)
}

func NewCommonLex(line []byte) CommonLex {
	return CommonLex{line: line}
}

func (x *CommonLex) GetError() error { return x.err }

func (x *CommonLex) SetError(err error) {
	if x.err == nil {
		x.err = err
		x.errOff = x.runeOff
		if x.errOff == 0 {
			x.errOff = 1
		}
	}
}

// ErrorOffset returns the rune offset recorded with the first error.
func (x *CommonLex) ErrorOffset() int { return x.errOff }

// NextToken lexes and returns the next token, remembering its type
// for the operator/name disambiguation on the following one.
func (x *CommonLex) NextToken() Token {
	tok := x.lexToken()
	if tok.Typ != xutils.ERR {
		x.precToken = tok.Typ
	}
	return tok
}

func (x *CommonLex) lexToken() Token {
	c := x.NextNonWhitespace()
	start := x.runeOff

	switch c {
	case xutils.EOF:
		return Token{Typ: xutils.EOF, Pos: start}

	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return x.LexNum(c, start)

	case '.':
		return x.LexDot(c, start)

	case '"', '\'':
		return x.LexLiteral(c, start)

	case '/':
		return x.LexSlash(start)

	case ':':
		return x.LexColon(start)

	case '*':
		return x.LexAsterisk(start)

	case '=', '<', '>', '!':
		return x.LexRelationalOperator(c, start)

	case '$':
		return x.LexDollar(start)

	case '(', ')', '[', ']', '@', ',', '|', '+', '-', '?':
		return Token{Typ: int(c), Pos: start}
	}

	if x.IsNameStartChar(c) {
		return x.LexName(c, start)
	}

	x.SetError(fmt.Errorf("unrecognised character '%c'", c))
	return Token{Typ: xutils.ERR, Pos: start}
}

func (x *CommonLex) LexDot(c rune, start int) Token {
	// Could be '.', '..', or a number like '.5'.
	next := x.Next()
	switch next {
	case '.':
		return Token{Typ: xutils.DOTDOT, Pos: start}
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		x.pushback(next)
		return x.LexNum(c, start)
	default:
		x.pushback(next)
		return Token{Typ: '.', Pos: start}
	}
}

func (x *CommonLex) LexSlash(start int) Token {
	// Could be '/' or '//'.  NB - this is not 'divide', ever.
	next := x.Next()
	if next == '/' {
		return Token{Typ: xutils.DBLSLASH, Pos: start}
	}
	x.pushback(next)
	return Token{Typ: '/', Pos: start}
}

func (x *CommonLex) LexColon(start int) Token {
	// '::' separates an axis from its node test; ':=' binds in 'let'.
	// Single colons only occur inside QNames and are consumed there.
	next := x.Next()
	switch next {
	case ':':
		return Token{Typ: xutils.DBLCOLON, Pos: start}
	case '=':
		return Token{Typ: xutils.ASSIGN, Pos: start}
	}
	x.pushback(next)
	x.SetError(fmt.Errorf("':' only supported in QNames"))
	return Token{Typ: xutils.ERR, Pos: start}
}

func (x *CommonLex) LexAsterisk(start int) Token {
	if x.tokenCanBeOperator() {
		return Token{Typ: '*', Pos: start}
	}

	// Wildcard name test: '*', or the '*:local' form.
	if x.NextNonWhitespaceStringIs(":") && !x.NextNonWhitespaceStringIs("::") {
		x.NextNonWhitespace() // consume ':'
		c := x.NextNonWhitespace()
		if !x.IsNameStartChar(c) {
			x.SetError(fmt.Errorf("'*:' requires a local name"))
			return Token{Typ: xutils.ERR, Pos: start}
		}
		local := x.ConstructToken(c, x.nameMatcher(), "NAME")
		return Token{Typ: xutils.NAMETEST, Pos: start,
			Prefix: "*", Name: local.String()}
	}

	return Token{Typ: xutils.NAMETEST, Pos: start, Name: "*"}
}

func (x *CommonLex) LexRelationalOperator(c rune, start int) Token {
	switch c {
	case '=':
		return Token{Typ: xutils.EQ, Pos: start}

	case '>':
		next := x.Next()
		switch next {
		case '=':
			return Token{Typ: xutils.GE, Pos: start}
		case '>':
			return Token{Typ: xutils.FOLLOWS, Pos: start}
		}
		x.pushback(next)
		return Token{Typ: xutils.GT, Pos: start}

	case '<':
		next := x.Next()
		switch next {
		case '=':
			return Token{Typ: xutils.LE, Pos: start}
		case '<':
			return Token{Typ: xutils.PRECEDES, Pos: start}
		}
		x.pushback(next)
		return Token{Typ: xutils.LT, Pos: start}

	case '!':
		next := x.Next()
		if next == '=' {
			return Token{Typ: xutils.NE, Pos: start}
		}
		// Bare '!' is the simple map operator.
		x.pushback(next)
		return Token{Typ: '!', Pos: start}
	}

	x.SetError(fmt.Errorf("invalid relational operator"))
	return Token{Typ: xutils.ERR, Pos: start}
}

// LexDollar lexes a variable reference: '$' QName.
func (x *CommonLex) LexDollar(start int) Token {
	c := x.NextNonWhitespace()
	if !x.IsNameStartChar(c) {
		x.SetError(fmt.Errorf("'$' requires a variable name"))
		return Token{Typ: xutils.ERR, Pos: start}
	}
	prefix, local, ok := x.lexQName(c)
	if !ok {
		return Token{Typ: xutils.ERR, Pos: start}
	}
	return Token{Typ: xutils.VARREF, Pos: start, Prefix: prefix, Name: local}
}

// Lex a non-literal name (ie something textual that isn't quoted).
//
// Rules for disambiguating:
//
// (a) If there is a preceding token, and said token is none of '@',
//     '::', '(', '[', ',' or an Operator, then the NCName must be
//     recognised as an OperatorName ('div', 'and', 'to', 'eq', ...).
//
// (b) 'for', 'let', 'some' and 'every' directly followed by '$' are
//     binding keywords; 'if' directly followed by '(' is the
//     conditional.
//
// (c) If an NCName is followed by '::' (possibly with intervening
//     whitespace) then the NCName must be recognised as an AxisName.
//
// (d) If the character following a QName (possibly after intervening
//     whitespace) is '(', then the token must be recognized as a
//     NodeType / kind test or a FunctionName.
//
// (e) In all other cases the token is a NameTest.
func (x *CommonLex) LexName(c rune, start int) Token {
	name := x.ConstructToken(c, x.nameMatcher(), "NAME")

	if x.tokenCanBeOperator() {
		return x.getOperatorName(name.String(), start)
	}

	if tok, ok := xutils.LookupBinderName(name.String()); ok {
		if x.NextNonWhitespaceStringIs("$") {
			return Token{Typ: tok, Pos: start}
		}
	}

	if name.String() == "if" && x.NextNonWhitespaceStringIs("(") {
		return Token{Typ: xutils.IF, Pos: start}
	}

	// If next non-whitespace token is '::', NCName is an AxisName.
	if x.NextNonWhitespaceStringIs("::") {
		if xutils.IsAxisName(name.String()) {
			return Token{Typ: xutils.AXISNAME, Pos: start, Name: name.String()}
		}
		x.SetError(fmt.Errorf("unknown axis name: '%s'", name.String()))
		return Token{Typ: xutils.ERR, Pos: start}
	}

	// Assemble the full QName (or prefix:* wildcard) before deciding
	// between kind test, function and name test.
	prefix, local, wildcard := "", name.String(), false
	if x.NextNonWhitespaceStringIs(":") && !x.NextNonWhitespaceStringIs(":=") {
		if c := x.NextNonWhitespace(); c != ':' {
			x.SetError(fmt.Errorf("badly formatted QName (exp ':', got '%c')", c))
			return Token{Typ: xutils.ERR, Pos: start}
		}
		prefix = name.String()
		c := x.NextNonWhitespace()
		switch {
		case c == '*':
			local, wildcard = "*", true
		case x.IsNameStartChar(c):
			localBuf := x.ConstructToken(c, x.nameMatcher(), "NAME")
			local = localBuf.String()
		default:
			x.SetError(fmt.Errorf("name requires local part"))
			return Token{Typ: xutils.ERR, Pos: start}
		}
	}

	if !wildcard && x.NextNonWhitespaceStringIs("(") {
		if prefix == "" && xutils.IsNodeTypeName(local) {
			return Token{Typ: xutils.NODETYPE, Pos: start, Name: local}
		}
		return Token{Typ: xutils.FUNC, Pos: start, Prefix: prefix, Name: local}
	}

	return Token{Typ: xutils.NAMETEST, Pos: start, Prefix: prefix, Name: local}
}

// lexQName reads the remainder of a QName whose first rune is c.
func (x *CommonLex) lexQName(c rune) (prefix, local string, ok bool) {
	name := x.ConstructToken(c, x.nameMatcher(), "NAME")
	local = name.String()
	if !x.NextNonWhitespaceStringIs(":") ||
		x.NextNonWhitespaceStringIs("::") ||
		x.NextNonWhitespaceStringIs(":=") {
		return "", local, true
	}
	x.NextNonWhitespace() // consume ':'
	c = x.NextNonWhitespace()
	if !x.IsNameStartChar(c) {
		x.SetError(fmt.Errorf("name requires local part"))
		return "", "", false
	}
	localBuf := x.ConstructToken(c, x.nameMatcher(), "NAME")
	return local, localBuf.String(), true
}

// getOperatorName validates the operator name.  If not valid, an
// error is flagged.
func (x *CommonLex) getOperatorName(name string, start int) Token {
	if tok, ok := xutils.LookupOperatorName(name); ok {
		return Token{Typ: tok, Pos: start, Name: name}
	}
	x.SetError(fmt.Errorf("name '%s' found where operator expected", name))
	return Token{Typ: xutils.ERR, Pos: start}
}

// Lex 'literal' string contained in single or double quotes.  A
// doubled quote character inside the literal escapes to one quote.
func (x *CommonLex) LexLiteral(quote rune, start int) Token {
	var b bytes.Buffer
	for {
		c := x.Next()
		if c == xutils.EOF {
			x.SetError(fmt.Errorf("unterminated string literal"))
			return Token{Typ: xutils.ERR, Pos: start}
		}
		if c == quote {
			next := x.Next()
			if next != quote {
				x.pushback(next)
				break
			}
			// Doubled quote - literal quote character.
		}
		b.WriteRune(c)
	}
	return Token{Typ: xutils.LITERAL, Pos: start, Name: b.String()}
}

// Lex a number: digits with optional fraction and optional exponent.
// The literal's form picks its type: plain digits are an integer, a
// decimal point makes a decimal, an exponent makes a double.
func (x *CommonLex) LexNum(c rune, start int) Token {
	var b bytes.Buffer
	typ := NumInteger

	digits := func() {
		for c >= '0' && c <= '9' {
			b.WriteRune(c)
			c = x.Next()
		}
	}

	digits()
	if c == '.' {
		typ = NumDecimal
		b.WriteRune(c)
		c = x.Next()
		digits()
	}
	if c == 'e' || c == 'E' {
		typ = NumDouble
		b.WriteRune(c)
		c = x.Next()
		if c == '+' || c == '-' {
			b.WriteRune(c)
			c = x.Next()
		}
		if c < '0' || c > '9' {
			x.SetError(fmt.Errorf("bad number %q", b.String()))
			return Token{Typ: xutils.ERR, Pos: start}
		}
		digits()
	}
	x.pushback(c)

	val, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		x.SetError(fmt.Errorf("bad number %q", b.String()))
		return Token{Typ: xutils.ERR, Pos: start}
	}
	tok := Token{Typ: xutils.NUM, Pos: start, Val: val, NumTyp: typ}
	if typ == NumInteger {
		ival, err := strconv.ParseInt(b.String(), 10, 64)
		if err != nil {
			// Out of int64 range - fall back to double semantics.
			tok.NumTyp = NumDouble
		} else {
			tok.IVal = ival
		}
	}
	return tok
}

// An operator cannot follow a specific set of other tokens, which
// include other operators (quite reasonably).  See XPATH section 3.7.
func (x *CommonLex) tokenCanBeOperator() bool {
	switch x.precToken {
	case xutils.EOF, '@', xutils.DBLCOLON, '(', '[', ',', '$', '!':
		return false

	case xutils.AND, xutils.OR, xutils.MOD, xutils.DIV, xutils.IDIV,
		xutils.TO, xutils.IS, xutils.UNION, xutils.INTERSECT, xutils.EXCEPT,
		xutils.VALEQ, xutils.VALNE, xutils.VALLT, xutils.VALLE,
		xutils.VALGT, xutils.VALGE,
		xutils.INSTANCE, xutils.OF, xutils.CAST, xutils.CASTABLE,
		xutils.TREAT, xutils.AS:
		return false

	case xutils.FOR, xutils.LET, xutils.SOME, xutils.EVERY, xutils.IF,
		xutils.THEN, xutils.ELSE, xutils.RETURN, xutils.IN,
		xutils.SATISFIES, xutils.ASSIGN:
		return false

	case '*', '/', xutils.DBLSLASH, '|', '+', '-',
		xutils.EQ, xutils.NE, xutils.LT, xutils.LE, xutils.GT, xutils.GE,
		xutils.PRECEDES, xutils.FOLLOWS:
		return false
	}

	return true
}

// Useful for any multi-character token in conjunction with
// ConstructToken().
type tokenMatcherFn func(c rune) bool

func (x *CommonLex) nameMatcher() tokenMatcherFn {
	return func(c rune) bool { return x.IsNameChar(c) }
}

// Given first character in token and function to identify further
// elements, return full token and leave the first unmatched rune
// pushed back.
func (x *CommonLex) ConstructToken(
	c rune,
	tokenMatcher tokenMatcherFn,
	tokenName string,
) bytes.Buffer {
	var b bytes.Buffer
	b.WriteRune(c)

	for {
		c = x.Next()
		if c == xutils.EOF {
			break
		}
		if !tokenMatcher(c) {
			x.pushback(c)
			break
		}
		b.WriteRune(c)
	}
	return b
}

// Return the next rune for the lexer, counting rune offsets so token
// positions and error messages can point into the expression.
func (x *CommonLex) Next() rune {
	if x.peek != 0 {
		r := x.peek
		x.peek = 0
		x.runeOff++
		return r
	}
	if x.bytePos >= len(x.line) {
		return xutils.EOF
	}
	c, size := utf8.DecodeRune(x.line[x.bytePos:])
	x.bytePos += size
	x.runeOff++
	if c == utf8.RuneError && size == 1 {
		x.SetError(fmt.Errorf("invalid utf8 in expression"))
		return xutils.EOF
	}
	return c
}

func (x *CommonLex) pushback(c rune) {
	if c == xutils.EOF {
		return
	}
	x.peek = c
	x.runeOff--
}

func (x *CommonLex) NextNonWhitespace() rune {
	c := x.Next()
	for isWhitespace(c) {
		c = x.Next()
	}
	return c
}

// NextNonWhitespaceStringIs peeks ahead (skipping whitespace) to see
// whether the upcoming text starts with the given string.  Nothing is
// consumed.
func (x *CommonLex) NextNonWhitespaceStringIs(expect string) bool {
	var ahead strings.Builder
	if x.peek != 0 && !isWhitespace(x.peek) {
		ahead.WriteRune(x.peek)
	}
	rest := x.line[x.bytePos:]
	i := 0
	if ahead.Len() == 0 {
		for i < len(rest) {
			c, size := utf8.DecodeRune(rest[i:])
			if !isWhitespace(c) {
				break
			}
			i += size
		}
	}
	for i < len(rest) && ahead.Len() < len(expect) {
		c, size := utf8.DecodeRune(rest[i:])
		ahead.WriteRune(c)
		i += size
	}
	return strings.HasPrefix(ahead.String(), expect)
}

func isWhitespace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func (x *CommonLex) IsNameStartChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		c == '_' || c >= 0x80
}

func (x *CommonLex) IsNameChar(c rune) bool {
	return x.IsNameStartChar(c) ||
		(c >= '0' && c <= '9') || c == '-' || c == '.'
}
