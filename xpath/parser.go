// Copyright (c) 2019-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Recursive descent parser turning the token stream into an AST.
// Precedence, loosest first: ','  for/let/some/every/if  or  and
// comparison  to  +/-  * div idiv mod  | union  intersect/except
// instance/treat/castable/cast  unary sign  !  path  step  primary.

package xpath

import (
	"fmt"

	"github.com/sdcio/xmlpath/xpath/xutils"
)

type parser struct {
	lex CommonLex
	cur Token
}

// ParseExpr parses an expression into an unresolved AST.  The
// returned tree must be bound to a namespace scope by the rewriter
// before evaluation.
func ParseExpr(expr string) (Expr, error) {
	p := &parser{lex: NewCommonLex([]byte(expr))}
	if err := p.advance(); err != nil {
		return nil, err
	}
	tree, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if p.cur.Typ != xutils.EOF {
		return nil, p.unexpected("end of expression")
	}
	return tree, nil
}

func (p *parser) advance() error {
	tok := p.lex.NextToken()
	if tok.Typ == xutils.ERR {
		err := p.lex.GetError()
		desc := "lex error"
		if err != nil {
			desc = err.Error()
		}
		return newParseError(p.lex.ErrorOffset(), desc, "")
	}
	p.cur = tok
	return nil
}

// expect consumes the given token type or fails.
func (p *parser) expect(typ int) error {
	if p.cur.Typ != typ {
		return p.unexpected(xutils.GetTokenName(typ))
	}
	return p.advance()
}

func (p *parser) unexpected(expected string) error {
	return newParseError(p.cur.Pos,
		fmt.Sprintf("unexpected token '%s'", xutils.GetTokenName(p.cur.Typ)),
		expected)
}

// parseExprList handles the ',' sequence constructor.
func (p *parser) parseExprList() (Expr, error) {
	off := p.cur.Pos
	first, err := p.parseExprSingle()
	if err != nil {
		return nil, err
	}
	if p.cur.Typ != ',' {
		return first, nil
	}
	exprs := []Expr{first}
	for p.cur.Typ == ',' {
		if err := p.advance(); err != nil {
			return nil, err
		}
		next, err := p.parseExprSingle()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, next)
	}
	return &seqExpr{baseExpr{off}, exprs}, nil
}

func (p *parser) parseExprSingle() (Expr, error) {
	switch p.cur.Typ {
	case xutils.FOR:
		return p.parseForExpr()
	case xutils.LET:
		return p.parseLetExpr()
	case xutils.SOME, xutils.EVERY:
		return p.parseQuantExpr()
	case xutils.IF:
		return p.parseIfExpr()
	}
	return p.parseOr()
}

// parseBindings parses '$v in/:= E (, $w in/:= E)*'.
func (p *parser) parseBindings(sepTok int) ([]binding, error) {
	var bindings []binding
	for {
		if p.cur.Typ != xutils.VARREF {
			return nil, p.unexpected("$varname")
		}
		b := binding{off: p.cur.Pos, prefix: p.cur.Prefix, local: p.cur.Name}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect(sepTok); err != nil {
			return nil, err
		}
		seq, err := p.parseExprSingle()
		if err != nil {
			return nil, err
		}
		b.seq = seq
		bindings = append(bindings, b)

		if p.cur.Typ != ',' {
			return bindings, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseForExpr() (Expr, error) {
	off := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	bindings, err := p.parseBindings(xutils.IN)
	if err != nil {
		return nil, err
	}
	if err := p.expect(xutils.RETURN); err != nil {
		return nil, err
	}
	ret, err := p.parseExprSingle()
	if err != nil {
		return nil, err
	}
	return &forExpr{baseExpr{off}, bindings, ret}, nil
}

func (p *parser) parseLetExpr() (Expr, error) {
	off := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	bindings, err := p.parseBindings(xutils.ASSIGN)
	if err != nil {
		return nil, err
	}
	if err := p.expect(xutils.RETURN); err != nil {
		return nil, err
	}
	ret, err := p.parseExprSingle()
	if err != nil {
		return nil, err
	}
	return &letExpr{baseExpr{off}, bindings, ret}, nil
}

func (p *parser) parseQuantExpr() (Expr, error) {
	off := p.cur.Pos
	every := p.cur.Typ == xutils.EVERY
	if err := p.advance(); err != nil {
		return nil, err
	}
	bindings, err := p.parseBindings(xutils.IN)
	if err != nil {
		return nil, err
	}
	if err := p.expect(xutils.SATISFIES); err != nil {
		return nil, err
	}
	cond, err := p.parseExprSingle()
	if err != nil {
		return nil, err
	}
	return &quantExpr{baseExpr{off}, every, bindings, cond}, nil
}

func (p *parser) parseIfExpr() (Expr, error) {
	off := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect('('); err != nil {
		return nil, err
	}
	cond, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	if err := p.expect(xutils.THEN); err != nil {
		return nil, err
	}
	then, err := p.parseExprSingle()
	if err != nil {
		return nil, err
	}
	if err := p.expect(xutils.ELSE); err != nil {
		return nil, err
	}
	els, err := p.parseExprSingle()
	if err != nil {
		return nil, err
	}
	return &ifExpr{baseExpr{off}, cond, then, els}, nil
}

func (p *parser) parseOr() (Expr, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Typ == xutils.OR {
		off := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = &orExpr{baseExpr{off}, lhs, rhs}
	}
	return lhs, nil
}

func (p *parser) parseAnd() (Expr, error) {
	lhs, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.cur.Typ == xutils.AND {
		off := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		lhs = &andExpr{baseExpr{off}, lhs, rhs}
	}
	return lhs, nil
}

var generalCmpTokens = map[int]cmpOp{
	xutils.EQ: cmpEq, xutils.NE: cmpNe,
	xutils.LT: cmpLt, xutils.LE: cmpLe,
	xutils.GT: cmpGt, xutils.GE: cmpGe,
}

var valueCmpTokens = map[int]cmpOp{
	xutils.VALEQ: cmpEq, xutils.VALNE: cmpNe,
	xutils.VALLT: cmpLt, xutils.VALLE: cmpLe,
	xutils.VALGT: cmpGt, xutils.VALGE: cmpGe,
}

var nodeCmpTokens = map[int]nodeCmpOp{
	xutils.IS:       nodeIs,
	xutils.PRECEDES: nodePrecedes,
	xutils.FOLLOWS:  nodeFollows,
}

// parseComparison - comparisons do not associate: 'a = b = c' is a
// parse error.
func (p *parser) parseComparison() (Expr, error) {
	lhs, err := p.parseRange()
	if err != nil {
		return nil, err
	}

	off := p.cur.Pos
	if op, ok := generalCmpTokens[p.cur.Typ]; ok {
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		return &generalCmp{baseExpr{off}, op, lhs, rhs}, nil
	}
	if op, ok := valueCmpTokens[p.cur.Typ]; ok {
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		return &valueCmp{baseExpr{off}, op, lhs, rhs}, nil
	}
	if op, ok := nodeCmpTokens[p.cur.Typ]; ok {
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		return &nodeCmp{baseExpr{off}, op, lhs, rhs}, nil
	}
	return lhs, nil
}

func (p *parser) parseRange() (Expr, error) {
	lhs, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.cur.Typ != xutils.TO {
		return lhs, nil
	}
	off := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	rhs, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &rangeExpr{baseExpr{off}, lhs, rhs}, nil
}

func (p *parser) parseAdditive() (Expr, error) {
	lhs, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur.Typ == '+' || p.cur.Typ == '-' {
		op := opAdd
		if p.cur.Typ == '-' {
			op = opSub
		}
		off := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		lhs = &arithExpr{baseExpr{off}, op, lhs, rhs}
	}
	return lhs, nil
}

var multiplicativeTokens = map[int]arithOp{
	'*':         opMul,
	xutils.DIV:  opDiv,
	xutils.IDIV: opIDiv,
	xutils.MOD:  opMod,
}

func (p *parser) parseMultiplicative() (Expr, error) {
	lhs, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := multiplicativeTokens[p.cur.Typ]
		if !ok {
			return lhs, nil
		}
		off := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		lhs = &arithExpr{baseExpr{off}, op, lhs, rhs}
	}
}

func (p *parser) parseUnion() (Expr, error) {
	lhs, err := p.parseIntersectExcept()
	if err != nil {
		return nil, err
	}
	for p.cur.Typ == '|' || p.cur.Typ == xutils.UNION {
		off := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseIntersectExcept()
		if err != nil {
			return nil, err
		}
		lhs = &unionExpr{baseExpr{off}, lhs, rhs}
	}
	return lhs, nil
}

func (p *parser) parseIntersectExcept() (Expr, error) {
	lhs, err := p.parseInstanceOf()
	if err != nil {
		return nil, err
	}
	for p.cur.Typ == xutils.INTERSECT || p.cur.Typ == xutils.EXCEPT {
		except := p.cur.Typ == xutils.EXCEPT
		off := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseInstanceOf()
		if err != nil {
			return nil, err
		}
		lhs = &intersectExpr{baseExpr{off}, except, lhs, rhs}
	}
	return lhs, nil
}

func (p *parser) parseInstanceOf() (Expr, error) {
	operand, err := p.parseTreat()
	if err != nil {
		return nil, err
	}
	if p.cur.Typ != xutils.INSTANCE {
		return operand, nil
	}
	off := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(xutils.OF); err != nil {
		return nil, err
	}
	typ, err := p.parseSequenceType()
	if err != nil {
		return nil, err
	}
	return &instanceOfExpr{baseExpr{off}, operand, typ}, nil
}

func (p *parser) parseTreat() (Expr, error) {
	operand, err := p.parseCastable()
	if err != nil {
		return nil, err
	}
	if p.cur.Typ != xutils.TREAT {
		return operand, nil
	}
	off := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(xutils.AS); err != nil {
		return nil, err
	}
	typ, err := p.parseSequenceType()
	if err != nil {
		return nil, err
	}
	return &treatExpr{baseExpr{off}, operand, typ}, nil
}

func (p *parser) parseCastable() (Expr, error) {
	operand, err := p.parseCast()
	if err != nil {
		return nil, err
	}
	if p.cur.Typ != xutils.CASTABLE {
		return operand, nil
	}
	off := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(xutils.AS); err != nil {
		return nil, err
	}
	target, optional, err := p.parseSingleType()
	if err != nil {
		return nil, err
	}
	return &castExpr{baseExpr{off}, operand, target, optional, true}, nil
}

func (p *parser) parseCast() (Expr, error) {
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.cur.Typ != xutils.CAST {
		return operand, nil
	}
	off := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(xutils.AS); err != nil {
		return nil, err
	}
	target, optional, err := p.parseSingleType()
	if err != nil {
		return nil, err
	}
	return &castExpr{baseExpr{off}, operand, target, optional, false}, nil
}

func (p *parser) parseUnary() (Expr, error) {
	negate := false
	signed := false
	off := p.cur.Pos
	for p.cur.Typ == '-' || p.cur.Typ == '+' {
		if p.cur.Typ == '-' {
			negate = !negate
		}
		signed = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	operand, err := p.parseMap()
	if err != nil {
		return nil, err
	}
	if !signed {
		return operand, nil
	}
	return &unaryExpr{baseExpr{off}, negate, operand}, nil
}

func (p *parser) parseMap() (Expr, error) {
	lhs, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	for p.cur.Typ == '!' {
		off := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		lhs = &mapExpr{baseExpr{off}, lhs, rhs}
	}
	return lhs, nil
}

// canStartStep reports whether the current token can begin a path
// step (axis step or primary expression).
func (p *parser) canStartStep() bool {
	switch p.cur.Typ {
	case xutils.AXISNAME, xutils.NAMETEST, xutils.NODETYPE, '@', '.',
		xutils.DOTDOT, xutils.NUM, xutils.LITERAL, xutils.VARREF, '(',
		xutils.FUNC:
		return true
	}
	return false
}

func (p *parser) parsePath() (Expr, error) {
	off := p.cur.Pos

	switch p.cur.Typ {
	case '/':
		if err := p.advance(); err != nil {
			return nil, err
		}
		if !p.canStartStep() {
			// Bare '/' selects the document node.
			return &pathExpr{baseExpr{off}, true, nil}, nil
		}
		steps, err := p.parseRelativePath()
		if err != nil {
			return nil, err
		}
		return &pathExpr{baseExpr{off}, true, steps}, nil

	case xutils.DBLSLASH:
		if err := p.advance(); err != nil {
			return nil, err
		}
		steps, err := p.parseRelativePath()
		if err != nil {
			return nil, err
		}
		steps = append([]Expr{descendantOrSelfStep(off)}, steps...)
		return &pathExpr{baseExpr{off}, true, steps}, nil
	}

	steps, err := p.parseRelativePath()
	if err != nil {
		return nil, err
	}
	if len(steps) == 1 {
		return steps[0], nil
	}
	return &pathExpr{baseExpr{off}, false, steps}, nil
}

// descendantOrSelfStep builds the step '//' abbreviates.
func descendantOrSelfStep(off int) Expr {
	return &stepExpr{
		baseExpr: baseExpr{off},
		axis:     axisDescendantOrSelf,
		test:     nodeTest{kind: testNode},
	}
}

func (p *parser) parseRelativePath() ([]Expr, error) {
	step, err := p.parseStep()
	if err != nil {
		return nil, err
	}
	steps := []Expr{step}

	for {
		switch p.cur.Typ {
		case '/':
			if err := p.advance(); err != nil {
				return nil, err
			}
		case xutils.DBLSLASH:
			off := p.cur.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			steps = append(steps, descendantOrSelfStep(off))
		default:
			return steps, nil
		}
		step, err := p.parseStep()
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
}

// parseStep parses one step: an axis step, the '..' abbreviation, or
// a primary expression, each with optional predicates.
func (p *parser) parseStep() (Expr, error) {
	off := p.cur.Pos

	switch p.cur.Typ {
	case xutils.AXISNAME:
		axis := axisNameMap[p.cur.Name]
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect(xutils.DBLCOLON); err != nil {
			return nil, err
		}
		return p.parseAxisStep(off, axis)

	case '@':
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.parseAxisStep(off, axisAttribute)

	case xutils.DOTDOT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		step := &stepExpr{
			baseExpr: baseExpr{off},
			axis:     axisParent,
			test:     nodeTest{kind: testNode},
		}
		return p.parsePredicates(step)

	case xutils.NAMETEST, xutils.NODETYPE:
		return p.parseAxisStep(off, axisChild)
	}

	// Otherwise this step is a primary expression (filter expr).
	primary, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.cur.Typ != '[' {
		return primary, nil
	}
	preds, err := p.parsePredicateList()
	if err != nil {
		return nil, err
	}
	return &filterExpr{baseExpr{off}, primary, preds}, nil
}

// parseAxisStep finishes a step once the axis is known, starting at
// the node test.
func (p *parser) parseAxisStep(off int, axis axisType) (Expr, error) {
	test, err := p.parseNodeTest(axis)
	if err != nil {
		return nil, err
	}
	step := &stepExpr{baseExpr: baseExpr{off}, axis: axis, test: test}
	return p.parsePredicates(step)
}

func (p *parser) parsePredicates(step *stepExpr) (Expr, error) {
	preds, err := p.parsePredicateList()
	if err != nil {
		return nil, err
	}
	step.preds = preds
	step.positional = make([]bool, len(preds))
	return step, nil
}

func (p *parser) parsePredicateList() ([]Expr, error) {
	var preds []Expr
	for p.cur.Typ == '[' {
		if err := p.advance(); err != nil {
			return nil, err
		}
		pred, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

func (p *parser) parseNodeTest(axis axisType) (nodeTest, error) {
	switch p.cur.Typ {
	case xutils.NAMETEST:
		test := nodeTest{
			kind:   testName,
			prefix: p.cur.Prefix,
			local:  p.cur.Name,
		}
		if test.prefix == "" && test.local == "*" {
			test.anyName = true
		}
		if err := p.advance(); err != nil {
			return nodeTest{}, err
		}
		return test, nil

	case xutils.NODETYPE:
		return p.parseKindTest()
	}
	return nodeTest{}, p.unexpected("node test")
}

// parseKindTest parses node() text() comment()
// processing-instruction(target?) element(name?) attribute(name?)
// document-node().
func (p *parser) parseKindTest() (nodeTest, error) {
	name := p.cur.Name
	off := p.cur.Pos
	if err := p.advance(); err != nil {
		return nodeTest{}, err
	}
	if err := p.expect('('); err != nil {
		return nodeTest{}, err
	}

	test := nodeTest{anyName: true}
	switch name {
	case "node":
		test.kind = testNode
	case "text":
		test.kind = testText
	case "comment":
		test.kind = testComment
	case "document-node":
		test.kind = testDocument
	case "processing-instruction":
		test.kind = testPI
		switch p.cur.Typ {
		case xutils.LITERAL:
			test.piTarget = p.cur.Name
			if err := p.advance(); err != nil {
				return nodeTest{}, err
			}
		case xutils.NAMETEST:
			if p.cur.Prefix != "" || p.cur.Name == "*" {
				return nodeTest{}, newParseError(p.cur.Pos,
					"processing-instruction target must be an NCName", "")
			}
			test.piTarget = p.cur.Name
			if err := p.advance(); err != nil {
				return nodeTest{}, err
			}
		}
	case "element", "attribute":
		test.kind = testElement
		if name == "attribute" {
			test.kind = testAttr
		}
		if p.cur.Typ == xutils.NAMETEST {
			test.prefix = p.cur.Prefix
			test.local = p.cur.Name
			test.anyName = test.prefix == "" && test.local == "*"
			if err := p.advance(); err != nil {
				return nodeTest{}, err
			}
		}
	default:
		return nodeTest{}, newParseError(off,
			fmt.Sprintf("'%s()' cannot be used as a node test", name), "")
	}

	if err := p.expect(')'); err != nil {
		return nodeTest{}, err
	}
	return test, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	off := p.cur.Pos

	switch p.cur.Typ {
	case xutils.NUM:
		lit := &numberLit{baseExpr{off}, p.cur.NumTyp, p.cur.Val, p.cur.IVal}
		return lit, p.advance()

	case xutils.LITERAL:
		lit := &stringLit{baseExpr{off}, p.cur.Name}
		return lit, p.advance()

	case xutils.VARREF:
		ref := &varRef{baseExpr: baseExpr{off},
			prefix: p.cur.Prefix, local: p.cur.Name}
		return ref, p.advance()

	case '.':
		return &contextItem{baseExpr{off}}, p.advance()

	case '(':
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Typ == ')' {
			// '()' is the empty sequence.
			return &seqExpr{baseExpr{off}, nil}, p.advance()
		}
		inner, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		return inner, p.expect(')')

	case xutils.FUNC:
		return p.parseFuncCall()
	}

	return nil, p.unexpected("primary expression")
}

func (p *parser) parseFuncCall() (Expr, error) {
	call := &funcCall{
		baseExpr: baseExpr{p.cur.Pos},
		prefix:   p.cur.Prefix,
		local:    p.cur.Name,
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect('('); err != nil {
		return nil, err
	}
	if p.cur.Typ == ')' {
		return call, p.advance()
	}
	for {
		arg, err := p.parseExprSingle()
		if err != nil {
			return nil, err
		}
		call.args = append(call.args, arg)
		if p.cur.Typ != ',' {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return call, p.expect(')')
}

// parseSequenceType parses the type operand of 'instance of' and
// 'treat as'.
func (p *parser) parseSequenceType() (seqType, error) {
	var typ seqType

	switch p.cur.Typ {
	case xutils.NODETYPE:
		name := p.cur.Name
		if name == "empty-sequence" {
			if err := p.advance(); err != nil {
				return typ, err
			}
			if err := p.expect('('); err != nil {
				return typ, err
			}
			if err := p.expect(')'); err != nil {
				return typ, err
			}
			typ.empty = true
			return typ, nil
		}
		if name == "item" {
			if err := p.advance(); err != nil {
				return typ, err
			}
			if err := p.expect('('); err != nil {
				return typ, err
			}
			if err := p.expect(')'); err != nil {
				return typ, err
			}
			typ.kind = itemAny
			return p.parseOccurrence(typ)
		}
		test, err := p.parseKindTest()
		if err != nil {
			return typ, err
		}
		switch test.kind {
		case testNode:
			typ.kind = itemNode
		case testText:
			typ.kind = itemText
		case testComment:
			typ.kind = itemComment
		case testPI:
			typ.kind = itemPI
		case testDocument:
			typ.kind = itemDocument
		case testElement:
			typ.kind = itemElement
		case testAttr:
			typ.kind = itemAttribute
		}
		return p.parseOccurrence(typ)

	case xutils.NAMETEST:
		atom, optional, err := p.parseSingleTypeName()
		if err != nil {
			return typ, err
		}
		typ.kind = itemAtomic
		typ.atom = atom
		if optional {
			typ.occ = occOptional
			return typ, nil
		}
		return p.parseOccurrence(typ)
	}

	return typ, p.unexpected("sequence type")
}

func (p *parser) parseOccurrence(typ seqType) (seqType, error) {
	switch p.cur.Typ {
	case '?':
		typ.occ = occOptional
		return typ, p.advance()
	case '*':
		typ.occ = occMany
		return typ, p.advance()
	case '+':
		typ.occ = occOnePlus
		return typ, p.advance()
	}
	typ.occ = occOne
	return typ, nil
}

// parseSingleType parses the atomic type operand of cast/castable.
func (p *parser) parseSingleType() (atomType, bool, error) {
	if p.cur.Typ != xutils.NAMETEST {
		return 0, false, p.unexpected("atomic type name")
	}
	return p.parseSingleTypeName()
}

func (p *parser) parseSingleTypeName() (atomType, bool, error) {
	atom, err := atomTypeFromName(p.cur.Prefix, p.cur.Name, p.cur.Pos)
	if err != nil {
		return 0, false, err
	}
	if err := p.advance(); err != nil {
		return 0, false, err
	}
	if p.cur.Typ == '?' {
		return atom, true, p.advance()
	}
	return atom, false, nil
}
