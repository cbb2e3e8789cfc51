// Copyright (c) 2019, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Abstract syntax tree for parsed expressions.  Each variant knows how
// to evaluate itself against a dynamic context (see eval.go); the
// rewriter resolves names and annotates predicates before a tree is
// run (see rewrite.go).

package xpath

import (
	"encoding/xml"
)

// Expr is an AST node.
type Expr interface {
	// eval produces the node's value under the given context.
	eval(ctx *context) (Sequence, error)

	// pos returns the 1-based rune offset of the node in the source.
	pos() int
}

type baseExpr struct {
	off int
}

func (b baseExpr) pos() int { return b.off }

// LITERALS

type numberLit struct {
	baseExpr
	typ  NumTyp
	fval float64
	ival int64
}

type stringLit struct {
	baseExpr
	s string
}

// contextItem is '.'.
type contextItem struct {
	baseExpr
}

// varRef is '$name'.  The rewriter fills in the expanded name.
type varRef struct {
	baseExpr
	prefix string
	local  string
	name   xml.Name
}

// seqExpr is the ',' sequence constructor.
type seqExpr struct {
	baseExpr
	exprs []Expr
}

// rangeExpr is 'M to N'.
type rangeExpr struct {
	baseExpr
	lhs, rhs Expr
}

// BOOLEAN CONNECTIVES

type orExpr struct {
	baseExpr
	lhs, rhs Expr
}

type andExpr struct {
	baseExpr
	lhs, rhs Expr
}

// COMPARISONS

// generalCmp is the existential comparison family = != < <= > >=.
type generalCmp struct {
	baseExpr
	op       cmpOp
	lhs, rhs Expr
}

// valueCmp is the singleton comparison family eq ne lt le gt ge.
type valueCmp struct {
	baseExpr
	op       cmpOp
	lhs, rhs Expr
}

type nodeCmpOp int

const (
	nodeIs nodeCmpOp = iota
	nodePrecedes
	nodeFollows
)

// nodeCmp is 'is', '<<' and '>>'.
type nodeCmp struct {
	baseExpr
	op       nodeCmpOp
	lhs, rhs Expr
}

// ARITHMETIC

type arithOp int

const (
	opAdd arithOp = iota
	opSub
	opMul
	opDiv
	opIDiv
	opMod
)

var arithOpNames = map[arithOp]string{
	opAdd: "+", opSub: "-", opMul: "*", opDiv: "div",
	opIDiv: "idiv", opMod: "mod",
}

type arithExpr struct {
	baseExpr
	op       arithOp
	lhs, rhs Expr
}

// unaryExpr is a sign applied to an operand.
type unaryExpr struct {
	baseExpr
	negate  bool
	operand Expr
}

// SET OPERATORS

type unionExpr struct {
	baseExpr
	lhs, rhs Expr
}

type intersectExpr struct {
	baseExpr
	except   bool
	lhs, rhs Expr
}

// SEQUENCE TYPES (instance of / cast / castable / treat)

type occurrence int

const (
	occOne occurrence = iota
	occOptional
	occMany     // *
	occOnePlus  // +
)

type itemKind int

const (
	itemAny itemKind = iota // item()
	itemAtomic
	itemNode // node()
	itemElement
	itemAttribute
	itemText
	itemComment
	itemPI
	itemDocument
)

// seqType is a parsed SequenceType.
type seqType struct {
	empty bool // empty-sequence()
	kind  itemKind
	atom  atomType // when kind == itemAtomic
	occ   occurrence
}

type instanceOfExpr struct {
	baseExpr
	operand Expr
	typ     seqType
}

type treatExpr struct {
	baseExpr
	operand Expr
	typ     seqType
}

type castExpr struct {
	baseExpr
	operand  Expr
	target   atomType
	optional bool // 'cast as T?'
	castable bool // 'castable as' yields a boolean
}

// MAP OPERATOR

type mapExpr struct {
	baseExpr
	lhs, rhs Expr
}

// PATHS

type axisType int

const (
	axisChild axisType = iota
	axisDescendant
	axisDescendantOrSelf
	axisParent
	axisAncestor
	axisAncestorOrSelf
	axisSelf
	axisFollowing
	axisPreceding
	axisFollowingSibling
	axisPrecedingSibling
	axisAttribute
	axisNamespace
)

var axisNameMap = map[string]axisType{
	"child":              axisChild,
	"descendant":         axisDescendant,
	"descendant-or-self": axisDescendantOrSelf,
	"parent":             axisParent,
	"ancestor":           axisAncestor,
	"ancestor-or-self":   axisAncestorOrSelf,
	"self":               axisSelf,
	"following":          axisFollowing,
	"preceding":          axisPreceding,
	"following-sibling":  axisFollowingSibling,
	"preceding-sibling":  axisPrecedingSibling,
	"attribute":          axisAttribute,
	"namespace":          axisNamespace,
}

var axisTypeNames = map[axisType]string{
	axisChild:            "child",
	axisDescendant:       "descendant",
	axisDescendantOrSelf: "descendant-or-self",
	axisParent:           "parent",
	axisAncestor:         "ancestor",
	axisAncestorOrSelf:   "ancestor-or-self",
	axisSelf:             "self",
	axisFollowing:        "following",
	axisPreceding:        "preceding",
	axisFollowingSibling: "following-sibling",
	axisPrecedingSibling: "preceding-sibling",
	axisAttribute:        "attribute",
	axisNamespace:        "namespace",
}

func (a axisType) String() string { return axisTypeNames[a] }

// isReverse reports whether the axis enumerates in reverse document
// order, which flips positional predicate numbering.
func (a axisType) isReverse() bool {
	switch a {
	case axisAncestor, axisAncestorOrSelf, axisParent,
		axisPreceding, axisPrecedingSibling:
		return true
	}
	return false
}

type testKind int

const (
	testName     testKind = iota // name or wildcard forms
	testNode                     // node()
	testText                     // text()
	testComment                  // comment()
	testPI                       // processing-instruction(target?)
	testElement                  // element(name?)
	testAttr                     // attribute(name?)
	testDocument                 // document-node()
)

// nodeTest selects axis candidates by kind and/or name.
type nodeTest struct {
	kind testKind

	// For testName / testElement / testAttr name forms.
	prefix   string // "" none, "*" for *:local
	local    string // "*" for wildcards
	resolved xml.Name
	anyName  bool // '*', or kind test without a name

	piTarget string
}

// pathExpr is a relative or absolute location path: a chain of steps
// evaluated left to right.
type pathExpr struct {
	baseExpr
	absolute bool
	steps    []Expr
}

// stepExpr is one axis step with its predicates.
type stepExpr struct {
	baseExpr
	axis  axisType
	test  nodeTest
	preds []Expr
	// positional[i] is the rewriter's hint that preds[i] is a bare
	// numeric literal.  Runtime detection still applies to every
	// numeric predicate value.
	positional []bool
}

// filterExpr is a primary expression with predicates.
type filterExpr struct {
	baseExpr
	primary Expr
	preds   []Expr
}

// FUNCTIONS AND BINDING FORMS

type funcCall struct {
	baseExpr
	prefix string
	local  string
	sym    *Symbol // resolved by the rewriter
	args   []Expr
}

type binding struct {
	off    int
	prefix string
	local  string
	name   xml.Name
	seq    Expr
}

type forExpr struct {
	baseExpr
	bindings []binding
	ret      Expr
}

type letExpr struct {
	baseExpr
	bindings []binding
	ret      Expr
}

type quantExpr struct {
	baseExpr
	every    bool
	bindings []binding
	cond     Expr
}

type ifExpr struct {
	baseExpr
	cond, then, els Expr
}
