// Copyright (c) 2018-2019, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Evaluation of the AST against a dynamic context.  Every variant of
// the tree produces a Sequence; errors propagate out unchanged and
// abort the whole evaluation.

package xpath

import (
	"fmt"
	"math"

	"github.com/sdcio/xmlpath/xmltree"
)

// LITERALS AND PRIMARIES

func (e *numberLit) eval(ctx *context) (Sequence, error) {
	switch e.typ {
	case NumInteger:
		return NewSingleton(intDatum{e.ival}), nil
	case NumDecimal:
		return NewSingleton(decDatum{e.fval}), nil
	}
	return NewSingleton(numDatum{e.fval}), nil
}

func (e *stringLit) eval(ctx *context) (Sequence, error) {
	return NewSingleton(litDatum{e.s}), nil
}

func (e *contextItem) eval(ctx *context) (Sequence, error) {
	if ctx.item == nil {
		return nil, ErrDynamic.New("context item is absent")
	}
	return NewSingleton(ctx.item), nil
}

func (e *varRef) eval(ctx *context) (Sequence, error) {
	val, ok := ctx.vars.lookup(e.name)
	if !ok {
		return nil, ErrDynamic.New(fmt.Sprintf(
			"unbound variable $%s", e.local))
	}
	return val, nil
}

func (e *seqExpr) eval(ctx *context) (Sequence, error) {
	var out Sequence
	for _, sub := range e.exprs {
		val, err := sub.eval(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, val...)
	}
	return out, nil
}

func (e *rangeExpr) eval(ctx *context) (Sequence, error) {
	lo, empty, err := evalIntOperand(ctx, e.lhs, "to")
	if err != nil || empty {
		return EmptySeq, err
	}
	hi, empty, err := evalIntOperand(ctx, e.rhs, "to")
	if err != nil || empty {
		return EmptySeq, err
	}
	if lo > hi {
		return EmptySeq, nil
	}
	out := make(Sequence, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, intDatum{i})
	}
	return out, nil
}

// evalIntOperand evaluates an operand that must be an empty sequence
// or a single integral number.
func evalIntOperand(ctx *context, e Expr, op string) (int64, bool, error) {
	val, err := e.eval(ctx)
	if err != nil {
		return 0, false, err
	}
	atoms := Atomize(val)
	if len(atoms) == 0 {
		return 0, true, nil
	}
	if len(atoms) > 1 {
		return 0, false, ErrType.New(fmt.Sprintf(
			"'%s' operand must be a single integer", op))
	}
	f, err := asFloat(atoms[0])
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false, ErrType.New(fmt.Sprintf(
			"'%s' operand '%s' is not an integer", op, atoms[0].StringValue()))
	}
	return int64(f), false, nil
}

// BOOLEAN CONNECTIVES

func (e *orExpr) eval(ctx *context) (Sequence, error) {
	lhs, err := evalBool(ctx, e.lhs)
	if err != nil {
		return nil, err
	}
	if lhs {
		return NewSingleton(boolDatum{true}), nil
	}
	rhs, err := evalBool(ctx, e.rhs)
	if err != nil {
		return nil, err
	}
	return NewSingleton(boolDatum{rhs}), nil
}

func (e *andExpr) eval(ctx *context) (Sequence, error) {
	lhs, err := evalBool(ctx, e.lhs)
	if err != nil {
		return nil, err
	}
	if !lhs {
		return NewSingleton(boolDatum{false}), nil
	}
	rhs, err := evalBool(ctx, e.rhs)
	if err != nil {
		return nil, err
	}
	return NewSingleton(boolDatum{rhs}), nil
}

func evalBool(ctx *context, e Expr) (bool, error) {
	val, err := e.eval(ctx)
	if err != nil {
		return false, err
	}
	return EffectiveBool(val)
}

// COMPARISONS

// General comparisons are existential: true iff some pair of
// atomized operand items satisfies the value comparison.
func (e *generalCmp) eval(ctx *context) (Sequence, error) {
	lval, err := e.lhs.eval(ctx)
	if err != nil {
		return nil, err
	}
	rval, err := e.rhs.eval(ctx)
	if err != nil {
		return nil, err
	}
	latoms, ratoms := Atomize(lval), Atomize(rval)
	for _, l := range latoms {
		for _, r := range ratoms {
			holds, err := compareValues(e.op, l, r)
			if err != nil {
				return nil, err
			}
			if holds {
				return NewSingleton(boolDatum{true}), nil
			}
		}
	}
	return NewSingleton(boolDatum{false}), nil
}

// Value comparisons require singleton (or empty) operands.
func (e *valueCmp) eval(ctx *context) (Sequence, error) {
	lval, err := e.lhs.eval(ctx)
	if err != nil {
		return nil, err
	}
	rval, err := e.rhs.eval(ctx)
	if err != nil {
		return nil, err
	}
	latoms, ratoms := Atomize(lval), Atomize(rval)
	if len(latoms) == 0 || len(ratoms) == 0 {
		return EmptySeq, nil
	}
	if len(latoms) > 1 || len(ratoms) > 1 {
		return nil, ErrType.New(fmt.Sprintf(
			"'%s' requires singleton operands", e.op))
	}
	holds, err := compareValues(e.op, latoms[0], ratoms[0])
	if err != nil {
		return nil, err
	}
	return NewSingleton(boolDatum{holds}), nil
}

func (e *nodeCmp) eval(ctx *context) (Sequence, error) {
	lnode, empty, err := evalNodeOperand(ctx, e.lhs)
	if err != nil || empty {
		return EmptySeq, err
	}
	rnode, empty, err := evalNodeOperand(ctx, e.rhs)
	if err != nil || empty {
		return EmptySeq, err
	}
	var holds bool
	switch e.op {
	case nodeIs:
		holds = lnode == rnode
	case nodePrecedes:
		holds = xmltree.CompareOrder(lnode, rnode) < 0
	case nodeFollows:
		holds = xmltree.CompareOrder(lnode, rnode) > 0
	}
	return NewSingleton(boolDatum{holds}), nil
}

func evalNodeOperand(ctx *context, e Expr) (*xmltree.Node, bool, error) {
	val, err := e.eval(ctx)
	if err != nil {
		return nil, false, err
	}
	if len(val) == 0 {
		return nil, true, nil
	}
	if len(val) > 1 {
		return nil, false, ErrType.New(
			"node comparison requires singleton operands")
	}
	node, ok := NodeOf(val[0])
	if !ok {
		return nil, false, ErrType.New(fmt.Sprintf(
			"node comparison on %s item", val[0].name()))
	}
	return node, false, nil
}

// ARITHMETIC

func (e *arithExpr) eval(ctx *context) (Sequence, error) {
	lhs, empty, err := evalNumericOperand(ctx, e.lhs, arithOpNames[e.op])
	if err != nil || empty {
		return EmptySeq, err
	}
	rhs, empty, err := evalNumericOperand(ctx, e.rhs, arithOpNames[e.op])
	if err != nil || empty {
		return EmptySeq, err
	}
	out, err := applyArith(e.op, lhs, rhs)
	if err != nil {
		return nil, err
	}
	return NewSingleton(out), nil
}

// evalNumericOperand atomizes to an empty or singleton numeric item;
// untypedAtomic promotes to double.
func evalNumericOperand(ctx *context, e Expr, op string) (Datum, bool, error) {
	val, err := e.eval(ctx)
	if err != nil {
		return nil, false, err
	}
	atoms := Atomize(val)
	if len(atoms) == 0 {
		return nil, true, nil
	}
	if len(atoms) > 1 {
		return nil, false, ErrType.New(fmt.Sprintf(
			"'%s' requires singleton operands", op))
	}
	d := atoms[0]
	if isUntyped(d) {
		d = numDatum{numberFromString(d.StringValue())}
	}
	if !isNumeric(d) {
		return nil, false, ErrType.New(fmt.Sprintf(
			"'%s' operand is a %s, not a number", op, d.name()))
	}
	return d, false, nil
}

func applyArith(op arithOp, lhs, rhs Datum) (Datum, error) {
	kind := kindOfNumeric(lhs)
	if k := kindOfNumeric(rhs); k > kind {
		kind = k
	}

	// Exact integer arithmetic where both operands are integers.
	if kind == numInt {
		a, b := lhs.(intDatum).i, rhs.(intDatum).i
		switch op {
		case opAdd:
			return intDatum{a + b}, nil
		case opSub:
			return intDatum{a - b}, nil
		case opMul:
			return intDatum{a * b}, nil
		case opDiv:
			// Integer division promotes to decimal.
			if b == 0 {
				return nil, ErrDynamic.New("division by zero")
			}
			return decDatum{float64(a) / float64(b)}, nil
		case opIDiv:
			if b == 0 {
				return nil, ErrDynamic.New("integer division by zero")
			}
			return intDatum{a / b}, nil
		case opMod:
			if b == 0 {
				return nil, ErrDynamic.New("modulus by zero")
			}
			return intDatum{a % b}, nil
		}
	}

	a, _ := asFloat(lhs)
	b, _ := asFloat(rhs)

	switch op {
	case opAdd:
		return newNumericOfKind(a+b, kind), nil
	case opSub:
		return newNumericOfKind(a-b, kind), nil
	case opMul:
		return newNumericOfKind(a*b, kind), nil
	case opDiv:
		if b == 0 && kind != numDbl {
			return nil, ErrDynamic.New("division by zero")
		}
		return newNumericOfKind(a/b, kind), nil
	case opIDiv:
		if b == 0 {
			return nil, ErrDynamic.New("integer division by zero")
		}
		q := math.Trunc(a / b)
		if math.IsNaN(q) || math.IsInf(q, 0) {
			return nil, ErrDynamic.New("integer division overflow")
		}
		return intDatum{int64(q)}, nil
	case opMod:
		if b == 0 && kind != numDbl {
			return nil, ErrDynamic.New("modulus by zero")
		}
		// math.Mod keeps the sign of the dividend.
		return newNumericOfKind(math.Mod(a, b), kind), nil
	}
	return nil, ErrDynamic.New("unknown arithmetic operator")
}

func (e *unaryExpr) eval(ctx *context) (Sequence, error) {
	operand, empty, err := evalNumericOperand(ctx, e.operand, "unary sign")
	if err != nil || empty {
		return EmptySeq, err
	}
	if !e.negate {
		return NewSingleton(operand), nil
	}
	switch v := operand.(type) {
	case intDatum:
		return NewSingleton(intDatum{-v.i}), nil
	case decDatum:
		return NewSingleton(decDatum{-v.f}), nil
	case numDatum:
		return NewSingleton(numDatum{-v.f}), nil
	}
	return nil, ErrType.New("unary sign on non-numeric operand")
}

// SET OPERATORS

func (e *unionExpr) eval(ctx *context) (Sequence, error) {
	lnodes, rnodes, err := evalNodesetPair(ctx, e.lhs, e.rhs, "union")
	if err != nil {
		return nil, err
	}
	return sortedNodeSeq(append(lnodes, rnodes...)), nil
}

func (e *intersectExpr) eval(ctx *context) (Sequence, error) {
	opName := "intersect"
	if e.except {
		opName = "except"
	}
	lnodes, rnodes, err := evalNodesetPair(ctx, e.lhs, e.rhs, opName)
	if err != nil {
		return nil, err
	}
	inRight := make(map[*xmltree.Node]bool, len(rnodes))
	for _, n := range rnodes {
		inRight[n] = true
	}
	var kept []*xmltree.Node
	for _, n := range lnodes {
		if inRight[n] != e.except {
			kept = append(kept, n)
		}
	}
	return sortedNodeSeq(kept), nil
}

func evalNodesetPair(
	ctx *context,
	lhs, rhs Expr,
	op string,
) ([]*xmltree.Node, []*xmltree.Node, error) {

	lval, err := lhs.eval(ctx)
	if err != nil {
		return nil, nil, err
	}
	lnodes, err := NodesetFrom(lval)
	if err != nil {
		return nil, nil, ErrType.New(fmt.Sprintf(
			"'%s' requires node operands: %s", op, err))
	}
	rval, err := rhs.eval(ctx)
	if err != nil {
		return nil, nil, err
	}
	rnodes, err := NodesetFrom(rval)
	if err != nil {
		return nil, nil, ErrType.New(fmt.Sprintf(
			"'%s' requires node operands: %s", op, err))
	}
	return lnodes, rnodes, nil
}

// TYPE OPERATORS

func (e *instanceOfExpr) eval(ctx *context) (Sequence, error) {
	val, err := e.operand.eval(ctx)
	if err != nil {
		return nil, err
	}
	return NewSingleton(boolDatum{matchesSeqType(val, e.typ)}), nil
}

func (e *treatExpr) eval(ctx *context) (Sequence, error) {
	val, err := e.operand.eval(ctx)
	if err != nil {
		return nil, err
	}
	if !matchesSeqType(val, e.typ) {
		return nil, ErrDynamic.New(
			"'treat as' operand does not match the asserted type")
	}
	return val, nil
}

func (e *castExpr) eval(ctx *context) (Sequence, error) {
	val, err := e.operand.eval(ctx)
	if err != nil {
		return nil, err
	}
	atoms := Atomize(val)

	if len(atoms) == 0 {
		if e.castable {
			return NewSingleton(boolDatum{e.optional}), nil
		}
		if e.optional {
			return EmptySeq, nil
		}
		return nil, ErrDynamic.New(fmt.Sprintf(
			"cannot cast empty sequence to %s", e.target))
	}
	if len(atoms) > 1 {
		if e.castable {
			return NewSingleton(boolDatum{false}), nil
		}
		return nil, ErrType.New("cast requires a singleton operand")
	}

	out, err := castTo(e.target, atoms[0], ctx.scope)
	if e.castable {
		return NewSingleton(boolDatum{err == nil}), nil
	}
	if err != nil {
		return nil, err
	}
	return NewSingleton(out), nil
}

// MAP OPERATOR
//
// No deduplication or reordering: items map left to right.
func (e *mapExpr) eval(ctx *context) (Sequence, error) {
	lval, err := e.lhs.eval(ctx)
	if err != nil {
		return nil, err
	}
	var out Sequence
	size := len(lval)
	for i, item := range lval {
		sub := ctx.withItem(item, i+1, size)
		rval, err := e.rhs.eval(sub)
		if err != nil {
			return nil, err
		}
		out = append(out, rval...)
	}
	return out, nil
}

// PATHS

func (e *pathExpr) eval(ctx *context) (Sequence, error) {
	var input Sequence
	if e.absolute {
		root, err := ctx.rootNode()
		if err != nil {
			return nil, err
		}
		input = NewSingleton(NewNodeDatum(root))
	} else {
		if ctx.item == nil {
			return nil, ErrDynamic.New("context item is absent")
		}
		input = NewSingleton(ctx.item)
	}
	if len(e.steps) == 0 {
		return input, nil
	}
	return evalSteps(ctx, input, e.steps)
}

// rootNode anchors absolute paths: the document node above the
// context item, falling back to the evaluation's initial node.
func (ctx *context) rootNode() (*xmltree.Node, error) {
	if ctx.item != nil {
		if node, ok := NodeOf(ctx.item); ok {
			return node.Root(), nil
		}
	}
	if ctx.initNode != nil {
		return ctx.initNode.Root(), nil
	}
	return nil, ErrDynamic.New("no context node to anchor absolute path")
}

// evalSteps runs a step chain: each step is evaluated once per item
// of the incoming sequence, with position/size reflecting that
// enumeration, and the collected results are deduplicated and sorted
// into document order whenever they are all nodes.  A step before the
// last must produce nodes; the final step may produce atomics, which
// keep their collection order.
func evalSteps(ctx *context, input Sequence, steps []Expr) (Sequence, error) {
	cur := input
	for si, step := range steps {
		var out Sequence
		size := len(cur)
		for i, item := range cur {
			sub := ctx.withItem(item, i+1, size)
			val, err := step.eval(sub)
			if err != nil {
				return nil, err
			}
			out = append(out, val...)
		}

		switch {
		case allNodes(out):
			nodes, _ := NodesetFrom(out)
			cur = sortedNodeSeq(nodes)
		case anyNodes(out):
			return nil, ErrType.New(
				"path result mixes nodes and atomic values")
		case si < len(steps)-1:
			return nil, ErrType.New(fmt.Sprintf(
				"intermediate path step at offset %d yields atomic values",
				step.pos()))
		default:
			cur = out
		}
	}
	return cur, nil
}

func (e *stepExpr) eval(ctx *context) (Sequence, error) {
	node, err := ctx.contextNode(
		fmt.Sprintf("%s axis step", e.axis))
	if err != nil {
		return nil, err
	}

	var cands []*xmltree.Node
	for _, cand := range enumerateAxis(e.axis, node) {
		if matchesTest(e.axis, e.test, cand) {
			cands = append(cands, cand)
		}
	}

	cands, err = applyPredicates(ctx, cands, e.preds, e.positional)
	if err != nil {
		return nil, err
	}
	return sortedNodeSeq(cands), nil
}

// applyPredicates filters candidates left to right.  Positions count
// 1-based in the axis's natural order; a numeric predicate value is a
// positional test against that position, anything else goes through
// the effective boolean value.  A predicate the rewriter tagged as a
// bare numeric literal selects its candidate directly, skipping the
// per-candidate evaluation.
func applyPredicates(
	ctx *context,
	cands []*xmltree.Node,
	preds []Expr,
	positional []bool,
) ([]*xmltree.Node, error) {

	for pi, pred := range preds {
		if pi < len(positional) && positional[pi] {
			var err error
			cands, err = selectAtLiteralPos(ctx, cands, pred)
			if err != nil {
				return nil, err
			}
			continue
		}
		var kept []*xmltree.Node
		size := len(cands)
		for i, cand := range cands {
			sub := ctx.withItem(NewNodeDatum(cand), i+1, size)
			val, err := pred.eval(sub)
			if err != nil {
				return nil, err
			}
			keep, err := predicateHolds(val, i+1)
			if err != nil {
				return nil, err
			}
			if keep {
				kept = append(kept, cand)
			}
		}
		cands = kept
	}
	return cands, nil
}

// selectAtLiteralPos indexes the candidates with a context-free
// numeric literal predicate, evaluated once.
func selectAtLiteralPos(
	ctx *context,
	cands []*xmltree.Node,
	pred Expr,
) ([]*xmltree.Node, error) {

	val, err := pred.eval(ctx)
	if err != nil {
		return nil, err
	}
	f, err := asFloat(val[0])
	if err != nil {
		return nil, err
	}
	pos := int(f)
	if float64(pos) != f || pos < 1 || pos > len(cands) {
		return nil, nil
	}
	return cands[pos-1 : pos], nil
}

// predicateHolds decides one predicate outcome for the item at the
// given position.
func predicateHolds(val Sequence, pos int) (bool, error) {
	if len(val) == 1 && isNumeric(val[0]) {
		f, err := asFloat(val[0])
		if err != nil {
			return false, err
		}
		return f == float64(pos), nil
	}
	return EffectiveBool(val)
}

func (e *filterExpr) eval(ctx *context) (Sequence, error) {
	val, err := e.primary.eval(ctx)
	if err != nil {
		return nil, err
	}
	for _, pred := range e.preds {
		var kept Sequence
		size := len(val)
		for i, item := range val {
			sub := ctx.withItem(item, i+1, size)
			pval, err := pred.eval(sub)
			if err != nil {
				return nil, err
			}
			keep, err := predicateHolds(pval, i+1)
			if err != nil {
				return nil, err
			}
			if keep {
				kept = append(kept, item)
			}
		}
		val = kept
	}
	return val, nil
}

// FUNCTIONS

func (e *funcCall) eval(ctx *context) (Sequence, error) {
	args := make([]Sequence, len(e.args))
	for i, arg := range e.args {
		val, err := arg.eval(ctx)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}
	return e.sym.bltinFunc(ctx, args)
}

// BINDING FORMS

func (e *forExpr) eval(ctx *context) (Sequence, error) {
	var out Sequence
	var iterate func(ctx *context, idx int) error
	iterate = func(ctx *context, idx int) error {
		if idx == len(e.bindings) {
			val, err := e.ret.eval(ctx)
			if err != nil {
				return err
			}
			out = append(out, val...)
			return nil
		}
		b := e.bindings[idx]
		seq, err := b.seq.eval(ctx)
		if err != nil {
			return err
		}
		for _, item := range seq {
			sub := ctx.withVars(ctx.vars.bind(b.name, NewSingleton(item)))
			if err := iterate(sub, idx+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := iterate(ctx, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *letExpr) eval(ctx *context) (Sequence, error) {
	for _, b := range e.bindings {
		val, err := b.seq.eval(ctx)
		if err != nil {
			return nil, err
		}
		ctx = ctx.withVars(ctx.vars.bind(b.name, val))
	}
	return e.ret.eval(ctx)
}

func (e *quantExpr) eval(ctx *context) (Sequence, error) {
	// 'every' is vacuously true on an empty stream, 'some' false.
	result := e.every

	var iterate func(ctx *context, idx int) (bool, error)
	iterate = func(ctx *context, idx int) (bool, error) {
		if idx == len(e.bindings) {
			holds, err := evalBool(ctx, e.cond)
			if err != nil {
				return false, err
			}
			if holds != e.every {
				// Short-circuit: a satisfied 'some' or a failed
				// 'every' decides the answer.
				result = holds
				return true, nil
			}
			return false, nil
		}
		b := e.bindings[idx]
		seq, err := b.seq.eval(ctx)
		if err != nil {
			return false, err
		}
		for _, item := range seq {
			sub := ctx.withVars(ctx.vars.bind(b.name, NewSingleton(item)))
			done, err := iterate(sub, idx+1)
			if done || err != nil {
				return done, err
			}
		}
		return false, nil
	}
	if _, err := iterate(ctx, 0); err != nil {
		return nil, err
	}
	return NewSingleton(boolDatum{result}), nil
}

func (e *ifExpr) eval(ctx *context) (Sequence, error) {
	cond, err := evalBool(ctx, e.cond)
	if err != nil {
		return nil, err
	}
	if cond {
		return e.then.eval(ctx)
	}
	return e.els.eval(ctx)
}
