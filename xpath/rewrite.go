// Copyright (c) 2019-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Static rewrite pass: binds every prefixed name in the tree to its
// expanded form using the starting context's namespace scope, resolves
// function symbols by (name, arity), folds trivial constants and tags
// bare-literal positional predicates.

package xpath

import (
	"encoding/xml"
	"fmt"
)

const (
	// FnNamespaceURI is the default function namespace.
	FnNamespaceURI = "http://www.w3.org/2005/xpath-functions"

	// XsNamespaceURI holds the atomic type constructors.
	XsNamespaceURI = "http://www.w3.org/2001/XMLSchema"
)

// PfxMapFn maps a namespace prefix to its URI, or fails for an
// unbound prefix.
type PfxMapFn func(prefix string) (string, error)

// rewriter carries the static context through the walk.
type rewriter struct {
	scope map[string]string
}

// scopeLookup resolves a prefix against a prefix->URI table, with the
// reserved bindings always present.
func scopeLookup(scope map[string]string, prefix string, off int) (string, error) {
	switch prefix {
	case "":
		return "", nil
	case "xml":
		return "http://www.w3.org/XML/1998/namespace", nil
	case "fn":
		return FnNamespaceURI, nil
	case "xs":
		return XsNamespaceURI, nil
	}
	if uri, ok := scope[prefix]; ok {
		return uri, nil
	}
	return "", newStaticError(off, fmt.Sprintf("unbound prefix '%s'", prefix))
}

// Rewrite binds the parsed tree to a namespace scope.  The tree is
// annotated in place; a tree is only ever bound once.
func Rewrite(tree Expr, scope map[string]string) (Expr, error) {
	rw := &rewriter{scope: scope}
	return rw.rewrite(tree)
}

func (rw *rewriter) rewrite(e Expr) (Expr, error) {
	switch v := e.(type) {
	case *numberLit, *stringLit, *contextItem:
		return e, nil

	case *varRef:
		uri, err := scopeLookup(rw.scope, v.prefix, v.off)
		if err != nil {
			return nil, err
		}
		v.name = xml.Name{Space: uri, Local: v.local}
		return v, nil

	case *seqExpr:
		for i, sub := range v.exprs {
			out, err := rw.rewrite(sub)
			if err != nil {
				return nil, err
			}
			v.exprs[i] = out
		}
		return v, nil

	case *rangeExpr:
		return v, rw.rewritePair(&v.lhs, &v.rhs)

	case *orExpr:
		return v, rw.rewritePair(&v.lhs, &v.rhs)

	case *andExpr:
		return v, rw.rewritePair(&v.lhs, &v.rhs)

	case *generalCmp:
		return v, rw.rewritePair(&v.lhs, &v.rhs)

	case *valueCmp:
		return v, rw.rewritePair(&v.lhs, &v.rhs)

	case *nodeCmp:
		return v, rw.rewritePair(&v.lhs, &v.rhs)

	case *arithExpr:
		if err := rw.rewritePair(&v.lhs, &v.rhs); err != nil {
			return nil, err
		}
		return foldArith(v), nil

	case *unaryExpr:
		out, err := rw.rewrite(v.operand)
		if err != nil {
			return nil, err
		}
		v.operand = out
		return foldUnary(v), nil

	case *unionExpr:
		return v, rw.rewritePair(&v.lhs, &v.rhs)

	case *intersectExpr:
		return v, rw.rewritePair(&v.lhs, &v.rhs)

	case *instanceOfExpr:
		return v, rw.rewriteInPlace(&v.operand)

	case *treatExpr:
		return v, rw.rewriteInPlace(&v.operand)

	case *castExpr:
		return v, rw.rewriteInPlace(&v.operand)

	case *mapExpr:
		return v, rw.rewritePair(&v.lhs, &v.rhs)

	case *pathExpr:
		for i, step := range v.steps {
			out, err := rw.rewrite(step)
			if err != nil {
				return nil, err
			}
			v.steps[i] = out
		}
		return v, nil

	case *stepExpr:
		if err := rw.rewriteNodeTest(&v.test, v.axis, v.off); err != nil {
			return nil, err
		}
		for i, pred := range v.preds {
			out, err := rw.rewrite(pred)
			if err != nil {
				return nil, err
			}
			v.preds[i] = out
			if _, isNum := out.(*numberLit); isNum {
				v.positional[i] = true
			}
		}
		return v, nil

	case *filterExpr:
		if err := rw.rewriteInPlace(&v.primary); err != nil {
			return nil, err
		}
		for i, pred := range v.preds {
			out, err := rw.rewrite(pred)
			if err != nil {
				return nil, err
			}
			v.preds[i] = out
		}
		return v, nil

	case *funcCall:
		return rw.rewriteFuncCall(v)

	case *forExpr:
		if err := rw.rewriteBindings(v.bindings); err != nil {
			return nil, err
		}
		return v, rw.rewriteInPlace(&v.ret)

	case *letExpr:
		if err := rw.rewriteBindings(v.bindings); err != nil {
			return nil, err
		}
		return v, rw.rewriteInPlace(&v.ret)

	case *quantExpr:
		if err := rw.rewriteBindings(v.bindings); err != nil {
			return nil, err
		}
		return v, rw.rewriteInPlace(&v.cond)

	case *ifExpr:
		if err := rw.rewriteInPlace(&v.cond); err != nil {
			return nil, err
		}
		if err := rw.rewriteInPlace(&v.then); err != nil {
			return nil, err
		}
		return v, rw.rewriteInPlace(&v.els)
	}

	return nil, newStaticError(e.pos(), "unhandled expression form")
}

func (rw *rewriter) rewriteInPlace(e *Expr) error {
	out, err := rw.rewrite(*e)
	if err != nil {
		return err
	}
	*e = out
	return nil
}

func (rw *rewriter) rewritePair(lhs, rhs *Expr) error {
	if err := rw.rewriteInPlace(lhs); err != nil {
		return err
	}
	return rw.rewriteInPlace(rhs)
}

func (rw *rewriter) rewriteBindings(bindings []binding) error {
	for i := range bindings {
		b := &bindings[i]
		uri, err := scopeLookup(rw.scope, b.prefix, b.off)
		if err != nil {
			return err
		}
		b.name = xml.Name{Space: uri, Local: b.local}
		if err := rw.rewriteInPlace(&b.seq); err != nil {
			return err
		}
	}
	return nil
}

// rewriteNodeTest resolves the name in a name test.  An unprefixed
// name has no namespace: the default element namespace is not applied
// to name tests, keeping plain '/root/a' paths working against
// documents using a default namespace the query never declared.
func (rw *rewriter) rewriteNodeTest(test *nodeTest, axis axisType, off int) error {
	switch test.kind {
	case testName, testElement, testAttr:
	default:
		return nil
	}
	if test.anyName || test.local == "" {
		return nil
	}
	switch test.prefix {
	case "*":
		// *:local matches any namespace; nothing to resolve.
		return nil
	case "":
		test.resolved = xml.Name{Local: test.local}
		return nil
	}
	uri, err := scopeLookup(rw.scope, test.prefix, off)
	if err != nil {
		return err
	}
	test.resolved = xml.Name{Space: uri, Local: test.local}
	return nil
}

func (rw *rewriter) rewriteFuncCall(call *funcCall) (Expr, error) {
	for i, arg := range call.args {
		out, err := rw.rewrite(arg)
		if err != nil {
			return nil, err
		}
		call.args[i] = out
	}

	uri, err := scopeLookup(rw.scope, call.prefix, call.off)
	if err != nil {
		return nil, err
	}
	if call.prefix == "" {
		uri = FnNamespaceURI
	}

	sym, ok := LookupFunction(uri, call.local, len(call.args))
	if !ok {
		return nil, newStaticError(call.off, fmt.Sprintf(
			"unknown function %s() with %d argument(s)",
			call.local, len(call.args)))
	}
	call.sym = sym
	return call, nil
}

// foldUnary folds a sign applied to a numeric literal.
func foldUnary(v *unaryExpr) Expr {
	lit, ok := v.operand.(*numberLit)
	if !ok || !v.negate {
		if ok && !v.negate {
			return lit
		}
		return v
	}
	return &numberLit{baseExpr{v.off}, lit.typ, -lit.fval, -lit.ival}
}

// foldArith folds integer +, - and * over two integer literals.
func foldArith(v *arithExpr) Expr {
	lhs, lok := v.lhs.(*numberLit)
	rhs, rok := v.rhs.(*numberLit)
	if !lok || !rok || lhs.typ != NumInteger || rhs.typ != NumInteger {
		return v
	}
	var ival int64
	switch v.op {
	case opAdd:
		ival = lhs.ival + rhs.ival
	case opSub:
		ival = lhs.ival - rhs.ival
	case opMul:
		ival = lhs.ival * rhs.ival
	default:
		return v
	}
	return &numberLit{baseExpr{v.off}, NumInteger, float64(ival), ival}
}
