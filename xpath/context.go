// Copyright (c) 2018-2019, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// This file contains the 'context' object a machine is run against:
// the context item, the 1-based position and size of the enumeration
// being filtered, the lexically scoped variable environment, and the
// initial node the evaluation started from.

package xpath

import (
	"encoding/xml"
	"fmt"

	"github.com/sdcio/xmlpath/xmltree"
)

// varScope is the lexically scoped variable environment.  Binding
// pushes a frame; lookup walks outward.
type varScope struct {
	name  xml.Name
	val   Sequence
	outer *varScope
}

func (vs *varScope) bind(name xml.Name, val Sequence) *varScope {
	return &varScope{name: name, val: val, outer: vs}
}

func (vs *varScope) lookup(name xml.Name) (Sequence, bool) {
	for frame := vs; frame != nil; frame = frame.outer {
		if frame.name == name {
			return frame.val, true
		}
	}
	return nil, false
}

// CONTEXT
//
// Context on which to run a machine, so one machine can be run
// multiple times, concurrently if need be.
type context struct {
	item Datum
	pos  int
	size int

	// The node the whole evaluation started from; absolute paths
	// anchor at its root when the context item is absent or is not
	// a node.
	initNode *xmltree.Node

	vars  *varScope
	scope map[string]string // in-scope namespaces of the start node

	prog    Expr
	refExpr string
}

// NewCtxFromMach - return a new context in which to run an instance
// of the machine, anchored at the given context node.
func NewCtxFromMach(mach *Machine, ctxNode *xmltree.Node) *context {
	ctx := &context{
		pos:      1,
		size:     1,
		initNode: ctxNode,
		scope:    mach.scope,
		prog:     mach.prog,
		refExpr:  mach.refExpr,
	}
	if ctxNode != nil {
		ctx.item = NewNodeDatum(ctxNode)
	}
	return ctx
}

// Bind adds a caller-supplied variable binding.  Designed to be
// chained before Run.
func (ctx *context) Bind(name xml.Name, val Sequence) *context {
	ctx.vars = ctx.vars.bind(name, val)
	return ctx
}

// withItem derives the context for evaluating a sub-expression with a
// different context item / position / size.
func (ctx *context) withItem(item Datum, pos, size int) *context {
	sub := *ctx
	sub.item = item
	sub.pos = pos
	sub.size = size
	return &sub
}

// withVars derives the context for evaluating under extra bindings.
func (ctx *context) withVars(vars *varScope) *context {
	sub := *ctx
	sub.vars = vars
	return &sub
}

// contextNode returns the context item as a node, or fails.
func (ctx *context) contextNode(op string) (*xmltree.Node, error) {
	if ctx.item == nil {
		return nil, ErrDynamic.New(fmt.Sprintf(
			"%s: context item is absent", op))
	}
	node, ok := NodeOf(ctx.item)
	if !ok {
		return nil, ErrType.New(fmt.Sprintf(
			"%s: context item is not a node", op))
	}
	return node, nil
}

// Run evaluates the machine's program under this context.
func (ctx *context) Run() *Result {
	res := NewResult()
	if ctx.prog == nil {
		res.runErr = ErrDynamic.New("no program to run")
		return res
	}
	val, err := ctx.prog.eval(ctx)
	if err != nil {
		res.runErr = err
		return res
	}
	res.save(val)
	return res
}
