// Copyright (c) 2019, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2016 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package xpath

import (
	"fmt"
)

type bltinFn func(*context, []Sequence) (Sequence, error)

// Symbol is one function table entry: a built-in implementation plus
// its accepted argument count range.
type Symbol struct {
	name      string // Useful when symbol is referenced outside of map.
	minArgs   int
	maxArgs   int // -1 for variadic
	bltinFunc bltinFn
}

func (sym *Symbol) GetName() string { return sym.name }

func NewFnSym(name string, fn bltinFn, minArgs, maxArgs int) *Symbol {
	return &Symbol{
		name:      name,
		minArgs:   minArgs,
		maxArgs:   maxArgs,
		bltinFunc: fn,
	}
}

func (sym *Symbol) acceptsArity(arity int) bool {
	if arity < sym.minArgs {
		return false
	}
	return sym.maxArgs < 0 || arity <= sym.maxArgs
}

type symbolTable map[string]*Symbol

// These are the core functions.  Where a function name has 'x' as
// prefix, this is to avoid namespace clashes with either Golang (eg
// string) or with internal functions called by these functions (eg
// round, boolean etc).
var xpathFunctionTable = symbolTable{
	// Node functions.
	"name":          NewFnSym("name", xName, 0, 1),
	"local-name":    NewFnSym("local-name", localName, 0, 1),
	"namespace-uri": NewFnSym("namespace-uri", namespaceURI, 0, 1),
	"root":          NewFnSym("root", root, 0, 1),
	"position":      NewFnSym("position", position, 0, 0),
	"last":          NewFnSym("last", last, 0, 0),
	"count":         NewFnSym("count", count, 1, 1),
	"id":            NewFnSym("id", xID, 1, 1),
	"lang":          NewFnSym("lang", lang, 1, 1),

	// String functions.
	"string":           NewFnSym("string", xString, 0, 1),
	"concat":           NewFnSym("concat", concat, 2, -1),
	"string-join":      NewFnSym("string-join", stringJoin, 1, 2),
	"substring":        NewFnSym("substring", substring, 2, 3),
	"string-length":    NewFnSym("string-length", stringLength, 0, 1),
	"normalize-space":  NewFnSym("normalize-space", normalizeSpace, 0, 1),
	"upper-case":       NewFnSym("upper-case", upperCase, 1, 1),
	"lower-case":       NewFnSym("lower-case", lowerCase, 1, 1),
	"contains":         NewFnSym("contains", contains, 2, 2),
	"starts-with":      NewFnSym("starts-with", startsWith, 2, 2),
	"ends-with":        NewFnSym("ends-with", endsWith, 2, 2),
	"substring-before": NewFnSym("substring-before", substringBefore, 2, 2),
	"substring-after":  NewFnSym("substring-after", substringAfter, 2, 2),
	"translate":        NewFnSym("translate", translate, 3, 3),
	"encode-for-uri":   NewFnSym("encode-for-uri", encodeForURI, 1, 1),
	"matches":          NewFnSym("matches", matches, 2, 3),
	"replace":          NewFnSym("replace", replace, 3, 4),
	"tokenize":         NewFnSym("tokenize", tokenize, 2, 3),

	// Numeric functions.
	"number":             NewFnSym("number", xNumber, 0, 1),
	"abs":                NewFnSym("abs", xAbs, 1, 1),
	"ceiling":            NewFnSym("ceiling", ceiling, 1, 1),
	"floor":              NewFnSym("floor", floor, 1, 1),
	"round":              NewFnSym("round", round, 1, 1),
	"round-half-to-even": NewFnSym("round-half-to-even", roundHalfToEven, 1, 2),
	"sum":                NewFnSym("sum", sum, 1, 2),
	"avg":                NewFnSym("avg", avg, 1, 1),
	"min":                NewFnSym("min", xMin, 1, 1),
	"max":                NewFnSym("max", xMax, 1, 1),

	// Boolean functions.
	"boolean": NewFnSym("boolean", xBoolean, 1, 1),
	"not":     NewFnSym("not", not, 1, 1),
	"true":    NewFnSym("true", xTrue, 0, 0),
	"false":   NewFnSym("false", xFalse, 0, 0),

	// Sequence functions.
	"empty":           NewFnSym("empty", xEmpty, 1, 1),
	"exists":          NewFnSym("exists", exists, 1, 1),
	"distinct-values": NewFnSym("distinct-values", distinctValues, 1, 1),
	"index-of":        NewFnSym("index-of", indexOf, 2, 2),
	"insert-before":   NewFnSym("insert-before", insertBefore, 3, 3),
	"remove":          NewFnSym("remove", remove, 2, 2),
	"reverse":         NewFnSym("reverse", reverse, 1, 1),
	"subsequence":     NewFnSym("subsequence", subsequence, 2, 3),
	"unordered":       NewFnSym("unordered", unordered, 1, 1),
}

// xsConstructorTable holds the atomic type constructors, which behave
// as 'cast as T?'.
var xsConstructorTable = buildConstructorTable()

func buildConstructorTable() symbolTable {
	table := make(symbolTable, len(atomTypeByLocal))
	for local, atom := range atomTypeByLocal {
		atom := atom
		table[local] = NewFnSym(local, func(ctx *context, args []Sequence) (Sequence, error) {
			atoms := Atomize(args[0])
			if len(atoms) == 0 {
				return EmptySeq, nil
			}
			if len(atoms) > 1 {
				return nil, ErrDynamic.New(fmt.Sprintf(
					"%s() requires at most one item", atomTypeNames[atom]))
			}
			out, err := castTo(atom, atoms[0], ctx.scope)
			if err != nil {
				return nil, err
			}
			return NewSingleton(out), nil
		}, 1, 1)
	}
	return table
}

// LookupFunction resolves (namespace, local name, arity) to a symbol.
// The empty namespace is the default function namespace.
func LookupFunction(uri, local string, arity int) (*Symbol, bool) {
	var table symbolTable
	switch uri {
	case "", FnNamespaceURI:
		table = xpathFunctionTable
	case XsNamespaceURI:
		table = xsConstructorTable
	default:
		return nil, false
	}
	sym, ok := table[local]
	if !ok || !sym.acceptsArity(arity) {
		return nil, false
	}
	return sym, true
}
