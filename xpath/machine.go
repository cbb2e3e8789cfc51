// Copyright (c) 2019-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// This file contains the Machine object wrapping a compiled
// expression, the Result wrapper around a raw evaluation value, and a
// concurrency-safe compile cache.

package xpath

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sdcio/xmlpath/xmltree"
)

// MACHINE
//
// A compiled expression bound to a namespace scope.  Machines are
// immutable once built and safe to run concurrently.
type Machine struct {
	refExpr string
	prog    Expr
	scope   map[string]string
}

// GetExpr returns the source expression the machine was compiled
// from.
func (mach *Machine) GetExpr() string { return mach.refExpr }

// Compile parses the expression and binds it to the given namespace
// scope (prefix -> URI; nil for none).  Parse failures carry the
// offending offset; binding failures are static errors.
func Compile(expr string, scope map[string]string) (*Machine, error) {
	tree, err := ParseExpr(expr)
	if err != nil {
		return nil, err
	}
	prog, err := Rewrite(tree, scope)
	if err != nil {
		return nil, err
	}
	return &Machine{refExpr: expr, prog: prog, scope: scope}, nil
}

// CompileForNode compiles the expression against the namespace scope
// in effect at the given node.
func CompileForNode(expr string, node *xmltree.Node) (*Machine, error) {
	var scope map[string]string
	if node != nil {
		scope = node.NamespaceScope()
	}
	return Compile(expr, scope)
}

// RESULT
//
// Wrapper around the raw result of the expression, so we can keep it
// in its native type but convert on request to other types.
type Result struct {
	value  Sequence
	runErr error
}

func NewResult() *Result {
	return &Result{}
}

func (res *Result) save(val Sequence) {
	res.value = val
}

// Err returns the evaluation error, if any.
func (res *Result) Err() error { return res.runErr }

// GetSequenceResult returns the raw value.
func (res *Result) GetSequenceResult() (Sequence, error) {
	if res.runErr != nil {
		return nil, res.runErr
	}
	return res.value, nil
}

// GetBoolResult converts the value via the effective boolean rules.
func (res *Result) GetBoolResult() (bool, error) {
	if res.runErr != nil {
		return false, res.runErr
	}
	return EffectiveBool(res.value)
}

// GetNumResult converts a singleton value to a number.
func (res *Result) GetNumResult() (float64, error) {
	if res.runErr != nil {
		return 0, res.runErr
	}
	atoms := Atomize(res.value)
	if len(atoms) != 1 {
		return 0, ErrType.New(fmt.Sprintf(
			"number result requires a singleton, got %d items", len(atoms)))
	}
	return asFloat(atoms[0])
}

// GetLiteralResult converts a zero-or-one item value to a string; the
// empty sequence yields "".
func (res *Result) GetLiteralResult() (string, error) {
	if res.runErr != nil {
		return "", res.runErr
	}
	atoms := Atomize(res.value)
	switch len(atoms) {
	case 0:
		return "", nil
	case 1:
		return atoms[0].StringValue(), nil
	}
	return "", ErrType.New(fmt.Sprintf(
		"string result requires at most one item, got %d", len(atoms)))
}

// GetNodeSetResult returns the value as nodes, failing on any
// non-node item.
func (res *Result) GetNodeSetResult() ([]*xmltree.Node, error) {
	if res.runErr != nil {
		return nil, res.runErr
	}
	return NodesetFrom(res.value)
}

// PrintResult renders the value: multi-item sequences in '(x, y, z)'
// form, singletons bare, element nodes as their XML, atomics in
// their canonical lexical form.
func (res *Result) PrintResult() string {
	if res.runErr != nil {
		return fmt.Sprintf("Failed to run: %s\n", res.runErr.Error())
	}
	if len(res.value) == 1 {
		return printItem(res.value[0])
	}
	var parts []string
	for _, d := range res.value {
		parts = append(parts, printItem(d))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func printItem(d Datum) string {
	if node, ok := NodeOf(d); ok {
		switch node.Kind() {
		case kindElement, kindDocument:
			if out, err := xmltree.SerializeNode(node); err == nil {
				return out
			}
		}
		return node.StringValue()
	}
	return d.StringValue()
}

// MACHINE CACHE
//
// Compilation is pure, so machines are shared per (expression, scope)
// pair.  Reads vastly outnumber writes; safe for concurrent use.
type MachineCache struct {
	mu       sync.RWMutex
	machines map[string]*Machine
}

func NewMachineCache() *MachineCache {
	return &MachineCache{machines: make(map[string]*Machine)}
}

// Get returns the cached machine for the expression under the given
// scope, compiling and caching on first use.
func (mc *MachineCache) Get(expr string, scope map[string]string) (*Machine, error) {
	key := cacheKey(expr, scope)

	mc.mu.RLock()
	mach, ok := mc.machines[key]
	mc.mu.RUnlock()
	if ok {
		return mach, nil
	}

	mach, err := Compile(expr, scope)
	if err != nil {
		return nil, err
	}

	mc.mu.Lock()
	mc.machines[key] = mach
	mc.mu.Unlock()
	return mach, nil
}

func cacheKey(expr string, scope map[string]string) string {
	if len(scope) == 0 {
		return expr
	}
	prefixes := make([]string, 0, len(scope))
	for pfx := range scope {
		prefixes = append(prefixes, pfx)
	}
	sort.Strings(prefixes)
	var b strings.Builder
	b.WriteString(expr)
	for _, pfx := range prefixes {
		b.WriteString("\x00")
		b.WriteString(pfx)
		b.WriteString("\x01")
		b.WriteString(scope[pfx])
	}
	return b.String()
}
