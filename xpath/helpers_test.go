// Copyright (c) 2019, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2016 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Wrapper functions so our test calls are a little more readable.
// Each check compiles the expression against the document's root
// element scope and runs it with the document node as context item.

package xpath

import (
	"math"
	"testing"

	"github.com/sdcio/xmlpath/xmltree"
)

// emptyDoc anchors expressions that never touch the tree.
const emptyDoc = `<empty/>`

func parseDoc(t *testing.T, src string) *xmltree.Document {
	t.Helper()
	doc, err := xmltree.ParseString(src)
	if err != nil {
		t.Fatalf("Unexpected error parsing test document: %s", err.Error())
	}
	return doc
}

func getMachine(t *testing.T, expr string, doc *xmltree.Document) *Machine {
	t.Helper()
	mach, err := CompileForNode(expr, doc.RootElement())
	if err != nil {
		t.Fatalf("Unexpected error parsing %s: %s", expr, err.Error())
	}
	return mach
}

func runExpr(t *testing.T, src, expr string) *Result {
	t.Helper()
	doc := parseDoc(t, src)
	mach := getMachine(t, expr, doc)
	return NewCtxFromMach(mach, doc.Root()).Run()
}

func checkNumResult(t *testing.T, src, expr string, expResult float64) {
	t.Helper()
	res := runExpr(t, src, expr)
	actResult, err := res.GetNumResult()
	if err != nil {
		t.Fatalf("Unexpected error getting number result for %s: %s",
			expr, err.Error())
		return
	}
	if math.IsNaN(expResult) {
		if !math.IsNaN(actResult) {
			t.Fatalf("Expected NaN for %s, got %v", expr, actResult)
		}
		return
	}
	if math.Abs(actResult-expResult) > 1e-9 {
		t.Fatalf("Wrong number result for %s: exp %v, got %v",
			expr, expResult, actResult)
	}
}

func checkBoolResult(t *testing.T, src, expr string, expResult bool) {
	t.Helper()
	res := runExpr(t, src, expr)
	actResult, err := res.GetBoolResult()
	if err != nil {
		t.Fatalf("Unexpected error getting boolean result for %s: %s",
			expr, err.Error())
		return
	}
	if actResult != expResult {
		t.Fatalf("Wrong boolean result for %s: exp %t, got %t",
			expr, expResult, actResult)
	}
}

func checkLiteralResult(t *testing.T, src, expr string, expResult string) {
	t.Helper()
	res := runExpr(t, src, expr)
	actResult, err := res.GetLiteralResult()
	if err != nil {
		t.Fatalf("Unexpected error getting string result for %s: %s",
			expr, err.Error())
		return
	}
	if actResult != expResult {
		t.Fatalf("Wrong string result for %s: exp %q, got %q",
			expr, expResult, actResult)
	}
}

func checkPrintedResult(t *testing.T, src, expr string, expResult string) {
	t.Helper()
	res := runExpr(t, src, expr)
	if err := res.Err(); err != nil {
		t.Fatalf("Unexpected error running %s: %s", expr, err.Error())
		return
	}
	if act := res.PrintResult(); act != expResult {
		t.Fatalf("Wrong printed result for %s:\nExp: %s\nGot: %s",
			expr, expResult, act)
	}
}

// checkNodeValues compares the string values of a node-set result.
func checkNodeValues(t *testing.T, src, expr string, expValues []string) {
	t.Helper()
	res := runExpr(t, src, expr)
	nodes, err := res.GetNodeSetResult()
	if err != nil {
		t.Fatalf("Unexpected error getting nodeset for %s: %s",
			expr, err.Error())
		return
	}
	if len(nodes) != len(expValues) {
		t.Fatalf("Wrong nodeset size for %s: exp %d, got %d",
			expr, len(expValues), len(nodes))
	}
	for i, node := range nodes {
		if node.StringValue() != expValues[i] {
			t.Fatalf("Wrong node %d for %s: exp %q, got %q",
				i, expr, expValues[i], node.StringValue())
		}
	}
}

// checkSortedUnique asserts the node-set result is strictly ascending
// in document order with no duplicate identities.
func checkSortedUnique(t *testing.T, src, expr string) {
	t.Helper()
	res := runExpr(t, src, expr)
	nodes, err := res.GetNodeSetResult()
	if err != nil {
		t.Fatalf("Unexpected error getting nodeset for %s: %s",
			expr, err.Error())
		return
	}
	for i := 1; i < len(nodes); i++ {
		if xmltree.CompareOrder(nodes[i-1], nodes[i]) >= 0 {
			t.Fatalf("Nodeset for %s not strictly ascending at %d", expr, i)
		}
	}
}

func checkCompileError(t *testing.T, src, expr string, kindCheck func(error) bool) {
	t.Helper()
	doc := parseDoc(t, src)
	_, err := CompileForNode(expr, doc.RootElement())
	if err == nil {
		t.Fatalf("Unexpected compile success for %s", expr)
		return
	}
	if kindCheck != nil && !kindCheck(err) {
		t.Fatalf("Wrong error kind for %s: %s", expr, err.Error())
	}
}

func checkRunError(t *testing.T, src, expr string, kindCheck func(error) bool) {
	t.Helper()
	res := runExpr(t, src, expr)
	err := res.Err()
	if err == nil {
		t.Fatalf("Unexpected run success for %s: %s",
			expr, res.PrintResult())
		return
	}
	if kindCheck != nil && !kindCheck(err) {
		t.Fatalf("Wrong error kind for %s: %s", expr, err.Error())
	}
}
