// Copyright (c) 2019, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2016 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// End-to-end query scenarios over small documents.

package xpath

import (
	"testing"
)

const imgDoc = `<root><a img="a1"/><a img="a2"/></root>`

func TestScenarioAttributeSelection(t *testing.T) {
	checkNodeValues(t, imgDoc, "/root/a/@img", []string{"a1", "a2"})
	checkLiteralResult(t, imgDoc, "string-join(/root/a/@img, '-')", "a1-a2")
	checkBoolResult(t, imgDoc, `//a[@img = "a2"] is //a[2]`, true)
}

const staffDoc = `<root>
  <clerk name="Bob">
    <clerk name="Charlie"/>
    <engineer name="Emily"/>
  </clerk>
  <advisor name="Alice">
    <engineer name="Fred"/>
  </advisor>
</root>`

func TestScenarioLeafStaffSelection(t *testing.T) {
	res := runExpr(t, staffDoc, "(//clerk | //engineer)[count(./*) = 0]")
	nodes, err := res.GetNodeSetResult()
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	var names []string
	for _, node := range nodes {
		name, _ := node.AttributeValue("name")
		names = append(names, name)
	}
	exp := []string{"Charlie", "Emily", "Fred"}
	if len(names) != len(exp) {
		t.Fatalf("Wrong staff selection: exp %v, got %v", exp, names)
	}
	for i := range exp {
		if names[i] != exp[i] {
			t.Fatalf("Wrong staff selection: exp %v, got %v", exp, names)
		}
	}
}

const numbersDoc = `<r><x>1</x><x>2</x><x>3</x></r>`

func TestScenarioSumAndLast(t *testing.T) {
	checkNumResult(t, numbersDoc, "sum(/r/x)", 6)
	checkNodeValues(t, numbersDoc, "/r/x[last()]", []string{"3"})
}

const studentDoc = `<root>
  <student>
    <name>George</name>
    <exam subject="math" point="70"/>
    <exam subject="art" point="90"/>
  </student>
  <student>
    <name>Harry</name>
    <exam subject="math" point="80"/>
    <exam subject="art" point="95"/>
  </student>
  <student>
    <name>Ivonne</name>
    <exam subject="math" point="60"/>
  </student>
</root>`

func TestScenarioStudentExams(t *testing.T) {
	checkPrintedResult(t, studentDoc,
		"for $s in /root/student return "+
			"($s/name/text(), "+
			"every $e in $s/exam satisfies number($e/@point) >= 80)",
		"(George, false, Harry, true, Ivonne, false)")
}

func TestScenarioRangeSequence(t *testing.T) {
	checkPrintedResult(t, emptyDoc, "1 to 3, 10", "(1, 2, 3, 10)")
}

// Union, intersect and except behave as identity-based set algebra
// over document-ordered operands.
func TestSetOperatorLaws(t *testing.T) {
	const doc = `<r><a/><b/><a/><c/></r>`

	// A | A = A; A intersect A = A; A except A = ().
	checkNumResult(t, doc, "count(//a | //a)", 2)
	checkNumResult(t, doc, "count(//a intersect //a)", 2)
	checkNumResult(t, doc, "count(//a except //a)", 0)

	// |A ∪ B| + |A ∩ B| = |A| + |B| with A=elements, B=a-elements.
	checkNumResult(t, doc, "count(//* | //a) + count(//* intersect //a)", 7)

	// Results stay sorted and deduplicated.
	checkSortedUnique(t, doc, "//a | //* | //c")
	checkSortedUnique(t, doc, "//* except //b")
}

func TestQuantifierVacuousTruth(t *testing.T) {
	for _, src := range []string{emptyDoc, numbersDoc} {
		checkBoolResult(t, src, "every $x in () satisfies true()", true)
		checkBoolResult(t, src, "every $x in () satisfies false()", true)
		checkBoolResult(t, src, "some $x in () satisfies true()", false)
		checkBoolResult(t, src, "every $x in /r/x satisfies number($x) > 0",
			true)
	}
}

// Compiled machines are cached per expression + namespace scope.
func TestMachineCache(t *testing.T) {
	cache := NewMachineCache()
	scope := map[string]string{"p": "urn:p"}

	m1, err := cache.Get("1 + 2", scope)
	if err != nil {
		t.Fatalf("Unexpected compile error: %s", err.Error())
	}
	m2, err := cache.Get("1 + 2", scope)
	if err != nil {
		t.Fatalf("Unexpected compile error: %s", err.Error())
	}
	if m1 != m2 {
		t.Fatalf("Same expression and scope compiled twice")
	}

	m3, err := cache.Get("1 + 2", map[string]string{"p": "urn:other"})
	if err != nil {
		t.Fatalf("Unexpected compile error: %s", err.Error())
	}
	if m1 == m3 {
		t.Fatalf("Different scopes shared a machine")
	}
}

func TestResultConversions(t *testing.T) {
	res := runExpr(t, numbersDoc, "/r/x")
	nodes, err := res.GetNodeSetResult()
	if err != nil || len(nodes) != 3 {
		t.Fatalf("Wrong nodeset conversion: %v, %v", nodes, err)
	}
	if b, err := res.GetBoolResult(); err != nil || !b {
		t.Fatalf("Wrong bool conversion: %v, %v", b, err)
	}

	res = runExpr(t, numbersDoc, "count(/r/x)")
	if n, err := res.GetNumResult(); err != nil || n != 3 {
		t.Fatalf("Wrong number conversion: %v, %v", n, err)
	}

	res = runExpr(t, numbersDoc, "/r/x[2]")
	if s, err := res.GetLiteralResult(); err != nil || s != "2" {
		t.Fatalf("Wrong literal conversion: %q, %v", s, err)
	}

	res = runExpr(t, numbersDoc, "1, 'two'")
	if _, err := res.GetNodeSetResult(); err == nil {
		t.Fatalf("Atomic sequence converted to nodeset")
	}
}

func TestPrintResultForms(t *testing.T) {
	checkPrintedResult(t, numbersDoc, "true()", "true")
	checkPrintedResult(t, numbersDoc, "1.0", "1")
	checkPrintedResult(t, numbersDoc, "1e0 div 0", "INF")
	checkPrintedResult(t, numbersDoc, "'plain'", "plain")
	checkPrintedResult(t, numbersDoc, "/r/x[1]", "<x>1</x>")
	checkPrintedResult(t, numbersDoc, "/r/x[1]/text()", "1")
	checkPrintedResult(t, numbersDoc, "()", "()")
}
