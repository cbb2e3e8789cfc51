// Copyright (c) 2019, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2016 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package xpath

import (
	"math"
	"testing"
)

// ARITHMETIC

func TestArithmeticBasics(t *testing.T) {
	checkNumResult(t, emptyDoc, "1 + 2", 3)
	checkNumResult(t, emptyDoc, "7 - 3 - 1", 3)
	checkNumResult(t, emptyDoc, "2 * 3 + 4", 10)
	checkNumResult(t, emptyDoc, "2 + 3 * 4", 14)
	checkNumResult(t, emptyDoc, "(2 + 3) * 4", 20)
	checkNumResult(t, emptyDoc, "-3 + 1", -2)
	checkNumResult(t, emptyDoc, "--3", 3)
	checkNumResult(t, emptyDoc, "1.5 + 0.25", 1.75)
	checkNumResult(t, emptyDoc, "1e2 + 1", 101)
	checkNumResult(t, emptyDoc, ".5 * 4", 2)
}

func TestDivisionRules(t *testing.T) {
	// Integer div yields a decimal.
	checkNumResult(t, emptyDoc, "7 div 2", 3.5)
	checkNumResult(t, emptyDoc, "7 idiv 2", 3)
	checkNumResult(t, emptyDoc, "-7 idiv 2", -3)
	checkNumResult(t, emptyDoc, "7 mod 2", 1)
	checkNumResult(t, emptyDoc, "-7 mod 2", -1)
	checkNumResult(t, emptyDoc, "7 mod -2", 1)

	// Division by zero on exact types is a dynamic error; on doubles
	// it follows IEEE.
	checkRunError(t, emptyDoc, "1 div 0", ErrDynamic.Is)
	checkRunError(t, emptyDoc, "1 idiv 0", ErrDynamic.Is)
	checkRunError(t, emptyDoc, "1 mod 0", ErrDynamic.Is)
	checkNumResult(t, emptyDoc, "1e0 div 0", math.Inf(1))
	checkNumResult(t, emptyDoc, "-1e0 div 0", math.Inf(-1))
	checkNumResult(t, emptyDoc, "0e0 div 0", math.NaN())
}

func TestArithmeticOnNodes(t *testing.T) {
	const doc = `<r><x>4</x><y>2</y></r>`
	checkNumResult(t, doc, "/r/x + /r/y", 6)
	checkNumResult(t, doc, "/r/x div /r/y", 2)
	checkNumResult(t, doc, "/r/x - 1", 3)

	// Empty operand gives the empty sequence.
	checkBoolResult(t, doc, "empty(/r/missing + 1)", true)
}

func TestOperatorKeywordsAsElementNames(t *testing.T) {
	const doc = `<r><div>4</div><and>2</and><to>7</to><mod>3</mod></r>`
	checkNumResult(t, doc, "/r/div div /r/and", 2)
	checkNumResult(t, doc, "/r/to mod /r/mod", 1)
	checkNumResult(t, doc, "/r/div + /r/to", 11)
	checkBoolResult(t, doc, "/r/div and /r/and", true)
}

// COMPARISONS

func TestGeneralComparisons(t *testing.T) {
	const doc = `<r><x>1</x><x>2</x><x>3</x></r>`
	checkBoolResult(t, doc, "/r/x = 2", true)
	checkBoolResult(t, doc, "/r/x = 4", false)
	checkBoolResult(t, doc, "/r/x != 2", true)
	checkBoolResult(t, doc, "/r/x > 2", true)
	checkBoolResult(t, doc, "/r/x < 1", false)
	checkBoolResult(t, doc, "/r/missing = /r/x", false)
	checkBoolResult(t, emptyDoc, "1 = 1", true)
	checkBoolResult(t, emptyDoc, "'a' = 'b'", false)
	checkBoolResult(t, emptyDoc, "(1, 2) = (2, 3)", true)
}

func TestValueComparisons(t *testing.T) {
	checkBoolResult(t, emptyDoc, "2 eq 2", true)
	checkBoolResult(t, emptyDoc, "2 ne 3", true)
	checkBoolResult(t, emptyDoc, "2 lt 3", true)
	checkBoolResult(t, emptyDoc, "2 le 2", true)
	checkBoolResult(t, emptyDoc, "3 gt 2", true)
	checkBoolResult(t, emptyDoc, "2 ge 3", false)
	checkBoolResult(t, emptyDoc, "'abc' lt 'abd'", true)
	checkBoolResult(t, emptyDoc, "1.5 eq 1.5e0", true)

	// Value comparisons require singletons.
	checkRunError(t, `<r><x>1</x><x>2</x></r>`, "/r/x eq 1", ErrType.Is)

	// Empty operand yields the empty sequence.
	checkBoolResult(t, emptyDoc, "empty(() eq 1)", true)
}

func TestNodeComparisons(t *testing.T) {
	const doc = `<root><a img="a1"/><a img="a2"/></root>`
	checkBoolResult(t, doc, "/root/a[1] is /root/a[1]", true)
	checkBoolResult(t, doc, "/root/a[1] is /root/a[2]", false)
	checkBoolResult(t, doc, "/root/a[1] << /root/a[2]", true)
	checkBoolResult(t, doc, "/root/a[2] >> /root/a[1]", true)
	checkBoolResult(t, doc, "empty(/root/missing is /root/a[1])", true)
}

func TestUntypedComparisonPromotion(t *testing.T) {
	const doc = `<r><x>10</x></r>`
	// Untyped vs numeric compares numerically: "10" > "9" as numbers.
	checkBoolResult(t, doc, "/r/x > 9", true)
	// Untyped vs string compares as strings: "10" < "9" as strings.
	checkBoolResult(t, doc, "/r/x < '9'", true)
	// Untyped vs boolean does not coerce.
	checkRunError(t, doc, "/r/x = true()", ErrType.Is)
}

// EFFECTIVE BOOLEAN VALUE

func TestEffectiveBooleanValue(t *testing.T) {
	checkBoolResult(t, emptyDoc, "boolean(())", false)
	checkBoolResult(t, emptyDoc, "boolean(0)", false)
	checkBoolResult(t, emptyDoc, "boolean(0.0)", false)
	checkBoolResult(t, emptyDoc, "boolean(42)", true)
	checkBoolResult(t, emptyDoc, "boolean('')", false)
	checkBoolResult(t, emptyDoc, "boolean('x')", true)
	checkBoolResult(t, `<r><x/></r>`, "boolean(/r/x)", true)
	checkBoolResult(t, `<r><x/></r>`, "boolean(/r/missing)", false)
	checkBoolResult(t, emptyDoc, "boolean(number('abc'))", false)
	checkRunError(t, emptyDoc, "boolean((1, 2))", ErrType.Is)
}

// RANGES AND SEQUENCES

func TestRangeExpressions(t *testing.T) {
	checkPrintedResult(t, emptyDoc, "1 to 3, 10", "(1, 2, 3, 10)")
	checkNumResult(t, emptyDoc, "count(1 to 10)", 10)
	checkNumResult(t, emptyDoc, "count(5 to 5)", 1)
	checkNumResult(t, emptyDoc, "count(5 to 4)", 0)
	checkNumResult(t, emptyDoc, "count(reverse(1 to 3))", 3)
	checkBoolResult(t, emptyDoc, "empty(3 to 1)", true)
}

func TestRangeCountLaw(t *testing.T) {
	for m := int64(-2); m <= 3; m++ {
		for n := int64(-2); n <= 3; n++ {
			exp := n - m + 1
			if exp < 0 {
				exp = 0
			}
			expr := "count(" + formatDecimal(float64(m)) + " to " +
				formatDecimal(float64(n)) + ")"
			checkNumResult(t, emptyDoc, expr, float64(exp))
		}
	}
}

func TestSequenceConstruction(t *testing.T) {
	checkPrintedResult(t, emptyDoc, "(1, 2, 3)", "(1, 2, 3)")
	checkPrintedResult(t, emptyDoc, "()", "()")
	checkPrintedResult(t, emptyDoc, "((1, 2), (), 3)", "(1, 2, 3)")
	checkNumResult(t, emptyDoc, "count(((1, 2), (), 3))", 3)
	checkPrintedResult(t, emptyDoc, "('a', 1.5, true())", "(a, 1.5, true)")
}

// PATHS, AXES AND PREDICATES

const axesDoc = `<root>
  <a id="1"><b id="2"/><b id="3"><c id="4"/></b></a>
  <a id="5"/>
  <b id="6"/>
</root>`

func checkIDs(t *testing.T, src, expr string, ids []string) {
	t.Helper()
	res := runExpr(t, src, expr)
	nodes, err := res.GetNodeSetResult()
	if err != nil {
		t.Fatalf("Unexpected error getting nodeset for %s: %s",
			expr, err.Error())
		return
	}
	var got []string
	for _, node := range nodes {
		if val, ok := node.AttributeValue("id"); ok {
			got = append(got, val)
		}
	}
	if len(got) != len(ids) {
		t.Fatalf("Wrong node count for %s: exp %v, got %v", expr, ids, got)
	}
	for i := range ids {
		if got[i] != ids[i] {
			t.Fatalf("Wrong nodes for %s: exp %v, got %v", expr, ids, got)
		}
	}
}

func TestChildAndDescendantAxes(t *testing.T) {
	checkIDs(t, axesDoc, "/root/a", []string{"1", "5"})
	checkIDs(t, axesDoc, "//b", []string{"2", "3", "6"})
	checkIDs(t, axesDoc, "//a/b", []string{"2", "3"})
	checkIDs(t, axesDoc, "/root/descendant::c", []string{"4"})
	checkIDs(t, axesDoc, "//b/descendant-or-self::*", []string{"2", "3", "4", "6"})
	checkIDs(t, axesDoc, "//*", []string{"1", "2", "3", "4", "5", "6"})
}

func TestParentAndAncestorAxes(t *testing.T) {
	checkIDs(t, axesDoc, "//c/..", []string{"3"})
	checkIDs(t, axesDoc, "//c/parent::b", []string{"3"})
	checkIDs(t, axesDoc, "//c/ancestor::*", []string{"1", "3"})
	checkIDs(t, axesDoc, "//c/ancestor-or-self::*", []string{"1", "3", "4"})
	// Positions on reverse axes count nearest-first.
	checkIDs(t, axesDoc, "//c/ancestor::*[1]", []string{"3"})
	checkIDs(t, axesDoc, "//c/ancestor::*[2]", []string{"1"})
}

func TestSiblingAxes(t *testing.T) {
	checkIDs(t, axesDoc, "//a[1]/following-sibling::*", []string{"5", "6"})
	checkIDs(t, axesDoc, "//b[@id='6']/preceding-sibling::*", []string{"1", "5"})
	checkIDs(t, axesDoc, "//b[@id='6']/preceding-sibling::*[1]", []string{"5"})
	checkIDs(t, axesDoc, "//a[2]/following-sibling::*[1]", []string{"6"})
}

func TestFollowingPrecedingAxes(t *testing.T) {
	checkIDs(t, axesDoc, "//b[@id='3']/following::*", []string{"5", "6"})
	checkIDs(t, axesDoc, "//a[2]/preceding::*", []string{"1", "2", "3", "4"})
	checkIDs(t, axesDoc, "//a[2]/preceding::*[1]", []string{"4"})
}

func TestSelfAxisAndContextItem(t *testing.T) {
	checkIDs(t, axesDoc, "//c/self::c", []string{"4"})
	checkIDs(t, axesDoc, "//c/self::b", nil)
	checkIDs(t, axesDoc, "//c/.", []string{"4"})
}

func TestAttributeAxis(t *testing.T) {
	const doc = `<root><a img="a1"/><a img="a2"/></root>`
	checkNodeValues(t, doc, "/root/a/@img", []string{"a1", "a2"})
	checkNodeValues(t, doc, "/root/a/attribute::img", []string{"a1", "a2"})
	checkNodeValues(t, doc, "/root/a/@*", []string{"a1", "a2"})
	checkNodeValues(t, doc, "/root/a/@missing", nil)
}

func TestNamespaceAxis(t *testing.T) {
	const doc = `<root xmlns:p="urn:p"><x/></root>`
	// Every element sees its inherited bindings plus 'xml'.
	checkNumResult(t, doc, "count(/root/x/namespace::*)", 2)
	checkLiteralResult(t, doc, "string(/root/x/namespace::p)", "urn:p")
}

func TestNodeTests(t *testing.T) {
	const doc = `<r>t1<x/><!--c--><?pi d?>t2</r>`
	checkNumResult(t, doc, "count(/r/node())", 5)
	checkNodeValues(t, doc, "/r/text()", []string{"t1", "t2"})
	checkNodeValues(t, doc, "/r/comment()", []string{"c"})
	checkNodeValues(t, doc, "/r/processing-instruction()", []string{"d"})
	checkNodeValues(t, doc, "/r/processing-instruction('pi')", []string{"d"})
	checkNodeValues(t, doc, "/r/processing-instruction('other')", nil)
	checkNumResult(t, doc, "count(/r/element())", 1)
	checkNumResult(t, doc, "count(/r/element(x))", 1)
	checkNumResult(t, doc, "count(/r/element(y))", 0)
	checkBoolResult(t, doc, "root(.) instance of document-node()", true)
}

func TestWildcardNameTests(t *testing.T) {
	const doc = `<root xmlns:p="urn:p" xmlns:q="urn:q">
	  <p:x/><q:x/><y/></root>`
	checkNumResult(t, doc, "count(/root/*)", 3)
	checkNumResult(t, doc, "count(/root/p:*)", 1)
	checkNumResult(t, doc, "count(/root/*:x)", 2)
	checkNumResult(t, doc, "count(/root/p:x)", 1)
	checkNumResult(t, doc, "count(/root/y)", 1)
}

func TestPositionalPredicates(t *testing.T) {
	const doc = `<r><x>1</x><x>2</x><x>3</x></r>`
	checkNodeValues(t, doc, "/r/x[1]", []string{"1"})
	checkNodeValues(t, doc, "/r/x[3]", []string{"3"})
	checkNodeValues(t, doc, "/r/x[4]", nil)
	checkNodeValues(t, doc, "/r/x[last()]", []string{"3"})
	checkNodeValues(t, doc, "/r/x[last() - 1]", []string{"2"})
	checkNodeValues(t, doc, "/r/x[position() > 1]", []string{"2", "3"})
	checkNodeValues(t, doc, "/r/x[position() = last()]", []string{"3"})
	// A computed numeric predicate is positional too.
	checkNodeValues(t, doc, "/r/x[1 + 1]", []string{"2"})
}

func TestFilterPredicates(t *testing.T) {
	const doc = `<r><x a="1">one</x><x>two</x><x a="2">three</x></r>`
	checkNodeValues(t, doc, "/r/x[@a]", []string{"one", "three"})
	checkNodeValues(t, doc, "/r/x[@a='2']", []string{"three"})
	checkNodeValues(t, doc, "/r/x[not(@a)]", []string{"two"})
	checkNodeValues(t, doc, "/r/x[@a][2]", []string{"three"})
	checkNodeValues(t, doc, "(/r/x)[2]", []string{"two"})
	checkPrintedResult(t, emptyDoc, "(10, 20, 30)[2]", "20")
	checkPrintedResult(t, emptyDoc, "(10, 20, 30)[. > 15]", "(20, 30)")
}

func TestPredicateIdentityLaws(t *testing.T) {
	const doc = `<r><x>1</x><x>2</x></r>`
	checkNodeValues(t, doc, "/r/x[true()]", []string{"1", "2"})
	checkNodeValues(t, doc, "/r/x[false()]", nil)
	checkNodeValues(t, doc, "(/r/x)", []string{"1", "2"})
}

func TestPathResultsSortedAndDeduplicated(t *testing.T) {
	checkSortedUnique(t, axesDoc, "//b | //a")
	checkSortedUnique(t, axesDoc, "//c/ancestor::* | //c")
	checkSortedUnique(t, axesDoc, "//*/..")
	// Parents reached through several children appear once.
	checkNumResult(t, `<r><x/><x/><x/></r>`, "count(/r/x/..)", 1)
}

func TestMixedPathResultIsTypeError(t *testing.T) {
	checkRunError(t, axesDoc, "//a/(@id, 1)", ErrType.Is)
}

func TestSetOperators(t *testing.T) {
	checkIDs(t, axesDoc, "//a | //b", []string{"1", "2", "3", "5", "6"})
	checkIDs(t, axesDoc, "//a union //a", []string{"1", "5"})
	checkIDs(t, axesDoc, "(//a | //b) intersect //b", []string{"2", "3", "6"})
	checkIDs(t, axesDoc, "//* except //b", []string{"1", "4", "5"})
	checkIDs(t, axesDoc, "//a intersect //b", nil)
	checkRunError(t, emptyDoc, "1 | 2", ErrType.Is)
}

// BINDING CONSTRUCTS

func TestForExpressions(t *testing.T) {
	checkPrintedResult(t, emptyDoc, "for $i in (1, 2, 3) return $i * 10",
		"(10, 20, 30)")
	checkPrintedResult(t, emptyDoc,
		"for $i in (1, 2), $j in (10, 20) return $i + $j",
		"(11, 21, 12, 22)")
	checkPrintedResult(t, emptyDoc, "for $i in () return $i", "()")
	checkNumResult(t, `<r><x>1</x><x>2</x></r>`,
		"count(for $n in /r/x return ($n, $n))", 4)
}

func TestLetExpressions(t *testing.T) {
	checkNumResult(t, emptyDoc, "let $x := 5 return $x * $x", 25)
	checkNumResult(t, emptyDoc,
		"let $x := 2, $y := $x + 1 return $y * 10", 30)
	checkPrintedResult(t, emptyDoc,
		"let $s := (1, 2, 3) return count($s)", "3")
	// Inner bindings shadow outer ones.
	checkNumResult(t, emptyDoc,
		"let $x := 1 return (let $x := 2 return $x) + $x", 3)
}

func TestQuantifiedExpressions(t *testing.T) {
	checkBoolResult(t, emptyDoc, "some $x in (1, 2, 3) satisfies $x > 2", true)
	checkBoolResult(t, emptyDoc, "some $x in (1, 2, 3) satisfies $x > 3", false)
	checkBoolResult(t, emptyDoc, "every $x in (1, 2, 3) satisfies $x > 0", true)
	checkBoolResult(t, emptyDoc, "every $x in (1, 2, 3) satisfies $x > 1", false)

	// Vacuous truth rules on the empty stream.
	checkBoolResult(t, emptyDoc, "every $x in () satisfies true()", true)
	checkBoolResult(t, emptyDoc, "some $x in () satisfies true()", false)

	checkBoolResult(t, emptyDoc,
		"some $x in (1, 2), $y in (10, 20) satisfies $x * $y = 40", true)
}

func TestIfExpressions(t *testing.T) {
	checkNumResult(t, emptyDoc, "if (1 < 2) then 10 else 20", 10)
	checkNumResult(t, emptyDoc, "if (1 > 2) then 10 else 20", 20)
	checkLiteralResult(t, emptyDoc, "if (()) then 'yes' else 'no'", "no")
	// Only the chosen branch evaluates: the division by zero in the
	// untaken branch must not fire.
	checkNumResult(t, emptyDoc, "if (true()) then 1 else 1 idiv 0", 1)
	checkNumResult(t, emptyDoc, "if (false()) then 1 idiv 0 else 2", 2)
}

// MAP OPERATOR

func TestSimpleMapOperator(t *testing.T) {
	checkPrintedResult(t, emptyDoc, "(1, 2, 3) ! (. * 2)", "(2, 4, 6)")
	checkNumResult(t, `<r><x>1</x><x>2</x></r>`,
		"count(/r/x ! string(.))", 2)
	// No deduplication: each item maps independently.
	checkNumResult(t, `<r><x/><x/></r>`, "count(/r/x ! /r)", 2)
}

// TYPE OPERATORS

func TestInstanceOf(t *testing.T) {
	checkBoolResult(t, emptyDoc, "5 instance of xs:integer", true)
	checkBoolResult(t, emptyDoc, "5 instance of xs:double", false)
	checkBoolResult(t, emptyDoc, "5.0 instance of xs:decimal", true)
	checkBoolResult(t, emptyDoc, "'a' instance of xs:string", true)
	checkBoolResult(t, emptyDoc, "(1, 2) instance of xs:integer+", true)
	checkBoolResult(t, emptyDoc, "(1, 2) instance of xs:integer", false)
	checkBoolResult(t, emptyDoc, "() instance of xs:integer?", true)
	checkBoolResult(t, emptyDoc, "() instance of empty-sequence()", true)
	checkBoolResult(t, emptyDoc, "1 instance of empty-sequence()", false)
	checkBoolResult(t, emptyDoc, "(1, 'a') instance of item()*", true)
	checkBoolResult(t, `<r><x/></r>`, "/r/x instance of element()", true)
	checkBoolResult(t, `<r a="1"/>`, "/r/@a instance of attribute()", true)
	checkBoolResult(t, `<r a="1"/>`, "/r/@a instance of element()", false)
}

func TestCastAndCastable(t *testing.T) {
	checkNumResult(t, emptyDoc, "'5' cast as xs:integer", 5)
	checkNumResult(t, emptyDoc, "'2.5' cast as xs:double", 2.5)
	checkLiteralResult(t, emptyDoc, "5 cast as xs:string", "5")
	checkBoolResult(t, emptyDoc, "'true' cast as xs:boolean", true)
	checkBoolResult(t, emptyDoc, "'1' cast as xs:boolean", true)
	checkBoolResult(t, emptyDoc, "'false' cast as xs:boolean", false)
	checkNumResult(t, emptyDoc, "'3.9' cast as xs:integer", 3)

	checkBoolResult(t, emptyDoc, "'5' castable as xs:integer", true)
	checkBoolResult(t, emptyDoc, "'abc' castable as xs:double", false)
	checkBoolResult(t, emptyDoc, "() castable as xs:integer?", true)
	checkBoolResult(t, emptyDoc, "() castable as xs:integer", false)

	checkRunError(t, emptyDoc, "'abc' cast as xs:integer", ErrDynamic.Is)
	checkRunError(t, emptyDoc, "() cast as xs:integer", ErrDynamic.Is)
	checkNumResult(t, emptyDoc, "count(() cast as xs:integer?)", 0)

	checkNumResult(t, emptyDoc, "('4' treat as xs:string) cast as xs:integer", 4)
	checkRunError(t, emptyDoc, "5 treat as xs:string", ErrDynamic.Is)
}

// ERRORS

func TestCompileErrors(t *testing.T) {
	checkCompileError(t, emptyDoc, "1 +", ErrParse.Is)
	checkCompileError(t, emptyDoc, "/r/[1]", ErrParse.Is)
	checkCompileError(t, emptyDoc, "'unterminated", ErrParse.Is)
	checkCompileError(t, emptyDoc, "1 2", ErrParse.Is)
	checkCompileError(t, emptyDoc, "for $x in (1) give $x", ErrParse.Is)
	checkCompileError(t, emptyDoc, "unknown-fn()", ErrStatic.Is)
	checkCompileError(t, emptyDoc, "count()", ErrStatic.Is)
	checkCompileError(t, emptyDoc, "count(1, 2)", ErrStatic.Is)
	checkCompileError(t, emptyDoc, "/nosuchpfx:a", ErrStatic.Is)
	checkCompileError(t, emptyDoc, "1 cast as xs:nosuch", ErrStatic.Is)
}

func TestParseErrorOffsets(t *testing.T) {
	doc := parseDoc(t, emptyDoc)
	_, err := CompileForNode("1 + (", doc.RootElement())
	if err == nil {
		t.Fatalf("Unexpected parse success")
	}
	off, ok := ErrorOffset(err)
	if !ok {
		t.Fatalf("Parse error carries no offset: %s", err.Error())
	}
	if off < 1 || off > 6 {
		t.Fatalf("Implausible error offset %d for %s", off, err.Error())
	}
}

func TestRunErrors(t *testing.T) {
	checkRunError(t, emptyDoc, "$nosuchvar", ErrDynamic.Is)
	checkRunError(t, emptyDoc, "1/x", ErrType.Is)
}
