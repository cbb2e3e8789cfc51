// Copyright (c) 2019, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Implements the datum types making up the value algebra: atomic items
// (boolean, integer, decimal, double, string, untypedAtomic, QName),
// node references, and the flat Sequence they combine into.

package xpath

import (
	"encoding/xml"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/sdcio/xmlpath/xmltree"
)

// Datum is a single item of a sequence.
type Datum interface {
	name() string // Type name for debug and error messages.

	// StringValue returns the item in string form: the string value
	// for nodes, the canonical lexical form for atomics.
	StringValue() string
}

// Sequence is the result of every evaluation: a flat, ordered list of
// items.  Sequences never nest; concatenation flattens.
type Sequence []Datum

// EmptySeq is the empty sequence.
var EmptySeq = Sequence{}

func NewSingleton(d Datum) Sequence { return Sequence{d} }

// BOOL

type boolDatum struct {
	b bool
}

func NewBoolDatum(b bool) Datum { return boolDatum{b} }

func (d boolDatum) name() string { return "BOOL" }
func (d boolDatum) StringValue() string {
	if d.b {
		return "true"
	}
	return "false"
}

// INTEGER

type intDatum struct {
	i int64
}

func NewIntDatum(i int64) Datum { return intDatum{i} }

func (d intDatum) name() string        { return "INTEGER" }
func (d intDatum) StringValue() string { return strconv.FormatInt(d.i, 10) }

// DECIMAL

type decDatum struct {
	f float64
}

func NewDecimalDatum(f float64) Datum { return decDatum{f} }

func (d decDatum) name() string { return "DECIMAL" }
func (d decDatum) StringValue() string {
	return formatDecimal(d.f)
}

// DOUBLE

type numDatum struct {
	f float64
}

func NewNumDatum(f float64) Datum { return numDatum{f} }

func (d numDatum) name() string        { return "DOUBLE" }
func (d numDatum) StringValue() string { return formatDouble(d.f) }

// LITERAL (string)

type litDatum struct {
	lit string
}

func NewLiteralDatum(s string) Datum { return litDatum{s} }

func (d litDatum) name() string        { return "LITERAL" }
func (d litDatum) StringValue() string { return d.lit }

// UNTYPED ATOMIC

type untypedDatum struct {
	lit string
}

func NewUntypedDatum(s string) Datum { return untypedDatum{s} }

func (d untypedDatum) name() string        { return "UNTYPED" }
func (d untypedDatum) StringValue() string { return d.lit }

// QNAME

type qnameDatum struct {
	qn xml.Name
}

func NewQNameDatum(qn xml.Name) Datum { return qnameDatum{qn} }

func (d qnameDatum) name() string { return "QNAME" }
func (d qnameDatum) StringValue() string {
	return d.qn.Local
}

// NODE

type nodeDatum struct {
	node *xmltree.Node
}

func NewNodeDatum(n *xmltree.Node) Datum { return nodeDatum{n} }

func (d nodeDatum) name() string        { return "NODE" }
func (d nodeDatum) StringValue() string { return d.node.StringValue() }

// Helper functions to make code elsewhere a little cleaner.
func isBool(d Datum) bool    { _, ok := d.(boolDatum); return ok }
func isInt(d Datum) bool     { _, ok := d.(intDatum); return ok }
func isDecimal(d Datum) bool { _, ok := d.(decDatum); return ok }
func isDouble(d Datum) bool  { _, ok := d.(numDatum); return ok }
func isLiteral(d Datum) bool { _, ok := d.(litDatum); return ok }
func isUntyped(d Datum) bool { _, ok := d.(untypedDatum); return ok }
func isQName(d Datum) bool   { _, ok := d.(qnameDatum); return ok }
func isNode(d Datum) bool    { _, ok := d.(nodeDatum); return ok }

func isNumeric(d Datum) bool {
	return isInt(d) || isDecimal(d) || isDouble(d)
}

// NodeOf returns the node held by a node item.
func NodeOf(d Datum) (*xmltree.Node, bool) {
	nd, ok := d.(nodeDatum)
	if !ok {
		return nil, false
	}
	return nd.node, true
}

// numKind orders the numeric types for promotion: the result type of
// an arithmetic operation is the greater of the operand kinds.
type numKind int

const (
	numInt numKind = iota
	numDec
	numDbl
)

func kindOfNumeric(d Datum) numKind {
	switch d.(type) {
	case intDatum:
		return numInt
	case decDatum:
		return numDec
	default:
		return numDbl
	}
}

// asFloat converts any numeric or numeric-promotable item to float64.
func asFloat(d Datum) (float64, error) {
	switch v := d.(type) {
	case intDatum:
		return float64(v.i), nil
	case decDatum:
		return v.f, nil
	case numDatum:
		return v.f, nil
	case untypedDatum:
		return numberFromString(v.lit), nil
	case boolDatum:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case litDatum:
		return numberFromString(v.lit), nil
	case nodeDatum:
		return numberFromString(v.node.StringValue()), nil
	}
	return 0, ErrType.New(fmt.Sprintf("cannot treat %s as a number", d.name()))
}

// numberFromString parses per the XPath number() rules, yielding NaN
// on anything unparseable.
func numberFromString(numStr string) float64 {
	num, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
	if err != nil {
		return math.NaN()
	}
	return num
}

// newNumericOfKind wraps a float in the numeric datum of given kind.
func newNumericOfKind(f float64, kind numKind) Datum {
	switch kind {
	case numInt:
		return intDatum{int64(f)}
	case numDec:
		return decDatum{f}
	default:
		return numDatum{f}
	}
}

// formatDecimal prints a decimal canonically: no exponent, no
// trailing fractional zeros, integer-valued decimals without a point.
func formatDecimal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return s
}

// formatDouble prints a double: NaN / INF forms, integral values in
// integer form, the rest in shortest round-trip notation.
func formatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Atomize replaces each node by the untyped atomic of its string
// value; atomic items pass through.
func Atomize(seq Sequence) Sequence {
	out := make(Sequence, 0, len(seq))
	for _, d := range seq {
		if nd, ok := d.(nodeDatum); ok {
			out = append(out, untypedDatum{nd.node.StringValue()})
		} else {
			out = append(out, d)
		}
	}
	return out
}

// EffectiveBool computes the effective boolean value of a sequence:
// empty is false; a sequence whose first item is a node is true; a
// singleton boolean / number / string follows the usual truth rules;
// every other shape is a type error.
func EffectiveBool(seq Sequence) (bool, error) {
	if len(seq) == 0 {
		return false, nil
	}
	if isNode(seq[0]) {
		return true, nil
	}
	if len(seq) > 1 {
		return false, ErrType.New(
			"effective boolean value of a multi-item atomic sequence")
	}
	switch v := seq[0].(type) {
	case boolDatum:
		return v.b, nil
	case intDatum:
		return v.i != 0, nil
	case decDatum:
		return v.f != 0 && !math.IsNaN(v.f), nil
	case numDatum:
		return v.f != 0 && !math.IsNaN(v.f), nil
	case litDatum:
		return v.lit != "", nil
	case untypedDatum:
		return v.lit != "", nil
	}
	return false, ErrType.New(fmt.Sprintf(
		"effective boolean value of a %s item", seq[0].name()))
}

// cmpOp is one of the six comparison relations shared by value and
// general comparisons.
type cmpOp int

const (
	cmpEq cmpOp = iota
	cmpNe
	cmpLt
	cmpLe
	cmpGt
	cmpGe
)

var cmpOpNameMap = map[cmpOp]string{
	cmpEq: "eq", cmpNe: "ne", cmpLt: "lt", cmpLe: "le", cmpGt: "gt", cmpGe: "ge",
}

func (op cmpOp) String() string { return cmpOpNameMap[op] }

func cmpHolds(op cmpOp, rel int) bool {
	switch op {
	case cmpEq:
		return rel == 0
	case cmpNe:
		return rel != 0
	case cmpLt:
		return rel < 0
	case cmpLe:
		return rel <= 0
	case cmpGt:
		return rel > 0
	case cmpGe:
		return rel >= 0
	}
	return false
}

// compareValues applies a value comparison to two atomic items,
// promoting per the operand rules: untypedAtomic promotes to double
// against numerics, to string against strings; mixing untypedAtomic
// or strings with booleans is a type error.
func compareValues(op cmpOp, d1, d2 Datum) (bool, error) {
	// untypedAtomic adapts to the other operand.
	if isUntyped(d1) && isNumeric(d2) {
		d1 = numDatum{numberFromString(d1.StringValue())}
	}
	if isUntyped(d2) && isNumeric(d1) {
		d2 = numDatum{numberFromString(d2.StringValue())}
	}

	switch {
	case isNumeric(d1) && isNumeric(d2):
		f1, _ := asFloat(d1)
		f2, _ := asFloat(d2)
		if math.IsNaN(f1) || math.IsNaN(f2) {
			// NaN compares false to everything except via 'ne'.
			return op == cmpNe, nil
		}
		return cmpHolds(op, compareFloats(f1, f2)), nil

	case isBool(d1) && isBool(d2):
		b1, b2 := d1.(boolDatum).b, d2.(boolDatum).b
		return cmpHolds(op, compareBools(b1, b2)), nil

	case isQName(d1) && isQName(d2):
		if op != cmpEq && op != cmpNe {
			return false, ErrType.New("QName values only support eq / ne")
		}
		same := d1.(qnameDatum).qn == d2.(qnameDatum).qn
		return cmpHolds(op, boolToRel(same)), nil

	case (isLiteral(d1) || isUntyped(d1)) && (isLiteral(d2) || isUntyped(d2)):
		return cmpHolds(op, strings.Compare(d1.StringValue(), d2.StringValue())), nil
	}

	return false, ErrType.New(fmt.Sprintf(
		"cannot compare %s with %s", d1.name(), d2.name()))
}

func compareFloats(f1, f2 float64) int {
	switch {
	case f1 < f2:
		return -1
	case f1 > f2:
		return 1
	}
	return 0
}

func compareBools(b1, b2 bool) int {
	switch {
	case b1 == b2:
		return 0
	case b2:
		return -1
	}
	return 1
}

func boolToRel(same bool) int {
	if same {
		return 0
	}
	return 1
}

// NodesetFrom extracts the node list from a sequence, failing with a
// type error when any item is not a node.
func NodesetFrom(seq Sequence) ([]*xmltree.Node, error) {
	nodes := make([]*xmltree.Node, 0, len(seq))
	for _, d := range seq {
		nd, ok := d.(nodeDatum)
		if !ok {
			return nil, ErrType.New(fmt.Sprintf(
				"expected a node sequence, found %s item", d.name()))
		}
		nodes = append(nodes, nd.node)
	}
	return nodes, nil
}

// sortedNodeSeq sorts nodes into document order and drops duplicate
// identities, returning them as a sequence.
func sortedNodeSeq(nodes []*xmltree.Node) Sequence {
	sorted := make([]*xmltree.Node, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return xmltree.CompareOrder(sorted[i], sorted[j]) < 0
	})
	out := make(Sequence, 0, len(sorted))
	var prev *xmltree.Node
	for _, n := range sorted {
		if n == prev {
			continue
		}
		out = append(out, nodeDatum{n})
		prev = n
	}
	return out
}

// allNodes reports whether every item of the sequence is a node.
func allNodes(seq Sequence) bool {
	for _, d := range seq {
		if !isNode(d) {
			return false
		}
	}
	return true
}

// anyNodes reports whether any item of the sequence is a node.
func anyNodes(seq Sequence) bool {
	for _, d := range seq {
		if isNode(d) {
			return true
		}
	}
	return false
}
