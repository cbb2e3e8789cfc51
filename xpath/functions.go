// Copyright (c) 2019, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2016 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Implementations of the built-in functions registered in symbol.go.

package xpath

import (
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"github.com/sdcio/xmlpath/xmltree"
)

// ARGUMENT HELPERS

// argAsString atomizes argument i down to a string; the empty
// sequence yields "".
func argAsString(args []Sequence, i int) (string, error) {
	atoms := Atomize(args[i])
	switch len(atoms) {
	case 0:
		return "", nil
	case 1:
		return atoms[0].StringValue(), nil
	}
	return "", ErrType.New(fmt.Sprintf(
		"argument %d must have at most one item", i+1))
}

// nodeArgOrContext resolves the optional node argument pattern used
// by name(), local-name(), namespace-uri() and root(): the argument
// if given, else the context item, which must be a node.
func nodeArgOrContext(
	ctx *context,
	args []Sequence,
	fname string,
) (*xmltree.Node, bool, error) {

	if len(args) == 0 {
		node, err := ctx.contextNode(fname + "()")
		if err != nil {
			return nil, false, err
		}
		return node, false, nil
	}
	if len(args[0]) == 0 {
		return nil, true, nil
	}
	if len(args[0]) > 1 {
		return nil, false, ErrType.New(fmt.Sprintf(
			"%s() requires at most one node", fname))
	}
	node, ok := NodeOf(args[0][0])
	if !ok {
		return nil, false, ErrType.New(fmt.Sprintf(
			"%s() requires a node argument", fname))
	}
	return node, false, nil
}

// numericArg atomizes argument i to an empty or singleton numeric
// item, promoting untypedAtomic to double.
func numericArg(args []Sequence, i int, fname string) (Datum, bool, error) {
	atoms := Atomize(args[i])
	if len(atoms) == 0 {
		return nil, true, nil
	}
	if len(atoms) > 1 {
		return nil, false, ErrType.New(fmt.Sprintf(
			"%s() requires a singleton numeric argument", fname))
	}
	d := atoms[0]
	if isUntyped(d) {
		d = numDatum{numberFromString(d.StringValue())}
	}
	if !isNumeric(d) {
		return nil, false, ErrType.New(fmt.Sprintf(
			"%s() argument is a %s, not a number", fname, d.name()))
	}
	return d, false, nil
}

func stringResult(s string) (Sequence, error) {
	return NewSingleton(litDatum{s}), nil
}

func boolResult(b bool) (Sequence, error) {
	return NewSingleton(boolDatum{b}), nil
}

func intResult(i int64) (Sequence, error) {
	return NewSingleton(intDatum{i}), nil
}

// NODE FUNCTIONS

// xName returns the lexical QName of the node, re-deriving a prefix
// from the in-scope declarations where the name is namespaced.
func xName(ctx *context, args []Sequence) (Sequence, error) {
	node, empty, err := nodeArgOrContext(ctx, args, "name")
	if err != nil || empty {
		return stringResultOrEmpty("", empty, err)
	}
	name := node.Name()
	if name.Space == "" || name.Local == "" {
		return stringResult(name.Local)
	}
	if pfx, ok := prefixForURI(node, name.Space); ok && pfx != "" {
		return stringResult(pfx + ":" + name.Local)
	}
	return stringResult(name.Local)
}

func localName(ctx *context, args []Sequence) (Sequence, error) {
	node, empty, err := nodeArgOrContext(ctx, args, "local-name")
	if err != nil || empty {
		return stringResultOrEmpty("", empty, err)
	}
	return stringResult(node.LocalName())
}

func namespaceURI(ctx *context, args []Sequence) (Sequence, error) {
	node, empty, err := nodeArgOrContext(ctx, args, "namespace-uri")
	if err != nil || empty {
		return stringResultOrEmpty("", empty, err)
	}
	return stringResult(node.NamespaceURI())
}

func stringResultOrEmpty(s string, empty bool, err error) (Sequence, error) {
	if err != nil {
		return nil, err
	}
	if empty {
		return stringResult("")
	}
	return stringResult(s)
}

// prefixForURI finds an in-scope prefix bound to the URI, preferring
// the lexically smallest for determinism.
func prefixForURI(node *xmltree.Node, uri string) (string, bool) {
	best, found := "", false
	for pfx, bound := range node.NamespaceScope() {
		if bound != uri || pfx == "" {
			continue
		}
		if !found || pfx < best {
			best, found = pfx, true
		}
	}
	return best, found
}

func root(ctx *context, args []Sequence) (Sequence, error) {
	node, empty, err := nodeArgOrContext(ctx, args, "root")
	if err != nil {
		return nil, err
	}
	if empty {
		return EmptySeq, nil
	}
	return NewSingleton(NewNodeDatum(node.Root())), nil
}

func position(ctx *context, args []Sequence) (Sequence, error) {
	return intResult(int64(ctx.pos))
}

func last(ctx *context, args []Sequence) (Sequence, error) {
	return intResult(int64(ctx.size))
}

func count(ctx *context, args []Sequence) (Sequence, error) {
	return intResult(int64(len(args[0])))
}

// xID matches elements carrying an attribute with local name 'id'
// whose value equals one of the whitespace-separated tokens of the
// argument.  No DTD processing is involved.
func xID(ctx *context, args []Sequence) (Sequence, error) {
	tokens := make(map[string]bool)
	for _, d := range Atomize(args[0]) {
		for _, tok := range strings.Fields(d.StringValue()) {
			tokens[tok] = true
		}
	}

	start, err := ctx.rootNode()
	if err != nil {
		return nil, err
	}
	var found []*xmltree.Node
	start.Descendants(func(n *xmltree.Node) {
		if n.Kind() != kindElement {
			return
		}
		for _, attr := range n.Attributes() {
			if attr.LocalName() == "id" && tokens[attr.Content()] {
				found = append(found, n)
				return
			}
		}
	})
	return sortedNodeSeq(found), nil
}

// lang tests the xml:lang in force at the context node against the
// argument, ignoring case and any language subtags.
func lang(ctx *context, args []Sequence) (Sequence, error) {
	want, err := argAsString(args, 0)
	if err != nil {
		return nil, err
	}
	node, err := ctx.contextNode("lang()")
	if err != nil {
		return nil, err
	}

	langAttr := ""
	for n := node; n != nil; n = n.Parent() {
		if n.Kind() != kindElement {
			continue
		}
		attr := n.Attribute(langAttrName)
		if attr != nil {
			langAttr = attr.Content()
			break
		}
	}
	if langAttr == "" {
		return boolResult(false)
	}
	have := strings.ToLower(langAttr)
	want = strings.ToLower(want)
	return boolResult(have == want || strings.HasPrefix(have, want+"-"))
}

var langAttrName = xml.Name{Space: xmltree.XMLNamespaceURI, Local: "lang"}

// STRING FUNCTIONS

func xString(ctx *context, args []Sequence) (Sequence, error) {
	if len(args) == 0 {
		if ctx.item == nil {
			return nil, ErrDynamic.New("string(): context item is absent")
		}
		return stringResult(ctx.item.StringValue())
	}
	s, err := argAsString(args, 0)
	if err != nil {
		return nil, err
	}
	return stringResult(s)
}

func concat(ctx *context, args []Sequence) (Sequence, error) {
	var b strings.Builder
	for i := range args {
		s, err := argAsString(args, i)
		if err != nil {
			return nil, err
		}
		b.WriteString(s)
	}
	return stringResult(b.String())
}

func stringJoin(ctx *context, args []Sequence) (Sequence, error) {
	sep := ""
	if len(args) == 2 {
		var err error
		sep, err = argAsString(args, 1)
		if err != nil {
			return nil, err
		}
	}
	parts := make([]string, 0, len(args[0]))
	for _, d := range Atomize(args[0]) {
		parts = append(parts, d.StringValue())
	}
	return stringResult(strings.Join(parts, sep))
}

// substring: positions are 1-based, start and length are rounded,
// and NaN anywhere selects nothing.
func substring(ctx *context, args []Sequence) (Sequence, error) {
	s, err := argAsString(args, 0)
	if err != nil {
		return nil, err
	}
	startD, empty, err := numericArg(args, 1, "substring")
	if err != nil {
		return nil, err
	}
	if empty {
		return stringResult("")
	}
	start, _ := asFloat(startD)
	begin := math.Floor(start + 0.5)

	end := math.Inf(1)
	if len(args) == 3 {
		lenD, empty, err := numericArg(args, 2, "substring")
		if err != nil {
			return nil, err
		}
		if empty {
			return stringResult("")
		}
		length, _ := asFloat(lenD)
		end = begin + math.Floor(length+0.5)
	}

	var b strings.Builder
	for p, r := range []rune(s) {
		pos := float64(p + 1)
		if pos >= begin && pos < end {
			b.WriteRune(r)
		}
	}
	return stringResult(b.String())
}

func stringLength(ctx *context, args []Sequence) (Sequence, error) {
	s, err := stringArgOrContext(ctx, args, "string-length")
	if err != nil {
		return nil, err
	}
	return intResult(int64(len([]rune(s))))
}

func normalizeSpace(ctx *context, args []Sequence) (Sequence, error) {
	s, err := stringArgOrContext(ctx, args, "normalize-space")
	if err != nil {
		return nil, err
	}
	return stringResult(strings.Join(strings.Fields(s), " "))
}

func stringArgOrContext(ctx *context, args []Sequence, fname string) (string, error) {
	if len(args) == 0 {
		if ctx.item == nil {
			return "", ErrDynamic.New(fname + "(): context item is absent")
		}
		return ctx.item.StringValue(), nil
	}
	return argAsString(args, 0)
}

func upperCase(ctx *context, args []Sequence) (Sequence, error) {
	s, err := argAsString(args, 0)
	if err != nil {
		return nil, err
	}
	return stringResult(strings.ToUpper(s))
}

func lowerCase(ctx *context, args []Sequence) (Sequence, error) {
	s, err := argAsString(args, 0)
	if err != nil {
		return nil, err
	}
	return stringResult(strings.ToLower(s))
}

func twoStringArgs(args []Sequence) (string, string, error) {
	s1, err := argAsString(args, 0)
	if err != nil {
		return "", "", err
	}
	s2, err := argAsString(args, 1)
	if err != nil {
		return "", "", err
	}
	return s1, s2, nil
}

func contains(ctx *context, args []Sequence) (Sequence, error) {
	s, sub, err := twoStringArgs(args)
	if err != nil {
		return nil, err
	}
	return boolResult(strings.Contains(s, sub))
}

func startsWith(ctx *context, args []Sequence) (Sequence, error) {
	s, prefix, err := twoStringArgs(args)
	if err != nil {
		return nil, err
	}
	return boolResult(strings.HasPrefix(s, prefix))
}

func endsWith(ctx *context, args []Sequence) (Sequence, error) {
	s, suffix, err := twoStringArgs(args)
	if err != nil {
		return nil, err
	}
	return boolResult(strings.HasSuffix(s, suffix))
}

func substringBefore(ctx *context, args []Sequence) (Sequence, error) {
	s, sub, err := twoStringArgs(args)
	if err != nil {
		return nil, err
	}
	if idx := strings.Index(s, sub); idx >= 0 {
		return stringResult(s[:idx])
	}
	return stringResult("")
}

func substringAfter(ctx *context, args []Sequence) (Sequence, error) {
	s, sub, err := twoStringArgs(args)
	if err != nil {
		return nil, err
	}
	if idx := strings.Index(s, sub); idx >= 0 {
		return stringResult(s[idx+len(sub):])
	}
	return stringResult("")
}

func translate(ctx *context, args []Sequence) (Sequence, error) {
	s, err := argAsString(args, 0)
	if err != nil {
		return nil, err
	}
	from, to, err := func() (string, string, error) {
		f, err := argAsString(args, 1)
		if err != nil {
			return "", "", err
		}
		t, err := argAsString(args, 2)
		return f, t, err
	}()
	if err != nil {
		return nil, err
	}

	toRunes := []rune(to)
	mapping := make(map[rune]rune)
	deleted := make(map[rune]bool)
	for i, r := range []rune(from) {
		if _, seen := mapping[r]; seen || deleted[r] {
			continue
		}
		if i < len(toRunes) {
			mapping[r] = toRunes[i]
		} else {
			deleted[r] = true
		}
	}

	var b strings.Builder
	for _, r := range s {
		if deleted[r] {
			continue
		}
		if repl, ok := mapping[r]; ok {
			b.WriteRune(repl)
			continue
		}
		b.WriteRune(r)
	}
	return stringResult(b.String())
}

// encodeForURI percent-encodes everything outside the RFC 3986
// unreserved set.
func encodeForURI(ctx *context, args []Sequence) (Sequence, error) {
	s, err := argAsString(args, 0)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for _, c := range []byte(s) {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z',
			c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			b.WriteByte(c)
		default:
			b.WriteString(fmt.Sprintf("%%%02X", c))
		}
	}
	return stringResult(b.String())
}

func matches(ctx *context, args []Sequence) (Sequence, error) {
	s, pat, err := twoStringArgs(args)
	if err != nil {
		return nil, err
	}
	flags := ""
	if len(args) == 3 {
		if flags, err = argAsString(args, 2); err != nil {
			return nil, err
		}
	}
	re, err := compilePattern(pat, flags)
	if err != nil {
		return nil, err
	}
	return boolResult(re.MatchString(s))
}

func replace(ctx *context, args []Sequence) (Sequence, error) {
	s, pat, err := twoStringArgs(args)
	if err != nil {
		return nil, err
	}
	repl, err := argAsString(args, 2)
	if err != nil {
		return nil, err
	}
	flags := ""
	if len(args) == 4 {
		if flags, err = argAsString(args, 3); err != nil {
			return nil, err
		}
	}
	re, err := compilePattern(pat, flags)
	if err != nil {
		return nil, err
	}
	return stringResult(re.ReplaceAllString(s, convertReplacement(repl)))
}

func tokenize(ctx *context, args []Sequence) (Sequence, error) {
	s, pat, err := twoStringArgs(args)
	if err != nil {
		return nil, err
	}
	flags := ""
	if len(args) == 3 {
		if flags, err = argAsString(args, 2); err != nil {
			return nil, err
		}
	}
	re, err := compilePattern(pat, flags)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return EmptySeq, nil
	}
	parts := re.Split(s, -1)
	out := make(Sequence, 0, len(parts))
	for _, part := range parts {
		out = append(out, litDatum{part})
	}
	return out, nil
}

// NUMERIC FUNCTIONS

func xNumber(ctx *context, args []Sequence) (Sequence, error) {
	if len(args) == 0 {
		if ctx.item == nil {
			return nil, ErrDynamic.New("number(): context item is absent")
		}
		f, err := asFloat(ctx.item)
		if err != nil {
			return nil, err
		}
		return NewSingleton(numDatum{f}), nil
	}
	atoms := Atomize(args[0])
	switch len(atoms) {
	case 0:
		return NewSingleton(numDatum{math.NaN()}), nil
	case 1:
		f, err := asFloat(atoms[0])
		if err != nil {
			return nil, err
		}
		return NewSingleton(numDatum{f}), nil
	}
	return nil, ErrType.New("number() requires at most one item")
}

// applyNumericUnary keeps the operand's numeric type.
func applyNumericUnary(
	args []Sequence,
	fname string,
	intFn func(int64) int64,
	floatFn func(float64) float64,
) (Sequence, error) {

	d, empty, err := numericArg(args, 0, fname)
	if err != nil {
		return nil, err
	}
	if empty {
		return EmptySeq, nil
	}
	if v, ok := d.(intDatum); ok {
		return NewSingleton(intDatum{intFn(v.i)}), nil
	}
	f, _ := asFloat(d)
	return NewSingleton(newNumericOfKind(floatFn(f), kindOfNumeric(d))), nil
}

func xAbs(ctx *context, args []Sequence) (Sequence, error) {
	return applyNumericUnary(args, "abs",
		func(i int64) int64 {
			if i < 0 {
				return -i
			}
			return i
		},
		math.Abs)
}

func ceiling(ctx *context, args []Sequence) (Sequence, error) {
	return applyNumericUnary(args, "ceiling",
		func(i int64) int64 { return i },
		math.Ceil)
}

func floor(ctx *context, args []Sequence) (Sequence, error) {
	return applyNumericUnary(args, "floor",
		func(i int64) int64 { return i },
		math.Floor)
}

// round rounds half upward (toward positive infinity).
func round(ctx *context, args []Sequence) (Sequence, error) {
	return applyNumericUnary(args, "round",
		func(i int64) int64 { return i },
		func(f float64) float64 {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return f
			}
			return math.Floor(f + 0.5)
		})
}

func roundHalfToEven(ctx *context, args []Sequence) (Sequence, error) {
	precision := int64(0)
	if len(args) == 2 {
		d, empty, err := numericArg(args, 1, "round-half-to-even")
		if err != nil {
			return nil, err
		}
		if !empty {
			pf, _ := asFloat(d)
			precision = int64(pf)
		}
	}
	scale := math.Pow(10, float64(precision))
	return applyNumericUnary(args, "round-half-to-even",
		func(i int64) int64 {
			if precision >= 0 {
				return i
			}
			f := math.RoundToEven(float64(i)*scale) / scale
			return int64(f)
		},
		func(f float64) float64 {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return f
			}
			return math.RoundToEven(f*scale) / scale
		})
}

// numericFold atomizes a sequence for sum/avg/min/max, promoting
// untyped items to double.
func numericFold(seq Sequence, fname string) ([]Datum, error) {
	atoms := Atomize(seq)
	out := make([]Datum, 0, len(atoms))
	for _, d := range atoms {
		if isUntyped(d) {
			d = numDatum{numberFromString(d.StringValue())}
		}
		out = append(out, d)
	}
	return out, nil
}

func sum(ctx *context, args []Sequence) (Sequence, error) {
	items, err := numericFold(args[0], "sum")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		if len(args) == 2 {
			atoms := Atomize(args[1])
			if len(atoms) == 0 {
				return EmptySeq, nil
			}
			return NewSingleton(atoms[0]), nil
		}
		return intResult(0)
	}
	acc := items[0]
	for _, d := range items[1:] {
		var err error
		acc, err = applyArith(opAdd, acc, d)
		if err != nil {
			return nil, err
		}
	}
	if !isNumeric(acc) {
		return nil, ErrType.New("sum() requires numeric items")
	}
	return NewSingleton(acc), nil
}

func avg(ctx *context, args []Sequence) (Sequence, error) {
	items, err := numericFold(args[0], "avg")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return EmptySeq, nil
	}
	acc := items[0]
	for _, d := range items[1:] {
		var err error
		acc, err = applyArith(opAdd, acc, d)
		if err != nil {
			return nil, err
		}
	}
	out, err := applyArith(opDiv, acc, intDatum{int64(len(items))})
	if err != nil {
		return nil, err
	}
	return NewSingleton(out), nil
}

// minmax picks the least (or greatest) item: numerically when every
// item is numeric, by string comparison when every item is a string.
func minmax(args []Sequence, fname string, want int) (Sequence, error) {
	items, err := numericFold(args[0], fname)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return EmptySeq, nil
	}

	numeric := true
	for _, d := range items {
		if !isNumeric(d) {
			numeric = false
			break
		}
	}

	best := items[0]
	for _, d := range items[1:] {
		if numeric {
			bf, _ := asFloat(best)
			df, _ := asFloat(d)
			if math.IsNaN(bf) {
				break
			}
			if math.IsNaN(df) {
				best = d
				break
			}
			if compareFloats(df, bf) == want {
				best = d
			}
			continue
		}
		if !isLiteral(d) && !isUntyped(d) || !isLiteral(best) && !isUntyped(best) {
			return nil, ErrType.New(fmt.Sprintf(
				"%s() requires comparable items", fname))
		}
		if strings.Compare(d.StringValue(), best.StringValue()) == want {
			best = d
		}
	}
	return NewSingleton(best), nil
}

func xMin(ctx *context, args []Sequence) (Sequence, error) {
	return minmax(args, "min", -1)
}

func xMax(ctx *context, args []Sequence) (Sequence, error) {
	return minmax(args, "max", 1)
}

// BOOLEAN FUNCTIONS

func xBoolean(ctx *context, args []Sequence) (Sequence, error) {
	b, err := EffectiveBool(args[0])
	if err != nil {
		return nil, err
	}
	return boolResult(b)
}

func not(ctx *context, args []Sequence) (Sequence, error) {
	b, err := EffectiveBool(args[0])
	if err != nil {
		return nil, err
	}
	return boolResult(!b)
}

func xTrue(ctx *context, args []Sequence) (Sequence, error) {
	return boolResult(true)
}

func xFalse(ctx *context, args []Sequence) (Sequence, error) {
	return boolResult(false)
}

// SEQUENCE FUNCTIONS

func xEmpty(ctx *context, args []Sequence) (Sequence, error) {
	return boolResult(len(args[0]) == 0)
}

func exists(ctx *context, args []Sequence) (Sequence, error) {
	return boolResult(len(args[0]) > 0)
}

func distinctValues(ctx *context, args []Sequence) (Sequence, error) {
	seen := make(map[string]bool)
	var out Sequence
	for _, d := range Atomize(args[0]) {
		key := atomKey(d)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out, nil
}

// atomKey buckets atomic values so items equal under 'eq' share a
// key: all numerics by value, strings and untyped atomics together.
func atomKey(d Datum) string {
	switch v := d.(type) {
	case boolDatum:
		return "b:" + v.StringValue()
	case intDatum, decDatum, numDatum:
		f, _ := asFloat(d)
		return "n:" + formatDouble(f)
	case qnameDatum:
		return "q:{" + v.qn.Space + "}" + v.qn.Local
	}
	return "s:" + d.StringValue()
}

func indexOf(ctx *context, args []Sequence) (Sequence, error) {
	target := Atomize(args[1])
	if len(target) != 1 {
		return nil, ErrType.New("index-of() requires a singleton search value")
	}
	var out Sequence
	for i, d := range Atomize(args[0]) {
		same, err := compareValues(cmpEq, d, target[0])
		if err != nil {
			// Incomparable items simply do not match.
			continue
		}
		if same {
			out = append(out, intDatum{int64(i + 1)})
		}
	}
	return out, nil
}

func insertBefore(ctx *context, args []Sequence) (Sequence, error) {
	seq := args[0]
	posD, empty, err := numericArg(args, 1, "insert-before")
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, ErrType.New("insert-before() requires a position")
	}
	pf, _ := asFloat(posD)
	pos := int(pf)
	if pos < 1 {
		pos = 1
	}
	if pos > len(seq)+1 {
		pos = len(seq) + 1
	}
	out := make(Sequence, 0, len(seq)+len(args[2]))
	out = append(out, seq[:pos-1]...)
	out = append(out, args[2]...)
	out = append(out, seq[pos-1:]...)
	return out, nil
}

func remove(ctx *context, args []Sequence) (Sequence, error) {
	seq := args[0]
	posD, empty, err := numericArg(args, 1, "remove")
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, ErrType.New("remove() requires a position")
	}
	pf, _ := asFloat(posD)
	pos := int(pf)
	if pos < 1 || pos > len(seq) {
		return seq, nil
	}
	out := make(Sequence, 0, len(seq)-1)
	out = append(out, seq[:pos-1]...)
	out = append(out, seq[pos:]...)
	return out, nil
}

func reverse(ctx *context, args []Sequence) (Sequence, error) {
	seq := args[0]
	out := make(Sequence, len(seq))
	for i, d := range seq {
		out[len(seq)-1-i] = d
	}
	return out, nil
}

func subsequence(ctx *context, args []Sequence) (Sequence, error) {
	seq := args[0]
	startD, empty, err := numericArg(args, 1, "subsequence")
	if err != nil {
		return nil, err
	}
	if empty {
		return EmptySeq, nil
	}
	sf, _ := asFloat(startD)
	begin := math.Floor(sf + 0.5)

	end := math.Inf(1)
	if len(args) == 3 {
		lenD, empty, err := numericArg(args, 2, "subsequence")
		if err != nil {
			return nil, err
		}
		if empty {
			return EmptySeq, nil
		}
		lf, _ := asFloat(lenD)
		end = begin + math.Floor(lf+0.5)
	}

	var out Sequence
	for i, d := range seq {
		pos := float64(i + 1)
		if pos >= begin && pos < end {
			out = append(out, d)
		}
	}
	return out, nil
}

// unordered is an optimization hint; this implementation keeps the
// order it was given.
func unordered(ctx *context, args []Sequence) (Sequence, error) {
	return args[0], nil
}
