// Copyright (c) 2019, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2016 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Casting between the atomic types.  The xs:* constructor functions
// and the 'cast as' / 'castable as' operators share these rules.

package xpath

import (
	"encoding/xml"
	"fmt"
	"math"
	"strings"
)

// atomType enumerates the recognized atomic types.
type atomType int

const (
	atomBoolean atomType = iota
	atomInteger
	atomDecimal
	atomDouble
	atomString
	atomUntyped
	atomQName
)

var atomTypeNames = map[atomType]string{
	atomBoolean: "boolean",
	atomInteger: "integer",
	atomDecimal: "decimal",
	atomDouble:  "double",
	atomString:  "string",
	atomUntyped: "untypedAtomic",
	atomQName:   "QName",
}

func (a atomType) String() string { return atomTypeNames[a] }

var atomTypeByLocal = map[string]atomType{
	"boolean":       atomBoolean,
	"integer":       atomInteger,
	"decimal":       atomDecimal,
	"double":        atomDouble,
	"string":        atomString,
	"untypedAtomic": atomUntyped,
	"QName":         atomQName,
}

// atomTypeFromName resolves a type name used in cast/castable/
// instance-of.  Only the 'xs' prefix (or none) is accepted; the
// prefix is reserved, so no scope lookup is involved.
func atomTypeFromName(prefix, local string, off int) (atomType, error) {
	if prefix != "" && prefix != "xs" {
		return 0, newStaticError(off,
			fmt.Sprintf("unknown atomic type %s:%s", prefix, local))
	}
	if atom, ok := atomTypeByLocal[local]; ok {
		return atom, nil
	}
	return 0, newStaticError(off,
		fmt.Sprintf("unknown atomic type '%s'", local))
}

// castTo converts a single atomic item to the target type, per the
// 'cast as' rules.  A node is first atomized to an untypedAtomic
// of its string value.
func castTo(target atomType, d Datum, scope map[string]string) (Datum, error) {
	if isNode(d) {
		d = untypedDatum{d.StringValue()}
	}

	switch target {
	case atomString:
		return litDatum{d.StringValue()}, nil

	case atomUntyped:
		return untypedDatum{d.StringValue()}, nil

	case atomBoolean:
		switch v := d.(type) {
		case boolDatum:
			return v, nil
		case intDatum:
			return boolDatum{v.i != 0}, nil
		case decDatum:
			return boolDatum{v.f != 0 && !math.IsNaN(v.f)}, nil
		case numDatum:
			return boolDatum{v.f != 0 && !math.IsNaN(v.f)}, nil
		case litDatum, untypedDatum:
			switch strings.TrimSpace(d.StringValue()) {
			case "true", "1":
				return boolDatum{true}, nil
			case "false", "0":
				return boolDatum{false}, nil
			}
			return nil, ErrDynamic.New(fmt.Sprintf(
				"cannot cast '%s' to boolean", d.StringValue()))
		}

	case atomDouble:
		f, err := castNumeric(d)
		if err != nil {
			return nil, err
		}
		return numDatum{f}, nil

	case atomDecimal:
		f, err := castNumeric(d)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, ErrDynamic.New(fmt.Sprintf(
				"cannot cast %s to decimal", formatDouble(f)))
		}
		return decDatum{f}, nil

	case atomInteger:
		f, err := castNumeric(d)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, ErrDynamic.New(fmt.Sprintf(
				"cannot cast %s to integer", formatDouble(f)))
		}
		return intDatum{int64(math.Trunc(f))}, nil

	case atomQName:
		switch v := d.(type) {
		case qnameDatum:
			return v, nil
		case litDatum, untypedDatum:
			return qnameFromLexical(d.StringValue(), scope)
		}
		return nil, ErrDynamic.New(fmt.Sprintf(
			"cannot cast %s to QName", d.name()))
	}

	return nil, ErrDynamic.New(fmt.Sprintf(
		"cannot cast %s to %s", d.name(), target))
}

// castNumeric yields the float value for numeric casts; strings must
// parse, booleans map to 0/1.
func castNumeric(d Datum) (float64, error) {
	switch v := d.(type) {
	case boolDatum:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case intDatum:
		return float64(v.i), nil
	case decDatum:
		return v.f, nil
	case numDatum:
		return v.f, nil
	case litDatum, untypedDatum:
		f := numberFromString(d.StringValue())
		if math.IsNaN(f) && strings.TrimSpace(d.StringValue()) != "NaN" {
			return 0, ErrDynamic.New(fmt.Sprintf(
				"cannot cast '%s' to a number", d.StringValue()))
		}
		return f, nil
	}
	return 0, ErrDynamic.New(fmt.Sprintf(
		"cannot cast %s to a number", d.name()))
}

// qnameFromLexical parses 'prefix:local' against the in-scope
// namespace bindings.
func qnameFromLexical(lexical string, scope map[string]string) (Datum, error) {
	s := strings.TrimSpace(lexical)
	if s == "" {
		return nil, ErrDynamic.New("cannot cast empty string to QName")
	}
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		return qnameDatum{xml.Name{Local: s}}, nil
	case 2:
		uri, ok := scope[parts[0]]
		if !ok {
			return nil, ErrDynamic.New(fmt.Sprintf(
				"unbound prefix '%s' in QName '%s'", parts[0], s))
		}
		return qnameDatum{xml.Name{Space: uri, Local: parts[1]}}, nil
	}
	return nil, ErrDynamic.New(fmt.Sprintf("invalid QName '%s'", s))
}

// matchesSeqType implements 'instance of'.
func matchesSeqType(seq Sequence, typ seqType) bool {
	if typ.empty {
		return len(seq) == 0
	}
	switch typ.occ {
	case occOne:
		if len(seq) != 1 {
			return false
		}
	case occOptional:
		if len(seq) > 1 {
			return false
		}
	case occOnePlus:
		if len(seq) == 0 {
			return false
		}
	}
	for _, d := range seq {
		if !matchesItemType(d, typ) {
			return false
		}
	}
	return true
}

func matchesItemType(d Datum, typ seqType) bool {
	switch typ.kind {
	case itemAny:
		return true
	case itemAtomic:
		return matchesAtomType(d, typ.atom)
	}

	node, ok := NodeOf(d)
	if !ok {
		return false
	}
	switch typ.kind {
	case itemNode:
		return true
	case itemElement:
		return node.Kind() == kindElement
	case itemAttribute:
		return node.Kind() == kindAttribute
	case itemText:
		return node.Kind() == kindText
	case itemComment:
		return node.Kind() == kindComment
	case itemPI:
		return node.Kind() == kindProcInst
	case itemDocument:
		return node.Kind() == kindDocument
	}
	return false
}

func matchesAtomType(d Datum, atom atomType) bool {
	switch atom {
	case atomBoolean:
		return isBool(d)
	case atomInteger:
		return isInt(d)
	case atomDecimal:
		// Integers are substitutable for decimals.
		return isInt(d) || isDecimal(d)
	case atomDouble:
		return isDouble(d)
	case atomString:
		return isLiteral(d)
	case atomUntyped:
		return isUntyped(d)
	case atomQName:
		return isQName(d)
	}
	return false
}
