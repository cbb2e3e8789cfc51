// Copyright (c) 2019, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package xpath

import (
	"math"
	"testing"
)

func TestDatumStringValues(t *testing.T) {
	tests := []struct {
		d   Datum
		exp string
	}{
		{NewBoolDatum(true), "true"},
		{NewBoolDatum(false), "false"},
		{NewIntDatum(42), "42"},
		{NewIntDatum(-7), "-7"},
		{NewDecimalDatum(1.5), "1.5"},
		{NewDecimalDatum(6.0), "6"},
		{NewNumDatum(1.5), "1.5"},
		{NewNumDatum(100), "100"},
		{NewNumDatum(math.NaN()), "NaN"},
		{NewNumDatum(math.Inf(1)), "INF"},
		{NewNumDatum(math.Inf(-1)), "-INF"},
		{NewLiteralDatum("x"), "x"},
		{NewUntypedDatum("u"), "u"},
	}
	for _, test := range tests {
		if got := test.d.StringValue(); got != test.exp {
			t.Fatalf("Wrong string value for %s: exp %q, got %q",
				test.d.name(), test.exp, got)
		}
	}
}

func TestEffectiveBoolShapes(t *testing.T) {
	check := func(seq Sequence, exp bool) {
		t.Helper()
		got, err := EffectiveBool(seq)
		if err != nil {
			t.Fatalf("Unexpected EBV error: %s", err.Error())
		}
		if got != exp {
			t.Fatalf("Wrong EBV: exp %t, got %t", exp, got)
		}
	}
	check(EmptySeq, false)
	check(NewSingleton(NewBoolDatum(true)), true)
	check(NewSingleton(NewIntDatum(0)), false)
	check(NewSingleton(NewNumDatum(math.NaN())), false)
	check(NewSingleton(NewLiteralDatum("")), false)
	check(NewSingleton(NewLiteralDatum("x")), true)

	if _, err := EffectiveBool(Sequence{
		NewIntDatum(1), NewIntDatum(2)}); err == nil {
		t.Fatalf("EBV of multi-item atomic sequence succeeded")
	}
}

func TestValueComparisonPromotion(t *testing.T) {
	check := func(op cmpOp, d1, d2 Datum, exp bool) {
		t.Helper()
		got, err := compareValues(op, d1, d2)
		if err != nil {
			t.Fatalf("Unexpected comparison error: %s", err.Error())
		}
		if got != exp {
			t.Fatalf("Wrong %s comparison of %s / %s", op, d1.name(), d2.name())
		}
	}

	check(cmpEq, NewIntDatum(1), NewNumDatum(1.0), true)
	check(cmpLt, NewIntDatum(1), NewDecimalDatum(1.5), true)
	check(cmpEq, NewUntypedDatum("10"), NewIntDatum(10), true)
	check(cmpLt, NewUntypedDatum("10"), NewLiteralDatum("9"), true)
	check(cmpEq, NewLiteralDatum("a"), NewUntypedDatum("a"), true)
	check(cmpNe, NewNumDatum(math.NaN()), NewNumDatum(math.NaN()), true)
	check(cmpEq, NewNumDatum(math.NaN()), NewNumDatum(math.NaN()), false)

	if _, err := compareValues(cmpEq,
		NewUntypedDatum("true"), NewBoolDatum(true)); err == nil {
		t.Fatalf("untypedAtomic compared against boolean without error")
	}
	if _, err := compareValues(cmpLt,
		NewIntDatum(1), NewLiteralDatum("2")); err == nil {
		t.Fatalf("number compared against string without error")
	}
}
