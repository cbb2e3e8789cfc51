// Copyright (c) 2019, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2016 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Test helpers for validating error output.

package assert

import (
	"strings"
	"testing"
)

// ContainsError checks the actual error mentions every expected
// fragment.
func ContainsError(t *testing.T, actual error, fragments ...string) {
	if actual == nil {
		t.Fatalf("Unexpected success; wanted error mentioning %v", fragments)
		return
	}
	for _, frag := range fragments {
		if !strings.Contains(actual.Error(), frag) {
			t.Fatalf("Error doesn't mention expected fragment:\n"+
				"Exp:\n%s\nAct:\n%s\n", frag, actual.Error())
		}
	}
}
