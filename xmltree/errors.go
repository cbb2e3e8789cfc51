// Copyright (c) 2019-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package xmltree

import (
	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrXMLParse is returned when the textual XML handed to Parse is
	// not well-formed.
	ErrXMLParse = errors.NewKind("malformed XML: %s")

	// ErrStructural is returned when a mutation would violate a tree
	// invariant.  The tree is left untouched in that case.
	ErrStructural = errors.NewKind("structural error: %s")
)
