// Copyright (c) 2019-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package xmltree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// collectAll gathers every node of the document, structural nodes in
// pre-order with each element's namespace and attribute nodes right
// after it.
func collectAll(doc *Document) []*Node {
	var all []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		all = append(all, n)
		if n.Kind() == ElementNode {
			all = append(all, n.NamespaceNodes()...)
			for _, attr := range n.Attributes() {
				all = append(all, attr)
			}
		}
		for _, child := range n.Children() {
			walk(child)
		}
	}
	walk(doc.Root())
	return all
}

const orderDoc = `<root a="1" b="2"><x><y p="q">t</y></x><!--c--><z/></root>`

func TestDocumentOrderMatchesPreOrder(t *testing.T) {
	doc := mustParse(t, orderDoc)
	all := collectAll(doc)

	for i := 1; i < len(all); i++ {
		require.Equal(t, -1, CompareOrder(all[i-1], all[i]),
			"nodes %d and %d out of order", i-1, i)
	}
}

func TestDocumentOrderIsAntisymmetricTotalOrder(t *testing.T) {
	doc := mustParse(t, orderDoc)
	all := collectAll(doc)

	for _, a := range all {
		for _, b := range all {
			ab, ba := CompareOrder(a, b), CompareOrder(b, a)
			require.Equal(t, -ba, ab)
			if a == b {
				require.Equal(t, 0, ab)
			} else {
				require.NotEqual(t, 0, ab, "distinct nodes compare equal")
			}
		}
	}
}

func TestAncestorPrecedesDescendant(t *testing.T) {
	doc := mustParse(t, orderDoc)
	var check func(n *Node)
	check = func(n *Node) {
		n.Descendants(func(d *Node) {
			require.Equal(t, -1, CompareOrder(n, d))
		})
		for _, child := range n.Children() {
			check(child)
		}
	}
	check(doc.Root())
}

func TestAttributesSortAfterElementBeforeChildren(t *testing.T) {
	doc := mustParse(t, `<root a="1"><child/></root>`)
	root := doc.RootElement()
	attr := root.Attributes()[0]
	child := root.NthChild(0)

	require.Equal(t, -1, CompareOrder(root, attr))
	require.Equal(t, -1, CompareOrder(attr, child))

	// Namespace nodes come between the element and its attributes.
	nsNodes := root.NamespaceNodes()
	require.NotEmpty(t, nsNodes)
	require.Equal(t, -1, CompareOrder(root, nsNodes[0]))
	require.Equal(t, -1, CompareOrder(nsNodes[0], attr))
}

func TestOrderKeysRecomputedAfterMutation(t *testing.T) {
	doc := mustParse(t, `<root><a/><b/></root>`)
	root := doc.RootElement()
	a, b := root.NthChild(0), root.NthChild(1)
	require.Equal(t, -1, CompareOrder(a, b))

	// Move a behind b; order keys must catch up lazily.
	require.NoError(t, a.Detach())
	require.NoError(t, root.AppendChild(a))
	require.Equal(t, 1, CompareOrder(a, b))
}
