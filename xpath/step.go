// Copyright (c) 2019-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Axis enumeration and node tests.  Each axis yields candidates in
// its natural order - reverse document order for the reverse axes -
// which is the order positional predicates count in.

package xpath

import (
	"github.com/sdcio/xmlpath/xmltree"
)

// Local aliases so the evaluator reads in terms of node kinds.
const (
	kindDocument  = xmltree.DocumentNode
	kindElement   = xmltree.ElementNode
	kindAttribute = xmltree.AttributeNode
	kindText      = xmltree.TextNode
	kindComment   = xmltree.CommentNode
	kindProcInst  = xmltree.ProcInstNode
	kindNamespace = xmltree.NamespaceNode
)

// enumerateAxis returns the axis candidates from n in natural order.
func enumerateAxis(axis axisType, n *xmltree.Node) []*xmltree.Node {
	switch axis {
	case axisChild:
		return n.Children()

	case axisDescendant:
		var out []*xmltree.Node
		n.Descendants(func(d *xmltree.Node) { out = append(out, d) })
		return out

	case axisDescendantOrSelf:
		out := []*xmltree.Node{n}
		n.Descendants(func(d *xmltree.Node) { out = append(out, d) })
		return out

	case axisParent:
		if p := n.Parent(); p != nil {
			return []*xmltree.Node{p}
		}
		return nil

	case axisAncestor:
		return n.Ancestors()

	case axisAncestorOrSelf:
		return append([]*xmltree.Node{n}, n.Ancestors()...)

	case axisSelf:
		return []*xmltree.Node{n}

	case axisFollowingSibling:
		var out []*xmltree.Node
		for sib := n.NextSibling(); sib != nil; sib = sib.NextSibling() {
			out = append(out, sib)
		}
		return out

	case axisPrecedingSibling:
		var out []*xmltree.Node
		for sib := n.PrevSibling(); sib != nil; sib = sib.PrevSibling() {
			out = append(out, sib)
		}
		return out

	case axisFollowing:
		return followingNodes(n)

	case axisPreceding:
		return precedingNodes(n)

	case axisAttribute:
		return n.Attributes()

	case axisNamespace:
		return n.NamespaceNodes()
	}
	return nil
}

// followingNodes - everything after n in document order, excluding
// n's own descendants (and attribute/namespace nodes, which are never
// axis targets here).
func followingNodes(n *xmltree.Node) []*xmltree.Node {
	anchor := structuralAnchor(n)
	var out []*xmltree.Node
	if anchor != n {
		// The owning element's content follows its attributes.
		anchor.Descendants(func(d *xmltree.Node) { out = append(out, d) })
	}
	for node := anchor; node != nil; node = node.Parent() {
		for sib := node.NextSibling(); sib != nil; sib = sib.NextSibling() {
			out = append(out, sib)
			sib.Descendants(func(d *xmltree.Node) { out = append(out, d) })
		}
	}
	return out
}

// precedingNodes - everything before n in document order, excluding
// ancestors, in reverse document order (nearest first).
func precedingNodes(n *xmltree.Node) []*xmltree.Node {
	anchor := structuralAnchor(n)
	ancestors := make(map[*xmltree.Node]bool)
	for _, anc := range anchor.Ancestors() {
		ancestors[anc] = true
	}
	ancestors[anchor] = true

	var forward []*xmltree.Node
	root := anchor.Root()
	stop := false
	var walk func(node *xmltree.Node)
	walk = func(node *xmltree.Node) {
		if stop {
			return
		}
		if node == anchor {
			stop = true
			return
		}
		if !ancestors[node] {
			forward = append(forward, node)
		}
		for _, child := range node.Children() {
			walk(child)
			if stop {
				return
			}
		}
	}
	for _, child := range root.Children() {
		walk(child)
		if stop {
			break
		}
	}

	out := make([]*xmltree.Node, len(forward))
	for i, node := range forward {
		out[len(forward)-1-i] = node
	}
	return out
}

// structuralAnchor maps attribute/namespace nodes to their owning
// element for the following/preceding walks.
func structuralAnchor(n *xmltree.Node) *xmltree.Node {
	if n.Kind() == kindAttribute || n.Kind() == kindNamespace {
		return n.Parent()
	}
	return n
}

// principalKind returns the node kind a bare name test selects on the
// given axis.
func principalKind(axis axisType) xmltree.NodeKind {
	switch axis {
	case axisAttribute:
		return kindAttribute
	case axisNamespace:
		return kindNamespace
	}
	return kindElement
}

// matchesTest applies the node test to one axis candidate.
func matchesTest(axis axisType, test nodeTest, n *xmltree.Node) bool {
	switch test.kind {
	case testName:
		if n.Kind() != principalKind(axis) {
			return false
		}
		return matchesName(test, n)

	case testNode:
		return true

	case testText:
		return n.Kind() == kindText

	case testComment:
		return n.Kind() == kindComment

	case testPI:
		if n.Kind() != kindProcInst {
			return false
		}
		return test.piTarget == "" || test.piTarget == n.LocalName()

	case testElement:
		return n.Kind() == kindElement && matchesName(test, n)

	case testAttr:
		return n.Kind() == kindAttribute && matchesName(test, n)

	case testDocument:
		return n.Kind() == kindDocument
	}
	return false
}

func matchesName(test nodeTest, n *xmltree.Node) bool {
	if test.anyName {
		return true
	}
	if test.prefix == "*" {
		return n.LocalName() == test.local
	}
	if test.local == "*" || test.resolved.Local == "*" {
		return n.NamespaceURI() == test.resolved.Space
	}
	return n.Name() == test.resolved
}
