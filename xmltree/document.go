// Copyright (c) 2019-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// This file contains the Document object owning a node tree, plus
// document order numbering and comparison.
//
// Order keys are assigned lazily: any mutation invalidates them, and
// the first comparison afterwards renumbers the whole tree in one
// pre-order pass.  Structural nodes are spaced orderKeyStride apart so
// that the attribute and namespace nodes of an element can be keyed
// between the element and its first child without storing anything on
// them.

package xmltree

import (
	"encoding/xml"
	"fmt"
)

const (
	orderKeyStride = 4096
	// Within one element's slot: namespace nodes first, attributes
	// second, both before the first child (which sits a full stride
	// away).
	nsOrderBase   = 1
	attrOrderBase = 512
)

// Document owns every node of one tree.  The zero value is not usable;
// construct via Parse or NewDocument.
type Document struct {
	root *Node

	// orderGen is bumped on every mutation; node keys stamped with an
	// older generation are stale.
	orderGen   uint64
	orderValid bool
}

// NewDocument returns an empty document consisting of just the
// document node.
func NewDocument() *Document {
	doc := &Document{}
	doc.root = &Node{doc: doc, kind: DocumentNode}
	return doc
}

// Root returns the document node.
func (doc *Document) Root() *Node { return doc.root }

// RootElement returns the document element, or nil for a document with
// no element child.
func (doc *Document) RootElement() *Node {
	for _, child := range doc.root.children {
		if child.kind == ElementNode {
			return child
		}
	}
	return nil
}

// invalidateOrder marks all order keys (and cached namespace nodes)
// stale.  Called by every mutation before it returns.
func (doc *Document) invalidateOrder() {
	doc.orderGen++
	doc.orderValid = false
}

// ensureOrder renumbers the tree if any mutation happened since the
// last numbering pass.
func (doc *Document) ensureOrder() {
	if doc.orderValid {
		return
	}
	key := int64(0)
	var walk func(n *Node)
	walk = func(n *Node) {
		n.ordKey = key
		n.ordGen = doc.orderGen
		key += orderKeyStride
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(doc.root)
	doc.orderValid = true
}

// OrderKey returns the node's current document order key.  Keys are
// only comparable between nodes of the same document and remain valid
// until the next mutation.
func (n *Node) OrderKey() int64 {
	switch n.kind {
	case NamespaceNode:
		owner := n.parent
		return owner.OrderKey() + nsOrderBase + int64(nodeIndexIn(owner.nsNodes, n))
	case AttributeNode:
		owner := n.parent
		return owner.OrderKey() + attrOrderBase + int64(nodeIndexIn(owner.attrs, n))
	default:
		n.doc.ensureOrder()
		return n.ordKey
	}
}

// CompareOrder returns -1, 0 or +1 as a precedes, equals or follows b
// in document order.  Both nodes must belong to the same document.
func CompareOrder(a, b *Node) int {
	if a == b {
		return 0
	}
	ka, kb := a.OrderKey(), b.OrderKey()
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	}
	return 0
}

// newNode constructs an unattached node owned by doc.
func (doc *Document) newNode(kind NodeKind, name xml.Name, content string) *Node {
	return &Node{doc: doc, kind: kind, name: name, content: content}
}

// NewElement returns a detached element node owned by this document.
func (doc *Document) NewElement(name xml.Name) *Node {
	return doc.newNode(ElementNode, name, "")
}

// NewText returns a detached text node owned by this document.
func (doc *Document) NewText(content string) *Node {
	return doc.newNode(TextNode, xml.Name{}, content)
}

// NewComment returns a detached comment node owned by this document.
func (doc *Document) NewComment(content string) *Node {
	return doc.newNode(CommentNode, xml.Name{}, content)
}

// NewProcInst returns a detached processing-instruction node owned by
// this document.
func (doc *Document) NewProcInst(target, content string) *Node {
	return doc.newNode(ProcInstNode, xml.Name{Local: target}, content)
}

// String renders the document as textual XML via the serializer.
func (doc *Document) String() string {
	out, err := doc.Serialize()
	if err != nil {
		return fmt.Sprintf("<unserializable document: %s>", err)
	}
	return out
}
