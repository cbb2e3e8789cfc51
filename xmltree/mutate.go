// Copyright (c) 2019-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Tree mutation.  Every operation validates its preconditions before
// touching the tree, so a failed call leaves the document unchanged.
// Mutations invalidate document order keys; renumbering happens lazily
// on the next order comparison.

package xmltree

import (
	"encoding/xml"
	"fmt"
)

// checkInsertable verifies that child may become a child of parent.
func checkInsertable(parent, child *Node) error {
	if parent == nil || child == nil {
		return ErrStructural.New("nil node")
	}
	if parent.doc != child.doc {
		return ErrStructural.New("nodes belong to different documents")
	}
	switch parent.kind {
	case ElementNode:
	case DocumentNode:
		if child.kind == ElementNode && parent.doc.RootElement() != nil {
			return ErrStructural.New("document already has a document element")
		}
	default:
		return ErrStructural.New(
			fmt.Sprintf("%s node cannot have children", parent.kind))
	}
	switch child.kind {
	case ElementNode, TextNode, CommentNode, ProcInstNode:
	default:
		return ErrStructural.New(
			fmt.Sprintf("%s node cannot be inserted as a child", child.kind))
	}
	if child.parent != nil {
		return ErrStructural.New("node is already attached; detach it first")
	}
	// A node must not become a descendant of itself.
	for anc := parent; anc != nil; anc = anc.parent {
		if anc == child {
			return ErrStructural.New("node cannot contain itself")
		}
	}
	return nil
}

// AppendChild attaches the detached node child as the last child of n.
func (n *Node) AppendChild(child *Node) error {
	if err := checkInsertable(n, child); err != nil {
		return err
	}
	child.parent = n
	n.children = append(n.children, child)
	n.doc.invalidateOrder()
	return nil
}

// InsertBefore attaches the detached node sibling immediately before n
// in n's parent's child list.
func (n *Node) InsertBefore(sibling *Node) error {
	return n.insertAdjacent(sibling, 0)
}

// InsertAfter attaches the detached node sibling immediately after n
// in n's parent's child list.
func (n *Node) InsertAfter(sibling *Node) error {
	return n.insertAdjacent(sibling, 1)
}

func (n *Node) insertAdjacent(sibling *Node, offset int) error {
	if n.parent == nil {
		return ErrStructural.New("node has no parent")
	}
	if err := checkInsertable(n.parent, sibling); err != nil {
		return err
	}
	idx := nodeIndexIn(n.parent.children, n)
	if idx < 0 {
		return ErrStructural.New("node not found in its parent's child list")
	}
	at := idx + offset
	list := n.parent.children
	list = append(list, nil)
	copy(list[at+1:], list[at:])
	list[at] = sibling
	n.parent.children = list
	sibling.parent = n.parent
	n.doc.invalidateOrder()
	return nil
}

// Detach removes n from its parent's child list.  The subtree below n
// keeps its structure; n becomes the root of a detached tree still
// owned by the same document.
func (n *Node) Detach() error {
	if n.parent == nil {
		return ErrStructural.New("node has no parent")
	}
	switch n.kind {
	case AttributeNode, NamespaceNode:
		return ErrStructural.New(
			fmt.Sprintf("cannot detach %s node; use RemoveAttribute", n.kind))
	}
	idx := nodeIndexIn(n.parent.children, n)
	if idx < 0 {
		return ErrStructural.New("node not found in its parent's child list")
	}
	n.parent.children = append(
		n.parent.children[:idx], n.parent.children[idx+1:]...)
	n.parent = nil
	n.doc.invalidateOrder()
	return nil
}

// RemoveChild detaches the given child of n.
func (n *Node) RemoveChild(child *Node) error {
	if child == nil || child.parent != n {
		return ErrStructural.New("node is not a child of this node")
	}
	return child.Detach()
}

// ReplaceWith substitutes the detached node repl for n, which is
// detached in turn.
func (n *Node) ReplaceWith(repl *Node) error {
	if n.parent == nil {
		return ErrStructural.New("node has no parent")
	}
	parent := n.parent
	idx := nodeIndexIn(parent.children, n)
	if idx < 0 {
		return ErrStructural.New("node not found in its parent's child list")
	}
	// Validate against the parent with n notionally removed, so
	// replacing the document element with another element is legal.
	n.parent = nil
	parent.children = append(parent.children[:idx], parent.children[idx+1:]...)
	if err := checkInsertable(parent, repl); err != nil {
		// Roll back the detach; nothing observable changed.
		parent.children = append(parent.children, nil)
		copy(parent.children[idx+1:], parent.children[idx:])
		parent.children[idx] = n
		n.parent = parent
		return err
	}
	parent.children = append(parent.children, nil)
	copy(parent.children[idx+1:], parent.children[idx:])
	parent.children[idx] = repl
	repl.parent = parent
	n.doc.invalidateOrder()
	return nil
}

// SetAttribute sets (or replaces) the attribute with the given
// expanded name on element n.
func (n *Node) SetAttribute(name xml.Name, value string) error {
	if n.kind != ElementNode {
		return ErrStructural.New(
			fmt.Sprintf("%s node cannot carry attributes", n.kind))
	}
	if name.Local == "" {
		return ErrStructural.New("attribute requires a local name")
	}
	if name.Local == "xmlns" || name.Space == "xmlns" {
		return ErrStructural.New(
			"namespace declarations are not attributes; bind via DeclareNamespace")
	}
	if existing := n.Attribute(name); existing != nil {
		existing.content = value
		n.doc.invalidateOrder()
		return nil
	}
	attr := n.doc.newNode(AttributeNode, name, value)
	attr.parent = n
	n.attrs = append(n.attrs, attr)
	n.doc.invalidateOrder()
	return nil
}

// RemoveAttribute deletes the attribute with the given expanded name.
func (n *Node) RemoveAttribute(name xml.Name) error {
	if n.kind != ElementNode {
		return ErrStructural.New(
			fmt.Sprintf("%s node cannot carry attributes", n.kind))
	}
	for i, attr := range n.attrs {
		if attr.name == name {
			attr.parent = nil
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			n.doc.invalidateOrder()
			return nil
		}
	}
	return ErrStructural.New(
		fmt.Sprintf("no attribute named '%s'", name.Local))
}

// DeclareNamespace adds a prefix binding on element n.  Re-declaring a
// prefix already declared on this element replaces the binding.
func (n *Node) DeclareNamespace(prefix, uri string) error {
	if n.kind != ElementNode {
		return ErrStructural.New(
			fmt.Sprintf("%s node cannot declare namespaces", n.kind))
	}
	if prefix == "xml" && uri != XMLNamespaceURI {
		return ErrStructural.New("the 'xml' prefix is reserved")
	}
	for i, decl := range n.nsDecls {
		if decl.Prefix == prefix {
			n.nsDecls[i].URI = uri
			n.doc.invalidateOrder()
			return nil
		}
	}
	n.nsDecls = append(n.nsDecls, NsBinding{Prefix: prefix, URI: uri})
	n.doc.invalidateOrder()
	return nil
}

// SetText replaces the content of a text, comment or
// processing-instruction node, or the value of an attribute node.
func (n *Node) SetText(content string) error {
	switch n.kind {
	case TextNode, CommentNode, ProcInstNode, AttributeNode:
		n.content = content
		return nil
	}
	return ErrStructural.New(
		fmt.Sprintf("%s node has no settable content", n.kind))
}
