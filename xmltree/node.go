// Copyright (c) 2019-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// This file contains the node model for in-memory XML documents: node
// kinds, expanded names, string values, namespace scope resolution and
// document order keys.

package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
)

// NodeKind discriminates the seven node kinds of the data model.
type NodeKind int

const (
	DocumentNode NodeKind = iota
	ElementNode
	AttributeNode
	TextNode
	CommentNode
	ProcInstNode
	NamespaceNode
)

var nodeKindNameMap = map[NodeKind]string{
	DocumentNode:  "document",
	ElementNode:   "element",
	AttributeNode: "attribute",
	TextNode:      "text",
	CommentNode:   "comment",
	ProcInstNode:  "processing-instruction",
	NamespaceNode: "namespace",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNameMap[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// XMLNamespaceURI is the reserved namespace permanently bound to the
// 'xml' prefix.
const XMLNamespaceURI = "http://www.w3.org/XML/1998/namespace"

// NsBinding is a single prefix -> URI declaration.  An empty Prefix
// denotes the default element namespace.
type NsBinding struct {
	Prefix string
	URI    string
}

// Node is a single node of a document.  All node kinds share the one
// struct; fields not applicable to a kind are left zero.  Nodes are
// owned by their Document and compared by pointer identity.
type Node struct {
	doc    *Document
	kind   NodeKind
	parent *Node

	// Expanded name.  Space holds the namespace URI, never a prefix.
	// Text and comment nodes have no name; processing instructions
	// carry the target in Local.
	name xml.Name

	// Literal content for attribute/text/comment/pi nodes; for a
	// namespace node, the bound URI.
	content string

	// Element only.
	children []*Node
	attrs    []*Node
	nsDecls  []NsBinding
	nsNodes  []*Node // lazily materialized namespace nodes

	// Document order key, valid while ordGen == doc.orderGen.  Only
	// structural nodes (document/element/text/comment/pi) store one;
	// attribute and namespace keys derive from the owning element.
	ordKey int64
	ordGen uint64
}

// Kind returns the node kind.
func (n *Node) Kind() NodeKind { return n.kind }

// Document returns the owning document.
func (n *Node) Document() *Document { return n.doc }

// Parent returns the parent node, or nil on the document node.  The
// parent of an attribute or namespace node is its owning element.
func (n *Node) Parent() *Node { return n.parent }

// Name returns the expanded name (namespace URI + local name).
func (n *Node) Name() xml.Name { return n.name }

// LocalName returns the local part of the node name.
func (n *Node) LocalName() string { return n.name.Local }

// NamespaceURI returns the namespace URI part of the node name.
func (n *Node) NamespaceURI() string { return n.name.Space }

// Children returns the ordered child list.  Attribute and namespace
// nodes are not children.
func (n *Node) Children() []*Node { return n.children }

// Attributes returns the element's attribute nodes in declaration
// order.  Names are unique within one element.
func (n *Node) Attributes() []*Node { return n.attrs }

// NsDeclarations returns the namespace declarations made on this
// element itself (not the inherited scope).
func (n *Node) NsDeclarations() []NsBinding { return n.nsDecls }

// Content returns the literal content of an attribute, text, comment,
// processing-instruction or namespace node.
func (n *Node) Content() string { return n.content }

// Root returns the document node at the top of this node's tree.
func (n *Node) Root() *Node {
	node := n
	for node.parent != nil {
		node = node.parent
	}
	return node
}

// StringValue computes the node's string value per node kind: the
// concatenation of descendant text for document/element nodes, the
// literal content otherwise.
func (n *Node) StringValue() string {
	switch n.kind {
	case DocumentNode, ElementNode:
		var b bytes.Buffer
		n.appendTextValue(&b)
		return b.String()
	default:
		return n.content
	}
}

func (n *Node) appendTextValue(b *bytes.Buffer) {
	for _, child := range n.children {
		switch child.kind {
		case TextNode:
			b.WriteString(child.content)
		case ElementNode:
			child.appendTextValue(b)
		}
	}
}

// Attribute returns the attribute node with the given expanded name,
// or nil.
func (n *Node) Attribute(name xml.Name) *Node {
	for _, attr := range n.attrs {
		if attr.name == name {
			return attr
		}
	}
	return nil
}

// AttributeValue returns the value of the named attribute (no-prefix
// names have an empty namespace), or "" with ok=false when absent.
func (n *Node) AttributeValue(local string) (string, bool) {
	attr := n.Attribute(xml.Name{Local: local})
	if attr == nil {
		return "", false
	}
	return attr.content, true
}

// NamespaceScope resolves the in-scope namespace bindings for this
// node: declarations on the ancestor-or-self chain, nearest element
// winning, plus the reserved 'xml' binding.  A default-namespace
// binding to "" (un-declaration) is removed from the scope.
func (n *Node) NamespaceScope() map[string]string {
	scope := map[string]string{"xml": XMLNamespaceURI}

	var collect func(node *Node)
	collect = func(node *Node) {
		if node == nil {
			return
		}
		collect(node.parent)
		for _, decl := range node.nsDecls {
			if decl.URI == "" {
				delete(scope, decl.Prefix)
			} else {
				scope[decl.Prefix] = decl.URI
			}
		}
	}
	elem := n
	if elem.kind == AttributeNode || elem.kind == NamespaceNode {
		elem = elem.parent
	}
	collect(elem)
	return scope
}

// LookupPrefix returns the in-scope URI bound to prefix, if any.
func (n *Node) LookupPrefix(prefix string) (string, bool) {
	uri, ok := n.NamespaceScope()[prefix]
	return uri, ok
}

// NamespaceNodes materializes the namespace nodes visible on this
// element, one per in-scope binding, ordered by prefix for a stable
// enumeration.  The result is cached until the tree mutates.
func (n *Node) NamespaceNodes() []*Node {
	if n.kind != ElementNode {
		return nil
	}
	if n.nsNodes != nil && len(n.nsNodes) > 0 && n.nsNodes[0].ordGen == n.doc.orderGen {
		return n.nsNodes
	}

	scope := n.NamespaceScope()
	prefixes := make([]string, 0, len(scope))
	for pfx := range scope {
		prefixes = append(prefixes, pfx)
	}
	sort.Strings(prefixes)

	nodes := make([]*Node, 0, len(prefixes))
	for _, pfx := range prefixes {
		nodes = append(nodes, &Node{
			doc:     n.doc,
			kind:    NamespaceNode,
			parent:  n,
			name:    xml.Name{Local: pfx},
			content: scope[pfx],
			ordGen:  n.doc.orderGen,
		})
	}
	n.nsNodes = nodes
	return nodes
}

// nodeIndexIn returns the position of n within list, or -1.
func nodeIndexIn(list []*Node, n *Node) int {
	for i, entry := range list {
		if entry == n {
			return i
		}
	}
	return -1
}
