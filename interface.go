// Copyright (c) 2019-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Package xmlpath processes XML documents in memory: parse, navigate,
// mutate, serialize, and query with XPath expressions.
//
// The Document type here is the convenience surface; the tree model
// lives in xmltree and the expression engine in xpath.  Compiled
// expressions are cached per document, keyed by expression text and
// namespace scope, so repeated queries skip the compiler.
package xmlpath

import (
	"io"

	"github.com/sdcio/xmlpath/xmltree"
	"github.com/sdcio/xmlpath/xpath"
)

// Document wraps a parsed tree together with a compiled-expression
// cache.  Concurrent readers are fine as long as no goroutine is
// mutating the tree; mutation and evaluation must be serialized by
// the caller.
type Document struct {
	tree     *xmltree.Document
	machines *xpath.MachineCache
}

// Parse builds a document from textual XML.
func Parse(r io.Reader) (*Document, error) {
	tree, err := xmltree.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{tree: tree, machines: xpath.NewMachineCache()}, nil
}

// ParseString builds a document from textual XML held in a string.
func ParseString(s string) (*Document, error) {
	tree, err := xmltree.ParseString(s)
	if err != nil {
		return nil, err
	}
	return &Document{tree: tree, machines: xpath.NewMachineCache()}, nil
}

// Tree exposes the underlying tree for navigation and mutation.
func (d *Document) Tree() *xmltree.Document { return d.tree }

// Root returns the document node.
func (d *Document) Root() *xmltree.Node { return d.tree.Root() }

// RootElement returns the document element.
func (d *Document) RootElement() *xmltree.Node { return d.tree.RootElement() }

// Serialize renders the document as textual XML.
func (d *Document) Serialize() (string, error) { return d.tree.Serialize() }

// compileFor returns the cached machine for expr bound to the
// namespace scope at the given start node.
func (d *Document) compileFor(expr string, start *xmltree.Node) (*xpath.Machine, error) {
	scope := map[string]string{}
	if elem := scopeElement(start); elem != nil {
		scope = elem.NamespaceScope()
	}
	return d.machines.Get(expr, scope)
}

// scopeElement picks the element whose namespace bindings govern the
// query: the start node itself, or the document element when the
// query starts at the document node.
func scopeElement(start *xmltree.Node) *xmltree.Node {
	if start == nil {
		return nil
	}
	if start.Kind() == xmltree.DocumentNode {
		return start.Document().RootElement()
	}
	return start
}

// EvalXpath evaluates the expression with the document node as
// context item and returns the raw result.
func (d *Document) EvalXpath(expr string) (*xpath.Result, error) {
	return d.EvalXpathFrom(d.tree.Root(), expr)
}

// EvalXpathFrom evaluates the expression with the given node as
// context item.
func (d *Document) EvalXpathFrom(node *xmltree.Node, expr string) (*xpath.Result, error) {
	mach, err := d.compileFor(expr, node)
	if err != nil {
		return nil, err
	}
	res := xpath.NewCtxFromMach(mach, node).Run()
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// GetNodeset evaluates the expression and returns the full node
// sequence in document order.  A non-node result is a type error.
func (d *Document) GetNodeset(expr string) ([]*xmltree.Node, error) {
	return d.GetNodesetFrom(d.tree.Root(), expr)
}

// GetNodesetFrom is GetNodeset anchored at a specific context node.
func (d *Document) GetNodesetFrom(node *xmltree.Node, expr string) ([]*xmltree.Node, error) {
	res, err := d.EvalXpathFrom(node, expr)
	if err != nil {
		return nil, err
	}
	return res.GetNodeSetResult()
}

// GetFirstNode returns the first node of the result in document
// order, or nil for an empty result.
func (d *Document) GetFirstNode(expr string) (*xmltree.Node, error) {
	nodes, err := d.GetNodeset(expr)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return nodes[0], nil
}

// EachNode evaluates the expression and invokes the visitor on every
// result node in document order.  On any error - including a result
// that is not a node sequence - no node is visited.
func (d *Document) EachNode(expr string, visit func(*xmltree.Node)) error {
	nodes, err := d.GetNodeset(expr)
	if err != nil {
		return err
	}
	for _, node := range nodes {
		visit(node)
	}
	return nil
}
