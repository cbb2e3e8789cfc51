// Copyright (c) 2019-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// This file turns a tree back into textual XML.  Prefixes are not
// stored on nodes; they are re-derived from the namespace declarations
// in scope at each element, so a parsed document round-trips with its
// original prefixes.  An element or attribute whose namespace has no
// in-scope prefix gets a synthesized declaration.

package xmltree

import (
	"fmt"
	"io"
	"strings"
)

// SerializeTo writes the document as textual XML to w.
func (doc *Document) SerializeTo(w io.Writer) error {
	var b strings.Builder
	for _, child := range doc.root.children {
		if err := writeNode(&b, child); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Serialize returns the document as textual XML.
func (doc *Document) Serialize() (string, error) {
	var b strings.Builder
	if err := doc.SerializeTo(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// SerializeNode returns the textual XML of a single subtree.
func SerializeNode(n *Node) (string, error) {
	var b strings.Builder
	if n.kind == DocumentNode {
		return n.doc.Serialize()
	}
	if err := writeNode(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeNode(b *strings.Builder, n *Node) error {
	switch n.kind {
	case ElementNode:
		return writeElement(b, n)
	case TextNode:
		b.WriteString(escapeText(n.content))
	case CommentNode:
		b.WriteString("<!--")
		b.WriteString(n.content)
		b.WriteString("-->")
	case ProcInstNode:
		b.WriteString("<?")
		b.WriteString(n.name.Local)
		if n.content != "" {
			b.WriteString(" ")
			b.WriteString(n.content)
		}
		b.WriteString("?>")
	case AttributeNode, NamespaceNode:
		return ErrStructural.New(
			fmt.Sprintf("cannot serialize %s node standalone", n.kind))
	}
	return nil
}

func writeElement(b *strings.Builder, elem *Node) error {
	scope := elem.NamespaceScope()

	var extraDecls []NsBinding
	tag, extraDecls, err := prefixedName(elem, scope, extraDecls, true)
	if err != nil {
		return err
	}

	b.WriteString("<")
	b.WriteString(tag)

	for _, decl := range elem.nsDecls {
		if decl.Prefix == "" {
			b.WriteString(` xmlns="` + escapeAttr(decl.URI) + `"`)
		} else {
			b.WriteString(` xmlns:` + decl.Prefix + `="` + escapeAttr(decl.URI) + `"`)
		}
	}

	var attrStrs []string
	for _, attr := range elem.attrs {
		var name string
		name, extraDecls, err = prefixedName(attr, scope, extraDecls, false)
		if err != nil {
			return err
		}
		attrStrs = append(attrStrs,
			fmt.Sprintf(` %s="%s"`, name, escapeAttr(attr.content)))
	}
	for _, decl := range extraDecls {
		b.WriteString(` xmlns:` + decl.Prefix + `="` + escapeAttr(decl.URI) + `"`)
	}
	for _, s := range attrStrs {
		b.WriteString(s)
	}

	if len(elem.children) == 0 {
		b.WriteString("/>")
		return nil
	}
	b.WriteString(">")
	for _, child := range elem.children {
		if err := writeNode(b, child); err != nil {
			return err
		}
	}
	b.WriteString("</" + tag + ">")
	return nil
}

// prefixedName picks the serialized name for an element or attribute.
// Elements may use the default namespace; attributes require a real
// prefix.  Namespaces with no usable in-scope prefix get a declaration
// added to extraDecls.
func prefixedName(
	n *Node,
	scope map[string]string,
	extraDecls []NsBinding,
	allowDefault bool,
) (string, []NsBinding, error) {

	uri := n.name.Space
	if uri == "" {
		return n.name.Local, extraDecls, nil
	}
	if allowDefault && scope[""] == uri {
		return n.name.Local, extraDecls, nil
	}
	// Deterministic choice when several prefixes bind the same URI.
	best := ""
	for pfx, bound := range scope {
		if pfx == "" || bound != uri {
			continue
		}
		if best == "" || pfx < best {
			best = pfx
		}
	}
	if best != "" {
		return best + ":" + n.name.Local, extraDecls, nil
	}
	for _, decl := range extraDecls {
		if decl.URI == uri {
			return decl.Prefix + ":" + n.name.Local, extraDecls, nil
		}
	}
	gen := NsBinding{Prefix: fmt.Sprintf("ns%d", len(extraDecls)+1), URI: uri}
	extraDecls = append(extraDecls, gen)
	return gen.Prefix + ":" + n.name.Local, extraDecls, nil
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	`"`, "&quot;",
	"\n", "&#10;",
	"\t", "&#9;",
)

func escapeText(s string) string { return textEscaper.Replace(s) }
func escapeAttr(s string) string { return attrEscaper.Replace(s) }
