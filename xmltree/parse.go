// Copyright (c) 2019-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// This file builds a Document from textual XML using the encoding/xml
// token stream.  The decoder resolves character/entity references and
// namespace prefixes; xmlns declarations are captured in the owning
// element's binding table rather than its attribute list, so the
// attribute axis never sees them.

package xmltree

import (
	"encoding/xml"
	"io"
	"strings"
)

// Parse reads a complete XML document from r and returns its tree.
// Malformed input yields ErrXMLParse.
func Parse(r io.Reader) (*Document, error) {
	doc := NewDocument()
	dec := xml.NewDecoder(r)

	cur := doc.root
	sawElement := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ErrXMLParse.New(err.Error())
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if cur == doc.root && sawElement {
				return nil, ErrXMLParse.New("multiple top-level elements")
			}
			elem := doc.NewElement(t.Name)
			for _, attr := range t.Attr {
				switch {
				case attr.Name.Space == "xmlns":
					elem.nsDecls = append(elem.nsDecls,
						NsBinding{Prefix: attr.Name.Local, URI: attr.Value})
				case attr.Name.Space == "" && attr.Name.Local == "xmlns":
					elem.nsDecls = append(elem.nsDecls,
						NsBinding{Prefix: "", URI: attr.Value})
				default:
					if elem.Attribute(attr.Name) != nil {
						return nil, ErrXMLParse.New(
							"duplicate attribute '" + attr.Name.Local + "'")
					}
					attrNode := doc.newNode(AttributeNode, attr.Name, attr.Value)
					attrNode.parent = elem
					elem.attrs = append(elem.attrs, attrNode)
				}
			}
			elem.parent = cur
			cur.children = append(cur.children, elem)
			cur = elem
			sawElement = true

		case xml.EndElement:
			cur = cur.parent

		case xml.CharData:
			if cur == doc.root {
				// Whitespace between the declaration and the document
				// element is insignificant; anything else is malformed.
				if strings.TrimSpace(string(t)) != "" {
					return nil, ErrXMLParse.New("text outside document element")
				}
				continue
			}
			appendText(cur, string(t))

		case xml.Comment:
			comment := doc.NewComment(string(t))
			comment.parent = cur
			cur.children = append(cur.children, comment)

		case xml.ProcInst:
			// The XML declaration surfaces as a 'xml' target; it is not
			// a node of the tree.
			if t.Target == "xml" {
				continue
			}
			pi := doc.NewProcInst(t.Target, string(t.Inst))
			pi.parent = cur
			cur.children = append(cur.children, pi)

		case xml.Directive:
			// DOCTYPE etc - entity and DTD processing is out of scope.
		}
	}

	if cur != doc.root {
		return nil, ErrXMLParse.New("unexpected end of input")
	}
	if !sawElement {
		return nil, ErrXMLParse.New("no document element")
	}
	return doc, nil
}

// ParseString parses a document held in a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// appendText adds character data under parent, merging with a trailing
// text sibling so consecutive decoder chunks form one text node.
func appendText(parent *Node, data string) {
	if n := len(parent.children); n > 0 {
		last := parent.children[n-1]
		if last.kind == TextNode {
			last.content += data
			return
		}
	}
	text := parent.doc.NewText(data)
	text.parent = parent
	parent.children = append(parent.children, text)
}
