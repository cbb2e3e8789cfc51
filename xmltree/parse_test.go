// Copyright (c) 2019-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package xmltree

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sdcio/xmlpath/testutils/assert"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := ParseString(src)
	require.NoError(t, err)
	return doc
}

func TestParseBasicStructure(t *testing.T) {
	doc := mustParse(t,
		`<root><a img="a1"/><a img="a2"/><b>text</b></root>`)

	root := doc.RootElement()
	require.NotNil(t, root)
	require.Equal(t, "root", root.LocalName())
	require.Equal(t, ElementNode, root.Kind())
	require.Len(t, root.Children(), 3)

	a1 := root.NthChild(0)
	require.Equal(t, "a", a1.LocalName())
	val, ok := a1.AttributeValue("img")
	require.True(t, ok)
	require.Equal(t, "a1", val)

	b := root.NthChild(2)
	require.Equal(t, "text", b.StringValue())
	require.Equal(t, TextNode, b.FirstChild().Kind())
}

func TestParseMergesCharDataChunks(t *testing.T) {
	doc := mustParse(t, "<r>one &amp; two</r>")
	r := doc.RootElement()
	require.Len(t, r.Children(), 1)
	require.Equal(t, "one & two", r.StringValue())
}

func TestParseNamespaces(t *testing.T) {
	doc := mustParse(t,
		`<root xmlns="urn:def" xmlns:p="urn:pre"><p:item p:kind="x"/></root>`)

	root := doc.RootElement()
	require.Equal(t, "urn:def", root.NamespaceURI())

	// xmlns declarations are bindings, not attributes.
	require.Empty(t, root.Attributes())
	require.Len(t, root.NsDeclarations(), 2)

	item := root.NthChild(0)
	require.Equal(t, xml.Name{Space: "urn:pre", Local: "item"}, item.Name())

	attr := item.Attribute(xml.Name{Space: "urn:pre", Local: "kind"})
	require.NotNil(t, attr)
	require.Equal(t, "x", attr.Content())

	scope := item.NamespaceScope()
	require.Equal(t, "urn:def", scope[""])
	require.Equal(t, "urn:pre", scope["p"])
	require.Equal(t, XMLNamespaceURI, scope["xml"])
}

func TestParseCommentsAndPIs(t *testing.T) {
	doc := mustParse(t,
		`<?xml version="1.0"?><r><!-- note --><?target data?><x/></r>`)

	r := doc.RootElement()
	require.Len(t, r.Children(), 3)
	require.Equal(t, CommentNode, r.NthChild(0).Kind())
	require.Equal(t, " note ", r.NthChild(0).Content())
	require.Equal(t, ProcInstNode, r.NthChild(1).Kind())
	require.Equal(t, "target", r.NthChild(1).LocalName())
	require.Equal(t, "data", r.NthChild(1).Content())
}

func TestParseStringValues(t *testing.T) {
	doc := mustParse(t, `<r>a<x>b<y>c</y></x><!--z-->d</r>`)
	require.Equal(t, "abcd", doc.RootElement().StringValue())
	require.Equal(t, "abcd", doc.Root().StringValue())
}

func TestParseRejectsMalformedInput(t *testing.T) {
	for _, src := range []string{
		"<r>",
		"<r></s>",
		"<r/><r2/>",
		"text<r/>",
		"",
		`<r a="1" a="2"/>`,
	} {
		_, err := ParseString(src)
		if err == nil {
			t.Fatalf("Unexpected success parsing %q", src)
		}
		if !ErrXMLParse.Is(err) {
			t.Fatalf("Wrong error kind for %q: %s", src, err)
		}
	}
}

func TestParseErrorMentionsProblem(t *testing.T) {
	_, err := ParseString("<r/><r2/>")
	assert.ContainsError(t, err, "multiple top-level elements")
}

func TestRoundTrip(t *testing.T) {
	srcs := []string{
		`<root><a img="a1"/><a img="a2"/></root>`,
		`<root xmlns="urn:d" xmlns:p="urn:p"><p:x p:k="v">hi</p:x></root>`,
		`<r>a<!--c--><?pi d?><x>b</x></r>`,
		`<r a="1" b="&lt;&amp;&quot;"/>`,
	}
	for _, src := range srcs {
		doc := mustParse(t, src)
		out, err := doc.Serialize()
		require.NoError(t, err)
		doc2, err := ParseString(out)
		require.NoError(t, err, "re-parsing %q", out)
		requireTreesEqual(t, doc.Root(), doc2.Root())
	}
}

// requireTreesEqual compares two trees structurally, ignoring
// attribute order.
func requireTreesEqual(t *testing.T, a, b *Node) {
	t.Helper()
	require.Equal(t, a.Kind(), b.Kind())
	require.Equal(t, a.Name(), b.Name())
	require.Equal(t, a.Content(), b.Content())
	require.Len(t, b.Attributes(), len(a.Attributes()))
	for _, attr := range a.Attributes() {
		other := b.Attribute(attr.Name())
		require.NotNil(t, other, "missing attribute %v", attr.Name())
		require.Equal(t, attr.Content(), other.Content())
	}
	require.Len(t, b.Children(), len(a.Children()))
	for i, child := range a.Children() {
		requireTreesEqual(t, child, b.Children()[i])
	}
}
