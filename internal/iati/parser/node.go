package parser

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"aims/internal/iati/models"
)

// node is one element of the raw XML tree. The tree keeps every occurrence of
// every element in document order; nothing is collapsed at this stage, so
// repeated elements can never be lost before typed extraction sees them.
type node struct {
	name     string
	attrs    map[string]string
	children []*node
	text     string
}

// decode builds the node tree from raw bytes. Element names are matched by
// local name only; IATI documents appear with and without namespace prefixes
// in the wild and the pipeline treats both the same.
func decode(raw []byte) (*node, error) {
	decoder := xml.NewDecoder(bytes.NewReader(raw))

	var root *node
	var stack []*node

	for {
		token, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, syntaxError(err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local, attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				n.attrs[a.Name.Local] = a.Value
			}
			if root == nil {
				root = n
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if root == nil {
		return nil, &ParseError{Message: "document contains no root element"}
	}
	return root, nil
}

func (n *node) attr(name string) string {
	if n == nil {
		return ""
	}
	return n.attrs[name]
}

func (n *node) trimmedText() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.text)
}

// child returns the first direct child with the given name, or nil.
func (n *node) child(name string) *node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// all returns every direct child with the given name, in document order.
func (n *node) all(name string) []*node {
	if n == nil {
		return nil
	}
	var out []*node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// narratives collects the <narrative> children of an element. Elements that
// carry bare text instead of narrative children (seen in older publisher
// output) yield a single untagged narrative.
func narratives(n *node) models.Narratives {
	if n == nil {
		return nil
	}
	var out models.Narratives
	for _, c := range n.all("narrative") {
		text := c.trimmedText()
		if text == "" {
			continue
		}
		out = append(out, models.Narrative{Lang: c.attr("lang"), Text: text})
	}
	if out == nil {
		if text := n.trimmedText(); text != "" {
			out = models.Narratives{{Text: text}}
		}
	}
	return out
}
