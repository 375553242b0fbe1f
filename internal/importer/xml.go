package importer

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// element is a generic XML tree. FET exports nest the interesting tags at
// varying depths, so lookups walk descendants instead of binding a schema.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
	Text     string     `xml:",chardata"`
}

func decode(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = true

	var root element
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	return &root, nil
}

func (e *element) attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// descendants returns every element below e named local, in document order.
func (e *element) descendants(local string) []*element {
	var out []*element
	var walk func(n *element)
	walk = func(n *element) {
		for i := range n.Children {
			child := &n.Children[i]
			if child.XMLName.Local == local {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(e)
	return out
}

// all is descendants including e itself.
func (e *element) all(local string) []*element {
	if e.XMLName.Local == local {
		return append([]*element{e}, e.descendants(local)...)
	}
	return e.descendants(local)
}

func (e *element) first(local string) *element {
	if found := e.descendants(local); len(found) > 0 {
		return found[0]
	}
	return nil
}

// nameOf returns the name attribute of the first descendant named local.
func (e *element) nameOf(local string) string {
	if child := e.first(local); child != nil {
		return child.attr("name")
	}
	return ""
}

// textOf returns the trimmed text content of the first descendant named local.
func (e *element) textOf(local string) string {
	child := e.first(local)
	if child == nil {
		return ""
	}
	var b strings.Builder
	var collect func(n *element)
	collect = func(n *element) {
		b.WriteString(n.Text)
		for i := range n.Children {
			collect(&n.Children[i])
		}
	}
	collect(child)
	return strings.TrimSpace(b.String())
}
