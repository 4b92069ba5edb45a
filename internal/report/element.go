// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/xml"
	"strings"
)

// element is a captured section subtree. Only one section is held at a time.
type element struct {
	name     string
	text     strings.Builder
	children []*element
	// sealed is set once the first child starts; later character data is tail text.
	sealed bool
}

func newElement(start xml.StartElement) *element {
	return &element{name: start.Name.Local}
}

// findText returns the leading text of the first element matching path.
// Path segments are matched against child local names.
func (e *element) findText(path string) Value {
	found := e.find(strings.Split(strings.Trim(path, "/"), "/"))
	if found == nil {
		return Null
	}
	return Text(found.text.String())
}

func (e *element) find(segments []string) *element {
	if len(segments) == 0 {
		return e
	}
	for _, child := range e.children {
		if child.name != segments[0] {
			continue
		}
		if found := child.find(segments[1:]); found != nil {
			return found
		}
	}
	return nil
}

// treeBuilder assembles an element from decoder tokens.
type treeBuilder struct {
	root  *element
	stack []*element
}

func newTreeBuilder(start xml.StartElement) *treeBuilder {
	root := newElement(start)
	return &treeBuilder{root: root, stack: []*element{root}}
}

// push handles a token inside the section. It returns true when the
// section's own end tag has been consumed.
func (b *treeBuilder) push(tok xml.Token) bool {
	top := b.stack[len(b.stack)-1]
	switch t := tok.(type) {
	case xml.StartElement:
		child := newElement(t)
		top.sealed = true
		top.children = append(top.children, child)
		b.stack = append(b.stack, child)
	case xml.EndElement:
		b.stack = b.stack[:len(b.stack)-1]
		return len(b.stack) == 0
	case xml.CharData:
		if !top.sealed {
			top.text.Write(t)
		}
	}
	return false
}
