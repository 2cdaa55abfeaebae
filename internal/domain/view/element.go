// Package view models the host page the widgets drive: a tree of elements
// with ids, classes, inline styles, text and a layout box. Widgets only read
// and mutate elements; hosts (terminal, autoplay) decide how to show them.
//
// A Page is owned by a single event loop and is not safe for concurrent use.
package view

import (
	"slices"
	"strings"
)

// Rect is a layout box in abstract page pixels.
type Rect struct {
	X, Y, W, H float64
}

// CenterX returns the horizontal midpoint.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical midpoint.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Contains reports whether (x, y) falls inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Element is one node of a page.
type Element struct {
	id       string
	classes  []string
	styles   map[string]string
	text     string
	rect     Rect
	parent   *Element
	children []*Element
	page     *Page
}

// NewElement creates a detached element.
func NewElement(id string, classes ...string) *Element {
	e := &Element{
		id:     id,
		styles: make(map[string]string),
	}
	for _, c := range classes {
		e.AddClass(c)
	}
	return e
}

// ID returns the element id, possibly empty.
func (e *Element) ID() string { return e.id }

// HasClass reports whether c is set.
func (e *Element) HasClass(c string) bool {
	return slices.Contains(e.classes, c)
}

// AddClass sets c. Adding a present class is a no-op.
func (e *Element) AddClass(c string) {
	if c == "" || e.HasClass(c) {
		return
	}
	e.classes = append(e.classes, c)
	e.touch()
}

// RemoveClass clears c.
func (e *Element) RemoveClass(c string) {
	i := slices.Index(e.classes, c)
	if i < 0 {
		return
	}
	e.classes = slices.Delete(e.classes, i, i+1)
	e.touch()
}

// ToggleClass flips c and returns whether it is now set.
func (e *Element) ToggleClass(c string) bool {
	if e.HasClass(c) {
		e.RemoveClass(c)
		return false
	}
	e.AddClass(c)
	return true
}

// SetClass sets or clears c.
func (e *Element) SetClass(c string, on bool) {
	if on {
		e.AddClass(c)
		return
	}
	e.RemoveClass(c)
}

// Classes returns a copy of the class list in insertion order.
func (e *Element) Classes() []string {
	return slices.Clone(e.classes)
}

// ClassName returns the classes joined by spaces.
func (e *Element) ClassName() string {
	return strings.Join(e.classes, " ")
}

// Style returns the inline value of prop, or "" when unset.
func (e *Element) Style(prop string) string {
	return e.styles[prop]
}

// SetStyle sets an inline style. An empty value removes the property, which
// reverts it to whatever the host's stylesheet says.
func (e *Element) SetStyle(prop, value string) {
	if value == "" {
		if _, ok := e.styles[prop]; !ok {
			return
		}
		delete(e.styles, prop)
		e.touch()
		return
	}
	if e.styles[prop] == value {
		return
	}
	e.styles[prop] = value
	e.touch()
}

// Text returns the text content.
func (e *Element) Text() string { return e.text }

// SetText replaces the text content.
func (e *Element) SetText(s string) {
	if e.text == s {
		return
	}
	e.text = s
	e.touch()
}

// Rect returns the element's layout box.
func (e *Element) Rect() Rect { return e.rect }

// SetRect moves the element.
func (e *Element) SetRect(r Rect) {
	if e.rect == r {
		return
	}
	e.rect = r
	e.touch()
}

// Children returns a copy of the child list.
func (e *Element) Children() []*Element {
	return slices.Clone(e.children)
}

// Append adds child as the last child of e, detaching it from any previous
// parent first.
func (e *Element) Append(child *Element) {
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	if e.page != nil {
		e.page.attach(child)
	}
	e.touch()
}

// RemoveChild detaches child from e. Unknown children are ignored.
func (e *Element) RemoveChild(child *Element) {
	i := slices.Index(e.children, child)
	if i < 0 {
		return
	}
	e.children = slices.Delete(e.children, i, i+1)
	child.parent = nil
	if e.page != nil {
		e.page.detach(child)
	}
	e.touch()
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	if e.parent != nil {
		e.parent.RemoveChild(e)
	}
}

// Clear removes every child.
func (e *Element) Clear() {
	for len(e.children) > 0 {
		e.RemoveChild(e.children[len(e.children)-1])
	}
}

// FirstByClass returns the first descendant carrying class c.
func (e *Element) FirstByClass(c string) *Element {
	for _, ch := range e.children {
		if ch.HasClass(c) {
			return ch
		}
		if found := ch.FirstByClass(c); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits e and its descendants depth first, parents before children.
func (e *Element) Walk(fn func(*Element)) {
	fn(e)
	for _, ch := range e.children {
		ch.Walk(fn)
	}
}

func (e *Element) touch() {
	if e.page != nil {
		e.page.version++
	}
}
