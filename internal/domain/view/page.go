package view

import (
	"fmt"
	"strconv"
	"strings"
)

// Surface is what a widget needs from its host page.
type Surface interface {
	// ByID returns the attached element with id, or nil.
	ByID(id string) *Element
	// QueryClass returns every attached element carrying class, in tree order.
	QueryClass(class string) []*Element
	// Viewport returns the simulation viewport box.
	Viewport() Rect
}

// Page is a rooted element tree with an id index.
type Page struct {
	name    string
	root    *Element
	byID    map[string]*Element
	version uint64
}

var _ Surface = (*Page)(nil)

// NewPage creates a page whose root spans viewport.
func NewPage(name string, viewport Rect) *Page {
	p := &Page{
		name: name,
		byID: make(map[string]*Element),
	}
	p.root = NewElement("root")
	p.root.rect = viewport
	p.attach(p.root)
	return p
}

// Name returns the page name.
func (p *Page) Name() string { return p.name }

// Root returns the root element.
func (p *Page) Root() *Element { return p.root }

// Viewport returns the root's box.
func (p *Page) Viewport() Rect { return p.root.rect }

// Version increases on every mutation of an attached element. The terminal
// host skips frames whose page version has not moved.
func (p *Page) Version() uint64 { return p.version }

// ByID returns the attached element with id, or nil.
func (p *Page) ByID(id string) *Element {
	return p.byID[id]
}

// MustByID is ByID for elements a page template guarantees.
func (p *Page) MustByID(id string) *Element {
	e := p.byID[id]
	if e == nil {
		panic(fmt.Sprintf("view: page %q has no element %q", p.name, id))
	}
	return e
}

// QueryClass returns attached elements carrying class in tree order.
func (p *Page) QueryClass(class string) []*Element {
	var out []*Element
	p.root.Walk(func(e *Element) {
		if e.HasClass(class) {
			out = append(out, e)
		}
	})
	return out
}

// QueryAny returns attached elements carrying any of classes, each once.
func (p *Page) QueryAny(classes ...string) []*Element {
	var out []*Element
	p.root.Walk(func(e *Element) {
		for _, c := range classes {
			if e.HasClass(c) {
				out = append(out, e)
				return
			}
		}
	})
	return out
}

func (p *Page) attach(e *Element) {
	e.Walk(func(n *Element) {
		n.page = p
		if n.id != "" {
			p.byID[n.id] = n
		}
	})
	p.version++
}

func (p *Page) detach(e *Element) {
	e.Walk(func(n *Element) {
		if n.id != "" && p.byID[n.id] == n {
			delete(p.byID, n.id)
		}
		n.page = nil
	})
	p.version++
}

// Percent formats v as a CSS percentage, e.g. "37.5%".
func Percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// ParsePercent reads a value written by Percent.
func ParsePercent(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Rotate formats a CSS rotate transform.
func Rotate(deg float64) string {
	return "rotate(" + strconv.FormatFloat(deg, 'f', -1, 64) + "deg)"
}

// PlaceInside positions child by percentage offsets of parent's box, the way
// absolutely positioned elements with left/top percentages are laid out.
func PlaceInside(parent Rect, leftPct, topPct, w, h float64) Rect {
	return Rect{
		X: parent.X + parent.W*leftPct/100,
		Y: parent.Y + parent.H*topPct/100,
		W: w,
		H: h,
	}
}
