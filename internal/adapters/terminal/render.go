package terminal

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/internal/domain/view"
)

// Rows reserved above and below the page.
const (
	headerRows = 1
	footerRows = 1
)

var tabTitles = map[model.Widget]string{
	model.BalanceWalk: "Balance Walk",
	model.ReachGrab:   "Reach & Grab",
	model.ReactionTap: "Reaction Tap",
}

const helpLine = "tab switch  r restart  s slow/speed  i insights  1-3 level  space start  click reach/tap  q quit"

// cssColors maps the page palette onto terminal colors.
var cssColors = map[string]tcell.Color{
	"var(--accent-secondary)": tcell.ColorTeal,
	"var(--primary-light)":    tcell.ColorLightSkyBlue,
	"var(--primary-color)":    tcell.ColorDodgerBlue,
}

// solid maps body and target classes onto the glyph filling their box.
var solid = map[string]rune{
	"head":       '●',
	"torso":      '█',
	"arm":        '█',
	"thigh":      '█',
	"calf":       '█',
	"hand":       '▪',
	"football":   '◉',
	"status-dot": '●',
	"target-obj": '◆',
	"tap-target": '◆',
	"rom-fill":   '▬',
	"focus-fill": '▬',
	"rom-bar":    '─',
	"focus-bar":  '─',
}

var rotateRe = regexp.MustCompile(`rotate\((-?[0-9.]+)deg\)`)

// cell is a box in screen cells, half open.
type cell struct {
	x0, y0, x1, y1 int
}

func (c cell) contains(x, y int) bool {
	return x >= c.x0 && x < c.x1 && y >= c.y0 && y < c.y1
}

// hotspot is a clickable button as last drawn.
type hotspot struct {
	box cell
	id  string
}

// layout is how the last frame mapped the focused page onto the screen.
type layout struct {
	widget  model.Widget
	cols    int
	rows    int
	scaleX  float64
	scaleY  float64
	buttons []hotspot
}

// toPage converts a screen cell to page coordinates at the cell's center.
// ok is false outside the page area.
func (l *layout) toPage(x, y int) (px, py float64, ok bool) {
	if l.scaleX <= 0 || l.scaleY <= 0 || y < headerRows || y >= l.rows-footerRows {
		return 0, 0, false
	}
	px = (float64(x) + 0.5) / l.scaleX
	py = (float64(y-headerRows) + 0.5) / l.scaleY
	return px, py, true
}

func (l *layout) button(x, y int) string {
	for _, b := range l.buttons {
		if b.box.contains(x, y) {
			return b.id
		}
	}
	return ""
}

// draw paints the focused page. It runs on the event loop.
func (h *Host) draw() {
	select {
	case <-h.done:
		return
	default:
	}

	w := h.svc.Focused()
	page := h.svc.Page(w)
	s := h.screen
	cols, rows := s.Size()

	key := frameKey{widget: w, cols: cols, rows: rows}
	if page != nil {
		key.version = page.Version()
	}
	if key == h.drawn {
		return
	}
	h.drawn = key
	s.Clear()

	l := &layout{widget: w, cols: cols, rows: rows}
	drawHeader(s, w, cols)
	drawText(s, 0, rows-1, cols, helpLine, tcell.StyleDefault.Dim(true))

	if page != nil {
		vp := page.Viewport()
		if vp.W > 0 && vp.H > 0 {
			l.scaleX = float64(cols) / vp.W
			l.scaleY = float64(rows-headerRows-footerRows) / vp.H
		}
		r := &renderer{screen: s, layout: l}
		for _, e := range page.Root().Children() {
			r.element(e, tcell.ColorDefault)
		}
	}

	h.layout.Store(l)
	s.Show()
}

// frameKey identifies what a frame showed. An unchanged key skips the redraw.
type frameKey struct {
	widget     model.Widget
	version    uint64
	cols, rows int
}

func drawHeader(s tcell.Screen, focused model.Widget, cols int) {
	x := 0
	for _, w := range model.Widgets {
		st := tcell.StyleDefault
		if w == focused {
			st = st.Reverse(true).Bold(true)
		}
		x += drawText(s, x, 0, cols, " "+tabTitles[w]+" ", st) + 1
	}
}

// drawText writes one line clipped at maxX and returns the cells written.
func drawText(s tcell.Screen, x, y, maxX int, text string, st tcell.Style) int {
	n := 0
	for _, r := range text {
		if x+n >= maxX {
			break
		}
		s.SetContent(x+n, y, r, nil, st)
		n++
	}
	return n
}

type renderer struct {
	screen tcell.Screen
	layout *layout
}

func (r *renderer) box(rect view.Rect) cell {
	l := r.layout
	c := cell{
		x0: int(rect.X * l.scaleX),
		y0: headerRows + int(rect.Y*l.scaleY),
		x1: int(math.Ceil((rect.X + rect.W) * l.scaleX)),
		y1: headerRows + int(math.Ceil((rect.Y+rect.H)*l.scaleY)),
	}
	c.x1 = max(c.x1, c.x0+1)
	c.y1 = max(c.y1, c.y0+1)
	c.x1 = min(c.x1, l.cols)
	c.y1 = min(c.y1, l.rows-footerRows)
	return c
}

// element draws e and its subtree. tint is the color inherited from a
// posed ancestor.
func (r *renderer) element(e *view.Element, tint tcell.Color) {
	if hidden(e) {
		return
	}
	switch {
	case e.HasClass("freezing"):
		tint = tcell.ColorLightSkyBlue
	case e.HasClass("kicking"):
		tint = tcell.ColorDodgerBlue
	}

	switch {
	case e.HasClass("btn"):
		r.button(e)
	case e.Text() != "":
		r.text(e)
	default:
		r.shape(e, tint)
	}
	for _, c := range e.Children() {
		r.element(c, tint)
	}
}

func hidden(e *view.Element) bool {
	if e.HasClass("hidden") || e.Style("opacity") == "0" || e.Style("display") == "none" {
		return true
	}
	return e.HasClass("insights-panel") && !e.HasClass("visible")
}

func (r *renderer) button(e *view.Element) {
	b := r.box(e.Rect())
	st := tcell.StyleDefault.Reverse(true)
	if e.HasClass("active") {
		st = tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack)
	}
	n := drawText(r.screen, b.x0, b.y0, r.layout.cols, " "+e.Text()+" ", st)
	r.layout.buttons = append(r.layout.buttons, hotspot{
		box: cell{x0: b.x0, y0: b.y0, x1: b.x0 + n, y1: b.y0 + 1},
		id:  e.ID(),
	})
}

func (r *renderer) text(e *view.Element) {
	b := r.box(e.Rect())
	st := tcell.StyleDefault
	if c := color(e.Style("color")); c != tcell.ColorDefault {
		st = st.Foreground(c)
	}
	if e.HasClass("stat-value") || e.HasClass("game-overlay") {
		st = st.Bold(true)
	}
	for i, line := range strings.Split(e.Text(), "\n") {
		if b.y0+i >= r.layout.rows-footerRows {
			break
		}
		drawText(r.screen, b.x0, b.y0+i, r.layout.cols, line, st)
	}
}

func (r *renderer) shape(e *view.Element, tint tcell.Color) {
	var glyph rune
	for _, c := range e.Classes() {
		if g, ok := solid[c]; ok {
			glyph = g
			break
		}
	}
	if glyph == 0 {
		return
	}

	st := tcell.StyleDefault
	switch {
	case e.HasClass("hit") || e.HasClass("grabbed"):
		st = st.Foreground(tcell.ColorGreen)
	case e.HasClass("target-obj") || e.HasClass("tap-target"):
		st = st.Foreground(tcell.ColorRed)
	case tint != tcell.ColorDefault:
		st = st.Foreground(tint)
	}
	if c := color(e.Style("background-color")); c != tcell.ColorDefault {
		st = st.Foreground(c)
	}

	rect := e.Rect()
	if pct, ok := view.ParsePercent(e.Style("width")); ok {
		rect.W *= pct / 100
		if rect.W <= 0 {
			return
		}
	}
	if e.HasClass("kicked") {
		rect.X += rect.W * 4
	}

	if deg, ok := rotation(e.Style("transform")); ok && deg != 0 {
		r.limb(rect, deg, glyph, st)
		return
	}
	b := r.box(rect)
	for y := b.y0; y < b.y1; y++ {
		for x := b.x0; x < b.x1; x++ {
			r.screen.SetContent(x, y, glyph, nil, st)
		}
	}
}

// limb draws a segment hanging from the top center of rect, rotated deg
// degrees clockwise.
func (r *renderer) limb(rect view.Rect, deg float64, glyph rune, st tcell.Style) {
	rad := deg * math.Pi / 180
	dx, dy := -math.Sin(rad), math.Cos(rad)
	x0, y0 := rect.CenterX(), rect.Y
	steps := int(math.Max(rect.H*r.layout.scaleY, rect.H*r.layout.scaleX)) + 1
	for i := 0; i <= steps; i++ {
		t := rect.H * float64(i) / float64(steps)
		b := r.box(view.Rect{X: x0 + dx*t, Y: y0 + dy*t})
		if b.x0 < 0 || b.y0 < headerRows || b.x0 >= r.layout.cols || b.y0 >= r.layout.rows-footerRows {
			continue
		}
		r.screen.SetContent(b.x0, b.y0, glyph, nil, st)
	}
}

func rotation(transform string) (float64, bool) {
	m := rotateRe.FindStringSubmatch(transform)
	if m == nil {
		return 0, false
	}
	deg, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return deg, true
}

func color(css string) tcell.Color {
	if css == "" {
		return tcell.ColorDefault
	}
	if c, ok := cssColors[css]; ok {
		return c
	}
	return tcell.GetColor(css)
}
