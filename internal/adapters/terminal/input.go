package terminal

import (
	"context"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/okian/rehabsim/internal/domain/balancewalk"
	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/internal/domain/reachgrab"
	"github.com/okian/rehabsim/internal/domain/reactiontap"
	"github.com/okian/rehabsim/pkg/logger"
)

// buttonKinds maps button ids to the command they send, per widget.
var buttonKinds = map[model.Widget]map[string]model.Kind{
	model.BalanceWalk: {
		balancewalk.IDBtnRestart:  model.KindRestart,
		balancewalk.IDBtnSlowMo:   model.KindSlowMo,
		balancewalk.IDBtnInsights: model.KindInsights,
	},
	model.ReachGrab: {
		reachgrab.IDBtnRestart: model.KindRestart,
		reachgrab.IDBtnSlowMo:  model.KindSlowMo,
	},
	model.ReactionTap: {
		reactiontap.IDBtnStart:   model.KindStart,
		reactiontap.IDBtnRestart: model.KindRestart,
		reactiontap.IDBtnSpeed:   model.KindSpeed,
	},
}

// Handle turns one terminal event into commands. It reports whether the user
// asked to quit.
func (h *Host) Handle(ctx context.Context, ev tcell.Event) bool {
	l := h.layout.Load()
	if l == nil {
		l = &layout{widget: model.BalanceWalk}
	}

	switch ev := ev.(type) {
	case *tcell.EventKey:
		w := l.widget
		if h.focus != "" {
			w = h.focus
		}
		return h.key(ctx, w, ev)
	case *tcell.EventMouse:
		h.mouse(ctx, l, ev)
	case *tcell.EventResize:
		h.screen.Sync()
		h.Frame(ctx)
	}
	return false
}

func (h *Host) key(ctx context.Context, w model.Widget, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyTab:
		h.setFocus(ctx, next(w, 1))
		return false
	case tcell.KeyBacktab:
		h.setFocus(ctx, next(w, -1))
		return false
	case tcell.KeyEnter:
		h.send(ctx, model.Command{Widget: w, Kind: model.KindStart})
		return false
	case tcell.KeyRune:
	default:
		return false
	}

	switch r := ev.Rune(); r {
	case 'q', 'Q':
		return true
	case ' ':
		h.send(ctx, model.Command{Widget: w, Kind: model.KindStart})
	case 'r', 'R':
		h.send(ctx, model.Command{Widget: w, Kind: model.KindRestart})
	case 's', 'S':
		kind := model.KindSlowMo
		if w == model.ReactionTap {
			kind = model.KindSpeed
		}
		h.send(ctx, model.Command{Widget: w, Kind: kind})
	case 'i', 'I':
		h.send(ctx, model.Command{Widget: w, Kind: model.KindInsights})
	case '1', '2', '3':
		if i := int(r - '1'); i < len(h.levels) {
			h.send(ctx, model.Command{Widget: model.ReachGrab, Kind: model.KindDifficulty, Level: h.levels[i]})
		}
	}
	return false
}

// mouse acts on button presses only; releases and drags are ignored.
func (h *Host) mouse(ctx context.Context, l *layout, ev *tcell.EventMouse) {
	pressed := ev.Buttons()&tcell.Button1 != 0 && h.buttons&tcell.Button1 == 0
	h.buttons = ev.Buttons()
	if !pressed {
		return
	}

	x, y := ev.Position()
	if y < headerRows {
		if w, ok := tabAt(x); ok {
			h.setFocus(ctx, w)
		}
		return
	}
	if id := l.button(x, y); id != "" {
		if cmd, ok := buttonCommand(l.widget, id); ok {
			h.send(ctx, cmd)
		}
		return
	}

	px, py, ok := l.toPage(x, y)
	if !ok {
		return
	}
	switch l.widget {
	case model.ReachGrab:
		h.send(ctx, model.Command{Widget: model.ReachGrab, Kind: model.KindReach, X: px, Y: py})
	case model.ReactionTap:
		h.send(ctx, model.Command{Widget: model.ReactionTap, Kind: model.KindTap, X: px, Y: py})
	}
}

func buttonCommand(w model.Widget, id string) (model.Command, bool) {
	if w == model.ReachGrab {
		if level, ok := strings.CutPrefix(id, reachgrab.DifficultyButtonID("")); ok {
			return model.Command{Widget: w, Kind: model.KindDifficulty, Level: level}, true
		}
	}
	kind, ok := buttonKinds[w][id]
	if !ok {
		return model.Command{}, false
	}
	return model.Command{Widget: w, Kind: kind}, true
}

// tabAt returns the widget whose header tab covers column x.
func tabAt(x int) (model.Widget, bool) {
	start := 0
	for _, w := range model.Widgets {
		end := start + len([]rune(tabTitles[w])) + 2
		if x >= start && x < end {
			return w, true
		}
		start = end + 1
	}
	return "", false
}

// setFocus switches the shown widget. Keys pressed before the next frame
// already go to w.
func (h *Host) setFocus(ctx context.Context, w model.Widget) {
	h.focus = w
	h.send(ctx, model.Command{Widget: w, Kind: model.KindFocus})
}

func next(w model.Widget, step int) model.Widget {
	n := len(model.Widgets)
	for i, x := range model.Widgets {
		if x == w {
			return model.Widgets[((i+step)%n+n)%n]
		}
	}
	return model.Widgets[0]
}

func (h *Host) send(ctx context.Context, cmd model.Command) { //nolint:gocritic // hugeParam: Command is passed by value for channel semantics
	if err := h.svc.Submit(ctx, cmd); err != nil {
		h.logger.Warn(ctx, "input dropped",
			logger.String("widget", string(cmd.Widget)),
			logger.String("kind", string(cmd.Kind)),
			logger.Error(err),
		)
	}
}
