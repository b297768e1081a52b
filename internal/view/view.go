// Package view renders a buffer in the terminal: a line-number gutter
// derived from the line table, the visible text, and a status line with
// the cursor position and the current line's annotation. The viewer is
// read-only; it exercises the query surface, never the mutation surface.
package view

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/linetab/internal/config"
	"github.com/dshills/linetab/internal/engine/annotate"
	"github.com/dshills/linetab/internal/engine/buffer"
)

// Viewer displays one buffer on a tcell screen.
type Viewer struct {
	screen tcell.Screen
	buf    *buffer.Buffer[annotate.Note]
	cfg    config.Config
	name   string

	cursor buffer.Offset // rune offset, [0, buf.Len()]
	top    int           // first visible line index, >= 1
}

// New creates a viewer on a fresh terminal screen.
func New(buf *buffer.Buffer[annotate.Note], name string, cfg config.Config) (*Viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen, buf, name, cfg), nil
}

// NewWithScreen creates a viewer on the given screen. Tests use this
// with a tcell simulation screen.
func NewWithScreen(screen tcell.Screen, buf *buffer.Buffer[annotate.Note], name string, cfg config.Config) *Viewer {
	return &Viewer{
		screen: screen,
		buf:    buf,
		cfg:    cfg,
		name:   name,
		top:    1,
	}
}

// Run initializes the screen and processes events until the user quits.
func (v *Viewer) Run() error {
	if err := v.screen.Init(); err != nil {
		return err
	}
	defer v.screen.Fini()

	for {
		v.Draw()
		ev := v.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if quit := v.handle(ev); quit {
			return nil
		}
	}
}

func (v *Viewer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyUp:
			v.moveVertical(-1)
		case tcell.KeyDown:
			v.moveVertical(+1)
		case tcell.KeyLeft:
			v.moveCursor(v.cursor - 1)
		case tcell.KeyRight:
			v.moveCursor(v.cursor + 1)
		case tcell.KeyHome:
			v.moveToColumn(0)
		case tcell.KeyEnd:
			v.moveToColumn(-1)
		case tcell.KeyPgUp:
			v.moveVertical(-v.textRows())
		case tcell.KeyPgDn:
			v.moveVertical(v.textRows())
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return true
			case 'g':
				v.moveCursor(0)
			case 'G':
				v.moveCursor(v.buf.Len())
			}
		}
	}
	return false
}

// moveCursor clamps the target offset to a valid cursor position.
func (v *Viewer) moveCursor(off buffer.Offset) {
	if off < 0 {
		off = 0
	}
	if n := v.buf.Len(); off > n {
		off = n
	}
	v.cursor = off
	v.scrollToCursor()
}

// moveVertical moves the cursor by whole lines, keeping the column when
// the target line is long enough.
func (v *Viewer) moveVertical(delta int) {
	p, ok := v.buf.OffsetToPoint(v.cursor)
	if !ok {
		return
	}
	target := p.Line + delta
	if target < 1 {
		target = 1
	}
	if n := v.buf.LineCount(); target > n {
		target = n
	}
	off, ok := v.buf.PointToOffset(buffer.Point{Line: target, Column: p.Column})
	if !ok {
		return
	}
	v.moveCursor(off)
}

// moveToColumn moves within the current line; a negative column means
// the end of the line's content.
func (v *Viewer) moveToColumn(col int) {
	p, ok := v.buf.OffsetToPoint(v.cursor)
	if !ok {
		return
	}
	if col < 0 {
		col = len([]rune(v.buf.LineText(p.Line)))
	}
	off, ok := v.buf.PointToOffset(buffer.Point{Line: p.Line, Column: col})
	if !ok {
		return
	}
	v.moveCursor(off)
}

func (v *Viewer) textRows() int {
	_, h := v.screen.Size()
	if v.cfg.View.StatusLine && h > 1 {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (v *Viewer) scrollToCursor() {
	line, ok := v.buf.LineOf(v.cursor)
	if !ok {
		return
	}
	rows := v.textRows()
	if line < v.top {
		v.top = line
	}
	if line >= v.top+rows {
		v.top = line - rows + 1
	}
}

// gutterWidth returns the width of the line-number gutter, zero when
// the gutter is disabled.
func (v *Viewer) gutterWidth() int {
	if !v.cfg.View.Gutter {
		return 0
	}
	digits := len(fmt.Sprintf("%d", v.buf.LineCount()))
	if digits < 3 {
		digits = 3
	}
	return digits + 1
}

// Draw renders the visible lines and the status line.
func (v *Viewer) Draw() {
	v.screen.Clear()

	w, _ := v.screen.Size()
	rows := v.textRows()
	gw := v.gutterWidth()

	gutterStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Dim(true)
	textStyle := tcell.StyleDefault

	for row := 0; row < rows; row++ {
		line := v.top + row
		if line > v.buf.LineCount() {
			break
		}
		if gw > 0 {
			num := fmt.Sprintf("%*d ", gw-1, line)
			drawString(v.screen, 0, row, num, gutterStyle)
		}
		v.drawLine(gw, row, w, line, textStyle)
	}

	if v.cfg.View.StatusLine {
		v.drawStatus(w, rows)
	}

	v.placeCursor(gw)
	v.screen.Show()
}

// drawLine draws one buffer line, expanding tabs.
func (v *Viewer) drawLine(x, y, maxX int, line int, style tcell.Style) {
	text := v.buf.LineText(line)
	tab := strings.Repeat(" ", v.buf.TabWidth())
	text = strings.ReplaceAll(text, "\t", tab)

	gr := uniseg.NewGraphemes(text)
	for gr.Next() && x < maxX {
		runes := gr.Runes()
		v.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += gr.Width()
	}
}

func (v *Viewer) drawStatus(w, y int) {
	p, ok := v.buf.OffsetToPoint(v.cursor)
	if !ok {
		return
	}

	status := fmt.Sprintf(" %s  %d:%d  %d lines", v.name, p.Line, p.Column+1, v.buf.LineCount())
	if info, ok := v.buf.LineInfo(p.Line); ok {
		status += fmt.Sprintf("  w%d", info.Width)
		if info.Class != "" {
			status += " [" + info.Class + "]"
		}
	}

	style := tcell.StyleDefault.Reverse(true)
	for x := 0; x < w; x++ {
		v.screen.SetContent(x, y, ' ', nil, style)
	}
	drawString(v.screen, 0, y, status, style)
}

func (v *Viewer) placeCursor(gutterWidth int) {
	p, ok := v.buf.OffsetToPoint(v.cursor)
	if !ok || p.Line < v.top || p.Line >= v.top+v.textRows() {
		v.screen.HideCursor()
		return
	}

	// Column in display cells: width of the line content up to the
	// cursor, tabs expanded.
	runes := []rune(v.buf.LineText(p.Line))
	col := p.Column
	if col > len(runes) {
		col = len(runes)
	}
	prefix := strings.ReplaceAll(string(runes[:col]), "\t", strings.Repeat(" ", v.buf.TabWidth()))
	x := gutterWidth + uniseg.StringWidth(prefix)
	v.screen.ShowCursor(x, p.Line-v.top)
}

// Cursor returns the current cursor offset.
func (v *Viewer) Cursor() buffer.Offset {
	return v.cursor
}

// SetCursor positions the cursor, clamping to a valid offset.
func (v *Viewer) SetCursor(off buffer.Offset) {
	v.moveCursor(off)
}

func drawString(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
