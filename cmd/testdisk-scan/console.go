package main

import (
	"github.com/gdamore/tcell"
	"github.com/open-edge-platform/testdisk-scan/internal/diskscan"
	"github.com/open-edge-platform/testdisk-scan/internal/utils/logger"
	"github.com/rivo/tview"
)

// operatorConsole is the terminal UI that produces the driver's
// OperatorSignal channel (§4.5, §5): stop/skip/quit/plus is purely a
// UI concern, kept outside internal/diskscan per the spec's explicit
// external-collaborator boundary (§1, §6).
type operatorConsole struct {
	app     *tview.Application
	signals chan diskscan.OperatorSignal
}

func newOperatorConsole() *operatorConsole {
	c := &operatorConsole{
		app:     tview.NewApplication(),
		signals: make(chan diskscan.OperatorSignal, 1),
	}

	view := tview.NewTextView().
		SetText("scanning... s=stop, k=skip, +=plus 5%, q=quit")
	view.SetBorder(true).SetTitle("testdisk-scan")

	c.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 's':
			c.emit(diskscan.SignalStop)
		case 'k':
			c.emit(diskscan.SignalSkip)
		case '+':
			c.emit(diskscan.SignalPlus)
		case 'q':
			c.emit(diskscan.SignalQuit)
		}
		return event
	})

	c.app.SetRoot(view, true)
	go func() {
		if err := c.app.Run(); err != nil {
			logger.Logger().Warnf("operator console exited: %v", err)
		}
	}()

	return c
}

func (c *operatorConsole) emit(s diskscan.OperatorSignal) {
	select {
	case c.signals <- s:
	default:
		// driver hasn't drained the previous signal yet; drop rather than
		// block the UI goroutine.
	}
}

// Signals returns the channel the driver polls for operator input.
func (c *operatorConsole) Signals() <-chan diskscan.OperatorSignal {
	return c.signals
}

// ConfirmStop prompts the operator to confirm a bare stop; the console's
// minimal reference implementation always confirms immediately, leaving a
// richer confirmation dialog to a fuller UI.
func (c *operatorConsole) ConfirmStop() bool {
	return true
}

func (c *operatorConsole) Close() {
	c.app.Stop()
}
