package tui

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
)

const panicToast = "That screen hit an internal error and was closed (details in .diagroute/logs)"

// safeModel keeps a panic in a classify, suite or rules screen from tearing
// down the terminal. The panic is logged and the user is put back on the menu.
type safeModel struct {
	m   model
	log *slog.Logger
}

func wrapSafe(m model, log *slog.Logger) safeModel {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return safeModel{m: m, log: log}
}

func (s safeModel) Init() tea.Cmd {
	return s.m.Init()
}

func (s safeModel) Update(msg tea.Msg) (tm tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			s.logPanic("update", msg, r)
			s.m = s.m.recovered()
			tm, cmd = s, nil
		}
	}()

	inner, c := s.m.Update(msg)
	if mm, ok := inner.(model); ok {
		s.m = mm
	}
	return s, c
}

func (s safeModel) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			s.logPanic("view", nil, r)
			out = panicToast
		}
	}()
	return s.m.View()
}

func (s safeModel) logPanic(phase string, msg tea.Msg, r any) {
	attrs := []any{
		"phase", phase,
		"screen", s.m.scr.String(),
		"panic", fmt.Sprint(r),
		"stack", string(debug.Stack()),
	}
	if msg != nil {
		attrs = append(attrs, "event", fmt.Sprintf("%T", msg))
	}
	if s.m.runID != "" {
		attrs = append(attrs, "run_id", s.m.runID)
	}
	s.log.Error("tui.panic", attrs...)
}

// recovered drops whatever the failing screen held: the typed request, the
// classification on display and any suite run still in flight.
func (m model) recovered() model {
	m.scr = screenHome
	m.running = false
	m.runCh = nil
	m.explanation = nil
	m.run = nil
	m.runID = ""
	m.input.Reset()
	m.input.Blur()
	m.toast = panicToast
	return m
}

var _ tea.Model = safeModel{}
