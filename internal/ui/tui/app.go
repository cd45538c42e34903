package tui

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aalvaropc/diagroute/internal/domain"
)

type screen int

const (
	screenHome screen = iota
	screenClassify
	screenSuites
	screenSuiteResult
	screenRules
)

func (s screen) String() string {
	switch s {
	case screenHome:
		return "home"
	case screenClassify:
		return "classify"
	case screenSuites:
		return "suites"
	case screenSuiteResult:
		return "suite_result"
	case screenRules:
		return "rules"
	}
	return "unknown"
}

type menuItem struct {
	title string
	desc  string
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.desc }
func (m menuItem) FilterValue() string { return m.title }

type suiteItem struct {
	ref domain.SuiteRef
	rel string
}

func (s suiteItem) Title() string       { return s.ref.Name }
func (s suiteItem) Description() string { return s.rel }
func (s suiteItem) FilterValue() string { return s.ref.Name }

type model struct {
	theme Theme
	deps  Deps

	scr    screen
	menu   list.Model
	suites list.Model
	input  textinput.Model
	width  int

	workspaceFound bool
	workspaceRoot  string
	cwd            string

	running bool
	toast   string

	explanation *domain.Explanation
	run         *domain.SuiteRun
	runID       string
	runCh       chan suiteRunDoneMsg
}

func Run(deps Deps) error {
	m := newModel(deps)
	p := tea.NewProgram(wrapSafe(m, deps.Logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(deps Deps) model {
	t := DefaultTheme()

	items := []list.Item{
		menuItem{"Classify", "Route a request to a diagram tool and see the rule trace"},
		menuItem{"Suites", "Run a regression suite from the workspace"},
		menuItem{"Rules", "Priority order of the classification rules"},
		menuItem{"Init workspace", "Create diagroute.yaml, rulebook and a sample suite here"},
		menuItem{"Quit", "Exit diagroute"},
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "diagroute"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	sl := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	sl.Title = "Suites"
	sl.SetShowStatusBar(false)
	sl.SetShowHelp(false)

	in := textinput.New()
	in.Placeholder = "e.g. Graph y = 2x + 1 and mark the points (0, 1) and (1, 3)"
	in.CharLimit = 2000
	in.Prompt = "› "

	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	return model{
		theme:  t,
		deps:   deps,
		scr:    screenHome,
		menu:   l,
		suites: sl,
		input:  in,
	}
}

func (m model) Init() tea.Cmd { return cmdRefreshWorkspace(m.deps) }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w, h := msg.Width, msg.Height
		m.width = w
		m.menu.SetSize(w-4, h-10)
		m.suites.SetSize(w-4, h-10)
		m.input.Width = max(w-12, 20)
		return m, nil

	case workspaceRefreshedMsg:
		m.cwd = msg.cwd
		m.workspaceFound = msg.found
		m.workspaceRoot = msg.root
		return m, nil

	case initWorkspaceDoneMsg:
		m.running = false
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			m.deps.Logger.Error("init.failed", "root", msg.root, "err", msg.err)
			return m, nil
		}
		m.toast = "Workspace ready in " + msg.root
		return m, cmdRefreshWorkspace(m.deps)

	case classifyDoneMsg:
		m.running = false
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			m.explanation = nil
			return m, nil
		}
		m.toast = ""
		ex := msg.ex
		m.explanation = &ex
		return m, nil

	case suitesLoadedMsg:
		m.running = false
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			m.suites.SetItems(nil)
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.refs))
		for _, r := range msg.refs {
			rel, err := filepath.Rel(msg.root, r.Path)
			if err != nil {
				rel = r.Path
			}
			items = append(items, suiteItem{ref: r, rel: rel})
		}
		m.suites.SetItems(items)
		return m, nil

	case suiteRunDoneMsg:
		m.running = false
		m.runCh = nil
		if msg.err != nil {
			m.toast = userMessage(msg.err)
		} else {
			m.toast = ""
		}
		run := msg.run
		m.run = &run
		m.runID = msg.id
		m.scr = screenSuiteResult
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.scr {
		case screenHome:
			return m.updateHome(msg)
		case screenClassify:
			return m.updateClassify(msg)
		case screenSuites:
			return m.updateSuites(msg)
		case screenSuiteResult, screenRules:
			switch msg.String() {
			case "esc", "b", "q":
				if m.scr == screenSuiteResult {
					m.scr = screenSuites
				} else {
					m.scr = screenHome
				}
				return m, nil
			}
			return m, nil
		}
	}

	return m.forward(msg)
}

func (m model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.menu.FilterState() == list.Filtering {
		return m.forward(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter":
		it, ok := m.menu.SelectedItem().(menuItem)
		if !ok {
			return m, nil
		}
		m.toast = ""
		switch it.title {
		case "Quit":
			return m, tea.Quit
		case "Classify":
			m.scr = screenClassify
			return m, m.input.Focus()
		case "Suites":
			if !m.workspaceFound {
				m.toast = "No workspace found (use Init workspace)"
				return m, nil
			}
			m.scr = screenSuites
			m.running = true
			return m, cmdLoadSuites(m.workspaceRoot)
		case "Rules":
			m.scr = screenRules
			return m, nil
		case "Init workspace":
			if m.running {
				return m, nil
			}
			root := m.cwd
			if root == "" {
				wd, err := os.Getwd()
				if err != nil {
					m.toast = userMessage(err)
					return m, nil
				}
				root = wd
			}
			m.running = true
			return m, cmdInitWorkspaceHere(m.deps, root)
		}
	}
	return m.forward(msg)
}

func (m model) updateClassify(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.scr = screenHome
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.running {
			return m, nil
		}
		m.running = true
		return m, cmdClassify(m.deps.Classifier, text, m.deps.Logger)
	}
	return m.forward(msg)
}

func (m model) updateSuites(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.suites.FilterState() == list.Filtering {
		return m.forward(msg)
	}

	switch msg.String() {
	case "esc", "b", "q":
		if m.running {
			return m, nil
		}
		m.scr = screenHome
		return m, nil
	case "r":
		m.running = true
		return m, cmdLoadSuites(m.workspaceRoot)
	case "enter":
		if m.running {
			return m, nil
		}
		it, ok := m.suites.SelectedItem().(suiteItem)
		if !ok {
			return m, nil
		}
		m.running = true
		ch, cmd := startSuiteRunAsync(m.workspaceRoot, it.ref.Path, m.deps.Classifier, m.deps.Logger, m.deps.Debug)
		m.runCh = ch
		return m, cmd
	}
	return m.forward(msg)
}

// forward hands msg to the component owning the current screen.
func (m model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.scr {
	case screenHome:
		m.menu, cmd = m.menu.Update(msg)
	case screenClassify:
		m.input, cmd = m.input.Update(msg)
	case screenSuites:
		m.suites, cmd = m.suites.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)
	header := m.theme.Title.Render("diagroute") + "\n" +
		m.theme.Subtitle.Render("Route maths visualization requests to the right diagram tool") + "\n"

	var workspaceBanner string
	if m.workspaceFound {
		workspaceBanner = m.theme.Help.Render(fmt.Sprintf("Workspace: %s", m.workspaceRoot))
	} else {
		workspaceBanner = m.theme.Help.Render("No workspace (embedded rulebook). Init workspace to create one.")
	}

	toast := ""
	if m.toast != "" {
		toast = "\n" + m.theme.Toast.Render(m.toast)
	}
	top := header + "\n" + workspaceBanner + toast + "\n\n"
	width := max(m.width-12, 40)

	switch m.scr {
	case screenHome:
		help := m.theme.Help.Render("↑/↓ navigate • enter open • / search • q quit")
		return wrap.Render(top + m.theme.Card.Render(m.menu.View()) + "\n" + help)

	case screenClassify:
		body := m.theme.Title.Render("Classify") + "\n\n" + m.input.View() + "\n\n"
		switch {
		case m.running:
			body += m.theme.Subtitle.Render("classifying…")
		case m.explanation != nil:
			body += renderClassification(m.explanation.Classification) + "\n" +
				m.theme.Subtitle.Render("Rules") + "\n" + renderTrace(m.explanation.Trace, width)
		}
		help := m.theme.Help.Render("enter classify • esc back")
		return wrap.Render(top + m.theme.Card.Render(body) + "\n" + help)

	case screenSuites:
		body := m.suites.View()
		if m.running {
			body += "\n" + m.theme.Subtitle.Render("working…")
		} else if len(m.suites.Items()) == 0 {
			body += "\n(no suites found)"
		}
		help := m.theme.Help.Render("enter run • r reload • / search • esc back")
		return wrap.Render(top + m.theme.Card.Render(body) + "\n" + help)

	case screenSuiteResult:
		body := m.theme.Title.Render("Run")
		if m.run != nil {
			body += " " + m.run.SuiteName
			if m.runID != "" {
				body += m.theme.Subtitle.Render("  (" + m.runID + ")")
			}
			body += "\n\n" + renderRunDetails(*m.run, m.theme, width)
		}
		help := m.theme.Help.Render("esc/b back")
		return wrap.Render(top + m.theme.Card.Render(body) + "\n" + help)

	case screenRules:
		body := m.theme.Title.Render("Rules") + "\n\n" + renderRules()
		help := m.theme.Help.Render("esc/b back")
		return wrap.Render(top + m.theme.Card.Render(body) + "\n" + help)

	default:
		return wrap.Render(header + "\n" + "unknown state")
	}
}
