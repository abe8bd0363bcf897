// Package ui is the terminal front end of the render panel: a bubbletea
// program whose Update goroutine doubles as the controller's loop.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/recera/graphpanel/pkg/components/panzoom"
	"github.com/recera/graphpanel/pkg/panel"
	"github.com/recera/graphpanel/pkg/renderservice"
	"github.com/recera/graphpanel/pkg/svgdoc"
)

// Rows reserved above and below the region
const (
	HeaderRows = 2
	FooterRows = 2
)

// Pan step in cells
const (
	panX = 4
	panY = 2
)

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	Submit  key.Binding
	Async   key.Binding
	Back    key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Left    key.Binding
	Right   key.Binding
	Up      key.Binding
	Down    key.Binding
	Fit     key.Binding
	Reset   key.Binding
	Again   key.Binding
	Quit    key.Binding
}

var DefaultKeyMap = KeyMap{
	Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "render")),
	Async:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle async")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "graphs")),
	ZoomIn:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
	Left:    key.NewBinding(key.WithKeys("left", "h")),
	Right:   key.NewBinding(key.WithKeys("right", "l")),
	Up:      key.NewBinding(key.WithKeys("up", "k")),
	Down:    key.NewBinding(key.WithKeys("down", "j")),
	Fit:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit")),
	Reset:   key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset")),
	Again:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "render again")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
}

type graphItem struct{ g renderservice.Graph }

func (i graphItem) Title() string       { return i.g.Label }
func (i graphItem) Description() string { return string(i.g.Ref) }
func (i graphItem) FilterValue() string { return i.g.Label }

// Model represents the TUI application state
type Model struct {
	ctx     context.Context
	ctrl    *panel.Controller
	surface *Surface
	keys    KeyMap

	width  int
	height int

	picking  bool
	async    bool
	rootNode string
	last     renderservice.Request

	list     list.Model
	spinner  spinner.Model
	region   viewport.Model
	revision int
	shown    *svgdoc.Image
}

// NewModel creates the model. ctrl must run on a ProgramLoop bound to the
// program running the model, or on a loop the caller drives.
func NewModel(ctx context.Context, ctrl *panel.Controller, surface *Surface, rootNode string) Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Graphs"
	l.SetShowHelp(false)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		surface:  surface,
		keys:     DefaultKeyMap,
		picking:  true,
		rootNode: rootNode,
		list:     l,
		spinner:  s,
		region:   viewport.New(0, 0),
	}
}

// Init loads the graph list on the loop and starts the spinner
func (m Model) Init() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg { return taskMsg{task: func() { ctrl.Init(ctx) }} },
	)
}

// Update handles incoming messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		body := max(msg.Height-HeaderRows-FooterRows, 0)
		m.surface.SetSize(msg.Width, msg.Height)
		m.list.SetSize(msg.Width, body)
		m.region.Width, m.region.Height = msg.Width, body
		m.ctrl.Resize()
		m.shown = nil
		m.sync()
		return m, nil

	case taskMsg:
		msg.task()
		m.sync()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && (!m.picking || m.list.FilterState() != list.Filtering) {
			m.ctrl.Close()
			return m, tea.Quit
		}
		if m.picking {
			return m.updatePicking(msg)
		}
		return m.updateViewing(msg)
	}
	return m, nil
}

func (m Model) updatePicking(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Submit):
			item, ok := m.list.SelectedItem().(graphItem)
			if !ok {
				return m, nil
			}
			m.last = renderservice.Request{Graph: item.g.Ref, RootNode: m.rootNode}
			m.picking = false
			m.ctrl.Submit(m.last, m.async)
			m.sync()
			return m, nil
		case key.Matches(msg, m.keys.Async):
			m.async = !m.async
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateViewing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vp := m.ctrl.Viewport()
	switch {
	case key.Matches(msg, m.keys.Back):
		m.picking = true
		return m, nil
	case key.Matches(msg, m.keys.Again):
		m.ctrl.Submit(m.last, m.async)
		m.sync()
		return m, nil
	case key.Matches(msg, m.keys.Async):
		m.async = !m.async
		return m, nil
	case vp == nil:
	case key.Matches(msg, m.keys.ZoomIn):
		vp.ZoomIn()
		return m, nil
	case key.Matches(msg, m.keys.ZoomOut):
		vp.ZoomOut()
		return m, nil
	case key.Matches(msg, m.keys.Left):
		vp.PanBy(panX, 0)
		return m, nil
	case key.Matches(msg, m.keys.Right):
		vp.PanBy(-panX, 0)
		return m, nil
	case key.Matches(msg, m.keys.Up):
		vp.PanBy(0, panY)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		vp.PanBy(0, -panY)
		return m, nil
	case key.Matches(msg, m.keys.Fit):
		vp.Fit()
		vp.Center()
		return m, nil
	case key.Matches(msg, m.keys.Reset):
		vp.Reset()
		return m, nil
	}
	var cmd tea.Cmd
	m.region, cmd = m.region.Update(msg)
	return m, cmd
}

// sync copies what the controller drew on the surface into the widgets
func (m *Model) sync() {
	if graphs, rev := m.surface.Graphs(); rev != m.revision {
		m.revision = rev
		items := make([]list.Item, len(graphs))
		for i, g := range graphs {
			items[i] = graphItem{g: g}
		}
		m.list.SetItems(items)
	}
	img := m.surface.Image()
	if img == m.shown {
		return
	}
	m.shown = img
	if img == nil {
		m.region.SetContent("")
		return
	}
	m.region.SetContent(lipgloss.NewStyle().Width(max(m.region.Width, 1)).Render(img.Markup))
	m.region.GotoTop()
}

// View renders the program's UI
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.body())
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) header() string {
	mode := "sync"
	if m.async {
		mode = "async"
	}
	st := m.ctrl.Status().Get()
	line := titleStyle.Render("graphpanel") + mutedStyle.Render(fmt.Sprintf("  %s  %s", mode, st.Phase))
	if st.Request.Graph != "" {
		line += mutedStyle.Render("  " + string(st.Request.Graph))
	}
	return line + "\n"
}

func (m Model) body() string {
	if m.picking {
		return m.list.View()
	}
	st := m.ctrl.Status().Get()
	switch {
	case m.surface.Busy() && st.Phase == panel.PhasePolling:
		return messageStyle.Render(fmt.Sprintf("%s Rendering, poll %d in %s", m.spinner.View(), st.Attempt, st.Delay))
	case m.surface.Busy(), st.Phase == panel.PhaseLoading:
		return messageStyle.Render(m.spinner.View() + " Rendering")
	case m.surface.Message() != "":
		return messageStyle.Render(errorStyle.Render(m.surface.Message()))
	case m.shown != nil:
		return m.region.View()
	}
	return ""
}

func (m Model) footer() string {
	var parts []string
	if h, ok := m.ctrl.Viewport().(*panzoom.Headless); ok {
		parts = append(parts, fmt.Sprintf("zoom %.2f", h.Zoom()), "viewBox "+h.View().ViewBox())
	}
	if m.picking {
		parts = append(parts, "enter render", "a async", "/ filter", "q quit")
	} else {
		parts = append(parts, "+/- zoom", "arrows pan", "f fit", "r again", "esc graphs", "q quit")
	}
	return helpStyle.Render(strings.Join(parts, "  ·  "))
}
