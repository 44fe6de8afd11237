package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/abelbrown/minescope/internal/model"
	"github.com/abelbrown/minescope/internal/otel"
	"github.com/abelbrown/minescope/internal/state"
	"github.com/abelbrown/minescope/internal/ui/listview"
)

// Options configures an App. Every field is optional.
type Options struct {
	RowHeight int              // article row height in lines; 0 means 5
	Events    *otel.Logger     // receives ui.key and ui.tab events
	Ring      *otel.RingBuffer // feeds the debug overlay
	Debug     bool             // start with the debug overlay open
	Now       func() time.Time // clock for "updated ..." in the status bar
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold the state store. It receives snapshots via
// messages and starts work through Commands.
type App struct {
	cmds   Commands
	events *otel.Logger
	ring   *otel.RingBuffer
	now    func() time.Time

	snap    state.Snapshot
	tab     state.Tab
	list    listview.Model
	coll    listview.Model
	starred map[model.ArticleID]bool

	search    textinput.Model
	searching bool
	query     string

	spinner spinner.Model
	pending int
	help    help.Model

	md         *glamour.TermRenderer
	mdWidth    int
	showDetail bool
	showDebug  bool
	showHelp   bool

	vizRequested  bool
	feedRequested bool

	width  int
	height int
	ready  bool
}

// NewApp creates an App driven by cmds.
func NewApp(cmds Commands, opts Options) App {
	rowHeight := opts.RowHeight
	if rowHeight <= 0 {
		rowHeight = 5
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	ti := textinput.New()
	ti.Placeholder = "Search articles..."
	ti.Prompt = SearchPrompt.Render("/ ")
	ti.CharLimit = 256

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SearchPrompt

	return App{
		cmds:      cmds,
		events:    opts.Events,
		ring:      opts.Ring,
		now:       now,
		list:      listview.New(rowHeight),
		coll:      listview.New(rowHeight),
		starred:   map[model.ArticleID]bool{},
		search:    ti,
		spinner:   s,
		help:      help.New(),
		showDebug: opts.Debug,
	}
}

// Init starts the spinner and the initial fetches.
func (a App) Init() tea.Cmd {
	var cmds []tea.Cmd
	cmds = append(cmds, a.spinner.Tick)
	if a.cmds.Mount != nil {
		cmds = append(cmds, a.cmds.Mount())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() && a.events != nil {
		if _, tick := msg.(spinner.TickMsg); !tick {
			a.events.Emit(otel.Event{Kind: otel.KindMsgReceived, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.search.Width = msg.Width - 6
		a.help.Width = msg.Width
		if a.mdWidth != msg.Width {
			a.md = newMarkdownRenderer(msg.Width)
			a.mdWidth = msg.Width
		}
		a = a.resize()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case StateChanged:
		a = a.apply(msg.Snap)
		return a, nil

	case OpDone:
		if a.pending > 0 {
			a.pending--
		}
		a = a.apply(msg.Snap)
		return a, nil

	case OpEvent:
		if a.cmds.Snapshot != nil {
			return a, a.cmds.Snapshot()
		}
		return a, nil

	case tea.KeyMsg:
		if a.searching {
			return a.handleSearchKey(msg)
		}
		return a.handleKeyMsg(msg)
	}

	return a, nil
}

// apply replaces the rendered state with snap.
func (a App) apply(snap state.Snapshot) App {
	a.snap = snap
	a.list = a.list.SetTotal(len(snap.Filtered))
	a.coll = a.coll.SetTotal(len(snap.Collection))
	a.starred = make(map[model.ArticleID]bool, len(snap.Collection))
	for _, c := range snap.Collection {
		a.starred[c.ID] = true
	}
	if a.ready {
		a = a.resize()
	}
	return a
}

// resize recomputes the list viewports from the window size.
func (a App) resize() App {
	h := a.contentHeight()
	a.list = a.list.SetSize(a.width, h)
	a.coll = a.coll.SetSize(a.width, h-2)
	return a
}

// contentHeight is the height left for the active tab: the window minus
// header, tabs, search line, banner and status bar.
func (a App) contentHeight() int {
	h := a.height - 4
	if a.snap.Error != "" {
		h--
	}
	if a.snap.Notice != "" {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

// run starts an operation command and counts it as pending.
func (a App) run(cmd tea.Cmd) (App, tea.Cmd) {
	if cmd == nil {
		return a, nil
	}
	a.pending++
	return a, cmd
}

func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		a.searching = false
		a.search.Blur()
		a.query = a.search.Value()
		a.showDetail = false
		a.list = a.list.Top()
		if a.cmds.Search != nil {
			return a.run(a.cmds.Search(a.query))
		}
		return a, nil
	case tea.KeyEsc:
		a.searching = false
		a.search.Blur()
		a.search.SetValue(a.query)
		return a, nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	return a, cmd
}

// handleKeyMsg processes keyboard input outside the search box.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.events != nil {
		a.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Comp: "ui", Msg: msg.String()})
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, keys.Debug):
		a.showDebug = !a.showDebug
		return a, nil

	case key.Matches(msg, keys.Help):
		a.showHelp = !a.showHelp
		a.help.ShowAll = a.showHelp
		return a, nil

	case key.Matches(msg, keys.Escape):
		a.showDetail = false
		a.showDebug = false
		a.showHelp = false
		a.help.ShowAll = false
		return a, nil

	case key.Matches(msg, keys.Search):
		a.searching = true
		a = a.switchTabLocal(state.TabArticles)
		focus := a.search.Focus()
		return a, tea.Batch(focus, a.tabCmd(state.TabArticles))

	case key.Matches(msg, keys.NextTab):
		return a.switchTab(state.Tab((int(a.tab) + 1) % len(state.Tabs)))

	case key.Matches(msg, keys.PrevTab):
		return a.switchTab(state.Tab((int(a.tab) + len(state.Tabs) - 1) % len(state.Tabs)))

	case key.Matches(msg, keys.JumpToTab):
		if len(msg.Runes) == 0 {
			return a, nil
		}
		n := int(msg.Runes[0] - '1')
		if n >= 0 && n < len(state.Tabs) {
			return a.switchTab(state.Tabs[n])
		}
		return a, nil

	case key.Matches(msg, keys.Down):
		a = a.move(func(m listview.Model) listview.Model { return m.Down() })
		return a, nil

	case key.Matches(msg, keys.Up):
		a = a.move(func(m listview.Model) listview.Model { return m.Up() })
		return a, nil

	case key.Matches(msg, keys.Top):
		a = a.move(func(m listview.Model) listview.Model { return m.Top() })
		return a, nil

	case key.Matches(msg, keys.Bottom):
		a = a.move(func(m listview.Model) listview.Model { return m.Bottom() })
		return a, nil

	case key.Matches(msg, keys.Detail):
		if a.tab == state.TabArticles && len(a.snap.Filtered) > 0 {
			a.showDetail = !a.showDetail
		}
		return a, nil

	case key.Matches(msg, keys.Star):
		if art, ok := a.selectedArticle(); ok && a.cmds.Add != nil {
			return a.run(a.cmds.Add(art))
		}
		return a, nil

	case key.Matches(msg, keys.Remove):
		if a.tab == state.TabCollection && a.cmds.Remove != nil {
			if i := a.coll.Cursor(); i < len(a.snap.Collection) {
				return a.run(a.cmds.Remove(a.snap.Collection[i].ID))
			}
		}
		return a, nil

	case key.Matches(msg, keys.Refresh):
		return a.refresh()

	case key.Matches(msg, keys.Status):
		if a.cmds.CheckStatus != nil {
			return a.run(a.cmds.CheckStatus())
		}
		return a, nil

	case key.Matches(msg, keys.Populate):
		if a.cmds.Populate != nil {
			return a.run(a.cmds.Populate())
		}
		return a, nil

	case key.Matches(msg, keys.Ingest):
		if a.cmds.Ingest != nil {
			return a.run(a.cmds.Ingest())
		}
		return a, nil
	}

	return a, nil
}

// move applies fn to the cursor of the active tab's list.
func (a App) move(fn func(listview.Model) listview.Model) App {
	switch a.tab {
	case state.TabArticles:
		a.list = fn(a.list)
	case state.TabCollection:
		a.coll = fn(a.coll)
	}
	return a
}

// selectedArticle is the article under the cursor on the Articles tab.
func (a App) selectedArticle() (model.Article, bool) {
	if a.tab != state.TabArticles {
		return model.Article{}, false
	}
	i := a.list.Cursor()
	if i < 0 || i >= len(a.snap.Filtered) {
		return model.Article{}, false
	}
	return a.snap.Filtered[i], true
}

// refresh reloads whatever the active tab shows.
func (a App) refresh() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.tab {
	case state.TabVisualization, state.TabInsights:
		if a.cmds.LoadVisualization != nil {
			cmd = a.cmds.LoadVisualization()
		}
	case state.TabRecommendations:
		if a.cmds.LoadFeed != nil {
			cmd = a.cmds.LoadFeed()
		}
	default:
		if a.query != "" && a.cmds.Search != nil {
			cmd = a.cmds.Search(a.query)
		} else if a.cmds.Refresh != nil {
			cmd = a.cmds.Refresh()
		}
	}
	return a.run(cmd)
}

func (a App) switchTabLocal(t state.Tab) App {
	if t != a.tab {
		a.showDetail = false
	}
	a.tab = t
	if a.events != nil {
		a.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindTab, Comp: "ui", Msg: t.String()})
	}
	return a
}

func (a App) tabCmd(t state.Tab) tea.Cmd {
	if a.cmds.SetTab == nil {
		return nil
	}
	return a.cmds.SetTab(t)
}

// switchTab activates t and starts the tab's first load if it has one.
func (a App) switchTab(t state.Tab) (tea.Model, tea.Cmd) {
	a = a.switchTabLocal(t)
	cmds := []tea.Cmd{a.tabCmd(t)}

	switch t {
	case state.TabVisualization, state.TabInsights:
		if !a.vizRequested && a.cmds.LoadVisualization != nil {
			a.vizRequested = true
			a.pending++
			cmds = append(cmds, a.cmds.LoadVisualization())
		}
	case state.TabRecommendations:
		if !a.feedRequested && a.cmds.LoadFeed != nil {
			a.feedRequested = true
			a.pending++
			cmds = append(cmds, a.cmds.LoadFeed())
		}
	}
	return a, tea.Batch(cmds...)
}

// busy reports whether any operation is still running.
func (a App) busy() bool {
	if a.pending > 0 {
		return true
	}
	for _, st := range a.snap.Ops {
		if st.Loading {
			return true
		}
	}
	return false
}

// Tab returns the active tab (for testing).
func (a App) Tab() state.Tab {
	return a.tab
}

// Cursor returns the Articles cursor position (for testing).
func (a App) Cursor() int {
	return a.list.Cursor()
}

// Searching reports whether the search box has focus (for testing).
func (a App) Searching() bool {
	return a.searching
}
