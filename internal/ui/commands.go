package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/minescope/internal/coord"
	"github.com/abelbrown/minescope/internal/model"
	"github.com/abelbrown/minescope/internal/state"
)

// Commands are the side effects the App can start. Any field may be nil;
// the matching key then does nothing.
type Commands struct {
	Mount             func() tea.Cmd
	Snapshot          func() tea.Cmd
	Login             func() tea.Cmd
	Search            func(query string) tea.Cmd
	Refresh           func() tea.Cmd
	CheckStatus       func() tea.Cmd
	Populate          func() tea.Cmd
	Ingest            func() tea.Cmd
	LoadVisualization func() tea.Cmd
	LoadFeed          func() tea.Cmd
	Add               func(a model.Article) tea.Cmd
	Remove            func(id model.ArticleID) tea.Cmd
	SetTab            func(t state.Tab) tea.Cmd
}

// LoginFunc logs in before the first fetch. Nil skips login.
type LoginFunc func(ctx context.Context) error

// CoordinatorCommands binds Commands to a coordinator. Every command runs
// its operation to completion and answers with OpDone carrying the state
// afterwards. login, if non-nil, runs before Mount's fetches.
func CoordinatorCommands(ctx context.Context, c *coord.Coordinator, login LoginFunc) Commands {
	st := c.State()
	run := func(op state.Op, fn func() error) tea.Cmd {
		return func() tea.Msg {
			err := fn()
			return OpDone{Op: op, Snap: st.Snapshot(), Err: err}
		}
	}

	cmds := Commands{
		Mount: func() tea.Cmd {
			return run(state.OpArticles, func() error {
				if login != nil {
					// A failed login is recorded in the state; the fetches
					// still run unauthenticated.
					_ = login(ctx)
				}
				c.Mount(ctx)
				return nil
			})
		},
		Snapshot: func() tea.Cmd {
			return func() tea.Msg { return StateChanged{Snap: st.Snapshot()} }
		},
		Search: func(q string) tea.Cmd {
			return run(state.OpSearch, func() error { return c.Search(ctx, q) })
		},
		Refresh: func() tea.Cmd {
			return run(state.OpArticles, func() error { return c.RefreshArticles(ctx) })
		},
		CheckStatus: func() tea.Cmd {
			return run(state.OpStatus, func() error { return c.CheckStatus(ctx) })
		},
		Populate: func() tea.Cmd {
			return run(state.OpPopulate, func() error { return c.PopulateSampleData(ctx) })
		},
		Ingest: func() tea.Cmd {
			return run(state.OpIngest, func() error { return c.TriggerIngest(ctx) })
		},
		LoadVisualization: func() tea.Cmd {
			return run(state.OpVisualization, func() error { c.LoadVisualization(ctx); return nil })
		},
		LoadFeed: func() tea.Cmd {
			return run(state.OpRecommendationFeed, func() error { return c.LoadRecommendationFeed(ctx) })
		},
		Add: func(a model.Article) tea.Cmd {
			return run(state.OpAddFavorite, func() error { return c.AddToCollection(ctx, a) })
		},
		Remove: func(id model.ArticleID) tea.Cmd {
			return run(state.OpRemoveFavorite, func() error { return c.RemoveFromCollection(ctx, id) })
		},
		SetTab: func(t state.Tab) tea.Cmd {
			return func() tea.Msg {
				st.SetActiveTab(t)
				return StateChanged{Snap: st.Snapshot()}
			}
		},
	}
	if login != nil {
		cmds.Login = func() tea.Cmd {
			return run(state.OpLogin, func() error { return login(ctx) })
		}
	}
	return cmds
}
