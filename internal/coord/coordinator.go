// Package coord runs minescope's remote operations against the research API
// and records their outcome in the view state.
//
// Every operation follows the same shape: Begin the op in the store, call
// the client, hand the result to the store's sequence-checked setter, then
// Finish. Failures are logged and turned into a user-facing message in the
// store; nothing is retried. Methods also return the underlying error so
// scripted callers can set an exit status. The TUI ignores it.
package coord

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/minescope/internal/api"
	"github.com/abelbrown/minescope/internal/logging"
	"github.com/abelbrown/minescope/internal/model"
	"github.com/abelbrown/minescope/internal/otel"
	"github.com/abelbrown/minescope/internal/state"
)

// User-facing failure messages.
const (
	MsgArticles        = "Failed to fetch articles. Please check if the backend server is running and try again."
	MsgSearch          = "Failed to search articles. Please try again later."
	MsgGraph           = "Failed to fetch graph data. Please try again later."
	MsgRecommendations = "Failed to fetch recommendations. Please try again later."
	MsgVisualization   = "Failed to fetch visualization data. Please try again later."
	MsgInsights        = "Failed to fetch AI insights. Please try again later."
	MsgAddFavorite     = "Failed to add article to collection. Please try again later."
	MsgRemoveFavorite  = "Failed to remove article from collection. Please try again later."
	MsgPopulate        = "Failed to populate sample data. Please try again later."
	MsgIngest          = "Error: Failed to start Arxiv fetch process. Please try again later."
	MsgStatus          = "Error checking database status"
	MsgLogin           = "Failed to auto login. Please try again."
	MsgBadCredentials  = "Invalid username or password"
)

// Client is the subset of *api.Client the coordinator needs.
type Client interface {
	Login(ctx context.Context, username, password string) (model.LoginResult, error)
	Search(ctx context.Context, query string) ([]model.Article, error)
	Graph(ctx context.Context) (model.GraphData, error)
	Recommendations(ctx context.Context) ([]model.Article, error)
	RecommendationFeed(ctx context.Context) ([]model.RecommendationGroup, error)
	Visualization(ctx context.Context) (model.VisualizationData, error)
	Insights(ctx context.Context) ([]string, error)
	AddFavorite(ctx context.Context, id model.ArticleID) error
	RemoveFavorite(ctx context.Context, id model.ArticleID) error
	TriggerIngest(ctx context.Context) (model.IngestResult, error)
	DatabaseStatus(ctx context.Context) (model.DatabaseStatus, error)
	PopulateSampleData(ctx context.Context) (model.PopulateResult, error)
}

var _ Client = (*api.Client)(nil)

// Event reports that one operation finished. Err is nil on success; Stale
// is set when a newer request for the same op had already been issued and
// the result was dropped. Tentative marks the notice a collection mutation
// sends once its change is visible but before the backend has answered.
type Event struct {
	Op        state.Op
	Err       error
	Stale     bool
	Tentative bool
}

// Options configures a Coordinator. Every field is optional.
type Options struct {
	// Events receives structured fetch and collection events.
	Events *otel.Logger
	// Notify is called once per finished operation, and once more when a
	// collection change becomes visible, from the goroutine that ran it.
	// The TUI points this at tea.Program.Send.
	Notify func(Event)
}

// Coordinator issues API calls and writes their results into a state.Store.
// All methods are safe to call from multiple goroutines.
type Coordinator struct {
	client Client
	state  *state.Store
	events *otel.Logger
	notify func(Event)
	log    *log.Logger
}

// New returns a Coordinator over client and st.
func New(client Client, st *state.Store, opts Options) *Coordinator {
	return &Coordinator{
		client: client,
		state:  st,
		events: opts.Events,
		notify: opts.Notify,
		log:    logging.WithPrefix("coord"),
	}
}

// State returns the store the coordinator writes to.
func (c *Coordinator) State() *state.Store {
	return c.state
}

func (c *Coordinator) emit(e otel.Event) {
	if c.events == nil {
		return
	}
	e.Comp = "coord"
	c.events.Emit(e)
}

func (c *Coordinator) publish(ev Event) {
	if c.notify != nil {
		c.notify(ev)
	}
}

// begin starts op and returns its sequence and start time.
func (c *Coordinator) begin(op state.Op, query string) (uint64, time.Time) {
	seq := c.state.Begin(op)
	c.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFetchStart, Op: string(op), Seq: seq, Query: query})
	return seq, time.Now()
}

// finish records the outcome of op. accepted is false when the result setter
// rejected a stale response. The returned error is what was published.
func (c *Coordinator) finish(op state.Op, seq uint64, start time.Time, err error, msg string, raise bool, accepted bool, count int) error {
	dur := time.Since(start)
	ev := Event{Op: op, Err: err}

	switch {
	case err != nil:
		c.log.Error("operation failed", "op", op, "seq", seq, "err", err)
		c.emit(otel.Event{Level: otel.LevelError, Kind: otel.KindFetchError, Op: string(op), Seq: seq, Dur: dur, Err: err.Error()})
		if !c.state.Finish(op, seq, msg, raise) {
			ev.Stale = true
		}
	case !accepted:
		c.log.Debug("dropping stale response", "op", op, "seq", seq)
		c.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFetchStale, Op: string(op), Seq: seq, Dur: dur})
		ev.Stale = true
	default:
		c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFetchComplete, Op: string(op), Seq: seq, Dur: dur, Count: count})
		if !c.state.Finish(op, seq, "", raise) {
			ev.Stale = true
		}
	}

	c.publish(ev)
	return err
}

// Mount runs the initial batch: all articles, graph, recommendations and
// database status, in parallel. Each fetch records its own outcome; one
// failing does not stop the others. A positive article count cascades like
// any other status check. Mount returns when everything has finished.
func (c *Coordinator) Mount(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error { _ = c.RefreshArticles(ctx); return nil })
	g.Go(func() error { _ = c.RefreshGraph(ctx); return nil })
	g.Go(func() error { _ = c.RefreshRecommendations(ctx); return nil })
	g.Go(func() error { _ = c.CheckStatus(ctx); return nil })
	_ = g.Wait()
}

// RefreshArticles loads every article (the empty search) into both the
// article list and the filtered list.
func (c *Coordinator) RefreshArticles(ctx context.Context) error {
	seq, start := c.begin(state.OpArticles, "")
	articles, err := c.client.Search(ctx, "")
	accepted := err == nil && c.state.SetArticles(seq, articles)
	return c.finish(state.OpArticles, seq, start, err, MsgArticles, true, accepted, len(articles))
}

// Search replaces the filtered list with the server's results for query.
// Earlier searches still in flight are not cancelled; their results are
// dropped when they arrive.
func (c *Coordinator) Search(ctx context.Context, query string) error {
	c.state.ClearError()
	seq, start := c.begin(state.OpSearch, query)
	articles, err := c.client.Search(ctx, query)
	accepted := err == nil && c.state.SetSearchResults(seq, articles)
	return c.finish(state.OpSearch, seq, start, err, MsgSearch, true, accepted, len(articles))
}

// RefreshGraph reloads the article graph.
func (c *Coordinator) RefreshGraph(ctx context.Context) error {
	seq, start := c.begin(state.OpGraph, "")
	g, err := c.client.Graph(ctx)
	accepted := err == nil && c.state.SetGraph(seq, g)
	return c.finish(state.OpGraph, seq, start, err, MsgGraph, true, accepted, len(g.Nodes))
}

// RefreshRecommendations reloads the flat recommendation list.
func (c *Coordinator) RefreshRecommendations(ctx context.Context) error {
	seq, start := c.begin(state.OpRecommendations, "")
	recs, err := c.client.Recommendations(ctx)
	accepted := err == nil && c.state.SetRecommendations(seq, recs)
	return c.finish(state.OpRecommendations, seq, start, err, MsgRecommendations, true, accepted, len(recs))
}

// LoadRecommendationFeed reloads the per-article similarity feed.
func (c *Coordinator) LoadRecommendationFeed(ctx context.Context) error {
	seq, start := c.begin(state.OpRecommendationFeed, "")
	groups, err := c.client.RecommendationFeed(ctx)
	accepted := err == nil && c.state.SetRecommendationFeed(seq, groups)
	return c.finish(state.OpRecommendationFeed, seq, start, err, MsgRecommendations, true, accepted, len(groups))
}

// LoadVisualization fetches chart aggregates and insights in parallel.
// Failures are recorded against each op but never raised to the banner.
func (c *Coordinator) LoadVisualization(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error {
		seq, start := c.begin(state.OpVisualization, "")
		v, err := c.client.Visualization(ctx)
		accepted := err == nil && c.state.SetVisualization(seq, v)
		_ = c.finish(state.OpVisualization, seq, start, err, MsgVisualization, false, accepted, len(v.PublicationsPerMonth))
		return nil
	})
	g.Go(func() error {
		seq, start := c.begin(state.OpInsights, "")
		insights, err := c.client.Insights(ctx)
		accepted := err == nil && c.state.SetInsights(seq, insights)
		_ = c.finish(state.OpInsights, seq, start, err, MsgInsights, false, accepted, len(insights))
		return nil
	})
	_ = g.Wait()
}

// CheckStatus reads the database status into the status line. When the
// database holds articles, graph and articles are then re-fetched once
// each.
func (c *Coordinator) CheckStatus(ctx context.Context) error {
	seq, start := c.begin(state.OpStatus, "")
	st, err := c.client.DatabaseStatus(ctx)
	if err != nil {
		if c.state.IsLatest(state.OpStatus, seq) {
			c.state.SetStatusMessage(MsgStatus)
		}
		return c.finish(state.OpStatus, seq, start, err, MsgStatus, false, false, 0)
	}

	accepted := c.state.IsLatest(state.OpStatus, seq)
	if accepted {
		c.state.SetStatusMessage(st.Message)
	}
	_ = c.finish(state.OpStatus, seq, start, nil, "", false, accepted, st.ArticleCount)

	if accepted && st.ArticleCount > 0 {
		c.refreshAfterChange(ctx)
	}
	return nil
}

// refreshAfterChange re-fetches graph and articles once each.
func (c *Coordinator) refreshAfterChange(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error { _ = c.RefreshGraph(ctx); return nil })
	g.Go(func() error { _ = c.RefreshArticles(ctx); return nil })
	_ = g.Wait()
}

// PopulateSampleData asks the backend to insert its sample articles and
// reports its message as a notice, then re-reads the status line. The
// status check's cascade refreshes graph and articles when the database
// holds articles.
func (c *Coordinator) PopulateSampleData(ctx context.Context) error {
	seq, start := c.begin(state.OpPopulate, "")
	res, err := c.client.PopulateSampleData(ctx)
	if err != nil {
		return c.finish(state.OpPopulate, seq, start, err, MsgPopulate, true, false, 0)
	}
	c.state.SetNotice(res.Message)
	_ = c.finish(state.OpPopulate, seq, start, nil, "", true, true, res.ArticleCount)
	return c.CheckStatus(ctx)
}

// TriggerIngest starts a backend arXiv fetch, reports its message as a
// notice and reloads the article list.
func (c *Coordinator) TriggerIngest(ctx context.Context) error {
	seq, start := c.begin(state.OpIngest, "")
	res, err := c.client.TriggerIngest(ctx)
	if err != nil {
		return c.finish(state.OpIngest, seq, start, err, MsgIngest, true, false, 0)
	}
	c.state.SetNotice(res.Message)
	_ = c.finish(state.OpIngest, seq, start, nil, "", true, true, res.TotalPapers)
	return c.RefreshArticles(ctx)
}

// AddToCollection stars article. The article shows up in the collection
// immediately and is taken out again if the backend rejects the change.
func (c *Coordinator) AddToCollection(ctx context.Context, article model.Article) error {
	token := c.state.AddTentative(article)
	c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCollectionAdd, ArticleID: article.ID.String()})

	seq, start := c.begin(state.OpAddFavorite, "")
	c.publish(Event{Op: state.OpAddFavorite, Tentative: true})
	err := c.client.AddFavorite(ctx, article.ID)
	if err != nil {
		c.state.RollbackAdd(token)
		c.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindCollectionRollback, Op: string(state.OpAddFavorite), ArticleID: article.ID.String()})
	} else {
		c.state.ConfirmAdd(token)
		c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCollectionConfirm, Op: string(state.OpAddFavorite), ArticleID: article.ID.String()})
	}
	return c.settle(state.OpAddFavorite, seq, start, err, MsgAddFavorite)
}

// RemoveFromCollection un-stars id. Matching entries disappear immediately
// and are restored in place if the backend rejects the change.
func (c *Coordinator) RemoveFromCollection(ctx context.Context, id model.ArticleID) error {
	token := c.state.RemoveTentative(id)
	c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCollectionRemove, ArticleID: id.String()})

	seq, start := c.begin(state.OpRemoveFavorite, "")
	c.publish(Event{Op: state.OpRemoveFavorite, Tentative: true})
	err := c.client.RemoveFavorite(ctx, id)
	if err != nil {
		c.state.RollbackRemove(token)
		c.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindCollectionRollback, Op: string(state.OpRemoveFavorite), ArticleID: id.String()})
	} else {
		c.state.ConfirmRemove(token)
		c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCollectionConfirm, Op: string(state.OpRemoveFavorite), ArticleID: id.String()})
	}
	return c.settle(state.OpRemoveFavorite, seq, start, err, MsgRemoveFavorite)
}

// settle records the outcome of a collection mutation. Mutations never
// supersede each other, so a failure is always reported, even when a newer
// mutation of the same kind was issued while this one was in flight.
func (c *Coordinator) settle(op state.Op, seq uint64, start time.Time, err error, msg string) error {
	dur := time.Since(start)
	if err == nil {
		c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFetchComplete, Op: string(op), Seq: seq, Dur: dur, Count: 1})
		_ = c.state.Finish(op, seq, "", true)
	} else {
		c.log.Error("operation failed", "op", op, "seq", seq, "err", err)
		c.emit(otel.Event{Level: otel.LevelError, Kind: otel.KindFetchError, Op: string(op), Seq: seq, Dur: dur, Err: err.Error()})
		c.state.Fail(op, seq, msg)
	}
	c.publish(Event{Op: op, Err: err})
	return err
}

// Login exchanges credentials for a token. The client keeps the token for
// later calls.
func (c *Coordinator) Login(ctx context.Context, username, password string) error {
	seq, start := c.begin(state.OpLogin, "")
	_, err := c.client.Login(ctx, username, password)
	msg := MsgLogin
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status == http.StatusUnauthorized {
		msg = MsgBadCredentials
	}
	return c.finish(state.OpLogin, seq, start, err, msg, true, err == nil, 0)
}
