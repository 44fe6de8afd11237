package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/abelbrown/minescope/internal/model"
	"github.com/abelbrown/minescope/internal/store"
)

// sampleArticles seed an empty database.
var sampleArticles = []store.Article{
	{
		Title:     "Deep Learning in Mining",
		Authors:   []string{"John Doe", "Jane Smith"},
		Abstract:  "This paper explores the applications of deep learning in the mining industry.",
		Published: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		ArxivID:   "2301.12345",
	},
	{
		Title:     "Machine Learning for Mineral Exploration",
		Authors:   []string{"Alice Johnson", "Bob Williams"},
		Abstract:  "We present a novel machine learning approach for mineral exploration.",
		Published: time.Date(2023, 2, 20, 0, 0, 0, 0, time.UTC),
		ArxivID:   "2302.67890",
	},
	{
		Title:     "AI-driven Mining Operations Optimization",
		Authors:   []string{"Charlie Brown", "Diana Clark"},
		Abstract:  "This study demonstrates how AI can optimize mining operations.",
		Published: time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC),
		ArxivID:   "2303.11111",
	},
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	if _, err := s.store.Authenticate(req.Username, req.Password); err != nil {
		if errors.Is(err, store.ErrBadCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		s.internalError(w, "login", err)
		return
	}

	token, err := s.tokens.issue(req.Username)
	if err != nil {
		s.internalError(w, "login", err)
		return
	}
	s.logger.Info("User logged in", zap.String("username", req.Username))
	writeJSON(w, http.StatusOK, model.LoginResult{AccessToken: token})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req model.SearchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	articles, err := s.store.Search(req.Query)
	if err != nil {
		s.internalError(w, "search", err)
		return
	}
	s.logger.Info("Search", zap.String("query", req.Query), zap.Int("found", len(articles)))
	writeJSON(w, http.StatusOK, toWire(articles))
}

func (s *Server) handleTriggerFetch(w http.ResponseWriter, r *http.Request) {
	if s.ingester == nil {
		writeError(w, http.StatusServiceUnavailable, "arXiv ingestion is not configured")
		return
	}

	s.logger.Info("Starting arXiv fetch")
	papers, err := s.ingester.Fetch(r.Context(), s.query)
	if err != nil {
		s.internalError(w, "arxiv fetch", err)
		return
	}
	added, err := s.store.SaveArticles(papers)
	if err != nil {
		s.internalError(w, "arxiv fetch", err)
		return
	}
	total, err := s.store.Count()
	if err != nil {
		s.internalError(w, "arxiv fetch", err)
		return
	}
	s.logger.Info("arXiv fetch complete",
		zap.Int("fetched", len(papers)),
		zap.Int("added", added),
		zap.Int("total", total),
	)
	writeJSON(w, http.StatusOK, model.IngestResult{
		Message:     fmt.Sprintf("Arxiv papers fetched and processed successfully. Added %d new papers.", added),
		TotalPapers: total,
	})
}

func (s *Server) handleDatabaseStatus(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count()
	if err != nil {
		s.internalError(w, "database status", err)
		return
	}
	writeJSON(w, http.StatusOK, model.DatabaseStatus{
		Status:       "ok",
		ArticleCount: n,
		Message:      fmt.Sprintf("Database contains %d articles.", n),
	})
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count()
	if err != nil {
		s.internalError(w, "article count", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"article_count": n})
}

func (s *Server) handlePopulate(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count()
	if err != nil {
		s.internalError(w, "populate", err)
		return
	}
	if n > 0 {
		writeJSON(w, http.StatusOK, model.PopulateResult{
			Message:      fmt.Sprintf("Database already contains %d articles. No new data added.", n),
			ArticleCount: n,
		})
		return
	}

	added, err := s.store.SaveArticles(sampleArticles)
	if err != nil {
		s.internalError(w, "populate", err)
		return
	}
	writeJSON(w, http.StatusOK, model.PopulateResult{
		Message:      fmt.Sprintf("Added %d sample articles to the database.", added),
		ArticleCount: n + added,
	})
}

func (s *Server) handleFavorite(favorite bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.FavoriteRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.ArticleID == "" {
			writeError(w, http.StatusBadRequest, "Article ID is required")
			return
		}
		id, err := strconv.ParseInt(req.ArticleID.String(), 10, 64)
		if err != nil {
			writeError(w, http.StatusNotFound, "Article not found")
			return
		}
		if id == 0 {
			writeError(w, http.StatusBadRequest, "Article ID is required")
			return
		}

		if err := s.store.SetFavorite(id, favorite); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Article not found")
				return
			}
			s.internalError(w, "favorite", err)
			return
		}

		s.logger.Info("Favorite updated",
			zap.Int64("article", id),
			zap.Bool("favorite", favorite),
			zap.String("user", requestUser(r)),
		)
		msg := "Article added to favorites"
		if !favorite {
			msg = "Article removed from favorites"
		}
		writeJSON(w, http.StatusOK, model.MessageResponse{Message: msg})
	}
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	articles, err := s.store.All()
	if err != nil {
		s.internalError(w, "graph", err)
		return
	}
	writeJSON(w, http.StatusOK, articleGraph(articles))
}

func (s *Server) handleArticleRecommendations(w http.ResponseWriter, r *http.Request) {
	articles, err := s.store.List(5)
	if err != nil {
		s.internalError(w, "recommendations", err)
		return
	}
	writeJSON(w, http.StatusOK, toWire(articles))
}

func (s *Server) handleRecommendationFeed(w http.ResponseWriter, r *http.Request) {
	articles, err := s.store.All()
	if err != nil {
		s.internalError(w, "recommendation feed", err)
		return
	}
	if len(articles) < 2 {
		writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Not enough articles for recommendations"})
		return
	}
	writeJSON(w, http.StatusOK, recommendationFeed(articles))
}

func (s *Server) handleVisualization(w http.ResponseWriter, r *http.Request) {
	articles, err := s.store.All()
	if err != nil {
		s.internalError(w, "visualization", err)
		return
	}
	writeJSON(w, http.StatusOK, visualization(articles, s.now()))
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	articles, err := s.store.All()
	if err != nil {
		s.internalError(w, "insights", err)
		return
	}
	out, err := insights(articles)
	if err != nil {
		s.internalError(w, "insights", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("Request failed", zap.String("op", op), zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

// decodeBody decodes a JSON request body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

func requestUser(r *http.Request) string {
	if u, ok := r.Context().Value(usernameKey).(string); ok {
		return u
	}
	return "anonymous"
}

func toWire(articles []store.Article) []model.Article {
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		out = append(out, model.Article{
			ID:              articleID(a.ID),
			Title:           a.Title,
			Authors:         authorsOf(a),
			Abstract:        a.Abstract,
			PublicationDate: isoDate(a.Published),
			Relevance:       a.Relevance,
			ArxivID:         a.ArxivID,
		})
	}
	return out
}

func articleID(id int64) model.ArticleID {
	return model.ArticleID(strconv.FormatInt(id, 10))
}

func authorsOf(a store.Article) []string {
	if a.Authors == nil {
		return []string{}
	}
	return a.Authors
}

// isoDate formats t like Python's datetime.isoformat for naive datetimes.
func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(store.DateLayout)
}
