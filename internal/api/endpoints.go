package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/abelbrown/minescope/internal/model"
)

// Login exchanges credentials for an access token and keeps the token for
// later requests.
func (c *Client) Login(ctx context.Context, username, password string) (model.LoginResult, error) {
	var res model.LoginResult
	err := c.do(ctx, http.MethodPost, "/login", model.LoginRequest{Username: username, Password: password}, &res)
	if err != nil {
		return model.LoginResult{}, err
	}
	if res.AccessToken == "" {
		return model.LoginResult{}, fmt.Errorf("%w: POST /login: empty access token", ErrDecode)
	}
	c.SetToken(res.AccessToken)
	return res, nil
}

// Search returns the articles matching query in server order. An empty query
// lists every article.
func (c *Client) Search(ctx context.Context, query string) ([]model.Article, error) {
	var articles []model.Article
	if err := c.do(ctx, http.MethodPost, "/search", model.SearchRequest{Query: query}, &articles); err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []model.Article{}
	}
	return articles, nil
}

// Graph fetches the article graph.
func (c *Client) Graph(ctx context.Context) (model.GraphData, error) {
	var g model.GraphData
	if err := c.do(ctx, http.MethodGet, "/article/graph", nil, &g); err != nil {
		return model.GraphData{}, err
	}
	return g, nil
}

// Recommendations fetches the flat recommendation list shown beside the
// article list.
func (c *Client) Recommendations(ctx context.Context) ([]model.Article, error) {
	var articles []model.Article
	if err := c.do(ctx, http.MethodGet, "/article/recommendations", nil, &articles); err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []model.Article{}
	}
	return articles, nil
}

// RecommendationFeed fetches per-article lists of scored similar articles.
// The backend answers with a bare {"message": ...} object when it has too
// few articles; that is reported as an empty feed.
func (c *Client) RecommendationFeed(ctx context.Context) ([]model.RecommendationGroup, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/recommendations", nil, &raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var msg model.MessageResponse
		if err := json.Unmarshal(trimmed, &msg); err != nil {
			return nil, fmt.Errorf("%w: GET /api/recommendations: %w", ErrDecode, err)
		}
		return []model.RecommendationGroup{}, nil
	}
	var groups []model.RecommendationGroup
	if err := json.Unmarshal(trimmed, &groups); err != nil {
		return nil, fmt.Errorf("%w: GET /api/recommendations: %w", ErrDecode, err)
	}
	if groups == nil {
		groups = []model.RecommendationGroup{}
	}
	return groups, nil
}

// Visualization fetches the chart aggregates.
func (c *Client) Visualization(ctx context.Context) (model.VisualizationData, error) {
	var v model.VisualizationData
	if err := c.do(ctx, http.MethodGet, "/api/visualization-data", nil, &v); err != nil {
		return model.VisualizationData{}, err
	}
	return v, nil
}

// Insights fetches the generated insight strings.
func (c *Client) Insights(ctx context.Context) ([]string, error) {
	var insights []string
	if err := c.do(ctx, http.MethodGet, "/api/ai-insights", nil, &insights); err != nil {
		return nil, err
	}
	if insights == nil {
		insights = []string{}
	}
	return insights, nil
}

// AddFavorite marks an article as a favorite on the backend.
func (c *Client) AddFavorite(ctx context.Context, id model.ArticleID) error {
	return c.do(ctx, http.MethodPost, "/article/favorite", model.FavoriteRequest{ArticleID: id}, nil)
}

// RemoveFavorite clears an article's favorite flag on the backend.
func (c *Client) RemoveFavorite(ctx context.Context, id model.ArticleID) error {
	return c.do(ctx, http.MethodDelete, "/article/favorite", model.FavoriteRequest{ArticleID: id}, nil)
}

// TriggerIngest starts an arXiv ingestion job on the backend.
func (c *Client) TriggerIngest(ctx context.Context) (model.IngestResult, error) {
	var res model.IngestResult
	if err := c.do(ctx, http.MethodPost, "/trigger_arxiv_fetch", nil, &res); err != nil {
		return model.IngestResult{}, err
	}
	return res, nil
}

// DatabaseStatus reports the backend's article count.
func (c *Client) DatabaseStatus(ctx context.Context) (model.DatabaseStatus, error) {
	var st model.DatabaseStatus
	if err := c.do(ctx, http.MethodGet, "/database_status", nil, &st); err != nil {
		return model.DatabaseStatus{}, err
	}
	return st, nil
}

// PopulateSampleData seeds the backend with sample articles if it is empty.
func (c *Client) PopulateSampleData(ctx context.Context) (model.PopulateResult, error) {
	var res model.PopulateResult
	if err := c.do(ctx, http.MethodPost, "/populate_sample_data", nil, &res); err != nil {
		return model.PopulateResult{}, err
	}
	return res, nil
}
