// Package model defines the wire types shared by the minescope client,
// its view state and the development backend.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ArticleID identifies an article. The backend emits integer ids while the
// dashboard treats them as opaque strings, so ArticleID decodes from either.
type ArticleID string

// UnmarshalJSON accepts a JSON string or a JSON number.
func (id *ArticleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("article id: %w", err)
		}
		*id = ArticleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("article id: %w", err)
	}
	*id = ArticleID(n.String())
	return nil
}

// MarshalJSON writes ids in canonical integer form ("42", "-3") as numbers
// so the backend can look them up by primary key. Anything else, including
// "007" and "+5", stays a string.
func (id ArticleID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String returns the id as a plain string.
func (id ArticleID) String() string {
	return string(id)
}

// Article is a research-paper record returned by the search and listing
// endpoints.
type Article struct {
	ID              ArticleID `json:"id"`
	Title           string    `json:"title"`
	Authors         []string  `json:"authors"`
	Abstract        string    `json:"abstract"`
	PublicationDate string    `json:"publicationDate"`
	Relevance       float64   `json:"relevance"`
	ArxivID         string    `json:"arxiv_id,omitempty"`
}

// ArticleRef is the short article reference used by recommendation groups.
type ArticleRef struct {
	ID    ArticleID `json:"id"`
	Title string    `json:"title"`
}

// SimilarArticle is a recommended article with its similarity score in [0, 1].
type SimilarArticle struct {
	ID              ArticleID `json:"id"`
	Title           string    `json:"title"`
	Authors         []string  `json:"authors"`
	Abstract        string    `json:"abstract"`
	PublicationDate string    `json:"publicationDate"`
	Similarity      float64   `json:"similarity"`
}

// RecommendationGroup lists the articles most similar to one article.
type RecommendationGroup struct {
	Article         ArticleRef       `json:"article"`
	Recommendations []SimilarArticle `json:"recommendations"`
}

// FavoriteRequest is the body of POST and DELETE /article/favorite.
type FavoriteRequest struct {
	ArticleID ArticleID `json:"article_id"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query string `json:"query"`
}

// CloneArticles returns a copy of articles whose author slices are not shared
// with the input.
func CloneArticles(articles []Article) []Article {
	if articles == nil {
		return nil
	}
	out := make([]Article, len(articles))
	for i, a := range articles {
		out[i] = a
		if a.Authors != nil {
			out[i].Authors = append([]string(nil), a.Authors...)
		}
	}
	return out
}
