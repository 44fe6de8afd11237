package devserver

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/minescope/internal/model"
	"github.com/abelbrown/minescope/internal/store"
)

func fixtureArticles() []store.Article {
	return []store.Article{
		{
			ID: 1, Title: "Mining ore", Abstract: "ore mining",
			Authors:   []string{"Ada", "Ben"},
			Published: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			ArxivID:   "2401.00001",
		},
		{
			ID: 2, Title: "Ore sorting: a survey", Abstract: "sorting ore",
			Authors:   []string{"Ada", "Ben", "Cy"},
			Published: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
			ArxivID:   "2403.00002",
		},
		{
			ID: 3, Title: "Quantum", Abstract: "photons",
			Authors:   []string{"Dee"},
			Published: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestArticleGraphLinksSharedKeywords(t *testing.T) {
	g := articleGraph(fixtureArticles())

	require.Len(t, g.Nodes, 3)
	assert.Equal(t, model.GraphNode{ID: "article_1", Group: 1, Label: "Mining ore...", Title: "Mining ore"}, g.Nodes[0])

	require.Len(t, g.Links, 1)
	assert.Equal(t, model.GraphLink{Source: "article_1", Target: "article_2", Value: 1, Label: "ore"}, g.Links[0])
}

func TestArticleGraphTruncatesLabels(t *testing.T) {
	g := articleGraph([]store.Article{{ID: 9, Title: strings.Repeat("x", 40)}})
	assert.Equal(t, strings.Repeat("x", 30)+"...", g.Nodes[0].Label)
	assert.Empty(t, g.Links)
}

func TestRecommendationFeedRanksBySimilarity(t *testing.T) {
	groups := recommendationFeed(fixtureArticles())
	require.Len(t, groups, 3)

	first := groups[0]
	assert.Equal(t, model.ArticleID("1"), first.Article.ID)
	require.Len(t, first.Recommendations, 2)
	assert.Equal(t, model.ArticleID("2"), first.Recommendations[0].ID)
	assert.Greater(t, first.Recommendations[0].Similarity, 0.0)
	assert.Equal(t, 0.0, first.Recommendations[1].Similarity)

	for _, g := range groups {
		for _, r := range g.Recommendations {
			assert.NotEqual(t, g.Article.ID, r.ID, "article recommended to itself")
		}
	}
}

func TestRecommendationFeedCapsAtFive(t *testing.T) {
	var articles []store.Article
	for i := 1; i <= 8; i++ {
		articles = append(articles, store.Article{ID: int64(i), Title: "t", Abstract: "ore grade"})
	}
	for _, g := range recommendationFeed(articles) {
		assert.Len(t, g.Recommendations, 5)
	}
}

func TestVisualization(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	v := visualization(fixtureArticles(), now)

	assert.Equal(t, model.Series{{Label: "2024-01", Value: 2}, {Label: "2024-03", Value: 1}}, v.PublicationsPerMonth)

	assert.LessOrEqual(t, len(v.ResearchTopics.Labels), 5)
	assert.Len(t, v.ResearchTopics.Data, len(v.ResearchTopics.Labels))
	assert.Contains(t, v.ResearchTopics.Labels, "ore")

	require.Len(t, v.CitationsOverTime, 6)
	assert.Equal(t, "2019", v.CitationsOverTime[0].Label)
	assert.Equal(t, "2024", v.CitationsOverTime[5].Label)
	for _, b := range v.CitationsOverTime {
		assert.GreaterOrEqual(t, b.Value, 50.0)
		assert.LessOrEqual(t, b.Value, 200.0)
	}

	require.Len(t, v.CitationsVsYear, 3)
	assert.Equal(t, 2024.0, v.CitationsVsYear[0].X)

	require.Len(t, v.ResearchImpact, 20)
	for _, p := range v.ResearchImpact {
		assert.GreaterOrEqual(t, p.R, 5.0)
		assert.LessOrEqual(t, p.R, 25.0)
	}

	assert.Equal(t, []model.AuthorCount{
		{Name: "Ada", Count: 2}, {Name: "Ben", Count: 2}, {Name: "Cy", Count: 1}, {Name: "Dee", Count: 1},
	}, v.TopAuthors)

	assert.Equal(t, v, visualization(fixtureArticles(), now), "aggregates should be stable")
}

func TestVisualizationEmpty(t *testing.T) {
	v := visualization(nil, time.Now())
	assert.Empty(t, v.PublicationsPerMonth)
	assert.NotNil(t, v.ResearchTopics.Labels)
	assert.Len(t, v.CitationsOverTime, 6)
	assert.Empty(t, v.CitationsVsYear)
}

func TestCollaborationNetworkWeightsPairs(t *testing.T) {
	g := collaborationNetwork(fixtureArticles())
	assert.Len(t, g.Nodes, 4)

	weights := map[string]float64{}
	for _, l := range g.Links {
		weights[l.Source+"-"+l.Target] = l.Value
	}
	assert.Equal(t, map[string]float64{"Ada-Ben": 2, "Ada-Cy": 1, "Ben-Cy": 1}, weights)
}

func TestInsights(t *testing.T) {
	out, err := insights(fixtureArticles())
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.True(t, strings.HasPrefix(out[0], "Trending topic: '"))
	assert.True(t, strings.HasPrefix(out[1], "Researchers from University A and Company X"))
	assert.Equal(t, "Emerging field: 'Ore sorting' is showing rapid growth in citations.", out[2])
	assert.True(t, strings.HasSuffix(out[3], "Ethics' present an opportunity for impactful work"))

	_, err = insights(nil)
	assert.ErrorIs(t, err, errNoArticles)
}
