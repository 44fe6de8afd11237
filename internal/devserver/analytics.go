package devserver

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/abelbrown/minescope/internal/model"
	"github.com/abelbrown/minescope/internal/store"
)

const (
	graphKeywords        = 5
	recommendationsPerID = 5
	topicCount           = 5
	topAuthorCount       = 10
	impactPoints         = 20
)

var errNoArticles = errors.New("no articles to analyse")

// articleGraph links articles that share one of their top keywords. Each
// shared keyword yields its own link, labelled with the keyword.
func articleGraph(articles []store.Article) model.GraphData {
	g := model.GraphData{
		Nodes: make([]model.GraphNode, 0, len(articles)),
		Links: []model.GraphLink{},
	}
	byKeyword := make(map[string][]int64)
	for _, a := range articles {
		label := []rune(a.Title)
		if len(label) > 30 {
			label = label[:30]
		}
		g.Nodes = append(g.Nodes, model.GraphNode{
			ID:    nodeID(a.ID),
			Group: 1,
			Label: string(label) + "...",
			Title: a.Title,
		})
		for _, k := range keywords(a.Title+" "+a.Abstract, graphKeywords) {
			byKeyword[k] = append(byKeyword[k], a.ID)
		}
	}

	kws := make([]string, 0, len(byKeyword))
	for k := range byKeyword {
		kws = append(kws, k)
	}
	sort.Strings(kws)
	for _, k := range kws {
		ids := byKeyword[k]
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				g.Links = append(g.Links, model.GraphLink{
					Source: nodeID(ids[i]),
					Target: nodeID(ids[j]),
					Value:  1,
					Label:  k,
				})
			}
		}
	}
	return g
}

func nodeID(id int64) string {
	return "article_" + strconv.FormatInt(id, 10)
}

// recommendationFeed lists, for every article, the most similar other
// articles by tf-idf cosine similarity of their abstracts.
func recommendationFeed(articles []store.Article) []model.RecommendationGroup {
	docs := make([][]string, len(articles))
	for i, a := range articles {
		docs[i] = terms(a.Abstract, false)
	}
	vecs := tfidf(docs)

	type scored struct {
		idx int
		sim float64
	}
	groups := make([]model.RecommendationGroup, 0, len(articles))
	for i, a := range articles {
		others := make([]scored, 0, len(articles)-1)
		for j := range articles {
			if j != i {
				others = append(others, scored{idx: j, sim: cosine(vecs[i], vecs[j])})
			}
		}
		sort.SliceStable(others, func(x, y int) bool { return others[x].sim > others[y].sim })
		if len(others) > recommendationsPerID {
			others = others[:recommendationsPerID]
		}

		recs := make([]model.SimilarArticle, 0, len(others))
		for _, o := range others {
			b := articles[o.idx]
			recs = append(recs, model.SimilarArticle{
				ID:              articleID(b.ID),
				Title:           b.Title,
				Authors:         authorsOf(b),
				Abstract:        truncate(b.Abstract, 200),
				PublicationDate: isoDate(b.Published),
				Similarity:      math.Round(o.sim*1e6) / 1e6,
			})
		}
		groups = append(groups, model.RecommendationGroup{
			Article:         model.ArticleRef{ID: articleID(a.ID), Title: a.Title},
			Recommendations: recs,
		})
	}
	return groups
}

// visualization builds the chart aggregates. Citation figures are not
// tracked, so they are derived deterministically from article and year
// hashes to keep the charts stable between requests.
func visualization(articles []store.Article, now time.Time) model.VisualizationData {
	v := model.VisualizationData{
		PublicationsPerMonth: model.Series{},
		ResearchTopics:       model.TopicDistribution{Labels: []string{}, Data: []float64{}},
		CitationsOverTime:    model.Series{},
		CitationsVsYear:      make([]model.Point, 0, len(articles)),
		ResearchImpact:       make([]model.BubblePoint, 0, impactPoints),
	}

	months := make(map[string]int)
	for _, a := range articles {
		if !a.Published.IsZero() {
			months[a.Published.Format("2006-01")]++
		}
	}
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.PublicationsPerMonth = append(v.PublicationsPerMonth, model.Bucket{Label: k, Value: float64(months[k])})
	}

	var docs [][]string
	for _, a := range articles {
		if a.Abstract != "" {
			docs = append(docs, terms(a.Abstract, false))
		}
	}
	for _, tw := range topTerms(tfidf(docs), topicCount) {
		v.ResearchTopics.Labels = append(v.ResearchTopics.Labels, tw.Term)
		v.ResearchTopics.Data = append(v.ResearchTopics.Data, math.Round(tw.Weight*100)/100)
	}

	year := now.Year()
	for y := year - 5; y <= year; y++ {
		label := strconv.Itoa(y)
		v.CitationsOverTime = append(v.CitationsOverTime, model.Bucket{
			Label: label,
			Value: float64(50 + hashN("citations:"+label, 151)),
		})
	}

	for _, a := range articles {
		x := 0
		if !a.Published.IsZero() {
			x = a.Published.Year()
		}
		v.CitationsVsYear = append(v.CitationsVsYear, model.Point{
			X: float64(x),
			Y: float64(hashN("cites:"+articleKey(a), 51)),
		})
	}

	for i := 0; i < impactPoints; i++ {
		key := "impact:" + strconv.Itoa(i)
		v.ResearchImpact = append(v.ResearchImpact, model.BubblePoint{
			X: float64(hashN(key+":x", 101)),
			Y: float64(hashN(key+":y", 101)),
			R: float64(5 + hashN(key+":r", 21)),
		})
	}

	v.TopAuthors = topAuthors(articles, topAuthorCount)
	net := collaborationNetwork(articles)
	v.CollaborationNetwork = &net
	return v
}

// topAuthors counts papers per author, most prolific first.
func topAuthors(articles []store.Article, n int) []model.AuthorCount {
	counts := make(map[string]int)
	for _, a := range articles {
		for _, name := range a.Authors {
			if name = strings.TrimSpace(name); name != "" {
				counts[name]++
			}
		}
	}
	out := make([]model.AuthorCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, model.AuthorCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// collaborationNetwork has one node per author and one link per co-author
// pair, weighted by the number of shared papers.
func collaborationNetwork(articles []store.Article) model.GraphData {
	g := model.GraphData{Nodes: []model.GraphNode{}, Links: []model.GraphLink{}}
	seen := make(map[string]bool)
	type pair struct{ a, b string }
	weights := make(map[pair]int)
	var order []pair

	for _, art := range articles {
		names := make([]string, 0, len(art.Authors))
		for _, n := range art.Authors {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				g.Nodes = append(g.Nodes, model.GraphNode{ID: n, Group: 2, Label: n})
			}
		}
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				p := pair{names[i], names[j]}
				if p.b < p.a {
					p.a, p.b = p.b, p.a
				}
				if p.a == p.b {
					continue
				}
				if weights[p] == 0 {
					order = append(order, p)
				}
				weights[p]++
			}
		}
	}
	for _, p := range order {
		g.Links = append(g.Links, model.GraphLink{Source: p.a, Target: p.b, Value: float64(weights[p])})
	}
	return g
}

// insights returns the four generated insight strings: a trending topic, a
// collaboration opportunity, an emerging field and a research gap.
func insights(articles []store.Article) ([]string, error) {
	var docs [][]string
	for _, a := range articles {
		if a.Abstract != "" {
			docs = append(docs, terms(a.Abstract, true))
		}
	}
	top := topTerms(tfidf(docs), 1)
	if len(top) == 0 {
		return nil, errNoArticles
	}
	topic := top[0].Term

	recent := append([]store.Article(nil), articles...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Published.After(recent[j].Published) })
	field, _, _ := strings.Cut(recent[0].Title, ":")

	return []string{
		fmt.Sprintf("Trending topic: '%s' has seen a significant increase in publications recently.", topic),
		fmt.Sprintf("Researchers from University A and Company X have complementary work in '%s'", topic),
		fmt.Sprintf("Emerging field: '%s' is showing rapid growth in citations.", field),
		fmt.Sprintf("Limited studies on '%s Ethics' present an opportunity for impactful work", topic),
	}, nil
}

// hashN maps key to [0, n).
func hashN(key string, n uint32) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32() % n
}

func articleKey(a store.Article) string {
	if a.ArxivID != "" {
		return a.ArxivID
	}
	return strconv.FormatInt(a.ID, 10)
}
