package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
)

// Bucket is one labelled count, such as a month or a year.
type Bucket struct {
	Label string
	Value float64
}

// Series is an ordered label→value mapping. On the wire it is a JSON object;
// unlike a Go map it keeps the key order the backend wrote.
type Series []Bucket

// UnmarshalJSON decodes a JSON object, preserving key order.
func (s *Series) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("series: invalid json")
	}
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*s = nil
		return nil
	}
	if !res.IsObject() {
		return fmt.Errorf("series: expected object, got %s", res.Type)
	}
	out := Series{}
	var bad error
	res.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			bad = fmt.Errorf("series: value for %q is not a number", key.String())
			return false
		}
		v := value.Float()
		if math.IsInf(v, 0) || math.IsNaN(v) {
			bad = fmt.Errorf("series: value for %q is out of range", key.String())
			return false
		}
		out = append(out, Bucket{Label: key.String(), Value: v})
		return true
	})
	if bad != nil {
		return bad
	}
	*s = out
	return nil
}

// MarshalJSON encodes the series as a JSON object in slice order.
func (s Series) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(b.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(b.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Point is an x/y pair for scatter charts.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BubblePoint is a scatter point with a radius.
type BubblePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// TopicDistribution holds parallel label and weight slices.
type TopicDistribution struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// AuthorCount is an author with their publication count.
type AuthorCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// VisualizationData is the aggregate payload of GET /api/visualization-data.
type VisualizationData struct {
	PublicationsPerMonth Series            `json:"publicationsPerMonth"`
	ResearchTopics       TopicDistribution `json:"researchTopics"`
	CitationsOverTime    Series            `json:"citationsOverTime"`
	CitationsVsYear      []Point           `json:"citationsVsYear"`
	ResearchImpact       []BubblePoint     `json:"researchImpact"`
	TopAuthors           []AuthorCount     `json:"topAuthors,omitempty"`
	CollaborationNetwork *GraphData        `json:"collaborationNetwork,omitempty"`
}
