package devserver

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// englishStopWords are dropped before terms are counted.
var englishStopWords = func() map[string]struct{} {
	words := strings.Fields(`
		a about above across after afterwards again against all almost alone along already also
		although always am among amongst an and another any anyhow anyone anything anyway anywhere
		are around as at be became because become becomes been before beforehand behind being below
		beside besides between beyond both but by can cannot could did do does doing done down due
		during each eg either else elsewhere enough etc even ever every everyone everything everywhere
		except few for former formerly from further had has have having he hence her here hereby
		herein hers herself him himself his how however i ie if in indeed into is it its itself
		just last latter least less ltd made many may me meanwhile might more moreover most mostly
		much must my myself namely neither never nevertheless next no nobody none nor not nothing
		now nowhere of off often on once one only onto or other others otherwise our ours ourselves
		out over own per perhaps please rather re same seem seemed seeming seems several she should
		since so some somehow someone something sometime sometimes somewhere still such than that
		the their theirs them themselves then thence there thereafter thereby therefore therein
		thereupon these they this those though through throughout thru thus to together too toward
		towards under until up upon us very via was we well were what whatever when whence whenever
		where whereafter whereas whereby wherein whereupon wherever whether which while whither who
		whoever whole whom whose why will with within without would yet you your yours yourself
		yourselves using use used new paper study present approach based`)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// tokenize lowercases text and splits it into words of two or more letters
// or digits, dropping stop words.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := englishStopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// terms returns the tokens of text, plus adjacent-token bigrams when
// bigrams is set.
func terms(text string, bigrams bool) []string {
	toks := tokenize(text)
	if !bigrams || len(toks) < 2 {
		return toks
	}
	out := make([]string, 0, 2*len(toks)-1)
	out = append(out, toks...)
	for i := 0; i+1 < len(toks); i++ {
		out = append(out, toks[i]+" "+toks[i+1])
	}
	return out
}

// vector is a sparse, L2-normalised tf-idf vector.
type vector map[string]float64

// tfidf weights each document's terms by smoothed inverse document
// frequency, idf = ln((1+n)/(1+df)) + 1, and normalises each vector.
func tfidf(docs [][]string) []vector {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool, len(doc))
		for _, t := range doc {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	n := float64(len(docs))
	out := make([]vector, len(docs))
	for i, doc := range docs {
		v := make(vector, len(doc))
		for _, t := range doc {
			v[t]++
		}
		var norm float64
		for t, tf := range v {
			w := tf * (math.Log((1+n)/(1+float64(df[t]))) + 1)
			v[t] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for t := range v {
				v[t] /= norm
			}
		}
		out[i] = v
	}
	return out
}

// cosine returns the cosine similarity of two normalised vectors.
func cosine(a, b vector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for t, w := range a {
		dot += w * b[t]
	}
	return dot
}

// termWeight is a term with its summed weight across documents.
type termWeight struct {
	Term   string
	Weight float64
}

// topTerms sums term weights over vecs and returns the n heaviest terms,
// heaviest first. Ties break alphabetically.
func topTerms(vecs []vector, n int) []termWeight {
	sums := make(map[string]float64)
	for _, v := range vecs {
		for t, w := range v {
			sums[t] += w
		}
	}
	out := make([]termWeight, 0, len(sums))
	for t, w := range sums {
		out = append(out, termWeight{Term: t, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// keywords returns up to n of the most frequent terms in text, most
// frequent first. Ties break alphabetically.
func keywords(text string, n int) []string {
	counts := make(map[string]int)
	for _, t := range tokenize(text) {
		counts[t]++
	}
	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}

// truncate shortens s to n runes and appends "..." when anything was cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
