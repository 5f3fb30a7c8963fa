package classify

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/local/pagesift/internal/compose"
	"github.com/local/pagesift/internal/pdferr"
	"github.com/local/pagesift/internal/textlayer"
)

// Category is a named output with the markers that route pages to it.
type Category struct {
	Name    string   `yaml:"name"`
	Markers []string `yaml:"markers"`
}

// CategoryMatch holds the pages of one document routed to a category.
type CategoryMatch struct {
	Name  string
	Pages []int
}

// DefaultCategories returns the bill split used when nothing else is
// configured. Broadband carries the older and the newer phrasing of the
// service label.
func DefaultCategories() []Category {
	return []Category{
		{Name: "mobile", Markers: []string{"MOBILE SERVICES"}},
		{Name: "broadband", Markers: []string{"FIXEDLINE AND BROADBAND SERVICES", "FIXEDLINE AND Wi-Fi SERVICES"}},
	}
}

// MatchCache stores marker matches of previously seen documents. scope
// identifies the text backend and join policy that produced them.
type MatchCache interface {
	Lookup(ctx context.Context, data []byte, scope string, markers []string) ([][]int, bool, error)
	Store(ctx context.Context, data []byte, scope string, markers []string, matches [][]int) error
}

// Classifier finds the pages whose text contains marker phrases.
type Classifier struct {
	opener textlayer.Opener
	policy textlayer.JoinPolicy
	cache  MatchCache
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithPolicy overrides textlayer.DefaultPolicy.
func WithPolicy(p textlayer.JoinPolicy) Option {
	return func(c *Classifier) { c.policy = p }
}

// WithCache enables a match cache. A nil cache is ignored.
func WithCache(mc MatchCache) Option {
	return func(c *Classifier) { c.cache = mc }
}

// NewClassifier returns a Classifier extracting text with o.
func NewClassifier(o textlayer.Opener, opts ...Option) *Classifier {
	c := &Classifier{opener: o, policy: textlayer.DefaultPolicy}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Classifier) scope() string {
	name := "none"
	if c.opener != nil {
		name = c.opener.Name()
	}
	return name + "|" + c.policy.Separator + "|" + boolStr(c.policy.DecodeRuns)
}

// Match returns, for each marker in order, the ascending indices of the pages
// of doc whose joined text contains it. A page is listed at most once per
// marker.
func (c *Classifier) Match(ctx context.Context, doc compose.Document, markers []string) ([][]int, error) {
	if c.cache != nil {
		hit, ok, err := c.cache.Lookup(ctx, doc.Data, c.scope(), markers)
		if err != nil {
			log.Warn().Err(err).Str("file", doc.Path).Msg("match cache lookup failed")
		} else if ok && len(hit) == len(markers) {
			log.Debug().Str("file", doc.Path).Msg("match cache hit")
			return hit, nil
		}
	}

	texts, err := textlayer.PageTexts(c.opener, doc.Data, c.policy)
	if err != nil {
		return nil, pdferr.Parse(doc.Path, err)
	}
	matches := MatchTexts(texts, markers)

	if c.cache != nil {
		if err := c.cache.Store(ctx, doc.Data, c.scope(), markers, matches); err != nil {
			log.Warn().Err(err).Str("file", doc.Path).Msg("match cache store failed")
		}
	}
	return matches, nil
}

// MatchTexts matches markers against already joined page texts.
func MatchTexts(texts []string, markers []string) [][]int {
	out := make([][]int, len(markers))
	for m, marker := range markers {
		pages := []int{}
		for i, text := range texts {
			if strings.Contains(text, marker) {
				pages = append(pages, i)
			}
		}
		out[m] = pages
	}
	return out
}

// Categorize routes the pages of doc to categories. A category's pages are
// its markers' matches concatenated in marker order, without re-sorting or
// removing duplicates.
func (c *Classifier) Categorize(ctx context.Context, doc compose.Document, categories []Category) ([]CategoryMatch, error) {
	var markers []string
	for _, cat := range categories {
		markers = append(markers, cat.Markers...)
	}
	matches, err := c.Match(ctx, doc, markers)
	if err != nil {
		return nil, err
	}
	return Union(categories, matches), nil
}

// Union folds per-marker matches (flattened in category order) into
// per-category page lists.
func Union(categories []Category, matches [][]int) []CategoryMatch {
	out := make([]CategoryMatch, len(categories))
	k := 0
	for i, cat := range categories {
		pages := []int{}
		for range cat.Markers {
			pages = append(pages, matches[k]...)
			k++
		}
		out[i] = CategoryMatch{Name: cat.Name, Pages: pages}
	}
	return out
}

func boolStr(b bool) string {
	if b {
		return "decode"
	}
	return "raw"
}
