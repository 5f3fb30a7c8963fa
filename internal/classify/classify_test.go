package classify

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/pagesift/internal/compose"
	"github.com/local/pagesift/internal/pdferr"
	"github.com/local/pagesift/internal/pdffixture"
	"github.com/local/pagesift/internal/textlayer"
)

// runsOpener serves fixed runs regardless of the bytes it is given.
type runsOpener struct {
	pages [][]string
	err   error
	opens int
}

func (o *runsOpener) Name() string { return "runs" }

func (o *runsOpener) Open([]byte) (textlayer.Doc, error) {
	o.opens++
	if o.err != nil {
		return nil, o.err
	}
	return runsDoc(o.pages), nil
}

type runsDoc [][]string

func (d runsDoc) NumPage() int                 { return len(d) }
func (d runsDoc) Runs(i int) ([]string, error) { return d[i], nil }
func (d runsDoc) Close() error                 { return nil }

type memCache struct {
	entries map[string][][]int
	err     error
	stores  int
}

func (m *memCache) key(data []byte, scope string, markers []string) string {
	return string(data) + "|" + scope + "|" + strings.Join(markers, "\x00")
}

func (m *memCache) Lookup(_ context.Context, data []byte, scope string, markers []string) ([][]int, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	v, ok := m.entries[m.key(data, scope, markers)]
	return v, ok, nil
}

func (m *memCache) Store(_ context.Context, data []byte, scope string, markers []string, matches [][]int) error {
	m.stores++
	if m.err != nil {
		return m.err
	}
	m.entries[m.key(data, scope, markers)] = matches
	return nil
}

var doc = compose.Document{Path: "bill.pdf", Data: []byte("bill")}

func TestMatch_AscendingNoDuplicates(t *testing.T) {
	o := &runsOpener{pages: [][]string{
		{"MOBILE SERVICES", "more MOBILE SERVICES"},
		{"Summary"},
		{"MOBILE", "SERVICES"},
		{"MOBILE%20SERVICES"},
	}}
	c := NewClassifier(o)

	got, err := c.Match(context.Background(), doc, []string{"MOBILE SERVICES", "Summary", "absent"})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 2, 3}, {1}, {}}, got)
}

func TestMatch_CaseSensitive(t *testing.T) {
	c := NewClassifier(&runsOpener{pages: [][]string{{"mobile services"}}})

	got, err := c.Match(context.Background(), doc, []string{"MOBILE SERVICES"})
	require.NoError(t, err)
	assert.Empty(t, got[0])
}

func TestMatch_RawPolicy(t *testing.T) {
	o := &runsOpener{pages: [][]string{{"MOBILE%20SERVICES"}, {"MOBILE", "SERVICES"}}}
	c := NewClassifier(o, WithPolicy(textlayer.JoinPolicy{Separator: "\n"}))

	got, err := c.Match(context.Background(), doc, []string{"MOBILE SERVICES", "MOBILE\nSERVICES"})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{}, {1}}, got)
}

func TestMatch_ParseError(t *testing.T) {
	c := NewClassifier(&runsOpener{err: errors.New("bad xref")})

	_, err := c.Match(context.Background(), doc, []string{"x"})
	var perr *pdferr.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "bill.pdf", perr.Path)
}

// Soundness and completeness against randomly generated pages.
func TestMatchTexts_SoundAndComplete(t *testing.T) {
	words := []string{"MOBILE", "SERVICES", "FIXEDLINE", "AND", "BROADBAND", "Wi-Fi", "total"}
	markers := []string{"MOBILE SERVICES", "FIXEDLINE AND BROADBAND SERVICES", "AND", "Wi-Fi SERVICES"}
	rnd := rand.New(rand.NewSource(7))

	for iter := 0; iter < 200; iter++ {
		texts := make([]string, rnd.Intn(8))
		for i := range texts {
			n := rnd.Intn(12)
			parts := make([]string, n)
			for j := range parts {
				parts[j] = words[rnd.Intn(len(words))]
			}
			texts[i] = strings.Join(parts, " ")
		}

		got := MatchTexts(texts, markers)
		require.Len(t, got, len(markers))
		for m, marker := range markers {
			seen := map[int]bool{}
			prev := -1
			for _, idx := range got[m] {
				assert.Greater(t, idx, prev)
				assert.Less(t, idx, len(texts))
				assert.Contains(t, texts[idx], marker)
				prev = idx
				seen[idx] = true
			}
			for i, text := range texts {
				if strings.Contains(text, marker) {
					assert.True(t, seen[i], "page %d missing for %q", i, marker)
				}
			}
		}
	}
}

func TestMatch_Deterministic(t *testing.T) {
	o := &runsOpener{pages: [][]string{{"MOBILE SERVICES"}, {"x"}, {"MOBILE SERVICES"}}}
	c := NewClassifier(o)
	markers := []string{"MOBILE SERVICES"}

	first, err := c.Match(context.Background(), doc, markers)
	require.NoError(t, err)
	second, err := c.Match(context.Background(), doc, markers)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCategorize_UnionLaw(t *testing.T) {
	o := &runsOpener{pages: [][]string{
		{"FIXEDLINE AND Wi-Fi SERVICES"},
		{"FIXEDLINE AND BROADBAND SERVICES"},
		{"MOBILE SERVICES"},
		{"FIXEDLINE AND BROADBAND SERVICES", "FIXEDLINE AND Wi-Fi SERVICES"},
	}}
	c := NewClassifier(o)

	got, err := c.Categorize(context.Background(), doc, DefaultCategories())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, CategoryMatch{Name: "mobile", Pages: []int{2}}, got[0])
	// newer phrasing matches follow the older ones; page 3 appears twice
	assert.Equal(t, CategoryMatch{Name: "broadband", Pages: []int{1, 3, 0, 3}}, got[1])
	assert.Equal(t, 1, o.opens)
}

func TestCategorize_NoMatches(t *testing.T) {
	c := NewClassifier(&runsOpener{pages: [][]string{{"nothing"}}})

	got, err := c.Categorize(context.Background(), doc, DefaultCategories())
	require.NoError(t, err)
	assert.Equal(t, []int{}, got[0].Pages)
	assert.Equal(t, []int{}, got[1].Pages)
}

func TestMatch_UsesCache(t *testing.T) {
	o := &runsOpener{pages: [][]string{{"x"}, {"MOBILE SERVICES"}}}
	mc := &memCache{entries: map[string][][]int{}}
	c := NewClassifier(o, WithCache(mc))
	markers := []string{"MOBILE SERVICES"}

	first, err := c.Match(context.Background(), doc, markers)
	require.NoError(t, err)
	second, err := c.Match(context.Background(), doc, markers)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{1}}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, o.opens)
	assert.Equal(t, 1, mc.stores)
}

func TestMatch_CacheErrorsFallBack(t *testing.T) {
	o := &runsOpener{pages: [][]string{{"MOBILE SERVICES"}}}
	c := NewClassifier(o, WithCache(&memCache{err: errors.New("redis down")}))

	got, err := c.Match(context.Background(), doc, []string{"MOBILE SERVICES"})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0}}, got)
}

func TestSelector(t *testing.T) {
	s := NewSelector(nil)
	assert.Equal(t, []int{0}, s.Select(doc))

	in := []int{2, 0}
	s = NewSelector(in)
	got := s.Select(doc)
	got[0] = 9
	in[1] = 9
	assert.Equal(t, []int{2, 0}, s.Select(doc))
}

func TestCategorize_BillFixture(t *testing.T) {
	data, err := pdffixture.Build(
		[]string{"Account summary"},
		[]string{"Charges", "MOBILE SERVICES"},
		[]string{"FIXEDLINE AND BROADBAND SERVICES"},
	)
	require.NoError(t, err)
	c := NewClassifier(textlayer.PDFOpener{})

	got, err := c.Categorize(context.Background(), compose.Document{Path: "bill1.pdf", Data: data}, DefaultCategories())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got[0].Pages)
	assert.Equal(t, []int{2}, got[1].Pages)
}
