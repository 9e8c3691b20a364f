package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin-jobs-scraper/internal/dom"
)

func TestParseLocator(t *testing.T) {
	tests := []struct {
		in      string
		want    Locator
		wantErr bool
	}{
		{in: "  h3 a ", want: Selector("h3 a")},
		{in: "$company a", want: Relative{Of: FieldCompany, Selector: "a"}},
		{in: "$company  span > a", want: Relative{Of: FieldCompany, Selector: "span > a"}},
		{in: "text:Company|View page => a[href*='/company/']", want: TextScan{Markers: []string{"Company", "View page"}, Selector: "a[href*='/company/']"}},
		{in: "", wantErr: true},
		{in: "$company", wantErr: true},
		{in: "text:Company", wantErr: true},
		{in: "text: | => a", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLocator(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestLocatorStringRoundTrip(t *testing.T) {
	for _, s := range []string{"h3 a", "$company a", "text:Company|View page => a"} {
		loc, err := ParseLocator(s)
		require.NoError(t, err)
		again, err := ParseLocator(loc.String())
		require.NoError(t, err)
		assert.Equal(t, loc, again)
	}
}

func TestChainFirstMatchWins(t *testing.T) {
	doc, err := dom.ParseString(`<div>
		<span class="b">second</span>
		<span class="a">first</span>
	</div>`, "")
	require.NoError(t, err)

	chain, err := parseChain(FieldTitle, []string{".missing", ".a", ".b"})
	require.NoError(t, err)

	el, ok := chain.First(doc.Root(), nil)
	require.True(t, ok)
	assert.Equal(t, "first", el.Text())

	empty, err := parseChain(FieldTitle, []string{".missing", "[[broken"})
	require.NoError(t, err)
	_, ok = empty.First(doc.Root(), nil)
	assert.False(t, ok)
}

func TestChainFirstAcceptedExhaustive(t *testing.T) {
	doc, err := dom.ParseString(`<div>
		<a href="https://x.test/bad">1</a>
		<a href="https://x.test/good">2</a>
		<b><a href="https://x.test/good">3</a></b>
	</div>`, "")
	require.NoError(t, err)

	chain, err := parseChain(FieldCompanyLink, []string{"a", "b a"})
	require.NoError(t, err)
	good := func(el dom.Element) bool { return el.Href() == "https://x.test/good" }

	el, ok := chain.FirstAccepted(doc.Root(), nil, false, good)
	require.True(t, ok)
	assert.Equal(t, "3", el.Text())

	el, ok = chain.FirstAccepted(doc.Root(), nil, true, good)
	require.True(t, ok)
	assert.Equal(t, "2", el.Text())
}

func TestRelativeAndTextScan(t *testing.T) {
	doc, err := dom.ParseString(`<div>
		<section><p>About the Company</p><a href="https://www.linkedin.com/company/acme">Acme</a></section>
		<div class="co"><a href="https://www.linkedin.com/company/globex">Globex</a></div>
	</div>`, "")
	require.NoError(t, err)

	chains := ChainSet{
		FieldCompany: {Field: FieldCompany, Locators: []Locator{Selector(".co")}},
	}

	var got []string
	Relative{Of: FieldCompany, Selector: "a"}.Each(doc.Root(), chains, func(el dom.Element) bool {
		got = append(got, el.Text())
		return true
	})
	assert.Equal(t, []string{"Globex"}, got)

	got = nil
	Relative{Of: FieldLocation, Selector: "a"}.Each(doc.Root(), chains, func(el dom.Element) bool {
		got = append(got, el.Text())
		return true
	})
	assert.Empty(t, got)

	el, ok := Chain{Locators: []Locator{TextScan{Markers: []string{"Company"}, Selector: "a"}}}.First(doc.Root(), chains)
	require.True(t, ok)
	assert.Equal(t, "Acme", el.Text())
}

func TestCompileRejectsBadRelative(t *testing.T) {
	s := DefaultSelectors()
	s.CompanyLink = []string{"$nope a"}
	_, err := Compile(s)
	assert.Error(t, err)

	s = DefaultSelectors()
	s.Company = []string{"$company_link span"}
	_, err = Compile(s)
	assert.Error(t, err)

	s = &Selectors{Cards: []string{".card"}}
	_, err = Compile(s)
	assert.Error(t, err)

	tables, err := Compile((&Selectors{Cards: []string{".card"}}).WithDefaults())
	require.NoError(t, err)
	assert.Equal(t, []string{".card"}, tables.Cards)
	assert.Len(t, tables.Chains, 6)
}
