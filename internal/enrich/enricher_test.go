package enrich

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin-jobs-scraper/internal/dom"
	"linkedin-jobs-scraper/internal/normalize"
	"linkedin-jobs-scraper/internal/observability"
	"linkedin-jobs-scraper/internal/pacing"
	"linkedin-jobs-scraper/internal/scraper"
)

// fakeNavigator serves canned detail pages and fails the URLs listed in fail.
type fakeNavigator struct {
	pages   map[string]string
	fail    map[string]bool
	visited []string
	current string
	onVisit func()
}

func (f *fakeNavigator) Navigate(_ context.Context, url string, _ time.Duration) error {
	f.visited = append(f.visited, url)
	if f.onVisit != nil {
		f.onVisit()
	}
	if f.fail[url] {
		return errors.New("net::ERR_TIMED_OUT")
	}
	f.current = url
	return nil
}

func (f *fakeNavigator) Document(context.Context) (*dom.Document, error) {
	return dom.ParseString(f.pages[f.current], f.current)
}

func detailPage(company string) string {
	return fmt.Sprintf(`<html><body><div class="top-card-layout__card">
		<a href="https://www.linkedin.com/jobs/search/?f_C=1">More jobs</a>
		<a class="topcard__org-name-link" href="https://www.linkedin.com/company/%s?trk=public_jobs_topcard-org-name">%s</a>
	</div></body></html>`, company, company)
}

func newEnricher(nav Navigator, opts Options) *Enricher {
	norm := normalize.NewNormalizer(normalize.Options{})
	resolver := scraper.NewResolver(scraper.MustCompileDefaults(), norm)
	return NewEnricher(nav, resolver, pacing.New(rand.NewPCG(1, 1)), observability.NewNop(), opts)
}

func records(urls ...string) []scraper.ListingRecord {
	out := make([]scraper.ListingRecord, len(urls))
	for i, u := range urls {
		out[i] = scraper.ListingRecord{ID: fmt.Sprint(i + 1), Title: "Engineer", URL: u}
	}
	return out
}

func TestEnrichAbsorbsSingleFailure(t *testing.T) {
	nav := &fakeNavigator{
		pages: map[string]string{
			"https://www.linkedin.com/jobs/view/1": detailPage("acme"),
			"https://www.linkedin.com/jobs/view/3": detailPage("globex"),
		},
		fail: map[string]bool{"https://www.linkedin.com/jobs/view/2": true},
	}
	recs := records(
		"https://www.linkedin.com/jobs/view/1",
		"https://www.linkedin.com/jobs/view/2",
		"https://www.linkedin.com/jobs/view/3",
	)

	stats, err := newEnricher(nav, Options{}).Enrich(context.Background(), recs)
	require.NoError(t, err)

	assert.Equal(t, "https://www.linkedin.com/company/acme", recs[0].CompanyURL)
	assert.Empty(t, recs[1].CompanyURL)
	assert.Equal(t, "https://www.linkedin.com/company/globex", recs[2].CompanyURL)
	assert.Equal(t, Stats{Candidates: 3, Attempted: 3, Resolved: 2, Failed: 1}, stats)
	assert.Equal(t, []string{
		"https://www.linkedin.com/jobs/view/1",
		"https://www.linkedin.com/jobs/view/2",
		"https://www.linkedin.com/jobs/view/3",
	}, nav.visited)
}

func TestEnrichSkipsRecordsWithCompanyOrWithoutURL(t *testing.T) {
	nav := &fakeNavigator{pages: map[string]string{
		"https://www.linkedin.com/jobs/view/3": detailPage("initech"),
	}}
	recs := records("https://www.linkedin.com/jobs/view/1", "", "https://www.linkedin.com/jobs/view/3")
	recs[0].CompanyURL = "https://www.linkedin.com/company/known"

	stats, err := newEnricher(nav, Options{}).Enrich(context.Background(), recs)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://www.linkedin.com/jobs/view/3"}, nav.visited)
	assert.Equal(t, "https://www.linkedin.com/company/known", recs[0].CompanyURL)
	assert.Empty(t, recs[1].CompanyURL)
	assert.Equal(t, "https://www.linkedin.com/company/initech", recs[2].CompanyURL)
	assert.Equal(t, 1, stats.Resolved)
}

func TestEnrichMaxDetailPages(t *testing.T) {
	nav := &fakeNavigator{pages: map[string]string{}}
	recs := records("https://a.test/1", "https://a.test/2", "https://a.test/3")

	stats, err := newEnricher(nav, Options{MaxDetailPages: 2}).Enrich(context.Background(), recs)
	require.NoError(t, err)

	assert.Len(t, nav.visited, 2)
	assert.Equal(t, 3, stats.Candidates)
	assert.Equal(t, 2, stats.Attempted)
	assert.Equal(t, 2, stats.Failed)
}

func TestEnrichStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	nav := &fakeNavigator{
		pages:   map[string]string{},
		onVisit: cancel,
	}
	recs := records("https://a.test/1", "https://a.test/2")

	stats, err := newEnricher(nav, Options{}).Enrich(ctx, recs)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, nav.visited, 1)
	assert.Equal(t, 1, stats.Attempted)
}

// stallingNavigator never finishes a snapshot of the URLs in stall and panics on
// the URLs in explode.
type stallingNavigator struct {
	fakeNavigator
	stall   map[string]bool
	explode map[string]bool
}

func (s *stallingNavigator) Document(ctx context.Context) (*dom.Document, error) {
	if s.stall[s.current] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.explode[s.current] {
		panic("target closed")
	}
	return s.fakeNavigator.Document(ctx)
}

func TestEnrichBoundsSnapshotPerRecord(t *testing.T) {
	nav := &stallingNavigator{
		fakeNavigator: fakeNavigator{pages: map[string]string{
			"https://www.linkedin.com/jobs/view/2": detailPage("globex"),
		}},
		stall: map[string]bool{"https://www.linkedin.com/jobs/view/1": true},
	}
	recs := records("https://www.linkedin.com/jobs/view/1", "https://www.linkedin.com/jobs/view/2")

	done := make(chan struct{})
	var (
		stats Stats
		err   error
	)
	go func() {
		defer close(done)
		stats, err = newEnricher(nav, Options{NavigationTimeout: 50 * time.Millisecond}).Enrich(context.Background(), recs)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("enrichment blocked on a stalled snapshot")
	}

	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.linkedin.com/jobs/view/1",
		"https://www.linkedin.com/jobs/view/2",
	}, nav.visited)
	assert.Empty(t, recs[0].CompanyURL)
	assert.Equal(t, "https://www.linkedin.com/company/globex", recs[1].CompanyURL)
	assert.Equal(t, Stats{Candidates: 2, Attempted: 2, Resolved: 1, Failed: 1}, stats)
}

func TestEnrichRecoversFromPanickingPage(t *testing.T) {
	nav := &stallingNavigator{
		fakeNavigator: fakeNavigator{pages: map[string]string{
			"https://www.linkedin.com/jobs/view/2": detailPage("initech"),
		}},
		explode: map[string]bool{"https://www.linkedin.com/jobs/view/1": true},
	}
	recs := records("https://www.linkedin.com/jobs/view/1", "https://www.linkedin.com/jobs/view/2")

	stats, err := newEnricher(nav, Options{EvaluationTimeout: time.Second}).Enrich(context.Background(), recs)
	require.NoError(t, err)

	assert.Empty(t, recs[0].CompanyURL)
	assert.Equal(t, "https://www.linkedin.com/company/initech", recs[1].CompanyURL)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Resolved)
}
