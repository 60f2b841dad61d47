package corpus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestFetcher(t *testing.T, pages map[string]string) (*Fetcher, *[]string) {
	t.Helper()
	return newWikiFetcher(t, pages, nil)
}

// newWikiFetcher serves article extracts from pages and category listings
// from members, keyed by "Category:<name>". Every request is recorded.
func newWikiFetcher(t *testing.T, pages map[string]string, members map[string][]string) (*Fetcher, *[]string) {
	t.Helper()
	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/es/w/api.php" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected user agent header")
		}
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		if q.Get("list") == "categorymembers" {
			category := q.Get("cmtitle")
			requested = append(requested, category)
			if q.Get("cmnamespace") != "0" {
				t.Errorf("expected main namespace filter, got %q", q.Get("cmnamespace"))
			}
			type member struct {
				NS    int    `json:"ns"`
				Title string `json:"title"`
			}
			body := struct {
				Query struct {
					Members []member `json:"categorymembers"`
				} `json:"query"`
			}{}
			body.Query.Members = []member{}
			for _, title := range members[category] {
				body.Query.Members = append(body.Query.Members, member{Title: title})
			}
			_ = json.NewEncoder(w).Encode(body)
			return
		}
		title := q.Get("titles")
		requested = append(requested, title)
		type page struct {
			Title   string `json:"title"`
			Extract string `json:"extract,omitempty"`
			Missing bool   `json:"missing,omitempty"`
		}
		body := struct {
			Query struct {
				Pages []page `json:"pages"`
			} `json:"query"`
		}{}
		text, ok := pages[title]
		body.Query.Pages = []page{{Title: title, Extract: text, Missing: !ok}}
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)

	f := NewFetcher()
	f.Client = server.Client()
	f.Delay = 0
	f.Shuffle = nil
	f.Endpoint = func(lang string) string {
		return server.URL + "/" + lang + "/w/api.php"
	}
	return f, &requested
}

func TestFetchArticle(t *testing.T) {
	f, requested := newTestFetcher(t, map[string]string{"Fútbol": "El fútbol es un deporte."})
	text, err := f.FetchArticle(context.Background(), "es", "Fútbol")
	if err != nil {
		t.Fatalf("FetchArticle failed: %v", err)
	}
	if text != "El fútbol es un deporte." {
		t.Fatalf("unexpected extract %q", text)
	}
	if len(*requested) != 1 || (*requested)[0] != "Fútbol" {
		t.Fatalf("unexpected requests %v", *requested)
	}
}

func TestFetchArticleReplacesUnderscores(t *testing.T) {
	f, requested := newTestFetcher(t, map[string]string{"Medio ambiente": "texto"})
	if _, err := f.FetchArticle(context.Background(), "es", "Medio_ambiente"); err != nil {
		t.Fatalf("FetchArticle failed: %v", err)
	}
	if (*requested)[0] != "Medio ambiente" {
		t.Fatalf("expected spaces in title, got %q", (*requested)[0])
	}
}

func TestFetchArticleBadStatus(t *testing.T) {
	f, _ := newTestFetcher(t, nil)
	if _, err := f.FetchArticle(context.Background(), "en", "Music"); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestCollectStopsAtTarget(t *testing.T) {
	long := strings.Repeat("la casa es grande y bonita. ", 30)
	f, requested := newTestFetcher(t, map[string]string{
		"Uno":    "corto",
		"Dos":    long,
		"Tres":   long,
		"Cuatro": long,
	})
	var progress []string
	got, err := f.Collect(context.Background(), "es", []string{"Uno", "Dos", "Tres", "Cuatro"}, 1000, func(title string, _ int, _ int) {
		progress = append(progress, title)
	})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if got.Articles != 2 {
		t.Fatalf("expected 2 articles, got %d", got.Articles)
	}
	if strings.Join(progress, ",") != "Dos,Tres" {
		t.Fatalf("unexpected progress %v", progress)
	}
	if len(*requested) != 3 {
		t.Fatalf("expected fetching to stop once the target was reached, got %v", *requested)
	}
	if got.Bytes != len(got.Text) {
		t.Fatalf("byte count mismatch: %d vs %d", got.Bytes, len(got.Text))
	}
}

func TestCollectNoArticles(t *testing.T) {
	f, _ := newTestFetcher(t, map[string]string{"Uno": "corto"})
	if _, err := f.Collect(context.Background(), "es", []string{"Uno", "Ausente"}, 100, nil); err == nil {
		t.Fatalf("expected error when nothing is usable")
	}
}

func TestCollectValidates(t *testing.T) {
	f := NewFetcher()
	if _, err := f.Collect(context.Background(), "", nil, 10, nil); err == nil {
		t.Fatalf("expected error for empty language")
	}
	if _, err := f.Collect(context.Background(), "es", nil, 0, nil); err == nil {
		t.Fatalf("expected error for zero target")
	}
}

func TestCategoryMembers(t *testing.T) {
	f, requested := newWikiFetcher(t, nil, map[string][]string{
		"Category:Medio ambiente": {"Reciclaje", "Ecología"},
	})
	got, err := f.CategoryMembers(context.Background(), "es", "Medio_ambiente", CategoryLimit)
	if err != nil {
		t.Fatalf("CategoryMembers failed: %v", err)
	}
	if strings.Join(got, ",") != "Reciclaje,Ecología" {
		t.Fatalf("unexpected members %v", got)
	}
	if (*requested)[0] != "Category:Medio ambiente" {
		t.Fatalf("unexpected category request %q", (*requested)[0])
	}

	got, err = f.CategoryMembers(context.Background(), "es", "Medio_ambiente", 1)
	if err != nil {
		t.Fatalf("CategoryMembers failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the limit to apply, got %v", got)
	}
}

func TestCrawlContinuesPastSeeds(t *testing.T) {
	long := strings.Repeat("la casa es grande y bonita. ", 30)
	pages := map[string]string{
		"Reciclaje": long,
		"Ecología":  long,
		"Tenis":     long,
		"Demasiado": long,
	}
	seeds := SeedTitles["es"]
	// Every seed but the last is missing; the last one is accepted.
	lastSeed := seeds[len(seeds)-1]
	last := strings.ReplaceAll(lastSeed, "_", " ")
	pages[last] = long

	categories := Categories["es"]
	first := "Category:" + strings.ReplaceAll(categories[0], "_", " ")
	second := "Category:" + strings.ReplaceAll(categories[1], "_", " ")
	f, requested := newWikiFetcher(t, pages, map[string][]string{
		first:  {last, "Reciclaje", "Ecología"},
		second: {"Reciclaje", "Tenis", "Demasiado"},
	})

	var progress []string
	target := 4 * len(Clean(long, minArticleChars))
	got, err := f.Crawl(context.Background(), "es", target, func(title string, _ int, _ int) {
		progress = append(progress, title)
	})
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}
	if strings.Join(progress, ",") != lastSeed+",Reciclaje,Ecología,Tenis" {
		t.Fatalf("unexpected progress %v", progress)
	}
	if got.Articles != 4 || got.Bytes != len(got.Text) {
		t.Fatalf("unexpected result %+v", got)
	}
	for _, title := range *requested {
		if title == "Demasiado" {
			t.Fatalf("expected the crawl to stop once the target was reached")
		}
	}
	fetchedLast := 0
	for _, title := range *requested {
		if title == last {
			fetchedLast++
		}
	}
	if fetchedLast != 1 {
		t.Fatalf("expected %q to be fetched once, got %d", last, fetchedLast)
	}
}

func TestCrawlShufflesCategories(t *testing.T) {
	f, requested := newWikiFetcher(t, nil, nil)
	var shuffled []string
	f.Shuffle = func(titles []string) {
		shuffled = append([]string(nil), titles...)
	}
	if _, err := f.Crawl(context.Background(), "es", 100, nil); err == nil {
		t.Fatalf("expected error when nothing is usable")
	}
	if len(shuffled) != len(Categories["es"]) {
		t.Fatalf("expected every category to be shuffled, got %d", len(shuffled))
	}
	categoryRequests := 0
	for _, r := range *requested {
		if strings.HasPrefix(r, "Category:") {
			categoryRequests++
		}
	}
	if categoryRequests != len(Categories["es"]) {
		t.Fatalf("expected one listing per category, got %d", categoryRequests)
	}
}
