package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultUserAgent   = "codeswitch/1.0 (training data collection)"
	minArticleChars    = 500
	defaultFetchDelay  = 100 * time.Millisecond
	defaultHTTPTimeout = 60 * time.Second
	// CategoryLimit caps the articles taken from one category.
	CategoryLimit = 15
)

// SeedTitles lists articles fetched for each supported language.
var SeedTitles = map[string][]string{
	"en": {
		"United_States", "World_War_II", "Climate_change", "COVID-19_pandemic",
		"Artificial_intelligence", "Internet", "Computer", "Facebook",
		"Google", "Apple_Inc.", "Microsoft", "Amazon_(company)",
		"Football", "Basketball", "Olympic_Games", "FIFA_World_Cup",
		"New_York_City", "London", "Tokyo", "Paris",
		"Music", "Film", "Television", "Video_game",
		"Science", "Technology", "Engineering", "Mathematics",
		"History", "Geography", "Philosophy", "Psychology",
		"Democracy", "Human_rights", "Climate", "Environment",
		"Health", "Medicine", "Education", "Economy",
		"Food", "Water", "Energy", "Transportation",
		"Communication", "Social_media", "Smartphone", "Email",
	},
	"es": {
		"Estados_Unidos", "Segunda_Guerra_Mundial", "Cambio_climático", "Pandemia_de_COVID-19",
		"Inteligencia_artificial", "Internet", "Computadora", "Facebook",
		"Google", "Apple_Inc.", "Microsoft", "Amazon",
		"Fútbol", "Baloncesto", "Juegos_Olímpicos", "Copa_Mundial_de_Fútbol",
		"Ciudad_de_México", "Madrid", "Buenos_Aires", "Barcelona",
		"Música", "Cine", "Televisión", "Videojuego",
		"Ciencia", "Tecnología", "Ingeniería", "Matemáticas",
		"Historia", "Geografía", "Filosofía", "Psicología",
		"Democracia", "Derechos_humanos", "Clima", "Medio_ambiente",
		"Salud", "Medicina", "Educación", "Economía",
		"Alimentación", "Agua", "Energía", "Transporte",
		"Comunicación", "Red_social", "Teléfono_inteligente", "Correo_electrónico",
	},
}

// Categories lists the categories crawled once the seed titles are used up.
var Categories = map[string][]string{
	"en": {
		"Computer_science", "Artificial_intelligence", "Internet", "Software",
		"Mobile_phones", "Social_media", "Cryptocurrency", "Video_games",
		"Physics", "Biology", "Chemistry", "Medicine", "Climate_change",
		"Space_exploration", "Genetics", "Psychology",
		"Association_football", "Basketball", "Tennis", "Olympic_Games",
		"American_football", "Baseball", "Swimming_(sport)",
		"Cinema", "Television", "Music", "Literature", "Art",
		"Photography", "Fashion", "Cooking",
		"Economics", "Politics", "Education", "Health", "Environment",
		"Tourism", "Transportation", "Architecture",
		"Food", "Clothing", "Family", "Housing", "Employment",
	},
	"es": {
		"Informática", "Inteligencia_artificial", "Internet", "Software",
		"Teléfono_móvil", "Redes_sociales", "Criptomoneda", "Videojuegos",
		"Física", "Biología", "Química", "Medicina", "Cambio_climático",
		"Exploración_espacial", "Genética", "Psicología",
		"Fútbol", "Baloncesto", "Tenis", "Juegos_Olímpicos",
		"Fútbol_americano", "Béisbol", "Natación",
		"Cine", "Televisión", "Música", "Literatura", "Arte",
		"Fotografía", "Moda", "Gastronomía",
		"Economía", "Política", "Educación", "Salud", "Medio_ambiente",
		"Turismo", "Transporte", "Arquitectura",
		"Alimento", "Ropa", "Familia", "Vivienda", "Empleo",
	},
}

// Fetcher downloads plain-text article extracts from Wikipedia.
type Fetcher struct {
	// Endpoint returns the API URL for a language code.
	Endpoint  func(lang string) string
	Client    *http.Client
	UserAgent string
	// Delay is slept between API requests.
	Delay time.Duration
	// Shuffle orders the categories before a crawl.
	Shuffle func(titles []string)
}

// Progress is called after each accepted article.
type Progress func(title string, chars, totalBytes int)

// Collected summarizes a corpus download.
type Collected struct {
	Text     string
	Articles int
	Bytes    int
}

type membersResponse struct {
	Query struct {
		Members []struct {
			NS    int    `json:"ns"`
			Title string `json:"title"`
		} `json:"categorymembers"`
	} `json:"query"`
}

type extractResponse struct {
	Query struct {
		Pages []struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
			Missing bool   `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

// NewFetcher returns a Fetcher for the public Wikipedia API.
func NewFetcher() *Fetcher {
	return &Fetcher{
		Endpoint: func(lang string) string {
			return fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang)
		},
		Client:    &http.Client{Timeout: defaultHTTPTimeout},
		UserAgent: defaultUserAgent,
		Delay:     defaultFetchDelay,
		Shuffle: func(titles []string) {
			rand.Shuffle(len(titles), func(i, j int) {
				titles[i], titles[j] = titles[j], titles[i]
			})
		},
	}
}

// FetchArticle returns the plain-text extract for title. Missing pages return "".
func (f *Fetcher) FetchArticle(ctx context.Context, lang, title string) (string, error) {
	params := url.Values{}
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("titles", strings.ReplaceAll(title, "_", " "))

	var payload extractResponse
	if err := f.query(ctx, lang, params, &payload); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, page := range payload.Query.Pages {
		if page.Missing {
			continue
		}
		b.WriteString(page.Extract)
	}
	return b.String(), nil
}

// CategoryMembers returns up to limit main-namespace article titles of
// category. A missing category yields no titles.
func (f *Fetcher) CategoryMembers(ctx context.Context, lang, category string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("list", "categorymembers")
	params.Set("cmtitle", "Category:"+strings.ReplaceAll(category, "_", " "))
	params.Set("cmnamespace", "0")
	params.Set("cmtype", "page")
	params.Set("cmlimit", strconv.Itoa(limit))

	var payload membersResponse
	if err := f.query(ctx, lang, params, &payload); err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(payload.Query.Members))
	for _, m := range payload.Query.Members {
		if m.NS != 0 {
			continue
		}
		titles = append(titles, m.Title)
		if len(titles) >= limit {
			break
		}
	}
	return titles, nil
}

func (f *Fetcher) query(ctx context.Context, lang string, params url.Values, out any) error {
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	endpoint := f.Endpoint(lang) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected wikipedia status: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode wikipedia response: %w", err)
	}
	return nil
}

// Collect fetches titles in order until targetBytes of cleaned text are
// gathered. Articles shorter than 500 characters after cleaning are skipped.
func (f *Fetcher) Collect(ctx context.Context, lang string, titles []string, targetBytes int, progress Progress) (Collected, error) {
	c, err := f.newCollector(lang, targetBytes, progress)
	if err != nil {
		return Collected{}, err
	}
	if err := c.addAll(ctx, titles); err != nil {
		return Collected{}, err
	}
	return c.result()
}

// Crawl collects the seed titles for lang, then walks the language's
// categories in shuffled order, taking up to CategoryLimit articles from
// each, until targetBytes are gathered or the categories run out.
func (f *Fetcher) Crawl(ctx context.Context, lang string, targetBytes int, progress Progress) (Collected, error) {
	c, err := f.newCollector(lang, targetBytes, progress)
	if err != nil {
		return Collected{}, err
	}
	if err := c.addAll(ctx, SeedTitles[lang]); err != nil {
		return Collected{}, err
	}

	categories := append([]string(nil), Categories[lang]...)
	if f.Shuffle != nil {
		f.Shuffle(categories)
	}
	for _, category := range categories {
		if c.full() {
			break
		}
		if err := c.wait(ctx); err != nil {
			return Collected{}, err
		}
		titles, err := f.CategoryMembers(ctx, lang, category, CategoryLimit)
		if err != nil {
			return Collected{}, fmt.Errorf("failed to list category %s: %w", category, err)
		}
		if err := c.addAll(ctx, titles); err != nil {
			return Collected{}, err
		}
	}
	return c.result()
}

type collector struct {
	f        *Fetcher
	lang     string
	target   int
	progress Progress

	// seen holds accepted titles only, so a short article may be retried
	// under another category.
	seen     map[string]struct{}
	parts    []string
	articles int
	bytes    int
	requests int
}

func (f *Fetcher) newCollector(lang string, targetBytes int, progress Progress) (*collector, error) {
	if lang == "" {
		return nil, fmt.Errorf("language is required")
	}
	if targetBytes <= 0 {
		return nil, fmt.Errorf("target size must be greater than 0")
	}
	return &collector{
		f:        f,
		lang:     lang,
		target:   targetBytes,
		progress: progress,
		seen:     make(map[string]struct{}),
	}, nil
}

func (c *collector) full() bool {
	return c.bytes >= c.target
}

// wait sleeps the fetch delay before every request but the first.
func (c *collector) wait(ctx context.Context) error {
	c.requests++
	if c.requests == 1 || c.f.Delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.f.Delay):
		return nil
	}
}

func (c *collector) addAll(ctx context.Context, titles []string) error {
	for _, title := range titles {
		if c.full() {
			return nil
		}
		if _, ok := c.seen[normalizeTitle(title)]; ok {
			continue
		}
		if err := c.wait(ctx); err != nil {
			return err
		}
		raw, err := c.f.FetchArticle(ctx, c.lang, title)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", title, err)
		}
		cleaned := Clean(raw, minArticleChars)
		if cleaned == "" {
			continue
		}
		c.seen[normalizeTitle(title)] = struct{}{}
		c.parts = append(c.parts, cleaned)
		c.articles++
		c.bytes += len(cleaned)
		if c.progress != nil {
			c.progress(title, len([]rune(cleaned)), c.bytes)
		}
	}
	return nil
}

func (c *collector) result() (Collected, error) {
	if c.articles == 0 {
		return Collected{}, fmt.Errorf("no usable articles for %s", c.lang)
	}
	text := strings.Join(c.parts, "\n\n")
	return Collected{Text: text, Articles: c.articles, Bytes: len(text)}, nil
}

// normalizeTitle maps seed titles and API titles to the same key.
func normalizeTitle(title string) string {
	return strings.ReplaceAll(title, "_", " ")
}
