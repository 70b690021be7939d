package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/patrickmn/go-cache"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
)

const (
	DefaultAniListEndpoint = "https://graphql.anilist.co"
	DefaultAniListCacheTTL = 5 * time.Minute

	defaultPerPage = 20
	maxPerPage     = 50
)

// AniListService interroge le catalogue AniList (GraphQL, sans authentification).
// Les réponses sont gardées en mémoire pendant ttl.
type AniListService struct {
	endpoint string
	client   *http.Client
	cache    *cache.Cache
}

func NewAniListService() *AniListService {
	return &AniListService{
		endpoint: DefaultAniListEndpoint,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		cache: cache.New(DefaultAniListCacheTTL, 2*DefaultAniListCacheTTL),
	}
}

func (s *AniListService) WithEndpoint(endpoint string) *AniListService {
	if strings.TrimSpace(endpoint) != "" {
		s.endpoint = strings.TrimSpace(endpoint)
	}
	return s
}

// WithCacheTTL remplace le cache; ttl <= 0 désactive la mise en cache.
func (s *AniListService) WithCacheTTL(ttl time.Duration) *AniListService {
	if ttl <= 0 {
		s.cache = nil
		return s
	}
	s.cache = cache.New(ttl, 2*ttl)
	return s
}

type AniListMedia struct {
	ID           int               `json:"id"`
	Title        domain.Title      `json:"title"`
	CoverImage   domain.CoverImage `json:"coverImage"`
	BannerImage  string            `json:"bannerImage,omitempty"`
	Description  string            `json:"description,omitempty"`
	Genres       []string          `json:"genres,omitempty"`
	AverageScore int               `json:"averageScore,omitempty"`
	Popularity   int               `json:"popularity,omitempty"`
	Trending     int               `json:"trending,omitempty"`
	Episodes     int               `json:"episodes,omitempty"`
	Season       string            `json:"season,omitempty"`
	SeasonYear   int               `json:"seasonYear,omitempty"`
	Status       string            `json:"status,omitempty"`
	Studios      *AniListStudios   `json:"studios,omitempty"`
}

type AniListStudios struct {
	Nodes []struct {
		Name string `json:"name"`
	} `json:"nodes"`
}

type AniListPageInfo struct {
	Total       int  `json:"total"`
	CurrentPage int  `json:"currentPage"`
	LastPage    int  `json:"lastPage"`
	HasNextPage bool `json:"hasNextPage"`
	PerPage     int  `json:"perPage"`
}

type AniListPage struct {
	PageInfo *AniListPageInfo `json:"pageInfo,omitempty"`
	Media    []AniListMedia   `json:"media"`
}

type aniListGraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type aniListGraphQLError struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

type aniListGraphQLResponse[T any] struct {
	Data   T                     `json:"data"`
	Errors []aniListGraphQLError `json:"errors,omitempty"`
}

type pageData struct {
	Page AniListPage `json:"Page"`
}

const mediaCard = `id title{ romaji english native } coverImage{ large medium }`

const (
	searchQuery = `query($search:String){
		Page(page:1, perPage:10){ media(search:$search, type: ANIME, sort: POPULARITY_DESC){ ` + mediaCard + ` } }
	}`
	popularQuery = `query($page:Int,$perPage:Int){
		Page(page:$page, perPage:$perPage){ media(sort: POPULARITY_DESC, type: ANIME){ ` + mediaCard + ` popularity averageScore } }
	}`
	trendingQuery = `query($page:Int,$perPage:Int){
		Page(page:$page, perPage:$perPage){ media(type: ANIME, sort: TRENDING_DESC){ ` + mediaCard + ` trending popularity } }
	}`
	topQuery = `query($page:Int,$perPage:Int){
		Page(page:$page, perPage:$perPage){ media(sort: SCORE_DESC, type: ANIME){ ` + mediaCard + ` bannerImage averageScore } }
	}`
	genresQuery  = `query { GenreCollection }`
	byGenreQuery = `query($genre:String,$page:Int,$perPage:Int){
		Page(page:$page, perPage:$perPage){
			pageInfo{ total currentPage lastPage hasNextPage perPage }
			media(genre:$genre, type: ANIME, sort: POPULARITY_DESC){ ` + mediaCard + ` averageScore }
		}
	}`
	detailsQuery = `query($id:Int){
		Media(id:$id, type: ANIME){
			` + mediaCard + ` bannerImage description genres averageScore popularity
			episodes season seasonYear status studios{ nodes{ name } }
		}
	}`
)

func (s *AniListService) Search(ctx context.Context, q string) ([]AniListMedia, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []AniListMedia{}, nil
	}
	var out pageData
	if err := s.query(ctx, searchQuery, map[string]any{"search": q}, &out); err != nil {
		return nil, err
	}
	return nonNilMedia(out.Page.Media), nil
}

func (s *AniListService) Popular(ctx context.Context, page, perPage int) ([]AniListMedia, error) {
	return s.list(ctx, popularQuery, page, perPage)
}

func (s *AniListService) Trending(ctx context.Context, page, perPage int) ([]AniListMedia, error) {
	return s.list(ctx, trendingQuery, page, perPage)
}

func (s *AniListService) TopRated(ctx context.Context, page, perPage int) ([]AniListMedia, error) {
	return s.list(ctx, topQuery, page, perPage)
}

func (s *AniListService) list(ctx context.Context, query string, page, perPage int) ([]AniListMedia, error) {
	page, perPage = pagination(page, perPage)
	var out pageData
	if err := s.query(ctx, query, map[string]any{"page": page, "perPage": perPage}, &out); err != nil {
		return nil, err
	}
	return nonNilMedia(out.Page.Media), nil
}

func (s *AniListService) Genres(ctx context.Context) ([]string, error) {
	var out struct {
		GenreCollection []string `json:"GenreCollection"`
	}
	if err := s.query(ctx, genresQuery, nil, &out); err != nil {
		return nil, err
	}
	if out.GenreCollection == nil {
		return []string{}, nil
	}
	return out.GenreCollection, nil
}

func (s *AniListService) ByGenre(ctx context.Context, genre string, page, perPage int) (AniListPage, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return AniListPage{}, invalid("invalid_request", "genre is required")
	}
	page, perPage = pagination(page, perPage)
	var out pageData
	if err := s.query(ctx, byGenreQuery, map[string]any{"genre": genre, "page": page, "perPage": perPage}, &out); err != nil {
		return AniListPage{}, err
	}
	out.Page.Media = nonNilMedia(out.Page.Media)
	return out.Page, nil
}

// Details renvoie la fiche complète; la description est débarrassée de son HTML.
func (s *AniListService) Details(ctx context.Context, id int) (AniListMedia, error) {
	if id <= 0 {
		return AniListMedia{}, invalid("invalid_request", "media id must be positive")
	}
	var out struct {
		Media *AniListMedia `json:"Media"`
	}
	if err := s.query(ctx, detailsQuery, map[string]any{"id": id}, &out); err != nil {
		return AniListMedia{}, err
	}
	if out.Media == nil {
		return AniListMedia{}, ErrNotFound
	}
	m := *out.Media
	m.Description = StripHTML(m.Description)
	return m, nil
}

// EpisodeQueryFromMedia prépare la résolution d'épisodes depuis une fiche AniList.
func EpisodeQueryFromMedia(m AniListMedia, provider domain.Provider) EpisodeQuery {
	q := EpisodeQuery{Title: m.Title, Genres: m.Genres, Provider: provider}
	if m.Episodes > 0 {
		q.EpisodeCount = fmt.Sprint(m.Episodes)
	}
	return q
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

func StripHTML(s string) string {
	return strings.TrimSpace(htmlTag.ReplaceAllString(s, ""))
}

func pagination(page, perPage int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func nonNilMedia(m []AniListMedia) []AniListMedia {
	if m == nil {
		return []AniListMedia{}
	}
	return m
}

// query exécute la requête (ou la sert depuis le cache) et décode data dans out.
func (s *AniListService) query(ctx context.Context, query string, vars map[string]any, out any) error {
	req := aniListGraphQLRequest{Query: query, Variables: vars}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	key := string(body)

	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return json.Unmarshal(cached.([]byte), out)
		}
	}

	raw, err := s.do(ctx, body)
	if err != nil {
		return err
	}

	var resp aniListGraphQLResponse[json.RawMessage]
	if err := json.Unmarshal(raw, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		if resp.Errors[0].Status == http.StatusNotFound {
			return ErrNotFound
		}
		return errors.New(resp.Errors[0].Message)
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.SetDefault(key, []byte(resp.Data))
	}
	return nil
}

func (s *AniListService) do(ctx context.Context, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "hikari-server")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	// AniList renvoie un 404 + errors[] pour un id inconnu: on laisse le décodage trancher.
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
		return nil, errors.New("anilist http error: " + resp.Status)
	}
	return b, nil
}
