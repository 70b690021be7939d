package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/adapters/memorybus"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/adapters/scraperapi"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/adapters/sqlite"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/app"
)

type testEnv struct {
	api *httptest.Server
	bus *memorybus.Bus
}

// fakeScraper simule le backend de scraping: "Demon Slayer" existe sur hianime (3 épisodes),
// "SomeHentai" n'existe que sous alt-stream season-1 et son catalogue renvoie une forme inattendue.
func fakeScraper() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/a/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("keyword") != "Demon Slayer" {
			_, _ = w.Write([]byte(`{"success":false}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"result":{"id":"demon-slayer-47","title":"Demon Slayer"}}`))
	})
	mux.HandleFunc("/a/episodes/demon-slayer-47", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"results":[
			{"id":"demon-slayer-47?ep=1","title":"Cruelty","episode_no":1},
			{"id":"demon-slayer-47?ep=2","title":"Trainer","episode_no":2},
			{"id":"demon-slayer-47?ep=3","title":"Sabito","episode_no":3}]}`))
	})
	mux.HandleFunc("/a/stream", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "demon-slayer-47?ep=1" {
			_, _ = w.Write([]byte(`{"success":true,"results":{"streamingInfo":[]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"results":{"streamingInfo":[{"status":"fulfilled","value":{"decryptionResult":{"type":"sub","source":{"sources":[{"file":"https://cdn/master.m3u8","type":"hls"}]},"server":4}}}]}}`))
	})
	mux.HandleFunc("/h/watch/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/h/watch/SomeHentai":
			_, _ = w.Write([]byte(`{"error":"upstream changed"}`))
		case "/h/watch/SomeHentai/season-1":
			_, _ = w.Write([]byte(`{"results":[{"name":"SomeHentai","streams":[],"episodes":[{"id":1,"name":"Episode 1","slug":"somehentai-1"}]}]}`))
		default:
			_, _ = w.Write([]byte(`{"results":[]}`))
		}
	})
	mux.HandleFunc("/s/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"results":[{"title":"Demon Slayer","link":"https://as/catalogue/demon-slayer/"}]}`))
	})
	mux.HandleFunc("/s/episodes", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"results":[{"name":"Saison 1","url":"saison1/vostfr"}]}`))
	})
	return mux
}

func fakeAniList() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"Media":{"id":101922,"title":{"romaji":"Kimetsu no Yaiba","english":"Demon Slayer"},"genres":["Action"],"episodes":26,"description":"<i>Hi</i>"}}}`))
	})
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	scraper := httptest.NewServer(fakeScraper())
	t.Cleanup(scraper.Close)
	anilist := httptest.NewServer(fakeAniList())
	t.Cleanup(anilist.Close)

	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	bus := memorybus.New()
	t.Cleanup(bus.Close)

	logger := zerolog.Nop()
	client := scraperapi.New().WithBaseURL(scraper.URL).WithTimeout(2 * time.Second)
	hentai := client.Hentai()
	providers := app.Providers{
		Hentai:    hentai,
		HentaiAlt: hentai,
		Hianime:   client.Hianime(),
		VoirAnime: client.VoirAnime(),
		AnimeSama: client.AnimeSama(),
		Sanitize:  scraperapi.Sanitize,
	}
	episodes := app.NewEpisodeResolver(logger, providers).WithEventBus(bus)

	srv := NewServer(logger, Services{
		Episodes:  episodes,
		Streams:   app.NewStreamResolver(logger, providers).WithEventBus(bus),
		Sessions:  app.NewSessionRegistry(episodes, 16),
		AniList:   app.NewAniListService().WithEndpoint(anilist.URL),
		Favorites: app.NewFavoritesService(logger, sqlite.NewFavoritesRepository(db.SQL)).WithEventBus(bus),
		Embeds:    app.NewEmbedResolver(logger),
	}, bus)

	api := httptest.NewServer(srv.Router())
	t.Cleanup(api.Close)
	return &testEnv{api: api, bus: bus}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, e.api.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

type resolution struct {
	SessionID string `json:"sessionId"`
	Provider  string `json:"provider"`
	Adult     bool   `json:"adult"`
	Found     bool   `json:"found"`
	Episodes  []struct {
		ID            string `json:"id"`
		Title         string `json:"title"`
		EpisodeNumber string `json:"episodeNumber"`
	} `json:"episodes"`
}

func TestHealthAndOpenAPI(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, body = env.do(t, http.MethodGet, "/api/v1/openapi.json", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Contains(t, doc.Paths, "/api/v1/episodes/resolve")
	assert.Contains(t, doc.Paths, "/api/v1/sessions/{id}/provider")
}

func TestResolveEpisodes_EndToEnd(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/episodes/resolve",
		`{"title":{"romaji":"Kimetsu no Yaiba","english":"Demon Slayer"},"genres":["Action"],"provider":"hianime","episodeCount":26}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var got resolution
	require.NoError(t, json.Unmarshal(body, &got))
	assert.True(t, got.Found)
	assert.NotEmpty(t, got.SessionID)
	assert.Equal(t, "hianime", got.Provider)
	require.Len(t, got.Episodes, 3)
	assert.Equal(t, "demon-slayer-47?ep=1", got.Episodes[0].ID)
	assert.Equal(t, "3", got.Episodes[2].EpisodeNumber)
}

func TestResolveEpisodes_UnexpectedHentaiPayloadFallsToAltStream(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/episodes/resolve",
		`{"title":{"romaji":"SomeHentai","english":"Some Hentai"},"genres":["Hentai"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var got resolution
	require.NoError(t, json.Unmarshal(body, &got))
	assert.True(t, got.Adult)
	assert.True(t, got.Found)
	require.Len(t, got.Episodes, 1)
	assert.Equal(t, "1", got.Episodes[0].ID)
	assert.Contains(t, string(body), `"step":"hentai-alt:season-1"`)
}

func TestResolveEpisodes_NotFoundIsStill200(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/episodes/resolve", `{"title":{"romaji":"Nothing"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"episodes":[]`)
	assert.Contains(t, string(body), `"found":false`)
}

func TestResolveEpisodes_BadRequests(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/episodes/resolve", `{"title":{"romaji":"X"},"provider":"crunchyroll"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"code":"unknown_provider"`)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/episodes/resolve", `{"title":{}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/episodes/resolve", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStream_EndToEnd(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/episodes/stream",
		`{"episode":{"id":"demon-slayer-47?ep=1","title":"Cruelty"},"provider":"hianime"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "https://cdn/master.m3u8")

	resp, _ = env.do(t, http.MethodPost, "/api/v1/episodes/stream",
		`{"episode":{"id":"demon-slayer-47?ep=2"},"provider":"hianime"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/episodes/stream", `{"episode":{}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func waitSession(t *testing.T, env *testEnv, id string, provider string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_, body := env.do(t, http.MethodGet, "/api/v1/sessions/"+id, "")
		var snap map[string]any
		require.NoError(t, json.Unmarshal(body, &snap))
		if res, ok := snap["result"].(map[string]any); ok && res["provider"] == provider {
			return snap
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("session %s never resolved with %s", id, provider)
	return nil
}

func TestSessions_Lifecycle(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/sessions/", `{"title":{"english":"Demon Slayer"}}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(body))
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.ID)

	snap := waitSession(t, env, created.ID, "hianime")
	assert.Equal(t, true, snap["result"].(map[string]any)["found"])

	resp, _ = env.do(t, http.MethodPost, "/api/v1/sessions/"+created.ID+"/provider", `{"provider":"animesama"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	snap = waitSession(t, env, created.ID, "animesama")
	eps := snap["result"].(map[string]any)["episodes"].([]any)
	assert.Equal(t, "saison1/vostfr", eps[0].(map[string]any)["id"])

	resp, _ = env.do(t, http.MethodPost, "/api/v1/sessions/"+created.ID+"/provider", `{"provider":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/v1/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = env.do(t, http.MethodGet, "/api/v1/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnimeEpisodes_FromAniList(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/anime/101922/episodes", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var got resolution
	require.NoError(t, json.Unmarshal(body, &got))
	assert.True(t, got.Found)
	assert.Len(t, got.Episodes, 3)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/anime/abc/episodes", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/v1/anilist/media/101922", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"description":"Hi"`)
}

func TestFavorites_CRUD(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/api/v1/favorites/", `{"id":101922,"title":{"romaji":"Kimetsu no Yaiba","english":"Demon Slayer"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPost, "/api/v1/favorites/", `{"id":101922}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPost, "/api/v1/favorites/", `{"id":5,"title":{"romaji":"Mushishi"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, body := env.do(t, http.MethodGet, "/api/v1/favorites/?q=slayer", "")
	var favs []struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &favs))
	require.Len(t, favs, 1)
	assert.Equal(t, 101922, favs[0].ID)

	_, body = env.do(t, http.MethodGet, "/api/v1/favorites/5", "")
	assert.JSONEq(t, `{"id":5,"favorite":true}`, string(body))

	resp, _ = env.do(t, http.MethodDelete, "/api/v1/favorites/5", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = env.do(t, http.MethodDelete, "/api/v1/favorites/5", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEvents_StreamsBusEvents(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.api.URL+"/api/v1/events?topic=episodes.resolved", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	rd := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var name, data string
		for {
			line, err := rd.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case line == "":
				return name, data
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			}
		}
	}

	name, _ := readEvent()
	require.Equal(t, "hello", name)

	// l'abonnement au bus suit le hello: on attend qu'il soit en place
	require.Eventually(t, func() bool { return env.bus.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	env.bus.Publish("favorites.changed", []byte(`{"op":"add"}`))
	env.bus.Publish("episodes.resolved", []byte(`{"found":true}`))

	name, data := readEvent()
	assert.Equal(t, "episodes.resolved", name)
	assert.Equal(t, `{"found":true}`, data)
}
