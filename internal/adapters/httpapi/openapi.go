package httpapi

import (
	"net/http"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/buildinfo"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/httpjson"
)

func jsonContent(schemaRef string) map[string]any {
	return map[string]any{
		"application/json": map[string]any{
			"schema": map[string]any{"$ref": schemaRef},
		},
	}
}

func jsonOK(schemaRef string) map[string]any {
	return map[string]any{"description": "OK", "content": jsonContent(schemaRef)}
}

func op(summary string, responses map[string]any) map[string]any {
	return map[string]any{"summary": summary, "responses": responses}
}

func withBody(o map[string]any, schemaRef string) map[string]any {
	o["requestBody"] = map[string]any{"required": true, "content": jsonContent(schemaRef)}
	return o
}

func str() map[string]any { return map[string]any{"type": "string"} }

// handleOpenAPI décrit les routes exposées (document minimal, sans exemples).
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	errResp := map[string]any{"description": "Error", "content": jsonContent("#/components/schemas/Error")}
	anyOK := map[string]any{"description": "OK"}

	providers := make([]any, 0)
	for _, p := range domain.Providers() {
		providers = append(providers, p.String())
	}

	spec := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "HikariFlix API",
			"version": buildinfo.Current().Version,
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"Error": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"error": str(),
						"code":  str(),
					},
					"required": []any{"error"},
				},
				"Provider": map[string]any{"type": "string", "enum": providers},
				"Title": map[string]any{
					"type":       "object",
					"properties": map[string]any{"romaji": str(), "english": str(), "native": str()},
				},
				"CommonEpisode": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": str(), "title": str(), "episodeNumber": str(), "japaneseTitle": str(), "slug": str(),
					},
					"required": []any{"id", "title"},
				},
				"ResolveRequest": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":        map[string]any{"$ref": "#/components/schemas/Title"},
						"genres":       map[string]any{"type": "array", "items": str()},
						"provider":     map[string]any{"$ref": "#/components/schemas/Provider"},
						"episodeCount": str(),
					},
					"required": []any{"title"},
				},
				"Resolution": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"sessionId": str(),
						"provider":  map[string]any{"$ref": "#/components/schemas/Provider"},
						"adult":     map[string]any{"type": "boolean"},
						"found":     map[string]any{"type": "boolean"},
						"episodes":  map[string]any{"type": "array", "items": map[string]any{"$ref": "#/components/schemas/CommonEpisode"}},
						"attempts":  map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
					},
				},
				"StreamRequest": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"episode":  map[string]any{"$ref": "#/components/schemas/CommonEpisode"},
						"provider": map[string]any{"$ref": "#/components/schemas/Provider"},
						"adult":    map[string]any{"type": "boolean"},
					},
					"required": []any{"episode"},
				},
				"StreamDescriptor": map[string]any{"type": "object", "additionalProperties": true},
				"Session":          map[string]any{"type": "object", "additionalProperties": true},
				"Favorite": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":         map[string]any{"type": "integer"},
						"title":      map[string]any{"$ref": "#/components/schemas/Title"},
						"coverImage": map[string]any{"type": "object", "properties": map[string]any{"large": str(), "medium": str()}},
					},
					"required": []any{"id"},
				},
			},
		},
		"paths": map[string]any{
			"/api/v1/health":       map[string]any{"get": op("Health", map[string]any{"200": anyOK})},
			"/api/v1/version":      map[string]any{"get": op("Build info", map[string]any{"200": anyOK})},
			"/api/v1/openapi.json": map[string]any{"get": op("This document", map[string]any{"200": anyOK})},
			"/api/v1/events":       map[string]any{"get": op("Server-Sent Events (episodes.resolved, stream.resolved, favorites.changed)", map[string]any{"200": anyOK})},
			"/api/v1/episodes/resolve": map[string]any{
				"post": withBody(op("Resolve the episode list of a title", map[string]any{"200": jsonOK("#/components/schemas/Resolution"), "400": errResp}), "#/components/schemas/ResolveRequest"),
			},
			"/api/v1/episodes/stream": map[string]any{
				"post": withBody(op("Resolve playable streams of an episode", map[string]any{"200": jsonOK("#/components/schemas/StreamDescriptor"), "400": errResp, "404": errResp}), "#/components/schemas/StreamRequest"),
			},
			"/api/v1/sessions": map[string]any{
				"post": withBody(op("Create a resolution session (asynchronous)", map[string]any{"202": jsonOK("#/components/schemas/Session"), "400": errResp}), "#/components/schemas/ResolveRequest"),
			},
			"/api/v1/sessions/{id}": map[string]any{
				"get":    op("Session state", map[string]any{"200": jsonOK("#/components/schemas/Session"), "404": errResp}),
				"delete": op("Close a session", map[string]any{"204": map[string]any{"description": "No Content"}, "404": errResp}),
			},
			"/api/v1/sessions/{id}/provider": map[string]any{
				"post": op("Switch provider and resolve again", map[string]any{"202": jsonOK("#/components/schemas/Session"), "400": errResp, "404": errResp}),
			},
			"/api/v1/anime/{id}/episodes": map[string]any{
				"post": op("Resolve episodes from an AniList media id", map[string]any{"200": jsonOK("#/components/schemas/Resolution"), "404": errResp, "502": errResp}),
			},
			"/api/v1/anilist/search":         map[string]any{"get": op("Search AniList", map[string]any{"200": anyOK, "502": errResp})},
			"/api/v1/anilist/popular":        map[string]any{"get": op("Popular anime", map[string]any{"200": anyOK, "502": errResp})},
			"/api/v1/anilist/trending":       map[string]any{"get": op("Trending anime", map[string]any{"200": anyOK, "502": errResp})},
			"/api/v1/anilist/top":            map[string]any{"get": op("Top rated anime", map[string]any{"200": anyOK, "502": errResp})},
			"/api/v1/anilist/genres":         map[string]any{"get": op("Genre list", map[string]any{"200": anyOK, "502": errResp})},
			"/api/v1/anilist/genres/{genre}": map[string]any{"get": op("Anime by genre", map[string]any{"200": anyOK, "502": errResp})},
			"/api/v1/anilist/media/{id}":     map[string]any{"get": op("Media details", map[string]any{"200": anyOK, "404": errResp, "502": errResp})},
			"/api/v1/favorites": map[string]any{
				"get":  op("List favorites (?q= fuzzy filter)", map[string]any{"200": anyOK}),
				"post": withBody(op("Add a favorite", map[string]any{"201": jsonOK("#/components/schemas/Favorite"), "400": errResp, "409": errResp}), "#/components/schemas/Favorite"),
			},
			"/api/v1/favorites/{id}": map[string]any{
				"get":    op("Is favorite", map[string]any{"200": anyOK}),
				"delete": op("Remove a favorite", map[string]any{"204": map[string]any{"description": "No Content"}, "404": errResp}),
			},
			"/api/v1/streams/direct": map[string]any{
				"get": op("Turn an embed page URL into a direct media URL", map[string]any{"200": anyOK, "400": errResp, "404": errResp}),
			},
		},
	}

	httpjson.Write(w, http.StatusOK, spec)
}
