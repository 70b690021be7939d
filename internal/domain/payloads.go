package domain

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Réponses "natives" des providers. Chaque variante est décodée explicitement par l'adapter;
// la normalisation en CommonEpisode se fait côté app via un switch sur EpisodePayload.

// EpisodePayload est l'union des listes d'épisodes brutes renvoyées par les providers.
type EpisodePayload interface {
	Source() Provider
	episodePayload()
}

// FlexString accepte une chaîne ou un nombre JSON (les providers ne sont pas cohérents).
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("flexstring: expected string or number")
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// --- hentai (catalogue + alt-stream) ---

type HentaiResponse struct {
	Results []HentaiResult `json:"results"`
}

func (HentaiResponse) Source() Provider { return ProviderHentai }
func (HentaiResponse) episodePayload()  {}

type HentaiResult struct {
	Name     string          `json:"name"`
	Streams  []HentaiStream  `json:"streams"`
	Episodes []HentaiEpisode `json:"episodes"`
}

type HentaiStream struct {
	Width   int        `json:"width"`
	Height  FlexString `json:"height"`
	SizeMBs float64    `json:"size_mbs"`
	URL     string     `json:"url"`
}

type HentaiEpisode struct {
	ID   FlexString `json:"id"`
	Name string     `json:"name"`
	Slug string     `json:"slug,omitempty"`
	Link string     `json:"link,omitempty"`
}

// --- hianime ---

type HianimeSearchResponse struct {
	Success bool          `json:"success"`
	Result  *HianimeAnime `json:"result"`
}

type HianimeAnime struct {
	ID     FlexString `json:"id"`
	Title  string     `json:"title"`
	DataID FlexString `json:"data_id,omitempty"`
	Link   string     `json:"link,omitempty"`
}

type HianimeEpisodesResponse struct {
	Success bool             `json:"success"`
	Results []HianimeEpisode `json:"results"`
}

func (HianimeEpisodesResponse) Source() Provider { return ProviderHianime }
func (HianimeEpisodesResponse) episodePayload()  {}

type HianimeEpisode struct {
	ID            FlexString `json:"id"`
	Title         string     `json:"title"`
	EpisodeNo     FlexString `json:"episode_no,omitempty"`
	Number        FlexString `json:"number,omitempty"`
	JapaneseTitle string     `json:"japanese_title,omitempty"`
}

// HianimeStreamResponse garde chaque entrée de streamingInfo telle que reçue
// (sources, tracks, intro/outro, entrées "rejected"): le client lit la forme du backend.
type HianimeStreamResponse struct {
	Success bool `json:"success"`
	Results struct {
		StreamingInfo []json.RawMessage `json:"streamingInfo"`
	} `json:"results"`
}

// --- voiranime ---

type VoirAnimeSearchResponse struct {
	Success bool `json:"success"`
	Results struct {
		VO []VoirAnimeEntry `json:"VO"`
		VF []VoirAnimeEntry `json:"VF"`
	} `json:"results"`
}

type VoirAnimeEntry struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// VoirAnimeEpisodesResponse accepte "results" sous forme de tableau ou d'objet
// {currentPageId, episodes}: le backend a connu les deux formes.
type VoirAnimeEpisodesResponse struct {
	Success       bool
	CurrentPageID string
	Episodes      []VoirAnimeEntry
	// Lang vaut ProviderVoirAnimeVO ou ProviderVoirAnimeVF (renseigné par l'adapter).
	Lang Provider
}

func (r VoirAnimeEpisodesResponse) Source() Provider {
	if r.Lang == "" {
		return ProviderVoirAnimeVO
	}
	return r.Lang
}
func (VoirAnimeEpisodesResponse) episodePayload() {}

func (r *VoirAnimeEpisodesResponse) UnmarshalJSON(b []byte) error {
	var raw struct {
		Success bool            `json:"success"`
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Success = raw.Success
	res := bytes.TrimSpace(raw.Results)
	switch {
	case len(res) == 0 || bytes.Equal(res, []byte("null")):
		return nil
	case res[0] == '[':
		return json.Unmarshal(res, &r.Episodes)
	case res[0] == '{':
		var page struct {
			CurrentPageID FlexString       `json:"currentPageId"`
			Episodes      []VoirAnimeEntry `json:"episodes"`
		}
		if err := json.Unmarshal(res, &page); err != nil {
			return err
		}
		r.CurrentPageID = page.CurrentPageID.String()
		r.Episodes = page.Episodes
		return nil
	default:
		return errors.New("voiranime: unexpected results shape")
	}
}

// --- anime-sama ---

type AnimeSamaSearchResponse struct {
	Success bool             `json:"success"`
	Results []AnimeSamaEntry `json:"results"`
}

type AnimeSamaEntry struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link"`
	ImgSrc      string `json:"imgSrc,omitempty"`
}

type AnimeSamaSeasonsResponse struct {
	Success bool              `json:"success"`
	Results []AnimeSamaSeason `json:"results"`
}

func (AnimeSamaSeasonsResponse) Source() Provider { return ProviderAnimeSama }
func (AnimeSamaSeasonsResponse) episodePayload()  {}

type AnimeSamaSeason struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type AnimeSamaStreamResponse struct {
	Success bool             `json:"success"`
	Results AnimeSamaStreams `json:"results"`
}

type AnimeSamaStreams struct {
	VOSTFR []AnimeSamaSource `json:"vostfr"`
	VF     []AnimeSamaSource `json:"vf"`
}

type AnimeSamaSource struct {
	Source string `json:"source"`
	URL    string `json:"url"`
}

// --- voiranime streams: forme non documentée, transmise telle quelle ---

type VoirAnimeStreamResponse struct {
	Success bool            `json:"success"`
	Results json.RawMessage `json:"results"`
}
