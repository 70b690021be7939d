package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
)

// NormalizeEpisodes convertit n'importe quelle liste native en CommonEpisode.
// Le numéro d'épisode retombe sur la position (1-based) quand le provider n'en donne pas,
// et un id manquant est synthétisé depuis cette même position.
func NormalizeEpisodes(p domain.EpisodePayload) []domain.CommonEpisode {
	var out []domain.CommonEpisode

	switch v := p.(type) {
	case domain.HentaiResponse:
		// premier résultat = meilleur match (pas de scoring)
		if len(v.Results) == 0 {
			break
		}
		out = lo.Map(v.Results[0].Episodes, func(e domain.HentaiEpisode, i int) domain.CommonEpisode {
			return domain.CommonEpisode{
				ID:            e.ID.String(),
				Title:         e.Name,
				EpisodeNumber: ordinal(i),
				Slug:          e.Slug,
			}
		})
	case domain.HianimeEpisodesResponse:
		out = lo.Map(v.Results, func(e domain.HianimeEpisode, i int) domain.CommonEpisode {
			return domain.CommonEpisode{
				ID:            e.ID.String(),
				Title:         e.Title,
				EpisodeNumber: firstNonEmpty(e.EpisodeNo.String(), e.Number.String(), ordinal(i)),
				JapaneseTitle: e.JapaneseTitle,
			}
		})
	case domain.VoirAnimeEpisodesResponse:
		out = lo.Map(v.Episodes, func(e domain.VoirAnimeEntry, i int) domain.CommonEpisode {
			return domain.CommonEpisode{ID: e.Link, Title: e.Title, EpisodeNumber: ordinal(i)}
		})
	case domain.AnimeSamaSeasonsResponse:
		out = lo.Map(v.Results, func(s domain.AnimeSamaSeason, i int) domain.CommonEpisode {
			return domain.CommonEpisode{ID: s.URL, Title: s.Name, EpisodeNumber: ordinal(i)}
		})
	}

	if out == nil {
		return []domain.CommonEpisode{}
	}
	if p != nil {
		ensureIDs(p.Source(), out)
	}
	return out
}

func ensureIDs(provider domain.Provider, eps []domain.CommonEpisode) {
	for i := range eps {
		if strings.TrimSpace(eps[i].ID) == "" {
			eps[i].ID = fmt.Sprintf("%s-%d", provider, i+1)
		}
	}
}

func ordinal(i int) string { return strconv.Itoa(i + 1) }

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func episodesEmpty(eps []domain.CommonEpisode) bool { return len(eps) == 0 }
