package domain

import (
	"fmt"
	"strings"
)

// Provider identifie la source externe qui fournit épisodes et streams.
type Provider string

const (
	ProviderHentai      Provider = "hentai"
	ProviderHianime     Provider = "hianime"
	ProviderVoirAnimeVO Provider = "voiranime-vo"
	ProviderVoirAnimeVF Provider = "voiranime-vf"
	ProviderAnimeSama   Provider = "animesama"
)

// DefaultProvider est utilisé quand l'utilisateur n'a rien choisi (contenu non adulte).
const DefaultProvider = ProviderHianime

var knownProviders = []Provider{
	ProviderHentai,
	ProviderHianime,
	ProviderVoirAnimeVO,
	ProviderVoirAnimeVF,
	ProviderAnimeSama,
}

func Providers() []Provider {
	return append([]Provider(nil), knownProviders...)
}

func (p Provider) Valid() bool {
	for _, k := range knownProviders {
		if p == k {
			return true
		}
	}
	return false
}

func (p Provider) String() string { return string(p) }

// ParseProvider accepte la valeur vide (=> DefaultProvider).
func ParseProvider(raw string) (Provider, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return DefaultProvider, nil
	}
	p := Provider(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown provider %q", raw)
	}
	return p, nil
}

// Title regroupe les variantes de titre fournies par le catalogue.
type Title struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Native  string `json:"native"`
}

// Primary renvoie le titre romaji, ou à défaut le titre natif.
func (t Title) Primary() string {
	if s := strings.TrimSpace(t.Romaji); s != "" {
		return s
	}
	return strings.TrimSpace(t.Native)
}

// Display suit la règle de l'écran de détails: anglais d'abord, sinon romaji.
func (t Title) Display() string {
	if s := strings.TrimSpace(t.English); s != "" {
		return s
	}
	return strings.TrimSpace(t.Romaji)
}
