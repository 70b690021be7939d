package app

import (
	"errors"
	"strings"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/ports"
)

// Providers regroupe les adapters utilisés par les résolveurs. Un champ nil
// se comporte comme un provider qui ne renvoie jamais rien.
type Providers struct {
	Hentai    ports.HentaiCatalog
	HentaiAlt ports.HentaiAltStream
	Hianime   ports.HianimeProvider
	VoirAnime ports.VoirAnimeProvider
	AnimeSama ports.AnimeSamaProvider
	Sanitize  ports.Sanitizer
}

// HentaiAltSuffixes sont essayés dans cet ordre sur l'alt-stream.
var HentaiAltSuffixes = []string{"1", "1-episode-1", "season-1"}

// HianimeFallbackHint est l'indice d'épisode utilisé pour la seconde tentative hianime.
const HianimeFallbackHint = "0"

func (p Providers) sanitize(title string) string {
	if p.Sanitize == nil {
		return strings.TrimSpace(title)
	}
	return p.Sanitize(title)
}

// asProvider réattribue une ProviderError au provider réellement sélectionné
// (l'adapter VoirAnime sert VO et VF avec le même client).
func asProvider(err error, p domain.Provider) error {
	var pe *ports.ProviderError
	if err == nil || !errors.As(err, &pe) || pe.Provider == p {
		return err
	}
	tagged := *pe
	tagged.Provider = p
	return &tagged
}
