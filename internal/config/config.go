// Package config charge la configuration du serveur: valeurs par défaut, fichier optionnel,
// puis variables d'environnement HIKARI_* (ex: HIKARI_PROVIDERS_BASE_URL).
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "HIKARI"

var envKeyReplacer = strings.NewReplacer(".", "_")

type Config struct {
	Addr   string
	DBPath string

	ProvidersBaseURL string
	ProvidersTimeout time.Duration

	AniListEndpoint string
	AniListCacheTTL time.Duration

	LogLevel    string
	MaxSessions int
}

var defaults = map[string]any{
	"addr":               "127.0.0.1:8080",
	"db.path":            "hikari.db",
	"providers.base_url": "http://127.0.0.1:6969",
	"providers.timeout":  "15s",
	"anilist.endpoint":   "https://graphql.anilist.co",
	"anilist.cache_ttl":  "5m",
	"log.level":          "info",
	"sessions.max":       256,
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

// Default lit uniquement les valeurs par défaut et l'environnement.
func Default() Config {
	c, err := decode(newViper())
	if err != nil {
		// une durée invalide dans l'env: on garde les valeurs d'usine
		c, _ = decode(viperDefaultsOnly())
	}
	return c
}

// Load lit en plus le fichier path (toml, yaml ou json selon l'extension) s'il est fourni.
func Load(path string) (Config, error) {
	v := newViper()
	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
	}
	return decode(v)
}

func viperDefaultsOnly() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

func decode(v *viper.Viper) (Config, error) {
	c := Config{
		Addr:             strings.TrimSpace(v.GetString("addr")),
		DBPath:           strings.TrimSpace(v.GetString("db.path")),
		ProvidersBaseURL: strings.TrimRight(strings.TrimSpace(v.GetString("providers.base_url")), "/"),
		AniListEndpoint:  strings.TrimSpace(v.GetString("anilist.endpoint")),
		LogLevel:         strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
		MaxSessions:      v.GetInt("sessions.max"),
	}

	var err error
	if c.ProvidersTimeout, err = parseDuration(v, "providers.timeout"); err != nil {
		return Config{}, err
	}
	if c.AniListCacheTTL, err = parseDuration(v, "anilist.cache_ttl"); err != nil {
		return Config{}, err
	}
	if c.ProvidersTimeout <= 0 {
		return Config{}, errors.New("providers.timeout must be positive")
	}
	return c, nil
}

// cast de viper renvoie 0 sans erreur sur une durée invalide: on parse nous-mêmes.
func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return d, nil
}
