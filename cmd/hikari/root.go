package main

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	var (
		server  string
		timeout time.Duration
	)
	root := &cobra.Command{
		Use:           "hikari",
		Short:         "Client en ligne de commande pour hikari-server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&server, "server", envOr("HIKARI_SERVER_URL", "http://127.0.0.1:8080"), "URL du serveur")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Timeout HTTP")

	client := func(cmd *cobra.Command) *apiClient {
		return newAPIClient(server, timeout, cmd.OutOrStdout())
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "health",
			Short: "État du serveur",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return client(cmd).call(cmd.Context(), "GET", "/health", nil)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Version du serveur",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return client(cmd).call(cmd.Context(), "GET", "/version", nil)
			},
		},
		newEpisodesCmd(client),
		newStreamCmd(client),
		newFavoritesCmd(client),
	)
	return root
}

func newEpisodesCmd(client func(*cobra.Command) *apiClient) *cobra.Command {
	var (
		english  string
		native   string
		genres   []string
		provider string
		count    int
	)
	cmd := &cobra.Command{
		Use:   "episodes <titre romaji>",
		Short: "Résout la liste d'épisodes d'un titre",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"title": map[string]string{
					"romaji":  strings.Join(args, " "),
					"english": english,
					"native":  native,
				},
				"genres":   lo.Compact(genres),
				"provider": provider,
			}
			if count > 0 {
				body["episodeCount"] = strconv.Itoa(count)
			}
			return client(cmd).call(cmd.Context(), "POST", "/episodes/resolve", body)
		},
	}
	cmd.Flags().StringVar(&english, "english", "", "Titre anglais")
	cmd.Flags().StringVar(&native, "native", "", "Titre natif")
	cmd.Flags().StringSliceVar(&genres, "genre", nil, "Genre AniList (répétable)")
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "hianime, voiranime-vo, voiranime-vf, animesama, hentai")
	cmd.Flags().IntVar(&count, "episodes", 0, "Nombre d'épisodes connu (indice hianime)")
	return cmd
}

func newStreamCmd(client func(*cobra.Command) *apiClient) *cobra.Command {
	var (
		provider string
		adult    bool
	)
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Résout les flux d'un épisode (JSON CommonEpisode sur stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var episode map[string]any
			if err := json.NewDecoder(cmd.InOrStdin()).Decode(&episode); err != nil {
				return err
			}
			return client(cmd).call(cmd.Context(), "POST", "/episodes/stream", map[string]any{
				"episode":  episode,
				"provider": provider,
				"adult":    adult,
			})
		},
	}
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Provider de l'épisode")
	cmd.Flags().BoolVar(&adult, "adult", false, "Contenu adulte (provider hentai)")
	return cmd
}

func newFavoritesCmd(client func(*cobra.Command) *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Gère les favoris",
	}

	var query string
	list := &cobra.Command{
		Use:   "list",
		Short: "Liste les favoris",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/favorites/"
			if q := strings.TrimSpace(query); q != "" {
				path += "?q=" + url.QueryEscape(q)
			}
			return client(cmd).call(cmd.Context(), "GET", path, nil)
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "Filtre (fuzzy) sur les titres")

	var romaji, english, cover string
	add := &cobra.Command{
		Use:   "add <id AniList>",
		Short: "Ajoute un favori",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			return client(cmd).call(cmd.Context(), "POST", "/favorites/", map[string]any{
				"id":         id,
				"title":      map[string]string{"romaji": romaji, "english": english},
				"coverImage": map[string]string{"large": cover},
			})
		},
	}
	add.Flags().StringVar(&romaji, "romaji", "", "Titre romaji")
	add.Flags().StringVar(&english, "english", "", "Titre anglais")
	add.Flags().StringVar(&cover, "cover", "", "URL de la couverture")

	rm := &cobra.Command{
		Use:     "rm <id AniList>",
		Aliases: []string{"remove"},
		Short:   "Retire un favori",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := strconv.Atoi(args[0]); err != nil {
				return err
			}
			return client(cmd).call(cmd.Context(), "DELETE", "/favorites/"+args[0], nil)
		},
	}

	cmd.AddCommand(list, add, rm)
	return cmd
}
