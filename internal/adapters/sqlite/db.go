package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB porte le stockage local de l'app: la table kv (liste de favoris) et son schéma.
// ":memory:" est accepté pour les tests.
type DB struct {
	SQL *sql.DB
}

type migration struct {
	version int
	name    string
	up      string
}

func Open(ctx context.Context, path string) (*DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite: empty path")
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "sqlite: open %s", path)
	}
	// ":memory:" n'existe que sur sa connexion: une seule connexion, jamais recyclée.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	db := &DB{SQL: conn}
	if err := db.init(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) init(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := d.SQL.PingContext(pingCtx); err != nil {
		return errors.Wrap(err, "sqlite: ping")
	}
	if _, err := d.SQL.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		return errors.Wrap(err, "sqlite: busy_timeout")
	}
	return d.Migrate(ctx)
}

func (d *DB) Close() error {
	if d == nil || d.SQL == nil {
		return nil
	}
	return d.SQL.Close()
}

// Version renvoie la dernière migration appliquée (0 si aucune).
func (d *DB) Version(ctx context.Context) (int, error) {
	var v sql.NullInt64
	if err := d.SQL.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// Migrate applique, dans l'ordre, les migrations embarquées au-delà de Version.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.SQL.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL)`); err != nil {
		return errors.Wrap(err, "sqlite: schema_migrations")
	}
	current, err := d.Version(ctx)
	if err != nil {
		return err
	}
	all, err := loadMigrations()
	if err != nil {
		return err
	}
	for _, m := range all {
		if m.version <= current {
			continue
		}
		if err := d.apply(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) apply(ctx context.Context, m migration) (err error) {
	tx, err := d.SQL.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if strings.TrimSpace(m.up) != "" {
		if _, err = tx.ExecContext(ctx, m.up); err != nil {
			return errors.Wrapf(err, "migration %s", m.name)
		}
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)`, m.version, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return errors.Wrapf(err, "migration %s: record", m.name)
	}
	return tx.Commit()
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, err
	}
	out := make([]migration, 0, len(entries))
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := migrationsFS.ReadFile("migrations/" + e.Name())
		if err != nil {
			return nil, err
		}
		m, err := parseMigration(e.Name(), string(b))
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// parseMigration lit "<version>_<nom>.sql" et ne garde que la section "-- +migrate Up".
func parseMigration(name, text string) (migration, error) {
	prefix, _, _ := strings.Cut(name, "_")
	v, err := strconv.Atoi(prefix)
	if err != nil || v <= 0 {
		return migration{}, errors.Errorf("invalid migration name: %s", name)
	}

	var up []string
	section := ""
	for _, line := range strings.Split(text, "\n") {
		switch strings.TrimSpace(line) {
		case "-- +migrate Up":
			section = "up"
			continue
		case "-- +migrate Down":
			section = "down"
			continue
		}
		if section == "up" {
			up = append(up, line)
		}
	}
	return migration{version: v, name: name, up: strings.Join(up, "\n")}, nil
}
