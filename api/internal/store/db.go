package store

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	_ "modernc.org/sqlite"             // sqlite driver
)

type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

// Open picks a driver from the DSN: postgres:// and postgresql:// use pgx,
// anything else (sqlite:, file: or a plain path) is a SQLite database.
func Open(ctx context.Context, dsn string) (*sql.DB, Dialect, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, 0, fmt.Errorf("store: empty dsn")
	}

	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		dialect = Postgres
		db, err = sql.Open("pgx", dsn)
		if err == nil {
			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(10)
			db.SetConnMaxLifetime(1 * time.Hour)
		}
	default:
		dialect = SQLite
		db, err = sql.Open("sqlite", strings.TrimPrefix(dsn, "sqlite:"))
		if err == nil {
			// sqlite allows a single writer
			db.SetMaxOpenConns(1)
		}
	}
	if err != nil {
		return nil, 0, fmt.Errorf("store: open %s: %w", dialect, err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, 0, fmt.Errorf("store: ping %s: %w", dialect, err)
	}
	return db, dialect, nil
}

// ResolveDSN picks the preference database from the environment. PREFS_DSN
// wins, then DATABASE_URL, then a Postgres URL built from POSTGRES_* / PG*
// when a password or host is configured. Empty means no database.
func ResolveDSN(getenv func(string) string) string {
	get := func(k, def string) string {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
		return def
	}
	if v := get("PREFS_DSN", ""); v != "" {
		return v
	}
	if v := get("DATABASE_URL", ""); v != "" {
		return v
	}
	pass := getenv("POSTGRES_PASSWORD")
	if pass == "" && get("PGHOST", "") == "" {
		return ""
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(get("POSTGRES_USER", "cybersafe"), pass),
		Host:     net.JoinHostPort(get("PGHOST", "db"), get("PGPORT", "5432")),
		Path:     "/" + get("POSTGRES_DB", "cybersafe"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SafeDSNSummary describes a DSN for logs without its password.
func SafeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "sqlite " + strings.TrimPrefix(dsn, "sqlite:")
	}
	user := u.User.Username()
	host := u.Host
	port := ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, user)
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, user)
}
