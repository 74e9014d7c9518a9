package store

import (
	"context"
	"database/sql"
	"errors"

	"cybersafe/api/internal/prefs"
)

// PrefsRepo is a prefs.Store over a preferences(scope, key, value, updated_at) table.
type PrefsRepo struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewPrefsRepo(db *sql.DB, d Dialect) *PrefsRepo { return &PrefsRepo{DB: db, Dialect: d} }

func (r *PrefsRepo) EnsureSchema(ctx context.Context) error {
	q := `
create table if not exists preferences(
  scope      text not null,
  key        text not null,
  value      text not null,
  updated_at timestamptz not null default now(),
  primary key (scope, key)
)`
	if r.Dialect == SQLite {
		q = `
create table if not exists preferences(
  scope      text not null,
  key        text not null,
  value      text not null,
  updated_at timestamp not null default current_timestamp,
  primary key (scope, key)
)`
	}
	_, err := r.DB.ExecContext(ctx, q)
	return err
}

func (r *PrefsRepo) Get(ctx context.Context, scope, key string) (string, error) {
	q := `select value from preferences where scope=$1 and key=$2`
	if r.Dialect == SQLite {
		q = `select value from preferences where scope=? and key=?`
	}
	var v string
	err := r.DB.QueryRowContext(ctx, q, scope, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", prefs.ErrNotFound
	}
	return v, err
}

// Set upserts one key. PK: (scope, key).
func (r *PrefsRepo) Set(ctx context.Context, scope, key, value string) error {
	q := `
insert into preferences(scope, key, value)
values ($1,$2,$3)
on conflict (scope, key)
do update set value=excluded.value, updated_at=now()`
	if r.Dialect == SQLite {
		q = `
insert into preferences(scope, key, value)
values (?,?,?)
on conflict (scope, key)
do update set value=excluded.value, updated_at=current_timestamp`
	}
	_, err := r.DB.ExecContext(ctx, q, scope, key, value)
	return err
}
