// Package sqlbackend implements the remote data service contract on top of a
// relational database through gorm. It is the system of record when the site
// runs against its own PostgreSQL (or SQLite in development) instead of a
// hosted service.
package sqlbackend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"realtysite/internal/pkg/jwt"
	"realtysite/internal/pkg/observer"
	"realtysite/internal/remote"
)

type Options struct {
	JWTSecret string
	AccessTTL time.Duration
	// AutoConfirm makes new accounts usable immediately. When false an account
	// must be confirmed (see ConfirmUser) before it can sign in.
	AutoConfirm bool
}

type Backend struct {
	db          *gorm.DB
	tables      map[string]table
	tokens      *jwt.Service
	autoConfirm bool
	authEvents  observer.List[remote.AuthEvent]
	now         func() time.Time
}

var _ remote.Client = (*Backend)(nil)

func New(db *gorm.DB, opts Options) *Backend {
	ttl := opts.AccessTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Backend{
		db: db,
		tables: map[string]table{
			remote.TableProperties: newTable[propertyModel](
				"id", "title", "location", "price", "image_url", "images", "beds", "parking",
				"area", "tag", "description", "features", "purpose", "type", "city", "video_url",
				"created_at",
			),
			remote.TableFavorites: newTable[favoriteModel]("user_id", "property_id", "created_at"),
			remote.TableContacts: newTable[contactModel](
				"id", "name", "phone", "email", "message", "source", "property_id", "created_at",
			),
		},
		tokens:      jwt.New(opts.JWTSecret, ttl),
		autoConfirm: opts.AutoConfirm,
		now:         time.Now,
	}
}

// Migrate creates or updates every table the backend owns.
func (b *Backend) Migrate() error {
	return b.db.AutoMigrate(allModels()...)
}

func (b *Backend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (b *Backend) DB() *gorm.DB { return b.db }

func (b *Backend) table(name string) (table, error) {
	t, ok := b.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", remote.ErrUnknownTable, name)
	}
	return t, nil
}

func (b *Backend) Select(ctx context.Context, name string, q remote.Query) ([]remote.Row, error) {
	t, err := b.table(name)
	if err != nil {
		return nil, remote.Wrap("select", name, err)
	}
	for _, col := range q.Columns {
		if col != "*" && !t.hasColumn(col) {
			return nil, remote.Wrap("select", name, fmt.Errorf("%w: %s", remote.ErrUnknownColumn, col))
		}
	}

	rows, err := t.selectRows(ctx, b.db, q)
	if err != nil {
		return nil, remote.Wrap("select", name, translate(err))
	}
	for _, e := range q.Embeds {
		if err := b.embed(ctx, t, rows, e); err != nil {
			return nil, remote.Wrap("select", name, translate(err))
		}
	}
	glog.V(2).Infof("sqlbackend select table=%s filters=%d rows=%d", name, len(q.Filters), len(rows))
	return project(rows, q), nil
}

func (b *Backend) Insert(ctx context.Context, name string, rows ...remote.Row) error {
	t, err := b.table(name)
	if err != nil {
		return remote.Wrap("insert", name, err)
	}
	return remote.Wrap("insert", name, translate(t.insert(ctx, b.db, rows)))
}

func (b *Backend) Update(ctx context.Context, name string, patch remote.Row, match ...remote.Filter) error {
	t, err := b.table(name)
	if err != nil {
		return remote.Wrap("update", name, err)
	}
	return remote.Wrap("update", name, translate(t.update(ctx, b.db, patch, match)))
}

func (b *Backend) Delete(ctx context.Context, name string, match ...remote.Filter) error {
	t, err := b.table(name)
	if err != nil {
		return remote.Wrap("delete", name, err)
	}
	return remote.Wrap("delete", name, translate(t.delete(ctx, b.db, match)))
}

// embed attaches to every row the related row of e.Table, or nil when the
// reference is dangling.
func (b *Backend) embed(ctx context.Context, local table, rows []remote.Row, e remote.Embed) error {
	if !local.hasColumn(e.LocalColumn) {
		return fmt.Errorf("%w: %s", remote.ErrUnknownColumn, e.LocalColumn)
	}
	related, err := b.table(e.Table)
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	var keys []any
	for _, row := range rows {
		k := fmt.Sprint(row[e.LocalColumn])
		if row[e.LocalColumn] == nil || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, row[e.LocalColumn])
	}

	found, err := related.selectIn(ctx, b.db, e.ForeignColumn, keys)
	if err != nil {
		return err
	}
	byKey := make(map[string]remote.Row, len(found))
	for _, r := range found {
		byKey[fmt.Sprint(r[e.ForeignColumn])] = r
	}
	for _, row := range rows {
		if r, ok := byKey[fmt.Sprint(row[e.LocalColumn])]; ok {
			row[e.Alias] = r
		} else {
			row[e.Alias] = nil
		}
	}
	return nil
}

// project trims rows to the requested columns, keeping embed aliases.
func project(rows []remote.Row, q remote.Query) []remote.Row {
	if len(q.Columns) == 0 {
		return rows
	}
	keep := make(map[string]bool, len(q.Columns)+len(q.Embeds))
	for _, c := range q.Columns {
		if c == "*" {
			return rows
		}
		keep[c] = true
	}
	for _, e := range q.Embeds {
		keep[e.Alias] = true
	}
	for _, row := range rows {
		for col := range row {
			if !keep[col] {
				delete(row, col)
			}
		}
	}
	return rows
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", remote.ErrNotFound, err)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", remote.ErrConflict, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
