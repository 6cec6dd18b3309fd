package sqlbackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"realtysite/internal/remote"
)

var errUnscoped = errors.New("refusing to modify a table without a match filter")

// table is the row-level surface of one exposed table.
type table interface {
	hasColumn(col string) bool
	selectRows(ctx context.Context, db *gorm.DB, q remote.Query) ([]remote.Row, error)
	selectIn(ctx context.Context, db *gorm.DB, col string, values []any) ([]remote.Row, error)
	insert(ctx context.Context, db *gorm.DB, rows []remote.Row) error
	update(ctx context.Context, db *gorm.DB, patch remote.Row, match []remote.Filter) error
	delete(ctx context.Context, db *gorm.DB, match []remote.Filter) error
}

// gormTable converts weakly typed rows to and from the gorm model M through
// its json tags. Column names are checked against a whitelist before they
// reach SQL.
type gormTable[M any] struct {
	columns map[string]bool
}

func newTable[M any](columns ...string) *gormTable[M] {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[c] = true
	}
	return &gormTable[M]{columns: set}
}

func (t *gormTable[M]) hasColumn(col string) bool { return t.columns[col] }

func (t *gormTable[M]) where(tx *gorm.DB, filters []remote.Filter) (*gorm.DB, error) {
	for _, f := range filters {
		if !t.columns[f.Column] {
			return nil, fmt.Errorf("%w: %s", remote.ErrUnknownColumn, f.Column)
		}
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: f.Column}, Value: f.Value})
	}
	return tx, nil
}

func (t *gormTable[M]) selectRows(ctx context.Context, db *gorm.DB, q remote.Query) ([]remote.Row, error) {
	tx, err := t.where(db.WithContext(ctx).Model(new(M)), q.Filters)
	if err != nil {
		return nil, err
	}
	if q.Order != nil {
		if !t.columns[q.Order.Column] {
			return nil, fmt.Errorf("%w: %s", remote.ErrUnknownColumn, q.Order.Column)
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: q.Order.Column}, Desc: !q.Order.Ascending})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var models []M
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	return t.toRows(models)
}

func (t *gormTable[M]) selectIn(ctx context.Context, db *gorm.DB, col string, values []any) ([]remote.Row, error) {
	if !t.columns[col] {
		return nil, fmt.Errorf("%w: %s", remote.ErrUnknownColumn, col)
	}
	if len(values) == 0 {
		return []remote.Row{}, nil
	}
	var models []M
	err := db.WithContext(ctx).
		Where(clause.IN{Column: clause.Column{Name: col}, Values: values}).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return t.toRows(models)
}

func (t *gormTable[M]) insert(ctx context.Context, db *gorm.DB, rows []remote.Row) error {
	if len(rows) == 0 {
		return nil
	}
	models := make([]M, 0, len(rows))
	for _, row := range rows {
		m, err := t.fromRow(row)
		if err != nil {
			return err
		}
		models = append(models, m)
	}
	return db.WithContext(ctx).Create(&models).Error
}

func (t *gormTable[M]) update(ctx context.Context, db *gorm.DB, patch remote.Row, match []remote.Filter) error {
	if len(match) == 0 {
		return errUnscoped
	}
	if len(patch) == 0 {
		return nil
	}
	m, err := t.fromRow(patch)
	if err != nil {
		return err
	}
	cols := make([]string, 0, len(patch))
	for col := range patch {
		cols = append(cols, col)
	}

	tx, err := t.where(db.WithContext(ctx).Model(new(M)), match)
	if err != nil {
		return err
	}
	return tx.Select(cols).Updates(&m).Error
}

func (t *gormTable[M]) delete(ctx context.Context, db *gorm.DB, match []remote.Filter) error {
	if len(match) == 0 {
		return errUnscoped
	}
	tx, err := t.where(db.WithContext(ctx), match)
	if err != nil {
		return err
	}
	return tx.Delete(new(M)).Error
}

func (t *gormTable[M]) fromRow(row remote.Row) (M, error) {
	var m M
	for col := range row {
		if !t.columns[col] {
			return m, fmt.Errorf("%w: %s", remote.ErrUnknownColumn, col)
		}
	}
	data, err := json.Marshal(row)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("decode row: %w", err)
	}
	return m, nil
}

func (t *gormTable[M]) toRows(models []M) ([]remote.Row, error) {
	rows := make([]remote.Row, 0, len(models))
	for i := range models {
		data, err := json.Marshal(&models[i])
		if err != nil {
			return nil, err
		}
		var row remote.Row
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
