package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"realtysite/internal/remote"
)

func (c *Client) Select(ctx context.Context, table string, q remote.Query) ([]remote.Row, error) {
	params := filterParams(q.Filters)
	params.Set("select", selectList(q))
	if q.Order != nil {
		dir := "desc"
		if q.Order.Ascending {
			dir = "asc"
		}
		params.Set("order", q.Order.Column+"."+dir)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var rows []remote.Row
	err := c.do(ctx, http.MethodGet, "/rest/v1/"+url.PathEscape(table), params, nil, remote.AccessToken(ctx), nil, &rows)
	if err != nil {
		return nil, remote.Wrap("select", table, translate(err))
	}
	for _, row := range rows {
		for _, e := range q.Embeds {
			if m, ok := row[e.Alias].(map[string]any); ok {
				row[e.Alias] = remote.Row(m)
			}
		}
	}
	if rows == nil {
		rows = []remote.Row{}
	}
	return rows, nil
}

func (c *Client) Insert(ctx context.Context, table string, rows ...remote.Row) error {
	if len(rows) == 0 {
		return nil
	}
	header := http.Header{"Prefer": {"return=minimal"}}
	err := c.do(ctx, http.MethodPost, "/rest/v1/"+url.PathEscape(table), nil, rows, remote.AccessToken(ctx), header, nil)
	return remote.Wrap("insert", table, translate(err))
}

func (c *Client) Update(ctx context.Context, table string, patch remote.Row, match ...remote.Filter) error {
	if len(match) == 0 {
		return remote.Wrap("update", table, errUnscoped)
	}
	header := http.Header{"Prefer": {"return=minimal"}}
	err := c.do(ctx, http.MethodPatch, "/rest/v1/"+url.PathEscape(table), filterParams(match), patch, remote.AccessToken(ctx), header, nil)
	return remote.Wrap("update", table, translate(err))
}

func (c *Client) Delete(ctx context.Context, table string, match ...remote.Filter) error {
	if len(match) == 0 {
		return remote.Wrap("delete", table, errUnscoped)
	}
	err := c.do(ctx, http.MethodDelete, "/rest/v1/"+url.PathEscape(table), filterParams(match), nil, remote.AccessToken(ctx), nil, nil)
	return remote.Wrap("delete", table, translate(err))
}

var errUnscoped = errors.New("refusing to modify a table without a match filter")

func filterParams(filters []remote.Filter) url.Values {
	params := url.Values{}
	for _, f := range filters {
		params.Add(f.Column, "eq."+fmt.Sprint(f.Value))
	}
	return params
}

// selectList renders the PostgREST select parameter, e.g.
// "property_id,property:properties!property_id(*)".
func selectList(q remote.Query) string {
	cols := append([]string(nil), q.Columns...)
	if len(cols) == 0 {
		cols = []string{"*"}
	}
	for _, e := range q.Embeds {
		cols = append(cols, fmt.Sprintf("%s:%s!%s(*)", e.Alias, e.Table, e.LocalColumn))
	}
	return strings.Join(cols, ",")
}

// translate maps PostgREST error codes onto the remote sentinels.
func translate(err error) error {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.code() {
	case "23505":
		return fmt.Errorf("%w: %v", remote.ErrConflict, err)
	case "42P01", "PGRST205":
		return fmt.Errorf("%w: %v", remote.ErrUnknownTable, err)
	case "42703", "PGRST204":
		return fmt.Errorf("%w: %v", remote.ErrUnknownColumn, err)
	case "PGRST116":
		return fmt.Errorf("%w: %v", remote.ErrNotFound, err)
	}
	if apiErr.Status == http.StatusConflict {
		return fmt.Errorf("%w: %v", remote.ErrConflict, err)
	}
	return err
}
