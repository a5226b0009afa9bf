package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ListParams selects one page of a collection
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

// Query encodes the params; empty values are omitted
func (p ListParams) Query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	for k, v := range p.Filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// Page is one page of a collection together with the reported totals
type Page[T any] struct {
	Items []T
	Total int
	Page  int
	Limit int
}

// Labels names a resource in user-facing messages
type Labels struct {
	Singular string // "parking slot"
	Plural   string // "parking slots"
}

func (l Labels) failed(verb string, plural bool) string {
	noun := l.Singular
	if plural {
		noun = l.Plural
	}
	return "Failed to " + verb + " " + noun
}

func (l Labels) succeeded(verb string) string {
	return capitalize(l.Singular) + " " + verb + " successfully"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type validator interface {
	Validate() error
}

// Resource is a paginated backend collection of T, created from C and patched with U
type Resource[T any, C any, U any] struct {
	api    *API
	name   string
	path   string
	labels Labels
}

func newResource[T any, C any, U any](api *API, name, path string, labels Labels) *Resource[T, C, U] {
	return &Resource[T, C, U]{api: api, name: name, path: path, labels: labels}
}

// List fetches one page. Identical concurrent requests for the same session share one backend call.
func (r *Resource[T, C, U]) List(ctx context.Context, params ListParams) (*Page[T], error) {
	return r.list(ctx, r.path+"/", params, r.labels.failed("fetch", true))
}

func (r *Resource[T, C, U]) list(ctx context.Context, path string, params ListParams, fallback string) (*Page[T], error) {
	query := params.Query()
	token := ""
	if r.api.session != nil {
		token = r.api.session.Token
	}
	key := r.name + " " + path + "?" + query.Encode() + "#" + token

	// The shared call must outlive any single caller; each caller still
	// stops waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := r.api.client.lists.DoChan(key, func() (interface{}, error) {
		env, err := r.api.send(shared, call{
			resource: r.name,
			method:   http.MethodGet,
			path:     path,
			query:    query,
		})
		if err != nil {
			return nil, err
		}
		items, err := decode[[]T](env)
		if err == ErrMissingPayload {
			items, err = []T{}, nil
		}
		if err != nil {
			return nil, err
		}
		page := &Page[T]{Items: items, Total: env.Total, Page: env.Page, Limit: env.Limit}
		if page.Total == 0 {
			page.Total = len(items)
		}
		if page.Page == 0 {
			page.Page = max(params.Page, 1)
		}
		if page.Limit == 0 {
			page.Limit = params.Limit
		}
		return page, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, r.api.fail(res.Err, fallback)
		}
		// Shared result; hand each caller its own copy of the slice header
		page := *res.Val.(*Page[T])
		page.Items = append([]T(nil), page.Items...)
		return &page, nil
	}
}

// Get fetches one entity
func (r *Resource[T, C, U]) Get(ctx context.Context, id string) (*T, error) {
	env, err := r.api.send(ctx, call{
		resource: r.name,
		method:   http.MethodGet,
		path:     r.path + "/" + url.PathEscape(id),
	})
	if err == nil {
		var item T
		if item, err = decode[T](env); err == nil {
			return &item, nil
		}
	}
	return nil, r.api.fail(err, r.labels.failed("fetch", false))
}

// Create posts a new entity. The returned entity is nil when the backend echoes no data.
func (r *Resource[T, C, U]) Create(ctx context.Context, payload C) (*T, error) {
	return r.mutate(ctx, "create", http.MethodPost, r.path+"/", "", payload,
		r.labels.failed("create", false), r.labels.succeeded("created"))
}

// Update patches an existing entity
func (r *Resource[T, C, U]) Update(ctx context.Context, id string, payload U) (*T, error) {
	return r.mutate(ctx, "update", http.MethodPatch, r.path+"/"+url.PathEscape(id), id, payload,
		r.labels.failed("update", false), r.labels.succeeded("updated"))
}

// Delete removes an entity
func (r *Resource[T, C, U]) Delete(ctx context.Context, id string) error {
	_, err := r.api.send(ctx, call{
		resource: r.name,
		method:   http.MethodDelete,
		path:     r.path + "/" + url.PathEscape(id),
	})
	if err != nil {
		return r.api.fail(err, r.labels.failed("delete", false))
	}
	r.api.notifier.Success(r.labels.succeeded("deleted"))
	r.api.record(ctx, "delete", r.name, id)
	return nil
}

func (r *Resource[T, C, U]) mutate(ctx context.Context, action, method, path, id string, payload interface{}, failed, succeeded string) (*T, error) {
	if v, ok := payload.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, r.api.fail(err, failed)
		}
	}

	env, err := r.api.send(ctx, call{
		resource: r.name,
		method:   method,
		path:     path,
		body:     payload,
	})
	if err != nil {
		return nil, r.api.fail(err, failed)
	}

	var item *T
	if env.hasData() {
		decoded, err := decode[T](env)
		if err != nil {
			return nil, r.api.fail(err, failed)
		}
		item = &decoded
	}
	if id == "" {
		id = dataID(env)
	}

	r.api.notifier.Success(succeeded)
	r.api.record(ctx, action, r.name, id)
	return item, nil
}

