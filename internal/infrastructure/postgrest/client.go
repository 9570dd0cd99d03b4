// Package postgrest: repositorios de facturas y clientes sobre el API REST de datos
// (PostgREST / Supabase), usando github.com/supabase-community/postgrest-go.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pg "github.com/supabase-community/postgrest-go"

	"github.com/jhoicas/invoice-manager/internal/domain"
	dbilling "github.com/jhoicas/invoice-manager/internal/domain/billing"
)

const maxErrorBody = 64 << 10

// Observer recibe una observación por llamada (métricas).
type Observer interface {
	ObserveGateway(table, operation, outcome string, elapsed time.Duration)
}

// Config conexión al backend.
type Config struct {
	URL     string // ej: https://xyz.supabase.co
	AnonKey string
	Schema  string // perfil PostgREST; vacío = public
	Timeout time.Duration
}

// Client envuelve el cliente postgrest-go con timeout por petición, errores tipados y métricas.
type Client struct {
	pg       *pg.Client
	timeout  time.Duration
	observer Observer
}

// NewClient construye el cliente. Devuelve error si falta la URL.
func NewClient(cfg Config, observer Observer) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("postgrest: URL no configurada (SUPABASE_URL)")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pc, err := pg.NewClientWithError(strings.TrimRight(cfg.URL, "/")+"/rest/v1", cfg.Schema, map[string]string{
		"apikey":        cfg.AnonKey,
		"Authorization": "Bearer " + cfg.AnonKey,
	})
	if err != nil {
		return nil, fmt.Errorf("postgrest: URL inválida: %w", err)
	}
	pc.Transport.Parent = statusTransport{next: http.DefaultTransport}
	return &Client{pg: pc, timeout: timeout, observer: observer}, nil
}

// statusTransport convierte las respuestas >= 400 en *APIError con el status original.
type statusTransport struct {
	next http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil || resp.StatusCode < http.StatusBadRequest {
		return resp, err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, parseAPIError(resp.StatusCode, raw)
}

// From inicia una consulta sobre la tabla.
func (c *Client) From(table string) *Query {
	return &Query{client: c, table: table}
}

type filter struct {
	col, op, val string
}

type ordering struct {
	resource, col string
	asc           bool
}

// Query acumula filtros, orden y paginación; se traduce a un FilterBuilder al ejecutar.
type Query struct {
	client  *Client
	table   string
	columns string
	filters []filter
	or      []string
	orders  []ordering
	limit   int
	offset  int
}

// Select columnas (admite recursos anidados: "*,invoice_items(id,total)").
func (q *Query) Select(columns string) *Query {
	q.columns = columns
	return q
}

// Eq col = v.
func (q *Query) Eq(col, v string) *Query { return q.filter(col, "eq", v) }

// Lt col < v.
func (q *Query) Lt(col, v string) *Query { return q.filter(col, "lt", v) }

// Gte col >= v.
func (q *Query) Gte(col, v string) *Query { return q.filter(col, "gte", v) }

// Lte col <= v.
func (q *Query) Lte(col, v string) *Query { return q.filter(col, "lte", v) }

// Like col LIKE pattern (comodín *).
func (q *Query) Like(col, pattern string) *Query { return q.filter(col, "like", pattern) }

// ILike col ILIKE pattern (comodín *).
func (q *Query) ILike(col, pattern string) *Query { return q.filter(col, "ilike", pattern) }

// Or condiciones alternativas: Or("name.ilike.*a*", "email.ilike.*a*").
func (q *Query) Or(conds ...string) *Query {
	q.or = append(q.or, conds...)
	return q
}

// Order agrega una columna de orden.
func (q *Query) Order(col string, asc bool) *Query {
	q.orders = append(q.orders, ordering{col: col, asc: asc})
	return q
}

// OrderEmbedded ordena las filas de un recurso anidado (ej: invoice_items.order=position.asc).
func (q *Query) OrderEmbedded(resource, col string, asc bool) *Query {
	q.orders = append(q.orders, ordering{resource: resource, col: col, asc: asc})
	return q
}

// Limit máximo de filas (0 = sin límite).
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Offset filas a omitir; sólo aplica junto con Limit.
func (q *Query) Offset(n int) *Query {
	q.offset = n
	return q
}

func (q *Query) filter(col, op, v string) *Query {
	q.filters = append(q.filters, filter{col: col, op: op, val: v})
	return q
}

func (q *Query) applyFilters(fb *pg.FilterBuilder) *pg.FilterBuilder {
	for _, f := range q.filters {
		fb = fb.Filter(f.col, f.op, f.val)
	}
	if len(q.or) > 0 {
		fb = fb.Or(strings.Join(q.or, ","), "")
	}
	return fb
}

func (q *Query) applyPaging(fb *pg.FilterBuilder) *pg.FilterBuilder {
	for _, o := range q.orders {
		fb = fb.Order(o.col, &pg.OrderOpts{Ascending: o.asc, ForeignTable: o.resource})
	}
	switch {
	case q.limit > 0 && q.offset > 0:
		fb = fb.Range(q.offset, q.offset+q.limit-1, "")
	case q.limit > 0:
		fb = fb.Limit(q.limit, "")
	}
	return fb
}

// Execute GET y decodifica el arreglo JSON en dest.
func (q *Query) Execute(ctx context.Context, dest any) error {
	return q.client.run(ctx, q.table, "select", dest, func(ctx context.Context) ([]byte, error) {
		fb := q.client.pg.From(q.table).Select(q.columns, "", false)
		raw, _, err := q.applyPaging(q.applyFilters(fb)).ExecuteWithContext(ctx)
		return raw, err
	})
}

// Count total de filas que cumplen los filtros (HEAD con Prefer: count=exact).
func (q *Query) Count(ctx context.Context) (int, error) {
	var total int64
	err := q.client.run(ctx, q.table, "count", nil, func(ctx context.Context) ([]byte, error) {
		fb := q.client.pg.From(q.table).Select("id", "exact", true)
		_, n, err := q.applyFilters(fb).ExecuteWithContext(ctx)
		total = n
		return nil, err
	})
	return int(total), err
}

// Insert inserta rows (objeto o arreglo) y decodifica la representación en dest (puede ser nil).
func (q *Query) Insert(ctx context.Context, rows any, dest any) error {
	return q.client.run(ctx, q.table, "insert", dest, func(ctx context.Context) ([]byte, error) {
		raw, _, err := q.client.pg.From(q.table).Insert(rows, false, "", returning(dest), "").ExecuteWithContext(ctx)
		return raw, err
	})
}

// Update aplica patch a las filas filtradas.
func (q *Query) Update(ctx context.Context, patch any, dest any) error {
	if len(q.filters) == 0 {
		return errors.New("postgrest: update sin filtros")
	}
	return q.client.run(ctx, q.table, "update", dest, func(ctx context.Context) ([]byte, error) {
		fb := q.client.pg.From(q.table).Update(patch, returning(dest), "")
		raw, _, err := q.applyFilters(fb).ExecuteWithContext(ctx)
		return raw, err
	})
}

// Delete borra las filas filtradas.
func (q *Query) Delete(ctx context.Context) error {
	if len(q.filters) == 0 {
		return errors.New("postgrest: delete sin filtros")
	}
	return q.client.run(ctx, q.table, "delete", nil, func(ctx context.Context) ([]byte, error) {
		fb := q.client.pg.From(q.table).Delete("minimal", "")
		raw, _, err := q.applyFilters(fb).ExecuteWithContext(ctx)
		return raw, err
	})
}

func returning(dest any) string {
	if dest == nil {
		return "minimal"
	}
	return "representation"
}

// run ejecuta la llamada con timeout, clasifica el error, decodifica dest y registra la observación.
func (c *Client) run(
	ctx context.Context,
	table, operation string,
	dest any,
	call func(context.Context) ([]byte, error),
) (err error) {
	start := time.Now()
	defer func() {
		if c.observer == nil {
			return
		}
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.observer.ObserveGateway(table, operation, outcome, time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := call(ctx)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("postgrest: %s %s: %w", operation, table, apiErr)
		}
		return fmt.Errorf("postgrest: %s %s: %w: %w", operation, table, domain.ErrRemote, err)
	}
	if dest != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, dest); err != nil {
			return fmt.Errorf("postgrest: decodificar %s: %w: %w", table, domain.ErrRemote, err)
		}
	}
	return nil
}

// sanitizeTerm quita los caracteres reservados de la sintaxis de filtros.
func sanitizeTerm(s string) string {
	return dbilling.SearchTerm(s)
}
