package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"parkingconsole/internal/audit"
	"parkingconsole/internal/config"
	"parkingconsole/internal/metrics"
	"parkingconsole/internal/models"
	"parkingconsole/internal/notify"
	"parkingconsole/internal/session"
)

const (
	breakerName         = "Parking-Backend"
	maxBodySize         = 4 << 20
	defaultAuditTimeout = 2 * time.Second
)

// errUpstream marks a 5xx so the breaker counts it; callers never see it
var errUpstream = errors.New("upstream server error")

// Options configures a Client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Transport  http.RoundTripper
	RolePolicy session.RolePolicy
	Metrics    *metrics.Metrics
	Audit      audit.Publisher
	// AuditTimeout bounds each audit publish; zero means two seconds
	AuditTimeout time.Duration
	Debug        bool
}

// Client is the shared, process-wide connection to the parking backend.
// It holds no identity; bind one per request with For.
type Client struct {
	baseURL   string
	timeout   time.Duration
	transport http.RoundTripper
	policy    session.RolePolicy
	breaker   *gobreaker.CircuitBreaker
	metrics   *metrics.Metrics
	audit     audit.Publisher
	auditWait time.Duration
	debug     bool
	lists     singleflight.Group
	now       func() time.Time
}

// NewClient creates a backend client
func NewClient(opts Options) *Client {
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	policy := opts.RolePolicy
	if policy == nil {
		policy = session.EmailHeuristic{}
	}
	publisher := opts.Audit
	if publisher == nil {
		publisher = audit.Nop{}
	}

	auditWait := opts.AuditTimeout
	if auditWait <= 0 {
		auditWait = defaultAuditTimeout
	}

	m := opts.Metrics
	return &Client{
		baseURL:   opts.BaseURL,
		timeout:   opts.Timeout,
		transport: transport,
		policy:    policy,
		breaker: config.NewCircuitBreaker(breakerName, func(to gobreaker.State) {
			m.SetBreakerState(breakerName, to)
		}),
		metrics:   m,
		audit:     publisher,
		auditWait: auditWait,
		debug:     opts.Debug,
		now:       time.Now,
	}
}

// API is a Client bound to one session and one notifier
type API struct {
	client   *Client
	session  *models.Session
	notifier notify.Notifier
	http     *http.Client

	Auth         *Auth
	Users        *Users
	ParkingSlots *ParkingSlots
	Orders       *Orders
}

// For binds the client to sess (nil for anonymous calls) and routes every
// outcome message to n.
func (c *Client) For(sess *models.Session, n notify.Notifier) *API {
	if n == nil {
		n = notify.Discard{}
	}

	httpClient := &http.Client{Timeout: c.timeout, Transport: c.transport}
	if sess.IsAuthenticated() {
		httpClient.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: sess.Token, TokenType: "Bearer"}),
			Base:   c.transport,
		}
	}

	api := &API{client: c, session: sess, notifier: n, http: httpClient}
	api.Auth = &Auth{api: api}
	api.Users = newUsers(api)
	api.ParkingSlots = newParkingSlots(api)
	api.Orders = newOrders(api)
	return api
}

// envelope is the uniform response shape of the backend
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}

func (e *envelope) hasData() bool {
	return e != nil && len(e.Data) > 0 && string(e.Data) != "null"
}

type call struct {
	resource string
	method   string
	path     string
	query    url.Values
	body     interface{}
}

// send performs one backend call. It never notifies; see fail.
func (a *API) send(ctx context.Context, c call) (*envelope, error) {
	target := a.client.baseURL + c.path
	if len(c.query) > 0 {
		target += "?" + c.query.Encode()
	}

	var body io.Reader
	if c.body != nil {
		data, err := json.Marshal(c.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", c.resource, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", c.resource, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var (
		status    int
		raw       []byte
		cancelErr error
	)
	start := a.client.now()
	_, err = a.client.breaker.Execute(func() (interface{}, error) {
		resp, err := a.http.Do(req)
		if err != nil {
			// A cancelled caller says nothing about backend health
			if ctx.Err() != nil {
				cancelErr = ctx.Err()
				return nil, nil
			}
			return nil, err
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		raw, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, err
		}
		if status >= http.StatusInternalServerError {
			return nil, errUpstream
		}
		return nil, nil
	})
	elapsed := a.client.now().Sub(start)
	a.client.metrics.ObserveBackend(c.resource, c.method, status, elapsed)

	if a.client.debug {
		log.Printf("[DEBUG] backend %s %s -> %d (%s)", c.method, c.path, status, elapsed)
	}

	switch {
	case cancelErr != nil:
		return nil, cancelErr
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, ErrCircuitOpen
	case err != nil && !errors.Is(err, errUpstream):
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, c.method, c.path, err)
	}

	env := &envelope{}
	if len(raw) > 0 {
		if jsonErr := json.Unmarshal(raw, env); jsonErr != nil && status < 300 {
			return nil, fmt.Errorf("failed to decode %s response: %w", c.resource, jsonErr)
		}
	}
	if status < 200 || status >= 300 {
		return env, &APIError{Status: status, Message: env.Message}
	}
	return env, nil
}

// fail notifies the user about err and hands it back
func (a *API) fail(err error, fallback string) error {
	if msg := UserMessage(err, fallback); msg != "" {
		a.notifier.Error(msg)
	}
	return err
}

// record publishes an audit event for a successful mutation. Failures are logged only.
func (a *API) record(ctx context.Context, action, resource, id string) {
	actor := ""
	if a.session != nil {
		actor = a.session.Email
	}
	event := audit.Event{
		Actor:    actor,
		Action:   action,
		Resource: resource,
		ID:       id,
		At:       a.client.now().UTC(),
	}
	// The mutation already happened; a closing browser must not drop its event
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.client.auditWait)
	defer cancel()
	if err := a.client.audit.Publish(ctx, event); err != nil {
		log.Printf("Audit event %s dropped: %v", event.RoutingKey(), err)
	}
}

func decode[T any](env *envelope) (T, error) {
	var out T
	if !env.hasData() {
		return out, ErrMissingPayload
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("failed to decode payload: %w", err)
	}
	return out, nil
}

// dataID extracts data.id from a response for audit purposes
func dataID(env *envelope) string {
	if !env.hasData() {
		return ""
	}
	var ref struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &ref); err != nil {
		return ""
	}
	return ref.ID
}
