// Package currency implements the exchange-rate collaborator over an HTTP
// rate provider.
//
// The provider is queried with GET <base>/latest/<FROM> and must answer with
// a JSON object whose "rates" member maps currency codes to the number of
// target units per unit of FROM:
//
//	{"base": "EUR", "rates": {"USD": 1.1, "GBP": 0.86}}
//
// Every call issues a fresh request; nothing is cached or retried.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/currency"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

const (
	DefaultBaseURL = "https://api.exchangerate-api.com/v4"
	DefaultTimeout = 10 * time.Second

	// USD is the target of [Client.ConvertToUSD].
	USD = "USD"
)

// maxResponse bounds the size of a rate document.
const maxResponse = 1 << 20

// Client queries an exchange-rate provider.
// A Client is safe for concurrent use.
type Client struct {
	base   string
	http   *http.Client
	logger log.Logger
}

// Option configures a [Client].
type Option func(*options)

type options struct {
	base    string
	client  *http.Client
	timeout time.Duration
	logger  log.Logger
}

// WithBaseURL sets the provider root. The default is [DefaultBaseURL].
func WithBaseURL(base string) Option {
	return func(o *options) { o.base = base }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithTimeout bounds each request, including reading the response body.
// Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the logger used to trace requests.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New creates a Client.
func New(opts ...Option) *Client {
	o := options{base: DefaultBaseURL, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	hc := &http.Client{}
	if o.client != nil {
		c := *o.client
		hc = &c
	}

	hc.Timeout = o.timeout

	return &Client{
		base:   strings.TrimRight(o.base, "/"),
		http:   hc,
		logger: o.logger,
	}
}

// Normalize upper-cases code and verifies it has the shape of a currency
// code: three ASCII letters. Whether the provider quotes it is decided by the
// rates it returns.
func Normalize(code string) (string, error) {
	norm := strings.ToUpper(strings.TrimSpace(code))

	if len(norm) != 3 || strings.IndexFunc(norm, func(r rune) bool {
		return r < 'A' || r > 'Z'
	}) >= 0 {
		return "", lang.ErrUnknownCurrency.Detailf("%q is not a currency code", code)
	}

	return norm, nil
}

// Format renders amount of the currency named by code, using its symbol when
// code is in the ISO 4217 table.
func Format(code string, amount float64) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%.2f %s", amount, code)
	}

	return fmt.Sprint(currency.Symbol(unit.Amount(amount)))
}

// Rates returns the provider's rates for one unit of from.
func (c *Client) Rates(ctx context.Context, from string) (map[string]float64, error) {
	from, err := Normalize(from)
	if err != nil {
		return nil, err
	}

	endpoint := c.base + "/latest/" + url.PathEscape(from)
	attr := slog.String("url", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, lang.ErrServiceUnavailable.Wrap(err).With(attr)
	}

	req.Header.Set("Accept", "application/json")

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, lang.ErrServiceUnavailable.Wrap(err).With(attr)
	}

	defer resp.Body.Close()

	c.logger.TraceContext(ctx, "fetch rates",
		attr,
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return nil, lang.ErrServiceUnavailable.
			Wrap(fmt.Errorf("unexpected status %s", resp.Status)).
			With(attr, slog.Int("status", resp.StatusCode))
	}

	var doc struct {
		Rates map[string]float64 `json:"rates"`
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponse)).Decode(&doc); err != nil {
		return nil, lang.ErrServiceUnavailable.Wrap(err).With(attr)
	}

	if doc.Rates == nil {
		return nil, lang.ErrServiceUnavailable.
			Wrap(fmt.Errorf("response has no rates")).With(attr)
	}

	return doc.Rates, nil
}

// ExchangeRate returns the number of units of to per unit of from.
func (c *Client) ExchangeRate(ctx context.Context, from, to string) (float64, error) {
	to, err := Normalize(to)
	if err != nil {
		return 0, err
	}

	rates, err := c.Rates(ctx, from)
	if err != nil {
		return 0, err
	}

	rate, ok := rates[to]
	if !ok {
		return 0, lang.ErrUnknownCurrency.Detailf("no rate for %s", to).
			With(slog.String("from", strings.ToUpper(from)))
	}

	return rate, nil
}

// Convert converts amount of from into to.
func (c *Client) Convert(ctx context.Context, from, to string, amount float64) (float64, error) {
	rate, err := c.ExchangeRate(ctx, from, to)
	if err != nil {
		return 0, err
	}

	out := amount * rate

	c.logger.TraceContext(ctx, "convert",
		slog.String("from", Format(strings.ToUpper(from), amount)),
		slog.String("to", Format(strings.ToUpper(to), out)),
		slog.Float64("rate", rate))

	return out, nil
}

// ConvertToUSD converts amount of from into US dollars.
func (c *Client) ConvertToUSD(ctx context.Context, from string, amount float64) (float64, error) {
	return c.Convert(ctx, from, USD, amount)
}
