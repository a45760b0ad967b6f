package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"semerg/internal/fetcher"
	"semerg/internal/ratelimit"
	"semerg/internal/window"
)

// Coordinator runs the price fetch and then the production fetches, one
// request at a time
type Coordinator struct {
	prices          fetcher.Fetcher
	production      []fetcher.Fetcher
	limiter         *ratelimit.Limiter
	logger          *slog.Logger
	continueOnError bool
}

// Collection is everything one run gathered
type Collection struct {
	Prices fetcher.Series
	// Production holds the successful production fetches in fetch order
	Production []fetcher.Result
	// Failures holds the failed production fetches
	Failures []fetcher.Result
	// Skipped lists production keys never requested because an earlier one failed
	Skipped []string
}

// Series returns the production series stored under key
func (c *Collection) Series(key string) (fetcher.Series, bool) {
	for _, r := range c.Production {
		if r.Key == key {
			return r.Series, true
		}
	}
	return nil, false
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithLimiter paces the production requests
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Coordinator) { c.limiter = l }
}

// WithLogger sets the logger for progress and failures
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithContinueOnError fetches every production dataset even after one fails
func WithContinueOnError(enabled bool) Option {
	return func(c *Coordinator) { c.continueOnError = enabled }
}

// New creates a new Coordinator with the given fetchers
func New(prices fetcher.Fetcher, production []fetcher.Fetcher, opts ...Option) *Coordinator {
	c := &Coordinator{
		prices:     prices,
		production: production,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run fetches the prices for w and the production series for the window
// anchored at the first returned price point. A price failure is returned
// as an error; production failures are recorded in the collection. Unless
// continue-on-error is set, the first production failure ends the run.
func (c *Coordinator) Run(ctx context.Context, w window.Window) (*Collection, error) {
	if c.prices == nil {
		return nil, fmt.Errorf("no price fetcher configured")
	}

	if err := c.limiter.Wait(ctx, ratelimit.APIEntsoe); err != nil {
		return nil, err
	}

	c.logger.Info("fetching prices", slog.String("interval", w.Interval()))
	prices, err := c.prices.Fetch(ctx, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", c.prices.Key(), err)
	}

	first, ok := prices.First()
	if !ok {
		return nil, fmt.Errorf("fetching %s: no points returned", c.prices.Key())
	}
	c.logger.Info("prices fetched", slog.Int("points", len(prices)))

	collection := &Collection{Prices: prices}
	productionWindow := window.Window{Start: first.Time.UTC(), End: w.End}

	for i, f := range c.production {
		if err := c.limiter.Wait(ctx, ratelimit.APIFingrid); err != nil {
			return collection, err
		}

		c.logger.Info("fetching production series",
			slog.String("key", f.Key()),
			slog.String("interval", productionWindow.Interval()))

		series, err := f.Fetch(ctx, productionWindow.Start, productionWindow.End)
		if err != nil {
			collection.Failures = append(collection.Failures, fetcher.Result{Key: f.Key(), Error: err})
			logFailure(c.logger, f.Key(), err)

			if c.continueOnError {
				continue
			}
			for _, rest := range c.production[i+1:] {
				collection.Skipped = append(collection.Skipped, rest.Key())
			}
			if len(collection.Skipped) > 0 {
				c.logger.Warn("skipping remaining production series", slog.Any("keys", collection.Skipped))
			}
			break
		}

		collection.Production = append(collection.Production, fetcher.Result{Key: f.Key(), Series: series})
	}

	return collection, nil
}

func logFailure(logger *slog.Logger, key string, err error) {
	attrs := []any{slog.String("key", key), slog.Any("error", err)}
	var fe *fetcher.FetchError
	if errors.As(err, &fe) {
		attrs = append(attrs,
			slog.Int("dataset", fe.Dataset),
			slog.Int("status", fe.StatusCode),
			slog.String("body", fe.Body))
	}
	logger.Error("production fetch failed", attrs...)
}
