// Package fetch retrieves extension vocabulary documents over HTTP or from
// local files. Requests are rate limited, concurrent requests for the same
// source share one download, and parsed documents are kept in an LRU cache
// for the lifetime of the Client.
package fetch

import (
	"context"
	"net/url"
	"os"
	"strings"
	"time"

	getter "github.com/hashicorp/go-getter"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/internal/httpclient"
	"github.com/openactive/models-lib/logger"
	"github.com/openactive/models-lib/vocab"
)

const (
	DefaultTimeout           = 30 * time.Second
	DefaultRequestsPerMinute = 60
	DefaultCacheSize         = 64

	acceptJSONLD = "application/ld+json, application/json;q=0.9"
)

// Fetcher retrieves and parses one extension document.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (*vocab.Document, error)
}

// Rewrite replaces every occurrence of From with To in a downloaded body
// before it is parsed.
type Rewrite struct {
	From string `mapstructure:"from" toml:"from"`
	To   string `mapstructure:"to" toml:"to"`
}

// DefaultRewrites normalizes schema.org to https and the beta namespace to
// its hash form, as published documents mix both spellings.
func DefaultRewrites() []Rewrite {
	return []Rewrite{
		{From: "http://schema.org", To: "https://schema.org"},
		{From: "https://openactive.io/ns-beta/", To: "https://openactive.io/ns-beta#"},
	}
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	Timeout           time.Duration
	RequestsPerMinute int
	CacheSize         int
	// AllowPrivate permits loopback and private hosts, e.g. a local mirror
	AllowPrivate bool
	Rewrites     []Rewrite
	// Dir resolves relative file sources; defaults to the working directory
	Dir string
}

// Client is the default Fetcher.
type Client struct {
	http     *httpclient.SaferClient
	limiter  *rate.Limiter
	cache    *lru.Cache[string, *vocab.Document]
	group    singleflight.Group
	rewrites []Rewrite
	dir      string
	log      *zap.SugaredLogger
}

var _ Fetcher = (*Client)(nil)

// New creates a Client.
func New(opts Options, log *zap.SugaredLogger) (*Client, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			wd = "."
		}
		opts.Dir = wd
	}

	cache, err := lru.New[string, *vocab.Document](opts.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create document cache")
	}

	limit := rate.Inf
	burst := 1
	if opts.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RequestsPerMinute))
		burst = max(1, opts.RequestsPerMinute/10)
	}

	return &Client{
		http: httpclient.New(opts.Timeout, httpclient.Options{
			AllowPrivate: opts.AllowPrivate,
			Accept:       acceptJSONLD,
		}),
		limiter:  rate.NewLimiter(limit, burst),
		cache:    cache,
		rewrites: opts.Rewrites,
		dir:      opts.Dir,
		log:      log,
	}, nil
}

// Fetch returns the parsed document at source, which is an http(s) URL, a
// file:// URL or a file path.
func (c *Client) Fetch(ctx context.Context, source string) (*vocab.Document, error) {
	if doc, ok := c.cache.Get(source); ok {
		c.log.Debugw("Extension document", logger.FieldURL, source, logger.FieldCache, "hit")
		return doc, nil
	}

	v, err, shared := c.group.Do(source, func() (any, error) {
		if doc, ok := c.cache.Get(source); ok {
			return doc, nil
		}
		c.log.Debugw("Extension document", logger.FieldURL, source, logger.FieldCache, "miss")
		body, err := c.load(ctx, source)
		if err != nil {
			return nil, err
		}
		doc, err := vocab.ParseDocument(c.rewrite(body))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", source)
		}
		c.cache.Add(source, doc)
		return doc, nil
	})
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "fetching %s", source), errors.ErrFetch)
	}
	if shared {
		c.log.Debugw("Extension document shared with concurrent request", logger.FieldURL, source)
	}
	return v.(*vocab.Document), nil
}

// load reads the raw body of source.
func (c *Client) load(ctx context.Context, source string) ([]byte, error) {
	detected, err := getter.Detect(source, c.dir, getter.Detectors)
	if err != nil {
		return nil, errors.Wrap(err, "failed to detect source type")
	}
	if i := strings.Index(detected, "::"); i > 0 && !strings.Contains(detected[:i], "/") {
		return nil, errors.WithHintf(
			errors.Newf("unsupported source %q (detected %s)", source, detected),
			"extensions must be an http(s) URL or a local JSON-LD file")
	}

	u, err := url.Parse(detected)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse detected URL")
	}

	switch u.Scheme {
	case "file":
		body, err := os.ReadFile(u.Path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read extension file")
		}
		return body, nil
	case "http", "https":
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "rate limiter")
		}
		start := time.Now()
		body, err := c.http.GetBody(ctx, detected)
		if err != nil {
			return nil, err
		}
		c.log.Infow("Downloaded extension document",
			logger.FieldURL, detected,
			logger.FieldDurationMS, time.Since(start).Milliseconds())
		return body, nil
	default:
		return nil, errors.Newf("unsupported scheme %q for %s", u.Scheme, source)
	}
}

func (c *Client) rewrite(body []byte) []byte {
	if len(c.rewrites) == 0 {
		return body
	}
	s := string(body)
	for _, r := range c.rewrites {
		if r.From != "" {
			s = strings.ReplaceAll(s, r.From, r.To)
		}
	}
	return []byte(s)
}

// FetchAll loads the document of every extension that has a URL and no
// document yet. Fetches run in parallel; the first failure cancels the rest.
func FetchAll(ctx context.Context, f Fetcher, exts []*vocab.Extension) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, ext := range exts {
		if ext.Document != nil || ext.URL == "" {
			continue
		}
		g.Go(func() error {
			doc, err := f.Fetch(gctx, ext.URL)
			if err != nil {
				return errors.Wrapf(err, "extension %q", ext.Prefix)
			}
			ext.Document = doc
			return nil
		})
	}
	return g.Wait()
}
