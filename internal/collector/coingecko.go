package collector

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"CoinSentinel/internal/model"

	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpproxy"
)

// DefaultTimeout bounds a single price request.
const DefaultTimeout = 10 * time.Second

// ErrNoData is returned when the feed answers with an empty object.
var ErrNoData = errors.New("coingecko: no data returned")

// CoinGeckoFetcher implements Fetcher using the CoinGecko simple/price API.
type CoinGeckoFetcher struct {
	BaseURL    string
	VsCurrency string
	Timeout    time.Duration
	Client     *fasthttp.Client
}

// NewCoinGeckoFetcher creates a fetcher with optional proxy support.
func NewCoinGeckoFetcher(baseURL, vsCurrency, proxyURL string, timeout time.Duration) *CoinGeckoFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &fasthttp.Client{
		Name:                "CoinSentinel",
		MaxIdleConnDuration: time.Minute,
	}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil && u.Host != "" {
			addr := u.Host
			if u.User != nil {
				addr = u.User.String() + "@" + u.Host
			}
			client.Dial = fasthttpproxy.FasthttpHTTPDialer(addr)
		}
	}
	return &CoinGeckoFetcher{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		VsCurrency: strings.ToLower(vsCurrency),
		Timeout:    timeout,
		Client:     client,
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

// FetchQuotes requests price, 24h change and 24h volume for feedIDs.
// Entries without a positive price are left out of the result.
func (f *CoinGeckoFetcher) FetchQuotes(ctx context.Context, feedIDs []string) (map[string]model.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(f.BaseURL + "/simple/price")
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	args := req.URI().QueryArgs()
	args.Set("ids", strings.Join(feedIDs, ","))
	args.Set("vs_currencies", f.VsCurrency)
	args.Set("include_24hr_change", "true")
	args.Set("include_24hr_vol", "true")

	deadline := time.Now().Add(f.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := f.Client.DoDeadline(req, resp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return nil, fmt.Errorf("coingecko: request timed out after %v: %w", f.Timeout, err)
		}
		return nil, fmt.Errorf("coingecko fetch: %w", err)
	}

	body := resp.Body()
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, fmt.Errorf("coingecko: status %d, body: %s", code, truncate(body, 200))
	}
	return f.parse(body, time.Now())
}

func (f *CoinGeckoFetcher) parse(body []byte, now time.Time) (map[string]model.Quote, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("coingecko: malformed body: %s", truncate(body, 200))
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("coingecko: unexpected payload type")
	}
	if e := root.Get("error"); e.Exists() {
		return nil, fmt.Errorf("coingecko api error: %s", e.String())
	}

	cur := f.VsCurrency
	quotes := make(map[string]model.Quote)
	seen := 0
	root.ForEach(func(key, value gjson.Result) bool {
		seen++
		if !value.IsObject() {
			return true
		}
		price := value.Get(cur).Float()
		if price <= 0 {
			return true
		}
		quotes[key.String()] = model.Quote{
			Price:     price,
			Change24h: value.Get(cur + "_24h_change").Float(),
			Volume24h: value.Get(cur + "_24h_vol").Float(),
			FetchedAt: now,
		}
		return true
	})
	if seen == 0 {
		return nil, ErrNoData
	}
	return quotes, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
