package collector

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func newTestFetcher(t *testing.T, handler fasthttp.RequestHandler) *CoinGeckoFetcher {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = fasthttp.Serve(ln, handler) }()
	t.Cleanup(func() { ln.Close() })

	f := NewCoinGeckoFetcher("http://coingecko.test/api/v3/", "JPY", "", time.Second)
	f.Client.Dial = func(addr string) (net.Conn, error) { return ln.Dial() }
	return f
}

func TestCoinGecko_FetchQuotes(t *testing.T) {
	var gotPath, gotIDs, gotCur, gotVol string
	f := newTestFetcher(t, func(ctx *fasthttp.RequestCtx) {
		gotPath = string(ctx.Path())
		args := ctx.QueryArgs()
		gotIDs = string(args.Peek("ids"))
		gotCur = string(args.Peek("vs_currencies"))
		gotVol = string(args.Peek("include_24hr_vol"))
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{
			"bitcoin": {"jpy": 10000000, "jpy_24h_change": 2.5, "jpy_24h_vol": 123456789},
			"bitcoin-cash": {"jpy": 65000.5, "jpy_24h_change": -9.1},
			"oasys": {}
		}`)
	})

	quotes, err := f.FetchQuotes(context.Background(), []string{"bitcoin", "bitcoin-cash", "oasys", "tezos"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotPath != "/api/v3/simple/price" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotIDs != "bitcoin,bitcoin-cash,oasys,tezos" || gotCur != "jpy" || gotVol != "true" {
		t.Errorf("unexpected query ids=%q cur=%q vol=%q", gotIDs, gotCur, gotVol)
	}
	if len(quotes) != 2 {
		t.Fatalf("expected 2 usable quotes, got %d: %+v", len(quotes), quotes)
	}
	btc := quotes["bitcoin"]
	if btc.Price != 10000000 || btc.Change24h != 2.5 || btc.Volume24h != 123456789 {
		t.Errorf("unexpected bitcoin quote: %+v", btc)
	}
	if bch := quotes["bitcoin-cash"]; bch.Change24h != -9.1 || bch.Volume24h != 0 {
		t.Errorf("unexpected bitcoin-cash quote: %+v", bch)
	}
}

func TestCoinGecko_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"rate limited", 429, `{"status":{"error_code":429}}`, func(err error) bool { return strings.Contains(err.Error(), "status 429") }},
		{"server error", 503, `oops`, func(err error) bool { return strings.Contains(err.Error(), "status 503") }},
		{"malformed", 200, `{"bitcoin": {"jpy": 1`, func(err error) bool { return strings.Contains(err.Error(), "malformed") }},
		{"empty object", 200, `{}`, func(err error) bool { return errors.Is(err, ErrNoData) }},
		{"offline payload", 200, `{"error":"offline"}`, func(err error) bool { return strings.Contains(err.Error(), "offline") }},
		{"array payload", 200, `[1,2]`, func(err error) bool { return strings.Contains(err.Error(), "unexpected payload") }},
	}
	for _, tt := range tests {
		f := newTestFetcher(t, func(ctx *fasthttp.RequestCtx) {
			ctx.SetStatusCode(tt.status)
			ctx.SetBodyString(tt.body)
		})
		_, err := f.FetchQuotes(context.Background(), []string{"bitcoin"})
		if err == nil || !tt.check(err) {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
	}
}

func TestCoinGecko_Timeout(t *testing.T) {
	release := make(chan struct{})
	f := newTestFetcher(t, func(ctx *fasthttp.RequestCtx) {
		<-release
		ctx.SetBodyString(`{"bitcoin":{"jpy":1}}`)
	})
	defer close(release)
	f.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := f.FetchQuotes(context.Background(), []string{"bitcoin"})
	if !errors.Is(err, fasthttp.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestCoinGecko_CancelledContext(t *testing.T) {
	f := NewCoinGeckoFetcher("http://unused", "jpy", "", time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.FetchQuotes(ctx, []string{"bitcoin"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
