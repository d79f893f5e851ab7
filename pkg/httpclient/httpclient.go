package httpclient

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Opts struct {
	ProxyURL  string
	UserAgent string
	Timeout   time.Duration
}

// Transport sets a default User-Agent on every outbound request.
type Transport struct {
	Base      http.RoundTripper
	UserAgent string
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}
	if t.UserAgent == "" || req.Header.Get("User-Agent") != "" {
		return t.Base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.UserAgent)
	return t.Base.RoundTrip(r)
}

// New builds the outbound client. A non-empty proxy URL routes every request
// through it and disables keep-alive so each request gets a fresh exit.
// Timeout bounds a single HTTP exchange, header wait included; zero means
// no per-request limit.
func New(opts Opts) (*http.Client, error) {
	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: opts.Timeout,
		MaxIdleConnsPerHost:   16,
	}

	if proxyURL := strings.TrimSpace(opts.ProxyURL); proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy url must include scheme and host")
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
	}

	return &http.Client{
		Transport: &Transport{Base: base, UserAgent: opts.UserAgent},
		Timeout:   opts.Timeout,
	}, nil
}
