package httpclient

import (
	"net/http"

	"github.com/orgball2608/reel-ranker/pkg/config"
)

// FxOption provides the outbound client used for every Instagram request.
var FxOption = func(cfg *config.Config) (*http.Client, error) {
	return New(Opts{
		ProxyURL:  cfg.Instagram.ProxyURL,
		UserAgent: cfg.Instagram.UserAgent,
		Timeout:   cfg.Instagram.RequestTimeout,
	})
}
