package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
)

const retryBaseDelay = 500 * time.Millisecond

type NetworkManager struct {
	Config       *models.MConfig
	ProxyManager interfaces.IProxyManager
	Client       *resty.Client
	Logger       *logger.Logger

	// One client per proxy, built up front and never mutated afterwards.
	proxyClients map[string]*resty.Client
}

// -----------------------------------------------------------------------------

func NewNetworkManager(cfg *models.MConfig, log *logger.Logger) *NetworkManager {
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}
	if log == nil {
		log = logger.NewNop("Network")
	}

	nm := &NetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(proxies, cfg.Network.UserAgent, log),
		Logger:       log,
	}
	nm.Client = nm.createClient("")
	nm.proxyClients = make(map[string]*resty.Client)
	for _, p := range proxies {
		p = helpers.FormatProxy(p)
		if helpers.ValidateProxy(p) {
			nm.proxyClients[p] = nm.createClient(p)
		}
	}
	return nm
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) createClient(proxyStr string) *resty.Client {
	timeout := time.Duration(nm.Config.Network.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetTLSClientConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	client.SetHeader("Accept", "application/json")

	if proxyStr != "" {
		client.SetProxy(proxyStr)
	}
	return client
}

// -----------------------------------------------------------------------------

// client returns the client bound to the current proxy.
func (nm *NetworkManager) client() *resty.Client {
	if proxyStr, err := nm.ProxyManager.GetCurrentProxy(); err == nil && proxyStr != "" {
		if c, ok := nm.proxyClients[proxyStr]; ok {
			return c
		}
	}
	return nm.Client
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) rotateProxy() {
	if nm.ProxyManager.HasProxies() {
		nm.ProxyManager.RotateProxy()
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries and proxy rotation. Client errors
// other than 403 and 429 are not retried.
func (nm *NetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	attempt := 0

	return helpers.RetryWithBackoff(ctx, "GET "+urlStr, nm.Config.Network.MaxRetries, retryBaseDelay, nm.Logger, func() ([]byte, error) {
		attempt++
		if attempt > 1 {
			nm.rotateProxy()
		}

		resp, err := nm.client().R().
			SetContext(ctx).
			SetHeader("User-Agent", nm.ProxyManager.GetUserAgent()).
			SetQueryParams(params).
			Get(urlStr)
		if err != nil {
			return nil, err
		}

		status := resp.StatusCode()
		switch {
		case status == http.StatusTooManyRequests || status == http.StatusForbidden:
			nm.Logger.Info("Request blocked (%d). Rotating proxy.", status)
			return nil, fmt.Errorf("blocked (status %d)", status)
		case status >= 400 && status < 500:
			return nil, backoff.Permanent(fmt.Errorf("bad status: %d", status))
		case status != http.StatusOK:
			return nil, fmt.Errorf("bad status: %d", status)
		}

		return resp.Body(), nil
	})
}
