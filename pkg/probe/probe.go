package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/net/proxy"

	"webscan/pkg/banner"
	"webscan/pkg/config"
	"webscan/pkg/models"
)

// maxBodySize bounds how much of a page is read while looking for its title
const maxBodySize = 2 << 20

// Executor fetches one page per probe unit through the configured proxy
type Executor struct {
	client *http.Client
}

// NewExecutor builds an executor from the scan configuration. The HTTP client
// is shared by every probe and holds no per-target state.
func NewExecutor(cfg *config.Config) (*Executor, error) {
	transport, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}

	return &Executor{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}, nil
}

func newTransport(cfg *config.Config) (*http.Transport, error) {
	proxyURL, err := cfg.ProxyURL()
	if err != nil {
		return nil, err
	}

	dialer := &net.Dialer{Timeout: cfg.Timeout}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS},
		TLSHandshakeTimeout:   cfg.Timeout,
		ResponseHeaderTimeout: cfg.Timeout,
		DisableKeepAlives:     true,
	}

	if proxyURL == nil {
		return transport, nil
	}

	switch proxyURL.Scheme {
	case "socks5", "socks5h":
		d, err := proxy.FromURL(proxyURL, dialer)
		if err != nil {
			return nil, &models.ConfigurationError{Field: "proxy", Value: proxyURL.Redacted(), Err: err}
		}
		cd, ok := d.(proxy.ContextDialer)
		if !ok {
			return nil, &models.ConfigurationError{
				Field: "proxy",
				Value: proxyURL.Redacted(),
				Err:   errors.New("dialer does not support contexts"),
			}
		}
		transport.DialContext = cd.DialContext
	default:
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return transport, nil
}

// TargetURL builds the URL probed for a unit. Port 443 is fetched over https
// and everything else over plain http. Ports 80 and 443 are left implicit.
func TargetURL(unit models.ProbeUnit) string {
	scheme := "http"
	if unit.Port == 443 {
		scheme = "https"
	}

	if unit.Port == 80 || unit.Port == 443 {
		host := unit.Host
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
		return scheme + "://" + host
	}

	return scheme + "://" + net.JoinHostPort(unit.Host, strconv.Itoa(unit.Port))
}

// Probe performs a single GET for unit. Network failures of any kind give an
// absent outcome; they are never returned as errors.
func (e *Executor) Probe(ctx context.Context, unit models.ProbeUnit) models.Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, TargetURL(unit), nil)
	if err != nil {
		return models.Absent(unit, err)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return models.Absent(unit, err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return models.Absent(unit, fmt.Errorf("reading body after %v: %w", time.Since(start), err))
	}

	return models.Hit(models.ProbeResult{
		Host:       unit.Host,
		Port:       unit.Port,
		StatusCode: resp.StatusCode,
		Title:      banner.ExtractTitle(body),
	})
}

// readBody reads the response decoded to UTF-8 according to its declared or
// sniffed charset.
func readBody(resp *http.Response) (string, error) {
	limited := io.LimitReader(resp.Body, maxBodySize)

	r, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
