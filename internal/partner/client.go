// Package partner es el cliente del API de shared inventory de una tienda
// partner. Cada request es un POST form-encoded firmado con la app key de la
// tienda; la respuesta es un sobre JSON {code, msg, data}.
package partner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/mallkit/internal/metrics"
	"github.com/dropDatabas3/mallkit/internal/observability/logger"
	"github.com/dropDatabas3/mallkit/internal/signature"
)

const DefaultTimeout = 10 * time.Second

// maxBody limita lo que se lee de una respuesta del partner.
const maxBody = 4 << 20

const (
	pathConnect        = "/shared/authentication/connect"
	pathItems          = "/shared/commodity/items"
	pathInventoryState = "/shared/commodity/inventoryState"
	pathTrade          = "/shared/commodity/trade"
	pathDraftCard      = "/shared/commodity/draftCard"
	pathInventory      = "/shared/commodity/inventory"
)

// ErrConnection se devuelve cuando el partner no respondió algo utilizable:
// fallo de red, timeout, status HTTP no 2xx o cuerpo que no es JSON.
var ErrConnection = errors.New("connection failed")

// RemoteError es un sobre con code != 200. Error() devuelve el msg del partner.
type RemoteError struct {
	Code int
	Msg  string
}

func (e *RemoteError) Error() string { return e.Msg }

// IsRemote reporta si err es (o envuelve) un *RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// Store son las credenciales de una tienda partner.
type Store struct {
	Domain string
	AppID  string
	AppKey string
}

// Doer es la parte de *http.Client que usa el cliente.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client habla con el API de shared inventory.
type Client struct {
	http Doer
}

// NewClient crea un Client. doer nil usa un *http.Client con timeout
// (DefaultTimeout si timeout <= 0).
func NewClient(doer Doer, timeout time.Duration) *Client {
	if doer == nil {
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{http: doer}
}

type envelope struct {
	Code json.RawMessage `json:"code"`
	Msg  json.RawMessage `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// post firma y envía fields a domain+path y devuelve el data del sobre.
func (c *Client) post(ctx context.Context, domain, path, appID, appKey string, extra map[string]string) (map[string]any, error) {
	endpoint := strings.TrimPrefix(path[strings.LastIndex(path, "/"):], "/")
	log := logger.From(ctx).With(logger.Component("partner"), logger.Endpoint(endpoint))

	fields := make(map[string]string, len(extra)+3)
	for k, v := range extra {
		fields[k] = v
	}
	fields["app_id"] = appID
	fields["app_key"] = appKey
	fields[signature.Field] = signature.Generate(fields, appKey)

	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}

	start := time.Now()
	body, err := c.do(ctx, strings.TrimRight(domain, "/")+path, form)
	metrics.PartnerRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PartnerRequestsTotal.WithLabelValues(endpoint, "connection_error").Inc()
		log.Warn("partner request failed", logger.Err(err))
		return nil, ErrConnection
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		metrics.PartnerRequestsTotal.WithLabelValues(endpoint, "connection_error").Inc()
		log.Warn("partner response is not json", logger.Err(err), logger.Int("bytes", len(body)))
		return nil, ErrConnection
	}

	if code, ok := parseCode(env.Code); !ok || code != 200 {
		metrics.PartnerRequestsTotal.WithLabelValues(endpoint, "remote_error").Inc()
		re := &RemoteError{Code: code, Msg: rawString(env.Msg)}
		log.Info("partner rejected request", logger.Int("code", re.Code), logger.String("msg", re.Msg))
		return nil, re
	}

	metrics.PartnerRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return decodeData(env.Data), nil
}

func (c *Client) do(ctx context.Context, target string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBody))
}

// parseCode acepta 200 y "200".
func parseCode(raw json.RawMessage) (int, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return int(f), f == float64(int(f))
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// decodeData: null/ausente => nil, objeto => map, cualquier otra cosa => map vacío.
// Los números quedan como json.Number.
func decodeData(raw json.RawMessage) map[string]any {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return map[string]any{}
	}
	return m
}
