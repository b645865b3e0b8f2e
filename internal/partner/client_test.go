package partner

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/mallkit/internal/signature"
)

type captured struct {
	mu    sync.Mutex
	path  string
	ctype string
	form  url.Values
}

func newPartner(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		c.mu.Lock()
		c.path = r.URL.Path
		c.ctype = r.Header.Get("Content-Type")
		c.form = r.PostForm
		c.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func storeFor(srv *httptest.Server) Store {
	return Store{Domain: srv.URL + "/", AppID: "10001", AppKey: "s3cr3t"}
}

func flatten(v url.Values) map[string]string {
	out := make(map[string]string, len(v))
	for k := range v {
		out[k] = v.Get(k)
	}
	return out
}

func TestTrade_ReturnsSecret(t *testing.T) {
	srv, got := newPartner(t, 200, `{"code":200,"msg":"","data":{"secret":"abc"}}`)
	c := NewClient(srv.Client(), 0)

	secret, err := c.Trade(context.Background(), storeFor(srv), "SC1", "buyer@example.com", 2, 7, 1, "pw")
	require.NoError(t, err)
	require.Equal(t, "abc", secret)

	assert.Equal(t, "/shared/commodity/trade", got.path)
	assert.Equal(t, "application/x-www-form-urlencoded", got.ctype)
	f := flatten(got.form)
	assert.Equal(t, "SC1", f["shared_code"])
	assert.Equal(t, "buyer@example.com", f["contact"])
	assert.Equal(t, "2", f["num"])
	assert.Equal(t, "7", f["card_id"])
	assert.Equal(t, "1", f["device"])
	assert.Equal(t, "pw", f["password"])
	assert.Equal(t, "10001", f["app_id"])
	assert.Equal(t, "s3cr3t", f["app_key"])
	assert.True(t, signature.Verify(f, "s3cr3t"), "request must carry a valid signature")
}

func TestTrade_SecretCoercion(t *testing.T) {
	cases := map[string]string{
		`{"code":200,"data":{"secret":12345678901234}}`: "12345678901234",
		`{"code":200,"data":{"secret":true}}`:           "1",
		`{"code":200,"data":{"secret":null}}`:           "",
		`{"code":200,"data":{}}`:                        "",
		`{"code":"200","data":{"secret":"x"}}`:          "x",
	}
	for body, want := range cases {
		srv, _ := newPartner(t, 200, body)
		secret, err := NewClient(srv.Client(), 0).Trade(context.Background(), storeFor(srv), "SC", "c", 1, 1, 0, "")
		require.NoError(t, err, body)
		require.Equal(t, want, secret, body)
	}
}

func TestRemoteError_EveryOperation(t *testing.T) {
	srv, _ := newPartner(t, 200, `{"code":403,"msg":"invalid signature"}`)
	c := NewClient(srv.Client(), 0)
	s := storeFor(srv)
	ctx := context.Background()

	calls := map[string]func() error{
		"connect": func() error { _, err := c.Connect(ctx, s.Domain, s.AppID, s.AppKey); return err },
		"items":   func() error { _, err := c.Items(ctx, s); return err },
		"inventoryState": func() error {
			ok, err := c.InventoryState(ctx, s, "SC", 1, 1)
			assert.False(t, ok)
			return err
		},
		"trade":     func() error { _, err := c.Trade(ctx, s, "SC", "c", 1, 1, 0, ""); return err },
		"draftCard": func() error { _, err := c.DraftCard(ctx, s, "SC", 1); return err },
		"inventory": func() error { _, err := c.Inventory(ctx, s, "SC"); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			var re *RemoteError
			require.ErrorAs(t, err, &re)
			require.Equal(t, 403, re.Code)
			require.Equal(t, "invalid signature", re.Error())
			require.True(t, IsRemote(err))
		})
	}
}

type failingDoer struct{ err error }

func (f failingDoer) Do(*http.Request) (*http.Response, error) { return nil, f.err }

func TestConnectionError_EveryOperation(t *testing.T) {
	c := NewClient(failingDoer{err: context.DeadlineExceeded}, 0)
	s := Store{Domain: "http://partner.invalid", AppID: "1", AppKey: "k"}
	ctx := context.Background()

	errs := []error{}
	_, err := c.Connect(ctx, s.Domain, s.AppID, s.AppKey)
	errs = append(errs, err)
	_, err = c.Items(ctx, s)
	errs = append(errs, err)
	_, err = c.InventoryState(ctx, s, "SC", 1, 1)
	errs = append(errs, err)
	_, err = c.Trade(ctx, s, "SC", "c", 1, 1, 0, "")
	errs = append(errs, err)
	_, err = c.DraftCard(ctx, s, "SC", 2)
	errs = append(errs, err)
	_, err = c.Inventory(ctx, s, "SC")
	errs = append(errs, err)

	for _, err := range errs {
		require.ErrorIs(t, err, ErrConnection)
		require.Equal(t, "connection failed", err.Error())
		require.False(t, IsRemote(err))
	}
}

func TestConnectionError_BadResponses(t *testing.T) {
	cases := []struct {
		status int
		body   string
	}{
		{200, `<html>oops</html>`},
		{200, ``},
		{500, `{"code":200,"data":{}}`},
		{404, `not found`},
	}
	for _, tc := range cases {
		srv, _ := newPartner(t, tc.status, tc.body)
		_, err := NewClient(srv.Client(), 0).Items(context.Background(), storeFor(srv))
		require.ErrorIs(t, err, ErrConnection, "status=%d body=%q", tc.status, tc.body)
	}
}

func TestDraftCardAndInventory_FieldsAndData(t *testing.T) {
	srv, got := newPartner(t, 200, `{"code":200,"msg":"ok","data":{"list":[{"id":1}],"total":1}}`)
	c := NewClient(srv.Client(), 0)

	data, err := c.DraftCard(context.Background(), storeFor(srv), "SC9", 3)
	require.NoError(t, err)
	require.Contains(t, data, "list")
	f := flatten(got.form)
	require.Equal(t, "SC9", f["sharedCode"])
	require.Equal(t, "3", f["page"])
	require.Equal(t, "/shared/commodity/draftCard", got.path)

	_, err = c.Inventory(context.Background(), storeFor(srv), "SC9")
	require.NoError(t, err)
	require.Equal(t, "/shared/commodity/inventory", got.path)
	_, hasPage := got.form["page"]
	require.False(t, hasPage)
}

func TestConnect_NullAndNonObjectData(t *testing.T) {
	srv, got := newPartner(t, 200, `{"code":200,"msg":"","data":null}`)
	data, err := NewClient(srv.Client(), 0).Connect(context.Background(), srv.URL, "1", "k")
	require.NoError(t, err)
	require.Nil(t, data)
	require.Equal(t, "/shared/authentication/connect", got.path)
	require.Len(t, got.form, 3, "app_id, app_key and sign only")

	srv2, _ := newPartner(t, 200, `{"code":200,"data":[1,2]}`)
	data, err = NewClient(srv2.Client(), 0).Items(context.Background(), storeFor(srv2))
	require.NoError(t, err)
	require.NotNil(t, data)
	require.Empty(t, data)
}

func TestInventoryState_IgnoresData(t *testing.T) {
	srv, got := newPartner(t, 200, `{"code":200,"data":"whatever"}`)
	ok, err := NewClient(srv.Client(), 0).InventoryState(context.Background(), storeFor(srv), "SC", 5, 3)
	require.NoError(t, err)
	require.True(t, ok)
	f := flatten(got.form)
	require.Equal(t, "5", f["card_id"])
	require.Equal(t, "3", f["num"])
}

func TestRemoteError_MissingCode(t *testing.T) {
	srv, _ := newPartner(t, 200, `{"msg":"maintenance"}`)
	_, err := NewClient(srv.Client(), 0).Items(context.Background(), storeFor(srv))
	var re *RemoteError
	require.True(t, errors.As(err, &re))
	require.Equal(t, "maintenance", re.Msg)
	require.True(t, strings.Contains(err.Error(), "maintenance"))
}
