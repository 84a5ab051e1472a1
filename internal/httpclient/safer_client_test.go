package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	c := New(30*time.Second, Options{})

	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Equal(t, DefaultMaxRedirects, c.maxRedirects)
	assert.Equal(t, int64(DefaultMaxBodyBytes), c.maxBodyBytes)
	assert.True(t, c.blockPrivateIP)
	assert.Equal(t, []string{"http", "https"}, c.allowedSchemes)
}

func TestValidateURL(t *testing.T) {
	c := New(time.Second, Options{})

	tests := []struct {
		name        string
		url         string
		errContains string
	}{
		{name: "https", url: "https://openactive.io/ns/oa.jsonld"},
		{name: "http", url: "http://schema.org/version/latest/schemaorg-current-https.jsonld"},
		{name: "file scheme", url: "file:///etc/passwd", errContains: "scheme"},
		{name: "ftp scheme", url: "ftp://example.com", errContains: "scheme"},
		{name: "localhost", url: "http://localhost/admin", errContains: "localhost"},
		{name: "localhost subdomain", url: "http://api.localhost/", errContains: "localhost"},
		{name: "loopback", url: "http://127.0.0.1:8080/", errContains: "private"},
		{name: "rfc1918", url: "http://192.168.1.10/", errContains: "private"},
		{name: "metadata service", url: "http://169.254.169.254/latest", errContains: "private"},
		{name: "ipv6 loopback", url: "http://[::1]/", errContains: "private"},
		{name: "credentials", url: "http://openactive.io@127.0.0.1/", errContains: "credentials"},
		{name: "no host", url: "https:///path", errContains: "hostname"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ValidateURL(tt.url)
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidateURLAllowPrivate(t *testing.T) {
	c := New(time.Second, Options{AllowPrivate: true})

	_, err := c.ValidateURL("http://127.0.0.1:9999/ext.jsonld")
	assert.NoError(t, err)

	_, err = c.ValidateURL("file:///tmp/ext.jsonld")
	assert.Error(t, err, "scheme checks still apply")
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip      string
		private bool
	}{
		{"10.1.2.3", true},
		{"172.20.0.1", true},
		{"100.64.1.1", true},
		{"0.0.0.0", true},
		{"224.0.0.1", true},
		{"::ffff:127.0.0.1", true},
		{"fd12::1", true},
		{"fe80::1", true},
		{"2001:db8::1", true},
		{"8.8.8.8", false},
		{"2606:4700::1111", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.private, isPrivateIP(netip.MustParseAddr(tt.ip)))
		})
	}
}

func TestGetBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "application/ld+json", r.Header.Get("Accept"))
			_, _ = w.Write([]byte(`{"@context":{}}`))
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		case "/redirect":
			http.Redirect(w, r, "/ok", http.StatusFound)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := New(5*time.Second, Options{AllowPrivate: true, Accept: "application/ld+json", MaxBodyBytes: 32})
	ctx := context.Background()

	body, err := c.GetBody(ctx, server.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, `{"@context":{}}`, string(body))

	body, err = c.GetBody(ctx, server.URL+"/redirect")
	require.NoError(t, err)
	assert.Equal(t, `{"@context":{}}`, string(body))

	_, err = c.GetBody(ctx, server.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, err = c.GetBody(ctx, server.URL+"/big")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestGetBodyBlocksLoopbackByDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer server.Close()

	_, err := New(time.Second, Options{}).GetBody(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private")
}
