package services

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPublicFileFromUrlBlocksInternalAddresses(t *testing.T) {
	hit := false
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		w.Write([]byte("secret"))
	}))
	defer srv.Close()

	_, err := ReadPublicFileFromUrl(context.Background(), srv.URL+"/latest/meta-data")
	assert.ErrorIs(t, err, ErrBlockedAddress)
	assert.False(t, hit)
}

func TestReadPublicFileFromUrlRequiresHTTPS(t *testing.T) {
	for _, ref := range []string{"http://example.com/a.png", "file:///etc/passwd", "ftp://example.com/a"} {
		_, err := ReadPublicFileFromUrl(context.Background(), ref)
		assert.Error(t, err, ref)
	}
}

func TestPublicDialControl(t *testing.T) {
	for _, addr := range []string{"127.0.0.1:443", "10.0.0.8:443", "192.168.1.1:443", "169.254.169.254:80", "[::1]:443", "[fe80::1]:443", "0.0.0.0:80"} {
		assert.ErrorIs(t, publicDialControl("tcp", addr, nil), ErrBlockedAddress, addr)
	}
	require.NoError(t, publicDialControl("tcp", net.JoinHostPort("93.184.216.34", "443"), nil))
}

func TestReadFileFromUrl(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	content, err := ReadFileFromUrl(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(content))
}
