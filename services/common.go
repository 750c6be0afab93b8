package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
	"time"
)

// maxRemoteImageBytes caps images fetched by URL.
const maxRemoteImageBytes = 20 << 20

func GetEnv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

func StrPointer(str string) *string {
	if str == "" {
		return nil
	}
	return &str
}

// ErrBlockedAddress is returned when a remote image resolves to a loopback,
// private or link-local address.
var ErrBlockedAddress = errors.New("address is not publicly routable")

func isPublicIP(ip net.IP) bool {
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast())
}

// publicDialControl runs after name resolution, so it also covers redirects
// and hostnames that resolve to internal addresses.
func publicDialControl(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || !isPublicIP(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

var publicHTTPClient = &http.Client{
	Timeout: 60 * time.Second,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: 10 * time.Second,
			Control: publicDialControl,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// ReadPublicFileFromUrl fetches a caller-supplied https URL, refusing any
// address inside the network.
func ReadPublicFileFromUrl(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid image url: %w", err)
	}
	if u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("image url must use https: %s", u.Redacted())
	}
	return readFile(ctx, publicHTTPClient, rawURL)
}

// ReadFileFromUrl fetches a trusted URL, such as a presigned bucket link.
func ReadFileFromUrl(ctx context.Context, url string) ([]byte, error) {
	return readFile(ctx, http.DefaultClient, url)
}

func readFile(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch file, status code: %d", resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(content) > maxRemoteImageBytes {
		return nil, fmt.Errorf("file at %s is larger than %d bytes", url, maxRemoteImageBytes)
	}
	return content, nil
}
