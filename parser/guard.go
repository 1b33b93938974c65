package parser

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

var errBlockedAddress = errors.New("address is not public")

// cgnat is the shared address space of RFC 6598.
var cgnat = netip.MustParsePrefix("100.64.0.0/10")

// publicOnly runs after DNS resolution for every dial, including redirects,
// and refuses loopback, private, link-local and other non-routable targets.
func publicOnly(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", errBlockedAddress, host)
	}
	if !isPublic(ip.Unmap()) {
		return fmt.Errorf("%w: %s", errBlockedAddress, ip)
	}
	return nil
}

func isPublic(ip netip.Addr) bool {
	switch {
	case ip.IsLoopback(), ip.IsPrivate(), ip.IsUnspecified(),
		ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(), ip.IsMulticast():
		return false
	case cgnat.Contains(ip):
		return false
	}
	return true
}

// publicTransport dials only public addresses. Proxies are disabled so the
// check applies to the page host itself.
func publicTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = nil
	t.DialContext = (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   publicOnly,
	}).DialContext
	return t
}
