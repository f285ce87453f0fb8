// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing request data.

package http

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strconv"
	"strings"

	"typhoondash/internal/core"
)

// Query parameters carrying the selected range.
const (
	ParamFrom = "from"
	ParamTo   = "to"
)

// ErrInvalidRange is returned for a year parameter that is not an integer.
var ErrInvalidRange = errors.New("invalid year range")

// ParseYearRange reads from/to out of query. A missing or blank bound
// falls back to the matching bound of def. The result is normalized so an
// inverted range is swapped rather than rejected.
func ParseYearRange(query url.Values, def core.YearRange) (core.YearRange, error) {
	r := def
	var err error
	if r.From, err = parseYear(query, ParamFrom, def.From); err != nil {
		return core.YearRange{}, err
	}
	if r.To, err = parseYear(query, ParamTo, def.To); err != nil {
		return core.YearRange{}, err
	}
	return r.Normalize(), nil
}

func parseYear(query url.Values, key string, fallback int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return fallback, nil
	}
	y, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a year", ErrInvalidRange, key, v)
	}
	return y, nil
}

// RangeQuery encodes r as a query string.
func RangeQuery(r core.YearRange) string {
	q := url.Values{}
	q.Set(ParamFrom, strconv.Itoa(r.From))
	q.Set(ParamTo, strconv.Itoa(r.To))
	return q.Encode()
}

// clientIP extracts the caller address. X-Forwarded-For and X-Real-IP
// are only honoured when the peer is inside one of the trusted networks.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		peer = host
	}
	if !fromTrustedProxy(peer, trusted) {
		return peer
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return peer
}

func fromTrustedProxy(peer string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(peer)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
