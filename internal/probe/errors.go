package probe

import "errors"

var (
	// ErrInvalidProxyAddress is returned when the proxy address is not in
	// "host:port" format.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrProxyUnreachable is returned when no TCP connection to the proxy
	// can be established.
	ErrProxyUnreachable = errors.New("cannot connect to SOCKS5 proxy")

	// ErrProxyNotSOCKS5 is returned when the proxy answers but does not
	// complete a SOCKS5 greeting without authentication.
	ErrProxyNotSOCKS5 = errors.New("proxy is not a SOCKS5 proxy accepting unauthenticated clients")

	// ErrTooManyRedirects is returned when a pixel keeps redirecting past
	// the configured limit.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrInvalidMethod is returned for an empty or unsupported request method.
	ErrInvalidMethod = errors.New("unsupported probe method: expected GET or HEAD")
)
