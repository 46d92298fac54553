package probe

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"
)

// checkProxyTimeout bounds the connectivity check, not the probes.
const checkProxyTimeout = 2 * time.Second

const (
	socks5Version  = 0x05
	socks5AuthNone = 0x00
)

// CheckProxy verifies that addr speaks SOCKS5 and accepts clients without
// authentication. It only performs the method negotiation; no CONNECT
// request is sent, so no pixel server is contacted.
func CheckProxy(ctx context.Context, addr string) error {
	if !isValidProxyAddress(addr) {
		return fmt.Errorf("%w: %q", ErrInvalidProxyAddress, addr)
	}

	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProxyUnreachable, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("%w: %w", ErrProxyUnreachable, err)
		}
	}

	// version, one method, no authentication
	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return fmt.Errorf("%w: %w", ErrProxyUnreachable, err)
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		return fmt.Errorf("%w: %w", ErrProxyNotSOCKS5, err)
	}
	if resp[0] != socks5Version || resp[1] != socks5AuthNone {
		return fmt.Errorf("%w: got version %#x method %#x", ErrProxyNotSOCKS5, resp[0], resp[1])
	}
	return nil
}
