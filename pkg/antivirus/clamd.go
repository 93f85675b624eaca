package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ErrInfected is returned when clamd reports a signature match
var ErrInfected = errors.New("malware detected")

// clamd rejects INSTREAM chunks larger than StreamMaxLength; uploads are far below the default 25MB
const chunkSize = 1 << 20

// Clamd scans uploads through a clamd daemon using the zINSTREAM command
type Clamd struct {
	network string
	address string
	timeout time.Duration
}

// NewClamd accepts a TCP "host:3310" address or an absolute unix socket path
func NewClamd(address string, timeout time.Duration) *Clamd {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	network := "tcp"
	if strings.HasPrefix(address, "/") {
		network = "unix"
	}
	return &Clamd{network: network, address: address, timeout: timeout}
}

func (c *Clamd) dial(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, c.network, c.address)
	if err != nil {
		return nil, fmt.Errorf("connect clamd: %w", err)
	}
	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Ping checks that the daemon answers PONG
func (c *Clamd) Ping(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return fmt.Errorf("send ping: %w", err)
	}
	reply, err := readReply(conn)
	if err != nil {
		return err
	}
	if reply != "PONG" {
		return fmt.Errorf("unexpected clamd reply %q", reply)
	}
	return nil
}

// Scan streams data to clamd. It returns ErrInfected wrapped with the signature name
// when the file is flagged, and any transport or daemon error unchanged.
func (c *Clamd) Scan(ctx context.Context, name string, data []byte) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zINSTREAM\x00")); err != nil {
		return fmt.Errorf("send instream: %w", err)
	}

	size := make([]byte, 4)
	for start := 0; start < len(data); start += chunkSize {
		end := min(start+chunkSize, len(data))
		binary.BigEndian.PutUint32(size, uint32(end-start))
		if _, err := conn.Write(size); err != nil {
			return fmt.Errorf("send chunk size: %w", err)
		}
		if _, err := conn.Write(data[start:end]); err != nil {
			return fmt.Errorf("send chunk: %w", err)
		}
	}
	if _, err := conn.Write([]byte{0, 0, 0, 0}); err != nil {
		return fmt.Errorf("send end of stream: %w", err)
	}

	reply, err := readReply(conn)
	if err != nil {
		return err
	}
	return parseScanReply(name, reply)
}

func readReply(conn net.Conn) (string, error) {
	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && reply == "" {
		return "", fmt.Errorf("read clamd reply: %w", err)
	}
	return strings.TrimSpace(strings.TrimRight(reply, "\x00")), nil
}

// parseScanReply maps "stream: OK", "stream: <sig> FOUND" and "<msg> ERROR"
func parseScanReply(name, reply string) error {
	body := strings.TrimSpace(strings.TrimPrefix(reply, "stream:"))
	switch {
	case body == "OK":
		return nil
	case strings.HasSuffix(body, " FOUND"):
		return fmt.Errorf("%w in %s: %s", ErrInfected, name, strings.TrimSuffix(body, " FOUND"))
	default:
		return fmt.Errorf("clamd scan failed for %s: %s", name, body)
	}
}
