package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClamd answers one connection: PONG for zPING, reply for zINSTREAM after draining the chunks
func fakeClamd(t *testing.T, reply string) (string, <-chan []byte) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		cmd, err := r.ReadString(0)
		if err != nil {
			return
		}
		if cmd == "zPING\x00" {
			conn.Write([]byte("PONG\x00"))
			return
		}

		var payload []byte
		size := make([]byte, 4)
		for {
			if _, err := io.ReadFull(r, size); err != nil {
				return
			}
			n := binary.BigEndian.Uint32(size)
			if n == 0 {
				break
			}
			chunk := make([]byte, n)
			if _, err := io.ReadFull(r, chunk); err != nil {
				return
			}
			payload = append(payload, chunk...)
		}
		received <- payload
		conn.Write([]byte(reply + "\x00"))
	}()
	return ln.Addr().String(), received
}

func TestClamdPing(t *testing.T) {
	addr, _ := fakeClamd(t, "")
	assert.NoError(t, NewClamd(addr, time.Second).Ping(context.Background()))
}

func TestClamdScan(t *testing.T) {
	t.Run("Clean file", func(t *testing.T) {
		addr, received := fakeClamd(t, "stream: OK")
		err := NewClamd(addr, time.Second).Scan(context.Background(), "cv.pdf", []byte("%PDF-1.4 body"))
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.4 body"), <-received)
	})

	t.Run("Infected file", func(t *testing.T) {
		addr, _ := fakeClamd(t, "stream: Eicar-Test-Signature FOUND")
		err := NewClamd(addr, time.Second).Scan(context.Background(), "cv.pdf", []byte("X5O!P%@AP"))
		require.ErrorIs(t, err, ErrInfected)
		assert.Contains(t, err.Error(), "Eicar-Test-Signature")
	})

	t.Run("Daemon error", func(t *testing.T) {
		addr, _ := fakeClamd(t, "INSTREAM size limit exceeded. ERROR")
		err := NewClamd(addr, time.Second).Scan(context.Background(), "cv.pdf", []byte("data"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInfected)
	})

	t.Run("Unreachable daemon", func(t *testing.T) {
		err := NewClamd("127.0.0.1:1", 200*time.Millisecond).Scan(context.Background(), "cv.pdf", []byte("data"))
		assert.Error(t, err)
	})
}
