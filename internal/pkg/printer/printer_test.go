package printer

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/hostel-arena/hms-backend-go/internal/domain/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var payload = leave.PrintPayload{
	Name:    "Arun Kumar",
	RollNo:  "21CS001",
	OutDate: "2024-03-01",
	OutTime: "17:00",
	InDate:  "2024-03-03",
	InTime:  "20:00",
	PassID:  "9F3A21BC",
}

func TestTCPPrinter_WritesReceipt(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- string(data)
	}()

	p := NewTCPPrinter(ln.Addr().String(), time.Second)
	require.NoError(t, p.PrintReceipt(context.Background(), payload))

	select {
	case got := <-received:
		assert.Contains(t, got, "Pass ID : 9F3A21BC")
		assert.Contains(t, got, "Roll No : 21CS001")
		assert.Contains(t, got, "Return  : 2024-03-03 20:00")
	case <-time.After(2 * time.Second):
		t.Fatal("printer received nothing")
	}
}

func TestTCPPrinter_Disabled(t *testing.T) {
	p := NewTCPPrinter("", time.Second)
	assert.ErrorIs(t, p.PrintReceipt(context.Background(), payload), ErrDisabled)
}

func TestTCPPrinter_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	p := NewTCPPrinter(addr, 200*time.Millisecond)
	err = p.PrintReceipt(context.Background(), payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial printer")
}
