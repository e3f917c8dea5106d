package printer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/hostel-arena/hms-backend-go/internal/domain/leave"
)

// ErrDisabled is returned when no printer address is configured.
var ErrDisabled = errors.New("printer not configured")

// TCPPrinter sends plain-text receipts to a raw-socket thermal printer (port 9100 style).
type TCPPrinter struct {
	addr    string
	timeout time.Duration
	dialer  net.Dialer
}

func NewTCPPrinter(addr string, timeout time.Duration) *TCPPrinter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TCPPrinter{
		addr:    addr,
		timeout: timeout,
		dialer:  net.Dialer{Timeout: timeout},
	}
}

// PrintReceipt implements leave.ReceiptPrinter.
func (p *TCPPrinter) PrintReceipt(ctx context.Context, payload leave.PrintPayload) error {
	if p.addr == "" {
		return ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return fmt.Errorf("dial printer %s: %w", p.addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("set printer deadline: %w", err)
		}
	}

	if _, err := conn.Write([]byte(Render(payload))); err != nil {
		return fmt.Errorf("write to printer %s: %w", p.addr, err)
	}
	return nil
}

// Render lays out an outpass receipt for a 32-column printer.
func Render(p leave.PrintPayload) string {
	rule := strings.Repeat("-", 32)

	var b strings.Builder
	b.WriteString("        HOSTEL OUTPASS\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Pass ID : %s\n", p.PassID)
	fmt.Fprintf(&b, "Name    : %s\n", p.Name)
	fmt.Fprintf(&b, "Roll No : %s\n", p.RollNo)
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Out     : %s %s\n", p.OutDate, p.OutTime)
	fmt.Fprintf(&b, "Return  : %s %s\n", p.InDate, p.InTime)
	b.WriteString(rule + "\n")
	b.WriteString("Return late and your access\nwill be blocked automatically.\n\n\n")
	return b.String()
}
