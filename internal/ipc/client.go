package ipc

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Deliver hands one target path to a running instance. A refused connection
// or missing socket yields OutcomeNoServer, which the caller reinterprets as
// "become the server". After a successful write the process exits either way,
// so a missing acknowledgment is reported through an empty Delivery.Ack
// rather than an error.
func Deliver(ctx context.Context, socketPath, payload string, timeout time.Duration) (Delivery, error) {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		if isSocketMissing(err) || isConnectionRefused(err) {
			return Delivery{Outcome: OutcomeNoServer}, nil
		}
		return Delivery{Outcome: OutcomeIoFailure}, fmt.Errorf("dial unix %s: %w", socketPath, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return Delivery{Outcome: OutcomeIoFailure}, fmt.Errorf("set deadline: %w", err)
	}

	if _, err := conn.Write([]byte(payload)); err != nil {
		return Delivery{Outcome: OutcomeIoFailure}, fmt.Errorf("write payload: %w", err)
	}

	// Half-close so the server's read-to-EOF terminates while the
	// acknowledgment can still come back.
	if uc, ok := conn.(*net.UnixConn); ok {
		_ = uc.CloseWrite()
	}

	buf := make([]byte, ackReadLimit)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return Delivery{Outcome: OutcomeDelivered}, nil
	}

	return Delivery{Outcome: OutcomeDelivered, Ack: Ack(buf[:n])}, nil
}
