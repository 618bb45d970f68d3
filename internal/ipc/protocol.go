// Package ipc implements the single-instance rendezvous: a unix socket whose
// bind doubles as the cross-process mutex, a client that hands a target path
// to the running instance, and the serialized accept loop that receives it.
//
// Wire format: the client writes the raw UTF-8 bytes of one absolute path and
// half-closes; message boundary is the connection. The server answers with a
// single OK or ERR token.
package ipc

import (
	"errors"
	"os"
	"strings"
	"syscall"
)

// Ack is the fixed acknowledgment token written once per connection.
type Ack string

const (
	AckOK  Ack = "OK"
	AckErr Ack = "ERR"
)

// MaxPayload caps the accepted path payload. Larger payloads are rejected,
// never truncated.
const MaxPayload = 4096

// ackReadLimit bounds the client-side acknowledgment read.
const ackReadLimit = 8

// Outcome classifies one delivery attempt.
type Outcome int

const (
	// OutcomeDelivered means the payload was written to a listening server.
	OutcomeDelivered Outcome = iota + 1
	// OutcomeNoServer means nothing is listening; the caller should become
	// the server. This is the normal first-instance case, not an error.
	OutcomeNoServer
	// OutcomeIoFailure means the connection existed but the exchange failed.
	OutcomeIoFailure
)

// Delivery is the result of one client delivery attempt. Ack is empty when
// the server never answered before the deadline.
type Delivery struct {
	Outcome Outcome
	Ack     Ack
}

// isSocketMissing reports absent-socket failures.
func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

// isConnectionRefused reports no-listener failures.
func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}

func isAddrInUse(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.EADDRINUSE) ||
		strings.Contains(err.Error(), "address already in use")
}
