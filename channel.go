package sftp

// Close codes handed to Channel.Close. They follow the WebSocket
// numbering; a Channel over another transport may translate or ignore
// them.
const (
	CloseNormal        = 1000
	CloseProtocolError = 1002
)

// Channel is the bidirectional message transport a session is bound to.
// Each Send carries exactly one whole packet, and each message handed to
// the message handler holds exactly one whole packet; the channel, not
// the engine, owns stream re-framing if the underlying transport is a
// byte stream.
//
// The engine never interprets transport close codes; it reacts only to
// the error (or nil, for a clean shutdown) handed to the close handler.
type Channel interface {
	// Send transmits one packet.
	Send(data []byte) error

	// Close shuts the channel down, with a reason for transports that
	// carry one.
	Close(code int, desc string) error

	// OnMessage registers the inbound packet handler. The binary flag
	// distinguishes packet bytes from out-of-band text frames.
	OnMessage(fn func(data []byte, binary bool))

	// OnClose registers the shutdown handler. A nil error means a clean
	// close.
	OnClose(fn func(err error))
}
