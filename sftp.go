// Package sftp implements the client side of the SSH File Transfer
// Protocol, version 3, carried over an abstract bidirectional message
// channel rather than a raw byte stream.
//
// The wire codec lives in encoding/wire. This package owns the protocol
// engine: request construction, request-id multiplexing, response
// dispatch, feature negotiation, and translation of SFTP status codes
// into a POSIX-flavored error taxonomy.
package sftp

const sftpProtocolVersion = 3 // https://filezilla-project.org/specs/draft-ietf-secsh-filexfer-02.txt

const (
	// DefaultMaxWriteSize is the largest data payload accepted by a single
	// write request. 32768 bytes is the minimum all compliant servers must
	// support; the packet buffer adds header slack on top of this.
	DefaultMaxWriteSize = 32 * 1024

	// DefaultMaxReadSize is the clamp applied to a single read request.
	// Reads asking for more are silently shortened before being sent.
	DefaultMaxReadSize = 256 * 1024

	// writeHeaderSlack covers the envelope, handle string and offset fields
	// in front of a maximally sized write payload.
	writeHeaderSlack = 1024
)
