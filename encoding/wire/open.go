package wire

// SSH_FXF_* open flags.
const (
	FlagRead      = 1 << iota // SSH_FXF_READ
	FlagWrite                 // SSH_FXF_WRITE
	FlagAppend                // SSH_FXF_APPEND
	FlagCreate                // SSH_FXF_CREAT
	FlagTruncate              // SSH_FXF_TRUNC
	FlagExclusive             // SSH_FXF_EXCL
)

// FlagMask covers every open flag defined by protocol version 3.
// Numeric flag values supplied by callers are masked to this range.
const FlagMask = FlagRead | FlagWrite | FlagAppend | FlagCreate | FlagTruncate | FlagExclusive
