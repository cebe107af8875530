package sftp

import (
	"fmt"
	"os"

	"github.com/chanfs/sftp/encoding/wire"
)

// flagsFromMode maps the canonical POSIX-style open-mode strings onto
// the SSH_FXF_* bitmask.
var flagsFromMode = map[string]uint32{
	"r":   wire.FlagRead,
	"r+":  wire.FlagRead | wire.FlagWrite,
	"w":   wire.FlagWrite | wire.FlagCreate | wire.FlagTruncate,
	"w+":  wire.FlagRead | wire.FlagWrite | wire.FlagCreate | wire.FlagTruncate,
	"wx":  wire.FlagWrite | wire.FlagCreate | wire.FlagExclusive,
	"xw":  wire.FlagWrite | wire.FlagCreate | wire.FlagExclusive,
	"wx+": wire.FlagRead | wire.FlagWrite | wire.FlagCreate | wire.FlagExclusive,
	"xw+": wire.FlagRead | wire.FlagWrite | wire.FlagCreate | wire.FlagExclusive,
	"a":   wire.FlagWrite | wire.FlagCreate | wire.FlagAppend,
	"a+":  wire.FlagRead | wire.FlagWrite | wire.FlagCreate | wire.FlagAppend,
	"ax":  wire.FlagWrite | wire.FlagCreate | wire.FlagExclusive | wire.FlagAppend,
	"xa":  wire.FlagWrite | wire.FlagCreate | wire.FlagExclusive | wire.FlagAppend,
	"ax+": wire.FlagRead | wire.FlagWrite | wire.FlagCreate | wire.FlagExclusive | wire.FlagAppend,
	"xa+": wire.FlagRead | wire.FlagWrite | wire.FlagCreate | wire.FlagExclusive | wire.FlagAppend,
}

// FlagsFromMode translates an open-mode string such as "r", "w+" or
// "ax" into the protocol's open-flags bitmask. Unrecognized strings
// fail with an invalid-argument error.
func FlagsFromMode(mode string) (uint32, error) {
	flags, ok := flagsFromMode[mode]
	if !ok {
		return 0, fmt.Errorf("sftp: invalid open mode %q: %w", mode, os.ErrInvalid)
	}
	return flags, nil
}

// NormalizeFlags applies the flag normalization law:
// exclusive cancels truncate, truncate cancels append, an empty
// read/write selection implies read, and without create the effective
// mask is read or read+write only, while create forces write.
func NormalizeFlags(flags uint32) uint32 {
	flags &= wire.FlagMask

	if flags&wire.FlagExclusive != 0 {
		flags &^= wire.FlagTruncate
	}

	if flags&wire.FlagTruncate != 0 {
		flags &^= wire.FlagAppend
	}

	if flags&(wire.FlagRead|wire.FlagWrite) == 0 {
		flags |= wire.FlagRead
	}

	if flags&wire.FlagCreate == 0 {
		if flags&wire.FlagWrite != 0 {
			return wire.FlagRead | wire.FlagWrite
		}
		return wire.FlagRead
	}

	return flags | wire.FlagWrite
}

// modesFromFlags is the reverse table over the 12 legal normalized
// masks. Masks with exact spellings list every accepted spelling, the
// idiomatic one first. The two masks without an exact spelling (create
// without a truncate, append or exclusive disposition) list the
// exclusive-create spelling first with the always-valid read+write form
// as a fallback for existing files.
var modesFromFlags = map[uint32][]string{
	wire.FlagRead:                                                                 {"r"},
	wire.FlagRead | wire.FlagWrite:                                                {"r+"},
	wire.FlagWrite | wire.FlagCreate:                                              {"wx", "r+"},
	wire.FlagRead | wire.FlagWrite | wire.FlagCreate:                              {"wx+", "r+"},
	wire.FlagWrite | wire.FlagCreate | wire.FlagTruncate:                          {"w"},
	wire.FlagRead | wire.FlagWrite | wire.FlagCreate | wire.FlagTruncate:          {"w+"},
	wire.FlagWrite | wire.FlagCreate | wire.FlagExclusive:                         {"wx", "xw"},
	wire.FlagRead | wire.FlagWrite | wire.FlagCreate | wire.FlagExclusive:         {"wx+", "xw+"},
	wire.FlagWrite | wire.FlagCreate | wire.FlagAppend:                            {"a"},
	wire.FlagRead | wire.FlagWrite | wire.FlagCreate | wire.FlagAppend:            {"a+"},
	wire.FlagWrite | wire.FlagCreate | wire.FlagExclusive | wire.FlagAppend:       {"ax", "xa"},
	wire.FlagRead | wire.FlagWrite | wire.FlagCreate | wire.FlagExclusive | wire.FlagAppend: {"ax+", "xa+"},
}

// ModesFromFlags normalizes the given bitmask and translates it back to
// its mode-string spellings, the idiomatic form first.
//
// Every normalized mask is one of the 12 legal values by construction;
// hitting an unknown one means NormalizeFlags is broken, and this
// panics rather than limping along with a corrupted open mode.
func ModesFromFlags(flags uint32) []string {
	normalized := NormalizeFlags(flags)

	modes, ok := modesFromFlags[normalized]
	if !ok {
		panic(fmt.Sprintf("sftp: normalized flags %#x have no mode mapping", normalized))
	}
	return modes
}
