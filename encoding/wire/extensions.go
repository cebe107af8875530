package wire

import (
	"strings"
)

// Well-known extension names announced during version negotiation.
const (
	ExtPosixRename = "posix-rename@openssh.com"
	ExtStatVFS     = "statvfs@openssh.com"
	ExtFStatVFS    = "fstatvfs@openssh.com"
	ExtHardlink    = "hardlink@openssh.com"
	ExtFsync       = "fsync@openssh.com"

	ExtNewline        = "newline"
	ExtNewlineVandyke = "newline@vandyke.com"
	ExtNewlineNested  = "newline@sftp.ws" // value wraps the newline in a nested string

	ExtCharset  = "charset"
	ExtMetadata = "metadata"
	ExtVersions = "versions"
	ExtVendorID = "vendor-id"
)

// ExtensionKind selects the decode rule applied to an extension value.
type ExtensionKind int

// Decode rules for extension values.
const (
	ExtensionKindData       ExtensionKind = iota // raw opaque bytes
	ExtensionKindString                          // plain UTF-8 string
	ExtensionKindStructured                      // nested sub-fields
)

var knownExtensions = map[string]ExtensionKind{
	ExtPosixRename:    ExtensionKindString,
	ExtStatVFS:        ExtensionKindString,
	ExtFStatVFS:       ExtensionKindString,
	ExtHardlink:       ExtensionKindString,
	ExtFsync:          ExtensionKindString,
	ExtNewline:        ExtensionKindString,
	ExtNewlineVandyke: ExtensionKindString,
	ExtNewlineNested:  ExtensionKindStructured,
	ExtCharset:        ExtensionKindString,
	ExtMetadata:       ExtensionKindString,
	ExtVersions:       ExtensionKindString,
	ExtVendorID:       ExtensionKindStructured,
}

// KindOf returns the decode rule for the named extension.
// Unknown names decode as raw opaque data.
func KindOf(name string) ExtensionKind {
	if kind, ok := knownExtensions[name]; ok {
		return kind
	}
	return ExtensionKindData
}

// ExtensionPair defines the repeated name/value pairs trailing the
// SSH_FXP_VERSION packet.
type ExtensionPair struct {
	Name string
	Data string
}

// MarshalInto marshals e onto the end of the given Buffer, name then
// value as plain strings.
func (e *ExtensionPair) MarshalInto(b *Buffer) {
	b.AppendString(e.Name)
	b.AppendString(e.Data)
}

// UnmarshalFrom unmarshals an ExtensionPair from the given Buffer into e.
//
// The value is consumed as an aliasing view and converted per the
// extension's decode rule by DecodeExtension; callers that only need the
// session extension map can use e.Data as-is.
func (e *ExtensionPair) UnmarshalFrom(b *Buffer) (err error) {
	if e.Name, err = b.ConsumeString(); err != nil {
		return err
	}

	if e.Data, err = b.ConsumeString(); err != nil {
		return err
	}

	return nil
}

// VendorID is the structured value of the vendor-id extension.
type VendorID struct {
	VendorName     string
	ProductName    string
	ProductVersion string
	ProductBuild   uint64
}

// ParseVendorID decodes the 4-field structured value of the vendor-id
// extension.
func ParseVendorID(data []byte) (*VendorID, error) {
	b := NewBuffer(data)

	var v VendorID
	var err error

	if v.VendorName, err = b.ConsumeString(); err != nil {
		return nil, err
	}

	if v.ProductName, err = b.ConsumeString(); err != nil {
		return nil, err
	}

	if v.ProductVersion, err = b.ConsumeString(); err != nil {
		return nil, err
	}

	if v.ProductBuild, err = b.ConsumeUint64(); err != nil {
		return nil, err
	}

	return &v, nil
}

// ParseNestedString decodes a structured extension value holding a
// single nested string, as the newline@sftp.ws variant does.
func ParseNestedString(data []byte) (string, error) {
	return NewBuffer(data).ConsumeString()
}

// DecodeExtension applies the named extension's decode rule to its raw
// value bytes, returning the canonical string form kept in the session
// extension map. Structured values are flattened: vendor-id keeps its
// raw image, the nested newline variants unwrap to the newline itself.
func DecodeExtension(name string, data string) (string, error) {
	switch KindOf(name) {
	case ExtensionKindStructured:
		if name == ExtNewlineNested {
			return ParseNestedString([]byte(data))
		}
		return data, nil
	default:
		return data, nil
	}
}

// ContainsToken reports whether the comma-joined capability list csv
// contains value as an exact token. OpenSSH-style extensions announce
// multiple values this way.
func ContainsToken(csv, value string) bool {
	for _, tok := range strings.Split(csv, ",") {
		if tok == value {
			return true
		}
	}
	return false
}
