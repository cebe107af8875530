package wire

// Attributes related flags.
const (
	AttrSize        = 1 << iota // SSH_FILEXFER_ATTR_SIZE
	AttrUIDGID                  // SSH_FILEXFER_ATTR_UIDGID
	AttrPermissions             // SSH_FILEXFER_ATTR_PERMISSIONS
	AttrACModTime               // SSH_FILEXFER_ACMODTIME

	AttrExtended = 1 << 31 // SSH_FILEXFER_ATTR_EXTENDED
)

// POSIX file-type bits carried in the top nibble of Permissions.
const (
	ModeType    = 0xF000 // S_IFMT
	ModeDir     = 0x4000 // S_IFDIR
	ModeRegular = 0x8000 // S_IFREG
	ModeSymlink = 0xA000 // S_IFLNK
)

// Attributes defines the file attributes type defined in draft-ietf-secsh-filexfer-02.
//
// Only fields whose bit is set in Flags are meaningful. Encoding and
// decoding walk the fields in the fixed protocol order: size, uid+gid,
// permissions, atime+mtime.
//
// Defined in: https://tools.ietf.org/html/draft-ietf-secsh-filexfer-02#section-5
type Attributes struct {
	Flags uint32

	// AttrSize
	Size uint64

	// AttrUIDGID
	UID uint32
	GID uint32

	// AttrPermissions
	Permissions uint32

	// AttrACModTime
	ATime uint32
	MTime uint32

	// NLink is a decode-side convenience only, filled in from directory
	// listings by callers. It is never serialized.
	NLink uint32
}

// SetSize sets the size field, and marks it as present.
func (a *Attributes) SetSize(size uint64) *Attributes {
	a.Flags |= AttrSize
	a.Size = size
	return a
}

// SetUIDGID sets the uid and gid fields together, and marks them as
// present. The protocol carries them as a pair; a caller missing one of
// the two passes 0 for it.
func (a *Attributes) SetUIDGID(uid, gid uint32) *Attributes {
	a.Flags |= AttrUIDGID
	a.UID = uid
	a.GID = gid
	return a
}

// SetPermissions sets the permissions field, and marks it as present.
func (a *Attributes) SetPermissions(perms uint32) *Attributes {
	a.Flags |= AttrPermissions
	a.Permissions = perms
	return a
}

// SetACModTime sets the access and modification times together, and
// marks them as present. The protocol carries them as a pair.
func (a *Attributes) SetACModTime(atime, mtime uint32) *Attributes {
	a.Flags |= AttrACModTime
	a.ATime = atime
	a.MTime = mtime
	return a
}

// HasSize reports whether the size field is present.
func (a *Attributes) HasSize() bool { return a.Flags&AttrSize != 0 }

// HasUIDGID reports whether the uid and gid fields are present.
func (a *Attributes) HasUIDGID() bool { return a.Flags&AttrUIDGID != 0 }

// HasPermissions reports whether the permissions field is present.
func (a *Attributes) HasPermissions() bool { return a.Flags&AttrPermissions != 0 }

// HasACModTime reports whether the atime and mtime fields are present.
func (a *Attributes) HasACModTime() bool { return a.Flags&AttrACModTime != 0 }

// IsDir reports whether the permissions type nibble marks a directory.
func (a *Attributes) IsDir() bool {
	return a.HasPermissions() && a.Permissions&ModeType == ModeDir
}

// IsRegular reports whether the permissions type nibble marks a regular file.
func (a *Attributes) IsRegular() bool {
	return a.HasPermissions() && a.Permissions&ModeType == ModeRegular
}

// IsSymlink reports whether the permissions type nibble marks a symbolic link.
func (a *Attributes) IsSymlink() bool {
	return a.HasPermissions() && a.Permissions&ModeType == ModeSymlink
}

// Len returns the number of bytes a would marshal into.
func (a *Attributes) Len() int {
	length := 4

	if a.Flags&AttrSize != 0 {
		length += 8
	}

	if a.Flags&AttrUIDGID != 0 {
		length += 4 + 4
	}

	if a.Flags&AttrPermissions != 0 {
		length += 4
	}

	if a.Flags&AttrACModTime != 0 {
		length += 4 + 4
	}

	if a.Flags&AttrExtended != 0 {
		length += 4
	}

	return length
}

// MarshalInto marshals a onto the end of the given Buffer.
//
// Extended attribute pairs are never emitted; if the extended bit
// happens to be set, a zero pair count is written to keep the wire
// image self-consistent.
func (a *Attributes) MarshalInto(b *Buffer) {
	b.AppendUint32(a.Flags)

	if a.Flags&AttrSize != 0 {
		b.AppendUint64(a.Size)
	}

	if a.Flags&AttrUIDGID != 0 {
		b.AppendUint32(a.UID)
		b.AppendUint32(a.GID)
	}

	if a.Flags&AttrPermissions != 0 {
		b.AppendUint32(a.Permissions)
	}

	if a.Flags&AttrACModTime != 0 {
		b.AppendUint32(a.ATime)
		b.AppendUint32(a.MTime)
	}

	if a.Flags&AttrExtended != 0 {
		b.AppendUint32(0)
	}
}

// UnmarshalFrom unmarshals an Attributes from the given Buffer into a.
//
// NOTE: The values of fields not covered by a.Flags are explicitly undefined.
func (a *Attributes) UnmarshalFrom(b *Buffer) (err error) {
	if a.Flags, err = b.ConsumeUint32(); err != nil {
		return err
	}

	// Short-circuit dummy attributes.
	if a.Flags == 0 {
		return nil
	}

	if a.Flags&AttrSize != 0 {
		if a.Size, err = b.ConsumeUint64(); err != nil {
			return err
		}
	}

	if a.Flags&AttrUIDGID != 0 {
		if a.UID, err = b.ConsumeUint32(); err != nil {
			return err
		}

		if a.GID, err = b.ConsumeUint32(); err != nil {
			return err
		}
	}

	if a.Flags&AttrPermissions != 0 {
		if a.Permissions, err = b.ConsumeUint32(); err != nil {
			return err
		}
	}

	if a.Flags&AttrACModTime != 0 {
		if a.ATime, err = b.ConsumeUint32(); err != nil {
			return err
		}

		if a.MTime, err = b.ConsumeUint32(); err != nil {
			return err
		}
	}

	if a.Flags&AttrExtended != 0 {
		count, err := b.ConsumeUint32()
		if err != nil {
			return err
		}

		// Extended pairs are consumed and discarded.
		for i := uint32(0); i < count; i++ {
			if _, err = b.ConsumeString(); err != nil {
				return err
			}
			if _, err = b.ConsumeString(); err != nil {
				return err
			}
		}
	}

	return nil
}

// NameEntry implements the SSH_FXP_NAME repeated data type from
// draft-ietf-secsh-filexfer-02.
type NameEntry struct {
	Filename string
	Longname string
	Attrs    Attributes
}

// MarshalInto marshals e onto the end of the given Buffer.
func (e *NameEntry) MarshalInto(b *Buffer) {
	b.AppendString(e.Filename)
	b.AppendString(e.Longname)

	e.Attrs.MarshalInto(b)
}

// UnmarshalFrom unmarshals a NameEntry from the given Buffer into e.
func (e *NameEntry) UnmarshalFrom(b *Buffer) (err error) {
	if e.Filename, err = b.ConsumeString(); err != nil {
		return err
	}

	if e.Longname, err = b.ConsumeString(); err != nil {
		return err
	}

	return e.Attrs.UnmarshalFrom(b)
}
