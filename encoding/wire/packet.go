package wire

// RawPacket holds one decoded packet envelope from
// draft-ietf-secsh-filexfer-02 section 3, plus its unparsed body.
//
// The envelope is a uint32 length (counting everything after the length
// field), a uint8 type, a uint32 request id for every type except init
// and version, and — for SSH_FXP_EXTENDED and SSH_FXP_EXTENDED_REPLY
// requests — the extended-request name string.
type RawPacket struct {
	Type         PacketType
	ExtendedName string
	RequestID    uint32

	Data Buffer
}

// ParsePacket decodes one whole inbound message into a RawPacket.
//
// The message must contain exactly one packet: a length field that does
// not match the remaining byte count fails with ErrInvalidPacket, and a
// length beyond maxPacket fails with ErrLongPacket. The Data field
// aliases data; the caller should not modify data afterwards.
func ParsePacket(data []byte, maxPacket uint32) (*RawPacket, error) {
	buf := NewBuffer(data)

	length, err := buf.ConsumeUint32()
	if err != nil {
		return nil, err
	}

	if length > maxPacket {
		return nil, ErrLongPacket
	}

	if int(length) != buf.Len() {
		return nil, ErrInvalidPacket
	}

	var p RawPacket

	typ, err := buf.ConsumeUint8()
	if err != nil {
		return nil, err
	}
	p.Type = PacketType(typ)

	if p.Type == PacketTypeInit || p.Type == PacketTypeVersion {
		p.Data = *buf
		return &p, nil
	}

	if p.RequestID, err = buf.ConsumeUint32(); err != nil {
		return nil, err
	}

	if p.Type == PacketTypeExtended || p.Type == PacketTypeExtendedReply {
		if p.ExtendedName, err = buf.ConsumeString(); err != nil {
			return nil, err
		}
	}

	p.Data = *buf
	return &p, nil
}
