package protocol

import "errors"

// ErrBlockTooLong is returned when a payload does not fit in one block
var ErrBlockTooLong = errors.New("block exceeds maximum length")

// Block is one framed message: [len][seq][payload...][crc hi][crc lo][sync]
type Block struct {
	Sequence uint8
	Payload  []byte
	CRC      uint16
}

// NextSequence returns the sequence number that follows seq, wrapping
// within the low nibble and keeping the destination marker.
func NextSequence(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | MessageDest
}

// EncodeBlock frames payload with sequence number seq into out
func EncodeBlock(out OutputBuffer, seq uint8, payload []byte) error {
	msgLen := MessageHeaderSize + len(payload) + MessageTrailerSize
	if msgLen > MessageLengthMax {
		return ErrBlockTooLong
	}

	cursor := out.CurPosition()
	out.Output([]byte{uint8(msgLen), seq})
	out.Output(payload)

	crc := CRC16(out.DataSince(cursor))
	out.Output([]byte{
		uint8((crc & 0xFF00) >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})
	return nil
}

// Decoder extracts blocks from a byte stream. After a corrupt block it
// drops bytes up to the next sync byte and carries on from there.
type Decoder struct {
	synchronized bool
	dropped      int
}

// NewDecoder creates a decoder that starts synchronized
func NewDecoder() *Decoder {
	return &Decoder{synchronized: true}
}

// Dropped returns how many times the decoder lost synchronization
func (d *Decoder) Dropped() int {
	return d.dropped
}

// Receive parses every complete block in input, calls fn for each, and pops
// the consumed bytes. A trailing partial block is left in input.
func (d *Decoder) Receive(input InputBuffer, fn func(Block)) {
	data := input.Data()

	for len(data) > 0 {
		if !d.synchronized {
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos < 0 {
				data = nil
				break
			}
			data = data[syncPos+1:]
			d.synchronized = true
			continue
		}

		// Skip leading sync bytes
		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}

		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			d.desync()
			continue
		}

		seq := data[MessagePositionSeq]
		if seq&^MessageSeqMask != MessageDest {
			d.desync()
			continue
		}

		// Wait for the rest of the block
		if len(data) < msgLen {
			break
		}

		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			d.desync()
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			d.desync()
			continue
		}

		payload := make([]byte, msgLen-MessageHeaderSize-MessageTrailerSize)
		copy(payload, data[MessageHeaderSize:msgLen-MessageTrailerSize])
		data = data[msgLen:]

		if fn != nil {
			fn(Block{Sequence: seq, Payload: payload, CRC: frameCRC})
		}
	}

	consumed := input.Available() - len(data)
	if consumed > 0 {
		input.Pop(consumed)
	}
}

func (d *Decoder) desync() {
	d.synchronized = false
	d.dropped++
}
