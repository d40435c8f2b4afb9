// Package protocol implements the wire layer between the host and the drive
// controller: little-endian fixed-width codecs, the packed command and status
// frames, and the CRC-checked block framing used on serial links.
package protocol

// Version is the wire layout version reported by the host tool
const Version = "1.0.0"

// Block framing constants
const (
	MessageMax = 512 // Scratch buffer size; holds several blocks

	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E

	// Sequence numbers live in the low nibble; the high nibble is the
	// destination marker.
	MessageSeqMask = 0x0F
	MessageDest    = 0x10
)
