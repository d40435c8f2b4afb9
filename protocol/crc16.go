package protocol

// CRC16 computes the block checksum (CRC-16/MCRF4XX: seed 0xFFFF, reflected
// polynomial 0x8408) over the header and payload of a block.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		b ^= uint8(crc & 0xFF)
		b ^= b << 4
		b16 := uint16(b)
		crc = (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
	}
	return crc
}
