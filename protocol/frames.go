package protocol

import "errors"

// ErrShortFrame is returned when a buffer is smaller than the frame it should hold
var ErrShortFrame = errors.New("frame too short")

// Frame sizes in bytes
const (
	CommandFrameSize = 12
	StatusFrameSize  = 32
)

// Command flag bits
const (
	CmdEnable        uint16 = 1 << 0
	CmdResetOdometry uint16 = 1 << 1
)

// Status flag bits
const (
	StatusEnabled         uint16 = 1 << 0
	StatusGovernorClamped uint16 = 1 << 1
	StatusAccelLimited    uint16 = 1 << 2
)

// CommandFrame carries a commanded body velocity from the host.
//
//	0-3   Linear   float32 m/s
//	4-7   Angular  float32 rad/s
//	8-9   Flags    uint16
//	10-11 Sequence uint16
type CommandFrame struct {
	Linear   float32
	Angular  float32
	Flags    uint16
	Sequence uint16
}

// StatusFrame reports controller state and odometry back to the host.
//
//	0-1   Flags      uint16
//	2-3   Sequence   uint16 (last accepted command)
//	4-7   LeftCount  int32
//	8-11  RightCount int32
//	12-15 Heading    float32 rad, (-pi, pi]
//	16-19 Linear     float32 m/s (after governor and slew)
//	20-23 Angular    float32 rad/s
//	24-25 LeftDuty   int16
//	26-27 RightDuty  int16
//	28-31 Uptime     uint32 ms
type StatusFrame struct {
	Flags      uint16
	Sequence   uint16
	LeftCount  int32
	RightCount int32
	Heading    float32
	Linear     float32
	Angular    float32
	LeftDuty   int16
	RightDuty  int16
	Uptime     uint32
}

// Encode writes the frame into b, which must hold CommandFrameSize bytes
func (f CommandFrame) Encode(b []byte) error {
	if len(b) < CommandFrameSize {
		return ErrShortFrame
	}
	le := F32ToLE(f.Linear)
	copy(b[0:4], le[:])
	le = F32ToLE(f.Angular)
	copy(b[4:8], le[:])
	w := U16ToLE(f.Flags)
	copy(b[8:10], w[:])
	w = U16ToLE(f.Sequence)
	copy(b[10:12], w[:])
	return nil
}

// Bytes returns the encoded frame
func (f CommandFrame) Bytes() []byte {
	b := make([]byte, CommandFrameSize)
	_ = f.Encode(b)
	return b
}

// DecodeCommand parses a CommandFrame from the start of b
func DecodeCommand(b []byte) (CommandFrame, error) {
	if len(b) < CommandFrameSize {
		return CommandFrame{}, ErrShortFrame
	}
	return CommandFrame{
		Linear:   F32FromLE([4]byte(b[0:4])),
		Angular:  F32FromLE([4]byte(b[4:8])),
		Flags:    U16FromLE([2]byte(b[8:10])),
		Sequence: U16FromLE([2]byte(b[10:12])),
	}, nil
}

// Encode writes the frame into b, which must hold StatusFrameSize bytes
func (f StatusFrame) Encode(b []byte) error {
	if len(b) < StatusFrameSize {
		return ErrShortFrame
	}
	w := U16ToLE(f.Flags)
	copy(b[0:2], w[:])
	w = U16ToLE(f.Sequence)
	copy(b[2:4], w[:])
	d := I32ToLE(f.LeftCount)
	copy(b[4:8], d[:])
	d = I32ToLE(f.RightCount)
	copy(b[8:12], d[:])
	d = F32ToLE(f.Heading)
	copy(b[12:16], d[:])
	d = F32ToLE(f.Linear)
	copy(b[16:20], d[:])
	d = F32ToLE(f.Angular)
	copy(b[20:24], d[:])
	w = I16ToLE(f.LeftDuty)
	copy(b[24:26], w[:])
	w = I16ToLE(f.RightDuty)
	copy(b[26:28], w[:])
	d = U32ToLE(f.Uptime)
	copy(b[28:32], d[:])
	return nil
}

// Bytes returns the encoded frame
func (f StatusFrame) Bytes() []byte {
	b := make([]byte, StatusFrameSize)
	_ = f.Encode(b)
	return b
}

// DecodeStatus parses a StatusFrame from the start of b
func DecodeStatus(b []byte) (StatusFrame, error) {
	if len(b) < StatusFrameSize {
		return StatusFrame{}, ErrShortFrame
	}
	return StatusFrame{
		Flags:      U16FromLE([2]byte(b[0:2])),
		Sequence:   U16FromLE([2]byte(b[2:4])),
		LeftCount:  I32FromLE([4]byte(b[4:8])),
		RightCount: I32FromLE([4]byte(b[8:12])),
		Heading:    F32FromLE([4]byte(b[12:16])),
		Linear:     F32FromLE([4]byte(b[16:20])),
		Angular:    F32FromLE([4]byte(b[20:24])),
		LeftDuty:   I16FromLE([2]byte(b[24:26])),
		RightDuty:  I16FromLE([2]byte(b[26:28])),
		Uptime:     U32FromLE([4]byte(b[28:32])),
	}, nil
}
