package regmap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/drivers/tester"

	"diffbot/protocol"
)

func TestWriteCommand(t *testing.T) {
	bus := tester.NewI2CBus(t)
	mock := bus.NewDevice(DefaultAddress)
	dev := New(bus, DefaultAddress)

	cmd := protocol.CommandFrame{Linear: 0.5, Angular: -1, Flags: protocol.CmdEnable, Sequence: 0x1234}
	require.NoError(t, dev.WriteCommand(cmd))

	assert.Equal(t, cmd.Bytes(), mock.Registers[RegCommand:RegCommand+protocol.CommandFrameSize])
	assert.Equal(t, byte(0), mock.Registers[RegStatus])

	got, err := dev.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, cmd, got)
}

func TestReadStatus(t *testing.T) {
	bus := tester.NewI2CBus(t)
	mock := bus.NewDevice(DefaultAddress)
	dev := New(bus, DefaultAddress)

	status := protocol.StatusFrame{
		Flags:      protocol.StatusEnabled | protocol.StatusAccelLimited,
		Sequence:   9,
		LeftCount:  -1200,
		RightCount: 1300,
		Heading:    1.25,
		Linear:     0.3,
		LeftDuty:   -410,
		RightDuty:  415,
		Uptime:     60000,
	}
	copy(mock.Registers[RegStatus:], status.Bytes())

	got, err := dev.ReadStatus()
	require.NoError(t, err)
	assert.Equal(t, status, got)
}

func TestWriteStatus(t *testing.T) {
	bus := tester.NewI2CBus(t)
	mock := bus.NewDevice(0x30)
	dev := New(bus, 0x30)
	assert.Equal(t, uint16(0x30), dev.Address())

	status := protocol.StatusFrame{Sequence: 77, Uptime: 5}
	require.NoError(t, dev.WriteStatus(status))
	assert.Equal(t, status.Bytes(), mock.Registers[RegStatus:RegStatus+protocol.StatusFrameSize])
}

func TestBusError(t *testing.T) {
	bus := tester.NewI2CBus(t)
	mock := bus.NewDevice(DefaultAddress)
	mock.Err = errors.New("nack")
	dev := New(bus, DefaultAddress)

	err := dev.WriteCommand(protocol.CommandFrame{})
	assert.ErrorIs(t, err, mock.Err)
	_, err = dev.ReadStatus()
	assert.ErrorIs(t, err, mock.Err)
}

func TestBankSharedByHostAndController(t *testing.T) {
	bank := NewBank(DefaultAddress)
	host := New(bank, DefaultAddress)
	robot := New(bank, DefaultAddress)

	cmd := protocol.CommandFrame{Linear: 0.1, Flags: protocol.CmdEnable, Sequence: 3}
	require.NoError(t, host.WriteCommand(cmd))
	got, err := robot.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, cmd, got)

	status := protocol.StatusFrame{Flags: protocol.StatusEnabled, Sequence: 3}
	require.NoError(t, robot.WriteStatus(status))
	gotStatus, err := host.ReadStatus()
	require.NoError(t, err)
	assert.Equal(t, status, gotStatus)

	regs := bank.Snapshot()
	assert.Equal(t, cmd.Bytes(), regs[RegCommand:RegCommand+protocol.CommandFrameSize])
}

func TestBankErrors(t *testing.T) {
	bank := NewBank(DefaultAddress)

	assert.ErrorIs(t, bank.Tx(0x10, []byte{0}, nil), ErrNoDevice)
	assert.ErrorIs(t, bank.Tx(DefaultAddress, nil, make([]byte, 1)), ErrEmptyWrite)
	assert.ErrorIs(t, bank.Tx(DefaultAddress, []byte{MapSize - 1}, make([]byte, 2)), ErrRegisterRange)
	assert.ErrorIs(t, bank.Tx(DefaultAddress, []byte{MapSize - 1, 1, 2}, nil), ErrRegisterRange)
	assert.NoError(t, bank.Tx(DefaultAddress, []byte{MapSize - 1}, make([]byte, 1)))
}
