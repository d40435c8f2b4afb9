package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned by Conn operations after Close
var ErrClosed = errors.New("connection closed")

// readRetryDelay is how long the read loop waits after an empty read.
// Serial ports report a read timeout as io.EOF.
const readRetryDelay = 10 * time.Millisecond

// Conn exchanges blocks over a byte stream. A background goroutine reads
// and decodes incoming blocks; Send may be called from any goroutine.
type Conn struct {
	port io.ReadWriteCloser

	// Sequence of the next outgoing block (0x10-0x1F)
	seq uint32

	decoder *Decoder
	input   *FifoBuffer
	blocks  chan Block

	writeMutex sync.Mutex
	readMutex  sync.Mutex
	output     *ScratchOutput

	stopChan  chan struct{}
	doneChan  chan struct{}
	closeOnce sync.Once
	readErr   atomic.Value // error
}

// NewConn wraps port and starts the read loop
func NewConn(port io.ReadWriteCloser) *Conn {
	c := &Conn{
		port:     port,
		seq:      MessageDest,
		decoder:  NewDecoder(),
		input:    NewFifoBuffer(MessageMax),
		blocks:   make(chan Block, 16),
		output:   NewScratchOutput(),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Send frames payload as the next block and writes it. It returns the
// sequence number the block was sent with.
func (c *Conn) Send(payload []byte) (uint8, error) {
	select {
	case <-c.stopChan:
		return 0, ErrClosed
	default:
	}

	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	seq := uint8(atomic.LoadUint32(&c.seq))
	c.output.Reset()
	if err := EncodeBlock(c.output, seq, payload); err != nil {
		return 0, err
	}

	msg := c.output.Result()
	n, err := c.port.Write(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to write block: %w", err)
	}
	if n != len(msg) {
		return 0, fmt.Errorf("incomplete write: %d/%d bytes", n, len(msg))
	}

	atomic.StoreUint32(&c.seq, uint32(NextSequence(seq)))
	return seq, nil
}

// Receive returns the next decoded block. It fails when ctx is done, the
// connection is closed, or the read loop stopped on a port error.
func (c *Conn) Receive(ctx context.Context) (Block, error) {
	select {
	case b := <-c.blocks:
		return b, nil
	case <-ctx.Done():
		return Block{}, ctx.Err()
	case <-c.doneChan:
		// Drain blocks decoded before the loop exited
		select {
		case b := <-c.blocks:
			return b, nil
		default:
		}
		if err, ok := c.readErr.Load().(error); ok && err != nil {
			return Block{}, err
		}
		return Block{}, ErrClosed
	}
}

// Dropped returns the number of corrupt blocks discarded so far
func (c *Conn) Dropped() int {
	c.readMutex.Lock()
	defer c.readMutex.Unlock()
	return c.decoder.Dropped()
}

// Close stops the read loop and closes the port
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stopChan)
		err = c.port.Close()
		<-c.doneChan
	})
	return err
}

// readLoop continuously reads from the port and decodes blocks
func (c *Conn) readLoop() {
	defer close(c.doneChan)

	buffer := make([]byte, 256)
	for {
		n, err := c.port.Read(buffer)
		if n > 0 {
			c.process(buffer[:n])
		}
		if err == nil {
			continue
		}

		select {
		case <-c.stopChan:
			return
		default:
		}

		if errors.Is(err, io.EOF) {
			time.Sleep(readRetryDelay)
			continue
		}
		c.readErr.Store(fmt.Errorf("read failed: %w", err))
		return
	}
}

// process buffers newly read bytes and dispatches complete blocks
func (c *Conn) process(data []byte) {
	c.readMutex.Lock()
	defer c.readMutex.Unlock()

	for len(data) > 0 {
		n := c.input.Write(data)
		data = data[n:]
		c.decoder.Receive(c.input, c.dispatch)
		if n == 0 && len(data) > 0 {
			// Buffer full of undecodable bytes
			c.input.Reset()
		}
	}
}

// dispatch queues a block, dropping the oldest one if nobody is reading
func (c *Conn) dispatch(b Block) {
	select {
	case c.blocks <- b:
		return
	default:
	}
	select {
	case <-c.blocks:
	default:
	}
	select {
	case c.blocks <- b:
	default:
	}
}
