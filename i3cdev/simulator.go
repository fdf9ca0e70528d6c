package i3cdev

import (
	"fmt"
	"slices"
	"sync"
	"syscall"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-i3c/internal/util"
	"github.com/arloliu/go-i3c/logger"
	"github.com/arloliu/go-i3c/wire"
)

// TargetMemSize is the register memory size of a simulated target.
const TargetMemSize = 1 << 16

// Target is a simulated bus target with a register memory and an
// auto-incrementing register pointer.
//
// A private write sets the pointer from its first byte and stores the rest of
// the payload from there. A read returns memory from the pointer. A combo
// transfer sets the pointer to its offset before the data phase.
type Target struct {
	mu  sync.Mutex
	mem [TargetMemSize]byte
	ptr uint16
}

// Peek returns a copy of n bytes of memory starting at off.
func (t *Target) Peek(off uint16, n int) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]byte, n)
	for i := range out {
		out[i] = t.mem[off+uint16(i)] //nolint:gosec // wraps around the memory
	}

	return out
}

// Poke stores data at off.
func (t *Target) Poke(off uint16, data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.store(off, data)
}

// Pointer returns the register pointer.
func (t *Target) Pointer() uint16 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.ptr
}

func (t *Target) store(off uint16, data []byte) {
	for i, b := range data {
		t.mem[off+uint16(i)] = b //nolint:gosec // wraps around the memory
	}
}

func (t *Target) write(p []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(p) == 0 {
		return
	}
	t.ptr = uint16(p[0])
	t.store(t.ptr, p[1:])
	t.ptr += uint16(len(p) - 1) //nolint:gosec // wraps around the memory
}

func (t *Target) writeAt(off uint16, p []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.store(off, p)
	t.ptr = off + uint16(len(p)) //nolint:gosec // wraps around the memory
}

func (t *Target) read(p []byte) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range p {
		p[i] = t.mem[t.ptr]
		t.ptr++
	}

	return len(p)
}

func (t *Target) seek(off uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ptr = off
}

func (t *Target) rewind() { t.seek(0) }

// CCCEvent is a common command code seen by the simulator.
type CCCEvent struct {
	Code   uint8
	Addr   uint8
	Direct bool // a nonzero address; broadcasts carry address 0
	Read   bool
	Data   []byte
}

type targetKey struct {
	addr uint8
	i2c  bool
}

// the I3C target behind the device node itself
var selfKey = targetKey{}

type simSession uint8

const (
	simIdle simSession = iota
	simStarted
	simLast
)

// SimOption configures a Simulator.
type SimOption func(*Simulator)

// WithAutoAttach makes the simulator create I2C targets on first use instead
// of failing with ENXIO.
func WithAutoAttach() SimOption {
	return func(s *Simulator) { s.autoAttach = true }
}

// WithSimLogger sets the simulator logger.
func WithSimLogger(l logger.Logger) SimOption {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// Simulator is an in-process model of the i3c tools driver.
//
// It is safe for concurrent use, though calls are serialized the same way the
// driver serializes calls on one file descriptor.
type Simulator struct {
	mu         sync.Mutex
	targets    *xsync.MapOf[targetKey, *Target]
	autoAttach bool
	logger     logger.Logger
	closed     bool

	session    simSession
	sessTarget *Target

	failNext  error
	ops       []string
	ccc       []CCCEvent
	cccReply  map[uint8][]byte
	submitted int
}

var _ Device = (*Simulator)(nil)

// NewSimulator creates a simulator with a single I3C target behind the node.
func NewSimulator(opts ...SimOption) *Simulator {
	s := &Simulator{
		targets:  xsync.NewMapOf[targetKey, *Target](),
		logger:   logger.GetLogger(),
		cccReply: make(map[uint8][]byte),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.targets.Store(selfKey, &Target{})

	return s
}

func (s *Simulator) String() string { return SimPrefix }

// I3C returns the I3C target behind the device node.
func (s *Simulator) I3C() *Target {
	t, _ := s.targets.Load(selfKey)
	return t
}

// Attach adds an I2C target at addr, or returns the existing one.
func (s *Simulator) Attach(addr uint8) *Target {
	t, _ := s.targets.LoadOrCompute(targetKey{addr: addr, i2c: true}, func() *Target { return &Target{} })
	return t
}

// Target returns the target at addr.
func (s *Simulator) Target(addr uint8, i2c bool) (*Target, bool) {
	if !i2c {
		return s.I3C(), true
	}

	return s.targets.Load(targetKey{addr: addr, i2c: true})
}

// SetCCCResponse sets the bytes returned by read CCCs with code.
func (s *Simulator) SetCCCResponse(code uint8, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cccReply[code] = util.CloneSlice(data, 0)
}

// CCCs returns the CCCs seen so far.
func (s *Simulator) CCCs() []CCCEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.ccc)
}

// Ops returns the trace of records and block calls seen so far.
func (s *Simulator) Ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.ops)
}

// Submissions returns the number of Submit calls that reached the simulator.
func (s *Simulator) Submissions() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.submitted
}

// FailNext makes the next Submit, Read or Write fail with err.
func (s *Simulator) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

func (s *Simulator) check() error {
	if s.closed {
		return ErrDeviceClosed
	}
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil

		return err
	}

	return nil
}

func (s *Simulator) resolve(addr uint8, i2c bool) (*Target, error) {
	if !i2c {
		return s.I3C(), nil
	}
	if s.autoAttach {
		return s.Attach(addr), nil
	}
	t, ok := s.targets.Load(targetKey{addr: addr, i2c: true})
	if !ok {
		return nil, syscall.ENXIO
	}

	return t, nil
}

// Submit executes records in order. A failing record stops the batch; effects
// of earlier records remain.
func (s *Simulator) Submit(records []wire.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(); err != nil {
		return err
	}
	if _, err := wire.RequestCode(len(records)); err != nil {
		return syscall.EINVAL
	}
	s.submitted++

	for i := range records {
		if err := s.apply(&records[i]); err != nil {
			s.logger.Debug("simulated record failed", "index", i, "type", records[i].Type, "error", err)
			return err
		}
	}

	return nil
}

func (s *Simulator) apply(rec *wire.Record) error {
	s.ops = append(s.ops, opString(rec))

	switch rec.Type {
	case wire.TypePrivXfer, wire.TypeComboXfer:
		t, err := s.resolve(rec.Addr, rec.I2C)
		if err != nil {
			return err
		}
		data := rec.Data[:min(int(rec.Len), len(rec.Data))]
		switch {
		case rec.Combo && rec.Read:
			t.seek(rec.Offset)
			rec.Len = uint16(t.read(data)) //nolint:gosec // bounded by rec.Len
		case rec.Combo:
			t.writeAt(rec.Offset, data)
		case rec.Read:
			rec.Len = uint16(t.read(data)) //nolint:gosec // bounded by rec.Len
		default:
			t.write(data)
		}

	case wire.TypeCCC:
		data := rec.Data[:min(int(rec.Len), len(rec.Data))]
		ev := CCCEvent{Code: rec.CCC, Addr: rec.Addr, Direct: rec.Addr != 0, Read: rec.Read}
		if rec.Read {
			n := copy(data, s.cccReply[rec.CCC])
			rec.Len = uint16(n) //nolint:gosec // bounded by the buffer
			ev.Data = util.CloneSlice(data[:n], 0)
		} else {
			ev.Data = util.CloneSlice(data, 0)
		}
		s.ccc = append(s.ccc, ev)
		s.logger.Debug("simulated ccc", "code", rec.CCC, "addr", rec.Addr, "read", rec.Read)

	case wire.TypeStartBlocks:
		if s.session != simIdle {
			return syscall.EBUSY
		}
		t, err := s.resolve(rec.Addr, rec.I2C)
		if err != nil {
			return err
		}
		s.session = simStarted
		s.sessTarget = t

	case wire.TypeLastBlock:
		if s.session != simStarted {
			return syscall.EINVAL
		}
		s.session = simLast

	case wire.TypeStopBlocks:
		if s.session == simIdle {
			return syscall.EINVAL
		}
		s.session = simIdle
		s.sessTarget = nil

	case wire.TypeReset:
		s.session = simIdle
		s.sessTarget = nil
		s.targets.Range(func(_ targetKey, t *Target) bool {
			t.rewind()
			return true
		})

	default:
		return syscall.EINVAL
	}

	return nil
}

func opString(rec *wire.Record) string {
	if rec.Type.IsControl() {
		return rec.Type.String()
	}

	dir := "w"
	if rec.Read {
		dir = "r"
	}
	bus := "i3c"
	if rec.I2C {
		bus = "i2c"
	}
	toc := ""
	if !rec.TOC {
		toc = " rs"
	}

	return fmt.Sprintf("%s %s %s 0x%02x %d%s", rec.Type, bus, dir, rec.Addr, rec.Len, toc)
}

// Read receives one block of the open block session.
func (s *Simulator) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(); err != nil {
		return 0, err
	}
	if s.session == simIdle {
		return 0, syscall.EINVAL
	}
	s.ops = append(s.ops, fmt.Sprintf("block-read %d", len(p)))

	return s.sessTarget.read(p), nil
}

// Write sends one block of the open block session.
func (s *Simulator) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(); err != nil {
		return 0, err
	}
	if s.session == simIdle {
		return 0, syscall.EINVAL
	}
	s.ops = append(s.ops, fmt.Sprintf("block-write %d", len(p)))
	s.sessTarget.write(p)

	return len(p), nil
}

// Close marks the simulator closed.
func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrDeviceClosed
	}
	s.closed = true

	return nil
}
