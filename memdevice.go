package microdb

import "fmt"

// MemDevice is a PageDevice backed by a plain byte slice. It enforces
// the same write discipline a real NOR/MCU flash would (a program may
// only be a bitwise AND-refinement of what is already there, and only
// an erase may set a bit back to the erased value) so that tests
// exercising Store actually catch a caller that forgets to route a
// write through the shift/update machinery instead of overwriting live
// bytes directly. SPIDevice, in spidevice.go, is the real-hardware
// counterpart.
type MemDevice struct {
	cfg  Config
	data []byte
}

// NewMemDevice allocates a region of cfg.End-cfg.Start bytes, all set
// to cfg.Erased, simulating a freshly manufactured, never-erased chip.
func NewMemDevice(cfg Config) *MemDevice {
	data := make([]byte, cfg.liveLength())
	for i := range data {
		data[i] = cfg.Erased
	}
	return &MemDevice{cfg: cfg, data: data}
}

func (m *MemDevice) index(addr int) int { return addr - m.cfg.Start }

func (m *MemDevice) ErasePage(addr int) error {
	if addr%m.cfg.PageSize != 0 {
		return fmt.Errorf("microdb: erase address 0x%X is not page-aligned", addr)
	}
	base := m.index(addr)
	if base < 0 || base+m.cfg.PageSize > len(m.data) {
		return fmt.Errorf("microdb: erase address 0x%X out of range", addr)
	}
	for i := base; i < base+m.cfg.PageSize; i++ {
		m.data[i] = m.cfg.Erased
	}
	return nil
}

func (m *MemDevice) program(addr int, width int, value uint64) error {
	base := m.index(addr)
	if base < 0 || base+width > len(m.data) {
		return fmt.Errorf("microdb: program address 0x%X out of range", addr)
	}
	for i := 0; i < width; i++ {
		newByte := byte(value >> (8 * i))
		old := m.data[base+i]
		if old&newByte != newByte {
			return fmt.Errorf("microdb: program at 0x%X would set an erased-down bit without an erase (old %08b new %08b)", addr+i, old, newByte)
		}
		m.data[base+i] = newByte
	}
	return nil
}

func (m *MemDevice) ProgramWord(addr int, v uint32) error {
	if addr%4 != 0 {
		return fmt.Errorf("microdb: word program address 0x%X is not word-aligned", addr)
	}
	return m.program(addr, 4, uint64(v))
}

func (m *MemDevice) ProgramHalfWord(addr int, v uint16) error {
	if addr%2 != 0 {
		return fmt.Errorf("microdb: half-word program address 0x%X is not half-word aligned", addr)
	}
	return m.program(addr, 2, uint64(v))
}

func (m *MemDevice) Read(addr, n int) ([]byte, error) {
	base := m.index(addr)
	if base < 0 || base+n > len(m.data) {
		return nil, fmt.Errorf("microdb: read [0x%X,+%d) out of range", addr, n)
	}
	out := make([]byte, n)
	copy(out, m.data[base:base+n])
	return out, nil
}
