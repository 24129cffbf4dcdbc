package microdb

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/ftdi"
)

// SPIDevice is a PageDevice backed by a real SPI NOR flash chip
// reached through an FT2232H's MPSSE engine, such as the flash on an
// iCEBreaker board. It exposes the word/half-word granularity and page
// erase semantics the store's update engine needs: each ProgramWord/
// ProgramHalfWord becomes a Page Program command scoped to just those
// bytes, and ErasePage dispatches to whichever sector-erase command
// matches Config.PageSize.
type SPIDevice struct {
	cfg  Config
	conn spi.Conn
	cs   gpio.PinIO
	id   [3]byte
	pr   *spiFlashParams
}

// Flash commands:
//   - [N25Q32|Table 16: Command Set]
//   - [W25Q128|8.1.2 Instruction Set Table 1]
const (
	spiCmdPowerUp            = 0xAB // Release Power Down
	spiCmdPowerDown          = 0xB9
	spiCmdReadID             = 0x9F
	spiCmdRead               = 0x03
	spiCmdWriteEnable        = 0x06
	spiCmdPageProgram        = 0x02
	spiCmdErase4KB           = 0x20 // Subsector Erase / Sector Erase (4KB)
	spiCmdErase64KB          = 0xD8 // Sector Erase / Block Erase (64KB)
	spiCmdReadStatusRegister = 0x05
)

var hostInitialized atomic.Bool

// NewSPIDevice finds an FT2232H, opens an MPSSE/SPI connection to the
// flash chip wired to it, and identifies the chip's JEDEC ID so
// erase/program timings can be looked up.
func NewSPIDevice(cfg Config) (*SPIDevice, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if hostInitialized.CompareAndSwap(false, true) {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("microdb: host initialization failed: %w", err)
		}
	}

	ft, err := findFT2232H()
	if err != nil {
		return nil, fmt.Errorf("microdb: failed to open FT2232H device: %w", err)
	}

	port, err := ft.SPI()
	if err != nil {
		return nil, fmt.Errorf("microdb: failed to get SPI port: %w", err)
	}

	// [FTDI AN_114|1.2] FTDI's MPSSE engine only supports mode 0 and
	// mode 2; [n25q_32mb_3v_65nm.pdf|Table 7] the chip supports 0 and 3.
	const clk = 30 * physic.MegaHertz // [AN_135 3.2.1 Divisors]
	conn, err := port.Connect(clk, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("microdb: SPI connection failed: %w", err)
	}

	d := &SPIDevice{cfg: cfg, conn: conn, cs: ft.D4}

	if err := d.powerUp(); err != nil {
		return nil, fmt.Errorf("microdb: flash power up failed: %w", err)
	}
	if _, err := d.readID(); err != nil {
		return nil, fmt.Errorf("microdb: read JEDEC ID failed: %w", err)
	}
	return d, nil
}

func findFT2232H() (*ftdi.FT232H, error) {
	const (
		vendorID  = 0x0403 // FTDI
		productID = 0x6010 // FT2232H
	)
	info := ftdi.Info{}
	for _, dev := range ftdi.All() {
		dev.Info(&info)
		if info.VenID != vendorID || info.DevID != productID {
			continue
		}
		if ft, ok := dev.(*ftdi.FT232H); ok {
			return ft, nil
		}
	}
	return nil, errors.New("not found")
}

// tx wraps an SPI transaction with CS assertion, scoping the hold on
// the underlying medium to exactly this one call.
func (d *SPIDevice) tx(buf []byte) (err error) {
	if err = d.cs.Out(gpio.Low); err != nil {
		return err
	}
	defer func() {
		if csErr := d.cs.Out(gpio.High); csErr != nil && err == nil {
			err = csErr
		}
	}()
	err = d.conn.Tx(buf, buf)
	return
}

func (d *SPIDevice) powerUp() error {
	buf := []byte{spiCmdPowerUp}
	if err := d.tx(buf); err != nil {
		return err
	}
	time.Sleep(d.tRES1())
	return nil
}

func (d *SPIDevice) readID() ([3]byte, error) {
	buf := make([]byte, 4)
	buf[0] = spiCmdReadID
	if err := d.tx(buf); err != nil {
		return [3]byte{}, err
	}
	d.id = [3]byte(buf[1:])
	if params, ok := knownSPIFlash[d.id]; ok {
		d.pr = &params
	}
	return d.id, nil
}

func (d *SPIDevice) writeEnable() error {
	return d.tx([]byte{spiCmdWriteEnable})
}

// readStatusRegister reads the status register once; busyWait polls
// its BUSY bit (bit 0).
func (d *SPIDevice) readStatusRegister() (byte, error) {
	buf := []byte{spiCmdReadStatusRegister, 0}
	if err := d.tx(buf); err != nil {
		return 0, err
	}
	return buf[1], nil
}

func (d *SPIDevice) busyWait(interval, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		sr, err := d.readStatusRegister()
		if err != nil {
			return err
		}
		if sr&0x01 == 0 {
			return nil
		}
		if timeout != 0 && time.Now().After(deadline) {
			return fmt.Errorf("microdb: flash busy-wait timed out")
		}
		time.Sleep(interval)
	}
}

// eraseCmdFor picks the erase command matching Config.PageSize: SPI
// NOR chips only erase in fixed 4KB or 64KB sectors, regardless of the
// logical page size the document store is configured with, so PageSize
// must equal one of them when backed by real hardware.
func (d *SPIDevice) eraseCmdFor(pageSize int) (cmd byte, wait time.Duration, err error) {
	switch pageSize {
	case 4 << 10:
		return spiCmdErase4KB, d.tErase4KB(), nil
	case 64 << 10:
		return spiCmdErase64KB, d.tErase64KB(), nil
	default:
		return 0, 0, fmt.Errorf("microdb: SPIDevice requires PageSize of 4096 or 65536, got %d", pageSize)
	}
}

func (d *SPIDevice) ErasePage(addr int) error {
	if addr%d.cfg.PageSize != 0 {
		return fmt.Errorf("microdb: erase address 0x%X is not page-aligned", addr)
	}
	cmd, wait, err := d.eraseCmdFor(d.cfg.PageSize)
	if err != nil {
		return err
	}
	if err := d.writeEnable(); err != nil {
		return err
	}
	buf := []byte{cmd, byte(addr >> 16), byte(addr >> 8), byte(addr)}
	if err := d.tx(buf); err != nil {
		return err
	}
	return d.busyWait(1*time.Millisecond, wait)
}

// pageProgram issues a SPI Page Program command for data (at most 256
// bytes, and never crossing a 256-byte program boundary; true for
// every caller here since ProgramWord/ProgramHalfWord write at most 4
// bytes) and verifies the write by reading the bytes back.
func (d *SPIDevice) pageProgram(addr int, data []byte) error {
	if err := d.writeEnable(); err != nil {
		return err
	}
	const max24 = 1<<24 - 1
	if addr < 0 || addr > max24 {
		return fmt.Errorf("microdb: address 0x%X out of 24-bit range", addr)
	}
	buf := make([]byte, 4+len(data))
	buf[0] = spiCmdPageProgram
	buf[1] = byte(addr >> 16)
	buf[2] = byte(addr >> 8)
	buf[3] = byte(addr)
	copy(buf[4:], data)
	if err := d.tx(buf); err != nil {
		return err
	}
	if err := d.busyWait(100*time.Microsecond, d.tPP()); err != nil {
		return err
	}
	got, err := d.Read(addr, len(data))
	if err != nil {
		return err
	}
	for i := range data {
		if got[i] != data[i] {
			return fmt.Errorf("microdb: program readback mismatch at 0x%X: got %#x want %#x", addr+i, got[i], data[i])
		}
	}
	return nil
}

func (d *SPIDevice) ProgramWord(addr int, v uint32) error {
	return d.pageProgram(addr, []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

func (d *SPIDevice) ProgramHalfWord(addr int, v uint16) error {
	return d.pageProgram(addr, []byte{byte(v), byte(v >> 8)})
}

// Read splits the read into multiple transactions to stay within the
// FTDI MPSSE's maximum transaction size.
func (d *SPIDevice) Read(addr, n int) ([]byte, error) {
	const (
		maxTx    = 65536 // [FTDI-AN_108]
		cmdBytes = 4     // opRead + 24-bit address
		maxData  = maxTx - cmdBytes
	)
	out := make([]byte, n)
	off := 0
	for remaining := n; remaining > 0; {
		chunk := min(remaining, maxData)
		buf := make([]byte, cmdBytes+chunk)
		buf[0] = spiCmdRead
		buf[1] = byte(addr >> 16)
		buf[2] = byte(addr >> 8)
		buf[3] = byte(addr)
		if err := d.tx(buf); err != nil {
			return nil, err
		}
		copy(out[off:], buf[cmdBytes:])
		addr += chunk
		off += chunk
		remaining -= chunk
	}
	return out, nil
}

// Close releases the flash chip to standby by asserting power-down.
func (d *SPIDevice) Close() error {
	buf := []byte{spiCmdPowerDown}
	if err := d.tx(buf); err != nil {
		return err
	}
	time.Sleep(d.tDP())
	return nil
}
