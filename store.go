package microdb

import (
	"errors"
	"fmt"
)

// Store owns a region's configuration, its PageDevice, and the append
// cursor, and is threaded through every public call instead of the
// module-scope globals microcDB's C implementation keeps
// (MICROCDB_START_ADDR, FlashAddresscntr, ...).
type Store struct {
	cfg    Config
	dev    PageDevice
	cursor int // address of the next byte to be appended
}

// ErrNotImplemented is returned by Store.Delete. microcDB's header
// declares MicrocDB_Delete but its implementation file never defines a
// body for it, and this store carries no compaction either. The method
// still exists so the public API surface matches what the header
// promised, rather than silently dropping it.
var ErrNotImplemented = errors.New("microdb: not implemented")

// Open validates cfg, wraps dev, and runs the boot-time initializer.
// It is the Go equivalent of calling MicrocDB_Init() once at boot.
func Open(cfg Config, dev PageDevice) (*Store, Status, error) {
	if err := cfg.Validate(); err != nil {
		return nil, InitFailed, err
	}
	s := &Store{cfg: cfg, dev: dev}
	status, err := s.init()
	if err != nil {
		return nil, status, err
	}
	return s, status, nil
}

// init detects prior initialization via the sentinel byte, erasing and
// formatting the region when it is absent, and locates the append
// cursor either way.
func (s *Store) init() (Status, error) {
	sentinel, err := ReadByte(s.dev, s.cfg.End-1)
	if err != nil {
		return InitFailed, err
	}

	if sentinel != Sentinel {
		if err := s.eraseAndFormat(); err != nil {
			return InitFailed, err
		}
		s.cursor = s.cfg.Start
		return InitCmplt, nil
	}

	// Previously formatted: scan forward from Start for the first
	// erased byte.
	addr := s.cfg.Start
	for addr < s.cfg.End-1 {
		b, err := ReadByte(s.dev, addr)
		if err != nil {
			return InitFailed, err
		}
		if b == s.cfg.Erased {
			break
		}
		addr++
	}
	if addr >= s.cfg.End-1 {
		return FlashFull, nil
	}
	s.cursor = addr
	return InitCmplt, nil
}

// eraseAndFormat erases every page in the region and programs the
// sentinel, then verifies the region reads back erased, tolerating up
// to 2 non-erased bytes the way microcDB's EraseDB does. That
// tolerance can mask a partial erase failure on a small region; it is
// kept for compatibility with stores the C implementation formatted.
func (s *Store) eraseAndFormat() error {
	for addr := s.cfg.Start; addr < s.cfg.End; addr += s.cfg.PageSize {
		if err := s.dev.ErasePage(addr); err != nil {
			return fmt.Errorf("microdb: erase page 0x%X: %w", addr, err)
		}
	}

	sentinelAddr := s.cfg.End - 1
	v := uint16(Sentinel) | uint16(s.cfg.Erased)<<8
	if sentinelAddr%2 != 0 {
		// End-1 isn't half-word aligned against Start; program the
		// preceding half-word instead and keep the low byte erased.
		v = uint16(s.cfg.Erased) | uint16(Sentinel)<<8
		sentinelAddr--
	}
	if err := s.dev.ProgramHalfWord(sentinelAddr, v); err != nil {
		return fmt.Errorf("microdb: program sentinel: %w", err)
	}

	nonErased := 0
	for addr := s.cfg.Start; addr < s.cfg.End-1; addr++ {
		b, err := ReadByte(s.dev, addr)
		if err != nil {
			return err
		}
		if b != s.cfg.Erased {
			nonErased++
		}
	}
	if nonErased > 2 {
		return fmt.Errorf("microdb: erase verification failed: %d non-erased bytes in region", nonErased)
	}
	return nil
}

// Insert appends n documents, each '/'-terminated, concatenated in
// buf. Single-quote characters are rewritten to double quotes before
// anything is written to flash (the stored form only ever uses '"').
// No JSON-shape validation is performed.
func (s *Store) Insert(buf []byte, n int) (Status, error) {
	rewriteQuotes(buf)

	end := 0
	terminators := 0
	for end < len(buf) && terminators < n {
		if buf[end] == '/' {
			terminators++
		}
		end++
	}
	if terminators < n {
		return StoreFailed, fmt.Errorf("microdb: buffer has only %d of %d terminated documents", terminators, n)
	}

	if err := programBytes(s.dev, s.cursor, buf[:end]); err != nil {
		return StoreFailed, err
	}
	s.cursor += end
	return StoreSuccess, nil
}

func rewriteQuotes(buf []byte) {
	for i, b := range buf {
		if b == '\'' {
			buf[i] = '"'
		}
	}
}

// Find resolves a dotted, '/'-terminated path to the flash region
// holding its value.
func (s *Store) Find(query []byte) (Status, Kind, int, int) {
	return resolvePath(s.dev, s.cfg, query)
}

// Delete is declared for API parity with microcDB's header
// (MicrocDB_Delete) but was never implemented there, and this store
// carries no compaction of deleted data; see ErrNotImplemented.
func (s *Store) Delete(path []byte) (Status, error) {
	return StoreFailed, ErrNotImplemented
}
