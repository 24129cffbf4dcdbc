package microdb

import "fmt"

// Config holds the build-time region parameters of microcDB_config.h:
// the flash window [Start, End), the page size, and the byte value a
// freshly erased cell reads back as. All four must be set explicitly;
// there is no usable zero value.
type Config struct {
	Start    int
	End      int
	PageSize int
	Erased   byte
}

// Sentinel is the byte written to End-1 once the region has been
// formatted for this store.
const Sentinel byte = 0xDB

func (c Config) liveLength() int {
	return c.End - c.Start
}

// Validate reports the same misconfigurations microcDB_config.h catches
// at compile time with #error, since Go has no preprocessor to do it
// for us.
func (c Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("microdb: PageSize must be set (got %d)", c.PageSize)
	}
	if c.PageSize&(c.PageSize-1) != 0 {
		return fmt.Errorf("microdb: PageSize must be a power of two (got %d)", c.PageSize)
	}
	if c.End <= c.Start {
		return fmt.Errorf("microdb: End (%d) must be greater than Start (%d)", c.End, c.Start)
	}
	if c.Start%c.PageSize != 0 {
		return fmt.Errorf("microdb: Start (%d) must be page-aligned to PageSize (%d)", c.Start, c.PageSize)
	}
	if c.liveLength()%c.PageSize != 0 {
		// erase only works a whole page at a time, so a partial last
		// page would erase cells beyond End.
		return fmt.Errorf("microdb: region length %d must be a multiple of PageSize (%d)", c.liveLength(), c.PageSize)
	}
	if c.liveLength() < 2*c.PageSize {
		return fmt.Errorf("microdb: region must span at least two pages (got %d bytes over PageSize %d)", c.liveLength(), c.PageSize)
	}
	return nil
}

func (c Config) pageBase(addr int) int {
	off := addr - c.Start
	return c.Start + (off/c.PageSize)*c.PageSize
}
