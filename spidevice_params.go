package microdb

import "time"

// spiFlashParams holds per-chip AC timing pulled from each chip's
// datasheet, looked up by JEDEC ID.
type spiFlashParams struct {
	name string

	tRES1      time.Duration
	tDP        time.Duration
	tPP        time.Duration
	tErase4KB  time.Duration
	tErase64KB time.Duration
}

var (
	jedecMicronN25Q32   = [3]byte{0x20, 0xBA, 0x16}
	jedecWinbondW25Q128 = [3]byte{0xEF, 0x70, 0x18}
)

var knownSPIFlash = map[[3]byte]spiFlashParams{
	jedecMicronN25Q32: {
		name: "Micron N25Q 32Mb",

		// [N25Q32|Table 38: AC Characteristics and Operating Conditions]
		tPP:        5 * time.Millisecond,
		tErase4KB:  800 * time.Millisecond,
		tErase64KB: 3 * time.Second,
	},
	jedecWinbondW25Q128: {
		name: "Winbond W25Q 128Mb",

		// [W25Q128|9.6 AC Electrical Characteristics]
		tRES1:      3 * time.Microsecond,
		tDP:        3 * time.Microsecond,
		tPP:        3 * time.Millisecond,
		tErase4KB:  400 * time.Millisecond,
		tErase64KB: 2000 * time.Millisecond,
	},
}

func (d *SPIDevice) paramOrMax(get func(*spiFlashParams) time.Duration) time.Duration {
	if d.pr != nil {
		return get(d.pr)
	}
	var tmax time.Duration
	for _, param := range knownSPIFlash {
		tmax = max(tmax, get(&param))
	}
	return tmax
}

func (d *SPIDevice) tRES1() time.Duration {
	return d.paramOrMax(func(p *spiFlashParams) time.Duration { return p.tRES1 })
}
func (d *SPIDevice) tDP() time.Duration {
	return d.paramOrMax(func(p *spiFlashParams) time.Duration { return p.tDP })
}
func (d *SPIDevice) tPP() time.Duration {
	return d.paramOrMax(func(p *spiFlashParams) time.Duration { return p.tPP })
}
func (d *SPIDevice) tErase4KB() time.Duration {
	return d.paramOrMax(func(p *spiFlashParams) time.Duration { return p.tErase4KB })
}
func (d *SPIDevice) tErase64KB() time.Duration {
	return d.paramOrMax(func(p *spiFlashParams) time.Duration { return p.tErase64KB })
}
