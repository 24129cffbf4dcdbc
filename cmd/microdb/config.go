package main

import (
	"flag"

	"github.com/gentam/microdb"
)

// configFlags registers the region parameters shared by every
// subcommand.
func configFlags(fs *flag.FlagSet) func() microdb.Config {
	var (
		start    int
		end      int
		pageSize int
		erased   uint
	)
	fs.IntVar(&start, "start", 0, "region start address")
	fs.IntVar(&end, "end", 1<<20, "region end address (exclusive)")
	fs.IntVar(&pageSize, "page", 4096, "flash page size in bytes")
	fs.UintVar(&erased, "erased", 0xFF, "byte value of an erased flash cell")

	return func() microdb.Config {
		return microdb.Config{
			Start:    start,
			End:      end,
			PageSize: pageSize,
			Erased:   byte(erased),
		}
	}
}

func openStore(cfg microdb.Config) *microdb.Store {
	dev, err := microdb.NewSPIDevice(cfg)
	if err != nil {
		fatalf("connect to flash: %v", err)
	}
	s, status, err := microdb.Open(cfg, dev)
	if err != nil {
		fatalf("open store: %v (%s)", err, status)
	}
	return s
}
