package main

import (
	"flag"
	"fmt"

	"github.com/gentam/microdb"
)

func initCmd(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	getCfg := configFlags(fs)
	fs.Parse(args)
	cfg := getCfg()

	dev, err := microdb.NewSPIDevice(cfg)
	if err != nil {
		fatalf("connect to flash: %v", err)
	}

	_, status, err := microdb.Open(cfg, dev)
	if err != nil {
		fatalf("init failed: %v (%s)", err, status)
	}
	fmt.Println(status)
}
