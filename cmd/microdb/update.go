package main

import (
	"flag"
	"fmt"
)

func updateCmd(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	getCfg := configFlags(fs)
	fs.Parse(args)
	cfg := getCfg()

	if fs.NArg() != 2 {
		fatalUsage("update: a '/'-terminated path and a '/'-terminated value are required")
	}

	s := openStore(cfg)
	status, err := s.Update([]byte(fs.Arg(0)), []byte(fs.Arg(1)))
	if err != nil {
		fatalf("update failed: %v (%s)", err, status)
	}
	fmt.Println(status)
}
