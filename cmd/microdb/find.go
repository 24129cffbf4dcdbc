package main

import (
	"flag"
	"fmt"

	"github.com/gentam/microdb"
)

func findCmd(args []string) {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	getCfg := configFlags(fs)
	fs.Parse(args)
	cfg := getCfg()

	if fs.NArg() == 0 {
		fatalUsage("find: a '/'-terminated dotted path is required")
	}

	s := openStore(cfg)
	status, kind, start, end := s.Find([]byte(fs.Arg(0)))
	if status != microdb.FoundSuccess {
		fmt.Println(status)
		return
	}
	fmt.Printf("%s %s [%d,%d]\n", status, kind, start, end)
}
