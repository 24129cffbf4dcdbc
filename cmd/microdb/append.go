package main

import (
	"flag"
	"fmt"
)

func appendCmd(args []string) {
	fs := flag.NewFlagSet("append", flag.ExitOnError)
	getCfg := configFlags(fs)
	fs.Parse(args)
	cfg := getCfg()

	if fs.NArg() != 2 {
		fatalUsage("append: a '/'-terminated path and a '/'-terminated element are required")
	}

	s := openStore(cfg)
	status, err := s.AppendElement([]byte(fs.Arg(0)), []byte(fs.Arg(1)))
	if err != nil {
		fatalf("append failed: %v (%s)", err, status)
	}
	fmt.Println(status)
}
