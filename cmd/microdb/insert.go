package main

import (
	"bytes"
	"flag"
	"fmt"
)

func insertCmd(args []string) {
	fs := flag.NewFlagSet("insert", flag.ExitOnError)
	getCfg := configFlags(fs)
	fs.Parse(args)
	cfg := getCfg()

	if fs.NArg() == 0 {
		fatalUsage("insert: at least one '/'-terminated document is required")
	}

	s := openStore(cfg)
	buf := []byte(fs.Arg(0))
	// each '/' ends one document; an argument with none still asks for
	// one, so Insert reports the missing terminator.
	n := max(1, bytes.Count(buf, []byte("/")))
	status, err := s.Insert(buf, n)
	if err != nil {
		fatalf("insert failed: %v (%s)", err, status)
	}
	fmt.Println(status)
}
