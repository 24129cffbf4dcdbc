package main

import (
	"flag"
	"fmt"
	"os"
)

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

func fatalUsage(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(2)
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
	microdb <command> [arguments]

Commands:
	init	format the configured flash region unless already formatted
	insert	append one or more '/'-terminated documents
	find	resolve a dotted path and print the value's kind and address range
	update	replace a value or add an object member
	append	append an element to a located array
`)
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
	}

	switch cmd := flag.Arg(0); cmd {
	case "init":
		initCmd(flag.Args()[1:])
	case "insert":
		insertCmd(flag.Args()[1:])
	case "find":
		findCmd(flag.Args()[1:])
	case "update":
		updateCmd(flag.Args()[1:])
	case "append":
		appendCmd(flag.Args()[1:])
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %q\n", cmd)
		usage()
	}
}
