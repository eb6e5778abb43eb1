// citi - CITI file CLI tool
//
// Usage:
//
//	citi fmt [file]      Rewrite a CITI file in canonical form
//	citi check [file]    Validate a CITI file, print the error code
//	citi info [file]     Print a summary of a CITI file
//	citi version         Print version info
//
// If no file is given, reads from stdin. Use --verbose to log the
// parser's progress to stderr.
package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Neumenon/citi/citi"
)

const libVersion = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	verbose := false
	fileArg := ""
	for _, arg := range os.Args[2:] {
		switch {
		case arg == "--verbose":
			verbose = true
		default:
			if arg != "-" {
				fileArg = arg
			}
		}
	}

	var input io.Reader = os.Stdin
	if fileArg != "" {
		f, err := os.Open(fileArg)
		if err != nil {
			fatal("open file: %v", err)
		}
		defer f.Close()
		input = f
	}

	var opts []citi.ReaderOption
	if verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fatal("logger: %v", err)
		}
		defer log.Sync()
		opts = append(opts, citi.WithLogger(log))
	}

	switch cmd {
	case "fmt":
		cmdFmt(input, opts)
	case "check":
		cmdCheck(input, opts)
	case "info":
		cmdInfo(input, opts)
	case "version":
		fmt.Printf("citi %s\n", libVersion)
	default:
		fmt.Fprintf(os.Stderr, "citi: unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func cmdFmt(input io.Reader, opts []citi.ReaderOption) {
	rec, err := citi.ReadRecord(input, opts...)
	if err != nil {
		fatal("parse: %v", err)
	}
	if err := citi.WriteRecord(os.Stdout, rec); err != nil {
		fatal("write: %v", err)
	}
}

func cmdCheck(input io.Reader, opts []citi.ReaderOption) {
	_, err := citi.ReadRecord(input, opts...)
	code := citi.CodeOf(err)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid (%d): %v\n", code, err)
		os.Exit(1)
	}
	fmt.Println("ok")
}

func cmdInfo(input io.Reader, opts []citi.ReaderOption) {
	rec, err := citi.ReadRecord(input, opts...)
	if err != nil {
		fatal("parse: %v", err)
	}
	fmt.Printf("version:   %s\n", rec.Version)
	fmt.Printf("name:      %s\n", rec.Name)
	fmt.Printf("comments:  %d\n", len(rec.Comments))
	fmt.Printf("constants: %d\n", len(rec.Constants))
	for _, d := range rec.Devices {
		fmt.Printf("device:    %s (%d entries)\n", d.Name, len(d.Entries))
	}
	fmt.Printf("var:       %s %s (%d values)\n", rec.Var.Name, rec.Var.Format, len(rec.Var.Values))
	for i := range rec.Data {
		fmt.Printf("data:      %s %s (%d samples)\n",
			rec.Data[i].Name, rec.Data[i].Format, len(rec.Data[i].Samples))
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `citi - CITI file tool

Usage:
  citi fmt [file]      Rewrite a CITI file in canonical form
  citi check [file]    Validate a CITI file, print the error code
  citi info [file]     Print a summary of a CITI file
  citi version         Print version info

Reads from stdin when no file is given.`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "citi: "+format+"\n", args...)
	os.Exit(1)
}
