package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drunlade/go-xmodem/xmodem"
)

var (
	port    = flag.String("port", "", "serial port device (e.g. /dev/ttyUSB0)")
	baud    = flag.Int("baud", 115200, "baud rate")
	file    = flag.String("file", "", "file to send")
	verbose = flag.Bool("v", false, "verbose mode")
	quiet   = flag.Bool("q", false, "quiet mode")
	help    = flag.Bool("h", false, "show help")
)

const versionString = "xsend version 0.1.0"

func main() {
	flag.Parse()

	if *help {
		showUsage(0)
	}
	if *port == "" {
		fmt.Fprintf(os.Stderr, "%s: -port is required\n", os.Args[0])
		showUsage(1)
	}
	if *file == "" {
		fmt.Fprintf(os.Stderr, "%s: -file is required\n", os.Args[0])
		showUsage(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := signalContext(sigChan)
	defer cancel()

	ch, serialPort, err := xmodem.OpenSerialChannel(*port, *baud)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", *port, err)
		os.Exit(1)
	}
	defer serialPort.Close()

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", *file, err)
		os.Exit(1)
	}
	defer f.Close()

	var logger xmodem.Logger = xmodem.NoopLogger{}
	if *verbose {
		logger = xmodem.NewZapLogger(nil)
	}

	var lastSent int64
	tracker := xmodem.NewProgressTracker(func(transferred, total int64, rate float64) {
		if !*quiet && *verbose {
			fmt.Fprintf(os.Stderr, "\rsent %d bytes (%.0f B/s)", transferred, rate)
		}
	}, 200*time.Millisecond)
	tracker.Start(0)

	callbacks := xmodem.Callbacks{
		OnModeNegotiated: func(m xmodem.Mode) {
			if !*quiet {
				fmt.Fprintf(os.Stderr, "negotiated mode: %s\n", m)
			}
		},
		OnBlockRetry: func(seq byte, errorCount int) {
			if *verbose {
				fmt.Fprintf(os.Stderr, "retry: seq=%d errors=%d\n", seq, errorCount)
			}
		},
		OnProgress: func(transferred, total int64, rate float64) {
			lastSent = transferred
			tracker.Update(transferred)
		},
	}

	session := xmodem.NewSession(ch,
		xmodem.WithSessionLogger(logger),
		xmodem.WithCallbacks(callbacks),
		xmodem.WithContext(ctx),
	)

	if err := session.Send(f); err != nil {
		if !*quiet {
			fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		}
		os.Exit(1)
	}
	elapsed := tracker.Complete(lastSent)
	if !*quiet {
		fmt.Fprintf(os.Stderr, "\ndone in %v\n", elapsed)
	}
}

func signalContext(sigChan chan os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}

func showUsage(exitcode int) {
	fmt.Fprintf(os.Stderr, `%s - send a file with XMODEM/XMODEM-CRC/XMODEM-1K

Usage: %s -port <device> -file <path> [options]

Options:
  -port string   serial port device (required)
  -baud int      baud rate (default 115200)
  -file string   file to send (required)
  -v             verbose mode
  -q             quiet mode
  -h             show this help message

Example:
  %s -port /dev/ttyUSB0 -baud 9600 -file firmware.bin
`, versionString, os.Args[0], os.Args[0])
	os.Exit(exitcode)
}
