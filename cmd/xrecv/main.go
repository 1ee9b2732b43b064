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
	port      = flag.String("port", "", "serial port device (e.g. /dev/ttyUSB0)")
	baud      = flag.Int("baud", 115200, "baud rate")
	out       = flag.String("out", "", "output file (required)")
	trim      = flag.Bool("trim", false, "strip trailing SUB padding from the final block before writing")
	overwrite = flag.Bool("y", false, "overwrite an existing output file")
	verbose   = flag.Bool("v", false, "verbose mode")
	quiet     = flag.Bool("q", false, "quiet mode")
	help      = flag.Bool("h", false, "show help")
)

const versionString = "xrecv version 0.1.0"

func main() {
	flag.Parse()

	if *help {
		showUsage(0)
	}
	if *port == "" {
		fmt.Fprintf(os.Stderr, "%s: -port is required\n", os.Args[0])
		showUsage(1)
	}
	if *out == "" {
		fmt.Fprintf(os.Stderr, "%s: -out is required\n", os.Args[0])
		showUsage(1)
	}
	if !*overwrite {
		if _, err := os.Stat(*out); err == nil {
			fmt.Fprintf(os.Stderr, "%s: %s already exists, use -y to overwrite\n", os.Args[0], *out)
			os.Exit(1)
		}
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

	var logger xmodem.Logger = xmodem.NoopLogger{}
	if *verbose {
		logger = xmodem.NewZapLogger(nil)
	}

	var lastReceived int64
	tracker := xmodem.NewProgressTracker(func(transferred, total int64, rate float64) {
		if !*quiet && *verbose {
			fmt.Fprintf(os.Stderr, "\rreceived %d bytes (%.0f B/s)", transferred, rate)
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
			lastReceived = transferred
			tracker.Update(transferred)
		},
	}

	session := xmodem.NewSession(ch,
		xmodem.WithSessionLogger(logger),
		xmodem.WithCallbacks(callbacks),
		xmodem.WithContext(ctx),
	)

	payload, err := session.Receive()
	if err != nil {
		if !*quiet {
			fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		}
		os.Exit(1)
	}

	if *trim {
		payload = xmodem.TrimSUB(payload)
	}

	if err := os.WriteFile(*out, payload, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *out, err)
		os.Exit(1)
	}

	lastReceived = int64(len(payload))
	elapsed := tracker.Complete(lastReceived)
	if !*quiet {
		fmt.Fprintf(os.Stderr, "\n%d bytes -> %s in %v\n", len(payload), *out, elapsed)
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
	fmt.Fprintf(os.Stderr, `%s - receive a file with XMODEM/XMODEM-CRC/XMODEM-1K

Usage: %s -port <device> -out <path> [options]

Options:
  -port string   serial port device (required)
  -baud int      baud rate (default 115200)
  -out string    output file (required)
  -trim          strip trailing SUB padding from the final block
  -y             overwrite an existing output file
  -v             verbose mode
  -q             quiet mode
  -h             show this help message

Example:
  %s -port /dev/ttyUSB0 -baud 9600 -out received.bin
`, versionString, os.Args[0], os.Args[0])
	os.Exit(exitcode)
}
