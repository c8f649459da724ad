/*
This is an example application that drives the generation pipeline over a
handful of sample creature genomes.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spaghettifunk/morphogen/testbed"
)

func main() {
	tuningPath := "morphogen.toml"
	if len(os.Args) > 1 {
		tuningPath = os.Args[1]
	}

	showcase, err := testbed.NewShowcase(tuningPath)
	if err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		<-sigCh
		_ = showcase.Shutdown()
		os.Exit(0)
	}()

	if err := showcase.Run(30 * time.Second); err != nil {
		panic(err)
	}

	if err := showcase.Shutdown(); err != nil {
		panic(err)
	}
}
