// Package main runs a standalone JetStream-enabled NATS server for local
// development.
//
// The group example and the integration tests need a NATS server to talk to;
// this binary starts one on a random (or fixed) port, prints the connection
// URL to stdout, and shuts down cleanly on SIGINT/SIGTERM:
//
//	go run ./test/cmd/nats-server
//	NATS_URL=nats://127.0.0.1:<port> go run ./examples/group -rank 0 -size 2
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

func main() {
	port := flag.Int("port", -1, "listen port (-1 picks a random free port)")
	flag.Parse()

	storeDir, err := os.MkdirTemp("", "blockpart-nats-*")
	if err != nil {
		log.Fatalf("Failed to create JetStream store directory: %v", err)
	}
	defer os.RemoveAll(storeDir)

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      *port,
		JetStream: true,
		StoreDir:  storeDir,
		NoLog:     true,
		NoSigs:    true,
	}

	srv, err := server.NewServer(opts)
	if err != nil {
		log.Fatalf("Failed to create NATS server: %v", err)
	}

	go srv.Start()
	if !srv.ReadyForConnections(10 * time.Second) {
		log.Fatal("NATS server not ready within timeout")
	}

	fmt.Printf("NATS_URL=%s\n", srv.ClientURL())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Fprintln(os.Stderr, "Shutting down NATS server...")
	srv.Shutdown()
	srv.WaitForShutdown()
}
