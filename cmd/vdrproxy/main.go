// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Command vdrproxy verifies a single ledger reply against a request and
// a validator set, both read from disk, and prints the resulting
// Verified/Expired/Invalid/Missing outcome.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"

	"github.com/smqik/indy-vdr/pkg/config"
	"github.com/smqik/indy-vdr/pkg/stateproof/engine"
	"github.com/smqik/indy-vdr/pkg/stateproof/keyderiver"
)

func main() {
	requestPath := flag.String("request", "", "path to the outgoing request JSON ({type, operation})")
	replyPath := flag.String("reply", "", "path to the raw ledger reply JSON")
	lastWriteTime := flag.Int64("last-write-time", 0, "server-reported last write time, unix seconds (defaults to now)")
	flag.Parse()

	if *requestPath == "" || *replyPath == "" {
		fmt.Fprintln(os.Stderr, "usage: vdrproxy -request req.json -reply reply.json")
		os.Exit(2)
	}

	if err := run(*requestPath, *replyPath, *lastWriteTime); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(requestPath, replyPath string, lastWriteTime int64) error {
	cfg := config.Load()
	validators, err := config.LoadValidatorSet(cfg.ValidatorSetPath)
	if err != nil {
		return fmt.Errorf("loading validator set: %w", err)
	}

	requestBytes, err := os.ReadFile(requestPath)
	if err != nil {
		return fmt.Errorf("reading request: %w", err)
	}
	var req keyderiver.Request
	if err := json.Unmarshal(requestBytes, &req); err != nil {
		return fmt.Errorf("parsing request: %w", err)
	}

	replyBytes, err := os.ReadFile(replyPath)
	if err != nil {
		return fmt.Errorf("reading reply: %w", err)
	}

	_, _, _, g2 := bls12381.Generators()
	eng := engine.New(cfg.ProtocolVersion, cfg.Threshold(), validators, g2, nil, nil)

	now := time.Now()
	lwt := now
	if lastWriteTime > 0 {
		lwt = time.Unix(lastWriteTime, 0)
	}

	result := eng.Verify(engine.Input{
		Request:       req,
		RawReplyText:  replyBytes,
		Now:           now,
		LastWriteTime: lwt,
	})

	fmt.Printf("outcome: %s\n", result.Outcome)
	if result.Reason != "" {
		fmt.Printf("reason: %s\n", result.Reason)
	}
	if result.Asserts != nil {
		asserts, _ := json.MarshalIndent(result.Asserts, "", "  ")
		fmt.Printf("asserts: %s\n", asserts)
	}
	return nil
}
