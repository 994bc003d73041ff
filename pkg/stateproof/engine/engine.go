// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package engine composes the five-phase pipeline — key derivation,
// proof extraction, structural verification, signature verification,
// freshness evaluation — into the single pure function every caller
// drives: reply JSON in, a terminal Result out.
package engine

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/smqik/indy-vdr/pkg/ledger"
	"github.com/smqik/indy-vdr/pkg/metrics"
	"github.com/smqik/indy-vdr/pkg/stateproof/extractor"
	"github.com/smqik/indy-vdr/pkg/stateproof/freshness"
	"github.com/smqik/indy-vdr/pkg/stateproof/keyderiver"
	"github.com/smqik/indy-vdr/pkg/stateproof/signature"
	"github.com/smqik/indy-vdr/pkg/stateproof/verifier"
)

// Engine holds the configuration and collaborators a single Verify call
// needs. It carries no mutable state of its own beyond an injected
// logger, matching §5's "pure synchronous function" requirement — every
// field here is read-only for the lifetime of the Engine.
type Engine struct {
	ProtocolVersion ledger.ProtocolVersion
	Threshold       time.Duration
	Validators      *ledger.ValidatorKeySet
	Generator       signature.Generator
	CustomParser    extractor.Parser
	Logger          *log.Logger
}

// New builds an Engine, defaulting Logger to a prefixed stdlib logger
// when nil, the same convention the teacher's server handlers use.
func New(protocolVersion ledger.ProtocolVersion, threshold time.Duration, validators *ledger.ValidatorKeySet, generator signature.Generator, customParser extractor.Parser, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(log.Writer(), "[stateproof] ", log.LstdFlags)
	}
	return &Engine{
		ProtocolVersion: protocolVersion,
		Threshold:       threshold,
		Validators:      validators,
		Generator:       generator,
		CustomParser:    customParser,
		Logger:          logger,
	}
}

// Input is everything one Verify call needs beyond the Engine's fixed
// configuration: the request that produced the reply, the reply's raw
// and already-available type, and the freshness side-channel the
// ledger node reports out of band from the proof itself.
type Input struct {
	Request           keyderiver.Request
	RawReplyText      []byte
	Now               time.Time
	LastWriteTime     time.Time
	LeftLastWriteTime *time.Time
}

// Verify runs the full pipeline for one reply and returns the terminal
// Result. It never panics on malformed input: every failure mode in
// §7's error taxonomy is represented as a Result, not a Go error.
func (e *Engine) Verify(in Input) ledger.Result {
	correlationID := uuid.New().String()
	start := time.Now()
	result := e.verify(in)
	metrics.ObserveVerification(in.Request.Type, result.Outcome, time.Since(start))
	e.Logger.Printf("correlation_id=%s txn_type=%s outcome=%s", correlationID, in.Request.Type, result.Outcome)
	return result
}

func (e *Engine) verify(in Input) ledger.Result {
	key, ok := keyderiver.DeriveKey(in.Request, e.ProtocolVersion)
	if !ok {
		return ledger.MissingResult()
	}

	proofs, ok := extractor.Extract(in.RawReplyText, in.Request.Type, key, e.CustomParser)
	if !ok {
		return ledger.MissingResult()
	}

	asserts, sig, ok, reason := verifier.Verify(proofs)
	if !ok {
		return ledger.InvalidResult(reason, nil)
	}

	sigOK, sigReason, err := signature.Verify(sig, e.Validators, e.Generator)
	if err != nil {
		e.Logger.Printf("signature verification error: %v", err)
		return ledger.InvalidResult(sigReason, nil)
	}
	if !sigOK {
		if sigReason == signature.ErrInsufficientParticipants.Error() {
			return ledger.InvalidResult(sigReason, nil)
		}
		return ledger.InvalidResult(sigReason, &asserts)
	}

	timestampRange := keyderiver.DeriveTimestampRange(in.Request)
	if e.isFresh(timestampRange, in) {
		return ledger.VerifiedResult(&asserts)
	}
	return ledger.ExpiredResult(&asserts)
}

func (e *Engine) isFresh(tr keyderiver.TimestampRange, in Input) bool {
	if tr.AnyPast {
		return true
	}
	req := freshness.Request{
		Now:           in.Now.Unix(),
		Threshold:     int64(e.Threshold.Seconds()),
		LastWriteTime: in.LastWriteTime.Unix(),
		From:          toInt64(tr.From),
		To:            toInt64(tr.To),
	}
	if in.LeftLastWriteTime != nil {
		v := in.LeftLastWriteTime.Unix()
		req.LeftLastWriteTime = &v
	}
	return freshness.IsFresh(req)
}

func toInt64(v *uint64) *int64 {
	if v == nil {
		return nil
	}
	r := int64(*v)
	return &r
}
