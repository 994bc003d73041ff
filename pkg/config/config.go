// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package config holds the engine's environment-sourced configuration
// and the file-based validator key set it is handed at startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/smqik/indy-vdr/pkg/ledger"
)

// Config holds the three engine options spec.md §6 names, read from the
// environment with safe defaults, plus the path to the validator set
// file.
type Config struct {
	ProtocolVersion             ledger.ProtocolVersion
	FreshnessThresholdSeconds   int
	ValidatorByzantineTolerance int
	ValidatorSetPath            string
}

// Load reads Config from the environment. Unlike the validator-set file
// (which has no safe default and must be loaded explicitly via
// LoadValidatorSet), every field here has one, since none of them are
// secrets and a misconfigured engine should still start up verifying
// against sane defaults rather than refuse to boot.
func Load() *Config {
	return &Config{
		ProtocolVersion:             parseProtocolVersion(getEnv("INDY_VDR_PROTOCOL_VERSION", "node-modern")),
		FreshnessThresholdSeconds:   getEnvInt("INDY_VDR_FRESHNESS_THRESHOLD_SECONDS", 300),
		ValidatorByzantineTolerance: getEnvInt("INDY_VDR_VALIDATOR_BYZANTINE_TOLERANCE", 1),
		ValidatorSetPath:            getEnv("INDY_VDR_VALIDATOR_SET_PATH", "validators.yaml"),
	}
}

// Threshold returns FreshnessThresholdSeconds as a time.Duration.
func (c *Config) Threshold() time.Duration {
	return time.Duration(c.FreshnessThresholdSeconds) * time.Second
}

func parseProtocolVersion(s string) ledger.ProtocolVersion {
	if s == "node-legacy" {
		return ledger.ProtocolNodeLegacy
	}
	return ledger.ProtocolNodeModern
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

// errInvalid wraps a field-level validation failure with the offending
// key, matching the teacher's accumulated-errors style but surfaced
// immediately since a bad validator set is a hard startup failure.
func errInvalid(field string, err error) error {
	return fmt.Errorf("config: %s: %w", field, err)
}
