// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	"encoding/hex"
	"fmt"
	"os"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"gopkg.in/yaml.v3"

	"github.com/smqik/indy-vdr/pkg/ledger"
)

// validatorSetFile is the on-disk shape of the validator key set: one
// alias and hex-encoded uncompressed G2 public key per validator, plus
// the Byzantine tolerance f the set was formed under.
type validatorSetFile struct {
	ByzantineTolerance int `yaml:"byzantine_tolerance"`
	Validators         []struct {
		Alias     string `yaml:"alias"`
		PublicKey string `yaml:"public_key"`
	} `yaml:"validators"`
}

// LoadValidatorSet reads and decodes the validator key set at path, the
// out-of-band artifact every ledger client is distributed alongside its
// pool genesis transactions.
func LoadValidatorSet(path string) (*ledger.ValidatorKeySet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errInvalid("validator set file", err)
	}

	var file validatorSetFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errInvalid("validator set yaml", err)
	}

	keys := make(map[string]*bls12381.G2Affine, len(file.Validators))
	for _, v := range file.Validators {
		data, err := hex.DecodeString(v.PublicKey)
		if err != nil {
			return nil, errInvalid(fmt.Sprintf("validator %q public_key", v.Alias), err)
		}
		var pk bls12381.G2Affine
		if _, err := pk.SetBytes(data); err != nil {
			return nil, errInvalid(fmt.Sprintf("validator %q public_key", v.Alias), err)
		}
		keys[v.Alias] = &pk
	}

	return ledger.NewValidatorKeySet(keys, file.ByzantineTolerance)
}
