// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakedcall/thor"
)

// Config describes the initial state of a deployment.
// Amounts are in whole units and prices in quote currency, both as decimal strings.
type Config struct {
	LaunchTime   uint64       `yaml:"launchTime"`
	Accounts     []Account    `yaml:"accounts"`
	Owner        thor.Address `yaml:"owner"`
	Operator     thor.Address `yaml:"operator"`
	Reporter     thor.Address `yaml:"reporter"`
	Terms        *Terms       `yaml:"terms,omitempty"`
	InitialPrice string       `yaml:"initialPrice,omitempty"`
}

// Account is a pre-funded account.
type Account struct {
	Address thor.Address `yaml:"address"`
	Balance string       `yaml:"balance"`
}

// Terms of the single instrument. Leave them out to deploy in registry mode.
type Terms struct {
	Strike   string `yaml:"strike"`
	Premium  string `yaml:"premium"`
	Duration string `yaml:"duration"`
}

// ParseConfig decodes a yaml config. Unknown fields are rejected.
func ParseConfig(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var config Config
	if err := dec.Decode(&config); err != nil {
		return nil, errors.Wrap(err, "decode genesis config")
	}
	return &config, nil
}

// LoadConfig reads a yaml config from file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis config")
	}
	return ParseConfig(data)
}
