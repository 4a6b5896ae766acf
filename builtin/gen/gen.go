// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gen

import (
	"embed"
	"fmt"
)

//go:embed *.abi.json
var assets embed.FS

// MustABI returns the ABI definition of the named builtin contract.
func MustABI(name string) []byte {
	data, err := assets.ReadFile(name + ".abi.json")
	if err != nil {
		panic(fmt.Errorf("asset %s not found: %w", name, err))
	}
	return data
}
