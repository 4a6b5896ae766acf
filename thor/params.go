// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import "math/big"

// Addresses of the native contracts. They are fixed, like the builtin contracts of a chain.
var (
	StakingPoolAddress = BytesToAddress([]byte("StakingPool"))
	PriceFeedAddress   = BytesToAddress([]byte("PriceFeed"))
	OptionAddress      = BytesToAddress([]byte("StakedCall"))
)

const (
	// PriceDecimals is the number of decimals of the price feed answers.
	PriceDecimals = 8
	// AmountDecimals is the number of decimals of native and staked amounts.
	AmountDecimals = 18
)

// Ether is one whole unit of the native asset.
var Ether = new(big.Int).Exp(big.NewInt(10), big.NewInt(AmountDecimals), nil)
