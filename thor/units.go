// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ParseAmount parses an amount given in whole units, such as "1.5", into base units.
func ParseAmount(s string) (*big.Int, error) {
	return parseScaled(s, AmountDecimals)
}

// ParsePrice parses a price into the fixed point representation of the price feed.
func ParsePrice(s string) (*big.Int, error) {
	return parseScaled(s, PriceDecimals)
}

// FormatAmount formats base units as whole units.
func FormatAmount(v *big.Int) string {
	return formatScaled(v, AmountDecimals)
}

// FormatPrice formats a price feed answer.
func FormatPrice(v *big.Int) string {
	return formatScaled(v, PriceDecimals)
}

func parseScaled(s string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %q", s)
	}
	scaled := d.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, errors.Errorf("%q has more than %d decimals", s, decimals)
	}
	return scaled.BigInt(), nil
}

func formatScaled(v *big.Int, decimals int32) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -decimals).String()
}
