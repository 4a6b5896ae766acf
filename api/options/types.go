// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package options

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakedcall/builtin/option"
	"github.com/vechain/stakedcall/thor"
)

// Option for json marshal. Strike and premium are given both raw and in units.
type Option struct {
	ID          uint64               `json:"id"`
	Buyer       thor.Address         `json:"buyer"`
	Premium     math.HexOrDecimal256 `json:"premium"`
	PremiumText string               `json:"premiumText"`
	Strike      math.HexOrDecimal256 `json:"strike"`
	StrikeText  string               `json:"strikeText"`
	Expiration  uint64               `json:"expiration"`
	Exercised   bool                 `json:"exercised"`
	Cancelled   bool                 `json:"cancelled"`
	Status      string               `json:"status"`
}

func convertOption(opt *option.Option, now uint64) *Option {
	return &Option{
		ID:          opt.ID,
		Buyer:       opt.Buyer,
		Premium:     math.HexOrDecimal256(*opt.Premium),
		PremiumText: thor.FormatAmount(opt.Premium),
		Strike:      math.HexOrDecimal256(*opt.StrikePrice),
		StrikeText:  thor.FormatPrice(opt.StrikePrice),
		Expiration:  opt.Expiration,
		Exercised:   opt.Exercised,
		Cancelled:   opt.Cancelled,
		Status:      opt.Status(now).String(),
	}
}

// Terms for json marshal.
type Terms struct {
	Strike      math.HexOrDecimal256 `json:"strike"`
	StrikeText  string               `json:"strikeText"`
	Premium     math.HexOrDecimal256 `json:"premium"`
	PremiumText string               `json:"premiumText"`
	Duration    uint64               `json:"duration"`
}

func convertTerms(terms *option.Terms) *Terms {
	if terms == nil {
		return nil
	}
	return &Terms{
		Strike:      math.HexOrDecimal256(*terms.Strike),
		StrikeText:  thor.FormatPrice(terms.Strike),
		Premium:     math.HexOrDecimal256(*terms.Premium),
		PremiumText: thor.FormatAmount(terms.Premium),
		Duration:    terms.Duration,
	}
}

// Summary describes the option contract. Terms is null in registry mode.
type Summary struct {
	Owner         thor.Address         `json:"owner"`
	Terms         *Terms               `json:"terms"`
	TotalShares   math.HexOrDecimal256 `json:"totalShares"`
	StakedBalance math.HexOrDecimal256 `json:"stakedBalance"`
	OptionCount   uint64               `json:"optionCount"`
	OpenCount     uint64               `json:"openCount"`
}

func hexOrDecimal(v *big.Int) math.HexOrDecimal256 {
	return math.HexOrDecimal256(*v)
}
