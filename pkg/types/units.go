package types

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/params"
)

// WeiToDecimal renders a wei amount as a human-unit decimal string,
// trimming trailing zeros ("1500000000000000000" -> "1.5").
func WeiToDecimal(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	r := new(big.Rat).SetFrac(wei, big.NewInt(params.Ether))
	s := r.FloatString(18)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
