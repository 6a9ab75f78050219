package num

import "math/big"

// bigRat is the rational-bigint representation. The wrapped *big.Rat is
// never mutated after construction.
type bigRat struct {
	r *big.Rat
}

func (b bigRat) backend() Backend { return RationalBigInt }

func (b bigRat) kind() Kind { return KindFinite }

func (b bigRat) zero() value { return bigRat{r: new(big.Rat)} }

func (b bigRat) add(o value) value { return bigRat{r: new(big.Rat).Add(b.r, o.(bigRat).r)} }

func (b bigRat) sub(o value) value { return bigRat{r: new(big.Rat).Sub(b.r, o.(bigRat).r)} }

func (b bigRat) mul(o value) value { return bigRat{r: new(big.Rat).Mul(b.r, o.(bigRat).r)} }

func (b bigRat) quo(o value) value { return bigRat{r: new(big.Rat).Quo(b.r, o.(bigRat).r)} }

func (b bigRat) neg() value { return bigRat{r: new(big.Rat).Neg(b.r)} }

func (b bigRat) cmp(o value) int { return b.r.Cmp(o.(bigRat).r) }

func (b bigRat) sign() int { return b.r.Sign() }

func (b bigRat) float64() float64 {
	f, _ := b.r.Float64()
	return f
}

func (b bigRat) String() string { return b.r.RatString() }
