package expr

import (
	"fmt"
	"math/big"
	"strings"
)

// String renders the expression in the notation accepted by Parse. Binary
// operations are fully parenthesized except for integer-coefficient
// products, which print as "2x".
func (e *Expression) String() string {
	var sb strings.Builder
	e.format(&sb)
	return sb.String()
}

func (e *Expression) format(sb *strings.Builder) {
	switch e.op {
	case OpSubstitution:
		sb.WriteString("&[")
		e.a.format(sb)
		sb.WriteByte(']')
	case OpNeg:
		sb.WriteByte('-')
		e.a.format(sb)
	case OpAbs:
		sb.WriteString("abs(")
		e.a.format(sb)
		sb.WriteByte(')')
	case OpSqrt:
		if e.plusMinus {
			sb.WriteString("sqrt_pm(")
		} else {
			sb.WriteString("sqrt(")
		}
		e.a.format(sb)
		sb.WriteByte(')')

	case OpVariable:
		sb.WriteString(string(e.v))
	case OpInteger:
		sb.WriteString(e.i.String())
	case OpRational:
		e.formatRational(sb)

	case OpEqual:
		e.a.format(sb)
		sb.WriteString(" = ")
		e.b.format(sb)
	case OpSum:
		e.formatBinary(sb, " + ")
	case OpDifference:
		e.formatBinary(sb, " - ")
	case OpQuotient:
		e.formatBinary(sb, " / ")
	case OpProduct:
		if e.a.op == OpInteger && e.b.op == OpVariable {
			sb.WriteString(e.a.i.String())
			sb.WriteString(string(e.b.v))
		} else {
			e.formatBinary(sb, " * ")
		}
	case OpPower:
		sb.WriteByte('(')
		e.a.format(sb)
		sb.WriteString(")^")
		e.b.format(sb)
	}
}

func (e *Expression) formatBinary(sb *strings.Builder, op string) {
	sb.WriteByte('(')
	e.a.format(sb)
	sb.WriteString(op)
	e.b.format(sb)
	sb.WriteByte(')')
}

func (e *Expression) formatRational(sb *strings.Builder) {
	if e.asFraction {
		fmt.Fprintf(sb, "(%s/%s)", e.r.Num(), e.r.Denom())
		return
	}
	if mantissa, places, ok := decimalRepresentation(e.r); ok {
		out := new(big.Int).Abs(mantissa).String()
		if places > 0 {
			if places > len(out)-1 {
				out = strings.Repeat("0", places-(len(out)-1)) + out
			}
			out = out[:len(out)-places] + "." + out[len(out)-places:]
		}
		if e.r.Sign() < 0 {
			sb.WriteByte('-')
		}
		sb.WriteString(out)
		return
	}
	f, _ := e.r.Float64()
	fmt.Fprintf(sb, "%v", f)
}

// decimalRepresentation returns the digits and decimal-place count of a
// rational with a terminating decimal expansion, i.e. one whose denominator
// has no prime factors other than 2 and 5.
func decimalRepresentation(r *big.Rat) (mantissa *big.Int, places int, ok bool) {
	denom := new(big.Int).Set(r.Denom())
	var pow2, pow5 int
	for _, p := range []struct {
		n     int64
		count *int
	}{{2, &pow2}, {5, &pow5}} {
		div := big.NewInt(p.n)
		mod := new(big.Int)
		for {
			q, m := new(big.Int).QuoRem(denom, div, mod)
			if m.Sign() != 0 {
				break
			}
			denom.Set(q)
			*p.count++
		}
	}
	if denom.Cmp(bigOne) != 0 {
		return nil, 0, false
	}

	mantissa = new(big.Int).Set(r.Num())
	if pow2 < pow5 {
		scale := new(big.Int).Exp(big.NewInt(2), big.NewInt(int64(pow5-pow2)), nil)
		mantissa.Mul(mantissa, scale)
	} else {
		scale := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(pow2-pow5)), nil)
		mantissa.Mul(mantissa, scale)
	}
	if pow5 > pow2 {
		places = pow5
	} else {
		places = pow2
	}
	return mantissa, places, true
}
