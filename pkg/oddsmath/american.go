package oddsmath

import (
	"fmt"
	"math"
)

// AmericanToDecimal converte odds americanas em decimais
// +150 → 2.50 ; -150 → 1.67
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("invalid American odds: cannot be 0")
	}

	if american > 0 {
		return (float64(american) / 100.0) + 1.0, nil
	}

	return (100.0 / float64(-american)) + 1.0, nil
}

// DecimalToAmerican converte odds decimais em americanas, arredondando para o inteiro mais próximo
// Abaixo de 2.0 é favorito (negativo)
func DecimalToAmerican(decimal float64) (int, error) {
	if decimal <= 1.0 {
		return 0, fmt.Errorf("invalid decimal odds: must be > 1.0")
	}

	if decimal >= 2.0 {
		return int(math.Round((decimal - 1.0) * 100.0)), nil
	}

	return int(math.Round(-100.0 / (decimal - 1.0))), nil
}

// Round2 arredonda para 2 casas decimais
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Clamp limita v ao intervalo fechado [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
