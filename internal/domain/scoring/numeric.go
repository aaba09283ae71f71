package scoring

import "strconv"

const percentPlaces = 2

func percent(obtained, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return obtained / max * 100.0
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', percentPlaces, 64)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatRatio(obtained, max float64) string {
	return formatScore(obtained) + " / " + formatScore(max)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
