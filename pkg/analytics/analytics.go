package analytics

import (
	"math"

	"finaudit-be/pkg/dataset"
	"finaudit-be/pkg/rules"
)

const (
	zScoreThreshold = 3.0
	minSampleSize   = 5
	maxPlotPoints   = 200
)

// AnomalyPoint is one plotted value of a numeric column.
type AnomalyPoint struct {
	Index     int     `json:"id"`
	Value     float64 `json:"value"`
	IsAnomaly bool    `json:"isAnomaly"`
	ZScore    float64 `json:"zScore"`
}

// ColumnAnomalies summarizes outliers detected in one column.
type ColumnAnomalies struct {
	Count    int            `json:"count"`
	PlotData []AnomalyPoint `json:"plot_data"`
	Mean     float64        `json:"mean"`
	Std      float64        `json:"std"`
}

// DetectAnomalies finds z-score outliers (|z| > 3) in every numeric column
// with enough data. Plot data is capped per column for frontend rendering.
func DetectAnomalies(ds *dataset.Dataset) map[string]ColumnAnomalies {
	anomalies := make(map[string]ColumnAnomalies)

	for _, name := range ds.Headers {
		values := ds.NumericColumn(name)
		if len(values) < minSampleSize {
			continue
		}

		mean, std := meanStd(values)
		if std == 0 {
			continue
		}

		outliers := 0
		for _, v := range values {
			if math.Abs((v-mean)/std) > zScoreThreshold {
				outliers++
			}
		}
		if outliers == 0 {
			continue
		}

		sample := len(values)
		if sample > maxPlotPoints {
			sample = maxPlotPoints
		}
		points := make([]AnomalyPoint, 0, sample)
		for i := 0; i < sample; i++ {
			z := math.Abs((values[i] - mean) / std)
			points = append(points, AnomalyPoint{
				Index:     i,
				Value:     values[i],
				IsAnomaly: z > zScoreThreshold,
				ZScore:    z,
			})
		}

		anomalies[name] = ColumnAnomalies{
			Count:    outliers,
			PlotData: points,
			Mean:     mean,
			Std:      std,
		}
	}

	return anomalies
}

// SimulateImpacts answers "if I fix this failed rule, how many points does
// the health score recover": the share of the total rule weight each failed
// rule represents, on the 0-100 scale, rounded to 2 decimals.
func SimulateImpacts(ruleResults map[string]rules.Result) map[string]float64 {
	var totalWeight float64
	for _, res := range ruleResults {
		weight := res.Weight
		if weight == 0 {
			weight = 1.0
		}
		totalWeight += weight
	}
	if totalWeight == 0 {
		return map[string]float64{}
	}

	impacts := make(map[string]float64)
	for key, res := range ruleResults {
		if res.Passed {
			continue
		}
		weight := res.Weight
		if weight == 0 {
			weight = 1.0
		}
		impacts[key] = math.Round(weight/totalWeight*100*100) / 100
	}
	return impacts
}

func meanStd(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	// Sample standard deviation (n-1).
	if len(values) > 1 {
		variance /= float64(len(values) - 1)
	}
	return mean, math.Sqrt(variance)
}
