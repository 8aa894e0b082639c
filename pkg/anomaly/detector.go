package anomaly

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/sentinelsec/sentinel/pkg/models"
)

// ErrNotFitted is returned by Score before a successful Fit.
var ErrNotFitted = errors.New("detector must be fitted before scoring")

// ErrNoTrainingData is returned by Fit when the training batch is empty.
var ErrNoTrainingData = errors.New("no training events")

// Detector is a standardised-distance outlier detector. Features are
// standardised with mean and stddev fit on the training batch; an event's
// score decreases as its mean absolute z-distance from the baseline grows.
// Scores are in [-1, 0.5]: typical events land near zero or above, outliers
// go negative.
//
// Fit is called once during initialization and the detector is read-only
// afterwards, so it is freely shareable across goroutines.
type Detector struct {
	fitted bool
	means  []float64
	stddev []float64
}

// NewDetector creates an unfit detector.
func NewDetector() *Detector {
	return &Detector{}
}

// IsFit reports whether the detector has observed training data.
func (d *Detector) IsFit() bool {
	return d.fitted
}

// Fit learns the standardisation baseline from historical events.
func (d *Detector) Fit(events []*models.Event) error {
	if len(events) == 0 {
		return ErrNoTrainingData
	}

	vectors := make([][]float64, len(events))
	for i, e := range events {
		vectors[i] = Features(e)
	}

	d.means = make([]float64, NumFeatures)
	d.stddev = make([]float64, NumFeatures)
	column := make([]float64, len(vectors))
	for j := 0; j < NumFeatures; j++ {
		for i := range vectors {
			column[i] = vectors[i][j]
		}
		mean, std := stat.MeanStdDev(column, nil)
		if math.IsNaN(std) || std == 0 {
			std = 1
		}
		d.means[j] = mean
		d.stddev[j] = std
	}

	d.fitted = true
	return nil
}

// Score returns one score per input event, aligned with the input order.
// More-negative scores are more anomalous.
func (d *Detector) Score(events []*models.Event) ([]float64, error) {
	if !d.fitted {
		return nil, ErrNotFitted
	}

	scores := make([]float64, len(events))
	for i, e := range events {
		scores[i] = d.score(Features(e))
	}
	return scores, nil
}

// score maps the mean absolute z-distance onto the decision scale:
// zero distance scores 0.5, distance 1 scores 0, larger distances go
// negative, clamped at -1.
func (d *Detector) score(features []float64) float64 {
	var total float64
	for j, v := range features {
		total += math.Abs((v - d.means[j]) / d.stddev[j])
	}
	meanAbsZ := total / float64(NumFeatures)
	s := 0.5 - meanAbsZ/2
	if s < -1 {
		s = -1
	}
	return s
}
