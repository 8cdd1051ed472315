package statistics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// HistogramAlgorithm selects how the number of bins is derived from the data
// when neither a bin count nor explicit breaks are given.
type HistogramAlgorithm int

const (
	// HistogramSturges uses ceil(log2(n) + 1) bins.
	HistogramSturges HistogramAlgorithm = iota
	// HistogramFD uses the Freedman-Diaconis rule based on the
	// inter-quartile range.
	HistogramFD
	// HistogramScott uses Scott's normal reference rule based on the
	// sample standard deviation.
	HistogramScott
)

// Histogram computes the histogram of a data set. The caller chooses the
// number of bins, explicit break points, or a bin-partition algorithm.
type Histogram struct {
	bins      int
	breaks    []float64
	counts    []int
	frequency []float64
}

// NewHistogram builds a histogram with breaks+1 evenly spaced bins.
func NewHistogram(data []float64, breaks int) (*Histogram, error) {
	if breaks < 1 {
		return nil, fmt.Errorf("number of breaks (%d) must be positive", breaks)
	}
	h := &Histogram{bins: breaks + 1}
	if err := h.calculate(data); err != nil {
		return nil, err
	}
	return h, nil
}

// NewHistogramWithAlgorithm builds a histogram whose bin count is chosen by
// the given algorithm.
func NewHistogramWithAlgorithm(data []float64, algorithm HistogramAlgorithm) (*Histogram, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no data given: %w", ErrInsufficientData)
	}
	n := float64(len(data))
	min, max := minMax(data)

	var width float64
	bins := 0
	switch algorithm {
	case HistogramSturges:
		bins = int(math.Ceil(math.Log2(n) + 1))
	case HistogramFD:
		sorted := append([]float64(nil), data...)
		sort.Float64s(sorted)
		r1 := quantile8(sorted, 0.25)
		r2 := quantile8(sorted, 0.75)
		width = 2.0 * (r2 - r1) * math.Pow(n, -1.0/3.0)
	case HistogramScott:
		width = 3.5 * stat.StdDev(data, nil) * math.Pow(n, -1.0/3.0)
	default:
		return nil, fmt.Errorf("unknown bin-partition algorithm (%d)", algorithm)
	}
	if bins == 0 {
		if width <= 0 {
			return nil, fmt.Errorf("degenerate data range, cannot derive bin width")
		}
		bins = int(math.Ceil((max - min) / width))
	}
	if bins < 1 {
		bins = 1
	}

	h := &Histogram{bins: bins}
	if err := h.calculate(data); err != nil {
		return nil, err
	}
	return h, nil
}

// NewHistogramWithBreaks builds a histogram from explicit break points.
// Breaks are sorted and deduplicated; the bin count is len(breaks)+1.
func NewHistogramWithBreaks(data []float64, breaks []float64) (*Histogram, error) {
	if len(breaks) == 0 {
		return nil, fmt.Errorf("no break points given")
	}
	bs := append([]float64(nil), breaks...)
	sort.Float64s(bs)
	bs = dedup(bs)
	h := &Histogram{bins: len(bs) + 1, breaks: bs}
	if err := h.calculate(data); err != nil {
		return nil, err
	}
	return h, nil
}

// Bins returns the number of bins.
func (h *Histogram) Bins() int {
	return h.bins
}

// Breaks returns the break points separating the bins.
func (h *Histogram) Breaks() []float64 {
	return h.breaks
}

// Counts returns the number of samples in bin i.
func (h *Histogram) Counts(i int) int {
	return h.counts[i]
}

// Frequency returns the fraction of samples in bin i.
func (h *Histogram) Frequency(i int) float64 {
	return h.frequency[i]
}

func (h *Histogram) calculate(data []float64) error {
	if len(data) == 0 {
		return fmt.Errorf("no data given: %w", ErrInsufficientData)
	}

	min, max := minMax(data)

	if len(h.breaks) == 0 {
		// evenly span the data range
		h.breaks = make([]float64, h.bins-1)
		width := (max - min) / float64(h.bins)
		for i := range h.breaks {
			h.breaks[i] = min + float64(i+1)*width
		}
	}

	h.counts = make([]int, h.bins)
	for _, v := range data {
		placed := false
		for i, b := range h.breaks {
			if v < b {
				h.counts[i]++
				placed = true
				break
			}
		}
		if !placed {
			h.counts[h.bins-1]++
		}
	}

	h.frequency = make([]float64, h.bins)
	total := float64(len(data))
	for i, c := range h.counts {
		h.frequency[i] = float64(c) / total
	}
	return nil
}

// quantile8 computes the Hyndman-Fan type-8 quantile of sorted samples.
// The estimate is approximately median-unbiased regardless of the sample
// distribution.
func quantile8(sorted []float64, prob float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	const a = 1.0 / 3.0
	b := 2 * a / (float64(n) + a)
	if prob < b {
		return sorted[0]
	}
	if prob > 1-b {
		return sorted[n-1]
	}

	index := int(math.Floor((float64(n)+a)*prob + a))
	weight := float64(n)*prob + a - float64(index)
	return (1-weight)*sorted[index-1] + weight*sorted[index]
}

func minMax(data []float64) (float64, float64) {
	min, max := data[0], data[0]
	for _, v := range data[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func dedup(sorted []float64) []float64 {
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || !closeEnough(v, out[len(out)-1]) {
			out = append(out, v)
		}
	}
	return out
}

func closeEnough(a, b float64) bool {
	const eps = 42 * 1e-16
	diff := math.Abs(a - b)
	return diff <= eps*math.Abs(a) || diff <= eps*math.Abs(b)
}
