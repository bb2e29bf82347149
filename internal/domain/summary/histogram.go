package summary

import "github.com/shopspring/decimal"

// Histogram bin layout: ten 100 ml bins with inclusive upper edges, then an
// overflow bin for everything above 1000 ml.
const (
	binWidthML   = 100
	boundedBins  = 10
	HistogramLen = boundedBins + 1
)

// BinLabels names each histogram bin in order.
var BinLabels = [HistogramLen]string{
	"0-100ml", "101-200ml", "201-300ml", "301-400ml", "401-500ml",
	"501-600ml", "601-700ml", "701-800ml", "801-900ml", "901-1000ml",
	"1000ml+",
}

var binEdges = func() [boundedBins]decimal.Decimal {
	var e [boundedBins]decimal.Decimal
	for i := range e {
		e[i] = decimal.NewFromInt(int64((i + 1) * binWidthML))
	}
	return e
}()

// Histogram counts transactions per volume bin.
type Histogram [HistogramLen]int

// BinFor returns the bin index for a non-negative volume.
func BinFor(volume decimal.Decimal) int {
	for i, edge := range binEdges {
		if volume.LessThanOrEqual(edge) {
			return i
		}
	}
	return boundedBins
}

// Merge returns the bin-wise sum of h and o.
func (h Histogram) Merge(o Histogram) Histogram {
	for i := range h {
		h[i] += o[i]
	}
	return h
}
