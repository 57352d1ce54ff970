package domain

// SubmissionState represents where the purchase order workflow is
type SubmissionState string

const (
	SubmissionIdle       SubmissionState = "IDLE"
	SubmissionSubmitting SubmissionState = "SUBMITTING"
)

func (s SubmissionState) String() string {
	return string(s)
}

// CanTransitionTo checks if a state transition is valid. Submitting only
// ever returns to Idle, which makes submission non-reentrant.
func (s SubmissionState) CanTransitionTo(newState SubmissionState) bool {
	switch s {
	case SubmissionIdle:
		return newState == SubmissionSubmitting
	case SubmissionSubmitting:
		return newState == SubmissionIdle
	default:
		return false
	}
}

// StockStatus buckets an item's stock level for the dashboard
type StockStatus string

const (
	StockOut    StockStatus = "OUT"
	StockLow    StockStatus = "LOW"
	StockMedium StockStatus = "MEDIUM"
	StockSafe   StockStatus = "SAFE"
)

// LowStockThreshold is the stock level below which an item counts as low.
const LowStockThreshold = 10

const mediumStockThreshold = 50

// StockStatusOf returns the bucket for a stock quantity
func StockStatusOf(stock int) StockStatus {
	switch {
	case stock <= 0:
		return StockOut
	case stock < LowStockThreshold:
		return StockLow
	case stock < mediumStockThreshold:
		return StockMedium
	default:
		return StockSafe
	}
}
