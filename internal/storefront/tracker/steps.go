package tracker

import "fabricstore/internal/domain"

// Step is one entry of the customer-facing progress bar.
type Step struct {
	Stage     domain.Stage
	Label     string
	Completed bool
	Current   bool
}

// Steps lays status out over the linear progression. A step is completed
// when the status has reached it or any later step. Cancelled orders
// complete nothing.
func Steps(status domain.OrderStatus) []Step {
	stage := domain.Classify(status)
	rank := stage.Rank()
	steps := make([]Step, len(domain.ProgressStages))
	for i, s := range domain.ProgressStages {
		steps[i] = Step{
			Stage:     s,
			Label:     s.String(),
			Completed: rank >= 0 && rank >= i,
			Current:   stage == s,
		}
	}
	return steps
}
