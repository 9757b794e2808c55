package features

import (
	"fmt"

	"ChurnPull/internal/domain/models"
)

// Decide reports churn when prob is strictly above threshold.
func Decide(prob, threshold float64) bool {
	return prob > threshold
}

// Label returns the machine-readable outcome label.
func Label(churn bool) string {
	if churn {
		return models.LabelChurn
	}
	return models.LabelNoChurn
}

// RenderMessage formats the user-facing outcome. The probability is the
// churn probability in both branches.
func RenderMessage(prob float64, churn bool) string {
	if churn {
		return fmt.Sprintf("The customer is likely to churn with a probability of %.2f%%", prob*100)
	}
	return fmt.Sprintf("The customer is not likely to churn with a probability of %.2f%%", prob*100)
}
