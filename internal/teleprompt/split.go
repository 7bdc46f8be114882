package teleprompt

import "github.com/dspygo/optimizer/internal/primitives"

// defaultValidationFraction is the 80/20 demo-source/validation split §4.5
// step 2 names as the default.
const defaultValidationFraction = 0.2

// splitTrainset partitions trainset into a demo-source slice (bootstrap
// mining draws from this) and a validation slice (the objective function
// scores against this), deterministically by position — no shuffling, so
// the same trainset always splits the same way.
func splitTrainset(trainset []*primitives.Example, validationFraction float64) (demoSource, validation []*primitives.Example) {
	if validationFraction <= 0 || validationFraction >= 1 {
		validationFraction = defaultValidationFraction
	}

	validationSize := int(float64(len(trainset)) * validationFraction)
	if validationSize < 1 {
		validationSize = 1
	}
	if validationSize >= len(trainset) {
		validationSize = len(trainset) - 1
	}

	splitPoint := len(trainset) - validationSize
	demoSource = trainset[:splitPoint]
	validation = trainset[splitPoint:]
	return demoSource, validation
}
