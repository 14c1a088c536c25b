package models

import (
	"fmt"

	"github.com/mmdatafocus/retail_backend/utils"
)

// Domain validation failures wrap utils.ErrorValidation and missing
// references wrap utils.ErrorRecordNotFound, so the HTTP layer can map them
// to 400/404 instead of a generic 500.

func errorValidation(message string) error {
	return fmt.Errorf("%w: %s", utils.ErrorValidation, message)
}

func errorNotFound(entity string) error {
	return fmt.Errorf("%s: %w", entity, utils.ErrorRecordNotFound)
}

func errorInUse(entity string, usedBy string) error {
	return fmt.Errorf("%w: %s is used by %s", utils.ErrorValidation, entity, usedBy)
}

func errorNegativeAmount(field string) error {
	return fmt.Errorf("%w: %s cannot be negative", utils.ErrorValidation, field)
}
