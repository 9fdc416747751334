package memory

import "github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/apperror"

var errReferenceMissing = apperror.Validation("referenced record does not exist")

func errReference(what string) error {
	return errReferenceMissing.Detailf("referenced %s does not exist", what)
}
