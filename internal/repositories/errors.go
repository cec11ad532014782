package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateKeyError detects unique-constraint violations. The gorm config
// does not translate driver errors, so gorm.ErrDuplicatedKey alone is not
// enough; the string checks cover postgres and sqlite drivers.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "23505")
}
