package specification

import "gorm.io/gorm"

// Specification is a composable query fragment; repositories apply each
// one to the base query in order.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
