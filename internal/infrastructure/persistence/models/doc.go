// Package models holds the GORM table mappings for the billing schema.
// Domain entities stay free of ORM tags; these models carry the column
// annotations and convert to and from the domain types, so repositories
// only ever hand domain objects across the persistence boundary.
//
// base.go defines the shared column sets (BaseModel, AggregateModel),
// billing.go the duration billing tables (BillingProductModel,
// BillingOrderModel).
package models
