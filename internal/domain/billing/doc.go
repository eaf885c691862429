// Package billing contains the duration-billing domain model: time-based
// pricing rules, the price calculation pipeline with free-minute and
// min/max constraints, and the billing order lifecycle.
package billing
