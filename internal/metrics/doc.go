// Package metrics registers the Prometheus collectors exported on /metrics.
//
// Collectors are package-level and registered with the default registry via
// promauto. Callers use the Record* helpers rather than touching collectors
// directly so label values stay consistent.
package metrics
