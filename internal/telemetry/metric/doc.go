// Package metric instruments the token store with Prometheus collectors.
//
// Metrics:
//
//   - pwdless_store_operations_total{operation,result}
//   - pwdless_store_hash_duration_seconds{operation}
//   - pwdless_store_backend_connects_total{result}
//
// All recording methods accept a nil receiver so callers never need to
// check whether metrics are enabled.
package metric
