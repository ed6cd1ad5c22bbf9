/*
Package observability turns edit hooks into Prometheus metrics and structured logs.

Combine lets several hook sets observe the same model.
*/
package observability
