/*
Package observability provides Prometheus instrumentation for scenario
controllers.

Metrics are fed through domain.LifecycleHooks, so they layer on top of the
transition path without touching it: register the hooks via
parley.WithLifecycleHooks and expose the registry with promhttp.
*/
package observability
