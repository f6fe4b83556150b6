/*
Package observability provides lifecycle hooks for monitoring cancellation flows.

It includes Prometheus counters, structured logging of every event, and Chain
to fan one event out to several hook sets.
*/
package observability
