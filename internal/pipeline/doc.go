// Package pipeline runs an audit: rows are turned into work items, every
// item is probed by the bounded Dispatcher, and the outcomes are folded into
// a report.
//
// Each stage is a Step operating on a shared model.Audit, in the same way a
// report is filled in stage by stage. DefaultPipeline wires the standard
// extract, dispatch and aggregate steps.
//
// The Dispatcher is the concurrency core. It uses errgroup's limiter as a
// counting semaphore: submitting an item blocks while MaxConcurrency probes
// are outstanding, and a finished probe frees its slot for the next item at
// once. Outcomes are collected under a mutex in completion order.
package pipeline
