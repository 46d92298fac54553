// Package aggregate folds probe outcomes into the final audit report.
//
// Aggregation is a pure function of its input. It never performs I/O and is
// run exactly once, after the dispatcher has produced an outcome for every
// work item. The order of URLs inside a failure list follows the order of the
// outcomes passed in; WithStableOrder reorders them by work item sequence so
// repeated runs over the same export produce identical reports.
package aggregate
