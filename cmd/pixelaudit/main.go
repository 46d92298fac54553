// Package main provides the entry point for the pixelaudit CLI.
//
// pixelaudit checks that the tracking-pixel URLs listed in an ad-delivery
// export still respond, and reports the failures grouped by campaign
// identifier.
//
// Usage:
//
//	pixelaudit audit impressions.csv
//	pixelaudit audit --json -o report.json export.sqlite
//
// See --help for all available options.
package main

func main() {
	Execute()
}
