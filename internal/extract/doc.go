// Package extract turns parsed export rows into probe work items.
//
// Each row carries an identifier column and a free-form field that should
// hold a JSON array of pixel URLs. Real exports contain NULLs, empty lists
// and at least one known malformed producer, so extraction never fails:
// a field that cannot be understood simply yields no work items.
//
// The only repair performed is for a JSON array whose first string lost its
// opening quote (for example `[http://x.com"]`). It is detected by the
// second character being 'h' and fixed by inserting the missing quote.
// No other repair is attempted.
package extract
