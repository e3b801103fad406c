// Package preflight provides readiness checks for the AutoMV checkout, the
// python interpreter, and the saved credentials.
//
// The CLI "automv doctor" command renders RunAll's results, and the HTTP
// health endpoint reports them. Checks never mutate anything; the patch check
// runs the patcher in dry-run mode.
package preflight
