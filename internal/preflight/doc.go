// Package preflight provides readiness checks for the external programs and
// filesystem paths subforge depends on.
//
// The generate command calls RunAll before extracting any audio so a run
// fails fast instead of after the first chunk. The doctor command renders the
// same checks together with CheckSystemDeps.
package preflight
