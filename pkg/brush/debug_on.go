//go:build brushdebug

package brush

// debugChecks enables full validation after every public mutation.
// Build with: go build -tags=brushdebug
const debugChecks = true
