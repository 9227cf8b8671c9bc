//go:build !brushdebug

package brush

const debugChecks = false
