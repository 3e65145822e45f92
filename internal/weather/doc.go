// Package weather turns a free-text address into a formatted weather report
// via an iterative, stateless disambiguation protocol: ambiguous addresses
// yield a numbered candidate menu, and the caller resubmits the chosen
// display name as a fresh query.
package weather
