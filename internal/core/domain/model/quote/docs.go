// Package quote models quote requests, the ranked options the rate
// calculator produces for them and the short-lived session that keeps those
// options until the customer picks one.
package quote
