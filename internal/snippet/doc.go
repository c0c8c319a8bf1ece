// Package snippet cuts highlighted context windows out of page text around
// search match positions.
package snippet
