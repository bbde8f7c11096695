// Package cache stores model replies so that re-analysing the same log
// does not call the provider again. Nothing here is durable.
package cache
