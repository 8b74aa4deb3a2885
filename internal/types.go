package internal

import (
	"sjsage522/newsscraper/services/cache"
	"sjsage522/newsscraper/services/publisher"
)

// Dependencies holds all service dependencies
type Dependencies struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup releases the dependencies that hold connections
func (d *Dependencies) Cleanup() {
	if d.Publisher != nil {
		d.Publisher.Close()
	}
}
