package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"finaudit-be/pkg/advisor"
)

// ContextRepository keeps the full audit context of recent analyses so a
// chat follow-up can reference a report by id without resending it. Purely
// in-process and TTL-bound; nothing here survives a restart.
type ContextRepository struct {
	cache *cache.Cache
}

func NewContextRepository() *ContextRepository {
	// Contexts expire after 1 hour; expired entries purge every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ContextRepository{
		cache: c,
	}
}

func (r *ContextRepository) Save(reportId string, cc *advisor.ChatContext) {
	r.cache.Set(reportId, cc, cache.DefaultExpiration)
}

func (r *ContextRepository) Get(reportId string) (*advisor.ChatContext, bool) {
	if x, found := r.cache.Get(reportId); found {
		return x.(*advisor.ChatContext), true
	}
	return nil, false
}

func (r *ContextRepository) Delete(reportId string) {
	r.cache.Delete(reportId)
}
