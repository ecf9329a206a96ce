package config

import (
	"fmt"
	"time"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AnalyticsHitsKey returns the hash holding all-time hit counters per path
func (r *CacheKeyStruct) AnalyticsHitsKey() string {
	return "analytics:hits"
}

// AnalyticsDailyHitsKey returns the hash holding hit counters per path for one day
func (r *CacheKeyStruct) AnalyticsDailyHitsKey(day time.Time) string {
	return fmt.Sprintf("analytics:hits:%s", day.UTC().Format("2006-01-02"))
}

// AnalyticsGoalsKey returns the hash holding goal counters per goal name
func (r *CacheKeyStruct) AnalyticsGoalsKey() string {
	return "analytics:goals"
}

var CacheKey = NewCacheKeyStruct()
