package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ActiveAssessmentKey holds the id of the currently active assessment
func (r *CacheKeyStruct) ActiveAssessmentKey() string {
	return "catalog:assessment:active"
}

// AssessmentKey returns the cache key for an assessment with its section tree
func (r *CacheKeyStruct) AssessmentKey(assessmentID string) string {
	return fmt.Sprintf("catalog:assessment:%s", assessmentID)
}

// SectionKey returns the cache key for a section with its content and questions
func (r *CacheKeyStruct) SectionKey(sectionID string) string {
	return fmt.Sprintf("catalog:section:%s", sectionID)
}

// QuestionKey returns the cache key for a single question
func (r *CacheKeyStruct) QuestionKey(questionID string) string {
	return fmt.Sprintf("catalog:question:%s", questionID)
}

// RateLimitKey returns the fixed-window counter key for a client and route
func (r *CacheKeyStruct) RateLimitKey(route, clientIP string, window int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", route, clientIP, window)
}

var CacheKey = NewCacheKeyStruct()
