package redis

import (
	"fmt"
	"net/url"

	"github.com/MrSnakeDoc/curator/internal/domain"
)

const (
	// KeyPrefix namespaces every key written by the store
	KeyPrefix = "curator:"
	// KeyPrefixJob is the prefix for bulk-pass status records
	KeyPrefixJob = KeyPrefix + "job:"
	// KeyFinishedJobs is the sorted set of finished job IDs scored by finish time
	KeyFinishedJobs = KeyPrefix + "jobs:finished"
)

// scopePrefix returns the key prefix for one (user, persona) scope.
// Both parts are query-escaped so a ':' inside an ID cannot shift the
// boundary between them.
func scopePrefix(scope domain.Scope) string {
	return fmt.Sprintf("%s%s:%s:", KeyPrefix, url.QueryEscape(scope.UserID), url.QueryEscape(scope.Persona))
}

// ResourceKey returns the Redis key for a resource
func ResourceKey(scope domain.Scope, id string) string {
	return scopePrefix(scope) + "resource:" + id
}

// AllResourcesKey returns the key for the set of resource IDs in scope
func AllResourcesKey(scope domain.Scope) string {
	return scopePrefix(scope) + "resources"
}

// TagsKey returns the hash of tag ID -> tag JSON in scope
func TagsKey(scope domain.Scope) string {
	return scopePrefix(scope) + "tags"
}

// TagNamesKey returns the hash of tag name -> tag ID in scope
func TagNamesKey(scope domain.Scope) string {
	return scopePrefix(scope) + "tags:byname"
}

// FoldersKey returns the hash of folder ID -> folder JSON in scope
func FoldersKey(scope domain.Scope) string {
	return scopePrefix(scope) + "folders"
}

// FolderNamesKey returns the hash of folder name -> folder ID in scope
func FolderNamesKey(scope domain.Scope) string {
	return scopePrefix(scope) + "folders:byname"
}

// JobKey returns the Redis key for a job status record
func JobKey(id string) string {
	return KeyPrefixJob + id
}

// ExtractJobID extracts the job ID from a Redis key
func ExtractJobID(key string) (string, error) {
	if len(key) <= len(KeyPrefixJob) {
		return "", fmt.Errorf("invalid job key: %s", key)
	}
	return key[len(KeyPrefixJob):], nil
}
