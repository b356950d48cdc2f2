package cache

import "strings"

const keyPrefix = "lerg:page:"

// Key returns the Redis key for a page path. The path carries its query
// string already in canonical form (url.Values.Encode sorts parameters),
// so equal logical requests map to equal keys.
func Key(path string) string {
	return keyPrefix + strings.Trim(path, "/")
}
