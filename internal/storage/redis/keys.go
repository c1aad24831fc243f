package redis

import (
	"fmt"
	"strings"
)

// Key prefix for all tracker data
const keyPrefix = "hptracker"

// valueKey returns the Redis key holding the value at path
func valueKey(path string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, strings.Trim(path, "/"))
}

// indexKey returns the Redis key for the SET of child names under dir
func indexKey(dir string) string {
	return fmt.Sprintf("%s:idx:%s", keyPrefix, dir)
}

// channelKey returns the pub/sub channel announcing writes under dir
func channelKey(dir string) string {
	return fmt.Sprintf("%s:chan:%s", keyPrefix, dir)
}

func childPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
