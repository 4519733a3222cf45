package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shuldan/featurehub/pkg/contracts"
)

// MapConfig reads nested maps with dotted paths ("sources.redis.addr").
type MapConfig struct {
	values map[string]any
}

var _ contracts.Config = (*MapConfig)(nil)

func (c *MapConfig) Has(key string) bool {
	_, ok := c.find(key)
	return ok
}

func (c *MapConfig) Get(key string) any {
	value, _ := c.find(key)
	return value
}

func (c *MapConfig) GetString(key string, defaultVal ...string) string {
	v, ok := c.find(key)
	if !ok {
		return getFirst(defaultVal)
	}
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func (c *MapConfig) GetInt(key string, defaultVal ...int) int {
	v, ok := c.find(key)
	if !ok {
		return getFirst(defaultVal)
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		if n < int64(math.MinInt) || n > int64(math.MaxInt) {
			return getFirst(defaultVal)
		}
		return int(n)
	case uint64:
		if n > uint64(math.MaxInt) {
			return getFirst(defaultVal)
		}
		return int(n)
	case float64:
		if n < float64(math.MinInt) || n > float64(math.MaxInt) {
			return getFirst(defaultVal)
		}
		return int(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return getFirst(defaultVal)
}

func (c *MapConfig) GetBool(key string, defaultVal ...bool) bool {
	v, ok := c.find(key)
	if !ok {
		return getFirst(defaultVal)
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(b) {
		case "true", "1", "on", "yes", "y":
			return true
		case "false", "0", "off", "no", "n":
			return false
		}
	case int:
		return b != 0
	case uint64:
		return b != 0
	case float64:
		return b != 0
	}
	return getFirst(defaultVal)
}

// GetDuration accepts Go duration strings ("1m30s") or a number of seconds.
func (c *MapConfig) GetDuration(key string, defaultVal ...time.Duration) time.Duration {
	v, ok := c.find(key)
	if !ok {
		return getFirst(defaultVal)
	}
	switch d := v.(type) {
	case time.Duration:
		return d
	case string:
		if parsed, err := time.ParseDuration(d); err == nil {
			return parsed
		}
	case int, int64, uint64, float64:
		return time.Duration(c.GetInt(key)) * time.Second
	}
	return getFirst(defaultVal)
}

func (c *MapConfig) GetStringSlice(key string) []string {
	v, ok := c.find(key)
	if !ok || v == nil {
		return nil
	}

	switch val := v.(type) {
	case []string:
		return val
	case []any:
		result := make([]string, len(val))
		for i, item := range val {
			result[i] = fmt.Sprintf("%v", item)
		}
		return result
	case string:
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	default:
		return []string{fmt.Sprintf("%v", v)}
	}
}

func (c *MapConfig) GetSub(key string) (contracts.Config, bool) {
	sub, ok := c.find(key)
	if !ok {
		return nil, false
	}
	if subMap := asStringMap(sub); subMap != nil {
		return NewMapConfig(subMap), true
	}
	return nil, false
}

func (c *MapConfig) All() map[string]any {
	return cloneMap(c.values)
}

func (c *MapConfig) find(path string) (any, bool) {
	var current any = c.values

	for _, k := range strings.Split(path, ".") {
		cur := asStringMap(current)
		if cur == nil {
			return nil, false
		}
		next, exists := cur[k]
		if !exists {
			return nil, false
		}
		current = next
	}

	return current, true
}

// Section returns the map stored under key, or an empty map. Keys inside the
// section are not split on dots, so module ids such as "acme.widget" survive.
func Section(cfg contracts.Config, key string) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	sub, ok := cfg.GetSub(key)
	if !ok {
		return map[string]any{}
	}
	return sub.All()
}

// StringMap is Section with every value rendered as a string.
func StringMap(cfg contracts.Config, key string) map[string]string {
	section := Section(cfg, key)
	result := make(map[string]string, len(section))
	for k, v := range section {
		result[k] = fmt.Sprintf("%v", v)
	}
	return result
}

func asStringMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		converted := make(map[string]any, len(m))
		for k, val := range m {
			converted[fmt.Sprintf("%v", k)] = val
		}
		return converted
	}
	return nil
}

func getFirst[T any](values []T) T {
	var zero T
	if len(values) > 0 {
		return values[0]
	}
	return zero
}

func cloneMap(m map[string]any) map[string]any {
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
