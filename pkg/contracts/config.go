package contracts

import "time"

type Config interface {
	Has(key string) bool

	Get(key string) any

	GetString(key string, defaultVal ...string) string

	GetInt(key string, defaultVal ...int) int

	GetBool(key string, defaultVal ...bool) bool

	GetDuration(key string, defaultVal ...time.Duration) time.Duration

	GetStringSlice(key string) []string

	GetSub(key string) (Config, bool)

	All() map[string]any
}
