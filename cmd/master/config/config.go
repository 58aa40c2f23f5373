package config

// LRUConfig sizes the dispatcher's problem cache. Problems change rarely and
// carry their test cases, so the cache is what keeps the database off the
// hot path.
type LRUConfig struct {
	Size int `yaml:"size"` // 缓存中可容纳的题目数
}

func (LRUConfig) Key() string {
	return "lru"
}
