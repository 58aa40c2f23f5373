package ioc

import (
	"log"

	"github.com/spf13/viper"
	"github.com/to404hanga/online_judge_engine/cmd/master/config"
	"github.com/to404hanga/pkg404/cachex/lru"
)

const defaultProblemCacheSize = 256

// InitLRUCache builds the problem definition cache of the dispatcher.
func InitLRUCache() *lru.Cache {
	var cfg config.LRUConfig
	err := viper.UnmarshalKey(cfg.Key(), &cfg)
	if err != nil {
		log.Panicf("unmarshal lru config failed, err: %v", err)
	}
	if cfg.Size <= 0 {
		cfg.Size = defaultProblemCacheSize
	}

	cache, err := lru.NewSimpleLRU(cfg.Size)
	if err != nil {
		log.Panicf("init lru failed, err: %v", err)
	}

	return cache
}
