package ioc

import (
	"log"

	"github.com/IBM/sarama"
	"github.com/spf13/viper"
	"github.com/to404hanga/online_judge_engine/cmd/resultcollector/config"
	"github.com/to404hanga/online_judge_engine/cmd/resultcollector/service"
	"github.com/to404hanga/online_judge_engine/constants"
	"github.com/to404hanga/online_judge_engine/ioc"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
	"gorm.io/gorm"
)

func InitResultCollectorConsumerGroup(client sarama.Client) sarama.ConsumerGroup {
	return ioc.InitConsumerGroup(client, service.ResultCollectorGroupID)
}

func InitResultCollectorService(l loggerv2.Logger, cg sarama.ConsumerGroup, db *gorm.DB) *service.ResultCollectorService {
	var cfg config.ResultCollectorConfig
	if err := viper.UnmarshalKey(cfg.Key(), &cfg); err != nil {
		log.Panicf("unmarshal result collector config failed, err: %v", err)
	}
	if cfg.Topic == "" {
		cfg.Topic = constants.JudgeResultTopic
	}
	return service.NewResultCollectorService(l, cg, db, cfg.Topic)
}
