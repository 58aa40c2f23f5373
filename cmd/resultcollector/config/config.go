package config

type ResultCollectorConfig struct {
	Topic string `yaml:"topic"` // 默认 oj_judge_result
}

func (ResultCollectorConfig) Key() string {
	return "resultCollector"
}
