package config

type JudgerWorkerConfig struct {
	XAutoClaimTimeoutMinutes int    `yaml:"xAutoClaimTimeoutMinutes"` // 消息 pending 超过该时长即被其他 worker 认领
	ResultTopic              string `yaml:"resultTopic"`
	ReadBlockSeconds         int    `yaml:"readBlockSeconds"`
}

func (JudgerWorkerConfig) Key() string {
	return "judgerWorker"
}
