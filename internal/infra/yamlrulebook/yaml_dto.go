package yamlrulebook

type yamlRulebook struct {
	Name         string              `yaml:"name"`
	DefaultTopic string              `yaml:"default_topic"`
	Vocabulary   map[string][]string `yaml:"vocabulary"`
	Topics       []yamlTopic         `yaml:"topics"`
}

type yamlTopic struct {
	Topic      string   `yaml:"topic"`
	Categories []string `yaml:"categories"`
}
