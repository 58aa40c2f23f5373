package main

import (
	"fmt"
	"os"

	"github.com/to404hanga/online_judge_engine/model"
	"gopkg.in/yaml.v3"
)

// caseFile is the on-disk problem description judgectl judges against:
//
//	timeLimitMs: 1000
//	stubs:
//	  cpp: "int add(int a, int b) {"
//	cases:
//	  - input: "1\n2\n"
//	    output: "3"
type caseFile struct {
	TimeLimitMs int64                     `yaml:"timeLimitMs"`
	Stubs       map[model.Language]string `yaml:"stubs"`
	Cases       []model.TestCase          `yaml:"cases"`
}

func loadCaseFile(path string) (*caseFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case file: %w", err)
	}
	var cf caseFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse case file %s: %w", path, err)
	}
	if cf.TimeLimitMs <= 0 {
		cf.TimeLimitMs = 1000
	}
	return &cf, nil
}
