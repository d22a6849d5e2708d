package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lifecoach/internal/logging"
	"lifecoach/internal/state"
)

// checkInRulesFile is the YAML shape of a rules file:
//
//	rules:
//	  - name: morning
//	    keywords: [morning, wake]
//	    prefix: "☀️ "
type checkInRulesFile struct {
	Rules []struct {
		Name     string   `yaml:"name"`
		Keywords []string `yaml:"keywords"`
		Prefix   string   `yaml:"prefix"`
	} `yaml:"rules"`
}

// LoadCheckInRules reads a YAML rules file and returns label rules for the
// store. An empty path or missing file yields the compiled-in defaults.
func LoadCheckInRules(path string) ([]state.LabelRule, error) {
	if path == "" {
		return state.DefaultLabelRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.BootDebug("check-in rules file %s not found, using defaults", path)
			return state.DefaultLabelRules(), nil
		}
		return nil, fmt.Errorf("read check-in rules: %w", err)
	}

	var file checkInRulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse check-in rules %s: %w", path, err)
	}
	if len(file.Rules) == 0 {
		return state.DefaultLabelRules(), nil
	}

	rules := make([]state.LabelRule, 0, len(file.Rules))
	for _, r := range file.Rules {
		if len(r.Keywords) == 0 {
			continue
		}
		rules = append(rules, state.LabelRule{Name: r.Name, Keywords: r.Keywords, Prefix: r.Prefix})
	}
	if len(rules) == 0 {
		return state.DefaultLabelRules(), nil
	}
	logging.Boot("loaded %d check-in rules from %s", len(rules), path)
	return rules, nil
}
