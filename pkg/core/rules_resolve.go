package core

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

func resolveRuleParams(logger *log.Logger, event RuleEvent, vars []string, varMap map[string]string) (map[string]interface{}, []string) {
	if logger == nil {
		logger = log.Default()
	}
	if len(vars) == 0 {
		return event.Data, nil
	}

	params := make(map[string]interface{}, len(vars))
	missing := make([]string, 0)
	for _, name := range vars {
		if path, ok := varMap[name]; ok {
			value, err := resolveJSONPath(event, path)
			if err != nil {
				missing = append(missing, path)
				logger.Printf("rule warn: jsonpath error path=%s err=%v", path, err)
				params[name] = nil
			} else {
				if value == nil {
					missing = append(missing, path)
				}
				params[name] = value
			}
			continue
		}
		if value, ok := event.Data[name]; ok {
			params[name] = value
		} else {
			missing = append(missing, name)
			params[name] = nil
		}
	}
	return params, missing
}

func resolveJSONPath(event RuleEvent, path string) (interface{}, error) {
	if event.RawObject != nil {
		value, err := jsonpath.Get(path, event.RawObject)
		if err != nil {
			return nil, err
		}
		return normalizeJSONPathResult(value), nil
	}
	if len(event.RawPayload) == 0 {
		if event.Data != nil {
			value, err := jsonpath.Get(path, event.Data)
			if err != nil {
				return nil, err
			}
			return normalizeJSONPathResult(value), nil
		}
		return nil, nil
	}
	var raw interface{}
	if err := json.Unmarshal(event.RawPayload, &raw); err != nil {
		return nil, err
	}
	value, err := jsonpath.Get(path, raw)
	if err != nil {
		return nil, err
	}
	return normalizeJSONPathResult(value), nil
}

func ruleIDFromParts(when, action string) string {
	key := strings.TrimSpace(when) + "|" + strings.TrimSpace(action)
	sum := sha1.Sum([]byte(key))
	return "rule_" + hex.EncodeToString(sum[:])
}

func normalizeJSONPathResult(value interface{}) interface{} {
	items, ok := value.([]interface{})
	if !ok {
		return value
	}
	if len(items) == 0 {
		return nil
	}
	if len(items) == 1 {
		return items[0]
	}
	return items
}
