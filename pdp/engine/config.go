package engine

// Accessors for the variant-shaped policy Config maps. Policies are stored as
// JSON, so numbers come back as float64 and lists as []interface{}; these
// helpers normalize both the decoded and the directly-constructed forms.

func configString(cfg map[string]interface{}, key string) string {
	if v, ok := cfg[key].(string); ok {
		return v
	}
	return ""
}

func configBool(cfg map[string]interface{}, key string) bool {
	v, _ := cfg[key].(bool)
	return v
}

func configFloat(cfg map[string]interface{}, key string) (float64, bool) {
	if v, ok := cfg[key]; ok {
		return toFloat(v)
	}
	return 0, false
}

func configInt(cfg map[string]interface{}, key string) (int, bool) {
	f, ok := configFloat(cfg, key)
	return int(f), ok
}

func configMap(cfg map[string]interface{}, key string) map[string]interface{} {
	if v, ok := cfg[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}

func configStringSlice(cfg map[string]interface{}, key string) []string {
	switch v := cfg[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func configIntSlice(cfg map[string]interface{}, key string) []int {
	switch v := cfg[key].(type) {
	case []int:
		return v
	case []interface{}:
		out := make([]int, 0, len(v))
		for _, item := range v {
			if f, ok := toFloat(item); ok {
				out = append(out, int(f))
			}
		}
		return out
	default:
		return nil
	}
}

func configMapSlice(cfg map[string]interface{}, key string) []map[string]interface{} {
	switch v := cfg[key].(type) {
	case []map[string]interface{}:
		return v
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
