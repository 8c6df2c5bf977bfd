package tools

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reads a YAML file whose keys are long flag names. Lists are joined with
// commas so that vectors can be written as [x, y, z].
func LoadConfigFile(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			continue
		case map[string]interface{}:
			return nil, fmt.Errorf("config %s: key %q must not be a mapping", path, key)
		case []interface{}:
			items := make([]string, len(v))
			for i, item := range v {
				items[i] = fmt.Sprint(item)
			}
			values[key] = strings.Join(items, ",")
		default:
			values[key] = fmt.Sprint(v)
		}
	}
	return values, nil
}

// Sets the flags of flagCommand that were not given on the command line.
// Unknown keys are rejected.
func ApplyConfig(flagCommand *flag.FlagSet, values map[string]string) error {
	explicit := make(map[string]bool)
	flagCommand.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		f := flagCommand.Lookup(key)
		if f == nil {
			return fmt.Errorf("unknown config key %q", key)
		}
		if explicit[key] || isShorthandSet(flagCommand, f, explicit) {
			continue
		}
		if err := flagCommand.Set(key, values[key]); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// Reports whether the flag was set through its shorthand, both names sharing
// the same value
func isShorthandSet(flagCommand *flag.FlagSet, f *flag.Flag, explicit map[string]bool) bool {
	set := false
	flagCommand.VisitAll(func(other *flag.Flag) {
		if other.Name != f.Name && explicit[other.Name] && other.Value == f.Value {
			set = true
		}
	})
	return set
}
