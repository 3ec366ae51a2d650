package util

import (
	"gopkg.in/yaml.v3"
)

// ApplyDefaults fills the unset fields of obj from defaults. A field counts
// as set when it survives YAML marshalling, so fields tagged omitempty and
// left at their zero value take the default.
func ApplyDefaults[T any](defaults T, obj *T) error {
	var withDefaults T

	b, err := yaml.Marshal(defaults)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, &withDefaults); err != nil {
		return err
	}

	b2, err := yaml.Marshal(obj)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b2, &withDefaults); err != nil {
		return err
	}

	*obj = withDefaults
	return nil
}
