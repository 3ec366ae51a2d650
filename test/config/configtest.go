package config

import (
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
)

// MockConfigHook is an in-memory config.Hook. Values backs every getter and
// setter; the optional mock funcs replace single methods.
type MockConfigHook struct {
	Values map[string]any

	GetBoolMock  func(key string) bool
	BindFlagMock func(string, *pflag.Flag) error
	SaveMock     func() error
}

func (m *MockConfigHook) Save() error {
	if m.SaveMock != nil {
		return m.SaveMock()
	}
	return nil
}

func (m *MockConfigHook) GetString(key string) string {
	return cast.ToString(m.Get(key))
}

func (m *MockConfigHook) GetBool(key string) bool {
	if m.GetBoolMock != nil {
		return m.GetBoolMock(key)
	}
	return cast.ToBool(m.Get(key))
}

func (m *MockConfigHook) GetInt(key string) int {
	return cast.ToInt(m.Get(key))
}

func (m *MockConfigHook) GetIntOrElse(key string, orElse int) int {
	if m.Get(key) == nil {
		return orElse
	}
	return m.GetInt(key)
}

func (m *MockConfigHook) BindFlag(configPath string, f *pflag.Flag) error {
	if m.BindFlagMock != nil {
		return m.BindFlagMock(configPath, f)
	}
	return nil
}

func (m *MockConfigHook) GetProfile() string {
	return "default"
}

func (m *MockConfigHook) GetStringSlice(key string) []string {
	return cast.ToStringSlice(m.Get(key))
}

func (m *MockConfigHook) SetString(k string, v string) {
	m.Set(k, v)
}

func (m *MockConfigHook) Set(k string, v any) {
	if m.Values == nil {
		m.Values = map[string]any{}
	}
	m.Values[k] = v
}

func (m *MockConfigHook) Get(k string) any {
	return m.Values[k]
}

func (m *MockConfigHook) GetPath() string {
	return ""
}
