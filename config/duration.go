package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration 可以用 "10s" 这类字符串书写的 time.Duration
//
// JSON 中接受字符串或纳秒整数，同时实现 flag.Value，
// 命令行与配置文件使用同一种写法。
type Duration time.Duration

// UnmarshalJSON 实现 json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return d.Set(s)
	}

	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*d = Duration(n)
		return nil
	}

	return fmt.Errorf("duration must be a string (e.g., \"30s\") or number (nanoseconds)")
}

// MarshalJSON 实现 json.Marshaler，输出字符串形式
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Set 实现 flag.Value
func (d *Duration) Set(s string) error {
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration 返回底层的 time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String 实现 fmt.Stringer 与 flag.Value
func (d Duration) String() string {
	return time.Duration(d).String()
}
