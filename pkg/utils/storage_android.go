//go:build android

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureStorageDir 在 gdata 初始化前创建 /data/data/{package}/saves 并验证可写
func EnsureStorageDir() error {
	dir := GetStoragePath()
	if dir == "" {
		return fmt.Errorf("cannot detect Android package name")
	}
	saves := filepath.Join(dir, "saves")
	if err := os.MkdirAll(saves, 0755); err != nil {
		return fmt.Errorf("create %s: %w", saves, err)
	}

	marker := filepath.Join(saves, ".writable")
	if err := os.WriteFile(marker, nil, 0644); err != nil {
		return fmt.Errorf("%s is not writable: %w", saves, err)
	}
	return os.Remove(marker)
}

// GetStoragePath 应用数据目录；包名从 /proc/self/cmdline 读取
func GetStoragePath() string {
	data, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return ""
	}
	name := strings.TrimSpace(strings.ReplaceAll(string(data), "\x00", ""))
	if name == "" {
		return ""
	}
	return filepath.Join("/data/data", name)
}
