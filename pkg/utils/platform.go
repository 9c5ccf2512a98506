//go:build !mobile

package utils

import "os"

// IsMobile 检测当前是否在移动设备上运行
// 桌面端编译时返回 false，设置 TD_MOBILE_EMULATE=1 可强制启用移动模式
func IsMobile() bool {
	return os.Getenv("TD_MOBILE_EMULATE") == "1"
}
