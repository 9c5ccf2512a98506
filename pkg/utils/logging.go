package utils

import (
	"io"
	"log"
)

// ConfigureLogging 非详细模式下丢弃日志输出
func ConfigureLogging(verbose bool) {
	if !verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}
}
