package types

// RandomSource 均匀分布随机数来源
// *rand.Rand 直接满足该接口；测试中可以注入脚本化的实现
type RandomSource interface {
	// Float64 返回 [0.0, 1.0) 区间的均匀随机数
	Float64() float64
	// Intn 返回 [0, n) 区间的均匀随机整数
	Intn(n int) int
}
