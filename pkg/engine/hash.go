package engine

import "math"

// splitmix64 确定性的64位混合函数
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// unitFloat 由(seed, seq, idx)确定性地得到[0,1)内的浮点数
func unitFloat(seed, seq int64, idx int) float64 {
	x := splitmix64(uint64(seed))
	x = splitmix64(x ^ uint64(seq))
	x = splitmix64(x ^ uint64(idx))

	// 取高53位
	v := float64(x>>11) / (1 << 53)
	if v >= 1 {
		return math.Nextafter(1, 0)
	}
	return v
}
