package utils

import (
	"crypto/md5"
	"encoding/hex"
)

// BytesMD5 计算字节数组MD5
func BytesMD5(data []byte) string {
	hash := md5.Sum(data)
	return hex.EncodeToString(hash[:])
}

// CacheKey 同一张图在不同参数下分别缓存
func CacheKey(md5, preset, settingsKey string) string {
	return md5 + ":" + preset + ":" + settingsKey
}
