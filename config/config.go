// Package config 站点配置信息
package config

// Initialize 触发本目录下各配置文件的 init 加载
func Initialize() {
	// 各配置文件通过 init() 注册，导入本包即可生效
}
