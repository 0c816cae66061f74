package main

import (
	// 额外的底图解码器, imaging 自带 png/jpeg/gif/tiff/bmp
	_ "golang.org/x/image/webp"
)

func main() {
	// 初始化控制台
	InitFlag()
	// 开始安全退出任务
	InitSafeExit()
	// 初始化配置
	InitConf(configPath)
	// 初始化日志
	InitLog()
	// 开始任务
	InitTask()
}
