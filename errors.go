package main

import "errors"

// 哨兵错误, 调用方用 errors.Is 判断, 上下文用 %w 包装附加

// ErrNameEncoding 文件名不是合法 UTF-8, 无法作为文本处理
var ErrNameEncoding = errors.New("pyramider: filename is not valid utf-8")

// ErrPatternParse 文件名匹配坐标模式但坐标无法解析为整数
var ErrPatternParse = errors.New("pyramider: coordinate capture is not a valid integer")

// ErrEmptyInput 自动边界模式下没有任何文件匹配坐标模式
var ErrEmptyInput = errors.New("pyramider: no base images matched the coordinate pattern")

// ErrNonSquareGrid 边界宽高不等, 合成画布要求方形网格
var ErrNonSquareGrid = errors.New("pyramider: bounding box is not square")

// ErrBadConfig 配置取值非法
var ErrBadConfig = errors.New("pyramider: invalid configuration")
