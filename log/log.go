package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Plugin = zapcore.Core

/*
输入一个zapcore.Core日志核心和可选的zap选项，输出一个配置好的logger

先应用DefaultOption()返回的默认选项，再追加调用方传入的选项，最后用zap.New()创建logger
*/
func NewLogger(plugin zapcore.Core, options ...zap.Option) *zap.Logger {
	return zap.New(plugin, append(DefaultOption(), options...)...)
}

/*
输入一个日志写入目标和日志级别过滤器，输出一个zapcore.Core实例

使用DefaultEncoder()返回的JSON编码器，将写入目标和级别过滤器组合成日志核心
*/
func NewPlugin(writer zapcore.WriteSyncer, enabler zapcore.LevelEnabler) Plugin {
	return zapcore.NewCore(DefaultEncoder(), writer, enabler)
}

/*
输入一个日志级别过滤器，输出一个绑定到标准错误的zapcore.Core实例

命令行模式下标准输出留给结果表格，日志只写到标准错误
*/
func NewStderrPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(zapcore.Lock(zapcore.AddSync(os.Stderr)), enabler)
}

// lumberjack没有暴露Sync，额外返回closer，进程退出前必须Close才能保证内容落盘
/*
输入日志文件路径和日志级别过滤器，输出一个zapcore.Core实例和一个io.Closer

在默认轮转配置上设置文件名，创建绑定到该文件的日志核心，并把轮转器作为closer返回
*/
func NewFilePlugin(filePath string, enabler zapcore.LevelEnabler) (Plugin, io.Closer) {
	var writer = DefaultLumberjackLogger()
	writer.Filename = filePath
	return NewPlugin(zapcore.AddSync(writer), enabler), writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

/*
输入日志级别字符串和日志文件路径，输出logger、closer和error

级别解析失败时返回错误；filePath为空时只写标准错误，否则同时写入轮转文件，两个插件通过zapcore.NewTee合并
*/
func Setup(level string, filePath string) (*zap.Logger, io.Closer, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	plugins := []Plugin{NewStderrPlugin(lvl)}
	var closer io.Closer = nopCloser{}
	if filePath != "" {
		var p Plugin
		p, closer = NewFilePlugin(filePath, lvl)
		plugins = append(plugins, p)
	}
	return NewLogger(zapcore.NewTee(plugins...)), closer, nil
}
