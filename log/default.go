package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

/*
无输入，输出一个zap编码器配置

在生产环境默认编码器配置的基础上，把日志级别改为大写格式，时间改为ISO8601格式
*/
func DefaultEncoderConfig() zapcore.EncoderConfig {
	var encoderConfig = zap.NewProductionEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return encoderConfig
}

// 使用DefaultEncoderConfig()生成JSON编码器
func DefaultEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(DefaultEncoderConfig())
}

/*
无输入，输出一组zap选项

记录调用者的文件名和行号，仅在DPanic及以上级别附带堆栈
*/
func DefaultOption() []zap.Option {
	var stackTraceLevel zap.LevelEnablerFunc = func(level zapcore.Level) bool {
		return level >= zapcore.DPanicLevel
	}
	return []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(stackTraceLevel),
	}
}

/*
无输入，输出一个预配置的日志轮转器

单次提取运行产生的日志量很小，单个文件上限设为20MB，保留最近5个文件，启用本地时间和压缩
*/
func DefaultLumberjackLogger() *lumberjack.Logger {
	return &lumberjack.Logger{
		MaxSize:    20,
		MaxBackups: 5,
		LocalTime:  true,
		Compress:   true,
	}
}
