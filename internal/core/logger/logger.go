package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotate 文件输出与切割；Filename 为空表示只写 stdout
type Rotate struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Options struct {
	Service string    // 写入每条日志的 service 字段，如 "user-api"
	Level   string    // debug / info / warn / error，非法值按 info
	JSON    bool      // false 时用带颜色的控制台格式
	Console io.Writer // 控制台输出，默认 os.Stdout
	File    Rotate
	// 每秒同一消息前 N 条全记，之后每 N 条记一次；0 关闭采样
	Sampling int
}

// New 构建 logger；返回的 flush 在退出前调用
func New(opt Options) (*zap.Logger, func()) {
	lvl := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if err := lvl.UnmarshalText([]byte(opt.Level)); err != nil {
		lvl.SetLevel(zapcore.InfoLevel)
	}

	enc := encoder(opt.JSON)
	out := opt.Console
	if out == nil {
		out = os.Stdout
	}
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(out)), lvl)}

	var rot *lumberjack.Logger
	if opt.File.Filename != "" {
		rot = &lumberjack.Logger{
			Filename:   opt.File.Filename,
			MaxSize:    atLeast(opt.File.MaxSizeMB, 1),
			MaxBackups: atLeast(opt.File.MaxBackups, 0),
			MaxAge:     atLeast(opt.File.MaxAgeDays, 0),
			Compress:   opt.File.Compress,
		}
		// 文件里永远是 JSON，方便采集
		cores = append(cores, zapcore.NewCore(encoder(true), zapcore.AddSync(rot), lvl))
	}

	core := zapcore.NewTee(cores...)
	if opt.Sampling > 0 {
		core = zapcore.NewSamplerWithOptions(core, time.Second, opt.Sampling, opt.Sampling)
	}

	zo := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if opt.Service != "" {
		zo = append(zo, zap.Fields(zap.String("service", opt.Service)))
	}
	l := zap.New(core, zo...)

	return l, func() {
		_ = l.Sync()
		if rot != nil {
			_ = rot.Close()
		}
	}
}

func encoder(json bool) zapcore.Encoder {
	if json {
		c := zap.NewProductionEncoderConfig()
		c.TimeKey = "ts"
		c.EncodeTime = zapcore.ISO8601TimeEncoder
		c.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(c)
	}
	c := zap.NewDevelopmentEncoderConfig()
	c.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	c.EncodeLevel = zapcore.CapitalColorLevelEncoder
	c.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(c)
}

func atLeast(v, floor int) int {
	if v < floor {
		return floor
	}
	return v
}

// lineWriter 把每次 Write 当成一条日志（gin 的 DefaultWriter 用）
type lineWriter struct {
	l   *zap.Logger
	lvl zapcore.Level
}

func (w lineWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\r\n")
	if msg == "" {
		return len(p), nil
	}
	if ce := w.l.Check(w.lvl, msg); ce != nil {
		ce.Write()
	}
	return len(p), nil
}

func ToWriter(l *zap.Logger, lvl zapcore.Level) io.Writer {
	return lineWriter{l: l.WithOptions(zap.AddCallerSkip(1)), lvl: lvl}
}

// RedirectStdLog 全局 log 包输出改走 zap，返回还原函数
func RedirectStdLog(l *zap.Logger, lvl zapcore.Level) func() {
	undo, err := zap.RedirectStdLogAt(l, lvl)
	if err != nil {
		return func() {}
	}
	return undo
}
