package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It discards everything until Init is called.
var Log = zap.NewNop()

// Init points Log at a JSON log file. The terminal is left to the game UI.
func Init(logFilePath string, verbose bool) error {
	file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), level)

	Log = zap.New(core, zap.AddCaller())
	Log.Info("Logger initialized.", zap.String("path", logFilePath))
	return nil
}

// Nop silences Log again.
func Nop() {
	Log = zap.NewNop()
}

// Sync flushes buffered entries. Call it on exit.
func Sync() {
	_ = Log.Sync()
}
