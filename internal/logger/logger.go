// Package logger holds the process-wide structured logger.
package logger

import (
	"go.uber.org/zap"
)

// Log is a no-op logger until Init is called.
var Log = zap.NewNop()

// Init replaces Log with a production or development zap logger.
func Init(development bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if development {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = Log.Sync()
}
