package logger

import (
	"go.uber.org/zap"
)

var log *zap.Logger

// Init инициализирует глобальный логгер.
// isDev=true — человекочитаемый вывод для разработки, иначе production JSON.
func Init(isDev bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if isDev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	log = l
	return nil
}

// L возвращает глобальный логгер. Паникует, если Init не был вызван.
func L() *zap.Logger {
	if log == nil {
		panic("logger is not initialized, call logger.Init first")
	}
	return log
}

func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
