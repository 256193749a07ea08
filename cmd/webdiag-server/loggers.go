package main

import (
	"github.com/simult/webdiag/pkg/logger"
	"github.com/simult/webdiag/pkg/resolver"
	"github.com/simult/webdiag/pkg/server"
)

var (
	errorLogger   logger.Logger = &logger.NullLogger{}
	warningLogger logger.Logger = &logger.NullLogger{}
	infoLogger    logger.Logger = &logger.NullLogger{}
	debugLogger   logger.Logger = &logger.NullLogger{}
)

func setLoggers(l logger.Loggers) {
	errorLogger = l.Error
	warningLogger = l.Warning
	infoLogger = l.Info
	debugLogger = l.Debug

	server.SetLoggers(l.Error, l.Warning, l.Info, l.Debug)
	resolver.SetLoggers(l.Error, l.Warning, l.Info, l.Debug)
}
