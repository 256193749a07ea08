package resolver

import "github.com/simult/webdiag/pkg/logger"

var (
	warningLogger logger.Logger = &logger.NullLogger{}
	debugLogger   logger.Logger = &logger.NullLogger{}
)

// SetLoggers takes the same loggers as the other packages. Lookups never fail hard and print no
// informational lines, so only warning and debug output is used.
func SetLoggers(_, warn, _, dbg logger.Logger) {
	warningLogger = warn
	debugLogger = dbg
}
