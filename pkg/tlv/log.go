package tlv

import (
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var diagLogger atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(os.Stderr).
		Level(zerolog.WarnLevel).
		With().Timestamp().Str("pkg", "tlv").
		Logger()
	diagLogger.Store(&l)
}

// SetLogger replaces the logger used to report non-fatal misuse, such as a
// part lookup on a primitive node.
func SetLogger(l zerolog.Logger) {
	diagLogger.Store(&l)
}

func diagnostics() *zerolog.Logger {
	return diagLogger.Load()
}
