// Command tlvdump decodes BER-TLV data, either given as hex or read from a
// smart card through a PC/SC reader.
//
//	tlvdump decode 6F 1A 84 0E ...
//	echo 6F1A840E... | tlvdump decode -
//	tlvdump -config tlvdump.toml uid
//	tlvdump read-block -block 4 -key FFFFFFFFFFFF
//	tlvdump pse
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ebfe/scard"
	"github.com/gregLibert/tlv-reader/pkg/iso7816"
	"github.com/gregLibert/tlv-reader/pkg/tlv"
	"github.com/rs/zerolog"
)

const usage = `usage: tlvdump [-config file] [-log-level level] <command> [flags]

commands:
  decode      decode hex given as arguments, or on stdin with "-"
  uid         print the UID of the card on the reader
  read-block  authenticate and read a MIFARE block
  pse         walk the EMV payment system directory
`

// connectFunc opens a card session. The returned func releases it.
type connectFunc func(cfg config, log zerolog.Logger) (iso7816.Transmitter, func(), error)

type app struct {
	cfg     config
	log     zerolog.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	connect connectFunc
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tlvdump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	configPath := fs.String("config", "", "path to a TOML config file")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg := defaultConfig()
	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "tlvdump: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	if *logLevel != "" {
		lvl, err := parseLevel(*logLevel)
		if err != nil {
			fmt.Fprintf(stderr, "tlvdump: -log-level: %v\n", err)
			return 2
		}
		cfg.LogLevel = lvl
	}

	a := &app{
		cfg:     cfg,
		log:     newLogger(stderr, cfg.LogLevel),
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		connect: connectCard,
	}
	tlv.SetLogger(a.log.With().Str("pkg", "tlv").Logger())

	if err := a.dispatch(fs.Arg(0), fs.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		a.log.Error().Err(err).Str("command", fs.Arg(0)).Msg("command failed")
		return 1
	}
	return 0
}

func (a *app) dispatch(name string, args []string) error {
	switch name {
	case "decode":
		return a.runDecode(args)
	case "uid":
		return a.runUID(args)
	case "read-block":
		return a.runReadBlock(args)
	case "pse":
		return a.runPSE(args)
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "tlvdump").Logger()
}

// connectCard opens the configured PC/SC reader.
func connectCard(cfg config, log zerolog.Logger) (iso7816.Transmitter, func(), error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, nil, fmt.Errorf("establish PC/SC context: %w", err)
	}

	release := func() {
		if err := ctx.Release(); err != nil {
			log.Warn().Err(err).Msg("failed to release PC/SC context")
		}
	}

	readers, err := ctx.ListReaders()
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("list readers: %w", err)
	}

	reader, err := pickReader(readers, cfg)
	if err != nil {
		release()
		return nil, nil, err
	}
	log.Info().Str("reader", reader).Msg("using reader")

	card, err := ctx.Connect(reader, scard.ShareShared, cfg.Protocol)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("connect to %q: %w", reader, err)
	}

	return card, func() {
		if err := card.Disconnect(scard.LeaveCard); err != nil {
			log.Warn().Err(err).Msg("failed to disconnect card")
		}
		release()
	}, nil
}
