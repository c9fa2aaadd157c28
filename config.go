package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ebfe/scard"
	"github.com/gregLibert/tlv-reader/pkg/emv"
	"github.com/gregLibert/tlv-reader/pkg/iso7816"
	"github.com/gregLibert/tlv-reader/pkg/tlv"
	"github.com/rs/zerolog"
)

type config struct {
	Reader     int
	ReaderName string
	Protocol   scard.Protocol
	MaxDepth   int
	LogLevel   zerolog.Level

	Mifare mifareConfig
	EMV    emvConfig
}

type mifareConfig struct {
	Key     []byte
	KeySlot byte
	Block   byte
	Length  int
}

type emvConfig struct {
	MaxRecords int
	AIDs       [][]byte
}

type fileConfig struct {
	Reader     int    `toml:"reader"`
	ReaderName string `toml:"reader_name"`
	Protocol   string `toml:"protocol"`
	MaxDepth   int    `toml:"max_depth"`
	LogLevel   string `toml:"log_level"`

	Mifare struct {
		Key     string `toml:"key"`
		KeySlot int    `toml:"key_slot"`
		Block   int    `toml:"block"`
		Length  int    `toml:"length"`
	} `toml:"mifare"`

	EMV struct {
		MaxRecords int      `toml:"max_records"`
		AIDs       []string `toml:"aids"`
	} `toml:"emv"`
}

func defaultConfig() config {
	return config{
		Protocol: scard.ProtocolT0 | scard.ProtocolT1,
		MaxDepth: tlv.DefaultMaxDepth,
		LogLevel: zerolog.InfoLevel,
		Mifare: mifareConfig{
			Key:    tlv.Hex("FFFFFFFFFFFF"),
			Block:  4,
			Length: 16,
		},
		EMV: emvConfig{
			MaxRecords: emv.DefaultMaxRecords,
		},
	}
}

// loadConfig reads a TOML file over the defaults. Keys absent from the file
// keep their default value.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load tlvdump config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}

	if meta.IsDefined("reader") {
		if raw.Reader < 0 {
			return config{}, fmt.Errorf("reader index must be >= 0, got %d", raw.Reader)
		}
		cfg.Reader = raw.Reader
	}

	if meta.IsDefined("reader_name") {
		cfg.ReaderName = strings.TrimSpace(raw.ReaderName)
	}

	if meta.IsDefined("protocol") {
		p, err := parseProtocol(raw.Protocol)
		if err != nil {
			return config{}, err
		}
		cfg.Protocol = p
	}

	if meta.IsDefined("max_depth") {
		if raw.MaxDepth < 1 {
			return config{}, fmt.Errorf("max_depth must be >= 1, got %d", raw.MaxDepth)
		}
		cfg.MaxDepth = raw.MaxDepth
	}

	if meta.IsDefined("log_level") {
		lvl, err := parseLevel(raw.LogLevel)
		if err != nil {
			return config{}, fmt.Errorf("parse log_level: %w", err)
		}
		cfg.LogLevel = lvl
	}

	if meta.IsDefined("mifare", "key") {
		key, err := tlv.ParseHex(raw.Mifare.Key)
		if err != nil {
			return config{}, fmt.Errorf("parse mifare.key: %w", err)
		}
		if len(key) != iso7816.MifareKeyLen {
			return config{}, fmt.Errorf("mifare.key must be %d bytes, got %d", iso7816.MifareKeyLen, len(key))
		}
		cfg.Mifare.Key = key
	}

	if meta.IsDefined("mifare", "key_slot") {
		if err := checkByte("mifare.key_slot", raw.Mifare.KeySlot); err != nil {
			return config{}, err
		}
		cfg.Mifare.KeySlot = byte(raw.Mifare.KeySlot)
	}

	if meta.IsDefined("mifare", "block") {
		if err := checkByte("mifare.block", raw.Mifare.Block); err != nil {
			return config{}, err
		}
		cfg.Mifare.Block = byte(raw.Mifare.Block)
	}

	if meta.IsDefined("mifare", "length") {
		if raw.Mifare.Length < 1 || raw.Mifare.Length > iso7816.MaxShortLe {
			return config{}, fmt.Errorf("mifare.length must be 1-%d, got %d", iso7816.MaxShortLe, raw.Mifare.Length)
		}
		cfg.Mifare.Length = raw.Mifare.Length
	}

	if meta.IsDefined("emv", "max_records") {
		if raw.EMV.MaxRecords < 1 {
			return config{}, fmt.Errorf("emv.max_records must be >= 1, got %d", raw.EMV.MaxRecords)
		}
		cfg.EMV.MaxRecords = raw.EMV.MaxRecords
	}

	if meta.IsDefined("emv", "aids") {
		aids, err := parseAIDs(raw.EMV.AIDs)
		if err != nil {
			return config{}, err
		}
		cfg.EMV.AIDs = aids
	}

	return cfg, nil
}

func parseProtocol(s string) (scard.Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return scard.ProtocolT0 | scard.ProtocolT1, nil
	case "t0", "t=0":
		return scard.ProtocolT0, nil
	case "t1", "t=1":
		return scard.ProtocolT1, nil
	default:
		return 0, fmt.Errorf("unknown protocol %q (want any, t0 or t1)", s)
	}
}

func parseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.NoLevel, errors.New("empty level")
	}
	return zerolog.ParseLevel(s)
}

func checkByte(name string, v int) error {
	if v < 0 || v > 0xFF {
		return fmt.Errorf("%s must be 0-255, got %d", name, v)
	}
	return nil
}

// AIDs are 5 to 16 bytes (ISO/IEC 7816-4 section 8.2.1.2).
func parseAIDs(in []string) ([][]byte, error) {
	out := make([][]byte, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		aid, err := tlv.ParseHex(s)
		if err != nil {
			return nil, fmt.Errorf("parse emv.aids: %w", err)
		}
		if len(aid) < 5 || len(aid) > 16 {
			return nil, fmt.Errorf("AID %X must be 5-16 bytes", aid)
		}
		out = append(out, aid)
	}
	return out, nil
}

var errNoReader = errors.New("no smart card reader found")

// pickReader chooses by name substring when reader_name is set, by index otherwise.
func pickReader(readers []string, cfg config) (string, error) {
	if len(readers) == 0 {
		return "", errNoReader
	}

	if cfg.ReaderName != "" {
		want := strings.ToLower(cfg.ReaderName)
		for _, r := range readers {
			if strings.Contains(strings.ToLower(r), want) {
				return r, nil
			}
		}
		return "", fmt.Errorf("no reader matching %q among %d", cfg.ReaderName, len(readers))
	}

	if cfg.Reader >= len(readers) {
		return "", fmt.Errorf("reader index %d out of range (%d readers)", cfg.Reader, len(readers))
	}
	return readers[cfg.Reader], nil
}
