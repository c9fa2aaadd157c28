package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/gregLibert/tlv-reader/pkg/emv"
	"github.com/gregLibert/tlv-reader/pkg/iso7816"
	"github.com/gregLibert/tlv-reader/pkg/tlv"
)

// newFlagSet prints usage and parse errors to the app's stderr.
func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("tlvdump "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) runDecode(args []string) error {
	fs := a.newFlagSet("decode")
	depth := fs.Int("depth", a.cfg.MaxDepth, "maximum nesting depth")
	all := fs.Bool("all", false, "decode every top-level unit, not just the first")
	if err := fs.Parse(args); err != nil {
		return err
	}

	input, err := a.hexInput(fs.Args())
	if err != nil {
		return err
	}

	data, err := tlv.ParseHex(input)
	if err != nil {
		return err
	}

	dec := &tlv.Decoder{MaxDepth: *depth}

	var nodes []tlv.Node
	if *all {
		nodes, err = dec.DecodeAll(data)
	} else {
		var n tlv.Node
		n, err = dec.Decode(data)
		nodes = []tlv.Node{n}
	}
	if err != nil {
		return fmt.Errorf("decode %d bytes: %w", len(data), err)
	}

	for i, n := range nodes {
		if i > 0 {
			fmt.Fprintln(a.stdout)
		}
		fmt.Fprintln(a.stdout, tlv.Render(n))
	}
	return nil
}

// hexInput joins the arguments, or reads stdin when there are none or the
// only one is "-". All whitespace is dropped.
func (a *app) hexInput(args []string) (string, error) {
	raw := strings.Join(args, "")
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		b, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		raw = string(b)
	}

	clean := strings.Join(strings.Fields(raw), "")
	if clean == "" {
		return "", errors.New("no hex input")
	}
	return clean, nil
}

// withClient connects to the card and hands a logging Client to fn.
func (a *app) withClient(fn func(*iso7816.Client) error) error {
	card, release, err := a.connect(a.cfg, a.log)
	if err != nil {
		return err
	}
	defer release()

	return fn(iso7816.NewClient(card, iso7816.WithLogger(a.log)))
}

// expectOK sends cmd and requires a final 9000.
func expectOK(c *iso7816.Client, what string, cmd *iso7816.CommandAPDU) ([]byte, error) {
	trace, err := c.Send(cmd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}

	resp := trace.Last().Response
	if resp.Status != iso7816.SW_NO_ERROR {
		raw := append(append([]byte{}, resp.Data...), resp.Status.SW1(), resp.Status.SW2())
		return nil, fmt.Errorf("%s failed: %s (response %s)", what, resp.Status.Verbose(), tlv.Hexify(raw))
	}
	return resp.Data, nil
}

func (a *app) runUID(args []string) error {
	if err := a.newFlagSet("uid").Parse(args); err != nil {
		return err
	}

	return a.withClient(func(c *iso7816.Client) error {
		uid, err := expectOK(c, "get UID", iso7816.GetUID())
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Card UID: %s\n", tlv.Hexify(uid))
		return nil
	})
}

func (a *app) runReadBlock(args []string) error {
	m := a.cfg.Mifare

	fs := a.newFlagSet("read-block")
	block := fs.Uint("block", uint(m.Block), "block number")
	slot := fs.Uint("slot", uint(m.KeySlot), "reader key slot")
	length := fs.Int("length", m.Length, "bytes to read")
	keyHex := fs.String("key", fmt.Sprintf("%X", m.Key), "6-byte key in hex")
	useKeyB := fs.Bool("key-b", false, "authenticate with key B instead of key A")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *block > 0xFF || *slot > 0xFF {
		return fmt.Errorf("block and slot must be 0-255")
	}
	key, err := tlv.ParseHex(*keyHex)
	if err != nil {
		return fmt.Errorf("-key: %w", err)
	}
	keyType := iso7816.KeyA
	if *useKeyB {
		keyType = iso7816.KeyB
	}

	loadKey, err := iso7816.LoadKey(byte(*slot), key)
	if err != nil {
		return err
	}
	auth, err := iso7816.Authenticate(byte(*block), keyType, byte(*slot))
	if err != nil {
		return err
	}
	read, err := iso7816.ReadBinary(byte(*block), *length)
	if err != nil {
		return err
	}

	return a.withClient(func(c *iso7816.Client) error {
		if _, err := expectOK(c, "load key", loadKey); err != nil {
			return err
		}
		if _, err := expectOK(c, fmt.Sprintf("authenticate block %d", *block), auth); err != nil {
			return err
		}
		data, err := expectOK(c, fmt.Sprintf("read block %d", *block), read)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Block data: %s\n", tlv.Hexify(data))
		return nil
	})
}

func (a *app) runPSE(args []string) error {
	fs := a.newFlagSet("pse")
	maxRecords := fs.Int("max-records", a.cfg.EMV.MaxRecords, "directory records to read at most")
	contactless := fs.Bool("contactless", false, "select the PPSE (2PAY.SYS.DDF01) instead of the PSE")
	if err := fs.Parse(args); err != nil {
		return err
	}

	name := emv.PSEName
	if *contactless {
		name = emv.PPSEName
	}

	cla, err := iso7816.NewClass(0x00)
	if err != nil {
		return err
	}

	return a.withClient(func(c *iso7816.Client) error {
		res, fci, err := emv.SelectPSE(c, cla, name)
		if res != nil {
			fmt.Fprintln(a.stdout, res.Describe())
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, fci.Describe())

		apps, err := emv.ListApplications(c, cla, fci, *maxRecords)
		if err != nil {
			a.log.Warn().Err(err).Msg("no directory entries")
		}

		aids := make([][]byte, 0, len(apps)+len(a.cfg.EMV.AIDs))
		for _, app := range apps {
			if len(app.AID) > 0 {
				a.log.Info().Hex("aid", app.AID).Str("label", string(app.ApplicationLabel)).Msg("directory entry")
				aids = append(aids, app.AID)
			}
		}
		aids = append(aids, a.cfg.EMV.AIDs...)

		for _, aid := range aids {
			res, fci, err := emv.SelectApplication(c, cla, aid)
			if res != nil {
				fmt.Fprintln(a.stdout, res.Describe())
			}
			if err != nil {
				a.log.Warn().Err(err).Hex("aid", aid).Msg("application not selected")
				continue
			}
			fmt.Fprintln(a.stdout, fci.Describe())
		}
		return nil
	})
}
