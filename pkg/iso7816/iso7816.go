/*
Package iso7816 drives a smart card through ISO/IEC 7816-4 command/response
pairs and hands the response payloads to the BER-TLV decoder.

The package is transport agnostic: anything with a Transmit([]byte) ([]byte, error)
method can carry the APDUs, which includes *scard.Card from github.com/ebfe/scard.

# Exchange model

A logical operation (SELECT, READ RECORD, ...) may take several physical
exchanges. The Client follows the two T=0 transport procedures on its own:

  - 61XX: XX more bytes are ready, fetched with GET RESPONSE.
  - 6CXX: wrong Le, the command is sent again with Le = XX.

Every exchange is recorded in a Trace so callers can inspect the whole
conversation and still judge the outcome on the final status word.

# Reader pseudo-APDUs

PC/SC contactless readers answer proprietary commands under CLA 'FF'
(GET UID, LOAD KEY, GENERAL AUTHENTICATE, READ BINARY). They are built by
GetUID, LoadKey, Authenticate and ReadBinary.

# Usage

	client := iso7816.NewClient(card)
	cls, _ := iso7816.NewClass(0x00)

	trace, err := client.Send(iso7816.SelectByAID(cls, []byte("1PAY.SYS.DDF01")))
	if err != nil {
	    return err
	}

	res, err := iso7816.NewResult(trace)
	if err != nil {
	    return err
	}
	fmt.Println(res.Describe()) // command summary + decoded TLV tree
*/
package iso7816
