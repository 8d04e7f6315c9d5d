package siyi

import "github.com/sigurn/crc16"

// CRC16 CCITT, poly 0x1021, init 0, over every frame byte
// before the checksum itself.
var crcTable = crc16.MakeTable(crc16.CRC16_XMODEM)

func frameChecksum(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}
