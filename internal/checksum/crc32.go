// Package checksum provides the CRC32 (IEEE polynomial) primitive used to
// protect every frame header against silent corruption.
//
// Unlike checksum schemes that mask the stored CRC (to tolerate a CRC field
// embedded in the checksummed data itself), frame headers here checksum only
// the payload that follows the header, so no masking is required.
package checksum

import "hash/crc32"

var ieeeTable = crc32.MakeTable(crc32.IEEE)

// Value computes the CRC32 (IEEE) checksum of data.
func Value(data []byte) uint32 {
	return crc32.Checksum(data, ieeeTable)
}
