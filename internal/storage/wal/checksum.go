package wal

// ============================================================================
// Checksum
// Responsibility: compute the CRC32 of a journal event
// ============================================================================

import (
	"encoding/json"
	"hash/crc32"
)

// CalculateChecksum returns the CRC32-IEEE of the event's JSON encoding
// with the Checksum field zeroed. Field order is fixed by the struct, so the
// encoding is deterministic.
func CalculateChecksum(event Event) uint32 {
	event.Checksum = 0
	data, err := json.Marshal(event)
	if err != nil {
		// Event holds only strings and integers
		panic("wal: marshal event: " + err.Error())
	}
	return crc32.ChecksumIEEE(data)
}
