package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// Frame layout, all integers big endian:
//
//	[0:8)   shard id
//	[8:16)  request id
//	[16:20) payload length
//	[20:)   payload
const (
	frameHeaderSize = 20

	// maxFrameSize guards against allocating for a corrupt length field
	maxFrameSize = 64 << 20
)

// writeFrame writes header and payload with a single vectored write
func writeFrame(w io.Writer, shardID uint64, requestID uint64, data []byte) error {
	if len(data) > maxFrameSize {
		return fmt.Errorf("frame payload of %d bytes exceeds limit of %d", len(data), maxFrameSize)
	}

	var header [frameHeaderSize]byte
	binary.BigEndian.PutUint64(header[0:8], shardID)
	binary.BigEndian.PutUint64(header[8:16], requestID)
	binary.BigEndian.PutUint32(header[16:20], uint32(len(data)))

	bufs := net.Buffers{header[:], data}
	_, err := bufs.WriteTo(w)
	return err
}

// readFrame reads one frame. buf is used for the payload when it is large
// enough, otherwise a new slice is allocated.
func readFrame(r io.Reader, buf []byte) (shardID uint64, requestID uint64, data []byte, err error) {
	var header [frameHeaderSize]byte
	if _, err = io.ReadFull(r, header[:]); err != nil {
		return 0, 0, nil, err
	}

	shardID = binary.BigEndian.Uint64(header[0:8])
	requestID = binary.BigEndian.Uint64(header[8:16])
	n := binary.BigEndian.Uint32(header[16:20])

	if n > maxFrameSize {
		return 0, 0, nil, fmt.Errorf("frame payload of %d bytes exceeds limit of %d", n, maxFrameSize)
	}
	if cap(buf) < int(n) {
		buf = make([]byte, n)
	}
	data = buf[:n]

	if _, err = io.ReadFull(r, data); err != nil {
		return 0, 0, nil, err
	}
	return shardID, requestID, data, nil
}
