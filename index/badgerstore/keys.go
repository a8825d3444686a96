package badgerstore

import (
	"encoding/binary"

	"github.com/poiesic/repolens/core"
)

// Key prefix for chunk records.
const chunkRecordPrefix = "chkrec"

// makeChunkKey generates a key for a chunk record.
// Format: prefix:sequenceIndex:contentID. The sequence index is written
// in BigEndian order so iteration visits chunks in corpus order.
func makeChunkKey(sequenceIndex int, id core.ID) []byte {
	prefix := chunkRecordPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(sequenceIndex))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
