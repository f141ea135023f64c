// Package journaltest builds small, valid journal containers in memory for
// tests that need real files without depending on a running journald.
package journaltest

import (
	"encoding/binary"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

const (
	signature    = "LPKSHHRH"
	headerLen    = 208
	objHeaderLen = 16

	objectData       = 1
	objectEntry      = 3
	objectEntryArray = 6

	objCompressedLZ4  = 1 << 1
	objCompressedZSTD = 1 << 2
)

// Compression selects how a field payload is stored.
type Compression int

const (
	CompressNone Compression = iota
	CompressLZ4
	CompressZSTD
)

// Entry is one journal entry to synthesize.
type Entry struct {
	Realtime uint64
	// Fields holds raw "FIELD=value" payloads in insertion order.
	Fields []Field
}

// Field is one data payload of an entry.
type Field struct {
	Payload     []byte
	Compression Compression
}

// F is shorthand for an uncompressed FIELD=value payload.
func F(name, value string) Field {
	return Field{Payload: []byte(name + "=" + value)}
}

// Builder accumulates entries and serializes a journal container.
type Builder struct {
	entries []Entry
}

func (b *Builder) Append(e Entry) *Builder {
	b.entries = append(b.entries, e)
	return b
}

// AppendMessage adds an entry with MESSAGE, _SYSTEMD_UNIT and _COMM fields.
func (b *Builder) AppendMessage(realtime uint64, unit, comm, msg string) *Builder {
	return b.Append(Entry{
		Realtime: realtime,
		Fields: []Field{
			F("MESSAGE", msg),
			F("_SYSTEMD_UNIT", unit),
			F("_COMM", comm),
		},
	})
}

// Bytes serializes the accumulated entries into a journal container with a
// single global entry array.
func (b *Builder) Bytes() []byte {
	var (
		buf      = make([]byte, headerLen)
		nObjects uint64

		align = func() {
			for len(buf)%8 != 0 {
				buf = append(buf, 0)
			}
		}

		putObject = func(typ, flags byte, body []byte) uint64 {
			align()
			off := uint64(len(buf))

			hdr := make([]byte, objHeaderLen)
			hdr[0] = typ
			hdr[1] = flags
			binary.LittleEndian.PutUint64(hdr[8:], uint64(objHeaderLen+len(body)))

			buf = append(buf, hdr...)
			buf = append(buf, body...)
			nObjects++
			return off
		}
	)

	entryOffsets := make([]uint64, 0, len(b.entries))

	for _, e := range b.entries {
		dataOffsets := make([]uint64, 0, len(e.Fields))

		for _, f := range e.Fields {
			var (
				flags   byte
				payload = f.Payload
			)

			switch f.Compression {
			case CompressLZ4:
				dst := make([]byte, lz4.CompressBlockBound(len(payload)))
				n, err := lz4.CompressBlock(payload, dst, nil)
				if err != nil || n == 0 {
					// Incompressible input stays raw.
					break
				}
				framed := make([]byte, 8+n)
				binary.LittleEndian.PutUint64(framed, uint64(len(payload)))
				copy(framed[8:], dst[:n])
				payload = framed
				flags = objCompressedLZ4

			case CompressZSTD:
				enc, err := zstd.NewWriter(nil)
				if err != nil {
					break
				}
				payload = enc.EncodeAll(payload, nil)
				enc.Close()
				flags = objCompressedZSTD
			}

			body := make([]byte, 48+len(payload))
			copy(body[48:], payload)
			dataOffsets = append(dataOffsets, putObject(objectData, flags, body))
		}

		body := make([]byte, 48+16*len(dataOffsets))
		binary.LittleEndian.PutUint64(body[8:], e.Realtime)
		for i, off := range dataOffsets {
			binary.LittleEndian.PutUint64(body[48+16*i:], off)
		}
		entryOffsets = append(entryOffsets, putObject(objectEntry, 0, body))
	}

	arrayBody := make([]byte, 8+8*len(entryOffsets))
	for i, off := range entryOffsets {
		binary.LittleEndian.PutUint64(arrayBody[8+8*i:], off)
	}
	arrayOff := putObject(objectEntryArray, 0, arrayBody)

	copy(buf, signature)
	binary.LittleEndian.PutUint64(buf[88:], headerLen)                      // header_size
	binary.LittleEndian.PutUint64(buf[96:], uint64(len(buf))-headerLen)     // arena_size
	binary.LittleEndian.PutUint64(buf[136:], arrayOff)                      // tail_object_offset
	binary.LittleEndian.PutUint64(buf[144:], nObjects)                      // n_objects
	binary.LittleEndian.PutUint64(buf[152:], uint64(len(b.entries)))        // n_entries
	binary.LittleEndian.PutUint64(buf[176:], arrayOff)                      // entry_array_offset

	return buf
}

// WriteFile serializes the container to path.
func (b *Builder) WriteFile(path string) error {
	return os.WriteFile(path, b.Bytes(), 0644)
}
