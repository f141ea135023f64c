// Package journal reads the systemd journal binary container and exposes its
// entries as a flat record sequence. The on-disk layout never leaks past this
// package: the aggregation core only sees stats.Record values.
package journal

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/journalstat-dev/journalstat/internal/pkg/stats"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/rs/zerolog/log"
)

var (
	ErrBadHeader   = errors.New("not a journal file")
	ErrTruncated   = errors.New("journal file is truncated")
	ErrBadObject   = errors.New("malformed journal object")
	ErrUnsupported = errors.New("unsupported journal feature")
)

const (
	signature = "LPKSHHRH"

	// Header up to tail_entry_monotonic; everything the reader needs.
	minHeaderLen = 208

	hdrOffIncompatibleFlags = 12
	hdrOffHeaderSize        = 88
	hdrOffNEntries          = 152
	hdrOffEntryArrayOffset  = 176
)

// Incompatible header flags.
const (
	incompatCompressedXZ   = 1 << 0
	incompatCompressedLZ4  = 1 << 1
	incompatKeyedHash      = 1 << 2
	incompatCompressedZSTD = 1 << 3
	incompatCompact        = 1 << 4
)

// Object types.
const (
	objectData       = 1
	objectField      = 2
	objectEntry      = 3
	objectEntryArray = 6
)

// Per-object compression flags on data objects.
const (
	objCompressedXZ   = 1 << 0
	objCompressedLZ4  = 1 << 1
	objCompressedZSTD = 1 << 2
)

const (
	objectHeaderLen = 16

	// Entry object: seqnum, realtime, monotonic, boot_id, xor_hash
	// precede the item array.
	entryItemsOff = 48
	entryItemLen  = 16
	entryRealtimeOff = 8

	// Data object: hash, next_hash_offset, next_field_offset, entry_offset,
	// entry_array_offset, n_entries precede the payload.
	dataPayloadOff = 48

	// Entry array object: next_entry_array_offset precedes the offsets.
	entryArrayItemsOff = 8

	// Decompressed field payloads larger than this are considered corrupt.
	maxPayloadLen = 1 << 30
)

const (
	fieldMessage = "MESSAGE"
	fieldUnit    = "_SYSTEMD_UNIT"
	fieldComm    = "_COMM"
)

// Reader decodes one journal file by walking its global entry array chain.
// It implements stats.RecordSource.
type Reader struct {
	f    *os.File
	size int64

	nEntries uint64
	read     uint64

	// Entry offsets remaining in the current entry array and the offset of
	// the next array in the chain. Zero terminates the chain.
	items     []uint64
	itemIdx   int
	nextArray uint64

	zr *zstd.Decoder
}

// Open validates the container header and positions the reader at the first
// entry. Wrong signature or a short file is ErrBadHeader; XZ-compressed and
// compact journals are ErrUnsupported. Keyed hashes are accepted because the
// reader never verifies hashes.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r, err := newReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	return r, nil
}

func newReader(f *os.File) (*Reader, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	var hdr [minHeaderLen]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}

	if string(hdr[:8]) != signature {
		return nil, fmt.Errorf("%w: bad signature", ErrBadHeader)
	}

	incompatible := binary.LittleEndian.Uint32(hdr[hdrOffIncompatibleFlags:])
	if incompatible&incompatCompressedXZ != 0 {
		return nil, fmt.Errorf("%w: xz compression", ErrUnsupported)
	}
	if incompatible&incompatCompact != 0 {
		return nil, fmt.Errorf("%w: compact mode", ErrUnsupported)
	}

	headerSize := binary.LittleEndian.Uint64(hdr[hdrOffHeaderSize:])
	if headerSize < minHeaderLen || headerSize > uint64(info.Size()) {
		return nil, fmt.Errorf("%w: header size %d", ErrBadHeader, headerSize)
	}

	r := &Reader{
		f:         f,
		size:      info.Size(),
		nEntries:  binary.LittleEndian.Uint64(hdr[hdrOffNEntries:]),
		nextArray: binary.LittleEndian.Uint64(hdr[hdrOffEntryArrayOffset:]),
	}

	// Per-object flags select the codec, so keep a zstd decoder ready even
	// when the header does not advertise zstd.
	if r.zr, err = zstd.NewReader(nil); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Reader) Close() error {
	if r.zr != nil {
		r.zr.Close()
	}
	return r.f.Close()
}

// Entries reports the total entry count from the header.
func (r *Reader) Entries() uint64 {
	return r.nEntries
}

// Next returns the next record or io.EOF once the entry array chain is
// exhausted. Entries without a MESSAGE field are skipped.
func (r *Reader) Next() (*stats.Record, error) {
	for {
		off, err := r.nextEntryOffset()
		if err != nil {
			return nil, err
		}

		rec, err := r.readEntry(off)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}

		return rec, nil
	}
}

func (r *Reader) nextEntryOffset() (uint64, error) {
	for {
		if r.read >= r.nEntries {
			return 0, io.EOF
		}

		if r.itemIdx < len(r.items) {
			off := r.items[r.itemIdx]
			r.itemIdx++
			if off == 0 {
				// Unused tail slots terminate the array.
				r.items = nil
				continue
			}
			r.read++
			return off, nil
		}

		if r.nextArray == 0 {
			return 0, io.EOF
		}
		if err := r.loadEntryArray(r.nextArray); err != nil {
			return 0, err
		}
	}
}

func (r *Reader) loadEntryArray(off uint64) error {
	typ, _, body, err := r.readObject(off)
	if err != nil {
		return err
	}
	if typ != objectEntryArray {
		return fmt.Errorf("%w: expected entry array at offset %d", ErrBadObject, off)
	}
	if len(body) < entryArrayItemsOff {
		return fmt.Errorf("%w: short entry array", ErrBadObject)
	}

	r.nextArray = binary.LittleEndian.Uint64(body)
	body = body[entryArrayItemsOff:]

	r.items = make([]uint64, 0, len(body)/8)
	for len(body) >= 8 {
		r.items = append(r.items, binary.LittleEndian.Uint64(body))
		body = body[8:]
	}
	r.itemIdx = 0

	return nil
}

func (r *Reader) readEntry(off uint64) (*stats.Record, error) {
	typ, _, body, err := r.readObject(off)
	if err != nil {
		return nil, err
	}
	if typ != objectEntry {
		return nil, fmt.Errorf("%w: expected entry at offset %d", ErrBadObject, off)
	}
	if len(body) < entryItemsOff {
		return nil, fmt.Errorf("%w: short entry", ErrBadObject)
	}

	var (
		realtime = binary.LittleEndian.Uint64(body[entryRealtimeOff:])
		items    = body[entryItemsOff:]
		rec      = stats.Record{Realtime: int64(realtime)}
		haveMsg  bool
	)

	for len(items) >= entryItemLen {
		dataOff := binary.LittleEndian.Uint64(items)
		items = items[entryItemLen:]

		if dataOff == 0 {
			continue
		}

		payload, err := r.readData(dataOff)
		if err != nil {
			return nil, err
		}

		rec.Size += int64(len(payload))

		eq := bytes.IndexByte(payload, '=')
		if eq < 0 {
			log.Debug().Uint64("offset", dataOff).Msg("Data object without separator")
			continue
		}

		switch string(payload[:eq]) {
		case fieldMessage:
			rec.Message = payload[eq+1:]
			haveMsg = true
		case fieldUnit:
			rec.Unit = string(payload[eq+1:])
		case fieldComm:
			rec.Process = string(payload[eq+1:])
		}
	}

	if !haveMsg {
		return nil, nil
	}

	return &rec, nil
}

func (r *Reader) readData(off uint64) ([]byte, error) {
	typ, flags, body, err := r.readObject(off)
	if err != nil {
		return nil, err
	}
	if typ != objectData {
		return nil, fmt.Errorf("%w: expected data at offset %d", ErrBadObject, off)
	}
	if len(body) < dataPayloadOff {
		return nil, fmt.Errorf("%w: short data object", ErrBadObject)
	}

	payload := body[dataPayloadOff:]

	switch {
	case flags&objCompressedXZ != 0:
		return nil, fmt.Errorf("%w: xz compressed data object", ErrUnsupported)

	case flags&objCompressedLZ4 != 0:
		// Journald prefixes LZ4 blocks with the decompressed size.
		if len(payload) < 8 {
			return nil, fmt.Errorf("%w: short lz4 payload", ErrBadObject)
		}
		dsize := binary.LittleEndian.Uint64(payload)
		if dsize > maxPayloadLen {
			return nil, fmt.Errorf("%w: lz4 payload size %d", ErrBadObject, dsize)
		}
		dst := make([]byte, dsize)
		n, err := lz4.UncompressBlock(payload[8:], dst)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrBadObject, err)
		}
		return dst[:n], nil

	case flags&objCompressedZSTD != 0:
		dst, err := r.zr.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrBadObject, err)
		}
		if len(dst) > maxPayloadLen {
			return nil, fmt.Errorf("%w: zstd payload size %d", ErrBadObject, len(dst))
		}
		return dst, nil
	}

	return payload, nil
}

// readObject reads one object header plus body at off. The returned body
// excludes the 16-byte object header.
func (r *Reader) readObject(off uint64) (typ, flags byte, body []byte, err error) {
	if off+objectHeaderLen > uint64(r.size) {
		return 0, 0, nil, fmt.Errorf("%w: object header at offset %d", ErrTruncated, off)
	}

	var hdr [objectHeaderLen]byte
	if _, err := r.f.ReadAt(hdr[:], int64(off)); err != nil {
		return 0, 0, nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	size := binary.LittleEndian.Uint64(hdr[8:])
	if size < objectHeaderLen || off+size > uint64(r.size) {
		return 0, 0, nil, fmt.Errorf("%w: object size %d at offset %d", ErrTruncated, size, off)
	}

	body = make([]byte, size-objectHeaderLen)
	if _, err := r.f.ReadAt(body, int64(off)+objectHeaderLen); err != nil {
		return 0, 0, nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	return hdr[0], hdr[1], body, nil
}
