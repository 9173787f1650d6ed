package sfs

import (
	"fmt"
	"io"
	"time"

	"github.com/spectralio/bcf/compress"
	"github.com/spectralio/bcf/endian"
	"github.com/spectralio/bcf/errs"
	"github.com/spectralio/bcf/format"
	"github.com/spectralio/bcf/internal/pool"
)

// compressionSignature marks a compressed file's first chunk ("AACS").
const compressionSignature = "AACS"

// compressedDataOffset is where the first compression block header
// starts within a compressed file's logical data.
const compressedDataOffset = 0x80

// Item is one entry of the SFS virtual file system: a file or a
// directory.
//
// File data is scattered over fixed-size chunks; the item's pointer
// table maps chunk ordinals to absolute file offsets. When the
// container is compressed, the logical data is additionally wrapped in
// zlib blocks with 16-byte headers.
type Item struct {
	r *Reader

	name       string
	size       uint64
	isDir      bool
	parent     int32
	createTime time.Time
	modTime    time.Time

	// pointers holds the absolute offset of every data chunk.
	pointers       []int64
	pointerTable   int32
	chunkCount     uint32
	uncompressedBS uint32
	compressedBlks uint32

	children map[string]*Item
	order    []string
}

// parseItem decodes one 0x200-byte tree record.
//
// Record layout (little-endian): pointer-table chunk (int32), size
// (uint64), three FILETIME stamps, permissions (uint32), parent index
// (int32), 176 reserved bytes, directory flag, 3 reserved bytes, a
// 256-byte NUL-padded UTF-8 name, and 32 trailing reserved bytes.
func parseItem(r *Reader, record []byte) (*Item, error) {
	if len(record) < treeItemSize {
		return nil, fmt.Errorf("sfs item record too short: %d bytes", len(record))
	}

	item := &Item{
		r:            r,
		pointerTable: int32(endian.Uint32(record[0:4])),
		size:         endian.Little().Uint64(record[4:12]),
		createTime:   filetimeToTime(endian.Little().Uint64(record[12:20])),
		modTime:      filetimeToTime(endian.Little().Uint64(record[20:28])),
		parent:       int32(endian.Uint32(record[40:44])),
		isDir:        record[220] != 0,
	}

	name := record[224 : 224+256]
	for i, b := range name {
		if b == 0 {
			name = name[:i]
			break
		}
	}
	item.name = string(name)

	item.chunkCount = uint32((item.size + uint64(r.usableChunk) - 1) / uint64(r.usableChunk))
	if !item.isDir {
		if err := item.fillPointerTable(); err != nil {
			return nil, err
		}
	}

	return item, nil
}

// fillPointerTable reads the item's chunk pointer table and converts
// the chunk ordinals to absolute offsets.
//
// A large table spans several chunks itself; unlike file data, those
// chunks chain through the next-chunk field of the chunk header rather
// than through another table.
func (i *Item) fillPointerTable() error {
	r := i.r
	entriesPerChunk := r.usableChunk / 4
	tableChunks := (i.chunkCount + entriesPerChunk - 1) / entriesPerChunk

	var table []byte
	if tableChunks > 1 {
		table = make([]byte, 0, tableChunks*r.usableChunk)
		next := i.pointerTable
		for range tableChunks {
			head := make([]byte, 4)
			headOffset := int64(r.chunkSize)*int64(next) + chunkNextOffset
			if _, err := r.f.ReadAt(head, headOffset); err != nil {
				return fmt.Errorf("failed to read sfs pointer table chain: %w", err)
			}

			chunk := make([]byte, r.usableChunk)
			if _, err := r.f.ReadAt(chunk, headOffset+4+28); err != nil {
				return fmt.Errorf("failed to read sfs pointer table chunk: %w", err)
			}
			table = append(table, chunk...)
			next = int32(endian.Uint32(head))
		}
	} else {
		table = make([]byte, r.usableChunk)
		offset := int64(r.chunkSize)*int64(i.pointerTable) + chunkDataOffset
		if n, err := r.f.ReadAt(table, offset); err != nil {
			if err != io.EOF || uint32(n) < i.chunkCount*4 {
				return fmt.Errorf("failed to read sfs pointer table: %w", err)
			}
		}
	}

	i.pointers = make([]int64, i.chunkCount)
	for c := range i.pointers {
		ordinal := endian.Uint32(table[c*4:])
		i.pointers[c] = int64(ordinal)*int64(r.chunkSize) + chunkDataOffset
	}

	return nil
}

// setupCompression parses the AACS block header at the start of a
// compressed file: signature, uncompressed block size, an unknown
// field, and the compression block count.
func (i *Item) setupCompression() error {
	header := make([]byte, 16)
	if _, err := i.r.f.ReadAt(header, i.pointers[0]); err != nil {
		return fmt.Errorf("failed to read sfs compression header: %w", err)
	}
	if string(header[0:4]) != compressionSignature {
		return fmt.Errorf("%w: file %q", errs.ErrMissingCompressionHeader, i.name)
	}

	i.uncompressedBS = endian.Uint32(header[4:8])
	i.compressedBlks = endian.Uint32(header[12:16])

	return nil
}

// Name returns the item's name within its directory.
func (i *Item) Name() string { return i.name }

// Size returns the item's logical size in bytes (before the compressed
// block layer is unwrapped).
func (i *Item) Size() uint64 { return i.size }

// IsDir reports whether the item is a directory.
func (i *Item) IsDir() bool { return i.isDir }

// ModTime returns the item's modification time.
func (i *Item) ModTime() time.Time { return i.modTime }

// CreateTime returns the item's creation time.
func (i *Item) CreateTime() time.Time { return i.createTime }

// ReadPiece reads length bytes of the item's raw data starting at
// offset, reassembling across chunk boundaries. It does not unwrap the
// compressed block layer.
func (i *Item) ReadPiece(offset, length uint64) ([]byte, error) {
	if i.isDir {
		return nil, fmt.Errorf("%w: %q", errs.ErrIsDirectory, i.name)
	}

	usable := uint64(i.r.usableChunk)
	first := offset / usable
	firstOffset := offset % usable
	last := (offset + length) / usable
	lastCut := (offset + length) % usable

	buf := pool.GetPieceBuffer()
	defer pool.PutPieceBuffer(buf)

	if first == last {
		return i.readChunkPart(first, firstOffset, length)
	}

	part, err := i.readChunkPart(first, firstOffset, usable-firstOffset)
	if err != nil {
		return nil, err
	}
	buf.Write(part)
	for c := first + 1; c < last; c++ {
		part, err := i.readChunkPart(c, 0, usable)
		if err != nil {
			return nil, err
		}
		buf.Write(part)
	}
	if lastCut > 0 {
		part, err := i.readChunkPart(last, 0, lastCut)
		if err != nil {
			return nil, err
		}
		buf.Write(part)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

func (i *Item) readChunkPart(chunk, offset, length uint64) ([]byte, error) {
	if chunk >= uint64(len(i.pointers)) {
		return nil, fmt.Errorf("sfs read beyond file end: chunk %d of %d", chunk, len(i.pointers))
	}

	part := make([]byte, length)
	if _, err := i.r.f.ReadAt(part, i.pointers[chunk]+int64(offset)); err != nil {
		return nil, fmt.Errorf("failed to read sfs chunk %d: %w", chunk, err)
	}

	return part, nil
}

// Blocks returns an iterator over the item's data blocks together with
// the nominal block size and the total block count. For a compressed
// container the blocks are decompressed zlib blocks; otherwise they are
// the raw data chunks.
func (i *Item) Blocks() (BlockIterator, uint32, uint32, error) {
	if i.isDir {
		return nil, 0, 0, fmt.Errorf("%w: %q", errs.ErrIsDirectory, i.name)
	}

	if i.r.compression == format.CompressionZlib {
		return &compressedIterator{item: i, offset: compressedDataOffset}, i.uncompressedBS, i.compressedBlks, nil
	}

	return &chunkIterator{item: i}, i.r.usableChunk, i.chunkCount, nil
}

// ReadAll reads and returns the item's whole logical data, decompressed
// when the container is compressed.
func (i *Item) ReadAll() ([]byte, error) {
	it, blockSize, blocks, err := i.Blocks()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, uint64(blockSize)*uint64(blocks))
	for {
		block, err := it.NextBlock()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
	}
}

// BlockIterator yields an item's data blocks in order, returning io.EOF
// after the last one. It satisfies the hypermap decoder's block source
// contract.
type BlockIterator interface {
	NextBlock() ([]byte, error)
}

// chunkIterator iterates the raw data chunks of an uncompressed file.
type chunkIterator struct {
	item *Item
	next uint64
}

func (it *chunkIterator) NextBlock() ([]byte, error) {
	i := it.item
	if it.next >= uint64(i.chunkCount) {
		return nil, io.EOF
	}

	usable := uint64(i.r.usableChunk)
	length := usable
	if it.next == uint64(i.chunkCount)-1 {
		if tail := i.size % usable; tail != 0 {
			length = tail
		}
	}

	block, err := i.readChunkPart(it.next, 0, length)
	if err != nil {
		return nil, err
	}
	it.next++

	return block, nil
}

// compressedIterator iterates the zlib blocks of a compressed file.
// Each block is a 16-byte header (compressed size, uncompressed size,
// unknown, compressed size + 0x10) followed by one zlib stream.
type compressedIterator struct {
	item   *Item
	offset uint64
	done   uint32
	codec  compress.ZlibCodec
}

func (it *compressedIterator) NextBlock() ([]byte, error) {
	i := it.item
	if it.done >= i.compressedBlks {
		return nil, io.EOF
	}

	header, err := i.ReadPiece(it.offset, 16)
	if err != nil {
		return nil, err
	}
	compressedSize := uint64(endian.Uint32(header[0:4]))
	it.offset += 16

	raw, err := i.ReadPiece(it.offset, compressedSize)
	if err != nil {
		return nil, err
	}
	it.offset += compressedSize
	it.done++

	// The AACS header fixes the nominal uncompressed block size; only
	// the final block of a file comes up short.
	return it.codec.Decompress(raw, int(i.uncompressedBS))
}
