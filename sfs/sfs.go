// Package sfs reads AidAim Software's SFS (Single File System)
// containers, the outer archive format of Bruker BCF files.
//
// The package provides read-only access: locating files in the
// container's virtual file system tree, reading them whole, in pieces,
// or as a stream of chunks, with transparent handling of the zlib
// compressed block layer. Encrypted containers and compression schemes
// other than zlib are not supported.
package sfs

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spectralio/bcf/endian"
	"github.com/spectralio/bcf/errs"
	"github.com/spectralio/bcf/format"
)

const (
	signature = "AAMVHFSS"

	// Fixed header offsets.
	versionOffset  = 0x124 // float32 version, then uint32 chunk size
	treeInfoOffset = 0x140 // tree address, item count, total chunks

	// Every chunk carries a 32-byte header; the payload of chunk i
	// starts at chunkSize*i + chunkDataOffset from the file start.
	chunkHeaderSize = 32
	chunkDataOffset = 0x138

	// Offset of the next-chunk pointer inside a chunk header, used when
	// a file's pointer table spans multiple chunks.
	chunkNextOffset = 0x118

	// Each tree item record is 0x200 bytes.
	treeItemSize = 0x200
)

// Reader provides read access to one SFS container.
type Reader struct {
	f    *os.File
	path string

	version     string
	chunkSize   uint32
	usableChunk uint32
	totalChunks uint32
	treeAddress uint32
	itemCount   uint32
	compression format.CompressionType

	root   *Item
	logger *slog.Logger
}

// Open opens the SFS container at path and parses its file tree.
func Open(path string, logger *slog.Logger) (*Reader, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := &Reader{f: f, path: path, logger: logger}
	if err := r.parseHeader(); err != nil {
		f.Close()
		return nil, err
	}
	if err := r.parseTree(); err != nil {
		f.Close()
		return nil, err
	}

	return r, nil
}

// Close closes the underlying file. Items obtained from the reader are
// unusable afterwards.
func (r *Reader) Close() error {
	return r.f.Close()
}

// Version returns the container version, formatted as the two-decimal
// string Bruker software displays (2.40 for old bcf, 2.60 for v2).
func (r *Reader) Version() string {
	return r.version
}

// Compression returns the container-wide compression scheme, either
// CompressionNone or CompressionZlib.
func (r *Reader) Compression() format.CompressionType {
	return r.compression
}

// File returns the item at the given path in the container's virtual
// file system. Directories separate with forward slashes.
func (r *Reader) File(path string) (*Item, error) {
	item := r.root
	for _, name := range strings.Split(path, "/") {
		if name == "" {
			continue
		}
		child, ok := item.children[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", errs.ErrFileNotFound, path)
		}
		item = child
	}

	return item, nil
}

// List returns the names of the entries in the directory at path, in
// tree order. The empty path lists the root.
func (r *Reader) List(path string) ([]string, error) {
	item := r.root
	if path != "" {
		var err error
		if item, err = r.File(path); err != nil {
			return nil, err
		}
	}
	if !item.isDir {
		return nil, fmt.Errorf("%w: %q is a file", errs.ErrFileNotFound, path)
	}

	names := make([]string, 0, len(item.children))
	for _, child := range item.order {
		names = append(names, child)
	}

	return names, nil
}

func (r *Reader) parseHeader() error {
	var sig [8]byte
	if _, err := r.f.ReadAt(sig[:], 0); err != nil {
		return fmt.Errorf("failed to read sfs signature: %w", err)
	}
	if string(sig[:]) != signature {
		return fmt.Errorf("%w: %q", errs.ErrNotSFSContainer, r.path)
	}

	var buf [8]byte
	if _, err := r.f.ReadAt(buf[:], versionOffset); err != nil {
		return fmt.Errorf("failed to read sfs version block: %w", err)
	}
	version := math.Float32frombits(endian.Uint32(buf[0:4]))
	r.version = fmt.Sprintf("%4.2f", version)
	r.chunkSize = endian.Uint32(buf[4:8])
	r.usableChunk = r.chunkSize - chunkHeaderSize

	var tree [12]byte
	if _, err := r.f.ReadAt(tree[:], treeInfoOffset); err != nil {
		return fmt.Errorf("failed to read sfs tree info: %w", err)
	}
	treeAddress := endian.Uint32(tree[0:4])
	itemCount := endian.Uint32(tree[4:8])
	r.totalChunks = endian.Uint32(tree[8:12])

	r.treeAddress = treeAddress
	r.itemCount = itemCount

	return nil
}

// parseTree reads the item table and assembles the virtual file system.
// The tree of a bcf never exceeds one chunk.
func (r *Reader) parseTree() error {
	raw := make([]byte, treeItemSize*int(r.itemCount))
	offset := int64(r.chunkSize)*int64(r.treeAddress) + chunkDataOffset
	if _, err := r.f.ReadAt(raw, offset); err != nil {
		return fmt.Errorf("failed to read sfs item table: %w", err)
	}

	items := make([]*Item, r.itemCount)
	for i := range items {
		item, err := parseItem(r, raw[i*treeItemSize:(i+1)*treeItemSize])
		if err != nil {
			return err
		}
		items[i] = item
	}

	if err := r.detectCompression(items); err != nil {
		return err
	}
	if r.compression == format.CompressionZlib {
		for _, item := range items {
			if item.isDir {
				continue
			}
			if err := item.setupCompression(); err != nil {
				return err
			}
		}
	}

	// Assemble the tree: parent indexes of -1 hang off the root.
	r.root = &Item{r: r, isDir: true, children: map[string]*Item{}}
	for _, item := range items {
		parent := r.root
		if item.parent >= 0 && int(item.parent) < len(items) {
			parent = items[item.parent]
		}
		if parent.children == nil {
			parent.children = map[string]*Item{}
		}
		parent.children[item.name] = item
		parent.order = append(parent.order, item.name)
	}

	return nil
}

// detectCompression probes the first chunk of the first file item. The
// compression scheme is container-global; it cannot differ per file.
func (r *Reader) detectCompression(items []*Item) error {
	r.compression = format.CompressionNone
	for _, item := range items {
		if item.isDir || len(item.pointers) == 0 {
			continue
		}

		var magic [4]byte
		if _, err := r.f.ReadAt(magic[:], item.pointers[0]); err != nil {
			return fmt.Errorf("failed to probe sfs compression: %w", err)
		}
		if string(magic[:]) == compressionSignature {
			r.compression = format.CompressionZlib
			r.logger.Debug("sfs container uses zlib compressed blocks")
		}

		break
	}

	return nil
}

// filetimeToTime converts a Windows FILETIME (100ns ticks since
// 1601-01-01 UTC) to a time.Time. Going through the Unix epoch avoids
// overflowing time.Duration, which cannot hold four centuries.
func filetimeToTime(ft uint64) time.Time {
	// Seconds between 1601-01-01 and 1970-01-01.
	const epochDelta = 11644473600

	secs := int64(ft/10_000_000) - epochDelta
	nanos := int64(ft%10_000_000) * 100

	return time.Unix(secs, nanos).UTC()
}
