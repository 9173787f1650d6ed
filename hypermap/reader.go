package hypermap

import (
	"errors"
	"fmt"
	"io"

	"github.com/spectralio/bcf/endian"
	"github.com/spectralio/bcf/errs"
	"github.com/spectralio/bcf/internal/pool"
)

// blockReader is a forward-only cursor over a BlockSource. It presents
// the block sequence as one linear byte stream: whenever a primitive
// read would cross a block seam, the residue from the current offset to
// the buffer end is stitched onto the next raw block, so every read sees
// a contiguous slice.
//
// Two pooled buffers alternate as the stitch target, keeping the
// carry-over copy bounded by the residue size instead of reallocating
// per fetch.
type blockReader struct {
	src   BlockSource
	cur   *pool.ByteBuffer
	spare *pool.ByteBuffer
	off   int
}

// newBlockReader creates a reader over src and loads the first block.
func newBlockReader(src BlockSource) (*blockReader, error) {
	r := &blockReader{
		src:   src,
		cur:   pool.GetBlockBuffer(),
		spare: pool.GetBlockBuffer(),
	}

	if err := r.fetch(); err != nil {
		r.release()
		return nil, err
	}

	return r, nil
}

// release returns the stitch buffers to the pool. Borrows handed out by
// the reader are invalid afterwards.
func (r *blockReader) release() {
	pool.PutBlockBuffer(r.cur)
	pool.PutBlockBuffer(r.spare)
	r.cur, r.spare = nil, nil
}

// fetch pulls the next raw block and stitches the unread residue in
// front of it. The new buffer length is (old_length - old_offset) + K
// and the offset resets to 0.
func (r *blockReader) fetch() error {
	block, err := r.src.NextBlock()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errs.ErrStreamExhausted
		}

		return err
	}

	r.spare.Reset()
	r.spare.Write(r.cur.Bytes()[r.off:])
	r.spare.Write(block)
	r.cur, r.spare = r.spare, r.cur
	r.off = 0

	return nil
}

// need ensures at least n bytes are readable ahead of the offset,
// fetching blocks as required.
func (r *blockReader) need(n int) error {
	for r.cur.Len()-r.off < n {
		if err := r.fetch(); err != nil {
			return err
		}
	}

	return nil
}

// seek sets the offset within the currently loaded buffer. No block
// change: the target must lie inside the buffer. It is used once per
// decode, to skip the fixed header prologue.
func (r *blockReader) seek(offset int) error {
	if offset > r.cur.Len() {
		return fmt.Errorf("%w: seek target %d beyond buffer length %d",
			errs.ErrStreamExhausted, offset, r.cur.Len())
	}
	r.off = offset

	return nil
}

// skip advances the offset by n bytes, fetching as required.
func (r *blockReader) skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.off += n

	return nil
}

func (r *blockReader) readUint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.cur.Bytes()[r.off]
	r.off++

	return v, nil
}

func (r *blockReader) readUint16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := endian.Uint16(r.cur.Bytes()[r.off:])
	r.off += 2

	return v, nil
}

func (r *blockReader) readUint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := endian.Uint32(r.cur.Bytes()[r.off:])
	r.off += 4

	return v, nil
}

func (r *blockReader) readUint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := endian.Uint64(r.cur.Bytes()[r.off:])
	r.off += 8

	return v, nil
}

// borrow returns a contiguous slice of n bytes at the current offset and
// advances past it. The borrow stays valid only until the next call that
// may fetch a block.
func (r *blockReader) borrow(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	s := r.cur.Bytes()[r.off : r.off+n]
	r.off += n

	return s, nil
}
