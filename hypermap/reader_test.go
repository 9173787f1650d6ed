package hypermap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spectralio/bcf/errs"
)

func TestBlockReader(t *testing.T) {
	t.Run("PrimitiveReads", func(t *testing.T) {
		data := []byte{
			0x2A,
			0x34, 0x12,
			0x78, 0x56, 0x34, 0x12,
			0x01, 0x02, 0x03, 0x04, 0x05, 0xFF, 0xFF, 0xFF,
		}
		r, err := newBlockReader(&sliceSource{blocks: [][]byte{data}})
		require.NoError(t, err)
		defer r.release()

		v8, err := r.readUint8()
		require.NoError(t, err)
		require.Equal(t, uint8(0x2A), v8)

		v16, err := r.readUint16()
		require.NoError(t, err)
		require.Equal(t, uint16(0x1234), v16)

		v32, err := r.readUint32()
		require.NoError(t, err)
		require.Equal(t, uint32(0x12345678), v32)

		// The 64-bit read consumes 8 bytes but assembles only the low
		// 40 bits.
		v64, err := r.readUint64()
		require.NoError(t, err)
		require.Equal(t, uint64(0x05_04_03_02_01), v64)
	})

	t.Run("ReadsAcrossSeams", func(t *testing.T) {
		data := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
		for blockSize := 1; blockSize <= len(data); blockSize++ {
			r, err := newBlockReader(&sliceSource{blocks: splitBlocks(data, blockSize)})
			require.NoError(t, err)

			v, err := r.readUint32()
			require.NoError(t, err)
			require.Equal(t, uint32(0x44332211), v, "block size %d", blockSize)

			borrowed, err := r.borrow(4)
			require.NoError(t, err)
			require.Equal(t, []byte{0x55, 0x66, 0x77, 0x88}, borrowed, "block size %d", blockSize)

			r.release()
		}
	})

	t.Run("StitchingInvariant", func(t *testing.T) {
		// Two 8-byte blocks; consuming 5 bytes then forcing a fetch
		// must stitch the 3-byte residue in front of the next block.
		blocks := [][]byte{
			{1, 2, 3, 4, 5, 6, 7, 8},
			{9, 10, 11, 12, 13, 14, 15, 16},
		}
		r, err := newBlockReader(&sliceSource{blocks: blocks})
		require.NoError(t, err)
		defer r.release()

		require.NoError(t, r.skip(5))
		borrowed, err := r.borrow(6)
		require.NoError(t, err)
		require.Equal(t, []byte{6, 7, 8, 9, 10, 11}, borrowed)
		require.Equal(t, 11, r.cur.Len()) // (8 - 5) + 8
		require.Equal(t, 6, r.off)
	})

	t.Run("SeekWithinBuffer", func(t *testing.T) {
		data := make([]byte, 0x200)
		data[0x1A0] = 0xAB
		r, err := newBlockReader(&sliceSource{blocks: [][]byte{data}})
		require.NoError(t, err)
		defer r.release()

		require.NoError(t, r.seek(0x1A0))
		v, err := r.readUint8()
		require.NoError(t, err)
		require.Equal(t, uint8(0xAB), v)

		require.ErrorIs(t, r.seek(0x300), errs.ErrStreamExhausted)
	})

	t.Run("SkipFetches", func(t *testing.T) {
		r, err := newBlockReader(&sliceSource{blocks: [][]byte{{1, 2}, {3, 4}, {5, 6}}})
		require.NoError(t, err)
		defer r.release()

		require.NoError(t, r.skip(5))
		v, err := r.readUint8()
		require.NoError(t, err)
		require.Equal(t, uint8(6), v)
	})

	t.Run("Exhaustion", func(t *testing.T) {
		r, err := newBlockReader(&sliceSource{blocks: [][]byte{{1, 2, 3}}})
		require.NoError(t, err)
		defer r.release()

		_, err = r.readUint32()
		require.ErrorIs(t, err, errs.ErrStreamExhausted)
	})

	t.Run("EmptySource", func(t *testing.T) {
		_, err := newBlockReader(&sliceSource{})
		require.ErrorIs(t, err, errs.ErrStreamExhausted)
	})
}
