// Package errs defines the sentinel errors shared across the bcf packages.
//
// Callers should use errors.Is to check for specific error conditions, as
// most call sites wrap these sentinels with additional context:
//
//	if errors.Is(err, errs.ErrStreamExhausted) {
//	    // the spectrum stream ended mid-record
//	}
package errs

import "errors"

// Hypermap decoding errors.
var (
	// ErrStreamExhausted indicates the block stream ended while a record
	// still required more bytes.
	ErrStreamExhausted = errors.New("spectrum block stream exhausted mid-record")

	// ErrBunchOverrun indicates an instructed spectrum decode consumed
	// bytes beyond its declared payload length.
	ErrBunchOverrun = errors.New("bunch decode overruns packed payload")

	// ErrMalformedPixelRecord indicates internally inconsistent pixel
	// record fields, such as a packed data size too small to hold the
	// trailing additional-pulse size field.
	ErrMalformedPixelRecord = errors.New("malformed pixel record")

	// ErrUnsupportedCountWidth indicates the caller selected (or the
	// header estimated) a 64-bit count element, which the decoder does
	// not support.
	ErrUnsupportedCountWidth = errors.New("unsupported count width")

	// ErrInvalidDownsample indicates a downsample factor less than 1.
	ErrInvalidDownsample = errors.New("downsample factor must be >= 1")

	// ErrInvalidCutoff indicates a negative channel or energy cutoff, or
	// an energy cutoff that maps to no positive channel.
	ErrInvalidCutoff = errors.New("channel cutoff must not be negative")

	// ErrNoCalibration indicates an energy cutoff was requested from a
	// container that carries no spectrum calibration.
	ErrNoCalibration = errors.New("container has no energy calibration")
)

// SFS container errors.
var (
	// ErrNotSFSContainer indicates the file does not start with the SFS
	// container signature.
	ErrNotSFSContainer = errors.New("file is not an SFS container")

	// ErrUnknownCompression indicates the container uses a compression
	// scheme other than none or zlib.
	ErrUnknownCompression = errors.New("sfs container uses unknown compression")

	// ErrMissingCompressionHeader indicates a file marked as compressed
	// lacks the AACS compression signature.
	ErrMissingCompressionHeader = errors.New("compression signature missing in header")

	// ErrFileNotFound indicates the requested path does not exist in the
	// container's virtual file system.
	ErrFileNotFound = errors.New("file not found in sfs container")

	// ErrIsDirectory indicates a directory item was used where a file
	// item is required.
	ErrIsDirectory = errors.New("sfs item is a directory")
)

// Cube blob errors.
var (
	// ErrInvalidHeaderSize indicates the blob data is too small to hold
	// a cube header.
	ErrInvalidHeaderSize = errors.New("invalid cube header size")

	// ErrInvalidMagic indicates the blob header magic number mismatch.
	ErrInvalidMagic = errors.New("invalid cube blob magic number")

	// ErrInvalidCompressionType indicates an unknown compression type in
	// the blob header.
	ErrInvalidCompressionType = errors.New("invalid compression type")

	// ErrChecksumMismatch indicates the decompressed payload does not
	// match the checksum recorded in the blob header.
	ErrChecksumMismatch = errors.New("cube payload checksum mismatch")

	// ErrPayloadSizeMismatch indicates the payload length disagrees with
	// the dimensions recorded in the blob header.
	ErrPayloadSizeMismatch = errors.New("cube payload size mismatch")
)

// High-level reader errors.
var (
	// ErrInvalidIndex indicates the requested hypermap index is not
	// present in the file.
	ErrInvalidIndex = errors.New("hypermap index not available")

	// ErrMalformedHeader indicates the hypermap XML header is missing
	// required elements.
	ErrMalformedHeader = errors.New("malformed hypermap header")
)
