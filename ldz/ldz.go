// Package ldz implements a compressed sidecar container for archiving LD
// log files.
//
// The format is a thin envelope around an lz4-compressed copy of the
// original file: a signature, a format version, the compressed and
// decompressed lengths, and a digest of the decompressed content. The digest
// lets an archive be verified without re-reading the original.
package ldz

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/anaminus/parse"
	lz4 "github.com/bkaradzic/go-lz4"

	"github.com/afonso360/motec-i2/ld"
)

// Version of the envelope emitted by Compress.
const Version = 1

var signature = [4]byte{'L', 'D', 'Z', 0x1A}

// ErrSignature indicates input that does not begin with the sidecar
// signature.
var ErrSignature = fmt.Errorf("not an LDZ archive")

// VersionError indicates an envelope version this package cannot read.
type VersionError struct {
	Version uint8
}

func (err VersionError) Error() string {
	return fmt.Sprintf("unsupported archive version %d", err.Version)
}

// ChecksumError indicates that the decompressed content does not match the
// digest stored in the envelope.
type ChecksumError struct {
	Want [32]byte
	Got  [32]byte
}

func (err ChecksumError) Error() string {
	return fmt.Sprintf("content digest %x does not match archived digest %x", err.Got, err.Want)
}

// Compress writes data to w as a sidecar archive.
func Compress(w io.Writer, data []byte) error {
	compressed, err := lz4.Encode(nil, data)
	if err != nil {
		return err
	}
	// lz4 prepends the decompressed length; the envelope stores its own.
	payload := compressed[4:]
	sum := ld.Fingerprint(data)

	fw := parse.NewBinaryWriter(w)
	fw.Bytes(signature[:])
	fw.Number(uint8(Version))
	fw.Number(uint32(len(payload)))
	fw.Number(uint32(len(data)))
	fw.Bytes(sum[:])
	fw.Bytes(payload)
	_, err = fw.End()
	return err
}

// Decompress reads a sidecar archive from r and returns the verified
// original content.
func Decompress(r io.Reader) ([]byte, error) {
	fr := parse.NewBinaryReader(r)

	var sig [4]byte
	if fr.Bytes(sig[:]) {
		_, err := fr.End()
		return nil, err
	}
	if sig != signature {
		return nil, ErrSignature
	}

	var version uint8
	if fr.Number(&version) {
		_, err := fr.End()
		return nil, err
	}
	if version != Version {
		return nil, VersionError{Version: version}
	}

	var compressedLength, decompressedLength uint32
	var sum [32]byte
	fr.Number(&compressedLength)
	fr.Number(&decompressedLength)
	fr.Bytes(sum[:])

	// lz4 wants the decompressed length prepended to the payload.
	payload := make([]byte, compressedLength+4)
	binary.LittleEndian.PutUint32(payload, decompressedLength)
	fr.Bytes(payload[4:])
	if _, err := fr.End(); err != nil {
		return nil, err
	}

	data := make([]byte, decompressedLength)
	data, err := lz4.Decode(data, payload)
	if err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}

	if got := ld.Fingerprint(data); got != sum {
		return nil, ChecksumError{Want: sum, Got: got}
	}
	return data, nil
}
