package utils

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ProofLengthSize is the width of the length prefix written before every proof
const ProofLengthSize = 32

var ErrMalformedPayload = errors.New("malformed proof payload")

// EncodeLength returns n as a 32 byte big-endian word, left-padded with zeros.
// n is the proof length in bytes, not in hashes. Every non-negative int fits in
// the word, so the value is never truncated.
func EncodeLength(n int) [ProofLengthSize]byte {
	var word [ProofLengthSize]byte
	binary.BigEndian.PutUint64(word[ProofLengthSize-8:], uint64(n))
	return word
}

// EncodeBatch packs proofs as len(proof) || proof for each proof, in order.
// This is the layout expected by MerkleMineBulk.multiGenerate.
func EncodeBatch(proofs [][]byte) []byte {
	size := 0
	for _, proof := range proofs {
		size += ProofLengthSize + len(proof)
	}

	payload := make([]byte, 0, size)
	for _, proof := range proofs {
		word := EncodeLength(len(proof))
		payload = append(payload, word[:]...)
		payload = append(payload, proof...)
	}
	return payload
}

// EncodeBatchHex is EncodeBatch in 0x-prefixed hex form
func EncodeBatchHex(proofs [][]byte) string {
	return hexutil.Encode(EncodeBatch(proofs))
}

// DecodeBatch splits a payload produced by EncodeBatch back into its proofs
func DecodeBatch(payload []byte) ([][]byte, error) {
	proofs := [][]byte{}
	offset := 0
	for offset < len(payload) {
		if len(payload)-offset < ProofLengthSize {
			return nil, fmt.Errorf("%w: truncated length prefix at offset %d", ErrMalformedPayload, offset)
		}
		word := payload[offset : offset+ProofLengthSize]
		for _, b := range word[:ProofLengthSize-8] {
			if b != 0 {
				return nil, fmt.Errorf("%w: length prefix at offset %d overflows", ErrMalformedPayload, offset)
			}
		}
		length := binary.BigEndian.Uint64(word[ProofLengthSize-8:])
		offset += ProofLengthSize

		if length > math.MaxInt32 || int(length) > len(payload)-offset {
			return nil, fmt.Errorf("%w: proof of %d bytes at offset %d exceeds payload", ErrMalformedPayload, length, offset)
		}
		proof := make([]byte, int(length))
		copy(proof, payload[offset:offset+int(length)])
		proofs = append(proofs, proof)
		offset += int(length)
	}
	return proofs, nil
}
