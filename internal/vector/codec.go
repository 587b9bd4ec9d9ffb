package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBlob 向量二进制数据长度不是4的倍数
var ErrInvalidBlob = errors.New("向量数据长度不是4的倍数")

// Encode 将向量编码为小端float32二进制 (384维向量对应1536字节)
func Encode(vec []float64) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
	}
	return buf
}

// Decode 将小端float32二进制还原为向量
func Decode(blob []byte) ([]float64, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("%w: %d字节", ErrInvalidBlob, len(blob))
	}
	vec := make([]float64, len(blob)/4)
	for i := range vec {
		vec[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:])))
	}
	return vec, nil
}
