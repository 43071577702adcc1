package multistream

import "errors"

var (
	// ErrInvalidEncoding varint 长度前缀与实际字节数不符，或 varint 本身非法
	ErrInvalidEncoding = errors.New("multistream: invalid protocol encoding")
)
