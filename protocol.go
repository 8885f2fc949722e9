package sender

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/klauspost/compress/zlib"
)

// Header layout of a Zabbix protocol packet.
const (
	HeaderSize = 13
	// LargeHeaderSize is the header of packets flagged FlagLarge, which carry 8 byte lengths.
	// Such packets are read but never written.
	LargeHeaderSize = 21

	FlagProtocol   byte = 0x01
	FlagCompressed byte = 0x02
	FlagLarge      byte = 0x04
)

// DefaultMaxResponseSize matches the server's own packet size limit.
const DefaultMaxResponseSize int64 = 128 << 20

var magic = []byte("ZBXD")

// EncodePacket frames payload with the 13 byte ZBXD header. When compress is set the payload
// is zlib compressed and the length field is split into compressed and original sizes.
func EncodePacket(payload []byte, compress bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(HeaderSize + len(payload))
	if err := WritePacket(&buf, payload, compress); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePacket writes one framed packet to w in a single Write call.
func WritePacket(w io.Writer, payload []byte, compress bool) error {
	header := make([]byte, HeaderSize)
	copy(header, magic)

	body := payload
	if compress {
		var zbuf bytes.Buffer
		zw := zlib.NewWriter(&zbuf)
		if _, err := zw.Write(payload); err != nil {
			return fmt.Errorf("failed to compress: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("failed to compress: %w", err)
		}
		body = zbuf.Bytes()

		header[4] = FlagProtocol | FlagCompressed
		binary.LittleEndian.PutUint32(header[5:9], uint32(len(body)))
		binary.LittleEndian.PutUint32(header[9:13], uint32(len(payload)))
	} else {
		header[4] = FlagProtocol
		binary.LittleEndian.PutUint64(header[5:13], uint64(len(payload)))
	}

	packet := make([]byte, 0, len(header)+len(body))
	packet = append(packet, header...)
	packet = append(packet, body...)

	_, err := w.Write(packet)
	return err
}

// ReadPacket reads one framed packet from r and returns its payload.
//
// A reader that yields no bytes at all returns a nil payload and a nil error. The header is
// not used to reject a packet: the declared length is only trusted when the magic matches and
// it fits within limit. Otherwise the payload is the single JSON value that follows the header,
// so a peer that keeps the connection open after replying does not stall the read.
func ReadPacket(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxResponseSize
	}

	header := make([]byte, LargeHeaderSize)
	n, err := io.ReadFull(r, header[:HeaderSize])
	switch {
	case n == 0 && (err == io.EOF || err == io.ErrUnexpectedEOF):
		return nil, nil
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		return nil, fmt.Errorf("%w: short header (%d bytes)", ErrMalformedResponse, n)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrReceive, err)
	}

	zabbix := bytes.Equal(header[:4], magic)
	flags := header[4]
	compressed := zabbix && flags&FlagCompressed != 0

	var declared uint64
	switch {
	case zabbix && flags&FlagLarge != 0:
		if n, err := io.ReadFull(r, header[HeaderSize:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("%w: short large header (%d bytes)", ErrMalformedResponse, HeaderSize+n)
			}
			return nil, fmt.Errorf("%w: %w", ErrReceive, err)
		}
		declared = binary.LittleEndian.Uint64(header[5:13])
	case compressed:
		declared = uint64(binary.LittleEndian.Uint32(header[5:9]))
	default:
		declared = binary.LittleEndian.Uint64(header[5:13])
	}
	trusted := zabbix && declared > 0 && declared <= uint64(limit)

	if compressed {
		src := io.LimitReader(r, limit)
		if trusted {
			src = io.LimitReader(r, int64(declared))
		}
		return decompress(src, limit)
	}

	if trusted {
		payload, err := io.ReadAll(io.LimitReader(r, int64(declared)))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReceive, err)
		}
		return payload, nil
	}
	return readValue(io.LimitReader(r, limit))
}

// readValue reads exactly one JSON value. Nothing but EOF after the header yields an empty payload.
func readValue(r io.Reader) ([]byte, error) {
	var raw json.RawMessage
	err := json.NewDecoder(r).Decode(&raw)
	switch {
	case err == nil:
		return raw, nil
	case err == io.EOF:
		return []byte{}, nil
	case isReadError(err):
		return nil, fmt.Errorf("%w: %w", ErrReceive, err)
	default:
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
}

func decompress(r io.Reader, limit int64) ([]byte, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		if isReadError(err) {
			return nil, fmt.Errorf("%w: %w", ErrReceive, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, limit))
	if err != nil {
		if isReadError(err) {
			return nil, fmt.Errorf("%w: %w", ErrReceive, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return out, nil
}

// isReadError reports whether err came from the transport rather than from the data.
func isReadError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, net.ErrClosed)
}
