package xmodem

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTripCRC(t *testing.T) {
	payload := padBlock([]byte("hello, xmodem"), blockSize128)

	frame, err := encodePacket(ModeCRC, 7, payload)
	if err != nil {
		t.Fatalf("encodePacket: %v", err)
	}
	if frame[0] != SOH || frame[1] != 7 || frame[2] != ^byte(7) {
		t.Fatalf("unexpected header: % X", frame[:3])
	}
	if len(frame) != 3+blockSize128+2 {
		t.Fatalf("frame length = %d, want %d", len(frame), 3+blockSize128+2)
	}

	pkt, err := decodePacket(ModeCRC, frame[0], frame[1], frame[2], frame[3:])
	if err != nil {
		t.Fatalf("decodePacket: %v", err)
	}
	if pkt.seq != 7 || !bytes.Equal(pkt.payload, payload) {
		t.Errorf("decoded packet mismatch: seq=%d payload=%v", pkt.seq, pkt.payload)
	}
}

func TestEncodeDecodeRoundTripChecksum(t *testing.T) {
	payload := padBlock([]byte("classic xmodem"), blockSize128)

	frame, err := encodePacket(ModeChecksum, 1, payload)
	if err != nil {
		t.Fatalf("encodePacket: %v", err)
	}
	if len(frame) != 3+blockSize128+1 {
		t.Fatalf("frame length = %d, want %d", len(frame), 3+blockSize128+1)
	}

	pkt, err := decodePacket(ModeChecksum, frame[0], frame[1], frame[2], frame[3:])
	if err != nil {
		t.Fatalf("decodePacket: %v", err)
	}
	if !bytes.Equal(pkt.payload, payload) {
		t.Errorf("payload mismatch after round trip")
	}
}

func TestEncodeDecodeRoundTrip1K(t *testing.T) {
	payload := padBlock(bytes.Repeat([]byte("x"), 1000), blockSize1024)

	frame, err := encodePacket(ModeCRC1K, 2, payload)
	if err != nil {
		t.Fatalf("encodePacket: %v", err)
	}
	if frame[0] != STX {
		t.Fatalf("start byte = 0x%02X, want STX", frame[0])
	}

	pkt, err := decodePacket(ModeCRC1K, frame[0], frame[1], frame[2], frame[3:])
	if err != nil {
		t.Fatalf("decodePacket: %v", err)
	}
	if pkt.blockSize() != blockSize1024 {
		t.Errorf("blockSize() = %d, want %d", pkt.blockSize(), blockSize1024)
	}
}

func TestEncodePacketRejectsWrongLength(t *testing.T) {
	if _, err := encodePacket(ModeCRC, 1, make([]byte, 100)); err == nil {
		t.Fatal("expected error for non-standard payload length")
	}
}

func TestDecodePacketBadComplement(t *testing.T) {
	payload := padBlock(nil, blockSize128)
	frame, _ := encodePacket(ModeCRC, 3, payload)
	frame[2] ^= 0xFF // corrupt the complement

	_, err := decodePacket(ModeCRC, frame[0], frame[1], frame[2], frame[3:])
	if err == nil {
		t.Fatal("expected error for bad complement")
	}
	xerr, ok := err.(*Error)
	if !ok || xerr.Type != ErrInvalidFrame {
		t.Errorf("got %v, want ErrInvalidFrame", err)
	}
}

func TestDecodePacketBadLength(t *testing.T) {
	_, err := decodePacket(ModeCRC, SOH, 1, ^byte(1), make([]byte, 10))
	if err == nil {
		t.Fatal("expected error for bad body length")
	}
	xerr, ok := err.(*Error)
	if !ok || xerr.Type != ErrInvalidFrame {
		t.Errorf("got %v, want ErrInvalidFrame", err)
	}
}

func TestDecodePacketCRCMismatch(t *testing.T) {
	payload := padBlock([]byte("corrupt me"), blockSize128)
	frame, _ := encodePacket(ModeCRC, 5, payload)
	frame[len(frame)-1] ^= 0xFF // flip a trailer bit

	_, err := decodePacket(ModeCRC, frame[0], frame[1], frame[2], frame[3:])
	if err == nil {
		t.Fatal("expected CRC mismatch error")
	}
	if !IsCRC(err) {
		t.Errorf("got %v, want ErrCRC", err)
	}
}

func TestDecodePacketChecksumMismatch(t *testing.T) {
	payload := padBlock([]byte("corrupt me too"), blockSize128)
	frame, _ := encodePacket(ModeChecksum, 5, payload)
	frame[len(frame)-1] ^= 0xFF

	_, err := decodePacket(ModeChecksum, frame[0], frame[1], frame[2], frame[3:])
	if !IsCRC(err) {
		t.Errorf("got %v, want ErrCRC (checksum mismatch reuses the CRC error type)", err)
	}
}

func TestPadBlockPadsWithSUB(t *testing.T) {
	block := padBlock([]byte("abc"), blockSize128)
	if len(block) != blockSize128 {
		t.Fatalf("len = %d, want %d", len(block), blockSize128)
	}
	if !bytes.Equal(block[:3], []byte("abc")) {
		t.Errorf("real bytes not preserved")
	}
	for _, b := range block[3:] {
		if b != SUB {
			t.Errorf("padding byte = 0x%02X, want SUB", b)
			break
		}
	}
}

func TestPadBlockExactFit(t *testing.T) {
	src := bytes.Repeat([]byte("y"), blockSize128)
	block := padBlock(src, blockSize128)
	if !bytes.Equal(block, src) {
		t.Errorf("exact-size source should be copied verbatim")
	}
}
