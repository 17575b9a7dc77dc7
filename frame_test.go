package smtpkit

import (
	"reflect"
	"testing"
)

func TestFrameScannerSingleFeed(t *testing.T) {
	var scanner frameScanner
	frames := scanner.feed([]byte("220 hello\r\n250-one\r\n250 two\r\n"))
	want := [][]byte{[]byte("220 hello"), []byte("250-one"), []byte("250 two")}
	if !reflect.DeepEqual(frames, want) {
		t.Fatalf("got %q, want %q", frames, want)
	}
	if len(scanner.leftover()) != 0 {
		t.Fatalf("expected no leftover bytes, got %q", scanner.leftover())
	}
}

func TestFrameScannerAcrossFeeds(t *testing.T) {
	var scanner frameScanner
	if frames := scanner.feed([]byte("220 par")); len(frames) != 0 {
		t.Fatalf("expected no frames yet, got %q", frames)
	}
	frames := scanner.feed([]byte("tial\r\n"))
	want := [][]byte{[]byte("220 partial")}
	if !reflect.DeepEqual(frames, want) {
		t.Fatalf("got %q, want %q", frames, want)
	}
}

func TestFrameScannerBareLF(t *testing.T) {
	var scanner frameScanner
	frames := scanner.feed([]byte("250 ok\n"))
	want := [][]byte{[]byte("250 ok")}
	if !reflect.DeepEqual(frames, want) {
		t.Fatalf("got %q, want %q", frames, want)
	}
}

func TestFrameScannerPreservesEmptyLines(t *testing.T) {
	var scanner frameScanner
	frames := scanner.feed([]byte("\r\n\r\na\r\n"))
	want := [][]byte{[]byte(""), []byte(""), []byte("a")}
	if !reflect.DeepEqual(frames, want) {
		t.Fatalf("got %q, want %q", frames, want)
	}
}

func TestFrameScannerLeftoverAfterClose(t *testing.T) {
	var scanner frameScanner
	scanner.feed([]byte("220 incomplete"))
	if len(scanner.leftover()) == 0 {
		t.Fatal("expected leftover bytes to remain buffered")
	}
}
