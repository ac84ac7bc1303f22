package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestGetSimpleText_TrimsLine(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("  hello world  \n"))

	got, err := GetSimpleText(r, "Say something", &out)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(out.String(), "Say something") {
		t.Fatalf("prompt not written: %q", out.String())
	}
}

func TestGetSimpleText_PartialLineOnEOF(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("no newline"))

	got, err := GetSimpleText(r, "p", &out)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got != "no newline" {
		t.Fatalf("got %q", got)
	}
}

func TestGetMultiline_StopsOnEmptyLine(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("line one\nline two\n\nignored\n"))

	got, err := GetMultiline(r, "p", &out)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got != "line one\nline two" {
		t.Fatalf("got %q", got)
	}
}

func TestGetPassword_UsesStubbedReader(t *testing.T) {
	orig := readPassword
	readPassword = func(fd int) ([]byte, error) { return []byte("s3cret"), nil }
	t.Cleanup(func() { readPassword = orig })

	var out bytes.Buffer
	pw, err := GetPassword(&out, "Enter password")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if string(pw) != "s3cret" {
		t.Fatalf("got %q", pw)
	}
	if !strings.Contains(out.String(), "Enter password") {
		t.Fatalf("prompt not written: %q", out.String())
	}
}
