package iocontext

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
)

func TestGetIO_Default(t *testing.T) {
	streams := GetIO(context.Background())
	if streams.Out != os.Stdout || streams.ErrOut != os.Stderr || streams.In != os.Stdin {
		t.Error("expected standard streams by default")
	}
}

func TestWithIO(t *testing.T) {
	var out bytes.Buffer
	ctx := WithIO(context.Background(), &IO{Out: &out, ErrOut: &out, In: strings.NewReader("")})
	if GetIO(ctx).Out != &out {
		t.Error("expected injected stdout")
	}
}

func TestReadInput(t *testing.T) {
	s := &IO{In: strings.NewReader("SUCCESS: lead added")}
	data, err := s.ReadInput(64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "SUCCESS: lead added" {
		t.Errorf("got %q", data)
	}

	s = &IO{In: strings.NewReader("0123456789")}
	if _, err := s.ReadInput(5); err == nil {
		t.Error("expected size error")
	}

	if _, err := (&IO{}).ReadInput(5); err == nil {
		t.Error("expected error without input stream")
	}
}
