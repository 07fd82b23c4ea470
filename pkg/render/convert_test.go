package render

import (
	"context"
	"os/exec"
	"testing"

	"github.com/matzehuels/safetree/pkg/errors"
)

func TestConvertWithoutRsvg(t *testing.T) {
	defer func() { lookPath = exec.LookPath }()
	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }

	ctx := context.Background()
	if _, err := ToPDF(ctx, []byte("<svg/>")); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPDF error = %v, want UNSUPPORTED", err)
	}
	if _, err := ToPNG(ctx, []byte("<svg/>"), 2); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPNG error = %v, want UNSUPPORTED", err)
	}
}
