package capability

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// SelfTest is a behavioral post-install check: "installed" means "the
// capability actually works," not just "the package manager exited 0"
// (§4.B full text). A failure is surfaced by the caller as a warning in
// relaxed mode or a StrictModeViolation in strict mode — this function only
// reports pass/fail, it never decides the escalation policy.
type SelfTest func() error

// selfTests maps a name referenced from PostInstallStep.SelfTest to its
// implementation.
var selfTests = map[string]SelfTest{
	"image_codecs_jpeg": testImageCodecsJPEG,
}

// RunSelfTest executes the named self-test, returning an error describing
// exactly what failed to decode/verify.
func RunSelfTest(name string) error {
	fn, ok := selfTests[name]
	if !ok {
		return fmt.Errorf("no registered self-test named %q", name)
	}
	return fn()
}

// fixtureJPEG is a minimal, embedded 2x2 mid-gray baseline JPEG (one
// component, one-code Huffman tables) used purely to exercise
// the platform's JPEG decoder after installing image_codecs_jpeg — this is
// not test data for our own tests, it is the capability's runtime probe.
var fixtureJPEG = []byte{
	0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 0x4a, 0x46, 0x49, 0x46, 0x00, 0x01,
	0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0xff, 0xdb, 0x00, 0x43,
	0x00, 0x03, 0x02, 0x02, 0x02, 0x02, 0x02, 0x03, 0x02, 0x02, 0x02, 0x03,
	0x03, 0x03, 0x03, 0x04, 0x06, 0x04, 0x04, 0x04, 0x04, 0x04, 0x08, 0x06,
	0x06, 0x05, 0x06, 0x09, 0x08, 0x0a, 0x0a, 0x09, 0x08, 0x09, 0x09, 0x0a,
	0x0c, 0x0f, 0x0c, 0x0a, 0x0b, 0x0e, 0x0b, 0x09, 0x09, 0x0d, 0x11, 0x0d,
	0x0e, 0x0f, 0x10, 0x10, 0x11, 0x10, 0x0a, 0x0c, 0x12, 0x13, 0x12, 0x10,
	0x13, 0x0f, 0x10, 0x10, 0x10, 0xff, 0xc0, 0x00, 0x0b, 0x08, 0x00, 0x02,
	0x00, 0x02, 0x01, 0x01, 0x11, 0x00, 0xff, 0xc4, 0x00, 0x14, 0x00, 0x01,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xc4, 0x00, 0x14, 0x10, 0x01, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0xff, 0xda, 0x00, 0x08, 0x01, 0x01, 0x00, 0x00, 0x3f, 0x00,
	0x3f, 0xff, 0xd9,
}

func testImageCodecsJPEG() error {
	img, err := imaging.Decode(bytes.NewReader(fixtureJPEG))
	if err != nil {
		return fmt.Errorf("decoding JPEG self-test fixture: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 2 || bounds.Dy() != 2 {
		return fmt.Errorf("JPEG self-test fixture decoded to %dx%d, want 2x2", bounds.Dx(), bounds.Dy())
	}
	return nil
}
