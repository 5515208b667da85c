package interpreter

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/go-containerregistry/pkg/crane"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	gcrtypes "github.com/google/go-containerregistry/pkg/v1/types"
	"github.com/klauspost/compress/zstd"

	"dht/internal/envutil"
)

// artifactRegistry is the OCI registry managed interpreter artifacts are
// published under. A real deployment would make this configurable; DHT
// pins one registry so every host resolves the same bytes for the same tag.
const artifactRegistry = "ghcr.io/dht-project/python-runtimes"

// downloadManaged pulls the OCI artifact for req's exact version and
// implementation and unpacks it under the environment's managed-interpreter
// cache. Grounded directly on the teacher's InspectRemoteImage/extractFileFromImage
// (registry.go): the same crane/remote + per-layer tar-extraction shape,
// repurposed from "read one file out of a container image" to "unpack an
// entire interpreter artifact onto disk".
func downloadManaged(ctx context.Context, req Request) (*Interpreter, error) {
	if req.Version == "" {
		return nil, fmt.Errorf("no exact interpreter version requested, cannot select a download")
	}

	ref := fmt.Sprintf("%s:%s-%s", artifactRegistry, implOrDefault(req.Implementation), req.Version)
	if _, err := name.ParseReference(ref); err != nil {
		return nil, fmt.Errorf("parsing artifact reference %q: %w", ref, err)
	}

	img, err := crane.Pull(ref, crane.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("pulling %q: %w", ref, err)
	}

	dest := versionDir(req)
	if err := unpackImage(img, dest); err != nil {
		return nil, fmt.Errorf("unpacking %q into %s: %w", ref, dest, err)
	}

	binDir := normalizedBinDir(dest)
	if !envutil.IsExecutable(filepath.Join(binDir, "python")) {
		return nil, fmt.Errorf("unpacked artifact %q has no executable python in %s", ref, binDir)
	}

	return &Interpreter{
		Version:        req.Version,
		Implementation: implOrDefault(req.Implementation),
		BinDir:         binDir,
		Managed:        true,
	}, nil
}

// unpackImage writes every layer of img to destDir, in layer order (earlier
// layers first, later layers may overwrite), decompressing gzip layers
// directly and falling back to zstd for layers the teacher's domain never
// produced but an artifact built with modern tooling commonly does.
func unpackImage(img v1.Image, destDir string) error {
	layers, err := img.Layers()
	if err != nil {
		return fmt.Errorf("listing layers: %w", err)
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	for _, layer := range layers {
		mt, err := layer.MediaType()
		if err != nil {
			return fmt.Errorf("reading layer media type: %w", err)
		}

		rc, err := layer.Compressed()
		if err != nil {
			return fmt.Errorf("opening layer: %w", err)
		}

		var r io.Reader = rc
		if isZstdLayer(mt) {
			zr, err := zstd.NewReader(rc)
			if err != nil {
				rc.Close()
				return fmt.Errorf("opening zstd layer: %w", err)
			}
			defer zr.Close()
			r = zr
		} else {
			gz, err := gzip.NewReader(rc)
			if err != nil {
				rc.Close()
				return fmt.Errorf("opening gzip layer: %w", err)
			}
			defer gz.Close()
			r = gz
		}

		if err := extractTar(r, destDir); err != nil {
			rc.Close()
			return err
		}
		rc.Close()
	}
	return nil
}

func isZstdLayer(mt gcrtypes.MediaType) bool {
	return mt == "application/vnd.dht.interpreter.layer.v1.tar+zstd"
}

func extractTar(r io.Reader, destDir string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		target := filepath.Join(destDir, hdr.Name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return err
			}
			f.Close()
		case tar.TypeSymlink:
			os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		}
	}
}
