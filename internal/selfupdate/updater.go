package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	ErrDevBuild      = errors.New("cannot update a development build")
	ErrAlreadyLatest = errors.New("already running the latest version")
	ErrChecksum      = errors.New("checksum verification failed")
)

type UpdateInput struct {
	CurrentVersion string
	TargetVersion  string
}

type UpdateProgress struct {
	Stage   string
	Message string
}

// Update swaps the running binary for the target release. The pipeline is
// check, download, verify, extract, apply; progress is reported once per
// stage. An empty TargetVersion means "whatever is latest", and a current
// version of "(devel)" refuses outright since there is no release to compare
// against.
func (c *Checker) Update(ctx context.Context, input *UpdateInput, progress func(UpdateProgress)) error {
	if input.CurrentVersion == "(devel)" {
		return ErrDevBuild
	}

	tag := input.TargetVersion
	if tag == "" {
		progress(UpdateProgress{Stage: "check", Message: "Checking for latest version..."})
		result, err := c.Check(ctx, &CheckInput{Version: input.CurrentVersion})
		if err != nil {
			return fmt.Errorf("check for updates: %w", err)
		}
		if !result.UpdateAvailable {
			return ErrAlreadyLatest
		}
		tag = result.LatestVersion
	}

	asset, err := assetNameFor(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return err
	}

	progress(UpdateProgress{Stage: "download", Message: fmt.Sprintf("Downloading %s...", tag)})
	archive, err := c.fetch(ctx, c.releaseFileURL(tag, asset))
	if err != nil {
		return fmt.Errorf("download archive: %w", err)
	}

	progress(UpdateProgress{Stage: "verify", Message: "Verifying checksum..."})
	sums, err := c.fetch(ctx, c.releaseFileURL(tag, "checksums.txt"))
	if err != nil {
		return fmt.Errorf("download checksums: %w", err)
	}
	want, ok := parseChecksums(sums)[asset]
	if !ok {
		return fmt.Errorf("no checksum found for %s in checksums.txt", asset)
	}
	if err := verifyChecksum(archive, want); err != nil {
		return err
	}

	progress(UpdateProgress{Stage: "extract", Message: "Extracting binary..."})
	binary, err := extractBinary(archive, asset)
	if err != nil {
		return fmt.Errorf("extract binary: %w", err)
	}

	progress(UpdateProgress{Stage: "apply", Message: "Applying update..."})
	target, err := c.execPath()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	binaryHash := sha256.Sum256(binary)
	if err := applyUpdate(binary, target, binaryHash[:]); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	progress(UpdateProgress{Stage: "done", Message: fmt.Sprintf("Updated to %s", tag)})
	return nil
}

// releaseFileURL builds the download URL for a file attached to a release tag.
func (c *Checker) releaseFileURL(tag, name string) string {
	base := strings.TrimRight(c.downloadBaseURL, "/")
	return fmt.Sprintf("%s/%s/%s/releases/download/%s/%s", base, c.owner, c.repo, tag, name)
}

// releaseArches maps GOARCH values to the architecture labels goreleaser
// stamps into archive names.
var releaseArches = map[string]string{
	"amd64": "x86_64",
	"arm64": "arm64",
	"386":   "i386",
}

func assetNameFor(goos, goarch string) (string, error) {
	if goos == "darwin" {
		// macOS releases ship a single universal archive.
		return "quizdash_Darwin_all.tar.gz", nil
	}
	arch, ok := releaseArches[goarch]
	if !ok {
		return "", fmt.Errorf("unsupported architecture: %s", goarch)
	}
	switch goos {
	case "linux":
		return "quizdash_Linux_" + arch + ".tar.gz", nil
	case "windows":
		return "quizdash_Windows_" + arch + ".zip", nil
	}
	return "", fmt.Errorf("unsupported operating system: %s", goos)
}

func (c *Checker) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

// parseChecksums reads the "<hex>  <filename>" lines of a goreleaser
// checksums.txt. Malformed lines are skipped rather than rejected.
func parseChecksums(data []byte) map[string]string {
	sums := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			continue
		}
		sums[fields[1]] = fields[0]
	}
	return sums
}

func verifyChecksum(data []byte, expectedHex string) error {
	sum := sha256.Sum256(data)
	if got := hex.EncodeToString(sum[:]); got != expectedHex {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksum, expectedHex, got)
	}
	return nil
}

// extractBinary pulls the quizdash executable out of a release archive,
// picking the container format from the asset's extension.
func extractBinary(archive []byte, asset string) ([]byte, error) {
	if strings.HasSuffix(asset, ".zip") {
		return extractFromZip(archive, "quizdash.exe")
	}
	return extractFromTarGz(archive, "quizdash")
}

func extractFromTarGz(data []byte, name string) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("binary %q not found in archive", name)
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag == tar.TypeReg && filepath.Base(hdr.Name) == name {
			return io.ReadAll(tr)
		}
	}
}

func extractFromZip(data []byte, name string) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range r.File {
		if filepath.Base(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer func() { _ = rc.Close() }()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("binary %q not found in archive", name)
}

// applyUpdate writes the new binary next to the target and renames it into
// place, so the swap is atomic on the same filesystem. The temp copy is
// re-read and hashed before the rename; a mismatch there means something
// touched the file between write and swap.
func applyUpdate(binary []byte, targetPath string, wantHash []byte) error {
	info, err := os.Stat(targetPath)
	if err != nil {
		return fmt.Errorf("stat target: %w", err)
	}

	tmpDir, err := os.MkdirTemp(filepath.Dir(targetPath), ".quizdash-update-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	tmpFile := filepath.Join(tmpDir, "quizdash-new")
	if err := os.WriteFile(tmpFile, binary, 0600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	written, err := os.ReadFile(tmpFile)
	if err != nil {
		return fmt.Errorf("re-read temp file: %w", err)
	}
	sum := sha256.Sum256(written)
	if !bytes.Equal(sum[:], wantHash) {
		return fmt.Errorf("%w: temp file changed after write", ErrChecksum)
	}

	if err := os.Rename(tmpFile, targetPath); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	if err := os.Chmod(targetPath, info.Mode()); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	return nil
}
