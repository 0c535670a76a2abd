package update

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	osruntime "runtime"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/conveydesk/convey-cli/cmd/version"
	"github.com/conveydesk/convey-cli/internal/constants"
	"github.com/conveydesk/convey-cli/internal/runtime"
)

const (
	cliName        = "convey"
	maxExtractSize = 500 * 1024 * 1024
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// releaseManifest is the document published at ReleaseManifestURL.
type releaseManifest struct {
	Version string `json:"version"`
	// Assets maps "<os>_<arch>" to a download URL.
	Assets map[string]string `json:"assets"`
}

func fetchManifest(url string) (*releaseManifest, error) {
	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release manifest fetch failed: %s", resp.Status)
	}

	var m releaseManifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, err
	}
	if m.Version == "" {
		return nil, errors.New("release manifest has no version")
	}
	return &m, nil
}

// shouldUpdate compares the running version against the published one.
// Unparseable versions (dev builds, raw commit hashes) always update.
func shouldUpdate(currentVersion, latestVersion string) bool {
	cleanedCurrent := strings.TrimSpace(strings.Replace(currentVersion, "version", "", 1))
	cleanedLatest := strings.TrimSpace(latestVersion)

	current, errCurrent := semver.NewVersion(cleanedCurrent)
	latest, errLatest := semver.NewVersion(cleanedLatest)
	if errCurrent != nil || errLatest != nil {
		return true
	}

	return latest.GreaterThan(current)
}

func assetKey() (string, error) {
	osName := osruntime.GOOS
	switch osName {
	case "darwin", "linux", "windows":
	default:
		return "", fmt.Errorf("unsupported OS: %s", osName)
	}

	arch := osruntime.GOARCH
	switch arch {
	case "amd64", "arm64":
	default:
		return "", fmt.Errorf("unsupported architecture: %s", arch)
	}

	return fmt.Sprintf("%s_%s", osName, arch), nil
}

func downloadFile(url, dest string) error {
	resp, err := httpClient.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

func extractBinary(assetPath string) (string, error) {
	switch {
	case strings.HasSuffix(assetPath, ".tar.gz"):
		return untar(assetPath)
	case filepath.Ext(assetPath) == ".zip":
		return unzip(assetPath)
	default:
		return "", fmt.Errorf("unsupported archive type: %s", filepath.Ext(assetPath))
	}
}

// safeOutPath rejects archive entries that would escape outDir.
func safeOutPath(outDir, entryName string) (string, error) {
	cleanName := filepath.Clean(entryName)
	if strings.Contains(cleanName, "..") || filepath.IsAbs(cleanName) {
		return "", fmt.Errorf("archive entry contains forbidden path elements: %s", cleanName)
	}
	outPath := filepath.Join(outDir, cleanName)

	absOutDir, err := filepath.Abs(outDir)
	if err != nil {
		return "", err
	}
	absOutPath, err := filepath.Abs(outPath)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(absOutPath, absOutDir+string(os.PathSeparator)) && absOutPath != absOutDir {
		return "", fmt.Errorf("archive extraction outside of output directory: %s", absOutPath)
	}
	return outPath, nil
}

// writeLimited copies the entry to outPath, refusing anything over
// maxExtractSize.
func writeLimited(outPath string, r io.Reader) error {
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}

	written, err := io.CopyN(out, r, maxExtractSize+1)
	if err != nil && !errors.Is(err, io.EOF) {
		out.Close()
		return err
	}
	if written > maxExtractSize {
		out.Close()
		return errors.New("extracted file exceeds maximum allowed size")
	}
	return out.Close()
}

func untar(assetPath string) (string, error) {
	outDir := filepath.Dir(assetPath)

	f, err := os.Open(assetPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if hdr.Typeflag != tar.TypeReg || !strings.Contains(hdr.Name, cliName) {
			continue
		}

		outPath, err := safeOutPath(outDir, hdr.Name)
		if err != nil {
			return "", err
		}
		if err := writeLimited(outPath, tr); err != nil {
			return "", err
		}
		return outPath, nil
	}
	return "", errors.New("binary not found in tar.gz")
}

func unzip(assetPath string) (string, error) {
	outDir := filepath.Dir(assetPath)

	zr, err := zip.OpenReader(assetPath)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if !strings.Contains(f.Name, cliName) {
			continue
		}

		outPath, err := safeOutPath(outDir, f.Name)
		if err != nil {
			return "", err
		}

		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		if err := writeLimited(outPath, rc); err != nil {
			rc.Close()
			return "", err
		}
		if err := rc.Close(); err != nil {
			return "", err
		}
		return outPath, nil
	}
	return "", errors.New("binary not found in zip")
}

func replaceSelf(newBin string) error {
	self, err := os.Executable()
	if err != nil {
		return err
	}
	if osruntime.GOOS == "windows" {
		fmt.Println("Please close all running convey processes and manually replace the binary at:", self)
		fmt.Println("New binary downloaded at:", newBin)
		return fmt.Errorf("automatic replacement not supported on Windows")
	}
	return os.Rename(newBin, self)
}

// Run checks the release manifest and replaces the running binary when a
// newer version is published.
func Run(currentVersion string) error {
	fmt.Println("Checking for updates...")
	manifest, err := fetchManifest(constants.ReleaseManifestURL)
	if err != nil {
		return fmt.Errorf("error fetching latest version: %w", err)
	}

	if !shouldUpdate(currentVersion, manifest.Version) {
		fmt.Printf("You are already using the latest version %s\n", strings.TrimSpace(currentVersion))
		return nil
	}

	fmt.Println("Updating convey CLI...")

	key, err := assetKey()
	if err != nil {
		return fmt.Errorf("error determining release asset: %w", err)
	}
	url, ok := manifest.Assets[key]
	if !ok {
		return fmt.Errorf("no release asset published for %s", key)
	}

	tmpDir, err := os.MkdirTemp("", "convey_update_")
	if err != nil {
		return fmt.Errorf("error creating temp dir: %w", err)
	}
	defer func(path string) {
		_ = os.RemoveAll(path)
	}(tmpDir)

	assetPath := filepath.Join(tmpDir, filepath.Base(url))
	fmt.Println("Downloading:", url)
	if err := downloadFile(url, assetPath); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	binPath, err := extractBinary(assetPath)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	if err := os.Chmod(binPath, 0755); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := replaceSelf(binPath); err != nil {
		return fmt.Errorf("failed to replace binary: %w", err)
	}

	fmt.Println("convey CLI updated to", manifest.Version)
	cmd := exec.Command(cliName, "version")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Println("Failed to run version command:", err)
	}
	return nil
}

func New(_ *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update the convey CLI to the latest version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(version.Version)
		},
	}
}
